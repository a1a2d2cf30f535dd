package services

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/saeid-a/FitTrackBack/internal/models"
	"github.com/saeid-a/FitTrackBack/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubGoalStore struct {
	goals map[int64]*models.Goal
}

func (s *stubGoalStore) GetByID(_ context.Context, id int64) (*models.Goal, error) {
	if g, ok := s.goals[id]; ok {
		return g, nil
	}
	return nil, pgx.ErrNoRows
}

func (s *stubGoalStore) List(_ context.Context, _ repository.GoalListFilter, page repository.PageRequest) (models.Page[models.Goal], error) {
	return repository.NewPage[models.Goal](nil, page, 0), nil
}

func (s *stubGoalStore) ListMilestones(_ context.Context, goalID int64) ([]models.GoalMilestone, error) {
	return []models.GoalMilestone{{ID: 1, GoalID: goalID, MilestoneName: "Halfway", MilestoneValue: 5}}, nil
}

func date(s string) time.Time {
	d, _ := time.Parse(DateLayout, s)
	return d
}

func newGoalFixture(t *testing.T) *GoalService {
	end := date("2026-06-30")
	store := &stubGoalStore{goals: map[int64]*models.Goal{
		1: {ID: 1, UserID: 1, GoalName: "Run 10k", StartDate: date("2026-03-01"), EndDate: &end, Status: models.GoalStatusActive},
		2: {ID: 2, UserID: 2, GoalName: "Deadlift 200kg", StartDate: date("2026-01-01"), Status: models.GoalStatusActive},
	}}
	return NewGoalService(refusingDB{t}, store, NewAuditService(nil, nil, nil))
}

func TestGoalCreateRejectsInvertedRange(t *testing.T) {
	svc := newGoalFixture(t)
	end := date("2026-01-01")

	_, err := svc.Create(context.Background(), member(1), GoalInput{
		GoalName:  "Lose 5kg",
		StartDate: date("2026-02-01"),
		EndDate:   &end,
	}, models.RequestMeta{})
	requireStatus(t, err, http.StatusBadRequest)
}

func TestGoalUpdateChecksMergedRange(t *testing.T) {
	svc := newGoalFixture(t)
	ctx := context.Background()

	// moving only the start past the stored end inverts the range
	_, err := svc.Update(ctx, member(1), 1, models.GoalPatch{StartDate: models.Some("2026-07-01")}, models.RequestMeta{})
	requireStatus(t, err, http.StatusBadRequest)

	_, err = svc.Update(ctx, member(1), 1, models.GoalPatch{EndDate: models.Some("2026-02-01")}, models.RequestMeta{})
	requireStatus(t, err, http.StatusBadRequest)

	_, err = svc.Update(ctx, member(1), 1, models.GoalPatch{EndDate: models.Some("30/06/2026")}, models.RequestMeta{})
	requireStatus(t, err, http.StatusUnprocessableEntity)

	_, err = svc.Update(ctx, member(1), 2, models.GoalPatch{GoalName: models.Some("Mine now")}, models.RequestMeta{})
	requireStatus(t, err, http.StatusForbidden)
}

func TestGoalGetIncludesMilestones(t *testing.T) {
	svc := newGoalFixture(t)

	detail, err := svc.Get(context.Background(), member(1), 1)
	require.NoError(t, err)
	require.Len(t, detail.Milestones, 1)
	assert.Equal(t, "Halfway", detail.Milestones[0].MilestoneName)

	_, err = svc.Get(context.Background(), member(1), 3)
	requireStatus(t, err, http.StatusNotFound)
}

func TestCheckDateRange(t *testing.T) {
	start := date("2026-01-10")
	same := date("2026-01-10")
	before := date("2026-01-09")

	assert.NoError(t, checkDateRange(start, nil))
	assert.NoError(t, checkDateRange(start, &same))
	assert.Error(t, checkDateRange(start, &before))
}

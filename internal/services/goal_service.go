package services

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/saeid-a/FitTrackBack/internal/apperr"
	"github.com/saeid-a/FitTrackBack/internal/models"
	"github.com/saeid-a/FitTrackBack/internal/repository"
)

const (
	goalNotFound      = "Goal not found"
	milestoneNotFound = "Milestone not found"
	DateLayout        = "2006-01-02"
)

type goalStore interface {
	GetByID(ctx context.Context, id int64) (*models.Goal, error)
	List(ctx context.Context, filter repository.GoalListFilter, page repository.PageRequest) (models.Page[models.Goal], error)
	ListMilestones(ctx context.Context, goalID int64) ([]models.GoalMilestone, error)
}

type GoalService struct {
	db    txBeginner
	goals goalStore
	audit *AuditService
	now   func() time.Time
}

func NewGoalService(db txBeginner, goals goalStore, audit *AuditService) *GoalService {
	return &GoalService{db: db, goals: goals, audit: audit, now: time.Now}
}

type GoalInput struct {
	UserID        *int64
	GoalName      string
	MetricType    string
	TargetValue   float64
	BaselineValue *float64
	Unit          string
	StartDate     time.Time
	EndDate       *time.Time
	Status        string
}

func checkDateRange(start time.Time, end *time.Time) error {
	if end != nil && end.Before(start) {
		return apperr.InvalidState("end_date must not be before start_date")
	}
	return nil
}

func (s *GoalService) owned(ctx context.Context, actor *models.User, goalID int64) (*models.Goal, error) {
	goal, err := s.goals.GetByID(ctx, goalID)
	if err != nil {
		return nil, translate(ctx, err, goalNotFound)
	}
	if err := requireOwner(actor, goal.UserID); err != nil {
		return nil, err
	}
	return goal, nil
}

func (s *GoalService) Create(ctx context.Context, actor *models.User, input GoalInput, meta models.RequestMeta) (*models.Goal, error) {
	if input.UserID != nil && *input.UserID != actor.ID {
		return nil, apperr.Forbidden("Cannot create goal for other users")
	}
	if err := checkDateRange(input.StartDate, input.EndDate); err != nil {
		return nil, err
	}
	if input.Status == "" {
		input.Status = models.GoalStatusActive
	}

	goal := models.Goal{
		UserID:        actor.ID,
		GoalName:      input.GoalName,
		MetricType:    input.MetricType,
		TargetValue:   input.TargetValue,
		BaselineValue: input.BaselineValue,
		Unit:          input.Unit,
		StartDate:     input.StartDate,
		EndDate:       input.EndDate,
		Status:        input.Status,
	}

	var (
		created *models.Goal
		entry   *models.AuditLog
	)
	err := inTx(ctx, s.db, func(tx pgx.Tx) error {
		var err error
		created, err = repository.NewGoalRepository(tx).Create(ctx, goal)
		if err != nil {
			return err
		}
		event := actorEvent(actor, models.AuditActionCreate, "goal", created.ID, meta)
		event.New = created
		entry, err = s.audit.Record(ctx, tx, event)
		return err
	})
	if err != nil {
		return nil, translate(ctx, err, goalNotFound)
	}

	s.audit.Publish(ctx, entry)
	return created, nil
}

func (s *GoalService) List(
	ctx context.Context,
	actor *models.User,
	filter repository.GoalListFilter,
	page repository.PageRequest,
) (models.Page[models.Goal], error) {
	filter.UserID = actor.ID
	result, err := s.goals.List(ctx, filter, page)
	if err != nil {
		return models.Page[models.Goal]{}, translate(ctx, err, goalNotFound)
	}
	return result, nil
}

func (s *GoalService) Get(ctx context.Context, actor *models.User, goalID int64) (*models.GoalDetail, error) {
	goal, err := s.owned(ctx, actor, goalID)
	if err != nil {
		return nil, err
	}
	milestones, err := s.goals.ListMilestones(ctx, goalID)
	if err != nil {
		return nil, translate(ctx, err, goalNotFound)
	}
	return &models.GoalDetail{Goal: *goal, Milestones: milestones}, nil
}

// Update rejects a patch whose resulting date range would be inverted.
func (s *GoalService) Update(
	ctx context.Context,
	actor *models.User,
	goalID int64,
	patch models.GoalPatch,
	meta models.RequestMeta,
) (*models.Goal, error) {
	before, err := s.owned(ctx, actor, goalID)
	if err != nil {
		return nil, err
	}

	start, end := before.StartDate, before.EndDate
	if patch.StartDate.Set && !patch.StartDate.Null {
		if start, err = time.Parse(DateLayout, patch.StartDate.Value); err != nil {
			return nil, apperr.Validation("Validation failed", apperr.FieldError{Field: "start_date", Message: "must be a date (YYYY-MM-DD)"})
		}
	}
	if patch.EndDate.Set {
		end = nil
		if !patch.EndDate.Null {
			parsed, err := time.Parse(DateLayout, patch.EndDate.Value)
			if err != nil {
				return nil, apperr.Validation("Validation failed", apperr.FieldError{Field: "end_date", Message: "must be a date (YYYY-MM-DD)"})
			}
			end = &parsed
		}
	}
	if err := checkDateRange(start, end); err != nil {
		return nil, err
	}

	var (
		updated *models.Goal
		entry   *models.AuditLog
	)
	err = inTx(ctx, s.db, func(tx pgx.Tx) error {
		var err error
		updated, err = repository.NewGoalRepository(tx).Update(ctx, goalID, patch)
		if err != nil {
			return err
		}
		event := actorEvent(actor, models.AuditActionUpdate, "goal", goalID, meta)
		event.Old = before
		event.New = updated
		entry, err = s.audit.Record(ctx, tx, event)
		return err
	})
	if err != nil {
		return nil, translate(ctx, err, goalNotFound)
	}

	s.audit.Publish(ctx, entry)
	return updated, nil
}

func (s *GoalService) Delete(ctx context.Context, actor *models.User, goalID int64, meta models.RequestMeta) error {
	before, err := s.owned(ctx, actor, goalID)
	if err != nil {
		return err
	}

	var entry *models.AuditLog
	err = inTx(ctx, s.db, func(tx pgx.Tx) error {
		deleted, err := repository.DeleteGoalCascade(ctx, tx, goalID)
		if err != nil {
			return err
		}
		if !deleted {
			return apperr.NotFound(goalNotFound)
		}
		event := actorEvent(actor, models.AuditActionDelete, "goal", goalID, meta)
		event.Old = before
		entry, err = s.audit.Record(ctx, tx, event)
		return err
	})
	if err != nil {
		return translate(ctx, err, goalNotFound)
	}

	s.audit.Publish(ctx, entry)
	return nil
}

func (s *GoalService) AddMilestone(
	ctx context.Context,
	actor *models.User,
	goalID int64,
	milestone models.GoalMilestone,
	meta models.RequestMeta,
) (*models.GoalMilestone, error) {
	if _, err := s.owned(ctx, actor, goalID); err != nil {
		return nil, err
	}
	milestone.GoalID = goalID
	if milestone.Achieved && milestone.AchievedAt == nil {
		now := s.now().UTC()
		milestone.AchievedAt = &now
	}

	var (
		created *models.GoalMilestone
		entry   *models.AuditLog
	)
	err := inTx(ctx, s.db, func(tx pgx.Tx) error {
		var err error
		created, err = repository.NewGoalRepository(tx).AddMilestone(ctx, milestone)
		if err != nil {
			return err
		}
		event := actorEvent(actor, models.AuditActionCreate, "goal_milestone", created.ID, meta)
		event.New = created
		entry, err = s.audit.Record(ctx, tx, event)
		return err
	})
	if err != nil {
		return nil, translate(ctx, err, goalNotFound)
	}

	s.audit.Publish(ctx, entry)
	return created, nil
}

func (s *GoalService) UpdateMilestone(
	ctx context.Context,
	actor *models.User,
	goalID, milestoneID int64,
	patch models.MilestonePatch,
	meta models.RequestMeta,
) (*models.GoalMilestone, error) {
	if _, err := s.owned(ctx, actor, goalID); err != nil {
		return nil, err
	}

	var (
		updated *models.GoalMilestone
		entry   *models.AuditLog
	)
	err := inTx(ctx, s.db, func(tx pgx.Tx) error {
		repo := repository.NewGoalRepository(tx)
		before, err := repo.GetMilestone(ctx, goalID, milestoneID)
		if err != nil {
			return err
		}
		updated, err = repo.UpdateMilestone(ctx, milestoneID, patch)
		if err != nil {
			return err
		}
		event := actorEvent(actor, models.AuditActionUpdate, "goal_milestone", milestoneID, meta)
		event.Old = before
		event.New = updated
		entry, err = s.audit.Record(ctx, tx, event)
		return err
	})
	if err != nil {
		return nil, translate(ctx, err, milestoneNotFound)
	}

	s.audit.Publish(ctx, entry)
	return updated, nil
}

package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/saeid-a/FitTrackBack/internal/models"
)

const (
	goalColumns      = `id, user_id, goal_name, metric_type, target_value, baseline_value, unit, start_date, end_date, status, created_at, updated_at`
	milestoneColumns = `id, goal_id, milestone_name, milestone_value, target_date, achieved, achieved_at, created_at`
)

type GoalListFilter struct {
	UserID int64
	Status string
	Search string
}

type GoalRepository struct {
	db DBTX
}

func NewGoalRepository(db DBTX) *GoalRepository {
	return &GoalRepository{db: db}
}

func scanGoal(row pgx.Row) (models.Goal, error) {
	var g models.Goal
	err := row.Scan(
		&g.ID,
		&g.UserID,
		&g.GoalName,
		&g.MetricType,
		&g.TargetValue,
		&g.BaselineValue,
		&g.Unit,
		&g.StartDate,
		&g.EndDate,
		&g.Status,
		&g.CreatedAt,
		&g.UpdatedAt,
	)
	return g, err
}

func scanMilestone(row pgx.Row) (models.GoalMilestone, error) {
	var m models.GoalMilestone
	err := row.Scan(&m.ID, &m.GoalID, &m.MilestoneName, &m.MilestoneValue, &m.TargetDate, &m.Achieved, &m.AchievedAt, &m.CreatedAt)
	return m, err
}

func (r *GoalRepository) Create(ctx context.Context, goal models.Goal) (*models.Goal, error) {
	query := `
		INSERT INTO goals (user_id, goal_name, metric_type, target_value, baseline_value, unit, start_date, end_date, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING ` + goalColumns
	created, err := scanGoal(r.db.QueryRow(ctx, query,
		goal.UserID,
		goal.GoalName,
		goal.MetricType,
		goal.TargetValue,
		goal.BaselineValue,
		goal.Unit,
		goal.StartDate,
		goal.EndDate,
		goal.Status,
	))
	if err != nil {
		return nil, err
	}
	return &created, nil
}

func (r *GoalRepository) GetByID(ctx context.Context, id int64) (*models.Goal, error) {
	goal, err := scanGoal(r.db.QueryRow(ctx, `SELECT `+goalColumns+` FROM goals WHERE id = $1`, id))
	if err != nil {
		return nil, err
	}
	return &goal, nil
}

func (r *GoalRepository) List(ctx context.Context, filter GoalListFilter, page PageRequest) (models.Page[models.Goal], error) {
	f := NewFilter().
		Eq("user_id", filter.UserID).
		EqString("status", filter.Status).
		Search(filter.Search, "goal_name", "metric_type")
	return pagedQuery(ctx, r.db, goalColumns, "goals", f, "created_at DESC, id ASC", page, scanGoal)
}

func (r *GoalRepository) Update(ctx context.Context, id int64, patch models.GoalPatch) (*models.Goal, error) {
	var a Assignments
	SetOptional(&a, "goal_name", patch.GoalName)
	SetOptional(&a, "metric_type", patch.MetricType)
	SetOptional(&a, "target_value", patch.TargetValue)
	SetOptional(&a, "baseline_value", patch.BaselineValue)
	SetOptional(&a, "unit", patch.Unit)
	SetOptional(&a, "start_date", patch.StartDate)
	SetOptional(&a, "end_date", patch.EndDate)
	SetOptional(&a, "status", patch.Status)
	if a.Empty() {
		return r.GetByID(ctx, id)
	}
	query, args := a.Update("goals", "id", id, true, goalColumns)
	goal, err := scanGoal(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		return nil, err
	}
	return &goal, nil
}

func (r *GoalRepository) AddMilestone(ctx context.Context, milestone models.GoalMilestone) (*models.GoalMilestone, error) {
	query := `
		INSERT INTO goal_milestones (goal_id, milestone_name, milestone_value, target_date, achieved, achieved_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + milestoneColumns
	created, err := scanMilestone(r.db.QueryRow(ctx, query,
		milestone.GoalID,
		milestone.MilestoneName,
		milestone.MilestoneValue,
		milestone.TargetDate,
		milestone.Achieved,
		milestone.AchievedAt,
	))
	if err != nil {
		return nil, err
	}
	return &created, nil
}

func (r *GoalRepository) GetMilestone(ctx context.Context, goalID, milestoneID int64) (*models.GoalMilestone, error) {
	m, err := scanMilestone(r.db.QueryRow(ctx, `SELECT `+milestoneColumns+` FROM goal_milestones WHERE id = $1 AND goal_id = $2`, milestoneID, goalID))
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// UpdateMilestone stamps achieved_at when a milestone flips to achieved and
// clears it when it flips back.
func (r *GoalRepository) UpdateMilestone(ctx context.Context, milestoneID int64, patch models.MilestonePatch) (*models.GoalMilestone, error) {
	var a Assignments
	SetOptional(&a, "milestone_name", patch.MilestoneName)
	SetOptional(&a, "milestone_value", patch.MilestoneValue)
	SetOptional(&a, "target_date", patch.TargetDate)
	if patch.Achieved.Set && !patch.Achieved.Null {
		a.Set("achieved", patch.Achieved.Value)
		if patch.Achieved.Value {
			a.sets = append(a.sets, "achieved_at = COALESCE(achieved_at, NOW())")
		} else {
			a.sets = append(a.sets, "achieved_at = NULL")
		}
	}
	if a.Empty() {
		m, err := scanMilestone(r.db.QueryRow(ctx, `SELECT `+milestoneColumns+` FROM goal_milestones WHERE id = $1`, milestoneID))
		if err != nil {
			return nil, err
		}
		return &m, nil
	}
	query, args := a.Update("goal_milestones", "id", milestoneID, false, milestoneColumns)
	m, err := scanMilestone(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *GoalRepository) ListMilestones(ctx context.Context, goalID int64) ([]models.GoalMilestone, error) {
	return listChildren(ctx, r.db, `SELECT `+milestoneColumns+` FROM goal_milestones WHERE goal_id = $1 ORDER BY milestone_value ASC, id ASC`, goalID, scanMilestone)
}

package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/saeid-a/FitTrackBack/internal/models"
)

const userColumns = `u.id, u.tenant_id, u.email, u.password_hash, u.is_admin, u.is_active, u.last_login, u.created_at, u.updated_at`

type UserRepository struct {
	db DBTX
}

func NewUserRepository(db DBTX) *UserRepository {
	return &UserRepository{db: db}
}

type UserListFilter struct {
	TenantID *int64
	IsActive *bool
	IsAdmin  *bool
	Search   string
}

func scanUser(row pgx.Row) (*models.User, error) {
	var user models.User
	err := row.Scan(
		&user.ID,
		&user.TenantID,
		&user.Email,
		&user.PasswordHash,
		&user.IsAdmin,
		&user.IsActive,
		&user.LastLogin,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) CreateUser(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (tenant_id, email, password_hash, is_admin, is_active)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at
	`
	return r.db.QueryRow(ctx, query, user.TenantID, user.Email, user.PasswordHash, user.IsAdmin, user.IsActive).
		Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users u WHERE u.email = $1`
	return scanUser(r.db.QueryRow(ctx, query, email))
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users u WHERE u.id = $1`
	return scanUser(r.db.QueryRow(ctx, query, id))
}

func (r *UserRepository) GetByIDForUpdate(ctx context.Context, id int64) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users u WHERE u.id = $1 FOR UPDATE`
	return scanUser(r.db.QueryRow(ctx, query, id))
}

func (r *UserRepository) AnyAdmin(ctx context.Context) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE is_admin)`).Scan(&exists)
	return exists, err
}

func (r *UserRepository) UpdateLastLogin(ctx context.Context, id int64, at time.Time) error {
	_, err := r.db.Exec(ctx, `UPDATE users SET last_login = $2 WHERE id = $1`, id, at)
	return err
}

func (r *UserRepository) UpdatePasswordHash(ctx context.Context, id int64, hash string) error {
	_, err := r.db.Exec(ctx, `UPDATE users SET password_hash = $2, updated_at = NOW() WHERE id = $1`, id, hash)
	return err
}

func (r *UserRepository) SetActive(ctx context.Context, id int64, active bool) (*models.User, error) {
	query := `
		UPDATE users u
		SET is_active = $2, updated_at = NOW()
		WHERE u.id = $1
		RETURNING ` + userColumns
	return scanUser(r.db.QueryRow(ctx, query, id, active))
}

// List matches search against the email and the profile's full name.
func (r *UserRepository) List(
	ctx context.Context,
	filter UserListFilter,
	page PageRequest,
) (models.Page[models.User], error) {
	f := NewFilter().
		EqInt64("u.tenant_id", filter.TenantID).
		EqBool("u.is_active", filter.IsActive).
		EqBool("u.is_admin", filter.IsAdmin).
		Search(filter.Search, "u.email", "p.full_name")

	return pagedQuery(ctx, r.db,
		userColumns,
		"users u LEFT JOIN user_profiles p ON p.user_id = u.id",
		f,
		"u.created_at DESC, u.id ASC",
		page,
		func(row pgx.Row) (models.User, error) {
			user, err := scanUser(row)
			if err != nil {
				return models.User{}, err
			}
			return *user, nil
		},
	)
}

func (r *UserRepository) Stats(ctx context.Context) (*models.UserStats, error) {
	var stats models.UserStats
	err := r.db.QueryRow(ctx, `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE is_active),
			COUNT(*) FILTER (WHERE NOT is_active),
			COUNT(*) FILTER (WHERE is_admin),
			COUNT(*) FILTER (WHERE NOT is_admin)
		FROM users
	`).Scan(&stats.TotalUsers, &stats.ActiveUsers, &stats.InactiveUsers, &stats.AdminUsers, &stats.RegularUsers)
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, `
		SELECT t.id, t.name, COUNT(u.id)
		FROM tenants t
		LEFT JOIN users u ON u.tenant_id = t.id
		GROUP BY t.id, t.name
		ORDER BY t.id ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	stats.UsersPerTenant = make([]models.TenantUserCnt, 0)
	for rows.Next() {
		var row models.TenantUserCnt
		if err := rows.Scan(&row.TenantID, &row.TenantName, &row.UserCount); err != nil {
			return nil, err
		}
		stats.UsersPerTenant = append(stats.UsersPerTenant, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &stats, nil
}

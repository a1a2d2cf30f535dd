package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/saeid-a/FitTrackBack/internal/models"
)

const (
	tenantColumns       = `id, name, type, created_at, updated_at`
	tenantConfigColumns = `id, tenant_id, branding, feature_flags, user_policies, updated_at`
)

type TenantRepository struct {
	db DBTX
}

func NewTenantRepository(db DBTX) *TenantRepository {
	return &TenantRepository{db: db}
}

type TenantListFilter struct {
	Type   string
	Search string
}

func scanTenant(row pgx.Row) (models.Tenant, error) {
	var tenant models.Tenant
	err := row.Scan(&tenant.ID, &tenant.Name, &tenant.Type, &tenant.CreatedAt, &tenant.UpdatedAt)
	return tenant, err
}

func scanTenantConfig(row pgx.Row) (*models.TenantConfig, error) {
	var cfg models.TenantConfig
	err := row.Scan(&cfg.ID, &cfg.TenantID, &cfg.Branding, &cfg.FeatureFlags, &cfg.UserPolicies, &cfg.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (r *TenantRepository) Create(ctx context.Context, name, tenantType string) (*models.Tenant, error) {
	query := `
		INSERT INTO tenants (name, type)
		VALUES ($1, $2)
		RETURNING ` + tenantColumns
	tenant, err := scanTenant(r.db.QueryRow(ctx, query, name, tenantType))
	if err != nil {
		return nil, err
	}
	return &tenant, nil
}

// EnsureByName inserts the tenant unless one with that name exists.
func (r *TenantRepository) EnsureByName(ctx context.Context, name, tenantType string) (*models.Tenant, bool, error) {
	query := `
		INSERT INTO tenants (name, type)
		VALUES ($1, $2)
		ON CONFLICT (name) DO NOTHING
		RETURNING ` + tenantColumns
	tenant, err := scanTenant(r.db.QueryRow(ctx, query, name, tenantType))
	if err == nil {
		return &tenant, true, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, false, err
	}
	existing, err := r.GetByName(ctx, name)
	return existing, false, err
}

func (r *TenantRepository) GetByID(ctx context.Context, id int64) (*models.Tenant, error) {
	tenant, err := scanTenant(r.db.QueryRow(ctx, `SELECT `+tenantColumns+` FROM tenants WHERE id = $1`, id))
	if err != nil {
		return nil, err
	}
	return &tenant, nil
}

func (r *TenantRepository) GetByName(ctx context.Context, name string) (*models.Tenant, error) {
	tenant, err := scanTenant(r.db.QueryRow(ctx, `SELECT `+tenantColumns+` FROM tenants WHERE name = $1`, name))
	if err != nil {
		return nil, err
	}
	return &tenant, nil
}

func (r *TenantRepository) First(ctx context.Context) (*models.Tenant, error) {
	tenant, err := scanTenant(r.db.QueryRow(ctx, `SELECT `+tenantColumns+` FROM tenants ORDER BY id ASC LIMIT 1`))
	if err != nil {
		return nil, err
	}
	return &tenant, nil
}

func (r *TenantRepository) List(
	ctx context.Context,
	filter TenantListFilter,
	page PageRequest,
) (models.Page[models.Tenant], error) {
	f := NewFilter().EqString("type", filter.Type).Search(filter.Search, "name")
	return pagedQuery(ctx, r.db, tenantColumns, "tenants", f, "created_at DESC, id ASC", page, scanTenant)
}

func (r *TenantRepository) CreateConfig(ctx context.Context, tenantID int64) (*models.TenantConfig, error) {
	query := `
		INSERT INTO tenant_configs (tenant_id)
		VALUES ($1)
		ON CONFLICT (tenant_id) DO UPDATE SET tenant_id = EXCLUDED.tenant_id
		RETURNING ` + tenantConfigColumns
	return scanTenantConfig(r.db.QueryRow(ctx, query, tenantID))
}

func (r *TenantRepository) GetConfig(ctx context.Context, tenantID int64) (*models.TenantConfig, error) {
	return scanTenantConfig(r.db.QueryRow(ctx, `SELECT `+tenantConfigColumns+` FROM tenant_configs WHERE tenant_id = $1`, tenantID))
}

func (r *TenantRepository) UpdateConfig(
	ctx context.Context,
	tenantID int64,
	patch models.TenantConfigPatch,
) (*models.TenantConfig, error) {
	var a Assignments
	SetOptional(&a, "branding", patch.Branding)
	SetOptional(&a, "feature_flags", patch.FeatureFlags)
	SetOptional(&a, "user_policies", patch.UserPolicies)
	if a.Empty() {
		return r.GetConfig(ctx, tenantID)
	}
	query, args := a.Update("tenant_configs", "tenant_id", tenantID, true, tenantConfigColumns)
	return scanTenantConfig(r.db.QueryRow(ctx, query, args...))
}

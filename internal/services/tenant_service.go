package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	gocache "github.com/patrickmn/go-cache"
	"github.com/saeid-a/FitTrackBack/internal/apperr"
	"github.com/saeid-a/FitTrackBack/internal/auth"
	"github.com/saeid-a/FitTrackBack/internal/metrics"
	"github.com/saeid-a/FitTrackBack/internal/models"
	"github.com/saeid-a/FitTrackBack/internal/repository"
	"golang.org/x/sync/singleflight"
)

const (
	tenantNotFound       = "Tenant not found"
	tenantConfigNotFound = "Tenant config not found"
)

type tenantStore interface {
	GetByID(ctx context.Context, id int64) (*models.Tenant, error)
	List(ctx context.Context, filter repository.TenantListFilter, page repository.PageRequest) (models.Page[models.Tenant], error)
	GetConfig(ctx context.Context, tenantID int64) (*models.TenantConfig, error)
}

// TenantService serves tenant reads from a TTL cache; every write through
// this service invalidates the affected keys.
type TenantService struct {
	db      txBeginner
	tenants tenantStore
	audit   *AuditService
	metrics *metrics.Metrics
	cache   *gocache.Cache
	group   singleflight.Group
}

func NewTenantService(
	db txBeginner,
	tenants tenantStore,
	audit *AuditService,
	m *metrics.Metrics,
	ttl time.Duration,
) *TenantService {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &TenantService{
		db:      db,
		tenants: tenants,
		audit:   audit,
		metrics: m,
		cache:   gocache.New(ttl, 2*ttl),
	}
}

func tenantKey(id int64) string       { return fmt.Sprintf("tenant:%d", id) }
func tenantConfigKey(id int64) string { return fmt.Sprintf("tenant-config:%d", id) }

// cached returns the value under key, loading it at most once across
// concurrent callers on a miss.
func cached[T any](ctx context.Context, s *TenantService, key string, load func(context.Context) (*T, error)) (*T, error) {
	if value, ok := s.cache.Get(key); ok {
		s.metrics.TenantCache(true)
		return value.(*T), nil
	}
	s.metrics.TenantCache(false)

	value, err, _ := s.group.Do(key, func() (any, error) {
		loaded, err := load(ctx)
		if err != nil {
			return nil, err
		}
		s.cache.SetDefault(key, loaded)
		return loaded, nil
	})
	if err != nil {
		return nil, err
	}
	return value.(*T), nil
}

func (s *TenantService) Get(ctx context.Context, id int64) (*models.Tenant, error) {
	tenant, err := cached(ctx, s, tenantKey(id), func(ctx context.Context) (*models.Tenant, error) {
		return s.tenants.GetByID(ctx, id)
	})
	if err != nil {
		return nil, translate(ctx, err, tenantNotFound)
	}
	return tenant, nil
}

func (s *TenantService) GetConfig(ctx context.Context, tenantID int64) (*models.TenantConfig, error) {
	if _, err := s.Get(ctx, tenantID); err != nil {
		return nil, err
	}
	cfg, err := cached(ctx, s, tenantConfigKey(tenantID), func(ctx context.Context) (*models.TenantConfig, error) {
		return s.tenants.GetConfig(ctx, tenantID)
	})
	if err != nil {
		return nil, translate(ctx, err, tenantConfigNotFound)
	}
	return cfg, nil
}

func (s *TenantService) List(
	ctx context.Context,
	filter repository.TenantListFilter,
	page repository.PageRequest,
) (models.Page[models.Tenant], error) {
	result, err := s.tenants.List(ctx, filter, page)
	if err != nil {
		return models.Page[models.Tenant]{}, translate(ctx, err, tenantNotFound)
	}
	return result, nil
}

// Create inserts the tenant together with its default config. Like the
// config update it is admin-only and checks that itself.
func (s *TenantService) Create(
	ctx context.Context,
	actor *models.User,
	name, tenantType string,
	meta models.RequestMeta,
) (*models.TenantDetail, error) {
	if err := auth.RequireAdmin(actor); err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)

	var (
		detail models.TenantDetail
		entry  *models.AuditLog
	)
	err := inTx(ctx, s.db, func(tx pgx.Tx) error {
		repo := repository.NewTenantRepository(tx)
		tenant, err := repo.Create(ctx, name, tenantType)
		if err != nil {
			return err
		}
		cfg, err := repo.CreateConfig(ctx, tenant.ID)
		if err != nil {
			return err
		}
		detail = models.TenantDetail{Tenant: *tenant, Config: cfg}

		event := actorEvent(actor, models.AuditActionCreate, "tenant", tenant.ID, meta)
		event.New = detail
		entry, err = s.audit.Record(ctx, tx, event)
		return err
	})
	if err != nil {
		if isUniqueViolation(err) {
			return nil, apperr.Conflict("Tenant name already exists")
		}
		return nil, translate(ctx, err, tenantNotFound)
	}

	s.audit.Publish(ctx, entry)
	return &detail, nil
}

func (s *TenantService) UpdateConfig(
	ctx context.Context,
	actor *models.User,
	tenantID int64,
	patch models.TenantConfigPatch,
	meta models.RequestMeta,
) (*models.TenantConfig, error) {
	if err := auth.RequireAdmin(actor); err != nil {
		return nil, err
	}
	var (
		updated *models.TenantConfig
		entry   *models.AuditLog
	)
	err := inTx(ctx, s.db, func(tx pgx.Tx) error {
		repo := repository.NewTenantRepository(tx)
		before, err := repo.GetConfig(ctx, tenantID)
		if err != nil {
			return err
		}
		updated, err = repo.UpdateConfig(ctx, tenantID, patch)
		if err != nil {
			return err
		}

		event := actorEvent(actor, models.AuditActionUpdate, "tenant_config", updated.ID, meta)
		event.Old = before
		event.New = updated
		entry, err = s.audit.Record(ctx, tx, event)
		return err
	})
	if err != nil {
		return nil, translate(ctx, err, tenantConfigNotFound)
	}

	s.cache.Delete(tenantConfigKey(tenantID))
	s.audit.Publish(ctx, entry)
	return updated, nil
}

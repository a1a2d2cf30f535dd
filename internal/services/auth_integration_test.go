//go:build integration

package services

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/saeid-a/FitTrackBack/internal/apperr"
	"github.com/saeid-a/FitTrackBack/internal/auth"
	"github.com/saeid-a/FitTrackBack/internal/models"
	"github.com/saeid-a/FitTrackBack/internal/repository"
	"github.com/saeid-a/FitTrackBack/internal/testsupport"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterAndLoginAgainstPostgres(t *testing.T) {
	ctx := context.Background()
	pool := testsupport.StartPostgres(ctx, t)
	tenantID := testsupport.SeedTenant(ctx, t, pool, "Public")

	users := repository.NewUserRepository(pool)
	logs := repository.NewAuditRepository(pool)
	audit := NewAuditService(logs, nil, nil)
	tenants := NewTenantService(pool, repository.NewTenantRepository(pool), audit, nil, time.Minute)
	hasher := auth.NewPasswordHasher(auth.Params{Memory: 1024, Time: 1, Parallelism: 1})
	tokens, err := auth.NewTokenService("integration-secret", "HS256", time.Hour)
	require.NoError(t, err)
	svc := NewAuthService(pool, users, tenants, hasher, tokens, audit)

	meta := models.RequestMeta{IPAddress: "127.0.0.1", UserAgent: "go-test"}
	detail, err := svc.Register(ctx, RegisterInput{Email: "New.User@Example.com", Password: "s3cret-pass", TenantID: tenantID}, meta)
	require.NoError(t, err)
	assert.Equal(t, "new.user@example.com", detail.Email)
	assert.False(t, detail.IsAdmin)
	require.NotNil(t, detail.Profile)
	require.NotNil(t, detail.NotificationPreference)
	assert.True(t, detail.NotificationPreference.EmailEnabled)

	_, err = svc.Register(ctx, RegisterInput{Email: "new.user@example.com", Password: "other", TenantID: tenantID}, meta)
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, apperr.Status(err))

	result, err := svc.Login(ctx, "NEW.USER@example.com", "s3cret-pass", meta)
	require.NoError(t, err)
	assert.Equal(t, "bearer", result.TokenType)
	require.NotNil(t, result.User.LastLogin)

	claims, err := tokens.Decode(result.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, detail.ID, claims.UserID)
	assert.Equal(t, tenantID, claims.TenantID)

	stored, err := users.GetByID(ctx, detail.ID)
	require.NoError(t, err)
	assert.NotNil(t, stored.LastLogin)

	history, err := logs.List(ctx, repository.AuditListFilter{UserID: &detail.ID}, repository.PageRequest{Page: 1, PageSize: 10})
	require.NoError(t, err)
	assert.Equal(t, 2, history.TotalItems)
	assert.Equal(t, models.AuditActionLogin, history.Items[0].ActionType)
}

func TestLoginRehashesWeakerVerifier(t *testing.T) {
	ctx := context.Background()
	pool := testsupport.StartPostgres(ctx, t)
	tenantID := testsupport.SeedTenant(ctx, t, pool, "Public")

	users := repository.NewUserRepository(pool)
	weak := auth.NewPasswordHasher(auth.Params{Memory: 512, Time: 1, Parallelism: 1})
	hash, err := weak.Hash("s3cret-pass")
	require.NoError(t, err)
	user := &models.User{TenantID: tenantID, Email: "old@example.com", PasswordHash: hash, IsActive: true}
	require.NoError(t, users.CreateUser(ctx, user))

	audit := NewAuditService(repository.NewAuditRepository(pool), nil, nil)
	tenants := NewTenantService(pool, repository.NewTenantRepository(pool), audit, nil, time.Minute)
	tokens, err := auth.NewTokenService("integration-secret", "HS256", time.Hour)
	require.NoError(t, err)
	current := auth.NewPasswordHasher(auth.Params{Memory: 1024, Time: 1, Parallelism: 1})
	svc := NewAuthService(pool, users, tenants, current, tokens, audit)

	_, err = svc.Login(ctx, "old@example.com", "s3cret-pass", models.RequestMeta{})
	require.NoError(t, err)

	stored, err := users.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.NotEqual(t, hash, stored.PasswordHash)
	assert.False(t, current.NeedsRehash(stored.PasswordHash))
	assert.True(t, current.Verify("s3cret-pass", stored.PasswordHash))
}

package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/saeid-a/FitTrackBack/internal/apperr"
	"github.com/saeid-a/FitTrackBack/internal/auth"
	"github.com/saeid-a/FitTrackBack/internal/logger"
	"github.com/saeid-a/FitTrackBack/internal/models"
	"github.com/saeid-a/FitTrackBack/internal/repository"
)

const incorrectCredentials = "Incorrect email or password"

type credentialStore interface {
	GetByEmail(ctx context.Context, email string) (*models.User, error)
}

type tenantLookup interface {
	Get(ctx context.Context, id int64) (*models.Tenant, error)
}

type AuthService struct {
	db      txBeginner
	users   credentialStore
	tenants tenantLookup
	hasher  *auth.PasswordHasher
	tokens  *auth.TokenService
	audit   *AuditService

	// burned on unknown emails so both failure paths cost one hash
	dummyVerifier string
}

func NewAuthService(
	db txBeginner,
	users credentialStore,
	tenants tenantLookup,
	hasher *auth.PasswordHasher,
	tokens *auth.TokenService,
	audit *AuditService,
) *AuthService {
	dummy, _ := hasher.Hash("not-a-real-password")
	return &AuthService{
		db:            db,
		users:         users,
		tenants:       tenants,
		hasher:        hasher,
		tokens:        tokens,
		audit:         audit,
		dummyVerifier: dummy,
	}
}

type RegisterInput struct {
	Email    string
	Password string
	TenantID int64
}

type LoginResult struct {
	AccessToken string      `json:"access_token"`
	TokenType   string      `json:"token_type"`
	ExpiresAt   time.Time   `json:"expires_at"`
	User        models.User `json:"user"`
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates the user with its default profile and notification
// preferences in one transaction. Self-registration never grants admin.
func (s *AuthService) Register(ctx context.Context, input RegisterInput, meta models.RequestMeta) (*models.UserDetail, error) {
	email := normalizeEmail(input.Email)

	existing, err := s.users.GetByEmail(ctx, email)
	if err == nil && existing != nil {
		return nil, apperr.Conflict("Email already registered")
	}
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, translate(ctx, err, "User not found")
	}

	if _, err := s.tenants.Get(ctx, input.TenantID); err != nil {
		return nil, err
	}

	hashed, err := s.hasher.Hash(input.Password)
	if err != nil {
		if errors.Is(err, auth.ErrEmptyPassword) {
			return nil, apperr.Validation("Validation failed", apperr.FieldError{Field: "password", Message: "cannot be blank"})
		}
		return nil, translate(ctx, err, "")
	}

	user := &models.User{
		TenantID:     input.TenantID,
		Email:        email,
		PasswordHash: hashed,
		IsActive:     true,
	}
	var (
		detail models.UserDetail
		entry  *models.AuditLog
	)
	err = inTx(ctx, s.db, func(tx pgx.Tx) error {
		if err := repository.NewUserRepository(tx).CreateUser(ctx, user); err != nil {
			return err
		}
		profile, err := repository.NewUserProfileRepository(tx).CreateDefault(ctx, user.ID)
		if err != nil {
			return err
		}
		prefs, err := repository.NewNotificationRepository(tx).CreateDefault(ctx, user.ID)
		if err != nil {
			return err
		}
		detail = models.UserDetail{User: *user, Profile: profile, NotificationPreference: prefs}

		event := actorEvent(user, models.AuditActionRegister, "user", user.ID, meta)
		event.New = user
		entry, err = s.audit.Record(ctx, tx, event)
		return err
	})
	if err != nil {
		if isUniqueViolation(err) {
			return nil, apperr.Conflict("Email already registered")
		}
		return nil, translate(ctx, err, "User not found")
	}

	logger.From(ctx).Info("user registered", logger.UserID(user.ID), logger.TenantID(user.TenantID))
	s.audit.Publish(ctx, entry)
	return &detail, nil
}

// Login answers unknown emails and wrong passwords identically.
func (s *AuthService) Login(ctx context.Context, email, password string, meta models.RequestMeta) (*LoginResult, error) {
	user, err := s.users.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			s.hasher.Verify(password, s.dummyVerifier)
			return nil, apperr.Unauthenticated(incorrectCredentials)
		}
		return nil, translate(ctx, err, "User not found")
	}
	if !s.hasher.Verify(password, user.PasswordHash) {
		return nil, apperr.Unauthenticated(incorrectCredentials)
	}
	if !user.IsActive {
		return nil, apperr.InvalidState("Inactive user")
	}

	token, expiresAt, err := s.tokens.Issue(user.ID, user.TenantID, map[string]any{"is_admin": user.IsAdmin})
	if err != nil {
		return nil, translate(ctx, err, "")
	}

	now := time.Now().UTC()
	var entry *models.AuditLog
	err = inTx(ctx, s.db, func(tx pgx.Tx) error {
		users := repository.NewUserRepository(tx)
		if err := users.UpdateLastLogin(ctx, user.ID, now); err != nil {
			return err
		}
		if s.hasher.NeedsRehash(user.PasswordHash) {
			rehashed, err := s.hasher.Hash(password)
			if err != nil {
				return err
			}
			if err := users.UpdatePasswordHash(ctx, user.ID, rehashed); err != nil {
				return err
			}
		}
		entry, err = s.audit.Record(ctx, tx, actorEvent(user, models.AuditActionLogin, "user", user.ID, meta))
		return err
	})
	if err != nil {
		return nil, translate(ctx, err, "User not found")
	}
	user.LastLogin = &now

	s.audit.Publish(ctx, entry)
	return &LoginResult{
		AccessToken: token,
		TokenType:   "bearer",
		ExpiresAt:   expiresAt,
		User:        *user,
	}, nil
}

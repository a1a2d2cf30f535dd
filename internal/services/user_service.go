package services

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/saeid-a/FitTrackBack/internal/models"
	"github.com/saeid-a/FitTrackBack/internal/repository"
)

const (
	profileNotFound       = "Profile not found"
	notificationsNotFound = "Notification preferences not found"
)

type profileReader interface {
	GetByUserID(ctx context.Context, userID int64) (*models.UserProfile, error)
}

type notificationReader interface {
	GetByUserID(ctx context.Context, userID int64) (*models.NotificationPreference, error)
}

type consentLister interface {
	ListByUser(ctx context.Context, userID int64, consentType string, page repository.PageRequest) (models.Page[models.UserConsent], error)
}

// UserService is the self-service surface: every method acts on the
// authenticated user only.
type UserService struct {
	db            txBeginner
	profiles      profileReader
	notifications notificationReader
	consents      consentLister
	audit         *AuditService
	now           func() time.Time
}

func NewUserService(
	db txBeginner,
	profiles profileReader,
	notifications notificationReader,
	consents consentLister,
	audit *AuditService,
) *UserService {
	return &UserService{
		db:            db,
		profiles:      profiles,
		notifications: notifications,
		consents:      consents,
		audit:         audit,
		now:           time.Now,
	}
}

func (s *UserService) Me(ctx context.Context, actor *models.User) (*models.UserDetail, error) {
	return userDetail(ctx, actor, s.profiles, s.notifications)
}

// userDetail attaches the profile and notification rows. Either may be
// missing for accounts created outside registration; any other read
// failure is returned.
func userDetail(
	ctx context.Context,
	user *models.User,
	profiles profileReader,
	notifications notificationReader,
) (*models.UserDetail, error) {
	detail := &models.UserDetail{User: *user}

	profile, err := profiles.GetByUserID(ctx, user.ID)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, translate(ctx, err, profileNotFound)
	}
	detail.Profile = profile

	prefs, err := notifications.GetByUserID(ctx, user.ID)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, translate(ctx, err, notificationsNotFound)
	}
	detail.NotificationPreference = prefs
	return detail, nil
}

func (s *UserService) UpdateProfile(
	ctx context.Context,
	actor *models.User,
	patch models.ProfilePatch,
	meta models.RequestMeta,
) (*models.UserProfile, error) {
	var (
		updated *models.UserProfile
		entry   *models.AuditLog
	)
	err := inTx(ctx, s.db, func(tx pgx.Tx) error {
		repo := repository.NewUserProfileRepository(tx)
		before, err := repo.GetByUserID(ctx, actor.ID)
		if err != nil {
			return err
		}
		updated, err = repo.Update(ctx, actor.ID, patch)
		if err != nil {
			return err
		}

		event := actorEvent(actor, models.AuditActionUpdate, "user_profile", updated.ID, meta)
		event.Old = before
		event.New = updated
		entry, err = s.audit.Record(ctx, tx, event)
		return err
	})
	if err != nil {
		return nil, translate(ctx, err, profileNotFound)
	}

	s.audit.Publish(ctx, entry)
	return updated, nil
}

func (s *UserService) Notifications(ctx context.Context, actor *models.User) (*models.NotificationPreference, error) {
	prefs, err := s.notifications.GetByUserID(ctx, actor.ID)
	if err != nil {
		return nil, translate(ctx, err, notificationsNotFound)
	}
	return prefs, nil
}

func (s *UserService) UpdateNotifications(
	ctx context.Context,
	actor *models.User,
	patch models.NotificationPatch,
	meta models.RequestMeta,
) (*models.NotificationPreference, error) {
	var (
		updated *models.NotificationPreference
		entry   *models.AuditLog
	)
	err := inTx(ctx, s.db, func(tx pgx.Tx) error {
		repo := repository.NewNotificationRepository(tx)
		before, err := repo.GetByUserID(ctx, actor.ID)
		if err != nil {
			return err
		}
		updated, err = repo.Update(ctx, actor.ID, patch)
		if err != nil {
			return err
		}

		event := actorEvent(actor, models.AuditActionUpdate, "notification_preference", updated.ID, meta)
		event.Old = before
		event.New = updated
		entry, err = s.audit.Record(ctx, tx, event)
		return err
	})
	if err != nil {
		return nil, translate(ctx, err, notificationsNotFound)
	}

	s.audit.Publish(ctx, entry)
	return updated, nil
}

type ConsentInput struct {
	ConsentType string
	Granted     bool
	Version     string
}

// RecordConsent appends a consent event. A grant stamps granted_at, a
// refusal stamps revoked_at; earlier events stay as they were.
func (s *UserService) RecordConsent(
	ctx context.Context,
	actor *models.User,
	input ConsentInput,
	meta models.RequestMeta,
) (*models.UserConsent, error) {
	now := s.now().UTC()
	consent := models.UserConsent{
		UserID:      actor.ID,
		ConsentType: input.ConsentType,
		Granted:     input.Granted,
		Version:     input.Version,
	}
	if input.Granted {
		consent.GrantedAt = &now
	} else {
		consent.RevokedAt = &now
	}

	var (
		created *models.UserConsent
		entry   *models.AuditLog
	)
	err := inTx(ctx, s.db, func(tx pgx.Tx) error {
		var err error
		created, err = repository.NewConsentRepository(tx).Create(ctx, consent)
		if err != nil {
			return err
		}

		event := actorEvent(actor, models.AuditActionCreate, "user_consent", created.ID, meta)
		event.New = created
		entry, err = s.audit.Record(ctx, tx, event)
		return err
	})
	if err != nil {
		return nil, translate(ctx, err, "Consent not found")
	}

	s.audit.Publish(ctx, entry)
	return created, nil
}

func (s *UserService) ListConsents(
	ctx context.Context,
	actor *models.User,
	consentType string,
	page repository.PageRequest,
) (models.Page[models.UserConsent], error) {
	result, err := s.consents.ListByUser(ctx, actor.ID, consentType, page)
	if err != nil {
		return models.Page[models.UserConsent]{}, translate(ctx, err, "Consent not found")
	}
	return result, nil
}

package services

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/saeid-a/FitTrackBack/internal/apperr"
	"github.com/saeid-a/FitTrackBack/internal/auth"
	"github.com/saeid-a/FitTrackBack/internal/logger"
	"github.com/saeid-a/FitTrackBack/internal/models"
	"github.com/saeid-a/FitTrackBack/internal/repository"
)

const userNotFound = "User not found"

type userDirectory interface {
	GetByID(ctx context.Context, id int64) (*models.User, error)
	List(ctx context.Context, filter repository.UserListFilter, page repository.PageRequest) (models.Page[models.User], error)
	Stats(ctx context.Context) (*models.UserStats, error)
}

// AdminService covers user management. Callers have already passed the
// admin gate; each method re-checks it so the service is safe on its own.
type AdminService struct {
	db            txBeginner
	users         userDirectory
	profiles      profileReader
	notifications notificationReader
	storage       MediaStorage
	audit         *AuditService
}

func NewAdminService(
	db txBeginner,
	users userDirectory,
	profiles profileReader,
	notifications notificationReader,
	storage MediaStorage,
	audit *AuditService,
) *AdminService {
	return &AdminService{
		db:            db,
		users:         users,
		profiles:      profiles,
		notifications: notifications,
		storage:       storage,
		audit:         audit,
	}
}

func (s *AdminService) ListUsers(
	ctx context.Context,
	actor *models.User,
	filter repository.UserListFilter,
	page repository.PageRequest,
) (models.Page[models.User], error) {
	if err := auth.RequireAdmin(actor); err != nil {
		return models.Page[models.User]{}, err
	}
	result, err := s.users.List(ctx, filter, page)
	if err != nil {
		return models.Page[models.User]{}, translate(ctx, err, userNotFound)
	}
	return result, nil
}

func (s *AdminService) GetUser(ctx context.Context, actor *models.User, userID int64) (*models.UserDetail, error) {
	if err := auth.RequireAdmin(actor); err != nil {
		return nil, err
	}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, translate(ctx, err, userNotFound)
	}
	return userDetail(ctx, user, s.profiles, s.notifications)
}

func (s *AdminService) Activate(ctx context.Context, actor *models.User, userID int64, meta models.RequestMeta) (*models.User, error) {
	return s.setActive(ctx, actor, userID, true, meta)
}

// Deactivate refuses to lock the acting admin out of their own account.
func (s *AdminService) Deactivate(ctx context.Context, actor *models.User, userID int64, meta models.RequestMeta) (*models.User, error) {
	return s.setActive(ctx, actor, userID, false, meta)
}

func (s *AdminService) setActive(
	ctx context.Context,
	actor *models.User,
	userID int64,
	active bool,
	meta models.RequestMeta,
) (*models.User, error) {
	if err := auth.RequireAdmin(actor); err != nil {
		return nil, err
	}
	action := models.AuditActionActivate
	if !active {
		action = models.AuditActionDeactivate
		if actor.ID == userID {
			return nil, apperr.InvalidState("Cannot deactivate your own account")
		}
	}

	var (
		updated *models.User
		entry   *models.AuditLog
	)
	err := inTx(ctx, s.db, func(tx pgx.Tx) error {
		repo := repository.NewUserRepository(tx)
		before, err := repo.GetByIDForUpdate(ctx, userID)
		if err != nil {
			return err
		}
		updated, err = repo.SetActive(ctx, userID, active)
		if err != nil {
			return err
		}
		event := actorEvent(actor, action, "user", userID, meta)
		event.Old = before
		event.New = updated
		entry, err = s.audit.Record(ctx, tx, event)
		return err
	})
	if err != nil {
		return nil, translate(ctx, err, userNotFound)
	}

	s.audit.Publish(ctx, entry)
	return updated, nil
}

// DeleteUser removes the account and everything it owns in one
// transaction. Audit history is kept.
func (s *AdminService) DeleteUser(ctx context.Context, actor *models.User, userID int64, meta models.RequestMeta) error {
	if err := auth.RequireAdmin(actor); err != nil {
		return err
	}
	if actor.ID == userID {
		return apperr.InvalidState("Cannot delete your own account")
	}

	var (
		mediaURLs []string
		entry     *models.AuditLog
	)
	err := inTx(ctx, s.db, func(tx pgx.Tx) error {
		before, err := repository.NewUserRepository(tx).GetByIDForUpdate(ctx, userID)
		if err != nil {
			return err
		}
		if mediaURLs, err = repository.WorkoutMediaURLs(ctx, tx, userID, 0); err != nil {
			return err
		}
		if _, err := repository.DeleteUserCascade(ctx, tx, userID); err != nil {
			return err
		}
		event := actorEvent(actor, models.AuditActionDelete, "user", userID, meta)
		event.Old = before
		entry, err = s.audit.Record(ctx, tx, event)
		return err
	})
	if err != nil {
		return translate(ctx, err, userNotFound)
	}

	if s.storage != nil {
		for _, url := range mediaURLs {
			if err := s.storage.Delete(ctx, url); err != nil {
				logger.From(ctx).Warn("media cleanup failed", logger.UserID(userID), logger.Err(err))
			}
		}
	}
	s.audit.Publish(ctx, entry)
	return nil
}

func (s *AdminService) Stats(ctx context.Context, actor *models.User) (*models.UserStats, error) {
	if err := auth.RequireAdmin(actor); err != nil {
		return nil, err
	}
	stats, err := s.users.Stats(ctx)
	if err != nil {
		return nil, translate(ctx, err, userNotFound)
	}
	return stats, nil
}

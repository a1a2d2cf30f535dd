package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/saeid-a/FitTrackBack/internal/apperr"
	"github.com/saeid-a/FitTrackBack/internal/models"
)

const credentialsMessage = "Could not validate credentials"

type UserLoader interface {
	GetByID(ctx context.Context, id int64) (*models.User, error)
}

// Guard turns an Authorization header into an active user. It keeps no
// state between calls.
type Guard struct {
	tokens *TokenService
	users  UserLoader
}

func NewGuard(tokens *TokenService, users UserLoader) *Guard {
	return &Guard{tokens: tokens, users: users}
}

// BearerToken extracts the credential from an "Authorization: Bearer x" header.
func BearerToken(header string) (string, error) {
	header = strings.TrimSpace(header)
	if header == "" {
		return "", ErrMissingToken
	}
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
		return "", ErrInvalidToken
	}
	return strings.TrimSpace(token), nil
}

func (g *Guard) Authenticate(ctx context.Context, header string) (*models.User, *Claims, error) {
	token, err := BearerToken(header)
	if err != nil {
		if errors.Is(err, ErrMissingToken) {
			return nil, nil, apperr.Unauthenticated("Not authenticated")
		}
		return nil, nil, apperr.Unauthenticated(credentialsMessage)
	}

	claims, err := g.tokens.Decode(token)
	if err != nil {
		return nil, nil, apperr.Unauthenticated(credentialsMessage)
	}

	user, err := g.users.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, apperr.NotFound("User not found")
		}
		return nil, nil, err
	}
	if !user.IsActive {
		return nil, nil, apperr.InvalidState("Inactive user")
	}
	return user, claims, nil
}

// RequireAdmin is the second gate layered on an authenticated user.
func RequireAdmin(user *models.User) error {
	if user == nil {
		return apperr.Unauthenticated(credentialsMessage)
	}
	if !user.IsAdmin {
		return apperr.Forbidden("Not enough permissions")
	}
	return nil
}

package auth

import (
	"context"

	"bluemoon/internal/domain"
	"bluemoon/internal/pkg/session"
)

// UserRepositoryInterface lists the user lookups the auth service needs.
type UserRepositoryInterface interface {
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	GetByID(ctx context.Context, id int64) (*domain.User, error)
}

type PasswordVerifier interface {
	Verify(stored, password string) bool
}

type SessionManager interface {
	Issue(ctx context.Context, userID int64, role string) (string, *session.Claims, error)
	Revoke(ctx context.Context, token string) error
}

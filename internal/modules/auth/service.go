package auth

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"bluemoon/internal/apperr"
	"bluemoon/internal/database"
	"bluemoon/internal/domain"
	"bluemoon/internal/repository"
)

type Service struct {
	users    UserRepositoryInterface
	verifier PasswordVerifier
	sessions SessionManager
	log      *zap.Logger
}

func NewService(users UserRepositoryInterface, verifier PasswordVerifier, sessions SessionManager, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{users: users, verifier: verifier, sessions: sessions, log: log}
}

// Login checks the credentials and opens a session. The returned token goes
// into the session cookie.
func (s *Service) Login(ctx context.Context, req LoginRequest) (*domain.User, string, error) {
	username := strings.TrimSpace(req.Username)
	if username == "" || req.Password == "" {
		return nil, "", ErrMissingCredentials
	}

	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", database.Classify(err)
	}
	if !s.verifier.Verify(user.PasswordHash, req.Password) {
		s.log.Info("login rejected", zap.String("username", username))
		return nil, "", ErrInvalidCredentials
	}

	token, _, err := s.sessions.Issue(ctx, user.ID, string(user.Role))
	if err != nil {
		return nil, "", apperr.Infrastructure(err, true)
	}
	s.log.Info("login", zap.Int64("user_id", user.ID), zap.String("role", string(user.Role)))
	return user, token, nil
}

func (s *Service) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	if err := s.sessions.Revoke(ctx, token); err != nil {
		return apperr.Infrastructure(err, true)
	}
	return nil
}

func (s *Service) Me(ctx context.Context, userID int64) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrUserNotFound
		}
		return nil, database.Classify(err)
	}
	return user, nil
}

package services

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"orderdesk/internal/domain"
	"orderdesk/internal/repos"
)

var ErrBadCreds = errors.New("invalid email or password")

type AuthService struct {
	Owners *repos.OwnerRepo
}

// Login verifies credentials and issues a session token.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, *domain.Owner, error) {
	o, err := s.Owners.ByEmail(ctx, email)
	if err != nil {
		return "", nil, err
	}
	if o == nil {
		return "", nil, ErrBadCreds
	}
	if bcrypt.CompareHashAndPassword([]byte(o.Hash), []byte(password)) != nil {
		return "", nil, ErrBadCreds
	}
	token := uuid.NewString()
	if err := s.Owners.BindSession(ctx, token, o.ID); err != nil {
		return "", nil, err
	}
	return token, o, nil
}

func (s *AuthService) Logout(ctx context.Context, token string) error {
	return s.Owners.UnbindSession(ctx, token)
}

func (s *AuthService) CurrentOwner(ctx context.Context, token string) (*domain.Owner, error) {
	return s.Owners.SessionOwner(ctx, token)
}

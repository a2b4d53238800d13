package user

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/abrigo/intake/internal/platform/auth"
	"github.com/abrigo/intake/internal/platform/backend"
	"github.com/abrigo/intake/internal/platform/session"
)

const minPasswordLen = 8

// Service manages staff accounts and implements the upstream authenticator
// for the login flow.
type Service struct {
	repo        Repository
	storageBase string
	logger      zerolog.Logger
}

func NewService(repo Repository, storageBase string, logger zerolog.Logger) *Service {
	return &Service{
		repo:        repo,
		storageBase: storageBase,
		logger:      logger.With().Str("component", "user").Logger(),
	}
}

// Login implements auth.Authenticator.
func (s *Service) Login(ctx context.Context, username, password string) (*auth.LoginResult, error) {
	resp, err := s.repo.Login(ctx, username, password)
	if err != nil {
		return nil, err
	}
	if resp.Token == "" || resp.User == nil {
		return nil, &backend.Error{Kind: backend.KindServer, Message: "login response missing token or user"}
	}
	resp.User.NormalizePhotoURL(s.storageBase)
	return &auth.LoginResult{
		Token: resp.Token,
		Identity: session.Identity{
			UserID:   resp.User.ID,
			Username: resp.User.Username,
			Name:     resp.User.Name,
			Role:     resp.User.Role,
			PhotoURL: resp.User.PhotoURL,
		},
	}, nil
}

// Logout implements auth.Authenticator.
func (s *Service) Logout(ctx context.Context) error {
	return s.repo.Logout(ctx)
}

func (s *Service) List(ctx context.Context) ([]*User, error) {
	users, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	for _, u := range users {
		u.NormalizePhotoURL(s.storageBase)
	}
	return users, nil
}

func (s *Service) Get(ctx context.Context, id int) (*User, error) {
	u, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	u.NormalizePhotoURL(s.storageBase)
	return u, nil
}

// Register creates a staff account. Admin accounts must carry an email so
// password recovery works for them.
func (s *Service) Register(ctx context.Context, reg *Registration) (*User, error) {
	if err := s.validateRegistration(reg); err != nil {
		return nil, err
	}
	u, err := s.repo.Register(ctx, reg)
	if err != nil {
		return nil, err
	}
	u.NormalizePhotoURL(s.storageBase)
	s.logger.Info().Str("username", reg.Username).Str("role", reg.Role).Msg("user registered")
	return u, nil
}

func (s *Service) UpdateUser(ctx context.Context, id int, upd *Update) (*User, error) {
	if upd.Password != "" && upd.Password != upd.PasswordConfirmation {
		return nil, backend.ValidationError("password_confirmation", "passwords do not match")
	}
	if upd.Role != "" && upd.Role != RoleAdmin && upd.Role != RoleEmployee {
		return nil, backend.ValidationError("role", "role must be admin or employee")
	}
	u, err := s.repo.Update(ctx, id, upd)
	if err != nil {
		return nil, err
	}
	u.NormalizePhotoURL(s.storageBase)
	s.logger.Info().Int("id", id).Msg("user updated")
	return u, nil
}

func (s *Service) Delete(ctx context.Context, id int) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info().Int("id", id).Msg("user deleted")
	return nil
}

// UploadPhoto sends the photo upstream and returns the user with the fresh
// normalized photo URL.
func (s *Service) UploadPhoto(ctx context.Context, id int, fileName string, content []byte) (*User, error) {
	if len(content) == 0 {
		return nil, backend.ValidationError("photo", "photo file is empty")
	}
	u, err := s.repo.UploadPhoto(ctx, id, fileName, content)
	if err != nil {
		return nil, err
	}
	u.NormalizePhotoURL(s.storageBase)
	return u, nil
}

func (s *Service) validateRegistration(reg *Registration) error {
	if strings.TrimSpace(reg.Name) == "" {
		return backend.ValidationError("name", "name is required")
	}
	if strings.TrimSpace(reg.Username) == "" {
		return backend.ValidationError("username", "username is required")
	}
	if reg.Role != RoleAdmin && reg.Role != RoleEmployee {
		return backend.ValidationError("role", "role must be admin or employee")
	}
	if reg.Role == RoleAdmin && strings.TrimSpace(reg.Email) == "" {
		return backend.ValidationError("email", "email is required for admin accounts")
	}
	if len(reg.Password) < minPasswordLen {
		return backend.ValidationError("password", fmt.Sprintf("password must be at least %d characters", minPasswordLen))
	}
	if reg.Password != reg.PasswordConfirmation {
		return backend.ValidationError("password_confirmation", "passwords do not match")
	}
	return nil
}

package service

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/childbooklet/booklet-server-go/internal/errors"
	"github.com/childbooklet/booklet-server-go/internal/model"
	"github.com/childbooklet/booklet-server-go/internal/repository"
	"github.com/childbooklet/booklet-server-go/internal/session"
	"github.com/childbooklet/booklet-server-go/internal/util"
)

type AuthService struct {
	adminRepo repository.AdminUserRepository
	store     session.Store
}

func NewAuthService(adminRepo repository.AdminUserRepository, store session.Store) *AuthService {
	return &AuthService{adminRepo: adminRepo, store: store}
}

type LoginResult struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	Username  string    `json:"username"`
}

// Login checks the credentials against the admin_users table and issues a
// session on success. Unknown username and wrong password are
// indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	if username == "" || password == "" {
		return nil, errors.Unauthorized("Invalid credentials")
	}

	user, err := s.adminRepo.FindByUsername(ctx, username)
	if err != nil {
		return nil, errors.Database(err)
	}
	if user == nil || !util.CheckPasswordHash(password, user.PasswordHash) {
		return nil, errors.Unauthorized("Invalid credentials")
	}

	token, expiresAt, err := s.store.Issue(ctx, user.Username, session.RoleAdmin)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, "Failed to issue session", err)
	}

	return &LoginResult{Token: token, ExpiresAt: expiresAt, Username: user.Username}, nil
}

func (s *AuthService) Logout(ctx context.Context, token string) error {
	return s.store.Revoke(ctx, token)
}

// VerifyPassword re-checks an authenticated admin's password before
// destructive operations.
func (s *AuthService) VerifyPassword(ctx context.Context, username, password string) (bool, error) {
	user, err := s.adminRepo.FindByUsername(ctx, username)
	if err != nil {
		return false, errors.Database(err)
	}
	if user == nil {
		return false, nil
	}
	return util.CheckPasswordHash(password, user.PasswordHash), nil
}

// SeedDefaultAdmin creates the configured admin account if it does not
// exist yet. Called once at startup; an already-seeded account is not an
// error.
func (s *AuthService) SeedDefaultAdmin(ctx context.Context, username, passwordHash string) error {
	if passwordHash == "" {
		log.Warn().Msg("no admin password hash configured, skipping admin seed")
		return nil
	}

	created, err := s.adminRepo.Seed(ctx, model.CreateAdminUserParams{
		Username:     username,
		PasswordHash: passwordHash,
		Role:         session.RoleAdmin,
	})
	if err != nil {
		return err
	}
	if created {
		log.Info().Str("username", username).Msg("seeded default admin account")
	}
	return nil
}

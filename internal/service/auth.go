package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/project-vault/internal/apperror"
	"github.com/sakif/project-vault/internal/auth"
	"github.com/sakif/project-vault/internal/model"
	"github.com/sakif/project-vault/internal/repository"
)

// AuthService decides who may act as the vault's admin.
//
//	AuthHandler (HTTP) → AuthService → UserRepository (GitHub logins)
//	                                 ↘ TokenService (JWT), PasswordService (bcrypt)
//
// There is exactly one role. A password login and an allowlisted GitHub
// login both produce a token that unlocks the admin and notes pages.
type AuthService struct {
	users     repository.UserRepository
	tokens    *auth.TokenService
	passwords *auth.PasswordService
	policy    AdminPolicy
	logger    *slog.Logger
}

// AdminPolicy is the configured set of admin credentials.
type AdminPolicy struct {
	// PasswordHash is the bcrypt hash for POST /login. Empty disables
	// password login.
	PasswordHash string
	// AllowedLogins are the GitHub logins that may sign in (case-insensitive).
	// Empty means nobody can sign in through GitHub.
	AllowedLogins []string
}

func NewAuthService(
	users repository.UserRepository,
	tokens *auth.TokenService,
	passwords *auth.PasswordService,
	policy AdminPolicy,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		users:     users,
		tokens:    tokens,
		passwords: passwords,
		policy:    policy,
		logger:    logger,
	}
}

// AuthResult bundles the identity and the issued JWT so the handler can set
// the cookie and redirect in one step.
type AuthResult struct {
	User  *model.User
	Token string
}

// PasswordLoginEnabled reports whether the login page should offer a
// password field.
func (s *AuthService) PasswordLoginEnabled() bool {
	return s.policy.PasswordHash != ""
}

// LoginWithPassword checks password against the configured hash.
func (s *AuthService) LoginWithPassword(ctx context.Context, password string) (*AuthResult, error) {
	if !s.PasswordLoginEnabled() {
		return nil, apperror.Forbidden("password login is disabled")
	}
	if password == "" {
		return nil, apperror.ValidationFailed("password", "password is required")
	}

	if err := s.passwords.Verify(s.policy.PasswordHash, password); err != nil {
		if errors.Is(err, auth.ErrInvalidPassword) {
			s.logger.Warn("admin password login rejected")
			return nil, apperror.Unauthorized("invalid password")
		}
		s.logger.Error("admin password check failed", slog.String("error", err.Error()))
		return nil, fmt.Errorf("service/auth: %w", err)
	}

	token, err := s.tokens.Generate(model.AdminSubject)
	if err != nil {
		return nil, fmt.Errorf("service/auth: generating admin token: %w", err)
	}

	s.logger.Info("admin authenticated via password")
	return &AuthResult{User: adminUser(), Token: token}, nil
}

// LoginOrRegisterGitHub handles the GitHub OAuth callback: reject logins
// that are not on the allowlist, upsert the user, issue a token for its
// internal id.
//
// The allowlist is checked before the upsert so strangers never get a row.
func (s *AuthService) LoginOrRegisterGitHub(ctx context.Context, ghUser *auth.GitHubUser) (*AuthResult, error) {
	if ghUser == nil {
		return nil, fmt.Errorf("service/auth: GitHub user must not be nil")
	}
	if !s.loginAllowed(ghUser.Login) {
		s.logger.Warn("GitHub login not on allowlist", slog.String("login", ghUser.Login))
		return nil, apperror.Forbidden(fmt.Sprintf("GitHub user %q may not administer this vault", ghUser.Login))
	}

	user := &model.User{
		GitHubID:  ghUser.ID,
		Login:     ghUser.Login,
		Email:     ghUser.Email,
		AvatarURL: ghUser.AvatarURL,
	}
	if err := s.users.Upsert(ctx, user); err != nil {
		return nil, fmt.Errorf("service/auth: upserting user (githubID=%d): %w", ghUser.ID, err)
	}

	s.logger.Info("user authenticated via GitHub",
		slog.String("userID", user.ID),
		slog.String("login", user.Login),
	)

	token, err := s.tokens.Generate(user.ID)
	if err != nil {
		return nil, fmt.Errorf("service/auth: generating token for user %s: %w", user.ID, err)
	}
	return &AuthResult{User: user, Token: token}, nil
}

func (s *AuthService) loginAllowed(login string) bool {
	for _, allowed := range s.policy.AllowedLogins {
		if strings.EqualFold(strings.TrimSpace(allowed), login) {
			return true
		}
	}
	return false
}

// GetUserByID resolves a token subject to a user. The password admin has no
// row; it is reported as a synthetic "admin" user.
func (s *AuthService) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	if id == "" {
		return nil, apperror.Unauthorized("no user in token")
	}
	if id == model.AdminSubject {
		return adminUser(), nil
	}

	user, err := s.users.GetUserByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("service/auth: fetching user %s: %w", id, err)
	}
	return user, nil
}

// ValidateToken returns the subject encoded in tokenStr.
func (s *AuthService) ValidateToken(tokenStr string) (string, error) {
	subject, err := s.tokens.Validate(tokenStr)
	if err != nil {
		return "", fmt.Errorf("service/auth: %w", err)
	}
	return subject, nil
}

func adminUser() *model.User {
	return &model.User{ID: model.AdminSubject, Login: model.AdminSubject}
}

package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"taskboard/internal/apperr"
	"taskboard/internal/auth"
	"taskboard/internal/domain"
	"taskboard/internal/repository"
)

// SignupInput carries the self-registration payload.
type SignupInput struct {
	Username  string
	Email     string
	Password  string
	AvatarURL string
	Social    domain.SocialLinks
}

// AuthService handles the credential and identity surface: signup, login,
// token-backed lookup, and the admin seed reconciliation at boot.
type AuthService interface {
	Signup(ctx context.Context, in SignupInput) (*domain.User, string, error)
	Login(ctx context.Context, email, password string) (*domain.User, string, error)
	GetUser(ctx context.Context, id string) (*domain.User, error)
	EnsureAdmin(ctx context.Context, username, email, password string) error
}

type authService struct {
	users  repository.UserRepository
	tokens *auth.TokenManager
}

func NewAuthService(users repository.UserRepository, tokens *auth.TokenManager) AuthService {
	return &authService{users: users, tokens: tokens}
}

func (s *authService) Signup(ctx context.Context, in SignupInput) (*domain.User, string, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = normalizeEmail(in.Email)

	if err := validateUsername(in.Username); err != nil {
		return nil, "", err
	}
	if err := validateEmail(in.Email); err != nil {
		return nil, "", err
	}
	if err := validatePassword(in.Password); err != nil {
		return nil, "", err
	}
	if err := validateSocial(in.Social); err != nil {
		return nil, "", err
	}

	// Advisory only; the unique constraint is the authoritative check.
	if _, err := s.users.GetByEmail(ctx, in.Email); err == nil {
		return nil, "", apperr.E(apperr.KindConflict, "Email already registered.")
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, "", apperr.Wrap(apperr.KindInternal, "Unable to create account.", err)
	}

	total, err := s.users.CountAll(ctx)
	if err != nil {
		return nil, "", apperr.Wrap(apperr.KindInternal, "Unable to create account.", err)
	}
	role := domain.RoleUser
	if total == 0 {
		role = domain.RoleAdmin
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, "", apperr.Wrap(apperr.KindInternal, "Unable to create account.", err)
	}

	user := &domain.User{
		ID:           uuid.NewString(),
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: hash,
		Role:         role,
		AvatarURL:    strings.TrimSpace(in.AvatarURL),
		Social:       in.Social,
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, "", apperr.E(apperr.KindConflict, "Email already registered.")
		}
		return nil, "", apperr.Wrap(apperr.KindInternal, "Unable to create account.", err)
	}

	token, err := s.tokens.Issue(user)
	if err != nil {
		return nil, "", apperr.Wrap(apperr.KindInternal, "Unable to create account.", err)
	}
	return sanitizeUser(user), token, nil
}

func (s *authService) Login(ctx context.Context, email, password string) (*domain.User, string, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, "", apperr.E(apperr.KindUnauthenticated, "Invalid email or passcode.")
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, "", apperr.E(apperr.KindUnauthenticated, "Invalid email or passcode.")
		}
		return nil, "", apperr.Wrap(apperr.KindInternal, "Unable to sign in.", err)
	}

	if !auth.CheckPassword(password, user.PasswordHash) {
		return nil, "", apperr.E(apperr.KindUnauthenticated, "Invalid email or passcode.")
	}

	token, err := s.tokens.Issue(user)
	if err != nil {
		return nil, "", apperr.Wrap(apperr.KindInternal, "Unable to sign in.", err)
	}
	return sanitizeUser(user), token, nil
}

func (s *authService) GetUser(ctx context.Context, id string) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.E(apperr.KindNotFound, "User not found.")
		}
		return nil, apperr.Wrap(apperr.KindInternal, "Unable to load user.", err)
	}
	return sanitizeUser(user), nil
}

// EnsureAdmin reconciles the configured admin account at startup: creates it
// when missing, restores the admin role, and rehashes the password when
// verification fails. Safe to run on every boot.
func (s *authService) EnsureAdmin(ctx context.Context, username, email, password string) error {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil
	}
	if username == "" {
		username = "admin"
	}

	user, err := s.users.GetByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		hash, err := auth.HashPassword(password)
		if err != nil {
			return err
		}
		return s.users.Create(ctx, &domain.User{
			ID:           uuid.NewString(),
			Username:     username,
			Email:        email,
			PasswordHash: hash,
			Role:         domain.RoleAdmin,
		})
	}
	if err != nil {
		return err
	}

	changed := false
	if user.Role != domain.RoleAdmin {
		user.Role = domain.RoleAdmin
		changed = true
	}
	if !auth.CheckPassword(password, user.PasswordHash) {
		hash, err := auth.HashPassword(password)
		if err != nil {
			return err
		}
		user.PasswordHash = hash
		changed = true
	}
	if !changed {
		return nil
	}
	return s.users.Update(ctx, user)
}

func sanitizeUser(user *domain.User) *domain.User {
	if user == nil {
		return nil
	}
	clone := *user
	clone.PasswordHash = ""
	return &clone
}

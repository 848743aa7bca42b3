package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"

	"taskboard/internal/apperr"
	"taskboard/internal/auth"
	"taskboard/internal/domain"
	"taskboard/internal/policy"
	"taskboard/internal/query"
	"taskboard/internal/repository"
	"taskboard/internal/storage"
)

// CreateUserInput is the admin user-create payload. Unlike signup it may
// carry an explicit role.
type CreateUserInput struct {
	Username  string
	Email     string
	Password  string
	Role      domain.Role
	AvatarURL string
	Social    domain.SocialLinks
}

// UpdateUserInput is a merge-patch: nil fields keep their stored values. A
// supplied Social replaces the whole links block.
type UpdateUserInput struct {
	Username  *string
	Email     *string
	Password  *string
	Role      *domain.Role
	AvatarURL *string
	Social    *domain.SocialLinks
}

func (in UpdateUserInput) empty() bool {
	return in.Username == nil && in.Email == nil && in.Password == nil &&
		in.Role == nil && in.AvatarURL == nil && in.Social == nil
}

// ListUsersInput carries raw list parameters before normalization.
type ListUsersInput struct {
	Page      int
	Limit     int
	Role      string
	Keyword   string
	SortBy    string
	SortOrder string
}

// UserService covers the user resource operations, enforcing the access
// policy per call.
type UserService interface {
	Create(ctx context.Context, caller policy.Identity, in CreateUserInput) (*domain.User, error)
	List(ctx context.Context, caller policy.Identity, in ListUsersInput) ([]domain.User, query.Pagination, error)
	Get(ctx context.Context, caller policy.Identity, id string) (*domain.User, error)
	Update(ctx context.Context, caller policy.Identity, id string, in UpdateUserInput) (*domain.User, error)
	Delete(ctx context.Context, caller policy.Identity, id string) (*domain.User, error)
	SetAvatar(ctx context.Context, caller policy.Identity, id, filename, contentType string, body io.Reader) (*domain.User, error)
}

type userService struct {
	users  repository.UserRepository
	store  storage.Service
	bucket string
	prefix string
}

func NewUserService(users repository.UserRepository, store storage.Service, bucket, keyPrefix string) UserService {
	return &userService{
		users:  users,
		store:  store,
		bucket: bucket,
		prefix: strings.Trim(keyPrefix, "/"),
	}
}

func (s *userService) Create(ctx context.Context, caller policy.Identity, in CreateUserInput) (*domain.User, error) {
	if !policy.CanManageUsers(caller) {
		return nil, apperr.E(apperr.KindForbidden, "Forbidden.")
	}

	in.Username = strings.TrimSpace(in.Username)
	in.Email = normalizeEmail(in.Email)
	if in.Role == "" {
		in.Role = domain.RoleUser
	}

	if err := validateUsername(in.Username); err != nil {
		return nil, err
	}
	if err := validateEmail(in.Email); err != nil {
		return nil, err
	}
	if err := validatePassword(in.Password); err != nil {
		return nil, err
	}
	if !domain.ValidRole(in.Role) {
		return nil, apperr.E(apperr.KindValidation, "Role must be admin or user.")
	}
	if err := validateSocial(in.Social); err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "Unable to create user.", err)
	}

	user := &domain.User{
		ID:           uuid.NewString(),
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: hash,
		Role:         in.Role,
		AvatarURL:    strings.TrimSpace(in.AvatarURL),
		Social:       in.Social,
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, apperr.E(apperr.KindConflict, "Email already registered.")
		}
		return nil, apperr.Wrap(apperr.KindInternal, "Unable to create user.", err)
	}
	return sanitizeUser(user), nil
}

func (s *userService) List(ctx context.Context, caller policy.Identity, in ListUsersInput) ([]domain.User, query.Pagination, error) {
	if !policy.CanManageUsers(caller) {
		return nil, query.Pagination{}, apperr.E(apperr.KindForbidden, "Forbidden.")
	}

	filter := query.UserFilter{
		Roles: query.CSVValues(in.Role, func(v string) bool {
			return domain.ValidRole(domain.Role(v))
		}),
		Keyword: query.Keyword(in.Keyword),
	}
	sort := query.NewSort(in.SortBy, in.SortOrder, query.UserSortFields)
	page := query.NewPage(in.Page, in.Limit)

	users, err := s.users.List(ctx, filter, sort, page)
	if err != nil {
		return nil, query.Pagination{}, apperr.Wrap(apperr.KindInternal, "Unable to load users.", err)
	}
	total, err := s.users.Count(ctx, filter)
	if err != nil {
		return nil, query.Pagination{}, apperr.Wrap(apperr.KindInternal, "Unable to load users.", err)
	}

	for i := range users {
		users[i].PasswordHash = ""
	}
	return users, query.Paginate(page, total), nil
}

func (s *userService) Get(ctx context.Context, caller policy.Identity, id string) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.E(apperr.KindNotFound, "User not found.")
		}
		return nil, apperr.Wrap(apperr.KindInternal, "Unable to load user.", err)
	}
	if !policy.CanAccessUser(caller, user.ID) {
		return nil, apperr.E(apperr.KindForbidden, "Forbidden.")
	}
	return sanitizeUser(user), nil
}

func (s *userService) Update(ctx context.Context, caller policy.Identity, id string, in UpdateUserInput) (*domain.User, error) {
	if in.empty() {
		return nil, apperr.E(apperr.KindValidation, "At least one field is required.")
	}

	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.E(apperr.KindNotFound, "User not found.")
		}
		return nil, apperr.Wrap(apperr.KindInternal, "Unable to update user.", err)
	}
	if !policy.CanAccessUser(caller, user.ID) {
		return nil, apperr.E(apperr.KindForbidden, "Forbidden.")
	}

	if in.Username != nil {
		username := strings.TrimSpace(*in.Username)
		if err := validateUsername(username); err != nil {
			return nil, err
		}
		user.Username = username
	}
	if in.Email != nil {
		email := normalizeEmail(*in.Email)
		if err := validateEmail(email); err != nil {
			return nil, err
		}
		user.Email = email
	}
	if in.Password != nil {
		if err := validatePassword(*in.Password); err != nil {
			return nil, err
		}
		hash, err := auth.HashPassword(*in.Password)
		if err != nil {
			return nil, apperr.Wrap(apperr.KindInternal, "Unable to update user.", err)
		}
		user.PasswordHash = hash
	}
	// Non-admin role submissions are dropped, not rejected.
	if in.Role != nil && policy.AllowRoleChange(caller) {
		if !domain.ValidRole(*in.Role) {
			return nil, apperr.E(apperr.KindValidation, "Role must be admin or user.")
		}
		user.Role = *in.Role
	}
	if in.AvatarURL != nil {
		user.AvatarURL = strings.TrimSpace(*in.AvatarURL)
	}
	if in.Social != nil {
		if err := validateSocial(*in.Social); err != nil {
			return nil, err
		}
		user.Social = *in.Social
	}

	if err := s.users.Update(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, apperr.E(apperr.KindConflict, "Email already registered.")
		}
		return nil, apperr.Wrap(apperr.KindInternal, "Unable to update user.", err)
	}
	return sanitizeUser(user), nil
}

func (s *userService) Delete(ctx context.Context, caller policy.Identity, id string) (*domain.User, error) {
	if !policy.CanManageUsers(caller) {
		return nil, apperr.E(apperr.KindForbidden, "Forbidden.")
	}

	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.E(apperr.KindNotFound, "User not found.")
		}
		return nil, apperr.Wrap(apperr.KindInternal, "Unable to delete user.", err)
	}
	if err := s.users.Delete(ctx, id); err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "Unable to delete user.", err)
	}
	s.removeAvatarObject(ctx, user.AvatarURL)
	return sanitizeUser(user), nil
}

func (s *userService) SetAvatar(ctx context.Context, caller policy.Identity, id, filename, contentType string, body io.Reader) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.E(apperr.KindNotFound, "User not found.")
		}
		return nil, apperr.Wrap(apperr.KindInternal, "Unable to update avatar.", err)
	}
	if !policy.CanAccessUser(caller, user.ID) {
		return nil, apperr.E(apperr.KindForbidden, "Forbidden.")
	}
	if s.store == nil || s.bucket == "" {
		return nil, apperr.E(apperr.KindInternal, "Avatar storage is not configured.")
	}

	key := avatarKey(s.prefix, user.ID, filename)
	avatarURL, err := s.store.PutObject(ctx, s.bucket, key, contentType, body)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "Unable to store avatar.", err)
	}

	previous := user.AvatarURL
	user.AvatarURL = avatarURL
	if err := s.users.Update(ctx, user); err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "Unable to update avatar.", err)
	}
	// Two uploads within the same second can produce the same key; never
	// delete the object that was just written.
	if prevKey := avatarObjectKey(s.prefix, previous); prevKey != "" && prevKey != key {
		_ = s.store.DeleteObject(ctx, s.bucket, prevKey)
	}
	return sanitizeUser(user), nil
}

// removeAvatarObject deletes a user's stored avatar object. Best effort: a
// stale object never fails the request that orphaned it.
func (s *userService) removeAvatarObject(ctx context.Context, avatarURL string) {
	if s.store == nil || s.bucket == "" {
		return
	}
	key := avatarObjectKey(s.prefix, avatarURL)
	if key == "" {
		return
	}
	_ = s.store.DeleteObject(ctx, s.bucket, key)
}

func avatarKey(prefix, userID, filename string) string {
	ext := path.Ext(filename)
	name := fmt.Sprintf("%s-%d%s", userID, time.Now().UTC().Unix(), ext)
	if prefix == "" {
		return path.Join("avatars", name)
	}
	return path.Join(prefix, "avatars", name)
}

// avatarObjectKey recovers the object key from a stored avatar URL. Returns
// "" for URLs that do not point into this service's avatars prefix, such as
// an external avatarUrl the user supplied directly.
func avatarObjectKey(prefix, avatarURL string) string {
	if avatarURL == "" {
		return ""
	}
	parsed, err := url.Parse(avatarURL)
	if err != nil {
		return ""
	}
	p := strings.TrimPrefix(parsed.Path, "/")
	marker := path.Join(prefix, "avatars") + "/"
	idx := strings.Index(p, marker)
	if idx < 0 {
		return ""
	}
	return p[idx:]
}

package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"shop-service/internal/auth"
	"shop-service/internal/models"
	"shop-service/internal/store"
	"shop-service/internal/util"

	"go.uber.org/zap"
)

// UserStore is the persistence surface the user service needs.
type UserStore interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUsers(ctx context.Context) ([]models.User, error)
	UpdateUser(ctx context.Context, user *models.User) error
	DeleteUser(ctx context.Context, id int64) error
}

// UserService handles registration, login and account management
type UserService struct {
	store  UserStore
	tokens *auth.TokenService
	logger *zap.Logger
}

// NewUserService creates a new user service
func NewUserService(store UserStore, tokens *auth.TokenService) *UserService {
	return &UserService{
		store:  store,
		tokens: tokens,
		logger: util.GetLogger(),
	}
}

// RegisterRequest carries new-account fields
type RegisterRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	Address  string `json:"address"`
	Role     string `json:"role"`
}

// LoginRequest carries login credentials
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Register creates a new account with a hashed password. Role defaults to
// "user" when absent.
func (s *UserService) Register(ctx context.Context, req *RegisterRequest) (*models.User, error) {
	role := req.Role
	if role == "" {
		role = models.RoleUser
	}
	if role != models.RoleAdmin && role != models.RoleUser {
		return nil, fmt.Errorf("role %q: %w", role, ErrInvalidInput)
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Name:         strings.TrimSpace(req.Name),
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		PasswordHash: hash,
		Role:         role,
		Address:      req.Address,
	}

	if err := s.store.CreateUser(ctx, user); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return nil, fmt.Errorf("user %q: %w", user.Email, ErrAlreadyExists)
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	util.UsersRegisteredTotal.Inc()
	s.logger.Info("User registered",
		zap.Int64("user_id", user.ID),
		zap.String("role", user.Role))

	return user, nil
}

// Login verifies credentials and issues a signed token. Unknown emails and
// wrong passwords are both reported as ErrUnauthenticated.
func (s *UserService) Login(ctx context.Context, req *LoginRequest) (string, *models.User, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	user, err := s.store.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			util.LoginAttemptsTotal.WithLabelValues("unknown_email").Inc()
			return "", nil, ErrUnauthenticated
		}
		return "", nil, err
	}

	if err := auth.CheckPasswordHash(req.Password, user.PasswordHash); err != nil {
		util.LoginAttemptsTotal.WithLabelValues("wrong_password").Inc()
		return "", nil, ErrUnauthenticated
	}

	token, err := s.tokens.Issue(user)
	if err != nil {
		return "", nil, fmt.Errorf("failed to issue token: %w", err)
	}

	util.LoginAttemptsTotal.WithLabelValues("success").Inc()
	return token, user, nil
}

// List returns all users. Admin only.
func (s *UserService) List(ctx context.Context, identity auth.Identity) ([]models.User, error) {
	if identity.UserID == 0 {
		return nil, ErrUnauthenticated
	}
	if !identity.IsAdmin() {
		return nil, fmt.Errorf("listing users: %w", ErrForbidden)
	}
	return s.store.GetUsers(ctx)
}

// Get returns one user. Allowed for the user themselves and for admins.
func (s *UserService) Get(ctx context.Context, identity auth.Identity, userID int64) (*models.User, error) {
	if identity.UserID == 0 {
		return nil, ErrUnauthenticated
	}
	if !identity.IsAdmin() && identity.UserID != userID {
		return nil, fmt.Errorf("user %d: %w", userID, ErrForbidden)
	}

	user, err := s.store.GetUserByID(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("user %d: %w", userID, ErrNotFound)
	}
	return user, err
}

// UpdateRequest carries profile updates; empty fields are left unchanged.
type UpdateUserRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Address  string `json:"address"`
}

// Update modifies profile fields. Allowed for the user themselves and for
// admins. Role is never changed here.
func (s *UserService) Update(ctx context.Context, identity auth.Identity, userID int64, req *UpdateUserRequest) (*models.User, error) {
	if identity.UserID == 0 {
		return nil, ErrUnauthenticated
	}
	if !identity.IsAdmin() && identity.UserID != userID {
		return nil, fmt.Errorf("user %d: %w", userID, ErrForbidden)
	}

	user, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("user %d: %w", userID, ErrNotFound)
		}
		return nil, err
	}

	if req.Name != "" {
		user.Name = strings.TrimSpace(req.Name)
	}
	if req.Email != "" {
		user.Email = strings.ToLower(strings.TrimSpace(req.Email))
	}
	if req.Address != "" {
		user.Address = req.Address
	}
	if req.Password != "" {
		hash, err := auth.HashPassword(req.Password)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		user.PasswordHash = hash
	}

	if err := s.store.UpdateUser(ctx, user); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return nil, fmt.Errorf("user %q: %w", user.Email, ErrAlreadyExists)
		}
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	s.logger.Info("User updated", zap.Int64("user_id", userID))
	return user, nil
}

// Delete removes a user. Admin only.
func (s *UserService) Delete(ctx context.Context, identity auth.Identity, userID int64) error {
	if identity.UserID == 0 {
		return ErrUnauthenticated
	}
	if !identity.IsAdmin() {
		return fmt.Errorf("user %d: %w", userID, ErrForbidden)
	}

	if err := s.store.DeleteUser(ctx, userID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("user %d: %w", userID, ErrNotFound)
		}
		return err
	}

	s.logger.Info("User deleted",
		zap.Int64("user_id", userID),
		zap.Int64("admin_id", identity.UserID))
	return nil
}

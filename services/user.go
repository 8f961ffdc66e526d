package services

import (
	"context"
	"time"

	"golang.org/x/crypto/bcrypt"

	"marketplace/apperr"
	"marketplace/models"
	"marketplace/repository"
)

// UserService handles registration, credential checks and role grants.
type UserService struct {
	users repository.UserRepository
}

func NewUserService(users repository.UserRepository) *UserService {
	return &UserService{users: users}
}

// Register creates an account with a bcrypt-hashed password and the
// default USER role. Username and email must both be unused.
func (s *UserService) Register(ctx context.Context, user *models.User, plainPassword string) (*models.User, error) {
	if user.Username == "" || user.Email == "" || plainPassword == "" {
		return nil, apperr.E(apperr.InvalidState, "Username, email and password are required")
	}

	taken, err := s.users.ExistsByUsername(ctx, user.Username)
	if err != nil {
		return nil, apperr.Wrap(apperr.BackendUnavailable, "Failed to check username", err)
	}
	if taken {
		return nil, apperr.E(apperr.InvalidState, "Username already exists")
	}

	taken, err = s.users.ExistsByEmail(ctx, user.Email)
	if err != nil {
		return nil, apperr.Wrap(apperr.BackendUnavailable, "Failed to check email", err)
	}
	if taken {
		return nil, apperr.E(apperr.InvalidState, "Email already exists")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(plainPassword), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperr.Wrap(apperr.InvalidState, "Failed to hash password", err)
	}
	user.Password = string(hashed)
	user.AddRole(models.RoleUser)
	user.CreatedAt = time.Now()

	saved, err := s.users.Insert(ctx, user)
	if err != nil {
		return nil, apperr.Wrap(apperr.BackendUnavailable, "Failed to create user", err)
	}
	return saved, nil
}

// Authenticate verifies the credentials and stamps LastLoginAt.
func (s *UserService) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		return nil, apperr.Wrap(apperr.BackendUnavailable, "Failed to load user", err)
	}
	if user == nil {
		return nil, apperr.E(apperr.Unauthenticated, "Invalid username or password")
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) != nil {
		return nil, apperr.E(apperr.Unauthenticated, "Invalid username or password")
	}

	now := time.Now()
	user.LastLoginAt = &now
	if _, err := s.users.Update(ctx, user); err != nil {
		return nil, apperr.Wrap(apperr.BackendUnavailable, "Failed to update user", err)
	}
	return user, nil
}

// GetByUsername resolves the account behind a token's subject.
func (s *UserService) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		return nil, apperr.Wrap(apperr.BackendUnavailable, "Failed to load user", err)
	}
	if user == nil {
		return nil, apperr.E(apperr.NotFound, "User not found")
	}
	return user, nil
}

// PromoteToAdmin grants the ADMIN role. Granting it twice is a no-op.
func (s *UserService) PromoteToAdmin(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, apperr.Wrap(apperr.BackendUnavailable, "Failed to load user", err)
	}
	if user == nil {
		return nil, apperr.E(apperr.NotFound, "User not found")
	}

	user.AddRole(models.RoleAdmin)
	updated, err := s.users.Update(ctx, user)
	if err != nil {
		return nil, apperr.Wrap(apperr.BackendUnavailable, "Failed to update user", err)
	}
	return updated, nil
}

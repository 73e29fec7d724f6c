package services

import (
	"context"
	"errors"
	"strings"

	"gym_manager/internal/models"
	"gym_manager/internal/repository"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// ErrInvalidCredentials is returned for an unknown user, a wrong password or
// an inactive account alike.
var ErrInvalidCredentials = errors.New("invalid username or password")

type UserService interface {
	CreateUser(ctx context.Context, user *models.User, password string) error
	GetUserByID(ctx context.Context, id uint) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	GetAllUsers(ctx context.Context) ([]models.User, error)
	Authenticate(ctx context.Context, username, password string) (*models.User, error)
}

type userService struct {
	userRepo repository.UserRepository
}

func NewUserService(userRepo repository.UserRepository) UserService {
	return &userService{userRepo: userRepo}
}

func (s *userService) CreateUser(ctx context.Context, user *models.User, password string) error {
	user.Username = strings.TrimSpace(user.Username)
	if user.Username == "" {
		return validationErr("username", "is required")
	}
	if user.Email == "" {
		return validationErr("email", "is required")
	}
	if len(password) < 8 {
		return validationErr("password", "must be at least 8 characters")
	}
	if user.Role == "" {
		user.Role = string(models.Staff)
	}
	switch models.UserRole(user.Role) {
	case models.SuperAdmin, models.Admin, models.Staff:
	default:
		return validationErr("role", "must be super_admin, admin or staff")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	user.PasswordHash = string(hashedPassword)

	if err := s.userRepo.Create(ctx, user); err != nil {
		return translate(err, "create user", "user", nil)
	}
	return nil
}

func (s *userService) GetUserByID(ctx context.Context, id uint) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, translate(err, "load user", "user", id)
	}
	return user, nil
}

func (s *userService) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, translate(err, "load user", "user", username)
	}
	return user, nil
}

func (s *userService) GetAllUsers(ctx context.Context) ([]models.User, error) {
	users, err := s.userRepo.GetAll(ctx)
	if err != nil {
		return nil, translate(err, "list users", "user", nil)
	}
	return users, nil
}

func (s *userService) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	user, err := s.userRepo.GetByUsername(ctx, strings.TrimSpace(username))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, translate(err, "load user", "user", username)
	}
	if !user.IsActive {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

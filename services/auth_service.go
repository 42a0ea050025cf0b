package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/Adilet09/academy-league/models"
	"github.com/Adilet09/academy-league/repositories"
	"golang.org/x/crypto/bcrypt"
)

const minPasswordLength = 8

type AuthService interface {
	Register(ctx context.Context, input RegisterInput) (*models.User, error)
	Login(ctx context.Context, input LoginInput) (*models.User, error)
	// CreateUser - создание аккаунтов персонала (судьи, администраторы)
	// владельцем или администратором академии.
	CreateUser(ctx context.Context, input CreateUserInput, actor models.Actor) (*models.User, error)
}

type RegisterInput struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Password  string `json:"password"`
}

type LoginInput struct {
	Email    string
	Password string
}

type CreateUserInput struct {
	FirstName string          `json:"first_name"`
	LastName  string          `json:"last_name"`
	Email     string          `json:"email"`
	Password  string          `json:"password"`
	Role      models.UserRole `json:"role"`
}

type authService struct {
	userRepo repositories.UserRepository
}

func NewAuthService(userRepo repositories.UserRepository) AuthService {
	return &authService{
		userRepo: userRepo,
	}
}

// Register - самостоятельная регистрация, всегда с ролью player.
// Роли персонала выдаются только через CreateUser.
func (s *authService) Register(ctx context.Context, input RegisterInput) (*models.User, error) {
	return s.createUser(ctx, input.FirstName, input.LastName, input.Email, input.Password, models.RolePlayer)
}

func (s *authService) CreateUser(ctx context.Context, input CreateUserInput, actor models.Actor) (*models.User, error) {
	if actor.Role != models.RoleOwner && actor.Role != models.RoleAdmin {
		return nil, ErrForbiddenOperation
	}
	if !input.Role.Valid() {
		return nil, ErrInvalidUserRole
	}
	return s.createUser(ctx, input.FirstName, input.LastName, input.Email, input.Password, input.Role)
}

func (s *authService) createUser(ctx context.Context, firstName, lastName, email, password string, role models.UserRole) (*models.User, error) {
	if len(password) < minPasswordLength {
		return nil, ErrPasswordTooShort
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("ошибка хеширования пароля: %w", err)
	}

	user := &models.User{
		FirstName:    firstName,
		LastName:     lastName,
		Email:        email,
		PasswordHash: string(hashedPassword),
		Role:         role,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrUserEmailConflict) {
			return nil, ErrAuthEmailTaken
		}
		return nil, fmt.Errorf("ошибка создания пользователя: %w", err)
	}

	user.PasswordHash = ""
	return user, nil
}

func (s *authService) Login(ctx context.Context, input LoginInput) (*models.User, error) {
	user, err := s.userRepo.GetByEmail(ctx, input.Email)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrAuthInvalidCredentials
		}
		return nil, fmt.Errorf("failed to find user by email: %w", err)
	}

	err = bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password))
	if err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return nil, ErrAuthInvalidCredentials
		}
		return nil, fmt.Errorf("failed to compare password hash: %w", err)
	}

	user.PasswordHash = ""
	return user, nil
}

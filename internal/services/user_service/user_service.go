package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"portfolio_gallery/internal/domain/models"
	"portfolio_gallery/internal/lib/logger/sl"

	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserNotFound       = errors.New("user not found")
)

// Account учётная запись из конфигурации. PasswordHash bcrypt-хеш.
type Account struct {
	Name         string
	Role         models.Role
	PasswordHash string
}

type UserService struct {
	log      *slog.Logger
	accounts map[string]Account
}

func NewUserService(log *slog.Logger, accounts []Account) *UserService {
	byName := make(map[string]Account, len(accounts))
	for _, a := range accounts {
		byName[a.Name] = a
	}
	return &UserService{log: log, accounts: byName}
}

func (s *UserService) Login(ctx context.Context, name, password string) (models.User, error) {
	const op = "service.UserService.Login"

	log := s.log.With(
		slog.String("op", op),
		slog.String("username", name),
	)

	log.Info("attempting to login user")

	acc, ok := s.accounts[name]
	if !ok {
		log.Warn("user not found")

		return models.User{}, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(acc.PasswordHash), []byte(password)); err != nil {
		log.Info("invalid credentials", sl.Err(err))

		return models.User{}, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}

	log.Info("user logged in successfully")

	return models.User{Name: acc.Name, Role: acc.Role}, nil
}

// User возвращает актуальную роль пользователя сессии. Удалённая из
// конфигурации учётная запись больше не проходит проверки.
func (s *UserService) User(ctx context.Context, name string) (models.User, error) {
	acc, ok := s.accounts[name]
	if !ok {
		return models.User{}, fmt.Errorf("service.UserService.User: %w", ErrUserNotFound)
	}
	return models.User{Name: acc.Name, Role: acc.Role}, nil
}

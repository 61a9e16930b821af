// Package services содержит логику бизнес-уровня для работы с пользователями и аутентификацией.
package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/grigorevv/docvault/internal/domain"
	"github.com/grigorevv/docvault/internal/lib/jwt"
	"github.com/grigorevv/docvault/internal/lib/password"
	"github.com/grigorevv/docvault/internal/models"
)

// UserRepository описывает контракт для работы с пользователями в базе данных.
type UserRepository interface {
	// RegisterUser сохраняет нового пользователя и возвращает его UID.
	RegisterUser(ctx context.Context, user models.User) (string, error)
	// GetUserByLogin возвращает пользователя по username или email.
	GetUserByLogin(ctx context.Context, login string) (*models.User, error)
	// GetUser возвращает пользователя по UID.
	GetUser(ctx context.Context, userUID string) (*models.User, error)
	// ListUsers возвращает всех пользователей.
	ListUsers(ctx context.Context) ([]*models.User, error)
	// ListDirectory возвращает справочник активных пользователей.
	ListDirectory(ctx context.Context) ([]*models.DirectoryUser, error)
	// UpdateUserStatus меняет статус учётной записи, возвращает число изменённых строк.
	UpdateUserStatus(ctx context.Context, userUID, status string) (int, error)
	// UpsertDefaultAdmin создаёт или обновляет стартового администратора.
	UpsertDefaultAdmin(ctx context.Context, email, username, passwordHash string) error
}

// AuthService отвечает за регистрацию, авторизацию, валидацию JWT
// и администрирование учётных записей.
type AuthService struct {
	users    UserRepository
	jwtMaker jwt.Maker
	log      *slog.Logger
}

// NewAuthService создает новый экземпляр AuthService.
func NewAuthService(users UserRepository, jwtMaker jwt.Maker, log *slog.Logger) *AuthService {
	return &AuthService{
		users:    users,
		jwtMaker: jwtMaker,
		log:      log,
	}
}

// Register создает нового пользователя с хэшированием пароля.
// Учётная запись создаётся в статусе pending и не может войти,
// пока администратор её не активирует.
func (s *AuthService) Register(ctx context.Context, email, username, rawPassword string) (string, error) {
	hashed, err := password.GetHash(rawPassword)
	if err != nil {
		return "", err
	}
	user := models.User{
		Email:        email,
		Username:     username,
		PasswordHash: hashed,
		Role:         models.RoleUser,
		Status:       models.UserStatusPending,
	}
	uid, err := s.users.RegisterUser(ctx, user)
	if err != nil {
		return "", err
	}
	s.log.Info("registered new user", slog.String("uid", uid))
	return uid, nil
}

// Login проверяет пароль пользователя и генерирует JWT.
// Вход разрешён только активным учётным записям.
func (s *AuthService) Login(ctx context.Context, login, rawPassword string) (token, role string, err error) {
	user, err := s.users.GetUserByLogin(ctx, login)
	if err != nil {
		return "", "", domain.ErrUnauthenticated
	}
	if err := password.CompareHash(user.PasswordHash, rawPassword); err != nil {
		return "", "", domain.ErrUnauthenticated
	}
	switch user.Status {
	case models.UserStatusPending:
		return "", "", domain.ErrUserNotActive
	case models.UserStatusDisabled:
		return "", "", domain.ErrUserDisabled
	}
	token, err = s.jwtMaker.GenerateToken(user.Username, user.Role, user.UID)
	if err != nil {
		return "", "", err
	}
	return token, user.Role, nil
}

// ValidateToken проверяет JWT и возвращает информацию о пользователе.
func (s *AuthService) ValidateToken(_ context.Context, token string) (*models.User, error) {
	claims, err := s.jwtMaker.ParseToken(token)
	if err != nil {
		return nil, domain.ErrUnauthenticated
	}
	return &models.User{
		Username: claims.Username,
		Role:     claims.Role,
		UID:      claims.UserUID,
		Status:   models.UserStatusActive,
	}, nil
}

// ListUsers возвращает всех пользователей. Только для администратора.
func (s *AuthService) ListUsers(ctx context.Context, actor *models.User) ([]models.PublicUser, error) {
	if actor == nil || !actor.IsAdmin() {
		return nil, domain.ErrForbidden
	}
	users, err := s.users.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	result := make([]models.PublicUser, 0, len(users))
	for _, u := range users {
		result = append(result, u.ToPublic())
	}
	return result, nil
}

// ListDirectory возвращает справочник активных пользователей
// для выбора получателей доступа.
func (s *AuthService) ListDirectory(ctx context.Context) ([]*models.DirectoryUser, error) {
	return s.users.ListDirectory(ctx)
}

// SetUserStatus переводит учётную запись в статус active либо disabled.
// Только для администратора.
func (s *AuthService) SetUserStatus(ctx context.Context, actor *models.User, userUID, status string) error {
	if actor == nil || !actor.IsAdmin() {
		return domain.ErrForbidden
	}
	if status != models.UserStatusActive && status != models.UserStatusDisabled {
		return fmt.Errorf("unknown status %q: %w", status, domain.ErrInvalidTransition)
	}
	count, err := s.users.UpdateUserStatus(ctx, userUID, status)
	if err != nil {
		return err
	}
	if count == 0 {
		return domain.ErrNotFound
	}
	s.log.Info("user status changed",
		slog.String("uid", userUID), slog.String("status", status))
	return nil
}

// EnsureDefaultAdmin создаёт или обновляет стартового администратора,
// чтобы в свежем развертывании всегда был хотя бы один активный админ.
func (s *AuthService) EnsureDefaultAdmin(ctx context.Context, email, username, rawPassword string) error {
	hashed, err := password.GetHash(rawPassword)
	if err != nil {
		return err
	}
	if err := s.users.UpsertDefaultAdmin(ctx, email, username, hashed); err != nil {
		return err
	}
	s.log.Info("default admin ensured", slog.String("username", username))
	return nil
}

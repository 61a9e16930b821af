// Package models содержит доменную модель пользователя системы,
// включающую данные учётной записи, роль, статус и дату создания.
// Структуры используются в бизнес‑логике и при работе с хранилищем.
package models

import "time"

// Статусы учётной записи. Новая запись создается в статусе pending
// и активируется только решением администратора.
const (
	UserStatusPending  = "pending"
	UserStatusActive   = "active"
	UserStatusDisabled = "disabled"
)

// Роли пользователей.
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// User представляет зарегистрированного пользователя системы.
type User struct {
	UID          string    // Уникальный идентификатор пользователя
	Email        string    // Электронная почта (уникальная)
	Username     string    // Имя пользователя (уникальное)
	PasswordHash string    // Хэш пароля пользователя
	Role         string    // Роль пользователя, admin или user
	Status       string    // Статус учётной записи: pending, active, disabled
	CreatedAt    time.Time // Дата регистрации
}

// IsAdmin сообщает, обладает ли пользователь правами администратора.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// DummyRegister используется для приёма данных регистрации из JSON-запроса.
type DummyRegister struct {
	Email    string `json:"email" validate:"required,email"`        // Электронная почта
	Username string `json:"username" validate:"required,alphanum"`  // Имя пользователя
	Password string `json:"password" validate:"required,min=8"`     // Пароль
}

// DummyLogin используется для приёма данных входа из JSON-запроса.
// В поле Login допускается имя пользователя или email.
type DummyLogin struct {
	Login    string `json:"login" validate:"required"`    // Имя пользователя или email
	Password string `json:"password" validate:"required"` // Пароль
}

// DummyUserStatus используется для приёма смены статуса учётной записи.
type DummyUserStatus struct {
	Status string `json:"status" validate:"required,oneof=active disabled"` // Новый статус
}

// PublicUser — представление пользователя без чувствительных полей для JSON-ответов.
type PublicUser struct {
	UID       string    `json:"uid"`
	Email     string    `json:"email"`
	Username  string    `json:"username"`
	Role      string    `json:"role"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// ToPublic конвертирует User в PublicUser.
func (u *User) ToPublic() PublicUser {
	return PublicUser{
		UID:       u.UID,
		Email:     u.Email,
		Username:  u.Username,
		Role:      u.Role,
		Status:    u.Status,
		CreatedAt: u.CreatedAt,
	}
}

// DirectoryUser — запись справочника пользователей для выбора allowed_users.
type DirectoryUser struct {
	UID      string `json:"uid"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// Package repository реализует хранилище данных на основе PostgreSQL
// для документов, заявок на скачивание и пользователей. Предоставляет
// методы создания, чтения, обновления и удаления записей, а также
// атомарные операции workflow одобрения.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	// Регистрация драйвера pgx для использования с database/sql.
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/grigorevv/docvault/internal/domain"
)

// Коды ошибок PostgreSQL, различаемые ядром.
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// Storage инкапсулирует соединение с базой данных PostgreSQL
// и реализует методы работы с документами, заявками и пользователями.
type Storage struct {
	DB *sql.DB
}

// New создаёт подключение к PostgreSQL.
func New(storageConnectionString string) (*Storage, error) {
	const op = "storage.New"

	db, err := sql.Open("pgx", storageConnectionString)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err = db.PingContext(context.Background()); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Storage{
		DB: db,
	}, nil
}

// CheckDatabaseReady проверяет готовность базы данных.
func CheckDatabaseReady(storage *Storage) error {
	var exists bool
	err := storage.DB.QueryRow(`SELECT EXISTS (
        SELECT FROM information_schema.tables
        WHERE table_name = 'documents'
    )`).Scan(&exists)
	if err != nil || !exists {
		return fmt.Errorf("required table documents missing or query error: %w", err)
	}
	return nil
}

// isPgError сообщает, является ли err ошибкой PostgreSQL с заданным кодом.
func isPgError(err error, code string) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == code
}

// noRows конвертирует sql.ErrNoRows в доменную ошибку "не найдено".
func noRows(op string, err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s: %w", op, domain.ErrNotFound)
	}
	return fmt.Errorf("%s: %w", op, err)
}

// invalidTransition конвертирует sql.ErrNoRows условного UPDATE в доменную
// ошибку недопустимого перехода: pending-строка не найдена, значит заявка
// уже в терминальном статусе либо не существует.
func invalidTransition(op string, err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s: %w", op, domain.ErrInvalidTransition)
	}
	return fmt.Errorf("%s: %w", op, err)
}

func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

package repository

import (
	"context"
	"fmt"

	"github.com/grigorevv/docvault/internal/domain"
	"github.com/grigorevv/docvault/internal/models"
)

// RegisterUser сохраняет нового пользователя в базу данных и возвращает его UID.
// Нарушение уникальности username или email возвращается как domain.ErrAlreadyExists.
func (s *Storage) RegisterUser(ctx context.Context, user models.User) (string, error) {
	const op = "storage.RegisterUser"
	select {
	case <-ctx.Done():
		return "", fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var newUID string
	query := `INSERT INTO users (email, username, password_hash, role, status)
			  VALUES ($1, $2, $3, $4, $5)
			  RETURNING uid;`
	if err := s.DB.QueryRowContext(ctx, query,
		user.Email, user.Username, user.PasswordHash, user.Role, user.Status).Scan(&newUID); err != nil {
		if isPgError(err, pgUniqueViolation) {
			return "", fmt.Errorf("%s: %w", op, domain.ErrAlreadyExists)
		}
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return newUID, nil
}

// GetUserByLogin возвращает пользователя по username или email.
func (s *Storage) GetUserByLogin(ctx context.Context, login string) (*models.User, error) {
	const op = "storage.GetUserByLogin"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT uid, email, username, password_hash, role, status, created_at
			  FROM users
			  WHERE username = $1 OR email = $1`
	u := &models.User{}
	row := s.DB.QueryRowContext(ctx, query, login)
	if err := row.Scan(&u.UID, &u.Email, &u.Username, &u.PasswordHash,
		&u.Role, &u.Status, &u.CreatedAt); err != nil {
		return nil, noRows(op, err)
	}
	return u, nil
}

// GetUser возвращает пользователя по его UID.
func (s *Storage) GetUser(ctx context.Context, userUID string) (*models.User, error) {
	const op = "storage.GetUser"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT uid, email, username, password_hash, role, status, created_at
			  FROM users
			  WHERE uid = $1`
	u := &models.User{}
	row := s.DB.QueryRowContext(ctx, query, userUID)
	if err := row.Scan(&u.UID, &u.Email, &u.Username, &u.PasswordHash,
		&u.Role, &u.Status, &u.CreatedAt); err != nil {
		return nil, noRows(op, err)
	}
	return u, nil
}

// ListUsers возвращает всех пользователей, новые первыми.
func (s *Storage) ListUsers(ctx context.Context) ([]*models.User, error) {
	const op = "storage.ListUsers"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT uid, email, username, password_hash, role, status, created_at
			  FROM users
			  ORDER BY created_at DESC`
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.User
	for rows.Next() {
		var u models.User
		if err := rows.Scan(&u.UID, &u.Email, &u.Username, &u.PasswordHash,
			&u.Role, &u.Status, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, &u)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// ListDirectory возвращает справочник пользователей для выбора allowed_users.
func (s *Storage) ListDirectory(ctx context.Context) ([]*models.DirectoryUser, error) {
	const op = "storage.ListDirectory"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT uid, username, email
			  FROM users
			  WHERE status = 'active'
			  ORDER BY username`
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.DirectoryUser
	for rows.Next() {
		var d models.DirectoryUser
		if err := rows.Scan(&d.UID, &d.Username, &d.Email); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, &d)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// UpdateUserStatus переводит учётную запись в новый статус и возвращает
// количество изменённых строк.
func (s *Storage) UpdateUserStatus(ctx context.Context, userUID, status string) (int, error) {
	const op = "storage.UpdateUserStatus"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE users
			  SET status = $1
			  WHERE uid = $2`
	result, err := s.DB.ExecContext(ctx, query, status, userUID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}

// UpsertDefaultAdmin создает либо обновляет учётную запись администратора,
// используемую при первом запуске сервиса.
func (s *Storage) UpsertDefaultAdmin(ctx context.Context, email, username, passwordHash string) error {
	const op = "storage.UpsertDefaultAdmin"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO users (email, username, password_hash, role, status)
			  VALUES ($1, $2, $3, 'admin', 'active')
			  ON CONFLICT (username) DO UPDATE
			  SET email = EXCLUDED.email,
			      password_hash = EXCLUDED.password_hash,
			      role = 'admin',
			      status = 'active'`
	if _, err := s.DB.ExecContext(ctx, query, email, username, passwordHash); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

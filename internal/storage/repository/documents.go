package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/grigorevv/docvault/internal/models"
)

// Столбцы документа с именем владельца, единые для всех выборок.
// Массив allowed_users проходит через database/sql строкой: uuid[] не
// сканируется в []string напрямую.
const documentColumns = `
	d.id, d.name, d.mime_type, d.size, d.notes,
	d.owner_id, u.username AS owner_name,
	d.permission, array_to_string(d.allowed_users, ','), d.download_preauthorized,
	d.storage_rel_path, d.created_at, d.updated_at`

const documentReturning = `
	id, name, mime_type, size, notes,
	owner_id, (SELECT username FROM users WHERE uid = owner_id) AS owner_name,
	permission, array_to_string(allowed_users, ','), download_preauthorized,
	storage_rel_path, created_at, updated_at`

func joinUUIDs(uids []string) string {
	return strings.Join(uids, ",")
}

func splitUUIDs(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, ",")
}

func scanDocument(row interface{ Scan(...any) error }) (*models.Document, error) {
	var d models.Document
	var allowed string
	if err := row.Scan(&d.ID, &d.Name, &d.MimeType, &d.Size, &d.Notes,
		&d.OwnerID, &d.OwnerName,
		&d.Permission, &allowed, &d.DownloadPreauthorized,
		&d.StorageRelPath, &d.CreatedAt, &d.UpdatedAt); err != nil {
		return nil, err
	}
	d.AllowedUsers = splitUUIDs(allowed)
	return &d, nil
}

// CreateDocument вставляет новый документ и возвращает запись с именем владельца.
func (s *Storage) CreateDocument(ctx context.Context, doc models.Document) (*models.Document, error) {
	const op = "storage.CreateDocument"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO documents
			      (id, name, mime_type, size, notes, owner_id, permission,
			       allowed_users, download_preauthorized, storage_rel_path)
			  VALUES ($1, $2, $3, $4, $5, $6, $7,
			      COALESCE(string_to_array(NULLIF($8, ''), ','), '{}')::uuid[], $9, $10)
			  RETURNING ` + documentReturning
	row := s.DB.QueryRowContext(ctx, query,
		doc.ID, doc.Name, doc.MimeType, doc.Size, doc.Notes, doc.OwnerID,
		doc.Permission, joinUUIDs(doc.AllowedUsers), doc.DownloadPreauthorized, doc.StorageRelPath)
	result, err := scanDocument(row)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// ReadDocument возвращает документ по его ID.
func (s *Storage) ReadDocument(ctx context.Context, id string) (*models.Document, error) {
	const op = "storage.ReadDocument"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + documentColumns + `
			  FROM documents d
			  JOIN users u ON u.uid = d.owner_id
			  WHERE d.id = $1`
	result, err := scanDocument(s.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, noRows(op, err)
	}
	return result, nil
}

// ListDocuments возвращает все документы, новые первыми.
// Фильтрация по видимости — обязанность сервиса.
func (s *Storage) ListDocuments(ctx context.Context) ([]*models.Document, error) {
	const op = "storage.ListDocuments"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + documentColumns + `
			  FROM documents d
			  JOIN users u ON u.uid = d.owner_id
			  ORDER BY d.created_at DESC`
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.Document
	for rows.Next() {
		item, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, item)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// UpdateDocument обновляет изменяемые поля документа и возвращает свежую запись.
func (s *Storage) UpdateDocument(ctx context.Context, id string, doc models.Document) (*models.Document, error) {
	const op = "storage.UpdateDocument"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE documents
			  SET name = $2, notes = $3, permission = $4,
			      allowed_users = COALESCE(string_to_array(NULLIF($5, ''), ','), '{}')::uuid[],
			      download_preauthorized = $6, updated_at = now()
			  WHERE id = $1
			  RETURNING ` + documentReturning
	row := s.DB.QueryRowContext(ctx, query,
		id, doc.Name, doc.Notes, doc.Permission, joinUUIDs(doc.AllowedUsers), doc.DownloadPreauthorized)
	result, err := scanDocument(row)
	if err != nil {
		return nil, noRows(op, err)
	}
	return result, nil
}

// RemoveDocument удаляет документ по ID и возвращает количество удалённых строк.
// Заявки на скачивание удаляются каскадно внешним ключом в том же операторе,
// так что строка документа и его заявки исчезают неделимо.
func (s *Storage) RemoveDocument(ctx context.Context, id string) (int, error) {
	const op = "storage.RemoveDocument"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `DELETE FROM documents WHERE id = $1`
	result, err := s.DB.ExecContext(ctx, query, id)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}

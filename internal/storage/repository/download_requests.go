package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/grigorevv/docvault/internal/domain"
	"github.com/grigorevv/docvault/internal/models"
)

// Столбцы заявки с именем заявителя, единые для всех выборок.
const requestColumns = `
	r.id, r.document_id, r.requester_id, u.username AS requester_name,
	r.applicant_name, r.applicant_company, r.applicant_contact, r.message,
	r.status, r.approver_id,
	r.created_at, r.updated_at, r.approved_at, r.rejected_at, r.expires_at`

const requestReturning = `
	id, document_id, requester_id,
	(SELECT username FROM users WHERE uid = requester_id) AS requester_name,
	applicant_name, applicant_company, applicant_contact, message,
	status, approver_id,
	created_at, updated_at, approved_at, rejected_at, expires_at`

func scanRequest(row interface{ Scan(...any) error }) (*models.DownloadRequest, error) {
	var r models.DownloadRequest
	if err := row.Scan(&r.ID, &r.DocumentID, &r.RequesterID, &r.RequesterName,
		&r.ApplicantName, &r.ApplicantCompany, &r.ApplicantContact, &r.Message,
		&r.Status, &r.ApproverID,
		&r.CreatedAt, &r.UpdatedAt, &r.ApprovedAt, &r.RejectedAt, &r.ExpiresAt); err != nil {
		return nil, err
	}
	return &r, nil
}

// CreateRequest вставляет новую pending-заявку одним оператором.
// Уникальность pending-заявки на пару (document_id, requester_id)
// обеспечивает частичный уникальный индекс: при гонке вторая вставка
// получает нарушение уникальности и возвращается как ErrDuplicateRequest.
// Нарушение внешнего ключа на document_id означает, что документ
// удалён, и возвращается как ErrDocumentNotFound.
func (s *Storage) CreateRequest(ctx context.Context, req models.DownloadRequest) (*models.DownloadRequest, error) {
	const op = "storage.CreateRequest"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO download_requests
			      (id, document_id, requester_id, applicant_name,
			       applicant_company, applicant_contact, message, status)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, 'pending')
			  RETURNING ` + requestReturning
	row := s.DB.QueryRowContext(ctx, query,
		req.ID, req.DocumentID, req.RequesterID, req.ApplicantName,
		req.ApplicantCompany, req.ApplicantContact, req.Message)
	result, err := scanRequest(row)
	if err != nil {
		if isPgError(err, pgUniqueViolation) {
			return nil, fmt.Errorf("%s: %w", op, domain.ErrDuplicateRequest)
		}
		if isPgError(err, pgForeignKeyViolation) {
			return nil, fmt.Errorf("%s: %w", op, domain.ErrDocumentNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// GetRequest возвращает заявку по её ID.
func (s *Storage) GetRequest(ctx context.Context, id string) (*models.DownloadRequest, error) {
	const op = "storage.GetRequest"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + requestColumns + `
			  FROM download_requests r
			  JOIN users u ON u.uid = r.requester_id
			  WHERE r.id = $1`
	result, err := scanRequest(s.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, noRows(op, err)
	}
	return result, nil
}

// ApproveRequest переводит заявку pending → approved одним условным UPDATE.
// Условие status = 'pending' делает переход атомарным: из двух конкурентных
// решений строку изменит ровно одно, второе не найдёт pending-строки и
// получит ErrInvalidTransition.
func (s *Storage) ApproveRequest(ctx context.Context, id, approverID string, expiresAt time.Time) (*models.DownloadRequest, error) {
	const op = "storage.ApproveRequest"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE download_requests
			  SET status = 'approved', approver_id = $2,
			      approved_at = now(), expires_at = $3, updated_at = now()
			  WHERE id = $1 AND status = 'pending'
			  RETURNING ` + requestReturning
	row := s.DB.QueryRowContext(ctx, query, id, approverID, expiresAt)
	result, err := scanRequest(row)
	if err != nil {
		return nil, invalidTransition(op, err)
	}
	return result, nil
}

// RejectRequest переводит заявку pending → rejected тем же условным UPDATE,
// что и одобрение.
func (s *Storage) RejectRequest(ctx context.Context, id, approverID string) (*models.DownloadRequest, error) {
	const op = "storage.RejectRequest"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE download_requests
			  SET status = 'rejected', approver_id = $2,
			      rejected_at = now(), updated_at = now()
			  WHERE id = $1 AND status = 'pending'
			  RETURNING ` + requestReturning
	row := s.DB.QueryRowContext(ctx, query, id, approverID)
	result, err := scanRequest(row)
	if err != nil {
		return nil, invalidTransition(op, err)
	}
	return result, nil
}

// FindActiveApproval возвращает действующее на момент now одобрение для пары
// (документ, заявитель) либо nil без ошибки, когда его нет.
func (s *Storage) FindActiveApproval(ctx context.Context, documentID, requesterID string, now time.Time) (*models.DownloadRequest, error) {
	const op = "storage.FindActiveApproval"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + requestColumns + `
			  FROM download_requests r
			  JOIN users u ON u.uid = r.requester_id
			  WHERE r.document_id = $1 AND r.requester_id = $2
			      AND r.status = 'approved'
			      AND (r.expires_at IS NULL OR r.expires_at > $3)
			  ORDER BY r.approved_at DESC
			  LIMIT 1`
	result, err := scanRequest(s.DB.QueryRowContext(ctx, query, documentID, requesterID, now))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// ListPendingForOwner возвращает pending-заявки на документы владельца,
// старые первыми.
func (s *Storage) ListPendingForOwner(ctx context.Context, ownerID string) ([]*models.DownloadRequest, error) {
	const op = "storage.ListPendingForOwner"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + requestColumns + `
			  FROM download_requests r
			  JOIN users u ON u.uid = r.requester_id
			  JOIN documents d ON d.id = r.document_id
			  WHERE r.status = 'pending' AND d.owner_id = $1
			  ORDER BY r.created_at`
	return s.listRequests(ctx, op, query, ownerID)
}

// ListPendingAll возвращает все pending-заявки, старые первыми.
// Используется административным обзором.
func (s *Storage) ListPendingAll(ctx context.Context) ([]*models.DownloadRequest, error) {
	const op = "storage.ListPendingAll"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + requestColumns + `
			  FROM download_requests r
			  JOIN users u ON u.uid = r.requester_id
			  WHERE r.status = 'pending'
			  ORDER BY r.created_at`
	return s.listRequests(ctx, op, query)
}

// ListByRequester возвращает все заявки пользователя, новые первыми.
func (s *Storage) ListByRequester(ctx context.Context, requesterID string) ([]*models.DownloadRequest, error) {
	const op = "storage.ListByRequester"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + requestColumns + `
			  FROM download_requests r
			  JOIN users u ON u.uid = r.requester_id
			  WHERE r.requester_id = $1
			  ORDER BY r.created_at DESC`
	return s.listRequests(ctx, op, query, requesterID)
}

func (s *Storage) listRequests(ctx context.Context, op, query string, args ...any) ([]*models.DownloadRequest, error) {
	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.DownloadRequest
	for rows.Next() {
		item, err := scanRequest(rows)
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

// Package services содержит бизнес-логику workflow одобрения скачиваний:
// подачу заявок, решения владельца и выборки для обзоров.
package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/grigorevv/docvault/internal/domain"
	"github.com/grigorevv/docvault/internal/lib/sl"
	"github.com/grigorevv/docvault/internal/models"
	"github.com/grigorevv/docvault/internal/policy"
)

// RequestRepository определяет методы для работы с заявками в хранилище.
type RequestRepository interface {
	// CreateRequest вставляет pending-заявку, атомарно проверяя уникальность.
	CreateRequest(ctx context.Context, req models.DownloadRequest) (*models.DownloadRequest, error)
	// GetRequest возвращает заявку по ID.
	GetRequest(ctx context.Context, id string) (*models.DownloadRequest, error)
	// ApproveRequest атомарно переводит pending → approved.
	ApproveRequest(ctx context.Context, id, approverID string, expiresAt time.Time) (*models.DownloadRequest, error)
	// RejectRequest атомарно переводит pending → rejected.
	RejectRequest(ctx context.Context, id, approverID string) (*models.DownloadRequest, error)
	// FindActiveApproval ищет действующее одобрение для пары (документ, заявитель).
	FindActiveApproval(ctx context.Context, documentID, requesterID string, now time.Time) (*models.DownloadRequest, error)
	// ListPendingForOwner возвращает pending-заявки на документы владельца.
	ListPendingForOwner(ctx context.Context, ownerID string) ([]*models.DownloadRequest, error)
	// ListPendingAll возвращает все pending-заявки.
	ListPendingAll(ctx context.Context) ([]*models.DownloadRequest, error)
	// ListByRequester возвращает заявки пользователя.
	ListByRequester(ctx context.Context, requesterID string) ([]*models.DownloadRequest, error)
}

// DocumentReader читает документы для проверок видимости и полномочий.
type DocumentReader interface {
	ReadDocument(ctx context.Context, id string) (*models.Document, error)
}

// EventPublisher отправляет события жизненного цикла заявки в очередь уведомлений.
type EventPublisher interface {
	Publish(event any) error
}

// Типы событий жизненного цикла заявки.
const (
	EventRequestCreated  = "request.created"
	EventRequestApproved = "request.approved"
	EventRequestRejected = "request.rejected"
)

// RequestService реализует workflow одобрения скачиваний.
type RequestService struct {
	repo        RequestRepository
	docs        DocumentReader
	events      EventPublisher
	approvalTTL time.Duration
	log         *slog.Logger
}

// NewRequestService создает новый экземпляр RequestService.
func NewRequestService(repo RequestRepository, docs DocumentReader,
	events EventPublisher, approvalTTL time.Duration, log *slog.Logger) *RequestService {
	return &RequestService{
		repo:        repo,
		docs:        docs,
		events:      events,
		approvalTTL: approvalTTL,
		log:         log,
	}
}

// Create подаёт заявку на скачивание документа.
// Заявка не принимается, когда документ невидим, когда доступ к байтам
// уже разрешён и когда pending-заявка по этой паре уже существует.
func (s *RequestService) Create(ctx context.Context, user *models.User,
	documentID string, form models.DummyDownloadRequest) (*models.DownloadRequest, error) {
	if user == nil {
		return nil, domain.ErrUnauthenticated
	}
	doc, err := s.docs.ReadDocument(ctx, documentID)
	if err != nil {
		return nil, err
	}
	if !policy.MayView(doc, user) {
		return nil, domain.ErrNotFound
	}

	now := time.Now().UTC()
	approval, err := s.repo.FindActiveApproval(ctx, documentID, user.UID, now)
	if err != nil {
		return nil, err
	}
	if policy.MayFetchBytes(doc, user, approval, now) {
		return nil, domain.ErrAlreadyAuthorized
	}

	req := models.DownloadRequest{
		ID:               uuid.NewString(),
		DocumentID:       documentID,
		RequesterID:      user.UID,
		ApplicantName:    form.ApplicantName,
		ApplicantCompany: form.ApplicantCompany,
		ApplicantContact: form.ApplicantContact,
		Message:          form.Message,
	}
	created, err := s.repo.CreateRequest(ctx, req)
	if err != nil {
		return nil, err
	}

	s.publish(EventRequestCreated, created, doc.OwnerID)
	s.log.Info("download request created",
		slog.String("request_id", created.ID),
		slog.String("document_id", documentID))
	return created, nil
}

// Approve одобряет pending-заявку от имени владельца документа или
// администратора. Срок действия отсчитывается от момента решения.
func (s *RequestService) Approve(ctx context.Context, actor *models.User, requestID string) (*models.DownloadRequest, error) {
	doc, req, err := s.loadForDecision(ctx, actor, requestID)
	if err != nil {
		return nil, err
	}

	expiresAt := time.Now().UTC().Add(s.approvalTTL)
	approved, err := s.repo.ApproveRequest(ctx, requestID, actor.UID, expiresAt)
	if err != nil {
		return nil, err
	}

	s.publish(EventRequestApproved, approved, doc.OwnerID)
	s.log.Info("download request approved",
		slog.String("request_id", req.ID),
		slog.String("approver", actor.UID))
	return approved, nil
}

// Reject отклоняет pending-заявку от имени владельца документа или администратора.
func (s *RequestService) Reject(ctx context.Context, actor *models.User, requestID string) (*models.DownloadRequest, error) {
	doc, req, err := s.loadForDecision(ctx, actor, requestID)
	if err != nil {
		return nil, err
	}

	rejected, err := s.repo.RejectRequest(ctx, requestID, actor.UID)
	if err != nil {
		return nil, err
	}

	s.publish(EventRequestRejected, rejected, doc.OwnerID)
	s.log.Info("download request rejected",
		slog.String("request_id", req.ID),
		slog.String("approver", actor.UID))
	return rejected, nil
}

// ListPendingFor возвращает pending-заявки, ожидающие решения актора:
// администратору — все, владельцу — только на его документы.
func (s *RequestService) ListPendingFor(ctx context.Context, actor *models.User) ([]*models.DownloadRequest, error) {
	if actor == nil {
		return nil, domain.ErrUnauthenticated
	}
	if actor.IsAdmin() {
		return s.repo.ListPendingAll(ctx)
	}
	return s.repo.ListPendingForOwner(ctx, actor.UID)
}

// ListMine возвращает все заявки пользователя.
func (s *RequestService) ListMine(ctx context.Context, user *models.User) ([]*models.DownloadRequest, error) {
	if user == nil {
		return nil, domain.ErrUnauthenticated
	}
	return s.repo.ListByRequester(ctx, user.UID)
}

// FindActiveApproval возвращает действующее одобрение либо nil.
func (s *RequestService) FindActiveApproval(ctx context.Context, documentID, requesterID string, now time.Time) (*models.DownloadRequest, error) {
	return s.repo.FindActiveApproval(ctx, documentID, requesterID, now)
}

// loadForDecision загружает заявку и её документ, проверяя полномочия актора.
// Удалённый документ заявки отличим от прочих отказов: ErrDocumentNotFound.
func (s *RequestService) loadForDecision(ctx context.Context, actor *models.User, requestID string) (*models.Document, *models.DownloadRequest, error) {
	if actor == nil {
		return nil, nil, domain.ErrUnauthenticated
	}
	req, err := s.repo.GetRequest(ctx, requestID)
	if err != nil {
		return nil, nil, err
	}
	doc, err := s.docs.ReadDocument(ctx, req.DocumentID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, nil, domain.ErrDocumentNotFound
		}
		return nil, nil, err
	}
	if !policy.MayEdit(doc, actor) {
		return nil, nil, domain.ErrForbidden
	}
	return doc, req, nil
}

// publish отправляет событие, не прерывая операцию при недоступности брокера.
func (s *RequestService) publish(eventType string, req *models.DownloadRequest, ownerID string) {
	event := models.RequestEvent{
		Type:        eventType,
		RequestID:   req.ID,
		DocumentID:  req.DocumentID,
		RequesterID: req.RequesterID,
		OwnerID:     ownerID,
		OccurredAt:  time.Now().UTC(),
	}
	if err := s.events.Publish(event); err != nil {
		s.log.Warn("failed to publish request event",
			slog.String("type", eventType), sl.Err(err))
	}
}

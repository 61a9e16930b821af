// Package services содержит бизнес-логику работы с документами: реестр,
// контроль доступа при чтении и изменении, выдача содержимого.
package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/grigorevv/docvault/internal/domain"
	"github.com/grigorevv/docvault/internal/lib/sl"
	"github.com/grigorevv/docvault/internal/models"
	"github.com/grigorevv/docvault/internal/policy"
)

// Ключ кэша витрины списка документов.
const listCacheKey = "documents:list"

// DocumentRepository определяет методы для работы с документами в хранилище.
type DocumentRepository interface {
	// CreateDocument добавляет документ и возвращает созданную запись.
	CreateDocument(ctx context.Context, doc models.Document) (*models.Document, error)
	// ReadDocument возвращает документ по ID.
	ReadDocument(ctx context.Context, id string) (*models.Document, error)
	// ListDocuments возвращает все документы.
	ListDocuments(ctx context.Context) ([]*models.Document, error)
	// UpdateDocument обновляет изменяемые поля и возвращает свежую запись.
	UpdateDocument(ctx context.Context, id string, doc models.Document) (*models.Document, error)
	// RemoveDocument удаляет документ, каскадно удаляя его заявки.
	RemoveDocument(ctx context.Context, id string) (int, error)
}

// ApprovalFinder ищет действующее одобрение на скачивание.
type ApprovalFinder interface {
	FindActiveApproval(ctx context.Context, documentID, requesterID string, now time.Time) (*models.DownloadRequest, error)
}

// FileStore управляет содержимым документов на диске.
type FileStore interface {
	Save(documentID, filename string, src io.Reader) (string, int64, error)
	Open(relPath string) (*os.File, error)
	Remove(documentID string) error
}

// Cache описывает методы для кэширования данных.
type Cache interface {
	Get(key string, result any) (bool, error)
	Set(key string, value any, expiration time.Duration) error
	Invalidate(key string) error
}

// DocumentService реализует операции реестра документов.
type DocumentService struct {
	repo      DocumentRepository
	approvals ApprovalFinder
	files     FileStore
	cache     Cache
	log       *slog.Logger
}

// NewDocumentService создает новый экземпляр DocumentService.
func NewDocumentService(repo DocumentRepository, approvals ApprovalFinder,
	files FileStore, cache Cache, log *slog.Logger) *DocumentService {
	return &DocumentService{
		repo:      repo,
		approvals: approvals,
		files:     files,
		cache:     cache,
		log:       log,
	}
}

// List возвращает документы, видимые пользователю.
// Кэшируется только полный список-витрина; фильтрация по видимости
// выполняется для каждого запроса заново.
func (s *DocumentService) List(ctx context.Context, user *models.User) ([]models.DocumentDTO, error) {
	var docs []*models.Document
	found, err := s.cache.Get(listCacheKey, &docs)
	if err != nil {
		s.log.Warn("failed to read list from cache", sl.Err(err))
	}
	if !found {
		docs, err = s.repo.ListDocuments(ctx)
		if err != nil {
			return nil, err
		}
		if err := s.cache.Set(listCacheKey, docs, time.Minute); err != nil {
			s.log.Warn("failed to cache document list", sl.Err(err))
		}
	}

	result := make([]models.DocumentDTO, 0, len(docs))
	for _, doc := range docs {
		if policy.MayView(doc, user) {
			result = append(result, doc.ToDTO())
		}
	}
	return result, nil
}

// Read возвращает документ по ID. Невидимый документ неотличим
// от несуществующего.
func (s *DocumentService) Read(ctx context.Context, user *models.User, id string) (*models.Document, error) {
	doc, err := s.repo.ReadDocument(ctx, id)
	if err != nil {
		return nil, err
	}
	if !policy.MayView(doc, user) {
		return nil, domain.ErrNotFound
	}
	return doc, nil
}

// Upload сохраняет содержимое на диск и регистрирует документ.
// При ошибке вставки сохранённый файл удаляется.
func (s *DocumentService) Upload(ctx context.Context, user *models.User,
	filename, mimeType, notes, permission string, allowedUsers []string,
	preauthorized bool, src io.Reader) (*models.Document, error) {
	if user == nil {
		return nil, domain.ErrUnauthenticated
	}
	if permission == "" {
		permission = models.PermissionPrivate
	}
	if !models.ValidPermission(permission) {
		return nil, fmt.Errorf("invalid permission %q", permission)
	}
	if permission != models.PermissionSpecific {
		allowedUsers = nil
	}

	id := uuid.NewString()
	relPath, size, err := s.files.Save(id, filename, src)
	if err != nil {
		return nil, err
	}

	doc := models.Document{
		ID:                    id,
		Name:                  filename,
		MimeType:              mimeType,
		Size:                  size,
		Notes:                 notes,
		OwnerID:               user.UID,
		Permission:            permission,
		AllowedUsers:          allowedUsers,
		DownloadPreauthorized: preauthorized,
		StorageRelPath:        relPath,
	}
	created, err := s.repo.CreateDocument(ctx, doc)
	if err != nil {
		if rmErr := s.files.Remove(id); rmErr != nil {
			s.log.Warn("failed to remove orphan blob", sl.Err(rmErr))
		}
		return nil, err
	}

	s.invalidateList()
	s.log.Info("document uploaded",
		slog.String("id", created.ID), slog.String("owner", user.UID))
	return created, nil
}

// Patch изменяет метаданные и дескриптор прав документа.
// Правка разрешена владельцу и администратору; список allowed_users
// очищается, когда режим доступа не specific.
func (s *DocumentService) Patch(ctx context.Context, user *models.User,
	id string, upd models.DummyDocumentUpdate) (*models.Document, error) {
	doc, err := s.Read(ctx, user, id)
	if err != nil {
		return nil, err
	}
	if !policy.MayEdit(doc, user) {
		return nil, domain.ErrForbidden
	}

	if upd.Name != nil {
		doc.Name = *upd.Name
	}
	if upd.Notes != nil {
		doc.Notes = *upd.Notes
	}
	if upd.Permission != nil {
		if !models.ValidPermission(*upd.Permission) {
			return nil, fmt.Errorf("invalid permission %q", *upd.Permission)
		}
		doc.Permission = *upd.Permission
	}
	if upd.AllowedUsers != nil {
		doc.AllowedUsers = upd.AllowedUsers
	}
	if upd.DownloadPreauthorized != nil {
		doc.DownloadPreauthorized = *upd.DownloadPreauthorized
	}
	if doc.Permission != models.PermissionSpecific {
		doc.AllowedUsers = nil
	}

	updated, err := s.repo.UpdateDocument(ctx, id, *doc)
	if err != nil {
		return nil, err
	}
	s.invalidateList()
	s.log.Info("document updated", slog.String("id", id))
	return updated, nil
}

// Delete удаляет документ вместе с его заявками и содержимым на диске.
// Строки базы исчезают атомарно; ошибка удаления файла лишь логируется.
func (s *DocumentService) Delete(ctx context.Context, user *models.User, id string) error {
	doc, err := s.Read(ctx, user, id)
	if err != nil {
		return err
	}
	if !policy.MayEdit(doc, user) {
		return domain.ErrForbidden
	}

	count, err := s.repo.RemoveDocument(ctx, id)
	if err != nil {
		return err
	}
	if count == 0 {
		return domain.ErrNotFound
	}
	if err := s.files.Remove(id); err != nil {
		s.log.Warn("failed to remove document blob", sl.Err(err))
	}
	s.invalidateList()
	s.log.Info("document removed", slog.String("id", id))
	return nil
}

// Download решает, можно ли выдать байты, по единому свежему снимку
// документа и заявки, и открывает содержимое. Закрытый просмотр даёт
// "не найдено", открытый просмотр без действующего разрешения — отказ.
func (s *DocumentService) Download(ctx context.Context, user *models.User, id string) (io.ReadCloser, *models.Document, error) {
	doc, err := s.Read(ctx, user, id)
	if err != nil {
		return nil, nil, err
	}

	var approval *models.DownloadRequest
	if user != nil {
		approval, err = s.approvals.FindActiveApproval(ctx, id, user.UID, time.Now().UTC())
		if err != nil {
			return nil, nil, err
		}
	}
	if !policy.MayFetchBytes(doc, user, approval, time.Now().UTC()) {
		return nil, nil, domain.ErrApprovalRequired
	}

	f, err := s.files.Open(doc.StorageRelPath)
	if err != nil {
		// одна повторная попытка на случай временной ошибки диска
		f, err = s.files.Open(doc.StorageRelPath)
		if err != nil {
			return nil, nil, err
		}
	}
	return f, doc, nil
}

func (s *DocumentService) invalidateList() {
	if err := s.cache.Invalidate(listCacheKey); err != nil {
		s.log.Warn("failed to invalidate document list cache", sl.Err(err))
	}
}

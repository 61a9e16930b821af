package services_test

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/grigorevv/docvault/internal/domain"
	"github.com/grigorevv/docvault/internal/models"
	services "github.com/grigorevv/docvault/internal/services/document"
)

type DocRepoMock struct {
	mock.Mock
}

func (m *DocRepoMock) CreateDocument(ctx context.Context, doc models.Document) (*models.Document, error) {
	args := m.Called(ctx, doc)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Document), args.Error(1)
}

func (m *DocRepoMock) ReadDocument(ctx context.Context, id string) (*models.Document, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Document), args.Error(1)
}

func (m *DocRepoMock) ListDocuments(ctx context.Context) ([]*models.Document, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Document), args.Error(1)
}

func (m *DocRepoMock) UpdateDocument(ctx context.Context, id string, doc models.Document) (*models.Document, error) {
	args := m.Called(ctx, id, doc)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Document), args.Error(1)
}

func (m *DocRepoMock) RemoveDocument(ctx context.Context, id string) (int, error) {
	args := m.Called(ctx, id)
	return args.Int(0), args.Error(1)
}

type ApprovalFinderMock struct {
	mock.Mock
}

func (m *ApprovalFinderMock) FindActiveApproval(ctx context.Context, documentID, requesterID string, now time.Time) (*models.DownloadRequest, error) {
	args := m.Called(ctx, documentID, requesterID, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.DownloadRequest), args.Error(1)
}

type FileStoreMock struct {
	mock.Mock
}

func (m *FileStoreMock) Save(documentID, filename string, src io.Reader) (string, int64, error) {
	args := m.Called(documentID, filename, src)
	return args.String(0), args.Get(1).(int64), args.Error(2)
}

func (m *FileStoreMock) Open(relPath string) (*os.File, error) {
	args := m.Called(relPath)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*os.File), args.Error(1)
}

func (m *FileStoreMock) Remove(documentID string) error {
	args := m.Called(documentID)
	return args.Error(0)
}

// CacheMock всегда промахивается, имитируя холодный кэш.
type CacheMock struct {
	mock.Mock
}

func (m *CacheMock) Get(key string, result any) (bool, error) {
	args := m.Called(key, result)
	return args.Bool(0), args.Error(1)
}

func (m *CacheMock) Set(key string, value any, expiration time.Duration) error {
	args := m.Called(key, value, expiration)
	return args.Error(0)
}

func (m *CacheMock) Invalidate(key string) error {
	args := m.Called(key)
	return args.Error(0)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

var (
	owner    = &models.User{UID: "owner-1", Role: models.RoleUser, Status: models.UserStatusActive}
	stranger = &models.User{UID: "str-1", Role: models.RoleUser, Status: models.UserStatusActive}
	admin    = &models.User{UID: "adm-1", Role: models.RoleAdmin, Status: models.UserStatusActive}
)

func privateDoc() *models.Document {
	return &models.Document{
		ID:             "doc-1",
		Name:           "report.pdf",
		OwnerID:        owner.UID,
		Permission:     models.PermissionPrivate,
		StorageRelPath: filepath.Join("doc-1", "report.pdf"),
	}
}

type fixture struct {
	repo      *DocRepoMock
	approvals *ApprovalFinderMock
	files     *FileStoreMock
	cache     *CacheMock
	svc       *services.DocumentService
}

func newFixture() *fixture {
	f := &fixture{
		repo:      new(DocRepoMock),
		approvals: new(ApprovalFinderMock),
		files:     new(FileStoreMock),
		cache:     new(CacheMock),
	}
	f.svc = services.NewDocumentService(f.repo, f.approvals, f.files, f.cache, newNoopLogger())
	return f
}

func TestDocumentService_List(t *testing.T) {
	f := newFixture()
	docs := []*models.Document{
		privateDoc(),
		{ID: "doc-2", OwnerID: stranger.UID, Permission: models.PermissionPublic},
	}
	f.cache.On("Get", "documents:list", mock.Anything).Return(false, nil).Once()
	f.repo.On("ListDocuments", mock.Anything).Return(docs, nil).Once()
	f.cache.On("Set", "documents:list", mock.Anything, mock.Anything).Return(nil).Once()

	got, err := f.svc.List(context.Background(), stranger)
	require.NoError(t, err)
	// приватный чужой документ в списке не виден
	require.Len(t, got, 1)
	assert.Equal(t, "doc-2", got[0].ID)
}

func TestDocumentService_Read(t *testing.T) {
	tests := []struct {
		name    string
		user    *models.User
		wantErr error
	}{
		{"владелец читает", owner, nil},
		{"админ читает", admin, nil},
		{"чужой получает не найдено", stranger, domain.ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			f.repo.On("ReadDocument", mock.Anything, "doc-1").Return(privateDoc(), nil).Once()

			got, err := f.svc.Read(context.Background(), tt.user, "doc-1")
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, "doc-1", got.ID)
			}
		})
	}
}

func TestDocumentService_Upload(t *testing.T) {
	t.Run("успешная загрузка", func(t *testing.T) {
		f := newFixture()
		f.files.On("Save", mock.Anything, "report.pdf", mock.Anything).
			Return(filepath.Join("some-id", "report.pdf"), int64(7), nil).Once()
		f.repo.On("CreateDocument", mock.Anything, mock.MatchedBy(func(d models.Document) bool {
			return d.OwnerID == owner.UID && d.Size == 7 && d.Permission == models.PermissionPrivate
		})).Return(privateDoc(), nil).Once()
		f.cache.On("Invalidate", "documents:list").Return(nil).Once()

		got, err := f.svc.Upload(context.Background(), owner,
			"report.pdf", "application/pdf", "", "", nil, false, nil)
		require.NoError(t, err)
		assert.Equal(t, "doc-1", got.ID)
	})

	t.Run("allowed_users очищается вне specific", func(t *testing.T) {
		f := newFixture()
		f.files.On("Save", mock.Anything, mock.Anything, mock.Anything).
			Return("p", int64(1), nil).Once()
		f.repo.On("CreateDocument", mock.Anything, mock.MatchedBy(func(d models.Document) bool {
			return d.AllowedUsers == nil
		})).Return(privateDoc(), nil).Once()
		f.cache.On("Invalidate", "documents:list").Return(nil).Once()

		_, err := f.svc.Upload(context.Background(), owner,
			"a", "text/plain", "", models.PermissionPublic, []string{"u-9"}, false, nil)
		require.NoError(t, err)
	})

	t.Run("при ошибке вставки файл удаляется", func(t *testing.T) {
		f := newFixture()
		f.files.On("Save", mock.Anything, mock.Anything, mock.Anything).
			Return("p", int64(1), nil).Once()
		f.repo.On("CreateDocument", mock.Anything, mock.Anything).
			Return(nil, domain.ErrNotFound).Once()
		f.files.On("Remove", mock.Anything).Return(nil).Once()

		_, err := f.svc.Upload(context.Background(), owner,
			"a", "text/plain", "", "", nil, false, nil)
		assert.Error(t, err)
		f.files.AssertExpectations(t)
	})
}

func TestDocumentService_Patch(t *testing.T) {
	notes := "updated"
	public := models.PermissionPublic

	t.Run("владелец меняет метаданные", func(t *testing.T) {
		f := newFixture()
		f.repo.On("ReadDocument", mock.Anything, "doc-1").Return(privateDoc(), nil).Once()
		f.repo.On("UpdateDocument", mock.Anything, "doc-1",
			mock.MatchedBy(func(d models.Document) bool {
				return d.Notes == "updated" && d.Permission == models.PermissionPublic
			})).Return(privateDoc(), nil).Once()
		f.cache.On("Invalidate", "documents:list").Return(nil).Once()

		_, err := f.svc.Patch(context.Background(), owner, "doc-1",
			models.DummyDocumentUpdate{Notes: &notes, Permission: &public})
		assert.NoError(t, err)
	})

	t.Run("видящий без прав правки получает отказ", func(t *testing.T) {
		f := newFixture()
		doc := privateDoc()
		doc.Permission = models.PermissionPublic
		f.repo.On("ReadDocument", mock.Anything, "doc-1").Return(doc, nil).Once()

		_, err := f.svc.Patch(context.Background(), stranger, "doc-1",
			models.DummyDocumentUpdate{Notes: &notes})
		assert.ErrorIs(t, err, domain.ErrForbidden)
	})

	t.Run("невидящий получает не найдено", func(t *testing.T) {
		f := newFixture()
		f.repo.On("ReadDocument", mock.Anything, "doc-1").Return(privateDoc(), nil).Once()

		_, err := f.svc.Patch(context.Background(), stranger, "doc-1",
			models.DummyDocumentUpdate{Notes: &notes})
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestDocumentService_Delete(t *testing.T) {
	f := newFixture()
	f.repo.On("ReadDocument", mock.Anything, "doc-1").Return(privateDoc(), nil).Once()
	f.repo.On("RemoveDocument", mock.Anything, "doc-1").Return(1, nil).Once()
	f.files.On("Remove", "doc-1").Return(nil).Once()
	f.cache.On("Invalidate", "documents:list").Return(nil).Once()

	err := f.svc.Delete(context.Background(), owner, "doc-1")
	assert.NoError(t, err)
	f.files.AssertExpectations(t)
}

func TestDocumentService_Download(t *testing.T) {
	openTempFile := func(t *testing.T) *os.File {
		t.Helper()
		path := filepath.Join(t.TempDir(), "report.pdf")
		require.NoError(t, os.WriteFile(path, []byte("content"), 0o600))
		f, err := os.Open(path)
		require.NoError(t, err)
		return f
	}

	t.Run("владелец качает без заявки", func(t *testing.T) {
		f := newFixture()
		file := openTempFile(t)
		f.repo.On("ReadDocument", mock.Anything, "doc-1").Return(privateDoc(), nil).Once()
		f.approvals.On("FindActiveApproval", mock.Anything, "doc-1", owner.UID, mock.Anything).
			Return(nil, nil).Once()
		f.files.On("Open", mock.Anything).Return(file, nil).Once()

		rc, doc, err := f.svc.Download(context.Background(), owner, "doc-1")
		require.NoError(t, err)
		assert.Equal(t, "report.pdf", doc.Name)
		require.NoError(t, rc.Close())
	})

	t.Run("активное одобрение открывает байты", func(t *testing.T) {
		f := newFixture()
		file := openTempFile(t)
		doc := privateDoc()
		doc.Permission = models.PermissionPublic
		future := time.Now().UTC().Add(time.Hour)
		f.repo.On("ReadDocument", mock.Anything, "doc-1").Return(doc, nil).Once()
		f.approvals.On("FindActiveApproval", mock.Anything, "doc-1", stranger.UID, mock.Anything).
			Return(&models.DownloadRequest{
				Status:    models.RequestStatusApproved,
				ExpiresAt: &future,
			}, nil).Once()
		f.files.On("Open", mock.Anything).Return(file, nil).Once()

		rc, _, err := f.svc.Download(context.Background(), stranger, "doc-1")
		require.NoError(t, err)
		require.NoError(t, rc.Close())
	})

	t.Run("без одобрения отказ", func(t *testing.T) {
		f := newFixture()
		doc := privateDoc()
		doc.Permission = models.PermissionPublic
		f.repo.On("ReadDocument", mock.Anything, "doc-1").Return(doc, nil).Once()
		f.approvals.On("FindActiveApproval", mock.Anything, "doc-1", stranger.UID, mock.Anything).
			Return(nil, nil).Once()

		_, _, err := f.svc.Download(context.Background(), stranger, "doc-1")
		assert.ErrorIs(t, err, domain.ErrApprovalRequired)
	})

	t.Run("невидящему не найдено", func(t *testing.T) {
		f := newFixture()
		f.repo.On("ReadDocument", mock.Anything, "doc-1").Return(privateDoc(), nil).Once()

		_, _, err := f.svc.Download(context.Background(), stranger, "doc-1")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("одна повторная попытка открытия", func(t *testing.T) {
		f := newFixture()
		file := openTempFile(t)
		f.repo.On("ReadDocument", mock.Anything, "doc-1").Return(privateDoc(), nil).Once()
		f.approvals.On("FindActiveApproval", mock.Anything, "doc-1", owner.UID, mock.Anything).
			Return(nil, nil).Once()
		f.files.On("Open", mock.Anything).Return(nil, os.ErrNotExist).Once()
		f.files.On("Open", mock.Anything).Return(file, nil).Once()

		rc, _, err := f.svc.Download(context.Background(), owner, "doc-1")
		require.NoError(t, err)
		require.NoError(t, rc.Close())
		f.files.AssertExpectations(t)
	})
}

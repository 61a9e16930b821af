package read

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/grigorevv/docvault/internal/domain"
	"github.com/grigorevv/docvault/internal/http/middlewarectx"
	"github.com/grigorevv/docvault/internal/models"
)

type ServiceMock struct {
	mock.Mock
}

func (m *ServiceMock) Read(ctx context.Context, user *models.User, id string) (*models.Document, error) {
	args := m.Called(ctx, user, id)
	doc, _ := args.Get(0).(*models.Document)
	return doc, args.Error(1)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func newRequestWithUser(method, target, docID, userUID string) *http.Request {
	req := httptest.NewRequest(method, target, nil)

	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("id", docID)

	ctx := context.WithValue(req.Context(), chi.RouteCtxKey, rctx)
	ctx = context.WithValue(ctx, middleware.RequestIDKey, "reqid123")
	if userUID != "" {
		ctx = context.WithValue(ctx, middlewarectx.User, "user1")
		ctx = context.WithValue(ctx, middlewarectx.Role, "user")
		ctx = context.WithValue(ctx, middlewarectx.UserUID, userUID)
	}
	return req.WithContext(ctx)
}

func TestReadHandler_ServeHTTP(t *testing.T) {
	doc := &models.Document{
		ID:         "doc-1",
		Name:       "report.pdf",
		MimeType:   "application/pdf",
		OwnerID:    "owner-1",
		OwnerName:  "owner",
		Permission: models.PermissionPublic,
	}

	tests := []struct {
		name           string
		userUID        string
		mockDoc        *models.Document
		mockErr        error
		wantStatusCode int
		wantError      string
	}{
		{
			name:           "документ возвращается владельцу",
			userUID:        "owner-1",
			mockDoc:        doc,
			wantStatusCode: http.StatusOK,
		},
		{
			name:           "невидимый документ неотличим от несуществующего",
			userUID:        "stranger-1",
			mockErr:        domain.ErrNotFound,
			wantStatusCode: http.StatusNotFound,
			wantError:      "not found",
		},
		{
			name:           "несуществующий документ",
			userUID:        "owner-1",
			mockErr:        domain.ErrDocumentNotFound,
			wantStatusCode: http.StatusNotFound,
			wantError:      "document not found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			serviceMock := new(ServiceMock)
			handler := New(newNoopLogger(), serviceMock)

			serviceMock.On("Read", mock.Anything, mock.Anything, "doc-1").
				Return(tt.mockDoc, tt.mockErr).Once()

			req := newRequestWithUser(http.MethodGet, "/documents/doc-1", "doc-1", tt.userUID)
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatusCode, rec.Code)

			var got map[string]any
			err := json.NewDecoder(rec.Body).Decode(&got)
			assert.NoError(t, err)

			if tt.wantError != "" {
				assert.Equal(t, "Error", got["status"])
				assert.Equal(t, tt.wantError, got["error"])
				return
			}

			assert.Equal(t, "OK", got["status"])
			data := got["data"].(map[string]any)
			gotDoc := data["document"].(map[string]any)
			assert.Equal(t, doc.ID, gotDoc["id"])
			assert.Equal(t, doc.Name, gotDoc["name"])
			assert.Equal(t, doc.Permission, gotDoc["permission"])

			serviceMock.AssertExpectations(t)
		})
	}
}

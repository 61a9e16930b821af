package approve

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

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

func (m *ServiceMock) Approve(ctx context.Context, actor *models.User, requestID string) (*models.DownloadRequest, error) {
	args := m.Called(ctx, actor, requestID)
	req, _ := args.Get(0).(*models.DownloadRequest)
	return req, args.Error(1)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func newRequest(reqID, userUID, role string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/requests/"+reqID+"/approve", nil)

	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("id", reqID)

	ctx := context.WithValue(req.Context(), chi.RouteCtxKey, rctx)
	ctx = context.WithValue(ctx, middleware.RequestIDKey, "reqid123")
	ctx = context.WithValue(ctx, middlewarectx.User, "owner")
	ctx = context.WithValue(ctx, middlewarectx.Role, role)
	ctx = context.WithValue(ctx, middlewarectx.UserUID, userUID)
	return req.WithContext(ctx)
}

func TestApproveHandler_ServeHTTP(t *testing.T) {
	approverID := "owner-1"
	approvedAt := time.Now().UTC()
	expiresAt := approvedAt.Add(72 * time.Hour)

	approved := &models.DownloadRequest{
		ID:          "req-1",
		DocumentID:  "doc-1",
		RequesterID: "requester-1",
		Status:      models.RequestStatusApproved,
		ApproverID:  &approverID,
		ApprovedAt:  &approvedAt,
		ExpiresAt:   &expiresAt,
	}

	tests := []struct {
		name           string
		mockReq        *models.DownloadRequest
		mockErr        error
		wantStatusCode int
		wantError      string
	}{
		{
			name:           "владелец одобряет pending-заявку",
			mockReq:        approved,
			wantStatusCode: http.StatusOK,
		},
		{
			name:           "посторонний не вправе решать",
			mockErr:        domain.ErrForbidden,
			wantStatusCode: http.StatusForbidden,
			wantError:      "forbidden",
		},
		{
			name:           "заявка не найдена",
			mockErr:        domain.ErrNotFound,
			wantStatusCode: http.StatusNotFound,
			wantError:      "not found",
		},
		{
			name:           "документ заявки удален",
			mockErr:        domain.ErrDocumentNotFound,
			wantStatusCode: http.StatusNotFound,
			wantError:      "document not found",
		},
		{
			name:           "заявка уже в терминальном статусе",
			mockErr:        domain.ErrInvalidTransition,
			wantStatusCode: http.StatusConflict,
			wantError:      "request is not pending",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			serviceMock := new(ServiceMock)
			handler := New(newNoopLogger(), serviceMock)

			serviceMock.On("Approve", mock.Anything, mock.Anything, "req-1").
				Return(tt.mockReq, tt.mockErr).Once()

			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, newRequest("req-1", "owner-1", "user"))

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
			gotReq := data["request"].(map[string]any)
			assert.Equal(t, approved.ID, gotReq["id"])
			assert.Equal(t, models.RequestStatusApproved, gotReq["status"])
			assert.Equal(t, approverID, gotReq["approver_id"])

			serviceMock.AssertExpectations(t)
		})
	}
}

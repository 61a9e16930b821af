package create

import (
	"bytes"
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

func (m *ServiceMock) Create(ctx context.Context, user *models.User, documentID string, form models.DummyDownloadRequest) (*models.DownloadRequest, error) {
	args := m.Called(ctx, user, documentID, form)
	req, _ := args.Get(0).(*models.DownloadRequest)
	return req, args.Error(1)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func newRequest(body []byte, docID string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/documents/"+docID+"/requests", bytes.NewReader(body))

	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("id", docID)

	ctx := context.WithValue(req.Context(), chi.RouteCtxKey, rctx)
	ctx = context.WithValue(ctx, middleware.RequestIDKey, "reqid123")
	ctx = context.WithValue(ctx, middlewarectx.User, "requester")
	ctx = context.WithValue(ctx, middlewarectx.Role, "user")
	ctx = context.WithValue(ctx, middlewarectx.UserUID, "requester-1")
	return req.WithContext(ctx)
}

func TestCreateHandler_ServeHTTP(t *testing.T) {
	validForm := models.DummyDownloadRequest{
		ApplicantName:    "Иванов Иван",
		ApplicantCompany: "ООО Ромашка",
		ApplicantContact: "ivanov@example.com",
		Message:          "прошу доступ",
	}

	created := &models.DownloadRequest{
		ID:          "req-1",
		DocumentID:  "doc-1",
		RequesterID: "requester-1",
		Status:      models.RequestStatusPending,
	}

	tests := []struct {
		name           string
		requestBody    interface{}
		mockReq        *models.DownloadRequest
		mockErr        error
		mockExpected   bool
		wantStatusCode int
		wantError      string
	}{
		{
			name:           "успешная подача заявки",
			requestBody:    validForm,
			mockReq:        created,
			mockExpected:   true,
			wantStatusCode: http.StatusOK,
		},
		{
			name:           "некорректный json",
			requestBody:    "not a json",
			wantStatusCode: http.StatusBadRequest,
			wantError:      "invalid request body",
		},
		{
			name:           "не указано имя заявителя",
			requestBody:    models.DummyDownloadRequest{ApplicantCompany: "ООО Ромашка", ApplicantContact: "ivanov@example.com"},
			wantStatusCode: http.StatusUnprocessableEntity,
			wantError:      "field ApplicantName is a required field",
		},
		{
			name:           "документ невидим",
			requestBody:    validForm,
			mockErr:        domain.ErrNotFound,
			mockExpected:   true,
			wantStatusCode: http.StatusNotFound,
			wantError:      "not found",
		},
		{
			name:           "доступ уже разрешен",
			requestBody:    validForm,
			mockErr:        domain.ErrAlreadyAuthorized,
			mockExpected:   true,
			wantStatusCode: http.StatusConflict,
			wantError:      "download already authorized",
		},
		{
			name:           "pending-заявка уже существует",
			requestBody:    validForm,
			mockErr:        domain.ErrDuplicateRequest,
			mockExpected:   true,
			wantStatusCode: http.StatusConflict,
			wantError:      "pending request already exists",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			serviceMock := new(ServiceMock)
			handler := New(newNoopLogger(), serviceMock)

			if tt.mockExpected {
				serviceMock.On("Create", mock.Anything, mock.Anything, "doc-1", tt.requestBody.(models.DummyDownloadRequest)).
					Return(tt.mockReq, tt.mockErr).Once()
			}

			var bodyBytes []byte
			var err error
			switch v := tt.requestBody.(type) {
			case string:
				bodyBytes = []byte(v)
			default:
				bodyBytes, err = json.Marshal(tt.requestBody)
				if err != nil {
					t.Fatal(err)
				}
			}

			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, newRequest(bodyBytes, "doc-1"))

			assert.Equal(t, tt.wantStatusCode, rec.Code)

			var got map[string]any
			err = json.NewDecoder(rec.Body).Decode(&got)
			assert.NoError(t, err)

			if tt.wantError != "" {
				assert.Equal(t, "Error", got["status"])
				assert.Equal(t, tt.wantError, got["error"])
				return
			}

			assert.Equal(t, "OK", got["status"])
			data := got["data"].(map[string]any)
			gotReq := data["request"].(map[string]any)
			assert.Equal(t, created.ID, gotReq["id"])
			assert.Equal(t, created.Status, gotReq["status"])

			serviceMock.AssertExpectations(t)
		})
	}
}

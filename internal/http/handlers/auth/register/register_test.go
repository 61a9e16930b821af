package register

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/grigorevv/docvault/internal/domain"
	"github.com/grigorevv/docvault/internal/models"
)

type ServiceMock struct {
	mock.Mock
}

func (m *ServiceMock) Register(ctx context.Context, email, username, rawPassword string) (string, error) {
	args := m.Called(ctx, email, username, rawPassword)
	return args.String(0), args.Error(1)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func TestRegisterHandler_ServeHTTP(t *testing.T) {
	serviceMock := new(ServiceMock)
	logger := newNoopLogger()

	handler := New(logger, serviceMock)

	tests := []struct {
		name           string
		requestBody    interface{}
		mockUID        string
		mockErr        error
		mockExpected   bool
		wantStatusCode int
		wantData       map[string]any
		wantError      string
		wantStatus     string
	}{
		{
			name:           "успешная регистрация",
			requestBody:    models.DummyRegister{Email: "user@example.com", Username: "user1", Password: "password123"},
			mockUID:        "uid-1",
			mockExpected:   true,
			wantStatusCode: http.StatusOK,
			wantData: map[string]any{
				"uid":    "uid-1",
				"status": "pending",
			},
			wantStatus: "OK",
		},
		{
			name:           "некорректный json",
			requestBody:    "{broken",
			wantStatusCode: http.StatusBadRequest,
			wantError:      "invalid request body",
			wantStatus:     "Error",
		},
		{
			name:           "некорректный email",
			requestBody:    models.DummyRegister{Email: "not-an-email", Username: "user1", Password: "password123"},
			wantStatusCode: http.StatusUnprocessableEntity,
			wantError:      "field Email must be a valid email",
			wantStatus:     "Error",
		},
		{
			name:           "слишком короткий пароль",
			requestBody:    models.DummyRegister{Email: "user@example.com", Username: "user1", Password: "short"},
			wantStatusCode: http.StatusUnprocessableEntity,
			wantError:      "field Password is too short",
			wantStatus:     "Error",
		},
		{
			name:           "имя пользователя занято",
			requestBody:    models.DummyRegister{Email: "user@example.com", Username: "user1", Password: "password123"},
			mockErr:        domain.ErrAlreadyExists,
			mockExpected:   true,
			wantStatusCode: http.StatusConflict,
			wantError:      "username or email already taken",
			wantStatus:     "Error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			serviceMock.ExpectedCalls = nil
			serviceMock.Calls = nil

			if tt.mockExpected {
				body := tt.requestBody.(models.DummyRegister)
				serviceMock.On("Register", mock.Anything, body.Email, body.Username, body.Password).
					Return(tt.mockUID, tt.mockErr).Once()
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

			req := httptest.NewRequest(http.MethodPost, "/register", bytes.NewReader(bodyBytes))
			req = req.WithContext(context.WithValue(req.Context(), middleware.RequestIDKey, "reqid123"))

			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatusCode, rec.Code)

			var got map[string]any
			err = json.NewDecoder(rec.Body).Decode(&got)
			assert.NoError(t, err)

			assert.Equal(t, tt.wantStatus, got["status"])

			if tt.wantError != "" {
				errStr, ok := got["error"].(string)
				assert.True(t, ok)
				assert.Equal(t, tt.wantError, errStr)
			} else {
				assert.Nil(t, got["error"])
			}

			if tt.wantData != nil {
				data, ok := got["data"].(map[string]any)
				assert.True(t, ok)
				for k, v := range tt.wantData {
					assert.Equal(t, v, data[k])
				}
			}

			if tt.mockExpected {
				serviceMock.AssertExpectations(t)
			}
		})
	}
}

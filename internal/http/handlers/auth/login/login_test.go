package login

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

func (m *ServiceMock) Login(ctx context.Context, login, password string) (string, string, error) {
	args := m.Called(ctx, login, password)
	return args.String(0), args.String(1), args.Error(2)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func TestLoginHandler_ServeHTTP(t *testing.T) {
	serviceMock := new(ServiceMock)
	logger := newNoopLogger()

	handler := New(logger, serviceMock)

	tests := []struct {
		name           string
		requestBody    interface{}
		mockToken      string
		mockRole       string
		mockErr        error
		mockExpected   bool
		wantStatusCode int
		wantData       map[string]any
		wantError      string
		wantStatus     string
	}{
		{
			name:           "успешный вход",
			requestBody:    models.DummyLogin{Login: "user1", Password: "password123"},
			mockToken:      "tok",
			mockRole:       "user",
			mockExpected:   true,
			wantStatusCode: http.StatusOK,
			wantData: map[string]any{
				"token": "tok",
				"role":  "user",
			},
			wantStatus: "OK",
		},
		{
			name:           "некорректный json",
			requestBody:    "not a json",
			wantStatusCode: http.StatusBadRequest,
			wantError:      "invalid request body",
			wantStatus:     "Error",
		},
		{
			name:           "не указан пароль",
			requestBody:    models.DummyLogin{Login: "user1"},
			wantStatusCode: http.StatusUnprocessableEntity,
			wantError:      "field Password is a required field",
			wantStatus:     "Error",
		},
		{
			name:           "неверные учетные данные",
			requestBody:    models.DummyLogin{Login: "user1", Password: "wrongpass123"},
			mockErr:        domain.ErrUnauthenticated,
			mockExpected:   true,
			wantStatusCode: http.StatusUnauthorized,
			wantError:      "authentication required",
			wantStatus:     "Error",
		},
		{
			name:           "учетная запись еще не активирована",
			requestBody:    models.DummyLogin{Login: "user1", Password: "password123"},
			mockErr:        domain.ErrUserNotActive,
			mockExpected:   true,
			wantStatusCode: http.StatusForbidden,
			wantError:      "account awaiting approval",
			wantStatus:     "Error",
		},
		{
			name:           "учетная запись отключена",
			requestBody:    models.DummyLogin{Login: "user1", Password: "password123"},
			mockErr:        domain.ErrUserDisabled,
			mockExpected:   true,
			wantStatusCode: http.StatusForbidden,
			wantError:      "account disabled",
			wantStatus:     "Error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			serviceMock.ExpectedCalls = nil
			serviceMock.Calls = nil

			if tt.mockExpected {
				body := tt.requestBody.(models.DummyLogin)
				serviceMock.On("Login", mock.Anything, body.Login, body.Password).
					Return(tt.mockToken, tt.mockRole, tt.mockErr).Once()
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

			req := httptest.NewRequest(http.MethodPost, "/login", bytes.NewReader(bodyBytes))
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

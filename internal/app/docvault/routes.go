// Package docvault предоставляет маршруты для основного приложения.
package docvault

import (
	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/grigorevv/docvault/internal/http/handlers/auth/login"
	"github.com/grigorevv/docvault/internal/http/handlers/auth/me"
	"github.com/grigorevv/docvault/internal/http/handlers/auth/register"
	"github.com/grigorevv/docvault/internal/http/handlers/document/download"
	documentlist "github.com/grigorevv/docvault/internal/http/handlers/document/list"
	"github.com/grigorevv/docvault/internal/http/handlers/document/read"
	"github.com/grigorevv/docvault/internal/http/handlers/document/remove"
	"github.com/grigorevv/docvault/internal/http/handlers/document/update"
	"github.com/grigorevv/docvault/internal/http/handlers/document/upload"
	"github.com/grigorevv/docvault/internal/http/handlers/downloadrequest/approve"
	requestcreate "github.com/grigorevv/docvault/internal/http/handlers/downloadrequest/create"
	"github.com/grigorevv/docvault/internal/http/handlers/downloadrequest/listmine"
	"github.com/grigorevv/docvault/internal/http/handlers/downloadrequest/listpending"
	"github.com/grigorevv/docvault/internal/http/handlers/downloadrequest/reject"
	"github.com/grigorevv/docvault/internal/http/handlers/health"
	"github.com/grigorevv/docvault/internal/http/handlers/user/directory"
	userlist "github.com/grigorevv/docvault/internal/http/handlers/user/list"
	"github.com/grigorevv/docvault/internal/http/handlers/user/status"
	"github.com/grigorevv/docvault/internal/http/middlewarectx"

	"log/slog"

	authservice "github.com/grigorevv/docvault/internal/services/auth"
	documentservice "github.com/grigorevv/docvault/internal/services/document"
	requestservice "github.com/grigorevv/docvault/internal/services/downloadrequest"
)

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger, authService *authservice.AuthService, documentService *documentservice.DocumentService, requestService *requestservice.RequestService) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middleware.URLFormat,
	)

	r.Route("/api/v1", func(r chi.Router) {
		// Открытые конечные точки
		r.Post("/register", register.New(logger, authService).ServeHTTP)
		r.Post("/login", login.New(logger, authService).ServeHTTP)
		r.Get("/health", health.New(logger).ServeHTTP)

		// Группа с JWT аутентификацией
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.JWTMiddleware(authService, logger))
			r.Use(middlewarectx.RateLimitMiddleware(logger))

			r.Get("/me", me.New(logger).ServeHTTP)
			r.Get("/users", userlist.New(logger, authService).ServeHTTP)
			r.Patch("/users/{uid}/status", status.New(logger, authService).ServeHTTP)
			r.Get("/users/directory", directory.New(logger, authService).ServeHTTP)

			r.Get("/documents", documentlist.New(logger, documentService).ServeHTTP)
			r.Post("/documents", upload.New(logger, documentService).ServeHTTP)
			r.Get("/documents/{id}", read.New(logger, documentService).ServeHTTP)
			r.Patch("/documents/{id}", update.New(logger, documentService).ServeHTTP)
			r.Delete("/documents/{id}", remove.New(logger, documentService).ServeHTTP)
			r.Get("/documents/{id}/download", download.New(logger, documentService).ServeHTTP)

			r.Post("/documents/{id}/requests", requestcreate.New(logger, requestService).ServeHTTP)
			r.Post("/requests/{id}/approve", approve.New(logger, requestService).ServeHTTP)
			r.Post("/requests/{id}/reject", reject.New(logger, requestService).ServeHTTP)
			r.Get("/requests/mine", listmine.New(logger, requestService).ServeHTTP)
			r.Get("/requests/pending", listpending.New(logger, requestService).ServeHTTP)
		})
	})

	r.Handle("/metrics", promhttp.Handler())
	// Swagger docs endpoint
	r.Get("/docs/*", httpSwagger.WrapHandler)
}

package docvault

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/streadway/amqp"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/grigorevv/docvault/internal/cache"
	"github.com/grigorevv/docvault/internal/config"
	"github.com/grigorevv/docvault/internal/lib/filestore"
	"github.com/grigorevv/docvault/internal/lib/jwt"
	"github.com/grigorevv/docvault/internal/migrations"
	"github.com/grigorevv/docvault/internal/rabbitmq"
	authservice "github.com/grigorevv/docvault/internal/services/auth"
	documentservice "github.com/grigorevv/docvault/internal/services/document"
	requestservice "github.com/grigorevv/docvault/internal/services/downloadrequest"
	"github.com/grigorevv/docvault/internal/storage/repository"
)

type App struct {
	server *http.Server
	logger *slog.Logger
	db     *repository.Storage
	conn   *amqp.Connection
	ch     *amqp.Channel
}

func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	db, err := repository.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, err
	}
	if err = migrations.Run(db.DB, cfg.MigrationsPath); err != nil {
		return nil, err
	}

	cacheRedis, err := cache.InitServer(ctx, cfg.RedisConnection)
	if err != nil {
		return nil, err
	}

	conn, err := rabbitmq.Connect(cfg.RabbitConnection, cfg.RabbitMaxRetries, cfg.RabbitRetryDelay)
	if err != nil {
		return nil, err
	}
	ch, err := rabbitmq.SetupChannel(conn, rabbitmq.GetRequestQueues())
	if err != nil {
		conn.Close()
		return nil, err
	}

	files, err := filestore.New(cfg.StorageRoot)
	if err != nil {
		conn.Close()
		return nil, err
	}

	jwtMaker := jwt.NewJWTMaker(cfg.JWTSecretKey, cfg.TokenTTL)
	authService := authservice.NewAuthService(db, jwtMaker, logger)
	documentService := documentservice.NewDocumentService(db, db, files, cacheRedis, logger)
	requestService := requestservice.NewRequestService(db, db,
		rabbitmq.NewEventPublisher(ch), cfg.ApprovalTTL, logger)

	if err := authService.EnsureDefaultAdmin(ctx, cfg.AdminEmail, cfg.AdminUsername, cfg.AdminPassword); err != nil {
		conn.Close()
		return nil, err
	}

	router := chi.NewRouter()

	RegisterRoutes(router, logger, authService, documentService, requestService)

	router.Get("/docs/*", httpSwagger.WrapHandler)

	srv := &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return &App{
		server: srv,
		logger: logger,
		db:     db,
		conn:   conn,
		ch:     ch,
	}, nil
}

func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err := a.server.Shutdown(timeoutCtx)
		if cerr := a.ch.Close(); cerr != nil {
			a.logger.Error("failed to close channel", slog.Any("err", cerr))
		}
		if cerr := a.conn.Close(); cerr != nil {
			a.logger.Error("failed to close connection", slog.Any("err", cerr))
		}
		a.db.DB.Close()
		return err
	}
}

// Package notifier собирает воркер почтовых уведомлений о заявках.
package notifier

import (
	"context"
	"log/slog"

	"github.com/streadway/amqp"

	"github.com/grigorevv/docvault/internal/config"
	"github.com/grigorevv/docvault/internal/rabbitmq"
	notifierservice "github.com/grigorevv/docvault/internal/services/notifier"
	"github.com/grigorevv/docvault/internal/storage/repository"
)

type App struct {
	conn            *amqp.Connection
	ch              *amqp.Channel
	notifierService *notifierservice.NotifierService
	logger          *slog.Logger
}

func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	db, err := repository.New(cfg.StorageConnectionString)
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

	notifierService := notifierservice.NewNotifierService(cfg, db, logger)

	return &App{
		conn:            conn,
		ch:              ch,
		notifierService: notifierService,
		logger:          logger,
	}, nil
}

func (a *App) Run(ctx context.Context) error {
	err := rabbitmq.ConsumerMessage(ctx, a.ch, "request_events", a.notifierService.HandleRequestEvent)
	if err != nil {
		a.logger.Error("failed to start request_events consumer", slog.Any("err", err))
		return err
	}

	<-ctx.Done()
	a.logger.Info("notifier service shutting down gracefully")

	if err := a.ch.Close(); err != nil {
		a.logger.Error("failed to close channel", slog.Any("err", err))
	}

	if err := a.conn.Close(); err != nil {
		a.logger.Error("failed to close connection", slog.Any("err", err))
	}

	return nil
}

// Package services содержит воркер почтовых уведомлений о событиях
// заявок на скачивание.
package services

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"net/smtp"
	"strings"

	"github.com/grigorevv/docvault/internal/config"
	"github.com/grigorevv/docvault/internal/lib/sl"
	"github.com/grigorevv/docvault/internal/models"
)

// UserReader возвращает пользователей для адресации писем.
type UserReader interface {
	GetUser(ctx context.Context, userUID string) (*models.User, error)
}

// NotifierService превращает события заявок в письма.
// Новая заявка адресуется владельцу документа, решение — заявителю.
type NotifierService struct {
	cfg   *config.Config
	users UserReader
	log   *slog.Logger
}

// NewNotifierService создает новый экземпляр NotifierService.
func NewNotifierService(cfg *config.Config, users UserReader, log *slog.Logger) *NotifierService {
	return &NotifierService{
		cfg:   cfg,
		users: users,
		log:   log,
	}
}

// HandleRequestEvent обрабатывает одно событие из очереди request_events.
func (s *NotifierService) HandleRequestEvent(body []byte) error {
	var event models.RequestEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return fmt.Errorf("error unmarshalling message: %w", err)
	}

	var recipientUID, subject, text string
	switch event.Type {
	case "request.created":
		recipientUID = event.OwnerID
		subject = "Новая заявка на скачивание документа"
		text = fmt.Sprintf("Поступила заявка %s на скачивание вашего документа %s.\n\nРассмотрите её в разделе заявок.",
			event.RequestID, event.DocumentID)
	case "request.approved":
		recipientUID = event.RequesterID
		subject = "Заявка на скачивание одобрена"
		text = fmt.Sprintf("Ваша заявка %s на документ %s одобрена.\n\nСкачивание доступно до истечения срока действия одобрения.",
			event.RequestID, event.DocumentID)
	case "request.rejected":
		recipientUID = event.RequesterID
		subject = "Заявка на скачивание отклонена"
		text = fmt.Sprintf("Ваша заявка %s на документ %s отклонена.",
			event.RequestID, event.DocumentID)
	default:
		s.log.Warn("unknown event type", slog.String("type", event.Type))
		return nil
	}

	recipient, err := s.users.GetUser(context.Background(), recipientUID)
	if err != nil {
		return fmt.Errorf("failed to resolve recipient: %w", err)
	}

	greeting := fmt.Sprintf("Здравствуйте, %s!\n\n%s", recipient.Username, text)
	return s.sendMail(recipient.Email, subject, greeting)
}

func (s *NotifierService) sendMail(to, subject, bodyText string) error {
	msg := strings.Join([]string{
		fmt.Sprintf("From: %s", s.cfg.SMTPUser),
		fmt.Sprintf("To: %s", to),
		fmt.Sprintf("Subject: %s", subject),
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=\"UTF-8\"",
		"",
		bodyText,
	}, "\r\n")

	addr := s.cfg.SMTPHost + ":" + s.cfg.SMTPPort

	conn, err := net.Dial("tcp", addr)
	if err != nil {
		s.log.Error("failed to dial SMTP server", sl.Err(err))
		return fmt.Errorf("failed to dial SMTP server: %w", err)
	}

	client, err := smtp.NewClient(conn, s.cfg.SMTPHost)
	if err != nil {
		s.log.Error("failed to create SMTP client", sl.Err(err))
		return fmt.Errorf("failed to create SMTP client: %w", err)
	}
	defer client.Close()

	tlsConfig := &tls.Config{
		ServerName: s.cfg.SMTPHost,
	}
	ok, _ := client.Extension("STARTTLS")
	if !ok {
		s.log.Error("SMTP server does not support STARTTLS")
		return fmt.Errorf("smtp server does not support STARTTLS")
	}
	if err = client.StartTLS(tlsConfig); err != nil {
		s.log.Error("failed to start TLS", sl.Err(err))
		return fmt.Errorf("failed to start TLS: %w", err)
	}

	auth := smtp.PlainAuth("", s.cfg.SMTPUser, s.cfg.SMTPPass, s.cfg.SMTPHost)
	if err = client.Auth(auth); err != nil {
		s.log.Error("smtp auth failed", sl.Err(err))
		return fmt.Errorf("smtp auth failed: %w", err)
	}

	if err = client.Mail(s.cfg.SMTPUser); err != nil {
		s.log.Error("failed to set mail sender", sl.Err(err))
		return fmt.Errorf("failed to set mail sender: %w", err)
	}
	if err = client.Rcpt(to); err != nil {
		s.log.Error("failed to set recipient", sl.Err(err))
		return fmt.Errorf("failed to set recipient %s: %w", to, err)
	}

	wc, err := client.Data()
	if err != nil {
		s.log.Error("failed to get write closer", sl.Err(err))
		return fmt.Errorf("failed to get write closer: %w", err)
	}
	if _, err = wc.Write([]byte(msg)); err != nil {
		s.log.Error("failed to write message", sl.Err(err))
		return fmt.Errorf("failed to write message: %w", err)
	}
	if err = wc.Close(); err != nil {
		s.log.Error("failed to close write closer", sl.Err(err))
		return fmt.Errorf("failed to close write closer: %w", err)
	}

	if err = client.Quit(); err != nil {
		s.log.Warn("failed to quit smtp session", sl.Err(err))
	}
	s.log.Info("notification sent", slog.String("to", to), slog.String("subject", subject))
	return nil
}

package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/smtp"
	"time"

	"github.com/pkg/errors"

	"github.com/SurinderTech/findify-finder/store"
)

// NotificationStore defines storage for in-app notifications.
type NotificationStore interface {
	CreateNotification(ctx context.Context, create *store.Notification) (*store.Notification, error)
}

// AppSender writes notifications to the notification store so they show
// up in the user's in-app inbox.
type AppSender struct {
	store  NotificationStore
	logger *slog.Logger
}

// NewAppSender creates an in-app notification sender.
func NewAppSender(s NotificationStore) *AppSender {
	return &AppSender{
		store:  s,
		logger: slog.Default(),
	}
}

// Send persists the message as an unread in-app notification.
func (s *AppSender) Send(ctx context.Context, message *Message) error {
	notification, err := s.store.CreateNotification(ctx, &store.Notification{
		UserID:        message.UserID,
		Title:         message.Title,
		Message:       message.Body,
		RelatedItemID: message.RelatedItemID,
	})
	if err != nil {
		return errors.Wrap(err, "failed to create notification")
	}
	s.logger.Debug("app notification sent",
		"user_id", message.UserID, "notification_id", notification.ID)
	return nil
}

// Name returns the sender name.
func (s *AppSender) Name() string {
	return "app"
}

// EmailConfig holds SMTP configuration.
type EmailConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// EmailSender sends email notifications over SMTP. When no host is
// configured it logs the message instead of sending, so development
// setups work without a mail server.
type EmailSender struct {
	config EmailConfig
	logger *slog.Logger
}

// NewEmailSender creates an email sender.
func NewEmailSender(config EmailConfig) *EmailSender {
	return &EmailSender{
		config: config,
		logger: slog.Default(),
	}
}

// Send delivers the message to the recipient's email address. A recipient
// without an email is skipped, not an error.
func (s *EmailSender) Send(ctx context.Context, message *Message) error {
	if message.Email == "" {
		s.logger.Warn("user has no email configured, skipping email notification",
			"user_id", message.UserID)
		return nil
	}

	body := fmt.Sprintf("Hello,\r\n\r\n%s\r\n\r\nPlease log in to your account to view the details and take further action.\r\n\r\nThank you,\r\nLost & Found Team\r\n",
		message.Body)

	if s.config.Host == "" {
		s.logger.Info("email notification (smtp not configured, logging only)",
			"user_id", message.UserID,
			"email", message.Email,
			"subject", message.Title)
		return nil
	}

	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\nContent-Type: text/plain; charset=UTF-8\r\n\r\n%s",
		s.config.From, message.Email, message.Title, body)

	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	var auth smtp.Auth
	if s.config.Username != "" {
		auth = smtp.PlainAuth("", s.config.Username, s.config.Password, s.config.Host)
	}
	if err := smtp.SendMail(addr, auth, s.config.From, []string{message.Email}, []byte(msg)); err != nil {
		return errors.Wrapf(err, "failed to send email to %s", message.Email)
	}

	s.logger.Debug("email notification sent",
		"user_id", message.UserID, "email", message.Email)
	return nil
}

// Name returns the sender name.
func (s *EmailSender) Name() string {
	return "email"
}

// WebhookConfig holds webhook configuration.
type WebhookConfig struct {
	URL     string
	Secret  string
	Timeout time.Duration
}

// WebhookSender POSTs notification events to an external integration URL.
type WebhookSender struct {
	config     WebhookConfig
	httpClient *http.Client
	logger     *slog.Logger
}

// WebhookPayload is the webhook request body.
type WebhookPayload struct {
	Event         string    `json:"event"`
	UserID        int32     `json:"user_id"`
	Title         string    `json:"title"`
	Message       string    `json:"message"`
	RelatedItemID *int32    `json:"related_item_id,omitempty"`
	Timestamp     time.Time `json:"timestamp"`
}

// NewWebhookSender creates a webhook sender.
func NewWebhookSender(config WebhookConfig) *WebhookSender {
	if config.Timeout <= 0 {
		config.Timeout = 10 * time.Second
	}
	return &WebhookSender{
		config: config,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
		logger: slog.Default(),
	}
}

// Send POSTs the message as a JSON payload.
func (s *WebhookSender) Send(ctx context.Context, message *Message) error {
	payload := WebhookPayload{
		Event:         "match.notification",
		UserID:        message.UserID,
		Title:         message.Title,
		Message:       message.Body,
		RelatedItemID: message.RelatedItemID,
		Timestamp:     time.Now(),
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return errors.Wrap(err, "failed to marshal webhook payload")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.config.URL, bytes.NewReader(body))
	if err != nil {
		return errors.Wrap(err, "failed to create webhook request")
	}
	req.Header.Set("Content-Type", "application/json")
	if s.config.Secret != "" {
		req.Header.Set("X-Webhook-Secret", s.config.Secret)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return errors.Wrap(err, "webhook request failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		respBody, _ := io.ReadAll(resp.Body)
		return errors.Errorf("webhook returned status %d: %s", resp.StatusCode, string(respBody))
	}

	s.logger.Debug("webhook notification sent",
		"user_id", message.UserID, "url", s.config.URL, "status", resp.StatusCode)
	return nil
}

// Name returns the sender name.
func (s *WebhookSender) Name() string {
	return "webhook"
}

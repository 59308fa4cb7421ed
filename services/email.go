package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"jmb-server/models"
)

const (
	emailTimeout = 15 * time.Second

	// DefaultEmailRelayURL is the FormSubmit AJAX endpoint. {email} is
	// replaced with the configured contact address.
	DefaultEmailRelayURL = "https://formsubmit.co/ajax/{email}"
)

// Field is one labelled line of an email body.
type Field struct {
	Name  string
	Value string
}

// Email is a transactional message sent to the business contact address.
type Email struct {
	Subject string
	ReplyTo string
	Fields  []Field
}

// Body renders the fields as "Name: Value" lines.
func (e Email) Body() string {
	var b strings.Builder
	for _, f := range e.Fields {
		fmt.Fprintf(&b, "%s: %s\n", f.Name, f.Value)
	}
	return b.String()
}

// SettingsStore reads runtime settings.
type SettingsStore interface {
	GetSetting(ctx context.Context, key string) (string, error)
}

// EmailService relays form-encoded messages to the contact address and builds
// a mailto fallback when the relay is unavailable.
type EmailService struct {
	settings SettingsStore
	relayURL string
	client   *http.Client
	logger   *zap.Logger
}

func NewEmailService(settings SettingsStore, relayURL string, logger *zap.Logger) *EmailService {
	if relayURL == "" {
		relayURL = DefaultEmailRelayURL
	}
	return &EmailService{
		settings: settings,
		relayURL: relayURL,
		client:   &http.Client{Timeout: emailTimeout},
		logger:   logger,
	}
}

// ContactEmail returns the configured contact address, falling back to the
// default when the setting is missing or unreadable.
func (s *EmailService) ContactEmail(ctx context.Context) string {
	value, err := s.settings.GetSetting(ctx, models.SettingContactEmail)
	if err != nil || strings.TrimSpace(value) == "" {
		return models.DefaultContactEmail
	}
	return strings.TrimSpace(value)
}

// Send POSTs e to the relay as an HTML form.
func (s *EmailService) Send(ctx context.Context, e Email) error {
	to := s.ContactEmail(ctx)
	endpoint := strings.ReplaceAll(s.relayURL, "{email}", url.PathEscape(to))

	form := url.Values{}
	for _, f := range e.Fields {
		form.Set(f.Name, f.Value)
	}
	form.Set("_subject", e.Subject)
	if e.ReplyTo != "" {
		form.Set("_replyto", e.ReplyTo)
	}
	form.Set("_template", "table")
	form.Set("_captcha", "false")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("failed to create email request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("email relay failed with status %d: %s", resp.StatusCode, string(body))
	}
	return relayResult(body)
}

// relayResult inspects a 2xx FormSubmit reply, which reports rejection as
// {"success":"false","message":...}. Bodies without a success field pass.
func relayResult(body []byte) error {
	var reply struct {
		Success json.RawMessage `json:"success"`
		Message string          `json:"message"`
	}
	if len(bytes.TrimSpace(body)) == 0 || json.Unmarshal(body, &reply) != nil || reply.Success == nil {
		return nil
	}
	switch strings.Trim(string(reply.Success), `"`) {
	case "true":
		return nil
	default:
		return fmt.Errorf("email relay rejected message: %s", reply.Message)
	}
}

// MailtoURL builds a mailto link carrying the same message.
func (s *EmailService) MailtoURL(ctx context.Context, e Email) string {
	return MailtoURL(s.ContactEmail(ctx), e)
}

// Deliver sends e through the relay. When the relay fails it returns a
// mailto link the client can open instead; the error is only logged.
func (s *EmailService) Deliver(ctx context.Context, e Email) (mailto string) {
	if err := s.Send(ctx, e); err != nil {
		s.logger.Warn("Email relay failed, falling back to mailto", zap.String("subject", e.Subject), zap.Error(err))
		return s.MailtoURL(ctx, e)
	}
	return ""
}

func MailtoURL(to string, e Email) string {
	return "mailto:" + to + "?subject=" + mailtoEscape(e.Subject) + "&body=" + mailtoEscape(e.Body())
}

func mailtoEscape(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}

package email

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ylvish/torque/internal/config"
)

// RedisSender implements the Sender interface by storing emails in Redis.
// Integration tests poll these keys instead of watching an SMTP inbox.
type RedisSender struct {
	client *redis.Client
	cfg    *config.Config
}

// NewRedisSender creates a new RedisSender.
func NewRedisSender(client *redis.Client, cfg *config.Config) Sender {
	return &RedisSender{
		client: client,
		cfg:    cfg,
	}
}

// Send stores a JSON representation of the email in Redis instead of sending
// it. The key embeds a coarse notification type derived from the subject so
// tests can await a specific kind of notification.
func (s *RedisSender) Send(ctx context.Context, to []string, subject string, rawMessage []byte) error {
	notificationType := "unknown"
	switch {
	case strings.Contains(subject, "submission"):
		notificationType = "submission"
	case strings.Contains(subject, "lead"):
		notificationType = "lead"
	}

	primaryTo := ""
	if len(to) > 0 {
		primaryTo = to[0]
	}

	emailData := map[string]interface{}{
		"to":      strings.Join(to, ", "),
		"from":    s.cfg.SmtpFromAddress,
		"subject": subject,
		"body":    string(rawMessage),
		"sent_at": time.Now().UTC().Format(time.RFC3339),
	}
	payload, err := json.Marshal(emailData)
	if err != nil {
		return fmt.Errorf("failed to marshal mock email: %w", err)
	}

	key := fmt.Sprintf("mockemail:%s:%s", primaryTo, notificationType)
	if err := s.client.Set(ctx, key, payload, 10*time.Minute).Err(); err != nil {
		return fmt.Errorf("failed to store mock email in Redis: %w", err)
	}
	log.Printf("Mock email stored in Redis under %s (Subject: %s)", key, subject)
	return nil
}

// AngelaMos | 2026
// notify.go

// Package notify delivers confirmation codes to users. Delivery goes
// through a RabbitMQ queue consumed by the mail worker; without a broker
// configured, codes are written to the log instead, which is what local
// development runs on.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/ayavrik/yamdb-final/internal/config"
)

// Message is the payload the mail worker consumes.
type Message struct {
	To       string    `json:"to"`
	From     string    `json:"from"`
	Username string    `json:"username"`
	Code     string    `json:"code"`
	SentAt   time.Time `json:"sent_at"`
}

// MailQueue publishes confirmation codes to a durable queue on the
// default exchange. Messages are persistent so a broker restart does not
// drop a signup mid-handshake.
type MailQueue struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	queue   string
	from    string
}

func NewMailQueue(cfg config.NotifyConfig) (*MailQueue, error) {
	conn, err := amqp.Dial(cfg.AMQPURL)
	if err != nil {
		return nil, fmt.Errorf("amqp dial: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("amqp channel: %w", err)
	}

	_, err = channel.QueueDeclare(
		cfg.Queue,
		true,  // durable
		false, // autoDelete
		false, // exclusive
		false, // noWait
		nil,
	)
	if err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("declare queue %q: %w", cfg.Queue, err)
	}

	return &MailQueue{
		conn:    conn,
		channel: channel,
		queue:   cfg.Queue,
		from:    cfg.FromEmail,
	}, nil
}

func (m *MailQueue) SendConfirmationCode(
	ctx context.Context,
	email, username, code string,
) error {
	body, err := json.Marshal(Message{
		To:       email,
		From:     m.from,
		Username: username,
		Code:     code,
		SentAt:   time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("marshal mail message: %w", err)
	}

	err = m.channel.PublishWithContext(ctx,
		"",      // default exchange
		m.queue, // routing key = queue name
		false,   // mandatory
		false,   // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now().UTC(),
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("publish to %q: %w", m.queue, err)
	}

	return nil
}

// Ping reports whether the broker connection is still open. Channel or
// connection loss shows up here and flips readiness.
func (m *MailQueue) Ping(context.Context) error {
	if m.conn.IsClosed() {
		return fmt.Errorf("amqp connection closed")
	}
	return nil
}

func (m *MailQueue) Close() error {
	if err := m.channel.Close(); err != nil {
		m.conn.Close()
		return fmt.Errorf("close channel: %w", err)
	}
	return m.conn.Close()
}

// LogNotifier prints the code instead of mailing it.
type LogNotifier struct {
	logger *slog.Logger
}

func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) SendConfirmationCode(
	_ context.Context,
	email, username, code string,
) error {
	n.logger.Info("confirmation code issued",
		"email", email,
		"username", username,
		"code", code,
	)
	return nil
}

// SPDX-License-Identifier: MIT

// Package mail delivers outbound email asynchronously over SMTP.
package mail

import (
	"context"
	"fmt"
	"html"
	"time"

	"github.com/rs/zerolog"
	gomail "github.com/wneessen/go-mail"

	"contactd/internal/log"
	"contactd/internal/metrics"
)

// Config holds SMTP delivery settings. An empty Host disables delivery;
// enqueued messages are then logged at debug level and dropped.
type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// Message is one outbound email.
type Message struct {
	To      string
	Subject string
	HTML    string
}

// Sender queues messages for background delivery.
type Sender interface {
	// Enqueue hands the message to the delivery worker. Returns false when
	// the queue is full; the message is then dropped and logged.
	Enqueue(msg Message) bool
	// Close stops accepting messages and drains the queue.
	Close()
}

// SMTPSender delivers messages through a single background worker so HTTP
// handlers never block on the SMTP conversation.
type SMTPSender struct {
	cfg    Config
	queue  chan Message
	done   chan struct{}
	logger zerolog.Logger
}

// NewSender creates a sender with the given queue capacity and starts the
// delivery worker.
func NewSender(cfg Config, queueSize int) *SMTPSender {
	if queueSize <= 0 {
		queueSize = 64
	}
	s := &SMTPSender{
		cfg:    cfg,
		queue:  make(chan Message, queueSize),
		done:   make(chan struct{}),
		logger: log.WithComponent("mail"),
	}
	go s.worker()
	return s
}

func (s *SMTPSender) Enqueue(msg Message) bool {
	select {
	case s.queue <- msg:
		return true
	default:
		s.logger.Warn().
			Str("event", "mail.queue_full").
			Str("to", msg.To).
			Msg("mail queue full, dropping message")
		return false
	}
}

func (s *SMTPSender) Close() {
	close(s.queue)
	<-s.done
}

func (s *SMTPSender) worker() {
	defer close(s.done)
	for msg := range s.queue {
		if s.cfg.Host == "" {
			s.logger.Debug().
				Str("event", "mail.disabled").
				Str("to", msg.To).
				Str("subject", msg.Subject).
				Msg("smtp not configured, message dropped")
			continue
		}
		if err := s.send(msg); err != nil {
			metrics.RecordEmail("error")
			s.logger.Error().Err(err).
				Str("event", "mail.send_failed").
				Str("to", msg.To).
				Msg("failed to deliver email")
			continue
		}
		metrics.RecordEmail("sent")
		s.logger.Info().
			Str("event", "mail.sent").
			Str("to", msg.To).
			Str("subject", msg.Subject).
			Msg("email delivered")
	}
}

func (s *SMTPSender) send(msg Message) error {
	m := gomail.NewMsg()
	if err := m.From(s.cfg.From); err != nil {
		return fmt.Errorf("mail: from address: %w", err)
	}
	if err := m.To(msg.To); err != nil {
		return fmt.Errorf("mail: to address: %w", err)
	}
	m.Subject(msg.Subject)
	m.SetBodyString(gomail.TypeTextHTML, msg.HTML)

	opts := []gomail.Option{
		gomail.WithPort(s.cfg.Port),
		gomail.WithTimeout(15 * time.Second),
	}
	if s.cfg.Username != "" {
		opts = append(opts,
			gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
			gomail.WithUsername(s.cfg.Username),
			gomail.WithPassword(s.cfg.Password),
		)
	}
	client, err := gomail.NewClient(s.cfg.Host, opts...)
	if err != nil {
		return fmt.Errorf("mail: client: %w", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return client.DialAndSendWithContext(ctx, m)
}

// Confirmation builds the address-confirmation email. The link targets the
// public confirmed_email endpoint with the email-scope token.
func Confirmation(publicURL, username, to, token string) Message {
	link := fmt.Sprintf("%s/api/auth/confirmed_email/%s", publicURL, token)
	html := fmt.Sprintf(`<html><body>
<p>Hi %s,</p>
<p>Please confirm your email address by following this link:</p>
<p><a href=%q>Confirm email</a></p>
<p>If you did not sign up for contactd, ignore this message.</p>
</body></html>`, html.EscapeString(username), link)
	return Message{
		To:      to,
		Subject: "Confirm your email",
		HTML:    html,
	}
}

// Package mail sends plain transactional messages. Rendering is left to the
// caller; templates are not supported.
package mail

import (
	"context"

	log "github.com/sirupsen/logrus"
)

type Message struct {
	To      string
	Subject string
	Body    string
}

type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// LogMailer writes messages to the log instead of delivering them. It is the
// mailer used until a provider is configured.
type LogMailer struct {
	From string
}

func NewLogMailer(from string) *LogMailer {
	return &LogMailer{From: from}
}

func (m *LogMailer) Send(_ context.Context, msg Message) error {
	log.WithFields(log.Fields{
		"from":    m.From,
		"to":      msg.To,
		"subject": msg.Subject,
	}).Info(msg.Body)
	return nil
}

// Package emailer delivers rendered messages through a transactional email provider.
package emailer

import (
	"context"
	"errors"
)

var (
	ErrSendFailed    = errors.New("failed to send email")
	ErrInvalidConfig = errors.New("invalid email provider configuration")
)

type Message struct {
	From    string
	To      string
	Subject string
	HTML    string
	Text    string
	Tag     string
}

// Sender is implemented by every provider client and decorator.
type Sender interface {
	Send(ctx context.Context, msg Message) error
	Provider() string
}

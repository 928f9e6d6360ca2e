package email

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	htmltemplate "html/template"
	"net/url"
	texttemplate "text/template"

	"go.uber.org/zap"

	"github.com/Nazarious-ucu/waitlist-api/internal/emailer"
	"github.com/Nazarious-ucu/waitlist-api/internal/metrics"
)

//go:embed templates/*
var templatesFS embed.FS

const confirmationTag = "confirmation"

type Sender interface {
	Send(ctx context.Context, msg emailer.Message) error
	Provider() string
}

type Options struct {
	Brand      string
	FromName   string
	FromEmail  string
	ConfirmURL string
	SiteURL    string
	PrivacyURL string
}

type templateData struct {
	Brand      string
	Greeting   string
	ConfirmURL string
	SiteHost   string
	PrivacyURL string
}

type Service struct {
	sender     Sender
	opts       Options
	confirmURL *url.URL
	siteHost   string
	html       *htmltemplate.Template
	text       *texttemplate.Template
	logger     *zap.Logger
	m          *metrics.Metrics
}

func NewService(sender Sender, opts Options, logger *zap.Logger, m *metrics.Metrics) (*Service, error) {
	confirmURL, err := url.Parse(opts.ConfirmURL)
	if err != nil {
		return nil, fmt.Errorf("invalid confirm url: %w", err)
	}
	site, err := url.Parse(opts.SiteURL)
	if err != nil {
		return nil, fmt.Errorf("invalid site url: %w", err)
	}

	html, err := htmltemplate.ParseFS(templatesFS, "templates/confirm_email.html")
	if err != nil {
		return nil, err
	}
	text, err := texttemplate.ParseFS(templatesFS, "templates/confirm_email.txt")
	if err != nil {
		return nil, err
	}

	return &Service{
		sender:     sender,
		opts:       opts,
		confirmURL: confirmURL,
		siteHost:   site.Host,
		html:       html,
		text:       text,
		logger:     logger.With(zap.String("component", "EmailService")),
		m:          m,
	}, nil
}

// SendConfirmation renders and sends the double opt-in email. Provider
// failures are returned as is; there is no retry.
func (s *Service) SendConfirmation(ctx context.Context, toEmail string, dogName *string, token string) error {
	data := templateData{
		Brand:      s.opts.Brand,
		Greeting:   Greeting(dogName),
		ConfirmURL: s.ConfirmationLink(token),
		SiteHost:   s.siteHost,
		PrivacyURL: s.opts.PrivacyURL,
	}

	var html, text bytes.Buffer
	if err := s.html.Execute(&html, data); err != nil {
		return fmt.Errorf("render html: %w", err)
	}
	if err := s.text.Execute(&text, data); err != nil {
		return fmt.Errorf("render text: %w", err)
	}

	err := s.sender.Send(ctx, emailer.Message{
		From:    fmt.Sprintf("%s <%s>", s.opts.FromName, s.opts.FromEmail),
		To:      toEmail,
		Subject: Subject(dogName),
		HTML:    html.String(),
		Text:    text.String(),
		Tag:     confirmationTag,
	})
	s.m.RecordEmail(s.sender.Provider(), err)
	if err != nil {
		s.logger.Error("failed to send confirmation email",
			zap.String("provider", s.sender.Provider()),
			zap.Error(err),
		)
		return err
	}

	s.logger.Info("confirmation email sent", zap.String("provider", s.sender.Provider()))
	return nil
}

// ConfirmationLink appends the token as a query parameter to the confirm URL.
func (s *Service) ConfirmationLink(token string) string {
	u := *s.confirmURL
	q := u.Query()
	q.Set("token", token)
	u.RawQuery = q.Encode()
	return u.String()
}

func Subject(dogName *string) string {
	if dogName != nil {
		return *dogName + "'s pack invite is waiting 🐾"
	}
	return "One tap to join the pack 🐾"
}

func Greeting(dogName *string) string {
	if dogName != nil {
		return "You and " + *dogName + " are nearly in the pack! 🐾"
	}
	return "You're nearly in the pack! 🐾"
}

package emailer

import (
	"context"
	"fmt"
	"net/http"

	"github.com/mrz1836/postmark"
	"go.uber.org/zap"
)

const ProviderPostmark = "postmark"

// PostmarkClient sends messages through Postmark's transactional API.
type PostmarkClient struct {
	client *postmark.Client
	logger *zap.Logger
}

func NewPostmarkClient(serverToken, accountToken string, httpClient *http.Client, logger *zap.Logger) (*PostmarkClient, error) {
	if serverToken == "" {
		return nil, fmt.Errorf("%w: POSTMARK_SERVER_TOKEN is required", ErrInvalidConfig)
	}

	client := postmark.NewClient(serverToken, accountToken)
	if httpClient != nil {
		client.HTTPClient = httpClient
	}

	return &PostmarkClient{
		client: client,
		logger: logger.With(zap.String("component", "PostmarkClient")),
	}, nil
}

// WithBaseURL points the client at another API host.
func (c *PostmarkClient) WithBaseURL(url string) *PostmarkClient {
	c.client.BaseURL = url
	return c
}

func (c *PostmarkClient) Provider() string {
	return ProviderPostmark
}

func (c *PostmarkClient) Send(ctx context.Context, msg Message) error {
	resp, err := c.client.SendEmail(ctx, postmark.Email{
		From:     msg.From,
		To:       msg.To,
		Subject:  msg.Subject,
		Tag:      msg.Tag,
		HTMLBody: msg.HTML,
		TextBody: msg.Text,
	})
	if err != nil {
		return fmt.Errorf("%w: %w", ErrSendFailed, err)
	}
	if resp.ErrorCode > 0 {
		c.logger.Error("Postmark API error",
			zap.Int64("error_code", resp.ErrorCode),
			zap.String("message", resp.Message),
		)
		return fmt.Errorf("%w: postmark error %d", ErrSendFailed, resp.ErrorCode)
	}

	return nil
}

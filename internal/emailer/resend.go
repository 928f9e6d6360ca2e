package emailer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"go.uber.org/zap"
)

const (
	ProviderResend  = "resend"
	maxErrorBody    = 1024
	resendEmailPath = "/emails"
)

type resendRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
	Text    string   `json:"text"`
}

// ResendClient posts messages to the Resend HTTP API with a bearer key.
type ResendClient struct {
	apiKey  string
	baseURL string
	client  *http.Client
	logger  *zap.Logger
}

func NewResendClient(apiKey, baseURL string, client *http.Client, logger *zap.Logger) (*ResendClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("%w: RESEND_API_KEY is required", ErrInvalidConfig)
	}
	return &ResendClient{
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  client,
		logger:  logger.With(zap.String("component", "ResendClient")),
	}, nil
}

func (c *ResendClient) Provider() string {
	return ProviderResend
}

func (c *ResendClient) Send(ctx context.Context, msg Message) error {
	payload, err := json.Marshal(resendRequest{
		From:    msg.From,
		To:      []string{msg.To},
		Subject: msg.Subject,
		HTML:    msg.HTML,
		Text:    msg.Text,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+resendEmailPath, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrSendFailed, err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			c.logger.Warn("failed to close response body", zap.Error(err))
		}
	}()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		c.logger.Error("Resend API error",
			zap.Int("status_code", resp.StatusCode),
			zap.ByteString("body", body),
		)
		return fmt.Errorf("%w: resend responded %d", ErrSendFailed, resp.StatusCode)
	}

	return nil
}

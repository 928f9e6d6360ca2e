package subscription

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"go.uber.org/zap"

	"github.com/Nazarious-ucu/waitlist-api/internal/models"
	"github.com/Nazarious-ucu/waitlist-api/internal/services/subscriptions"
)

const (
	timeoutDuration = 10 * time.Second

	unknownIP = "unknown"

	msgCreated        = "Woof! Check your inbox for a confirmation email. Not there? It might be playing hide & seek in your spam folder 🐕"
	msgResent         = "We've sent another confirmation email. Check your inbox — and if it's not there, our email might be having a nap in your spam folder 😴"
	msgAlready        = "This email is already on our list! Check your inbox (or the spam folder where our emails like to hide 🙈) for updates."
	msgMissingFields  = "Email and consent are required"
	msgInvalidEmail   = "Please enter a valid email address"
	msgInternalFailed = "Something went wrong. Please try again."
)

type subscriber interface {
	Subscribe(ctx context.Context, req models.SubscribeRequest, ip string) (subscriptions.Outcome, error)
	Confirm(ctx context.Context, token string) (subscriptions.ConfirmResult, error)
}

type Handler struct {
	Service     subscriber
	thankYouURL string
	logger      *zap.Logger
}

func NewHandler(svc subscriber, thankYouURL string, logger *zap.Logger) *Handler {
	return &Handler{
		Service:     svc,
		thankYouURL: thankYouURL,
		logger:      logger.With(zap.String("component", "SubscriptionHandler")),
	}
}

// Subscribe
// @Summary Join the waitlist
// @Description Registers an email for double opt-in. A confirmation email is sent to new and pending addresses.
// @Tags subscription
// @Accept json
// @Produce json
// @Param request body models.SubscribeRequest true "Signup form"
// @Success 200 {object} SuccessResponse
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/subscribe [post]
func (h *Handler) Subscribe(c *gin.Context) {
	var req models.SubscribeRequest
	if err := c.ShouldBindBodyWith(&req, binding.JSON); err != nil {
		// a filled honeypot wins over malformed fields
		var trap struct {
			Honeypot models.Flag `json:"honeypot"`
		}
		if c.ShouldBindBodyWith(&trap, binding.JSON) != nil || !bool(trap.Honeypot) {
			h.logger.Error("failed to decode subscribe request", zap.Error(err))
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: msgInternalFailed})
			return
		}
		req = models.SubscribeRequest{Honeypot: true}
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), timeoutDuration)
	defer cancel()

	outcome, err := h.Service.Subscribe(ctx, req, clientIP(c))
	if err != nil {
		switch {
		case errors.Is(err, subscriptions.ErrMissingFields):
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: msgMissingFields})
		case errors.Is(err, subscriptions.ErrInvalidEmail):
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: msgInvalidEmail})
		case errors.Is(err, subscriptions.ErrAlreadySubscribed):
			c.JSON(http.StatusConflict, ErrorResponse{Error: msgAlready})
		default:
			h.logger.Error("subscribe failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: msgInternalFailed})
		}
		return
	}

	switch outcome {
	case subscriptions.OutcomeIgnored:
		c.JSON(http.StatusOK, gin.H{"success": true})
	case subscriptions.OutcomeResent:
		c.JSON(http.StatusOK, SuccessResponse{Success: true, Message: msgResent})
	case subscriptions.OutcomeCreated:
		c.JSON(http.StatusOK, SuccessResponse{Success: true, Message: msgCreated})
	}
}

// Confirm
// @Summary Confirm a subscription
// @Description Consumes the emailed token and redirects to the thank-you page with status success, already, invalid or error.
// @Tags subscription
// @Param token query string true "Confirmation token"
// @Success 302
// @Router /confirm [get]
func (h *Handler) Confirm(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), timeoutDuration)
	defer cancel()

	result, err := h.Service.Confirm(ctx, c.Query("token"))
	status := result.String()
	if err != nil {
		h.logger.Error("confirm failed", zap.Error(err))
		status = "error"
	}

	c.Redirect(http.StatusFound, h.thankYouURL+"?status="+status)
}

func clientIP(c *gin.Context) string {
	if ip := c.ClientIP(); ip != "" {
		return ip
	}
	return unknownIP
}

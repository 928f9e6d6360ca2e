package admin

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Nazarious-ucu/waitlist-api/internal/models"
)

const (
	timeoutDuration = 10 * time.Second

	csvHeader      = "Email,Dog Name,Source,Consent Date,Confirmed Date"
	csvTimeLayout  = "2006-01-02 15:04:05"
	fileDateLayout = "2006-01-02"
)

type exporter interface {
	Export(ctx context.Context) ([]models.ConfirmedSubscriber, error)
}

type statsProvider interface {
	Stats(ctx context.Context) (models.Stats, error)
}

type Handler struct {
	exporter     exporter
	stats        statsProvider
	exportPrefix string
	logger       *zap.Logger
	now          func() time.Time
}

func NewHandler(exp exporter, stats statsProvider, exportPrefix string, logger *zap.Logger) *Handler {
	return &Handler{
		exporter:     exp,
		stats:        stats,
		exportPrefix: exportPrefix,
		logger:       logger.With(zap.String("component", "AdminHandler")),
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// Export
// @Summary Export confirmed subscribers
// @Description CSV of confirmed subscribers, most recently confirmed first.
// @Tags admin
// @Produce text/csv
// @Security BasicAuth
// @Success 200 {string} string "CSV attachment"
// @Failure 401
// @Failure 500 {string} string "Export failed"
// @Router /admin/export [get]
func (h *Handler) Export(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), timeoutDuration)
	defer cancel()

	subs, err := h.exporter.Export(ctx)
	if err != nil {
		h.logger.Error("export failed", zap.Error(err))
		c.String(http.StatusInternalServerError, "Export failed")
		return
	}

	filename := fmt.Sprintf("%s-subscribers-%s.csv", h.exportPrefix, h.now().UTC().Format(fileDateLayout))
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, "text/csv; charset=utf-8", []byte(FormatCSV(subs)))
}

// Stats
// @Summary Subscriber counts
// @Tags admin
// @Produce json
// @Security BasicAuth
// @Success 200 {object} models.Stats
// @Failure 401
// @Failure 500 {string} string "Stats failed"
// @Router /admin/stats [get]
func (h *Handler) Stats(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), timeoutDuration)
	defer cancel()

	stats, err := h.stats.Stats(ctx)
	if err != nil {
		h.logger.Error("stats failed", zap.Error(err))
		c.String(http.StatusInternalServerError, "Stats failed")
		return
	}

	c.JSON(http.StatusOK, stats)
}

// FormatCSV renders the header and one fully quoted row per subscriber,
// joined by "\n" with no trailing newline.
func FormatCSV(subs []models.ConfirmedSubscriber) string {
	var b strings.Builder
	b.WriteString(csvHeader)

	for _, s := range subs {
		dogName := ""
		if s.DogName != nil {
			dogName = *s.DogName
		}

		b.WriteByte('\n')
		writeRow(&b,
			s.Email,
			dogName,
			string(s.Source),
			s.ConsentTimestamp.UTC().Format(csvTimeLayout),
			s.ConfirmedAt.UTC().Format(csvTimeLayout),
		)
	}

	return b.String()
}

func writeRow(b *strings.Builder, fields ...string) {
	for i, f := range fields {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteByte('"')
		b.WriteString(strings.ReplaceAll(f, `"`, `""`))
		b.WriteByte('"')
	}
}

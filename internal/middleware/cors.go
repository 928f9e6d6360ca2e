package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// CORS answers preflights and decorates responses for an origin allow-list.
// Origins outside the list get the first entry (the public site) back.
type CORS struct {
	allowed  map[string]struct{}
	fallback string
}

func NewCORS(origins []string) *CORS {
	c := &CORS{allowed: make(map[string]struct{}, len(origins))}
	for _, o := range origins {
		if c.fallback == "" {
			c.fallback = o
		}
		c.allowed[o] = struct{}{}
	}
	return c
}

func (c *CORS) origin(requested string) string {
	if _, ok := c.allowed[requested]; ok {
		return requested
	}
	return c.fallback
}

func (c *CORS) setHeaders(ctx *gin.Context) {
	h := ctx.Writer.Header()
	h.Set("Access-Control-Allow-Origin", c.origin(ctx.GetHeader("Origin")))
	h.Set("Access-Control-Allow-Methods", "POST, OPTIONS")
	h.Set("Access-Control-Allow-Headers", "Content-Type")
	h.Add("Vary", "Origin")
}

// Preflight short-circuits every OPTIONS request with 204 and no body.
func (c *CORS) Preflight() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if ctx.Request.Method != http.MethodOptions {
			ctx.Next()
			return
		}
		c.setHeaders(ctx)
		ctx.AbortWithStatus(http.StatusNoContent)
	}
}

func (c *CORS) Headers() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		c.setHeaders(ctx)
		ctx.Next()
	}
}

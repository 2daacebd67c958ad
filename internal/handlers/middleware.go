package handlers

import (
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	errRateLimited = "rate limit exceeded"
	errInternal    = "internal server error"

	corsAllowMethods = "GET, POST, OPTIONS"
	corsAllowHeaders = "Content-Type, Authorization"
)

// recovery turns a panic into 500 {"error": "<description>"} and logs it.
func (h *Handler) recovery() gin.HandlerFunc {
	return gin.CustomRecoveryWithWriter(io.Discard, func(c *gin.Context, recovered any) {
		msg := errInternal
		if recovered != nil {
			msg = fmt.Sprint(recovered)
		}
		if h.log != nil {
			h.log.Errorw("http_panic_recovered",
				"panic", msg,
				"method", c.Request.Method,
				"path", c.Request.URL.Path,
			)
		}
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": msg})
	})
}

// cors answers preflight requests and sets Access-Control-* headers for allowed origins.
func (h *Handler) cors() gin.HandlerFunc {
	allowAny := false
	allowed := make(map[string]struct{}, len(h.allowedOrigins))
	for _, o := range h.allowedOrigins {
		o = strings.TrimSpace(o)
		if o == "*" {
			allowAny = true
		}
		allowed[o] = struct{}{}
	}

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if origin != "" {
			if allowAny {
				c.Header("Access-Control-Allow-Origin", "*")
			} else if _, ok := allowed[origin]; ok {
				c.Header("Access-Control-Allow-Origin", origin)
				c.Header("Vary", "Origin")
			}
			c.Header("Access-Control-Allow-Methods", corsAllowMethods)
			c.Header("Access-Control-Allow-Headers", corsAllowHeaders)
		}

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

// rateLimit rejects write requests once the client IP used up its window.
// Limiter errors let the request through.
func (h *Handler) rateLimit(c *gin.Context) {
	if h.limiter == nil {
		c.Next()
		return
	}

	d, err := h.limiter.Allow(c.Request.Context(), c.ClientIP())
	if err != nil && h.log != nil {
		h.log.Warnw("rate_limit_unavailable", "err", err)
	}

	c.Header("X-RateLimit-Limit", strconv.Itoa(d.Limit))
	c.Header("X-RateLimit-Remaining", strconv.Itoa(d.Remaining))
	c.Header("X-RateLimit-Reset", strconv.Itoa(int(d.Reset.Seconds())))

	if !d.Allowed {
		c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": errRateLimited})
		return
	}
	c.Next()
}

package http

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"recipebox/internal/apperror"
	"recipebox/internal/auth"
)

const requestIDHeader = "X-Request-ID"

func corsMiddleware(allowOrigin string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if allowOrigin == "" {
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		} else {
			// Cookies only travel cross-origin to an explicit origin.
			c.Writer.Header().Set("Access-Control-Allow-Origin", allowOrigin)
			c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
			c.Writer.Header().Add("Vary", "Origin")
		}
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization, "+requestIDHeader)
		c.Writer.Header().Set("Access-Control-Expose-Headers", requestIDHeader)
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

func requestLogger(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		requestID := c.GetHeader(requestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Header(requestIDHeader, requestID)

		c.Next()

		logger.WithFields(logrus.Fields{
			"request_id": requestID,
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"status":     c.Writer.Status(),
			"latency":    time.Since(start),
		}).Info("request")
	}
}

// authenticate resolves the caller and stores the Identity on the request
// context. In Optional mode anonymous callers continue with an empty Identity.
func (h *Handler) authenticate(mode auth.Mode) gin.HandlerFunc {
	return func(c *gin.Context) {
		var (
			id  auth.Identity
			err error
		)
		token, malformed := h.tokenFrom(c)
		if malformed {
			id, err = h.authn.Reject(mode, apperror.ErrInvalidToken)
		} else {
			id, err = h.authn.Authenticate(c.Request.Context(), token, mode)
		}
		if err != nil {
			h.respondError(c, err)
			return
		}

		if mode == auth.Optional && !id.Authenticated() && (token != "" || malformed) {
			h.logger.WithField("path", c.Request.URL.Path).Debug("ignoring rejected access token")
		}

		c.Request = c.Request.WithContext(auth.WithIdentity(c.Request.Context(), id))
		c.Next()
	}
}

// tokenFrom reads the access token from the cookie, then from a Bearer
// Authorization header. A header with any other shape is malformed.
func (h *Handler) tokenFrom(c *gin.Context) (string, bool) {
	if cookie, err := c.Cookie(h.opts.CookieName); err == nil && cookie != "" {
		return cookie, false
	}

	header := strings.TrimSpace(c.GetHeader("Authorization"))
	if header == "" {
		return "", false
	}
	scheme, token, ok := strings.Cut(header, " ")
	token = strings.TrimSpace(token)
	if !ok || !strings.EqualFold(scheme, "Bearer") || token == "" {
		return "", true
	}
	return token, false
}

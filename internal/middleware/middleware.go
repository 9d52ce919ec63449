package middleware

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/joshua-takyi/eventful/internal/helpers"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	// SessionCookie holds the session token.
	SessionCookie = "accessToken"

	requestIDKey = "request_id"
	claimsKey    = "user"
)

// RequestID middleware adds a unique request ID to each request
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}
		c.Set(requestIDKey, requestID)
		c.Header("X-Request-ID", requestID)
		c.Next()
	}
}

// StructuredLogger provides structured logging middleware
func StructuredLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		raw := c.Request.URL.RawQuery

		c.Next()

		if raw != "" {
			path = path + "?" + raw
		}
		requestID, _ := c.Get(requestIDKey)

		attrs := []any{
			"request_id", requestID,
			"method", c.Request.Method,
			"path", path,
			"status", c.Writer.Status(),
			"latency", time.Since(start),
			"client_ip", c.ClientIP(),
		}
		if claims, ok := Claims(c); ok {
			attrs = append(attrs, "user_id", claims.UserID)
		}
		logger.Info("HTTP Request", attrs...)
	}
}

// ErrorHandler logs errors attached with c.Error and answers with a generic
// 500 when the handler has not written a response itself.
func ErrorHandler(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}
		err := c.Errors.Last()
		requestID, _ := c.Get(requestIDKey)

		logger.Error("Request error",
			"request_id", requestID,
			"error", err.Error(),
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
		)

		if !c.Writer.Written() {
			c.JSON(http.StatusInternalServerError, helpers.ErrorResponse("Internal server error"))
		}
	}
}

// TokenFromRequest reads the session token from the cookie, falling back to a bearer header.
func TokenFromRequest(c *gin.Context) string {
	if token, err := c.Cookie(SessionCookie); err == nil && token != "" {
		return token
	}
	auth := c.GetHeader("Authorization")
	if token, found := strings.CutPrefix(auth, "Bearer "); found {
		return strings.TrimSpace(token)
	}
	return ""
}

// RequireAuth rejects requests without a valid session token.
func RequireAuth(tokens *helpers.Tokens, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := TokenFromRequest(c)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, helpers.ErrorResponse("no auth token"))
			return
		}
		claims, err := tokens.Verify(token)
		if err != nil {
			logger.Debug("token rejected", "error", err, "client_ip", c.ClientIP())
			c.AbortWithStatusJSON(http.StatusUnauthorized, helpers.ErrorResponse("auth token invalid"))
			return
		}
		if _, err := claims.ObjectID(); err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, helpers.ErrorResponse("auth token invalid"))
			return
		}
		c.Set(claimsKey, claims)
		c.Next()
	}
}

// OptionalAuth attaches the session when a valid token is present and lets
// the request through either way.
func OptionalAuth(tokens *helpers.Tokens) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token := TokenFromRequest(c); token != "" {
			if claims, err := tokens.Verify(token); err == nil {
				c.Set(claimsKey, claims)
			}
		}
		c.Next()
	}
}

func Claims(c *gin.Context) (*helpers.SessionClaims, bool) {
	v, ok := c.Get(claimsKey)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*helpers.SessionClaims)
	return claims, ok
}

// CallerID returns the authenticated user's id.
func CallerID(c *gin.Context) (primitive.ObjectID, bool) {
	claims, ok := Claims(c)
	if !ok {
		return primitive.NilObjectID, false
	}
	id, err := claims.ObjectID()
	if err != nil {
		return primitive.NilObjectID, false
	}
	return id, true
}

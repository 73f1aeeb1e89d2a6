package httpserver

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"postershop/internal/domain"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ctxKey string

const principalCtxKey ctxKey = "principal"

const (
	requestIDKey      = "request_id"
	headerRequestID   = "X-Request-Id"
	sessionCookieName = "sid"
)

// requestIDMiddleware reuses a client supplied X-Request-Id or generates one,
// and echoes it on the response.
func requestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := strings.TrimSpace(c.GetHeader(headerRequestID))
		if id == "" || len(id) > 128 {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Writer.Header().Set(headerRequestID, id)
		c.Next()
	}
}

func accessLogFormatter(p gin.LogFormatterParams) string {
	reqID, _ := p.Keys[requestIDKey].(string)
	return fmt.Sprintf("[api] %s %s %s %d %s request_id=%s client=%s%s\n",
		p.TimeStamp.UTC().Format(time.RFC3339),
		p.Method,
		p.Path,
		p.StatusCode,
		p.Latency.Round(time.Microsecond),
		reqID,
		p.ClientIP,
		errorSuffix(p.ErrorMessage),
	)
}

func errorSuffix(msg string) string {
	if msg == "" {
		return ""
	}
	return " error=" + strings.TrimSpace(msg)
}

func requestID(c *gin.Context) string {
	return c.GetString(requestIDKey)
}

// sessionMiddleware attaches the principal for a valid session token. Requests
// without a usable token continue anonymously.
func sessionMiddleware(accounts AccountService, logger *log.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := sessionToken(c)
		if token == "" {
			c.Next()
			return
		}
		p, err := accounts.Authenticate(c.Request.Context(), token)
		if err != nil {
			if errors.Is(err, domain.ErrUnauthorized) {
				c.Next()
				return
			}
			logger.Printf("session lookup failed request_id=%s err=%v", requestID(c), err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": msgServerError})
			return
		}
		ctx := context.WithValue(c.Request.Context(), principalCtxKey, p)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// requireAuth rejects requests that carry no principal.
func requireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if principalFrom(c) == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": msgUnauthorized})
			return
		}
		c.Next()
	}
}

func principalFrom(c *gin.Context) *domain.Principal {
	p, _ := c.Request.Context().Value(principalCtxKey).(*domain.Principal)
	return p
}

// sessionToken reads the session cookie, falling back to a bearer token.
func sessionToken(c *gin.Context) string {
	if v, err := c.Cookie(sessionCookieName); err == nil && v != "" {
		return v
	}
	authz := c.GetHeader("Authorization")
	if len(authz) > 7 && strings.EqualFold(authz[:7], "bearer ") {
		return strings.TrimSpace(authz[7:])
	}
	return ""
}

func setSessionCookie(c *gin.Context, token string, expiresAt time.Time, secure bool) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     sessionCookieName,
		Value:    token,
		Path:     "/",
		Expires:  expiresAt,
		MaxAge:   int(time.Until(expiresAt).Seconds()),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func clearSessionCookie(c *gin.Context, secure bool) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}

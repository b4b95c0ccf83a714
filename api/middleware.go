package api

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/juju/errors"

	"github.com/Domenick1991/domora/internal/access"
	"github.com/Domenick1991/domora/internal/domain"
	"github.com/Domenick1991/domora/internal/metrics"
)

const (
	userKey      = "domora.user"
	requesterKey = "domora.requester"
)

// Authenticator resolves bearer tokens to users.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*domain.User, error)
}

// RequireAuth rejects requests without a valid bearer token and stores the
// user and its access.Requester on the context.
func RequireAuth(accounts Authenticator, profiles access.ProfileLookup) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		scheme, token, ok := strings.Cut(header, " ")
		if !ok || !strings.EqualFold(scheme, "bearer") || strings.TrimSpace(token) == "" {
			c.Header("WWW-Authenticate", "Bearer")
			writeError(c, errors.Unauthorizedf("missing bearer token"))
			return
		}
		user, err := accounts.Authenticate(c.Request.Context(), strings.TrimSpace(token))
		if err != nil {
			c.Header("WWW-Authenticate", "Bearer")
			writeError(c, err)
			return
		}
		who, err := access.Resolve(c.Request.Context(), profiles, user)
		if err != nil {
			writeError(c, err)
			return
		}
		c.Set(userKey, user)
		c.Set(requesterKey, who)
		c.Next()
	}
}

func currentUser(c *gin.Context) *domain.User {
	if v, ok := c.Get(userKey); ok {
		if user, ok := v.(*domain.User); ok {
			return user
		}
	}
	return nil
}

func requester(c *gin.Context) access.Requester {
	if v, ok := c.Get(requesterKey); ok {
		if who, ok := v.(access.Requester); ok {
			return who
		}
	}
	return access.Requester{}
}

// RequestLogger logs every request at DEBUG and server errors at ERROR.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		status := c.Writer.Status()
		elapsed := time.Since(start)
		if status >= http.StatusInternalServerError {
			logger.Errorf("%s %s -> %d (%s)", c.Request.Method, c.Request.URL.Path, status, elapsed)
			return
		}
		logger.Debugf("%s %s -> %d (%s)", c.Request.Method, c.Request.URL.Path, status, elapsed)
	}
}

// Instrument records request durations by route template.
func Instrument(m *metrics.Collector) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.ObserveRequest(c.Request.Method, route, c.Writer.Status(), time.Since(start))
	}
}

// Package middleware resolves the acting user and enforces course-site roles.
// Authentication itself happens in the campus SSO proxy in front of this
// service; the proxy forwards the session as trusted headers.
package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ets-berkeley-edu/ripley/internal/server/ratelimit"
	"github.com/ets-berkeley-edu/ripley/internal/types"
)

const userContextKey = "current_user"

// Manager wires all HTTP middlewares.
type Manager struct {
	limiter *ratelimit.Limiter
}

// NewManager builds a middleware manager for the HTTP server.
func NewManager() *Manager {
	return &Manager{limiter: ratelimit.NewLimiter()}
}

// CurrentUser decodes the forwarded session headers into a CurrentUser and
// stores it on the request context. Requests without a user proceed with an
// empty user; role checks happen per route.
func (m *Manager) CurrentUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := types.CurrentUser{
			UID:                c.GetHeader("X-Canvas-User-Id"),
			MasqueradingUserID: c.GetHeader("X-Canvas-Masquerading-User-Id"),
			IsTeaching:         c.GetHeader("X-Canvas-Is-Teaching") == "true",
		}
		if siteID, err := strconv.Atoi(c.GetHeader("X-Canvas-Site-Id")); err == nil {
			user.CanvasSiteID = siteID
		}
		if roles := c.GetHeader("X-Canvas-User-Roles"); roles != "" {
			for _, role := range strings.Split(roles, ",") {
				if role = strings.TrimSpace(role); role != "" {
					user.CanvasSiteUserRoles = append(user.CanvasSiteUserRoles, role)
				}
			}
		}
		c.Set(userContextKey, user)
		c.Next()
	}
}

// RequireRole restricts a route to users holding at least one of the given
// Canvas roles on the course site.
func (m *Manager) RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := UserFrom(c)
		if user.UID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}
		if !user.HasAnyRole(roles...) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "role not permitted"})
			return
		}
		c.Next()
	}
}

// RateLimit caps requests per user within a fixed window. Anonymous requests
// fall back to the client IP so role checks further down still get a chance to
// answer 401.
func (m *Manager) RateLimit(limit int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := UserFrom(c).UID
		if key == "" {
			key = c.ClientIP()
		}
		if !m.limiter.Allow(key, limit, window) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
			return
		}
		c.Next()
	}
}

// RequireUser restricts a route to authenticated users regardless of role.
func (m *Manager) RequireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		if UserFrom(c).UID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}
		c.Next()
	}
}

// UserFrom returns the acting user stored by CurrentUser.
func UserFrom(c *gin.Context) types.CurrentUser {
	if value, exists := c.Get(userContextKey); exists {
		if user, ok := value.(types.CurrentUser); ok {
			return user
		}
	}
	return types.CurrentUser{}
}

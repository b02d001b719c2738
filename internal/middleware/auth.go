package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/waste3d/codelearn/internal/domain"
	"github.com/waste3d/codelearn/internal/infrastructure/security"
)

const (
	sessionKey = "session"

	AccessCookie  = "access_token"
	RefreshCookie = "refresh_token"
)

type Authenticator interface {
	Authenticate(ctx context.Context, accessToken string) (*domain.Session, error)
	Refresh(ctx context.Context, refreshToken string) (security.TokenPair, error)
}

// Auth resolves the caller's session and stores it on the context. It never
// rejects a request; the Require* middlewares decide what needs a session.
// Browser clients whose access cookie expired are refreshed from the refresh
// cookie and get new cookies on the response.
func Auth(auth Authenticator, secureCookies bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token, ok := bearerToken(c); ok {
			if sess, err := auth.Authenticate(c, token); err == nil {
				c.Set(sessionKey, sess)
			}
			c.Next()
			return
		}

		access, _ := c.Cookie(AccessCookie)
		if access != "" {
			sess, err := auth.Authenticate(c, access)
			if err == nil {
				c.Set(sessionKey, sess)
				c.Next()
				return
			}
			if !errors.Is(err, domain.ErrSessionExpired) {
				c.Next()
				return
			}
		}

		refresh, _ := c.Cookie(RefreshCookie)
		if refresh == "" {
			c.Next()
			return
		}
		pair, err := auth.Refresh(c, refresh)
		if err != nil {
			ClearAuthCookies(c, secureCookies)
			c.Next()
			return
		}
		SetAuthCookies(c, pair, secureCookies)
		if sess, err := auth.Authenticate(c, pair.AccessToken); err == nil {
			c.Set(sessionKey, sess)
		}
		c.Next()
	}
}

func bearerToken(c *gin.Context) (string, bool) {
	header := c.GetHeader("Authorization")
	if header == "" {
		return "", false
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

// CurrentSession returns the session Auth resolved, or nil.
func CurrentSession(c *gin.Context) *domain.Session {
	v, ok := c.Get(sessionKey)
	if !ok {
		return nil
	}
	sess, _ := v.(*domain.Session)
	return sess
}

func RequireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		if CurrentSession(c) == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}
		c.Next()
	}
}

// RequirePageSession sends anonymous visitors to the login page.
func RequirePageSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		if CurrentSession(c) == nil {
			c.Redirect(http.StatusFound, "/login")
			c.Abort()
			return
		}
		c.Next()
	}
}

func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := CurrentSession(c)
		if sess == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}
		if !sess.IsAdmin() {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "admin access required"})
			return
		}
		c.Next()
	}
}

// RequireAdminPage renders the forbidden page instead of the authoring form.
func RequireAdminPage() gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := CurrentSession(c)
		if sess == nil {
			c.Redirect(http.StatusFound, "/login")
			c.Abort()
			return
		}
		if !sess.IsAdmin() {
			c.HTML(http.StatusForbidden, "forbidden.html", gin.H{"Session": sess})
			c.Abort()
			return
		}
		c.Next()
	}
}

func SetAuthCookies(c *gin.Context, pair security.TokenPair, secure bool) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(AccessCookie, pair.AccessToken, int(pair.RefreshTTL.Seconds()), "/", "", secure, true)
	c.SetCookie(RefreshCookie, pair.RefreshToken, int(pair.RefreshTTL.Seconds()), "/", "", secure, true)
}

func ClearAuthCookies(c *gin.Context, secure bool) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(AccessCookie, "", -1, "/", "", secure, true)
	c.SetCookie(RefreshCookie, "", -1, "/", "", secure, true)
}

package web

import (
	"context"
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"task-manager/internal/service"
)

const (
	userKey       = "user"
	sessionCookie = "session"
	flashCookie   = "flash"

	loginRequiredMessage = "Please log in to access this page."
)

// withStoreTimeout bounds every store call made while serving the request.
func (s *Server) withStoreTimeout(c *gin.Context) {
	if s.storeTimeout <= 0 {
		c.Next()
		return
	}
	ctx, cancel := context.WithTimeout(c.Request.Context(), s.storeTimeout)
	defer cancel()
	c.Request = c.Request.WithContext(ctx)
	c.Next()
}

// identify resolves the session cookie once per request. A bad or stale
// cookie is cleared and the request continues anonymously.
func (s *Server) identify(c *gin.Context) {
	token, err := c.Cookie(sessionCookie)
	if err != nil || token == "" {
		c.Next()
		return
	}

	user, err := s.auth.ResolveIdentity(c.Request.Context(), token)
	switch {
	case err == nil:
		c.Set(userKey, user)
	case errors.Is(err, service.ErrUnauthenticated):
		s.clearSession(c)
	default:
		log.Printf("[error] resolve session: %v", err)
	}
	c.Next()
}

func (s *Server) requireUser(c *gin.Context) {
	if currentUser(c) == nil {
		s.setFlash(c, loginRequiredMessage)
		c.Redirect(http.StatusSeeOther, "/login")
		c.Abort()
		return
	}
	c.Next()
}

func (s *Server) requireAPIUser(c *gin.Context) {
	if currentUser(c) == nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"success": false,
			"error":   "authentication required",
		})
		return
	}
	c.Next()
}

func (s *Server) startSession(c *gin.Context, token string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(sessionCookie, token, int(s.sessionTTL.Seconds()), "/", "", s.secureCookies, true)
}

func (s *Server) clearSession(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(sessionCookie, "", -1, "/", "", s.secureCookies, true)
}

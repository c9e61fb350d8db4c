package web

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// setFlash stores a one-shot message for the next rendered page.
func (s *Server) setFlash(c *gin.Context, message string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(flashCookie, message, 60, "/", "", s.secureCookies, true)
}

// popFlash returns the pending message and clears it.
func (s *Server) popFlash(c *gin.Context) string {
	message, err := c.Cookie(flashCookie)
	if err != nil || message == "" {
		return ""
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(flashCookie, "", -1, "/", "", s.secureCookies, true)
	return message
}

// redirectWithFlash is the standard answer to a finished or refused mutation.
func (s *Server) redirectWithFlash(c *gin.Context, location, message string) {
	if message != "" {
		s.setFlash(c, message)
	}
	c.Redirect(http.StatusSeeOther, location)
}

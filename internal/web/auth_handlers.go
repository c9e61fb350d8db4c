package web

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"task-manager/internal/service"
)

type loginForm struct {
	Username string `form:"username"`
	Password string `form:"password"`
}

type registerForm struct {
	Username string `form:"username"`
	Email    string `form:"email"`
	Password string `form:"password"`
}

type settingsForm struct {
	TelegramChatID string `form:"telegram_chat_id"`
}

func (s *Server) handleIndex(c *gin.Context) {
	if currentUser(c) != nil {
		c.Redirect(http.StatusSeeOther, "/dashboard")
		return
	}
	s.page(c, http.StatusOK, "index.tmpl", nil)
}

func (s *Server) handleLoginForm(c *gin.Context) {
	s.page(c, http.StatusOK, "login.tmpl", gin.H{"Form": loginForm{}})
}

func (s *Server) handleLogin(c *gin.Context) {
	var form loginForm
	if !s.bindForm(c, &form) {
		return
	}

	user, err := s.auth.Login(c.Request.Context(), form.Username, form.Password)
	if err != nil {
		if !errors.Is(err, service.ErrInvalidCredentials) {
			log.Printf("[error] login: %v", err)
		}
		form.Password = ""
		s.page(c, http.StatusUnauthorized, "login.tmpl", gin.H{
			"Form":  form,
			"Error": "Invalid username or password",
		})
		return
	}

	token, err := s.auth.IssueSession(user)
	if err != nil {
		s.serverError(c, err)
		return
	}
	s.startSession(c, token)
	log.Printf("[info] login user=%d", user.ID)
	c.Redirect(http.StatusSeeOther, "/dashboard")
}

func (s *Server) handleRegisterForm(c *gin.Context) {
	s.page(c, http.StatusOK, "register.tmpl", gin.H{"Form": registerForm{}})
}

func (s *Server) handleRegister(c *gin.Context) {
	var form registerForm
	if !s.bindForm(c, &form) {
		return
	}

	user, err := s.auth.Register(c.Request.Context(), service.RegisterInput{
		Username: form.Username,
		Email:    form.Email,
		Password: form.Password,
	})
	if err != nil {
		form.Password = ""
		var verr *service.ValidationError
		switch {
		case errors.As(err, &verr):
			s.page(c, http.StatusUnprocessableEntity, "register.tmpl", gin.H{"Form": form, "Error": verr.Message})
		case errors.Is(err, service.ErrUserExists):
			s.page(c, http.StatusConflict, "register.tmpl", gin.H{"Form": form, "Error": "Username or email already exists"})
		default:
			s.serverError(c, err)
		}
		return
	}

	token, err := s.auth.IssueSession(user)
	if err != nil {
		s.serverError(c, err)
		return
	}
	s.startSession(c, token)
	log.Printf("[info] registered user=%d", user.ID)
	c.Redirect(http.StatusSeeOther, "/dashboard")
}

func (s *Server) handleLogout(c *gin.Context) {
	s.clearSession(c)
	c.Redirect(http.StatusSeeOther, "/")
}

func (s *Server) handleDashboard(c *gin.Context) {
	user := currentUser(c)
	summary, err := s.tasks.Summary(c.Request.Context(), user.ID)
	if err != nil {
		s.serverError(c, err)
		return
	}
	s.page(c, http.StatusOK, "dashboard.tmpl", gin.H{"Summary": summary})
}

func (s *Server) handleSettingsForm(c *gin.Context) {
	user := currentUser(c)
	form := settingsForm{}
	if user.TelegramChatID != nil {
		form.TelegramChatID = strconv.FormatInt(*user.TelegramChatID, 10)
	}
	s.page(c, http.StatusOK, "settings.tmpl", gin.H{"Form": form})
}

func (s *Server) handleSettings(c *gin.Context) {
	user := currentUser(c)
	var form settingsForm
	if !s.bindForm(c, &form) {
		return
	}

	if _, err := s.auth.SetTelegramChatID(c.Request.Context(), user.ID, form.TelegramChatID); err != nil {
		var verr *service.ValidationError
		if errors.As(err, &verr) {
			s.page(c, http.StatusUnprocessableEntity, "settings.tmpl", gin.H{"Form": form, "Error": verr.Message})
			return
		}
		s.serverError(c, err)
		return
	}
	s.redirectWithFlash(c, "/settings", "Settings saved")
}

// serverError answers an infrastructure failure without leaking details.
func (s *Server) serverError(c *gin.Context, err error) {
	log.Printf("[error] %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
	s.page(c, http.StatusInternalServerError, "error.tmpl", gin.H{"Error": "Something went wrong. Please try again."})
}

// bindForm decodes the submitted form into dst. Missing fields stay empty and
// are left to service validation; a body that cannot be parsed gets a 400.
func (s *Server) bindForm(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBind(dst); err != nil {
		log.Printf("[warn] %s %s: bind form: %v", c.Request.Method, c.Request.URL.Path, err)
		s.page(c, http.StatusBadRequest, "error.tmpl", gin.H{"Error": "The form could not be read. Please try again."})
		return false
	}
	return true
}

package web

import (
	"embed"
	"html/template"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"task-manager/internal/model"
	"task-manager/internal/service"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

var templates = template.Must(template.New("").Funcs(template.FuncMap{
	"join": strings.Join,
	"date": func(t time.Time) string { return t.Format("2006-01-02 15:04") },
}).ParseFS(templateFS, "templates/*.tmpl"))

// Options wires the server's collaborators.
type Options struct {
	Auth          *service.AuthService
	Tasks         *service.TaskService
	Categories    *service.CategoryService
	StoreTimeout  time.Duration
	SessionTTL    time.Duration
	SecureCookies bool
}

// Server is the task manager web server.
type Server struct {
	auth          *service.AuthService
	tasks         *service.TaskService
	categories    *service.CategoryService
	storeTimeout  time.Duration
	sessionTTL    time.Duration
	secureCookies bool
	router        *gin.Engine
}

// NewServer creates a new web server.
func NewServer(opts Options) *Server {
	router := gin.Default()
	router.SetHTMLTemplate(templates)

	s := &Server{
		auth:          opts.Auth,
		tasks:         opts.Tasks,
		categories:    opts.Categories,
		storeTimeout:  opts.StoreTimeout,
		sessionTTL:    opts.SessionTTL,
		secureCookies: opts.SecureCookies,
		router:        router,
	}

	router.Use(s.withStoreTimeout, s.identify)

	router.GET("/", s.handleIndex)
	router.GET("/login", s.handleLoginForm)
	router.POST("/login", s.handleLogin)
	router.GET("/register", s.handleRegisterForm)
	router.POST("/register", s.handleRegister)
	router.GET("/logout", s.handleLogout)

	authed := router.Group("", s.requireUser)
	{
		authed.GET("/dashboard", s.handleDashboard)
		authed.GET("/settings", s.handleSettingsForm)
		authed.POST("/settings", s.handleSettings)

		authed.GET("/tasks", s.handleListTasks)
		authed.GET("/tasks/search", s.handleSearchTasks)
		authed.GET("/tasks/new", s.handleNewTaskForm)
		authed.POST("/tasks/new", s.handleCreateTask)
		authed.GET("/tasks/:id", s.handleViewTask)
		authed.GET("/tasks/:id/edit", s.handleEditTaskForm)
		authed.POST("/tasks/:id/edit", s.handleUpdateTask)
		authed.POST("/tasks/:id/delete", s.handleDeleteTask)
		authed.POST("/tasks/:id/toggle", s.handleToggleTask)
	}

	api := router.Group("/api", s.requireAPIUser)
	{
		api.GET("/tasks", s.handleAPIListTasks)
		api.GET("/tasks/search", s.handleAPISearchTasks)
		api.GET("/tags", s.handleAPITags)
	}

	return s
}

// Handler exposes the router for http.Server and tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// page renders a template with the fields every layout needs.
func (s *Server) page(c *gin.Context, status int, name string, data gin.H) {
	if data == nil {
		data = gin.H{}
	}
	data["User"] = currentUser(c)
	data["Flash"] = s.popFlash(c)
	c.HTML(status, name, data)
}

func currentUser(c *gin.Context) *model.User {
	value, ok := c.Get(userKey)
	if !ok {
		return nil
	}
	user, _ := value.(*model.User)
	return user
}

package web

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"task-manager/internal/service"
)

// API handlers

func (s *Server) handleAPIListTasks(c *gin.Context) {
	user := currentUser(c)
	q := service.ParseTaskQuery(queryParams(c))

	tasks, err := s.tasks.ListTasks(c.Request.Context(), user.ID, q)
	if err != nil {
		s.apiError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"query":   service.Params(q),
		"tasks":   tasks,
		"count":   len(tasks),
	})
}

func (s *Server) handleAPISearchTasks(c *gin.Context) {
	user := currentUser(c)
	query := c.Query("q")

	tasks, err := s.tasks.SearchTasks(c.Request.Context(), user.ID, query)
	if err != nil {
		s.apiError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"query":   query,
		"tasks":   tasks,
		"count":   len(tasks),
	})
}

func (s *Server) handleAPITags(c *gin.Context) {
	user := currentUser(c)

	tags, err := s.tasks.ListTags(c.Request.Context(), user.ID)
	if err != nil {
		s.apiError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"tags":    tags,
	})
}

func (s *Server) apiError(c *gin.Context, err error) {
	log.Printf("[error] %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
	c.JSON(http.StatusInternalServerError, gin.H{
		"success": false,
		"error":   "internal error",
	})
}

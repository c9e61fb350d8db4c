package web

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"task-manager/internal/model"
	"task-manager/internal/service"
)

const taskNotFoundMessage = "Task not found"

// taskForm is the create/edit form. Checkboxes arrive only when ticked.
type taskForm struct {
	Title       string `form:"title"`
	Priority    string `form:"priority"`
	Category    string `form:"category"`
	Tags        string `form:"tags"`
	DueDate     string `form:"due_date"`
	Notes       string `form:"notes"`
	Feedback    string `form:"feedback"`
	Completed   string `form:"completed"`
	NeedsReview string `form:"needs_review"`
}

func (f taskForm) input() service.TaskInput {
	return service.TaskInput{
		Title:    f.Title,
		Priority: f.Priority,
		Category: f.Category,
		Tags:     f.Tags,
		DueDate:  f.DueDate,
		Notes:    f.Notes,
		Feedback: f.Feedback,
	}
}

func formFromTask(task *model.Task) taskForm {
	form := taskForm{
		Title:    task.Title,
		Priority: string(task.Priority),
		Category: task.CategoryName(),
		Tags:     strings.Join(task.TagNames(), ", "),
		DueDate:  task.DueDateString(),
		Notes:    task.Notes,
		Feedback: task.Feedback,
	}
	if task.Completed {
		form.Completed = "on"
	}
	if task.NeedsReview {
		form.NeedsReview = "on"
	}
	return form
}

func queryParams(c *gin.Context) service.QueryParams {
	return service.QueryParams{
		Filter:   c.DefaultQuery("filter", "all"),
		Priority: c.DefaultQuery("priority", "all"),
		Category: c.DefaultQuery("category", "all"),
		Tag:      c.DefaultQuery("tag", "all"),
		Sort:     c.DefaultQuery("sort", "newest"),
	}
}

// taskID parses the :id path segment. Malformed ids are reported as not found.
func taskID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

func (s *Server) handleListTasks(c *gin.Context) {
	user := currentUser(c)
	ctx := c.Request.Context()
	q := service.ParseTaskQuery(queryParams(c))

	tasks, err := s.tasks.ListTasks(ctx, user.ID, q)
	if err != nil {
		s.serverError(c, err)
		return
	}
	tags, err := s.tasks.ListTags(ctx, user.ID)
	if err != nil {
		s.serverError(c, err)
		return
	}
	categories, err := s.categories.List(ctx, user.ID)
	if err != nil {
		s.serverError(c, err)
		return
	}

	s.page(c, http.StatusOK, "tasks.tmpl", gin.H{
		"Tasks":       tasks,
		"Query":       service.Params(q),
		"AllTags":     tags,
		"Categories":  categories,
		"SearchQuery": "",
	})
}

func (s *Server) handleSearchTasks(c *gin.Context) {
	user := currentUser(c)
	query := c.Query("q")

	tasks, err := s.tasks.SearchTasks(c.Request.Context(), user.ID, query)
	if err != nil {
		s.serverError(c, err)
		return
	}

	s.page(c, http.StatusOK, "tasks.tmpl", gin.H{
		"Tasks":       tasks,
		"Query":       service.Params(service.ParseTaskQuery(service.QueryParams{})),
		"Searching":   true,
		"SearchQuery": query,
	})
}

func (s *Server) handleNewTaskForm(c *gin.Context) {
	s.page(c, http.StatusOK, "task_form.tmpl", gin.H{
		"Form":   taskForm{Priority: string(model.PriorityMedium), Category: model.DefaultCategory},
		"Action": "/tasks/new",
	})
}

func (s *Server) handleCreateTask(c *gin.Context) {
	user := currentUser(c)
	var form taskForm
	if !s.bindForm(c, &form) {
		return
	}

	task, err := s.tasks.CreateTask(c.Request.Context(), user.ID, form.input())
	if err != nil {
		var verr *service.ValidationError
		if errors.As(err, &verr) {
			s.page(c, http.StatusUnprocessableEntity, "task_form.tmpl", gin.H{
				"Form":   form,
				"Action": "/tasks/new",
				"Error":  verr.Message,
			})
			return
		}
		s.serverError(c, err)
		return
	}

	log.Printf("[info] task created id=%d user=%d", task.ID, user.ID)
	s.redirectWithFlash(c, "/tasks", "Task created successfully!")
}

func (s *Server) handleViewTask(c *gin.Context) {
	task, ok := s.loadTask(c)
	if !ok {
		return
	}
	s.page(c, http.StatusOK, "task.tmpl", gin.H{"Task": task})
}

func (s *Server) handleEditTaskForm(c *gin.Context) {
	task, ok := s.loadTask(c)
	if !ok {
		return
	}
	s.page(c, http.StatusOK, "task_form.tmpl", gin.H{
		"Form":    formFromTask(task),
		"Action":  "/tasks/" + strconv.FormatUint(uint64(task.ID), 10) + "/edit",
		"Editing": true,
	})
}

func (s *Server) handleUpdateTask(c *gin.Context) {
	user := currentUser(c)
	id, ok := taskID(c)
	if !ok {
		s.redirectWithFlash(c, "/tasks", taskNotFoundMessage)
		return
	}

	var form taskForm
	if !s.bindForm(c, &form) {
		return
	}

	task, err := s.tasks.UpdateTask(c.Request.Context(), user.ID, id, service.EditTaskInput{
		TaskInput:   form.input(),
		Completed:   form.Completed != "",
		NeedsReview: form.NeedsReview != "",
	})
	if err != nil {
		var verr *service.ValidationError
		switch {
		case errors.As(err, &verr):
			s.page(c, http.StatusUnprocessableEntity, "task_form.tmpl", gin.H{
				"Form":    form,
				"Action":  "/tasks/" + c.Param("id") + "/edit",
				"Editing": true,
				"Error":   verr.Message,
			})
		case errors.Is(err, service.ErrTaskNotFound):
			s.redirectWithFlash(c, "/tasks", taskNotFoundMessage)
		default:
			s.serverError(c, err)
		}
		return
	}

	s.redirectWithFlash(c, "/tasks/"+strconv.FormatUint(uint64(task.ID), 10), "Task updated successfully!")
}

func (s *Server) handleDeleteTask(c *gin.Context) {
	user := currentUser(c)
	id, ok := taskID(c)
	if !ok {
		s.redirectWithFlash(c, "/tasks", taskNotFoundMessage)
		return
	}

	deleted, err := s.tasks.DeleteTask(c.Request.Context(), user.ID, id)
	if err != nil {
		s.serverError(c, err)
		return
	}
	if !deleted {
		s.redirectWithFlash(c, "/tasks", taskNotFoundMessage)
		return
	}
	log.Printf("[info] task deleted id=%d user=%d", id, user.ID)
	s.redirectWithFlash(c, "/tasks", "Task deleted successfully!")
}

func (s *Server) handleToggleTask(c *gin.Context) {
	user := currentUser(c)
	id, ok := taskID(c)
	if !ok {
		s.redirectWithFlash(c, "/tasks", taskNotFoundMessage)
		return
	}

	if _, err := s.tasks.ToggleTask(c.Request.Context(), user.ID, id); err != nil {
		if errors.Is(err, service.ErrTaskNotFound) {
			s.redirectWithFlash(c, "/tasks", taskNotFoundMessage)
			return
		}
		s.serverError(c, err)
		return
	}
	s.redirectWithFlash(c, "/tasks", "")
}

// loadTask fetches the :id task for the current user or answers not found.
func (s *Server) loadTask(c *gin.Context) (*model.Task, bool) {
	user := currentUser(c)
	id, ok := taskID(c)
	if !ok {
		s.redirectWithFlash(c, "/tasks", taskNotFoundMessage)
		return nil, false
	}

	task, err := s.tasks.GetTask(c.Request.Context(), user.ID, id)
	if err != nil {
		if errors.Is(err, service.ErrTaskNotFound) {
			s.redirectWithFlash(c, "/tasks", taskNotFoundMessage)
			return nil, false
		}
		s.serverError(c, err)
		return nil, false
	}
	return task, true
}

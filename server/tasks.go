package server

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/existflow/focusboard/internal/model"
	"github.com/existflow/focusboard/internal/store"
	"github.com/labstack/echo/v4"
)

type createTaskRequest struct {
	Text        string  `json:"text"`
	CategoryID  *string `json:"categoryId"`
	DueDate     *string `json:"dueDate"`
	HasReminder bool    `json:"hasReminder"`
}

// updateTaskRequest leaves absent fields unchanged. An empty categoryId or
// dueDate clears it.
type updateTaskRequest struct {
	Text        *string `json:"text"`
	CategoryID  *string `json:"categoryId"`
	DueDate     *string `json:"dueDate"`
	HasReminder *bool   `json:"hasReminder"`
}

type createCategoryRequest struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

func taskID(c echo.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	return id, err == nil
}

// handleListTasks returns tasks matching ?category= and ?due=
func (s *Server) handleListTasks(c echo.Context) error {
	due, err := store.ParseDueFilter(c.QueryParam("due"))
	if err != nil {
		return errorJSON(c, http.StatusBadRequest, err.Error())
	}
	var categoryID *string
	if v := c.QueryParam("category"); v != "" {
		categoryID = &v
	}
	return c.JSON(http.StatusOK, s.app.Store.FilterTasks(categoryID, due))
}

func (s *Server) handleCreateTask(c echo.Context) error {
	var req createTaskRequest
	if err := c.Bind(&req); err != nil {
		return errorJSON(c, http.StatusBadRequest, "invalid request")
	}
	if strings.TrimSpace(req.Text) == "" {
		return errorJSON(c, http.StatusBadRequest, "text required")
	}
	if req.DueDate != nil && *req.DueDate != "" {
		if _, err := model.ParseDue(*req.DueDate, s.app.Config.Location()); err != nil {
			return errorJSON(c, http.StatusBadRequest, err.Error())
		}
	}
	if req.CategoryID != nil && !s.hasCategory(*req.CategoryID) {
		return errorJSON(c, http.StatusBadRequest, "unknown category")
	}

	task, ok := s.app.Store.AddTask(req.Text, req.CategoryID, req.DueDate, req.HasReminder)
	if !ok {
		return errorJSON(c, http.StatusBadRequest, "text required")
	}
	return c.JSON(http.StatusCreated, task)
}

func (s *Server) handleToggleTask(c echo.Context) error {
	id, ok := taskID(c)
	if !ok || !s.app.Store.ToggleTask(id) {
		return errorJSON(c, http.StatusNotFound, "task not found")
	}
	task, _ := s.app.Store.Task(id)
	return c.JSON(http.StatusOK, task)
}

func (s *Server) handleUpdateTask(c echo.Context) error {
	id, ok := taskID(c)
	if !ok {
		return errorJSON(c, http.StatusNotFound, "task not found")
	}
	var req updateTaskRequest
	if err := c.Bind(&req); err != nil {
		return errorJSON(c, http.StatusBadRequest, "invalid request")
	}
	if req.Text != nil && strings.TrimSpace(*req.Text) == "" {
		return errorJSON(c, http.StatusBadRequest, "text cannot be empty")
	}
	if req.DueDate != nil && *req.DueDate != "" {
		if _, err := model.ParseDue(*req.DueDate, s.app.Config.Location()); err != nil {
			return errorJSON(c, http.StatusBadRequest, err.Error())
		}
	}
	if req.CategoryID != nil && *req.CategoryID != "" && !s.hasCategory(*req.CategoryID) {
		return errorJSON(c, http.StatusBadRequest, "unknown category")
	}

	task, ok := s.app.Store.UpdateTask(id, store.TaskPatch{
		Text:        req.Text,
		CategoryID:  req.CategoryID,
		DueDate:     req.DueDate,
		HasReminder: req.HasReminder,
	})
	if !ok {
		return errorJSON(c, http.StatusNotFound, "task not found")
	}
	return c.JSON(http.StatusOK, task)
}

func (s *Server) handleDeleteTask(c echo.Context) error {
	id, ok := taskID(c)
	if !ok || !s.app.Store.DeleteTask(id) {
		return errorJSON(c, http.StatusNotFound, "task not found")
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) hasCategory(id string) bool {
	for _, cat := range s.app.Store.Categories() {
		if cat.ID == id {
			return true
		}
	}
	return false
}

func (s *Server) handleListCategories(c echo.Context) error {
	return c.JSON(http.StatusOK, s.app.Store.Categories())
}

func (s *Server) handleCreateCategory(c echo.Context) error {
	var req createCategoryRequest
	if err := c.Bind(&req); err != nil {
		return errorJSON(c, http.StatusBadRequest, "invalid request")
	}
	cat, ok := s.app.Store.AddCategory(req.Name, req.Color)
	if !ok {
		return errorJSON(c, http.StatusBadRequest, "name required")
	}
	return c.JSON(http.StatusCreated, cat)
}

// handleDeleteCategory removes the category; its tasks lose the reference.
func (s *Server) handleDeleteCategory(c echo.Context) error {
	if !s.app.Store.DeleteCategory(c.Param("id")) {
		return errorJSON(c, http.StatusNotFound, "category not found")
	}
	return c.NoContent(http.StatusNoContent)
}

package server

import (
	"net/http"
	"time"

	"github.com/existflow/focusboard/internal/model"
	"github.com/existflow/focusboard/internal/reminder"
	"github.com/existflow/focusboard/internal/storage"
	"github.com/labstack/echo/v4"
)

type settingsResponse struct {
	ReminderSettings      model.ReminderSettings `json:"reminderSettings"`
	AutoDeleteCompleted   bool                   `json:"autoDeleteCompleted"`
	AutoSync              bool                   `json:"autoSync"`
	Theme                 string                 `json:"theme"`
	CustomBackgroundImage string                 `json:"customBackgroundImage"`
	BackgroundFitMode     string                 `json:"backgroundFitMode"`
}

// settingsRequest is a partial update; absent fields are left unchanged.
type settingsRequest struct {
	ReminderSettings      *model.ReminderSettings `json:"reminderSettings"`
	AutoDeleteCompleted   *bool                   `json:"autoDeleteCompleted"`
	AutoSync              *bool                   `json:"autoSync"`
	Theme                 *string                 `json:"theme"`
	CustomBackgroundImage *string                 `json:"customBackgroundImage"`
	BackgroundFitMode     *string                 `json:"backgroundFitMode"`
}

type reminderResponse struct {
	Task            model.Task `json:"task"`
	MinutesUntilDue int        `json:"minutesUntilDue"`
	Title           string     `json:"title"`
	Message         string     `json:"message"`
}

func (s *Server) settings() settingsResponse {
	data := s.app.Store.Snapshot()
	return settingsResponse{
		ReminderSettings:      *data.ReminderSettings,
		AutoDeleteCompleted:   data.AutoDeleteCompleted,
		AutoSync:              data.GoogleCalendarSettings.AutoSync,
		Theme:                 data.Theme,
		CustomBackgroundImage: data.CustomBackgroundImage,
		BackgroundFitMode:     data.BackgroundFitMode,
	}
}

func (s *Server) handleGetSettings(c echo.Context) error {
	return c.JSON(http.StatusOK, s.settings())
}

func (s *Server) handlePutSettings(c echo.Context) error {
	var req settingsRequest
	if err := c.Bind(&req); err != nil {
		return errorJSON(c, http.StatusBadRequest, "invalid request")
	}
	if req.Theme != nil && *req.Theme != "dark" && *req.Theme != "light" {
		return errorJSON(c, http.StatusBadRequest, "theme must be dark or light")
	}

	st := s.app.Store
	if req.ReminderSettings != nil {
		st.SetReminderSettings(*req.ReminderSettings)
	}
	if req.AutoDeleteCompleted != nil {
		st.SetAutoDelete(*req.AutoDeleteCompleted)
	}
	if req.AutoSync != nil {
		st.SetAutoSync(*req.AutoSync)
	}
	if req.Theme != nil {
		st.SetTheme(*req.Theme)
	}
	if req.CustomBackgroundImage != nil || req.BackgroundFitMode != nil {
		current := st.Snapshot()
		image, fit := current.CustomBackgroundImage, ""
		if req.CustomBackgroundImage != nil {
			image = *req.CustomBackgroundImage
		}
		if req.BackgroundFitMode != nil {
			fit = *req.BackgroundFitMode
		}
		st.SetBackground(image, fit)
	}
	return c.JSON(http.StatusOK, s.settings())
}

// handleReminders returns the tasks currently inside the reminder window.
func (s *Server) handleReminders(c echo.Context) error {
	due := reminder.Scan(s.app.Store.Tasks(), s.app.Store.ReminderSettings(), s.app.Store.Now())
	out := make([]reminderResponse, 0, len(due))
	for _, d := range due {
		title, body := reminder.Message(d)
		out = append(out, reminderResponse{
			Task:            d.Task,
			MinutesUntilDue: d.MinutesUntilDue,
			Title:           title,
			Message:         body,
		})
	}
	return c.JSON(http.StatusOK, out)
}

func (s *Server) handleExport(c echo.Context) error {
	name := storage.BackupFileName(time.Now())
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="`+name+`"`)
	c.Response().Header().Set(echo.HeaderContentType, echo.MIMEApplicationJSONCharsetUTF8)
	c.Response().WriteHeader(http.StatusOK)
	return storage.Export(c.Response(), s.app.Store.Snapshot())
}

// handleImport replaces the whole board with the posted backup.
func (s *Server) handleImport(c echo.Context) error {
	data, err := storage.Import(c.Request().Body)
	if err != nil {
		return errorJSON(c, http.StatusBadRequest, err.Error())
	}
	s.app.Store.Load(data)
	return c.JSON(http.StatusOK, map[string]int{
		"tasks":      len(data.Tasks),
		"categories": len(data.Categories),
		"events":     len(data.Events),
	})
}

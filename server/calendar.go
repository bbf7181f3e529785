package server

import (
	"errors"
	"net/http"
	"sort"
	"time"

	"github.com/existflow/focusboard/internal/calendar"
	"github.com/existflow/focusboard/internal/logger"
	"github.com/existflow/focusboard/internal/model"
	"github.com/labstack/echo/v4"
)

type eventResponse struct {
	model.CalendarEvent
	PushError string `json:"pushError,omitempty"`
}

type syncResponse struct {
	Fetched  int `json:"fetched"`
	Added    int `json:"added"`
	Rejected int `json:"rejected"`
}

// handleListEvents returns events on ?date=YYYY-MM-DD, or all of them.
func (s *Server) handleListEvents(c echo.Context) error {
	date := c.QueryParam("date")
	if date == "" {
		events := s.app.Store.Events()
		sort.SliceStable(events, func(i, j int) bool {
			if events[i].Date != events[j].Date {
				return events[i].Date < events[j].Date
			}
			return events[i].StartTime < events[j].StartTime
		})
		return c.JSON(http.StatusOK, events)
	}

	day, err := time.ParseInLocation(model.DateLayout, date, s.app.Config.Location())
	if err != nil {
		return errorJSON(c, http.StatusBadRequest, "date must be YYYY-MM-DD")
	}
	events := s.app.Store.EventsOn(day)
	if events == nil {
		events = []model.CalendarEvent{}
	}
	return c.JSON(http.StatusOK, events)
}

// handleCreateEvent stores the event and pushes it when auto-sync is on. A
// failed push still returns 201 with pushError set.
func (s *Server) handleCreateEvent(c echo.Context) error {
	var req model.CalendarEvent
	if err := c.Bind(&req); err != nil {
		return errorJSON(c, http.StatusBadRequest, "invalid request")
	}
	req.ID = ""

	e, err := s.app.AddEvent(c.Request().Context(), req)
	if e.ID == "" {
		return errorJSON(c, http.StatusBadRequest, err.Error())
	}
	resp := eventResponse{CalendarEvent: e}
	if err != nil {
		resp.PushError = err.Error()
	}
	return c.JSON(http.StatusCreated, resp)
}

func (s *Server) handleDeleteEvent(c echo.Context) error {
	if !s.app.Store.DeleteEvent(c.Param("id")) {
		return errorJSON(c, http.StatusNotFound, "event not found")
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) handleSync(c echo.Context) error {
	res, err := s.app.Sync(c.Request().Context())
	switch {
	case errors.Is(err, calendar.ErrSyncInProgress):
		return errorJSON(c, http.StatusConflict, err.Error())
	case errors.Is(err, calendar.ErrNotConnected):
		return errorJSON(c, http.StatusPreconditionFailed, err.Error())
	case err != nil:
		logger.Error("Sync request failed", logger.Err(err))
		return errorJSON(c, http.StatusBadGateway, err.Error())
	}
	return c.JSON(http.StatusOK, syncResponse{Fetched: res.Fetched, Added: res.Added, Rejected: res.Rejected})
}

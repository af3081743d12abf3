package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"polyglot/internal/service"
)

// sseHeartbeat keeps idle event streams open through proxies.
const sseHeartbeat = 15 * time.Second

type SessionHandler struct {
	sessions service.SessionManager
}

type sessionCreatedResponse struct {
	ID string `json:"id"`
}

type sessionInputRequest struct {
	Text string `json:"text"`
}

func NewSessionHandler(sessions service.SessionManager) *SessionHandler {
	return &SessionHandler{sessions: sessions}
}

func (h *SessionHandler) RegisterRoutes(g *echo.Group) {
	g.POST("/sessions", h.Create)
	g.GET("/sessions/:id", h.Get)
	g.PUT("/sessions/:id/input", h.UpdateInput)
	g.POST("/sessions/:id/flush", h.Flush)
	g.GET("/sessions/:id/events", h.Events)
	g.DELETE("/sessions/:id", h.Delete)
}

func (h *SessionHandler) lookup(c echo.Context) (*service.Session, error) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return nil, service.ErrInvalid
	}
	return h.sessions.Get(id)
}

// Create opens a translation session.
// @Summary Create session
// @Description Open a debounced translation session in the idle state
// @Tags sessions
// @Produce json
// @Success 201 {object} sessionCreatedResponse
// @Router /sessions [post]
func (h *SessionHandler) Create(c echo.Context) error {
	session := h.sessions.Create()
	return c.JSON(http.StatusCreated, sessionCreatedResponse{ID: formatID(session.ID())})
}

// Get returns the current session state.
// @Summary Get session
// @Description Get the request lifecycle state of a session
// @Tags sessions
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} sessionResponse
// @Failure 400 {object} errorResponse
// @Failure 404 {object} errorResponse
// @Router /sessions/{id} [get]
func (h *SessionHandler) Get(c echo.Context) error {
	session, err := h.lookup(c)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, newSessionResponse(session.ID(), session.State()))
}

// UpdateInput reports a change of the input text.
// @Summary Update session input
// @Description Replace the input text. A translation fires once the input has been quiet for the debounce delay; blank text returns the session to idle.
// @Tags sessions
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param request body sessionInputRequest true "Current input"
// @Success 202 {object} sessionResponse
// @Failure 400 {object} errorResponse
// @Failure 404 {object} errorResponse
// @Router /sessions/{id}/input [put]
func (h *SessionHandler) UpdateInput(c echo.Context) error {
	session, err := h.lookup(c)
	if err != nil {
		return writeServiceError(c, err)
	}

	var req sessionInputRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request"})
	}

	session.OnInputChanged(req.Text)
	return c.JSON(http.StatusAccepted, newSessionResponse(session.ID(), session.State()))
}

// Flush fires the scheduled translation without waiting for the delay.
// @Summary Flush session
// @Description Fire the scheduled translation immediately, if any
// @Tags sessions
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} sessionResponse
// @Failure 400 {object} errorResponse
// @Failure 404 {object} errorResponse
// @Router /sessions/{id}/flush [post]
func (h *SessionHandler) Flush(c echo.Context) error {
	session, err := h.lookup(c)
	if err != nil {
		return writeServiceError(c, err)
	}
	session.Flush()
	return c.JSON(http.StatusOK, newSessionResponse(session.ID(), session.State()))
}

// Events streams session state changes.
// @Summary Stream session events
// @Description Server-sent events with one "state" event per lifecycle change, starting with the current state
// @Tags sessions
// @Produce text/event-stream
// @Param id path string true "Session ID"
// @Success 200 {object} sessionResponse
// @Failure 400 {object} errorResponse
// @Failure 404 {object} errorResponse
// @Router /sessions/{id}/events [get]
func (h *SessionHandler) Events(c echo.Context) error {
	session, err := h.lookup(c)
	if err != nil {
		return writeServiceError(c, err)
	}

	updates, unsubscribe := session.Subscribe()
	defer unsubscribe()

	c.Response().Header().Set("Content-Type", "text/event-stream")
	c.Response().Header().Set("Cache-Control", "no-cache")
	c.Response().Header().Set("Connection", "keep-alive")
	c.Response().WriteHeader(http.StatusOK)
	c.Response().Flush()

	ctx := c.Request().Context()
	heartbeat := time.NewTicker(sseHeartbeat)
	defer heartbeat.Stop()

	for {
		select {
		case state, ok := <-updates:
			if !ok {
				fmt.Fprint(c.Response(), "event: closed\ndata: {}\n\n")
				c.Response().Flush()
				return nil
			}
			data, err := json.Marshal(newSessionResponse(session.ID(), state))
			if err != nil {
				return err
			}
			if _, err := fmt.Fprintf(c.Response(), "event: state\ndata: %s\n\n", data); err != nil {
				return nil
			}
			c.Response().Flush()

		case <-heartbeat.C:
			if _, err := fmt.Fprint(c.Response(), ": ping\n\n"); err != nil {
				return nil
			}
			c.Response().Flush()

		case <-ctx.Done():
			return nil
		}
	}
}

// Delete closes a session.
// @Summary Delete session
// @Description Close a session, cancelling any scheduled or in-flight translation
// @Tags sessions
// @Param id path string true "Session ID"
// @Success 204
// @Failure 400 {object} errorResponse
// @Failure 404 {object} errorResponse
// @Router /sessions/{id} [delete]
func (h *SessionHandler) Delete(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return writeServiceError(c, service.ErrInvalid)
	}
	if err := h.sessions.Close(id); err != nil {
		return writeServiceError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

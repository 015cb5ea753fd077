package api

import (
	"alcyxob/gym-app/internal/service"
	"net/http"

	"github.com/gin-gonic/gin"
)

type SessionHandler struct {
	sessionService service.SessionService
}

func NewSessionHandler(sessionService service.SessionService) *SessionHandler {
	return &SessionHandler{sessionService: sessionService}
}

// ListSessions godoc
// @Summary List sessions
// @Tags Sessions
// @Produce json
// @Security BearerAuth
// @Param activityId query string false "Activity ID"
// @Param from query string false "RFC3339 start lower bound"
// @Param to query string false "RFC3339 start upper bound (exclusive)"
// @Param upcoming query bool false "Only sessions that have not started"
// @Param limit query int false "Page size (max 100)"
// @Param cursor query string false "Cursor from the previous page"
// @Success 200 {object} PageResponse[domain.Session]
// @Router /sessions [get]
func (h *SessionHandler) ListSessions(c *gin.Context) {
	var query service.ListSessionsInput
	if err := c.ShouldBindQuery(&query); err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid query parameters: "+err.Error())
		return
	}
	page, ok := pageRequest(c)
	if !ok {
		return
	}
	sessions, err := h.sessionService.ListSessions(c.Request.Context(), query, page)
	if err != nil {
		respondError(c, err, "list sessions")
		return
	}
	c.JSON(http.StatusOK, toPageResponse(sessions))
}

// GetSession godoc
// @Summary Get a session
// @Tags Sessions
// @Produce json
// @Security BearerAuth
// @Param id path string true "Session ID"
// @Success 200 {object} domain.Session
// @Failure 404 {object} gin.H "Not found"
// @Router /sessions/{id} [get]
func (h *SessionHandler) GetSession(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	session, err := h.sessionService.GetSession(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, "load session")
		return
	}
	c.JSON(http.StatusOK, session)
}

// JoinSession godoc
// @Summary Book a spot in a session
// @Description Adds the caller to the session and pays the activity's credit value atomically.
// @Tags Sessions
// @Produce json
// @Security BearerAuth
// @Param id path string true "Session ID"
// @Success 200 {object} service.JoinResult
// @Failure 403 {object} gin.H "Access suspended"
// @Failure 404 {object} gin.H "Session not found"
// @Failure 409 {object} gin.H "Full, already joined, started or insufficient credits"
// @Router /sessions/{id}/join [post]
func (h *SessionHandler) JoinSession(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	result, err := h.sessionService.JoinSession(c.Request.Context(), actor.ID, id)
	if err != nil {
		respondError(c, err, "join session")
		return
	}
	c.JSON(http.StatusOK, result)
}

// CreateSession godoc
// @Summary Schedule a session
// @Tags Admin Sessions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param session body service.SessionInput true "Session"
// @Success 201 {object} domain.Session
// @Failure 404 {object} gin.H "Activity not found"
// @Router /admin/sessions [post]
func (h *SessionHandler) CreateSession(c *gin.Context) {
	var req service.SessionInput
	if !bindJSON(c, &req) {
		return
	}
	session, err := h.sessionService.CreateSession(c.Request.Context(), req)
	if err != nil {
		respondError(c, err, "create session")
		return
	}
	c.JSON(http.StatusCreated, session)
}

// UpdateSession godoc
// @Summary Update a session
// @Tags Admin Sessions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Session ID"
// @Param session body service.SessionInput true "Session"
// @Success 200 {object} domain.Session
// @Failure 409 {object} gin.H "Capacity below booked count"
// @Router /admin/sessions/{id} [put]
func (h *SessionHandler) UpdateSession(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req service.SessionInput
	if !bindJSON(c, &req) {
		return
	}
	session, err := h.sessionService.UpdateSession(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err, "update session")
		return
	}
	c.JSON(http.StatusOK, session)
}

// DeleteSession godoc
// @Summary Delete a session
// @Tags Admin Sessions
// @Security BearerAuth
// @Param id path string true "Session ID"
// @Success 204 "Deleted"
// @Router /admin/sessions/{id} [delete]
func (h *SessionHandler) DeleteSession(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.sessionService.DeleteSession(c.Request.Context(), id); err != nil {
		respondError(c, err, "delete session")
		return
	}
	c.Status(http.StatusNoContent)
}

// ListParticipants godoc
// @Summary List the members booked on a session
// @Tags Admin Sessions
// @Produce json
// @Security BearerAuth
// @Param id path string true "Session ID"
// @Success 200 {array} AdminUserResponse
// @Router /admin/sessions/{id}/participants [get]
func (h *SessionHandler) ListParticipants(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	users, err := h.sessionService.ListParticipants(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, "list participants")
		return
	}
	c.JSON(http.StatusOK, MapUsersToAdminResponse(users))
}

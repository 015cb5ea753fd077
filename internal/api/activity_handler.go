package api

import (
	"alcyxob/gym-app/internal/domain"
	"alcyxob/gym-app/internal/service"
	"net/http"

	"github.com/gin-gonic/gin"
)

type ActivityHandler struct {
	activityService service.ActivityService
}

func NewActivityHandler(activityService service.ActivityService) *ActivityHandler {
	return &ActivityHandler{activityService: activityService}
}

// ListActivities godoc
// @Summary List activities
// @Tags Activities
// @Produce json
// @Security BearerAuth
// @Param type query string false "Activity type"
// @Param limit query int false "Page size (max 100)"
// @Param cursor query string false "Cursor from the previous page"
// @Success 200 {object} PageResponse[domain.Activity]
// @Router /activities [get]
func (h *ActivityHandler) ListActivities(c *gin.Context) {
	page, ok := pageRequest(c)
	if !ok {
		return
	}
	activities, err := h.activityService.ListActivities(c.Request.Context(), domain.ActivityType(c.Query("type")), page)
	if err != nil {
		respondError(c, err, "list activities")
		return
	}
	c.JSON(http.StatusOK, toPageResponse(activities))
}

// GetActivity godoc
// @Summary Get an activity
// @Tags Activities
// @Produce json
// @Security BearerAuth
// @Param id path string true "Activity ID"
// @Success 200 {object} domain.Activity
// @Failure 404 {object} gin.H "Not found"
// @Router /activities/{id} [get]
func (h *ActivityHandler) GetActivity(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	activity, err := h.activityService.GetActivity(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, "load activity")
		return
	}
	c.JSON(http.StatusOK, activity)
}

// CreateActivity godoc
// @Summary Create an activity
// @Tags Admin Activities
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param activity body service.ActivityInput true "Activity"
// @Success 201 {object} domain.Activity
// @Failure 400 {object} gin.H "Validation error"
// @Router /admin/activities [post]
func (h *ActivityHandler) CreateActivity(c *gin.Context) {
	var req service.ActivityInput
	if !bindJSON(c, &req) {
		return
	}
	activity, err := h.activityService.CreateActivity(c.Request.Context(), req)
	if err != nil {
		respondError(c, err, "create activity")
		return
	}
	c.JSON(http.StatusCreated, activity)
}

// UpdateActivity godoc
// @Summary Update an activity
// @Description Renaming also updates the activity name shown on its sessions.
// @Tags Admin Activities
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Activity ID"
// @Param activity body service.ActivityInput true "Activity"
// @Success 200 {object} domain.Activity
// @Router /admin/activities/{id} [put]
func (h *ActivityHandler) UpdateActivity(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req service.ActivityInput
	if !bindJSON(c, &req) {
		return
	}
	activity, err := h.activityService.UpdateActivity(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err, "update activity")
		return
	}
	c.JSON(http.StatusOK, activity)
}

// DeleteActivity godoc
// @Summary Delete an activity
// @Tags Admin Activities
// @Security BearerAuth
// @Param id path string true "Activity ID"
// @Success 204 "Deleted"
// @Router /admin/activities/{id} [delete]
func (h *ActivityHandler) DeleteActivity(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.activityService.DeleteActivity(c.Request.Context(), id); err != nil {
		respondError(c, err, "delete activity")
		return
	}
	c.Status(http.StatusNoContent)
}

package api

import (
	"alcyxob/gym-app/internal/service"
	"net/http"

	"github.com/gin-gonic/gin"
)

type CheckInHandler struct {
	checkInService service.CheckInService
}

func NewCheckInHandler(checkInService service.CheckInService) *CheckInHandler {
	return &CheckInHandler{checkInService: checkInService}
}

// CheckInRequest carries the text scanned from the gym's QR code.
type CheckInRequest struct {
	Code string `json:"code" binding:"required"`
}

// CheckIn godoc
// @Summary Check in at the gym
// @Description Validates the scanned QR code and charges one credit, at most once per day.
// @Tags Me
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param checkin body CheckInRequest true "Scanned code"
// @Success 201 {object} domain.CheckIn
// @Failure 400 {object} gin.H "Invalid code"
// @Failure 403 {object} gin.H "Access suspended"
// @Failure 409 {object} gin.H "Already checked in today or insufficient credits"
// @Router /me/checkins [post]
func (h *CheckInHandler) CheckIn(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	var req CheckInRequest
	if !bindJSON(c, &req) {
		return
	}
	checkIn, err := h.checkInService.CheckIn(c.Request.Context(), actor.ID, req.Code)
	if err != nil {
		respondError(c, err, "check in")
		return
	}
	c.JSON(http.StatusCreated, checkIn)
}

// History godoc
// @Summary List the caller's check-ins, newest first
// @Tags Me
// @Produce json
// @Security BearerAuth
// @Param limit query int false "Page size (max 100)"
// @Param cursor query string false "Cursor from the previous page"
// @Success 200 {object} PageResponse[domain.CheckIn]
// @Router /me/checkins [get]
func (h *CheckInHandler) History(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	page, ok := pageRequest(c)
	if !ok {
		return
	}
	history, err := h.checkInService.History(c.Request.Context(), actor.ID, page)
	if err != nil {
		respondError(c, err, "load check-in history")
		return
	}
	c.JSON(http.StatusOK, toPageResponse(history))
}

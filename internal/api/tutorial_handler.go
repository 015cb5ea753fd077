package api

import (
	"alcyxob/gym-app/internal/domain"
	"alcyxob/gym-app/internal/service"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

type TutorialHandler struct {
	tutorialService service.TutorialService
}

func NewTutorialHandler(tutorialService service.TutorialService) *TutorialHandler {
	return &TutorialHandler{tutorialService: tutorialService}
}

// versionQuery reads the ?version= the editor loaded, required on deletes of sub-documents.
func versionQuery(c *gin.Context) (int64, bool) {
	version, err := strconv.ParseInt(c.Query("version"), 10, 64)
	if err != nil || version < 1 {
		abortWithError(c, http.StatusBadRequest, "Query parameter 'version' must be a positive integer")
		return 0, false
	}
	return version, true
}

// ListTutorials godoc
// @Summary List tutorials
// @Tags Tutorials
// @Produce json
// @Security BearerAuth
// @Param section query string false "musculation or diete"
// @Param limit query int false "Page size (max 100)"
// @Param cursor query string false "Cursor from the previous page"
// @Success 200 {object} PageResponse[domain.Tutorial]
// @Router /tutorials [get]
func (h *TutorialHandler) ListTutorials(c *gin.Context) {
	page, ok := pageRequest(c)
	if !ok {
		return
	}
	tutorials, err := h.tutorialService.ListTutorials(c.Request.Context(), domain.Section(c.Query("section")), page)
	if err != nil {
		respondError(c, err, "list tutorials")
		return
	}
	c.JSON(http.StatusOK, toPageResponse(tutorials))
}

// GetTutorial godoc
// @Summary Get a tutorial with its exercises or diet plans
// @Tags Tutorials
// @Produce json
// @Security BearerAuth
// @Param id path string true "Tutorial ID"
// @Success 200 {object} domain.Tutorial
// @Router /tutorials/{id} [get]
func (h *TutorialHandler) GetTutorial(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	tutorial, err := h.tutorialService.GetTutorial(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, "load tutorial")
		return
	}
	c.JSON(http.StatusOK, tutorial)
}

// CreateTutorial godoc
// @Summary Create a tutorial
// @Tags Admin Tutorials
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param tutorial body service.TutorialInput true "Tutorial"
// @Success 201 {object} domain.Tutorial
// @Router /admin/tutorials [post]
func (h *TutorialHandler) CreateTutorial(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	var req service.TutorialInput
	if !bindJSON(c, &req) {
		return
	}
	tutorial, err := h.tutorialService.CreateTutorial(c.Request.Context(), actor, req)
	if err != nil {
		respondError(c, err, "create tutorial")
		return
	}
	c.JSON(http.StatusCreated, tutorial)
}

// UpdateTutorial godoc
// @Summary Update a tutorial
// @Description The body carries the version that was loaded; a stale version is rejected with 409.
// @Tags Admin Tutorials
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Tutorial ID"
// @Param tutorial body service.TutorialUpdateInput true "Tutorial"
// @Success 200 {object} domain.Tutorial
// @Failure 409 {object} gin.H "Stale version or section has content"
// @Router /admin/tutorials/{id} [put]
func (h *TutorialHandler) UpdateTutorial(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req service.TutorialUpdateInput
	if !bindJSON(c, &req) {
		return
	}
	tutorial, err := h.tutorialService.UpdateTutorial(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err, "update tutorial")
		return
	}
	c.JSON(http.StatusOK, tutorial)
}

// DeleteTutorial godoc
// @Summary Delete a tutorial
// @Tags Admin Tutorials
// @Security BearerAuth
// @Param id path string true "Tutorial ID"
// @Success 204 "Deleted"
// @Router /admin/tutorials/{id} [delete]
func (h *TutorialHandler) DeleteTutorial(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.tutorialService.DeleteTutorial(c.Request.Context(), id); err != nil {
		respondError(c, err, "delete tutorial")
		return
	}
	c.Status(http.StatusNoContent)
}

// --- Exercises ---

// AddExercise godoc
// @Summary Add an exercise to a musculation tutorial
// @Tags Admin Tutorials
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Tutorial ID"
// @Param exercise body service.ExerciseInput true "Exercise"
// @Success 201 {object} domain.Tutorial
// @Router /admin/tutorials/{id}/exercises [post]
func (h *TutorialHandler) AddExercise(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req service.ExerciseInput
	if !bindJSON(c, &req) {
		return
	}
	tutorial, err := h.tutorialService.AddExercise(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err, "add exercise")
		return
	}
	c.JSON(http.StatusCreated, tutorial)
}

// UpdateExercise godoc
// @Summary Update an exercise
// @Tags Admin Tutorials
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Tutorial ID"
// @Param exerciseId path string true "Exercise ID"
// @Param exercise body service.ExerciseInput true "Exercise"
// @Success 200 {object} domain.Tutorial
// @Router /admin/tutorials/{id}/exercises/{exerciseId} [put]
func (h *TutorialHandler) UpdateExercise(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	exerciseID, ok := pathID(c, "exerciseId")
	if !ok {
		return
	}
	var req service.ExerciseInput
	if !bindJSON(c, &req) {
		return
	}
	tutorial, err := h.tutorialService.UpdateExercise(c.Request.Context(), id, exerciseID, req)
	if err != nil {
		respondError(c, err, "update exercise")
		return
	}
	c.JSON(http.StatusOK, tutorial)
}

// RemoveExercise godoc
// @Summary Remove an exercise
// @Tags Admin Tutorials
// @Produce json
// @Security BearerAuth
// @Param id path string true "Tutorial ID"
// @Param exerciseId path string true "Exercise ID"
// @Param version query int true "Tutorial version"
// @Success 200 {object} domain.Tutorial
// @Router /admin/tutorials/{id}/exercises/{exerciseId} [delete]
func (h *TutorialHandler) RemoveExercise(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	exerciseID, ok := pathID(c, "exerciseId")
	if !ok {
		return
	}
	version, ok := versionQuery(c)
	if !ok {
		return
	}
	tutorial, err := h.tutorialService.RemoveExercise(c.Request.Context(), id, exerciseID, version)
	if err != nil {
		respondError(c, err, "remove exercise")
		return
	}
	c.JSON(http.StatusOK, tutorial)
}

// --- Diet plans ---

// AddDietPlan godoc
// @Summary Add a diet plan to a diete tutorial
// @Tags Admin Tutorials
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Tutorial ID"
// @Param plan body service.DietPlanInput true "Diet plan"
// @Success 201 {object} domain.Tutorial
// @Router /admin/tutorials/{id}/diet-plans [post]
func (h *TutorialHandler) AddDietPlan(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req service.DietPlanInput
	if !bindJSON(c, &req) {
		return
	}
	tutorial, err := h.tutorialService.AddDietPlan(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err, "add diet plan")
		return
	}
	c.JSON(http.StatusCreated, tutorial)
}

// UpdateDietPlan godoc
// @Summary Update a diet plan
// @Tags Admin Tutorials
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Tutorial ID"
// @Param planId path string true "Diet plan ID"
// @Param plan body service.DietPlanInput true "Diet plan"
// @Success 200 {object} domain.Tutorial
// @Router /admin/tutorials/{id}/diet-plans/{planId} [put]
func (h *TutorialHandler) UpdateDietPlan(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	planID, ok := pathID(c, "planId")
	if !ok {
		return
	}
	var req service.DietPlanInput
	if !bindJSON(c, &req) {
		return
	}
	tutorial, err := h.tutorialService.UpdateDietPlan(c.Request.Context(), id, planID, req)
	if err != nil {
		respondError(c, err, "update diet plan")
		return
	}
	c.JSON(http.StatusOK, tutorial)
}

// RemoveDietPlan godoc
// @Summary Remove a diet plan
// @Tags Admin Tutorials
// @Produce json
// @Security BearerAuth
// @Param id path string true "Tutorial ID"
// @Param planId path string true "Diet plan ID"
// @Param version query int true "Tutorial version"
// @Success 200 {object} domain.Tutorial
// @Router /admin/tutorials/{id}/diet-plans/{planId} [delete]
func (h *TutorialHandler) RemoveDietPlan(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	planID, ok := pathID(c, "planId")
	if !ok {
		return
	}
	version, ok := versionQuery(c)
	if !ok {
		return
	}
	tutorial, err := h.tutorialService.RemoveDietPlan(c.Request.Context(), id, planID, version)
	if err != nil {
		respondError(c, err, "remove diet plan")
		return
	}
	c.JSON(http.StatusOK, tutorial)
}

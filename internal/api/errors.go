package api

import (
	"alcyxob/gym-app/internal/service"
	"alcyxob/gym-app/internal/validation"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

var (
	badRequestErrors = []error{
		service.ErrInvalidID,
		service.ErrInvalidCursor,
		service.ErrInvalidCheckInCode,
	}
	unauthorizedErrors = []error{
		service.ErrAuthenticationFailed,
		service.ErrInvalidToken,
		service.ErrTokenRevoked,
	}
	forbiddenErrors = []error{
		service.ErrPermissionDenied,
		service.ErrAccessSuspended,
	}
	notFoundErrors = []error{
		service.ErrUserNotFound,
		service.ErrActivityNotFound,
		service.ErrSessionNotFound,
		service.ErrTutorialNotFound,
		service.ErrExerciseNotFound,
		service.ErrDietPlanNotFound,
		service.ErrPostNotFound,
		service.ErrCommentNotFound,
		service.ErrUploadNotFound,
	}
	conflictErrors = []error{
		service.ErrUserAlreadyExists,
		service.ErrCannotDeleteSelf,
		service.ErrInsufficientCredits,
		service.ErrAccessStatusBusy,
		service.ErrSessionFull,
		service.ErrAlreadyJoined,
		service.ErrSessionStarted,
		service.ErrCapacityBelowBooked,
		service.ErrAlreadyCheckedIn,
		service.ErrTutorialConflict,
		service.ErrWrongSection,
		service.ErrSectionHasContent,
		service.ErrObjectMissing,
	}
)

func isAny(err error, targets []error) bool {
	for _, target := range targets {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// respondError maps a service error to its HTTP status. Unknown errors are
// logged and answered with a generic "Failed to <action>" message.
func respondError(c *gin.Context, err error, action string) {
	var validationErr *validation.Error
	switch {
	case errors.As(err, &validationErr):
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error":  "Validation failed",
			"fields": validationErr.Fields,
		})
	case isAny(err, badRequestErrors):
		abortWithError(c, http.StatusBadRequest, err.Error())
	case isAny(err, unauthorizedErrors):
		abortWithError(c, http.StatusUnauthorized, err.Error())
	case isAny(err, forbiddenErrors):
		abortWithError(c, http.StatusForbidden, err.Error())
	case isAny(err, notFoundErrors):
		abortWithError(c, http.StatusNotFound, err.Error())
	case isAny(err, conflictErrors):
		abortWithError(c, http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrFileTooLarge):
		abortWithError(c, http.StatusRequestEntityTooLarge, err.Error())
	default:
		log.Error().Err(err).
			Str("method", c.Request.Method).
			Str("path", c.FullPath()).
			Str("request_id", c.GetString(ContextRequestIDKey)).
			Msg("Request failed")
		abortWithError(c, http.StatusInternalServerError, "Failed to "+action)
	}
}

// bindJSON decodes the body; a malformed body is a 400.
func bindJSON(c *gin.Context, obj any) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return false
	}
	return true
}

package api

import (
	"alcyxob/gym-app/internal/service"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// multipartOverhead is allowed on top of the file size for form boundaries and fields.
const multipartOverhead = 1 << 20

type MediaHandler struct {
	mediaService   service.MediaService
	maxUploadBytes int64
}

func NewMediaHandler(mediaService service.MediaService, maxUploadBytes int64) *MediaHandler {
	return &MediaHandler{mediaService: mediaService, maxUploadBytes: maxUploadBytes}
}

// UploadFile godoc
// @Summary Upload a file through the API
// @Description Multipart form with a "file" part and a "folder" field, e.g. tutorials/images.
// @Tags Admin Media
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param file formData file true "File"
// @Param folder formData string true "Destination folder"
// @Success 201 {object} domain.Upload
// @Failure 413 {object} gin.H "File too large"
// @Router /admin/media [post]
func (h *MediaHandler) UploadFile(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes+multipartOverhead)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondError(c, service.ErrFileTooLarge, "upload file")
			return
		}
		abortWithError(c, http.StatusBadRequest, "Multipart field 'file' is required")
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		log.Error().Err(err).Str("file", fileHeader.Filename).Msg("Failed to open multipart file")
		abortWithError(c, http.StatusBadRequest, "Could not read uploaded file")
		return
	}
	defer file.Close()

	upload, err := h.mediaService.Upload(c.Request.Context(), actor, service.UploadInput{
		Folder:      c.PostForm("folder"),
		FileName:    fileHeader.Filename,
		ContentType: fileHeader.Header.Get("Content-Type"),
		Size:        fileHeader.Size,
		Body:        file,
	})
	if err != nil {
		respondError(c, err, "upload file")
		return
	}
	c.JSON(http.StatusCreated, upload)
}

// PresignUpload godoc
// @Summary Get a presigned URL for a direct upload
// @Description The client PUTs the file to uploadUrl, then calls confirm with the returned objectKey.
// @Tags Admin Media
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body service.PresignInput true "File description"
// @Success 200 {object} service.PresignResult
// @Router /admin/media/presign [post]
func (h *MediaHandler) PresignUpload(c *gin.Context) {
	var req service.PresignInput
	if !bindJSON(c, &req) {
		return
	}
	result, err := h.mediaService.PresignUpload(c.Request.Context(), req)
	if err != nil {
		respondError(c, err, "prepare upload")
		return
	}
	c.JSON(http.StatusOK, result)
}

// ConfirmUpload godoc
// @Summary Register a file uploaded with a presigned URL
// @Tags Admin Media
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body service.ConfirmInput true "Object key"
// @Success 201 {object} domain.Upload
// @Failure 409 {object} gin.H "Nothing was uploaded under the key"
// @Router /admin/media/confirm [post]
func (h *MediaHandler) ConfirmUpload(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	var req service.ConfirmInput
	if !bindJSON(c, &req) {
		return
	}
	upload, err := h.mediaService.ConfirmUpload(c.Request.Context(), actor, req)
	if err != nil {
		respondError(c, err, "confirm upload")
		return
	}
	c.JSON(http.StatusCreated, upload)
}

// ListUploads godoc
// @Summary List uploads
// @Tags Admin Media
// @Produce json
// @Security BearerAuth
// @Param folder query string false "Folder"
// @Param limit query int false "Page size (max 100)"
// @Param cursor query string false "Cursor from the previous page"
// @Success 200 {object} PageResponse[domain.Upload]
// @Router /admin/media [get]
func (h *MediaHandler) ListUploads(c *gin.Context) {
	page, ok := pageRequest(c)
	if !ok {
		return
	}
	uploads, err := h.mediaService.ListUploads(c.Request.Context(), c.Query("folder"), page)
	if err != nil {
		respondError(c, err, "list uploads")
		return
	}
	c.JSON(http.StatusOK, toPageResponse(uploads))
}

// GetUpload godoc
// @Summary Get an upload
// @Tags Admin Media
// @Produce json
// @Security BearerAuth
// @Param id path string true "Upload ID"
// @Success 200 {object} domain.Upload
// @Router /admin/media/{id} [get]
func (h *MediaHandler) GetUpload(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	upload, err := h.mediaService.GetUpload(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, "load upload")
		return
	}
	c.JSON(http.StatusOK, upload)
}

// DeleteUpload godoc
// @Summary Delete an upload and its stored object
// @Tags Admin Media
// @Security BearerAuth
// @Param id path string true "Upload ID"
// @Success 204 "Deleted"
// @Router /admin/media/{id} [delete]
func (h *MediaHandler) DeleteUpload(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.mediaService.DeleteUpload(c.Request.Context(), id); err != nil {
		respondError(c, err, "delete upload")
		return
	}
	c.Status(http.StatusNoContent)
}

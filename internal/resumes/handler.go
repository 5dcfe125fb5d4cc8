package resumes

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"resume-ingest/internal/shared/server/middleware"
	"resume-ingest/internal/shared/server/respond"
)

const (
	maxUploadSize     = 10 << 20 // 10MB
	uploadTooLargeMsg = "file exceeds the 10MB upload limit"
)

func isBodyTooLarge(err error) bool {
	var maxBytesErr *http.MaxBytesError
	if errors.As(err, &maxBytesErr) {
		return true
	}
	// multipart form parsing does not always wrap the limit error.
	return err != nil && strings.Contains(err.Error(), "request body too large")
}

// Handler wires HTTP handlers to the service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches resume routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/resumes", h.upload)
	rg.GET("/resumes/current", h.current)
	rg.DELETE("/resumes", h.remove)
}

func (h *Handler) upload(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxUploadSize)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		if isBodyTooLarge(err) {
			respond.Error(c, http.StatusRequestEntityTooLarge, ErrorCodeValidation, uploadTooLargeMsg, nil)
			return
		}
		respond.Error(c, http.StatusBadRequest, ErrorCodeValidation, "file is required", nil)
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		respond.Error(c, http.StatusBadRequest, ErrorCodeValidation, "unable to read file", nil)
		return
	}
	defer file.Close()

	document, err := io.ReadAll(file)
	if err != nil {
		if isBodyTooLarge(err) {
			respond.Error(c, http.StatusRequestEntityTooLarge, ErrorCodeValidation, uploadTooLargeMsg, nil)
			return
		}
		respond.Error(c, http.StatusBadRequest, ErrorCodeValidation, "unable to read file", nil)
		return
	}

	res, err := h.Svc.Upload(c.Request.Context(), userID, fileHeader.Filename, document)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respond.JSON(c, http.StatusCreated, toResponse(res))
}

func (h *Handler) current(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	res, url, err := h.Svc.Current(c.Request.Context(), userID)
	if errors.Is(err, ErrNotFound) {
		respond.OK(c, currentResponse{})
		return
	}
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respond.OK(c, toCurrentResponse(res, url))
}

func (h *Handler) remove(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	if err := h.Svc.Delete(c.Request.Context(), userID); err != nil {
		respondServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func respondServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrInvalidInput):
		respond.Error(c, http.StatusBadRequest, ErrorCodeValidation, err.Error(), nil)
	case errors.Is(err, ErrExtraction):
		respond.Error(c, http.StatusUnprocessableEntity, ErrorCodeExtraction, err.Error(), nil)
	case errors.Is(err, ErrUpstream):
		respond.Error(c, http.StatusBadGateway, ErrorCodeUpstream, "resume parsing is temporarily unavailable", nil)
	case errors.Is(err, ErrBlob):
		respond.Error(c, http.StatusInternalServerError, ErrorCodeBlob, "file storage failed", nil)
	case errors.Is(err, ErrNotFound):
		respond.Error(c, http.StatusNotFound, ErrorCodeNotFound, "resume not found", nil)
	default:
		respond.Error(c, http.StatusInternalServerError, ErrorCodePersistence, "failed to process resume", nil)
	}
}

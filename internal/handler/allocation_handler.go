package handler

import (
	"context"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/ra-lab-allocator/internal/dto"
	"github.com/noah-isme/ra-lab-allocator/internal/models"
	appErrors "github.com/noah-isme/ra-lab-allocator/pkg/errors"
	"github.com/noah-isme/ra-lab-allocator/pkg/response"
)

type allocationService interface {
	Allocate(ctx context.Context, req dto.AllocateRequest) (*dto.AllocationResponse, error)
	AllocateUpload(ctx context.Context, courses, assistants io.Reader, seed *uint64) (*dto.AllocationResponse, error)
	SlotMap() models.SlotMapping
}

// AllocationHandler exposes one-shot allocation endpoints.
type AllocationHandler struct {
	service   allocationService
	maxUpload int64
}

// NewAllocationHandler constructs an allocation handler. maxUpload caps the
// multipart body in bytes; zero disables the cap.
func NewAllocationHandler(svc allocationService, maxUpload int64) *AllocationHandler {
	return &AllocationHandler{service: svc, maxUpload: maxUpload}
}

// Allocate godoc
// @Summary Allocate lab sessions from a JSON payload
// @Tags Allocations
// @Accept json
// @Produce json
// @Param payload body dto.AllocateRequest true "Courses and assistants"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 413 {object} response.Envelope
// @Router /allocations [post]
func (h *AllocationHandler) Allocate(c *gin.Context) {
	var req dto.AllocateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	result, err := h.service.Allocate(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Upload godoc
// @Summary Allocate lab sessions from uploaded CSV files
// @Tags Allocations
// @Accept multipart/form-data
// @Produce json
// @Param courses formData file true "Course catalogue CSV"
// @Param ras formData file true "Assistant roster CSV"
// @Param seed formData int false "Run seed"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 413 {object} response.Envelope
// @Router /allocations/upload [post]
func (h *AllocationHandler) Upload(c *gin.Context) {
	if h.maxUpload > 0 {
		if c.Request.ContentLength > h.maxUpload {
			response.Error(c, appErrors.Clone(appErrors.ErrPayloadTooLarge, "upload exceeds size limit"))
			return
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUpload)
	}

	courses, err := c.FormFile("courses")
	if err != nil {
		response.Error(c, uploadError(err))
		return
	}
	ras, err := c.FormFile("ras")
	if err != nil {
		response.Error(c, uploadError(err))
		return
	}

	var seed *uint64
	if raw := strings.TrimSpace(c.PostForm("seed")); raw != "" {
		parsed, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "seed must be a non-negative integer"))
			return
		}
		seed = &parsed
	}

	courseFile, err := openPart(courses)
	if err != nil {
		response.Error(c, err)
		return
	}
	defer courseFile.Close()
	rasFile, err := openPart(ras)
	if err != nil {
		response.Error(c, err)
		return
	}
	defer rasFile.Close()

	result, err := h.service.AllocateUpload(c.Request.Context(), courseFile, rasFile, seed)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// SlotMap godoc
// @Summary Lab to theory slot mapping in effect
// @Tags Allocations
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /slot-map [get]
func (h *AllocationHandler) SlotMap(c *gin.Context) {
	response.JSON(c, http.StatusOK, h.service.SlotMap(), nil)
}

func uploadError(err error) error {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return appErrors.Clone(appErrors.ErrPayloadTooLarge, "upload exceeds size limit")
	}
	return appErrors.Clone(appErrors.ErrValidation, "missing files")
}

func openPart(header *multipart.FileHeader) (multipart.File, error) {
	file, err := header.Open()
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "unreadable upload")
	}
	return file, nil
}

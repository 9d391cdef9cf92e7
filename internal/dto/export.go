package dto

import "github.com/noah-isme/ra-lab-allocator/internal/models"

// ExportRequest captures POST /drafts/:id/exports payload.
type ExportRequest struct {
	Format  models.ExportFormat  `json:"format" validate:"required,oneof=csv pdf"`
	Dataset models.ExportDataset `json:"dataset" validate:"omitempty,oneof=allocations unallocated stats"`
}

// ExportJobResponse is returned after enqueueing an export.
type ExportJobResponse struct {
	ID       string              `json:"id"`
	DraftID  string              `json:"draftId"`
	Status   models.ExportStatus `json:"status"`
	Progress int                 `json:"progress"`
}

// ExportStatusResponse exposes job progress metadata.
type ExportStatusResponse struct {
	ID        string               `json:"id"`
	DraftID   string               `json:"draftId"`
	Format    models.ExportFormat  `json:"format"`
	Dataset   models.ExportDataset `json:"dataset"`
	Status    models.ExportStatus  `json:"status"`
	Progress  int                  `json:"progress"`
	ResultURL *string              `json:"resultUrl,omitempty"`
	Error     *string              `json:"error,omitempty"`
}

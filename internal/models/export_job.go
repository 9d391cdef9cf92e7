package models

import "time"

// ExportFormat enumerates supported export formats.
type ExportFormat string

const (
	ExportFormatCSV ExportFormat = "csv"
	ExportFormatPDF ExportFormat = "pdf"
)

// ExportDataset selects which part of a draft is rendered.
type ExportDataset string

const (
	ExportDatasetAllocations ExportDataset = "allocations"
	ExportDatasetUnallocated ExportDataset = "unallocated"
	ExportDatasetStats       ExportDataset = "stats"
)

// ExportStatus captures background job lifecycle states.
type ExportStatus string

const (
	ExportStatusQueued     ExportStatus = "QUEUED"
	ExportStatusProcessing ExportStatus = "PROCESSING"
	ExportStatusFinished   ExportStatus = "FINISHED"
	ExportStatusFailed     ExportStatus = "FAILED"
)

// ExportJob is a persisted request to render a draft to a downloadable file.
type ExportJob struct {
	ID           string        `db:"id" json:"id"`
	DraftID      string        `db:"draft_id" json:"draftId"`
	Format       ExportFormat  `db:"format" json:"format"`
	Dataset      ExportDataset `db:"dataset" json:"dataset"`
	Status       ExportStatus  `db:"status" json:"status"`
	Progress     int           `db:"progress" json:"progress"`
	ResultURL    *string       `db:"result_url" json:"resultUrl,omitempty"`
	CreatedBy    *string       `db:"created_by" json:"createdBy,omitempty"`
	CreatedAt    time.Time     `db:"created_at" json:"createdAt"`
	FinishedAt   *time.Time    `db:"finished_at" json:"finishedAt,omitempty"`
	ErrorMessage *string       `db:"error_message" json:"errorMessage,omitempty"`
}

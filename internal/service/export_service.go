package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/ra-lab-allocator/internal/allocation"
	"github.com/noah-isme/ra-lab-allocator/internal/models"
	"github.com/noah-isme/ra-lab-allocator/pkg/export"
	"github.com/noah-isme/ra-lab-allocator/pkg/storage"
)

type draftReader interface {
	FindByID(ctx context.Context, id string) (*models.Draft, error)
}

type fileStorage interface {
	Save(filename string, data []byte) (string, error)
	Open(filename string) (*os.File, error)
	CleanupOlderThan(ttl time.Duration) ([]string, error)
}

type csvRenderer interface {
	Render(records interface{}) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string, subtitle ...string) ([]byte, error)
}

// ExportConfig tunes export behaviour.
type ExportConfig struct {
	APIPrefix string
	ResultTTL time.Duration
	Band      allocation.Band
}

// ExportResult captures successful generation metadata.
type ExportResult struct {
	RelativePath string
	Token        string
	URL          string
	Format       models.ExportFormat
	ExpiresAt    time.Time
}

// ExportService renders drafts and persists the files.
type ExportService struct {
	drafts  draftReader
	storage fileStorage
	csv     csvRenderer
	pdf     pdfRenderer
	signer  *storage.SignedURLSigner
	logger  *zap.Logger
	cfg     ExportConfig
	now     func() time.Time
}

// NewExportService constructs an ExportService. Nil renderers fall back to
// the pkg/export implementations.
func NewExportService(drafts draftReader, store fileStorage, signer *storage.SignedURLSigner, cfg ExportConfig, logger *zap.Logger, csv csvRenderer, pdf pdfRenderer) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ResultTTL <= 0 {
		cfg.ResultTTL = 24 * time.Hour
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	return &ExportService{
		drafts:  drafts,
		storage: store,
		csv:     csv,
		pdf:     pdf,
		signer:  signer,
		logger:  logger,
		cfg:     cfg,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Generate renders the job's draft and stores the file behind a signed URL.
func (s *ExportService) Generate(ctx context.Context, job *models.ExportJob) (*ExportResult, error) {
	if job == nil {
		return nil, fmt.Errorf("job nil")
	}
	draft, err := s.drafts.FindByID(ctx, job.DraftID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("draft %s no longer exists", job.DraftID)
		}
		return nil, fmt.Errorf("load draft: %w", err)
	}

	payload, err := s.render(draft, job)
	if err != nil {
		return nil, err
	}

	relPath, err := s.storage.Save(s.buildFilename(draft, job), payload)
	if err != nil {
		return nil, fmt.Errorf("store export: %w", err)
	}
	token, expiresAt, err := s.signer.Generate(job.ID, relPath)
	if err != nil {
		return nil, fmt.Errorf("sign export: %w", err)
	}
	prefix := strings.TrimRight(s.cfg.APIPrefix, "/")
	if prefix == "" {
		prefix = "/api/v1"
	}

	s.logger.Debug("export generated",
		zap.String("job_id", job.ID),
		zap.String("draft_id", draft.ID),
		zap.String("path", relPath),
		zap.Int("bytes", len(payload)),
	)
	return &ExportResult{
		RelativePath: relPath,
		Token:        token,
		URL:          fmt.Sprintf("%s/exports/download/%s", prefix, token),
		Format:       job.Format,
		ExpiresAt:    expiresAt,
	}, nil
}

// ParseToken validates download token metadata.
func (s *ExportService) ParseToken(token string, allowExpired bool) (jobID, relPath string, expiresAt time.Time, err error) {
	return s.signer.Parse(token, allowExpired)
}

// Open returns a handle to the stored file.
func (s *ExportService) Open(relPath string) (*os.File, error) {
	return s.storage.Open(relPath)
}

// Cleanup removes files older than ttl, or the configured result TTL when
// ttl <= 0.
func (s *ExportService) Cleanup(ttl time.Duration) ([]string, error) {
	if ttl <= 0 {
		ttl = s.cfg.ResultTTL
	}
	return s.storage.CleanupOlderThan(ttl)
}

func (s *ExportService) render(draft *models.Draft, job *models.ExportJob) ([]byte, error) {
	title := fmt.Sprintf("Lab Allocation: %s", draft.Name)
	generated := "Generated " + s.now().Format("2006-01-02 15:04 MST")

	switch job.Dataset {
	case models.ExportDatasetAllocations, "":
		return s.renderRows(job.Format, draft.Allocations, title, generated)
	case models.ExportDatasetUnallocated:
		return s.renderRows(job.Format, draft.Unallocated, title+" (unallocated labs)", generated)
	case models.ExportDatasetStats:
		stats := SummarizeDraft(draft, s.cfg.Band)
		records := statsRecords(stats)
		switch job.Format {
		case models.ExportFormatCSV:
			return s.csv.Render(records)
		case models.ExportFormatPDF:
			summary := fmt.Sprintf("%d assistants, %d allocations, %d unallocated, %d discrepancies",
				stats.TotalRAs, stats.TotalAllocations, stats.TotalUnallocated, stats.TotalDiscrepancies)
			return s.pdf.Render(statsDataset(records), title+" (statistics)", generated, summary)
		}
		return nil, fmt.Errorf("unsupported format %s", job.Format)
	default:
		return nil, fmt.Errorf("unsupported dataset %s", job.Dataset)
	}
}

func (s *ExportService) renderRows(format models.ExportFormat, rows models.AllocationList, title, generated string) ([]byte, error) {
	records := []models.Allocation(rows)
	if records == nil {
		records = []models.Allocation{}
	}
	switch format {
	case models.ExportFormatCSV:
		return s.csv.Render(records)
	case models.ExportFormatPDF:
		return s.pdf.Render(allocationDataset(records), title, fmt.Sprintf("%s, %d rows", generated, len(records)))
	default:
		return nil, fmt.Errorf("unsupported format %s", format)
	}
}

func (s *ExportService) buildFilename(draft *models.Draft, job *models.ExportJob) string {
	dataset := job.Dataset
	if dataset == "" {
		dataset = models.ExportDatasetAllocations
	}
	timestamp := s.now().Format("20060102_150405")
	return fmt.Sprintf("%s_%s_%s.%s", sanitizeFilename(draft.Name), dataset, timestamp, job.Format)
}

func sanitizeFilename(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "draft"
	}
	replacer := strings.NewReplacer(" ", "_", "/", "-", "\\", "-", ":", "-", "..", ".", "__", "_")
	result := replacer.Replace(raw)
	if len(result) > 100 {
		return result[:100]
	}
	return result
}

var allocationPDFColumns = []string{"RA NAME", "EMP ID", "COURSE CODE", "COURSE TITLE", "SLOT", "ROOM NUMBER", "CLASS ID", "EMPLOYEE NAME", "COMMENTS"}

func allocationDataset(rows []models.Allocation) export.Dataset {
	out := make([]map[string]string, 0, len(rows))
	for _, row := range rows {
		out = append(out, map[string]string{
			"RA NAME":       row.RAName,
			"EMP ID":        row.EmpID,
			"COURSE CODE":   row.CourseCode,
			"COURSE TITLE":  row.CourseTitle,
			"SLOT":          row.Slot,
			"ROOM NUMBER":   row.RoomNumber,
			"CLASS ID":      row.ClassID,
			"EMPLOYEE NAME": row.EmployeeName,
			"COMMENTS":      row.Comments,
		})
	}
	return export.Dataset{Headers: allocationPDFColumns, Rows: out}
}

// statsRecord flattens AssistantStats for tabular output.
type statsRecord struct {
	RAName        string `csv:"RA NAME"`
	EmpID         string `csv:"EMP ID"`
	LabsAssigned  int    `csv:"LABS ASSIGNED"`
	LabsRequired  int    `csv:"LABS REQUIRED"`
	Courses       string `csv:"COURSES"`
	Slots         string `csv:"SLOTS"`
	Clashes       int    `csv:"CLASHES"`
	Discrepancies string `csv:"DISCREPANCIES"`
}

func statsRecords(stats models.AllocationStats) []statsRecord {
	out := make([]statsRecord, 0, len(stats.Assistants))
	for _, a := range stats.Assistants {
		out = append(out, statsRecord{
			RAName:        a.RAName,
			EmpID:         a.EmpID,
			LabsAssigned:  a.LabsAssigned,
			LabsRequired:  a.LabsRequired,
			Courses:       strings.Join(a.Courses, ", "),
			Slots:         strings.Join(a.Slots, ", "),
			Clashes:       a.Clashes,
			Discrepancies: strings.Join(a.Discrepancies, "; "),
		})
	}
	return out
}

func statsDataset(records []statsRecord) export.Dataset {
	headers := []string{"RA NAME", "EMP ID", "LABS ASSIGNED", "LABS REQUIRED", "COURSES", "CLASHES", "DISCREPANCIES"}
	rows := make([]map[string]string, 0, len(records))
	for _, r := range records {
		rows = append(rows, map[string]string{
			"RA NAME":       r.RAName,
			"EMP ID":        r.EmpID,
			"LABS ASSIGNED": strconv.Itoa(r.LabsAssigned),
			"LABS REQUIRED": strconv.Itoa(r.LabsRequired),
			"COURSES":       r.Courses,
			"CLASHES":       strconv.Itoa(r.Clashes),
			"DISCREPANCIES": r.Discrepancies,
		})
	}
	return export.Dataset{Headers: headers, Rows: rows}
}

package service

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/ra-lab-allocator/internal/allocation"
	"github.com/noah-isme/ra-lab-allocator/internal/dto"
	"github.com/noah-isme/ra-lab-allocator/internal/ingest"
	"github.com/noah-isme/ra-lab-allocator/internal/models"
	appErrors "github.com/noah-isme/ra-lab-allocator/pkg/errors"
)

// Allocation run sources used as metric labels.
const (
	SourceJSON   = "json"
	SourceUpload = "upload"
	SourceDraft  = "draft"
)

// AllocationServiceConfig bounds accepted inputs. Zero disables a limit.
type AllocationServiceConfig struct {
	MaxAssistants int
	MaxCourses    int
}

// AllocationService validates inputs and runs the allocation engine.
type AllocationService struct {
	engine    *allocation.Engine
	slots     allocation.SlotMap
	validator *validator.Validate
	metrics   *MetricsService
	logger    *zap.Logger
	cfg       AllocationServiceConfig
}

// AllocationOutcome is a finished run together with the slot map it used.
type AllocationOutcome struct {
	Response *dto.AllocationResponse
	SlotMap  allocation.SlotMap
}

// NewAllocationService constructs the service. A nil slot map means the
// default weekly grid.
func NewAllocationService(engine *allocation.Engine, slots allocation.SlotMap, validate *validator.Validate, metrics *MetricsService, logger *zap.Logger, cfg AllocationServiceConfig) *AllocationService {
	if engine == nil {
		engine = allocation.NewEngine(allocation.Config{Logger: logger})
	}
	if slots == nil {
		slots = allocation.DefaultSlotMap()
	}
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AllocationService{engine: engine, slots: slots, validator: validate, metrics: metrics, logger: logger, cfg: cfg}
}

// SlotMap returns the configured lab-to-theory mapping.
func (s *AllocationService) SlotMap() models.SlotMapping {
	return s.slots.Model()
}

// Band returns the engine's course-diversity band.
func (s *AllocationService) Band() allocation.Band {
	return s.engine.Band()
}

// Allocate runs the engine over a JSON payload.
func (s *AllocationService) Allocate(ctx context.Context, req dto.AllocateRequest) (*dto.AllocationResponse, error) {
	out, err := s.Execute(ctx, SourceJSON, req)
	if err != nil {
		return nil, err
	}
	return out.Response, nil
}

// AllocateUpload runs the engine over uploaded course and roster CSV files.
func (s *AllocationService) AllocateUpload(ctx context.Context, courses, assistants io.Reader, seed *uint64) (*dto.AllocationResponse, error) {
	courseRows, err := ingest.ParseCourses(courses)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid courses file")
	}
	roster, err := ingest.ParseAssistants(assistants)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid ras file")
	}
	out, err := s.run(ctx, SourceUpload, courseRows, roster, nil, seed)
	if err != nil {
		return nil, err
	}
	return out.Response, nil
}

// Execute validates the payload and runs the engine, labelling metrics with
// source.
func (s *AllocationService) Execute(ctx context.Context, source string, req dto.AllocateRequest) (*AllocationOutcome, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid allocation payload")
	}
	return s.run(ctx, source, req.CourseModels(), req.AssistantModels(), req.SlotMap, req.Seed)
}

func (s *AllocationService) run(ctx context.Context, source string, courses []models.Course, roster []models.Assistant, slotMap map[string]string, seed *uint64) (*AllocationOutcome, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := s.checkLimits(len(courses), len(roster)); err != nil {
		return nil, err
	}
	slots := s.slots
	if len(slotMap) > 0 {
		slots = allocation.SlotMap(slotMap)
	}

	start := time.Now()
	var result allocation.Result
	if seed != nil {
		result = s.engine.Run(courses, roster, slots, *seed)
	} else {
		result = s.engine.Allocate(courses, roster, slots)
	}
	rows := make([]models.Allocation, 0, len(result.Allocations)+len(result.Unallocated))
	rows = append(rows, result.Allocations...)
	rows = append(rows, result.Unallocated...)
	stats := allocation.Summarize(rows, roster, slots, s.engine.Band())
	elapsed := time.Since(start)

	under := allocation.UnderAllocated(stats)
	s.metrics.ObserveAllocation(source, elapsed, result.PoolSize, under)
	s.logger.Info("allocation run",
		zap.String("source", source),
		zap.Uint64("seed", result.Seed),
		zap.Int("assistants", len(roster)),
		zap.Int("courses", len(courses)),
		zap.Int("pool_units", result.PoolSize),
		zap.Int("allocations", len(result.Allocations)),
		zap.Int("unallocated", len(result.Unallocated)),
		zap.Int("under_allocated", under),
		zap.Duration("elapsed", elapsed),
	)

	return &AllocationOutcome{
		Response: &dto.AllocationResponse{
			Allocations:     result.Allocations,
			UnallocatedLabs: result.Unallocated,
			Seed:            result.Seed,
			PoolSize:        result.PoolSize,
			Stats:           stats,
		},
		SlotMap: slots,
	}, nil
}

func (s *AllocationService) checkLimits(courses, assistants int) error {
	if s.cfg.MaxCourses > 0 && courses > s.cfg.MaxCourses {
		return appErrors.Clone(appErrors.ErrPayloadTooLarge, fmt.Sprintf("too many course rows: %d (max %d)", courses, s.cfg.MaxCourses))
	}
	if s.cfg.MaxAssistants > 0 && assistants > s.cfg.MaxAssistants {
		return appErrors.Clone(appErrors.ErrPayloadTooLarge, fmt.Sprintf("too many assistants: %d (max %d)", assistants, s.cfg.MaxAssistants))
	}
	return nil
}

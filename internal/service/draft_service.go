package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/ra-lab-allocator/internal/allocation"
	"github.com/noah-isme/ra-lab-allocator/internal/dto"
	"github.com/noah-isme/ra-lab-allocator/internal/models"
	"github.com/noah-isme/ra-lab-allocator/internal/repository"
	appErrors "github.com/noah-isme/ra-lab-allocator/pkg/errors"
)

type draftStore interface {
	List(ctx context.Context, filter models.DraftFilter) ([]models.Draft, int, error)
	FindByID(ctx context.Context, id string) (*models.Draft, error)
	ExistsByName(ctx context.Context, name, excludeID string) (bool, error)
	Create(ctx context.Context, draft *models.Draft) error
	Update(ctx context.Context, id string, params repository.UpdateDraftParams) error
	Delete(ctx context.Context, id string) error
}

type draftAllocator interface {
	Execute(ctx context.Context, source string, req dto.AllocateRequest) (*AllocationOutcome, error)
	SlotMap() models.SlotMapping
	Band() allocation.Band
}

// DraftService manages persisted allocation drafts.
type DraftService struct {
	repo      draftStore
	allocator draftAllocator
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
	statsTTL  time.Duration
}

// NewDraftService constructs DraftService. cache may be nil.
func NewDraftService(repo draftStore, allocator draftAllocator, cache *CacheService, validate *validator.Validate, logger *zap.Logger, statsTTL time.Duration) *DraftService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DraftService{repo: repo, allocator: allocator, cache: cache, validator: validate, logger: logger, statsTTL: statsTTL}
}

// List returns draft summaries with pagination metadata.
func (s *DraftService) List(ctx context.Context, filter models.DraftFilter) ([]dto.DraftSummary, *models.Pagination, error) {
	drafts, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list drafts")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 20
	}
	items := make([]dto.DraftSummary, 0, len(drafts))
	for _, d := range drafts {
		items = append(items, dto.NewDraftSummary(d))
	}
	return items, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// Get returns a draft with its allocations.
func (s *DraftService) Get(ctx context.Context, id string) (*models.Draft, error) {
	draft, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "draft not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load draft")
	}
	return draft, nil
}

// Create stores a new draft. Names are unique ignoring case.
func (s *DraftService) Create(ctx context.Context, req dto.CreateDraftRequest, actorID string) (*models.Draft, error) {
	req.Name = strings.TrimSpace(req.Name)
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid draft payload")
	}
	if err := s.ensureNameAvailable(ctx, req.Name, ""); err != nil {
		return nil, err
	}

	draft := &models.Draft{
		Name:        req.Name,
		Seed:        req.Seed,
		Allocations: models.AllocationList(req.Allocations),
		Unallocated: models.AllocationList(req.UnallocatedLabs),
		SlotMap:     models.SlotMapping(req.SlotMap),
	}
	if len(draft.SlotMap) == 0 {
		draft.SlotMap = s.allocator.SlotMap()
	}
	if actorID != "" {
		draft.CreatedBy = &actorID
	}
	if err := s.repo.Create(ctx, draft); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, duplicateDraft(req.Name)
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create draft")
	}
	s.logger.Info("draft created", zap.String("draft_id", draft.ID), zap.String("name", draft.Name))
	return draft, nil
}

// Update replaces the provided draft fields.
func (s *DraftService) Update(ctx context.Context, id string, req dto.UpdateDraftRequest) (*models.Draft, error) {
	if req.Name != nil {
		trimmed := strings.TrimSpace(*req.Name)
		req.Name = &trimmed
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid draft payload")
	}
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	if req.Name != nil {
		if err := s.ensureNameAvailable(ctx, *req.Name, id); err != nil {
			return nil, err
		}
	}

	params := repository.UpdateDraftParams{Name: req.Name, Seed: req.Seed}
	if req.Allocations != nil {
		list := models.AllocationList(*req.Allocations)
		params.Allocations = &list
	}
	if req.UnallocatedLabs != nil {
		list := models.AllocationList(*req.UnallocatedLabs)
		params.Unallocated = &list
	}
	if req.SlotMap != nil {
		mapping := models.SlotMapping(req.SlotMap)
		params.SlotMap = &mapping
	}
	return s.apply(ctx, id, params)
}

// Allocate runs the engine and stores its result into the draft.
func (s *DraftService) Allocate(ctx context.Context, id string, req dto.AllocateRequest) (*models.Draft, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	outcome, err := s.allocator.Execute(ctx, SourceDraft, req)
	if err != nil {
		return nil, err
	}
	seed := int64(outcome.Response.Seed)
	allocations := models.AllocationList(outcome.Response.Allocations)
	unallocated := models.AllocationList(outcome.Response.UnallocatedLabs)
	mapping := outcome.SlotMap.Model()
	return s.apply(ctx, id, repository.UpdateDraftParams{
		Seed:        &seed,
		Allocations: &allocations,
		Unallocated: &unallocated,
		SlotMap:     &mapping,
	})
}

// Delete removes a draft and its export jobs.
func (s *DraftService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "draft not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete draft")
	}
	_ = s.cache.Invalidate(ctx, draftKeyPattern(id))
	s.logger.Info("draft deleted", zap.String("draft_id", id))
	return nil
}

// Stats summarises the draft's allocations. Assistants without any row in
// the draft are not listed.
func (s *DraftService) Stats(ctx context.Context, id string) (*models.AllocationStats, error) {
	key := draftStatsKey(id)
	var cached models.AllocationStats
	if hit, _ := s.cache.Get(ctx, key, &cached); hit {
		return &cached, nil
	}

	draft, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	stats := SummarizeDraft(draft, s.allocator.Band())
	_ = s.cache.Set(ctx, key, stats, s.statsTTL)
	return &stats, nil
}

// SummarizeDraft computes statistics over a draft's stored rows.
func SummarizeDraft(draft *models.Draft, band allocation.Band) models.AllocationStats {
	rows := make([]models.Allocation, 0, len(draft.Allocations)+len(draft.Unallocated))
	rows = append(rows, draft.Allocations...)
	rows = append(rows, draft.Unallocated...)
	var slots allocation.SlotMap
	if len(draft.SlotMap) > 0 {
		slots = allocation.FromModel(draft.SlotMap)
	}
	return allocation.Summarize(rows, nil, slots, band)
}

func (s *DraftService) apply(ctx context.Context, id string, params repository.UpdateDraftParams) (*models.Draft, error) {
	if err := s.repo.Update(ctx, id, params); err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, appErrors.Clone(appErrors.ErrNotFound, "draft not found")
		case errors.Is(err, repository.ErrDuplicate):
			name := ""
			if params.Name != nil {
				name = *params.Name
			}
			return nil, duplicateDraft(name)
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update draft")
	}
	s.invalidate(ctx, id)
	return s.Get(ctx, id)
}

func (s *DraftService) ensureNameAvailable(ctx context.Context, name, excludeID string) error {
	exists, err := s.repo.ExistsByName(ctx, name, excludeID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check draft name")
	}
	if exists {
		return duplicateDraft(name)
	}
	return nil
}

func (s *DraftService) invalidate(ctx context.Context, id string) {
	_ = s.cache.Delete(ctx, draftStatsKey(id))
}

func duplicateDraft(name string) error {
	return appErrors.Clone(appErrors.ErrConflict, fmt.Sprintf("draft %q already exists", name))
}

func draftStatsKey(id string) string {
	return fmt.Sprintf("drafts:%s:stats", id)
}

func draftKeyPattern(id string) string {
	return fmt.Sprintf("drafts:%s:*", id)
}

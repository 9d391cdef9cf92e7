package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/ra-lab-allocator/internal/models"
)

const draftColumns = "id, name, seed, allocations, unallocated_labs, slot_map, created_by, created_at, updated_at"

// DraftRepository persists allocation drafts.
type DraftRepository struct {
	db *sqlx.DB
}

// NewDraftRepository constructs the repository.
func NewDraftRepository(db *sqlx.DB) *DraftRepository {
	return &DraftRepository{db: db}
}

// List returns drafts newest first with the total matching count.
func (r *DraftRepository) List(ctx context.Context, filter models.DraftFilter) ([]models.Draft, int, error) {
	base := "FROM allocation_drafts"
	args := []interface{}{}
	if filter.Search != "" {
		base += " WHERE LOWER(name) LIKE $1"
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf("SELECT %s %s ORDER BY created_at DESC LIMIT %d OFFSET %d", draftColumns, base, size, offset)
	var drafts []models.Draft
	if err := r.db.SelectContext(ctx, &drafts, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list drafts: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) "+base, args...); err != nil {
		return nil, 0, fmt.Errorf("count drafts: %w", err)
	}
	return drafts, total, nil
}

// FindByID fetches a draft by identifier.
func (r *DraftRepository) FindByID(ctx context.Context, id string) (*models.Draft, error) {
	query := fmt.Sprintf("SELECT %s FROM allocation_drafts WHERE id = $1", draftColumns)
	var draft models.Draft
	if err := r.db.GetContext(ctx, &draft, query, id); err != nil {
		return nil, err
	}
	return &draft, nil
}

// ExistsByName reports whether a draft already uses the name, ignoring case
// and optionally excluding one draft.
func (r *DraftRepository) ExistsByName(ctx context.Context, name, excludeID string) (bool, error) {
	query := "SELECT 1 FROM allocation_drafts WHERE LOWER(name) = LOWER($1)"
	args := []interface{}{name}
	if excludeID != "" {
		query += " AND id <> $2"
		args = append(args, excludeID)
	}
	var exists int
	if err := r.db.GetContext(ctx, &exists, query+" LIMIT 1", args...); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check draft name: %w", err)
	}
	return true, nil
}

// Create inserts a new draft.
func (r *DraftRepository) Create(ctx context.Context, draft *models.Draft) error {
	if draft.ID == "" {
		draft.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if draft.CreatedAt.IsZero() {
		draft.CreatedAt = now
	}
	draft.UpdatedAt = now
	const query = `INSERT INTO allocation_drafts (id, name, seed, allocations, unallocated_labs, slot_map, created_by, created_at, updated_at)
        VALUES (:id, :name, :seed, :allocations, :unallocated_labs, :slot_map, :created_by, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, draft); err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("create draft: %w", err)
	}
	return nil
}

// UpdateDraftParams lists the mutable draft fields.
type UpdateDraftParams struct {
	Name        *string
	Seed        *int64
	Allocations *models.AllocationList
	Unallocated *models.AllocationList
	SlotMap     *models.SlotMapping
}

// Update applies the provided changes and bumps updated_at.
func (r *DraftRepository) Update(ctx context.Context, id string, params UpdateDraftParams) error {
	set := make([]string, 0, 6)
	args := make([]interface{}, 0, 7)
	add := func(column string, value interface{}) {
		args = append(args, value)
		set = append(set, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if params.Name != nil {
		add("name", *params.Name)
	}
	if params.Seed != nil {
		add("seed", *params.Seed)
	}
	if params.Allocations != nil {
		add("allocations", *params.Allocations)
	}
	if params.Unallocated != nil {
		add("unallocated_labs", *params.Unallocated)
	}
	if params.SlotMap != nil {
		add("slot_map", *params.SlotMap)
	}
	if len(set) == 0 {
		return nil
	}
	add("updated_at", time.Now().UTC())

	query := fmt.Sprintf("UPDATE allocation_drafts SET %s WHERE id = $%d", strings.Join(set, ", "), len(args)+1)
	args = append(args, id)

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("update draft: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update draft rows: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Delete removes a draft and, through the foreign key, its export jobs.
func (r *DraftRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM allocation_drafts WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("delete draft: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete draft rows: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

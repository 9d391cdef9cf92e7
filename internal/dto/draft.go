package dto

import (
	"time"

	"github.com/noah-isme/ra-lab-allocator/internal/models"
)

// CreateDraftRequest stores an allocation result under a name.
type CreateDraftRequest struct {
	Name            string              `json:"name" validate:"required,max=200"`
	Allocations     []models.Allocation `json:"allocations"`
	UnallocatedLabs []models.Allocation `json:"unallocatedLabs"`
	SlotMap         map[string]string   `json:"slotMap"`
	Seed            *int64              `json:"seed"`
}

// UpdateDraftRequest replaces draft content. Omitted fields are kept.
type UpdateDraftRequest struct {
	Name            *string              `json:"name" validate:"omitempty,min=1,max=200"`
	Allocations     *[]models.Allocation `json:"allocations"`
	UnallocatedLabs *[]models.Allocation `json:"unallocatedLabs"`
	SlotMap         map[string]string    `json:"slotMap"`
	Seed            *int64               `json:"seed"`
}

// DraftSummary is a draft listing item without the allocation payload.
type DraftSummary struct {
	ID               string    `json:"id"`
	Name             string    `json:"name"`
	Seed             *int64    `json:"seed,omitempty"`
	TotalAllocations int       `json:"totalAllocations"`
	TotalUnallocated int       `json:"totalUnallocated"`
	CreatedBy        *string   `json:"createdBy,omitempty"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

// NewDraftSummary strips the payload from a draft.
func NewDraftSummary(d models.Draft) DraftSummary {
	return DraftSummary{
		ID:               d.ID,
		Name:             d.Name,
		Seed:             d.Seed,
		TotalAllocations: len(d.Allocations),
		TotalUnallocated: len(d.Unallocated),
		CreatedBy:        d.CreatedBy,
		CreatedAt:        d.CreatedAt,
		UpdatedAt:        d.UpdatedAt,
	}
}

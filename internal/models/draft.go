package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// Draft is a named, persisted allocation ready for review and export.
type Draft struct {
	ID          string         `db:"id" json:"id"`
	Name        string         `db:"name" json:"name"`
	Seed        *int64         `db:"seed" json:"seed,omitempty"`
	Allocations AllocationList `db:"allocations" json:"allocations"`
	Unallocated AllocationList `db:"unallocated_labs" json:"unallocatedLabs"`
	SlotMap     SlotMapping    `db:"slot_map" json:"slotMap"`
	CreatedBy   *string        `db:"created_by" json:"createdBy,omitempty"`
	CreatedAt   time.Time      `db:"created_at" json:"createdAt"`
	UpdatedAt   time.Time      `db:"updated_at" json:"updatedAt"`
}

// AllocationList is persisted as a JSONB array.
type AllocationList []Allocation

// Value marshals the list for persistence.
func (l AllocationList) Value() (driver.Value, error) {
	if l == nil {
		l = AllocationList{}
	}
	data, err := json.Marshal([]Allocation(l))
	if err != nil {
		return nil, fmt.Errorf("marshal allocations: %w", err)
	}
	return data, nil
}

// Scan decodes a JSONB array.
func (l *AllocationList) Scan(value interface{}) error {
	data, err := jsonBytes(value)
	if err != nil {
		return fmt.Errorf("scan allocations: %w", err)
	}
	if len(data) == 0 {
		*l = AllocationList{}
		return nil
	}
	var items []Allocation
	if err := json.Unmarshal(data, &items); err != nil {
		return fmt.Errorf("unmarshal allocations: %w", err)
	}
	*l = items
	return nil
}

// SlotMapping relates lab slot codes to the theory slot sharing their time.
type SlotMapping map[string]string

// Value marshals the mapping for persistence.
func (m SlotMapping) Value() (driver.Value, error) {
	if m == nil {
		m = SlotMapping{}
	}
	data, err := json.Marshal(map[string]string(m))
	if err != nil {
		return nil, fmt.Errorf("marshal slot map: %w", err)
	}
	return data, nil
}

// Scan decodes a JSONB object.
func (m *SlotMapping) Scan(value interface{}) error {
	data, err := jsonBytes(value)
	if err != nil {
		return fmt.Errorf("scan slot map: %w", err)
	}
	if len(data) == 0 {
		*m = SlotMapping{}
		return nil
	}
	out := map[string]string{}
	if err := json.Unmarshal(data, &out); err != nil {
		return fmt.Errorf("unmarshal slot map: %w", err)
	}
	*m = out
	return nil
}

func jsonBytes(value interface{}) ([]byte, error) {
	switch v := value.(type) {
	case nil:
		return nil, nil
	case []byte:
		return v, nil
	case string:
		return []byte(v), nil
	default:
		return nil, fmt.Errorf("unsupported type %T", value)
	}
}

// DraftFilter narrows draft listings.
type DraftFilter struct {
	Search   string
	Page     int
	PageSize int
}

package allocation

import (
	"strings"

	"github.com/noah-isme/ra-lab-allocator/internal/models"
)

// DefaultLabTypes are the course types treated as lab offerings.
var DefaultLabTypes = []string{"LO"}

// ParseSlots splits a "+"-joined slot string into trimmed, non-empty codes.
func ParseSlots(slot string) []string {
	parts := strings.Split(slot, "+")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// GroupLabHours pairs consecutive hours into "+"-joined units. An odd final
// hour becomes a unit on its own.
func GroupLabHours(hours []string) []string {
	out := make([]string, 0, (len(hours)+1)/2)
	for i := 0; i < len(hours); i += 2 {
		if i+1 < len(hours) {
			out = append(out, hours[i]+"+"+hours[i+1])
			continue
		}
		out = append(out, hours[i])
	}
	return out
}

// Pool is the ordered set of session units built from a catalog. Units are
// addressed by index so allocations can track them without copying.
type Pool struct {
	units []models.SessionUnit
}

// BuildPool expands each lab course into its session units, in catalog order.
func BuildPool(courses []models.Course, labTypes []string) *Pool {
	if len(labTypes) == 0 {
		labTypes = DefaultLabTypes
	}
	p := &Pool{}
	for _, c := range courses {
		if !c.IsLab(labTypes) {
			continue
		}
		for _, unit := range GroupLabHours(ParseSlots(c.Slot)) {
			p.units = append(p.units, models.SessionUnit{
				Course: c,
				Slot:   unit,
				Hours:  ParseSlots(unit),
			})
		}
	}
	return p
}

// Len returns the number of units.
func (p *Pool) Len() int { return len(p.units) }

// At returns the unit at index i.
func (p *Pool) At(i int) models.SessionUnit { return p.units[i] }

// Units returns a copy of all units.
func (p *Pool) Units() []models.SessionUnit {
	out := make([]models.SessionUnit, len(p.units))
	copy(out, p.units)
	return out
}

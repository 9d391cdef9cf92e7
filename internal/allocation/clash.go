package allocation

import "github.com/noah-isme/ra-lab-allocator/internal/models"

// HasClash reports whether any hour of the unit is busy, either directly or
// through the theory slot mapped to it.
func HasClash(unit models.SessionUnit, busy BusySet, slots SlotMap) bool {
	for _, hour := range unit.Hours {
		if busy.Has(hour) {
			return true
		}
		if theory, ok := slots.TheoryOf(hour); ok && busy.Has(theory) {
			return true
		}
	}
	return false
}

// CountClashes counts the allocations whose slot collides with the
// assistant's registered slots.
func CountClashes(rows []models.Allocation, slots SlotMap) int {
	n := 0
	for _, row := range rows {
		unit := models.SessionUnit{Slot: row.Slot, Hours: ParseSlots(row.Slot)}
		if HasClash(unit, ParseBusySet(row.RegisteredSlots), slots) {
			n++
		}
	}
	return n
}

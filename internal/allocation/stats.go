package allocation

import (
	"sort"

	"github.com/noah-isme/ra-lab-allocator/internal/models"
)

// Summarize computes per-assistant and aggregate statistics. When roster is
// nil the assistants are taken from the allocation rows in first-seen order,
// which drops anyone who received nothing.
func Summarize(rows []models.Allocation, roster []models.Assistant, slots SlotMap, band Band) models.AllocationStats {
	band = band.normalized()
	if slots == nil {
		slots = DefaultSlotMap()
	}

	type entry struct {
		stats   models.AssistantStats
		courses map[string]struct{}
		slots   map[string]struct{}
		busy    BusySet
	}
	var order []*entry
	byKey := map[string]*entry{}
	add := func(name, empID string, required int, registered string) *entry {
		e := &entry{
			stats: models.AssistantStats{
				RAName:        name,
				EmpID:         empID,
				LabsRequired:  required,
				Courses:       []string{},
				Slots:         []string{},
				Discrepancies: []string{},
			},
			courses: map[string]struct{}{},
			slots:   map[string]struct{}{},
			busy:    ParseBusySet(registered),
		}
		order = append(order, e)
		if _, exists := byKey[identity(name, empID)]; !exists {
			byKey[identity(name, empID)] = e
		}
		return e
	}
	for _, ra := range roster {
		add(ra.Name, ra.EmpID, ra.NumLabs.Int(), ra.RegisteredSlots)
	}

	var (
		total       models.AllocationStats
		courseCount = map[string]int{}
		slotCount   = map[string]int{}
	)
	for _, row := range rows {
		if !row.Assigned() {
			total.TotalUnallocated++
			continue
		}
		e, ok := byKey[identity(row.RAName, row.EmpID)]
		if !ok {
			e = add(row.RAName, row.EmpID, row.NumLabsReq, row.RegisteredSlots)
		}
		total.TotalAllocations++
		e.stats.LabsAssigned++
		if _, seen := e.courses[row.CourseCode]; !seen {
			e.courses[row.CourseCode] = struct{}{}
			e.stats.Courses = append(e.stats.Courses, row.CourseCode)
		}
		if _, seen := e.slots[row.Slot]; !seen {
			e.slots[row.Slot] = struct{}{}
			e.stats.Slots = append(e.stats.Slots, row.Slot)
		}
		unit := models.SessionUnit{Slot: row.Slot, Hours: ParseSlots(row.Slot)}
		if HasClash(unit, e.busy, slots) {
			e.stats.Clashes++
		}
		courseCount[row.CourseCode]++
		slotCount[row.Slot]++
	}

	total.TotalRAs = len(order)
	total.Assistants = make([]models.AssistantStats, 0, len(order))
	for i, e := range order {
		s := e.stats
		switch {
		case s.LabsAssigned > s.LabsRequired:
			s.Discrepancies = append(s.Discrepancies, models.DiscrepancyOverAllocated)
		case s.LabsAssigned < s.LabsRequired:
			s.Discrepancies = append(s.Discrepancies, models.DiscrepancyUnderAllocated)
		}
		if s.LabsAssigned > 0 {
			switch {
			case len(s.Courses) < band.Min:
				s.Discrepancies = append(s.Discrepancies, models.DiscrepancyTooFewCourses)
			case len(s.Courses) > band.Max:
				s.Discrepancies = append(s.Discrepancies, models.DiscrepancyTooManyCourses)
			}
		}
		if s.Clashes > 0 {
			s.Discrepancies = append(s.Discrepancies, models.DiscrepancyTimeClash)
		}
		if len(s.Discrepancies) > 0 {
			total.TotalDiscrepancies++
		}
		total.TotalClashes += s.Clashes

		if i == 0 || s.LabsAssigned < total.MinLabs {
			total.MinLabs = s.LabsAssigned
			total.RAWithMinLabs = s.RAName
		}
		if i == 0 || s.LabsAssigned > total.MaxLabs {
			total.MaxLabs = s.LabsAssigned
			total.RAWithMaxLabs = s.RAName
		}
		total.Assistants = append(total.Assistants, s)
	}
	if total.TotalRAs > 0 {
		total.AvgLabsPerRA = float64(total.TotalAllocations) / float64(total.TotalRAs)
	}
	total.CourseDistribution = rank(courseCount)
	total.SlotUtilization = rank(slotCount)
	return total
}

// UnderAllocated counts assistants who received fewer sessions than they need.
func UnderAllocated(stats models.AllocationStats) int {
	n := 0
	for _, s := range stats.Assistants {
		if s.LabsAssigned < s.LabsRequired {
			n++
		}
	}
	return n
}

func identity(name, empID string) string {
	return empID + "\x00" + name
}

func rank(counts map[string]int) []models.CountEntry {
	out := make([]models.CountEntry, 0, len(counts))
	for k, v := range counts {
		out = append(out, models.CountEntry{Key: k, Count: v})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Key < out[j].Key
	})
	return out
}

package models

// Discrepancy labels reported per assistant.
const (
	DiscrepancyOverAllocated  = "Over-allocated"
	DiscrepancyUnderAllocated = "Under-allocated"
	DiscrepancyTooFewCourses  = "Too few courses"
	DiscrepancyTooManyCourses = "Too many courses"
	DiscrepancyTimeClash      = "Time clash"
)

// AssistantStats summarises what one assistant received.
type AssistantStats struct {
	RAName        string   `json:"raName"`
	EmpID         string   `json:"empId"`
	LabsAssigned  int      `json:"labsAssigned"`
	LabsRequired  int      `json:"labsRequired"`
	Courses       []string `json:"courses"`
	Slots         []string `json:"slots"`
	Clashes       int      `json:"clashes"`
	Discrepancies []string `json:"discrepancies"`
}

// CountEntry is one bucket of a distribution sorted by count.
type CountEntry struct {
	Key   string `json:"key"`
	Count int    `json:"count"`
}

// AllocationStats aggregates an allocation result.
type AllocationStats struct {
	TotalRAs           int              `json:"totalRAs"`
	TotalAllocations   int              `json:"totalAllocations"`
	TotalUnallocated   int              `json:"totalUnallocated"`
	AvgLabsPerRA       float64          `json:"avgLabsPerRA"`
	MinLabs            int              `json:"minLabs"`
	MaxLabs            int              `json:"maxLabs"`
	RAWithMinLabs      string           `json:"raWithMinLabs"`
	RAWithMaxLabs      string           `json:"raWithMaxLabs"`
	TotalDiscrepancies int              `json:"totalDiscrepancies"`
	TotalClashes       int              `json:"totalClashes"`
	Assistants         []AssistantStats `json:"assistants"`
	CourseDistribution []CountEntry     `json:"courseDistribution"`
	SlotUtilization    []CountEntry     `json:"slotUtilization"`
}

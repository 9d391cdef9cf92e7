package allocation

import (
	"strconv"
	"strings"

	"github.com/noah-isme/ra-lab-allocator/internal/models"
)

// Weekday labels used by the weekly timetable grid.
var Weekdays = []string{"MON", "TUE", "WED", "THU", "FRI"}

// weeklyGrid lists the theory slot sharing time with each lab hour. Row d
// holds the six morning hours L(6d+1)..L(6d+6) and the six afternoon hours
// L(30+6d+1)..L(30+6d+6). Empty cells have no theory counterpart.
var weeklyGrid = [5][2][6]string{
	{{"A1", "F1", "D1", "TB1", "TG1", ""}, {"A2", "F2", "D2", "TB2", "TG2", ""}},
	{{"B1", "G1", "E1", "TC1", "TAA1", ""}, {"B2", "G2", "E2", "TC2", "TAA2", ""}},
	{{"C1", "A1", "F1", "V1", "V2", ""}, {"C2", "A2", "F2", "TD2", "TBB2", ""}},
	{{"D1", "B1", "G1", "TE1", "TCC1", ""}, {"D2", "B2", "G2", "TE2", "TCC2", ""}},
	{{"E1", "C1", "TA1", "TF1", "TD1", ""}, {"E2", "C2", "TA2", "TF2", "TDD2", ""}},
}

const (
	labHoursPerWeek = 60
	// Extended lab codes L61..L160 repeat the weekly cycle.
	maxExtendedLab = 160
)

// SlotMap relates a lab slot code to the theory slot occupying the same time.
type SlotMap map[string]string

// DefaultSlotMap returns the built-in weekly timetable for L1..L160.
func DefaultSlotMap() SlotMap {
	m := make(SlotMap, maxExtendedLab)
	for d := range weeklyGrid {
		for half, hours := range weeklyGrid[d] {
			for col, theory := range hours {
				if theory == "" {
					continue
				}
				m[labCode(half*30+d*6+col+1)] = theory
			}
		}
	}
	for n := labHoursPerWeek + 1; n <= maxExtendedLab; n++ {
		if theory, ok := m[labCode(baseLab(n))]; ok {
			m[labCode(n)] = theory
		}
	}
	return m
}

// FromModel converts a persisted mapping.
func FromModel(m models.SlotMapping) SlotMap {
	out := make(SlotMap, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Model converts the map for persistence.
func (m SlotMap) Model() models.SlotMapping {
	out := make(models.SlotMapping, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// TheoryOf returns the theory slot mapped to a lab code.
func (m SlotMap) TheoryOf(lab string) (string, bool) {
	theory, ok := m[strings.TrimSpace(lab)]
	return theory, ok && theory != ""
}

// Position locates a lab code on the weekly grid. Extended codes fold back
// onto L1..L60.
func Position(lab string) (day string, hour int, ok bool) {
	n, ok := labNumber(lab)
	if !ok {
		return "", 0, false
	}
	n = baseLab(n)
	half := (n - 1) / 30
	rest := (n - 1) % 30
	return Weekdays[rest/6], half*6 + rest%6 + 1, true
}

func labCode(n int) string {
	return "L" + strconv.Itoa(n)
}

func labNumber(code string) (int, bool) {
	code = strings.TrimSpace(code)
	if len(code) < 2 || code[0] != 'L' {
		return 0, false
	}
	n, err := strconv.Atoi(code[1:])
	if err != nil || n < 1 || n > maxExtendedLab {
		return 0, false
	}
	return n, true
}

func baseLab(n int) int {
	return (n-1)%labHoursPerWeek + 1
}

package allocation

// Course diversity band for a single assistant.
const (
	MinCourses = 2
	MaxCourses = 3
)

// Band bounds the number of distinct courses an assistant may hold.
type Band struct {
	Min int
	Max int
}

// DefaultBand returns the standard course diversity band.
func DefaultBand() Band {
	return Band{Min: MinCourses, Max: MaxCourses}
}

func (b Band) normalized() Band {
	if b.Min <= 0 {
		b.Min = MinCourses
	}
	if b.Max <= 0 {
		b.Max = MaxCourses
	}
	if b.Max < b.Min {
		b.Max = b.Min
	}
	return b
}

// picker selects pool units for one assistant. It never mutates the pool, so
// pickers for different assistants may run concurrently.
type picker struct {
	pool  *Pool
	slots SlotMap
	band  Band
}

// pick returns the pool indices assigned to an assistant, in acceptance
// order. order is the assistant's private permutation of the pool.
func (p picker) pick(quota int, busy BusySet, order []int) []int {
	if quota <= 0 || len(order) == 0 {
		return nil
	}
	picked := make([]int, 0, quota)
	taken := make(map[int]struct{}, quota)
	counts := make(map[string]int, p.band.Max)

	admissible := func(idx int) bool {
		code := p.pool.At(idx).Course.CourseCode
		if _, ok := counts[code]; ok {
			return true
		}
		return len(counts) < p.band.Max
	}
	accept := func(idx int) {
		picked = append(picked, idx)
		taken[idx] = struct{}{}
		counts[p.pool.At(idx).Course.CourseCode]++
	}

	for _, idx := range order {
		if len(picked) >= quota {
			break
		}
		if HasClash(p.pool.At(idx), busy, p.slots) || !admissible(idx) {
			continue
		}
		accept(idx)
	}

	// Clashing units fill whatever the clash-free pass left open.
	for _, idx := range order {
		if len(picked) >= quota {
			break
		}
		if _, ok := taken[idx]; ok || !admissible(idx) {
			continue
		}
		accept(idx)
	}

	if len(counts) < p.band.Min {
		p.diversify(picked, counts, busy, order)
	}
	return picked
}

// diversify swaps units at the tail of picked for units of unused courses
// until the minimum diversity is reached. A unit is only displaced when its
// course stays represented, and clash-free candidates are tried first. This
// differs from a plain overwrite of the tail in shuffled candidate order,
// which could drop a course or introduce a clash.
func (p picker) diversify(picked []int, counts map[string]int, busy BusySet, order []int) {
	var clean, clashing []int
	for _, idx := range order {
		unit := p.pool.At(idx)
		if _, ok := counts[unit.Course.CourseCode]; ok {
			continue
		}
		if HasClash(unit, busy, p.slots) {
			clashing = append(clashing, idx)
		} else {
			clean = append(clean, idx)
		}
	}
	candidates := append(clean, clashing...)

	next := 0
	for pos := len(picked) - 1; pos >= 0 && len(counts) < p.band.Min; pos-- {
		displaced := p.pool.At(picked[pos]).Course.CourseCode
		if counts[displaced] < 2 {
			continue
		}
		for next < len(candidates) {
			if _, ok := counts[p.pool.At(candidates[next]).Course.CourseCode]; !ok {
				break
			}
			next++
		}
		if next >= len(candidates) {
			return
		}
		idx := candidates[next]
		next++
		counts[displaced]--
		picked[pos] = idx
		counts[p.pool.At(idx).Course.CourseCode]++
	}
}

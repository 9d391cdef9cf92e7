package allocation

import "strings"

// BusySet holds the slot codes an assistant is already committed to.
type BusySet map[string]struct{}

// ParseBusySet reads a registered-slots string. Codes may be separated by
// ";" or "+".
func ParseBusySet(raw string) BusySet {
	fields := strings.FieldsFunc(raw, func(r rune) bool { return r == ';' || r == '+' })
	set := make(BusySet, len(fields))
	for _, f := range fields {
		if f = strings.TrimSpace(f); f != "" {
			set[f] = struct{}{}
		}
	}
	return set
}

// Has reports whether the slot code is busy.
func (b BusySet) Has(code string) bool {
	_, ok := b[code]
	return ok
}

package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// Assistant is a research assistant on the roster.
type Assistant struct {
	Name            string `json:"name" validate:"required"`
	EmpID           string `json:"empId"`
	PhDRegNo        string `json:"phdRegNo"`
	NumLabs         Quota  `json:"numLabs"`
	RegisteredSlots string `json:"registeredSlots"`
}

// Quota is the number of lab sessions an assistant requires. Text that does
// not start with an integer resolves to zero.
type Quota int

// ParseQuota reads the leading integer of raw, ignoring surrounding spaces.
// "3 labs" yields 3 and "three" yields 0.
func ParseQuota(raw string) Quota {
	s := strings.TrimSpace(raw)
	end := 0
	if end < len(s) && (s[end] == '+' || s[end] == '-') {
		end++
	}
	start := end
	for end < len(s) && unicode.IsDigit(rune(s[end])) {
		end++
	}
	if end == start {
		return 0
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0
	}
	return Quota(n)
}

// Int returns the quota as an int.
func (q Quota) Int() int { return int(q) }

// UnmarshalJSON accepts numbers, numeric strings and null.
func (q *Quota) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*q = 0
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("decode quota: %w", err)
		}
		*q = ParseQuota(s)
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("decode quota: %w", err)
	}
	*q = Quota(int(f))
	return nil
}

// UnmarshalCSV lets gocsv decode quota cells.
func (q *Quota) UnmarshalCSV(raw string) error {
	*q = ParseQuota(raw)
	return nil
}

// MarshalCSV renders the quota as a decimal string.
func (q Quota) MarshalCSV() (string, error) {
	return strconv.Itoa(int(q)), nil
}

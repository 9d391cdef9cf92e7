package ingest

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/noah-isme/ra-lab-allocator/internal/allocation"
)

// LoadSlotMap reads a lab-to-theory slot map. An empty path yields the
// built-in weekly timetable. CSV files hold two columns, lab then theory,
// with an optional header row. YAML files hold a flat mapping.
func LoadSlotMap(path string) (allocation.SlotMap, error) {
	if strings.TrimSpace(path) == "" {
		return allocation.DefaultSlotMap(), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open slot map: %w", err)
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return ParseSlotMapYAML(f)
	case ".csv":
		return ParseSlotMapCSV(f)
	default:
		return nil, fmt.Errorf("slot map %s: unsupported extension", path)
	}
}

// ParseSlotMapCSV decodes a two-column slot map.
func ParseSlotMapCSV(r io.Reader) (allocation.SlotMap, error) {
	rows, err := newReader(r).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse slot map: %w", err)
	}
	out := allocation.SlotMap{}
	for i, row := range rows {
		if len(row) < 2 {
			continue
		}
		lab, theory := strings.TrimSpace(row[0]), strings.TrimSpace(row[1])
		if i == 0 && strings.EqualFold(lab, "L") {
			continue
		}
		if lab == "" || theory == "" {
			continue
		}
		out[lab] = theory
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("parse slot map: %w", ErrEmptyFile)
	}
	return out, nil
}

// ParseSlotMapYAML decodes a flat "L1: A1" mapping.
func ParseSlotMapYAML(r io.Reader) (allocation.SlotMap, error) {
	raw := map[string]string{}
	if err := yaml.NewDecoder(r).Decode(&raw); err != nil {
		if err == io.EOF {
			return nil, fmt.Errorf("parse slot map: %w", ErrEmptyFile)
		}
		return nil, fmt.Errorf("parse slot map: %w", err)
	}
	out := make(allocation.SlotMap, len(raw))
	for lab, theory := range raw {
		lab, theory = strings.TrimSpace(lab), strings.TrimSpace(theory)
		if lab != "" && theory != "" {
			out[lab] = theory
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("parse slot map: %w", ErrEmptyFile)
	}
	return out, nil
}

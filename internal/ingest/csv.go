// Package ingest reads course catalogs, assistant rosters and slot maps from
// spreadsheet exports.
package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/gocarina/gocsv"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/noah-isme/ra-lab-allocator/internal/models"
)

// ErrEmptyFile is returned when a file holds no data rows.
var ErrEmptyFile = errors.New("ingest: no data rows")

func init() {
	gocsv.SetHeaderNormalizer(normalizeHeader)
}

// normalizeHeader makes header matching tolerant of case and stray spacing.
func normalizeHeader(s string) string {
	return strings.ToUpper(strings.Join(strings.Fields(s), " "))
}

type courseRecord struct {
	CourseCode     string `csv:"COURSE CODE"`
	CourseTitle    string `csv:"COURSE TITLE"`
	CourseOwner    string `csv:"COURSE OWNER"`
	ClassID        string `csv:"CLASS ID,CLASS NBR"`
	RoomNumber     string `csv:"ROOM NUMBER,ROOM NO"`
	Slot           string `csv:"SLOT"`
	EmployeeName   string `csv:"EMPLOYEE NAME"`
	EmployeeSchool string `csv:"EMPLOYEE SCHOOL"`
	CourseMode     string `csv:"COURSE MODE"`
	CourseType     string `csv:"COURSE TYPE"`
}

type assistantRecord struct {
	Prefix          string       `csv:"PFIX"`
	Name            string       `csv:"NAME OF THE STUDENT"`
	EmpID           string       `csv:"EMP ID"`
	PhDRegNo        string       `csv:"PH.D REGISTARTION NUMBER,PH.D REGISTRATION NUMBER"`
	NumLabs         models.Quota `csv:"NUMBER OF LABS"`
	RegisteredSlots string       `csv:"REGISTERED SLOTS"`
}

// ParseCourses decodes a course catalog CSV. Rows without a course code are
// skipped.
func ParseCourses(r io.Reader) ([]models.Course, error) {
	var records []courseRecord
	if err := unmarshal(r, &records); err != nil {
		return nil, fmt.Errorf("parse courses: %w", err)
	}
	out := make([]models.Course, 0, len(records))
	for _, rec := range records {
		code := strings.TrimSpace(rec.CourseCode)
		if code == "" {
			continue
		}
		out = append(out, models.Course{
			CourseCode:     code,
			CourseTitle:    strings.TrimSpace(rec.CourseTitle),
			CourseOwner:    strings.TrimSpace(rec.CourseOwner),
			ClassID:        strings.TrimSpace(rec.ClassID),
			RoomNumber:     strings.TrimSpace(rec.RoomNumber),
			Slot:           strings.TrimSpace(rec.Slot),
			EmployeeName:   strings.TrimSpace(rec.EmployeeName),
			EmployeeSchool: strings.TrimSpace(rec.EmployeeSchool),
			CourseMode:     strings.TrimSpace(rec.CourseMode),
			CourseType:     strings.TrimSpace(rec.CourseType),
		})
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("parse courses: %w", ErrEmptyFile)
	}
	return out, nil
}

// ParseAssistants decodes an RA roster CSV. A non-empty prefix column is
// joined to the name. Rows without a name are skipped.
func ParseAssistants(r io.Reader) ([]models.Assistant, error) {
	var records []assistantRecord
	if err := unmarshal(r, &records); err != nil {
		return nil, fmt.Errorf("parse assistants: %w", err)
	}
	out := make([]models.Assistant, 0, len(records))
	for _, rec := range records {
		name := strings.TrimSpace(rec.Name)
		if name == "" {
			continue
		}
		if prefix := strings.TrimSpace(rec.Prefix); prefix != "" {
			name = prefix + " " + name
		}
		out = append(out, models.Assistant{
			Name:            name,
			EmpID:           strings.TrimSpace(rec.EmpID),
			PhDRegNo:        strings.TrimSpace(rec.PhDRegNo),
			NumLabs:         rec.NumLabs,
			RegisteredSlots: strings.TrimSpace(rec.RegisteredSlots),
		})
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("parse assistants: %w", ErrEmptyFile)
	}
	return out, nil
}

// LoadCourses reads a course catalog from disk.
func LoadCourses(path string) ([]models.Course, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open courses: %w", err)
	}
	defer f.Close()
	return ParseCourses(f)
}

// LoadAssistants reads an RA roster from disk.
func LoadAssistants(path string) ([]models.Assistant, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open assistants: %w", err)
	}
	defer f.Close()
	return ParseAssistants(f)
}

func unmarshal(r io.Reader, out interface{}) error {
	if err := gocsv.UnmarshalCSV(newReader(r), out); err != nil {
		if errors.Is(err, gocsv.ErrEmptyCSVFile) {
			return ErrEmptyFile
		}
		return err
	}
	return nil
}

// newReader strips a UTF-8 or UTF-16 byte order mark, as written by
// spreadsheet exports, and tolerates ragged rows.
func newReader(r io.Reader) *csv.Reader {
	decoded := transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder()))
	reader := csv.NewReader(decoded)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	return reader
}

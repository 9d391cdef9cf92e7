package ingest

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/ra-lab-allocator/internal/models"
)

const coursesCSV = "\ufeffCOURSE CODE,COURSE TITLE,CLASS ID,ROOM NUMBER,SLOT,EMPLOYEE NAME,COURSE TYPE\n" +
	"CS101,Programming Lab,VL001,SJT-101,L1+L2+L3+L4,Dr. Rao,LO\n" +
	"MA201,Calculus,VL002,SJT-201,A1+TA1,Dr. Iyer,TH\n" +
	",,,,,,\n"

func TestParseCoursesStripsBOMAndSkipsBlankRows(t *testing.T) {
	courses, err := ParseCourses(strings.NewReader(coursesCSV))
	require.NoError(t, err)
	require.Len(t, courses, 2)

	assert.Equal(t, models.Course{
		CourseCode:   "CS101",
		CourseTitle:  "Programming Lab",
		ClassID:      "VL001",
		RoomNumber:   "SJT-101",
		Slot:         "L1+L2+L3+L4",
		EmployeeName: "Dr. Rao",
		CourseType:   "LO",
	}, courses[0])
	assert.Equal(t, "TH", courses[1].CourseType)
}

func TestParseAssistantsJoinsPrefixAndCoercesQuota(t *testing.T) {
	input := "Pfix,Name of the student,Emp Id,Ph.D Registartion Number,NUMBER OF LABS,REGISTERED SLOTS\n" +
		"Mr.,Arun Kumar,E100,PHD-1,3,A1;L7+TB1\n" +
		",Divya,E101,PHD-2,two,\n" +
		",Farah,E102,PHD-3, 2 labs ,L31\n"

	ras, err := ParseAssistants(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, ras, 3)

	assert.Equal(t, "Mr. Arun Kumar", ras[0].Name)
	assert.Equal(t, "PHD-1", ras[0].PhDRegNo)
	assert.Equal(t, models.Quota(3), ras[0].NumLabs)
	assert.Equal(t, "A1;L7+TB1", ras[0].RegisteredSlots)
	assert.Equal(t, "Divya", ras[1].Name)
	assert.Equal(t, models.Quota(0), ras[1].NumLabs)
	assert.Equal(t, models.Quota(2), ras[2].NumLabs)
}

func TestParseAssistantsAcceptsCorrectedHeaderSpelling(t *testing.T) {
	input := "Name of the Student,Emp Id,Ph.D Registration Number,NUMBER OF LABS\nLeela,E9,PHD-9,1\n"
	ras, err := ParseAssistants(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, ras, 1)
	assert.Equal(t, "PHD-9", ras[0].PhDRegNo)
}

func TestParseCoursesEmpty(t *testing.T) {
	_, err := ParseCourses(strings.NewReader(""))
	assert.True(t, errors.Is(err, ErrEmptyFile))

	_, err = ParseCourses(strings.NewReader("COURSE CODE,SLOT\n"))
	assert.True(t, errors.Is(err, ErrEmptyFile))
}

func TestLoadFromDisk(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "courses.csv")
	require.NoError(t, os.WriteFile(path, []byte(coursesCSV), 0o600))

	courses, err := LoadCourses(path)
	require.NoError(t, err)
	assert.Len(t, courses, 2)

	_, err = LoadAssistants(filepath.Join(dir, "missing.csv"))
	assert.Error(t, err)
}

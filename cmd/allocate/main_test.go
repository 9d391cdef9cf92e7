package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/ra-lab-allocator/internal/allocation"
	"github.com/noah-isme/ra-lab-allocator/internal/models"
)

const coursesCSV = `COURSE CODE,COURSE TITLE,SLOT,COURSE TYPE
CS101,Programming Lab,L1+L2,LO
CS101,Programming Lab,L3+L4,LO
CS102,Networks Lab,L5+L6,LO
CS103,Theory,A1,TH
`

const rasCSV = `NAME OF THE STUDENT,EMP ID,NUMBER OF LABS,REGISTERED SLOTS
Asha,E1,2,
Ravi,E2,1,L5
`

func writeInputs(t *testing.T) (string, string) {
	t.Helper()
	dir := t.TempDir()
	courses := filepath.Join(dir, "courses.csv")
	ras := filepath.Join(dir, "ras.csv")
	require.NoError(t, os.WriteFile(courses, []byte(coursesCSV), 0o600))
	require.NoError(t, os.WriteFile(ras, []byte(rasCSV), 0o600))
	return courses, ras
}

func TestRunIsDeterministicForSeed(t *testing.T) {
	courses, ras := writeInputs(t)

	var first, second, stderr bytes.Buffer
	require.NoError(t, run([]string{"--courses", courses, "--ras", ras, "--seed", "7", "--workers", "1"}, &first, &stderr))
	require.NoError(t, run([]string{"--courses", courses, "--ras", ras, "--seed", "7", "--workers", "4"}, &second, &stderr))

	assert.Equal(t, first.String(), second.String())

	var out output
	require.NoError(t, json.Unmarshal(first.Bytes(), &out))
	assert.EqualValues(t, 7, out.Seed)
	assert.NotEmpty(t, out.Allocations)
	for _, row := range out.Allocations {
		assert.NotEqual(t, "CS103", row.CourseCode)
	}
	assert.Contains(t, stderr.String(), "seed 7:")
}

func TestRunWritesOutFile(t *testing.T) {
	courses, ras := writeInputs(t)
	outPath := filepath.Join(t.TempDir(), "result.json")

	var stdout, stderr bytes.Buffer
	require.NoError(t, run([]string{"--courses", courses, "--ras", ras, "--seed", "1", "-o", outPath}, &stdout, &stderr))

	assert.Empty(t, stdout.String())
	data, err := os.ReadFile(outPath)
	require.NoError(t, err)
	var out output
	require.NoError(t, json.Unmarshal(data, &out))
	assert.EqualValues(t, 1, out.Seed)
}

func TestRunRequiresInputs(t *testing.T) {
	var stdout, stderr bytes.Buffer
	err := run([]string{"--courses", "only.csv"}, &stdout, &stderr)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "required")
}

func TestRunReportsMissingFile(t *testing.T) {
	var stdout, stderr bytes.Buffer
	err := run([]string{"--courses", "nope.csv", "--ras", "nope.csv"}, &stdout, &stderr)
	assert.Error(t, err)
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"LO", "ELA"}, splitList(" LO, ,ELA "))
	assert.Nil(t, splitList(""))
}

func TestSummarizeCountsUnallocatedRows(t *testing.T) {
	result := allocation.Result{
		Allocations: []models.Allocation{
			{RAName: "Asha", EmpID: "E1", NumLabsReq: 1, CourseCode: "CS101", Slot: "L1+L2"},
		},
		Unallocated: []models.Allocation{
			{CourseCode: "CS102", Slot: "L5+L6"},
			{CourseCode: "CS102", Slot: "L7+L8"},
		},
		PoolSize: 3,
	}
	ras := []models.Assistant{{Name: "Asha", EmpID: "E1", NumLabs: 1}}

	stats := summarize(result, ras, nil, allocation.DefaultBand())

	assert.Equal(t, 1, stats.TotalAllocations)
	assert.Equal(t, 2, stats.TotalUnallocated)

	var stderr bytes.Buffer
	printStats(&stderr, stats, result)
	assert.Contains(t, stderr.String(), "1 of 3 lab units allocated, 2 unallocated")
}

func TestWriteOutputReportsFileErrors(t *testing.T) {
	missingDir := filepath.Join(t.TempDir(), "absent", "result.json")
	err := writeOutput(missingDir, &bytes.Buffer{}, output{Seed: 1})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "create output")
}

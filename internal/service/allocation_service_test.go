package service

import (
	"context"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/ra-lab-allocator/internal/allocation"
	"github.com/noah-isme/ra-lab-allocator/internal/dto"
	"github.com/noah-isme/ra-lab-allocator/internal/models"
	appErrors "github.com/noah-isme/ra-lab-allocator/pkg/errors"
)

func newAllocationServiceForTest(cfg AllocationServiceConfig) (*AllocationService, *MetricsService) {
	metrics := NewMetricsService()
	engine := allocation.NewEngine(allocation.Config{Workers: 2})
	return NewAllocationService(engine, nil, nil, metrics, zap.NewNop(), cfg), metrics
}

func sampleAllocateRequest(seed uint64) dto.AllocateRequest {
	return dto.AllocateRequest{
		Courses: []dto.CourseInput{
			{CourseCode: "CS101", CourseTitle: "Programming", Slot: "L1+L2+L3+L4", CourseType: "LO"},
			{CourseCode: "CS102", CourseTitle: "Data Structures", Slot: "L5+L6", CourseType: "LO"},
			{CourseCode: "CS103", CourseTitle: "Theory Only", Slot: "A1", CourseType: "TH"},
		},
		Assistants: []dto.AssistantInput{
			{Name: "Asha", EmpID: "E1", NumLabs: 2},
			{Name: "Ravi", EmpID: "E2", NumLabs: 1, RegisteredSlots: "L5"},
		},
		Seed: &seed,
	}
}

func TestAllocationServiceAllocate(t *testing.T) {
	svc, metrics := newAllocationServiceForTest(AllocationServiceConfig{})

	resp, err := svc.Allocate(context.Background(), sampleAllocateRequest(42))
	require.NoError(t, err)
	assert.Equal(t, uint64(42), resp.Seed)
	assert.Equal(t, 3, resp.PoolSize)
	assert.Len(t, resp.Allocations, 3)
	assert.Equal(t, 2, resp.Stats.TotalRAs)
	assert.Equal(t, 3, resp.Stats.TotalAllocations)

	courses := map[string]struct{}{}
	for _, row := range resp.Allocations {
		if row.RAName == "Asha" {
			courses[row.CourseCode] = struct{}{}
		}
	}
	assert.Len(t, courses, 2)
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.allocationRuns.WithLabelValues(SourceJSON)))
}

func TestAllocationServiceSeedIsReproducible(t *testing.T) {
	svc, _ := newAllocationServiceForTest(AllocationServiceConfig{})

	first, err := svc.Allocate(context.Background(), sampleAllocateRequest(7))
	require.NoError(t, err)
	second, err := svc.Allocate(context.Background(), sampleAllocateRequest(7))
	require.NoError(t, err)
	assert.Equal(t, first.Allocations, second.Allocations)
	assert.Equal(t, first.UnallocatedLabs, second.UnallocatedLabs)
}

func TestAllocationServiceValidation(t *testing.T) {
	svc, _ := newAllocationServiceForTest(AllocationServiceConfig{})

	_, err := svc.Allocate(context.Background(), dto.AllocateRequest{})
	require.Error(t, err)
	assert.ErrorIs(t, err, appErrors.ErrValidation)

	req := sampleAllocateRequest(1)
	req.Assistants[0].Name = ""
	_, err = svc.Allocate(context.Background(), req)
	assert.ErrorIs(t, err, appErrors.ErrValidation)
}

func TestAllocationServiceLimits(t *testing.T) {
	svc, _ := newAllocationServiceForTest(AllocationServiceConfig{MaxAssistants: 1})

	_, err := svc.Allocate(context.Background(), sampleAllocateRequest(1))
	require.Error(t, err)
	assert.ErrorIs(t, err, appErrors.ErrPayloadTooLarge)
	assert.Contains(t, err.Error(), "too many assistants")
}

func TestAllocationServiceSlotMapOverride(t *testing.T) {
	svc, _ := newAllocationServiceForTest(AllocationServiceConfig{})

	req := sampleAllocateRequest(3)
	req.Courses = req.Courses[1:2]
	req.Assistants = []dto.AssistantInput{{Name: "Asha", NumLabs: 1, RegisteredSlots: "X9"}}
	req.SlotMap = map[string]string{"L5": "X9"}

	out, err := svc.Execute(context.Background(), SourceJSON, req)
	require.NoError(t, err)
	assert.Equal(t, "X9", out.SlotMap["L5"])
	require.Len(t, out.Response.Allocations, 1)
	assert.Equal(t, 1, out.Response.Stats.TotalClashes)
}

func TestAllocationServiceAllocateUpload(t *testing.T) {
	svc, metrics := newAllocationServiceForTest(AllocationServiceConfig{})

	courses := "COURSE CODE,COURSE TITLE,SLOT,COURSE TYPE\nCS101,Programming,L1+L2,LO\n"
	ras := "Name of the Student,Emp Id,NUMBER OF LABS,REGISTERED SLOTS\nAsha,E1,1,\n"
	seed := uint64(9)

	resp, err := svc.AllocateUpload(context.Background(), strings.NewReader(courses), strings.NewReader(ras), &seed)
	require.NoError(t, err)
	require.Len(t, resp.Allocations, 1)
	assert.Equal(t, "Asha", resp.Allocations[0].RAName)
	assert.Equal(t, "L1+L2", resp.Allocations[0].Slot)
	assert.Empty(t, resp.UnallocatedLabs)
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.allocationRuns.WithLabelValues(SourceUpload)))
}

func TestAllocationServiceAllocateUploadRejectsEmpty(t *testing.T) {
	svc, _ := newAllocationServiceForTest(AllocationServiceConfig{})

	_, err := svc.AllocateUpload(context.Background(), strings.NewReader(""), strings.NewReader("x"), nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, appErrors.ErrValidation)
	assert.Contains(t, err.Error(), "invalid courses file")
}

func TestAllocationServiceCancelledContext(t *testing.T) {
	svc, _ := newAllocationServiceForTest(AllocationServiceConfig{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.Allocate(ctx, sampleAllocateRequest(1))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestAllocationServiceSlotMapDefault(t *testing.T) {
	svc, _ := newAllocationServiceForTest(AllocationServiceConfig{})
	mapping := svc.SlotMap()
	assert.Equal(t, models.SlotMapping(allocation.DefaultSlotMap().Model()), mapping)
}

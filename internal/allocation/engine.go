package allocation

import (
	"math/rand/v2"
	"runtime"
	"strconv"
	"time"

	"github.com/sourcegraph/conc/iter"
	"github.com/zeebo/xxh3"
	"go.uber.org/zap"

	"github.com/noah-isme/ra-lab-allocator/internal/models"
)

// Config tunes an Engine.
type Config struct {
	Band     Band
	LabTypes []string
	// Workers caps concurrent per-assistant selection. Zero uses GOMAXPROCS.
	Workers int
	// Seed fixes the run seed for unseeded calls to Allocate.
	Seed   *uint64
	Logger *zap.Logger
}

// Result is the outcome of one allocation run.
type Result struct {
	Allocations []models.Allocation `json:"allocations"`
	Unallocated []models.Allocation `json:"unallocatedLabs"`
	Seed        uint64              `json:"seed"`
	PoolSize    int                 `json:"poolSize"`
}

// Engine runs the allocation procedure.
type Engine struct {
	band     Band
	labTypes []string
	workers  int
	seed     *uint64
	logger   *zap.Logger
}

// NewEngine builds an engine, filling unset options with defaults.
func NewEngine(cfg Config) *Engine {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if len(cfg.LabTypes) == 0 {
		cfg.LabTypes = DefaultLabTypes
	}
	if cfg.Workers <= 0 {
		cfg.Workers = runtime.GOMAXPROCS(0)
	}
	return &Engine{
		band:     cfg.Band.normalized(),
		labTypes: cfg.LabTypes,
		workers:  cfg.Workers,
		seed:     cfg.Seed,
		logger:   cfg.Logger,
	}
}

// Band returns the diversity band in effect.
func (e *Engine) Band() Band { return e.band }

// Allocate runs with the configured seed, or a freshly drawn one. The seed
// used is reported on the result.
func (e *Engine) Allocate(courses []models.Course, ras []models.Assistant, slots SlotMap) Result {
	seed := rand.Uint64()
	if e.seed != nil {
		seed = *e.seed
	}
	return e.Run(courses, ras, slots, seed)
}

// Run allocates lab sessions to every assistant. Equal inputs and seed give
// identical output regardless of the worker count.
func (e *Engine) Run(courses []models.Course, ras []models.Assistant, slots SlotMap, seed uint64) Result {
	start := time.Now()
	if slots == nil {
		slots = DefaultSlotMap()
	}
	pool := BuildPool(courses, e.labTypes)
	p := picker{pool: pool, slots: slots, band: e.band}

	type job struct {
		index int
		ra    models.Assistant
	}
	jobs := make([]job, len(ras))
	for i, ra := range ras {
		jobs[i] = job{index: i, ra: ra}
	}

	mapper := iter.Mapper[job, []int]{MaxGoroutines: e.workers}
	picks := mapper.Map(jobs, func(j *job) []int {
		rng := rand.New(rand.NewPCG(seed, assistantSeed(seed, j.index, j.ra)))
		order := rng.Perm(pool.Len())
		return p.pick(j.ra.NumLabs.Int(), ParseBusySet(j.ra.RegisteredSlots), order)
	})

	result := Result{
		Allocations: make([]models.Allocation, 0, len(ras)),
		Unallocated: make([]models.Allocation, 0),
		Seed:        seed,
		PoolSize:    pool.Len(),
	}
	received := make([]bool, pool.Len())
	for i, indices := range picks {
		for _, idx := range indices {
			received[idx] = true
			result.Allocations = append(result.Allocations, assignedRow(ras[i], pool.At(idx)))
		}
	}
	for idx, ok := range received {
		if !ok {
			result.Unallocated = append(result.Unallocated, unallocatedRow(pool.At(idx)))
		}
	}

	e.logger.Debug("allocation run complete",
		zap.Uint64("seed", seed),
		zap.Int("assistants", len(ras)),
		zap.Int("pool_units", pool.Len()),
		zap.Int("allocations", len(result.Allocations)),
		zap.Int("unallocated", len(result.Unallocated)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return result
}

// Allocate runs the default engine with a random seed and returns only the
// assigned rows.
func Allocate(courses []models.Course, ras []models.Assistant, slots SlotMap) []models.Allocation {
	return NewEngine(Config{}).Allocate(courses, ras, slots).Allocations
}

// assistantSeed derives the stream for one assistant from the run seed and
// the assistant's identity, so results do not depend on scheduling order.
func assistantSeed(seed uint64, index int, ra models.Assistant) uint64 {
	key := ra.EmpID + "\x00" + ra.Name + "\x00" + strconv.Itoa(index)
	return xxh3.HashStringSeed(key, seed)
}

func assignedRow(ra models.Assistant, unit models.SessionUnit) models.Allocation {
	row := courseRow(unit)
	row.RAName = ra.Name
	row.EmpID = ra.EmpID
	row.PhDRegNo = ra.PhDRegNo
	row.NumLabsReq = ra.NumLabs.Int()
	row.RegisteredSlots = ra.RegisteredSlots
	return row
}

func unallocatedRow(unit models.SessionUnit) models.Allocation {
	row := courseRow(unit)
	row.Comments = models.CommentUnallocated
	return row
}

func courseRow(unit models.SessionUnit) models.Allocation {
	c := unit.Course
	return models.Allocation{
		CourseCode:     c.CourseCode,
		CourseTitle:    c.CourseTitle,
		CourseOwner:    c.CourseOwner,
		ClassID:        c.ClassID,
		RoomNumber:     c.RoomNumber,
		Slot:           unit.Slot,
		EmployeeName:   c.EmployeeName,
		EmployeeSchool: c.EmployeeSchool,
		CourseMode:     c.CourseMode,
		CourseType:     c.CourseType,
	}
}

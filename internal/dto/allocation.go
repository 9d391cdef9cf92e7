package dto

import "github.com/noah-isme/ra-lab-allocator/internal/models"

// CourseInput is one row of the course catalog.
type CourseInput struct {
	CourseCode     string `json:"courseCode" validate:"required"`
	CourseTitle    string `json:"courseTitle"`
	CourseOwner    string `json:"courseOwner"`
	ClassID        string `json:"classId"`
	RoomNumber     string `json:"roomNumber"`
	Slot           string `json:"slot"`
	EmployeeName   string `json:"employeeName"`
	EmployeeSchool string `json:"employeeSchool"`
	CourseMode     string `json:"courseMode"`
	CourseType     string `json:"courseType"`
}

// Model converts the input row.
func (c CourseInput) Model() models.Course {
	return models.Course{
		CourseCode:     c.CourseCode,
		CourseTitle:    c.CourseTitle,
		CourseOwner:    c.CourseOwner,
		ClassID:        c.ClassID,
		RoomNumber:     c.RoomNumber,
		Slot:           c.Slot,
		EmployeeName:   c.EmployeeName,
		EmployeeSchool: c.EmployeeSchool,
		CourseMode:     c.CourseMode,
		CourseType:     c.CourseType,
	}
}

// AssistantInput is one row of the RA roster. numLabs accepts numbers and
// numeric strings.
type AssistantInput struct {
	Name            string       `json:"name" validate:"required"`
	EmpID           string       `json:"empId"`
	PhDRegNo        string       `json:"phdRegNo"`
	NumLabs         models.Quota `json:"numLabs"`
	RegisteredSlots string       `json:"registeredSlots"`
}

// Model converts the input row.
func (a AssistantInput) Model() models.Assistant {
	return models.Assistant{
		Name:            a.Name,
		EmpID:           a.EmpID,
		PhDRegNo:        a.PhDRegNo,
		NumLabs:         a.NumLabs,
		RegisteredSlots: a.RegisteredSlots,
	}
}

// AllocateRequest captures POST /allocations payload.
type AllocateRequest struct {
	Courses    []CourseInput     `json:"courses" validate:"required,min=1,dive"`
	Assistants []AssistantInput  `json:"assistants" validate:"required,min=1,dive"`
	SlotMap    map[string]string `json:"slotMap,omitempty"`
	Seed       *uint64           `json:"seed,omitempty"`
}

// CourseModels converts the catalog rows.
func (r AllocateRequest) CourseModels() []models.Course {
	out := make([]models.Course, len(r.Courses))
	for i, c := range r.Courses {
		out[i] = c.Model()
	}
	return out
}

// AssistantModels converts the roster rows.
func (r AllocateRequest) AssistantModels() []models.Assistant {
	out := make([]models.Assistant, len(r.Assistants))
	for i, a := range r.Assistants {
		out[i] = a.Model()
	}
	return out
}

// AllocationResponse is returned by every allocation endpoint.
type AllocationResponse struct {
	Allocations     []models.Allocation    `json:"allocations"`
	UnallocatedLabs []models.Allocation    `json:"unallocatedLabs"`
	Seed            uint64                 `json:"seed"`
	PoolSize        int                    `json:"poolSize"`
	Stats           models.AllocationStats `json:"stats"`
}

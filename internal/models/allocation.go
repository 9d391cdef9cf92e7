package models

// CommentUnallocated marks pool units no assistant received.
const CommentUnallocated = "Unallocated"

// SessionUnit is one allocatable lab session: up to two consecutive lab hours
// of a single course offering.
type SessionUnit struct {
	Course Course   `json:"course"`
	Slot   string   `json:"slot"`
	Hours  []string `json:"hours"`
}

// Allocation is one output row: an assistant paired with a lab session, or an
// unassigned session when RAName is empty.
type Allocation struct {
	RAName          string `json:"raName" csv:"RA NAME"`
	EmpID           string `json:"empId" csv:"EMP ID"`
	PhDRegNo        string `json:"phdRegNo" csv:"PHD REG NO"`
	NumLabsReq      int    `json:"numLabsReq" csv:"LABS REQUIRED"`
	RegisteredSlots string `json:"registeredSlots" csv:"REGISTERED SLOTS"`
	CourseCode      string `json:"courseCode" csv:"COURSE CODE"`
	CourseTitle     string `json:"courseTitle" csv:"COURSE TITLE"`
	CourseOwner     string `json:"courseOwner" csv:"COURSE OWNER"`
	ClassID         string `json:"classId" csv:"CLASS ID"`
	RoomNumber      string `json:"roomNumber" csv:"ROOM NUMBER"`
	Slot            string `json:"slot" csv:"SLOT"`
	EmployeeName    string `json:"employeeName" csv:"EMPLOYEE NAME"`
	EmployeeSchool  string `json:"employeeSchool" csv:"EMPLOYEE SCHOOL"`
	CourseMode      string `json:"courseMode" csv:"COURSE MODE"`
	CourseType      string `json:"courseType" csv:"COURSE TYPE"`
	Comments        string `json:"comments" csv:"COMMENTS"`
}

// Assigned reports whether the row belongs to an assistant.
func (a Allocation) Assigned() bool { return a.RAName != "" }

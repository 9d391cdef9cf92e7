package models

import "strings"

// Course is one row of the course catalog. Only lab offerings are allocated.
type Course struct {
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

// IsLab reports whether the trimmed course type equals one of the given lab
// types. The match is case-sensitive.
func (c Course) IsLab(labTypes []string) bool {
	kind := strings.TrimSpace(c.CourseType)
	for _, t := range labTypes {
		if kind == strings.TrimSpace(t) {
			return true
		}
	}
	return false
}

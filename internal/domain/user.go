package domain

import (
	"strconv"
	"time"
)

// NoDepartment is the department label used when a user or email cannot be
// attributed to a known department.
const NoDepartment = "No Department"

// Department is an organizational unit that users belong to.
type Department struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// User is a training-platform user who receives simulated phishing emails.
type User struct {
	ID                  int64       `json:"id"`
	Name                string      `json:"name"`
	Email               string      `json:"email"`
	DepartmentID        int64       `json:"department_id"`
	Department          *Department `json:"department,omitempty"`
	TrainingCompleted   bool        `json:"training_completed"`
	TrainingCompletedAt *time.Time  `json:"training_completed_at"`
}

// DepartmentName returns the name of the user's embedded department, or
// NoDepartment when the store did not resolve one.
func (u User) DepartmentName() string {
	if u.Department == nil || u.Department.Name == "" {
		return NoDepartment
	}
	return u.Department.Name
}

// UnknownUserName is the display name for a user id missing from the user list.
func UnknownUserName(id int64) string {
	return "User " + strconv.FormatInt(id, 10)
}

package analytics

import "github.com/ignite/phishing-dashboard/internal/domain"

// Attribution is who an email log belongs to after joining through the user
// list. Logs for users missing from the snapshot are still attributed.
type Attribution struct {
	UserName   string
	Department string
	Known      bool
}

// directory resolves user ids to display names and department names.
// Membership follows the user's department_id, the same join the heatmap
// uses, so a drill-down and its heatmap row always cover the same users.
type directory struct {
	users       map[int64]domain.User
	departments map[int64]string
	listed      map[string]bool
}

func newDirectory(users []domain.User, departments []domain.Department) directory {
	d := directory{
		users:       make(map[int64]domain.User, len(users)),
		departments: make(map[int64]string, len(departments)),
		listed:      make(map[string]bool, len(departments)),
	}
	for _, dept := range departments {
		d.departments[dept.ID] = dept.Name
		d.listed[dept.Name] = true
	}
	for _, u := range users {
		d.users[u.ID] = u
	}
	return d
}

// departmentOf returns the department name of a user. The department list
// entry for DepartmentID wins. The embedded department only names users whose
// department is not listed, and never borrows a listed department's name.
func (d directory) departmentOf(u domain.User) string {
	if name, ok := d.departments[u.DepartmentID]; ok && name != "" {
		return name
	}
	if u.Department != nil && u.Department.Name != "" && !d.listed[u.Department.Name] {
		return u.Department.Name
	}
	return domain.NoDepartment
}

func (d directory) attribute(log domain.EmailLog) Attribution {
	u, ok := d.users[log.UserID]
	if !ok {
		return Attribution{UserName: domain.UnknownUserName(log.UserID), Department: domain.NoDepartment}
	}
	return Attribution{UserName: u.Name, Department: d.departmentOf(u), Known: true}
}

// Attribute resolves the user and department of a single email log.
func Attribute(log domain.EmailLog, users []domain.User, departments []domain.Department) Attribution {
	return newDirectory(users, departments).attribute(log)
}

// logsForDepartment returns the logs whose user resolves to the department,
// preserving input order.
func (d directory) logsForDepartment(logs []domain.EmailLog, department string) []domain.EmailLog {
	out := make([]domain.EmailLog, 0)
	for _, l := range logs {
		if d.attribute(l).Department == department {
			out = append(out, l)
		}
	}
	return out
}

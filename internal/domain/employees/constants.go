package employees

import "strings"

// Role is the closed set of job roles stored on job_details.role.
type Role string

const (
	RoleUnassigned Role = ""
	RoleEmployee   Role = "EMP"
	RoleManager    Role = "MGR"
	RoleAdmin      Role = "ADM"
)

var roleLabels = map[Role]string{
	RoleUnassigned: "Unassigned",
	RoleEmployee:   "Employee",
	RoleManager:    "Manager",
	RoleAdmin:      "Administrator",
}

// Roles lists the assignable roles in display order.
func Roles() []Role {
	return []Role{RoleEmployee, RoleManager, RoleAdmin}
}

func ParseRole(raw string) (Role, bool) {
	role := Role(strings.ToUpper(strings.TrimSpace(raw)))
	_, ok := roleLabels[role]
	return role, ok
}

// IsProtected reports whether employees with this role may only be changed by
// callers holding the same role.
func (r Role) IsProtected() bool {
	return r == RoleAdmin
}

// IsManager reports whether the role grants the employee list/edit/delete pages.
func (r Role) IsManager() bool {
	return r == RoleManager || r == RoleAdmin
}

func (r Role) Label() string {
	if label, ok := roleLabels[r]; ok {
		return label
	}
	return string(r)
}

type Department string

const (
	DepartmentUnassigned Department = ""
	DepartmentHR         Department = "HR"
	DepartmentIT         Department = "IT"
	DepartmentFinance    Department = "FIN"
	DepartmentSales      Department = "SAL"
	DepartmentMarketing  Department = "MKT"
	DepartmentOperations Department = "OPS"
)

var departmentLabels = map[Department]string{
	DepartmentUnassigned: "Unassigned",
	DepartmentHR:         "Human Resources",
	DepartmentIT:         "Information Technology",
	DepartmentFinance:    "Finance",
	DepartmentSales:      "Sales",
	DepartmentMarketing:  "Marketing",
	DepartmentOperations: "Operations",
}

func Departments() []Department {
	return []Department{DepartmentHR, DepartmentIT, DepartmentFinance, DepartmentSales, DepartmentMarketing, DepartmentOperations}
}

func ParseDepartment(raw string) (Department, bool) {
	dep := Department(strings.ToUpper(strings.TrimSpace(raw)))
	_, ok := departmentLabels[dep]
	return dep, ok
}

// Label falls back to the stored code for values outside the enum.
func (d Department) Label() string {
	if label, ok := departmentLabels[d]; ok {
		return label
	}
	return string(d)
}

// DepartmentsMatching returns the departments whose label contains query,
// ignoring case. Search uses it so "finance" finds employees stored as FIN.
func DepartmentsMatching(query string) []string {
	needle := strings.ToLower(strings.TrimSpace(query))
	out := []string{}
	if needle == "" {
		return out
	}
	for _, dep := range Departments() {
		if strings.Contains(strings.ToLower(dep.Label()), needle) {
			out = append(out, string(dep))
		}
	}
	return out
}

const (
	MinRating        = 1
	MaxRating        = 5
	MaxCommentLength = 2000

	AuditActionRegister      = "employee.register"
	AuditActionProfileUpdate = "employee.profile_update"
	AuditActionUpdate        = "employee.update"
	AuditActionDelete        = "employee.delete"
	AuditEntityEmployee      = "employee"
)

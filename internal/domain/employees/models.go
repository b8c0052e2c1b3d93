package employees

import (
	"strings"
	"time"
)

type PersonalDetails struct {
	ID           string    `json:"id"`
	AccountID    string    `json:"accountId"`
	FirstName    string    `json:"firstName"`
	LastName     string    `json:"lastName"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	JobDetailsID string    `json:"jobDetailsId"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func (p PersonalDetails) FullName() string {
	return strings.TrimSpace(p.FirstName + " " + p.LastName)
}

type JobDetails struct {
	ID            string     `json:"id"`
	Role          Role       `json:"role"`
	Department    Department `json:"department"`
	PerformanceID string     `json:"performanceId"`
}

type Performance struct {
	ID         string     `json:"id"`
	ReviewDate *time.Time `json:"reviewDate,omitempty"`
	Rating     *int       `json:"rating,omitempty"`
	Comments   string     `json:"comments"`
}

// Record is one employee across all three tables.
type Record struct {
	Personal    PersonalDetails `json:"personal"`
	Job         JobDetails      `json:"job"`
	Performance *Performance    `json:"performance,omitempty"`
}

// Row is one line of the employee list.
type Row struct {
	Personal PersonalDetails `json:"personal"`
	Job      JobDetails      `json:"job"`
}

type Registration struct {
	FirstName string
	LastName  string
	Username  string
	Email     string
	Password  string
}

type ProfileUpdate struct {
	FirstName   string
	LastName    string
	Username    string
	Email       string
	NewPassword string
}

type EmployeeUpdate struct {
	Role       Role
	Department Department
	ReviewDate *time.Time
	Rating     *int
	Comments   string
}

type ListFilter struct {
	Search           string
	ExcludeProtected bool
	Limit            int
	Offset           int
}

type List struct {
	Employees []Row  `json:"employees"`
	Total     int    `json:"total"`
	SelfID    string `json:"selfId"`
}

type Dashboard struct {
	FirstName string
	Job       JobDetails
}

type Profile struct {
	Personal    PersonalDetails
	Job         JobDetails
	Performance Performance
}

// DeletePlan names every row removed for one employee.
type DeletePlan struct {
	AccountID     string
	PersonalID    string
	JobID         string
	PerformanceID string
}

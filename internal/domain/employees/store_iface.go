package employees

import "context"

type StoreAPI interface {
	CreateEmployee(ctx context.Context, reg Registration, passwordHash string) (Record, error)
	PersonalDetailsByUsername(ctx context.Context, username string) (PersonalDetails, error)
	JobDetailsByUsername(ctx context.Context, username string) (JobDetails, error)
	PerformanceByUsername(ctx context.Context, username string) (Performance, error)
	EmployeeByJobID(ctx context.Context, jobID string) (Record, error)
	AccountIDByUsername(ctx context.Context, username string) (string, error)
	UsernameTaken(ctx context.Context, username, exceptAccountID string) (bool, error)
	EmailTaken(ctx context.Context, email, exceptAccountID string) (bool, error)
	UpdateProfile(ctx context.Context, personal PersonalDetails, upd ProfileUpdate, passwordHash string) error
	ListEmployees(ctx context.Context, filter ListFilter) ([]Row, int, error)
	UpdateEmployee(ctx context.Context, rec Record, upd EmployeeUpdate) error
	DeleteEmployee(ctx context.Context, plan DeletePlan) error
	SetRole(ctx context.Context, jobID string, role Role) error
}

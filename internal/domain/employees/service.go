package employees

import (
	"context"
	"errors"
	"fmt"

	"staffdesk/internal/domain/auth"
)

const (
	DefaultPageSize = 25
	MaxPageSize     = 100
)

type Service struct {
	store StoreAPI
}

func NewService(store StoreAPI) *Service {
	return &Service{store: store}
}

// CheckAvailability reports which of username and email already belong to an
// account other than exceptAccountID. Both failures are joined so callers can
// surface each as its own field error.
func (s *Service) CheckAvailability(ctx context.Context, username, email, exceptAccountID string) error {
	var errs []error
	if username != "" {
		taken, err := s.store.UsernameTaken(ctx, username, exceptAccountID)
		if err != nil {
			return err
		}
		if taken {
			errs = append(errs, ErrUsernameTaken)
		}
	}
	if email != "" {
		taken, err := s.store.EmailTaken(ctx, email, exceptAccountID)
		if err != nil {
			return err
		}
		if taken {
			errs = append(errs, ErrEmailTaken)
		}
	}
	return errors.Join(errs...)
}

func (s *Service) Register(ctx context.Context, reg Registration) (Record, error) {
	if err := s.CheckAvailability(ctx, reg.Username, reg.Email, ""); err != nil {
		return Record{}, err
	}
	hash, err := auth.HashPassword(reg.Password)
	if err != nil {
		return Record{}, err
	}
	return s.store.CreateEmployee(ctx, reg, hash)
}

func (s *Service) Dashboard(ctx context.Context, identity auth.Identity) (Dashboard, error) {
	job, err := s.store.JobDetailsByUsername(ctx, identity.Username)
	if err != nil {
		return Dashboard{}, err
	}
	personal, err := s.store.PersonalDetailsByUsername(ctx, identity.Username)
	if err != nil {
		return Dashboard{}, err
	}
	return Dashboard{FirstName: personal.FirstName, Job: job}, nil
}

func (s *Service) Profile(ctx context.Context, identity auth.Identity) (Profile, error) {
	personal, err := s.store.PersonalDetailsByUsername(ctx, identity.Username)
	if err != nil {
		return Profile{}, err
	}
	job, err := s.store.JobDetailsByUsername(ctx, identity.Username)
	if err != nil {
		return Profile{}, err
	}
	perf, err := s.store.PerformanceByUsername(ctx, identity.Username)
	if err != nil {
		return Profile{}, err
	}
	return Profile{Personal: personal, Job: job, Performance: perf}, nil
}

func (s *Service) PersonalDetails(ctx context.Context, identity auth.Identity) (PersonalDetails, error) {
	return s.store.PersonalDetailsByUsername(ctx, identity.Username)
}

// UpdateProfile applies a self-service edit and returns the details as they
// were before the change.
func (s *Service) UpdateProfile(ctx context.Context, identity auth.Identity, upd ProfileUpdate) (PersonalDetails, error) {
	before, err := s.store.PersonalDetailsByUsername(ctx, identity.Username)
	if err != nil {
		return PersonalDetails{}, err
	}
	if err := s.CheckAvailability(ctx, upd.Username, upd.Email, before.AccountID); err != nil {
		return PersonalDetails{}, err
	}
	var hash string
	if upd.NewPassword != "" {
		hash, err = auth.HashPassword(upd.NewPassword)
		if err != nil {
			return PersonalDetails{}, err
		}
	}
	if err := s.store.UpdateProfile(ctx, before, upd, hash); err != nil {
		return PersonalDetails{}, err
	}
	return before, nil
}

func (s *Service) CallerJob(ctx context.Context, identity auth.Identity) (JobDetails, error) {
	return s.store.JobDetailsByUsername(ctx, identity.Username)
}

func (s *Service) IsManager(ctx context.Context, identity auth.Identity) (bool, error) {
	job, err := s.CallerJob(ctx, identity)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return job.Role.IsManager(), nil
}

// ListEmployees returns one page of the directory as the caller may see it.
func (s *Service) ListEmployees(ctx context.Context, identity auth.Identity, search string, limit, offset int) (List, error) {
	caller, err := s.CallerJob(ctx, identity)
	if err != nil {
		return List{}, err
	}
	if limit <= 0 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}
	if offset < 0 {
		offset = 0
	}
	rows, total, err := s.store.ListEmployees(ctx, ListFilter{
		Search:           search,
		ExcludeProtected: !caller.Role.IsProtected(),
		Limit:            limit,
		Offset:           offset,
	})
	if err != nil {
		return List{}, err
	}
	return List{Employees: rows, Total: total, SelfID: caller.ID}, nil
}

// ExportEmployees is ListEmployees without paging.
func (s *Service) ExportEmployees(ctx context.Context, identity auth.Identity, search string) ([]Row, error) {
	caller, err := s.CallerJob(ctx, identity)
	if err != nil {
		return nil, err
	}
	rows, _, err := s.store.ListEmployees(ctx, ListFilter{
		Search:           search,
		ExcludeProtected: !caller.Role.IsProtected(),
	})
	return rows, err
}

// Target loads the employee behind jobID and checks the caller may change it.
// The record is returned alongside ErrProtectedEmployee so pages can still
// name who was refused.
func (s *Service) Target(ctx context.Context, identity auth.Identity, jobID string) (Record, error) {
	rec, err := s.store.EmployeeByJobID(ctx, jobID)
	if err != nil {
		return Record{}, err
	}
	if err := s.authorizeTarget(ctx, identity, rec); err != nil {
		return rec, err
	}
	return rec, nil
}

func (s *Service) authorizeTarget(ctx context.Context, identity auth.Identity, rec Record) error {
	if !rec.Job.Role.IsProtected() {
		return nil
	}
	caller, err := s.CallerJob(ctx, identity)
	if err != nil {
		return err
	}
	if caller.Role != rec.Job.Role {
		return ErrProtectedEmployee
	}
	return nil
}

// UpdateEmployee saves a manager edit and returns the record as it was.
func (s *Service) UpdateEmployee(ctx context.Context, identity auth.Identity, jobID string, upd EmployeeUpdate) (Record, error) {
	rec, err := s.Target(ctx, identity, jobID)
	if err != nil {
		return rec, err
	}
	if upd.Role.IsProtected() && !rec.Job.Role.IsProtected() {
		caller, err := s.CallerJob(ctx, identity)
		if err != nil {
			return Record{}, err
		}
		if !caller.Role.IsProtected() {
			return rec, ErrRoleNotGrantable
		}
	}
	if err := s.store.UpdateEmployee(ctx, rec, upd); err != nil {
		return Record{}, err
	}
	return rec, nil
}

// DeleteEmployee removes the employee and its account, returning what was removed.
func (s *Service) DeleteEmployee(ctx context.Context, identity auth.Identity, jobID string) (Record, error) {
	rec, err := s.Target(ctx, identity, jobID)
	if err != nil {
		return rec, err
	}
	accountID, err := s.store.AccountIDByUsername(ctx, rec.Personal.Username)
	if err != nil {
		return Record{}, err
	}
	plan := DeletePlan{
		AccountID:  accountID,
		PersonalID: rec.Personal.ID,
		JobID:      rec.Job.ID,
	}
	if rec.Performance != nil {
		plan.PerformanceID = rec.Performance.ID
	} else {
		plan.PerformanceID = rec.Job.PerformanceID
	}
	if err := s.store.DeleteEmployee(ctx, plan); err != nil {
		return Record{}, fmt.Errorf("delete employee %s: %w", jobID, err)
	}
	return rec, nil
}

// Promote sets the role on the employee registered under username.
func (s *Service) Promote(ctx context.Context, username string, role Role) error {
	job, err := s.store.JobDetailsByUsername(ctx, username)
	if err != nil {
		return err
	}
	if job.Role == role {
		return nil
	}
	return s.store.SetRole(ctx, job.ID, role)
}

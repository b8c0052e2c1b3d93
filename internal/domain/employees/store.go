package employees

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

const personalColumns = `
  p.id, p.account_id, p.first_name, p.last_name, p.username, p.email, p.password_hash,
  p.job_details_id, p.created_at, p.updated_at`

func scanPersonal(row pgx.Row, extra ...any) (PersonalDetails, error) {
	var out PersonalDetails
	dest := []any{
		&out.ID, &out.AccountID, &out.FirstName, &out.LastName, &out.Username, &out.Email, &out.PasswordHash,
		&out.JobDetailsID, &out.CreatedAt, &out.UpdatedAt,
	}
	err := row.Scan(append(dest, extra...)...)
	return out, err
}

// CreateEmployee inserts the account, an empty performance row, job details
// pointing at it and personal details mirroring the account, all or nothing.
func (s *Store) CreateEmployee(ctx context.Context, reg Registration, passwordHash string) (Record, error) {
	tx, err := s.DB.Begin(ctx)
	if err != nil {
		return Record{}, err
	}
	defer tx.Rollback(ctx)

	var accountID string
	if err := tx.QueryRow(ctx, `
    INSERT INTO accounts (username, email, password_hash)
    VALUES ($1,$2,$3)
    RETURNING id
  `, reg.Username, reg.Email, passwordHash).Scan(&accountID); err != nil {
		return Record{}, mapUniqueViolation(err)
	}

	var rec Record
	perf := Performance{}
	if err := tx.QueryRow(ctx, "INSERT INTO performance DEFAULT VALUES RETURNING id").Scan(&perf.ID); err != nil {
		return Record{}, err
	}
	rec.Performance = &perf

	rec.Job = JobDetails{PerformanceID: perf.ID}
	if err := tx.QueryRow(ctx, `
    INSERT INTO job_details (performance_id)
    VALUES ($1)
    RETURNING id
  `, perf.ID).Scan(&rec.Job.ID); err != nil {
		return Record{}, err
	}

	rec.Personal, err = scanPersonal(tx.QueryRow(ctx, `
    INSERT INTO personal_details AS p (account_id, first_name, last_name, username, email, password_hash, job_details_id)
    VALUES ($1,$2,$3,$4,$5,$6,$7)
    RETURNING`+personalColumns,
		accountID, reg.FirstName, reg.LastName, reg.Username, reg.Email, passwordHash, rec.Job.ID))
	if err != nil {
		return Record{}, mapUniqueViolation(err)
	}

	if err := tx.Commit(ctx); err != nil {
		return Record{}, err
	}
	return rec, nil
}

func (s *Store) PersonalDetailsByUsername(ctx context.Context, username string) (PersonalDetails, error) {
	out, err := scanPersonal(s.DB.QueryRow(ctx, `
    SELECT`+personalColumns+`
    FROM personal_details p
    WHERE lower(p.username) = lower($1)
  `, username))
	if err != nil {
		return PersonalDetails{}, notFound(err, "personal details for "+username)
	}
	return out, nil
}

func (s *Store) JobDetailsByUsername(ctx context.Context, username string) (JobDetails, error) {
	var out JobDetails
	err := s.DB.QueryRow(ctx, `
    SELECT j.id, j.role, j.department, j.performance_id
    FROM job_details j
    JOIN personal_details p ON p.job_details_id = j.id
    WHERE lower(p.username) = lower($1)
  `, username).Scan(&out.ID, &out.Role, &out.Department, &out.PerformanceID)
	if err != nil {
		return JobDetails{}, notFound(err, "job details for "+username)
	}
	return out, nil
}

func (s *Store) PerformanceByUsername(ctx context.Context, username string) (Performance, error) {
	var out Performance
	err := s.DB.QueryRow(ctx, `
    SELECT pf.id, pf.review_date, pf.rating, pf.comments
    FROM performance pf
    JOIN job_details j ON j.performance_id = pf.id
    JOIN personal_details p ON p.job_details_id = j.id
    WHERE lower(p.username) = lower($1)
  `, username).Scan(&out.ID, &out.ReviewDate, &out.Rating, &out.Comments)
	if err != nil {
		return Performance{}, notFound(err, "performance for "+username)
	}
	return out, nil
}

func (s *Store) EmployeeByJobID(ctx context.Context, jobID string) (Record, error) {
	var rec Record
	var perfID, comments *string
	var perf Performance
	personal, err := scanPersonal(s.DB.QueryRow(ctx, `
    SELECT`+personalColumns+`,
           j.id, j.role, j.department, j.performance_id,
           pf.id, pf.review_date, pf.rating, pf.comments
    FROM personal_details p
    JOIN job_details j ON j.id = p.job_details_id
    LEFT JOIN performance pf ON pf.id = j.performance_id
    WHERE j.id::text = $1
  `, jobID),
		&rec.Job.ID, &rec.Job.Role, &rec.Job.Department, &rec.Job.PerformanceID,
		&perfID, &perf.ReviewDate, &perf.Rating, &comments,
	)
	if err != nil {
		return Record{}, notFound(err, "employee "+jobID)
	}
	rec.Personal = personal
	if perfID != nil {
		perf.ID = *perfID
		if comments != nil {
			perf.Comments = *comments
		}
		rec.Performance = &perf
	}
	return rec, nil
}

func (s *Store) AccountIDByUsername(ctx context.Context, username string) (string, error) {
	var id string
	if err := s.DB.QueryRow(ctx, "SELECT id FROM accounts WHERE lower(username) = lower($1)", username).Scan(&id); err != nil {
		return "", notFound(err, "account "+username)
	}
	return id, nil
}

func (s *Store) UsernameTaken(ctx context.Context, username, exceptAccountID string) (bool, error) {
	return s.exists(ctx, "SELECT COUNT(1) FROM accounts WHERE lower(username) = lower($1) AND id::text <> $2", username, exceptAccountID)
}

func (s *Store) EmailTaken(ctx context.Context, email, exceptAccountID string) (bool, error) {
	return s.exists(ctx, "SELECT COUNT(1) FROM accounts WHERE lower(email) = lower($1) AND id::text <> $2", email, exceptAccountID)
}

func (s *Store) exists(ctx context.Context, query string, args ...any) (bool, error) {
	var count int
	if err := s.DB.QueryRow(ctx, query, args...).Scan(&count); err != nil {
		return false, err
	}
	return count > 0, nil
}

// UpdateProfile writes personal details and propagates username, email and an
// optional new password hash to the account in the same transaction.
func (s *Store) UpdateProfile(ctx context.Context, personal PersonalDetails, upd ProfileUpdate, passwordHash string) error {
	tx, err := s.DB.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if passwordHash == "" {
		passwordHash = personal.PasswordHash
	}

	cmd, err := tx.Exec(ctx, `
    UPDATE personal_details
    SET first_name = $1,
        last_name = $2,
        username = $3,
        email = $4,
        password_hash = $5,
        updated_at = now()
    WHERE id = $6
  `, upd.FirstName, upd.LastName, upd.Username, upd.Email, passwordHash, personal.ID)
	if err != nil {
		return mapUniqueViolation(err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}

	cmd, err = tx.Exec(ctx, `
    UPDATE accounts
    SET username = $1,
        email = $2,
        password_hash = $3,
        updated_at = now()
    WHERE id = $4
  `, upd.Username, upd.Email, passwordHash, personal.AccountID)
	if err != nil {
		return mapUniqueViolation(err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}

	return tx.Commit(ctx)
}

func (s *Store) ListEmployees(ctx context.Context, filter ListFilter) ([]Row, int, error) {
	countQuery, countArgs := buildListQuery("SELECT COUNT(1)", filter)
	var total int
	if err := s.DB.QueryRow(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query, args := buildListQuery("SELECT"+personalColumns+", j.id, j.role, j.department, j.performance_id", filter)
	query += " ORDER BY p.last_name, p.first_name, p.id"
	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
		args = append(args, filter.Limit, filter.Offset)
	}

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := []Row{}
	for rows.Next() {
		var row Row
		personal, err := scanPersonal(rows, &row.Job.ID, &row.Job.Role, &row.Job.Department, &row.Job.PerformanceID)
		if err != nil {
			return nil, 0, err
		}
		row.Personal = personal
		out = append(out, row)
	}
	return out, total, rows.Err()
}

func buildListQuery(prefix string, filter ListFilter) (string, []any) {
	query := prefix + " FROM personal_details p JOIN job_details j ON j.id = p.job_details_id WHERE 1=1"
	args := []any{}
	if filter.ExcludeProtected {
		query += fmt.Sprintf(" AND j.role <> $%d", len(args)+1)
		args = append(args, string(RoleAdmin))
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		pattern := "%" + escapeLike(search) + "%"
		patternPos := len(args) + 1
		codesPos := len(args) + 2
		query += fmt.Sprintf(
			" AND (p.first_name ILIKE $%d OR p.last_name ILIKE $%d OR j.department ILIKE $%d OR j.department = ANY($%d))",
			patternPos, patternPos, patternPos, codesPos,
		)
		args = append(args, pattern, DepartmentsMatching(search))
	}
	return query, args
}

func escapeLike(value string) string {
	replacer := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return replacer.Replace(value)
}

// UpdateEmployee saves role and department, then copies the review fields onto
// the existing performance row when there is one.
func (s *Store) UpdateEmployee(ctx context.Context, rec Record, upd EmployeeUpdate) error {
	tx, err := s.DB.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	cmd, err := tx.Exec(ctx, `
    UPDATE job_details
    SET role = $1, department = $2, updated_at = now()
    WHERE id = $3
  `, string(upd.Role), string(upd.Department), rec.Job.ID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}

	if rec.Performance != nil {
		if _, err := tx.Exec(ctx, `
      UPDATE performance
      SET review_date = $1, rating = $2, comments = $3, updated_at = now()
      WHERE id = $4
    `, upd.ReviewDate, upd.Rating, upd.Comments, rec.Performance.ID); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

// DeleteEmployee removes every row of one employee. Rows go child-first so the
// foreign keys hold at each statement.
func (s *Store) DeleteEmployee(ctx context.Context, plan DeletePlan) error {
	tx, err := s.DB.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	steps := []struct {
		query string
		id    string
	}{
		{"DELETE FROM personal_details WHERE id = $1", plan.PersonalID},
		{"DELETE FROM job_details WHERE id = $1", plan.JobID},
		{"DELETE FROM performance WHERE id = $1", plan.PerformanceID},
		{"DELETE FROM sessions WHERE account_id = $1", plan.AccountID},
		{"DELETE FROM accounts WHERE id = $1", plan.AccountID},
	}
	for _, step := range steps {
		if step.id == "" {
			continue
		}
		if _, err := tx.Exec(ctx, step.query, step.id); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

func (s *Store) SetRole(ctx context.Context, jobID string, role Role) error {
	cmd, err := s.DB.Exec(ctx, "UPDATE job_details SET role = $1, updated_at = now() WHERE id = $2", string(role), jobID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func notFound(err error, what string) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%s: %w", what, ErrNotFound)
	}
	return err
}

func mapUniqueViolation(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != "23505" {
		return err
	}
	switch pgErr.ConstraintName {
	case "accounts_email_key":
		return ErrEmailTaken
	case "accounts_username_key", "personal_details_username_key":
		return ErrUsernameTaken
	}
	return err
}

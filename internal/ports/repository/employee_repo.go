package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"salescrm.service/internal/core/model"
)

// EmployeeRepo is the concrete employee store for a PostgreSQL database.
type EmployeeRepo struct {
	DB *sql.DB
}

// NewEmployeeRepository create new instance
func NewEmployeeRepository(db *sql.DB) EmployeeRepository {
	return &EmployeeRepo{DB: db}
}

const employeeColumns = `id, code, first_name, last_name, email, locations, languages,
	status, is_online, active_tab_count, last_seen, last_tab_closed_at, created_at`

func scanEmployee(row interface{ Scan(...any) error }) (*model.Employee, error) {
	e := &model.Employee{}
	err := row.Scan(&e.ID, &e.Code, &e.FirstName, &e.LastName, &e.Email,
		(*textArray)(&e.Locations), (*textArray)(&e.Languages), &e.Status, &e.IsOnline,
		&e.ActiveTabCount, &e.LastSeen, &e.LastTabClosedAt, &e.CreatedAt)
	if err != nil {
		return nil, err
	}
	return e, nil
}

func (r *EmployeeRepo) queryEmployees(ctx context.Context, query string, args ...any) ([]model.Employee, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Employee
	for rows.Next() {
		e, err := scanEmployee(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *e)
	}
	return out, rows.Err()
}

// Create inserts a new employee, generating its id when absent.
func (r *EmployeeRepo) Create(ctx context.Context, e *model.Employee) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	query := `INSERT INTO employees (id, code, first_name, last_name, email, locations, languages, status, is_online, active_tab_count, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := r.DB.ExecContext(ctx, query, e.ID, e.Code, e.FirstName, e.LastName,
		e.Email, textArray(e.Locations), textArray(e.Languages), e.Status, e.IsOnline, e.ActiveTabCount, e.CreatedAt)
	return err
}

func (r *EmployeeRepo) GetByID(ctx context.Context, id string) (*model.Employee, error) {
	trace.SpanFromContext(ctx).SetAttributes(attribute.String("app.employeeId", id))

	query := `SELECT ` + employeeColumns + ` FROM employees WHERE id = $1`
	e, err := scanEmployee(r.DB.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return e, err
}

func (r *EmployeeRepo) GetByEmail(ctx context.Context, email string) (*model.Employee, error) {
	query := `SELECT ` + employeeColumns + ` FROM employees WHERE lower(email) = lower($1)`
	e, err := scanEmployee(r.DB.QueryRowContext(ctx, query, email))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return e, err
}

// FindActiveByName resolves the direct-assignment target for CSV imports.
func (r *EmployeeRepo) FindActiveByName(ctx context.Context, firstName, lastName string) (*model.Employee, error) {
	query := `SELECT ` + employeeColumns + ` FROM employees
	          WHERE lower(first_name) = lower($1) AND lower(last_name) = lower($2) AND status = $3
	          LIMIT 1`
	e, err := scanEmployee(r.DB.QueryRowContext(ctx, query, firstName, lastName, model.EmployeeActive))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return e, err
}

func (r *EmployeeRepo) List(ctx context.Context) ([]model.Employee, error) {
	return r.queryEmployees(ctx, `SELECT `+employeeColumns+` FROM employees ORDER BY first_name, last_name`)
}

func (r *EmployeeRepo) ListActive(ctx context.Context) ([]model.Employee, error) {
	return r.queryEmployees(ctx,
		`SELECT `+employeeColumns+` FROM employees WHERE status = $1 ORDER BY created_at`,
		model.EmployeeActive)
}

func (r *EmployeeRepo) ListActiveOnline(ctx context.Context) ([]model.Employee, error) {
	return r.queryEmployees(ctx,
		`SELECT `+employeeColumns+` FROM employees WHERE status = $1 AND is_online ORDER BY created_at`,
		model.EmployeeActive)
}

// ListActiveMatching uses array intersection on either dimension.
func (r *EmployeeRepo) ListActiveMatching(ctx context.Context, locations, languages []string) ([]model.Employee, error) {
	query := `SELECT ` + employeeColumns + ` FROM employees
	          WHERE status = $1 AND (locations && $2 OR languages && $3)
	          ORDER BY created_at`
	return r.queryEmployees(ctx, query, model.EmployeeActive, textArray(locations), textArray(languages))
}

func (r *EmployeeRepo) ListActiveExcept(ctx context.Context, excludeID string) ([]model.Employee, error) {
	return r.queryEmployees(ctx,
		`SELECT `+employeeColumns+` FROM employees WHERE status = $1 AND id <> $2 ORDER BY created_at`,
		model.EmployeeActive, excludeID)
}

func (r *EmployeeRepo) Update(ctx context.Context, e *model.Employee) error {
	query := `UPDATE employees
	          SET first_name = $1, last_name = $2, email = $3, locations = $4, languages = $5, status = $6
	          WHERE id = $7`
	_, err := r.DB.ExecContext(ctx, query, e.FirstName, e.LastName, e.Email,
		textArray(e.Locations), textArray(e.Languages), e.Status, e.ID)
	return err
}

func (r *EmployeeRepo) Delete(ctx context.Context, id string) error {
	_, err := r.DB.ExecContext(ctx, `DELETE FROM employees WHERE id = $1`, id)
	return err
}

// IncrementTabCount bumps the tab count, marks the employee online and clears
// the pending close timestamp, in one statement.
func (r *EmployeeRepo) IncrementTabCount(ctx context.Context, id string) (int, error) {
	trace.SpanFromContext(ctx).SetAttributes(attribute.String("app.employeeId", id))

	var count int
	query := `UPDATE employees
	          SET active_tab_count = active_tab_count + 1,
	              is_online = TRUE,
	              last_tab_closed_at = NULL
	          WHERE id = $1
	          RETURNING active_tab_count`
	err := r.DB.QueryRowContext(ctx, query, id).Scan(&count)
	if err == sql.ErrNoRows {
		return 0, sql.ErrNoRows
	}
	return count, err
}

// DecrementTabCount lowers the tab count (floored at zero), marks the employee
// offline when it reaches zero and stamps the close time.
func (r *EmployeeRepo) DecrementTabCount(ctx context.Context, id string, closedAt time.Time) (int, error) {
	trace.SpanFromContext(ctx).SetAttributes(attribute.String("app.employeeId", id))

	var count int
	query := `UPDATE employees
	          SET active_tab_count = GREATEST(active_tab_count - 1, 0),
	              is_online = GREATEST(active_tab_count - 1, 0) > 0,
	              last_tab_closed_at = $2
	          WHERE id = $1
	          RETURNING active_tab_count`
	err := r.DB.QueryRowContext(ctx, query, id, closedAt).Scan(&count)
	return count, err
}

func (r *EmployeeRepo) Heartbeat(ctx context.Context, id string, at time.Time) error {
	query := `UPDATE employees SET last_seen = $2, is_online = TRUE WHERE id = $1`
	_, err := r.DB.ExecContext(ctx, query, id, at)
	return err
}

func (r *EmployeeRepo) MarkCheckedIn(ctx context.Context, id string) error {
	query := `UPDATE employees
	          SET is_online = TRUE, active_tab_count = 1, last_tab_closed_at = NULL
	          WHERE id = $1`
	_, err := r.DB.ExecContext(ctx, query, id)
	return err
}

func (r *EmployeeRepo) MarkCheckedOut(ctx context.Context, id string) error {
	query := `UPDATE employees
	          SET is_online = FALSE, active_tab_count = 0
	          WHERE id = $1`
	_, err := r.DB.ExecContext(ctx, query, id)
	return err
}

func (r *EmployeeRepo) ListOfflineSince(ctx context.Context, threshold time.Time) ([]model.Employee, error) {
	query := `SELECT ` + employeeColumns + ` FROM employees
	          WHERE is_online = FALSE AND last_tab_closed_at IS NOT NULL AND last_tab_closed_at <= $1`
	return r.queryEmployees(ctx, query, threshold)
}

func (r *EmployeeRepo) CountOnline(ctx context.Context) (int, error) {
	var n int
	err := r.DB.QueryRowContext(ctx, `SELECT count(*) FROM employees WHERE is_online`).Scan(&n)
	return n, err
}

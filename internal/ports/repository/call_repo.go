package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"salescrm.service/internal/core/model"
)

// CallRepo is the concrete call store for a PostgreSQL database.
type CallRepo struct {
	DB *sql.DB
}

func NewCallRepository(db *sql.DB) CallRepository {
	return &CallRepo{DB: db}
}

const callColumns = `id, lead_id, employee_id, scheduled_time, call_type, status, notes, duration_minutes, outcome, created_at`

func scanCall(row interface{ Scan(...any) error }) (*model.Call, error) {
	c := &model.Call{}
	err := row.Scan(&c.ID, &c.LeadID, &c.EmployeeID, &c.ScheduledTime, &c.CallType,
		&c.Status, &c.Notes, &c.DurationMinutes, &c.Outcome, &c.CreatedAt)
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (r *CallRepo) Create(ctx context.Context, c *model.Call) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	query := `INSERT INTO calls (id, lead_id, employee_id, scheduled_time, call_type, status, notes, duration_minutes, outcome, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.DB.ExecContext(ctx, query, c.ID, c.LeadID, c.EmployeeID, c.ScheduledTime,
		c.CallType, c.Status, c.Notes, c.DurationMinutes, c.Outcome, c.CreatedAt)
	return err
}

func (r *CallRepo) GetByID(ctx context.Context, id string) (*model.Call, error) {
	c, err := scanCall(r.DB.QueryRowContext(ctx, `SELECT `+callColumns+` FROM calls WHERE id = $1`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return c, err
}

func (r *CallRepo) Update(ctx context.Context, c *model.Call) error {
	query := `UPDATE calls
	          SET scheduled_time = $1, call_type = $2, status = $3, notes = $4, duration_minutes = $5, outcome = $6
	          WHERE id = $7`
	_, err := r.DB.ExecContext(ctx, query, c.ScheduledTime, c.CallType, c.Status,
		c.Notes, c.DurationMinutes, c.Outcome, c.ID)
	return err
}

func (r *CallRepo) Delete(ctx context.Context, id string) error {
	_, err := r.DB.ExecContext(ctx, `DELETE FROM calls WHERE id = $1`, id)
	return err
}

func (r *CallRepo) List(ctx context.Context, f CallFilter) ([]model.Call, error) {
	query := `SELECT ` + callColumns + ` FROM calls`
	var where []string
	var args []any

	if f.EmployeeID != "" {
		args = append(args, f.EmployeeID)
		where = append(where, fmt.Sprintf("employee_id = $%d", len(args)))
	}
	if f.LeadID != "" {
		args = append(args, f.LeadID)
		where = append(where, fmt.Sprintf("lead_id = $%d", len(args)))
	}
	if f.Status != "" {
		args = append(args, f.Status)
		where = append(where, fmt.Sprintf("status = $%d", len(args)))
	}
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY scheduled_time"

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Call
	for rows.Next() {
		c, err := scanCall(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *c)
	}
	return out, rows.Err()
}

func (r *CallRepo) CountByEmployee(ctx context.Context, employeeID string) (int, error) {
	var n int
	err := r.DB.QueryRowContext(ctx, `SELECT count(*) FROM calls WHERE employee_id = $1`, employeeID).Scan(&n)
	return n, err
}

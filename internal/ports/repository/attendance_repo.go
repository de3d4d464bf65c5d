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

// AttendanceRepo is the concrete attendance store for a PostgreSQL database.
// Breaks live in their own table keyed by attendance id; the open break is the
// row with a NULL end_time, which keeps break transitions single-statement.
type AttendanceRepo struct {
	DB *sql.DB
}

// NewAttendanceRepository creates the attendance store on top of an open
// connection pool.
func NewAttendanceRepository(db *sql.DB) AttendanceRepository {
	return &AttendanceRepo{DB: db}
}

func (r *AttendanceRepo) GetForDay(ctx context.Context, employeeID string, day time.Time) (*model.Attendance, error) {
	trace.SpanFromContext(ctx).SetAttributes(attribute.String("app.employeeId", employeeID))

	a := &model.Attendance{}
	query := `SELECT id, employee_id, date, check_in, check_out, total_hours, status
	          FROM attendance
	          WHERE employee_id = $1 AND date = $2`
	err := r.DB.QueryRowContext(ctx, query, employeeID, model.DayTruncate(day)).
		Scan(&a.ID, &a.EmployeeID, &a.Date, &a.CheckIn, &a.CheckOut, &a.TotalHours, &a.Status)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if err := r.loadBreaks(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

// UpsertCheckIn relies on the unique (employee_id, date) key: a concurrent
// duplicate check-in collapses into the DO UPDATE branch, which never touches
// the original check_in time.
func (r *AttendanceRepo) UpsertCheckIn(ctx context.Context, employeeID string, day, checkIn time.Time) (*model.Attendance, error) {
	trace.SpanFromContext(ctx).SetAttributes(attribute.String("app.employeeId", employeeID))

	a := &model.Attendance{}
	query := `INSERT INTO attendance (id, employee_id, date, check_in, status)
	          VALUES ($1, $2, $3, $4, $5)
	          ON CONFLICT (employee_id, date)
	          DO UPDATE SET status = $5
	          RETURNING id, employee_id, date, check_in, check_out, total_hours, status`
	err := r.DB.QueryRowContext(ctx, query, uuid.NewString(), employeeID,
		model.DayTruncate(day), checkIn, model.AttendanceActive).
		Scan(&a.ID, &a.EmployeeID, &a.Date, &a.CheckIn, &a.CheckOut, &a.TotalHours, &a.Status)
	if err != nil {
		return nil, err
	}

	if err := r.loadBreaks(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

func (r *AttendanceRepo) SetCheckOut(ctx context.Context, id string, checkOut time.Time, totalHours float64) error {
	query := `UPDATE attendance
	          SET check_out = $1,
	              total_hours = $2,
	              status = $3
	          WHERE id = $4`
	_, err := r.DB.ExecContext(ctx, query, checkOut, totalHours, model.AttendanceInactive, id)
	return err
}

// StartBreak opens a break only when none is open. The NOT EXISTS predicate
// makes concurrent duplicate starts lose cleanly (zero rows inserted).
func (r *AttendanceRepo) StartBreak(ctx context.Context, attendanceID string, start time.Time) (bool, error) {
	query := `INSERT INTO attendance_breaks (attendance_id, start_time)
	          SELECT $1, $2
	          WHERE NOT EXISTS (
	              SELECT 1 FROM attendance_breaks
	              WHERE attendance_id = $1 AND end_time IS NULL
	          )`
	res, err := r.DB.ExecContext(ctx, query, attendanceID, start)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// EndBreak closes the open break, computing its duration in whole minutes.
func (r *AttendanceRepo) EndBreak(ctx context.Context, attendanceID string, end time.Time) (bool, error) {
	query := `UPDATE attendance_breaks
	          SET end_time = $2,
	              duration_minutes = ROUND(EXTRACT(EPOCH FROM ($2 - start_time)) / 60)
	          WHERE attendance_id = $1 AND end_time IS NULL`
	res, err := r.DB.ExecContext(ctx, query, attendanceID, end)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

func (r *AttendanceRepo) ListSince(ctx context.Context, employeeID string, since time.Time) ([]model.Attendance, error) {
	query := `SELECT id, employee_id, date, check_in, check_out, total_hours, status
	          FROM attendance
	          WHERE employee_id = $1 AND date >= $2
	          ORDER BY date DESC`
	rows, err := r.DB.QueryContext(ctx, query, employeeID, model.DayTruncate(since))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Attendance
	for rows.Next() {
		var a model.Attendance
		if err := rows.Scan(&a.ID, &a.EmployeeID, &a.Date, &a.CheckIn, &a.CheckOut, &a.TotalHours, &a.Status); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range out {
		if err := r.loadBreaks(ctx, &out[i]); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (r *AttendanceRepo) loadBreaks(ctx context.Context, a *model.Attendance) error {
	query := `SELECT start_time, end_time, COALESCE(duration_minutes, 0)
	          FROM attendance_breaks
	          WHERE attendance_id = $1
	          ORDER BY start_time`
	rows, err := r.DB.QueryContext(ctx, query, a.ID)
	if err != nil {
		return err
	}
	defer rows.Close()

	a.Breaks = nil
	for rows.Next() {
		var b model.Break
		if err := rows.Scan(&b.StartTime, &b.EndTime, &b.DurationMinutes); err != nil {
			return err
		}
		a.Breaks = append(a.Breaks, b)
	}
	return rows.Err()
}

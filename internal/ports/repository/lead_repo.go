package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"salescrm.service/internal/core/model"
)

// LeadRepo is the concrete lead store for a PostgreSQL database.
type LeadRepo struct {
	DB *sql.DB
}

// NewLeadRepository creates the lead store on top of an open connection pool.
func NewLeadRepository(db *sql.DB) LeadRepository {
	return &LeadRepo{DB: db}
}

const leadColumns = `id, name, email, phone, received_date, status, type, languages, locations,
	assigned_employee, assigned_date, scheduled_date, scheduled_end_time, closed_date,
	crm_sync_status, email_status, crm_sync_retries, email_retries, created_at`

func scanLead(row interface{ Scan(...any) error }) (*model.Lead, error) {
	l := &model.Lead{}
	var assignee sql.NullString
	err := row.Scan(&l.ID, &l.Name, &l.Email, &l.Phone, &l.ReceivedDate, &l.Status, &l.Type,
		(*textArray)(&l.Languages), (*textArray)(&l.Locations), &assignee, &l.AssignedDate, &l.ScheduledDate,
		&l.ScheduledEndTime, &l.ClosedDate, &l.CrmSyncStatus, &l.EmailStatus,
		&l.CrmSyncRetries, &l.EmailRetries, &l.CreatedAt)
	if err != nil {
		return nil, err
	}
	l.AssignedEmployee = assignee.String
	return l, nil
}

func (r *LeadRepo) queryLeads(ctx context.Context, query string, args ...any) ([]model.Lead, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Lead
	for rows.Next() {
		l, err := scanLead(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *l)
	}
	return out, rows.Err()
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func (r *LeadRepo) Create(ctx context.Context, l *model.Lead) error {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	query := `INSERT INTO leads (id, name, email, phone, received_date, status, type, languages, locations,
	              assigned_employee, assigned_date, scheduled_date, scheduled_end_time, closed_date,
	              crm_sync_status, email_status, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`
	_, err := r.DB.ExecContext(ctx, query, l.ID, l.Name, l.Email, l.Phone, l.ReceivedDate,
		l.Status, l.Type, textArray(l.Languages), textArray(l.Locations), nullable(l.AssignedEmployee), l.AssignedDate,
		l.ScheduledDate, l.ScheduledEndTime, l.ClosedDate, l.CrmSyncStatus, l.EmailStatus, l.CreatedAt)
	return err
}

// InsertBatch inserts freshly imported rows inside one transaction so a failed
// import leaves no partial rows behind.
func (r *LeadRepo) InsertBatch(ctx context.Context, leads []*model.Lead) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := `INSERT INTO leads (id, name, email, phone, received_date, status, type, languages, locations, crm_sync_status, email_status, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	for _, l := range leads {
		if l.ID == "" {
			l.ID = uuid.NewString()
		}
		if _, err := tx.ExecContext(ctx, query, l.ID, l.Name, l.Email, l.Phone,
			l.ReceivedDate, l.Status, l.Type, textArray(l.Languages), textArray(l.Locations),
			l.CrmSyncStatus, l.EmailStatus, l.CreatedAt); err != nil {
			return fmt.Errorf("inserting lead %q: %w", l.Name, err)
		}
	}
	return tx.Commit()
}

func (r *LeadRepo) GetByID(ctx context.Context, id string) (*model.Lead, error) {
	l, err := scanLead(r.DB.QueryRowContext(ctx, `SELECT `+leadColumns+` FROM leads WHERE id = $1`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return l, err
}

func (r *LeadRepo) Update(ctx context.Context, l *model.Lead) error {
	query := `UPDATE leads
	          SET name = $1, email = $2, phone = $3, received_date = $4, status = $5, type = $6,
	              languages = $7, locations = $8, assigned_employee = $9, assigned_date = $10,
	              scheduled_date = $11, scheduled_end_time = $12, closed_date = $13
	          WHERE id = $14`
	_, err := r.DB.ExecContext(ctx, query, l.Name, l.Email, l.Phone, l.ReceivedDate, l.Status,
		l.Type, textArray(l.Languages), textArray(l.Locations), nullable(l.AssignedEmployee), l.AssignedDate,
		l.ScheduledDate, l.ScheduledEndTime, l.ClosedDate, l.ID)
	return err
}

func (r *LeadRepo) Delete(ctx context.Context, id string) error {
	_, err := r.DB.ExecContext(ctx, `DELETE FROM leads WHERE id = $1`, id)
	return err
}

func (r *LeadRepo) List(ctx context.Context, f LeadFilter) ([]model.Lead, error) {
	query := `SELECT ` + leadColumns + ` FROM leads`
	var where []string
	var args []any

	if f.EmployeeID != "" {
		args = append(args, f.EmployeeID)
		where = append(where, fmt.Sprintf("assigned_employee = $%d", len(args)))
	}
	if f.Status != "" {
		args = append(args, f.Status)
		where = append(where, fmt.Sprintf("status = $%d", len(args)))
	}
	if f.Search != "" {
		args = append(args, "%"+f.Search+"%")
		n := len(args)
		where = append(where, fmt.Sprintf(
			"(name ILIKE $%d OR email ILIKE $%d OR phone ILIKE $%d OR status::text ILIKE $%d OR type::text ILIKE $%d)",
			n, n, n, n, n))
	}
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY created_at DESC"

	return r.queryLeads(ctx, query, args...)
}

func (r *LeadRepo) ListUnassigned(ctx context.Context) ([]model.Lead, error) {
	return r.queryLeads(ctx,
		`SELECT `+leadColumns+` FROM leads WHERE assigned_employee IS NULL ORDER BY received_date`)
}

func (r *LeadRepo) ListUnassignedMatching(ctx context.Context, locations, languages []string) ([]model.Lead, error) {
	query := `SELECT ` + leadColumns + ` FROM leads
	          WHERE assigned_employee IS NULL AND (locations && $1 OR languages && $2)
	          ORDER BY received_date`
	return r.queryLeads(ctx, query, textArray(locations), textArray(languages))
}

func (r *LeadRepo) ListAssignedTo(ctx context.Context, employeeID string, statuses []model.LeadStatus) ([]model.Lead, error) {
	strs := make([]string, len(statuses))
	for i, s := range statuses {
		strs[i] = string(s)
	}
	query := `SELECT ` + leadColumns + ` FROM leads
	          WHERE assigned_employee = $1 AND status = ANY($2)
	          ORDER BY received_date`
	return r.queryLeads(ctx, query, employeeID, textArray(strs))
}

// Assign is the single atomic write of a lead's assignment fields.
func (r *LeadRepo) Assign(ctx context.Context, leadID, employeeID string, at time.Time) error {
	trace.SpanFromContext(ctx).SetAttributes(attribute.String("app.employeeId", employeeID))

	query := `UPDATE leads
	          SET assigned_employee = $1,
	              assigned_date = $2,
	              crm_sync_status = $3,
	              email_status = $3,
	              crm_sync_retries = 0,
	              email_retries = 0
	          WHERE id = $4`
	_, err := r.DB.ExecContext(ctx, query, employeeID, at, model.SyncPending, leadID)
	return err
}

func (r *LeadRepo) AssignMany(ctx context.Context, leadIDs []string, employeeID string, at time.Time) (int64, error) {
	query := `UPDATE leads
	          SET assigned_employee = $1, assigned_date = $2, crm_sync_status = $3, email_status = $3
	          WHERE id = ANY($4)`
	res, err := r.DB.ExecContext(ctx, query, employeeID, at, model.SyncPending, textArray(leadIDs))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *LeadRepo) HasScheduleOverlap(ctx context.Context, excludeLeadID, employeeID string, start, end time.Time) (bool, error) {
	var exists bool
	query := `SELECT EXISTS (
	              SELECT 1 FROM leads
	              WHERE id <> $1 AND assigned_employee = $2
	                AND scheduled_date <= $4 AND scheduled_end_time >= $3
	          )`
	err := r.DB.QueryRowContext(ctx, query, excludeLeadID, employeeID, start, end).Scan(&exists)
	return exists, err
}

func (r *LeadRepo) CountAll(ctx context.Context) (int, error) {
	var n int
	err := r.DB.QueryRowContext(ctx, `SELECT count(*) FROM leads`).Scan(&n)
	return n, err
}

func (r *LeadRepo) CountUnassigned(ctx context.Context) (int, error) {
	var n int
	err := r.DB.QueryRowContext(ctx, `SELECT count(*) FROM leads WHERE assigned_employee IS NULL`).Scan(&n)
	return n, err
}

func (r *LeadRepo) CountAssignedSince(ctx context.Context, since time.Time) (int, error) {
	var n int
	query := `SELECT count(*) FROM leads WHERE assigned_employee IS NOT NULL AND assigned_date >= $1`
	err := r.DB.QueryRowContext(ctx, query, since).Scan(&n)
	return n, err
}

func (r *LeadRepo) CountGroupedByEmployee(ctx context.Context, status model.LeadStatus) (map[string]int, error) {
	query := `SELECT assigned_employee, count(*) FROM leads
	          WHERE assigned_employee IS NOT NULL AND ($1 = '' OR status::text = $1)
	          GROUP BY assigned_employee`
	rows, err := r.DB.QueryContext(ctx, query, string(status))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var id string
		var n int
		if err := rows.Scan(&id, &n); err != nil {
			return nil, err
		}
		counts[id] = n
	}
	return counts, rows.Err()
}

func (r *LeadRepo) CountByEmployee(ctx context.Context, employeeID string, status model.LeadStatus) (int, error) {
	var n int
	query := `SELECT count(*) FROM leads
	          WHERE assigned_employee = $1 AND ($2 = '' OR status::text = $2)`
	err := r.DB.QueryRowContext(ctx, query, employeeID, string(status)).Scan(&n)
	return n, err
}

func (r *LeadRepo) ListClosedBetween(ctx context.Context, from, to time.Time) ([]model.Lead, error) {
	query := `SELECT ` + leadColumns + ` FROM leads
	          WHERE status = $1 AND closed_date BETWEEN $2 AND $3`
	return r.queryLeads(ctx, query, model.LeadClosed, from, to)
}

// UpdateCrmSyncStatus updates the status and retry count for a CRM sync job.
func (r *LeadRepo) UpdateCrmSyncStatus(ctx context.Context, id string, status model.SyncStatus, retryCount int) error {
	query := `UPDATE leads SET crm_sync_status = $1, crm_sync_retries = $2 WHERE id = $3`
	_, err := r.DB.ExecContext(ctx, query, status, retryCount, id)
	return err
}

// UpdateEmailStatus updates the status and retry count for an email job.
func (r *LeadRepo) UpdateEmailStatus(ctx context.Context, id string, status model.SyncStatus, retryCount int) error {
	query := `UPDATE leads SET email_status = $1, email_retries = $2 WHERE id = $3`
	_, err := r.DB.ExecContext(ctx, query, status, retryCount, id)
	return err
}

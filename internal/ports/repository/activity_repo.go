package repository

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"salescrm.service/internal/core/model"
)

// ActivityRepo is the append-only activity log backed by PostgreSQL.
type ActivityRepo struct {
	DB *sql.DB
}

func NewActivityRepository(db *sql.DB) ActivityRepository {
	return &ActivityRepo{DB: db}
}

func (r *ActivityRepo) Create(ctx context.Context, a *model.Activity) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	query := `INSERT INTO activities (id, type, lead_id, employee_id, created_at)
	          VALUES ($1, $2, $3, $4, $5)`
	_, err := r.DB.ExecContext(ctx, query, a.ID, a.Type, a.LeadID, a.EmployeeID, a.CreatedAt)
	return err
}

func (r *ActivityRepo) ListRecent(ctx context.Context, limit int) ([]model.Activity, error) {
	query := `SELECT id, type, lead_id, employee_id, created_at
	          FROM activities
	          ORDER BY created_at DESC
	          LIMIT $1`
	return r.queryActivities(ctx, query, limit)
}

func (r *ActivityRepo) ListByEmployee(ctx context.Context, employeeID string, limit int, types []model.ActivityType) ([]model.Activity, error) {
	strs := make([]string, len(types))
	for i, t := range types {
		strs[i] = string(t)
	}
	query := `SELECT id, type, lead_id, employee_id, created_at
	          FROM activities
	          WHERE employee_id = $1 AND (cardinality($3::text[]) = 0 OR type::text = ANY($3))
	          ORDER BY created_at DESC
	          LIMIT $2`
	return r.queryActivities(ctx, query, employeeID, limit, textArray(strs))
}

func (r *ActivityRepo) queryActivities(ctx context.Context, query string, args ...any) ([]model.Activity, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Activity
	for rows.Next() {
		var a model.Activity
		if err := rows.Scan(&a.ID, &a.Type, &a.LeadID, &a.EmployeeID, &a.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

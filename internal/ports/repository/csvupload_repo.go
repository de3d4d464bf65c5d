package repository

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"salescrm.service/internal/core/model"
)

// CsvUploadRepo records bulk import history in PostgreSQL.
type CsvUploadRepo struct {
	DB *sql.DB
}

// NewCsvUploadRepository creates the import history store.
func NewCsvUploadRepository(db *sql.DB) CsvUploadRepository {
	return &CsvUploadRepo{DB: db}
}

func (r *CsvUploadRepo) Create(ctx context.Context, u *model.CsvUpload) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	query := `INSERT INTO csv_uploads (id, file_name, upload_date, total_leads, assigned_leads, unassigned_leads)
	          VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.DB.ExecContext(ctx, query, u.ID, u.FileName, u.UploadDate,
		u.TotalLeads, u.AssignedLeads, u.UnassignedLeads)
	return err
}

func (r *CsvUploadRepo) List(ctx context.Context) ([]model.CsvUpload, error) {
	query := `SELECT id, file_name, upload_date, total_leads, assigned_leads, unassigned_leads
	          FROM csv_uploads
	          ORDER BY upload_date DESC`
	rows, err := r.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.CsvUpload
	for rows.Next() {
		var u model.CsvUpload
		if err := rows.Scan(&u.ID, &u.FileName, &u.UploadDate, &u.TotalLeads, &u.AssignedLeads, &u.UnassignedLeads); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

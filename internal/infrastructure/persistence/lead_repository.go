package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/crewhq/backend/internal/domain/models"
	"github.com/crewhq/backend/internal/domain/ports"
	"github.com/crewhq/backend/pkg/constants"
)

// LeadRepository persists lead records. Status updates are guarded by the
// expected current status so concurrent writers on one lead serialize.
type LeadRepository struct {
	db *sql.DB
}

var _ ports.LeadStore = (*LeadRepository)(nil)

func NewLeadRepository(db *sql.DB) *LeadRepository {
	return &LeadRepository{db: db}
}

const leadColumns = "id, name, phone, source, status, assigned_rep_id, priority, created_date, last_modified_date"

func (r *LeadRepository) Insert(ctx context.Context, lead *models.LeadRecord) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		constants.TableLead, leadColumns)

	_, err := r.db.ExecContext(ctx, query,
		lead.ID, lead.Name, lead.Phone, lead.Source, lead.Status,
		lead.AssignedRepID, lead.Priority, lead.CreatedDate, lead.LastModifiedDate)
	return err
}

func (r *LeadRepository) GetByID(ctx context.Context, id string) (*models.LeadRecord, error) {
	query := fmt.Sprintf("SELECT %s FROM %s WHERE id = ? LIMIT 1", leadColumns, constants.TableLead)
	row := r.db.QueryRowContext(ctx, query, id)
	return scanLead(row)
}

func (r *LeadRepository) ListAll(ctx context.Context, limit int) ([]models.LeadRecord, error) {
	query := fmt.Sprintf("SELECT %s FROM %s ORDER BY created_date DESC LIMIT ?", leadColumns, constants.TableLead)
	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanLeads(rows)
}

// UpdateGuarded applies the status/assignee update iff the stored status still
// equals fromStatus. Zero rows affected means a concurrent writer won.
func (r *LeadRepository) UpdateGuarded(ctx context.Context, id, fromStatus string, status string, assignedRepID *string, modifiedAt time.Time) (bool, error) {
	var query string
	var args []interface{}

	if assignedRepID != nil {
		query = fmt.Sprintf(`
			UPDATE %s SET status = ?, assigned_rep_id = ?, last_modified_date = ?
			WHERE id = ? AND status = ?`,
			constants.TableLead)
		args = []interface{}{status, *assignedRepID, modifiedAt, id, fromStatus}
	} else {
		query = fmt.Sprintf(`
			UPDATE %s SET status = ?, last_modified_date = ?
			WHERE id = ? AND status = ?`,
			constants.TableLead)
		args = []interface{}{status, modifiedAt, id, fromStatus}
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

func scanLead(row *sql.Row) (*models.LeadRecord, error) {
	var l models.LeadRecord
	var createdRaw []byte
	var phone, source, priority, assignedRep, modifiedRaw sql.NullString

	err := row.Scan(&l.ID, &l.Name, &phone, &source, &l.Status, &assignedRep, &priority, &createdRaw, &modifiedRaw)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	fillLead(&l, createdRaw, phone, source, priority, assignedRep, modifiedRaw)
	return &l, nil
}

func scanLeads(rows *sql.Rows) ([]models.LeadRecord, error) {
	leads := make([]models.LeadRecord, 0)
	for rows.Next() {
		var l models.LeadRecord
		var createdRaw []byte
		var phone, source, priority, assignedRep, modifiedRaw sql.NullString

		if err := rows.Scan(&l.ID, &l.Name, &phone, &source, &l.Status, &assignedRep, &priority, &createdRaw, &modifiedRaw); err != nil {
			return nil, err
		}
		fillLead(&l, createdRaw, phone, source, priority, assignedRep, modifiedRaw)
		leads = append(leads, l)
	}
	return leads, rows.Err()
}

func fillLead(l *models.LeadRecord, createdRaw []byte, phone, source, priority, assignedRep, modifiedRaw sql.NullString) {
	l.Phone = phone.String
	l.Source = source.String
	l.Priority = priority.String
	l.CreatedDate = parseDBTime(createdRaw)
	if assignedRep.Valid {
		rep := assignedRep.String
		l.AssignedRepID = &rep
	}
	if modifiedRaw.Valid {
		t := parseDBTimeString(modifiedRaw.String)
		l.LastModifiedDate = &t
	}
}

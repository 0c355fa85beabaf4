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

// ObligationRepository persists compliance obligations. Overdue is never
// written here; it is derived from (now, submitted_date, deadline) on read.
type ObligationRepository struct {
	db *sql.DB
}

var _ ports.ObligationStore = (*ObligationRepository)(nil)

func NewObligationRepository(db *sql.DB) *ObligationRepository {
	return &ObligationRepository{db: db}
}

const obligationColumns = "id, subject_id, trigger_date, deadline, submitted_date, submitted_by_id, status, created_date"

func (r *ObligationRepository) Insert(ctx context.Context, o *models.ComplianceObligation) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		constants.TableObligation, obligationColumns)

	_, err := r.db.ExecContext(ctx, query,
		o.ID, o.SubjectID, o.TriggerDate, o.Deadline, o.SubmittedDate, o.SubmittedByID, o.Status, o.CreatedDate)
	return err
}

func (r *ObligationRepository) GetByID(ctx context.Context, id string) (*models.ComplianceObligation, error) {
	query := fmt.Sprintf("SELECT %s FROM %s WHERE id = ? LIMIT 1", obligationColumns, constants.TableObligation)
	row := r.db.QueryRowContext(ctx, query, id)
	return scanObligation(row)
}

func (r *ObligationRepository) ListAll(ctx context.Context, limit int) ([]models.ComplianceObligation, error) {
	query := fmt.Sprintf("SELECT %s FROM %s ORDER BY created_date DESC LIMIT ?", obligationColumns, constants.TableObligation)
	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanObligations(rows)
}

// MarkSubmitted sets the submission timestamp iff none is set yet. A second
// submission affects zero rows and reports false.
func (r *ObligationRepository) MarkSubmitted(ctx context.Context, id, submitterID string, submittedAt time.Time) (bool, error) {
	query := fmt.Sprintf(`
		UPDATE %s SET submitted_date = ?, submitted_by_id = ?, status = ?
		WHERE id = ? AND submitted_date IS NULL`,
		constants.TableObligation)

	result, err := r.db.ExecContext(ctx, query, submittedAt, submitterID, constants.ObligationStatusSubmitted, id)
	if err != nil {
		return false, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

// SetStatusGuarded moves the stored status iff it still equals fromStatus. A
// racing second reviewer affects zero rows and reports false.
func (r *ObligationRepository) SetStatusGuarded(ctx context.Context, id, fromStatus, toStatus string) (bool, error) {
	query := fmt.Sprintf("UPDATE %s SET status = ? WHERE id = ? AND status = ?", constants.TableObligation)

	result, err := r.db.ExecContext(ctx, query, toStatus, id, fromStatus)
	if err != nil {
		return false, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

// ListUnsubmittedDue returns unsubmitted obligations whose deadline precedes
// the given time. Feeds the proactive overdue sweep.
func (r *ObligationRepository) ListUnsubmittedDue(ctx context.Context, before time.Time) ([]models.ComplianceObligation, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE submitted_date IS NULL AND deadline < ?
		ORDER BY deadline ASC`,
		obligationColumns, constants.TableObligation)

	rows, err := r.db.QueryContext(ctx, query, before)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanObligations(rows)
}

func scanObligation(row *sql.Row) (*models.ComplianceObligation, error) {
	var o models.ComplianceObligation
	var triggerRaw, deadlineRaw, createdRaw []byte
	var submittedRaw, submittedBy sql.NullString

	err := row.Scan(&o.ID, &o.SubjectID, &triggerRaw, &deadlineRaw, &submittedRaw, &submittedBy, &o.Status, &createdRaw)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	fillObligationTimes(&o, triggerRaw, deadlineRaw, createdRaw, submittedRaw, submittedBy)
	return &o, nil
}

func scanObligations(rows *sql.Rows) ([]models.ComplianceObligation, error) {
	obligations := make([]models.ComplianceObligation, 0)
	for rows.Next() {
		var o models.ComplianceObligation
		var triggerRaw, deadlineRaw, createdRaw []byte
		var submittedRaw, submittedBy sql.NullString

		if err := rows.Scan(&o.ID, &o.SubjectID, &triggerRaw, &deadlineRaw, &submittedRaw, &submittedBy, &o.Status, &createdRaw); err != nil {
			return nil, err
		}
		fillObligationTimes(&o, triggerRaw, deadlineRaw, createdRaw, submittedRaw, submittedBy)
		obligations = append(obligations, o)
	}
	return obligations, rows.Err()
}

func fillObligationTimes(o *models.ComplianceObligation, triggerRaw, deadlineRaw, createdRaw []byte, submittedRaw, submittedBy sql.NullString) {
	o.TriggerDate = parseDBTime(triggerRaw)
	o.Deadline = parseDBTime(deadlineRaw)
	o.CreatedDate = parseDBTime(createdRaw)
	if submittedRaw.Valid {
		t := parseDBTimeString(submittedRaw.String)
		o.SubmittedDate = &t
	}
	if submittedBy.Valid {
		by := submittedBy.String
		o.SubmittedByID = &by
	}
}

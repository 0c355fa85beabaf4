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

// ApprovalRepository persists PTO approval requests.
type ApprovalRepository struct {
	db *sql.DB
}

var _ ports.ApprovalStore = (*ApprovalRepository)(nil)

func NewApprovalRepository(db *sql.DB) *ApprovalRepository {
	return &ApprovalRepository{db: db}
}

const approvalColumns = "id, requester_id, start_date, end_date, duration_days, reason, status, decider_id, decided_date, created_date"

func (r *ApprovalRepository) Insert(ctx context.Context, req *models.ApprovalRequest) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		constants.TableApprovalRequest, approvalColumns)

	_, err := r.db.ExecContext(ctx, query,
		req.ID, req.RequesterID, req.StartDate, req.EndDate, req.DurationDays,
		req.Reason, req.Status, req.DeciderID, req.DecidedDate, req.CreatedDate)
	return err
}

func (r *ApprovalRepository) GetByID(ctx context.Context, id string) (*models.ApprovalRequest, error) {
	query := fmt.Sprintf("SELECT %s FROM %s WHERE id = ? LIMIT 1", approvalColumns, constants.TableApprovalRequest)
	row := r.db.QueryRowContext(ctx, query, id)
	return scanApproval(row)
}

func (r *ApprovalRepository) ListAll(ctx context.Context, limit int) ([]models.ApprovalRequest, error) {
	query := fmt.Sprintf("SELECT %s FROM %s ORDER BY created_date DESC LIMIT ?", approvalColumns, constants.TableApprovalRequest)
	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanApprovals(rows)
}

func (r *ApprovalRepository) ListByRequester(ctx context.Context, requesterID string, limit int) ([]models.ApprovalRequest, error) {
	query := fmt.Sprintf("SELECT %s FROM %s WHERE requester_id = ? ORDER BY created_date DESC LIMIT ?", approvalColumns, constants.TableApprovalRequest)
	rows, err := r.db.QueryContext(ctx, query, requesterID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanApprovals(rows)
}

// Decide flips a pending request to its outcome. The status guard runs in SQL
// so a racing second decision affects zero rows and reports false.
func (r *ApprovalRepository) Decide(ctx context.Context, id, status, deciderID string, decidedAt time.Time) (bool, error) {
	query := fmt.Sprintf(`
		UPDATE %s SET status = ?, decider_id = ?, decided_date = ?
		WHERE id = ? AND status = ?`,
		constants.TableApprovalRequest)

	result, err := r.db.ExecContext(ctx, query, status, deciderID, decidedAt, id, constants.ApprovalStatusPending)
	if err != nil {
		return false, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

func scanApproval(row *sql.Row) (*models.ApprovalRequest, error) {
	var a models.ApprovalRequest
	var startRaw, endRaw, createdRaw []byte
	var deciderID, decidedRaw sql.NullString

	err := row.Scan(&a.ID, &a.RequesterID, &startRaw, &endRaw, &a.DurationDays,
		&a.Reason, &a.Status, &deciderID, &decidedRaw, &createdRaw)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	fillApprovalTimes(&a, startRaw, endRaw, createdRaw, deciderID, decidedRaw)
	return &a, nil
}

func scanApprovals(rows *sql.Rows) ([]models.ApprovalRequest, error) {
	requests := make([]models.ApprovalRequest, 0)
	for rows.Next() {
		var a models.ApprovalRequest
		var startRaw, endRaw, createdRaw []byte
		var deciderID, decidedRaw sql.NullString

		if err := rows.Scan(&a.ID, &a.RequesterID, &startRaw, &endRaw, &a.DurationDays,
			&a.Reason, &a.Status, &deciderID, &decidedRaw, &createdRaw); err != nil {
			return nil, err
		}
		fillApprovalTimes(&a, startRaw, endRaw, createdRaw, deciderID, decidedRaw)
		requests = append(requests, a)
	}
	return requests, rows.Err()
}

func fillApprovalTimes(a *models.ApprovalRequest, startRaw, endRaw, createdRaw []byte, deciderID, decidedRaw sql.NullString) {
	a.StartDate = parseDBDate(startRaw)
	a.EndDate = parseDBDate(endRaw)
	a.CreatedDate = parseDBTime(createdRaw)
	if deciderID.Valid {
		d := deciderID.String
		a.DeciderID = &d
	}
	if decidedRaw.Valid {
		t := parseDBTimeString(decidedRaw.String)
		a.DecidedDate = &t
	}
}

// parseDBDate handles DATE columns (no time component) plus full datetimes.
func parseDBDate(raw []byte) time.Time {
	s := string(raw)
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t
	}
	return parseDBTimeString(s)
}

package persistence

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/crewhq/backend/internal/domain/models"
	"github.com/crewhq/backend/internal/domain/ports"
	"github.com/crewhq/backend/pkg/constants"
)

// AuditRepository reads and writes the committed transition history.
type AuditRepository struct {
	db *sql.DB
}

var _ ports.AuditStore = (*AuditRepository)(nil)

func NewAuditRepository(db *sql.DB) *AuditRepository {
	return &AuditRepository{db: db}
}

const auditColumns = "id, workflow_type, subject_id, previous_stage, new_stage, actor_id, occurred_at"

func (r *AuditRepository) Insert(ctx context.Context, e *models.AuditEvent) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		constants.TableAuditEvent, auditColumns)

	_, err := r.db.ExecContext(ctx, query,
		e.ID, e.WorkflowType, e.SubjectID, e.PreviousStage, e.NewStage, e.ActorID, e.OccurredAt)
	return err
}

func (r *AuditRepository) ListBySubject(ctx context.Context, workflowType, subjectID string, limit int) ([]models.AuditEvent, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE workflow_type = ? AND subject_id = ?
		ORDER BY occurred_at DESC LIMIT ?`,
		auditColumns, constants.TableAuditEvent)

	rows, err := r.db.QueryContext(ctx, query, workflowType, subjectID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanAuditEvents(rows)
}

func (r *AuditRepository) ListByWorkflowType(ctx context.Context, workflowType string, limit int) ([]models.AuditEvent, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE workflow_type = ?
		ORDER BY occurred_at DESC LIMIT ?`,
		auditColumns, constants.TableAuditEvent)

	rows, err := r.db.QueryContext(ctx, query, workflowType, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanAuditEvents(rows)
}

func scanAuditEvents(rows *sql.Rows) ([]models.AuditEvent, error) {
	events := make([]models.AuditEvent, 0)
	for rows.Next() {
		var e models.AuditEvent
		var previous sql.NullString
		var occurredRaw []byte
		if err := rows.Scan(&e.ID, &e.WorkflowType, &e.SubjectID, &previous, &e.NewStage, &e.ActorID, &occurredRaw); err != nil {
			return nil, err
		}
		e.PreviousStage = previous.String
		e.OccurredAt = parseDBTime(occurredRaw)
		events = append(events, e)
	}
	return events, rows.Err()
}

package persistence

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"

	"github.com/crewhq/backend/internal/domain/models"
	"github.com/crewhq/backend/internal/domain/ports"
	"github.com/crewhq/backend/pkg/constants"
	"github.com/crewhq/backend/pkg/utils"
)

// InstanceRepository persists workflow instances with an optimistic version
// column. One row per (workflow_type, subject_id), enforced by a unique key.
type InstanceRepository struct {
	db *sql.DB
}

// Compile-time interface check
var _ ports.InstanceStore = (*InstanceRepository)(nil)

func NewInstanceRepository(db *sql.DB) *InstanceRepository {
	return &InstanceRepository{db: db}
}

const mysqlErrDuplicateEntry = 1062

// GetOrCreate returns the existing instance for (type, subject) or inserts a
// fresh one. A racing duplicate insert loses on the unique key and falls back
// to the select, so both callers observe the same identity.
func (r *InstanceRepository) GetOrCreate(ctx context.Context, workflowType, subjectID, subtype string) (*models.WorkflowInstance, error) {
	instance, err := r.Load(ctx, workflowType, subjectID)
	if err != nil {
		return nil, err
	}
	if instance != nil {
		return instance, nil
	}

	fresh := &models.WorkflowInstance{
		ID:                utils.GenerateID(),
		WorkflowType:      workflowType,
		SubjectID:         subjectID,
		Subtype:           subtype,
		CompletedStageIDs: []string{},
		Status:            constants.InstanceStatusInProgress,
		CreatedDate:       time.Now().UTC(),
		Version:           1,
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (id, workflow_type, subject_id, subtype, completed_stage_ids, status, created_date, version)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		constants.TableWorkflowInstance)

	_, err = r.db.ExecContext(ctx, query,
		fresh.ID, fresh.WorkflowType, fresh.SubjectID, fresh.Subtype,
		"[]", fresh.Status, fresh.CreatedDate, fresh.Version)
	if err != nil {
		if mysqlErr, ok := err.(*mysql.MySQLError); ok && mysqlErr.Number == mysqlErrDuplicateEntry {
			// Lost the race, the other writer's row wins
			return r.Load(ctx, workflowType, subjectID)
		}
		return nil, fmt.Errorf("failed to create workflow instance: %w", err)
	}

	return fresh, nil
}

// Load returns the instance for (type, subject), or nil when none exists.
func (r *InstanceRepository) Load(ctx context.Context, workflowType, subjectID string) (*models.WorkflowInstance, error) {
	query := fmt.Sprintf(`
		SELECT id, workflow_type, subject_id, subtype, completed_stage_ids, status,
		       created_date, last_transition_date, last_actor_id, version
		FROM %s
		WHERE workflow_type = ? AND subject_id = ? LIMIT 1`,
		constants.TableWorkflowInstance)

	row := r.db.QueryRowContext(ctx, query, workflowType, subjectID)
	return scanInstance(row)
}

// CommitTransition applies the mutation and the audit event in one
// transaction, guarded by the version check. The losing concurrent writer
// gets ports.ErrVersionConflict and must reload.
func (r *InstanceRepository) CommitTransition(ctx context.Context, instance *models.WorkflowInstance, event *models.AuditEvent) error {
	completed, err := json.Marshal(instance.CompletedStageIDs)
	if err != nil {
		return fmt.Errorf("failed to encode completed stages: %w", err)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	update := fmt.Sprintf(`
		UPDATE %s
		SET completed_stage_ids = ?, status = ?, last_transition_date = ?, last_actor_id = ?, version = version + 1
		WHERE id = ? AND version = ?`,
		constants.TableWorkflowInstance)

	result, err := tx.ExecContext(ctx, update,
		string(completed), instance.Status, instance.LastTransitionDate, instance.LastActorID,
		instance.ID, instance.Version)
	if err != nil {
		return fmt.Errorf("failed to update workflow instance: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ports.ErrVersionConflict
	}

	if event != nil {
		if event.ID == "" {
			event.ID = utils.GenerateID()
		}
		insert := fmt.Sprintf(`
			INSERT INTO %s (id, workflow_type, subject_id, previous_stage, new_stage, actor_id, occurred_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			constants.TableAuditEvent)
		if _, err := tx.ExecContext(ctx, insert,
			event.ID, event.WorkflowType, event.SubjectID, event.PreviousStage,
			event.NewStage, event.ActorID, event.OccurredAt); err != nil {
			return fmt.Errorf("failed to write audit event: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transition: %w", err)
	}

	instance.Version++
	return nil
}

// scanInstance maps a row onto a WorkflowInstance. Accepts *sql.Row.
func scanInstance(row *sql.Row) (*models.WorkflowInstance, error) {
	var i models.WorkflowInstance
	var completedRaw []byte
	var createdRaw []byte
	var lastTransitionRaw sql.NullString
	var lastActor sql.NullString

	err := row.Scan(&i.ID, &i.WorkflowType, &i.SubjectID, &i.Subtype, &completedRaw,
		&i.Status, &createdRaw, &lastTransitionRaw, &lastActor, &i.Version)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	if len(completedRaw) > 0 {
		if err := json.Unmarshal(completedRaw, &i.CompletedStageIDs); err != nil {
			return nil, fmt.Errorf("corrupt completed_stage_ids for instance %s: %w", i.ID, err)
		}
	}
	if i.CompletedStageIDs == nil {
		i.CompletedStageIDs = []string{}
	}

	i.CreatedDate = parseDBTime(createdRaw)
	if lastTransitionRaw.Valid {
		t := parseDBTimeString(lastTransitionRaw.String)
		i.LastTransitionDate = &t
	}
	if lastActor.Valid {
		actor := lastActor.String
		i.LastActorID = &actor
	}

	return &i, nil
}

// parseDBTime handles both MySQL datetime and RFC3339 encodings.
func parseDBTime(raw []byte) time.Time {
	return parseDBTimeString(string(raw))
}

func parseDBTimeString(s string) time.Time {
	if t, err := time.Parse("2006-01-02 15:04:05", s); err == nil {
		return t
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t
	}
	return time.Time{}
}

package persistence

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/crewhq/backend/internal/domain/models"
	"github.com/crewhq/backend/internal/domain/ports"
	"github.com/crewhq/backend/pkg/constants"
)

// StageRepository persists the stage catalog. No deletion: stages are
// soft-disabled so historical instances stay resolvable.
type StageRepository struct {
	db *sql.DB
}

var _ ports.StageStore = (*StageRepository)(nil)

func NewStageRepository(db *sql.DB) *StageRepository {
	return &StageRepository{db: db}
}

// StagesFor returns active stages scoped to the subtype, with "all" stages
// always included, sorted by ordinal.
func (r *StageRepository) StagesFor(ctx context.Context, workflowType, subtype string) ([]models.StageDefinition, error) {
	query := fmt.Sprintf(`
		SELECT id, workflow_type, subtype, name, ordinal, is_active, created_date
		FROM %s
		WHERE workflow_type = ? AND (subtype = ? OR subtype = ?) AND is_active = true
		ORDER BY ordinal ASC`,
		constants.TableStageDefinition)

	rows, err := r.db.QueryContext(ctx, query, workflowType, subtype, constants.SubtypeAll)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanStages(rows)
}

// AllStages returns every active stage of the workflow type across subtypes.
func (r *StageRepository) AllStages(ctx context.Context, workflowType string) ([]models.StageDefinition, error) {
	query := fmt.Sprintf(`
		SELECT id, workflow_type, subtype, name, ordinal, is_active, created_date
		FROM %s
		WHERE workflow_type = ? AND is_active = true
		ORDER BY subtype ASC, ordinal ASC`,
		constants.TableStageDefinition)

	rows, err := r.db.QueryContext(ctx, query, workflowType)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanStages(rows)
}

// OrdinalTaken reports whether an active stage already holds the ordinal in
// the (workflow type, subtype) scope.
func (r *StageRepository) OrdinalTaken(ctx context.Context, workflowType, subtype string, ordinal int) (bool, error) {
	var exists bool
	query := fmt.Sprintf(`
		SELECT EXISTS(
			SELECT 1 FROM %s
			WHERE workflow_type = ? AND subtype = ? AND ordinal = ? AND is_active = true
		)`,
		constants.TableStageDefinition)

	err := r.db.QueryRowContext(ctx, query, workflowType, subtype, ordinal).Scan(&exists)
	if err != nil {
		return false, err
	}
	return exists, nil
}

func (r *StageRepository) Insert(ctx context.Context, stage *models.StageDefinition) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (id, workflow_type, subtype, name, ordinal, is_active, created_date)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		constants.TableStageDefinition)

	_, err := r.db.ExecContext(ctx, query,
		stage.ID, stage.WorkflowType, stage.Subtype, stage.Name, stage.Ordinal, stage.IsActive, stage.CreatedDate)
	return err
}

// Deactivate soft-disables a stage.
func (r *StageRepository) Deactivate(ctx context.Context, stageID string) error {
	query := fmt.Sprintf("UPDATE %s SET is_active = false WHERE id = ?", constants.TableStageDefinition)
	_, err := r.db.ExecContext(ctx, query, stageID)
	return err
}

func scanStages(rows *sql.Rows) ([]models.StageDefinition, error) {
	stages := make([]models.StageDefinition, 0)
	for rows.Next() {
		var s models.StageDefinition
		var createdRaw []byte
		if err := rows.Scan(&s.ID, &s.WorkflowType, &s.Subtype, &s.Name, &s.Ordinal, &s.IsActive, &createdRaw); err != nil {
			return nil, err
		}
		s.CreatedDate = parseDBTime(createdRaw)
		stages = append(stages, s)
	}
	return stages, rows.Err()
}

package bootstrap

import (
	"context"
	"fmt"
	"log"

	"github.com/crewhq/backend/internal/infrastructure/database"
	"github.com/crewhq/backend/pkg/constants"
)

// InitializeSchema creates the engine's tables if they do not exist. DDL is
// idempotent so restarts are safe.
func InitializeSchema(db *database.Connection) error {
	statements := []string{
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			id VARCHAR(36) PRIMARY KEY,
			workflow_type VARCHAR(64) NOT NULL,
			subtype VARCHAR(64) NOT NULL DEFAULT 'all',
			name VARCHAR(255) NOT NULL,
			ordinal INT NOT NULL,
			is_active BOOLEAN NOT NULL DEFAULT TRUE,
			created_date DATETIME NOT NULL,
			INDEX idx_stage_scope (workflow_type, subtype, is_active)
		)`, constants.TableStageDefinition),

		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			id VARCHAR(36) PRIMARY KEY,
			workflow_type VARCHAR(64) NOT NULL,
			subject_id VARCHAR(36) NOT NULL,
			subtype VARCHAR(64) NOT NULL DEFAULT 'all',
			completed_stage_ids JSON NOT NULL,
			status VARCHAR(32) NOT NULL DEFAULT 'in_progress',
			created_date DATETIME NOT NULL,
			last_transition_date DATETIME NULL,
			last_actor_id VARCHAR(36) NULL,
			version BIGINT NOT NULL DEFAULT 1,
			UNIQUE KEY uk_instance_subject (workflow_type, subject_id)
		)`, constants.TableWorkflowInstance),

		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			id VARCHAR(36) PRIMARY KEY,
			requester_id VARCHAR(36) NOT NULL,
			start_date DATETIME NOT NULL,
			end_date DATETIME NOT NULL,
			duration_days INT NOT NULL,
			reason TEXT,
			status VARCHAR(32) NOT NULL DEFAULT 'pending',
			decider_id VARCHAR(36) NULL,
			decided_date DATETIME NULL,
			created_date DATETIME NOT NULL,
			INDEX idx_approval_requester (requester_id)
		)`, constants.TableApprovalRequest),

		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			id VARCHAR(36) PRIMARY KEY,
			subject_id VARCHAR(36) NOT NULL,
			trigger_date DATETIME NOT NULL,
			deadline DATETIME NOT NULL,
			submitted_date DATETIME NULL,
			submitted_by_id VARCHAR(36) NULL,
			status VARCHAR(32) NOT NULL DEFAULT 'pending',
			created_date DATETIME NOT NULL,
			INDEX idx_obligation_deadline (submitted_date, deadline)
		)`, constants.TableObligation),

		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			id VARCHAR(36) PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			phone VARCHAR(64),
			source VARCHAR(255),
			status VARCHAR(32) NOT NULL DEFAULT 'new',
			assigned_rep_id VARCHAR(36) NULL,
			priority VARCHAR(32),
			created_date DATETIME NOT NULL,
			last_modified_date DATETIME NULL,
			INDEX idx_lead_status (status)
		)`, constants.TableLead),

		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			id VARCHAR(36) PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			email VARCHAR(255),
			category VARCHAR(64) NOT NULL,
			created_date DATETIME NOT NULL
		)`, constants.TableCandidate),

		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			id VARCHAR(36) PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			cond TEXT NOT NULL,
			target_rep_id VARCHAR(36) NOT NULL,
			priority INT NOT NULL DEFAULT 100,
			is_active BOOLEAN NOT NULL DEFAULT TRUE,
			created_date DATETIME NOT NULL
		)`, constants.TableRoutingRule),

		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			id VARCHAR(36) PRIMARY KEY,
			workflow_type VARCHAR(64) NOT NULL,
			subject_id VARCHAR(36) NOT NULL,
			previous_stage VARCHAR(64),
			new_stage VARCHAR(64) NOT NULL,
			actor_id VARCHAR(36) NOT NULL,
			occurred_at DATETIME NOT NULL,
			INDEX idx_audit_subject (workflow_type, subject_id),
			INDEX idx_audit_type (workflow_type, occurred_at)
		)`, constants.TableAuditEvent),

		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			id VARCHAR(36) PRIMARY KEY,
			recipient_id VARCHAR(36) NOT NULL,
			title VARCHAR(255) NOT NULL,
			body TEXT,
			is_read BOOLEAN NOT NULL DEFAULT FALSE,
			created_date DATETIME NOT NULL,
			INDEX idx_notification_recipient (recipient_id, is_read)
		)`, constants.TableNotification),
	}

	ctx := context.Background()
	for _, ddl := range statements {
		if _, err := db.ExecContext(ctx, ddl); err != nil {
			return fmt.Errorf("schema initialization failed: %w", err)
		}
	}

	log.Println("✅ Schema initialized")
	return nil
}

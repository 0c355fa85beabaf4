package persistence

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/crewhq/backend/internal/domain/models"
	"github.com/crewhq/backend/internal/domain/ports"
	"github.com/crewhq/backend/pkg/constants"
)

// RuleRepository persists lead routing rules.
type RuleRepository struct {
	db *sql.DB
}

var _ ports.RuleStore = (*RuleRepository)(nil)

func NewRuleRepository(db *sql.DB) *RuleRepository {
	return &RuleRepository{db: db}
}

const ruleColumns = "id, name, cond, target_rep_id, priority, is_active, created_date"

func (r *RuleRepository) Insert(ctx context.Context, rule *models.RoutingRule) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		constants.TableRoutingRule, ruleColumns)

	_, err := r.db.ExecContext(ctx, query,
		rule.ID, rule.Name, rule.Condition, rule.TargetRepID, rule.Priority, rule.IsActive, rule.CreatedDate)
	return err
}

// ListActive returns active rules in evaluation order: priority ascending,
// then creation order.
func (r *RuleRepository) ListActive(ctx context.Context) ([]models.RoutingRule, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE is_active = true
		ORDER BY priority ASC, created_date ASC`,
		ruleColumns, constants.TableRoutingRule)

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanRules(rows)
}

func (r *RuleRepository) ListAll(ctx context.Context) ([]models.RoutingRule, error) {
	query := fmt.Sprintf("SELECT %s FROM %s ORDER BY priority ASC, created_date ASC", ruleColumns, constants.TableRoutingRule)
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanRules(rows)
}

func scanRules(rows *sql.Rows) ([]models.RoutingRule, error) {
	rules := make([]models.RoutingRule, 0)
	for rows.Next() {
		var rule models.RoutingRule
		var createdRaw []byte
		if err := rows.Scan(&rule.ID, &rule.Name, &rule.Condition, &rule.TargetRepID, &rule.Priority, &rule.IsActive, &createdRaw); err != nil {
			return nil, err
		}
		rule.CreatedDate = parseDBTime(createdRaw)
		rules = append(rules, rule)
	}
	return rules, rows.Err()
}

package persistence

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/crewhq/backend/internal/domain/models"
	"github.com/crewhq/backend/internal/domain/ports"
	"github.com/crewhq/backend/pkg/constants"
)

// CandidateRepository persists hiring candidates.
type CandidateRepository struct {
	db *sql.DB
}

var _ ports.CandidateStore = (*CandidateRepository)(nil)

func NewCandidateRepository(db *sql.DB) *CandidateRepository {
	return &CandidateRepository{db: db}
}

func (r *CandidateRepository) Insert(ctx context.Context, c *models.Candidate) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (id, name, email, category, created_date)
		VALUES (?, ?, ?, ?, ?)`,
		constants.TableCandidate)

	_, err := r.db.ExecContext(ctx, query, c.ID, c.Name, c.Email, c.Category, c.CreatedDate)
	return err
}

func (r *CandidateRepository) GetByID(ctx context.Context, id string) (*models.Candidate, error) {
	query := fmt.Sprintf("SELECT id, name, email, category, created_date FROM %s WHERE id = ? LIMIT 1", constants.TableCandidate)

	var c models.Candidate
	var email sql.NullString
	var createdRaw []byte

	err := r.db.QueryRowContext(ctx, query, id).Scan(&c.ID, &c.Name, &email, &c.Category, &createdRaw)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	c.Email = email.String
	c.CreatedDate = parseDBTime(createdRaw)
	return &c, nil
}

func (r *CandidateRepository) ListAll(ctx context.Context, limit int) ([]models.Candidate, error) {
	query := fmt.Sprintf("SELECT id, name, email, category, created_date FROM %s ORDER BY created_date DESC LIMIT ?", constants.TableCandidate)

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	candidates := make([]models.Candidate, 0)
	for rows.Next() {
		var c models.Candidate
		var email sql.NullString
		var createdRaw []byte
		if err := rows.Scan(&c.ID, &c.Name, &email, &c.Category, &createdRaw); err != nil {
			return nil, err
		}
		c.Email = email.String
		c.CreatedDate = parseDBTime(createdRaw)
		candidates = append(candidates, c)
	}
	return candidates, rows.Err()
}

package persistence

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/crewhq/backend/internal/domain/models"
	"github.com/crewhq/backend/internal/domain/ports"
	"github.com/crewhq/backend/pkg/constants"
)

// NotificationRepository persists user notifications.
type NotificationRepository struct {
	db *sql.DB
}

var _ ports.NotificationStore = (*NotificationRepository)(nil)

func NewNotificationRepository(db *sql.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

func (r *NotificationRepository) Insert(ctx context.Context, n *models.Notification) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (id, recipient_id, title, body, is_read, created_date)
		VALUES (?, ?, ?, ?, ?, ?)`,
		constants.TableNotification)

	_, err := r.db.ExecContext(ctx, query, n.ID, n.RecipientID, n.Title, n.Body, n.IsRead, n.CreatedDate)
	return err
}

func (r *NotificationRepository) ListForUser(ctx context.Context, userID string, limit int) ([]models.Notification, error) {
	query := fmt.Sprintf(`
		SELECT id, recipient_id, title, body, is_read, created_date
		FROM %s
		WHERE recipient_id = ?
		ORDER BY created_date DESC LIMIT ?`,
		constants.TableNotification)

	rows, err := r.db.QueryContext(ctx, query, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	notifications := make([]models.Notification, 0)
	for rows.Next() {
		var n models.Notification
		var createdRaw []byte
		if err := rows.Scan(&n.ID, &n.RecipientID, &n.Title, &n.Body, &n.IsRead, &createdRaw); err != nil {
			return nil, err
		}
		n.CreatedDate = parseDBTime(createdRaw)
		notifications = append(notifications, n)
	}
	return notifications, rows.Err()
}

// MarkRead flips is_read for the recipient's own notification only.
func (r *NotificationRepository) MarkRead(ctx context.Context, id, userID string) error {
	query := fmt.Sprintf("UPDATE %s SET is_read = true WHERE id = ? AND recipient_id = ?", constants.TableNotification)
	_, err := r.db.ExecContext(ctx, query, id, userID)
	return err
}

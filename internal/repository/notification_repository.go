package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Notification struct {
	ID        string
	MemberID  string
	Type      string
	Title     string
	Message   string
	Read      bool
	Data      map[string]interface{}
	CreatedAt time.Time
}

type NotificationRepository interface {
	Create(ctx context.Context, notification *Notification) error
	FindByMember(ctx context.Context, memberID string, unreadOnly bool) ([]*Notification, error)
	UnreadCount(ctx context.Context, memberID string) (int, error)
	MarkRead(ctx context.Context, notificationID, memberID string) error
	MarkAllRead(ctx context.Context, memberID string) error
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

type pgNotificationRepository struct {
	pool *pgxpool.Pool
}

func NewNotificationRepository(pool *pgxpool.Pool) NotificationRepository {
	return &pgNotificationRepository{pool: pool}
}

func (r *pgNotificationRepository) Create(ctx context.Context, notification *Notification) error {
	query := `
		INSERT INTO notifications (member_id, type, title, message, data)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`
	return r.pool.QueryRow(ctx, query,
		notification.MemberID, notification.Type, notification.Title,
		notification.Message, notification.Data,
	).Scan(&notification.ID, &notification.CreatedAt)
}

func (r *pgNotificationRepository) FindByMember(ctx context.Context, memberID string, unreadOnly bool) ([]*Notification, error) {
	query := `
		SELECT id, member_id, type, title, message, read, data, created_at
		FROM notifications
		WHERE member_id = $1
	`
	if unreadOnly {
		query += ` AND read = FALSE`
	}
	query += ` ORDER BY created_at DESC LIMIT 100`

	rows, err := r.pool.Query(ctx, query, memberID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var notifications []*Notification
	for rows.Next() {
		n := &Notification{}
		if err := rows.Scan(&n.ID, &n.MemberID, &n.Type, &n.Title, &n.Message, &n.Read, &n.Data, &n.CreatedAt); err != nil {
			return nil, err
		}
		notifications = append(notifications, n)
	}
	return notifications, rows.Err()
}

func (r *pgNotificationRepository) UnreadCount(ctx context.Context, memberID string) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM notifications WHERE member_id = $1 AND read = FALSE`, memberID,
	).Scan(&count)
	if err == pgx.ErrNoRows {
		return 0, nil
	}
	return count, err
}

func (r *pgNotificationRepository) MarkRead(ctx context.Context, notificationID, memberID string) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE notifications SET read = TRUE WHERE id = $1 AND member_id = $2`,
		notificationID, memberID,
	)
	return err
}

func (r *pgNotificationRepository) MarkAllRead(ctx context.Context, memberID string) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE notifications SET read = TRUE WHERE member_id = $1 AND read = FALSE`, memberID,
	)
	return err
}

func (r *pgNotificationRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM notifications WHERE created_at < $1`, cutoff)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

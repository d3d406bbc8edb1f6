package notification

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/wb-go/wbf/dbpg"

	"github.com/aliskhannn/notification-gateway/internal/model"
)

var (
	ErrNotificationNotFound = errors.New("notification not found")
	// ErrDuplicateRequest is returned by Create when request_id is already stored.
	ErrDuplicateRequest = errors.New("notification with this request_id already exists")
	// ErrStatusChanged is returned by UpdateStatus when the stored status no longer matches.
	ErrStatusChanged = errors.New("notification status changed concurrently")
)

const uniqueViolation = "23505"

const columns = `id, request_id, user_id, channel, template_code, variables, metadata,
		       priority, status, error, created_at, updated_at, sent_at`

// Filter narrows List and Count. Zero values match everything.
type Filter struct {
	Status  model.Status
	Channel model.Channel
}

// Repository provides methods to interact with notifications table.
type Repository struct {
	db *dbpg.DB
}

// NewRepository creates a new notification repository.
func NewRepository(db *dbpg.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a new notification.
func (r *Repository) Create(ctx context.Context, n model.Notification) error {
	query := `
		INSERT INTO notifications (
		    id, request_id, user_id, channel, template_code, variables, metadata,
		    priority, status, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11);
    `

	variables, err := encodeJSON(n.Variables)
	if err != nil {
		return fmt.Errorf("failed to encode variables: %w", err)
	}
	if variables == nil {
		variables = []byte("{}")
	}

	metadata, err := encodeJSON(n.Metadata)
	if err != nil {
		return fmt.Errorf("failed to encode metadata: %w", err)
	}

	_, err = r.db.ExecContext(
		ctx, query,
		n.ID, n.RequestID, n.UserID, n.Channel, n.TemplateCode, variables, metadata,
		n.Priority, n.Status, n.CreatedAt, n.UpdatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return ErrDuplicateRequest
		}

		return fmt.Errorf("failed to create notification: %w", err)
	}

	return nil
}

// GetByID retrieves a notification by its ID.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (model.Notification, error) {
	query := `
		SELECT ` + columns + `
		FROM notifications
		WHERE id = $1;
    `

	n, err := scanNotification(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Notification{}, ErrNotificationNotFound
		}

		return model.Notification{}, fmt.Errorf("failed to get notification: %w", err)
	}

	return n, nil
}

// GetByRequestID retrieves a notification by its client request ID.
func (r *Repository) GetByRequestID(ctx context.Context, requestID string) (model.Notification, error) {
	query := `
		SELECT ` + columns + `
		FROM notifications
		WHERE request_id = $1;
    `

	n, err := scanNotification(r.db.QueryRowContext(ctx, query, requestID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Notification{}, ErrNotificationNotFound
		}

		return model.Notification{}, fmt.Errorf("failed to get notification by request id: %w", err)
	}

	return n, nil
}

// List returns one page of notifications, newest first.
func (r *Repository) List(ctx context.Context, f Filter, limit, offset int) ([]model.Notification, error) {
	where, args := f.where()
	args = append(args, limit, offset)

	query := fmt.Sprintf(`
		SELECT %s
		FROM notifications%s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d;
    `, columns, where, len(args)-1, len(args))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	defer rows.Close()

	notifications := make([]model.Notification, 0, limit)
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan notification: %w", err)
		}

		notifications = append(notifications, n)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate notifications: %w", err)
	}

	return notifications, nil
}

// Count returns the number of notifications matching f.
func (r *Repository) Count(ctx context.Context, f Filter) (int, error) {
	where, args := f.where()
	query := `SELECT COUNT(*) FROM notifications` + where + `;`

	var total int
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to count notifications: %w", err)
	}

	return total, nil
}

// UpdateStatus moves a notification from status from to status to and returns the stored row.
//
// The write only applies while the row is still in status from. sent_at is stamped once,
// by the first update whose target status marks the notification as sent.
func (r *Repository) UpdateStatus(
	ctx context.Context, id uuid.UUID, from, to model.Status, errMsg *string, at time.Time,
) (model.Notification, error) {
	query := `
		UPDATE notifications
		SET status = $1,
		    error = $2,
		    updated_at = $3,
		    sent_at = CASE WHEN sent_at IS NULL AND $4 THEN $3 ELSE sent_at END
		WHERE id = $5 AND status = $6
		RETURNING ` + columns + `;
    `

	n, err := scanNotification(r.db.QueryRowContext(ctx, query, to, errMsg, at, to.MarksSent(), id, from))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Notification{}, ErrStatusChanged
		}

		return model.Notification{}, fmt.Errorf("failed to update notification status: %w", err)
	}

	return n, nil
}

// Ping checks the master connection for the health endpoint.
func (r *Repository) Ping(ctx context.Context) error {
	return r.db.Master.PingContext(ctx)
}

func (f Filter) where() (string, []any) {
	var (
		conds []string
		args  []any
	)

	if f.Status != "" {
		args = append(args, f.Status)
		conds = append(conds, fmt.Sprintf("status = $%d", len(args)))
	}

	if f.Channel != "" {
		args = append(args, f.Channel)
		conds = append(conds, fmt.Sprintf("channel = $%d", len(args)))
	}

	if len(conds) == 0 {
		return "", nil
	}

	return "\n\t\tWHERE " + strings.Join(conds, " AND "), args
}

type scanner interface {
	Scan(dest ...any) error
}

func scanNotification(row scanner) (model.Notification, error) {
	var (
		n                   model.Notification
		variables, metadata []byte
		errMsg              sql.NullString
		sentAt              sql.NullTime
	)

	err := row.Scan(
		&n.ID, &n.RequestID, &n.UserID, &n.Channel, &n.TemplateCode, &variables, &metadata,
		&n.Priority, &n.Status, &errMsg, &n.CreatedAt, &n.UpdatedAt, &sentAt,
	)
	if err != nil {
		return model.Notification{}, err
	}

	if len(variables) > 0 {
		if err := json.Unmarshal(variables, &n.Variables); err != nil {
			return model.Notification{}, fmt.Errorf("failed to decode variables: %w", err)
		}
	}

	if len(metadata) > 0 {
		if err := json.Unmarshal(metadata, &n.Metadata); err != nil {
			return model.Notification{}, fmt.Errorf("failed to decode metadata: %w", err)
		}
	}

	if errMsg.Valid {
		n.Error = &errMsg.String
	}

	if sentAt.Valid {
		n.SentAt = &sentAt.Time
	}

	return n, nil
}

// encodeJSON returns a jsonb argument, or SQL NULL for a nil map.
func encodeJSON(v map[string]any) (any, error) {
	if v == nil {
		return nil, nil
	}

	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return b, nil
}

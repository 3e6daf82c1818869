package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"tempatku/internal/models"
)

func (db *DB) CreateSyncTask(ctx context.Context, task *models.SyncTask) error {
	if task.Status == "" {
		task.Status = "pending"
	}
	if task.CreatedAt.IsZero() {
		task.CreatedAt = time.Now()
	}

	query := `INSERT INTO sync_tasks (task_type, booking_id, payload, status, retry_count, last_error, next_retry_at, created_at)
              VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := db.db.ExecContext(ctx, query,
		task.TaskType, task.BookingID, task.Payload, task.Status,
		task.RetryCount, task.LastError, task.NextRetryAt, task.CreatedAt)
	if err != nil {
		return fmt.Errorf("create sync task: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("sync task id: %w", err)
	}
	task.ID = id
	return nil
}

// GetPendingSyncTasks returns tasks waiting to run: pending ones, and retry
// ones whose backoff delay has elapsed.
func (db *DB) GetPendingSyncTasks(ctx context.Context, limit int) ([]models.SyncTask, error) {
	query := `SELECT id, task_type, booking_id, payload, status, retry_count, last_error, next_retry_at, created_at
              FROM sync_tasks
              WHERE status = 'pending' OR (status = 'retry' AND next_retry_at <= ?)
              ORDER BY created_at LIMIT ?`
	rows, err := db.db.QueryContext(ctx, query, time.Now(), limit)
	if err != nil {
		return nil, fmt.Errorf("query sync tasks: %w", err)
	}
	defer rows.Close()

	var tasks []models.SyncTask
	for rows.Next() {
		var task models.SyncTask
		var nextRetry sql.NullTime
		err := rows.Scan(
			&task.ID,
			&task.TaskType,
			&task.BookingID,
			&task.Payload,
			&task.Status,
			&task.RetryCount,
			&task.LastError,
			&nextRetry,
			&task.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan sync task: %w", err)
		}
		if nextRetry.Valid {
			task.NextRetryAt = &nextRetry.Time
		}
		tasks = append(tasks, task)
	}
	return tasks, rows.Err()
}

func (db *DB) UpdateSyncTaskStatus(ctx context.Context, id int64, status, lastError string, nextRetryAt *time.Time) error {
	query := `UPDATE sync_tasks SET status = ?, last_error = ?, next_retry_at = ?,
              retry_count = retry_count + CASE WHEN ? = 'retry' THEN 1 ELSE 0 END
              WHERE id = ?`
	res, err := db.db.ExecContext(ctx, query, status, lastError, nextRetryAt, status, id)
	if err != nil {
		return fmt.Errorf("update sync task: %w", err)
	}
	return requireAffected(res)
}

package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mohammadarifzafra/topgrade-api/internal/domain/enums"
	"github.com/mohammadarifzafra/topgrade-api/internal/domain/model"
)

// TopicProgressRepo stores per-topic watch state. Mutations run inside the
// caller's transaction so a topic update and the course recount either both
// land or neither does.
type TopicProgressRepo struct {
	pool *pgxpool.Pool
}

func NewTopicProgressRepo(pool *pgxpool.Pool) *TopicProgressRepo {
	return &TopicProgressRepo{pool: pool}
}

const topicProgressColumns = `id, purchase_id, user_id, topic_kind, topic_id, watched_seconds, total_seconds, completion_percentage, status, started_at, completed_at, last_watched_at`

func (r *TopicProgressRepo) Get(ctx context.Context, tx pgx.Tx, userID int64, topic model.TopicRef) (model.TopicProgress, bool, error) {
	if tx == nil {
		return model.TopicProgress{}, false, fmt.Errorf("transaction is required")
	}

	row := tx.QueryRow(ctx, `
SELECT `+topicProgressColumns+`
FROM topic_progress
WHERE user_id = $1
  AND topic_kind = $2
  AND topic_id = $3
LIMIT 1
`, userID, topic.Kind, topic.ID)

	progress, err := scanTopicProgress(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.TopicProgress{}, false, nil
		}
		return model.TopicProgress{}, false, fmt.Errorf("get topic progress: %w", err)
	}

	return progress, true, nil
}

func (r *TopicProgressRepo) Upsert(ctx context.Context, tx pgx.Tx, progress model.TopicProgress) (model.TopicProgress, error) {
	if tx == nil {
		return model.TopicProgress{}, fmt.Errorf("transaction is required")
	}
	if progress.PurchaseID <= 0 || progress.UserID <= 0 || progress.Topic.ID <= 0 {
		return model.TopicProgress{}, fmt.Errorf("invalid topic progress payload")
	}

	row := tx.QueryRow(ctx, `
INSERT INTO topic_progress (
	purchase_id,
	user_id,
	topic_kind,
	topic_id,
	watched_seconds,
	total_seconds,
	completion_percentage,
	status,
	started_at,
	completed_at,
	last_watched_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
ON CONFLICT (user_id, topic_kind, topic_id) DO UPDATE
SET
	watched_seconds = EXCLUDED.watched_seconds,
	total_seconds = EXCLUDED.total_seconds,
	completion_percentage = EXCLUDED.completion_percentage,
	status = EXCLUDED.status,
	started_at = EXCLUDED.started_at,
	completed_at = EXCLUDED.completed_at,
	last_watched_at = EXCLUDED.last_watched_at
RETURNING `+topicProgressColumns+`
`,
		progress.PurchaseID,
		progress.UserID,
		progress.Topic.Kind,
		progress.Topic.ID,
		progress.WatchedSeconds,
		progress.TotalSeconds,
		progress.CompletionPercentage,
		progress.Status,
		progress.StartedAt,
		progress.CompletedAt,
		progress.LastWatchedAt,
	)

	saved, err := scanTopicProgress(row)
	if err != nil {
		return model.TopicProgress{}, fmt.Errorf("upsert topic progress: %w", err)
	}

	return saved, nil
}

func (r *TopicProgressRepo) ListByPurchase(ctx context.Context, tx pgx.Tx, purchaseID int64) ([]model.TopicProgress, error) {
	if tx == nil {
		return nil, fmt.Errorf("transaction is required")
	}
	if purchaseID <= 0 {
		return nil, fmt.Errorf("invalid purchase id")
	}

	rows, err := tx.Query(ctx, `
SELECT `+topicProgressColumns+`
FROM topic_progress
WHERE purchase_id = $1
ORDER BY id
`, purchaseID)
	if err != nil {
		return nil, fmt.Errorf("list topic progress in tx: %w", err)
	}

	return collectTopicProgress(rows)
}

// ListByPurchaseID is the read-path variant used outside the report
// transaction.
func (r *TopicProgressRepo) ListByPurchaseID(ctx context.Context, purchaseID int64) ([]model.TopicProgress, error) {
	if r.pool == nil {
		return nil, fmt.Errorf("postgres pool is nil")
	}
	if purchaseID <= 0 {
		return nil, fmt.Errorf("invalid purchase id")
	}

	rows, err := r.pool.Query(ctx, `
SELECT `+topicProgressColumns+`
FROM topic_progress
WHERE purchase_id = $1
ORDER BY id
`, purchaseID)
	if err != nil {
		return nil, fmt.Errorf("list topic progress: %w", err)
	}

	return collectTopicProgress(rows)
}

func collectTopicProgress(rows pgx.Rows) ([]model.TopicProgress, error) {
	defer rows.Close()

	var items []model.TopicProgress
	for rows.Next() {
		progress, err := scanTopicProgress(rows)
		if err != nil {
			return nil, fmt.Errorf("scan topic progress row: %w", err)
		}
		items = append(items, progress)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate topic progress rows: %w", err)
	}

	return items, nil
}

func scanTopicProgress(row pgx.Row) (model.TopicProgress, error) {
	var (
		progress model.TopicProgress
		kind     string
		status   string
	)
	if err := row.Scan(
		&progress.ID,
		&progress.PurchaseID,
		&progress.UserID,
		&kind,
		&progress.Topic.ID,
		&progress.WatchedSeconds,
		&progress.TotalSeconds,
		&progress.CompletionPercentage,
		&status,
		&progress.StartedAt,
		&progress.CompletedAt,
		&progress.LastWatchedAt,
	); err != nil {
		return model.TopicProgress{}, err
	}
	progress.Topic.Kind = enums.CourseKind(kind)
	progress.Status = enums.ProgressStatus(status)
	return progress, nil
}

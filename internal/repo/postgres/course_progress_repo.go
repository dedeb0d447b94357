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

// CourseProgressRepo persists the per-purchase roll-up. The row is a cache
// rebuilt by rules.Recount; this repo only writes what the recount produced.
type CourseProgressRepo struct {
	pool *pgxpool.Pool
}

func NewCourseProgressRepo(pool *pgxpool.Pool) *CourseProgressRepo {
	return &CourseProgressRepo{pool: pool}
}

const courseProgressColumns = `purchase_id, user_id, course_kind, course_id, total_topics, completed_topics, in_progress_topics, total_watch_seconds, completion_percentage, is_completed, started_at, completed_at, last_activity_at`

func (r *CourseProgressRepo) Get(ctx context.Context, tx pgx.Tx, purchaseID int64) (model.CourseProgress, bool, error) {
	if tx == nil {
		return model.CourseProgress{}, false, fmt.Errorf("transaction is required")
	}

	row := tx.QueryRow(ctx, `
SELECT `+courseProgressColumns+`
FROM course_progress
WHERE purchase_id = $1
LIMIT 1
`, purchaseID)

	progress, err := scanCourseProgress(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.CourseProgress{}, false, nil
		}
		return model.CourseProgress{}, false, fmt.Errorf("get course progress: %w", err)
	}

	return progress, true, nil
}

func (r *CourseProgressRepo) GetByPurchaseID(ctx context.Context, purchaseID int64) (model.CourseProgress, bool, error) {
	if r.pool == nil {
		return model.CourseProgress{}, false, fmt.Errorf("postgres pool is nil")
	}
	if purchaseID <= 0 {
		return model.CourseProgress{}, false, fmt.Errorf("invalid purchase id")
	}

	row := r.pool.QueryRow(ctx, `
SELECT `+courseProgressColumns+`
FROM course_progress
WHERE purchase_id = $1
LIMIT 1
`, purchaseID)

	progress, err := scanCourseProgress(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.CourseProgress{}, false, nil
		}
		return model.CourseProgress{}, false, fmt.Errorf("get course progress: %w", err)
	}

	return progress, true, nil
}

func (r *CourseProgressRepo) Upsert(ctx context.Context, tx pgx.Tx, progress model.CourseProgress) error {
	if tx == nil {
		return fmt.Errorf("transaction is required")
	}
	if progress.PurchaseID <= 0 || progress.UserID <= 0 {
		return fmt.Errorf("invalid course progress payload")
	}

	_, err := tx.Exec(ctx, `
INSERT INTO course_progress (
	purchase_id,
	user_id,
	course_kind,
	course_id,
	total_topics,
	completed_topics,
	in_progress_topics,
	total_watch_seconds,
	completion_percentage,
	is_completed,
	started_at,
	completed_at,
	last_activity_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
ON CONFLICT (purchase_id) DO UPDATE
SET
	total_topics = EXCLUDED.total_topics,
	completed_topics = EXCLUDED.completed_topics,
	in_progress_topics = EXCLUDED.in_progress_topics,
	total_watch_seconds = EXCLUDED.total_watch_seconds,
	completion_percentage = EXCLUDED.completion_percentage,
	is_completed = EXCLUDED.is_completed,
	started_at = EXCLUDED.started_at,
	completed_at = EXCLUDED.completed_at,
	last_activity_at = EXCLUDED.last_activity_at
`,
		progress.PurchaseID,
		progress.UserID,
		progress.Course.Kind,
		progress.Course.ID,
		progress.TotalTopics,
		progress.CompletedTopics,
		progress.InProgressTopics,
		progress.TotalWatchSeconds,
		progress.CompletionPercentage,
		progress.IsCompleted,
		progress.StartedAt,
		progress.CompletedAt,
		progress.LastActivityAt,
	)
	if err != nil {
		return fmt.Errorf("upsert course progress: %w", err)
	}

	return nil
}

func scanCourseProgress(row pgx.Row) (model.CourseProgress, error) {
	var (
		progress model.CourseProgress
		kind     string
	)
	if err := row.Scan(
		&progress.PurchaseID,
		&progress.UserID,
		&kind,
		&progress.Course.ID,
		&progress.TotalTopics,
		&progress.CompletedTopics,
		&progress.InProgressTopics,
		&progress.TotalWatchSeconds,
		&progress.CompletionPercentage,
		&progress.IsCompleted,
		&progress.StartedAt,
		&progress.CompletedAt,
		&progress.LastActivityAt,
	); err != nil {
		return model.CourseProgress{}, err
	}
	progress.Course.Kind = enums.CourseKind(kind)
	return progress, nil
}

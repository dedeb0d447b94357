package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mohammadarifzafra/topgrade-api/internal/domain/enums"
	"github.com/mohammadarifzafra/topgrade-api/internal/domain/model"
)

var (
	ErrPurchaseNotFound  = errors.New("purchase not found")
	ErrDuplicatePurchase = errors.New("purchase already exists for user and course")
)

// PurchaseRepo owns the purchase ledger. A partial unique index on
// (user_id, course_kind, course_id) WHERE status <> 'cancelled' is the
// concurrency control for duplicate purchases: the insert either wins the
// slot or surfaces ErrDuplicatePurchase, with no check-then-act window.
type PurchaseRepo struct {
	pool *pgxpool.Pool
}

func NewPurchaseRepo(pool *pgxpool.Pool) *PurchaseRepo {
	return &PurchaseRepo{pool: pool}
}

const purchaseColumns = `id, user_id, course_kind, course_id, status, amount_cents, discount_percentage, charged_cents, provider_ref, created_at, updated_at`

func (r *PurchaseRepo) CreatePending(ctx context.Context, userID int64, course model.CourseRef, amountCents int64, discountPct float64) (model.Purchase, error) {
	if r.pool == nil {
		return model.Purchase{}, fmt.Errorf("postgres pool is nil")
	}
	if userID <= 0 || course.ID <= 0 {
		return model.Purchase{}, fmt.Errorf("invalid purchase create payload")
	}

	row := r.pool.QueryRow(ctx, `
INSERT INTO purchases (
	user_id,
	course_kind,
	course_id,
	status,
	amount_cents,
	discount_percentage,
	charged_cents,
	provider_ref,
	created_at,
	updated_at
) VALUES ($1, $2, $3, 'pending', $4, $5, 0, '', NOW(), NOW())
RETURNING `+purchaseColumns+`
`, userID, course.Kind, course.ID, amountCents, discountPct)

	purchase, err := scanPurchase(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return model.Purchase{}, ErrDuplicatePurchase
		}
		return model.Purchase{}, fmt.Errorf("create pending purchase: %w", err)
	}

	return purchase, nil
}

func (r *PurchaseRepo) MarkCompleted(ctx context.Context, purchaseID, chargedCents int64, providerRef string) (model.Purchase, error) {
	if r.pool == nil {
		return model.Purchase{}, fmt.Errorf("postgres pool is nil")
	}
	if purchaseID <= 0 {
		return model.Purchase{}, fmt.Errorf("invalid purchase id")
	}

	row := r.pool.QueryRow(ctx, `
UPDATE purchases
SET
	status = 'completed',
	charged_cents = $2,
	provider_ref = $3,
	updated_at = NOW()
WHERE id = $1
  AND status = 'pending'
RETURNING `+purchaseColumns+`
`, purchaseID, chargedCents, providerRef)

	purchase, err := scanPurchase(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Purchase{}, ErrPurchaseNotFound
		}
		return model.Purchase{}, fmt.Errorf("mark purchase completed: %w", err)
	}

	return purchase, nil
}

func (r *PurchaseRepo) MarkCancelled(ctx context.Context, purchaseID int64, providerRef string) (model.Purchase, error) {
	if r.pool == nil {
		return model.Purchase{}, fmt.Errorf("postgres pool is nil")
	}
	if purchaseID <= 0 {
		return model.Purchase{}, fmt.Errorf("invalid purchase id")
	}

	row := r.pool.QueryRow(ctx, `
UPDATE purchases
SET
	status = 'cancelled',
	provider_ref = $2,
	updated_at = NOW()
WHERE id = $1
  AND status = 'pending'
RETURNING `+purchaseColumns+`
`, purchaseID, providerRef)

	purchase, err := scanPurchase(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Purchase{}, ErrPurchaseNotFound
		}
		return model.Purchase{}, fmt.Errorf("mark purchase cancelled: %w", err)
	}

	return purchase, nil
}

// HasCompleted is the access gate: only a completed purchase grants access
// to a course's topics and videos.
func (r *PurchaseRepo) HasCompleted(ctx context.Context, userID int64, course model.CourseRef) (bool, error) {
	if r.pool == nil {
		return false, fmt.Errorf("postgres pool is nil")
	}
	if userID <= 0 || course.ID <= 0 {
		return false, nil
	}

	var exists bool
	err := r.pool.QueryRow(ctx, `
SELECT EXISTS (
	SELECT 1
	FROM purchases
	WHERE user_id = $1
	  AND course_kind = $2
	  AND course_id = $3
	  AND status = 'completed'
)
`, userID, course.Kind, course.ID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check completed purchase: %w", err)
	}

	return exists, nil
}

func (r *PurchaseRepo) FindCompleted(ctx context.Context, userID int64, course model.CourseRef) (model.Purchase, error) {
	if r.pool == nil {
		return model.Purchase{}, fmt.Errorf("postgres pool is nil")
	}

	row := r.pool.QueryRow(ctx, `
SELECT `+purchaseColumns+`
FROM purchases
WHERE user_id = $1
  AND course_kind = $2
  AND course_id = $3
  AND status = 'completed'
LIMIT 1
`, userID, course.Kind, course.ID)

	purchase, err := scanPurchase(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Purchase{}, ErrPurchaseNotFound
		}
		return model.Purchase{}, fmt.Errorf("find completed purchase: %w", err)
	}

	return purchase, nil
}

func (r *PurchaseRepo) ListCompletedByUser(ctx context.Context, userID int64) ([]model.Purchase, error) {
	if r.pool == nil {
		return nil, fmt.Errorf("postgres pool is nil")
	}
	if userID <= 0 {
		return nil, fmt.Errorf("invalid user id")
	}

	rows, err := r.pool.Query(ctx, `
SELECT `+purchaseColumns+`
FROM purchases
WHERE user_id = $1
  AND status = 'completed'
ORDER BY created_at DESC
`, userID)
	if err != nil {
		return nil, fmt.Errorf("list completed purchases: %w", err)
	}
	defer rows.Close()

	var purchases []model.Purchase
	for rows.Next() {
		purchase, err := scanPurchase(rows)
		if err != nil {
			return nil, fmt.Errorf("scan purchase row: %w", err)
		}
		purchases = append(purchases, purchase)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate purchase rows: %w", err)
	}

	return purchases, nil
}

// LockForProgress serializes progress writes per purchase: every
// report+recompute transaction takes the purchase row lock first.
func (r *PurchaseRepo) LockForProgress(ctx context.Context, tx pgx.Tx, purchaseID int64) error {
	if tx == nil {
		return fmt.Errorf("transaction is required")
	}
	if purchaseID <= 0 {
		return fmt.Errorf("invalid purchase id")
	}

	var id int64
	err := tx.QueryRow(ctx, `
SELECT id
FROM purchases
WHERE id = $1
  AND status = 'completed'
FOR UPDATE
`, purchaseID).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrPurchaseNotFound
		}
		return fmt.Errorf("lock purchase for progress: %w", err)
	}

	return nil
}

// CancelStalePending frees purchase slots held by charges that never
// resolved, so the user can retry the purchase.
func (r *PurchaseRepo) CancelStalePending(ctx context.Context, cutoff time.Time) (int64, error) {
	if r.pool == nil {
		return 0, fmt.Errorf("postgres pool is nil")
	}

	tag, err := r.pool.Exec(ctx, `
UPDATE purchases
SET status = 'cancelled', updated_at = NOW()
WHERE status = 'pending'
  AND created_at < $1
`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("cancel stale pending purchases: %w", err)
	}

	return tag.RowsAffected(), nil
}

func scanPurchase(row pgx.Row) (model.Purchase, error) {
	var (
		purchase model.Purchase
		kind     string
		status   string
	)
	if err := row.Scan(
		&purchase.ID,
		&purchase.UserID,
		&kind,
		&purchase.Course.ID,
		&status,
		&purchase.AmountCents,
		&purchase.DiscountPercentage,
		&purchase.ChargedCents,
		&purchase.ProviderRef,
		&purchase.CreatedAt,
		&purchase.UpdatedAt,
	); err != nil {
		return model.Purchase{}, err
	}
	purchase.Course.Kind = enums.CourseKind(kind)
	purchase.Status = enums.PurchaseStatus(status)
	return purchase, nil
}

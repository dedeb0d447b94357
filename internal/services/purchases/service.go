package purchases

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mohammadarifzafra/topgrade-api/internal/domain/model"
	"github.com/mohammadarifzafra/topgrade-api/internal/infra/payment"
	pgrepo "github.com/mohammadarifzafra/topgrade-api/internal/repo/postgres"
)

var (
	ErrValidation       = errors.New("validation error")
	ErrCourseNotFound   = errors.New("course not found")
	ErrAlreadyPurchased = errors.New("course already purchased")
	ErrPaymentFailed    = errors.New("payment failed")
)

const chargeCurrency = "USD"

type CatalogStore interface {
	GetCourse(ctx context.Context, ref model.CourseRef) (model.Course, error)
}

type LedgerStore interface {
	CreatePending(ctx context.Context, userID int64, course model.CourseRef, amountCents int64, discountPct float64) (model.Purchase, error)
	MarkCompleted(ctx context.Context, purchaseID int64, chargedCents int64, providerRef string) (model.Purchase, error)
	MarkCancelled(ctx context.Context, purchaseID int64, providerRef string) (model.Purchase, error)
	HasCompleted(ctx context.Context, userID int64, course model.CourseRef) (bool, error)
	ListCompletedByUser(ctx context.Context, userID int64) ([]model.Purchase, error)
}

type SnapshotSource interface {
	Snapshot(ctx context.Context, ref model.CourseRef) (model.CourseSnapshot, error)
}

type ProgressStore interface {
	GetByPurchaseID(ctx context.Context, purchaseID int64) (model.CourseProgress, bool, error)
}

type Gateway interface {
	Charge(ctx context.Context, req payment.ChargeRequest) (payment.ChargeResult, error)
}

type Dependencies struct {
	Catalog   CatalogStore
	Ledger    LedgerStore
	Snapshots SnapshotSource
	Progress  ProgressStore
	Gateway   Gateway
	Logger    *zap.Logger
}

type Service struct {
	catalog   CatalogStore
	ledger    LedgerStore
	snapshots SnapshotSource
	progress  ProgressStore
	gateway   Gateway
	logger    *zap.Logger
	newKey    func() string
}

func NewService(deps Dependencies) *Service {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		catalog:   deps.Catalog,
		ledger:    deps.Ledger,
		snapshots: deps.Snapshots,
		progress:  deps.Progress,
		gateway:   deps.Gateway,
		logger:    logger,
		newKey:    uuid.NewString,
	}
}

type RecordResult struct {
	Purchase     model.Purchase
	Course       model.Course
	SavingsCents int64
}

// PurchaseView is one row of the owned-courses listing: the ledger entry,
// a denormalized course snapshot, and the progress rollup when one exists.
type PurchaseView struct {
	Purchase model.Purchase
	Course   model.CourseSnapshot
	Progress *model.CourseProgress
}

// Record creates the ledger row first and charges after, so two concurrent
// buys of the same course race on the unique index instead of the gateway.
// The losing request sees ErrAlreadyPurchased; a failed charge cancels the
// row, which frees the slot for a retry.
func (s *Service) Record(ctx context.Context, userID int64, ref model.CourseRef) (RecordResult, error) {
	if userID <= 0 {
		return RecordResult{}, ErrValidation
	}
	if s.catalog == nil || s.ledger == nil || s.gateway == nil {
		return RecordResult{}, fmt.Errorf("purchases service is not fully wired")
	}

	course, err := s.catalog.GetCourse(ctx, ref)
	if err != nil {
		if errors.Is(err, pgrepo.ErrCourseNotFound) {
			return RecordResult{}, ErrCourseNotFound
		}
		return RecordResult{}, fmt.Errorf("load course: %w", err)
	}

	amount := course.DiscountedPriceCents()

	pending, err := s.ledger.CreatePending(ctx, userID, ref, course.PriceCents, course.DiscountPercentage)
	if err != nil {
		if errors.Is(err, pgrepo.ErrDuplicatePurchase) {
			return RecordResult{}, ErrAlreadyPurchased
		}
		return RecordResult{}, fmt.Errorf("create pending purchase: %w", err)
	}

	result, err := s.gateway.Charge(ctx, payment.ChargeRequest{
		UserID:         userID,
		AmountCents:    amount,
		Currency:       chargeCurrency,
		Description:    course.Title,
		IdempotencyKey: s.newKey(),
	})
	if err != nil || result.Declined {
		if cancelErr := s.cancel(ctx, pending.ID, result.ProviderRef); cancelErr != nil {
			s.logger.Error("cancel purchase after failed charge",
				zap.Int64("purchase_id", pending.ID), zap.Error(cancelErr))
		}
		if err != nil {
			return RecordResult{}, fmt.Errorf("%w: %v", ErrPaymentFailed, err)
		}
		s.logger.Info("charge declined",
			zap.Int64("user_id", userID), zap.String("reason", result.Reason))
		return RecordResult{}, ErrPaymentFailed
	}

	completed, err := s.ledger.MarkCompleted(ctx, pending.ID, amount, result.ProviderRef)
	if err != nil {
		return RecordResult{}, fmt.Errorf("mark purchase completed: %w", err)
	}

	s.logger.Info("purchase recorded",
		zap.Int64("user_id", userID),
		zap.String("course_kind", string(ref.Kind)),
		zap.Int64("course_id", ref.ID),
		zap.Int64("charged_cents", amount))

	return RecordResult{
		Purchase:     completed,
		Course:       course,
		SavingsCents: completed.SavingsCents(),
	}, nil
}

func (s *Service) cancel(ctx context.Context, purchaseID int64, providerRef string) error {
	cancelCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	_, err := s.ledger.MarkCancelled(cancelCtx, purchaseID, providerRef)
	return err
}

// HasAccess reports whether the user owns a completed purchase of the
// course. Pending and cancelled rows never grant access.
func (s *Service) HasAccess(ctx context.Context, userID int64, ref model.CourseRef) (bool, error) {
	if userID <= 0 {
		return false, ErrValidation
	}
	if s.ledger == nil {
		return false, fmt.Errorf("ledger store is nil")
	}
	return s.ledger.HasCompleted(ctx, userID, ref)
}

func (s *Service) List(ctx context.Context, userID int64) ([]PurchaseView, error) {
	if userID <= 0 {
		return nil, ErrValidation
	}
	if s.ledger == nil {
		return nil, fmt.Errorf("ledger store is nil")
	}

	rows, err := s.ledger.ListCompletedByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list purchases: %w", err)
	}

	views := make([]PurchaseView, 0, len(rows))
	for _, row := range rows {
		view := PurchaseView{Purchase: row}

		if s.snapshots != nil {
			snapshot, err := s.snapshots.Snapshot(ctx, row.Course)
			if err != nil {
				s.logger.Warn("course snapshot unavailable",
					zap.Int64("purchase_id", row.ID), zap.Error(err))
			} else {
				view.Course = snapshot
			}
		}

		if s.progress != nil {
			rollup, ok, err := s.progress.GetByPurchaseID(ctx, row.ID)
			if err != nil {
				return nil, fmt.Errorf("load course progress: %w", err)
			}
			if ok {
				view.Progress = &rollup
			}
		}

		views = append(views, view)
	}

	return views, nil
}

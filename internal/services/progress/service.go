package progress

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/mohammadarifzafra/topgrade-api/internal/domain/model"
	"github.com/mohammadarifzafra/topgrade-api/internal/domain/rules"
	pgrepo "github.com/mohammadarifzafra/topgrade-api/internal/repo/postgres"
	catalogsvc "github.com/mohammadarifzafra/topgrade-api/internal/services/catalog"
)

var (
	ErrValidation    = errors.New("validation error")
	ErrTopicNotFound = errors.New("topic not found")
	ErrAccessDenied  = errors.New("course access denied")
)

// TxRunner runs a function inside a database transaction. Report needs one
// so the topic upsert and the course recount commit together.
type TxRunner interface {
	WithTx(ctx context.Context, fn func(ctx context.Context, tx pgx.Tx) error) error
}

type CatalogResolver interface {
	Topic(ctx context.Context, ref model.TopicRef) (model.Topic, model.CourseRef, error)
}

type LedgerStore interface {
	FindCompleted(ctx context.Context, userID int64, course model.CourseRef) (model.Purchase, error)
	LockForProgress(ctx context.Context, tx pgx.Tx, purchaseID int64) error
}

type TopicStore interface {
	Get(ctx context.Context, tx pgx.Tx, userID int64, topic model.TopicRef) (model.TopicProgress, bool, error)
	Upsert(ctx context.Context, tx pgx.Tx, progress model.TopicProgress) (model.TopicProgress, error)
	ListByPurchase(ctx context.Context, tx pgx.Tx, purchaseID int64) ([]model.TopicProgress, error)
	ListByPurchaseID(ctx context.Context, purchaseID int64) ([]model.TopicProgress, error)
}

type CourseStore interface {
	Get(ctx context.Context, tx pgx.Tx, purchaseID int64) (model.CourseProgress, bool, error)
	Upsert(ctx context.Context, tx pgx.Tx, progress model.CourseProgress) error
	GetByPurchaseID(ctx context.Context, purchaseID int64) (model.CourseProgress, bool, error)
}

type Dependencies struct {
	Runner  TxRunner
	Catalog CatalogResolver
	Ledger  LedgerStore
	Topics  TopicStore
	Courses CourseStore
	Logger  *zap.Logger
}

type Service struct {
	runner  TxRunner
	catalog CatalogResolver
	ledger  LedgerStore
	topics  TopicStore
	courses CourseStore
	logger  *zap.Logger
	now     func() time.Time
}

func NewService(deps Dependencies) *Service {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		runner:  deps.Runner,
		catalog: deps.Catalog,
		ledger:  deps.Ledger,
		topics:  deps.Topics,
		courses: deps.Courses,
		logger:  logger,
		now:     time.Now,
	}
}

type ReportInput struct {
	Topic          model.TopicRef
	WatchedSeconds int64
	TotalSeconds   *int64
}

type ReportResult struct {
	Topic  model.TopicProgress
	Course model.CourseProgress
}

type CourseResult struct {
	Course model.CourseProgress
	Topics []model.TopicProgress
}

// Report records a watch-position update for one topic and rebuilds the
// owning course's roll-up in the same transaction. The purchase row is
// locked first, serializing concurrent reports against the same purchase
// so the recount always sees the final topic state.
func (s *Service) Report(ctx context.Context, userID int64, input ReportInput) (ReportResult, error) {
	if userID <= 0 || input.Topic.ID <= 0 || input.WatchedSeconds < 0 {
		return ReportResult{}, ErrValidation
	}
	if input.TotalSeconds != nil && *input.TotalSeconds <= 0 {
		return ReportResult{}, ErrValidation
	}
	if s.runner == nil || s.catalog == nil || s.ledger == nil || s.topics == nil || s.courses == nil {
		return ReportResult{}, fmt.Errorf("progress service is not fully wired")
	}

	topic, courseRef, err := s.catalog.Topic(ctx, input.Topic)
	if err != nil {
		if isTopicNotFound(err) {
			return ReportResult{}, ErrTopicNotFound
		}
		return ReportResult{}, fmt.Errorf("resolve topic: %w", err)
	}

	purchase, err := s.ledger.FindCompleted(ctx, userID, courseRef)
	if err != nil {
		if errors.Is(err, pgrepo.ErrPurchaseNotFound) {
			return ReportResult{}, ErrAccessDenied
		}
		return ReportResult{}, fmt.Errorf("check course access: %w", err)
	}

	var result ReportResult
	err = s.runner.WithTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		if err := s.ledger.LockForProgress(ctx, tx, purchase.ID); err != nil {
			return fmt.Errorf("lock purchase: %w", err)
		}

		prev, found, err := s.topics.Get(ctx, tx, userID, input.Topic)
		if err != nil {
			return err
		}
		if !found {
			prev = model.TopicProgress{
				PurchaseID:   purchase.ID,
				UserID:       userID,
				Topic:        input.Topic,
				TotalSeconds: initialTotalSeconds(topic),
			}
		}

		now := s.now().UTC()
		next := rules.ApplyReport(prev, input.WatchedSeconds, input.TotalSeconds, now)

		saved, err := s.topics.Upsert(ctx, tx, next)
		if err != nil {
			return err
		}

		all, err := s.topics.ListByPurchase(ctx, tx, purchase.ID)
		if err != nil {
			return err
		}

		base, found, err := s.courses.Get(ctx, tx, purchase.ID)
		if err != nil {
			return err
		}
		if !found {
			base = model.CourseProgress{
				PurchaseID: purchase.ID,
				UserID:     userID,
				Course:     courseRef,
			}
		}

		rollup := rules.Recount(base, all, now)
		if err := s.courses.Upsert(ctx, tx, rollup); err != nil {
			return err
		}

		result = ReportResult{Topic: saved, Course: rollup}
		return nil
	})
	if err != nil {
		return ReportResult{}, err
	}

	s.logger.Debug("progress reported",
		zap.Int64("user_id", userID),
		zap.Int64("topic_id", input.Topic.ID),
		zap.Float64("course_pct", result.Course.CompletionPercentage))

	return result, nil
}

// Course returns the roll-up and per-topic rows for a purchased course. A
// course with no reports yet comes back as a zero roll-up, not an error.
func (s *Service) Course(ctx context.Context, userID int64, ref model.CourseRef) (CourseResult, error) {
	if userID <= 0 || ref.ID <= 0 {
		return CourseResult{}, ErrValidation
	}
	if s.ledger == nil || s.topics == nil || s.courses == nil {
		return CourseResult{}, fmt.Errorf("progress service is not fully wired")
	}

	purchase, err := s.ledger.FindCompleted(ctx, userID, ref)
	if err != nil {
		if errors.Is(err, pgrepo.ErrPurchaseNotFound) {
			return CourseResult{}, ErrAccessDenied
		}
		return CourseResult{}, fmt.Errorf("check course access: %w", err)
	}

	rollup, found, err := s.courses.GetByPurchaseID(ctx, purchase.ID)
	if err != nil {
		return CourseResult{}, err
	}
	if !found {
		rollup = model.CourseProgress{
			PurchaseID: purchase.ID,
			UserID:     userID,
			Course:     ref,
		}
	}

	topics, err := s.topics.ListByPurchaseID(ctx, purchase.ID)
	if err != nil {
		return CourseResult{}, err
	}

	return CourseResult{Course: rollup, Topics: topics}, nil
}

// initialTotalSeconds seeds a fresh row's denominator: the catalog duration
// when known, else the default lesson length for the course branch. A
// client-supplied total in the same report overwrites it in ApplyReport.
func initialTotalSeconds(topic model.Topic) int64 {
	if topic.DurationSeconds != nil && *topic.DurationSeconds > 0 {
		return *topic.DurationSeconds
	}
	return rules.DefaultTopicSeconds(topic.Ref.Kind)
}

func isTopicNotFound(err error) bool {
	return errors.Is(err, pgrepo.ErrTopicNotFound) || errors.Is(err, catalogsvc.ErrTopicNotFound)
}

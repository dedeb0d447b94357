package bookmarks

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/mohammadarifzafra/topgrade-api/internal/domain/model"
	pgrepo "github.com/mohammadarifzafra/topgrade-api/internal/repo/postgres"
	catalogsvc "github.com/mohammadarifzafra/topgrade-api/internal/services/catalog"
)

var (
	ErrValidation        = errors.New("validation error")
	ErrCourseNotFound    = errors.New("course not found")
	ErrAlreadyBookmarked = errors.New("course already bookmarked")
	ErrNotBookmarked     = errors.New("course not bookmarked")
)

type Store interface {
	Create(ctx context.Context, userID int64, course model.CourseRef) (model.Bookmark, error)
	Delete(ctx context.Context, userID int64, course model.CourseRef) error
	ListByUser(ctx context.Context, userID int64) ([]model.Bookmark, error)
}

type SnapshotSource interface {
	Snapshot(ctx context.Context, ref model.CourseRef) (model.CourseSnapshot, error)
}

type Service struct {
	store     Store
	snapshots SnapshotSource
	logger    *zap.Logger
}

func NewService(store Store, snapshots SnapshotSource, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		store:     store,
		snapshots: snapshots,
		logger:    logger,
	}
}

// Add bookmarks a course. The snapshot lookup doubles as an existence
// check so a dangling reference never lands in the table.
func (s *Service) Add(ctx context.Context, userID int64, ref model.CourseRef) (model.Bookmark, error) {
	if userID <= 0 || ref.ID <= 0 {
		return model.Bookmark{}, ErrValidation
	}
	if s.store == nil || s.snapshots == nil {
		return model.Bookmark{}, fmt.Errorf("bookmarks service is not fully wired")
	}

	if _, err := s.snapshots.Snapshot(ctx, ref); err != nil {
		if errors.Is(err, catalogsvc.ErrCourseNotFound) {
			return model.Bookmark{}, ErrCourseNotFound
		}
		return model.Bookmark{}, fmt.Errorf("verify course: %w", err)
	}

	bookmark, err := s.store.Create(ctx, userID, ref)
	if err != nil {
		if errors.Is(err, pgrepo.ErrBookmarkExists) {
			return model.Bookmark{}, ErrAlreadyBookmarked
		}
		return model.Bookmark{}, fmt.Errorf("create bookmark: %w", err)
	}

	return bookmark, nil
}

func (s *Service) Remove(ctx context.Context, userID int64, ref model.CourseRef) error {
	if userID <= 0 || ref.ID <= 0 {
		return ErrValidation
	}
	if s.store == nil {
		return fmt.Errorf("bookmark store is nil")
	}

	if err := s.store.Delete(ctx, userID, ref); err != nil {
		if errors.Is(err, pgrepo.ErrBookmarkNotFound) {
			return ErrNotBookmarked
		}
		return fmt.Errorf("delete bookmark: %w", err)
	}

	return nil
}

// List returns the user's bookmarks newest first, each with its course
// snapshot. A bookmark whose course has since been unpublished is skipped
// rather than failing the whole listing.
func (s *Service) List(ctx context.Context, userID int64) ([]model.BookmarkView, error) {
	if userID <= 0 {
		return nil, ErrValidation
	}
	if s.store == nil || s.snapshots == nil {
		return nil, fmt.Errorf("bookmarks service is not fully wired")
	}

	rows, err := s.store.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list bookmarks: %w", err)
	}

	views := make([]model.BookmarkView, 0, len(rows))
	for _, row := range rows {
		snapshot, err := s.snapshots.Snapshot(ctx, row.Course)
		if err != nil {
			if errors.Is(err, catalogsvc.ErrCourseNotFound) {
				s.logger.Warn("bookmarked course missing from catalog",
					zap.Int64("bookmark_id", row.ID),
					zap.Int64("course_id", row.Course.ID))
				continue
			}
			return nil, fmt.Errorf("load course snapshot: %w", err)
		}
		views = append(views, model.BookmarkView{Bookmark: row, Course: snapshot})
	}

	return views, nil
}

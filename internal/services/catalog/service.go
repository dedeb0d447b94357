package catalog

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/mohammadarifzafra/topgrade-api/internal/domain/enums"
	"github.com/mohammadarifzafra/topgrade-api/internal/domain/model"
	pgrepo "github.com/mohammadarifzafra/topgrade-api/internal/repo/postgres"
)

var (
	ErrValidation     = errors.New("validation error")
	ErrCourseNotFound = errors.New("course not found")
	ErrTopicNotFound  = errors.New("topic not found")
)

type Store interface {
	ListCategories(ctx context.Context) ([]model.Category, error)
	ListCourses(ctx context.Context, kind enums.CourseKind, categoryID *int64) ([]model.Course, error)
	GetCourse(ctx context.Context, ref model.CourseRef) (model.Course, error)
	GetSyllabus(ctx context.Context, ref model.CourseRef) ([]model.SyllabusModule, error)
	GetTopic(ctx context.Context, ref model.TopicRef) (model.Topic, model.CourseRef, error)
	GetSnapshot(ctx context.Context, ref model.CourseRef) (model.CourseSnapshot, error)
}

type SnapshotCache interface {
	GetSnapshot(ctx context.Context, ref model.CourseRef) (model.CourseSnapshot, bool, error)
	SetSnapshot(ctx context.Context, snapshot model.CourseSnapshot) error
}

type Service struct {
	store  Store
	cache  SnapshotCache
	logger *zap.Logger
}

type CourseDetail struct {
	Course   model.Course
	Syllabus []model.SyllabusModule
}

// NewService wires the catalog reads. cache may be nil; listings then read
// the store directly.
func NewService(store Store, cache SnapshotCache, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		store:  store,
		cache:  cache,
		logger: logger,
	}
}

func (s *Service) Categories(ctx context.Context) ([]model.Category, error) {
	if s.store == nil {
		return nil, fmt.Errorf("catalog store is nil")
	}
	return s.store.ListCategories(ctx)
}

func (s *Service) Courses(ctx context.Context, kind enums.CourseKind, categoryID *int64) ([]model.Course, error) {
	if s.store == nil {
		return nil, fmt.Errorf("catalog store is nil")
	}
	return s.store.ListCourses(ctx, kind, categoryID)
}

func (s *Service) Course(ctx context.Context, ref model.CourseRef) (CourseDetail, error) {
	if s.store == nil {
		return CourseDetail{}, fmt.Errorf("catalog store is nil")
	}

	course, err := s.store.GetCourse(ctx, ref)
	if err != nil {
		if errors.Is(err, pgrepo.ErrCourseNotFound) {
			return CourseDetail{}, ErrCourseNotFound
		}
		return CourseDetail{}, err
	}

	syllabus, err := s.store.GetSyllabus(ctx, ref)
	if err != nil {
		return CourseDetail{}, err
	}

	return CourseDetail{Course: course, Syllabus: syllabus}, nil
}

// Topic resolves a tagged topic reference together with the course that
// owns it (topic -> syllabus module -> course).
func (s *Service) Topic(ctx context.Context, ref model.TopicRef) (model.Topic, model.CourseRef, error) {
	if s.store == nil {
		return model.Topic{}, model.CourseRef{}, fmt.Errorf("catalog store is nil")
	}

	topic, course, err := s.store.GetTopic(ctx, ref)
	if err != nil {
		if errors.Is(err, pgrepo.ErrTopicNotFound) {
			return model.Topic{}, model.CourseRef{}, ErrTopicNotFound
		}
		return model.Topic{}, model.CourseRef{}, err
	}

	return topic, course, nil
}

// Snapshot is the read-through used by bookmark and purchase listings: the
// cache answers when it can, otherwise the store is read and the cache
// refilled. Cache failures degrade to direct reads.
func (s *Service) Snapshot(ctx context.Context, ref model.CourseRef) (model.CourseSnapshot, error) {
	if s.store == nil {
		return model.CourseSnapshot{}, fmt.Errorf("catalog store is nil")
	}

	if s.cache != nil {
		snapshot, ok, err := s.cache.GetSnapshot(ctx, ref)
		if err != nil {
			s.logger.Warn("catalog snapshot cache read failed", zap.Error(err))
		} else if ok {
			return snapshot, nil
		}
	}

	snapshot, err := s.store.GetSnapshot(ctx, ref)
	if err != nil {
		if errors.Is(err, pgrepo.ErrCourseNotFound) {
			return model.CourseSnapshot{}, ErrCourseNotFound
		}
		return model.CourseSnapshot{}, err
	}

	if s.cache != nil {
		if err := s.cache.SetSnapshot(ctx, snapshot); err != nil {
			s.logger.Warn("catalog snapshot cache write failed", zap.Error(err))
		}
	}

	return snapshot, nil
}

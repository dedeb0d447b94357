package bookmarks

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mohammadarifzafra/topgrade-api/internal/domain/enums"
	"github.com/mohammadarifzafra/topgrade-api/internal/domain/model"
	pgrepo "github.com/mohammadarifzafra/topgrade-api/internal/repo/postgres"
	catalogsvc "github.com/mohammadarifzafra/topgrade-api/internal/services/catalog"
)

var knownCourse = model.CourseRef{Kind: enums.CourseKindStandard, ID: 1}

func TestAddAndList(t *testing.T) {
	store := newMemStore()
	svc := NewService(store, stubSnapshots{}, nil)

	bookmark, err := svc.Add(context.Background(), 42, knownCourse)
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if bookmark.Course != knownCourse {
		t.Fatalf("unexpected bookmark course: %+v", bookmark.Course)
	}

	views, err := svc.List(context.Background(), 42)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(views) != 1 {
		t.Fatalf("expected 1 bookmark, got %d", len(views))
	}
	if views[0].Course.Title == "" {
		t.Fatalf("expected snapshot attached to listing")
	}
}

func TestAddDuplicate(t *testing.T) {
	store := newMemStore()
	svc := NewService(store, stubSnapshots{}, nil)

	if _, err := svc.Add(context.Background(), 42, knownCourse); err != nil {
		t.Fatalf("first add: %v", err)
	}
	if _, err := svc.Add(context.Background(), 42, knownCourse); !errors.Is(err, ErrAlreadyBookmarked) {
		t.Fatalf("expected ErrAlreadyBookmarked, got %v", err)
	}
}

func TestAddUnknownCourse(t *testing.T) {
	svc := NewService(newMemStore(), stubSnapshots{}, nil)

	_, err := svc.Add(context.Background(), 42, model.CourseRef{Kind: enums.CourseKindAdvanced, ID: 999})
	if !errors.Is(err, ErrCourseNotFound) {
		t.Fatalf("expected ErrCourseNotFound, got %v", err)
	}
}

func TestRemove(t *testing.T) {
	store := newMemStore()
	svc := NewService(store, stubSnapshots{}, nil)

	if _, err := svc.Add(context.Background(), 42, knownCourse); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := svc.Remove(context.Background(), 42, knownCourse); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if err := svc.Remove(context.Background(), 42, knownCourse); !errors.Is(err, ErrNotBookmarked) {
		t.Fatalf("expected ErrNotBookmarked, got %v", err)
	}
}

func TestListSkipsUnpublishedCourses(t *testing.T) {
	store := newMemStore()
	snapshots := &flakySnapshots{missing: map[int64]bool{2: true}}
	svc := NewService(store, snapshots, nil)

	store.add(42, model.CourseRef{Kind: enums.CourseKindStandard, ID: 1})
	store.add(42, model.CourseRef{Kind: enums.CourseKindStandard, ID: 2})

	views, err := svc.List(context.Background(), 42)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(views) != 1 {
		t.Fatalf("expected missing course skipped, got %d views", len(views))
	}
	if views[0].Bookmark.Course.ID != 1 {
		t.Fatalf("expected surviving bookmark for course 1, got %d", views[0].Bookmark.Course.ID)
	}
}

type stubSnapshots struct{}

func (stubSnapshots) Snapshot(_ context.Context, ref model.CourseRef) (model.CourseSnapshot, error) {
	if ref != knownCourse {
		return model.CourseSnapshot{}, catalogsvc.ErrCourseNotFound
	}
	return model.CourseSnapshot{Ref: ref, Title: "Data Engineering"}, nil
}

type flakySnapshots struct {
	missing map[int64]bool
}

func (s *flakySnapshots) Snapshot(_ context.Context, ref model.CourseRef) (model.CourseSnapshot, error) {
	if s.missing[ref.ID] {
		return model.CourseSnapshot{}, catalogsvc.ErrCourseNotFound
	}
	return model.CourseSnapshot{Ref: ref, Title: "Course"}, nil
}

type memStore struct {
	nextID int64
	rows   []model.Bookmark
}

func newMemStore() *memStore {
	return &memStore{}
}

func (s *memStore) add(userID int64, course model.CourseRef) {
	s.nextID++
	s.rows = append(s.rows, model.Bookmark{
		ID:        s.nextID,
		UserID:    userID,
		Course:    course,
		CreatedAt: time.Now().UTC(),
	})
}

func (s *memStore) Create(_ context.Context, userID int64, course model.CourseRef) (model.Bookmark, error) {
	for _, row := range s.rows {
		if row.UserID == userID && row.Course == course {
			return model.Bookmark{}, pgrepo.ErrBookmarkExists
		}
	}
	s.add(userID, course)
	return s.rows[len(s.rows)-1], nil
}

func (s *memStore) Delete(_ context.Context, userID int64, course model.CourseRef) error {
	for i, row := range s.rows {
		if row.UserID == userID && row.Course == course {
			s.rows = append(s.rows[:i], s.rows[i+1:]...)
			return nil
		}
	}
	return pgrepo.ErrBookmarkNotFound
}

func (s *memStore) ListByUser(_ context.Context, userID int64) ([]model.Bookmark, error) {
	var items []model.Bookmark
	for _, row := range s.rows {
		if row.UserID == userID {
			items = append(items, row)
		}
	}
	return items, nil
}

package catalog

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"

	"github.com/mohammadarifzafra/topgrade-api/internal/domain/enums"
	"github.com/mohammadarifzafra/topgrade-api/internal/domain/model"
	pgrepo "github.com/mohammadarifzafra/topgrade-api/internal/repo/postgres"
	redisrepo "github.com/mohammadarifzafra/topgrade-api/internal/repo/redis"
)

var sampleRef = model.CourseRef{Kind: enums.CourseKindStandard, ID: 1}

func TestSnapshotReadThrough(t *testing.T) {
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	store := &stubStore{}
	cache := redisrepo.NewCatalogCacheRepo(client, time.Minute)
	svc := NewService(store, cache, nil)

	first, err := svc.Snapshot(context.Background(), sampleRef)
	if err != nil {
		t.Fatalf("first snapshot: %v", err)
	}
	second, err := svc.Snapshot(context.Background(), sampleRef)
	if err != nil {
		t.Fatalf("second snapshot: %v", err)
	}

	if store.snapshotCalls != 1 {
		t.Fatalf("expected one store read, got %d", store.snapshotCalls)
	}
	if first != second {
		t.Fatalf("cached snapshot differs: %+v vs %+v", first, second)
	}
	if second.DiscountedPriceCents != 40000 {
		t.Fatalf("expected discounted price 40000 in snapshot, got %d", second.DiscountedPriceCents)
	}
}

func TestSnapshotCacheExpiry(t *testing.T) {
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	store := &stubStore{}
	svc := NewService(store, redisrepo.NewCatalogCacheRepo(client, time.Minute), nil)

	if _, err := svc.Snapshot(context.Background(), sampleRef); err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	mr.FastForward(2 * time.Minute)
	if _, err := svc.Snapshot(context.Background(), sampleRef); err != nil {
		t.Fatalf("snapshot after expiry: %v", err)
	}

	if store.snapshotCalls != 2 {
		t.Fatalf("expected store re-read after expiry, got %d calls", store.snapshotCalls)
	}
}

func TestSnapshotWithoutCache(t *testing.T) {
	store := &stubStore{}
	svc := NewService(store, nil, nil)

	if _, err := svc.Snapshot(context.Background(), sampleRef); err != nil {
		t.Fatalf("snapshot without cache: %v", err)
	}
	if store.snapshotCalls != 1 {
		t.Fatalf("expected direct store read, got %d", store.snapshotCalls)
	}
}

func TestSnapshotUnknownCourse(t *testing.T) {
	svc := NewService(&stubStore{}, nil, nil)

	_, err := svc.Snapshot(context.Background(), model.CourseRef{Kind: enums.CourseKindAdvanced, ID: 99})
	if !errors.Is(err, ErrCourseNotFound) {
		t.Fatalf("expected ErrCourseNotFound, got %v", err)
	}
}

func TestCourseMapsNotFound(t *testing.T) {
	svc := NewService(&stubStore{}, nil, nil)

	_, err := svc.Course(context.Background(), model.CourseRef{Kind: enums.CourseKindAdvanced, ID: 99})
	if !errors.Is(err, ErrCourseNotFound) {
		t.Fatalf("expected ErrCourseNotFound, got %v", err)
	}
}

func TestTopicMapsNotFound(t *testing.T) {
	svc := NewService(&stubStore{}, nil, nil)

	_, _, err := svc.Topic(context.Background(), model.TopicRef{Kind: enums.CourseKindStandard, ID: 404})
	if !errors.Is(err, ErrTopicNotFound) {
		t.Fatalf("expected ErrTopicNotFound, got %v", err)
	}
}

type stubStore struct {
	snapshotCalls int
}

func (s *stubStore) ListCategories(context.Context) ([]model.Category, error) {
	return []model.Category{{ID: 1, Name: "Engineering"}}, nil
}

func (s *stubStore) ListCourses(context.Context, enums.CourseKind, *int64) ([]model.Course, error) {
	return nil, nil
}

func (s *stubStore) GetCourse(_ context.Context, ref model.CourseRef) (model.Course, error) {
	if ref != sampleRef {
		return model.Course{}, pgrepo.ErrCourseNotFound
	}
	return model.Course{Ref: ref, Title: "Data Engineering", PriceCents: 50000, DiscountPercentage: 20}, nil
}

func (s *stubStore) GetSyllabus(context.Context, model.CourseRef) ([]model.SyllabusModule, error) {
	return nil, nil
}

func (s *stubStore) GetTopic(_ context.Context, ref model.TopicRef) (model.Topic, model.CourseRef, error) {
	return model.Topic{}, model.CourseRef{}, pgrepo.ErrTopicNotFound
}

func (s *stubStore) GetSnapshot(_ context.Context, ref model.CourseRef) (model.CourseSnapshot, error) {
	if ref != sampleRef {
		return model.CourseSnapshot{}, pgrepo.ErrCourseNotFound
	}
	s.snapshotCalls++
	return model.CourseSnapshot{
		Ref:                  ref,
		Title:                "Data Engineering",
		PriceCents:           50000,
		DiscountPercentage:   20,
		DiscountedPriceCents: 40000,
	}, nil
}

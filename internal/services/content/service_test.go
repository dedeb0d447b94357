package content

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/mohammadarifzafra/topgrade-api/internal/domain/enums"
	"github.com/mohammadarifzafra/topgrade-api/internal/domain/model"
	catalogsvc "github.com/mohammadarifzafra/topgrade-api/internal/services/catalog"
)

var (
	paidTopic = model.TopicRef{Kind: enums.CourseKindStandard, ID: 10}
	freeTopic = model.TopicRef{Kind: enums.CourseKindStandard, ID: 11}
	bareTopic = model.TopicRef{Kind: enums.CourseKindStandard, ID: 12}
)

func TestVideoURLRequiresPurchase(t *testing.T) {
	access := &stubAccess{}
	svc := newTestService(access)

	_, err := svc.VideoURL(context.Background(), 42, paidTopic)
	if !errors.Is(err, ErrAccessDenied) {
		t.Fatalf("expected ErrAccessDenied, got %v", err)
	}

	access.granted = true
	link, err := svc.VideoURL(context.Background(), 42, paidTopic)
	if err != nil {
		t.Fatalf("video url with access: %v", err)
	}
	if link.URL != "https://cdn.test/videos/topic-10.mp4" {
		t.Fatalf("unexpected url: %q", link.URL)
	}
	if link.ExpiresAt.IsZero() {
		t.Fatalf("expected expiry on signed link")
	}
}

func TestVideoURLFreeTrialIsOpen(t *testing.T) {
	access := &stubAccess{}
	svc := newTestService(access)

	link, err := svc.VideoURL(context.Background(), 42, freeTopic)
	if err != nil {
		t.Fatalf("free trial video url: %v", err)
	}
	if link.URL == "" {
		t.Fatalf("expected signed url for free trial topic")
	}
	if access.calls != 0 {
		t.Fatalf("free trial must not consult the purchase ledger, got %d calls", access.calls)
	}
}

func TestVideoURLUnknownTopic(t *testing.T) {
	svc := newTestService(&stubAccess{granted: true})

	_, err := svc.VideoURL(context.Background(), 42, model.TopicRef{Kind: enums.CourseKindAdvanced, ID: 999})
	if !errors.Is(err, ErrTopicNotFound) {
		t.Fatalf("expected ErrTopicNotFound, got %v", err)
	}
}

func TestVideoURLMissingObjectKey(t *testing.T) {
	svc := newTestService(&stubAccess{granted: true})

	_, err := svc.VideoURL(context.Background(), 42, bareTopic)
	if !errors.Is(err, ErrVideoUnavailable) {
		t.Fatalf("expected ErrVideoUnavailable, got %v", err)
	}
}

func newTestService(access *stubAccess) *Service {
	return NewService(stubResolver{}, access, stubStorage{}, time.Minute, nil)
}

type stubResolver struct{}

func (stubResolver) Topic(_ context.Context, ref model.TopicRef) (model.Topic, model.CourseRef, error) {
	course := model.CourseRef{Kind: enums.CourseKindStandard, ID: 1}
	switch ref {
	case paidTopic:
		return model.Topic{Ref: ref, VideoObjectKey: "videos/topic-10.mp4"}, course, nil
	case freeTopic:
		return model.Topic{Ref: ref, IsFreeTrial: true, VideoObjectKey: "videos/topic-11.mp4"}, course, nil
	case bareTopic:
		return model.Topic{Ref: ref}, course, nil
	default:
		return model.Topic{}, model.CourseRef{}, catalogsvc.ErrTopicNotFound
	}
}

type stubAccess struct {
	granted bool
	calls   int
}

func (s *stubAccess) HasAccess(context.Context, int64, model.CourseRef) (bool, error) {
	s.calls++
	return s.granted, nil
}

type stubStorage struct{}

func (stubStorage) PresignGet(_ context.Context, key string, _ time.Duration) (string, error) {
	return fmt.Sprintf("https://cdn.test/%s", key), nil
}


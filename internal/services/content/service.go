package content

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/mohammadarifzafra/topgrade-api/internal/domain/model"
	catalogsvc "github.com/mohammadarifzafra/topgrade-api/internal/services/catalog"
)

var (
	ErrValidation       = errors.New("validation error")
	ErrTopicNotFound    = errors.New("topic not found")
	ErrAccessDenied     = errors.New("course access denied")
	ErrVideoUnavailable = errors.New("video unavailable")
)

const defaultURLTTL = 15 * time.Minute

type CatalogResolver interface {
	Topic(ctx context.Context, ref model.TopicRef) (model.Topic, model.CourseRef, error)
}

type AccessChecker interface {
	HasAccess(ctx context.Context, userID int64, ref model.CourseRef) (bool, error)
}

type VideoStorage interface {
	PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error)
}

type Service struct {
	catalog CatalogResolver
	access  AccessChecker
	storage VideoStorage
	urlTTL  time.Duration
	logger  *zap.Logger
	now     func() time.Time
}

func NewService(catalog CatalogResolver, access AccessChecker, storage VideoStorage, urlTTL time.Duration, logger *zap.Logger) *Service {
	if urlTTL <= 0 {
		urlTTL = defaultURLTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		catalog: catalog,
		access:  access,
		storage: storage,
		urlTTL:  urlTTL,
		logger:  logger,
		now:     time.Now,
	}
}

type VideoLink struct {
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expires_at"`
}

// VideoURL returns a short-lived signed URL for a topic's video. Free-trial
// topics are open to any signed-in user; everything else requires a
// completed purchase of the owning course.
func (s *Service) VideoURL(ctx context.Context, userID int64, ref model.TopicRef) (VideoLink, error) {
	if userID <= 0 || ref.ID <= 0 {
		return VideoLink{}, ErrValidation
	}
	if s.catalog == nil || s.access == nil || s.storage == nil {
		return VideoLink{}, fmt.Errorf("content service is not fully wired")
	}

	topic, courseRef, err := s.catalog.Topic(ctx, ref)
	if err != nil {
		if errors.Is(err, catalogsvc.ErrTopicNotFound) {
			return VideoLink{}, ErrTopicNotFound
		}
		return VideoLink{}, fmt.Errorf("resolve topic: %w", err)
	}

	if !topic.IsFreeTrial {
		ok, err := s.access.HasAccess(ctx, userID, courseRef)
		if err != nil {
			return VideoLink{}, fmt.Errorf("check course access: %w", err)
		}
		if !ok {
			return VideoLink{}, ErrAccessDenied
		}
	}

	if topic.VideoObjectKey == "" {
		return VideoLink{}, ErrVideoUnavailable
	}

	url, err := s.storage.PresignGet(ctx, topic.VideoObjectKey, s.urlTTL)
	if err != nil {
		return VideoLink{}, fmt.Errorf("sign video url: %w", err)
	}

	return VideoLink{
		URL:       url,
		ExpiresAt: s.now().UTC().Add(s.urlTTL),
	}, nil
}

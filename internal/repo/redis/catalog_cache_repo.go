package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/mohammadarifzafra/topgrade-api/internal/domain/model"
)

const catalogSnapshotPrefix = "catalog:snapshot:"

// CatalogCacheRepo caches denormalized course snapshots so bookmark and
// purchase listings do not hammer the catalog tables. Stale entries simply
// expire; the catalog is written rarely and only by the admin surface.
type CatalogCacheRepo struct {
	client *goredis.Client
	ttl    time.Duration
}

func NewCatalogCacheRepo(client *goredis.Client, ttl time.Duration) *CatalogCacheRepo {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &CatalogCacheRepo{client: client, ttl: ttl}
}

func (r *CatalogCacheRepo) GetSnapshot(ctx context.Context, ref model.CourseRef) (model.CourseSnapshot, bool, error) {
	if r.client == nil {
		return model.CourseSnapshot{}, false, nil
	}

	raw, err := r.client.Get(ctx, snapshotKey(ref)).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return model.CourseSnapshot{}, false, nil
		}
		return model.CourseSnapshot{}, false, fmt.Errorf("get catalog snapshot: %w", err)
	}

	var snapshot model.CourseSnapshot
	if err := json.Unmarshal(raw, &snapshot); err != nil {
		// A corrupt entry is treated as a miss and rewritten by the caller.
		return model.CourseSnapshot{}, false, nil
	}

	return snapshot, true, nil
}

func (r *CatalogCacheRepo) SetSnapshot(ctx context.Context, snapshot model.CourseSnapshot) error {
	if r.client == nil {
		return nil
	}

	raw, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("marshal catalog snapshot: %w", err)
	}

	if err := r.client.Set(ctx, snapshotKey(snapshot.Ref), raw, r.ttl).Err(); err != nil {
		return fmt.Errorf("set catalog snapshot: %w", err)
	}

	return nil
}

func snapshotKey(ref model.CourseRef) string {
	return catalogSnapshotPrefix + string(ref.Kind) + ":" + strconv.FormatInt(ref.ID, 10)
}

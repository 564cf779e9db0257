// internal/store/cache.go
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"match-engine/internal/common/logger"
	"match-engine/internal/models"
)

// CachedStore layers a Redis cache-aside over counterparty reads. Scoring a
// single candidate touches the same counterparties repeatedly, so profile
// reads dominate; everything else passes through to the underlying store.
type CachedStore struct {
	Store
	redis  *redis.Client
	ttl    time.Duration
	logger logger.Logger
}

func NewCachedStore(inner Store, rdb *redis.Client, ttl time.Duration, log logger.Logger) *CachedStore {
	return &CachedStore{
		Store:  inner,
		redis:  rdb,
		ttl:    ttl,
		logger: log,
	}
}

func counterpartyKey(id string) string {
	return fmt.Sprintf("counterparty:%s", id)
}

// GetCounterparty reads through the cache. Cache failures degrade to the
// database; they never fail the scoring pass.
func (s *CachedStore) GetCounterparty(ctx context.Context, id string) (*models.Counterparty, error) {
	key := counterpartyKey(id)

	cached, err := s.redis.Get(ctx, key).Result()
	if err == nil {
		var cp models.Counterparty
		if err := json.Unmarshal([]byte(cached), &cp); err == nil {
			return &cp, nil
		}
		// Unreadable payload, fall through and rewrite it.
		s.redis.Del(ctx, key)
	} else if err != redis.Nil {
		s.logger.Warn("counterparty cache read failed", map[string]interface{}{
			"counterpartyId": id,
			"error":          err.Error(),
		})
	}

	cp, err := s.Store.GetCounterparty(ctx, id)
	if err != nil {
		return nil, err
	}

	if payload, err := json.Marshal(cp); err == nil {
		if err := s.redis.Set(ctx, key, payload, s.ttl).Err(); err != nil {
			s.logger.Warn("counterparty cache write failed", map[string]interface{}{
				"counterpartyId": id,
				"error":          err.Error(),
			})
		}
	}
	return cp, nil
}

// SaveLearnedPreferences writes through and invalidates the cached profile so
// the next read sees the refreshed affinities.
func (s *CachedStore) SaveLearnedPreferences(ctx context.Context, counterpartyID string, set *models.LearnedPreferenceSet) error {
	if err := s.Store.SaveLearnedPreferences(ctx, counterpartyID, set); err != nil {
		return err
	}
	if err := s.redis.Del(ctx, counterpartyKey(counterpartyID)).Err(); err != nil {
		s.logger.Warn("counterparty cache invalidation failed", map[string]interface{}{
			"counterpartyId": counterpartyID,
			"error":          err.Error(),
		})
	}
	return nil
}

// Invalidate drops a counterparty's cached profile.
func (s *CachedStore) Invalidate(ctx context.Context, counterpartyID string) {
	s.redis.Del(ctx, counterpartyKey(counterpartyID))
}

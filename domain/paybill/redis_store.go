package paybill

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	bindingKeyPrefix    = "paybill:binding:"
	reconciledKeyPrefix = "paybill:reconciled:"
	txnKeyPrefix        = "paybill:txn:"

	// pendingMarker occupies the binding slot while the claim winner is
	// still creating the workflow instance.
	pendingMarker = "__pending__"

	claimTTL     = 30 * time.Second
	pollInterval = 50 * time.Millisecond
)

// RedisStore is the correlation store for shared deployments. The claim
// is a SETNX on the binding key; losers poll until the winner replaces
// the pending marker with the instance id. Entry expiry uses native key
// TTLs, so no janitor is needed.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func (s *RedisStore) LookupBinding(ctx context.Context, key string) (string, bool, error) {
	val, err := s.client.Get(ctx, bindingKeyPrefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	if val == pendingMarker {
		return "", false, nil
	}
	return val, true, nil
}

func (s *RedisStore) GetOrCreateBinding(
	ctx context.Context, key string, create func(context.Context) (string, error),
) (string, bool, error) {
	bindingKey := bindingKeyPrefix + key

	for {
		claimed, err := s.client.SetNX(ctx, bindingKey, pendingMarker, claimTTL).Result()
		if err != nil {
			return "", false, err
		}

		if claimed {
			id, err := create(ctx)
			if err != nil {
				// Release the claim so a retry can take over.
				s.client.Del(ctx, bindingKey)
				return "", false, err
			}
			if err := s.client.Set(ctx, bindingKey, id, s.ttl).Err(); err != nil {
				return "", false, err
			}
			return id, true, nil
		}

		id, done, err := s.awaitBinding(ctx, bindingKey)
		if err != nil {
			return "", false, err
		}
		if done {
			return id, false, nil
		}
		// Winner failed and released the claim; contend again.
	}
}

func (s *RedisStore) awaitBinding(ctx context.Context, bindingKey string) (string, bool, error) {
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		val, err := s.client.Get(ctx, bindingKey).Result()
		if errors.Is(err, redis.Nil) {
			return "", false, nil
		}
		if err != nil {
			return "", false, err
		}
		if val != pendingMarker {
			return val, true, nil
		}

		select {
		case <-ticker.C:
		case <-ctx.Done():
			return "", false, ctx.Err()
		}
	}
}

func (s *RedisStore) RecordValidationSuccess(ctx context.Context, key, transactionID string) error {
	pipe := s.client.TxPipeline()
	pipe.SetNX(ctx, bindingKeyPrefix+key, transactionID, s.ttl)
	pipe.Set(ctx, reconciledKeyPrefix+key, "1", s.ttl)
	pipe.Set(ctx, txnKeyPrefix+key, transactionID, s.ttl)
	_, err := pipe.Exec(ctx)
	return err
}

func (s *RedisStore) ConsumeReconciledFlag(ctx context.Context, key string) (bool, error) {
	_, err := s.client.GetDel(ctx, reconciledKeyPrefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

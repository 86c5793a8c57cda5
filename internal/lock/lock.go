package lock

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "lock:trip:assign:"

// releaseScript deletes the lock only if the current holder matches,
// so a late release from a former holder cannot evict a new legitimate
// holder. Evaluated atomically by Redis.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// Store is the distributed assignment lock, keyed by trip ID. The lock
// is advisory: it serializes well-behaved accept attempts, while the
// ledger's conditional update remains the final authority. Entries
// self-expire, so a crashed holder never blocks the system.
type Store struct {
	client *redis.Client
}

// NewStore creates a new lock store
func NewStore(client *redis.Client) *Store {
	return &Store{client: client}
}

// TryAcquire attempts to take the assignment lock for a trip on behalf
// of a driver. SETNX semantics: it succeeds only if no unexpired entry
// exists. Returns true if the lock was acquired.
func (s *Store) TryAcquire(ctx context.Context, tripID, driverID string, ttl time.Duration) (bool, error) {
	return s.client.SetNX(ctx, keyPrefix+tripID, driverID, ttl).Result()
}

// Release releases the lock if and only if driverID is the current
// holder. Returns true if an entry was deleted.
func (s *Store) Release(ctx context.Context, tripID, driverID string) (bool, error) {
	deleted, err := releaseScript.Run(ctx, s.client, []string{keyPrefix + tripID}, driverID).Int()
	if err != nil {
		return false, err
	}
	return deleted == 1, nil
}

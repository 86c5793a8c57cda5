package tripcache

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const passengerKeyPrefix = "trip:passenger:"

// PassengerCache maps trip ID to passenger ID for a short time so the
// driver-side coordinator can resolve the passenger without a
// synchronous call to the trip service. Entries expire on their own;
// a miss is a handled outcome, not corruption.
type PassengerCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewPassengerCache creates a new passenger cache
func NewPassengerCache(client *redis.Client, ttl time.Duration) *PassengerCache {
	return &PassengerCache{client: client, ttl: ttl}
}

// Put records the trip's passenger with the configured TTL
func (c *PassengerCache) Put(ctx context.Context, tripID, passengerID uuid.UUID) error {
	return c.client.Set(ctx, passengerKeyPrefix+tripID.String(), passengerID.String(), c.ttl).Err()
}

// Get resolves the passenger for a trip. The second return value is
// false on a cache miss.
func (c *PassengerCache) Get(ctx context.Context, tripID uuid.UUID) (uuid.UUID, bool, error) {
	val, err := c.client.Get(ctx, passengerKeyPrefix+tripID.String()).Result()
	if err == redis.Nil {
		return uuid.Nil, false, nil
	}
	if err != nil {
		return uuid.Nil, false, err
	}

	passengerID, err := uuid.Parse(val)
	if err != nil {
		return uuid.Nil, false, err
	}
	return passengerID, true, nil
}

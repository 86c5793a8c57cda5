package presence

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/se360/ride-dispatch/pkg/logger"
)

// Redis keys. Status and position are decoupled so a stray position
// tick arriving after "go offline" cannot resurrect the driver.
const (
	locationKey   = "drivers:locations"
	statusKey     = "drivers:status"
	metaKeyPrefix = "driver:meta:"
	StatusOnline  = "ONLINE"
	StatusOffline = "OFFLINE"
)

// Index stores each driver's last known position and online status in
// Redis and answers radius queries filtered to online drivers.
type Index struct {
	redis  *redis.Client
	logger *logger.Logger
}

// NewIndex creates a new presence index
func NewIndex(redisClient *redis.Client, logger *logger.Logger) *Index {
	return &Index{
		redis:  redisClient,
		logger: logger,
	}
}

// SetOnline marks a driver as online. Idempotent.
func (i *Index) SetOnline(ctx context.Context, driverID string) error {
	return i.redis.HSet(ctx, statusKey, driverID, StatusOnline).Err()
}

// SetOffline marks a driver as offline and removes its position from
// the geo index. Idempotent.
func (i *Index) SetOffline(ctx context.Context, driverID string) error {
	if err := i.redis.HSet(ctx, statusKey, driverID, StatusOffline).Err(); err != nil {
		return err
	}
	return i.redis.ZRem(ctx, locationKey, driverID).Err()
}

// UpdatePosition upserts a driver's position. It does not change the
// driver's status; callers decide whether a tick for an offline driver
// is meaningful.
func (i *Index) UpdatePosition(ctx context.Context, driverID string, lat, lng float64) error {
	return i.redis.GeoAdd(ctx, locationKey, &redis.GeoLocation{
		Name:      driverID,
		Longitude: lng,
		Latitude:  lat,
	}).Err()
}

// RecordMeta stores best-effort per-driver metadata (heading, speed,
// last update time) in a hash alongside the geo entry
func (i *Index) RecordMeta(ctx context.Context, driverID string, heading, speed *float64, updatedAt time.Time) error {
	fields := map[string]interface{}{
		"updated_at": updatedAt.UTC().Format(time.RFC3339),
	}
	if heading != nil {
		fields["heading"] = *heading
	}
	if speed != nil {
		fields["speed"] = *speed
	}
	return i.redis.HSet(ctx, metaKeyPrefix+driverID, fields).Err()
}

// IsOnline reports the stored status for a driver. A driver with no
// recorded status is treated as offline.
func (i *Index) IsOnline(ctx context.Context, driverID string) (bool, error) {
	status, err := i.redis.HGet(ctx, statusKey, driverID).Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return status == StatusOnline, nil
}

// SearchWithinRadius returns the IDs of online drivers whose stored
// position lies within radiusKm of the query point. Order is
// unspecified; zero results is a valid outcome.
func (i *Index) SearchWithinRadius(ctx context.Context, lat, lng, radiusKm float64) ([]string, error) {
	results, err := i.redis.GeoRadius(ctx, locationKey, lng, lat, &redis.GeoRadiusQuery{
		Radius: radiusKm,
		Unit:   "km",
	}).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to search nearby drivers: %w", err)
	}

	if len(results) == 0 {
		return nil, nil
	}

	ids := make([]string, 0, len(results))
	for _, r := range results {
		ids = append(ids, r.Name)
	}

	statuses, err := i.redis.HMGet(ctx, statusKey, ids...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read driver statuses: %w", err)
	}

	online := FilterOnline(ids, statuses)

	i.logger.Debug("Radius search completed",
		logger.Float64("lat", lat),
		logger.Float64("lng", lng),
		logger.Float64("radius_km", radiusKm),
		logger.Int("candidates", len(ids)),
		logger.Int("online", len(online)),
	)

	return online, nil
}

// FilterOnline keeps only the IDs whose stored status is ONLINE.
// Statuses are positionally aligned with ids, as returned by HMGET;
// a missing entry counts as offline.
func FilterOnline(ids []string, statuses []interface{}) []string {
	online := make([]string, 0, len(ids))
	for idx, id := range ids {
		if idx >= len(statuses) {
			break
		}
		if s, ok := statuses[idx].(string); ok && s == StatusOnline {
			online = append(online, id)
		}
	}
	return online
}

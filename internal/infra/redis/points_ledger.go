package redis

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
)

// PointsLedger keeps cumulative learner points in one Redis hash:
// HINCRBY learner:points {learnerID} {delta}
type PointsLedger struct {
	client *redis.Client
}

func NewPointsLedger(client *redis.Client) *PointsLedger {
	return &PointsLedger{client: client}
}

const pointsKey = "learner:points"

func (l *PointsLedger) AddPoints(ctx context.Context, learnerID string, delta int) (int, error) {
	total, err := l.client.HIncrBy(ctx, pointsKey, learnerID, int64(delta)).Result()
	if err != nil {
		return 0, err
	}
	return int(total), nil
}

func (l *PointsLedger) Points(ctx context.Context, learnerID string) (int, error) {
	total, err := l.client.HGet(ctx, pointsKey, learnerID).Int()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return total, err
}

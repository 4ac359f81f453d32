package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

// querier is satisfied by both the pool and a transaction.
type querier interface {
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

// PointsLedger stores cumulative learner points in learner_points.
type PointsLedger struct {
	pool *pgxpool.Pool
}

func NewPointsLedger(pool *pgxpool.Pool) *PointsLedger {
	return &PointsLedger{pool: pool}
}

// AddPoints increments atomically and returns the new total.
func (l *PointsLedger) AddPoints(ctx context.Context, learnerID string, delta int) (int, error) {
	return addPoints(ctx, l.pool, learnerID, delta)
}

func addPoints(ctx context.Context, q querier, learnerID string, delta int) (int, error) {
	var total int
	err := q.QueryRow(ctx,
		`INSERT INTO learner_points (learner_id, points) VALUES ($1, $2)
		 ON CONFLICT (learner_id) DO UPDATE SET points = learner_points.points + EXCLUDED.points
		 RETURNING points`,
		learnerID, delta).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("add points: %w", err)
	}
	return total, nil
}

func (l *PointsLedger) Points(ctx context.Context, learnerID string) (int, error) {
	var total int
	err := l.pool.QueryRow(ctx, `SELECT points FROM learner_points WHERE learner_id=$1`, learnerID).Scan(&total)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read points: %w", err)
	}
	return total, nil
}

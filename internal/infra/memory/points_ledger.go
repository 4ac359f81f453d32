package memory

import (
	"context"
	"sync"
)

// PointsLedger tracks cumulative learner points in memory.
type PointsLedger struct {
	mu     sync.Mutex
	points map[string]int
}

func NewPointsLedger() *PointsLedger {
	return &PointsLedger{points: make(map[string]int)}
}

// AddPoints adds delta and returns the new total.
func (l *PointsLedger) AddPoints(_ context.Context, learnerID string, delta int) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.points[learnerID] += delta
	return l.points[learnerID], nil
}

func (l *PointsLedger) Points(_ context.Context, learnerID string) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.points[learnerID], nil
}

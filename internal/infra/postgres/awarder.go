package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
	"learning-exam-service/internal/domain"
)

// Awarder credits points and inserts the certificate of a pass in one transaction.
type Awarder struct {
	pool *pgxpool.Pool
}

func NewAwarder(pool *pgxpool.Pool) *Awarder {
	return &Awarder{pool: pool}
}

func (a *Awarder) Award(ctx context.Context, learnerID string, delta int, cert *domain.Certificate) error {
	err := a.pool.BeginFunc(ctx, func(tx pgx.Tx) error {
		if _, err := addPoints(ctx, tx, learnerID, delta); err != nil {
			return err
		}
		if cert == nil {
			return nil
		}
		return insertCertificate(ctx, tx, *cert)
	})
	if err != nil {
		return fmt.Errorf("award %s: %w", learnerID, err)
	}
	return nil
}

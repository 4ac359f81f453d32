package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
	"learning-exam-service/internal/domain"
)

const certificateColumns = `id, user_id, course_id, course_name, user_name, photo_url, issued_at`

// CertificateStore keeps issued certificates in the certificates table.
type CertificateStore struct {
	pool *pgxpool.Pool
}

func NewCertificateStore(pool *pgxpool.Pool) *CertificateStore {
	return &CertificateStore{pool: pool}
}

func (s *CertificateStore) Create(ctx context.Context, cert domain.Certificate) error {
	return insertCertificate(ctx, s.pool, cert)
}

func insertCertificate(ctx context.Context, q querier, cert domain.Certificate) error {
	_, err := q.Exec(ctx,
		`INSERT INTO certificates (`+certificateColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		cert.ID, cert.LearnerID, cert.CourseID, cert.CourseName, cert.LearnerName, cert.PhotoURL, cert.IssuedAt)
	if err != nil {
		return fmt.Errorf("insert certificate: %w", err)
	}
	return nil
}

func (s *CertificateStore) List(ctx context.Context, learnerID string) ([]domain.Certificate, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+certificateColumns+` FROM certificates WHERE user_id=$1 ORDER BY issued_at, id`, learnerID)
	if err != nil {
		return nil, fmt.Errorf("list certificates: %w", err)
	}
	defer rows.Close()

	certs := []domain.Certificate{}
	for rows.Next() {
		cert, err := scanCertificate(rows)
		if err != nil {
			return nil, err
		}
		certs = append(certs, cert)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list certificates: %w", err)
	}
	return certs, nil
}

func (s *CertificateStore) Get(ctx context.Context, certificateID string) (domain.Certificate, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+certificateColumns+` FROM certificates WHERE id=$1`, certificateID)
	return scanCertificate(row)
}

// Update applies the provided fields only; nil fields keep their stored value.
func (s *CertificateStore) Update(ctx context.Context, certificateID string, update domain.CertificateUpdate) (domain.Certificate, error) {
	row := s.pool.QueryRow(ctx,
		`UPDATE certificates
		 SET user_name = COALESCE($2, user_name), photo_url = COALESCE($3, photo_url)
		 WHERE id=$1
		 RETURNING `+certificateColumns,
		certificateID, update.LearnerName, update.PhotoURL)
	return scanCertificate(row)
}

func scanCertificate(row pgx.Row) (domain.Certificate, error) {
	var cert domain.Certificate
	err := row.Scan(&cert.ID, &cert.LearnerID, &cert.CourseID, &cert.CourseName, &cert.LearnerName, &cert.PhotoURL, &cert.IssuedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Certificate{}, domain.ErrCertificateNotFound
	}
	if err != nil {
		return domain.Certificate{}, fmt.Errorf("scan certificate: %w", err)
	}
	cert.IssuedAt = cert.IssuedAt.UTC()
	return cert, nil
}

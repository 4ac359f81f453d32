package memory

import (
	"context"
	"sort"
	"sync"

	"learning-exam-service/internal/domain"
)

// CertificateStore keeps certificates in memory; records are copied in and out.
type CertificateStore struct {
	mu    sync.RWMutex
	certs map[string]domain.Certificate
}

func NewCertificateStore() *CertificateStore {
	return &CertificateStore{certs: make(map[string]domain.Certificate)}
}

func (s *CertificateStore) Create(_ context.Context, cert domain.Certificate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.certs[cert.ID] = cert
	return nil
}

// List returns the learner's certificates, oldest first.
func (s *CertificateStore) List(_ context.Context, learnerID string) ([]domain.Certificate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Certificate, 0)
	for _, c := range s.certs {
		if c.LearnerID == learnerID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].IssuedAt.Equal(out[j].IssuedAt) {
			return out[i].IssuedAt.Before(out[j].IssuedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *CertificateStore) Get(_ context.Context, certificateID string) (domain.Certificate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.certs[certificateID]
	if !ok {
		return domain.Certificate{}, domain.ErrCertificateNotFound
	}
	return c, nil
}

func (s *CertificateStore) Update(_ context.Context, certificateID string, update domain.CertificateUpdate) (domain.Certificate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.certs[certificateID]
	if !ok {
		return domain.Certificate{}, domain.ErrCertificateNotFound
	}
	c = update.Apply(c)
	s.certs[certificateID] = c
	return c, nil
}

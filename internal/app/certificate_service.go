package app

import (
	"context"
	"fmt"

	"learning-exam-service/internal/domain"
)

// CertificateRepository persists certificate records.
type CertificateRepository interface {
	Create(ctx context.Context, cert domain.Certificate) error
	List(ctx context.Context, learnerID string) ([]domain.Certificate, error)
	Get(ctx context.Context, certificateID string) (domain.Certificate, error)
	Update(ctx context.Context, certificateID string, update domain.CertificateUpdate) (domain.Certificate, error)
}

// RenderCache keeps the last rendered image per certificate.
type RenderCache interface {
	GetImage(ctx context.Context, certificateID string) ([]byte, bool)
	PutImage(ctx context.Context, certificateID string, png []byte)
	DeleteImage(ctx context.Context, certificateID string)
}

// Renderer draws a certificate image.
type Renderer interface {
	Render(ctx context.Context, learnerName, courseName, photoRef string) ([]byte, error)
}

// CertificateService serves issued certificates and their rendered images.
type CertificateService struct {
	store    CertificateRepository
	cache    RenderCache
	renderer Renderer
}

func NewCertificateService(store CertificateRepository, cache RenderCache, renderer Renderer) *CertificateService {
	return &CertificateService{store: store, cache: cache, renderer: renderer}
}

// List returns the learner's certificates.
func (s *CertificateService) List(ctx context.Context, learnerID string) ([]domain.Certificate, error) {
	return s.store.List(ctx, learnerID)
}

// Get returns one certificate record.
func (s *CertificateService) Get(ctx context.Context, certificateID string) (domain.Certificate, error) {
	return s.store.Get(ctx, certificateID)
}

// Image returns the PNG for a certificate, rendering it on a cache miss.
func (s *CertificateService) Image(ctx context.Context, certificateID string) ([]byte, error) {
	if png, ok := s.cache.GetImage(ctx, certificateID); ok {
		return png, nil
	}
	cert, err := s.store.Get(ctx, certificateID)
	if err != nil {
		return nil, err
	}
	return s.render(ctx, cert)
}

// Update edits the display name and/or photo, then re-renders the image from scratch.
// The certificate keeps its ID. The previous image is evicted first, so a failed re-render
// never leaves the old name cached.
func (s *CertificateService) Update(ctx context.Context, certificateID string, update domain.CertificateUpdate) (domain.Certificate, []byte, error) {
	cert, err := s.store.Update(ctx, certificateID, update)
	if err != nil {
		return domain.Certificate{}, nil, err
	}
	s.cache.DeleteImage(ctx, cert.ID)
	png, err := s.render(ctx, cert)
	if err != nil {
		return cert, nil, err
	}
	return cert, png, nil
}

func (s *CertificateService) render(ctx context.Context, cert domain.Certificate) ([]byte, error) {
	png, err := s.renderer.Render(ctx, cert.LearnerName, cert.CourseName, cert.PhotoURL)
	if err != nil {
		return nil, fmt.Errorf("render certificate %s: %w", cert.ID, err)
	}
	s.cache.PutImage(ctx, cert.ID, png)
	return png, nil
}

// Package reward turns a final score into points and a pass/fail gate, and settles the
// result against the points ledger and the certificate store.
package reward

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"learning-exam-service/internal/domain"
	"learning-exam-service/internal/scoring"
)

const (
	DefaultPassThreshold = 75
	DefaultPointsDivisor = 10
)

// Policy holds the pass threshold and point formula.
type Policy struct {
	PassThreshold int
	PointsDivisor int
}

// DefaultPolicy returns the 75% / score-over-ten policy.
func DefaultPolicy() Policy {
	return Policy{PassThreshold: DefaultPassThreshold, PointsDivisor: DefaultPointsDivisor}
}

// Decision is the policy's verdict on a final score.
type Decision struct {
	PointsAwarded int
	Passed        bool
}

// Finalize computes round(score/divisor) points and the pass flag.
func (p Policy) Finalize(finalScore int) Decision {
	divisor := p.PointsDivisor
	if divisor <= 0 {
		divisor = DefaultPointsDivisor
	}
	return Decision{
		PointsAwarded: scoring.RoundHalfUp(finalScore, divisor),
		Passed:        finalScore >= p.PassThreshold,
	}
}

// Outcome combines a scoring result with the policy decision.
func (p Policy) Outcome(res scoring.Result) domain.Outcome {
	d := p.Finalize(res.FinalScore)
	return domain.Outcome{
		CorrectCount:  res.CorrectCount,
		Total:         res.Total,
		FinalScore:    res.FinalScore,
		Passed:        d.Passed,
		PointsAwarded: d.PointsAwarded,
	}
}

// Rewards reports whether completing the assessment earns points and certificates.
func Rewards(assessment domain.Assessment) bool {
	return assessment.Kind != domain.KindQuiz
}

// PointsLedger owns learners' cumulative points; the policy only supplies deltas.
type PointsLedger interface {
	AddPoints(ctx context.Context, learnerID string, delta int) (int, error)
}

// CertificateCreator persists newly minted certificates.
type CertificateCreator interface {
	Create(ctx context.Context, cert domain.Certificate) error
}

// Awarder credits points and stores an optional certificate as one unit: either both are
// applied or neither is.
type Awarder interface {
	Award(ctx context.Context, learnerID string, delta int, cert *domain.Certificate) error
}

// Rewarder applies an outcome's side effects.
type Rewarder struct {
	ledger       PointsLedger
	certificates CertificateCreator
	awarder      Awarder
	now          func() time.Time
	newID        func() string
}

func NewRewarder(ledger PointsLedger, certificates CertificateCreator) *Rewarder {
	return NewRewarderWithClock(ledger, certificates, time.Now)
}

// NewRewarderWithClock allows deterministic issuance timestamps in tests.
func NewRewarderWithClock(ledger PointsLedger, certificates CertificateCreator, now func() time.Time) *Rewarder {
	return &Rewarder{
		ledger:       ledger,
		certificates: certificates,
		now:          now,
		newID:        uuid.NewString,
	}
}

// NewAtomicRewarder settles through a store that applies points and certificate together.
func NewAtomicRewarder(awarder Awarder) *Rewarder {
	return &Rewarder{
		awarder: awarder,
		now:     time.Now,
		newID:   uuid.NewString,
	}
}

// Settle credits the awarded points and, for a passed exam, creates exactly one certificate.
// Quizzes are practice and settle nothing. It returns the created certificate, or nil when
// the outcome failed or the certificate could not be stored. Without an Awarder the two
// writes are independent: a ledger failure does not hold back the certificate, and both
// errors are reported.
func (r *Rewarder) Settle(ctx context.Context, learner domain.Learner, assessment domain.Assessment, outcome domain.Outcome) (*domain.Certificate, error) {
	if !Rewards(assessment) {
		return nil, nil
	}

	var cert *domain.Certificate
	if outcome.Passed {
		cert = &domain.Certificate{
			ID:          r.newID(),
			LearnerID:   learner.ID,
			CourseID:    assessment.CourseID,
			CourseName:  assessment.CourseName,
			LearnerName: learner.DisplayName,
			PhotoURL:    learner.PhotoURL,
			IssuedAt:    r.now().UTC(),
		}
	}

	if r.awarder != nil {
		if err := r.awarder.Award(ctx, learner.ID, outcome.PointsAwarded, cert); err != nil {
			return nil, fmt.Errorf("award: %w", err)
		}
		return cert, nil
	}

	var ledgerErr, certErr error
	if _, err := r.ledger.AddPoints(ctx, learner.ID, outcome.PointsAwarded); err != nil {
		ledgerErr = fmt.Errorf("add points: %w", err)
	}
	if cert != nil {
		if err := r.certificates.Create(ctx, *cert); err != nil {
			certErr = fmt.Errorf("create certificate: %w", err)
			cert = nil
		}
	}
	return cert, errors.Join(ledgerErr, certErr)
}

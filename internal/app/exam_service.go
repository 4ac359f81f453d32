package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"learning-exam-service/internal/domain"
	"learning-exam-service/internal/reward"
)

// SessionRepository abstracts where live sessions are kept (in-memory, Redis-marked, etc).
type SessionRepository interface {
	Put(session *Session)
	Get(sessionID string) (*Session, bool)
	Delete(sessionID string)
}

// AssessmentRepository loads assessment content (from cache/backing store).
type AssessmentRepository interface {
	GetAssessment(ctx context.Context, assessmentID string) (domain.Assessment, error)
}

// Settler applies the side effects of a finalized outcome (points, certificate).
type Settler interface {
	Settle(ctx context.Context, learner domain.Learner, assessment domain.Assessment, outcome domain.Outcome) (*domain.Certificate, error)
}

// ExamService contains the exam-taking use cases.
type ExamService struct {
	sessions     SessionRepository
	assessments  AssessmentRepository
	settler      Settler
	policy       reward.Policy
	tickInterval time.Duration
	newID        func() string
}

func NewExamService(sessions SessionRepository, assessments AssessmentRepository, settler Settler, policy reward.Policy) *ExamService {
	return &ExamService{
		sessions:     sessions,
		assessments:  assessments,
		settler:      settler,
		policy:       policy,
		tickInterval: time.Second,
		newID:        uuid.NewString,
	}
}

// WithTickInterval shortens the countdown tick; tests use it to run timers quickly.
func (s *ExamService) WithTickInterval(d time.Duration) *ExamService {
	s.tickInterval = d
	return s
}

// Start creates a fresh session for the learner and starts its countdown when the
// assessment is timed. Retakes simply start another session.
func (s *ExamService) Start(ctx context.Context, assessmentID string, learner domain.Learner) (*Session, error) {
	assessment, err := s.assessments.GetAssessment(ctx, assessmentID)
	if err != nil {
		return nil, err
	}
	session, err := NewSession(s.newID(), assessment, learner, s.policy)
	if err != nil {
		return nil, err
	}
	s.sessions.Put(session)

	if assessment.TimeLimitSeconds > 0 {
		timerCtx, stop := context.WithCancel(context.Background())
		session.attachTimer(stop)
		countdown := NewCountdown(assessment.TimeLimitSeconds, s.tickInterval)
		go countdown.Run(timerCtx, session.tick, func() {
			if _, err := s.expire(context.Background(), session); err != nil && !errors.Is(err, domain.ErrSessionNotFound) {
				log.Printf("session %s: expire: %v", session.ID(), err)
			}
		})
	}
	return session, nil
}

// Session returns a live session by ID.
func (s *ExamService) Session(_ context.Context, sessionID string) (*Session, error) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return session, nil
}

// Select records the learner's pending choice for the current question.
func (s *ExamService) Select(ctx context.Context, sessionID string, option int) error {
	session, err := s.Session(ctx, sessionID)
	if err != nil {
		return err
	}
	return session.SelectAnswer(option)
}

// Advance commits the pending choice. When it completes the session the outcome is settled
// before returning, so Progress carries the certificate ID of a pass.
func (s *ExamService) Advance(ctx context.Context, sessionID string) (Progress, error) {
	session, err := s.Session(ctx, sessionID)
	if err != nil {
		return Progress{}, err
	}
	progress, err := session.Advance()
	if err != nil {
		return Progress{}, err
	}
	if progress.Completed {
		cert, err := s.settle(ctx, session, *progress.Outcome)
		if cert != nil {
			progress.CertificateID = cert.ID
		}
		if err != nil {
			return progress, err
		}
	}
	return progress, nil
}

// Expire force-finalizes a session (timer reached zero). Repeated calls return the
// existing outcome without settling again; an abandoned session reports ErrSessionNotFound.
func (s *ExamService) Expire(ctx context.Context, sessionID string) (domain.Outcome, error) {
	session, err := s.Session(ctx, sessionID)
	if err != nil {
		return domain.Outcome{}, err
	}
	return s.expire(ctx, session)
}

func (s *ExamService) expire(ctx context.Context, session *Session) (domain.Outcome, error) {
	outcome, finalized := session.Expire()
	if session.Abandoned() {
		return domain.Outcome{}, domain.ErrSessionNotFound
	}
	if !finalized {
		return outcome, nil
	}
	if _, err := s.settle(ctx, session, outcome); err != nil {
		return outcome, err
	}
	return outcome, nil
}

// Subscribe returns a channel of timer ticks and the completion event for a session.
// The caller must invoke the returned cancel function to avoid leaks.
func (s *ExamService) Subscribe(ctx context.Context, sessionID string) (<-chan domain.SessionEvent, func(), error) {
	session, err := s.Session(ctx, sessionID)
	if err != nil {
		return nil, nil, err
	}
	ch, cancel := session.subscribe()
	return ch, cancel, nil
}

// Discard drops a session. An in-progress session is abandoned: its timer stops and
// nothing is scored or awarded.
func (s *ExamService) Discard(_ context.Context, sessionID string) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return
	}
	session.abandon()
	s.sessions.Delete(sessionID)
}

func (s *ExamService) settle(ctx context.Context, session *Session, outcome domain.Outcome) (*domain.Certificate, error) {
	cert, err := s.settler.Settle(ctx, session.Learner(), session.Assessment(), outcome)
	certID := ""
	if cert != nil {
		certID = cert.ID
	}
	session.settled(certID)
	if err != nil {
		return cert, fmt.Errorf("settle session %s: %w", session.ID(), err)
	}
	return cert, nil
}

package app

import (
	"sync"
	"time"

	"learning-exam-service/internal/domain"
	"learning-exam-service/internal/reward"
	"learning-exam-service/internal/scoring"
)

// WarningThreshold marks the remaining seconds below which ticks carry a warning flag.
const WarningThreshold = 60

// Progress describes the session after a successful Advance.
type Progress struct {
	// Index is the question now on screen; unchanged when the session completed.
	Index int `json:"index"`
	// ReviewVideo is the supplementary video of the question just answered, if any.
	// Clients show it before requesting the next question; the session does not wait for it.
	ReviewVideo   string          `json:"reviewVideo,omitempty"`
	Completed     bool            `json:"completed"`
	Outcome       *domain.Outcome `json:"outcome,omitempty"`
	CertificateID string          `json:"certificateId,omitempty"`
}

// Session is one learner's attempt at an assessment.
// It is InProgress until the last answer is recorded or the timer expires, then Completed.
type Session struct {
	id         string
	assessment domain.Assessment
	learner    domain.Learner
	policy     reward.Policy
	createdAt  time.Time

	mu            sync.Mutex
	current       int
	answers       []int
	selected      int
	hasSelected   bool
	remaining     int
	outcome       *domain.Outcome
	certificateID string
	isSettled     bool
	abandoned     bool
	stopTimer     func()
	subscribers   map[chan domain.SessionEvent]struct{}
}

// NewSession creates an InProgress session; assessments without questions are rejected.
func NewSession(id string, assessment domain.Assessment, learner domain.Learner, policy reward.Policy) (*Session, error) {
	return NewSessionWithClock(id, assessment, learner, policy, time.Now)
}

// NewSessionWithClock is test-only for deterministic timestamps.
func NewSessionWithClock(id string, assessment domain.Assessment, learner domain.Learner, policy reward.Policy, now func() time.Time) (*Session, error) {
	if len(assessment.Questions) == 0 {
		return nil, domain.ErrInvalidAssessment
	}
	return &Session{
		id:          id,
		assessment:  assessment,
		learner:     learner,
		policy:      policy,
		createdAt:   now(),
		answers:     make([]int, 0, len(assessment.Questions)),
		remaining:   assessment.TimeLimitSeconds,
		subscribers: make(map[chan domain.SessionEvent]struct{}),
	}, nil
}

func (s *Session) ID() string { return s.id }
func (s *Session) Assessment() domain.Assessment { return s.assessment }
func (s *Session) Learner() domain.Learner { return s.learner }
func (s *Session) CreatedAt() time.Time { return s.createdAt }

// SelectAnswer sets the pending choice for the current question; the last selection before
// Advance wins.
func (s *Session) SelectAnswer(option int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.outcome != nil || s.abandoned {
		return domain.ErrInvalidState
	}
	if option < 0 || option >= s.assessment.Questions[s.current].OptionCount() {
		return domain.ErrInvalidOption
	}
	s.selected = option
	s.hasSelected = true
	return nil
}

// Advance records the pending choice and moves to the next question, finalizing the
// session after the last one.
func (s *Session) Advance() (Progress, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.outcome != nil || s.abandoned {
		return Progress{}, domain.ErrInvalidState
	}
	if !s.hasSelected {
		return Progress{}, domain.ErrNoAnswerSelected
	}

	answered := s.assessment.Questions[s.current]
	s.answers = append(s.answers, s.selected)
	s.hasSelected = false

	progress := Progress{ReviewVideo: answered.VideoURL}
	if len(s.answers) == len(s.assessment.Questions) {
		outcome := s.finalizeLocked()
		progress.Index = s.current
		progress.Completed = true
		progress.Outcome = &outcome
		return progress, nil
	}
	s.current++
	progress.Index = s.current
	return progress, nil
}

// Expire force-completes the session with the answers recorded so far, including a
// pending selection. The bool reports whether this call finalized the session; calling
// it on a completed or abandoned session is a no-op.
func (s *Session) Expire() (domain.Outcome, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.outcome != nil {
		return *s.outcome, false
	}
	if s.abandoned {
		return domain.Outcome{}, false
	}
	if s.hasSelected {
		s.answers = append(s.answers, s.selected)
		s.hasSelected = false
	}
	s.remaining = 0
	return s.finalizeLocked(), true
}

// Outcome returns the finalized outcome once the session completed.
func (s *Session) Outcome() (domain.Outcome, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.outcome == nil {
		return domain.Outcome{}, false
	}
	return *s.outcome, true
}

// Completed reports whether the session reached its terminal state.
func (s *Session) Completed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.outcome != nil
}

// CurrentIndex is the 0-based index of the question on screen.
func (s *Session) CurrentIndex() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Answers returns a copy of the recorded answers.
func (s *Session) Answers() []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]int, len(s.answers))
	copy(out, s.answers)
	return out
}

// Selected returns the pending, not yet recorded choice.
func (s *Session) Selected() (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selected, s.hasSelected
}

// Remaining returns the seconds left on the countdown.
func (s *Session) Remaining() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.remaining
}

// CertificateID is set once a passing outcome has been settled.
func (s *Session) CertificateID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.certificateID
}

func (s *Session) finalizeLocked() domain.Outcome {
	// NewSession guarantees at least one question, so scoring cannot fail here.
	res, _ := scoring.Score(s.assessment.Questions, s.answers)
	outcome := s.policy.Outcome(res)
	if !reward.Rewards(s.assessment) {
		outcome.PointsAwarded = 0
	}
	s.outcome = &outcome
	if s.stopTimer != nil {
		s.stopTimer()
		s.stopTimer = nil
	}
	return outcome
}

func (s *Session) attachTimer(stop func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.outcome != nil {
		stop()
		return
	}
	s.stopTimer = stop
}

// Abandoned reports whether the session was dropped before it completed.
func (s *Session) Abandoned() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.abandoned
}

// abandon stops the timer and blocks any later completion, including an expiry already in
// flight.
func (s *Session) abandon() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.outcome == nil {
		s.abandoned = true
	}
	if s.stopTimer != nil {
		s.stopTimer()
		s.stopTimer = nil
	}
}

func (s *Session) tick(remaining int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.outcome != nil {
		return
	}
	s.remaining = remaining
	s.broadcastLocked(domain.SessionEvent{
		Type:      domain.EventTick,
		Remaining: remaining,
		Warning:   remaining <= WarningThreshold,
	})
}

// settled publishes the completion event once side effects have been applied.
func (s *Session) settled(certificateID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.certificateID = certificateID
	s.isSettled = true
	s.broadcastLocked(s.completedEventLocked())
}

func (s *Session) completedEventLocked() domain.SessionEvent {
	outcome := *s.outcome
	return domain.SessionEvent{
		Type:          domain.EventCompleted,
		Remaining:     s.remaining,
		Outcome:       &outcome,
		CertificateID: s.certificateID,
	}
}

func (s *Session) subscribe() (<-chan domain.SessionEvent, func()) {
	ch := make(chan domain.SessionEvent, 8)

	s.mu.Lock()
	s.subscribers[ch] = struct{}{}
	if s.isSettled {
		ch <- s.completedEventLocked()
	}
	s.mu.Unlock()

	cancel := func() {
		s.mu.Lock()
		if _, ok := s.subscribers[ch]; ok {
			delete(s.subscribers, ch)
			close(ch)
		}
		s.mu.Unlock()
	}
	return ch, cancel
}

func (s *Session) broadcastLocked(ev domain.SessionEvent) {
	for ch := range s.subscribers {
		select {
		case ch <- ev:
		default:
			// a slow reader loses the oldest event rather than blocking the timer
			select {
			case <-ch:
			default:
			}
			ch <- ev
		}
	}
}

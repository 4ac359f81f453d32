package reward

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"learning-exam-service/internal/domain"
	"learning-exam-service/internal/scoring"
)

func TestFinalizePoints(t *testing.T) {
	p := DefaultPolicy()
	cases := map[int]int{0: 0, 4: 0, 5: 1, 67: 7, 74: 7, 75: 8, 76: 8, 95: 10, 100: 10}
	for score, want := range cases {
		if got := p.Finalize(score).PointsAwarded; got != want {
			t.Fatalf("score %d: expected %d points, got %d", score, want, got)
		}
	}
}

func TestFinalizeThreshold(t *testing.T) {
	p := DefaultPolicy()
	for score := 0; score <= 100; score++ {
		d := p.Finalize(score)
		if d.Passed != (score >= 75) {
			t.Fatalf("score %d: passed=%v", score, d.Passed)
		}
		if d.PointsAwarded != scoring.RoundHalfUp(score, 10) {
			t.Fatalf("score %d: points=%d", score, d.PointsAwarded)
		}
	}
}

func TestFinalizeCustomPolicy(t *testing.T) {
	p := Policy{PassThreshold: 60, PointsDivisor: 5}
	d := p.Finalize(62)
	if !d.Passed || d.PointsAwarded != 12 {
		t.Fatalf("unexpected decision %+v", d)
	}
	if got := (Policy{PassThreshold: 75}).Finalize(76).PointsAwarded; got != 8 {
		t.Fatalf("zero divisor should fall back to default, got %d", got)
	}
}

func TestSettlePassCreatesOneCertificate(t *testing.T) {
	ledger := &fakeLedger{}
	store := &fakeStore{}
	issued := time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC)
	r := NewRewarderWithClock(ledger, store, func() time.Time { return issued })

	learner := domain.Learner{ID: "u1", DisplayName: "Alice", PhotoURL: "https://img/alice.png"}
	assessment := domain.Assessment{ID: "exam-1", CourseID: "c1", CourseName: "JavaScript Fundamentals"}
	cert, err := r.Settle(context.Background(), learner, assessment, domain.Outcome{FinalScore: 100, Passed: true, PointsAwarded: 10})
	if err != nil {
		t.Fatalf("settle: %v", err)
	}
	if cert == nil || len(store.created) != 1 {
		t.Fatalf("expected one certificate, got %d", len(store.created))
	}
	got := store.created[0]
	if got.ID == "" || got.LearnerID != "u1" || got.CourseName != "JavaScript Fundamentals" || got.LearnerName != "Alice" || !got.IssuedAt.Equal(issued) {
		t.Fatalf("unexpected certificate %+v", got)
	}
	if ledger.total["u1"] != 10 {
		t.Fatalf("expected 10 points, got %d", ledger.total["u1"])
	}
}

func TestSettleFailCreatesNothing(t *testing.T) {
	ledger := &fakeLedger{}
	store := &fakeStore{}
	r := NewRewarder(ledger, store)

	cert, err := r.Settle(context.Background(), domain.Learner{ID: "u1"}, domain.Assessment{}, domain.Outcome{FinalScore: 67, PointsAwarded: 7})
	if err != nil {
		t.Fatalf("settle: %v", err)
	}
	if cert != nil || len(store.created) != 0 {
		t.Fatalf("expected no certificate")
	}
	if ledger.total["u1"] != 7 {
		t.Fatalf("expected 7 points, got %d", ledger.total["u1"])
	}
}

func TestSettleQuizAwardsNothing(t *testing.T) {
	ledger := &fakeLedger{}
	store := &fakeStore{}
	r := NewRewarder(ledger, store)

	quiz := domain.Assessment{ID: "quiz-1", Kind: domain.KindQuiz, CourseID: "c1"}
	cert, err := r.Settle(context.Background(), domain.Learner{ID: "u1"}, quiz, domain.Outcome{FinalScore: 100, Passed: true, PointsAwarded: 10})
	if err != nil || cert != nil {
		t.Fatalf("expected no certificate for a quiz, got %v %v", cert, err)
	}
	if len(store.created) != 0 || ledger.total["u1"] != 0 {
		t.Fatalf("quiz must not award points or certificates, got %d certs %d points", len(store.created), ledger.total["u1"])
	}
}

func TestSettleLedgerErrorStillIssuesCertificate(t *testing.T) {
	store := &fakeStore{}
	r := NewRewarder(&fakeLedger{err: errors.New("ledger down")}, store)
	cert, err := r.Settle(context.Background(), domain.Learner{ID: "u1"}, domain.Assessment{}, domain.Outcome{Passed: true, PointsAwarded: 10})
	if err == nil || !strings.Contains(err.Error(), "ledger down") {
		t.Fatalf("expected ledger error, got %v", err)
	}
	if cert == nil || len(store.created) != 1 || store.created[0].ID != cert.ID {
		t.Fatalf("expected the certificate to be issued despite the ledger failure, got %+v", store.created)
	}
}

func TestSettleJoinsLedgerAndStoreErrors(t *testing.T) {
	r := NewRewarder(&fakeLedger{err: errors.New("ledger down")}, &fakeStore{err: errors.New("store down")})
	cert, err := r.Settle(context.Background(), domain.Learner{ID: "u1"}, domain.Assessment{}, domain.Outcome{Passed: true})
	if cert != nil {
		t.Fatalf("expected no certificate when the store fails")
	}
	if err == nil || !strings.Contains(err.Error(), "ledger down") || !strings.Contains(err.Error(), "store down") {
		t.Fatalf("expected both errors, got %v", err)
	}
}

func TestSettleThroughAwarder(t *testing.T) {
	awarder := &fakeAwarder{}
	r := NewAtomicRewarder(awarder)

	cert, err := r.Settle(context.Background(), domain.Learner{ID: "u1", DisplayName: "Alice"}, domain.Assessment{CourseID: "c1"}, domain.Outcome{Passed: true, PointsAwarded: 9})
	if err != nil || cert == nil {
		t.Fatalf("settle: %v %v", cert, err)
	}
	if awarder.calls != 1 || awarder.delta != 9 || awarder.cert == nil || awarder.cert.ID != cert.ID {
		t.Fatalf("expected one award with points and certificate, got %+v", awarder)
	}

	if cert, _ := r.Settle(context.Background(), domain.Learner{ID: "u1"}, domain.Assessment{}, domain.Outcome{PointsAwarded: 3}); cert != nil || awarder.cert != nil {
		t.Fatalf("failing outcome must award points only")
	}

	awarder.err = errors.New("tx aborted")
	if cert, err := r.Settle(context.Background(), domain.Learner{ID: "u1"}, domain.Assessment{}, domain.Outcome{Passed: true}); err == nil || cert != nil {
		t.Fatalf("expected rolled back award to return no certificate, got %v %v", cert, err)
	}
}

type fakeLedger struct {
	total map[string]int
	err   error
}

func (l *fakeLedger) AddPoints(_ context.Context, learnerID string, delta int) (int, error) {
	if l.err != nil {
		return 0, l.err
	}
	if l.total == nil {
		l.total = make(map[string]int)
	}
	l.total[learnerID] += delta
	return l.total[learnerID], nil
}

type fakeStore struct {
	created []domain.Certificate
	err     error
}

func (s *fakeStore) Create(_ context.Context, cert domain.Certificate) error {
	if s.err != nil {
		return s.err
	}
	s.created = append(s.created, cert)
	return nil
}

type fakeAwarder struct {
	calls int
	delta int
	cert  *domain.Certificate
	err   error
}

func (a *fakeAwarder) Award(_ context.Context, _ string, delta int, cert *domain.Certificate) error {
	if a.err != nil {
		return a.err
	}
	a.calls++
	a.delta = delta
	a.cert = cert
	return nil
}

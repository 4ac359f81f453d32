package memory

import (
	"testing"

	"learning-exam-service/internal/app"
	"learning-exam-service/internal/domain"
	"learning-exam-service/internal/reward"
)

func TestSessionStoreLifecycle(t *testing.T) {
	store := NewSessionStore()

	session, err := app.NewSession("s1", sampleAssessment(), domain.Learner{ID: "u1"}, reward.DefaultPolicy())
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	store.Put(session)
	if got, ok := store.Get("s1"); !ok || got != session {
		t.Fatalf("expected session present")
	}

	store.Delete("s1")
	if _, ok := store.Get("s1"); ok {
		t.Fatalf("expected session removed")
	}
}

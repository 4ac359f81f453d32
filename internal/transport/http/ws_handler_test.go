package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"learning-exam-service/internal/app"
	"learning-exam-service/internal/domain"
	"learning-exam-service/internal/infra/memory"
	"learning-exam-service/internal/reward"
)

type wsEnv struct {
	server *httptest.Server
	certs  *memory.CertificateStore
	ledger *memory.PointsLedger
}

func newWSEnv(t *testing.T) wsEnv {
	t.Helper()
	repo := memory.NewAssessmentRepository(memory.NewStaticAssessmentLoader(sampleAssessments()), time.Minute)
	certs := memory.NewCertificateStore()
	ledger := memory.NewPointsLedger()
	service := app.NewExamService(memory.NewSessionStore(), repo, reward.NewRewarder(ledger, certs), reward.DefaultPolicy()).
		WithTickInterval(time.Millisecond)
	wsHandler := NewWSHandler(service)

	mux := http.NewServeMux()
	mux.HandleFunc("/ws/exam", wsHandler.ServeWS)
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return wsEnv{server: server, certs: certs, ledger: ledger}
}

func (e wsEnv) dial(t *testing.T, query string) *websocket.Conn {
	t.Helper()
	u := "ws" + e.server.URL[len("http"):] + "/ws/exam?" + query
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestWebSocketExamPassFlow(t *testing.T) {
	env := newWSEnv(t)
	conn := env.dial(t, "assessmentId=exam-1&learnerId=u1&name=Alice&lang=id")

	_, started := readNext(conn, t, "started")
	if started["total"].(float64) != 2 || started["title"] != "Ujian React" {
		t.Fatalf("unexpected started payload: %+v", started)
	}
	_, question := readNext(conn, t, "question")
	if question["index"].(float64) != 0 || question["prompt"] != "Apa itu JSX?" {
		t.Fatalf("unexpected first question: %+v", question)
	}

	send(t, conn, "select", map[string]any{"option": 0})
	send(t, conn, "advance", nil)
	_, question = readNext(conn, t, "question")
	if question["index"].(float64) != 1 {
		t.Fatalf("expected second question, got %+v", question)
	}

	send(t, conn, "select", map[string]any{"option": 1})
	send(t, conn, "advance", nil)
	_, completed := readNext(conn, t, "completed")
	outcome := completed["outcome"].(map[string]any)
	if outcome["finalScore"].(float64) != 100 || outcome["passed"] != true || outcome["pointsAwarded"].(float64) != 10 {
		t.Fatalf("unexpected outcome: %+v", outcome)
	}
	certID, _ := completed["certificateId"].(string)
	if certID == "" {
		t.Fatalf("expected certificate id in completed payload")
	}
	cert, err := env.certs.Get(context.Background(), certID)
	if err != nil || cert.LearnerName != "Alice" || cert.CourseID != "course-2" {
		t.Fatalf("expected stored certificate, got %+v %v", cert, err)
	}
	if p, _ := env.ledger.Points(context.Background(), "u1"); p != 10 {
		t.Fatalf("expected 10 points, got %d", p)
	}
}

func TestWebSocketAdvanceWithoutSelection(t *testing.T) {
	env := newWSEnv(t)
	conn := env.dial(t, "assessmentId=exam-1&learnerId=u1&name=Alice")
	readNext(conn, t, "started")
	readNext(conn, t, "question")

	send(t, conn, "advance", nil)
	_, payload := readNext(conn, t, "error")
	if payload["message"] != domain.ErrNoAnswerSelected.Error() {
		t.Fatalf("expected select-an-answer error, got %+v", payload)
	}

	send(t, conn, "select", map[string]any{"option": 9})
	_, payload = readNext(conn, t, "error")
	if payload["message"] != domain.ErrInvalidOption.Error() {
		t.Fatalf("expected invalid option error, got %+v", payload)
	}
}

func TestWebSocketReviewGate(t *testing.T) {
	env := newWSEnv(t)
	conn := env.dial(t, "assessmentId=quiz-video&learnerId=u2&name=Bob")
	readNext(conn, t, "started")
	readNext(conn, t, "question")

	send(t, conn, "select", map[string]any{"option": 1})
	send(t, conn, "advance", nil)
	_, review := readNext(conn, t, "review")
	if review["videoUrl"] != "https://videos.example/closures.mp4" {
		t.Fatalf("unexpected review payload: %+v", review)
	}

	send(t, conn, "next", nil)
	_, question := readNext(conn, t, "question")
	if question["index"].(float64) != 1 {
		t.Fatalf("expected question after review, got %+v", question)
	}

	send(t, conn, "select", map[string]any{"option": 0})
	send(t, conn, "advance", nil)
	_, completed := readNext(conn, t, "completed")
	outcome := completed["outcome"].(map[string]any)
	if outcome["finalScore"].(float64) != 50 || outcome["passed"] != false {
		t.Fatalf("unexpected outcome: %+v", outcome)
	}
	if _, ok := completed["certificateId"]; ok {
		t.Fatalf("failing outcome must not carry a certificate")
	}
}

func TestWebSocketTimerExpiry(t *testing.T) {
	env := newWSEnv(t)
	conn := env.dial(t, "assessmentId=exam-timed&learnerId=u3&name=Cara")
	readNext(conn, t, "started")
	readNext(conn, t, "question")

	send(t, conn, "select", map[string]any{"option": 0})

	sawTick, sawWarning := false, false
	for {
		typ, payload := readNext(conn, t, "")
		if typ == "tick" {
			sawTick = true
			remaining := payload["remaining"].(float64)
			if warning := payload["warning"] == true; warning != (remaining <= app.WarningThreshold) {
				t.Fatalf("warning flag mismatch: %+v", payload)
			}
			sawWarning = sawWarning || payload["warning"] == true
			continue
		}
		if typ != "completed" {
			continue
		}
		outcome := payload["outcome"].(map[string]any)
		// the pending selection is scored, the unanswered question counts as wrong
		if outcome["correctCount"].(float64) != 1 || outcome["finalScore"].(float64) != 50 {
			t.Fatalf("unexpected expiry outcome: %+v", outcome)
		}
		break
	}
	if !sawTick || !sawWarning {
		t.Fatalf("expected tick events with a final-minute warning before expiry")
	}
}

func TestWebSocketRejectsMissingParams(t *testing.T) {
	env := newWSEnv(t)
	resp, err := http.Get(env.server.URL + "/ws/exam?assessmentId=exam-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestWebSocketUnknownAssessment(t *testing.T) {
	env := newWSEnv(t)
	conn := env.dial(t, "assessmentId=missing&learnerId=u1&name=Alice")
	_, payload := readNext(conn, t, "error")
	if payload["message"] != domain.ErrAssessmentNotFound.Error() {
		t.Fatalf("expected not found error, got %+v", payload)
	}
}

func send(t *testing.T, conn *websocket.Conn, typ string, payload any) {
	t.Helper()
	if payload == nil {
		payload = map[string]any{}
	}
	if err := conn.WriteJSON(map[string]any{"type": typ, "payload": payload}); err != nil {
		t.Fatalf("write %s: %v", typ, err)
	}
}

func readNext(conn *websocket.Conn, t *testing.T, expect string) (string, map[string]any) {
	t.Helper()
	var msg struct {
		Type    string         `json:"type"`
		Payload map[string]any `json:"payload"`
	}
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read json: %v", err)
	}
	if expect != "" && msg.Type != expect {
		t.Fatalf("expected type %s, got %s (%+v)", expect, msg.Type, msg.Payload)
	}
	return msg.Type, msg.Payload
}

func sampleAssessments() map[string]domain.Assessment {
	react := []domain.Question{
		{
			ID:           "q1",
			Prompt:       domain.Localized{"en": "What is JSX?", "id": "Apa itu JSX?"},
			Options:      domain.LocalizedOptions{"en": {"JavaScript XML", "Java Syntax Extension"}},
			CorrectIndex: 0,
		},
		{
			ID:           "q2",
			Prompt:       domain.Localized{"en": "Which hook manages state?"},
			Options:      domain.LocalizedOptions{"en": {"useEffect", "useState"}},
			CorrectIndex: 1,
		},
	}
	return map[string]domain.Assessment{
		"exam-1": {
			ID:         "exam-1",
			Kind:       domain.KindExam,
			CourseID:   "course-2",
			CourseName: "React Development",
			Title:      domain.Localized{"en": "React Exam", "id": "Ujian React"},
			Questions:  react,
		},
		"exam-timed": {
			ID:               "exam-timed",
			Kind:             domain.KindExam,
			CourseID:         "course-2",
			CourseName:       "React Development",
			Questions:        react,
			TimeLimitSeconds: 500,
		},
		"quiz-video": {
			ID:         "quiz-video",
			Kind:       domain.KindQuiz,
			CourseID:   "course-1",
			CourseName: "JavaScript Fundamentals",
			Questions: []domain.Question{
				{
					ID:           "q1",
					Prompt:       domain.Localized{"en": "What is a closure?"},
					Options:      domain.LocalizedOptions{"en": {"A loop", "A function with its scope"}},
					CorrectIndex: 1,
					VideoURL:     "https://videos.example/closures.mp4",
				},
				{
					ID:           "q2",
					Prompt:       domain.Localized{"en": "typeof null?"},
					Options:      domain.LocalizedOptions{"en": {"null", "object"}},
					CorrectIndex: 1,
				},
			},
		},
	}
}

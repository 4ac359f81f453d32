package http

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"learning-exam-service/internal/app"
	"learning-exam-service/internal/domain"
)

type WSHandler struct {
	service  *app.ExamService
	upgrader websocket.Upgrader
}

func NewWSHandler(service *app.ExamService) *WSHandler {
	return &WSHandler{
		service: service,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type selectPayload struct {
	Option *int `json:"option"`
}

type startedPayload struct {
	SessionID string                `json:"sessionId"`
	Kind      domain.AssessmentKind `json:"kind"`
	Title     string                `json:"title"`
	Total     int                   `json:"total"`
	TimeLimit int                   `json:"timeLimit"`
}

type tickPayload struct {
	Remaining int  `json:"remaining"`
	Warning   bool `json:"warning"`
}

type reviewPayload struct {
	VideoURL string `json:"videoUrl"`
}

type completedPayload struct {
	Outcome       domain.Outcome `json:"outcome"`
	CertificateID string         `json:"certificateId,omitempty"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type errorPayload struct {
	Message string `json:"message"`
}

// examConn tracks per-connection delivery state. completion is guarded so the learner sees
// exactly one completed message whether the session finished by the last answer or by the
// timer.
type examConn struct {
	send chan outboundMessage[any]

	completionMu  sync.Mutex
	completedSent bool
}

// completed must be called with completionMu held. A nil done channel blocks until the
// writer accepts the message.
func (c *examConn) completed(outcome domain.Outcome, certificateID string, done <-chan struct{}) {
	if c.completedSent {
		return
	}
	c.completedSent = true
	msg := outboundMessage[any]{Type: "completed", Payload: completedPayload{
		Outcome:       outcome,
		CertificateID: certificateID,
	}}
	select {
	case c.send <- msg:
	case <-done:
	}
}

func (c *examConn) fail(err error) {
	c.send <- outboundMessage[any]{Type: "error", Payload: errorPayload{Message: err.Error()}}
}

// ServeWS upgrades HTTP requests to websockets and runs one exam session per connection.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	assessmentID := q.Get("assessmentId")
	learner := domain.Learner{ID: q.Get("learnerId"), DisplayName: q.Get("name"), PhotoURL: q.Get("photo")}
	locale := q.Get("lang")
	if locale == "" {
		locale = domain.DefaultLocale
	}
	if assessmentID == "" || learner.ID == "" || learner.DisplayName == "" {
		http.Error(w, "missing assessmentId, learnerId, or name", http.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	session, err := h.service.Start(r.Context(), assessmentID, learner)
	if err != nil {
		_ = conn.WriteJSON(outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{Message: err.Error()}})
		return
	}
	defer h.service.Discard(r.Context(), session.ID())

	events, cancel, err := h.service.Subscribe(r.Context(), session.ID())
	if err != nil {
		_ = conn.WriteJSON(outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{Message: err.Error()}})
		return
	}
	defer cancel()

	ec := &examConn{send: make(chan outboundMessage[any], 16)}
	closeSignals := make(chan struct{})
	writerDone := make(chan struct{})
	eventsDone := make(chan struct{})

	go func() {
		defer close(writerDone)
		for msg := range ec.send {
			if err := conn.WriteJSON(msg); err != nil {
				log.Printf("ws write error: %v", err)
				return
			}
		}
	}()

	assessment := session.Assessment()
	ec.send <- outboundMessage[any]{Type: "started", Payload: startedPayload{
		SessionID: session.ID(),
		Kind:      assessment.Kind,
		Title:     assessment.Title.Localize(locale),
		Total:     len(assessment.Questions),
		TimeLimit: assessment.TimeLimitSeconds,
	}}
	ec.send <- outboundMessage[any]{Type: "question", Payload: assessment.ViewQuestion(0, locale)}

	go func() {
		defer close(eventsDone)
		for {
			select {
			case ev, ok := <-events:
				if !ok {
					return
				}
				h.forward(ec, ev, closeSignals)
			case <-closeSignals:
				return
			}
		}
	}()

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		switch inbound.Type {
		case "select":
			var payload selectPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil || payload.Option == nil {
				ec.send <- outboundMessage[any]{Type: "error", Payload: errorPayload{Message: "invalid select payload"}}
				continue
			}
			if err := h.service.Select(r.Context(), session.ID(), *payload.Option); err != nil {
				ec.fail(err)
			}
		case "advance":
			h.advance(r, ec, session, locale)
		case "next":
			// acknowledges a review video; the session already moved on when it was answered
			if session.Completed() {
				ec.fail(domain.ErrInvalidState)
				continue
			}
			ec.send <- outboundMessage[any]{Type: "question", Payload: assessment.ViewQuestion(session.CurrentIndex(), locale)}
		default:
			ec.send <- outboundMessage[any]{Type: "error", Payload: errorPayload{Message: "unsupported message type"}}
		}
	}

	close(closeSignals)
	<-eventsDone
	close(ec.send)
	<-writerDone
}

func (h *WSHandler) advance(r *http.Request, ec *examConn, session *app.Session, locale string) {
	// Holding completionMu across Advance keeps the completed event broadcast during
	// settlement from overtaking the review message below.
	ec.completionMu.Lock()
	defer ec.completionMu.Unlock()

	progress, err := h.service.Advance(r.Context(), session.ID())
	if err != nil && !progress.Completed {
		ec.fail(err)
		return
	}
	if err != nil {
		log.Printf("session %s: %v", session.ID(), err)
	}
	if progress.ReviewVideo != "" {
		ec.send <- outboundMessage[any]{Type: "review", Payload: reviewPayload{VideoURL: progress.ReviewVideo}}
	}
	if progress.Completed {
		ec.completed(*progress.Outcome, progress.CertificateID, nil)
		return
	}
	if progress.ReviewVideo == "" {
		ec.send <- outboundMessage[any]{Type: "question", Payload: session.Assessment().ViewQuestion(progress.Index, locale)}
	}
}

func (h *WSHandler) forward(ec *examConn, ev domain.SessionEvent, closeSignals <-chan struct{}) {
	switch ev.Type {
	case domain.EventTick:
		select {
		case ec.send <- outboundMessage[any]{Type: "tick", Payload: tickPayload{Remaining: ev.Remaining, Warning: ev.Warning}}:
		case <-closeSignals:
		}
	case domain.EventCompleted:
		ec.completionMu.Lock()
		defer ec.completionMu.Unlock()
		ec.completed(*ev.Outcome, ev.CertificateID, closeSignals)
	}
}

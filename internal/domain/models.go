package domain

import "time"

// AssessmentKind separates practice quizzes from final exams.
type AssessmentKind string

const (
	KindQuiz AssessmentKind = "quiz"
	KindExam AssessmentKind = "exam"
)

// Question models an MCQ question with exactly one correct option.
type Question struct {
	ID           string           `json:"id"`
	Prompt       Localized        `json:"prompt"`
	Options      LocalizedOptions `json:"options"`
	CorrectIndex int              `json:"correct"`
	VideoURL     string           `json:"videoUrl,omitempty"`
}

// OptionCount returns the number of options in the default locale.
func (q Question) OptionCount() int {
	return len(q.Options.Localize(DefaultLocale))
}

// Assessment is a quiz or final exam: ordered questions with one time limit for the whole run.
type Assessment struct {
	ID               string         `json:"id"`
	Kind             AssessmentKind `json:"kind"`
	CourseID         string         `json:"courseId"`
	CourseName       string         `json:"courseName"`
	Title            Localized      `json:"title"`
	Questions        []Question     `json:"questions"`
	TimeLimitSeconds int            `json:"timeLimit"` // zero means untimed
}

// Learner is the subset of the learner profile the exam core needs.
type Learner struct {
	ID          string `json:"id"`
	DisplayName string `json:"name"`
	PhotoURL    string `json:"photo,omitempty"`
}

// Outcome is computed once per session and never mutated.
type Outcome struct {
	CorrectCount  int  `json:"correctCount"`
	Total         int  `json:"total"`
	FinalScore    int  `json:"finalScore"`
	Passed        bool `json:"passed"`
	PointsAwarded int  `json:"pointsAwarded"`
}

// Certificate records a passed assessment.
type Certificate struct {
	ID          string    `json:"id"`
	LearnerID   string    `json:"userId"`
	CourseID    string    `json:"courseId"`
	CourseName  string    `json:"courseName"`
	LearnerName string    `json:"userName"`
	PhotoURL    string    `json:"profilePicUrl"`
	IssuedAt    time.Time `json:"issuedDate"`
}

// CertificateUpdate holds the editable display fields; nil means unchanged.
type CertificateUpdate struct {
	LearnerName *string `json:"name,omitempty"`
	PhotoURL    *string `json:"photo,omitempty"`
}

// Apply returns a copy of c with the update applied.
func (u CertificateUpdate) Apply(c Certificate) Certificate {
	if u.LearnerName != nil {
		c.LearnerName = *u.LearnerName
	}
	if u.PhotoURL != nil {
		c.PhotoURL = *u.PhotoURL
	}
	return c
}

// SessionEventType enumerates events pushed to session subscribers.
type SessionEventType string

const (
	EventTick      SessionEventType = "tick"
	EventCompleted SessionEventType = "completed"
)

// SessionEvent is emitted by a running session (timer ticks and completion).
type SessionEvent struct {
	Type          SessionEventType `json:"type"`
	Remaining     int              `json:"remaining"`
	Warning       bool             `json:"warning,omitempty"`
	Outcome       *Outcome         `json:"outcome,omitempty"`
	CertificateID string           `json:"certificateId,omitempty"`
}

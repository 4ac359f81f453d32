package domain

import "errors"

var (
	// ErrSessionNotFound is returned when an exam session does not exist (or was discarded).
	ErrSessionNotFound = errors.New("exam session not found")
	// ErrAssessmentNotFound indicates the assessment content could not be loaded.
	ErrAssessmentNotFound = errors.New("assessment not found")
	// ErrInvalidAssessment is returned for assessments that cannot be scored (no questions).
	ErrInvalidAssessment = errors.New("invalid assessment: no questions")
	// ErrInvalidState is returned when a session mutator is called after completion.
	ErrInvalidState = errors.New("invalid session state: already completed")
	// ErrNoAnswerSelected is a validation error: advance was requested without a selection.
	ErrNoAnswerSelected = errors.New("please select an answer")
	// ErrInvalidOption indicates a selected option index outside the question's options.
	ErrInvalidOption = errors.New("option out of range")
	// ErrCertificateNotFound indicates an unknown certificate ID.
	ErrCertificateNotFound = errors.New("certificate not found")
	// ErrTemplateLoad is fatal for rendering: there is no fallback background.
	ErrTemplateLoad = errors.New("certificate template could not be loaded")
)

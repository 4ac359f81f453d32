// Package scoring compares recorded answers against an assessment's answer key.
package scoring

import "learning-exam-service/internal/domain"

// Result is the raw score of one run.
type Result struct {
	CorrectCount int
	Total        int
	FinalScore   int // 0..100
}

// Score counts exact index matches position by position. answers may be shorter than
// questions when the run was cut off by the timer; missing positions are incorrect.
func Score(questions []domain.Question, answers []int) (Result, error) {
	if len(questions) == 0 {
		return Result{}, domain.ErrInvalidAssessment
	}
	correct := 0
	for i, answer := range answers {
		if i >= len(questions) {
			break
		}
		if answer == questions[i].CorrectIndex {
			correct++
		}
	}
	return Result{
		CorrectCount: correct,
		Total:        len(questions),
		FinalScore:   RoundHalfUp(100*correct, len(questions)),
	}, nil
}

// RoundHalfUp returns round(num/den) with halves rounded up, for num >= 0 and den > 0.
func RoundHalfUp(num, den int) int {
	return (2*num + den) / (2 * den)
}

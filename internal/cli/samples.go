package cli

import "learning-exam-service/internal/domain"

// sampleAssessments is the built-in catalogue served when no database is configured and
// seeded into Postgres otherwise.
func sampleAssessments() map[string]domain.Assessment {
	codeOptions := domain.LocalizedOptions{
		"en": {"function = myFunction()", "function myFunction()", "create function myFunction()", "def myFunction()"},
	}
	return map[string]domain.Assessment{
		"exam-js": {
			ID:         "exam-js",
			Kind:       domain.KindExam,
			CourseID:   "course-js",
			CourseName: "JavaScript Fundamentals",
			Title: domain.Localized{
				"en": "JavaScript Fundamentals Final Exam",
				"id": "Ujian Akhir Dasar-Dasar JavaScript",
			},
			TimeLimitSeconds: 600,
			Questions: []domain.Question{
				{
					ID: "q1",
					Prompt: domain.Localized{
						"en": "Which keyword is used to define a constant variable?",
						"id": "Kata kunci apa yang digunakan untuk mendefinisikan variabel konstan?",
					},
					Options:      domain.LocalizedOptions{"en": {"let", "var", "const", "static"}},
					CorrectIndex: 2,
				},
				{
					ID: "q2",
					Prompt: domain.Localized{
						"en": `What is "NaN"?`,
						"id": `Apa itu "NaN"?`,
					},
					Options: domain.LocalizedOptions{
						"en": {"Not a Number", "No action Needed", "Null and None", "A valid number"},
						"id": {"Bukan Angka", "Tidak perlu tindakan", "Null dan None", "Angka yang valid"},
					},
					CorrectIndex: 0,
				},
				{
					ID: "q3",
					Prompt: domain.Localized{
						"en": "How do you create a function in JavaScript?",
						"id": "Bagaimana cara membuat fungsi di JavaScript?",
					},
					Options:      codeOptions,
					CorrectIndex: 1,
				},
			},
		},
		"exam-react": {
			ID:         "exam-react",
			Kind:       domain.KindExam,
			CourseID:   "course-react",
			CourseName: "React Development",
			Title: domain.Localized{
				"en": "React Development Final Exam",
				"id": "Ujian Akhir Pengembangan React",
			},
			TimeLimitSeconds: 600,
			Questions: []domain.Question{
				{
					ID:           "q1",
					Prompt:       domain.Localized{"en": "What is JSX?", "id": "Apa itu JSX?"},
					Options:      domain.LocalizedOptions{"en": {"JavaScript XML", "JavaScript Extension", "Java Syntax Extension", "JSON Syntax"}},
					CorrectIndex: 0,
				},
				{
					ID: "q2",
					Prompt: domain.Localized{
						"en": "Which hook is used for state management in functional components?",
						"id": "Hook mana yang digunakan untuk manajemen state di komponen fungsional?",
					},
					Options:      domain.LocalizedOptions{"en": {"useEffect", "useState", "useContext", "useReducer"}},
					CorrectIndex: 1,
				},
			},
		},
		"quiz-js": {
			ID:         "quiz-js",
			Kind:       domain.KindQuiz,
			CourseID:   "course-js",
			CourseName: "JavaScript Fundamentals",
			Title:      domain.Localized{"en": "JavaScript Basics Quiz", "id": "Kuis Dasar JavaScript"},
			Questions: []domain.Question{
				{
					ID:           "q1",
					Prompt:       domain.Localized{"en": "Which keyword declares a block-scoped variable?"},
					Options:      domain.LocalizedOptions{"en": {"var", "let", "global", "define"}},
					CorrectIndex: 1,
					VideoURL:     "https://www.youtube.com/embed/s2skans2dP4",
				},
				{
					ID:           "q2",
					Prompt:       domain.Localized{"en": "What does typeof null return?"},
					Options:      domain.LocalizedOptions{"en": {"null", "undefined", "object", "number"}},
					CorrectIndex: 2,
				},
				{
					ID:           "q3",
					Prompt:       domain.Localized{"en": "Which method adds an element to the end of an array?"},
					Options:      domain.LocalizedOptions{"en": {"shift", "push", "pop", "concat"}},
					CorrectIndex: 1,
				},
				{
					ID:           "q4",
					Prompt:       domain.Localized{"en": "Which operator checks value and type equality?"},
					Options:      domain.LocalizedOptions{"en": {"==", "=", "===", "!="}},
					CorrectIndex: 2,
					VideoURL:     "https://www.youtube.com/embed/s2skans2dP4",
				},
			},
			TimeLimitSeconds: 900,
		},
	}
}

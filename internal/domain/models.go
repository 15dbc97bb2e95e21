package domain

import (
	"fmt"
	"math"
)

// Random disables a filter: the upstream interprets an absent
// category/difficulty/type parameter as "any".
const Random = "random"

// Difficulty values accepted by the upstream service.
const (
	DifficultyEasy   = "easy"
	DifficultyMedium = "medium"
	DifficultyHard   = "hard"
)

// Question type values accepted by the upstream service.
const (
	TypeMultiple = "multiple"
	TypeBoolean  = "boolean"
)

// Options configures one quiz. Immutable once a session has started.
type Options struct {
	Category      string `json:"category"` // upstream category id, or Random
	Difficulty    string `json:"difficulty"`
	Type          string `json:"type"`
	TimerSeconds  int    `json:"timerSeconds"`
	QuestionCount int    `json:"questionCount"`
}

// Validate checks option values before a session is created.
func (o Options) Validate() error {
	if o.Category == "" {
		return fmt.Errorf("%w: category must be set", ErrInvalidOptions)
	}
	switch o.Difficulty {
	case DifficultyEasy, DifficultyMedium, DifficultyHard, Random:
	default:
		return fmt.Errorf("%w: unknown difficulty %q", ErrInvalidOptions, o.Difficulty)
	}
	switch o.Type {
	case TypeMultiple, TypeBoolean, Random:
	default:
		return fmt.Errorf("%w: unknown question type %q", ErrInvalidOptions, o.Type)
	}
	if o.TimerSeconds <= 0 {
		return fmt.Errorf("%w: timer must be positive, got %d", ErrInvalidOptions, o.TimerSeconds)
	}
	if o.QuestionCount <= 0 {
		return fmt.Errorf("%w: question count must be positive, got %d", ErrInvalidOptions, o.QuestionCount)
	}
	return nil
}

// Category is one entry of the upstream category list.
type Category struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// RawQuestion is the upstream question record. Text fields arrive HTML-escaped;
// json tags match the upstream wire format.
type RawQuestion struct {
	Type             string   `json:"type"`
	Difficulty       string   `json:"difficulty"`
	Category         string   `json:"category"`
	Question         string   `json:"question"`
	CorrectAnswer    string   `json:"correct_answer"`
	IncorrectAnswers []string `json:"incorrect_answers"`
}

// Question is the decoded, persisted form of a question. ShuffledAnswers is a
// permutation of all answers fixed at creation time; IsCorrect stays nil until
// the question is answered and never changes afterwards.
type Question struct {
	Type             string   `json:"type"`
	Difficulty       string   `json:"difficulty"`
	Category         string   `json:"category"`
	Question         string   `json:"question"`
	CorrectAnswer    string   `json:"correctAnswer"`
	IncorrectAnswers []string `json:"incorrectAnswers"`
	ShuffledAnswers  []string `json:"shuffledAnswers"`
	IsCorrect        *bool    `json:"isCorrect,omitempty"`
}

// Answered reports whether the question has received its one answer.
func (q Question) Answered() bool {
	return q.IsCorrect != nil
}

// Session is the persisted, resumable state of one in-progress quiz.
type Session struct {
	Questions        []Question `json:"questions"`
	RemainingSeconds int        `json:"remainingSeconds"`
}

// Stats aggregates answer results. Derived on demand, never persisted.
type Stats struct {
	Answered   int `json:"answered"`
	Correct    int `json:"correct"`
	Incorrect  int `json:"incorrect"`
	Unanswered int `json:"unanswered"`
	Percentage int `json:"percentage"`
}

// ComputeStats derives Stats from a question list.
func ComputeStats(questions []Question) Stats {
	stats := Stats{}
	for _, q := range questions {
		if q.IsCorrect == nil {
			continue
		}
		stats.Answered++
		if *q.IsCorrect {
			stats.Correct++
		} else {
			stats.Incorrect++
		}
	}
	total := len(questions)
	stats.Unanswered = total - stats.Answered
	if total > 0 {
		stats.Percentage = int(math.Round(float64(stats.Correct) * 100 / float64(total)))
	}
	return stats
}

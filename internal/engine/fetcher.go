package engine

import (
	"context"
	"errors"
	"fmt"
	"html"
	"math/rand"
	"time"

	"trivia-quiz/internal/domain"
)

// QuestionAPI is the slice of the upstream client used for question sets.
type QuestionAPI interface {
	FetchQuestions(ctx context.Context, opts domain.Options, token string) ([]domain.RawQuestion, error)
}

// TokenSource provides the token slot to the fetcher and the quiz engine.
// *TokenManager implements it.
type TokenSource interface {
	Current() (string, bool)
	Acquire(ctx context.Context) (string, error)
	Refresh(ctx context.Context, current string) (string, error)
}

// Fetcher retrieves a question set and normalizes it into display form.
// When the upstream reports the token exhausted it refreshes the token and
// retries the same request exactly once; a second exhaustion is surfaced as
// ErrPoolExhausted so the fetch can never loop.
type Fetcher struct {
	api    QuestionAPI
	tokens TokenSource
	rnd    *rand.Rand
}

func NewFetcher(api QuestionAPI, tokens TokenSource) *Fetcher {
	return &Fetcher{
		api:    api,
		tokens: tokens,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Fetch returns opts.QuestionCount normalized questions. The caller persists
// the result; no session is created on error.
func (f *Fetcher) Fetch(ctx context.Context, opts domain.Options, token string) ([]domain.Question, error) {
	raw, err := f.api.FetchQuestions(ctx, opts, token)
	if errors.Is(err, domain.ErrTokenExhausted) {
		fresh, refreshErr := f.tokens.Refresh(ctx, token)
		if refreshErr != nil {
			return nil, fmt.Errorf("refresh exhausted token: %w", refreshErr)
		}
		raw, err = f.api.FetchQuestions(ctx, opts, fresh)
		if errors.Is(err, domain.ErrTokenExhausted) {
			return nil, domain.ErrPoolExhausted
		}
	}
	if err != nil {
		return nil, err
	}

	questions := make([]domain.Question, 0, len(raw))
	for _, r := range raw {
		questions = append(questions, f.normalize(r))
	}
	return questions, nil
}

// normalize decodes the HTML-escaped upstream record and fixes the answer
// permutation for the life of the question.
func (f *Fetcher) normalize(r domain.RawQuestion) domain.Question {
	incorrect := make([]string, len(r.IncorrectAnswers))
	for i, a := range r.IncorrectAnswers {
		incorrect[i] = html.UnescapeString(a)
	}
	correct := html.UnescapeString(r.CorrectAnswer)

	shuffled := make([]string, 0, len(incorrect)+1)
	shuffled = append(shuffled, incorrect...)
	shuffled = append(shuffled, correct)
	f.rnd.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	return domain.Question{
		Type:             r.Type,
		Difficulty:       r.Difficulty,
		Category:         html.UnescapeString(r.Category),
		Question:         html.UnescapeString(r.Question),
		CorrectAnswer:    correct,
		IncorrectAnswers: incorrect,
		ShuffledAnswers:  shuffled,
	}
}

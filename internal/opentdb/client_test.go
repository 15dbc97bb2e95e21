package opentdb

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"trivia-quiz/internal/domain"
)

func testServer(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, time.Second)
}

func TestFetchQuestionsBuildsQuery(t *testing.T) {
	var query url.Values
	client := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		query = r.URL.Query()
		w.Write([]byte(`{"response_code":0,"results":[{"type":"multiple","difficulty":"easy","category":"Any","question":"Q","correct_answer":"A","incorrect_answers":["B","C","D"]}]}`))
	})

	opts := domain.Options{
		Category:      "9",
		Difficulty:    domain.DifficultyEasy,
		Type:          domain.TypeMultiple,
		QuestionCount: 5,
	}
	results, err := client.FetchQuestions(context.Background(), opts, "tok-1")
	if err != nil {
		t.Fatalf("fetch failed: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}

	if query.Get("amount") != "5" {
		t.Fatalf("amount missing: %v", query)
	}
	if query.Get("token") != "tok-1" {
		t.Fatalf("token missing: %v", query)
	}
	if query.Get("category") != "9" || query.Get("difficulty") != "easy" || query.Get("type") != "multiple" {
		t.Fatalf("filters missing: %v", query)
	}
}

func TestFetchQuestionsOmitsRandomFilters(t *testing.T) {
	var query url.Values
	client := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		query = r.URL.Query()
		w.Write([]byte(`{"response_code":0,"results":[]}`))
	})

	opts := domain.Options{
		Category:      domain.Random,
		Difficulty:    domain.Random,
		Type:          domain.Random,
		QuestionCount: 10,
	}
	if _, err := client.FetchQuestions(context.Background(), opts, "tok"); err != nil {
		t.Fatalf("fetch failed: %v", err)
	}

	for _, key := range []string{"category", "difficulty", "type"} {
		if query.Has(key) {
			t.Fatalf("random filter %s must be omitted: %v", key, query)
		}
	}
	if query.Get("amount") != "10" {
		t.Fatalf("amount missing: %v", query)
	}
}

func TestFetchQuestionsTokenExhausted(t *testing.T) {
	client := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"response_code":4,"results":[]}`))
	})

	_, err := client.FetchQuestions(context.Background(), domain.Options{QuestionCount: 5}, "tok")
	if !errors.Is(err, domain.ErrTokenExhausted) {
		t.Fatalf("expected ErrTokenExhausted, got %v", err)
	}
}

func TestFetchQuestionsNoResults(t *testing.T) {
	client := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"response_code":1,"results":[]}`))
	})

	_, err := client.FetchQuestions(context.Background(), domain.Options{QuestionCount: 50}, "tok")
	if !errors.Is(err, domain.ErrInsufficientQuestions) {
		t.Fatalf("expected ErrInsufficientQuestions, got %v", err)
	}
}

func TestFetchQuestionsServerError(t *testing.T) {
	client := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := client.FetchQuestions(context.Background(), domain.Options{QuestionCount: 5}, "tok")
	if !errors.Is(err, domain.ErrUpstreamUnavailable) {
		t.Fatalf("expected ErrUpstreamUnavailable, got %v", err)
	}
}

func TestFetchQuestionsMalformedBody(t *testing.T) {
	client := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"response_code":`))
	})

	_, err := client.FetchQuestions(context.Background(), domain.Options{QuestionCount: 5}, "tok")
	if !errors.Is(err, domain.ErrMalformedResponse) {
		t.Fatalf("expected ErrMalformedResponse, got %v", err)
	}
}

func TestRequestToken(t *testing.T) {
	client := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api_token.php" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.URL.Query().Get("command") != "request" {
			t.Errorf("expected command=request, got %v", r.URL.Query())
		}
		w.Write([]byte(`{"response_code":0,"token":"abc123"}`))
	})

	token, err := client.RequestToken(context.Background())
	if err != nil {
		t.Fatalf("request token failed: %v", err)
	}
	if token != "abc123" {
		t.Fatalf("unexpected token %q", token)
	}
}

func TestResetTokenSendsCurrent(t *testing.T) {
	client := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("command") != "reset" || q.Get("token") != "stale" {
			t.Errorf("unexpected reset query: %v", q)
		}
		w.Write([]byte(`{"response_code":0,"token":"fresh"}`))
	})

	token, err := client.ResetToken(context.Background(), "stale")
	if err != nil {
		t.Fatalf("reset token failed: %v", err)
	}
	if token != "fresh" {
		t.Fatalf("unexpected token %q", token)
	}
}

func TestTokenMissingFromResponse(t *testing.T) {
	client := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"response_code":0,"token":""}`))
	})

	_, err := client.RequestToken(context.Background())
	if !errors.Is(err, domain.ErrMalformedResponse) {
		t.Fatalf("expected ErrMalformedResponse, got %v", err)
	}
}

func TestTokenRequestFailure(t *testing.T) {
	client := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"response_code":3,"token":""}`))
	})

	_, err := client.RequestToken(context.Background())
	if !errors.Is(err, domain.ErrUpstreamUnavailable) {
		t.Fatalf("expected ErrUpstreamUnavailable, got %v", err)
	}
}

func TestCategoriesSortedByName(t *testing.T) {
	client := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api_category.php" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Write([]byte(`{"trivia_categories":[{"id":15,"name":"Entertainment: Video Games"},{"id":9,"name":"General Knowledge"},{"id":22,"name":"Animals"}]}`))
	})

	categories, err := client.Categories(context.Background())
	if err != nil {
		t.Fatalf("categories failed: %v", err)
	}
	if len(categories) != 3 {
		t.Fatalf("expected 3 categories, got %d", len(categories))
	}
	want := []string{"Animals", "Entertainment: Video Games", "General Knowledge"}
	for i, name := range want {
		if categories[i].Name != name {
			t.Fatalf("categories not sorted: %+v", categories)
		}
	}
}

package integration

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	goredis "github.com/redis/go-redis/v9"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"trivia-quiz/internal/domain"
	"trivia-quiz/internal/engine"
	infraredis "trivia-quiz/internal/infra/redis"
)

type staticFetcher struct {
	questions []domain.Question
	calls     int
}

func (f *staticFetcher) Fetch(context.Context, domain.Options, string) ([]domain.Question, error) {
	f.calls++
	out := make([]domain.Question, len(f.questions))
	copy(out, f.questions)
	return out, nil
}

type staticTokens struct{ token string }

func (s *staticTokens) Current() (string, bool)                    { return s.token, true }
func (s *staticTokens) Acquire(context.Context) (string, error)    { return s.token, nil }
func (s *staticTokens) Refresh(context.Context, string) (string, error) { return s.token, nil }

func TestSessionSurvivesRestartEndToEnd(t *testing.T) {
	ctx := context.Background()
	requireDocker(t)

	addr, cleanup := startRedis(t, ctx)
	defer cleanup()

	client := goredis.NewClient(&goredis.Options{Addr: addr})
	defer client.Close()
	store := infraredis.NewStore(client, 0)

	questions := []domain.Question{
		{
			Question:         "What is 2 + 2?",
			CorrectAnswer:    "4",
			IncorrectAnswers: []string{"3", "5", "22"},
			ShuffledAnswers:  []string{"3", "4", "5", "22"},
		},
		{
			Question:         "What is the capital of France?",
			CorrectAnswer:    "Paris",
			IncorrectAnswers: []string{"Lyon", "Nice", "Lille"},
			ShuffledAnswers:  []string{"Paris", "Lyon", "Nice", "Lille"},
		},
	}
	opts := domain.Options{
		Category:      domain.Random,
		Difficulty:    domain.Random,
		Type:          domain.Random,
		TimerSeconds:  600,
		QuestionCount: 2,
	}

	fetcher := &staticFetcher{questions: questions}
	first := engine.NewWithTickInterval(store, &staticTokens{token: "tok"}, fetcher, time.Hour)
	if err := first.StartNew(ctx, opts); err != nil {
		t.Fatalf("start: %v", err)
	}
	first.RecordAnswer("4")
	first.Shutdown()

	// A fresh engine over the same store stands in for a process restart.
	second := engine.NewWithTickInterval(store, &staticTokens{token: "tok"}, fetcher, time.Hour)
	defer second.Shutdown()
	if err := second.Resume(); err != nil {
		t.Fatalf("resume: %v", err)
	}
	if fetcher.calls != 1 {
		t.Fatalf("resume must not refetch, saw %d fetches", fetcher.calls)
	}

	resumed := second.Questions()
	if len(resumed) != 2 {
		t.Fatalf("expected 2 questions after resume, got %d", len(resumed))
	}
	if resumed[0].Question != questions[0].Question {
		t.Fatalf("question text lost: %q", resumed[0].Question)
	}
	if resumed[0].IsCorrect == nil || !*resumed[0].IsCorrect {
		t.Fatal("recorded answer lost across restart")
	}
	if second.TimeRemaining() != 600 {
		t.Fatalf("expected full clock after no ticks, got %d", second.TimeRemaining())
	}

	stats := second.Submit()
	if stats.Answered != 1 || stats.Correct != 1 || stats.Unanswered != 1 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
	if err := second.Finish(); err != nil {
		t.Fatalf("finish: %v", err)
	}
	if _, ok := store.LoadSession(); ok {
		t.Fatal("session survived finish")
	}
}

func startRedis(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForListeningPort("6379/tcp").WithStartupTimeout(30 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start redis: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("redis host: %v", err)
	}
	port, err := container.MappedPort(ctx, "6379/tcp")
	if err != nil {
		t.Fatalf("redis port: %v", err)
	}
	return fmt.Sprintf("%s:%s", host, port.Port()), func() {
		_ = container.Terminate(ctx)
	}
}

func requireDocker(t *testing.T) {
	t.Helper()
	if _, err := tc.NewDockerProvider(); err != nil {
		t.Skipf("docker not available: %v", err)
	}
}

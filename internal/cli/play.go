package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"trivia-quiz/internal/config"
	"trivia-quiz/internal/engine"
)

// NewPlayCmd builds the CLI subcommand that runs a quiz in the terminal.
func NewPlayCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "play",
		Short: "Play a timed quiz",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlay(cmd.Context(), *configPath, os.Stdin, cmd.OutOrStdout())
		},
	}
}

func runPlay(ctx context.Context, configPath string, in io.Reader, out io.Writer) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	store, cleanup, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	client := newClient(cfg)
	tokens := engine.NewTokenManager(client, store)
	fetcher := engine.NewFetcher(client, tokens)
	eng := engine.New(store, tokens, fetcher)
	defer eng.Shutdown()

	reader := bufio.NewReader(in)

	if _, ok := store.LoadSession(); ok && promptYesNo(reader, out, "Resume your last quiz?") {
		err = eng.Resume()
	} else {
		fmt.Fprintln(out, "Fetching questions...")
		err = eng.StartNew(ctx, defaultOptions(cfg, store))
	}
	if err != nil {
		return err
	}

	if !quizLoop(eng, reader, out) {
		// Quit mid-quiz: the stored session stays resumable.
		fmt.Fprintln(out, "Progress saved. Resume with `trivia-quiz play`.")
		return nil
	}

	stats := eng.Submit()
	fmt.Fprintf(out, "\nAnswered %d of %d: %d correct, %d wrong, %d skipped (%d%%)\n",
		stats.Answered, stats.Answered+stats.Unanswered,
		stats.Correct, stats.Incorrect, stats.Unanswered, stats.Percentage)
	return eng.Finish()
}

// quizLoop drives one question per prompt until the quiz ends. Answers are
// single letters; n/b move, s submits, q leaves the session stored for later.
// Returns false when the player quit without submitting.
func quizLoop(eng *engine.Engine, reader *bufio.Reader, out io.Writer) bool {
	for !eng.IsTerminal() {
		questions := eng.Questions()
		if len(questions) == 0 {
			return true
		}
		idx := eng.CurrentIndex()
		q := questions[idx-1]
		stats := eng.Stats()

		fmt.Fprintf(out, "\nQuestion %d/%d  ·  answered %d  ·  %ds left\n\n",
			idx, len(questions), stats.Answered, eng.TimeRemaining())
		fmt.Fprintf(out, "%s\n\n", q.Question)
		for i, answer := range q.ShuffledAnswers {
			marker := " "
			if q.IsCorrect != nil && answer == q.CorrectAnswer {
				marker = "*"
			}
			fmt.Fprintf(out, "%s %c. %s\n", marker, 'a'+i, answer)
		}
		fmt.Fprint(out, "\nanswer letter, [n]ext, [b]ack, [s]ubmit, [q]uit> ")

		line, err := reader.ReadString('\n')
		if err != nil {
			// Input gone (EOF): keep the session stored for a later resume.
			return false
		}
		input := strings.ToLower(strings.TrimSpace(line))
		if eng.IsTerminal() {
			break
		}

		switch input {
		case "n", "":
			eng.Advance(1)
		case "b":
			eng.Advance(-1)
		case "s":
			return true
		case "q":
			eng.Shutdown()
			return false
		default:
			if len(input) == 1 {
				if pick := int(input[0] - 'a'); pick >= 0 && pick < len(q.ShuffledAnswers) {
					answer := q.ShuffledAnswers[pick]
					eng.RecordAnswer(answer)
					if answer == q.CorrectAnswer {
						fmt.Fprintln(out, "Correct!")
					} else {
						fmt.Fprintf(out, "Wrong. Correct answer was %s\n", q.CorrectAnswer)
					}
					eng.Advance(1)
					continue
				}
			}
			fmt.Fprintln(out, "Unrecognized input.")
		}
	}

	fmt.Fprintln(out, "\nTime is up!")
	return true
}

func promptYesNo(reader *bufio.Reader, out io.Writer, question string) bool {
	fmt.Fprintf(out, "%s [y/N] ", question)
	line, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}

package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"trivia-quiz/internal/config"
)

// NewResetCmd clears the stored session and upstream token.
func NewResetCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Discard the stored quiz session and token",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}

			store, cleanup, err := openStore(cfg)
			if err != nil {
				return err
			}
			defer cleanup()

			if err := store.ClearSession(); err != nil {
				return err
			}
			if err := store.ClearToken(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Stored session and token cleared.")
			return nil
		},
	}
}

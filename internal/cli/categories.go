package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"trivia-quiz/internal/config"
	"trivia-quiz/internal/opentdb"
)

// NewCategoriesCmd lists the upstream question categories.
func NewCategoriesCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "List available question categories",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}

			ttl := config.Duration(cfg.Categories.TTL, 10*time.Minute)
			cache := opentdb.NewCategoryCache(newClient(cfg), ttl)
			categories, err := cache.Categories(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%-6s %s\n", "ID", "CATEGORY")
			for _, c := range categories {
				fmt.Fprintf(out, "%-6d %s\n", c.ID, c.Name)
			}
			return nil
		},
	}
}

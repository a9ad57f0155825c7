package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/tuanpa2295/filip-hackathon/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "filip",
	Short: "Validated course recommendation engine",
	Long:  "Generates course recommendations from a pgvector knowledge base, validates every LLM response across semantic, contextual, domain and quality dimensions, and regenerates answers that fail.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/citymunch/slack-bot/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "citymunch",
	Short: "Search today's CityMunch restaurant offers",
	Long:  "Parses free-text searches into cuisine, restaurant, location and meal-time criteria, then finds and ranks today's offers from the CityMunch partner API.",
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

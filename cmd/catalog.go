package main

import (
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/citymunch/slack-bot/internal/catalog"
)

var catalogOut string

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Fetch the cuisine and restaurant catalog",
	Long:  "Loads one catalog snapshot and prints its size. With --out the snapshot is written as YAML usable as catalog.static_file.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		if cfg.API.Key == "" && cfg.Catalog.StaticFile == "" {
			return eris.New("catalog: api.key or catalog.static_file is required")
		}

		cat := initCatalog(initClient())
		if err := cat.Refresh(ctx); err != nil {
			return eris.Wrap(err, "load catalog")
		}
		snap, err := cat.Snapshot(ctx)
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "cuisine types: %d\nrestaurants:   %d\n", len(snap.CuisineTypes), len(snap.Restaurants))

		if catalogOut != "" {
			if err := catalog.WriteFile(catalogOut, snap); err != nil {
				return err
			}
			zap.L().Info("catalog snapshot written", zap.String("path", catalogOut))
		}
		return nil
	},
}

func init() {
	catalogCmd.Flags().StringVar(&catalogOut, "out", "", "write the snapshot to this YAML file")
	rootCmd.AddCommand(catalogCmd)
}

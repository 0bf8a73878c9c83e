package main

import (
	"encoding/json"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
)

var parseUserID string

var parseCmd = &cobra.Command{
	Use:   "parse [text]",
	Short: "Print the criteria parsed from search text",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		env, err := initSearchEnv(ctx, "search")
		if err != nil {
			return err
		}
		defer env.Close()

		if err := env.Catalog.Refresh(ctx); err != nil {
			return eris.Wrap(err, "load catalog")
		}

		c, err := env.Parser.Parse(ctx, strings.Join(args, " "), parseUserID)
		if err != nil {
			return printSearchError(cmd.OutOrStdout(), err)
		}

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(c)
	},
}

func init() {
	parseCmd.Flags().StringVar(&parseUserID, "user", "", "user id for history and saved locations")
	rootCmd.AddCommand(parseCmd)
}

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/citymunch/slack-bot/internal/model"
	"github.com/citymunch/slack-bot/internal/search"
)

var (
	searchUserID string
	searchAll    bool
	searchJSON   bool
)

var searchCmd = &cobra.Command{
	Use:   "search [text]",
	Short: "Search today's offers from the command line",
	Args:  cobra.ArbitraryArgs,
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

		res, err := env.Service.Search(ctx, strings.Join(args, " "), searchUserID)
		if err != nil {
			return printSearchError(cmd.OutOrStdout(), err)
		}

		if searchJSON {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(res)
		}
		printSearchResult(cmd.OutOrStdout(), res, searchAll)
		return nil
	},
}

func init() {
	searchCmd.Flags().StringVar(&searchUserID, "user", "", "user id for history and saved locations")
	searchCmd.Flags().BoolVar(&searchAll, "all", false, "print the show-more page too")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "print the full result as JSON")
	rootCmd.AddCommand(searchCmd)
}

func printSearchResult(w io.Writer, res *model.SearchResult, all bool) {
	fmt.Fprintln(w, res.Message)
	if !res.AddShowMoreButton {
		return
	}
	if all {
		fmt.Fprintln(w, res.MessageAfterShowingMore)
		return
	}
	fmt.Fprintf(w, "(more results: rerun with --all, search id %s)\n", res.SearchID)
}

// printSearchError shows the user-facing message for domain failures and
// returns other errors to the caller.
func printSearchError(w io.Writer, err error) error {
	kind := model.KindOf(err)
	if kind == model.KindUnknown {
		return err
	}
	fmt.Fprintf(w, "%s\n(%s: %v)\n", search.UserMessage(err), kind, err)
	return nil
}

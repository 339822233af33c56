package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/jcdickinson/lovvelger/internal/rpc"
)

var searchLawsCmd = &cobra.Command{
	Use:   "search-laws <query>",
	Short: "Search Lovdata for laws and regulations",
	Example: `  lovvelger search-laws arbeidsmiljøloven
  lovvelger search-laws --load "internkontroll"
  lovvelger search-laws --limit 10 ferie`,
	Args: cobra.ExactArgs(1),
	Run:  runSearchLaws,
}

var (
	searchLawsLimit int
	searchLawsLoad  bool
)

func init() {
	searchLawsCmd.Flags().IntVar(&searchLawsLimit, "limit", 5, "max results")
	searchLawsCmd.Flags().BoolVar(&searchLawsLoad, "load", false, "fetch and parse the returned laws")
}

func runSearchLaws(cmd *cobra.Command, args []string) {
	client, err := connectDaemon()
	if err != nil {
		slog.Error("failed to connect to daemon", "error", err)
		os.Exit(1)
	}

	resp, err := client.SearchLaws(context.Background(), rpc.SearchLawsRequest{
		Query: args[0],
		Limit: searchLawsLimit,
		Load:  searchLawsLoad,
	})
	if err != nil {
		slog.Error("search failed", "error", err)
		os.Exit(1)
	}

	if len(resp.Results) == 0 {
		fmt.Println("no results")
		return
	}

	for _, r := range resp.Results {
		state := ""
		switch {
		case r.Error != "":
			state = " [error: " + r.Error + "]"
		case r.Loaded:
			state = fmt.Sprintf(" [loaded: %d paragraphs]", r.Paragraphs)
		}
		fmt.Printf("  %-24s %s%s\n", r.Base, r.Title, state)
		if r.Department != "" {
			fmt.Printf("    %s\n", r.Department)
		}
	}
}

package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jcdickinson/lovvelger/internal/config"
	"github.com/jcdickinson/lovvelger/internal/daemon"
	"github.com/jcdickinson/lovvelger/internal/law"
	"github.com/jcdickinson/lovvelger/internal/rpc"
)

var addCmd = &cobra.Command{
	Use:   "add [base[=name] ...]",
	Short: "Fetch and parse laws from Lovdata",
	Long:  `Fetch, parse, and index laws by Lovdata base. A name after "=" replaces a generic page title.`,
	Example: `  lovvelger add LOV-2005-06-17-62
  lovvelger add LOV-2005-06-17-62 LOV-1988-04-29-21
  lovvelger add "FOR-2011-12-06-1357=Internkontrollforskriften"`,
	Args: cobra.MinimumNArgs(1),
	Run:  runAdd,
}

var addRefresh bool

func init() {
	addCmd.Flags().BoolVar(&addRefresh, "refresh", false, "fetch again even if already loaded")
}

func runAdd(cmd *cobra.Command, args []string) {
	var specs []rpc.LawSpec
	for _, arg := range args {
		base, name, _ := strings.Cut(arg, "=")
		specs = append(specs, rpc.LawSpec{Base: base, Name: name})
	}

	client, err := connectDaemon()
	if err != nil {
		log.Fatalf("failed to connect to daemon: %v", err)
	}

	resp, err := client.AddLaws(context.Background(), rpc.AddLawsRequest{Laws: specs, Refresh: addRefresh}, func(msg string) {
		fmt.Printf("  %s\n", msg)
	})
	if err != nil {
		log.Fatalf("failed to add laws: %v", err)
	}

	for _, r := range resp.Results {
		if r.Error != "" {
			fmt.Printf("  %s: error: %s\n", r.Base, r.Error)
			continue
		}
		source := "fetched"
		if r.Cached {
			source = "cached"
		}
		fmt.Printf("  %s (%s): %d chapters, %d paragraphs [%s]\n", r.Base, r.Name, r.Chapters, r.Paragraphs, source)
	}
}

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search chapters and paragraphs of loaded laws",
	Example: `  lovvelger search arbeidstid
  lovvelger search --law LOV-2005-06-17-62 "§ 10-4"
  lovvelger search --filter hms.yaml --tree verneombud
  lovvelger search --index overtid`,
	Args: cobra.ExactArgs(1),
	Run:  runSearch,
}

var (
	searchLaws   []string
	searchLimit  int
	searchFilter string
	searchIndex  bool
	searchTree   bool
	searchJSON   bool
)

func init() {
	searchCmd.Flags().StringSliceVar(&searchLaws, "law", nil, "restrict to law bases (repeatable)")
	searchCmd.Flags().IntVar(&searchLimit, "limit", 20, "max results")
	searchCmd.Flags().StringVar(&searchFilter, "filter", "", "YAML filter profile applied on top of the configured filter")
	searchCmd.Flags().BoolVar(&searchIndex, "index", false, "search the stored paragraph index")
	searchCmd.Flags().BoolVar(&searchTree, "tree", false, "print the matching hierarchy")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output as JSON")
}

func runSearch(cmd *cobra.Command, args []string) {
	req := rpc.SearchRequest{
		Query: args[0],
		Laws:  searchLaws,
		Limit: searchLimit,
		Index: searchIndex,
		Tree:  searchTree,
	}
	if searchFilter != "" {
		f, err := config.LoadFilter(searchFilter)
		if err != nil {
			log.Fatalf("failed to load filter: %v", err)
		}
		req.Filter = &f
	}

	client, err := connectDaemon()
	if err != nil {
		log.Fatalf("failed to connect to daemon: %v", err)
	}

	resp, err := client.Search(context.Background(), req)
	if err != nil {
		log.Fatalf("search failed: %v", err)
	}

	if searchJSON {
		out, _ := json.MarshalIndent(resp, "", "  ")
		fmt.Println(string(out))
		return
	}

	if resp.Skipped {
		fmt.Println("query too short")
		return
	}

	if searchTree {
		for _, l := range resp.Laws {
			printTree(l)
		}
		return
	}

	if len(resp.Hits) == 0 {
		fmt.Println("no results")
		return
	}

	for i, h := range resp.Hits {
		fmt.Printf("%d. %s (%s)\n", i+1, h.JuridicalReference, h.Law)
		fmt.Printf("   %s\n", h.Reference)
	}
}

func printTree(l law.Law) {
	fmt.Printf("%s [%s]\n", l.ShortName, l.Base)
	var walk func(chapters []law.Chapter, depth int)
	walk = func(chapters []law.Chapter, depth int) {
		indent := strings.Repeat("  ", depth)
		for _, c := range chapters {
			fmt.Printf("%s%s\n", indent, c.Title)
			for _, p := range c.Paragraphs {
				fmt.Printf("%s  %s  %s\n", indent, p.JuridicalReference, law.BuildReference(l.Base, p.ChapterIndex))
			}
			walk(c.SubChapters, depth+1)
		}
	}
	walk(l.Chapters, 1)
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show loaded laws, the active filter and daemon state",
	Run:   runStatus,
}

var statusJSON bool

func init() {
	statusCmd.Flags().BoolVar(&statusJSON, "json", false, "output as JSON")
}

func runStatus(cmd *cobra.Command, args []string) {
	client, err := connectDaemon()
	if err != nil {
		log.Fatalf("failed to connect to daemon: %v", err)
	}

	resp, err := client.Status(context.Background())
	if err != nil {
		log.Fatalf("status failed: %v", err)
	}

	if statusJSON {
		out, _ := json.MarshalIndent(resp, "", "  ")
		fmt.Println(string(out))
		return
	}

	if !resp.Filter.IsZero() {
		fmt.Printf("filter: law=%s chapters=%v paragraphs=%v\n",
			resp.Filter.LawBase, resp.Filter.AllowedChapters, resp.Filter.AllowedParagraphs)
	}

	if len(resp.Laws) == 0 {
		fmt.Println("no laws loaded")
		return
	}

	for _, l := range resp.Laws {
		state := "processing"
		switch {
		case !l.Loaded:
			state = "stub"
		case l.Processed && l.InMemory:
			state = "ready"
		case l.Processed:
			state = "indexed"
		}
		fmt.Printf("  %-22s %s (%d paragraphs) [%s]\n", l.Base, l.Name, l.Paragraphs, state)
	}
}

var stopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the background daemon",
	Run:   runStop,
}

func runStop(cmd *cobra.Command, args []string) {
	client := daemon.NewClient(config.SocketPath())
	if !client.IsAvailable() {
		fmt.Println("daemon is not running")
		return
	}

	// The daemon may close the connection before the response arrives.
	client.Shutdown(context.Background())
	fmt.Println("daemon stopped")
}

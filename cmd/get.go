package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jcdickinson/lovvelger/internal/daemon"
	"github.com/jcdickinson/lovvelger/internal/law"
	"github.com/jcdickinson/lovvelger/internal/markdown"
	"github.com/jcdickinson/lovvelger/internal/rpc"
)

var getCmd = &cobra.Command{
	Use:   "get <reference>",
	Short: "Print a law outline, chapter or paragraph as markdown",
	Example: `  lovvelger get LOV-2005-06-17-62
  lovvelger get lov://LOV-2005-06-17-62_10-4
  lovvelger get --html LOV-2005-06-17-62_10-4`,
	Args: cobra.ExactArgs(1),
	Run:  runGet,
}

var getHTML bool

func init() {
	getCmd.Flags().BoolVar(&getHTML, "html", false, "render as HTML with links to lovdata.no")
	rootCmd.AddCommand(getCmd)
}

func runGet(cmd *cobra.Command, args []string) {
	client, err := connectDaemon()
	if err != nil {
		log.Fatalf("failed to connect to daemon: %v", err)
	}

	resp, err := client.Get(context.Background(), rpc.GetRequest{
		Reference: strings.TrimPrefix(args[0], markdown.Scheme),
		HTML:      getHTML,
	})
	if err != nil {
		log.Fatalf("get failed: %v", err)
	}

	if getHTML {
		fmt.Print(resp.HTML)
		return
	}
	fmt.Print(resp.Markdown)
}

var selectCmd = &cobra.Command{
	Use:   "select [reference ...]",
	Short: "Resolve references to selection values",
	Long: `Resolve one or more references to the selection value a form would store.
With several references the selections are collected in order; repeating a
reference removes it again. Without arguments the selection is cleared.`,
	Example: `  lovvelger select LOV-2005-06-17-62_10-4
  lovvelger select LOV-2005-06-17-62_2-1 LOV-2005-06-17-62_2-3
  lovvelger select --preselected`,
	Run: runSelect,
}

var (
	selectPreselected bool
	selectJSON        bool
)

func init() {
	selectCmd.Flags().BoolVar(&selectPreselected, "preselected", false, "select the filter's preselected reference")
	selectCmd.Flags().BoolVar(&selectJSON, "json", false, "output as JSON")
}

func runSelect(cmd *cobra.Command, args []string) {
	client, err := connectDaemon()
	if err != nil {
		log.Fatalf("failed to connect to daemon: %v", err)
	}

	ctx := context.Background()
	if selectPreselected || len(args) == 0 {
		resp, err := client.Select(ctx, rpc.SelectRequest{Preselected: selectPreselected})
		if err != nil {
			log.Fatalf("select failed: %v", err)
		}
		set := law.SelectionSet{}
		if !resp.Selection.IsEmpty() {
			set = append(set, resp.Selection)
		}
		printSelections(set)
		return
	}

	set := law.SelectionSet{}
	for _, arg := range args {
		resp, err := client.Select(ctx, rpc.SelectRequest{Reference: strings.TrimPrefix(arg, markdown.Scheme)})
		if err != nil {
			log.Fatalf("select %s failed: %v", arg, err)
		}
		set = set.Toggle(resp.Selection)
	}
	printSelections(set)
}

func printSelections(set law.SelectionSet) {
	if selectJSON {
		out, _ := json.MarshalIndent(set, "", "  ")
		fmt.Println(string(out))
		return
	}

	if len(set) == 1 {
		fmt.Println(set[0].Display(daemon.SelectionPlaceholder))
	} else {
		fmt.Println(set.Display(daemon.SelectionPlaceholder))
	}
	for _, s := range set {
		if s.JuridicalReference != "" {
			fmt.Printf("  %s  %s\n", s.FullReference, s.JuridicalReference)
		}
	}
}

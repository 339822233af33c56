package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jcdickinson/lovvelger/internal/law"
)

var refCmd = &cobra.Command{
	Use:   "ref",
	Short: "Build and parse references without the daemon",
}

var refBuildCmd = &cobra.Command{
	Use:     "build <base> [chapter-index]",
	Short:   "Join a law base and chapter index into a reference",
	Example: `  lovvelger ref build LOV-2005-06-17-62 10-4`,
	Args:    cobra.RangeArgs(1, 2),
	Run: func(cmd *cobra.Command, args []string) {
		var index string
		if len(args) == 2 {
			index = args[1]
		}
		fmt.Println(law.BuildReference(args[0], index))
	},
}

var refParseCmd = &cobra.Command{
	Use:     "parse <reference>",
	Short:   "Split a reference into law base and chapter index",
	Example: `  lovvelger ref parse LOV-2005-06-17-62_10-4`,
	Args:    cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		out, _ := json.MarshalIndent(law.ParseReference(args[0]), "", "  ")
		fmt.Println(string(out))
	},
}

func init() {
	refCmd.AddCommand(refBuildCmd)
	refCmd.AddCommand(refParseCmd)
}

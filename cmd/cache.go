package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/jcdickinson/lovvelger/internal/config"
	"github.com/jcdickinson/lovvelger/internal/daemon"
	"github.com/jcdickinson/lovvelger/internal/rpc"
)

var clearCacheCmd = &cobra.Command{
	Use:   "clear-cache",
	Short: "Clear the daemon's law search cache",
	Long: `Clear cached Lovdata search results. With --documents the scraped
documents and HTML snapshots on disk are removed too, so the next add
fetches from Lovdata again.`,
	Run: runClearCache,
}

var clearDocuments bool

func init() {
	clearCacheCmd.Flags().BoolVar(&clearDocuments, "documents", false, "also remove cached documents and snapshots")
}

func runClearCache(cmd *cobra.Command, args []string) {
	client := daemon.NewClient(config.SocketPath())
	if !client.IsAvailable() {
		fmt.Println("daemon is not running")
		return
	}

	if err := client.ClearCache(context.Background(), rpc.ClearCacheRequest{Documents: clearDocuments}); err != nil {
		slog.Error("failed to clear cache", "error", err)
		os.Exit(1)
	}
	if clearDocuments {
		fmt.Println("search cache and documents cleared")
		return
	}
	fmt.Println("search cache cleared")
}

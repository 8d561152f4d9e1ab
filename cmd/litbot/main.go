package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/cloo-solutions/litbot/internal/cli"
	"github.com/cloo-solutions/litbot/internal/cli/client"
)

var version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:   "litbot",
		Short: "Client for the litbot admin API",
		Long: `litbot talks to a running litbotd over its HTTP API.

Environment variables:
  LITBOT_API_TOKEN   API token (required unless saved with 'litbot auth login')
  LITBOT_API_URL     API base URL (default: http://localhost:8080)
  LITBOT_CONFIG_DIR  Where 'litbot auth login' keeps credentials.yaml`,
		Version: version,
	}

	rootCmd.PersistentFlags().Bool("output", false, "Output as JSON")
	rootCmd.PersistentFlags().String("api-token", "", "API token (overrides env and saved login)")
	rootCmd.PersistentFlags().String("api-url", "", "API base URL (overrides env and saved login)")
	cli.AddHelpJSONFlag(rootCmd)

	rootCmd.AddCommand(client.SearchCmd())
	rootCmd.AddCommand(client.HistoryCmd())
	rootCmd.AddCommand(client.AskCmd())
	rootCmd.AddCommand(client.KeywordsCmd())
	rootCmd.AddCommand(client.SweepCmd())
	rootCmd.AddCommand(client.ShareCmd())
	rootCmd.AddCommand(client.StatsCmd())
	rootCmd.AddCommand(client.AuthCmd())

	cli.CheckHelpJSON(rootCmd)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

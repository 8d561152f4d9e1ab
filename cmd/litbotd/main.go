package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/cloo-solutions/litbot/internal/cli"
	"github.com/cloo-solutions/litbot/internal/cli/admin"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "litbotd",
		Short: "Legal tech article bot",
		Long:  "litbotd runs the Telegram bot and provides maintenance commands against its database",
	}

	cli.AddHelpJSONFlag(rootCmd)
	rootCmd.AddCommand(admin.ServeCmd())
	rootCmd.AddCommand(admin.MigrateCmd())
	rootCmd.AddCommand(admin.KeywordsCmd())
	rootCmd.AddCommand(admin.HistoryCmd())
	rootCmd.AddCommand(admin.AskCmd())
	rootCmd.AddCommand(admin.PreviewCmd())
	rootCmd.AddCommand(admin.ImportLegacyCmd())
	rootCmd.AddCommand(admin.BackupCmd())

	if len(os.Args) == 1 {
		os.Args = append(os.Args, "serve")
	}

	cli.CheckHelpJSON(rootCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

package admin

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cloo-solutions/litbot/internal/legacy"
)

func ImportLegacyCmd() *cobra.Command {
	var (
		historyJSON  string
		keywordsJSON string
		sqlitePath   string
	)

	cmd := &cobra.Command{
		Use:   "import-legacy",
		Short: "Import history and keywords from the previous bot's files",
		Long: `Import published links and keywords kept by the previous bot.

Accepted inputs (any combination):
  --history-json   JSON array of published links (history.json)
  --keywords-json  JSON array of keywords
  --sqlite         bot_data.db with keywords and history tables

Existing links and keywords are left unchanged, so the import can be re-run.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if historyJSON == "" && keywordsJSON == "" && sqlitePath == "" {
				return fmt.Errorf("nothing to import: pass --history-json, --keywords-json or --sqlite")
			}
			ctx := context.Background()

			ds := &legacy.Dataset{}
			if sqlitePath != "" {
				loaded, err := legacy.LoadSQLite(ctx, sqlitePath)
				if err != nil {
					return err
				}
				ds.Merge(loaded)
			}
			if historyJSON != "" {
				loaded, err := legacy.LoadHistoryJSON(historyJSON)
				if err != nil {
					return err
				}
				ds.Merge(loaded)
			}
			if keywordsJSON != "" {
				loaded, err := legacy.LoadKeywordsJSON(keywordsJSON)
				if err != nil {
					return err
				}
				ds.Merge(loaded)
			}

			a, err := loadApp(ctx, appOptions{migrate: true})
			if err != nil {
				return err
			}
			defer a.Close()

			report, err := legacy.NewImporter(a.tx).Import(ctx, ds)
			if err != nil {
				return err
			}
			if output, _ := cmd.Flags().GetString("output"); output == "json" {
				return printJSON(report)
			}
			fmt.Printf("Articles: %d imported, %d already present\n", report.HistoryInserted, report.HistorySkipped)
			fmt.Printf("Keywords: %d imported, %d already present\n", report.KeywordsAdded, report.KeywordsSkipped)
			return nil
		},
	}

	cmd.Flags().StringVar(&historyJSON, "history-json", "", "Path to history.json")
	cmd.Flags().StringVar(&keywordsJSON, "keywords-json", "", "Path to a JSON keyword array")
	cmd.Flags().StringVar(&sqlitePath, "sqlite", "", "Path to bot_data.db")
	cmd.Flags().StringP("output", "o", "text", "Output format (text or json)")

	return cmd
}

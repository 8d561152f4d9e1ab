package admin

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cloo-solutions/litbot/internal/classifier"
	"github.com/cloo-solutions/litbot/internal/jobs"
	"github.com/cloo-solutions/litbot/internal/service"
)

func HistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Inspect and maintain published article history",
	}

	search := &cobra.Command{
		Use:   "search <query>",
		Short: "Search history by title, summary, link, category or tags",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			a, err := loadApp(ctx, appOptions{})
			if err != nil {
				return err
			}
			defer a.Close()

			records, err := a.history.Search(ctx, strings.Join(args, " "))
			if err != nil {
				return err
			}
			if output, _ := cmd.Flags().GetString("output"); output == "json" {
				out := make([]map[string]interface{}, len(records))
				for i, r := range records {
					out[i] = map[string]interface{}{
						"link":       r.Link,
						"title":      r.Title,
						"category":   r.Category,
						"hashtags":   r.HashtagList(),
						"created_at": r.CreatedAt,
					}
				}
				return printJSON(out)
			}
			if len(records) == 0 {
				fmt.Println("No matching articles")
				return nil
			}
			for _, r := range records {
				fmt.Printf("  [%s] %s\n    %s\n", r.Category, r.Title, r.Link)
			}
			return nil
		},
	}
	search.Flags().StringP("output", "o", "text", "Output format (text or json)")
	cmd.AddCommand(search)

	cmd.AddCommand(&cobra.Command{
		Use:   "count",
		Short: "Print the number of recorded articles",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			a, err := loadApp(ctx, appOptions{})
			if err != nil {
				return err
			}
			defer a.Close()

			n, err := a.history.Count(ctx)
			if err != nil {
				return err
			}
			fmt.Println(n)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "backfill",
		Short: "Fill missing category and tags from link text",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			a, err := loadApp(ctx, appOptions{})
			if err != nil {
				return err
			}
			defer a.Close()

			n, err := service.NewBackfillService(a.history, a.keywords, classifier.New()).Run(ctx)
			if err != nil {
				return err
			}
			fmt.Printf("Backfilled %d articles\n", n)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "reindex",
		Short: "Process pending index retry jobs once",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			a, err := loadApp(ctx, appOptions{})
			if err != nil {
				return err
			}
			defer a.Close()

			if a.indexer == nil {
				return fmt.Errorf("indexing needs LITBOT_OPENAI_API_KEY")
			}
			worker := jobs.NewIndexWorker(a.indexJobs, service.NewReindexer(a.history, a.indexer))
			if err := worker.ProcessJobs(ctx); err != nil {
				return err
			}
			counts, err := a.indexJobs.CountByStatus(ctx)
			if err != nil {
				return err
			}
			for status, n := range counts {
				fmt.Printf("  %s: %d\n", status, n)
			}
			return nil
		},
	})

	return cmd
}

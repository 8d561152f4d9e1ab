package admin

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

func KeywordsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "keywords",
		Aliases: []string{"keyword"},
		Short:   "Manage relevance keywords",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List active keywords",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			a, err := loadApp(ctx, appOptions{})
			if err != nil {
				return err
			}
			defer a.Close()

			keywords, err := a.keywords.ListDetailed(ctx)
			if err != nil {
				return fmt.Errorf("failed to list keywords: %w", err)
			}

			if output, _ := cmd.Flags().GetString("output"); output == "json" {
				out := make([]map[string]interface{}, len(keywords))
				for i, k := range keywords {
					out[i] = map[string]interface{}{"keyword": k.Keyword, "created_at": k.CreatedAt}
				}
				return printJSON(out)
			}
			if len(keywords) == 0 {
				fmt.Println("No keywords configured")
				return nil
			}
			for _, k := range keywords {
				fmt.Printf("  %s (added %s)\n", k.Keyword, k.CreatedAt.Format("2006-01-02"))
			}
			return nil
		},
	}
	list.Flags().StringP("output", "o", "text", "Output format (text or json)")
	cmd.AddCommand(list)

	cmd.AddCommand(&cobra.Command{
		Use:   "add <keyword>",
		Short: "Add a keyword",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			a, err := loadApp(ctx, appOptions{})
			if err != nil {
				return err
			}
			defer a.Close()

			added, err := a.keywordSvc.Add(ctx, args[0])
			if err != nil {
				return err
			}
			fmt.Printf("Keyword added: %s\n", added)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "remove <keyword>",
		Short: "Remove a keyword",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			a, err := loadApp(ctx, appOptions{})
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.keywordSvc.Remove(ctx, args[0]); err != nil {
				return err
			}
			fmt.Printf("Keyword removed: %s\n", args[0])
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "seed",
		Short: "Insert the default keywords into an empty table",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			a, err := loadApp(ctx, appOptions{})
			if err != nil {
				return err
			}
			defer a.Close()

			return a.keywordSvc.Seed(ctx, a.feeds.Keywords)
		},
	})

	return cmd
}

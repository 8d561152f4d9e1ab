package admin

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/cloo-solutions/litbot/internal/classifier"
	"github.com/cloo-solutions/litbot/internal/feeds"
)

// PreviewCmd fetches the feeds and prints what a sweep would publish,
// without touching history or the channel.
func PreviewCmd() *cobra.Command {
	var since time.Duration

	cmd := &cobra.Command{
		Use:   "preview",
		Short: "Show relevant new articles without publishing",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			a, err := loadApp(ctx, appOptions{})
			if err != nil {
				return err
			}
			defer a.Close()

			keywords, err := a.keywords.List(ctx)
			if err != nil {
				return fmt.Errorf("failed to list keywords: %w", err)
			}

			aggregator := feeds.NewAggregatorFromConfig(a.cfg.Sources(a.feeds), a.httpClient)
			items, srcErrs := aggregator.FetchSince(ctx, time.Now().Add(-since))
			for _, e := range srcErrs {
				fmt.Printf("! %v\n", e)
			}

			c := classifier.New()
			shown := 0
			for i := range items {
				item := &items[i]
				if !c.IsRelevant(item, keywords) {
					continue
				}
				isNew, err := a.history.IsNew(ctx, item.Link)
				if err != nil {
					return err
				}
				if !isNew {
					continue
				}
				res := c.Classify(item, keywords)
				fmt.Printf("[%s] %s\n  %s\n  %v\n", res.Category, item.Title, item.Link, res.Hashtags)
				shown++
			}
			fmt.Printf("\n%d of %d fetched items would be published\n", shown, len(items))
			return nil
		},
	}

	cmd.Flags().DurationVar(&since, "since", 24*time.Hour, "How far back to look")
	return cmd
}

package client

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

// Article is one history entry as returned by the API.
type Article struct {
	Link      string   `json:"link"`
	Title     string   `json:"title"`
	Summary   string   `json:"summary,omitempty"`
	Category  string   `json:"category,omitempty"`
	Hashtags  []string `json:"hashtags,omitempty"`
	CreatedAt string   `json:"created_at"`
}

type ArticlePage struct {
	Items   []Article `json:"items"`
	Cursor  string    `json:"cursor,omitempty"`
	HasMore bool      `json:"has_more"`
}

func SearchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "search <query>",
		Short: "Search published articles",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := NewAPIClientWithCmd(cmd)
			if err != nil {
				return err
			}
			resp, err := c.Get(cmd.Context(), "/history/search", url.Values{"q": {strings.Join(args, " ")}})
			if err != nil {
				return err
			}
			var articles []Article
			if err := resp.Decode(&articles); err != nil {
				return err
			}
			if wantJSON(cmd) {
				return printJSON(articles)
			}
			if len(articles) == 0 {
				fmt.Println("No matching articles")
				return nil
			}
			printArticles(articles)
			return nil
		},
	}
}

func HistoryCmd() *cobra.Command {
	var (
		limit  int
		cursor string
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List published articles, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := NewAPIClientWithCmd(cmd)
			if err != nil {
				return err
			}
			query := url.Values{"limit": {strconv.Itoa(limit)}}
			if cursor != "" {
				query.Set("cursor", cursor)
			}
			resp, err := c.Get(cmd.Context(), "/history", query)
			if err != nil {
				return err
			}
			var page ArticlePage
			if err := resp.Decode(&page); err != nil {
				return err
			}
			if wantJSON(cmd) {
				return printJSON(page)
			}
			printArticles(page.Items)
			if page.HasMore {
				fmt.Printf("\nMore results available. Use --cursor %s\n", page.Cursor)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of results")
	cmd.Flags().StringVar(&cursor, "cursor", "", "Pagination cursor from previous response")

	return cmd
}

func printArticles(articles []Article) {
	for _, a := range articles {
		category := a.Category
		if category == "" {
			category = "-"
		}
		fmt.Printf("[%s] %s\n  %s\n", category, a.Title, a.Link)
		if len(a.Hashtags) > 0 {
			fmt.Printf("  %s\n", strings.Join(a.Hashtags, " "))
		}
	}
}

package client

import (
	"fmt"
	"net/url"

	"github.com/spf13/cobra"
)

type KeywordRequest struct {
	Keyword string `json:"keyword"`
}

func KeywordsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "keywords",
		Aliases: []string{"keyword"},
		Short:   "Manage relevance keywords",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List active keywords",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := NewAPIClientWithCmd(cmd)
			if err != nil {
				return err
			}
			resp, err := c.Get(cmd.Context(), "/keywords", nil)
			if err != nil {
				return err
			}
			var keywords []string
			if err := resp.Decode(&keywords); err != nil {
				return err
			}
			if wantJSON(cmd) {
				return printJSON(keywords)
			}
			for _, k := range keywords {
				fmt.Printf("  %s\n", k)
			}
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "add <keyword>",
		Short: "Add a keyword",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := NewAPIClientWithCmd(cmd)
			if err != nil {
				return err
			}
			resp, err := c.Post(cmd.Context(), "/keywords", KeywordRequest{Keyword: args[0]})
			if err != nil {
				return err
			}
			var added KeywordRequest
			if err := resp.Decode(&added); err != nil {
				return err
			}
			fmt.Printf("Keyword added: %s\n", added.Keyword)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "remove <keyword>",
		Short: "Remove a keyword",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := NewAPIClientWithCmd(cmd)
			if err != nil {
				return err
			}
			if _, err := c.Delete(cmd.Context(), "/keywords/"+url.PathEscape(args[0])); err != nil {
				return err
			}
			fmt.Printf("Keyword removed: %s\n", args[0])
			return nil
		},
	})

	return cmd
}

package client

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

type SweepResult struct {
	Trigger    string    `json:"trigger"`
	Since      time.Time `json:"since"`
	Fetched    int       `json:"fetched"`
	Duplicates int       `json:"duplicates"`
	Irrelevant int       `json:"irrelevant"`
	Published  int       `json:"published"`
	Failed     int       `json:"failed"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
}

func SweepCmd() *cobra.Command {
	var last bool

	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Run a feed sweep now",
		Long:  "Runs a manual sweep and waits for it. With --last, shows the most recent sweep instead.",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := NewAPIClientWithCmd(cmd)
			if err != nil {
				return err
			}
			var resp *APIResponse
			if last {
				resp, err = c.Get(cmd.Context(), "/sweep", nil)
			} else {
				resp, err = c.Post(cmd.Context(), "/sweep", nil)
			}
			var res SweepResult
			if err != nil {
				// An interrupted sweep still reports what it got through.
				var apiErr *APIError
				if errors.As(err, &apiErr) && apiErr.Partial(&res) {
					if wantJSON(cmd) {
						_ = printJSON(res)
					} else {
						printSweep(res)
					}
				}
				return err
			}
			if err := resp.Decode(&res); err != nil {
				return err
			}
			if wantJSON(cmd) {
				return printJSON(res)
			}
			printSweep(res)
			return nil
		},
	}

	cmd.Flags().BoolVar(&last, "last", false, "Show the last sweep instead of running one")
	return cmd
}

func printSweep(res SweepResult) {
	fmt.Printf("%s sweep since %s (took %s)\n", res.Trigger, res.Since.Local().Format("2006-01-02 15:04"),
		res.FinishedAt.Sub(res.StartedAt).Round(time.Millisecond))
	fmt.Printf("  fetched %d, duplicates %d, irrelevant %d, published %d, failed %d\n",
		res.Fetched, res.Duplicates, res.Irrelevant, res.Published, res.Failed)
}

type ShareRequest struct {
	URL string `json:"url"`
}

type ShareResponse struct {
	Link         string   `json:"link"`
	Title        string   `json:"title"`
	Category     string   `json:"category"`
	Hashtags     []string `json:"hashtags"`
	UsedFallback bool     `json:"used_fallback"`
}

func ShareCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "share <url>",
		Short: "Summarise a link and publish it to the channel",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := NewAPIClientWithCmd(cmd)
			if err != nil {
				return err
			}
			resp, err := c.Post(cmd.Context(), "/share", ShareRequest{URL: args[0]})
			if err != nil {
				return err
			}
			var shared ShareResponse
			if err := resp.Decode(&shared); err != nil {
				return err
			}
			if wantJSON(cmd) {
				return printJSON(shared)
			}
			fmt.Printf("Shared [%s] %s\n  %s\n", shared.Category, shared.Title, strings.Join(shared.Hashtags, " "))
			if shared.UsedFallback {
				fmt.Println("  (summary fell back to the article excerpt)")
			}
			return nil
		},
	}
}

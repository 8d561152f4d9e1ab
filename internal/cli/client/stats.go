package client

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"
)

type Stats struct {
	Articles  int            `json:"articles"`
	Keywords  int            `json:"keywords"`
	Chunks    int            `json:"chunks"`
	Sources   int            `json:"sources"`
	IndexJobs map[string]int `json:"index_jobs"`
	LastSweep *SweepResult   `json:"last_sweep,omitempty"`
}

func StatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show bot statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := NewAPIClientWithCmd(cmd)
			if err != nil {
				return err
			}
			resp, err := c.Get(cmd.Context(), "/stats", nil)
			if err != nil {
				return err
			}
			var stats Stats
			if err := resp.Decode(&stats); err != nil {
				return err
			}
			if wantJSON(cmd) {
				return printJSON(stats)
			}

			fmt.Printf("Articles: %d\nKeywords: %d\nChunks:   %d\nSources:  %d\n",
				stats.Articles, stats.Keywords, stats.Chunks, stats.Sources)
			if len(stats.IndexJobs) > 0 {
				statuses := make([]string, 0, len(stats.IndexJobs))
				for s := range stats.IndexJobs {
					statuses = append(statuses, s)
				}
				sort.Strings(statuses)
				fmt.Println("Index retries:")
				for _, s := range statuses {
					fmt.Printf("  %s: %d\n", s, stats.IndexJobs[s])
				}
			}
			if stats.LastSweep != nil {
				fmt.Println()
				printSweep(*stats.LastSweep)
			}
			return nil
		},
	}
}

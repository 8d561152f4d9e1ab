package client

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

type AskRequest struct {
	Question string `json:"question"`
}

type AskResponse struct {
	Answer string `json:"answer"`
}

func AskCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ask <question>",
		Short: "Ask a question answered from indexed articles",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := NewAPIClientWithCmd(cmd)
			if err != nil {
				return err
			}
			resp, err := c.Post(cmd.Context(), "/ask", AskRequest{Question: strings.Join(args, " ")})
			if err != nil {
				return err
			}
			var answer AskResponse
			if err := resp.Decode(&answer); err != nil {
				return err
			}
			if wantJSON(cmd) {
				return printJSON(answer)
			}
			fmt.Println(answer.Answer)
			return nil
		},
	}
}

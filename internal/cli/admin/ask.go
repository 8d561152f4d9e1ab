package admin

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func AskCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ask <question>",
		Short: "Answer a question from indexed articles",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			a, err := loadApp(ctx, appOptions{})
			if err != nil {
				return err
			}
			defer a.Close()

			answer, err := a.answer.Answer(ctx, strings.Join(args, " "))
			if answer != "" {
				fmt.Println(answer)
			}
			return err
		},
	}
}

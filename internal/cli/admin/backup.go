package admin

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cloo-solutions/litbot/internal/backup"
	"github.com/cloo-solutions/litbot/internal/legacy"
)

func BackupCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Export history and keywords to S3",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			a, err := loadApp(ctx, appOptions{})
			if err != nil {
				return err
			}
			defer a.Close()

			svc, err := a.backupService(ctx)
			if err != nil {
				return err
			}
			key, err := svc.Run(ctx)
			if err != nil {
				return err
			}
			fmt.Printf("Backup written to s3://%s/%s\n", a.cfg.S3Bucket, key)
			return nil
		},
	}

	latest := &cobra.Command{
		Use:   "latest",
		Short: "Describe the most recent backup",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			a, err := loadApp(ctx, appOptions{})
			if err != nil {
				return err
			}
			defer a.Close()

			svc, err := a.backupService(ctx)
			if err != nil {
				return err
			}
			snap, key, err := svc.Latest(ctx)
			if err != nil {
				return err
			}
			if output, _ := cmd.Flags().GetString("output"); output == "json" {
				return printJSON(snap)
			}
			fmt.Printf("%s: %d articles, %d keywords (taken %s)\n",
				key, len(snap.History), len(snap.Keywords), snap.CreatedAt.Format("2006-01-02 15:04:05 MST"))
			return nil
		},
	}
	latest.Flags().StringP("output", "o", "text", "Output format (text or json)")

	restore := &cobra.Command{
		Use:   "restore [key]",
		Short: "Merge a backup into the database",
		Long: `Merge a backup snapshot into history and keywords. Without a key the
newest snapshot is used. Rows already present are left unchanged and the
merge runs in one transaction.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			a, err := loadApp(ctx, appOptions{})
			if err != nil {
				return err
			}
			defer a.Close()

			svc, err := a.backupService(ctx)
			if err != nil {
				return err
			}
			var snap *backup.Snapshot
			if len(args) == 1 {
				snap, err = svc.Load(ctx, args[0])
			} else {
				snap, _, err = svc.Latest(ctx)
			}
			if err != nil {
				return err
			}

			report, err := legacy.NewImporter(a.tx).Import(ctx, &legacy.Dataset{
				History:  snap.Records(),
				Keywords: snap.KeywordNames(),
			})
			if err != nil {
				return err
			}
			if output, _ := cmd.Flags().GetString("output"); output == "json" {
				return printJSON(report)
			}
			fmt.Printf("Articles: %d restored, %d already present\n", report.HistoryInserted, report.HistorySkipped)
			fmt.Printf("Keywords: %d restored, %d already present\n", report.KeywordsAdded, report.KeywordsSkipped)
			return nil
		},
	}
	restore.Flags().StringP("output", "o", "text", "Output format (text or json)")

	cmd.AddCommand(latest, restore)

	return cmd
}

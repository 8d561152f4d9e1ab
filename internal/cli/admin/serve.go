package admin

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/cloo-solutions/litbot/internal/api/handlers"
	"github.com/cloo-solutions/litbot/internal/api/middleware"
	"github.com/cloo-solutions/litbot/internal/classifier"
	"github.com/cloo-solutions/litbot/internal/feeds"
	"github.com/cloo-solutions/litbot/internal/ingest"
	"github.com/cloo-solutions/litbot/internal/jobs"
	"github.com/cloo-solutions/litbot/internal/scheduler"
	"github.com/cloo-solutions/litbot/internal/scraper"
	"github.com/cloo-solutions/litbot/internal/server"
	"github.com/cloo-solutions/litbot/internal/service"
	"github.com/cloo-solutions/litbot/internal/telegram"
	"github.com/cloo-solutions/litbot/internal/telemetry"
)

const indexRetryInterval = 30 * time.Second

// ServeCmd returns the serve command
func ServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the bot",
		Long:  "Run the Telegram bot, the scheduled feed sweeps, nightly backups and the admin HTTP API",
		RunE:  runServe,
	}

	cmd.Flags().StringP("port", "p", "", "Port for the admin HTTP API (overrides LITBOT_PORT)")
	cmd.Flags().Bool("no-migrate", false, "Skip automatic database migrations on startup")
	cmd.Flags().Bool("no-startup-sweep", false, "Skip the catch-up sweep on startup")

	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	noMigrate, _ := cmd.Flags().GetBool("no-migrate")
	a, err := loadApp(ctx, appOptions{migrate: !noMigrate})
	if err != nil {
		return err
	}
	defer a.Close()
	cfg := a.cfg

	if err := cfg.ValidateForServe(); err != nil {
		return err
	}
	if port, _ := cmd.Flags().GetString("port"); port != "" {
		cfg.Port = port
	}

	if cfg.SentryDSN != "" {
		sampleRate := 0.1
		if cfg.Environment == "development" {
			sampleRate = 1.0
		}
		shutdownTelemetry, err := telemetry.Init(telemetry.Config{
			DSN:              cfg.SentryDSN,
			Environment:      cfg.Environment,
			TracesSampleRate: sampleRate,
			Debug:            cfg.Debug,
		})
		if err != nil {
			log.Printf("telemetry init failed (continuing without tracing): %v", err)
		} else {
			defer shutdownTelemetry()
		}
	}

	if err := a.keywordSvc.Seed(ctx, a.feeds.Keywords); err != nil {
		return fmt.Errorf("failed to seed keywords: %w", err)
	}

	botAPI, err := telegram.NewBotAPI(cfg.TelegramToken, cfg.Debug)
	if err != nil {
		return err
	}
	messenger := telegram.NewAPIMessenger(botAPI)
	reporter := telegram.NewErrorReporter(messenger, cfg.AdminIDs)

	aggregator := feeds.NewAggregatorFromConfig(cfg.Sources(a.feeds), a.httpClient)
	deps := ingest.Deps{
		Fetcher:    aggregator,
		History:    a.history,
		Keywords:   a.keywords,
		Classifier: classifier.New(),
		Summarizer: a.summary,
		Publisher:  telegram.NewChannelPublisher(messenger, cfg.ChannelID),
		IndexJobs:  a.indexJobs,
	}
	if a.indexer != nil {
		deps.Indexer = a.indexer
	}
	orch := ingest.New(deps, ingest.OptionsFromConfig(cfg))
	articleScraper := scraper.New(nil)

	bot := telegram.New(telegram.Deps{
		Messenger:   messenger,
		Pipeline:    orch,
		Scraper:     articleScraper,
		Keywords:    a.keywordSvc,
		History:     a.history,
		Answerer:    a.answer,
		Drafts:      service.NewDraftCache(cfg.DraftTTL, cfg.DraftCapacity),
		Reporter:    reporter,
		SourceCount: len(aggregator.Sources()),
	}, cfg)

	sched, err := scheduler.New(cfg.Timezone)
	if err != nil {
		return err
	}
	if err := sched.Every("sweep", cfg.CheckInterval, func() {
		if _, err := orch.RunPeriodic(ctx); err != nil && ctx.Err() == nil {
			reporter.Report(ctx, fmt.Errorf("periodic sweep: %w", err))
		}
	}); err != nil {
		return err
	}
	if cfg.HasS3() {
		backups, err := a.backupService(ctx)
		if err != nil {
			log.Printf("backup disabled: %v", err)
		} else if err := sched.Cron("backup", cfg.BackupSchedule, func() {
			if _, err := backups.Run(ctx); err != nil && ctx.Err() == nil {
				reporter.Report(ctx, fmt.Errorf("backup: %w", err))
			}
		}); err != nil {
			return err
		}
	}
	sched.Start()

	var indexWorker *jobs.Worker
	if a.indexer != nil {
		reindexer := service.NewReindexer(a.history, a.indexer)
		indexWorker = jobs.NewWorker(jobs.NewIndexWorker(a.indexJobs, reindexer), indexRetryInterval,
			jobs.WithName("index retry"),
			jobs.WithErrorHandler(func(ctx context.Context, err error) {
				reporter.Report(ctx, fmt.Errorf("index retry: %w", err))
			}),
		)
		go indexWorker.Start(ctx)
		log.Println("index retry worker started")
	} else {
		log.Println("LITBOT_OPENAI_API_KEY not set: summaries fall back to excerpts and /ask is disabled")
	}

	if !cfg.HasAPIToken() {
		log.Println("LITBOT_API_TOKEN not set: admin API routes will reject every request")
	}
	router := server.NewRouter(server.RouterConfig{
		Auth:           middleware.StaticToken{Token: cfg.APIToken},
		HistoryHandler: handlers.NewHistoryHandler(a.history),
		KeywordHandler: handlers.NewKeywordHandler(a.keywordSvc),
		AskHandler:     handlers.NewAskHandler(a.answer),
		SweepHandler:   handlers.NewSweepHandler(orch, articleScraper),
		StatsHandler: handlers.NewStatsHandler(handlers.StatsConfig{
			History:   a.history,
			Keywords:  a.keywords,
			Chunks:    a.chunks,
			IndexJobs: a.indexJobs,
			Sweeps:    orch,
			Sources:   len(aggregator.Sources()),
		}),
	})
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		log.Printf("starting server on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("server failed: %v", err)
			stop()
		}
	}()

	botDone := make(chan struct{})
	go func() {
		defer close(botDone)
		bot.Start(ctx, botAPI)
	}()

	if noStartup, _ := cmd.Flags().GetBool("no-startup-sweep"); !noStartup {
		go func() {
			if _, err := orch.RunStartup(ctx); err != nil && ctx.Err() == nil {
				reporter.Report(ctx, fmt.Errorf("startup sweep: %w", err))
			}
		}()
	}

	<-ctx.Done()
	log.Println("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	sched.Stop(shutdownCtx)
	if indexWorker != nil {
		indexWorker.Stop()
	}
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	select {
	case <-botDone:
	case <-shutdownCtx.Done():
		log.Println("telegram handlers still running at shutdown")
	}

	log.Println("server exited")
	return nil
}

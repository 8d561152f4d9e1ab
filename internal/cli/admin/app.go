package admin

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cloo-solutions/litbot/internal/backup"
	"github.com/cloo-solutions/litbot/internal/config"
	"github.com/cloo-solutions/litbot/internal/database"
	"github.com/cloo-solutions/litbot/internal/domain"
	"github.com/cloo-solutions/litbot/internal/llm"
	"github.com/cloo-solutions/litbot/internal/openai"
	"github.com/cloo-solutions/litbot/internal/repository"
	"github.com/cloo-solutions/litbot/internal/service"
	"github.com/cloo-solutions/litbot/internal/storage"
	"github.com/cloo-solutions/litbot/internal/vectorstore"
)

// app holds the storage and AI wiring shared by every admin command.
type app struct {
	cfg   *config.Config
	feeds *config.FeedsFile
	pool  *pgxpool.Pool

	history   *repository.HistoryRepository
	keywords  *repository.KeywordRepository
	chunks    *repository.ChunkRepository
	indexJobs *repository.IndexJobRepository
	tx        *repository.TxRunner

	keywordSvc *service.KeywordService
	summary    *service.SummaryService
	indexer    *service.IndexerService
	answer     answerer
	httpClient *http.Client
}

type answerer interface {
	Answer(ctx context.Context, question string) (string, error)
}

type appOptions struct {
	migrate bool
}

func loadApp(ctx context.Context, opts appOptions) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	feeds, err := config.LoadFeeds(cfg.FeedsFile)
	if err != nil {
		return nil, err
	}

	if opts.migrate {
		if err := database.Migrate(cfg.DatabaseURL); err != nil {
			return nil, fmt.Errorf("failed to run migrations: %w", err)
		}
	}

	pool, err := database.NewPool(ctx, database.Config{
		URL:             cfg.DatabaseURL,
		MaxConns:        10,
		MaxConnIdleTime: 5 * time.Minute,
		ConnectAttempts: 3,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	a := &app{
		cfg:        cfg,
		feeds:      feeds,
		pool:       pool,
		history:    repository.NewHistoryRepository(pool),
		keywords:   repository.NewKeywordRepository(pool),
		chunks:     repository.NewChunkRepository(pool),
		indexJobs:  repository.NewIndexJobRepository(pool),
		tx:         repository.NewTxRunner(pool),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
	a.keywordSvc = service.NewKeywordService(a.keywords)

	if cfg.HasOpenAI() {
		ai := openai.NewClientWithConfig(openai.Config{
			APIKey:         cfg.OpenAIAPIKey,
			BaseURL:        cfg.OpenAIBaseURL,
			EmbeddingModel: cfg.EmbeddingModel,
			ChatModel:      cfg.SummaryModel,
		})
		store := vectorstore.New(ai, a.chunks)
		a.summary = service.NewSummaryService(ai)
		a.indexer = service.NewIndexerService(store)
		a.answer = service.NewAnswerService(store, llm.NewClient(llm.Config{
			BaseURL: cfg.AnswerBaseURL,
			APIKey:  cfg.AnswerAPIKey,
			Model:   cfg.AnswerModel,
		}))
	} else {
		a.summary = service.NewSummaryService(nil)
		a.answer = noOpAnswerer{}
	}

	return a, nil
}

func (a *app) Close() {
	a.pool.Close()
}

func (a *app) backupService(ctx context.Context) (*backup.Service, error) {
	if !a.cfg.HasS3() {
		return nil, fmt.Errorf("backups need LITBOT_S3_ENDPOINT, LITBOT_S3_ACCESS_KEY_ID and LITBOT_S3_SECRET_ACCESS_KEY")
	}
	s3Client, err := storage.NewS3Client(ctx, storage.S3ClientConfig{
		Endpoint:        a.cfg.S3Endpoint,
		Region:          a.cfg.S3Region,
		AccessKeyID:     a.cfg.S3AccessKey,
		SecretAccessKey: a.cfg.S3SecretKey,
		Bucket:          a.cfg.S3Bucket,
		UsePathStyle:    true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create S3 client: %w", err)
	}
	if err := s3Client.EnsureBucket(ctx); err != nil {
		return nil, fmt.Errorf("failed to ensure S3 bucket: %w", err)
	}
	return backup.NewService(a.history, a.keywords, s3Client), nil
}

type noOpAnswerer struct{}

func (noOpAnswerer) Answer(ctx context.Context, question string) (string, error) {
	return "", domain.ErrAnswersDisabled
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

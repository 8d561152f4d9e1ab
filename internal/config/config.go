package config

import (
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Port  string `envconfig:"PORT" default:"8080"`
	Debug bool   `envconfig:"DEBUG" default:"false"`

	DatabaseURL string `envconfig:"DATABASE_URL" required:"true"`

	TelegramToken string  `envconfig:"TELEGRAM_TOKEN"`
	ChannelID     int64   `envconfig:"CHANNEL_ID"`
	AdminIDs      []int64 `envconfig:"ADMIN_IDS"`

	CheckInterval   time.Duration `envconfig:"CHECK_INTERVAL" default:"30m"`
	LookbackBuffer  time.Duration `envconfig:"LOOKBACK_BUFFER" default:"30m"`
	StartupLookback time.Duration `envconfig:"STARTUP_LOOKBACK" default:"168h"`
	StartupLimit    int           `envconfig:"STARTUP_LIMIT" default:"4"`
	PublishDelay    time.Duration `envconfig:"PUBLISH_DELAY" default:"2s"`

	FeedsFile   string `envconfig:"FEEDS_FILE"`
	PDPCEnabled bool   `envconfig:"PDPC_ENABLED" default:"true"`

	// Summaries and embeddings go through OpenAI.
	OpenAIAPIKey   string `envconfig:"OPENAI_API_KEY"`
	OpenAIBaseURL  string `envconfig:"OPENAI_BASE_URL"`
	SummaryModel   string `envconfig:"SUMMARY_MODEL" default:"gpt-4o-mini"`
	EmbeddingModel string `envconfig:"EMBEDDING_MODEL" default:"text-embedding-ada-002"`

	// Answers go through any OpenAI-compatible chat endpoint (Ollama by default).
	AnswerBaseURL string `envconfig:"ANSWER_BASE_URL" default:"http://localhost:11434/v1"`
	AnswerModel   string `envconfig:"ANSWER_MODEL" default:"llama3.2"`
	AnswerAPIKey  string `envconfig:"ANSWER_API_KEY" default:"ollama"`

	DraftTTL      time.Duration `envconfig:"DRAFT_TTL" default:"24h"`
	DraftCapacity int           `envconfig:"DRAFT_CAPACITY" default:"256"`

	APIToken string `envconfig:"API_TOKEN"`

	SentryDSN   string `envconfig:"SENTRY_DSN"`
	Environment string `envconfig:"ENVIRONMENT" default:"development"`

	S3Endpoint  string `envconfig:"S3_ENDPOINT"`
	S3AccessKey string `envconfig:"S3_ACCESS_KEY_ID"`
	S3SecretKey string `envconfig:"S3_SECRET_ACCESS_KEY"`
	S3Bucket    string `envconfig:"S3_BUCKET" default:"litbot-backups"`
	S3Region    string `envconfig:"S3_REGION" default:"us-east-1"`

	BackupSchedule string `envconfig:"BACKUP_SCHEDULE" default:"0 3 * * *"`
	Timezone       string `envconfig:"TIMEZONE" default:"Asia/Singapore"`
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("LITBOT", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	return &cfg, nil
}

func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	return cfg
}

// ValidateForServe checks the credentials the bot cannot run without.
func (c *Config) ValidateForServe() error {
	if c.TelegramToken == "" {
		return fmt.Errorf("LITBOT_TELEGRAM_TOKEN is required")
	}
	if c.ChannelID == 0 {
		return fmt.Errorf("LITBOT_CHANNEL_ID is required")
	}
	return nil
}

// IsAdmin reports whether userID may run admin commands. With no admin ids
// configured every user is treated as an admin (development mode).
func (c *Config) IsAdmin(userID int64) bool {
	if len(c.AdminIDs) == 0 {
		return true
	}
	for _, id := range c.AdminIDs {
		if id == userID {
			return true
		}
	}
	return false
}

func (c *Config) HasS3() bool {
	return c.S3Endpoint != "" && c.S3AccessKey != "" && c.S3SecretKey != ""
}

func (c *Config) HasOpenAI() bool {
	return c.OpenAIAPIKey != ""
}

func (c *Config) HasAPIToken() bool {
	return c.APIToken != ""
}

// SweepLookback is how far back periodic and manual sweeps look.
func (c *Config) SweepLookback() time.Duration {
	return c.CheckInterval + c.LookbackBuffer
}

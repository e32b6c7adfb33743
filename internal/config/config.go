package config

import (
	"fmt"
	"log"

	"github.com/clauselens/clauselens/internal/domain"
	"github.com/clauselens/clauselens/internal/llm"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Port  string `envconfig:"PORT" default:"8080"`
	Debug bool   `envconfig:"DEBUG" default:"false"`

	// APIToken protects the HTTP API; empty disables auth (local use).
	APIToken string `envconfig:"API_TOKEN"`

	DatabaseURL string `envconfig:"DATABASE_URL"`

	S3Endpoint  string `envconfig:"S3_ENDPOINT"`
	S3AccessKey string `envconfig:"S3_ACCESS_KEY_ID"`
	S3SecretKey string `envconfig:"S3_SECRET_ACCESS_KEY"`
	S3Bucket    string `envconfig:"S3_BUCKET" default:"clauselens-reports"`
	S3Region    string `envconfig:"S3_REGION" default:"us-east-1"`

	// ReportsDir enables local report export when no S3 is configured.
	ReportsDir string `envconfig:"REPORTS_DIR"`

	SentryDSN   string `envconfig:"SENTRY_DSN"`
	Environment string `envconfig:"ENVIRONMENT" default:"development"`

	LLMProvider       string  `envconfig:"LLM_PROVIDER" default:"gemini"`
	GeminiAPIKey      string  `envconfig:"GEMINI_API_KEY"`
	OpenAIAPIKey      string  `envconfig:"OPENAI_API_KEY"`
	Model             string  `envconfig:"MODEL"`
	EmbeddingModel    string  `envconfig:"EMBEDDING_MODEL"`
	LLMTimeout        int     `envconfig:"LLM_TIMEOUT" default:"60"`
	RequestsPerSecond float64 `envconfig:"REQUESTS_PER_SECOND"`

	IndexCacheSize int `envconfig:"INDEX_CACHE_SIZE" default:"10"`

	UseAdvancedOrchestration bool `envconfig:"USE_ADVANCED_ORCHESTRATION" default:"true"`
	EnableBatchProcessing    bool `envconfig:"ENABLE_BATCH_PROCESSING" default:"true"`
	EnableAdvancedPrompts    bool `envconfig:"ENABLE_ADVANCED_PROMPTS" default:"true"`
	EnableSemanticRetrieval  bool `envconfig:"ENABLE_SEMANTIC_RETRIEVAL" default:"true"`
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("CLAUSELENS", &cfg); err != nil {
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

func (c *Config) HasDatabase() bool {
	return c.DatabaseURL != ""
}

func (c *Config) HasS3() bool {
	return c.S3Endpoint != "" && c.S3AccessKey != "" && c.S3SecretKey != ""
}

func (c *Config) HasSentry() bool {
	return c.SentryDSN != ""
}

// APIKey returns the credential for the selected model provider.
func (c *Config) APIKey() string {
	if c.LLMProvider == llm.ProviderOpenAI {
		return c.OpenAIAPIKey
	}
	return c.GeminiAPIKey
}

// LLMConfig assembles the provider configuration.
func (c *Config) LLMConfig() llm.Config {
	return llm.Config{
		Provider:          c.LLMProvider,
		Model:             c.Model,
		EmbeddingModel:    c.EmbeddingModel,
		APIKey:            c.APIKey(),
		Timeout:           c.LLMTimeout,
		RequestsPerSecond: c.RequestsPerSecond,
	}
}

// Strategy assembles the orchestration toggles read before every decision.
func (c *Config) Strategy() domain.StrategyConfig {
	return domain.StrategyConfig{
		UseAdvancedOrchestration: c.UseAdvancedOrchestration,
		EnableBatchProcessing:    c.EnableBatchProcessing,
		EnableAdvancedPrompts:    c.EnableAdvancedPrompts,
		EnableSemanticRetrieval:  c.EnableSemanticRetrieval,
	}
}

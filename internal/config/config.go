package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config carries everything the client needs from the environment. A .env
// file in the working directory is honored but optional.
type Config struct {
	OpenAIAPIKey  string `envconfig:"OPENAI_API_KEY" required:"true"`
	ChatModel     string `envconfig:"CHAT_MODEL" default:"gpt-4o-mini"`
	DecisionModel string `envconfig:"DECISION_MODEL" default:"gpt-4o-mini"`

	ImageAPIBaseURL string `envconfig:"IMAGE_API_BASE_URL"`
	ImageAPIKey     string `envconfig:"IMAGE_API_KEY"`
	ArtAspectRatio  string `envconfig:"ART_ASPECT_RATIO" default:"16:9"`

	DataDir  string `envconfig:"DATA_DIR" default:".novel"`
	TurnsDB  string `envconfig:"TURNS_DB" default:"turns.db"`
	DebugLog string `envconfig:"DEBUG_LOG" default:"debug.log"`
	Debug    bool   `envconfig:"DEBUG"`

	PageSize           int           `envconfig:"PAGE_SIZE" default:"200"`
	CompletionTimeout  time.Duration `envconfig:"COMPLETION_TIMEOUT" default:"60s"`
	ArtPollInterval    time.Duration `envconfig:"ART_POLL_INTERVAL" default:"2s"`
	ArtPollMaxAttempts int           `envconfig:"ART_POLL_MAX_ATTEMPTS" default:"24"`
}

// Load reads .env (if present) and then the process environment.
func Load() (Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, fmt.Errorf("load configuration: %w", err)
	}
	return cfg, nil
}

// ArtEnabled reports whether the image task API collaborator is configured.
func (c Config) ArtEnabled() bool {
	return c.ImageAPIBaseURL != ""
}

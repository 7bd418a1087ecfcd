package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	SerpAPI  SerpAPIConfig  `yaml:"serpapi" mapstructure:"serpapi"`
	OpenAI   OpenAIConfig   `yaml:"openai" mapstructure:"openai"`
	Pipeline PipelineConfig `yaml:"pipeline" mapstructure:"pipeline"`
	Output   OutputConfig   `yaml:"output" mapstructure:"output"`
	Log      LogConfig      `yaml:"log" mapstructure:"log"`
}

// SerpAPIConfig holds SerpAPI settings.
type SerpAPIConfig struct {
	Key      string `yaml:"key" mapstructure:"key"`
	BaseURL  string `yaml:"base_url" mapstructure:"base_url"`
	Engine   string `yaml:"engine" mapstructure:"engine"`
	Language string `yaml:"language" mapstructure:"language"`
	Country  string `yaml:"country" mapstructure:"country"`
}

// OpenAIConfig holds OpenAI API settings.
type OpenAIConfig struct {
	Key     string `yaml:"key" mapstructure:"key"`
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
	Model   string `yaml:"model" mapstructure:"model"`
}

// PipelineConfig configures enrichment behavior.
type PipelineConfig struct {
	MaxRecords      int     `yaml:"max_records" mapstructure:"max_records"`
	MaxSnippets     int     `yaml:"max_snippets" mapstructure:"max_snippets"`
	MaxTags         int     `yaml:"max_tags" mapstructure:"max_tags"`
	Temperature     float64 `yaml:"temperature" mapstructure:"temperature"`
	SearchesPerSec  float64 `yaml:"searches_per_sec" mapstructure:"searches_per_sec"`
	InterestsColumn string  `yaml:"interests_column" mapstructure:"interests_column"`
}

// OutputConfig configures result writing.
type OutputConfig struct {
	Path      string `yaml:"path" mapstructure:"path"`
	Delimiter string `yaml:"delimiter" mapstructure:"delimiter"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("CONNECTIONS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("serpapi.key", "")
	v.SetDefault("serpapi.base_url", "https://serpapi.com")
	v.SetDefault("serpapi.engine", "google")
	v.SetDefault("serpapi.language", "en")
	v.SetDefault("serpapi.country", "us")
	v.SetDefault("openai.key", "")
	v.SetDefault("openai.base_url", "https://api.openai.com/v1")
	v.SetDefault("openai.model", "gpt-4-turbo-preview")
	v.SetDefault("pipeline.max_records", 5)
	v.SetDefault("pipeline.max_snippets", 10)
	v.SetDefault("pipeline.max_tags", 10)
	v.SetDefault("pipeline.temperature", 0.3)
	v.SetDefault("pipeline.searches_per_sec", 0.5)
	v.SetDefault("pipeline.interests_column", "Interests")
	v.SetDefault("output.path", "connections_with_interests.csv")
	v.SetDefault("output.delimiter", ";")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}

package cmd

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/joho/godotenv"
	"github.com/rctandrade/jobfitia-train-interview/internal/ai/gemini"
	"github.com/rctandrade/jobfitia-train-interview/internal/logger"
	"github.com/rctandrade/jobfitia-train-interview/internal/secrets"
	"github.com/rctandrade/jobfitia-train-interview/internal/store/postgres"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const (
	app = "jobfit"
)

type Config struct {
	Database *DatabaseConfig `mapstructure:"database"`
	AI       *AIConfig       `mapstructure:"ai"`
	Queue    *QueueConfig    `mapstructure:"queue"`
}

type DatabaseConfig struct {
	URL string `mapstructure:"url"`
}

type AIConfig struct {
	Provider string        `mapstructure:"provider"`
	Gemini   *GeminiConfig `mapstructure:"gemini"`
}

type GeminiConfig struct {
	APIKey       string `mapstructure:"api-key"`
	APIKeyFile   string `mapstructure:"api-key-file"`
	Model        string `mapstructure:"model"`
	MaxLogLength int    `mapstructure:"max-log-length"`
}

type QueueConfig struct {
	URL     string `mapstructure:"url"`
	Queue   string `mapstructure:"queue"`
	Workers int    `mapstructure:"workers"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "jobfit scores applications, builds learning paths and simulates interviews for a recruitment platform",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is jobfit.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
}

func initConfig() {
	// A .env file is optional; environment variables may come from anywhere.
	_ = godotenv.Load()

	for key, env := range map[string]string{
		"database.url":           "DATABASE_URL",
		"ai.gemini.api-key-file": "GEMINI_API_KEY_FILE",
		"queue.url":              "AMQP_URL",
	} {
		if err := viper.BindEnv(key, env); err != nil {
			log.Fatalf("binding %s environment variable: %v", env, err)
		}
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app + ".yaml")
	}

	// A missing config file is fine when the environment provides the values.
	// A config file that fails to parse is not.
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			log.Fatal(err)
		}
	}
}

func getConfig() (*Config, error) {
	var config *Config
	err := viper.Unmarshal(&config)
	if err != nil {
		return config, err
	}
	if config == nil {
		config = &Config{}
	}

	return config, nil
}

func newLogger() (*zap.Logger, error) {
	return logger.New(viper.GetBool("json"), viper.GetBool("debug"))
}

// newGenerator builds the configured inference client. Only the gemini
// provider is supported.
func newGenerator(ctx context.Context, cfg *Config, log *zap.Logger) (*gemini.Client, error) {
	if cfg.AI == nil || cfg.AI.Gemini == nil {
		return nil, errors.New("ai.gemini configuration is required")
	}
	if cfg.AI.Provider != "" && cfg.AI.Provider != "gemini" {
		return nil, fmt.Errorf("unsupported ai provider: %s", cfg.AI.Provider)
	}

	g := cfg.AI.Gemini
	key, err := secrets.Load(secrets.Source{
		Name:  "gemini api key",
		Value: g.APIKey,
		File:  g.APIKeyFile,
	})
	if err != nil {
		return nil, err
	}

	log = logger.WithCommonFields(log, "gemini", g.Model)

	return gemini.New(ctx, key, g.Model, g.MaxLogLength, log)
}

func openStore(cfg *Config) (*postgres.Store, error) {
	if cfg.Database == nil || cfg.Database.URL == "" {
		return nil, errors.New("database.url is required (or set DATABASE_URL)")
	}
	return postgres.Open(cfg.Database.URL)
}

func maxLogLength(cfg *Config) int {
	if cfg.AI != nil && cfg.AI.Gemini != nil {
		return cfg.AI.Gemini.MaxLogLength
	}
	return 0
}

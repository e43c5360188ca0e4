package cmd

import (
	"errors"
	"io/fs"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/spigell/jobfit/internal/filtering"
	"github.com/spigell/jobfit/internal/matching"
)

const (
	app       = "jobfit"
	envPrefix = "JOBFIT"
)

type Config struct {
	Lexicon  string            `mapstructure:"lexicon"`
	Jobs     *JobsConfig       `mapstructure:"jobs"`
	Filters  *filtering.Config `mapstructure:"filters"`
	Matching *MatchingConfig   `mapstructure:"matching"`
	AI       *AIConfig         `mapstructure:"ai"`
	Storage  *StorageConfig    `mapstructure:"storage"`
	Server   *ServerConfig     `mapstructure:"server"`
}

type JobsConfig struct {
	File      string `mapstructure:"file"`
	URL       string `mapstructure:"url"`
	TokenFile string `mapstructure:"token-file"`
}

type MatchingConfig struct {
	Mode           string                    `mapstructure:"mode"`
	TopK           int                       `mapstructure:"top-k"`
	SkillThreshold float64                   `mapstructure:"skill-threshold"`
	Embedder       string                    `mapstructure:"embedder"`
	Dimensions     int                       `mapstructure:"dimensions"`
	Suggestions    matching.SuggestionPolicy `mapstructure:"suggestions"`
}

type AIConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	Gemini  *GeminiConfig `mapstructure:"gemini"`
}

type GeminiConfig struct {
	APIKey       string `mapstructure:"api-key"`
	APIKeyFile   string `mapstructure:"api-key-file"`
	Model        string `mapstructure:"model"`
	EmbedModel   string `mapstructure:"embed-model"`
	MaxRetries   int    `mapstructure:"max-retries"`
	MaxLogLength int    `mapstructure:"max-log-length"`
}

type StorageConfig struct {
	PostgresDSN       string        `mapstructure:"postgres-dsn"`
	PostgresDSNFile   string        `mapstructure:"postgres-dsn-file"`
	RedisAddr         string        `mapstructure:"redis-addr"`
	RedisPassword     string        `mapstructure:"redis-password"`
	RedisPasswordFile string        `mapstructure:"redis-password-file"`
	RedisDB           int           `mapstructure:"redis-db"`
	CacheTTL          time.Duration `mapstructure:"cache-ttl"`
}

type ServerConfig struct {
	Addr        string `mapstructure:"addr"`
	MaxUploadMB int    `mapstructure:"max-upload-mb"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "jobfit parses resumes and ranks job listings by how well they fit",
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

	setDefaults()
}

// setDefaults registers every key so that JOBFIT_* variables can override it.
func setDefaults() {
	defaults := map[string]any{
		"log-level":                   "info",
		"lexicon":                     "",
		"jobs.file":                   "jobs.json",
		"jobs.url":                    "",
		"jobs.token-file":             "",
		"filters.skip":                []string{},
		"matching.mode":               string(matching.ModeSkills),
		"matching.top-k":              10,
		"matching.skill-threshold":    0.7,
		"matching.embedder":           "hashing",
		"matching.dimensions":         384,
		"matching.suggestions":        map[string]any{"min-frequency": 5, "max-skills": 10, "sample-size": 20},
		"ai.enabled":                  false,
		"ai.gemini.api-key":           "",
		"ai.gemini.api-key-file":      "",
		"ai.gemini.model":             "",
		"ai.gemini.embed-model":       "",
		"ai.gemini.max-retries":       3,
		"ai.gemini.max-log-length":    500,
		"storage.postgres-dsn":        "",
		"storage.postgres-dsn-file":   "",
		"storage.redis-addr":          "",
		"storage.redis-password":      "",
		"storage.redis-password-file": "",
		"storage.redis-db":            0,
		"storage.cache-ttl":           "10m",
		"server.addr":                 ":8765",
		"server.max-upload-mb":        10,
	}
	for k, v := range defaults {
		viper.SetDefault(k, v)
	}
}

func initConfig() {
	// A missing .env is fine.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Fatalf("loading .env: %v", err)
	}

	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app)
		viper.SetConfigType("yaml")
	}

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		// Only an explicitly requested config file is mandatory.
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

	if config.Filters == nil {
		config.Filters = &filtering.Config{}
	}

	return config, nil
}

package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"budgetpilot/internal/config"
	"budgetpilot/internal/pkg/logger"
)

var (
	cfgFile string
	cfg     *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "budgetpilot",
	Short: "BudgetPilot - financial advisor chat service",
	Long: `BudgetPilot serves a conversational financial advisor over HTTP.
Replies come from a generation API reached through a retrying client
that escalates between credential strategies on auth failures.`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "",
		"config file (default: ./configs/config.yaml)")

	_ = viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath("./configs")
		viper.AddConfigPath(".")
		viper.AddConfigPath("$HOME/.budgetpilot")
	}

	viper.SetEnvPrefix("BUDGETPILOT")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if errors.As(err, &configFileNotFoundError) {
			fmt.Fprintln(os.Stderr, "No config file found, using defaults and environment variables")
		} else {
			fmt.Fprintf(os.Stderr, "Failed to read config: %v\n", err)
			os.Exit(1)
		}
	}

	cfg = &config.Config{}
	if err := viper.Unmarshal(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to unmarshal config: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(&cfg.Log); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to init logger: %v\n", err)
		os.Exit(1)
	}

	log.Debug().Str("config_file", viper.ConfigFileUsed()).Msg("Configuration loaded")
}

func setDefaults() {
	// Server
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.mode", "release")
	viper.SetDefault("server.read_timeout", "30s")
	// 生成请求最坏情况: 3 次尝试 + 2 次升级，每次 30s 超时
	viper.SetDefault("server.write_timeout", "180s")
	viper.SetDefault("server.allow_origins", []string{"*"})

	// Gemini
	viper.SetDefault("gemini.base_url", "https://generativelanguage.googleapis.com/v1beta/models")
	viper.SetDefault("gemini.model", "gemini-2.0-flash")
	viper.SetDefault("gemini.max_attempts", 3)
	viper.SetDefault("gemini.backoff_base", "500ms")
	viper.SetDefault("gemini.max_jitter", "100ms")
	viper.SetDefault("gemini.request_timeout", "30s")
	viper.SetDefault("gemini.oauth_scopes", []string{
		"https://www.googleapis.com/auth/cloud-platform",
		"https://www.googleapis.com/auth/generative-language",
	})
	viper.SetDefault("gemini.api_key_min_len", 35)
	viper.SetDefault("gemini.api_key_max_len", 45)

	// AI
	viper.SetDefault("ai.provider", "gemini")
	viper.SetDefault("ai.options.temperature", 0.7)
	viper.SetDefault("ai.options.max_tokens", 4096)
	viper.SetDefault("ai.options.top_p", 1.0)

	// Chat
	viper.SetDefault("chat.default_title", "Chat with BudgetPilot")
	viper.SetDefault("chat.history_window", 15)
	viper.SetDefault("chat.currency_symbol", "₹")
	viper.SetDefault("chat.cache_ttl", "30m")
	viper.SetDefault("chat.rate_limit.per_sec", 2)
	viper.SetDefault("chat.rate_limit.backend", "memory")

	// Advice
	viper.SetDefault("advice.enabled", true)
	viper.SetDefault("advice.window_months", 3)
	viper.SetDefault("advice.yearly_months", 12)
	viper.SetDefault("advice.history_limit", 50)
	viper.SetDefault("advice.savings_months", 6)

	// Log
	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.format", "console")
	viper.SetDefault("log.output", "stdout")
	viper.SetDefault("log.time_format", "RFC3339")

	// MongoDB
	viper.SetDefault("mongo.uri", "mongodb://localhost:27017")
	viper.SetDefault("mongo.database", "budgetpilot")
	viper.SetDefault("mongo.max_pool_size", 100)
	viper.SetDefault("mongo.min_pool_size", 10)

	// Redis
	viper.SetDefault("redis.addr", "localhost:6379")
	viper.SetDefault("redis.db", 0)

	// Metrics
	viper.SetDefault("metrics.enabled", true)
	viper.SetDefault("metrics.path", "/metrics")
}

// GetConfig returns the global configuration
func GetConfig() *config.Config {
	return cfg
}

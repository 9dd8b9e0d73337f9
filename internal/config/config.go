package config

import (
	"errors"
	"time"
)

// Config 应用配置根结构
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Gemini  GeminiConfig  `mapstructure:"gemini"`
	AI      AIConfig      `mapstructure:"ai"`
	Chat    ChatConfig    `mapstructure:"chat"`
	Advice  AdviceConfig  `mapstructure:"advice"`
	Log     LogConfig     `mapstructure:"log"`
	Mongo   MongoConfig   `mapstructure:"mongo"`
	Redis   RedisConfig   `mapstructure:"redis"`
	Auth    AuthConfig    `mapstructure:"auth"`
	Metrics MetricsConfig `mapstructure:"metrics"`
}

// ServerConfig HTTP 服务器配置
type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	Mode         string        `mapstructure:"mode"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	AllowOrigins []string      `mapstructure:"allow_origins"`
}

// GeminiConfig 生成接口配置
// APIKey 为空时走委托 OAuth 凭证（workload identity）
type GeminiConfig struct {
	BaseURL        string        `mapstructure:"base_url"`
	Model          string        `mapstructure:"model"`
	APIKey         string        `mapstructure:"api_key"`
	MaxAttempts    int           `mapstructure:"max_attempts"`
	BackoffBase    time.Duration `mapstructure:"backoff_base"`
	MaxJitter      time.Duration `mapstructure:"max_jitter"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	OAuthScopes    []string      `mapstructure:"oauth_scopes"`
	APIKeyMinLen   int           `mapstructure:"api_key_min_len"`
	APIKeyMaxLen   int           `mapstructure:"api_key_max_len"`
}

// AIConfig 生成后端选择
// provider=gemini 使用内置执行器，其余走 eino ChatModel
type AIConfig struct {
	Provider string          `mapstructure:"provider"`
	APIKey   string          `mapstructure:"api_key"`
	Model    string          `mapstructure:"model"`
	BaseURL  string          `mapstructure:"base_url"`
	Options  AIOptionsConfig `mapstructure:"options"`
}

// AIOptionsConfig AI 模型参数
type AIOptionsConfig struct {
	Temperature float64 `mapstructure:"temperature"`
	MaxTokens   int     `mapstructure:"max_tokens"`
	TopP        float64 `mapstructure:"top_p"`
}

// ChatConfig 对话编排配置
type ChatConfig struct {
	SystemPrompt        string          `mapstructure:"system_prompt"`
	GreetingInstruction string          `mapstructure:"greeting_instruction"`
	DefaultTitle        string          `mapstructure:"default_title"`
	HistoryWindow       int             `mapstructure:"history_window"`
	CurrencySymbol      string          `mapstructure:"currency_symbol"`
	CacheTTL            time.Duration   `mapstructure:"cache_ttl"`
	RateLimit           RateLimitConfig `mapstructure:"rate_limit"`
}

// RateLimitConfig 每用户每秒请求上限
type RateLimitConfig struct {
	PerSec  int    `mapstructure:"per_sec"`
	Backend string `mapstructure:"backend"` // memory, redis
}

// AdviceConfig 理财建议配置
// Enabled=false 时只返回规则建议，不调用生成后端
type AdviceConfig struct {
	Enabled       bool `mapstructure:"enabled"`
	WindowMonths  int  `mapstructure:"window_months"`  // monthly/detailed 统计窗口
	YearlyMonths  int  `mapstructure:"yearly_months"`  // yearly 统计窗口
	HistoryLimit  int  `mapstructure:"history_limit"`  // 历史列表最多返回条数
	SavingsMonths int  `mapstructure:"savings_months"` // 储蓄预测使用的月数
}

// LogConfig 日志配置 (Zerolog)
type LogConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	Output     string `mapstructure:"output"`
	FilePath   string `mapstructure:"file_path"`
	TimeFormat string `mapstructure:"time_format"`
}

// MongoConfig MongoDB 配置
type MongoConfig struct {
	URI         string `mapstructure:"uri"`
	Database    string `mapstructure:"database"`
	MaxPoolSize uint64 `mapstructure:"max_pool_size"`
	MinPoolSize uint64 `mapstructure:"min_pool_size"`
}

// RedisConfig Redis 配置
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// AuthConfig 认证配置（仅校验 access token，签发由账号服务负责）
type AuthConfig struct {
	JWTSecret string `mapstructure:"jwt_secret"`
}

// MetricsConfig Prometheus 指标配置
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// Validate 验证配置有效性
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return errors.New("invalid server port")
	}

	validModes := map[string]bool{"debug": true, "release": true, "test": true}
	if !validModes[c.Server.Mode] {
		return errors.New("invalid server mode, must be debug/release/test")
	}

	if err := c.Gemini.Validate(); err != nil {
		return err
	}

	validProviders := map[string]bool{"": true, "gemini": true, "openai": true, "azure": true, "ark": true}
	if !validProviders[c.AI.Provider] {
		return errors.New("invalid ai provider, must be gemini/openai/azure/ark")
	}

	if c.Chat.HistoryWindow <= 0 {
		return errors.New("chat.history_window must be positive")
	}
	if c.Chat.RateLimit.PerSec <= 0 {
		return errors.New("chat.rate_limit.per_sec must be positive")
	}
	if c.Advice.WindowMonths < 0 || c.Advice.YearlyMonths < 0 || c.Advice.SavingsMonths < 0 || c.Advice.HistoryLimit < 0 {
		return errors.New("advice windows and history_limit must not be negative")
	}
	switch c.Chat.RateLimit.Backend {
	case "", "memory", "redis":
	default:
		return errors.New("invalid rate limit backend, must be memory/redis")
	}

	return nil
}

// Validate 校验重试与超时参数；单次请求必须有有限超时
func (g *GeminiConfig) Validate() error {
	if g.BaseURL == "" || g.Model == "" {
		return errors.New("gemini.base_url and gemini.model are required")
	}
	if g.MaxAttempts <= 0 {
		return errors.New("gemini.max_attempts must be positive")
	}
	if g.BackoffBase <= 0 {
		return errors.New("gemini.backoff_base must be positive")
	}
	if g.MaxJitter < 0 {
		return errors.New("gemini.max_jitter must not be negative")
	}
	if g.RequestTimeout <= 0 {
		return errors.New("gemini.request_timeout must be positive")
	}
	if g.APIKeyMinLen > g.APIKeyMaxLen {
		return errors.New("gemini.api_key_min_len must not exceed api_key_max_len")
	}
	return nil
}

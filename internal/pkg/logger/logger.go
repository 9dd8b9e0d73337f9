package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"budgetpilot/internal/config"
)

const serviceName = "budgetpilot"

// Init 初始化全局日志
func Init(cfg *config.LogConfig) error {
	output, err := openOutput(cfg)
	if err != nil {
		return err
	}
	configure(cfg, output)
	return nil
}

func openOutput(cfg *config.LogConfig) (io.Writer, error) {
	if cfg.Output == "file" && cfg.FilePath != "" {
		return os.OpenFile(cfg.FilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	}
	return os.Stdout, nil
}

func configure(cfg *config.LogConfig, output io.Writer) {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil || cfg.Level == "" {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	switch cfg.TimeFormat {
	case "Unix":
		zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	case "UnixMs":
		zerolog.TimeFieldFormat = zerolog.TimeFormatUnixMs
	default:
		zerolog.TimeFieldFormat = time.RFC3339
	}

	// console 格式 (开发环境友好)
	if cfg.Format == "console" {
		output = zerolog.ConsoleWriter{
			Out:        output,
			TimeFormat: time.RFC3339,
		}
	}

	log.Logger = zerolog.New(output).With().
		Timestamp().
		Str("service", serviceName).
		Caller().
		Logger()
}

// Component 带 component 字段的子 logger
// 需在 Init 之后调用，之前创建的子 logger 不会继承新的输出配置
func Component(name string) zerolog.Logger {
	return log.With().Str("component", name).Logger()
}

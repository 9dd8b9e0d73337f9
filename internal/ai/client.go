package ai

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"budgetpilot/internal/config"
	"budgetpilot/internal/pkg/gemini"
)

// Generator 文本生成能力
// 会话编排只依赖这个接口
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// NewGenerator 按 ai.provider 选择生成后端
// 空或 gemini 使用内置执行器，其余走 eino ChatModel
func NewGenerator(ctx context.Context, cfg *config.Config) (Generator, error) {
	switch cfg.AI.Provider {
	case "", "gemini":
		if cfg.Gemini.APIKey == "" {
			log.Warn().Msg("Gemini API key not configured, relying on delegated OAuth credentials")
		}
		return gemini.NewClient(&cfg.Gemini), nil
	default:
		g, err := NewEinoGenerator(ctx, &cfg.AI)
		if err != nil {
			return nil, fmt.Errorf("failed to create %s generator: %w", cfg.AI.Provider, err)
		}
		return g, nil
	}
}

package component

import (
	"context"
	"fmt"

	arkext "github.com/cloudwego/eino-ext/components/model/ark"
	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"

	"budgetpilot/internal/config"
)

const (
	defaultArkBaseURL = "https://ark.cn-beijing.volces.com/api/v3"
	defaultArkModel   = "doubao-seed-1-6-flash-250615"
)

// NewChatModel 创建 eino ChatModel
// 支持 openai / azure / ark；gemini 走内置执行器，不经过这里
func NewChatModel(ctx context.Context, cfg *config.AIConfig) (model.ChatModel, error) {
	switch cfg.Provider {
	case "openai":
		return openai.NewChatModel(ctx, openAIConfig(cfg, false))
	case "azure":
		return openai.NewChatModel(ctx, openAIConfig(cfg, true))
	case "ark":
		return newArkChatModel(ctx, cfg)
	default:
		return nil, fmt.Errorf("unsupported chat model provider: %q", cfg.Provider)
	}
}

func openAIConfig(cfg *config.AIConfig, azure bool) *openai.ChatModelConfig {
	modelCfg := &openai.ChatModelConfig{
		Model:   cfg.Model,
		APIKey:  cfg.APIKey,
		BaseURL: cfg.BaseURL,
		ByAzure: azure,
	}

	temperature, topP, maxTokens := sampling(cfg.Options)
	modelCfg.Temperature = temperature
	modelCfg.TopP = topP
	modelCfg.MaxTokens = maxTokens
	return modelCfg
}

func newArkChatModel(ctx context.Context, cfg *config.AIConfig) (model.ChatModel, error) {
	modelCfg := &arkext.ChatModelConfig{
		Model:   cfg.Model,
		APIKey:  cfg.APIKey,
		BaseURL: cfg.BaseURL,
	}
	if modelCfg.BaseURL == "" {
		modelCfg.BaseURL = defaultArkBaseURL
	}
	if modelCfg.Model == "" {
		modelCfg.Model = defaultArkModel
	}

	temperature, topP, maxTokens := sampling(cfg.Options)
	modelCfg.Temperature = temperature
	modelCfg.TopP = topP
	modelCfg.MaxTokens = maxTokens

	return arkext.NewChatModel(ctx, modelCfg)
}

// sampling 未设置（<=0）的参数返回 nil，交给服务端默认值
func sampling(opts config.AIOptionsConfig) (temperature, topP *float32, maxTokens *int) {
	if opts.Temperature > 0 {
		t := float32(opts.Temperature)
		temperature = &t
	}
	if opts.TopP > 0 {
		p := float32(opts.TopP)
		topP = &p
	}
	if opts.MaxTokens > 0 {
		m := opts.MaxTokens
		maxTokens = &m
	}
	return temperature, topP, maxTokens
}

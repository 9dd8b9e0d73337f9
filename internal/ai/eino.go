package ai

import (
	"context"
	"errors"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/rs/zerolog/log"

	"budgetpilot/internal/ai/component"
	"budgetpilot/internal/config"
)

// ErrEmptyCompletion 模型返回了空消息
var ErrEmptyCompletion = errors.New("chat model returned no message")

// EinoGenerator 基于 eino ChatModel 的生成后端
type EinoGenerator struct {
	model model.BaseChatModel
}

// NewEinoGenerator 创建 eino 生成后端
func NewEinoGenerator(ctx context.Context, cfg *config.AIConfig) (*EinoGenerator, error) {
	cm, err := component.NewChatModel(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return NewEinoGeneratorFromModel(cm), nil
}

// NewEinoGeneratorFromModel 包装已有 ChatModel
func NewEinoGeneratorFromModel(cm model.BaseChatModel) *EinoGenerator {
	return &EinoGenerator{model: cm}
}

// Generate 以单条 user 消息调用模型
func (g *EinoGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	msg, err := g.model.Generate(ctx, []*schema.Message{schema.UserMessage(prompt)})
	if err != nil {
		return "", err
	}
	if msg == nil {
		return "", ErrEmptyCompletion
	}
	if msg.ResponseMeta != nil && msg.ResponseMeta.Usage != nil {
		log.Debug().
			Int("prompt_tokens", msg.ResponseMeta.Usage.PromptTokens).
			Int("completion_tokens", msg.ResponseMeta.Usage.CompletionTokens).
			Msg("Chat model usage")
	}
	return msg.Content, nil
}

package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"budgetpilot/internal/ai"
	"budgetpilot/internal/ai/reply"
	"budgetpilot/internal/config"
	"budgetpilot/internal/model/chat"
	"budgetpilot/internal/pkg/ctxutil"
	"budgetpilot/internal/pkg/logger"
	"budgetpilot/internal/pkg/metrics"
	"budgetpilot/internal/pkg/ratelimit"
	"budgetpilot/internal/repository"
)

const (
	DefaultSystemPrompt = "You are BudgetPilot, a friendly financial advisor chatbot. " +
		"Analyze the user's financial data comprehensively. Provide insights, suggestions, and alerts. " +
		"Be conversational and helpful. You can respond with or without JSON - plain text is fine too."
	DefaultGreetingInstruction = "User is starting a new conversation. Greet them and ask what they need help with."
	DefaultTitle               = "Chat with BudgetPilot"
	DefaultHistoryWindow       = 15

	greetingFallback = "Hello! How can I help you today?"
	turnFallback     = "I understand. How can I assist further?"
	stepActive       = "active"

	financialDataHeader = "=== USER'S FINANCIAL DATA ==="
	historyHeader       = "=== CONVERSATION HISTORY ==="

	failureSaveTimeout = 5 * time.Second
)

// ConversationService 会话编排对外接口
type ConversationService interface {
	StartConversation(ctx context.Context, userID string) (*chat.Conversation, error)
	HandleUserMessage(ctx context.Context, conversationID, userID, text, option string) (*TurnResult, error)
	FetchConversation(ctx context.Context, conversationID, userID string) (*chat.Conversation, error)
	ListUserConversations(ctx context.Context, userID string) ([]*chat.Conversation, error)
}

var _ ConversationService = (*ChatService)(nil)

// TurnResult 一轮对话的结果
type TurnResult struct {
	AssistantMessage chat.Message
	Conversation     *chat.Conversation
}

// ChatService 会话编排
// 职责: 准入控制、归属校验、prompt 组装、调用生成后端、解析回复、持久化
type ChatService struct {
	generator ai.Generator
	convRepo  repository.ConversationRepository
	finance   ContextSupplier
	limiter   ratelimit.Limiter

	systemPrompt        string
	greetingInstruction string
	title               string
	historyWindow       int
}

// NewChatService 创建会话编排服务，cfg 中的空值使用默认值
func NewChatService(
	generator ai.Generator,
	convRepo repository.ConversationRepository,
	finance ContextSupplier,
	limiter ratelimit.Limiter,
	cfg *config.ChatConfig,
) *ChatService {
	s := &ChatService{
		generator:           generator,
		convRepo:            convRepo,
		finance:             finance,
		limiter:             limiter,
		systemPrompt:        cfg.SystemPrompt,
		greetingInstruction: cfg.GreetingInstruction,
		title:               cfg.DefaultTitle,
		historyWindow:       cfg.HistoryWindow,
	}
	if s.systemPrompt == "" {
		s.systemPrompt = DefaultSystemPrompt
	}
	if s.greetingInstruction == "" {
		s.greetingInstruction = DefaultGreetingInstruction
	}
	if s.title == "" {
		s.title = DefaultTitle
	}
	if s.historyWindow <= 0 {
		s.historyWindow = DefaultHistoryWindow
	}
	return s
}

// StartConversation 新建会话并生成问候语
// 生成失败直接返回错误，不落库
func (s *ChatService) StartConversation(ctx context.Context, userID string) (*chat.Conversation, error) {
	if !s.limiter.Allow(ctx, userID) {
		metrics.RateLimitedTotal.Inc()
		return nil, ErrRateLimitExceeded
	}

	clog := requestLogger(ctx, "chat").With().Str("user_id", userID).Logger()

	conv := chat.NewConversation(userID, s.title)
	conv.SetMeta(chat.MetaStep, chat.StepGreeting)

	text, err := s.generator.Generate(ctx, s.systemPrompt+"\n\n"+s.greetingInstruction)
	if err != nil {
		clog.Error().Err(err).Msg("Greeting generation failed")
		return nil, err
	}

	parsed := reply.Parse(text)
	metrics.ReplyParseTotal.WithLabelValues(parsed.Strategy).Inc()
	conv.Append(assistantMessage(parsed, greetingFallback))

	saved, err := s.convRepo.Save(ctx, conv)
	if err != nil {
		return nil, fmt.Errorf("save conversation: %w", err)
	}

	metrics.ConversationsStartedTotal.Inc()
	metrics.MessagesTotal.WithLabelValues(chat.RoleAssistant.String()).Inc()
	clog.Info().Str("conversation_id", saved.ID).Msg("Conversation started")
	return saved, nil
}

// HandleUserMessage 追加用户消息并生成回复
// 生成失败时追加一条说明失败的助手消息并正常返回，错误记录在 meta.last_error
func (s *ChatService) HandleUserMessage(ctx context.Context, conversationID, userID, text, option string) (*TurnResult, error) {
	if !s.limiter.Allow(ctx, userID) {
		metrics.RateLimitedTotal.Inc()
		return nil, ErrRateLimitExceeded
	}

	conv, err := s.load(ctx, conversationID, userID)
	if err != nil {
		return nil, err
	}

	userText := strings.TrimSpace(text)
	if userText == "" {
		userText = strings.TrimSpace(option)
	}
	if userText == "" {
		return nil, ErrInvalidArgument
	}

	clog := requestLogger(ctx, "chat").With().Str("user_id", userID).Str("conversation_id", conv.ID).Logger()

	userMsg := chat.Message{Role: chat.RoleUser, Text: userText}
	if strings.TrimSpace(text) == "" {
		userMsg.Metadata = map[string]any{chat.MetadataOption: option}
	}
	conv.Append(userMsg)
	metrics.MessagesTotal.WithLabelValues(chat.RoleUser.String()).Inc()

	if step, _ := conv.Meta[chat.MetaStep].(string); step == "" || step == chat.StepGreeting {
		conv.SetMeta(chat.MetaStep, stepActive)
	}

	generated, err := s.generator.Generate(ctx, s.turnPrompt(ctx, conv))
	if err != nil {
		clog.Warn().Err(err).Msg("Generation failed, appending error reply")
		return s.recordFailure(ctx, conv, err)
	}

	parsed := reply.Parse(generated)
	metrics.ReplyParseTotal.WithLabelValues(parsed.Strategy).Inc()

	conv.Append(assistantMessage(parsed, turnFallback))
	msg := conv.Messages[len(conv.Messages)-1]
	if parsed.Step != "" {
		conv.SetMeta(chat.MetaStep, parsed.Step)
	}
	conv.SetMeta(chat.MetaLastUpdated, time.Now().UTC().Format(time.RFC3339))

	saved, err := s.convRepo.Save(ctx, conv)
	if err != nil {
		return nil, fmt.Errorf("save conversation: %w", err)
	}
	metrics.MessagesTotal.WithLabelValues(chat.RoleAssistant.String()).Inc()

	clog.Info().Str("parse_strategy", parsed.Strategy).Int("messages", len(saved.Messages)).Msg("Turn completed")
	return &TurnResult{AssistantMessage: msg, Conversation: saved}, nil
}

// FetchConversation 查询会话并校验归属
func (s *ChatService) FetchConversation(ctx context.Context, conversationID, userID string) (*chat.Conversation, error) {
	return s.load(ctx, conversationID, userID)
}

// ListUserConversations 用户的会话，最近更新的在前
func (s *ChatService) ListUserConversations(ctx context.Context, userID string) ([]*chat.Conversation, error) {
	return s.convRepo.FindByUser(ctx, userID)
}

func (s *ChatService) load(ctx context.Context, conversationID, userID string) (*chat.Conversation, error) {
	conv, err := s.convRepo.FindByID(ctx, conversationID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find conversation: %w", err)
	}
	if !conv.OwnedBy(userID) {
		return nil, ErrForbidden
	}
	return conv, nil
}

// recordFailure 失败回复也要落库，调用方已断开时仍然保存
func (s *ChatService) recordFailure(ctx context.Context, conv *chat.Conversation, cause error) (*TurnResult, error) {
	kind := failureKind(cause)
	msg := chat.Message{
		Role: chat.RoleAssistant,
		Text: failureText,
		Metadata: map[string]any{
			chat.MetadataSource: chat.SourceGeneration,
			chat.MetadataError:  kind,
		},
	}
	conv.Append(msg)
	msg = conv.Messages[len(conv.Messages)-1]
	conv.SetMeta(chat.MetaLastError, redactFailure(cause))

	saveCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), failureSaveTimeout)
	defer cancel()

	saved, err := s.convRepo.Save(saveCtx, conv)
	if err != nil {
		return nil, fmt.Errorf("save conversation: %w", err)
	}
	metrics.MessagesTotal.WithLabelValues(chat.RoleAssistant.String()).Inc()
	return &TurnResult{AssistantMessage: msg, Conversation: saved}, nil
}

// turnPrompt 系统指令 + 财务摘要 + 最近 N 条消息
func (s *ChatService) turnPrompt(ctx context.Context, conv *chat.Conversation) string {
	var b strings.Builder
	b.WriteString(s.systemPrompt)
	b.WriteString("\n\n" + financialDataHeader + "\n")
	if s.finance != nil {
		b.WriteString(s.finance.Render(ctx, conv.UserID))
	} else {
		b.WriteString(noTransactionsText)
	}
	b.WriteString("\n" + historyHeader + "\n")
	for _, m := range conv.Tail(s.historyWindow) {
		b.WriteString(strings.ToUpper(m.Role.String()))
		b.WriteString(": ")
		b.WriteString(m.Text)
		b.WriteString("\n")
	}
	return b.String()
}

// requestLogger 带上请求ID的组件 logger
func requestLogger(ctx context.Context, component string) zerolog.Logger {
	lc := logger.Component(component).With()
	if requestID, ok := ctxutil.GetRequestID(ctx); ok {
		lc = lc.Str("request_id", requestID)
	}
	return lc.Logger()
}

func assistantMessage(p reply.Parsed, fallback string) chat.Message {
	text := p.DisplayText
	if strings.TrimSpace(text) == "" {
		text = fallback
	}

	metadata := map[string]any{chat.MetadataSource: chat.SourceGeneration}
	if p.Confidence != nil {
		metadata[chat.MetadataConfidence] = *p.Confidence
	}
	if p.Structured != nil {
		metadata[chat.MetadataStructured] = p.Structured
	}

	return chat.Message{
		Role:     chat.RoleAssistant,
		Text:     text,
		Options:  p.Options,
		Metadata: metadata,
	}
}

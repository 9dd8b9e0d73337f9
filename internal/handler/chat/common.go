package chat

import (
	"time"

	"budgetpilot/internal/model/chat"
	httputil "budgetpilot/internal/pkg/http"
)

// ErrorResponse 错误响应类型别名（使用共用的 http.ErrorResponse）
type ErrorResponse = httputil.ErrorResponse

// MessageInfo 消息 DTO
type MessageInfo struct {
	Role      string         `json:"role"`               // user / assistant
	Text      string         `json:"text"`               // 消息正文
	Options   []string       `json:"options,omitempty"`  // 可选快捷回复
	Metadata  map[string]any `json:"metadata,omitempty"` // 来源、置信度、结构化内容等
	Timestamp string         `json:"timestamp"`          // 消息时间
}

// ConversationInfo 会话 DTO
type ConversationInfo struct {
	ID        string         `json:"id"`
	UserID    string         `json:"user_id"`
	Title     string         `json:"title"`
	Messages  []MessageInfo  `json:"messages"`
	Meta      map[string]any `json:"meta,omitempty"`
	CreatedAt string         `json:"created_at"`
	UpdatedAt string         `json:"updated_at"`
}

func toMessageInfo(m chat.Message) MessageInfo {
	return MessageInfo{
		Role:      m.Role.String(),
		Text:      m.Text,
		Options:   m.Options,
		Metadata:  m.Metadata,
		Timestamp: m.Timestamp.Format(time.RFC3339),
	}
}

func toConversationInfo(conv *chat.Conversation) ConversationInfo {
	messages := make([]MessageInfo, len(conv.Messages))
	for i, m := range conv.Messages {
		messages[i] = toMessageInfo(m)
	}
	return ConversationInfo{
		ID:        conv.ID,
		UserID:    conv.UserID,
		Title:     conv.Title,
		Messages:  messages,
		Meta:      conv.Meta,
		CreatedAt: conv.CreatedAt.Format(time.RFC3339),
		UpdatedAt: conv.UpdatedAt.Format(time.RFC3339),
	}
}

func toConversationInfoList(convs []*chat.Conversation) []ConversationInfo {
	result := make([]ConversationInfo, len(convs))
	for i, conv := range convs {
		result[i] = toConversationInfo(conv)
	}
	return result
}

// ConversationRequest 路径参数
type ConversationRequest struct {
	ConversationID string `uri:"conversation_id" binding:"required"` // 会话ID（必填）
}

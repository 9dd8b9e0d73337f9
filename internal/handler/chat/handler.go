package chat

import (
	"budgetpilot/internal/service"
)

// Handler 对话处理器
// 所有 chat 相关的 Handler 方法都通过这个结构体访问 Service
type Handler struct {
	chatService service.ConversationService
}

// NewHandler 创建对话处理器
func NewHandler(chatService service.ConversationService) *Handler {
	return &Handler{
		chatService: chatService,
	}
}

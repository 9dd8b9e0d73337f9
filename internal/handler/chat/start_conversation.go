package chat

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"budgetpilot/internal/handler"
	httputil "budgetpilot/internal/pkg/http"
)

// StartConversationResponseData 新建会话响应数据
type StartConversationResponseData struct {
	ConversationID   string           `json:"conversation_id"`
	AssistantMessage MessageInfo      `json:"assistant_message"` // 问候语
	Conversation     ConversationInfo `json:"conversation"`
}

// StartConversation 新建会话
// @Summary      新建会话
// @Description  为当前用户创建会话并生成问候语，生成失败时不创建会话
// @Tags         对话
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  map[string]interface{}  "成功响应"  "{\"code\": 0, \"message\": \"success\", \"data\": {\"conversation_id\": \"...\"}}"
// @Failure      401  {object}  ErrorResponse  "未授权"
// @Failure      429  {object}  ErrorResponse  "请求过于频繁"
// @Failure      503  {object}  ErrorResponse  "生成服务未配置凭证"
// @Failure      500  {object}  ErrorResponse  "服务器内部错误"
// @Router       /api/v1/chat/start [post]
func (h *Handler) StartConversation(c *gin.Context) {
	userID, ok := handler.CurrentUser(c)
	if !ok {
		return
	}

	conv, err := h.chatService.StartConversation(c.Request.Context(), userID)
	if err != nil {
		handler.WriteError(c, err)
		return
	}

	info := toConversationInfo(conv)
	var greeting MessageInfo
	if n := len(info.Messages); n > 0 {
		greeting = info.Messages[n-1]
	}

	c.JSON(http.StatusOK, httputil.OK(StartConversationResponseData{
		ConversationID:   conv.ID,
		AssistantMessage: greeting,
		Conversation:     info,
	}))
}

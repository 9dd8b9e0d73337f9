package chat

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"budgetpilot/internal/handler"
	httputil "budgetpilot/internal/pkg/http"
)

// SendMessageRequest 发送消息请求，text 与 option 至少提供一个
type SendMessageRequest struct {
	Text   string `json:"text"`   // 用户输入
	Option string `json:"option"` // 点选的快捷回复
}

// SendMessageResponseData 发送消息响应数据
type SendMessageResponseData struct {
	AssistantMessage MessageInfo      `json:"assistant_message"`
	Conversation     ConversationInfo `json:"conversation"`
}

// SendMessage 发送消息
// @Summary      发送消息
// @Description  追加用户消息并生成助手回复；生成失败时返回一条说明失败的助手消息
// @Tags         对话
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        conversation_id  path      string              true  "会话ID"
// @Param        request          body      SendMessageRequest  true  "消息内容"
// @Success      200              {object}  map[string]interface{}  "成功响应"  "{\"code\": 0, \"message\": \"success\", \"data\": {\"assistant_message\": {...}}}"
// @Failure      400              {object}  ErrorResponse  "请求参数错误"
// @Failure      403              {object}  ErrorResponse  "无权访问"
// @Failure      404              {object}  ErrorResponse  "会话不存在"
// @Failure      429              {object}  ErrorResponse  "请求过于频繁"
// @Failure      500              {object}  ErrorResponse  "服务器内部错误"
// @Router       /api/v1/chat/{conversation_id}/message [post]
func (h *Handler) SendMessage(c *gin.Context) {
	var uri ConversationRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Code:    40001,
			Message: "Invalid conversation_id",
			Detail:  err.Error(),
		})
		return
	}

	var req SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Code:    40001,
			Message: "Invalid request body",
			Detail:  err.Error(),
		})
		return
	}

	userID, ok := handler.CurrentUser(c)
	if !ok {
		return
	}

	result, err := h.chatService.HandleUserMessage(c.Request.Context(), uri.ConversationID, userID, req.Text, req.Option)
	if err != nil {
		handler.WriteError(c, err)
		return
	}

	c.JSON(http.StatusOK, httputil.OK(SendMessageResponseData{
		AssistantMessage: toMessageInfo(result.AssistantMessage),
		Conversation:     toConversationInfo(result.Conversation),
	}))
}

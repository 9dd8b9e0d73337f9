package chat

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"budgetpilot/internal/handler"
	httputil "budgetpilot/internal/pkg/http"
)

// GetConversationResponseData 查询会话响应数据
type GetConversationResponseData struct {
	Conversation ConversationInfo `json:"conversation"`
}

// GetConversation 查询会话
// @Summary      查询会话
// @Description  根据会话ID获取完整消息记录，只能查询自己的会话
// @Tags         对话
// @Produce      json
// @Security     BearerAuth
// @Param        conversation_id  path      string  true  "会话ID"
// @Success      200              {object}  map[string]interface{}  "成功响应"  "{\"code\": 0, \"message\": \"success\", \"data\": {\"conversation\": {...}}}"
// @Failure      400              {object}  ErrorResponse  "请求参数错误"
// @Failure      403              {object}  ErrorResponse  "无权访问"
// @Failure      404              {object}  ErrorResponse  "会话不存在"
// @Failure      500              {object}  ErrorResponse  "服务器内部错误"
// @Router       /api/v1/chat/{conversation_id} [get]
func (h *Handler) GetConversation(c *gin.Context) {
	var req ConversationRequest
	if err := c.ShouldBindUri(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Code:    40001,
			Message: "Invalid conversation_id",
			Detail:  err.Error(),
		})
		return
	}

	userID, ok := handler.CurrentUser(c)
	if !ok {
		return
	}

	conv, err := h.chatService.FetchConversation(c.Request.Context(), req.ConversationID, userID)
	if err != nil {
		handler.WriteError(c, err)
		return
	}

	c.JSON(http.StatusOK, httputil.OK(GetConversationResponseData{
		Conversation: toConversationInfo(conv),
	}))
}

package chat

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"budgetpilot/internal/handler"
	httputil "budgetpilot/internal/pkg/http"
)

// ListConversationsResponseData 会话列表响应数据
type ListConversationsResponseData struct {
	Conversations []ConversationInfo `json:"conversations"`
	Total         int                `json:"total"`
}

// ListConversations 当前用户的会话列表
// @Summary      会话列表
// @Description  列出当前用户的全部会话，最近更新的在前
// @Tags         对话
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  map[string]interface{}  "成功响应"  "{\"code\": 0, \"message\": \"success\", \"data\": {\"conversations\": [...], \"total\": 1}}"
// @Failure      401  {object}  ErrorResponse  "未授权"
// @Failure      500  {object}  ErrorResponse  "服务器内部错误"
// @Router       /api/v1/chat [get]
func (h *Handler) ListConversations(c *gin.Context) {
	userID, ok := handler.CurrentUser(c)
	if !ok {
		return
	}

	convs, err := h.chatService.ListUserConversations(c.Request.Context(), userID)
	if err != nil {
		handler.WriteError(c, err)
		return
	}

	c.JSON(http.StatusOK, httputil.OK(ListConversationsResponseData{
		Conversations: toConversationInfoList(convs),
		Total:         len(convs),
	}))
}

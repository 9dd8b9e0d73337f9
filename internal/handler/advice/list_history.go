package advice

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"budgetpilot/internal/handler"
	httputil "budgetpilot/internal/pkg/http"
)

// ListHistoryResponseData 建议历史响应数据
type ListHistoryResponseData struct {
	History []AdviceInfo `json:"history"`
	Total   int          `json:"total"`
}

// ListHistory 建议历史
// @Summary      建议历史
// @Description  当前用户的建议历史，最新的在前
// @Tags         理财建议
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  map[string]interface{}  "成功响应"  "{\"code\": 0, \"message\": \"success\", \"data\": {\"history\": [...], \"total\": 1}}"
// @Failure      401  {object}  ErrorResponse  "未授权"
// @Failure      500  {object}  ErrorResponse  "服务器内部错误"
// @Router       /api/v1/ai/history [get]
func (h *Handler) ListHistory(c *gin.Context) {
	userID, ok := handler.CurrentUser(c)
	if !ok {
		return
	}

	list, err := h.adviceService.ListHistory(c.Request.Context(), userID)
	if err != nil {
		handler.WriteError(c, err)
		return
	}

	c.JSON(http.StatusOK, httputil.OK(ListHistoryResponseData{
		History: toAdviceInfoList(list),
		Total:   len(list),
	}))
}

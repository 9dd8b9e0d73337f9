package advice

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"budgetpilot/internal/handler"
	httputil "budgetpilot/internal/pkg/http"
)

// GetHistoryEntryResponseData 单条建议响应数据
type GetHistoryEntryResponseData struct {
	Advice AdviceInfo `json:"advice"`
}

// GetHistoryEntry 查询单条建议
// @Summary      查询单条建议
// @Description  只能查询自己的建议记录
// @Tags         理财建议
// @Produce      json
// @Security     BearerAuth
// @Param        history_id  path      string  true  "历史记录ID"
// @Success      200         {object}  map[string]interface{}  "成功响应"  "{\"code\": 0, \"message\": \"success\", \"data\": {\"advice\": {...}}}"
// @Failure      403         {object}  ErrorResponse  "无权访问"
// @Failure      404         {object}  ErrorResponse  "记录不存在"
// @Failure      500         {object}  ErrorResponse  "服务器内部错误"
// @Router       /api/v1/ai/history/{history_id} [get]
func (h *Handler) GetHistoryEntry(c *gin.Context) {
	var req HistoryRequest
	if err := c.ShouldBindUri(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Code:    40001,
			Message: "Invalid history_id",
			Detail:  err.Error(),
		})
		return
	}

	userID, ok := handler.CurrentUser(c)
	if !ok {
		return
	}

	entry, err := h.adviceService.GetHistoryEntry(c.Request.Context(), req.HistoryID, userID)
	if err != nil {
		handler.WriteError(c, err)
		return
	}

	c.JSON(http.StatusOK, httputil.OK(GetHistoryEntryResponseData{
		Advice: toAdviceInfo(entry),
	}))
}

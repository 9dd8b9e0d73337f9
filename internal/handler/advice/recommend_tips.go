package advice

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"budgetpilot/internal/handler"
	httputil "budgetpilot/internal/pkg/http"
)

// RecommendTipsResponseData 规则建议响应数据
type RecommendTipsResponseData struct {
	Tips []string `json:"tips"`
}

// RecommendTips 规则建议
// @Summary      规则建议
// @Description  根据最近的支出结构给出 4 到 6 条固定规则建议，不调用生成服务
// @Tags         理财建议
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  map[string]interface{}  "成功响应"  "{\"code\": 0, \"message\": \"success\", \"data\": {\"tips\": [...]}}"
// @Failure      401  {object}  ErrorResponse  "未授权"
// @Failure      500  {object}  ErrorResponse  "服务器内部错误"
// @Router       /api/v1/ai/tips [get]
func (h *Handler) RecommendTips(c *gin.Context) {
	userID, ok := handler.CurrentUser(c)
	if !ok {
		return
	}

	tips, err := h.adviceService.RecommendTips(c.Request.Context(), userID)
	if err != nil {
		handler.WriteError(c, err)
		return
	}

	c.JSON(http.StatusOK, httputil.OK(RecommendTipsResponseData{Tips: tips}))
}

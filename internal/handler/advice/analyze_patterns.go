package advice

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"budgetpilot/internal/handler"
	httputil "budgetpilot/internal/pkg/http"
	"budgetpilot/internal/service"
)

// CategoryInfo 分类支出
type CategoryInfo struct {
	Name   string  `json:"name"`
	Amount float64 `json:"amount"`
	Share  float64 `json:"share"` // 百分比
}

// AnalyzePatternsResponseData 支出模式响应数据
type AnalyzePatternsResponseData struct {
	TotalExpense    float64        `json:"total_expense"`
	Categories      []CategoryInfo `json:"categories"`
	Patterns        []string       `json:"patterns"`
	Recommendations []string       `json:"recommendations"`
}

func toAnalyzePatternsData(a *service.PatternAnalysis) AnalyzePatternsResponseData {
	categories := make([]CategoryInfo, len(a.Categories))
	for i, c := range a.Categories {
		categories[i] = CategoryInfo{Name: c.Name, Amount: c.Amount, Share: c.Share}
	}
	return AnalyzePatternsResponseData{
		TotalExpense:    a.TotalExpense,
		Categories:      categories,
		Patterns:        nonNil(a.Patterns),
		Recommendations: nonNil(a.Recommendations),
	}
}

// AnalyzePatterns 支出模式分析
// @Summary      支出模式分析
// @Description  统计窗口内的分类支出，并由生成服务总结模式与建议
// @Tags         理财建议
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  map[string]interface{}  "成功响应"  "{\"code\": 0, \"message\": \"success\", \"data\": {\"categories\": [...]}}"
// @Failure      401  {object}  ErrorResponse  "未授权"
// @Failure      429  {object}  ErrorResponse  "请求过于频繁"
// @Failure      503  {object}  ErrorResponse  "生成服务已关闭或未配置"
// @Failure      500  {object}  ErrorResponse  "服务器内部错误"
// @Router       /api/v1/ai/patterns [get]
func (h *Handler) AnalyzePatterns(c *gin.Context) {
	userID, ok := handler.CurrentUser(c)
	if !ok {
		return
	}

	analysis, err := h.adviceService.AnalyzeSpendingPatterns(c.Request.Context(), userID)
	if err != nil {
		handler.WriteError(c, err)
		return
	}

	c.JSON(http.StatusOK, httputil.OK(toAnalyzePatternsData(analysis)))
}

package advice

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"budgetpilot/internal/handler"
	httputil "budgetpilot/internal/pkg/http"
	"budgetpilot/internal/service"
)

// MonthInfo 月度支出
type MonthInfo struct {
	Month   string  `json:"month"` // YYYY-MM
	Expense float64 `json:"expense"`
}

// PredictSavingsResponseData 储蓄预测响应数据
type PredictSavingsResponseData struct {
	MonthlyTotals    []MonthInfo `json:"monthly_totals"`
	EstimatedSavings float64     `json:"estimated_savings"`
	Actions          []string    `json:"actions"`
	ConfidenceScore  int         `json:"confidence_score"`
}

func toPredictSavingsData(p *service.SavingsPrediction) PredictSavingsResponseData {
	months := make([]MonthInfo, len(p.MonthlyTotals))
	for i, m := range p.MonthlyTotals {
		months[i] = MonthInfo{Month: m.Month, Expense: m.Expense}
	}
	return PredictSavingsResponseData{
		MonthlyTotals:    months,
		EstimatedSavings: p.EstimatedSavings,
		Actions:          nonNil(p.Actions),
		ConfidenceScore:  p.ConfidenceScore,
	}
}

// PredictSavings 储蓄预测
// @Summary      储蓄预测
// @Description  按月汇总支出，由生成服务预测下月可节省金额
// @Tags         理财建议
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  map[string]interface{}  "成功响应"  "{\"code\": 0, \"message\": \"success\", \"data\": {\"estimated_savings\": 0}}"
// @Failure      401  {object}  ErrorResponse  "未授权"
// @Failure      429  {object}  ErrorResponse  "请求过于频繁"
// @Failure      503  {object}  ErrorResponse  "生成服务已关闭或未配置"
// @Failure      500  {object}  ErrorResponse  "服务器内部错误"
// @Router       /api/v1/ai/savings [get]
func (h *Handler) PredictSavings(c *gin.Context) {
	userID, ok := handler.CurrentUser(c)
	if !ok {
		return
	}

	prediction, err := h.adviceService.PredictSavings(c.Request.Context(), userID)
	if err != nil {
		handler.WriteError(c, err)
		return
	}

	c.JSON(http.StatusOK, httputil.OK(toPredictSavingsData(prediction)))
}

package advice

import (
	"time"

	"budgetpilot/internal/model/advice"
	httputil "budgetpilot/internal/pkg/http"
)

// ErrorResponse 错误响应类型别名（使用共用的 http.ErrorResponse）
type ErrorResponse = httputil.ErrorResponse

// AdviceInfo 建议 DTO
type AdviceInfo struct {
	ID                        string   `json:"id,omitempty"` // 未保存时为空
	Scope                     string   `json:"scope"`
	Source                    string   `json:"source"` // ai / rule-based / fallback / none
	Summary                   string   `json:"summary"`
	Actions                   []string `json:"actions"`
	EstimatedSavingsNextMonth float64  `json:"estimated_savings_next_month"`
	ConfidenceScore           int      `json:"confidence_score"`
	Citations                 []string `json:"citations"`
	CreatedAt                 string   `json:"created_at"`
}

func toAdviceInfo(h *advice.History) AdviceInfo {
	return AdviceInfo{
		ID:                        h.ID,
		Scope:                     string(h.Scope),
		Source:                    string(h.Source),
		Summary:                   h.Summary,
		Actions:                   nonNil(h.Actions),
		EstimatedSavingsNextMonth: h.EstimatedSavingsNextMonth,
		ConfidenceScore:           h.ConfidenceScore,
		Citations:                 nonNil(h.Citations),
		CreatedAt:                 h.CreatedAt.Format(time.RFC3339),
	}
}

func toAdviceInfoList(list []*advice.History) []AdviceInfo {
	result := make([]AdviceInfo, len(list))
	for i, h := range list {
		result[i] = toAdviceInfo(h)
	}
	return result
}

// nonNil JSON 中输出 [] 而不是 null
func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// HistoryRequest 路径参数
type HistoryRequest struct {
	HistoryID string `uri:"history_id" binding:"required"` // 历史记录ID（必填）
}

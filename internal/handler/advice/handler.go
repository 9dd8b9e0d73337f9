package advice

import (
	"budgetpilot/internal/service"
)

// Handler 理财建议处理器
type Handler struct {
	adviceService service.AdviceProvider
}

// NewHandler 创建理财建议处理器
func NewHandler(adviceService service.AdviceProvider) *Handler {
	return &Handler{
		adviceService: adviceService,
	}
}

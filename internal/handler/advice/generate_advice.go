package advice

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"budgetpilot/internal/handler"
	httputil "budgetpilot/internal/pkg/http"
)

// GenerateAdviceRequest 生成建议请求，请求体可省略
type GenerateAdviceRequest struct {
	Scope string `json:"scope"` // monthly（默认）/ yearly / detailed
}

// GenerateAdviceResponseData 生成建议响应数据
type GenerateAdviceResponseData struct {
	Advice AdviceInfo `json:"advice"`
}

// GenerateAdvice 生成理财建议
// @Summary      生成理财建议
// @Description  根据统计窗口内的交易生成建议并保存到历史；生成服务关闭或失败时返回规则建议
// @Tags         理财建议
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request  body      GenerateAdviceRequest  false  "统计范围"
// @Success      200      {object}  map[string]interface{}  "成功响应"  "{\"code\": 0, \"message\": \"success\", \"data\": {\"advice\": {...}}}"
// @Failure      400      {object}  ErrorResponse  "请求参数错误"
// @Failure      401      {object}  ErrorResponse  "未授权"
// @Failure      429      {object}  ErrorResponse  "请求过于频繁"
// @Failure      500      {object}  ErrorResponse  "服务器内部错误"
// @Router       /api/v1/ai/advice [post]
func (h *Handler) GenerateAdvice(c *gin.Context) {
	var req GenerateAdviceRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
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

	result, err := h.adviceService.GenerateAdvice(c.Request.Context(), userID, req.Scope)
	if err != nil {
		handler.WriteError(c, err)
		return
	}

	c.JSON(http.StatusOK, httputil.OK(GenerateAdviceResponseData{
		Advice: toAdviceInfo(result),
	}))
}

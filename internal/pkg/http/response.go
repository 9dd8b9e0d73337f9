package http

// ErrorResponse 错误响应（所有API共用）
type ErrorResponse struct {
	Code    int    `json:"code"`             // 业务错误码（非0表示错误）
	Message string `json:"message"`          // 错误消息
	Detail  string `json:"detail,omitempty"` // 错误详情（可选）
}

// SuccessResponse 成功响应（所有API共用）
type SuccessResponse struct {
	Code    int    `json:"code"`           // 0
	Message string `json:"message"`        // success
	Data    any    `json:"data,omitempty"` // 响应数据
}

// OK 包装成功响应
func OK(data any) *SuccessResponse {
	return &SuccessResponse{
		Code:    0,
		Message: "success",
		Data:    data,
	}
}

// Package status 定义管理类接口的业务状态码
package status

import "net/http"

// StatusCode 业务状态码，0 表示成功
type StatusCode int

const (
	// CodeOK 成功
	CodeOK StatusCode = 0

	// ErrCodeInvalidParam 参数错误
	ErrCodeInvalidParam StatusCode = 1001
	// ErrCodeInternal 内部错误
	ErrCodeInternal StatusCode = 1002
	// ErrCodeUnavailable 功能未启用或服务不可用
	ErrCodeUnavailable StatusCode = 1003
	// ErrCodePayloadTooLarge 请求体超过限制
	ErrCodePayloadTooLarge StatusCode = 1005
)

// String 将状态码转换为字符串标识
func (c StatusCode) String() string {
	switch c {
	case CodeOK:
		return "OK"
	case ErrCodeInvalidParam:
		return "INVALID_PARAM"
	case ErrCodeInternal:
		return "INTERNAL_ERROR"
	case ErrCodeUnavailable:
		return "UNAVAILABLE"
	case ErrCodePayloadTooLarge:
		return "PAYLOAD_TOO_LARGE"
	default:
		return "UNKNOWN"
	}
}

// HTTPStatus 状态码对应的 HTTP 状态
func (c StatusCode) HTTPStatus() int {
	switch c {
	case CodeOK:
		return http.StatusOK
	case ErrCodeInvalidParam:
		return http.StatusUnprocessableEntity
	case ErrCodeUnavailable:
		return http.StatusServiceUnavailable
	case ErrCodePayloadTooLarge:
		return http.StatusRequestEntityTooLarge
	default:
		return http.StatusInternalServerError
	}
}

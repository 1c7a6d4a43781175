package common

import (
	"github.com/gin-gonic/gin"
)

// APIResponse standard gateway response envelope
type APIResponse struct {
	Data  interface{} `json:"data"`
	Error *ErrorInfo  `json:"error,omitempty"`
}

// ErrorInfo error details
type ErrorInfo struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Details   string `json:"details,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

// ErrorResponse writes an error envelope and aborts the chain
func ErrorResponse(c *gin.Context, status int, message string, err error) {
	errInfo := &ErrorInfo{
		Code:      getErrorCode(status),
		Message:   message,
		RequestID: c.GetString("request_id"),
	}
	if err != nil && status >= 500 {
		errInfo.Details = err.Error()
	}

	c.AbortWithStatusJSON(status, APIResponse{Error: errInfo})
}

// getErrorCode generates error code from HTTP status
func getErrorCode(status int) string {
	switch status {
	case 400:
		return "BAD_REQUEST"
	case 401:
		return "UNAUTHORIZED"
	case 403:
		return "FORBIDDEN"
	case 404:
		return "NOT_FOUND"
	case 409:
		return "CONFLICT"
	case 429:
		return "RATE_LIMITED"
	case 500:
		return "INTERNAL_SERVER_ERROR"
	case 502:
		return "BAD_GATEWAY"
	case 504:
		return "GATEWAY_TIMEOUT"
	default:
		return "ERROR"
	}
}

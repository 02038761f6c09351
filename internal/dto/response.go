package dto

import (
	"fmt"
	"strings"

	res "lecture-terrace/live-qa/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// statusOf 业务错误码到 HTTP 状态码的映射
func statusOf(code res.ResponseCode) int {
	switch code {
	case res.Unauthorized:
		return 401
	case res.Forbidden:
		return 403
	case res.NotFound:
		return 404
	case res.RateLimited:
		return 429
	case res.Infrastructure:
		return 503
	case res.ParseError, res.InvalidParameter, res.PolicyViolation:
		return 400
	default:
		return 500
	}
}

func SuccessResponse(c *gin.Context, data any) {
	c.JSON(200, res.SuccessResponse(data))
}

func ErrorResponse(c *gin.Context, err *res.BusinessError) {
	c.JSON(statusOf(err.Code), res.ErrorResponse(err.Code, err.Msg))
}

// ValidationErrorResponse 处理绑定验证错误，返回友好的JSON字段名
func ValidationErrorResponse(c *gin.Context, err error) {
	// 尝试转换为 validator.ValidationErrors
	if validationErrs, ok := err.(validator.ValidationErrors); ok {
		// 取第一个错误
		if len(validationErrs) > 0 {
			firstErr := validationErrs[0]
			jsonField := toSnakeCase(firstErr.Field())

			var message string
			switch firstErr.Tag() {
			case "required":
				message = fmt.Sprintf("field '%s' is required", jsonField)
			case "max":
				message = fmt.Sprintf("field '%s' must be at most %s characters", jsonField, firstErr.Param())
			case "min":
				message = fmt.Sprintf("field '%s' must be at least %s characters", jsonField, firstErr.Param())
			case "oneof":
				message = fmt.Sprintf("field '%s' must be one of: %s", jsonField, firstErr.Param())
			default:
				message = fmt.Sprintf("field '%s' failed validation: %s", jsonField, firstErr.Tag())
			}

			ErrorResponse(c, res.NewBusinessError(
				res.WithErrorCode(res.ParseError),
				res.WithErrorMessage(message),
			))
			return
		}
	}

	// 非 validation 错误，返回原始错误消息
	ErrorResponse(c, res.NewBusinessError(
		res.WithErrorCode(res.ParseError),
		res.WithErrorMessage("invalid request: "+err.Error()),
	))
}

// toSnakeCase 将PascalCase转换为snake_case
func toSnakeCase(s string) string {
	var result strings.Builder
	for i, r := range s {
		if i > 0 && r >= 'A' && r <= 'Z' {
			result.WriteRune('_')
		}
		result.WriteRune(r)
	}
	return strings.ToLower(result.String())
}

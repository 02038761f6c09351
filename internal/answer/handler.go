package answer

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"lecture-terrace/live-qa/internal/dto"
	"lecture-terrace/live-qa/internal/session"
	res "lecture-terrace/live-qa/pkg/response"
)

// AnswerHandler 回答处理器
type AnswerHandler struct {
	service AnswerService
}

// NewAnswerHandler 创建处理器实例
func NewAnswerHandler(service AnswerService) *AnswerHandler {
	return &AnswerHandler{
		service: service,
	}
}

// currentUser 从认证中间件注入的上下文取用户身份
func currentUser(c *gin.Context) (uint, string) {
	userID, _ := c.Get("user_id")
	role, _ := c.Get("user_role")
	uid, _ := userID.(uint)
	r, _ := role.(string)
	return uid, r
}

// parseIDParam 解析路径中的数字ID
func parseIDParam(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil {
		dto.ErrorResponse(c, res.NewBusinessError(
			res.WithErrorCode(res.ParseError),
			res.WithErrorMessage("Invalid "+name),
		))
		return 0, false
	}
	return uint(id), true
}

// SubmitAnswer 提交回答
// POST /api/questions/:id/answers
func (h *AnswerHandler) SubmitAnswer(c *gin.Context) {
	// 1. 获取提问ID
	questionID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	// 2. 获取当前用户
	userID, _ := currentUser(c)

	// 3. 绑定请求参数
	var req SubmitAnswerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.ValidationErrorResponse(c, err)
		return
	}

	// 4. 调用服务层
	result, err := h.service.SubmitAnswer(questionID, userID, &req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	// 5. 返回成功响应
	dto.SuccessResponse(c, result)
}

// ListAnswers 列出提问的全部回答
// GET /api/questions/:id/answers
func (h *AnswerHandler) ListAnswers(c *gin.Context) {
	questionID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	result, err := h.service.ListAnswers(questionID)
	if err != nil {
		h.handleError(c, err)
		return
	}

	dto.SuccessResponse(c, result)
}

// AcceptAnswer 采纳回答
// PATCH /api/answers/:id/accept
func (h *AnswerHandler) AcceptAnswer(c *gin.Context) {
	answerID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	userID, role := currentUser(c)

	result, err := h.service.AcceptAnswer(answerID, userID, role)
	if err != nil {
		h.handleError(c, err)
		return
	}

	dto.SuccessResponse(c, result)
}

// handleError 统一错误处理
func (h *AnswerHandler) handleError(c *gin.Context, err error) {
	// 服务层的限流/基础设施错误直接带着业务码
	var businessErr *res.BusinessError
	if errors.As(err, &businessErr) {
		dto.ErrorResponse(c, businessErr)
		return
	}

	switch {
	case errors.Is(err, ErrQuestionNotFound), errors.Is(err, ErrAnswerNotFound), errors.Is(err, gorm.ErrRecordNotFound):
		dto.ErrorResponse(c, res.NewBusinessError(
			res.WithErrorCode(res.NotFound),
			res.WithErrorMessage(err.Error()),
		))
	case errors.Is(err, ErrAnswerContentEmpty), errors.Is(err, ErrAnswerContentTooLong):
		dto.ErrorResponse(c, res.NewBusinessError(
			res.WithErrorCode(res.InvalidParameter),
			res.WithErrorMessage(err.Error()),
		))
	case errors.Is(err, session.ErrAnswerInEndedSession),
		errors.Is(err, session.ErrAcceptInEndedSession),
		errors.Is(err, session.ErrSessionNotStarted):
		dto.ErrorResponse(c, res.NewBusinessError(
			res.WithErrorCode(res.PolicyViolation),
			res.WithErrorMessage(err.Error()),
		))
	case errors.Is(err, ErrAcceptForbidden):
		dto.ErrorResponse(c, res.NewBusinessError(
			res.WithErrorCode(res.Forbidden),
			res.WithErrorMessage(err.Error()),
		))
	default:
		dto.ErrorResponse(c, res.NewBusinessError(
			res.WithErrorCode(res.Fail),
			res.WithErrorMessage("Internal server error"),
			res.WithError(err),
		))
	}
}

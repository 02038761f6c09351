package question

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"lecture-terrace/live-qa/internal/dto"
	"lecture-terrace/live-qa/internal/session"
	res "lecture-terrace/live-qa/pkg/response"
)

// QuestionHandler 提问处理器
type QuestionHandler struct {
	service QuestionService
}

// NewQuestionHandler 创建处理器实例
func NewQuestionHandler(service QuestionService) *QuestionHandler {
	return &QuestionHandler{
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

// CreateQuestion 创建提问
// POST /api/sessions/:id/questions
func (h *QuestionHandler) CreateQuestion(c *gin.Context) {
	// 1. 获取会话ID
	sessionID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	// 2. 获取当前用户
	userID, _ := currentUser(c)

	// 3. 绑定请求参数
	var req CreateQuestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.ValidationErrorResponse(c, err)
		return
	}

	// 4. 调用服务层
	result, err := h.service.CreateQuestion(sessionID, userID, &req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	// 5. 返回成功响应
	dto.SuccessResponse(c, result)
}

// ListSessionQuestions 列出会话提问
// GET /api/sessions/:id/questions
func (h *QuestionHandler) ListSessionQuestions(c *gin.Context) {
	sessionID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	userID, role := currentUser(c)

	result, err := h.service.ListSessionQuestions(sessionID, userID, role)
	if err != nil {
		h.handleError(c, err)
		return
	}

	dto.SuccessResponse(c, result)
}

// ResolveQuestion 标记提问已解决
// PATCH /api/questions/:id/resolve
func (h *QuestionHandler) ResolveQuestion(c *gin.Context) {
	questionID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	userID, role := currentUser(c)

	result, err := h.service.ResolveQuestion(questionID, userID, role)
	if err != nil {
		h.handleError(c, err)
		return
	}

	dto.SuccessResponse(c, result)
}

// handleError 统一错误处理
func (h *QuestionHandler) handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrQuestionNotFound), errors.Is(err, ErrSessionNotFound), errors.Is(err, gorm.ErrRecordNotFound):
		dto.ErrorResponse(c, res.NewBusinessError(
			res.WithErrorCode(res.NotFound),
			res.WithErrorMessage(err.Error()),
		))
	case errors.Is(err, ErrQuestionContentEmpty),
		errors.Is(err, ErrQuestionContentTooLong),
		errors.Is(err, ErrSlideNotInSession):
		dto.ErrorResponse(c, res.NewBusinessError(
			res.WithErrorCode(res.InvalidParameter),
			res.WithErrorMessage(err.Error()),
		))
	case errors.Is(err, session.ErrAskInEndedSession),
		errors.Is(err, session.ErrResolveInEndedSession),
		errors.Is(err, session.ErrSessionNotStarted),
		errors.Is(err, session.ErrSubmissionsDisabled),
		errors.Is(err, ErrQuestionAlreadyResolved):
		dto.ErrorResponse(c, res.NewBusinessError(
			res.WithErrorCode(res.PolicyViolation),
			res.WithErrorMessage(err.Error()),
		))
	case errors.Is(err, ErrResolveForbidden):
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

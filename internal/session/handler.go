package session

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"lecture-terrace/live-qa/internal/dto"
	res "lecture-terrace/live-qa/pkg/response"
)

// SessionHandler 会话处理器
type SessionHandler struct {
	service SessionService
}

// NewSessionHandler 创建处理器实例
func NewSessionHandler(service SessionService) *SessionHandler {
	return &SessionHandler{
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

// CreateSession 创建会话
// POST /api/sessions
func (h *SessionHandler) CreateSession(c *gin.Context) {
	// 1. 获取当前用户
	userID, role := currentUser(c)

	// 2. 绑定请求参数
	var req CreateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.ValidationErrorResponse(c, err)
		return
	}

	// 3. 调用服务层
	result, err := h.service.CreateSession(userID, role, &req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	// 4. 返回成功响应
	dto.SuccessResponse(c, result)
}

// GetSession 获取会话
// GET /api/sessions/:id
func (h *SessionHandler) GetSession(c *gin.Context) {
	sessionID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	result, err := h.service.GetSession(sessionID)
	if err != nil {
		h.handleError(c, err)
		return
	}

	dto.SuccessResponse(c, result)
}

// GetSessionByJoinCode 按加入码获取会话
// GET /api/sessions/join/:code
func (h *SessionHandler) GetSessionByJoinCode(c *gin.Context) {
	code := c.Param("code")

	result, err := h.service.GetSessionByJoinCode(code)
	if err != nil {
		h.handleError(c, err)
		return
	}

	dto.SuccessResponse(c, result)
}

// SetStatus 会话状态流转
// PATCH /api/sessions/:id/status
func (h *SessionHandler) SetStatus(c *gin.Context) {
	sessionID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	userID, role := currentUser(c)

	var req SetStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.ValidationErrorResponse(c, err)
		return
	}

	result, err := h.service.SetStatus(sessionID, userID, role, &req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	dto.SuccessResponse(c, result)
}

// SetSubmissions 切换提问开关
// PATCH /api/sessions/:id/submissions
func (h *SessionHandler) SetSubmissions(c *gin.Context) {
	sessionID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	userID, role := currentUser(c)

	var req SetSubmissionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.ValidationErrorResponse(c, err)
		return
	}

	result, err := h.service.SetSubmissionsEnabled(sessionID, userID, role, &req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	dto.SuccessResponse(c, result)
}

// AddSlide 添加幻灯片
// POST /api/sessions/:id/slides
func (h *SessionHandler) AddSlide(c *gin.Context) {
	sessionID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	userID, role := currentUser(c)

	var req CreateSlideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.ValidationErrorResponse(c, err)
		return
	}

	result, err := h.service.AddSlide(sessionID, userID, role, &req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	dto.SuccessResponse(c, result)
}

// ListSlides 列出会话幻灯片
// GET /api/sessions/:id/slides
func (h *SessionHandler) ListSlides(c *gin.Context) {
	sessionID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	result, err := h.service.ListSlides(sessionID)
	if err != nil {
		h.handleError(c, err)
		return
	}

	dto.SuccessResponse(c, result)
}

// handleError 统一错误处理
func (h *SessionHandler) handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrSessionNotFound), errors.Is(err, ErrSlideNotFound), errors.Is(err, gorm.ErrRecordNotFound):
		dto.ErrorResponse(c, res.NewBusinessError(
			res.WithErrorCode(res.NotFound),
			res.WithErrorMessage(err.Error()),
		))
	case errors.Is(err, ErrForbidden):
		dto.ErrorResponse(c, res.NewBusinessError(
			res.WithErrorCode(res.Forbidden),
			res.WithErrorMessage(err.Error()),
		))
	case errors.Is(err, ErrInvalidTransition):
		dto.ErrorResponse(c, res.NewBusinessError(
			res.WithErrorCode(res.PolicyViolation),
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

package upvote

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"lecture-terrace/live-qa/internal/dto"
	"lecture-terrace/live-qa/internal/session"
	res "lecture-terrace/live-qa/pkg/response"
)

// UpvoteHandler 点赞处理器
type UpvoteHandler struct {
	service UpvoteService
}

// NewUpvoteHandler 创建处理器实例
func NewUpvoteHandler(service UpvoteService) *UpvoteHandler {
	return &UpvoteHandler{
		service: service,
	}
}

// ToggleUpvote 切换点赞
// POST /api/questions/:id/upvote
func (h *UpvoteHandler) ToggleUpvote(c *gin.Context) {
	// 1. 获取提问ID
	questionID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		dto.ErrorResponse(c, res.NewBusinessError(
			res.WithErrorCode(res.ParseError),
			res.WithErrorMessage("Invalid question ID"),
		))
		return
	}

	// 2. 获取当前用户
	userIDValue, _ := c.Get("user_id")
	userID, _ := userIDValue.(uint)

	// 3. 调用服务层
	result, err := h.service.ToggleUpvote(uint(questionID), userID)
	if err != nil {
		h.handleError(c, err)
		return
	}

	// 4. 返回成功响应
	dto.SuccessResponse(c, result)
}

// handleError 统一错误处理
func (h *UpvoteHandler) handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrQuestionNotFound), errors.Is(err, gorm.ErrRecordNotFound):
		dto.ErrorResponse(c, res.NewBusinessError(
			res.WithErrorCode(res.NotFound),
			res.WithErrorMessage(err.Error()),
		))
	case errors.Is(err, session.ErrUpvoteInEndedSession), errors.Is(err, session.ErrSessionNotStarted):
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

package answer

import (
	"time"

	questionModel "lecture-terrace/live-qa/internal/model/question"
)

// ========== 请求 DTO ==========

// SubmitAnswerRequest 提交回答请求
// 长度边界在服务层按 trim 后的内容判定，这里只挡明显超长的输入
type SubmitAnswerRequest struct {
	Content string `json:"content" binding:"required,max=4000"`
}

// ========== 响应 DTO ==========

// AnswerResponse 回答响应
type AnswerResponse struct {
	ID         uint      `json:"id"`
	QuestionID uint      `json:"question_id"`
	AuthorID   uint      `json:"author_id"`
	Content    string    `json:"content"`
	IsAccepted bool      `json:"is_accepted"`
	CreatedAt  time.Time `json:"created_at"`
}

// ========== 辅助函数：Model -> DTO 转换 ==========

// ToAnswerResponse 将 Model 转换为 Response DTO
func ToAnswerResponse(a *questionModel.Answer) *AnswerResponse {
	return &AnswerResponse{
		ID:         a.ID,
		QuestionID: a.QuestionID,
		AuthorID:   a.AuthorID,
		Content:    a.Content,
		IsAccepted: a.IsAccepted,
		CreatedAt:  a.CreatedAt,
	}
}

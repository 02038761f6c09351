package question

import (
	"time"

	questionModel "lecture-terrace/live-qa/internal/model/question"
)

// ========== 请求 DTO ==========

// CreateQuestionRequest 创建提问请求
// Content 的长度校验在服务层（trim 后判断），这里只挡明显超长的输入
type CreateQuestionRequest struct {
	Content     string `json:"content" binding:"required,max=4000"`
	IsAnonymous bool   `json:"is_anonymous"`
	Visibility  string `json:"visibility" binding:"omitempty,oneof=PUBLIC INSTRUCTOR_ONLY"`
	SlideID     *uint  `json:"slide_id,omitempty"`
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

// QuestionResponse 提问响应
// 匿名提问的 AuthorID 恒为空：存储层就没有作者，不存在"隐藏"一说
type QuestionResponse struct {
	ID          uint             `json:"id"`
	SessionID   uint             `json:"session_id"`
	SlideID     *uint            `json:"slide_id,omitempty"`
	AuthorID    *uint            `json:"author_id,omitempty"`
	Content     string           `json:"content"`
	IsAnonymous bool             `json:"is_anonymous"`
	Visibility  string           `json:"visibility"`
	Status      string           `json:"status"`
	UpvoteCount int              `json:"upvote_count"`
	CreatedAt   time.Time        `json:"created_at"`
	Answers     []AnswerResponse `json:"answers,omitempty"`
}

// QuestionListResponse 提问列表响应
type QuestionListResponse struct {
	Questions []*QuestionResponse `json:"questions"`
	Total     int                 `json:"total"`
}

// ========== 辅助函数：Model -> DTO 转换 ==========

// ToAnswerResponse 将 Answer Model 转换为 Response DTO
func ToAnswerResponse(a *questionModel.Answer) AnswerResponse {
	return AnswerResponse{
		ID:         a.ID,
		QuestionID: a.QuestionID,
		AuthorID:   a.AuthorID,
		Content:    a.Content,
		IsAccepted: a.IsAccepted,
		CreatedAt:  a.CreatedAt,
	}
}

// ToQuestionResponse 将 Question Model 转换为 Response DTO
func ToQuestionResponse(q *questionModel.Question) *QuestionResponse {
	resp := &QuestionResponse{
		ID:          q.ID,
		SessionID:   q.SessionID,
		SlideID:     q.SlideID,
		AuthorID:    q.AuthorID,
		Content:     q.Content,
		IsAnonymous: q.IsAnonymous,
		Visibility:  q.Visibility,
		Status:      q.Status,
		UpvoteCount: q.UpvoteCount,
		CreatedAt:   q.CreatedAt,
	}
	for i := range q.Answers {
		resp.Answers = append(resp.Answers, ToAnswerResponse(&q.Answers[i]))
	}
	return resp
}

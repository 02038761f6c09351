package session

import (
	"time"

	sessionModel "lecture-terrace/live-qa/internal/model/session"
)

// ========== 请求 DTO ==========

// CreateSessionRequest 创建会话请求
type CreateSessionRequest struct {
	CourseID uint   `json:"course_id" binding:"required"`
	Title    string `json:"title" binding:"required,min=1,max=255"`
}

// SetStatusRequest 会话状态流转请求
type SetStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=SCHEDULED ACTIVE ENDED"`
}

// SetSubmissionsRequest 提问开关请求
type SetSubmissionsRequest struct {
	Enabled *bool `json:"enabled" binding:"required"`
}

// CreateSlideRequest 添加幻灯片请求
type CreateSlideRequest struct {
	SlideNumber int    `json:"slide_number" binding:"required,min=1"`
	ContentRef  string `json:"content_ref" binding:"max=512"`
}

// ========== 响应 DTO ==========

// SessionResponse 会话响应
type SessionResponse struct {
	ID                   uint       `json:"id"`
	CourseID             uint       `json:"course_id"`
	Title                string     `json:"title"`
	JoinCode             string     `json:"join_code"`
	Status               string     `json:"status"`
	IsSubmissionsEnabled bool       `json:"is_submissions_enabled"`
	CreatedBy            uint       `json:"created_by"`
	StartTime            *time.Time `json:"start_time,omitempty"`
	EndTime              *time.Time `json:"end_time,omitempty"`
	CreatedAt            time.Time  `json:"created_at"`
	UpdatedAt            time.Time  `json:"updated_at"`
}

// SlideResponse 幻灯片响应
type SlideResponse struct {
	ID          uint      `json:"id"`
	SessionID   uint      `json:"session_id"`
	SlideNumber int       `json:"slide_number"`
	ContentRef  string    `json:"content_ref,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// ========== 辅助函数：Model -> DTO 转换 ==========

// ToSessionResponse 将 Model 转换为 Response DTO
func ToSessionResponse(sess *sessionModel.Session) *SessionResponse {
	if sess == nil {
		return nil
	}
	return &SessionResponse{
		ID:                   sess.ID,
		CourseID:             sess.CourseID,
		Title:                sess.Title,
		JoinCode:             sess.JoinCode,
		Status:               sess.Status,
		IsSubmissionsEnabled: sess.IsSubmissionsEnabled,
		CreatedBy:            sess.CreatedBy,
		StartTime:            sess.StartTime,
		EndTime:              sess.EndTime,
		CreatedAt:            sess.CreatedAt,
		UpdatedAt:            sess.UpdatedAt,
	}
}

// ToSlideResponse 将 Slide Model 转换为 Response DTO
func ToSlideResponse(slide *sessionModel.Slide) *SlideResponse {
	return &SlideResponse{
		ID:          slide.ID,
		SessionID:   slide.SessionID,
		SlideNumber: slide.SlideNumber,
		ContentRef:  slide.ContentRef,
		CreatedAt:   slide.CreatedAt,
	}
}

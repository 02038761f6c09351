package session

import "time"

// 会话生命周期状态
// SCHEDULED → ACTIVE → ENDED，线性推进，不允许回退
const (
	StatusScheduled = "SCHEDULED"
	StatusActive    = "ACTIVE"
	StatusEnded     = "ENDED"
)

// transitions 会话状态流转表
// 所有状态变更必须经过 CanTransition 检查，调用方不得自行推导规则
var transitions = map[string][]string{
	StatusScheduled: {StatusActive, StatusEnded},
	StatusActive:    {StatusEnded},
	StatusEnded:     {},
}

// CanTransition 判断会话状态流转是否合法
func CanTransition(from, to string) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// IsValidStatus 状态是否合法
func IsValidStatus(status string) bool {
	_, ok := transitions[status]
	return ok
}

// Session 课堂问答会话表
// IsSubmissionsEnabled 是独立于状态的软开关，只拦截新提问
type Session struct {
	ID                   uint       `gorm:"primaryKey" json:"id"`
	CourseID             uint       `gorm:"not null;index" json:"course_id"`
	Title                string     `gorm:"type:varchar(255);not null" json:"title"`
	JoinCode             string     `gorm:"type:varchar(12);not null;uniqueIndex" json:"join_code"`
	Status               string     `gorm:"type:varchar(20);not null;default:'SCHEDULED'" json:"status"` // SCHEDULED, ACTIVE, ENDED
	IsSubmissionsEnabled bool       `gorm:"not null;default:true" json:"is_submissions_enabled"`
	CreatedBy            uint       `gorm:"not null;index" json:"created_by"`
	StartTime            *time.Time `json:"start_time,omitempty"`
	EndTime              *time.Time `json:"end_time,omitempty"`
	CreatedAt            time.Time  `json:"created_at"`
	UpdatedAt            time.Time  `json:"updated_at"`

	// 关联（仅用于查询）
	Slides []Slide `gorm:"foreignKey:SessionID;constraint:OnDelete:CASCADE" json:"slides,omitempty"`
}

// Slide 会话幻灯片表
// SlideNumber 只是排序键，不要求唯一
type Slide struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	SessionID   uint      `gorm:"not null;index" json:"session_id"`
	SlideNumber int       `gorm:"not null" json:"slide_number"`
	ContentRef  string    `gorm:"type:varchar(512)" json:"content_ref"`
	CreatedAt   time.Time `json:"created_at"`
}

func (Session) TableName() string {
	return "sessions"
}

func (Slide) TableName() string {
	return "slides"
}

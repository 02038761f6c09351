package question

import (
	"time"

	"gorm.io/gorm"
)

// 提问状态
// OPEN → ANSWERED → RESOLVED，单向推进，不允许回退
const (
	StatusOpen     = "OPEN"
	StatusAnswered = "ANSWERED"
	StatusResolved = "RESOLVED"
)

// 可见性
const (
	VisibilityPublic         = "PUBLIC"
	VisibilityInstructorOnly = "INSTRUCTOR_ONLY"
)

// transitions 提问状态流转表
var transitions = map[string][]string{
	StatusOpen:     {StatusAnswered, StatusResolved},
	StatusAnswered: {StatusResolved},
	StatusResolved: {},
}

// CanTransition 判断提问状态流转是否合法
func CanTransition(from, to string) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// IsValidVisibility 可见性取值是否合法
func IsValidVisibility(v string) bool {
	return v == VisibilityPublic || v == VisibilityInstructorOnly
}

// Question 提问表
// AuthorID 为 NULL 表示匿名提问：写入时直接不落作者，匿名不可逆
// UpvoteCount 是 question_upvotes 行数的冗余缓存，只允许点赞事务内更新
type Question struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	SessionID   uint      `gorm:"not null;index" json:"session_id"`
	SlideID     *uint     `gorm:"index;default:null" json:"slide_id,omitempty"`
	AuthorID    *uint     `gorm:"index;default:null" json:"author_id,omitempty"`
	Content     string    `gorm:"type:text;not null" json:"content"`
	IsAnonymous bool      `gorm:"not null;default:false" json:"is_anonymous"`
	Visibility  string    `gorm:"type:varchar(20);not null;default:'PUBLIC'" json:"visibility"` // PUBLIC, INSTRUCTOR_ONLY
	Status      string    `gorm:"type:varchar(20);not null;default:'OPEN'" json:"status"`       // OPEN, ANSWERED, RESOLVED
	UpvoteCount int       `gorm:"not null;default:0" json:"upvote_count"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// 关联（仅用于查询）
	Answers []Answer         `gorm:"foreignKey:QuestionID;constraint:OnDelete:CASCADE" json:"answers,omitempty"`
	Upvotes []QuestionUpvote `gorm:"foreignKey:QuestionID;constraint:OnDelete:CASCADE" json:"-"`
}

// Answer 回答表
type Answer struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	QuestionID uint      `gorm:"not null;index" json:"question_id"`
	AuthorID   uint      `gorm:"not null;index" json:"author_id"`
	Content    string    `gorm:"type:text;not null" json:"content"`
	IsAccepted bool      `gorm:"not null;default:false" json:"is_accepted"`
	CreatedAt  time.Time `json:"created_at"`
}

// QuestionUpvote 点赞表
// (question_id, user_id) 唯一索引是防重复点赞的唯一机制，
// 行的存在与否是点赞状态的事实来源
type QuestionUpvote struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	QuestionID uint      `gorm:"not null;uniqueIndex:idx_upvote_question_user" json:"question_id"`
	UserID     uint      `gorm:"not null;uniqueIndex:idx_upvote_question_user;index" json:"user_id"`
	CreatedAt  time.Time `json:"created_at"`
}

func (Question) TableName() string {
	return "questions"
}

func (Answer) TableName() string {
	return "answers"
}

func (QuestionUpvote) TableName() string {
	return "question_upvotes"
}

// BeforeCreate GORM钩子：创建前的验证
func (q *Question) BeforeCreate(tx *gorm.DB) error {
	if q.Content == "" {
		return gorm.ErrInvalidData
	}
	return nil
}

// VisibleTo 判断提问对某个课程角色是否可见
// 可见性过滤必须统一走这个判定（以及 repository 的查询条件），
// 不允许调用方各自在读路径上隐藏
func (q *Question) VisibleTo(courseRole string) bool {
	if q.Visibility == VisibilityPublic {
		return true
	}
	return courseRole == "TA" || courseRole == "PROFESSOR"
}

package course

import "time"

// Course 课程表
// 每门课程由一位教授创建
type Course struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Code      string    `gorm:"type:varchar(20);not null" json:"code"`
	Name      string    `gorm:"type:varchar(255);not null" json:"name"`
	Semester  string    `gorm:"type:varchar(20);not null" json:"semester"` // 如 2026F
	CreatedBy uint      `gorm:"not null;index" json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// 关联（仅用于查询）
	Enrollments []CourseEnrollment `gorm:"foreignKey:CourseID;constraint:OnDelete:CASCADE" json:"enrollments,omitempty"`
}

// CourseEnrollment 选课表
// Role 是课程内角色覆盖：同一用户在不同课程可以是不同角色
// （例如 A 课的教授在 B 课可能只是 TA）
type CourseEnrollment struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_enrollment_user_course" json:"user_id"`
	CourseID  uint      `gorm:"not null;uniqueIndex:idx_enrollment_user_course;index" json:"course_id"`
	Role      string    `gorm:"type:varchar(20);not null;default:'STUDENT'" json:"role"` // STUDENT, TA, PROFESSOR
	CreatedAt time.Time `json:"created_at"`
}

func (Course) TableName() string {
	return "courses"
}

func (CourseEnrollment) TableName() string {
	return "course_enrollments"
}

package user

import "time"

// 全局角色
const (
	RoleStudent   = "STUDENT"
	RoleTA        = "TA"
	RoleProfessor = "PROFESSOR"
)

// User 用户表
// Utorid 是外部身份系统的登录名，唯一
type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Utorid       string    `gorm:"type:varchar(50);not null;uniqueIndex" json:"utorid"`
	Email        string    `gorm:"type:varchar(255);not null;uniqueIndex" json:"email"`
	Name         string    `gorm:"type:varchar(100);not null" json:"name"`
	PasswordHash string    `gorm:"type:varchar(255);not null" json:"-"`
	Role         string    `gorm:"type:varchar(20);not null;default:'STUDENT'" json:"role"` // STUDENT, TA, PROFESSOR
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}

// IsStaff 全局角色是否为教学人员
func IsStaff(role string) bool {
	return role == RoleTA || role == RoleProfessor
}

// IsValidRole 角色是否合法
func IsValidRole(role string) bool {
	switch role {
	case RoleStudent, RoleTA, RoleProfessor:
		return true
	}
	return false
}

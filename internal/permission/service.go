// Package permission 统一课程权限检查服务
// 提供课程内有效角色解析和角色等级比较
package permission

import (
	"gorm.io/gorm"

	"lecture-terrace/live-qa/internal/model/user"
)

// 角色等级常量
// 数值越大权限越高
const (
	RoleLevelProfessor = 100
	RoleLevelTA        = 50
	RoleLevelStudent   = 10
	RoleLevelUnknown   = 0 // 未知角色的 fallback 值
)

// RoleLevelMap 角色名称到等级的映射
var RoleLevelMap = map[string]int{
	user.RoleProfessor: RoleLevelProfessor,
	user.RoleTA:        RoleLevelTA,
	user.RoleStudent:   RoleLevelStudent,
}

// RoleSource 角色来源类型
type RoleSource string

const (
	RoleSourceEnrollment RoleSource = "enrollment" // 选课记录的课程内角色覆盖
	RoleSourceGlobal     RoleSource = "global"     // 全局角色兜底
	RoleSourceNone       RoleSource = "none"       // 未选课
)

// PermissionService 统一权限检查服务
type PermissionService struct {
	db *gorm.DB
}

// NewPermissionService 创建权限服务实例
func NewPermissionService(db *gorm.DB) *PermissionService {
	return &PermissionService{
		db: db,
	}
}

// GetRoleLevel 获取角色的权限等级
// 角色不在映射中时返回 RoleLevelUnknown
func GetRoleLevel(role string) int {
	if level, ok := RoleLevelMap[role]; ok {
		return level
	}
	return RoleLevelUnknown
}

// HasRequiredRole 检查实际角色是否满足所需角色的权限要求
// Unknown/empty 角色会被拒绝，因为权限等级为 0
func HasRequiredRole(actualRole, requiredRole string) bool {
	return GetRoleLevel(actualRole) >= GetRoleLevel(requiredRole)
}

// IsCourseStaff 课程内角色是否为教学人员（TA 或 PROFESSOR）
func IsCourseStaff(courseRole string) bool {
	return user.IsStaff(courseRole)
}

// GetEffectiveCourseRole 解析用户在课程内的有效角色
// 检查顺序：
// 1. course_enrollments 的课程内角色覆盖（教授在别的课里可能只是 TA）
// 2. courses.created_by == userID → 按 PROFESSOR 处理
// 3. 全局角色兜底
func (s *PermissionService) GetEffectiveCourseRole(courseID uint, userID uint, globalRole string) (string, RoleSource) {
	// 1. 查选课记录
	var enrollmentRole string
	err := s.db.Table("course_enrollments").
		Select("role").
		Where("course_id = ? AND user_id = ?", courseID, userID).
		Scan(&enrollmentRole).Error

	if err == nil && enrollmentRole != "" {
		return enrollmentRole, RoleSourceEnrollment
	}

	// 2. 课程创建者视同教授
	var creatorID uint
	err = s.db.Table("courses").
		Select("created_by").
		Where("id = ?", courseID).
		Scan(&creatorID).Error

	if err == nil && creatorID == userID {
		return user.RoleProfessor, RoleSourceGlobal
	}

	// 3. 全局角色兜底
	if user.IsValidRole(globalRole) {
		return globalRole, RoleSourceGlobal
	}

	return user.RoleStudent, RoleSourceNone
}

package session

import (
	"gorm.io/gorm"

	sessionModel "lecture-terrace/live-qa/internal/model/session"
)

// SessionRepository 会话数据访问接口
type SessionRepository interface {
	// Session 相关
	FindByID(sessionID uint) (*sessionModel.Session, error)
	FindByJoinCode(joinCode string) (*sessionModel.Session, error)
	Create(sess *sessionModel.Session) error
	UpdateStatus(sess *sessionModel.Session) error
	UpdateSubmissionsEnabled(sessionID uint, enabled bool) error

	// Slide 相关
	CreateSlide(slide *sessionModel.Slide) error
	FindSlidesBySessionID(sessionID uint) ([]sessionModel.Slide, error)
	FindSlideByID(slideID uint) (*sessionModel.Slide, error)
}

// sessionRepository 实现
type sessionRepository struct {
	db *gorm.DB
}

// NewSessionRepository 创建 Repository 实例
func NewSessionRepository(db *gorm.DB) SessionRepository {
	return &sessionRepository{db: db}
}

// ========== Session 相关操作 ==========

// FindByID 根据ID查找会话
func (r *sessionRepository) FindByID(sessionID uint) (*sessionModel.Session, error) {
	var sess sessionModel.Session
	err := r.db.First(&sess, sessionID).Error
	if err != nil {
		return nil, err
	}
	return &sess, nil
}

// FindByJoinCode 根据加入码查找会话
func (r *sessionRepository) FindByJoinCode(joinCode string) (*sessionModel.Session, error) {
	var sess sessionModel.Session
	err := r.db.Where("join_code = ?", joinCode).First(&sess).Error
	if err != nil {
		return nil, err
	}
	return &sess, nil
}

// Create 创建会话
func (r *sessionRepository) Create(sess *sessionModel.Session) error {
	return r.db.Create(sess).Error
}

// UpdateStatus 更新会话状态及起止时间
func (r *sessionRepository) UpdateStatus(sess *sessionModel.Session) error {
	return r.db.Model(sess).Updates(map[string]interface{}{
		"status":     sess.Status,
		"start_time": sess.StartTime,
		"end_time":   sess.EndTime,
	}).Error
}

// UpdateSubmissionsEnabled 更新提问开关
func (r *sessionRepository) UpdateSubmissionsEnabled(sessionID uint, enabled bool) error {
	return r.db.Model(&sessionModel.Session{}).
		Where("id = ?", sessionID).
		Update("is_submissions_enabled", enabled).Error
}

// ========== Slide 相关操作 ==========

// CreateSlide 创建幻灯片
func (r *sessionRepository) CreateSlide(slide *sessionModel.Slide) error {
	return r.db.Create(slide).Error
}

// FindSlidesBySessionID 获取会话的所有幻灯片（按页码升序）
func (r *sessionRepository) FindSlidesBySessionID(sessionID uint) ([]sessionModel.Slide, error) {
	var slides []sessionModel.Slide
	err := r.db.Where("session_id = ?", sessionID).
		Order("slide_number ASC").
		Find(&slides).Error
	if err != nil {
		return nil, err
	}
	return slides, nil
}

// FindSlideByID 根据ID查找幻灯片
func (r *sessionRepository) FindSlideByID(slideID uint) (*sessionModel.Slide, error) {
	var slide sessionModel.Slide
	err := r.db.First(&slide, slideID).Error
	if err != nil {
		return nil, err
	}
	return &slide, nil
}

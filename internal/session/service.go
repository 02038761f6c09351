package session

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	sessionModel "lecture-terrace/live-qa/internal/model/session"
	"lecture-terrace/live-qa/internal/model/user"
	"lecture-terrace/live-qa/internal/permission"
)

var (
	ErrSessionNotFound   = errors.New("Session not found")
	ErrSlideNotFound     = errors.New("Slide not found")
	ErrForbidden         = errors.New("Only course staff can manage sessions")
	ErrInvalidTransition = errors.New("Illegal session status transition")
)

// joinCodeAttempts 加入码碰撞时的重试次数
const joinCodeAttempts = 5

// SessionService 会话服务接口
type SessionService interface {
	// 创建会话（初始 SCHEDULED，提问开启）
	CreateSession(userID uint, globalRole string, req *CreateSessionRequest) (*SessionResponse, error)

	// 会话状态流转（由课程教学人员触发）
	SetStatus(sessionID uint, userID uint, globalRole string, req *SetStatusRequest) (*SessionResponse, error)

	// 切换提问开关
	SetSubmissionsEnabled(sessionID uint, userID uint, globalRole string, req *SetSubmissionsRequest) (*SessionResponse, error)

	// 获取会话
	GetSession(sessionID uint) (*SessionResponse, error)

	// 按加入码获取会话（学生扫码/输码进入）
	GetSessionByJoinCode(joinCode string) (*SessionResponse, error)

	// 添加幻灯片
	AddSlide(sessionID uint, userID uint, globalRole string, req *CreateSlideRequest) (*SlideResponse, error)

	// 列出会话幻灯片
	ListSlides(sessionID uint) ([]*SlideResponse, error)
}

type sessionService struct {
	repo SessionRepository
	perm *permission.PermissionService
}

// NewSessionService 创建服务实例
func NewSessionService(repo SessionRepository, perm *permission.PermissionService) SessionService {
	return &sessionService{
		repo: repo,
		perm: perm,
	}
}

// CreateSession 创建会话
func (s *sessionService) CreateSession(userID uint, globalRole string, req *CreateSessionRequest) (*SessionResponse, error) {
	// 1. 权限验证：课程内教学人员才能开会话
	courseRole, _ := s.perm.GetEffectiveCourseRole(req.CourseID, userID, globalRole)
	if !permission.IsCourseStaff(courseRole) {
		return nil, ErrForbidden
	}

	// 2. 生成唯一加入码，撞库则重试
	var sess *sessionModel.Session
	var err error
	for i := 0; i < joinCodeAttempts; i++ {
		sess = &sessionModel.Session{
			CourseID:             req.CourseID,
			Title:                strings.TrimSpace(req.Title),
			JoinCode:             newJoinCode(),
			Status:               sessionModel.StatusScheduled,
			IsSubmissionsEnabled: true,
			CreatedBy:            userID,
		}
		err = s.repo.Create(sess)
		if err == nil {
			break
		}
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, err
		}
	}
	if err != nil {
		return nil, err
	}

	return ToSessionResponse(sess), nil
}

// SetStatus 会话状态流转
// 流转合法性完全由状态表裁决，ACTIVE 时记录 StartTime，ENDED 时记录 EndTime
func (s *sessionService) SetStatus(sessionID uint, userID uint, globalRole string, req *SetStatusRequest) (*SessionResponse, error) {
	// 1. 查找会话
	sess, err := s.repo.FindByID(sessionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}

	// 2. 权限验证
	courseRole, _ := s.perm.GetEffectiveCourseRole(sess.CourseID, userID, globalRole)
	if !permission.IsCourseStaff(courseRole) {
		return nil, ErrForbidden
	}

	// 3. 状态表裁决
	if !sessionModel.CanTransition(sess.Status, req.Status) {
		return nil, ErrInvalidTransition
	}

	// 4. 应用流转
	now := time.Now()
	sess.Status = req.Status
	switch req.Status {
	case sessionModel.StatusActive:
		sess.StartTime = &now
	case sessionModel.StatusEnded:
		sess.EndTime = &now
	}

	if err := s.repo.UpdateStatus(sess); err != nil {
		return nil, err
	}

	return ToSessionResponse(sess), nil
}

// SetSubmissionsEnabled 切换提问开关
// 与状态无关：讲师可以在不结束会话的情况下暂停新提问
func (s *sessionService) SetSubmissionsEnabled(sessionID uint, userID uint, globalRole string, req *SetSubmissionsRequest) (*SessionResponse, error) {
	// 1. 查找会话
	sess, err := s.repo.FindByID(sessionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}

	// 2. 权限验证
	courseRole, _ := s.perm.GetEffectiveCourseRole(sess.CourseID, userID, globalRole)
	if !permission.IsCourseStaff(courseRole) {
		return nil, ErrForbidden
	}

	// 3. 更新开关
	if err := s.repo.UpdateSubmissionsEnabled(sessionID, *req.Enabled); err != nil {
		return nil, err
	}
	sess.IsSubmissionsEnabled = *req.Enabled

	return ToSessionResponse(sess), nil
}

// GetSession 获取会话
func (s *sessionService) GetSession(sessionID uint) (*SessionResponse, error) {
	sess, err := s.repo.FindByID(sessionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	return ToSessionResponse(sess), nil
}

// GetSessionByJoinCode 按加入码获取会话
// 加入码不区分大小写：存储时统一大写，查询前归一化
func (s *sessionService) GetSessionByJoinCode(joinCode string) (*SessionResponse, error) {
	code := strings.ToUpper(strings.TrimSpace(joinCode))
	sess, err := s.repo.FindByJoinCode(code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	return ToSessionResponse(sess), nil
}

// AddSlide 添加幻灯片
func (s *sessionService) AddSlide(sessionID uint, userID uint, globalRole string, req *CreateSlideRequest) (*SlideResponse, error) {
	// 1. 查找会话
	sess, err := s.repo.FindByID(sessionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}

	// 2. 权限验证
	courseRole, _ := s.perm.GetEffectiveCourseRole(sess.CourseID, userID, globalRole)
	if !permission.HasRequiredRole(courseRole, user.RoleTA) {
		return nil, ErrForbidden
	}

	// 3. 创建幻灯片
	slide := &sessionModel.Slide{
		SessionID:   sess.ID,
		SlideNumber: req.SlideNumber,
		ContentRef:  req.ContentRef,
	}
	if err := s.repo.CreateSlide(slide); err != nil {
		return nil, err
	}

	return ToSlideResponse(slide), nil
}

// ListSlides 列出会话幻灯片
func (s *sessionService) ListSlides(sessionID uint) ([]*SlideResponse, error) {
	if _, err := s.repo.FindByID(sessionID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}

	slides, err := s.repo.FindSlidesBySessionID(sessionID)
	if err != nil {
		return nil, err
	}

	resp := make([]*SlideResponse, 0, len(slides))
	for i := range slides {
		resp = append(resp, ToSlideResponse(&slides[i]))
	}
	return resp, nil
}

// newJoinCode 生成 8 位加入码
// 取 uuid 前 8 个十六进制字符并转大写，便于口头播报
func newJoinCode() string {
	return strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", "")[:8])
}

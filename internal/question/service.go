package question

import (
	"errors"
	"strings"
	"unicode/utf8"

	"gorm.io/gorm"

	questionModel "lecture-terrace/live-qa/internal/model/question"
	"lecture-terrace/live-qa/internal/permission"
	"lecture-terrace/live-qa/internal/session"
)

// 提问内容长度边界（trim 之后计）
const (
	QuestionMinLength = 1
	QuestionMaxLength = 2000
)

var (
	ErrQuestionNotFound        = errors.New("Question not found")
	ErrSessionNotFound         = errors.New("Session not found")
	ErrQuestionContentEmpty    = errors.New("Question content cannot be empty")
	ErrQuestionContentTooLong  = errors.New("Question content must be at most 2000 characters")
	ErrSlideNotInSession       = errors.New("Slide does not belong to this session")
	ErrResolveForbidden        = errors.New("Only course staff can resolve questions")
	ErrQuestionAlreadyResolved = errors.New("Question is already resolved")
)

// QuestionService 提问服务接口
type QuestionService interface {
	// 创建提问（匿名提问不落作者）
	CreateQuestion(sessionID uint, authorID uint, req *CreateQuestionRequest) (*QuestionResponse, error)

	// 按调用者课程角色列出会话提问（学生视角排除 INSTRUCTOR_ONLY）
	ListSessionQuestions(sessionID uint, userID uint, globalRole string) (*QuestionListResponse, error)

	// 标记提问已解决（教学人员操作）
	ResolveQuestion(questionID uint, userID uint, globalRole string) (*QuestionResponse, error)
}

type questionService struct {
	repo        QuestionRepository
	sessionRepo session.SessionRepository
	gate        *session.Gate
	perm        *permission.PermissionService
}

// NewQuestionService 创建服务实例
func NewQuestionService(repo QuestionRepository, sessionRepo session.SessionRepository, gate *session.Gate, perm *permission.PermissionService) QuestionService {
	return &questionService{
		repo:        repo,
		sessionRepo: sessionRepo,
		gate:        gate,
		perm:        perm,
	}
}

// validateQuestionContent 校验提问内容
// 先 trim 再比边界，和回答路径保持同一套规则
// 按字符数（rune）计，不按字节
func validateQuestionContent(content string) (string, error) {
	trimmed := strings.TrimSpace(content)
	length := utf8.RuneCountInString(trimmed)
	if length < QuestionMinLength {
		return "", ErrQuestionContentEmpty
	}
	if length > QuestionMaxLength {
		return "", ErrQuestionContentTooLong
	}
	return trimmed, nil
}

// CreateQuestion 创建提问
func (s *questionService) CreateQuestion(sessionID uint, authorID uint, req *CreateQuestionRequest) (*QuestionResponse, error) {
	// 1. 本地校验先行，不给无效输入消耗任何 I/O
	content, err := validateQuestionContent(req.Content)
	if err != nil {
		return nil, err
	}

	visibility := req.Visibility
	if visibility == "" {
		visibility = questionModel.VisibilityPublic
	}

	// 2. 查找会话并过写入门禁（ENDED 拦截 + 提问开关）
	sess, err := s.sessionRepo.FindByID(sessionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	if err := s.gate.AssertWritable(sess, session.ActionAskQuestion); err != nil {
		return nil, err
	}

	// 3. 幻灯片锚点必须属于同一会话
	if req.SlideID != nil {
		slide, err := s.sessionRepo.FindSlideByID(*req.SlideID)
		if err != nil || slide.SessionID != sess.ID {
			return nil, ErrSlideNotInSession
		}
	}

	// 4. 落库
	// 匿名提问在写入时就不带作者外键，匿名不可逆
	q := &questionModel.Question{
		SessionID:   sess.ID,
		SlideID:     req.SlideID,
		Content:     content,
		IsAnonymous: req.IsAnonymous,
		Visibility:  visibility,
		Status:      questionModel.StatusOpen,
		UpvoteCount: 0,
	}
	if !req.IsAnonymous {
		q.AuthorID = &authorID
	}

	if err := s.repo.Create(q); err != nil {
		return nil, err
	}

	return ToQuestionResponse(q), nil
}

// ListSessionQuestions 列出会话提问
// 学生视角的 INSTRUCTOR_ONLY 过滤发生在查询边界（repository 的 where 条件），
// 这里只负责把课程角色解析出来
func (s *questionService) ListSessionQuestions(sessionID uint, userID uint, globalRole string) (*QuestionListResponse, error) {
	sess, err := s.sessionRepo.FindByID(sessionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}

	courseRole, _ := s.perm.GetEffectiveCourseRole(sess.CourseID, userID, globalRole)
	staffView := permission.IsCourseStaff(courseRole)

	questions, err := s.repo.FindBySessionID(sessionID, staffView)
	if err != nil {
		return nil, err
	}

	resp := make([]*QuestionResponse, 0, len(questions))
	for i := range questions {
		resp = append(resp, ToQuestionResponse(&questions[i]))
	}

	return &QuestionListResponse{
		Questions: resp,
		Total:     len(resp),
	}, nil
}

// ResolveQuestion 标记提问已解决
// RESOLVED 是终态：状态表保证不会从 RESOLVED 回退，也不允许重复解决
func (s *questionService) ResolveQuestion(questionID uint, userID uint, globalRole string) (*QuestionResponse, error) {
	// 1. 查找提问及其会话
	qs, err := s.repo.FindWithSession(questionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrQuestionNotFound
		}
		return nil, err
	}

	// 2. ENDED 会话绝对拦截
	if err := s.gate.AssertWritable(qs.Session, session.ActionResolve); err != nil {
		return nil, err
	}

	// 3. 权限验证：课程内教学人员
	courseRole, _ := s.perm.GetEffectiveCourseRole(qs.Session.CourseID, userID, globalRole)
	if !permission.IsCourseStaff(courseRole) {
		return nil, ErrResolveForbidden
	}

	// 4. 状态表裁决
	if !questionModel.CanTransition(qs.Question.Status, questionModel.StatusResolved) {
		return nil, ErrQuestionAlreadyResolved
	}

	// 带状态守卫更新：并发的 resolve 抢先提交时这里 0 行，按重复解决处理
	rows, err := s.repo.AdvanceStatus(nil, qs.Question.ID,
		[]string{questionModel.StatusOpen, questionModel.StatusAnswered},
		questionModel.StatusResolved)
	if err != nil {
		return nil, err
	}
	if rows == 0 {
		return nil, ErrQuestionAlreadyResolved
	}
	qs.Question.Status = questionModel.StatusResolved

	return ToQuestionResponse(qs.Question), nil
}

package answer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"gorm.io/gorm"

	questionModel "lecture-terrace/live-qa/internal/model/question"
	"lecture-terrace/live-qa/internal/permission"
	"lecture-terrace/live-qa/internal/question"
	"lecture-terrace/live-qa/internal/ratelimit"
	"lecture-terrace/live-qa/internal/session"
	"lecture-terrace/live-qa/pkg/response"
)

// 回答内容长度边界（trim 之后计）
const (
	AnswerMinLength = 1
	AnswerMaxLength = 1000
)

// 限流键的动作命名空间
const answerRateLimitAction = "answer"

var (
	ErrQuestionNotFound     = errors.New("Question not found")
	ErrAnswerNotFound       = errors.New("Answer not found")
	ErrAnswerContentEmpty   = errors.New("Answer content cannot be empty")
	ErrAnswerContentTooLong = errors.New("Answer content must be at most 1000 characters")
	ErrAcceptForbidden      = errors.New("Only course staff can accept answers")
)

// RateLimitOptions 回答限流参数
type RateLimitOptions struct {
	MaxCount      int
	WindowSeconds int
	// FailOpen 为 true 时限流后端不可用按放行处理，否则按基础设施错误拒绝
	FailOpen bool
}

// AnswerService 回答服务接口
type AnswerService interface {
	// 提交回答（完整校验管线）
	SubmitAnswer(questionID uint, authorID uint, req *SubmitAnswerRequest) (*AnswerResponse, error)

	// 采纳回答（教学人员操作，同一提问最多一条被采纳）
	AcceptAnswer(answerID uint, userID uint, globalRole string) (*AnswerResponse, error)

	// 列出提问的全部回答（按时间升序）
	ListAnswers(questionID uint) ([]*AnswerResponse, error)
}

type answerService struct {
	repo         AnswerRepository
	questionRepo question.QuestionRepository
	gate         *session.Gate
	perm         *permission.PermissionService
	limiter      ratelimit.Limiter
	limits       RateLimitOptions
	db           *gorm.DB
}

// NewAnswerService 创建服务实例
func NewAnswerService(repo AnswerRepository, questionRepo question.QuestionRepository, gate *session.Gate,
	perm *permission.PermissionService, limiter ratelimit.Limiter, limits RateLimitOptions, db *gorm.DB) AnswerService {
	if limits.MaxCount == 0 {
		limits.MaxCount = 15
	}
	if limits.WindowSeconds == 0 {
		limits.WindowSeconds = 60
	}
	return &answerService{
		repo:         repo,
		questionRepo: questionRepo,
		gate:         gate,
		perm:         perm,
		limiter:      limiter,
		limits:       limits,
		db:           db,
	}
}

// validateAnswerContent 校验回答内容
// trim 后长度必须落在 [AnswerMinLength, AnswerMaxLength]
// 按字符数（rune）计，不按字节：中文等多字节内容不能被压到限额的三分之一
func validateAnswerContent(content string) (string, error) {
	trimmed := strings.TrimSpace(content)
	length := utf8.RuneCountInString(trimmed)
	if length < AnswerMinLength {
		return "", ErrAnswerContentEmpty
	}
	if length > AnswerMaxLength {
		return "", ErrAnswerContentTooLong
	}
	return trimmed, nil
}

// checkAnswerRateLimit 按作者限流
// 限流与目标提问无关：一个用户 60 秒内的回答总量受限
func (s *answerService) checkAnswerRateLimit(ctx context.Context, authorID uint) error {
	key := ratelimit.Key(answerRateLimitAction, authorID)
	exceeded, err := s.limiter.CheckAndIncrement(ctx, key, s.limits.MaxCount,
		windowDuration(s.limits.WindowSeconds))
	if err != nil {
		// 后端不可用必须和"超限"可区分地暴露出去
		if s.limits.FailOpen {
			return nil
		}
		return response.NewBusinessError(
			response.WithErrorCode(response.Infrastructure),
			response.WithErrorMessage("Rate limiter unavailable, please retry"),
			response.WithError(err),
		)
	}
	if exceeded {
		return response.NewBusinessError(
			response.WithErrorCode(response.RateLimited),
			response.WithErrorMessage(fmt.Sprintf(
				"Rate limit exceeded: at most %d answers per %d seconds",
				s.limits.MaxCount, s.limits.WindowSeconds)),
		)
	}
	return nil
}

// validateQuestionForAnswers 校验目标提问可被回答
// 提问必须存在，所属会话必须未结束
func (s *answerService) validateQuestionForAnswers(questionID uint) (*question.QuestionWithSession, error) {
	qs, err := s.questionRepo.FindWithSession(questionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrQuestionNotFound
		}
		return nil, err
	}
	if err := s.gate.AssertWritable(qs.Session, session.ActionAnswer); err != nil {
		return nil, err
	}
	return qs, nil
}

// SubmitAnswer 提交回答
// 管线各阶段逐一短路，顺序是契约的一部分：
// 内容校验是本地操作放最前，无效输入不消耗限流额度也不打数据库；
// 限流其次；提问/会话校验最后。
func (s *answerService) SubmitAnswer(questionID uint, authorID uint, req *SubmitAnswerRequest) (*AnswerResponse, error) {
	// 1. 内容校验
	content, err := validateAnswerContent(req.Content)
	if err != nil {
		return nil, err
	}

	// 2. 限流
	if err := s.checkAnswerRateLimit(context.Background(), authorID); err != nil {
		return nil, err
	}

	// 3. 提问/会话校验
	qs, err := s.validateQuestionForAnswers(questionID)
	if err != nil {
		return nil, err
	}

	// 4. 落库 + 副作用
	// 首答把 OPEN 翻到 ANSWERED，必须和插入同一事务；
	// 守卫条件写进 SQL（status = OPEN 才更新）而不是用事务外读到的状态判断，
	// 事务开始前被并发 resolve 的提问不会从 RESOLVED 回退（状态单调）
	answer := &questionModel.Answer{
		QuestionID: qs.Question.ID,
		AuthorID:   authorID,
		Content:    content,
	}
	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.repo.Create(tx, answer); err != nil {
			return err
		}
		// 0 行表示提问已不在 OPEN，保持现状即可
		_, err := s.questionRepo.AdvanceStatus(tx, qs.Question.ID,
			[]string{questionModel.StatusOpen}, questionModel.StatusAnswered)
		return err
	})
	if err != nil {
		return nil, err
	}

	return ToAnswerResponse(answer), nil
}

// AcceptAnswer 采纳回答
// 同一提问最多一条已采纳回答：采纳新回答前先在同一事务里取消旧的
func (s *answerService) AcceptAnswer(answerID uint, userID uint, globalRole string) (*AnswerResponse, error) {
	// 1. 查找回答及其提问/会话
	answer, err := s.repo.FindByID(answerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAnswerNotFound
		}
		return nil, err
	}

	qs, err := s.questionRepo.FindWithSession(answer.QuestionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrQuestionNotFound
		}
		return nil, err
	}

	// 2. ENDED 会话绝对拦截
	if err := s.gate.AssertWritable(qs.Session, session.ActionAccept); err != nil {
		return nil, err
	}

	// 3. 权限验证：课程内教学人员
	courseRole, _ := s.perm.GetEffectiveCourseRole(qs.Session.CourseID, userID, globalRole)
	if !permission.IsCourseStaff(courseRole) {
		return nil, ErrAcceptForbidden
	}

	// 4. 事务内换采纳标记
	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.repo.UnacceptAll(tx, answer.QuestionID); err != nil {
			return err
		}
		return s.repo.SetAccepted(tx, answerID)
	})
	if err != nil {
		return nil, err
	}
	answer.IsAccepted = true

	return ToAnswerResponse(answer), nil
}

// ListAnswers 列出提问的全部回答
func (s *answerService) ListAnswers(questionID uint) ([]*AnswerResponse, error) {
	if _, err := s.questionRepo.FindByID(questionID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrQuestionNotFound
		}
		return nil, err
	}

	answers, err := s.repo.FindByQuestionID(questionID)
	if err != nil {
		return nil, err
	}

	resp := make([]*AnswerResponse, 0, len(answers))
	for i := range answers {
		resp = append(resp, ToAnswerResponse(&answers[i]))
	}
	return resp, nil
}

// windowDuration 秒数转窗口时长
func windowDuration(seconds int) time.Duration {
	return time.Duration(seconds) * time.Second
}

package upvote

import (
	"errors"

	"gorm.io/gorm"

	questionModel "lecture-terrace/live-qa/internal/model/question"
	"lecture-terrace/live-qa/internal/question"
	"lecture-terrace/live-qa/internal/session"
)

var (
	ErrQuestionNotFound = errors.New("Question not found")
)

// 切换结果
const (
	AppliedAdded   = "added"
	AppliedRemoved = "removed"
)

// ToggleUpvoteResponse 点赞切换响应
type ToggleUpvoteResponse struct {
	Applied     string `json:"applied"` // added / removed
	UpvoteCount int    `json:"upvote_count"`
}

// UpvoteService 点赞服务接口
type UpvoteService interface {
	// 切换点赞：无则加一，有则取消
	ToggleUpvote(questionID uint, userID uint) (*ToggleUpvoteResponse, error)
}

type upvoteService struct {
	repo         UpvoteRepository
	questionRepo question.QuestionRepository
	gate         *session.Gate
	db           *gorm.DB
}

// NewUpvoteService 创建服务实例
func NewUpvoteService(repo UpvoteRepository, questionRepo question.QuestionRepository, gate *session.Gate, db *gorm.DB) UpvoteService {
	return &upvoteService{
		repo:         repo,
		questionRepo: questionRepo,
		gate:         gate,
		db:           db,
	}
}

// ToggleUpvote 切换点赞
// 核心不变量：questions.upvote_count 恒等于 question_upvotes 的行数。
// 行变更和计数器变更放在同一事务，任何一半单独落库都是正确性缺陷。
// (question_id, user_id) 唯一索引是并发下的最终仲裁：两个并发的"加赞"
// 只有一个能落行，输掉的一方（ON CONFLICT 写入 0 行）按"取消"继续，而不是报错。
func (s *upvoteService) ToggleUpvote(questionID uint, userID uint) (*ToggleUpvoteResponse, error) {
	// 1. 查找提问及其会话，过写入门禁
	qs, err := s.questionRepo.FindWithSession(questionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrQuestionNotFound
		}
		return nil, err
	}
	if err := s.gate.AssertWritable(qs.Session, session.ActionUpvote); err != nil {
		return nil, err
	}

	// 2. 事务内切换行 + 计数器
	var applied string
	err = s.db.Transaction(func(tx *gorm.DB) error {
		_, err := s.repo.Find(tx, questionID, userID)
		switch {
		case err == nil:
			// 已点赞 → 取消
			return s.removeUpvote(tx, questionID, userID, &applied)

		case errors.Is(err, gorm.ErrRecordNotFound):
			// 未点赞 → 新增
			rows, createErr := s.repo.CreateIfAbsent(tx, &questionModel.QuestionUpvote{
				QuestionID: questionID,
				UserID:     userID,
			})
			if createErr != nil {
				return createErr
			}
			if rows == 1 {
				applied = AppliedAdded
				return s.repo.AdjustCount(tx, questionID, +1)
			}
			// 并发插入抢先落行，本次调用按切换语义转为取消
			return s.removeUpvote(tx, questionID, userID, &applied)

		default:
			return err
		}
	})
	if err != nil {
		return nil, err
	}

	// 3. 事务提交后读最新计数返回
	count, err := s.repo.GetCount(questionID)
	if err != nil {
		return nil, err
	}

	return &ToggleUpvoteResponse{
		Applied:     applied,
		UpvoteCount: count,
	}, nil
}

// removeUpvote 删行并同事务递减计数
// 行如果已被并发删除则整体视为 no-op，计数不动
func (s *upvoteService) removeUpvote(tx *gorm.DB, questionID, userID uint, applied *string) error {
	rows, err := s.repo.Delete(tx, questionID, userID)
	if err != nil {
		return err
	}
	*applied = AppliedRemoved
	if rows == 0 {
		return nil
	}
	return s.repo.AdjustCount(tx, questionID, -1)
}

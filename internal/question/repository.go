package question

import (
	"gorm.io/gorm"

	questionModel "lecture-terrace/live-qa/internal/model/question"
	sessionModel "lecture-terrace/live-qa/internal/model/session"
)

// QuestionWithSession 提问及其所属会话状态
// 回答/点赞路径用它一次查出做门禁判断所需的全部信息
type QuestionWithSession struct {
	Question *questionModel.Question
	Session  *sessionModel.Session
}

// QuestionRepository 提问数据访问接口
type QuestionRepository interface {
	FindByID(questionID uint) (*questionModel.Question, error)
	FindWithSession(questionID uint) (*QuestionWithSession, error)
	FindBySessionID(sessionID uint, staffView bool) ([]questionModel.Question, error)
	Create(q *questionModel.Question) error
	AdvanceStatus(tx *gorm.DB, questionID uint, from []string, to string) (int64, error)
}

// questionRepository 实现
type questionRepository struct {
	db *gorm.DB
}

// NewQuestionRepository 创建 Repository 实例
func NewQuestionRepository(db *gorm.DB) QuestionRepository {
	return &questionRepository{db: db}
}

// FindByID 根据ID查找提问
func (r *questionRepository) FindByID(questionID uint) (*questionModel.Question, error) {
	var q questionModel.Question
	err := r.db.First(&q, questionID).Error
	if err != nil {
		return nil, err
	}
	return &q, nil
}

// FindWithSession 查找提问及其所属会话
func (r *questionRepository) FindWithSession(questionID uint) (*QuestionWithSession, error) {
	var q questionModel.Question
	if err := r.db.First(&q, questionID).Error; err != nil {
		return nil, err
	}

	var sess sessionModel.Session
	if err := r.db.First(&sess, q.SessionID).Error; err != nil {
		return nil, err
	}

	return &QuestionWithSession{Question: &q, Session: &sess}, nil
}

// FindBySessionID 获取会话的提问列表
// 可见性过滤在查询边界完成：非教学人员视角直接排除 INSTRUCTOR_ONLY，
// 而不是查出来再在展示层隐藏
func (r *questionRepository) FindBySessionID(sessionID uint, staffView bool) ([]questionModel.Question, error) {
	query := r.db.Where("session_id = ?", sessionID)
	if !staffView {
		query = query.Where("visibility = ?", questionModel.VisibilityPublic)
	}

	var questions []questionModel.Question
	err := query.
		Preload("Answers", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		Order("upvote_count DESC").
		Order("created_at ASC").
		Find(&questions).Error
	if err != nil {
		return nil, err
	}
	return questions, nil
}

// Create 创建提问
func (r *questionRepository) Create(q *questionModel.Question) error {
	return r.db.Create(q).Error
}

// AdvanceStatus 条件推进提问状态
// 状态守卫写进 SQL：只有当前状态还在 from 集合里才更新，
// 并发的 resolve 抢先提交后这里就是 0 行，不会把 RESOLVED 拽回去。
// 接收事务句柄：ANSWERED 流转必须和回答插入同一事务提交
func (r *questionRepository) AdvanceStatus(tx *gorm.DB, questionID uint, from []string, to string) (int64, error) {
	if tx == nil {
		tx = r.db
	}
	result := tx.Model(&questionModel.Question{}).
		Where("id = ? AND status IN ?", questionID, from).
		Update("status", to)
	return result.RowsAffected, result.Error
}

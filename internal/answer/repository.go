package answer

import (
	"gorm.io/gorm"

	questionModel "lecture-terrace/live-qa/internal/model/question"
)

// AnswerRepository 回答数据访问接口
type AnswerRepository interface {
	FindByID(answerID uint) (*questionModel.Answer, error)
	Create(tx *gorm.DB, answer *questionModel.Answer) error
	FindByQuestionID(questionID uint) ([]questionModel.Answer, error)
	UnacceptAll(tx *gorm.DB, questionID uint) error
	SetAccepted(tx *gorm.DB, answerID uint) error
}

// answerRepository 实现
type answerRepository struct {
	db *gorm.DB
}

// NewAnswerRepository 创建 Repository 实例
func NewAnswerRepository(db *gorm.DB) AnswerRepository {
	return &answerRepository{db: db}
}

// FindByID 根据ID查找回答
func (r *answerRepository) FindByID(answerID uint) (*questionModel.Answer, error) {
	var answer questionModel.Answer
	err := r.db.First(&answer, answerID).Error
	if err != nil {
		return nil, err
	}
	return &answer, nil
}

// Create 创建回答
// 接收事务句柄：首答触发的 OPEN → ANSWERED 流转必须同事务提交
func (r *answerRepository) Create(tx *gorm.DB, answer *questionModel.Answer) error {
	if tx == nil {
		tx = r.db
	}
	return tx.Create(answer).Error
}

// FindByQuestionID 获取提问的所有回答（按创建时间升序）
func (r *answerRepository) FindByQuestionID(questionID uint) ([]questionModel.Answer, error) {
	var answers []questionModel.Answer
	err := r.db.Where("question_id = ?", questionID).
		Order("created_at ASC").
		Find(&answers).Error
	if err != nil {
		return nil, err
	}
	return answers, nil
}

// UnacceptAll 取消提问下所有已采纳标记
// 和 SetAccepted 同事务使用，保证同一提问最多一条已采纳回答
func (r *answerRepository) UnacceptAll(tx *gorm.DB, questionID uint) error {
	if tx == nil {
		tx = r.db
	}
	return tx.Model(&questionModel.Answer{}).
		Where("question_id = ? AND is_accepted = ?", questionID, true).
		Update("is_accepted", false).Error
}

// SetAccepted 标记回答为已采纳
func (r *answerRepository) SetAccepted(tx *gorm.DB, answerID uint) error {
	if tx == nil {
		tx = r.db
	}
	return tx.Model(&questionModel.Answer{}).
		Where("id = ?", answerID).
		Update("is_accepted", true).Error
}

package upvote

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	questionModel "lecture-terrace/live-qa/internal/model/question"
)

// UpvoteRepository 点赞数据访问接口
// 所有方法都接收事务句柄：行变更和计数器变更必须同一事务提交
type UpvoteRepository interface {
	Find(tx *gorm.DB, questionID, userID uint) (*questionModel.QuestionUpvote, error)
	CreateIfAbsent(tx *gorm.DB, upvote *questionModel.QuestionUpvote) (int64, error)
	Delete(tx *gorm.DB, questionID, userID uint) (int64, error)
	AdjustCount(tx *gorm.DB, questionID uint, delta int) error
	GetCount(questionID uint) (int, error)
	CountRows(questionID uint) (int64, error)
}

// upvoteRepository 实现
type upvoteRepository struct {
	db *gorm.DB
}

// NewUpvoteRepository 创建 Repository 实例
func NewUpvoteRepository(db *gorm.DB) UpvoteRepository {
	return &upvoteRepository{db: db}
}

// Find 查找某用户对某提问的点赞行
func (r *upvoteRepository) Find(tx *gorm.DB, questionID, userID uint) (*questionModel.QuestionUpvote, error) {
	if tx == nil {
		tx = r.db
	}
	var upvote questionModel.QuestionUpvote
	err := tx.Where("question_id = ? AND user_id = ?", questionID, userID).First(&upvote).Error
	if err != nil {
		return nil, err
	}
	return &upvote, nil
}

// CreateIfAbsent 创建点赞行，冲突时不写入
// 用 ON CONFLICT DO NOTHING 而不是裸 INSERT：唯一索引冲突在 Postgres 里
// 会把整个事务打进 aborted 状态，后续语句全部失败；DO NOTHING 不触发冲突，
// 事务保持可用，由返回的行数区分"插入成功"和"并发插入抢先"
func (r *upvoteRepository) CreateIfAbsent(tx *gorm.DB, upvote *questionModel.QuestionUpvote) (int64, error) {
	if tx == nil {
		tx = r.db
	}
	result := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "question_id"}, {Name: "user_id"}},
		DoNothing: true,
	}).Create(upvote)
	return result.RowsAffected, result.Error
}

// Delete 删除点赞行，返回删除行数
func (r *upvoteRepository) Delete(tx *gorm.DB, questionID, userID uint) (int64, error) {
	if tx == nil {
		tx = r.db
	}
	result := tx.Where("question_id = ? AND user_id = ?", questionID, userID).
		Delete(&questionModel.QuestionUpvote{})
	return result.RowsAffected, result.Error
}

// AdjustCount 调整冗余计数器
// 只允许在点赞事务内调用，别的路径一律不得碰 upvote_count
func (r *upvoteRepository) AdjustCount(tx *gorm.DB, questionID uint, delta int) error {
	if tx == nil {
		tx = r.db
	}
	return tx.Model(&questionModel.Question{}).
		Where("id = ?", questionID).
		UpdateColumn("upvote_count", gorm.Expr("upvote_count + ?", delta)).Error
}

// GetCount 读取冗余计数器
func (r *upvoteRepository) GetCount(questionID uint) (int, error) {
	var count int
	err := r.db.Model(&questionModel.Question{}).
		Select("upvote_count").
		Where("id = ?", questionID).
		Scan(&count).Error
	return count, err
}

// CountRows 统计点赞行数（计数器一致性校验用）
func (r *upvoteRepository) CountRows(questionID uint) (int64, error) {
	var count int64
	err := r.db.Model(&questionModel.QuestionUpvote{}).
		Where("question_id = ?", questionID).
		Count(&count).Error
	return count, err
}

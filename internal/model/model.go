package model

import (
	"gorm.io/gorm"
	"lecture-terrace/live-qa/internal/model/course"
	"lecture-terrace/live-qa/internal/model/question"
	"lecture-terrace/live-qa/internal/model/session"
	"lecture-terrace/live-qa/internal/model/user"
)

func InitTable(db *gorm.DB) error {
	// 自动迁移数据库表结构
	err := db.AutoMigrate(
		// 用户模型
		&user.User{},
		// 课程相关模型
		&course.Course{},
		&course.CourseEnrollment{},
		// 会话相关模型
		&session.Session{},
		&session.Slide{},
		// 问答相关模型
		&question.Question{},
		&question.Answer{},
		&question.QuestionUpvote{},
	)
	if err != nil {
		return err
	}
	return nil
}

package upvote

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"lecture-terrace/live-qa/internal/question"
	"lecture-terrace/live-qa/internal/session"
)

// SetupUpvoteRoutes 注册点赞相关路由
func SetupUpvoteRoutes(router *gin.RouterGroup, db *gorm.DB, gate *session.Gate) {
	repo := NewUpvoteRepository(db)
	questionRepo := question.NewQuestionRepository(db)
	service := NewUpvoteService(repo, questionRepo, gate, db)
	handler := NewUpvoteHandler(service)

	questions := router.Group("/questions")
	{
		questions.POST("/:id/upvote", handler.ToggleUpvote)
	}
}

package question

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"lecture-terrace/live-qa/internal/permission"
	"lecture-terrace/live-qa/internal/session"
)

// SetupQuestionRoutes 注册提问相关路由
func SetupQuestionRoutes(router *gin.RouterGroup, db *gorm.DB, gate *session.Gate, perm *permission.PermissionService) {
	repo := NewQuestionRepository(db)
	sessionRepo := session.NewSessionRepository(db)
	service := NewQuestionService(repo, sessionRepo, gate, perm)
	handler := NewQuestionHandler(service)

	sessions := router.Group("/sessions")
	{
		sessions.GET("/:id/questions", handler.ListSessionQuestions)
		sessions.POST("/:id/questions", handler.CreateQuestion)
	}

	questions := router.Group("/questions")
	{
		questions.PATCH("/:id/resolve", handler.ResolveQuestion)
	}
}

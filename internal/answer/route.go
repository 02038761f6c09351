package answer

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"lecture-terrace/live-qa/internal/permission"
	"lecture-terrace/live-qa/internal/question"
	"lecture-terrace/live-qa/internal/ratelimit"
	"lecture-terrace/live-qa/internal/session"
)

// SetupAnswerRoutes 注册回答相关路由
func SetupAnswerRoutes(router *gin.RouterGroup, db *gorm.DB, gate *session.Gate,
	perm *permission.PermissionService, limiter ratelimit.Limiter, limits RateLimitOptions) {
	repo := NewAnswerRepository(db)
	questionRepo := question.NewQuestionRepository(db)
	service := NewAnswerService(repo, questionRepo, gate, perm, limiter, limits, db)
	handler := NewAnswerHandler(service)

	questions := router.Group("/questions")
	{
		questions.GET("/:id/answers", handler.ListAnswers)
		questions.POST("/:id/answers", handler.SubmitAnswer)
	}

	answers := router.Group("/answers")
	{
		answers.PATCH("/:id/accept", handler.AcceptAnswer)
	}
}

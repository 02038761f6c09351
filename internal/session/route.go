package session

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"lecture-terrace/live-qa/internal/permission"
)

// SetupSessionRoutes 注册会话相关路由
func SetupSessionRoutes(router *gin.RouterGroup, db *gorm.DB, perm *permission.PermissionService) {
	repo := NewSessionRepository(db)
	service := NewSessionService(repo, perm)
	handler := NewSessionHandler(service)

	sessions := router.Group("/sessions")
	{
		sessions.POST("", handler.CreateSession)
		sessions.GET("/join/:code", handler.GetSessionByJoinCode)
		sessions.GET("/:id", handler.GetSession)
		sessions.PATCH("/:id/status", handler.SetStatus)
		sessions.PATCH("/:id/submissions", handler.SetSubmissions)
		sessions.POST("/:id/slides", handler.AddSlide)
		sessions.GET("/:id/slides", handler.ListSlides)
	}
}

package route

import (
	"os"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"lecture-terrace/live-qa/config"
	"lecture-terrace/live-qa/internal/answer"
	"lecture-terrace/live-qa/internal/database"
	"lecture-terrace/live-qa/internal/middleware"
	"lecture-terrace/live-qa/internal/permission"
	"lecture-terrace/live-qa/internal/question"
	"lecture-terrace/live-qa/internal/ratelimit"
	"lecture-terrace/live-qa/internal/session"
	"lecture-terrace/live-qa/internal/upvote"
)

func initRoute(r *gin.Engine) {
	db := database.GetDB()

	// 共享依赖
	perm := permission.NewPermissionService(db)
	gate := session.NewGate(config.Conf.QA.AllowBeforeStart)
	limiter := ratelimit.NewRedisLimiter(database.RedisDB,
		time.Duration(config.Conf.RateLimit.TimeoutMillis)*time.Millisecond)
	limits := answer.RateLimitOptions{
		MaxCount:      config.Conf.RateLimit.AnswerMaxCount,
		WindowSeconds: config.Conf.RateLimit.AnswerWindowSeconds,
		FailOpen:      config.Conf.RateLimit.FailOpen,
	}

	// 所有问答接口都要求已认证
	api := r.Group("/api")
	api.Use(middleware.JWTAuth())

	session.SetupSessionRoutes(api, db, perm)
	question.SetupQuestionRoutes(api, db, gate, perm)
	upvote.SetupUpvoteRoutes(api, db, gate)
	answer.SetupAnswerRoutes(api, db, gate, perm, limiter, limits)
}

func SetupRouter() *gin.Engine {
	r := gin.Default()

	origin := os.Getenv("FRONTEND_URL")
	if origin == "" {
		origin = "http://localhost:5173" // 默认值
	}

	// 设置跨域请求
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{origin},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		AllowCredentials: true,
	}))

	initRoute(r)

	return r
}

package app

import (
	"finlit_backend/docs"
	"finlit_backend/internal/config"
	"finlit_backend/internal/middleware"
	"finlit_backend/internal/model"
	"finlit_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, repos *repositories, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/api"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	// 1. 公共路由(无需登录)
	a.registerPublicRoutes(router, c)

	// 2. 社区动态
	a.registerStoryRoutes(router, c, repos)

	// 3. 需要授权的路由
	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(cfg), middleware.ActivityMiddleware(repos.user))
	{
		a.registerLessonRoutes(authGroup, c)
		a.registerUserRoutes(authGroup, c)
	}

	// 4. 管理员接口
	admin := router.Group("/api/admin")
	admin.Use(middleware.AuthMiddleware(cfg), middleware.RoleMiddleware(model.Admin))
	{
		admin.GET("/users/:id/overview", c.user.GetUserOverview)
	}
}

func (a *App) registerPublicRoutes(router *gin.Engine, c *controllers) {
	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)
		public.POST("/register", c.auth.Register)
		public.POST("/login", c.auth.Login)

		// 课程目录与职业信息允许游客浏览
		public.GET("/lessons", c.lesson.GetLessons)
		public.GET("/careers", c.career.GetCareers)
		public.GET("/careers/:id", c.career.GetCareer)
		public.GET("/cost-of-living", c.career.GetCostOfLiving)
		public.GET("/leaderboard", c.user.GetLeaderboard)
	}
}

func (a *App) registerStoryRoutes(router *gin.Engine, c *controllers, repos *repositories) {
	stories := router.Group("/api/stories")
	{
		// 列表类：可选认证，登录用户可见自己的点赞状态
		stories.GET("", middleware.TryAuthMiddleware(a.Config), c.story.GetStories)
		stories.GET("/:id", middleware.TryAuthMiddleware(a.Config), c.story.GetStory)
		stories.GET("/:id/comments", middleware.TryAuthMiddleware(a.Config), c.story.GetComments)

		// 交互类：强制认证
		authorized := stories.Group("")
		authorized.Use(middleware.AuthMiddleware(a.Config), middleware.ActivityMiddleware(repos.user))
		{
			authorized.POST("", c.story.CreateStory)
			authorized.DELETE("/:id", c.story.DeleteStory)
			authorized.POST("/:id/comments", c.story.CreateComment)
			authorized.POST("/:id/like", c.story.ToggleLike)
			authorized.POST("/media", c.story.UploadMedia)
		}
	}
}

func (a *App) registerLessonRoutes(rg *gin.RouterGroup, c *controllers) {
	rg.GET("/lessons/progress", c.lesson.GetProgress)
	rg.GET("/lessons/:id", c.lesson.GetLesson)

	// 测验状态机
	rg.POST("/lessons/:id/quiz/start", c.quiz.StartQuiz)
	rg.GET("/lessons/:id/quiz", c.quiz.GetAttempt)
	rg.DELETE("/lessons/:id/quiz", c.quiz.Abandon)
	rg.POST("/lessons/:id/quiz/answer", c.quiz.Answer)
	rg.POST("/lessons/:id/quiz/next", c.quiz.Next)
	rg.POST("/lessons/:id/quiz/previous", c.quiz.Previous)
	rg.POST("/lessons/:id/quiz/submit", c.quiz.Submit)
	rg.POST("/lessons/:id/quiz/retake", c.quiz.Retake)
	rg.GET("/lessons/:id/quiz/review/:questionId", c.quiz.ReviewIncorrect)
}

func (a *App) registerUserRoutes(rg *gin.RouterGroup, c *controllers) {
	rg.GET("/user/profile", c.user.GetProfile)
	rg.PUT("/user/profile", c.user.UpdateProfile)
	rg.POST("/user/avatar", c.user.UploadAvatar)
	rg.GET("/user/quiz-history", c.user.GetQuizHistory)
}

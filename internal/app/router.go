package app

import (
	"nihongo_edu_backend/docs"
	"nihongo_edu_backend/internal/config"
	"nihongo_edu_backend/internal/middleware"
	"nihongo_edu_backend/internal/model"

	"nihongo_edu_backend/pkg/monitoring"

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

	// 2. 需要授权的路由
	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(cfg), middleware.ActivityMiddleware(repos.user))
	{
		// 学员/通用 授权接口
		a.registerLearnerRoutes(authGroup, c)

		// 教师相关接口
		a.registerTeacherRoutes(authGroup, c)

		// 管理员相关接口
		a.registerAdminRoutes(authGroup, c)
	}
}

func (a *App) registerPublicRoutes(router *gin.Engine, c *controllers) {
	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)
		public.POST("/register", c.auth.Register)
		public.POST("/login", c.auth.Login)
	}
}

func (a *App) registerLearnerRoutes(rg *gin.RouterGroup, c *controllers) {
	rg.GET("/profile", c.auth.GetProfile)
	rg.PUT("/profile", c.auth.UpdateProfile)
	rg.POST("/profile/avatar", c.auth.UploadAvatar)
	rg.GET("/motivation/current", c.motivation.GetCurrent)

	// 课程视频
	rg.GET("/lessons", c.content.ListLessons)
	rg.GET("/lessons/:id", c.content.GetLesson)

	// 评估会话
	sessions := rg.Group("/sessions")
	{
		sessions.POST("/start", c.session.StartSession)
		sessions.GET("/current", c.session.GetCurrentSession)
		sessions.POST("/answer", c.session.SubmitAnswer)
		sessions.POST("/continue", c.session.ContinueSession)
	}

	// 掌握度
	mastery := rg.Group("/mastery")
	{
		mastery.GET("/scores", c.mastery.GetScores)
		mastery.GET("/report", c.mastery.GetReport)
	}
}

func (a *App) registerTeacherRoutes(rg *gin.RouterGroup, c *controllers) {
	teacher := rg.Group("/teacher")
	teacher.Use(middleware.RoleMiddleware(model.Teacher))
	{
		// 题库管理
		teacher.POST("/syllabus", c.syllabus.CreateQuestion)
		teacher.GET("/syllabus", c.syllabus.ListQuestions)
		teacher.GET("/syllabus/:id", c.syllabus.GetQuestion)
		teacher.PUT("/syllabus/:id", c.syllabus.UpdateQuestion)
		teacher.DELETE("/syllabus/:id", c.syllabus.DeleteQuestion)

		// 课程视频管理
		teacher.POST("/lessons", c.content.UploadLesson)
		teacher.DELETE("/lessons/:id", c.content.DeleteLesson)

		// 学员进度
		teacher.GET("/learners/:id/report", c.mastery.GetLearnerReport)
	}
}

func (a *App) registerAdminRoutes(rg *gin.RouterGroup, c *controllers) {
	admin := rg.Group("/admin")
	admin.Use(middleware.RoleMiddleware(model.Admin))
	{
		admin.GET("/users", c.user.GetUsers)
		admin.PUT("/users/:id", c.user.UpdateUser)
		admin.DELETE("/users/:id", c.user.DeleteUser)
		admin.POST("/users/:id/reset-password", c.user.ResetPassword)
		admin.POST("/users/:id/disable", c.user.DisableUser)

		admin.GET("/motivations", c.motivation.ListMotivations)
		admin.POST("/motivations", c.motivation.CreateMotivation)
		admin.PUT("/motivations/:id", c.motivation.UpdateMotivation)
		admin.DELETE("/motivations/:id", c.motivation.DeleteMotivation)
	}
}

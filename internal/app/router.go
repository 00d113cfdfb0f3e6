package app

import (
	"survey_backend/docs"
	"survey_backend/internal/config"
	"survey_backend/internal/middleware"
	"survey_backend/internal/model"
	"survey_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = cfg.Server.BasePath
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	// 1. 公共路由(无需登录)
	router.GET("/api/health", c.health.HealthCheck)

	// 2. 需要授权的路由
	api := router.Group(cfg.Server.BasePath)
	api.Use(middleware.AuthMiddleware(cfg.JWT.Secret, cfg.JWT.Issuer))
	{
		a.registerSurveyRoutes(api, c)
	}
}

func (a *App) registerSurveyRoutes(rg *gin.RouterGroup, c *controllers) {
	can := func(perm model.Permission) gin.HandlerFunc {
		return middleware.RequirePermission(a.Policy, perm)
	}

	surveys := rg.Group("/surveys")
	{
		surveys.POST("", can(model.PermSurveyCreate), c.survey.CreateSurvey)
		surveys.GET("", can(model.PermSurveyRead), c.survey.ListSurveys)
		surveys.GET("/:id", can(model.PermSurveyRead), c.survey.GetSurvey)
		surveys.DELETE("/:id", can(model.PermSurveyDelete), c.survey.DeleteSurvey)

		// 答卷
		surveys.POST("/:id/response", can(model.PermSurveyRespond), c.survey.SubmitResponse)
		surveys.GET("/:id/responses", can(model.PermSurveyResultsRead), c.survey.ListResponses)

		// 结果
		surveys.GET("/:id/results", can(model.PermSurveyResultsRead), c.survey.GetResults)
		surveys.GET("/:id/results/export", can(model.PermSurveyResultsRead), c.survey.ExportResults)
		surveys.POST("/:id/results/archive", can(model.PermSurveyResultsRead), c.survey.ArchiveResults)
	}
}

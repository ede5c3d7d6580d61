package api

import (
	"github.com/gin-gonic/gin"

	"resumePreview/internal/api/middleware"
	"resumePreview/internal/database"
)

// RegisterRoutes 注册 /v1 下的全部路由。
func RegisterRoutes(router *gin.Engine, deps Deps) {
	cfg := deps.Config
	store := database.NewResumeStore(deps.DB)
	photos := newPhotoLinker(deps.Storage, cfg.Preview.PhotoURLTTL, deps.Logger)

	authHandler := NewAuthHandler(deps.DB, deps.Auth, deps.Redis, deps.Logger, cfg.Limits, cfg.API.CookieDomain)
	templateHandler := NewTemplateHandler(deps.Logger)
	previewHandler := NewPreviewHandler(store, photos, deps.Logger)
	liveHandler := NewLiveHandler(deps.Redis, deps.Auth, deps.Blobs, photos, deps.Logger, cfg.API.AllowedOrigins, cfg.Preview.MaxMessageBytes)
	blobHandler := NewBlobHandler(deps.Blobs)
	resumeHandler := NewResumeHandler(store, deps.Queue, deps.Storage, deps.Logger, cfg.Limits.MaxResumesPerUser, cfg.Worker.MaxRetry, cfg.Preview.DownloadLinkTTL)
	assetHandler := NewAssetHandler(deps.Storage, deps.Redis, deps.Scanner, deps.Logger, cfg.Limits, cfg.Preview.PhotoURLTTL)
	authMiddleware := middleware.AuthMiddleware(deps.Auth)

	router.GET(livePreviewRoute, liveHandler.HandleConnection)

	v1 := router.Group("/v1")
	{
		authGroup := v1.Group("/auth")
		{
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/login", authHandler.Login)
			authGroup.POST("/refresh", authHandler.Refresh)
			authGroup.POST("/logout", authHandler.Logout)
		}

		templateGroup := v1.Group("/templates")
		{
			templateGroup.GET("", templateHandler.ListTemplates)
			templateGroup.GET("/:id", templateHandler.GetTemplate)
			templateGroup.GET("/:id/preview", templateHandler.PreviewTemplate)
		}

		v1.POST("/preview", authMiddleware, previewHandler.RenderRecord)
		v1.GET("/blobs/:ref", blobHandler.ServeBlob)

		resumeGroup := v1.Group("/resumes")
		resumeGroup.Use(authMiddleware)
		{
			resumeGroup.POST("", resumeHandler.CreateResume)
			resumeGroup.GET("", resumeHandler.ListResumes)
			resumeGroup.GET("/:id", resumeHandler.GetResume)
			resumeGroup.PUT("/:id", resumeHandler.UpdateResume)
			resumeGroup.DELETE("/:id", resumeHandler.DeleteResume)
			resumeGroup.PUT("/:id/template", resumeHandler.SelectTemplate)
			resumeGroup.GET("/:id/preview", previewHandler.RenderResume)
			resumeGroup.POST("/:id/export", resumeHandler.ExportResume)
			resumeGroup.GET("/:id/download-link", resumeHandler.GetDownloadLink)
		}

		assetGroup := v1.Group("/assets")
		assetGroup.Use(authMiddleware)
		{
			assetGroup.POST("/photo", assetHandler.UploadPhoto)
			assetGroup.GET("/photo", assetHandler.GetPhotoURL)
		}
	}
}

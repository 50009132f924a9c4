package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/redisplay/simple-gallery/internal/config"
	"github.com/redisplay/simple-gallery/internal/middleware"
	"github.com/redisplay/simple-gallery/internal/tenant"
)

type HandlerSet struct {
	log      zerolog.Logger
	cfg      *config.AppConfig
	registry *tenant.Registry
}

func NewHandlerSet(log zerolog.Logger, cfg *config.AppConfig, registry *tenant.Registry) HandlerSet {
	return HandlerSet{
		log:      log,
		cfg:      cfg,
		registry: registry,
	}
}

func (h HandlerSet) Register(router *gin.RouterGroup) {
	router.GET("/healthz", h.Health)

	v1 := router.Group("/v1")
	g := v1.Group("/g/:gallery", middleware.Gallery(h.registry, h.log))

	g.POST("/auth/login", h.Login)

	viewer := g.Group("", middleware.ViewerAuth())
	viewer.GET("/next", h.DeliverNext)
	viewer.GET("/pictures/:id/file", h.PictureFile)

	admin := g.Group("", middleware.AdminAuth(h.cfg))
	admin.PUT("/auth/password", h.ChangePassword)
	admin.GET("/pictures", h.ListPictures)
	admin.POST("/pictures", h.UploadPicture)
	admin.GET("/pictures/:id", h.GetPicture)
	admin.PATCH("/pictures/:id", h.PatchPicture)
	admin.DELETE("/pictures/:id", h.DeletePicture)
	admin.GET("/tags", h.ListTags)
	admin.GET("/settings/max-resolution", h.GetMaxResolution)
	admin.PUT("/settings/max-resolution", h.SetMaxResolution)
	admin.GET("/tokens", h.ListTokens)
	admin.POST("/tokens", h.CreateToken)
	admin.DELETE("/tokens/:token", h.DeleteToken)
}

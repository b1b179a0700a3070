package http

import (
	"github.com/aseptimu/codepool-shortener/internal/app/config"
	"github.com/aseptimu/codepool-shortener/internal/app/handlers/http/adminhandlers"
	"github.com/aseptimu/codepool-shortener/internal/app/handlers/http/dbhandlers"
	"github.com/aseptimu/codepool-shortener/internal/app/handlers/http/shortenurlhandlers"
	"github.com/aseptimu/codepool-shortener/internal/app/middleware"
	"github.com/aseptimu/codepool-shortener/internal/app/service"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Handlers interface {
	RegisterRoutes(r *gin.Engine)
}

type handlersImpl struct {
	cfg          *config.ConfigType
	urlSvc       service.URLShortener
	urlGetSvc    service.URLResolver
	urlDeleteSvc service.URLDeleter
	statsSvc     adminhandlers.StatsGetter
	resyncSvc    adminhandlers.Resyncer
	pinger       dbhandlers.Pinger
	logger       *zap.SugaredLogger
}

func New(
	cfg *config.ConfigType,
	urlSvc service.URLShortener,
	urlGetSvc service.URLResolver,
	urlDeleteSvc service.URLDeleter,
	statsSvc adminhandlers.StatsGetter,
	resyncSvc adminhandlers.Resyncer,
	pinger dbhandlers.Pinger,
	logger *zap.SugaredLogger,
) Handlers {
	return &handlersImpl{
		cfg:          cfg,
		urlSvc:       urlSvc,
		urlGetSvc:    urlGetSvc,
		urlDeleteSvc: urlDeleteSvc,
		statsSvc:     statsSvc,
		resyncSvc:    resyncSvc,
		pinger:       pinger,
		logger:       logger,
	}
}

func (h *handlersImpl) RegisterRoutes(r *gin.Engine) {
	shorten := shortenurlhandlers.NewShortenHandler(h.cfg, h.urlSvc, h.logger)
	admin := adminhandlers.NewAdminHandler(h.cfg, h.statsSvc, h.resyncSvc, h.urlDeleteSvc, h.logger)

	r.GET("/ping", dbhandlers.NewPingHandler(h.pinger).Ping)
	r.GET("/:code", shortenurlhandlers.NewGetURLHandler(h.cfg, h.urlGetSvc, h.logger).GetURL)
	r.POST("/", shorten.URLCreator)
	r.POST("/shorten", shorten.Shorten)
	r.POST("/api/shorten", shorten.URLCreatorJSON)

	internal := r.Group("/api/internal", middleware.TrustedSubnet(h.cfg.TrustedSubnet, h.logger))
	internal.GET("/stats", admin.GetStats)
	internal.POST("/sync", admin.Resync)
	internal.DELETE("/urls/:code", admin.DeleteURL)
}

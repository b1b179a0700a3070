// Package adminhandlers содержит служебные хендлеры, доступные только из доверенной подсети.
package adminhandlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/aseptimu/codepool-shortener/internal/app/config"
	"github.com/aseptimu/codepool-shortener/internal/app/service"
	"github.com/aseptimu/codepool-shortener/internal/app/utils"
	"github.com/aseptimu/codepool-shortener/internal/app/workers"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type StatsGetter interface {
	GetStats(ctx context.Context) (service.StatsDTO, error)
}

type Resyncer interface {
	Resync(ctx context.Context) (service.SyncResult, error)
}

// Stats - ответ GET /api/internal/stats.
type Stats struct {
	URLs               int   `json:"urls"`
	PoolSize           int   `json:"pool_size"`
	Counter            int64 `json:"counter"`
	PendingReplication int   `json:"pending_replication"`
}

type AdminHandler struct {
	cfg     *config.ConfigType
	stats   StatsGetter
	resync  Resyncer
	deleter service.URLDeleter
	logger  *zap.SugaredLogger
}

func NewAdminHandler(cfg *config.ConfigType, stats StatsGetter, resync Resyncer, deleter service.URLDeleter, logger *zap.SugaredLogger) *AdminHandler {
	return &AdminHandler{cfg: cfg, stats: stats, resync: resync, deleter: deleter, logger: logger}
}

// GetStats возвращает размер пула, счётчик, число связок и длину очереди репликации.
func (h *AdminHandler) GetStats(c *gin.Context) {
	utils.LogRequest(c, h.logger)

	stats, err := h.stats.GetStats(c.Request.Context())
	if err != nil {
		h.logger.Errorw("Failed to get stats", "error", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, Stats{
		URLs:               stats.URLs,
		PoolSize:           stats.PoolSize,
		Counter:            stats.Counter,
		PendingReplication: stats.PendingReplication,
	})
}

// Resync дожидается очереди репликации, перезаписывает быстрое хранилище из основного
// и пересобирает пул.
func (h *AdminHandler) Resync(c *gin.Context) {
	utils.LogRequest(c, h.logger)

	ctx := c.Request.Context()
	if timeout := h.cfg.Replication.DrainTimeout; timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	result, err := h.resync.Resync(ctx)
	switch {
	case errors.Is(err, workers.ErrDrainTimeout):
		c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	case err != nil:
		c.AbortWithStatusJSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"mappings": result.Mappings, "settings": result.Settings})
}

// DeleteURL удаляет связку по коду. Ответ 202: удаление в основном хранилище асинхронное.
func (h *AdminHandler) DeleteURL(c *gin.Context) {
	utils.LogRequest(c, h.logger)

	code := c.Param("code")
	if !utils.IsValidCode(code, h.cfg.Pool.CodeLength) {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid code"})
		return
	}

	if err := h.deleter.DeleteURL(c.Request.Context(), code); err != nil {
		h.logger.Errorw("Failed to delete URL", "code", code, "error", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusAccepted)
}

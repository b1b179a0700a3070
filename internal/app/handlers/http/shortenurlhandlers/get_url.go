package shortenurlhandlers

import (
	"errors"
	"net/http"

	"github.com/aseptimu/codepool-shortener/internal/app/config"
	"github.com/aseptimu/codepool-shortener/internal/app/service"
	"github.com/aseptimu/codepool-shortener/internal/app/utils"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// GetURLHandler обрабатывает перенаправление на исходный URL.
type GetURLHandler struct {
	cfg     *config.ConfigType
	service service.URLResolver
	logger  *zap.SugaredLogger
}

// NewGetURLHandler создаёт новый экземпляр GetURLHandler.
func NewGetURLHandler(cfg *config.ConfigType, service service.URLResolver, logger *zap.SugaredLogger) *GetURLHandler {
	return &GetURLHandler{cfg: cfg, service: service, logger: logger}
}

// GetURL перенаправляет клиента на исходный URL.
// Код неправильной формы даёт 400, неизвестный код - 404.
func (h *GetURLHandler) GetURL(c *gin.Context) {
	utils.LogRequest(c, h.logger)

	code := c.Param("code")
	if !utils.IsValidCode(code, h.cfg.Pool.CodeLength) {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid code"})
		return
	}

	originalURL, err := h.service.Resolve(c.Request.Context(), code)
	switch {
	case errors.Is(err, service.ErrURLNotFound):
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	case err != nil:
		h.logger.Errorw("Failed to resolve code", "code", code, "error", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.Header("Location", originalURL)
	c.Header("Content-Type", "text/plain")
	c.String(http.StatusTemporaryRedirect, originalURL)
}

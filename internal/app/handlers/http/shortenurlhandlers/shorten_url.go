// Package shortenurlhandlers содержит HTTP-хендлеры для операций с короткими URL.
package shortenurlhandlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/aseptimu/codepool-shortener/internal/app/config"
	"github.com/aseptimu/codepool-shortener/internal/app/service"
	"github.com/aseptimu/codepool-shortener/internal/app/utils"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

var errInvalidURL = errors.New("invalid URL")

// ShortenHandler обрабатывает создание коротких ссылок
// в текстовом и JSON-форматах.
type ShortenHandler struct {
	cfg     *config.ConfigType
	Service service.URLShortener
	logger  *zap.SugaredLogger
}

// NewShortenHandler создаёт новый ShortenHandler,
// принимая конфиг, URLShortener и SugaredLogger.
func NewShortenHandler(cfg *config.ConfigType, service service.URLShortener, logger *zap.SugaredLogger) *ShortenHandler {
	return &ShortenHandler{cfg: cfg, Service: service, logger: logger}
}

type shortenRequest struct {
	URL string `json:"url"`
}

// URLCreator обрабатывает POST /
// Читает из тела запроса plain-text URL, сокращает его
// и возвращает новый короткий URL в виде text/plain.
func (h *ShortenHandler) URLCreator(c *gin.Context) {
	utils.LogRequest(c, h.logger)

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Failed to read body"})
		return
	}

	code, status, err := h.shorten(c, strings.TrimSpace(string(body)))
	if err != nil {
		c.AbortWithStatusJSON(status, gin.H{"error": err.Error()})
		return
	}

	c.Header("Content-Type", "text/plain")
	c.String(http.StatusCreated, h.shortURL(code))
}

// URLCreatorJSON обрабатывает POST /api/shorten
// Принимает JSON {"url": "..."} и возвращает JSON {"result": "..."}.
func (h *ShortenHandler) URLCreatorJSON(c *gin.Context) {
	utils.LogRequest(c, h.logger)

	req, ok := h.decode(c)
	if !ok {
		return
	}

	code, status, err := h.shorten(c, req.URL)
	if err != nil {
		c.AbortWithStatusJSON(status, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"result": h.shortURL(code)})
}

// Shorten обрабатывает POST /shorten
// Принимает JSON {"url": "..."} и возвращает JSON {"short_url": "..."}.
func (h *ShortenHandler) Shorten(c *gin.Context) {
	utils.LogRequest(c, h.logger)

	req, ok := h.decode(c)
	if !ok {
		return
	}

	code, status, err := h.shorten(c, req.URL)
	if err != nil {
		c.AbortWithStatusJSON(status, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"short_url": h.shortURL(code)})
}

func (h *ShortenHandler) decode(c *gin.Context) (shortenRequest, bool) {
	var req shortenRequest
	if err := json.NewDecoder(c.Request.Body).Decode(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON format"})
		return req, false
	}
	return req, true
}

// shorten проверяет целевой URL и выдаёт под него код. Возвращает HTTP-статус для ошибки.
func (h *ShortenHandler) shorten(c *gin.Context, raw string) (string, int, error) {
	if !validTarget(raw) {
		return "", http.StatusBadRequest, errInvalidURL
	}

	code, err := h.Service.AllocateAndBind(c.Request.Context(), raw)
	switch {
	case err == nil:
		return code, http.StatusCreated, nil
	case errors.Is(err, service.ErrPoolExhausted), errors.Is(err, service.ErrCodeCollision):
		h.logger.Errorw("Failed to allocate code", "error", err)
		return "", http.StatusServiceUnavailable, err
	default:
		h.logger.Errorw("Failed to shorten URL", "url", raw, "error", err)
		return "", http.StatusInternalServerError, err
	}
}

func (h *ShortenHandler) shortURL(code string) string {
	return strings.TrimRight(h.cfg.BaseAddress, "/") + "/" + code
}

func validTarget(raw string) bool {
	u, err := url.ParseRequestURI(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

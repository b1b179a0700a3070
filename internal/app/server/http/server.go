// Package http настраивает маршруты, middleware и запускает HTTP-сервер.
package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	handlers "github.com/aseptimu/codepool-shortener/internal/app/handlers/http"
	"github.com/aseptimu/codepool-shortener/internal/app/middleware"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Server struct {
	srv    *http.Server
	logger *zap.SugaredLogger
}

// NewRouter собирает gin.Engine с middleware и маршрутами h.
func NewRouter(logger *zap.SugaredLogger, h handlers.Handlers) *gin.Engine {
	r := gin.New()
	logger.Debug("Setting up middleware")
	r.Use(gin.Recovery(), middleware.MiddlewareLogger(logger), middleware.Gzip())
	h.RegisterRoutes(r)
	return r
}

func NewServer(addr string, logger *zap.SugaredLogger, h handlers.Handlers) *Server {
	gin.SetMode(gin.ReleaseMode)
	return &Server{
		srv:    &http.Server{Addr: addr, Handler: NewRouter(logger, h)},
		logger: logger,
	}
}

// Run запускает сервер и блокируется, пока он не остановлен.
// После отмены ctx сервер перестаёт принимать соединения и до shutdownTimeout ждёт текущие запросы.
func (s *Server) Run(ctx context.Context, shutdownTimeout time.Duration) error {
	s.logger.Infow("Starting HTTP server", "addr", s.srv.Addr)

	errCh := make(chan error, 1)
	go func() {
		errCh <- s.srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Infow("Shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.srv.Shutdown(shutdownCtx); err != nil {
		s.logger.Errorw("Error shutting down server", "error", err)
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

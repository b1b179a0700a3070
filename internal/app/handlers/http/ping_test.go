package http

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/aseptimu/codepool-shortener/internal/app/handlers/http/dbhandlers"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

type fakeDB struct {
	err error
}

func (f *fakeDB) Ping(_ context.Context) error {
	return f.err
}

func TestPing_NoStorage(t *testing.T) {
	handler := dbhandlers.NewPingHandler(nil)
	router := gin.New()
	router.GET("/ping", handler.Ping)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	router.ServeHTTP(w, req)

	res := w.Result()
	defer res.Body.Close()

	assert.Equal(t, http.StatusServiceUnavailable, res.StatusCode)
	body, _ := io.ReadAll(res.Body)
	assert.JSONEq(t, `{"error":"Storage is not configured"}`, string(body))
}

func TestPing_StoreFails(t *testing.T) {
	handler := dbhandlers.NewPingHandler(&fakeDB{err: errors.New("fast store: database is closed")})
	router := gin.New()
	router.GET("/ping", handler.Ping)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	router.ServeHTTP(w, req)

	res := w.Result()
	defer res.Body.Close()

	assert.Equal(t, http.StatusInternalServerError, res.StatusCode)
	body, _ := io.ReadAll(res.Body)
	assert.JSONEq(t, `{"error":"fast store: database is closed"}`, string(body))
}

func TestPing_OK(t *testing.T) {
	handler := dbhandlers.NewPingHandler(&fakeDB{err: nil})
	router := gin.New()
	router.GET("/ping", handler.Ping)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	router.ServeHTTP(w, req)

	res := w.Result()
	defer res.Body.Close()

	assert.Equal(t, http.StatusOK, res.StatusCode)
	body, _ := io.ReadAll(res.Body)
	assert.Empty(t, string(body))
}

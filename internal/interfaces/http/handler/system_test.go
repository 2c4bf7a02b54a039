package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func newSystemRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewSystemHandler(nil, "1.2.3", zap.NewNop())

	engine := gin.New()
	h.RegisterHealthRoute(engine)
	api := engine.Group("/api/v1")
	h.RegisterRoutes(api)
	return engine
}

func TestSystemHandler_Ping(t *testing.T) {
	engine := newSystemRouter()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/ping", nil)
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "pong")
}

func TestSystemHandler_Health(t *testing.T) {
	engine := newSystemRouter()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"ok"`)
}

func TestSystemHandler_Info(t *testing.T) {
	engine := newSystemRouter()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/system/info", nil)
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"version":"1.2.3"`)
	assert.Contains(t, w.Body.String(), "wikiboard-backend")
}

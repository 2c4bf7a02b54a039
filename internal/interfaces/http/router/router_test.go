package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

type pingRegistrar struct {
	registered bool
}

func (p *pingRegistrar) RegisterRoutes(rg *gin.RouterGroup) {
	p.registered = true
	rg.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})
}

func TestRouter_Setup(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("registers routes under the default version", func(t *testing.T) {
		engine := gin.New()
		registrar := &pingRegistrar{}

		NewRouter(engine).Register(registrar).Setup()

		assert.True(t, registrar.registered)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/v1/ping", nil)
		engine.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("honours a custom API version", func(t *testing.T) {
		engine := gin.New()

		NewRouter(engine, WithAPIVersion("v2")).Register(&pingRegistrar{}).Setup()

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/v2/ping", nil)
		engine.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)

		missed := httptest.NewRecorder()
		reqV1 := httptest.NewRequest(http.MethodGet, "/api/v1/ping", nil)
		engine.ServeHTTP(missed, reqV1)
		assert.Equal(t, http.StatusNotFound, missed.Code)
	})

	t.Run("supports multiple registrars", func(t *testing.T) {
		engine := gin.New()
		first := &pingRegistrar{}

		r := NewRouter(engine)
		r.Register(first)
		r.Setup()

		assert.Equal(t, "v1", r.APIVersion())
		assert.True(t, first.registered)
	})
}

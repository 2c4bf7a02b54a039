package handler

import (
	"github.com/gin-gonic/gin"
	appgam "github.com/wikiboard/backend/internal/application/gamification"
	"go.uber.org/zap"
)

// LevelHandler serves the public level curve
type LevelHandler struct {
	BaseHandler
	xpService *appgam.XPService
}

// NewLevelHandler creates a new level handler
func NewLevelHandler(xpService *appgam.XPService, logger *zap.Logger) *LevelHandler {
	return &LevelHandler{
		BaseHandler: NewBaseHandler(logger),
		xpService:   xpService,
	}
}

// RegisterRoutes registers level routes on the API group
func (h *LevelHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/levels", h.List)
}

// List returns the full level curve
func (h *LevelHandler) List(c *gin.Context) {
	h.Success(c, h.xpService.Levels())
}

package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	appgam "github.com/wikiboard/backend/internal/application/gamification"
	"github.com/wikiboard/backend/internal/interfaces/http/middleware"
	"go.uber.org/zap"
)

// AdminXPHandler handles the admin XP adjustment endpoint
type AdminXPHandler struct {
	BaseHandler
	xpService *appgam.XPService
}

// NewAdminXPHandler creates a new admin XP handler
func NewAdminXPHandler(xpService *appgam.XPService, logger *zap.Logger) *AdminXPHandler {
	return &AdminXPHandler{
		BaseHandler: NewBaseHandler(logger),
		xpService:   xpService,
	}
}

// RegisterRoutes registers admin XP routes on the API group.
// RequireAdmin runs before the handler, so a non-admin caller gets 403
// before the payload is even parsed.
func (h *AdminXPHandler) RegisterRoutes(rg *gin.RouterGroup) {
	admin := rg.Group("/admin", middleware.RequireAdmin())
	{
		admin.POST("/xp", h.AdjustXP)
	}
}

// AdjustXPRequest is the request body for an XP adjustment.
// XPAmount is a pointer so a missing field and an explicit zero are both
// caught: absent fails required, zero fails the ledger's nonzero rule.
type AdjustXPRequest struct {
	UserID      string `json:"user_id" binding:"required,uuid"`
	XPAmount    *int64 `json:"xp_amount" binding:"required"`
	Action      string `json:"action" binding:"required,max=100"`
	Description string `json:"description" binding:"omitempty,max=500"`
}

// AdjustXPResponse is the success payload of an XP adjustment
type AdjustXPResponse struct {
	NewXP        int64 `json:"new_xp"`
	NewLevel     int   `json:"new_level"`
	LevelChanged bool  `json:"level_changed"`
}

// AdjustXP applies a signed XP delta to a user through the ledger
func (h *AdminXPHandler) AdjustXP(c *gin.Context) {
	var req AdjustXPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		h.BadRequest(c, "user_id must be a valid UUID")
		return
	}

	result, err := h.xpService.RecordAdjustment(c.Request.Context(), appgam.RecordAdjustmentInput{
		UserID:      userID,
		Amount:      *req.XPAmount,
		Action:      req.Action,
		Description: req.Description,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, AdjustXPResponse{
		NewXP:        result.NewXP,
		NewLevel:     result.NewLevel,
		LevelChanged: result.LevelChanged,
	})
}

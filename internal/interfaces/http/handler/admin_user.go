package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	appgam "github.com/wikiboard/backend/internal/application/gamification"
	appidentity "github.com/wikiboard/backend/internal/application/identity"
	"github.com/wikiboard/backend/internal/interfaces/http/dto"
	"github.com/wikiboard/backend/internal/interfaces/http/middleware"
	"go.uber.org/zap"
)

// AdminUserHandler handles admin user management endpoints
type AdminUserHandler struct {
	BaseHandler
	userService *appidentity.UserService
	xpService   *appgam.XPService
}

// NewAdminUserHandler creates a new admin user handler
func NewAdminUserHandler(userService *appidentity.UserService, xpService *appgam.XPService, logger *zap.Logger) *AdminUserHandler {
	return &AdminUserHandler{
		BaseHandler: NewBaseHandler(logger),
		userService: userService,
		xpService:   xpService,
	}
}

// RegisterRoutes registers admin user routes on the API group
func (h *AdminUserHandler) RegisterRoutes(rg *gin.RouterGroup) {
	admin := rg.Group("/admin", middleware.RequireAdmin())
	{
		admin.GET("/users", h.List)
		admin.GET("/users/:id", h.Get)
		admin.PATCH("/users/:id", h.Update)
		admin.GET("/users/:id/xp-events", h.ListXPEvents)
	}
}

// ListUsersRequest is the query shape for the admin user listing
type ListUsersRequest struct {
	Search   string `form:"search" binding:"omitempty,max=200"`
	Role     string `form:"role" binding:"omitempty,oneof=admin member"`
	Status   string `form:"status" binding:"omitempty,oneof=active suspended"`
	Page     int    `form:"page,default=1" binding:"omitempty,min=1"`
	PageSize int    `form:"limit,default=20" binding:"omitempty,min=1,max=100"`
	SortBy   string `form:"sort_by" binding:"omitempty,max=50"`
	SortDir  string `form:"sort_dir" binding:"omitempty,oneof=asc desc ASC DESC"`
}

// UpdateUserRequest is the request body for admin user updates.
// Both fields are optional but at least one must be present.
type UpdateUserRequest struct {
	Role   *string `json:"role" binding:"omitempty,oneof=admin member"`
	Status *string `json:"status" binding:"omitempty,oneof=active suspended"`
}

// List returns a filtered, paginated user listing
func (h *AdminUserHandler) List(c *gin.Context) {
	var req ListUsersRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BindError(c, err)
		return
	}

	result, err := h.userService.List(c.Request.Context(), appidentity.ListUsersInput{
		Search:   req.Search,
		Role:     req.Role,
		Status:   req.Status,
		Page:     req.Page,
		PageSize: req.PageSize,
		SortBy:   req.SortBy,
		SortDir:  req.SortDir,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, result.Users, dto.Meta{
		Page:       result.Page,
		PageSize:   result.PageSize,
		Total:      result.Total,
		TotalPages: result.TotalPages,
	})
}

// Get returns one user by ID
func (h *AdminUserHandler) Get(c *gin.Context) {
	targetID, ok := h.pathUserID(c)
	if !ok {
		return
	}

	info, err := h.userService.Get(c.Request.Context(), targetID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, info)
}

// Update applies a partial role/status update to a user
func (h *AdminUserHandler) Update(c *gin.Context) {
	actorID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	targetID, ok := h.pathUserID(c)
	if !ok {
		return
	}

	var req UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	info, err := h.userService.Update(c.Request.Context(), appidentity.UpdateUserInput{
		ActorID:  actorID,
		TargetID: targetID,
		Role:     req.Role,
		Status:   req.Status,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, info)
}

// ListXPEvents returns a user's ledger history, newest first
func (h *AdminUserHandler) ListXPEvents(c *gin.Context) {
	targetID, ok := h.pathUserID(c)
	if !ok {
		return
	}

	var filter appgam.XPEventListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BindError(c, err)
		return
	}

	events, total, err := h.xpService.ListEvents(c.Request.Context(), targetID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize < 1 {
		pageSize = 20
	}

	h.SuccessWithMeta(c, events, listMeta(page, pageSize, total))
}

// pathUserID parses the :id path parameter or writes a 400
func (h *BaseHandler) pathUserID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "id must be a valid UUID")
		return uuid.Nil, false
	}
	return id, true
}

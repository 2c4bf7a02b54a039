package handler

import (
	"github.com/gin-gonic/gin"
	appgam "github.com/wikiboard/backend/internal/application/gamification"
	appidentity "github.com/wikiboard/backend/internal/application/identity"
	"github.com/wikiboard/backend/internal/interfaces/http/dto"
	"go.uber.org/zap"
)

// UserHandler handles self-service profile endpoints
type UserHandler struct {
	BaseHandler
	userService *appidentity.UserService
	xpService   *appgam.XPService
}

// NewUserHandler creates a new user handler
func NewUserHandler(userService *appidentity.UserService, xpService *appgam.XPService, logger *zap.Logger) *UserHandler {
	return &UserHandler{
		BaseHandler: NewBaseHandler(logger),
		userService: userService,
		xpService:   xpService,
	}
}

// RegisterRoutes registers profile routes on the API group
func (h *UserHandler) RegisterRoutes(rg *gin.RouterGroup) {
	me := rg.Group("/users/me")
	{
		me.GET("", h.GetProfile)
		me.PATCH("", h.UpdateProfile)
		me.GET("/progress", h.GetProgress)
		me.GET("/xp-events", h.ListXPEvents)
		me.POST("/avatar", h.RequestAvatarUpload)
		me.POST("/avatar/confirm", h.ConfirmAvatarUpload)
		me.GET("/avatar", h.GetAvatarURL)
	}
}

// UpdateProfileRequest is the request body for profile updates
type UpdateProfileRequest struct {
	Name *string `json:"name" binding:"omitempty,min=1,max=100"`
}

// AvatarUploadRequest is the request body for requesting an upload URL
type AvatarUploadRequest struct {
	ContentType string `json:"content_type" binding:"required"`
}

// ConfirmAvatarRequest is the request body for confirming an upload
type ConfirmAvatarRequest struct {
	Key string `json:"key" binding:"required,max=500"`
}

// GetProfile returns the authenticated user's profile
func (h *UserHandler) GetProfile(c *gin.Context) {
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	info, err := h.userService.Get(c.Request.Context(), userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, info)
}

// UpdateProfile applies self-service profile changes
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	info, err := h.userService.UpdateProfile(c.Request.Context(), appidentity.UpdateProfileInput{
		UserID: userID,
		Name:   req.Name,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, info)
}

// GetProgress returns the user's position within the level curve
func (h *UserHandler) GetProgress(c *gin.Context) {
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	progress, err := h.xpService.GetProgress(c.Request.Context(), userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, progress)
}

// ListXPEvents returns the user's own ledger history, newest first
func (h *UserHandler) ListXPEvents(c *gin.Context) {
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	var filter appgam.XPEventListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BindError(c, err)
		return
	}

	events, total, err := h.xpService.ListEvents(c.Request.Context(), userID, filter)
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

// RequestAvatarUpload issues a presigned upload URL for a new avatar
func (h *UserHandler) RequestAvatarUpload(c *gin.Context) {
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	var req AvatarUploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	result, err := h.userService.RequestAvatarUpload(c.Request.Context(), appidentity.AvatarUploadInput{
		UserID:      userID,
		ContentType: req.ContentType,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// ConfirmAvatarUpload records an uploaded avatar on the profile
func (h *UserHandler) ConfirmAvatarUpload(c *gin.Context) {
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	var req ConfirmAvatarRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	info, err := h.userService.ConfirmAvatarUpload(c.Request.Context(), appidentity.ConfirmAvatarInput{
		UserID: userID,
		Key:    req.Key,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, info)
}

// GetAvatarURL returns a presigned download URL for the user's avatar
func (h *UserHandler) GetAvatarURL(c *gin.Context) {
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	url, err := h.userService.GetAvatarURL(c.Request.Context(), userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, gin.H{"url": url})
}

// listMeta builds pagination metadata from a total count
func listMeta(page, pageSize int, total int64) dto.Meta {
	totalPages := 0
	if pageSize > 0 {
		totalPages = int((total + int64(pageSize) - 1) / int64(pageSize))
	}
	return dto.Meta{
		Page:       page,
		PageSize:   pageSize,
		Total:      total,
		TotalPages: totalPages,
	}
}

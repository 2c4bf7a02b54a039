package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/wikiboard/backend/internal/infrastructure/persistence"
	"go.uber.org/zap"
)

// SystemHandler handles health and system info endpoints
type SystemHandler struct {
	BaseHandler
	db        *persistence.Database
	version   string
	startTime time.Time
}

// NewSystemHandler creates a new system handler
func NewSystemHandler(db *persistence.Database, version string, logger *zap.Logger) *SystemHandler {
	return &SystemHandler{
		BaseHandler: NewBaseHandler(logger),
		db:          db,
		version:     version,
		startTime:   time.Now(),
	}
}

// RegisterRoutes registers system routes on the API group
func (h *SystemHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/ping", h.Ping)
	rg.GET("/system/info", h.Info)
}

// RegisterHealthRoute registers the unversioned health endpoint
func (h *SystemHandler) RegisterHealthRoute(engine *gin.Engine) {
	engine.GET("/health", h.Health)
}

// HealthResponse is the health check payload
type HealthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
	Uptime   string `json:"uptime"`
}

// SystemInfoResponse describes the running service
type SystemInfoResponse struct {
	Name      string    `json:"name"`
	Version   string    `json:"version"`
	StartedAt time.Time `json:"started_at"`
	Uptime    string    `json:"uptime"`
}

// Ping responds with pong for liveness probes
func (h *SystemHandler) Ping(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "pong"})
}

// Health reports service and database health. A failing database ping
// degrades the status but still answers 200 so load balancers can tell
// "degraded" from "down".
func (h *SystemHandler) Health(c *gin.Context) {
	resp := HealthResponse{
		Status:   "ok",
		Database: "ok",
		Uptime:   time.Since(h.startTime).Round(time.Second).String(),
	}

	if h.db != nil {
		if err := h.db.Ping(); err != nil {
			resp.Status = "degraded"
			resp.Database = "unreachable"
		}
	}

	c.JSON(http.StatusOK, resp)
}

// Info returns service metadata
func (h *SystemHandler) Info(c *gin.Context) {
	h.Success(c, SystemInfoResponse{
		Name:      "wikiboard-backend",
		Version:   h.version,
		StartedAt: h.startTime,
		Uptime:    time.Since(h.startTime).Round(time.Second).String(),
	})
}

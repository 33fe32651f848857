package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/bookoutlet/internal/database"
)

const healthPingTimeout = 2 * time.Second

// HealthResponse is served by GET /health. Database is "ok", "not configured"
// or the ping error.
type HealthResponse struct {
	Status   string `json:"status"`
	Version  string `json:"version,omitempty"`
	Database string `json:"database"`
	Uptime   string `json:"uptime"`
	Time     string `json:"time"`
}

type HealthController struct {
	db      *database.Database
	version string
	started time.Time
}

func NewHealthController(db *database.Database, version string) *HealthController {
	return &HealthController{db: db, version: version, started: time.Now()}
}

// Status answers 503 when the catalog database does not respond.
func (h *HealthController) Status(c *gin.Context) {
	now := time.Now()
	response := HealthResponse{
		Status:   "healthy",
		Version:  h.version,
		Database: h.checkDatabase(c.Request.Context()),
		Uptime:   now.Sub(h.started).Truncate(time.Second).String(),
		Time:     now.UTC().Format(time.RFC3339),
	}

	code := http.StatusOK
	if response.Database != "ok" && response.Database != "not configured" {
		response.Status = "unhealthy"
		code = http.StatusServiceUnavailable
	}
	c.JSON(code, response)
}

func (h *HealthController) checkDatabase(ctx context.Context) string {
	if h.db == nil {
		return "not configured"
	}
	ctx, cancel := context.WithTimeout(ctx, healthPingTimeout)
	defer cancel()
	if err := h.db.Ping(ctx); err != nil {
		return "error: " + err.Error()
	}
	return "ok"
}

func Ping(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "pong"})
}

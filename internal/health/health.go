package health

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"queryosity/internal/notify"
)

// Pinger reports whether the project state backend is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Handler struct {
	Store   Pinger
	Hub     *notify.Hub
	Backend string
	Driver  string
}

func (h *Handler) RegisterRoutes(r gin.IRoutes) {
	r.GET("/health", h.health)
	r.GET("/ready", h.ready)
}

func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "store": h.Driver, "backend": h.Backend})
}

func (h *Handler) ready(c *gin.Context) {
	var stats notify.Stats
	if h.Hub != nil {
		stats = h.Hub.Stats()
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if err := h.Store.Ping(ctx); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":      "not_ready",
			"store_error": err.Error(),
			"ws_clients":  stats.WSClients,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":     "ready",
		"store":      "ok",
		"sessions":   stats.Sessions,
		"ws_clients": stats.WSClients,
	})
}

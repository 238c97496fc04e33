package handler

import (
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
)

type HealthHandler struct {
	dataDir     string
	redisClient *redis.Client
	amqpConn    *amqp.Connection
}

// NewHealthHandler reports readiness of the data directory and of the
// optional Redis/RabbitMQ attachments; either client may be nil.
func NewHealthHandler(dataDir string, redisClient *redis.Client, amqpConn *amqp.Connection) *HealthHandler {
	return &HealthHandler{dataDir: dataDir, redisClient: redisClient, amqpConn: amqpConn}
}

func (h *HealthHandler) Healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *HealthHandler) Readyz(c *gin.Context) {
	ctx := c.Request.Context()

	if fi, err := os.Stat(h.dataDir); err != nil || !fi.IsDir() {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "error", "store": "unavailable"})
		return
	}
	if h.redisClient != nil {
		if err := h.redisClient.Ping(ctx).Err(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "error", "redis": "unavailable"})
			return
		}
	}
	if h.amqpConn != nil && h.amqpConn.IsClosed() {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "error", "rabbitmq": "unavailable"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok", "store": "loaded"})
}

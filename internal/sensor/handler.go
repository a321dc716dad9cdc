package sensor

import (
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// HandlerConfig carries the per-endpoint defaults for the upstream `results`
// query. Both are configurable; "30" covers the last ten minutes of the
// prototype's upload cadence, "2" is the raw display default.
type HandlerConfig struct {
	DefaultResults    string
	DefaultRawResults string
}

// HandlerConfigFromEnv reads the sensor endpoint defaults from env vars.
func HandlerConfigFromEnv() HandlerConfig {
	cfg := HandlerConfig{DefaultResults: "30", DefaultRawResults: "2"}
	if v := os.Getenv("SENSOR_DEFAULT_RESULTS"); v != "" {
		cfg.DefaultResults = v
	}
	if v := os.Getenv("SENSOR_DEFAULT_RAW_RESULTS"); v != "" {
		cfg.DefaultRawResults = v
	}
	return cfg
}

// Handler exposes the sensor-data endpoints.
type Handler struct {
	client *Client
	cfg    HandlerConfig
	logger *zap.SugaredLogger
}

func NewHandler(client *Client, cfg HandlerConfig, logger *zap.SugaredLogger) *Handler {
	return &Handler{client: client, cfg: cfg, logger: logger}
}

// Summary serves GET /sensor-data: the windowed average plus channel info.
func (h *Handler) Summary(c *gin.Context) {
	results := c.DefaultQuery("results", h.cfg.DefaultResults)
	page, err := h.client.FetchFeed(c.Request.Context(), results)
	if err != nil {
		h.logger.Errorw("sensor feed fetch failed", "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": err.Error()})
		return
	}
	c.JSON(http.StatusOK, Summarize(page))
}

// Raw serves GET /sensor-data/hourly: every parseable reading, unaggregated.
func (h *Handler) Raw(c *gin.Context) {
	results := c.DefaultQuery("results", h.cfg.DefaultRawResults)
	page, err := h.client.FetchFeed(c.Request.Context(), results)
	if err != nil {
		h.logger.Errorw("sensor feed fetch failed", "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": err.Error()})
		return
	}
	c.JSON(http.StatusOK, Flatten(page))
}

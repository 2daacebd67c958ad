package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"

	"sensor_analytics/internal/models"

	"github.com/gin-gonic/gin"
)

const (
	serviceName = "analytics-service"

	statusHealthy = "healthy"
	statusRunning = "running"
	statusSuccess = "success"

	msgDataProcessed = "Data processed"

	errNoData          = "No data provided"
	errNoStats         = "No data available"
	errInvalidJSON     = "invalid JSON body"
	errExpectedObject  = "invalid body: expected a JSON object"
	errInvalidBodyPref = "invalid body: "
)

// ReadingRequest is an exported model for Swagger docs of the reading payload.
// Missing fields default to 0 and "unknown".
type ReadingRequest struct {
	// Temperature in °C
	Temperature float64 `json:"temperature" example:"22.5"`
	// Relative humidity in %
	Humidity float64 `json:"humidity" example:"45"`
	SensorID string  `json:"sensor_id" example:"SENSOR-1"`
}

// Centralized error logging and response.
func (h *Handler) logAndJSONError(c *gin.Context, httpCode int, userMsg, logKey string, err error, kv ...interface{}) {
	if h.log != nil && err != nil {
		fields := append([]interface{}{"err", err}, kv...)
		h.log.Errorw(logKey, fields...)
	}
	c.JSON(httpCode, gin.H{"error": userMsg})
}

// bindReading decodes the request body into a Reading, answering 400 itself
// when the body is absent, empty or unusable.
func (h *Handler) bindReading(c *gin.Context) (models.Reading, bool) {
	raw, err := c.GetRawData()
	if err != nil || len(bytes.TrimSpace(raw)) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": errNoData})
		return models.Reading{}, false
	}

	var body any
	if err := json.Unmarshal(raw, &body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidJSON})
		return models.Reading{}, false
	}
	if body == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errNoData})
		return models.Reading{}, false
	}
	payload, ok := body.(map[string]any)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": errExpectedObject})
		return models.Reading{}, false
	}
	if len(payload) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": errNoData})
		return models.Reading{}, false
	}

	r, err := models.ReadingFromMap(payload)
	if err != nil {
		if errors.Is(err, models.ErrInvalidReading) {
			c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidBodyPref + err.Error()})
			return models.Reading{}, false
		}
		h.logAndJSONError(c, http.StatusInternalServerError, err.Error(), "reading_decode_failed", err)
		return models.Reading{}, false
	}
	return r, true
}

// @Summary      Service index
// @Tags         system
// @Produce      json
// @Success      200  {object}  map[string]interface{}  "service, status, endpoints, thresholds"
// @Router       / [get]
func (h *Handler) index(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"service": "Analytics Service",
		"status":  statusRunning,
		"endpoints": gin.H{
			"health":  "/health",
			"process": "/api/analytics/process",
			"stats":   "/api/analytics/stats",
			"alerts":  "/api/analytics/alerts",
			"analyze": "/api/analytics/analyze",
			"history": "/api/analytics/history",
			"stream":  "/ws",
		},
		"thresholds": h.services.Analytics.Thresholds(c.Request.Context()),
	})
}

// @Summary      Health check
// @Tags         system
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /health [get]
func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  statusHealthy,
		"service": serviceName,
	})
}

// @Summary      Ingest a reading
// @Tags         analytics
// @Accept       json
// @Produce      json
// @Param        body  body      ReadingRequest  true  "Sensor reading"
// @Success      200   {object}  map[string]interface{}  "message, total_readings"
// @Failure      400   {object}  map[string]string
// @Failure      429   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /api/analytics/process [post]
func (h *Handler) processReading(c *gin.Context) {
	r, ok := h.bindReading(c)
	if !ok {
		return
	}
	total := h.services.Analytics.Ingest(c.Request.Context(), r)
	c.JSON(http.StatusOK, gin.H{
		"message":        msgDataProcessed,
		"total_readings": total,
	})
}

// @Summary      Window statistics
// @Tags         analytics
// @Produce      json
// @Success      200  {object}  models.Stats
// @Failure      404  {object}  map[string]string
// @Router       /api/analytics/stats [get]
func (h *Handler) getStats(c *gin.Context) {
	st, ok := h.services.Analytics.Stats(c.Request.Context())
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": errNoStats})
		return
	}
	c.JSON(http.StatusOK, st)
}

// @Summary      Alerts for the latest reading
// @Tags         analytics
// @Produce      json
// @Success      200  {object}  map[string]interface{}  "alerts, count"
// @Router       /api/analytics/alerts [get]
func (h *Handler) getAlerts(c *gin.Context) {
	alerts := h.services.Analytics.Alerts(c.Request.Context())
	if alerts == nil {
		alerts = []models.Alert{}
	}
	c.JSON(http.StatusOK, gin.H{
		"alerts": alerts,
		"count":  len(alerts),
	})
}

// @Summary      Ingest and analyze a reading
// @Description  Stores the reading, then returns the statistics and alerts of the resulting window.
// @Tags         analytics
// @Accept       json
// @Produce      json
// @Param        body  body      ReadingRequest  true  "Sensor reading"
// @Success      200   {object}  map[string]interface{}  "status, data, stats, alerts"
// @Failure      400   {object}  map[string]string
// @Failure      429   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /api/analytics/analyze [post]
func (h *Handler) analyzeReading(c *gin.Context) {
	r, ok := h.bindReading(c)
	if !ok {
		return
	}
	res := h.services.Analytics.Analyze(c.Request.Context(), r)
	alerts := res.Alerts
	if alerts == nil {
		alerts = []models.Alert{}
	}
	c.JSON(http.StatusOK, gin.H{
		"status": statusSuccess,
		"data":   res.Reading,
		"stats":  res.Stats,
		"alerts": alerts,
	})
}

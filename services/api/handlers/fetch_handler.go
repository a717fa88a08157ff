package handlers

import (
	"net/http"
	"strconv"

	"crowdpulse/pkg/logger"
	"crowdpulse/services/ingest/orchestrator"
	"crowdpulse/services/ingest/repository"

	"github.com/gin-gonic/gin"
)

type FetchHandler struct {
	orch    *orchestrator.Orchestrator
	logRepo repository.FetchLogRepository
	logger  *logger.Logger
}

func NewFetchHandler(orch *orchestrator.Orchestrator, logRepo repository.FetchLogRepository, log *logger.Logger) *FetchHandler {
	return &FetchHandler{
		orch:    orch,
		logRepo: logRepo,
		logger:  log,
	}
}

type TriggerFetchRequest struct {
	Platforms []string `json:"platforms"`
}

// TriggerFetch godoc
// @Summary      Trigger an ingestion run
// @Description  Runs the requested platforms (all three when omitted) through fetch, upsert and logging, and returns the per-platform saved counts.
// @Tags         fetch
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body TriggerFetchRequest false "Platforms to ingest"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  map[string]string
// @Router       /fetch [post]
func (h *FetchHandler) TriggerFetch(c *gin.Context) {
	var req TriggerFetchRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	h.logger.Info("Ingestion run triggered by %s", c.GetString("user_id"))
	summary := h.orch.FetchAll(c.Request.Context(), req.Platforms)

	c.JSON(http.StatusOK, gin.H{"summary": summary})
}

// GetLogs godoc
// @Summary      List recent fetch logs
// @Description  Returns the append-only per-run outcome records, newest first.
// @Tags         fetch
// @Produce      json
// @Param        limit query int false "Number of log rows to return"
// @Success      200  {object}  map[string]interface{}
// @Router       /logs [get]
func (h *FetchHandler) GetLogs(c *gin.Context) {
	limit := 50
	if limitStr := c.Query("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 && l <= 500 {
			limit = l
		}
	}

	logs, err := h.logRepo.Recent(limit)
	if err != nil {
		h.logger.Error("Failed to list fetch logs: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch logs"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"logs": logs, "count": len(logs)})
}

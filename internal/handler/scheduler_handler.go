package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/nplvision/sol-engine/internal/dto"
	"github.com/nplvision/sol-engine/internal/models"
	"github.com/nplvision/sol-engine/internal/scheduler"
	"github.com/nplvision/sol-engine/pkg/response"
)

type schedulerControl interface {
	TriggerManual(ctx context.Context) (scheduler.Result, error)
	Status() scheduler.Status
}

type runLogReader interface {
	ListRecent(ctx context.Context, limit int) ([]models.BatchRunLog, error)
}

// SchedulerHandler exposes batch runner control and status endpoints.
type SchedulerHandler struct {
	control schedulerControl
	runs    runLogReader
}

// NewSchedulerHandler builds a new handler.
func NewSchedulerHandler(control schedulerControl, runs runLogReader) *SchedulerHandler {
	return &SchedulerHandler{control: control, runs: runs}
}

// Run godoc
// @Summary Trigger the daily SOL update now
// @Tags Scheduler
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /sol/scheduler/run [post]
func (h *SchedulerHandler) Run(c *gin.Context) {
	result, err := h.control.TriggerManual(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, dto.UpdateResult{Updated: result.Updated, Errors: result.Errors}, nil)
}

// Status godoc
// @Summary Get scheduler status
// @Tags Scheduler
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /sol/scheduler/status [get]
func (h *SchedulerHandler) Status(c *gin.Context) {
	response.JSON(c, http.StatusOK, h.control.Status(), nil)
}

// ListRuns godoc
// @Summary List recent batch runs
// @Tags Scheduler
// @Produce json
// @Param limit query int false "Max runs"
// @Success 200 {object} response.Envelope
// @Router /sol/scheduler/runs [get]
func (h *SchedulerHandler) ListRuns(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "30"))
	runs, err := h.runs.ListRecent(c.Request.Context(), limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, runs, nil)
}

package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/andresuchdata/fba-weekly-summary/internal/repository/postgres"
)

type RunHandler struct {
	runs *postgres.RunRepository
}

func NewRunHandler(runs *postgres.RunRepository) *RunHandler {
	return &RunHandler{runs: runs}
}

// GetLatestRun returns the most recent report run, completed or not.
func (h *RunHandler) GetLatestRun(c *gin.Context) {
	run, err := h.runs.GetLatestRun(c.Request.Context())
	if err != nil {
		errorResponse(c, http.StatusInternalServerError, "failed to load latest run")
		return
	}
	if run == nil {
		errorResponse(c, http.StatusNotFound, "no runs recorded yet")
		return
	}

	response := gin.H{
		"id":            run.ID,
		"anchor_date":   run.AnchorDate.Format("2006-01-02"),
		"status":        run.Status,
		"total_rows":    run.TotalRows,
		"discrepancies": run.Discrepancies,
		"issues":        run.Issues,
		"started_at":    run.StartedAt,
	}
	if run.CompletedAt.Valid {
		response["completed_at"] = run.CompletedAt.Time
	}
	if run.ErrorMessage.Valid {
		response["error"] = run.ErrorMessage.String
	}

	c.JSON(http.StatusOK, response)
}

// GetRunDiscrepancies returns the inbound discrepancies recorded for a run.
func (h *RunHandler) GetRunDiscrepancies(c *gin.Context) {
	runID, ok := h.parseRunID(c)
	if !ok {
		return
	}

	records, err := h.runs.GetRunDiscrepancies(c.Request.Context(), runID)
	if err != nil {
		errorResponse(c, http.StatusInternalServerError, "failed to load discrepancies")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"run_id":        runID,
		"discrepancies": records,
		"count":         len(records),
	})
}

// GetRunIssues returns the row-scoped issues recorded for a run.
func (h *RunHandler) GetRunIssues(c *gin.Context) {
	runID, ok := h.parseRunID(c)
	if !ok {
		return
	}

	issues, err := h.runs.GetRunIssues(c.Request.Context(), runID)
	if err != nil {
		errorResponse(c, http.StatusInternalServerError, "failed to load issues")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"run_id": runID,
		"issues": issues,
		"count":  len(issues),
	})
}

func (h *RunHandler) parseRunID(c *gin.Context) (int64, bool) {
	runID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || runID <= 0 {
		errorResponse(c, http.StatusBadRequest, "invalid run id")
		return 0, false
	}
	return runID, true
}

func errorResponse(c *gin.Context, statusCode int, message string) {
	log.Error().Msg(message)
	c.JSON(statusCode, gin.H{"error": message})
}

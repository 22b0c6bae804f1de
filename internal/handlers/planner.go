package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"opterra/internal/service"

	"github.com/gin-gonic/gin"
)

const (
	errSimulate   = "failed to simulate repairs"
	errProjection = "failed to project metrics"

	defaultProjectionMonths = 12
)

// Request DTO for repair simulation.
type simulateRequest struct {
	RepairIDs []string `json:"repair_ids" binding:"required"`
}

// SimulateRequest is an exported model for Swagger docs of the simulate payload.
type SimulateRequest struct {
	// Catalog ids of the repairs to apply, e.g. ["TANK_FLUSH","ANODE_REPLACE"]
	RepairIDs []string `json:"repair_ids" example:"TANK_FLUSH,ANODE_REPLACE"`
}

// @Summary      Repair catalog
// @Tags         planner
// @Produce      json
// @Success      200  {object}  map[string]interface{}  "count, repairs"
// @Failure      401  {object}  map[string]string
// @Router       /api/v1/repairs [get]
// @Security     BearerAuth
func (h *Handler) getRepairCatalog(c *gin.Context) {
	catalog := h.services.Planner.Catalog()
	c.JSON(http.StatusOK, gin.H{
		"count":   len(catalog),
		"repairs": catalog,
	})
}

// @Summary      Simulate repairs
// @Description  Applies the selected repair options to the stored metrics as a what-if; the assessment itself is unchanged
// @Tags         planner
// @Accept       json
// @Produce      json
// @Param        id    path  string           true  "Assessment ID"
// @Param        body  body  SimulateRequest  true  "Repairs to apply"
// @Success      200   {object}  map[string]interface{}
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /api/v1/assessments/{id}/simulate [post]
// @Security     BearerAuth
func (h *Handler) simulateRepairs(c *gin.Context) {
	var req simulateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidBodyPref + err.Error()})
		return
	}
	ctx := c.Request.Context()

	res, err := h.services.Planner.Simulate(ctx, c.Param("id"), req.RepairIDs)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrAssessmentNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": errNotFoundMsg})
		case errors.Is(err, service.ErrUnknownRepair), errors.Is(err, service.ErrNoRepairs):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			h.logAndJSONError(c, http.StatusInternalServerError, errSimulate, "repair_simulate_failed", err, "id", c.Param("id"))
		}
		return
	}
	c.JSON(http.StatusOK, res)
}

// @Summary      Project metrics forward
// @Description  Forecasts health and failure probability at the given horizon with no intervention
// @Tags         planner
// @Produce      json
// @Param        id      path   string  true   "Assessment ID"
// @Param        months  query  int     false  "Horizon in months (1-120)"  default(12)
// @Success      200     {object}  map[string]interface{}
// @Failure      400     {object}  map[string]string
// @Failure      401     {object}  map[string]string
// @Failure      404     {object}  map[string]string
// @Failure      500     {object}  map[string]string
// @Router       /api/v1/assessments/{id}/projection [get]
// @Security     BearerAuth
func (h *Handler) getProjection(c *gin.Context) {
	ctx := c.Request.Context()

	months := defaultProjectionMonths
	if s := c.Query("months"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid 'months' value"})
			return
		}
		months = v
	}

	p, err := h.services.Planner.Project(ctx, c.Param("id"), months)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrAssessmentNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": errNotFoundMsg})
		case errors.Is(err, service.ErrInvalidHorizon):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			h.logAndJSONError(c, http.StatusInternalServerError, errProjection, "projection_failed", err, "id", c.Param("id"))
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"assessment_id": c.Param("id"),
		"projection":    p,
	})
}

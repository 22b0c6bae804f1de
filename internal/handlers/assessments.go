package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"opterra/internal/opterra"
	"opterra/internal/service"

	"github.com/gin-gonic/gin"
)

// Common response/status constants to avoid magic strings and typos.
const (
	statusOK = "ok"

	errAssess          = "failed to assess unit"
	errGetAssessment   = "failed to load assessment"
	errListAssessments = "failed to list assessments"
	errInvalidBodyPref = "invalid body: "
	errNotFoundMsg     = "assessment not found"
)

// Centralized error logging and response.
func (h *Handler) logAndJSONError(c *gin.Context, httpCode int, userMsg, logKey string, err error, kv ...interface{}) {
	if h.log != nil && err != nil {
		fields := append([]interface{}{"err", err}, kv...)
		h.log.Errorw(logKey, fields...)
	}
	c.JSON(httpCode, gin.H{"error": userMsg})
}

// Request DTO for creating an assessment.
type assessRequest struct {
	Label      string                  `json:"label" binding:"required"` // unit serial or address label
	Inspection opterra.InspectionInput `json:"inspection"`
}

// AssessRequest is an exported model for Swagger docs of the assess payload.
type AssessRequest struct {
	// Label identifying the assessed unit
	Label string `json:"label" example:"4812-maple-st-garage"`
	// Inspection fields collected in the field
	Inspection opterra.InspectionInput `json:"inspection"`
}

// @Summary      Health check
// @Tags         system
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /health [get]
func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": statusOK,
	})
}

// @Summary      Score an inspection
// @Description  Validates the inspection record, scores it, and stores the assessment
// @Tags         assessments
// @Accept       json
// @Produce      json
// @Param        body  body   AssessRequest  true  "Assessment payload"
// @Success      200   {object}  map[string]interface{}
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /api/v1/assessments [post]
// @Security     BearerAuth
func (h *Handler) createAssessment(c *gin.Context) {
	var req assessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidBodyPref + err.Error()})
		return
	}
	ctx := c.Request.Context()

	a, err := h.services.Assessor.Assess(ctx, req.Label, req.Inspection)
	if err != nil {
		if errors.Is(err, opterra.ErrInvalidInput) || errors.Is(err, service.ErrLabelRequired) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		h.logAndJSONError(c, http.StatusInternalServerError, errAssess, "assessment_create_failed", err, "label", req.Label)
		return
	}
	c.JSON(http.StatusOK, a)
}

// @Summary      List recent assessments
// @Tags         assessments
// @Produce      json
// @Param        limit  query   int  false  "Max records to return"  default(20)
// @Success      200    {object}  map[string]interface{}  "count, assessments"
// @Failure      401    {object}  map[string]string
// @Failure      500    {object}  map[string]string
// @Router       /api/v1/assessments [get]
// @Security     BearerAuth
func (h *Handler) listAssessments(c *gin.Context) {
	ctx := c.Request.Context()
	limit := 0
	if s := c.Query("limit"); s != "" {
		if v, err := strconv.Atoi(s); err == nil && v > 0 {
			limit = v
		}
	}
	list, err := h.services.Assessor.List(ctx, limit)
	if err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, errListAssessments, "assessment_list_failed", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"count":       len(list),
		"assessments": list,
	})
}

// @Summary      Get an assessment
// @Tags         assessments
// @Produce      json
// @Param        id  path  string  true  "Assessment ID"
// @Success      200  {object}  map[string]interface{}
// @Failure      401  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/assessments/{id} [get]
// @Security     BearerAuth
func (h *Handler) getAssessment(c *gin.Context) {
	ctx := c.Request.Context()
	a, err := h.services.Assessor.Get(ctx, c.Param("id"))
	if err != nil {
		if errors.Is(err, service.ErrAssessmentNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": errNotFoundMsg})
			return
		}
		h.logAndJSONError(c, http.StatusInternalServerError, errGetAssessment, "assessment_get_failed", err, "id", c.Param("id"))
		return
	}
	c.JSON(http.StatusOK, a)
}

// @Summary      Get the recommendation for an assessment
// @Tags         assessments
// @Produce      json
// @Param        id  path  string  true  "Assessment ID"
// @Success      200  {object}  map[string]interface{}
// @Failure      401  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/assessments/{id}/recommendation [get]
// @Security     BearerAuth
func (h *Handler) getRecommendation(c *gin.Context) {
	ctx := c.Request.Context()
	a, err := h.services.Assessor.Get(ctx, c.Param("id"))
	if err != nil {
		if errors.Is(err, service.ErrAssessmentNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": errNotFoundMsg})
			return
		}
		h.logAndJSONError(c, http.StatusInternalServerError, errGetAssessment, "recommendation_get_failed", err, "id", c.Param("id"))
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"assessment_id":  a.ID,
		"recommendation": a.Recommendation,
	})
}

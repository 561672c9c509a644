package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ot-assessment-server/internal/domain"
)

// bindRecord decodes the request body into an assessment record. A malformed
// body answers 400 and aborts the handler.
func (s *Server) bindRecord(c *gin.Context) (domain.AssessmentRecord, bool) {
	var rec domain.AssessmentRecord
	if err := c.ShouldBindJSON(&rec); err != nil {
		c.JSON(http.StatusBadRequest, domain.NewAPIError(
			domain.ErrCodeInvalidInput,
			"Request body must be a JSON assessment record",
			err.Error(),
			c.GetString("correlation_id"),
		))
		return nil, false
	}
	return rec, true
}

// handleValidate runs the rule engine over the posted record.
func (s *Server) handleValidate(c *gin.Context) {
	rec, ok := s.bindRecord(c)
	if !ok {
		return
	}

	result := s.validator.Validate(rec)
	c.JSON(http.StatusOK, result)
}

// handleAnalyze runs the transfers analysis. An optional detail query parameter
// additionally renders the result as narrative text.
func (s *Server) handleAnalyze(c *gin.Context) {
	rec, ok := s.bindRecord(c)
	if !ok {
		return
	}

	result := s.agent.Analyze(rec)

	if detail := c.Query("detail"); detail != "" {
		c.JSON(http.StatusOK, gin.H{
			"analysis":  result,
			"narrative": s.formatter.Format(result, domain.DetailLevel(detail)),
		})
		return
	}

	c.JSON(http.StatusOK, result)
}

// handleNarrative produces the non-LLM demographics narrative.
func (s *Server) handleNarrative(c *gin.Context) {
	rec, ok := s.bindRecord(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"narrative": s.generator.GenerateNarrative(rec),
	})
}

// generateReportRequest is the report generation request body. AssessmentID is
// optional; one is assigned when absent.
type generateReportRequest struct {
	AssessmentID string                  `json:"assessment_id"`
	Record       domain.AssessmentRecord `json:"record" binding:"required"`
}

// handleGenerateReport persists the record, runs the orchestrated report
// pipeline, and stores the result.
func (s *Server) handleGenerateReport(c *gin.Context) {
	var req generateReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, domain.NewAPIError(
			domain.ErrCodeInvalidInput,
			"Request body must contain a record field",
			err.Error(),
			c.GetString("correlation_id"),
		))
		return
	}

	if req.AssessmentID == "" {
		req.AssessmentID = uuid.NewString()
	}

	ctx := c.Request.Context()

	if err := s.assessments.Save(ctx, &domain.StoredAssessment{
		ID:     req.AssessmentID,
		Record: req.Record,
	}); err != nil {
		s.logger.WithError(err).Error("Failed to persist assessment")
		c.JSON(http.StatusInternalServerError, domain.NewAPIError(
			domain.ErrCodeDatabase,
			"Failed to persist assessment",
			"",
			c.GetString("correlation_id"),
		))
		return
	}

	generated, err := s.reports.GenerateReport(ctx, req.AssessmentID, req.Record)
	if err != nil {
		s.logger.WithError(err).Error("Report generation failed")
		c.JSON(http.StatusBadGateway, domain.NewAPIError(
			domain.ErrCodeLLM,
			"Report generation failed",
			err.Error(),
			c.GetString("correlation_id"),
		))
		return
	}

	if err := s.reportStore.Create(ctx, generated); err != nil {
		s.logger.WithError(err).Error("Failed to persist report")
		c.JSON(http.StatusInternalServerError, domain.NewAPIError(
			domain.ErrCodeDatabase,
			"Failed to persist report",
			"",
			c.GetString("correlation_id"),
		))
		return
	}

	c.JSON(http.StatusCreated, generated)
}

// handleGetReport retrieves a stored report by ID.
func (s *Server) handleGetReport(c *gin.Context) {
	id := c.Param("id")

	generated, err := s.reportStore.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			c.JSON(http.StatusNotFound, domain.NewAPIError(
				domain.ErrCodeInvalidInput,
				"Report not found",
				"",
				c.GetString("correlation_id"),
			))
			return
		}
		s.logger.WithError(err).Error("Failed to load report")
		c.JSON(http.StatusInternalServerError, domain.NewAPIError(
			domain.ErrCodeDatabase,
			"Failed to load report",
			"",
			c.GetString("correlation_id"),
		))
		return
	}

	c.JSON(http.StatusOK, generated)
}

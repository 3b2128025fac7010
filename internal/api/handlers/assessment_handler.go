package handlers

import (
	"errors"
	"net/http"

	"github.com/Marga-Ghale/ora-hr-backend/internal/api/middleware"
	"github.com/Marga-Ghale/ora-hr-backend/internal/models"
	"github.com/Marga-Ghale/ora-hr-backend/internal/service"
	"github.com/gin-gonic/gin"
)

// ============================================
// Assessment Handler
// ============================================

type AssessmentHandler struct {
	assessmentService service.AssessmentService
}

// ---- Review cycles ----

func (h *AssessmentHandler) CreateCycle(c *gin.Context) {
	var req models.CreateCycleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	cycle, err := h.assessmentService.CreateCycle(c.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidInput) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create cycle"})
		return
	}

	c.JSON(http.StatusCreated, toCycleResponse(cycle))
}

func (h *AssessmentHandler) ListCycles(c *gin.Context) {
	cycles, err := h.assessmentService.GetCycles(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list cycles"})
		return
	}

	response := make([]models.CycleResponse, len(cycles))
	for i, cycle := range cycles {
		response[i] = toCycleResponse(cycle)
	}
	c.JSON(http.StatusOK, response)
}

func (h *AssessmentHandler) GetOpenCycle(c *gin.Context) {
	cycle, err := h.assessmentService.GetOpenCycle(c.Request.Context())
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "No open cycle"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load open cycle"})
		return
	}
	c.JSON(http.StatusOK, toCycleResponse(cycle))
}

func (h *AssessmentHandler) UpdateCycleStatus(c *gin.Context) {
	var req models.UpdateCycleStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	cycle, err := h.assessmentService.UpdateCycleStatus(c.Request.Context(), c.Param("id"), req.Status)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Cycle not found"})
		case errors.Is(err, service.ErrInvalidInput):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid cycle status"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update cycle"})
		}
		return
	}

	c.JSON(http.StatusOK, toCycleResponse(cycle))
}

// ---- Assessments ----

func (h *AssessmentHandler) SaveDraft(c *gin.Context) {
	memberID, ok := middleware.RequireMemberID(c)
	if !ok {
		return
	}

	var req models.SaveAssessmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	assessment, items, err := h.assessmentService.SaveDraft(c.Request.Context(), memberID, &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Cycle not found"})
		case errors.Is(err, service.ErrCycleNotOpen):
			c.JSON(http.StatusConflict, gin.H{"error": "Cycle is not open"})
		case errors.Is(err, service.ErrAlreadySubmitted):
			c.JSON(http.StatusConflict, gin.H{"error": "Assessment already submitted"})
		case errors.Is(err, service.ErrInvalidInput):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save assessment"})
		}
		return
	}

	c.JSON(http.StatusOK, toAssessmentResponse(assessment, items))
}

func (h *AssessmentHandler) Submit(c *gin.Context) {
	memberID, ok := middleware.RequireMemberID(c)
	if !ok {
		return
	}

	assessment, err := h.assessmentService.Submit(c.Request.Context(), memberID, c.Param("cycleId"))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "No draft for this cycle"})
		case errors.Is(err, service.ErrAlreadySubmitted):
			c.JSON(http.StatusConflict, gin.H{"error": "Assessment already submitted"})
		case errors.Is(err, service.ErrInvalidInput):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to submit assessment"})
		}
		return
	}

	c.JSON(http.StatusOK, toAssessmentResponse(assessment, nil))
}

func (h *AssessmentHandler) GetOwn(c *gin.Context) {
	memberID, ok := middleware.RequireMemberID(c)
	if !ok {
		return
	}

	assessment, items, err := h.assessmentService.GetOwn(c.Request.Context(), memberID, c.Param("cycleId"))
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "No assessment for this cycle"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load assessment"})
		return
	}

	c.JSON(http.StatusOK, toAssessmentResponse(assessment, items))
}

func (h *AssessmentHandler) Get(c *gin.Context) {
	memberID, ok := middleware.RequireMemberID(c)
	if !ok {
		return
	}

	assessment, items, err := h.assessmentService.GetByID(c.Request.Context(), memberID, c.Param("id"))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Assessment not found"})
		case errors.Is(err, service.ErrForbidden):
			c.JSON(http.StatusForbidden, gin.H{"error": "Not allowed to read this assessment"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load assessment"})
		}
		return
	}

	c.JSON(http.StatusOK, toAssessmentResponse(assessment, items))
}

func (h *AssessmentHandler) MarkReviewed(c *gin.Context) {
	memberID, ok := middleware.RequireMemberID(c)
	if !ok {
		return
	}

	assessment, err := h.assessmentService.MarkReviewed(c.Request.Context(), memberID, c.Param("id"))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Assessment not found"})
		case errors.Is(err, service.ErrNotSubordinate):
			c.JSON(http.StatusForbidden, gin.H{"error": "Only the direct supervisor can review"})
		case errors.Is(err, service.ErrInvalidInput):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to review assessment"})
		}
		return
	}

	c.JSON(http.StatusOK, toAssessmentResponse(assessment, nil))
}

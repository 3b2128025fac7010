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
// Org Handler
// ============================================

type OrgHandler struct {
	orgService service.OrgService
}

// GetChart returns the positioned org chart drawing, optionally scoped to
// one department via ?department=.
func (h *OrgHandler) GetChart(c *gin.Context) {
	var departmentID *string
	if d := c.Query("department"); d != "" {
		departmentID = &d
	}

	chart, err := h.orgService.Chart(c.Request.Context(), departmentID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build org chart"})
		return
	}

	c.JSON(http.StatusOK, chart)
}

// ValidateMove is the dry-run cycle check clients call while dragging.
// It always returns 200; admissibility is in the body.
func (h *OrgHandler) ValidateMove(c *gin.Context) {
	var req models.ValidateMoveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.orgService.ValidateMove(c.Request.Context(), req.MemberID, req.SupervisorID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to validate move"})
		return
	}

	c.JSON(http.StatusOK, result)
}

// UpdateSupervisor is the single-member reassignment: re-validated
// server-side before persisting, idempotent, returns the updated member.
func (h *OrgHandler) UpdateSupervisor(c *gin.Context) {
	actorID, ok := middleware.RequireMemberID(c)
	if !ok {
		return
	}

	var req models.UpdateSupervisorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	member, err := h.orgService.ChangeSupervisor(c.Request.Context(), actorID, c.Param("memberId"), req.SupervisorID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidMove):
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		case errors.Is(err, service.ErrMemberNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Member not found"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update supervisor"})
		}
		return
	}

	c.JSON(http.StatusOK, toMemberResponse(member))
}

// Reassign applies a batch of supervisor changes through one edit session
// and reports per-member outcomes; partial success is a 200 with the
// failure list populated.
func (h *OrgHandler) Reassign(c *gin.Context) {
	actorID, ok := middleware.RequireMemberID(c)
	if !ok {
		return
	}

	var req models.ReassignBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	report, err := h.orgService.ReassignBatch(c.Request.Context(), actorID, &req)
	if err != nil {
		if errors.Is(err, service.ErrRosterChanged) {
			c.JSON(http.StatusConflict, gin.H{"error": "Roster changed since it was loaded, refresh and retry"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to apply reassignments"})
		return
	}

	c.JSON(http.StatusOK, report)
}

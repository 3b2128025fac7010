package handlers

import (
	"errors"
	"net/http"

	"github.com/Marga-Ghale/ora-hr-backend/internal/api/middleware"
	"github.com/Marga-Ghale/ora-hr-backend/internal/service"
	"github.com/gin-gonic/gin"
)

// ============================================
// Dashboard Handler
// ============================================

type DashboardHandler struct {
	dashboardService service.DashboardService
}

func (h *DashboardHandler) Overview(c *gin.Context) {
	overview, err := h.dashboardService.Overview(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build dashboard"})
		return
	}
	c.JSON(http.StatusOK, overview)
}

// Team returns the requester's team rollup.
func (h *DashboardHandler) Team(c *gin.Context) {
	memberID, ok := middleware.RequireMemberID(c)
	if !ok {
		return
	}

	team, err := h.dashboardService.Team(c.Request.Context(), memberID)
	if err != nil {
		if errors.Is(err, service.ErrMemberNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Member not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build team dashboard"})
		return
	}
	c.JSON(http.StatusOK, team)
}

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
// Feedback Handler
// ============================================

type FeedbackHandler struct {
	feedbackService service.FeedbackService
}

func (h *FeedbackHandler) Create(c *gin.Context) {
	authorID, ok := middleware.RequireMemberID(c)
	if !ok {
		return
	}

	var req models.CreateFeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	feedback, err := h.feedbackService.Create(c.Request.Context(), authorID, &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotSubordinate):
			c.JSON(http.StatusForbidden, gin.H{"error": "Feedback is limited to direct subordinates"})
		case errors.Is(err, service.ErrInvalidInput):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create feedback"})
		}
		return
	}

	c.JSON(http.StatusCreated, toFeedbackResponse(feedback))
}

func (h *FeedbackHandler) ListForSubject(c *gin.Context) {
	requesterID, ok := middleware.RequireMemberID(c)
	if !ok {
		return
	}

	entries, err := h.feedbackService.GetForSubject(c.Request.Context(), requesterID, c.Param("memberId"))
	if err != nil {
		if errors.Is(err, service.ErrForbidden) {
			c.JSON(http.StatusForbidden, gin.H{"error": "Not allowed to read this member's feedback"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list feedback"})
		return
	}

	response := make([]models.FeedbackResponse, len(entries))
	for i, f := range entries {
		response[i] = toFeedbackResponse(f)
	}
	c.JSON(http.StatusOK, response)
}

func (h *FeedbackHandler) ListAuthored(c *gin.Context) {
	authorID, ok := middleware.RequireMemberID(c)
	if !ok {
		return
	}

	entries, err := h.feedbackService.GetAuthored(c.Request.Context(), authorID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list feedback"})
		return
	}

	response := make([]models.FeedbackResponse, len(entries))
	for i, f := range entries {
		response[i] = toFeedbackResponse(f)
	}
	c.JSON(http.StatusOK, response)
}

func (h *FeedbackHandler) Delete(c *gin.Context) {
	requesterID, ok := middleware.RequireMemberID(c)
	if !ok {
		return
	}

	if err := h.feedbackService.Delete(c.Request.Context(), requesterID, c.Param("id")); err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Feedback not found"})
		case errors.Is(err, service.ErrForbidden):
			c.JSON(http.StatusForbidden, gin.H{"error": "Only the author can delete feedback"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete feedback"})
		}
		return
	}

	c.JSON(http.StatusOK, models.SuccessResponse{Success: true, Message: "Feedback deleted"})
}

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
// Member Handler
// ============================================

type MemberHandler struct {
	memberService service.MemberService
}

func (h *MemberHandler) GetCurrentMember(c *gin.Context) {
	memberID, ok := middleware.RequireMemberID(c)
	if !ok {
		return
	}

	member, err := h.memberService.GetByID(c.Request.Context(), memberID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Member not found"})
		return
	}

	c.JSON(http.StatusOK, toMemberResponse(member))
}

func (h *MemberHandler) UpdateCurrentMember(c *gin.Context) {
	memberID, ok := middleware.RequireMemberID(c)
	if !ok {
		return
	}

	var req models.UpdateMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	member, err := h.memberService.UpdateProfile(c.Request.Context(), memberID, &req)
	if err != nil {
		if errors.Is(err, service.ErrForbidden) {
			c.JSON(http.StatusForbidden, gin.H{"error": "Status changes require approval rights"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update profile"})
		return
	}

	c.JSON(http.StatusOK, toMemberResponse(member))
}

// List returns the roster, optionally scoped to one department.
func (h *MemberHandler) List(c *gin.Context) {
	ctx := c.Request.Context()

	if departmentID := c.Query("department"); departmentID != "" {
		list, err := h.memberService.GetByDepartment(ctx, departmentID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list members"})
			return
		}
		c.JSON(http.StatusOK, toMemberResponses(list))
		return
	}

	list, err := h.memberService.GetAll(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list members"})
		return
	}
	c.JSON(http.StatusOK, toMemberResponses(list))
}

func (h *MemberHandler) Get(c *gin.Context) {
	member, err := h.memberService.GetByID(c.Request.Context(), c.Param("memberId"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Member not found"})
		return
	}
	c.JSON(http.StatusOK, toMemberResponse(member))
}

// Search searches members by name, email or employee code
func (h *MemberHandler) Search(c *gin.Context) {
	query := c.Query("q")
	if len(query) < 2 {
		c.JSON(http.StatusOK, []interface{}{})
		return
	}

	members, err := h.memberService.Search(c.Request.Context(), query)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to search members"})
		return
	}

	c.JSON(http.StatusOK, toMemberResponses(members))
}

func (h *MemberHandler) Update(c *gin.Context) {
	var req models.UpdateMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	member, err := h.memberService.UpdateMember(c.Request.Context(), c.Param("memberId"), &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrMemberNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Member not found"})
		case errors.Is(err, service.ErrInvalidInput):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid member status"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update member"})
		}
		return
	}

	c.JSON(http.StatusOK, toMemberResponse(member))
}

func (h *MemberHandler) Approve(c *gin.Context) {
	member, err := h.memberService.Approve(c.Request.Context(), c.Param("memberId"))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrMemberNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Member not found"})
		case errors.Is(err, service.ErrConflict):
			c.JSON(http.StatusConflict, gin.H{"error": "Member is not pending approval"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to approve member"})
		}
		return
	}

	c.JSON(http.StatusOK, toMemberResponse(member))
}

func (h *MemberHandler) Deactivate(c *gin.Context) {
	if err := h.memberService.Deactivate(c.Request.Context(), c.Param("memberId")); err != nil {
		if errors.Is(err, service.ErrMemberNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Member not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to deactivate member"})
		return
	}

	c.JSON(http.StatusOK, models.SuccessResponse{Success: true, Message: "Member deactivated"})
}

// ============================================
// Departments & Stages
// ============================================

func (h *MemberHandler) ListDepartments(c *gin.Context) {
	departments, err := h.memberService.GetDepartments(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list departments"})
		return
	}

	response := make([]models.DepartmentResponse, len(departments))
	for i, d := range departments {
		response[i] = toDepartmentResponse(d)
	}
	c.JSON(http.StatusOK, response)
}

func (h *MemberHandler) CreateDepartment(c *gin.Context) {
	var req models.CreateDepartmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	department, err := h.memberService.CreateDepartment(c.Request.Context(), req.Name)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create department"})
		return
	}

	c.JSON(http.StatusCreated, toDepartmentResponse(department))
}

func (h *MemberHandler) ListStages(c *gin.Context) {
	stages, err := h.memberService.GetStages(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list stages"})
		return
	}

	response := make([]models.StageResponse, len(stages))
	for i, s := range stages {
		response[i] = toStageResponse(s)
	}
	c.JSON(http.StatusOK, response)
}

package handlers

import (
	"errors"
	"net/http"

	"github.com/Marga-Ghale/ora-hr-backend/internal/models"
	"github.com/Marga-Ghale/ora-hr-backend/internal/service"
	"github.com/gin-gonic/gin"
)

// ============================================
// Role Handler
// ============================================

type RoleHandler struct {
	roleService service.RoleService
}

func (h *RoleHandler) Create(c *gin.Context) {
	var req models.CreateRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	role, err := h.roleService.Create(c.Request.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrConflict):
			c.JSON(http.StatusConflict, gin.H{"error": "Role with this name already exists"})
		case errors.Is(err, service.ErrInvalidInput):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create role"})
		}
		return
	}

	c.JSON(http.StatusCreated, toRoleResponse(role))
}

func (h *RoleHandler) List(c *gin.Context) {
	roles, err := h.roleService.GetAll(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list roles"})
		return
	}

	response := make([]models.RoleResponse, len(roles))
	for i, r := range roles {
		response[i] = toRoleResponse(r)
	}
	c.JSON(http.StatusOK, response)
}

func (h *RoleHandler) Update(c *gin.Context) {
	var req models.UpdateRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	role, err := h.roleService.Update(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Role not found"})
		case errors.Is(err, service.ErrInvalidInput):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update role"})
		}
		return
	}

	c.JSON(http.StatusOK, toRoleResponse(role))
}

func (h *RoleHandler) Delete(c *gin.Context) {
	if err := h.roleService.Delete(c.Request.Context(), c.Param("id")); err != nil {
		if errors.Is(err, service.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Role not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete role"})
		return
	}

	c.JSON(http.StatusOK, models.SuccessResponse{Success: true, Message: "Role deleted"})
}

func (h *RoleHandler) Assign(c *gin.Context) {
	var req models.AssignRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.roleService.Assign(c.Request.Context(), c.Param("memberId"), req.RoleID); err != nil {
		switch {
		case errors.Is(err, service.ErrMemberNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Member not found"})
		case errors.Is(err, service.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Role not found"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to assign role"})
		}
		return
	}

	c.JSON(http.StatusOK, models.SuccessResponse{Success: true, Message: "Role assigned"})
}

func (h *RoleHandler) Unassign(c *gin.Context) {
	if err := h.roleService.Unassign(c.Request.Context(), c.Param("memberId"), c.Param("roleId")); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to unassign role"})
		return
	}

	c.JSON(http.StatusOK, models.SuccessResponse{Success: true, Message: "Role unassigned"})
}

func (h *RoleHandler) ListMemberRoles(c *gin.Context) {
	roles, err := h.roleService.GetMemberRoles(c.Request.Context(), c.Param("memberId"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list member roles"})
		return
	}

	response := make([]models.RoleResponse, len(roles))
	for i, r := range roles {
		response[i] = toRoleResponse(r)
	}
	c.JSON(http.StatusOK, response)
}

package handlers

import (
	"net/http"
	"strconv"
	"time"

	"cityportal/i18n"
	"cityportal/models"
	"cityportal/services/resource"
	"cityportal/utils"

	"github.com/gin-gonic/gin"
)

const maxDueWithinDays = 365

// ResourceHandler serves /api/resources (staff only).
type ResourceHandler struct {
	Resources resource.ResourceService
}

func NewResourceHandler(resources resource.ResourceService) *ResourceHandler {
	return &ResourceHandler{Resources: resources}
}

func (h *ResourceHandler) ListResourcesHandler(c *gin.Context) {
	var f models.ResourceFilter
	if err := c.ShouldBindQuery(&f); err != nil {
		utils.RespondBindError(c, err)
		return
	}
	list, err := h.Resources.List(c.Request.Context(), f)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *ResourceHandler) GetResourceHandler(c *gin.Context) {
	r, err := h.Resources.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, r)
}

func (h *ResourceHandler) CreateResourceHandler(c *gin.Context) {
	var req models.ResourceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondBindError(c, err)
		return
	}
	r, err := h.Resources.Create(c.Request.Context(), req)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, r)
}

func (h *ResourceHandler) UpdateResourceHandler(c *gin.Context) {
	var req models.ResourceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondBindError(c, err)
		return
	}
	r, err := h.Resources.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, r)
}

func (h *ResourceHandler) DeleteResourceHandler(c *gin.Context) {
	if err := h.Resources.Delete(c.Request.Context(), c.Param("id")); err != nil {
		utils.RespondError(c, err)
		return
	}
	ok(c, i18n.MsgDeleted)
}

// RecordMaintenanceHandler handles POST /api/resources/:id/maintenance.
func (h *ResourceHandler) RecordMaintenanceHandler(c *gin.Context) {
	var req models.MaintenanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondBindError(c, err)
		return
	}
	r, err := h.Resources.RecordMaintenance(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, r)
}

// DueForMaintenanceHandler handles GET /api/resources/maintenance/due?days=N.
func (h *ResourceHandler) DueForMaintenanceHandler(c *gin.Context) {
	days, err := strconv.Atoi(c.DefaultQuery("days", "7"))
	if err != nil || days < 0 || days > maxDueWithinDays {
		utils.RespondError(c, models.NewValidationError("days", "must be between 0 and 365"))
		return
	}
	list, err := h.Resources.DueForMaintenance(c.Request.Context(), time.Duration(days)*24*time.Hour)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	if list == nil {
		list = []models.Resource{}
	}
	c.JSON(http.StatusOK, gin.H{"items": list})
}

package handlers

import (
	"net/http"

	"cityportal/i18n"
	"cityportal/models"
	"cityportal/services/catalog"
	"cityportal/utils"

	"github.com/gin-gonic/gin"
)

// CatalogHandler serves /api/services, the public catalog of municipal services.
type CatalogHandler struct {
	Catalog catalog.CatalogService
}

func NewCatalogHandler(svc catalog.CatalogService) *CatalogHandler {
	return &CatalogHandler{Catalog: svc}
}

func (h *CatalogHandler) ListServicesHandler(c *gin.Context) {
	var f models.ServiceFilter
	if err := c.ShouldBindQuery(&f); err != nil {
		utils.RespondBindError(c, err)
		return
	}
	// only staff may look past the active entries
	if !utils.CurrentViewer(c).IsStaff() {
		f.Status = ""
	}
	list, err := h.Catalog.List(c.Request.Context(), f)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *CatalogHandler) GetServiceHandler(c *gin.Context) {
	s, err := h.Catalog.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, s)
}

func (h *CatalogHandler) CreateServiceHandler(c *gin.Context) {
	var req models.ServiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondBindError(c, err)
		return
	}
	s, err := h.Catalog.Create(c.Request.Context(), req)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, s)
}

func (h *CatalogHandler) UpdateServiceHandler(c *gin.Context) {
	var req models.ServiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondBindError(c, err)
		return
	}
	s, err := h.Catalog.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, s)
}

func (h *CatalogHandler) DeleteServiceHandler(c *gin.Context) {
	if err := h.Catalog.Delete(c.Request.Context(), c.Param("id")); err != nil {
		utils.RespondError(c, err)
		return
	}
	ok(c, i18n.MsgDeleted)
}

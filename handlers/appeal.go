package handlers

import (
	"net/http"

	"cityportal/i18n"
	"cityportal/models"
	"cityportal/services/appeal"
	"cityportal/utils"

	"github.com/gin-gonic/gin"
)

// AppealHandler serves /api/appeals.
type AppealHandler struct {
	Appeals appeal.AppealService
}

func NewAppealHandler(appeals appeal.AppealService) *AppealHandler {
	return &AppealHandler{Appeals: appeals}
}

// CreateAppealHandler handles POST /api/appeals.
func (h *AppealHandler) CreateAppealHandler(c *gin.Context) {
	var req models.AppealCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondBindError(c, err)
		return
	}
	a, err := h.Appeals.Create(c.Request.Context(), utils.CurrentUserID(c), req)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, a)
}

// MyAppealsHandler handles GET /api/appeals/mine.
func (h *AppealHandler) MyAppealsHandler(c *gin.Context) {
	var f models.AppealFilter
	if err := c.ShouldBindQuery(&f); err != nil {
		utils.RespondBindError(c, err)
		return
	}
	list, err := h.Appeals.ListMine(c.Request.Context(), utils.CurrentUserID(c), f)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// ListAppealsHandler handles GET /api/appeals (staff).
func (h *AppealHandler) ListAppealsHandler(c *gin.Context) {
	var f models.AppealFilter
	if err := c.ShouldBindQuery(&f); err != nil {
		utils.RespondBindError(c, err)
		return
	}
	list, err := h.Appeals.List(c.Request.Context(), f)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// GetAppealHandler handles GET /api/appeals/:id.
func (h *AppealHandler) GetAppealHandler(c *gin.Context) {
	a, err := h.Appeals.Get(c.Request.Context(), utils.CurrentViewer(c), c.Param("id"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, a)
}

// WithdrawAppealHandler handles POST /api/appeals/:id/withdraw.
func (h *AppealHandler) WithdrawAppealHandler(c *gin.Context) {
	if err := h.Appeals.Withdraw(c.Request.Context(), utils.CurrentUserID(c), c.Param("id")); err != nil {
		utils.RespondError(c, err)
		return
	}
	ok(c, i18n.MsgDeleted)
}

// AssignAppealHandler handles PATCH /api/appeals/:id/assign (staff).
func (h *AppealHandler) AssignAppealHandler(c *gin.Context) {
	var req models.AppealAssignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondBindError(c, err)
		return
	}
	a, err := h.Appeals.Assign(c.Request.Context(), c.Param("id"), req.EmployeeID)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, a)
}

// UpdateAppealStatusHandler handles PATCH /api/appeals/:id/status (staff).
func (h *AppealHandler) UpdateAppealStatusHandler(c *gin.Context) {
	var req models.AppealStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondBindError(c, err)
		return
	}
	a, err := h.Appeals.UpdateStatus(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, a)
}

// DeleteAppealHandler handles DELETE /api/appeals/:id (admin).
func (h *AppealHandler) DeleteAppealHandler(c *gin.Context) {
	if err := h.Appeals.Delete(c.Request.Context(), c.Param("id")); err != nil {
		utils.RespondError(c, err)
		return
	}
	ok(c, i18n.MsgDeleted)
}

package handlers

import (
	"net/http"

	"cityportal/i18n"
	"cityportal/models"
	"cityportal/services/role"
	"cityportal/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RoleHandler serves /api/roles.
type RoleHandler struct {
	Roles role.RoleService
}

func NewRoleHandler(roles role.RoleService) *RoleHandler {
	return &RoleHandler{Roles: roles}
}

// MyRolesHandler handles GET /api/roles/me.
func (h *RoleHandler) MyRolesHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"roles": nonNilRoles(utils.CurrentRoles(c))})
}

// UserRolesHandler handles GET /api/roles/:userId (admin).
func (h *RoleHandler) UserRolesHandler(c *gin.Context) {
	roles, err := h.Roles.GetRoles(c.Request.Context(), c.Param("userId"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"roles": nonNilRoles(roles)})
}

// GrantRoleHandler handles POST /api/roles (admin).
func (h *RoleHandler) GrantRoleHandler(c *gin.Context) {
	var req models.RoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondBindError(c, err)
		return
	}
	admin := utils.CurrentUserID(c)
	if err := h.Roles.Grant(c.Request.Context(), req.UserID, req.Role, admin); err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RequestLogger(c).Info("Role granted",
		zap.String("userID", req.UserID), zap.String("role", string(req.Role)), zap.String("by", admin))
	ok(c, i18n.MsgSaved)
}

// RevokeRoleHandler handles DELETE /api/roles/:userId/:role (admin).
func (h *RoleHandler) RevokeRoleHandler(c *gin.Context) {
	userID, r := c.Param("userId"), models.Role(c.Param("role"))
	if err := h.Roles.Revoke(c.Request.Context(), userID, r); err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RequestLogger(c).Info("Role revoked",
		zap.String("userID", userID), zap.String("role", string(r)), zap.String("by", utils.CurrentUserID(c)))
	ok(c, i18n.MsgDeleted)
}

func nonNilRoles(r []models.Role) []models.Role {
	if r == nil {
		return []models.Role{}
	}
	return r
}

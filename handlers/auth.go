package handlers

import (
	"net/http"

	"cityportal/i18n"
	"cityportal/models"
	"cityportal/services/notification"
	"cityportal/services/user"
	"cityportal/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AuthHandler serves /api/auth.
type AuthHandler struct {
	Users         user.UserService
	Notifications notification.NotificationService
}

func NewAuthHandler(users user.UserService, notifications notification.NotificationService) *AuthHandler {
	return &AuthHandler{Users: users, Notifications: notifications}
}

// SignUpHandler handles POST /api/auth/signup.
func (h *AuthHandler) SignUpHandler(c *gin.Context) {
	logger := utils.RequestLogger(c)
	if _, ok := requireDevice(c); !ok {
		return
	}
	var req models.SignUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondBindError(c, err)
		return
	}
	resp, err := h.Users.SignUp(c.Request.Context(), req, utils.CurrentDevice(c))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	logger.Info("User signed up", zap.String("userID", resp.User.ID))
	c.JSON(http.StatusCreated, resp)
}

// SignInHandler handles POST /api/auth/signin.
func (h *AuthHandler) SignInHandler(c *gin.Context) {
	if _, ok := requireDevice(c); !ok {
		return
	}
	var req models.SignInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondBindError(c, err)
		return
	}
	resp, err := h.Users.SignIn(c.Request.Context(), req, utils.CurrentDevice(c))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// SignOutHandler handles POST /api/auth/signout for the current device.
func (h *AuthHandler) SignOutHandler(c *gin.Context) {
	if err := h.Users.SignOut(c.Request.Context(), utils.CurrentUserID(c), utils.CurrentDeviceID(c)); err != nil {
		utils.RespondError(c, err)
		return
	}
	ok(c, i18n.MsgSignedOut)
}

// SignOutOthersHandler handles POST /api/auth/signout-others.
func (h *AuthHandler) SignOutOthersHandler(c *gin.Context) {
	if err := h.Users.SignOutOtherDevices(c.Request.Context(), utils.CurrentUserID(c), utils.CurrentDeviceID(c)); err != nil {
		utils.RespondError(c, err)
		return
	}
	ok(c, i18n.MsgSignedOut)
}

// ListDevicesHandler handles GET /api/auth/devices.
func (h *AuthHandler) ListDevicesHandler(c *gin.Context) {
	devices, err := h.Users.ListDevices(c.Request.Context(), utils.CurrentUserID(c))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	if devices == nil {
		devices = []models.Device{}
	}
	c.JSON(http.StatusOK, gin.H{"devices": devices, "current": utils.CurrentDeviceID(c)})
}

// ChangePasswordHandler handles PUT /api/auth/password.
func (h *AuthHandler) ChangePasswordHandler(c *gin.Context) {
	var req models.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondBindError(c, err)
		return
	}
	if err := h.Users.ChangePassword(c.Request.Context(), utils.CurrentUserID(c), req, utils.CurrentDeviceID(c)); err != nil {
		utils.RespondError(c, err)
		return
	}
	ok(c, i18n.MsgPasswordChanged)
}

// SessionHandler handles GET /api/auth/session.
func (h *AuthHandler) SessionHandler(c *gin.Context) {
	s, err := h.Users.Session(c.Request.Context(), utils.CurrentUserID(c))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, s)
}

// PushTokenHandler handles PUT /api/auth/push-token.
func (h *AuthHandler) PushTokenHandler(c *gin.Context) {
	var req models.PushTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondBindError(c, err)
		return
	}
	if err := h.Notifications.UpdatePushToken(c.Request.Context(), utils.CurrentUserID(c), req.Token); err != nil {
		utils.RespondError(c, err)
		return
	}
	ok(c, i18n.MsgSaved)
}

package handlers

import (
	"net/http"

	"cityportal/models"
	"cityportal/services/profile"
	"cityportal/utils"

	"github.com/gin-gonic/gin"
)

// ProfileHandler serves /api/profile.
type ProfileHandler struct {
	Profiles profile.ProfileService
}

func NewProfileHandler(profiles profile.ProfileService) *ProfileHandler {
	return &ProfileHandler{Profiles: profiles}
}

// GetProfileHandler handles GET /api/profile.
func (h *ProfileHandler) GetProfileHandler(c *gin.Context) {
	p, err := h.Profiles.Get(c.Request.Context(), utils.CurrentUserID(c))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// UpdateProfileHandler handles PATCH /api/profile.
func (h *ProfileHandler) UpdateProfileHandler(c *gin.Context) {
	var req models.ProfileUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondBindError(c, err)
		return
	}
	p, err := h.Profiles.Update(c.Request.Context(), utils.CurrentUserID(c), req)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// UploadAvatarHandler handles POST /api/profile/avatar (multipart field "file").
func (h *ProfileHandler) UploadAvatarHandler(c *gin.Context) {
	f, ok := formFile(c, "file", profile.MaxAvatarBytes)
	if !ok {
		return
	}
	defer f.Body.Close()

	p, err := h.Profiles.UploadAvatar(c.Request.Context(), utils.CurrentUserID(c), profile.AvatarUpload{
		Filename:    f.Filename,
		ContentType: f.ContentType,
		Size:        f.Size,
		Body:        f.Body,
	})
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// ListEmployeesHandler handles GET /api/profile/employees.
func (h *ProfileHandler) ListEmployeesHandler(c *gin.Context) {
	list, err := h.Profiles.ListEmployees(c.Request.Context())
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	if list == nil {
		list = []models.Profile{}
	}
	c.JSON(http.StatusOK, gin.H{"items": list})
}

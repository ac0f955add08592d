package handlers

import (
	"mime/multipart"
	"net/http"
	"strings"

	"cityportal/i18n"
	"cityportal/utils"

	"github.com/gin-gonic/gin"
)

// upload is a multipart file opened for streaming to storage.
type upload struct {
	Filename    string
	ContentType string
	Size        int64
	Body        multipart.File
}

// formFile opens the multipart field and rejects bodies over maxBytes before reading them.
// The caller must close the returned body.
func formFile(c *gin.Context, field string, maxBytes int64) (*upload, bool) {
	fh, err := c.FormFile(field)
	if err != nil {
		utils.RespondBindError(c, err)
		return nil, false
	}
	if maxBytes > 0 && fh.Size > maxBytes {
		utils.JSONError(c, http.StatusRequestEntityTooLarge, "too_large", i18n.ErrTooLarge)
		return nil, false
	}
	f, err := fh.Open()
	if err != nil {
		utils.RespondError(c, err)
		return nil, false
	}
	ct := fh.Header.Get("Content-Type")
	if ct == "application/octet-stream" {
		ct = ""
	}
	return &upload{Filename: fh.Filename, ContentType: ct, Size: fh.Size, Body: f}, true
}

// ok writes a localized confirmation message.
func ok(c *gin.Context, key string) {
	c.JSON(http.StatusOK, gin.H{"message": i18n.T(utils.RequestLanguage(c), key)})
}

// requireDevice aborts requests that did not send X-Device-ID.
func requireDevice(c *gin.Context) (string, bool) {
	id := strings.TrimSpace(utils.CurrentDevice(c).DeviceID)
	if id == "" {
		utils.JSONError(c, http.StatusBadRequest, "device_required", i18n.ErrDeviceRequired)
		return "", false
	}
	return id, true
}

package handlers

import (
	"net/http"

	"cityportal/i18n"
	"cityportal/models"
	"cityportal/services/news"
	"cityportal/utils"

	"github.com/gin-gonic/gin"
)

// NewsHandler serves /api/news.
type NewsHandler struct {
	News news.NewsService
}

func NewNewsHandler(svc news.NewsService) *NewsHandler {
	return &NewsHandler{News: svc}
}

// ListNewsHandler handles GET /api/news. Staff may pass ?status= to see drafts and archives.
func (h *NewsHandler) ListNewsHandler(c *gin.Context) {
	var f models.NewsFilter
	if err := c.ShouldBindQuery(&f); err != nil {
		utils.RespondBindError(c, err)
		return
	}
	var (
		list models.List[models.News]
		err  error
	)
	if f.Status != "" && utils.CurrentViewer(c).IsStaff() {
		list, err = h.News.List(c.Request.Context(), f)
	} else {
		list, err = h.News.ListPublished(c.Request.Context(), f)
	}
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *NewsHandler) GetNewsHandler(c *gin.Context) {
	n, err := h.News.Get(c.Request.Context(), utils.CurrentViewer(c), c.Param("id"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, n)
}

func (h *NewsHandler) CreateNewsHandler(c *gin.Context) {
	var req models.NewsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondBindError(c, err)
		return
	}
	n, err := h.News.Create(c.Request.Context(), utils.CurrentUserID(c), req)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, n)
}

func (h *NewsHandler) UpdateNewsHandler(c *gin.Context) {
	var req models.NewsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondBindError(c, err)
		return
	}
	n, err := h.News.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, n)
}

func (h *NewsHandler) PublishNewsHandler(c *gin.Context) {
	n, err := h.News.Publish(c.Request.Context(), c.Param("id"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, n)
}

func (h *NewsHandler) ArchiveNewsHandler(c *gin.Context) {
	n, err := h.News.Archive(c.Request.Context(), c.Param("id"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, n)
}

func (h *NewsHandler) DeleteNewsHandler(c *gin.Context) {
	if err := h.News.Delete(c.Request.Context(), c.Param("id")); err != nil {
		utils.RespondError(c, err)
		return
	}
	ok(c, i18n.MsgDeleted)
}

// UploadNewsImageHandler handles POST /api/news/:id/image (multipart field "file").
func (h *NewsHandler) UploadNewsImageHandler(c *gin.Context) {
	f, ok := formFile(c, "file", news.MaxImageBytes)
	if !ok {
		return
	}
	defer f.Body.Close()

	n, err := h.News.UploadImage(c.Request.Context(), c.Param("id"), news.ImageUpload{
		Filename:    f.Filename,
		ContentType: f.ContentType,
		Size:        f.Size,
		Body:        f.Body,
	})
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, n)
}

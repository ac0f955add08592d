package handlers

import (
	"net/http"

	"cityportal/i18n"
	"cityportal/models"
	"cityportal/services/document"
	"cityportal/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// DocumentHandler serves /api/documents.
type DocumentHandler struct {
	Documents document.DocumentService
	MaxBytes  int64
}

func NewDocumentHandler(documents document.DocumentService, maxBytes int64) *DocumentHandler {
	return &DocumentHandler{Documents: documents, MaxBytes: maxBytes}
}

// UploadDocumentHandler handles POST /api/documents as multipart: "file" plus the metadata fields.
func (h *DocumentHandler) UploadDocumentHandler(c *gin.Context) {
	var meta models.DocumentMeta
	if err := c.ShouldBind(&meta); err != nil {
		utils.RespondBindError(c, err)
		return
	}
	f, ok := formFile(c, "file", h.MaxBytes)
	if !ok {
		return
	}
	defer f.Body.Close()

	doc, err := h.Documents.Upload(c.Request.Context(), utils.CurrentViewer(c), meta, document.FileUpload{
		Filename:    f.Filename,
		ContentType: f.ContentType,
		Size:        f.Size,
		Body:        f.Body,
	})
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RequestLogger(c).Info("Document uploaded",
		zap.String("documentID", doc.ID), zap.String("visibility", doc.Visibility), zap.Int64("size", doc.File.Size))
	c.JSON(http.StatusCreated, doc)
}

func (h *DocumentHandler) ListDocumentsHandler(c *gin.Context) {
	var f models.DocumentFilter
	if err := c.ShouldBindQuery(&f); err != nil {
		utils.RespondBindError(c, err)
		return
	}
	list, err := h.Documents.List(c.Request.Context(), utils.CurrentViewer(c), f)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *DocumentHandler) GetDocumentHandler(c *gin.Context) {
	doc, err := h.Documents.Get(c.Request.Context(), utils.CurrentViewer(c), c.Param("id"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, doc)
}

// DownloadDocumentHandler handles GET /api/documents/:id/download. With ?redirect=1 it answers 302.
func (h *DocumentHandler) DownloadDocumentHandler(c *gin.Context) {
	link, err := h.Documents.DownloadURL(c.Request.Context(), utils.CurrentViewer(c), c.Param("id"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	if c.Query("redirect") != "" {
		c.Redirect(http.StatusFound, link.URL)
		return
	}
	c.JSON(http.StatusOK, link)
}

func (h *DocumentHandler) UpdateDocumentHandler(c *gin.Context) {
	var meta models.DocumentMeta
	if err := c.ShouldBindJSON(&meta); err != nil {
		utils.RespondBindError(c, err)
		return
	}
	doc, err := h.Documents.UpdateMeta(c.Request.Context(), utils.CurrentViewer(c), c.Param("id"), meta)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, doc)
}

func (h *DocumentHandler) DeleteDocumentHandler(c *gin.Context) {
	if err := h.Documents.Delete(c.Request.Context(), utils.CurrentViewer(c), c.Param("id")); err != nil {
		utils.RespondError(c, err)
		return
	}
	ok(c, i18n.MsgDeleted)
}

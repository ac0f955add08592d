package handlers

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"cityportal/utils"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func init() {
	gin.SetMode(gin.TestMode)
	utils.SetLogger(zap.NewNop())
}

func uploadRequest(t *testing.T, content []byte) *http.Request {
	t.Helper()
	buf := &bytes.Buffer{}
	mw := multipart.NewWriter(buf)
	fw, err := mw.CreateFormFile("file", "a.txt")
	require.NoError(t, err)
	_, err = fw.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/upload", buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestFormFile(t *testing.T) {
	r := gin.New()
	r.POST("/upload", func(c *gin.Context) {
		f, ok := formFile(c, "file", 4)
		if !ok {
			return
		}
		defer f.Body.Close()
		c.JSON(http.StatusOK, gin.H{"name": f.Filename, "size": f.Size, "type": f.ContentType})
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, uploadRequest(t, []byte("abc")))
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"name":"a.txt","size":3,"type":""}`, w.Body.String())

	w = httptest.NewRecorder()
	r.ServeHTTP(w, uploadRequest(t, []byte("too long")))
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/upload", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRequireDevice(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/", nil)

	_, ok := requireDevice(c)
	assert.False(t, ok)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "device_required")
}

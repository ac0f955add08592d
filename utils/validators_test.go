package utils

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterValidators_Lang(t *testing.T) {
	require.NoError(t, RegisterValidators())

	type payload struct {
		Language string `json:"language" binding:"omitempty,lang"`
	}
	r := gin.New()
	r.POST("/x", func(c *gin.Context) {
		var p payload
		if err := c.ShouldBindJSON(&p); err != nil {
			RespondBindError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	})

	for body, want := range map[string]int{
		`{"language":"ru"}`: http.StatusNoContent,
		`{"language":"en"}`: http.StatusNoContent,
		`{}`:                http.StatusNoContent,
		`{"language":"zz"}`: http.StatusBadRequest,
	} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/x", stringsReader(body)))
		assert.Equal(t, want, w.Code, body)
	}
}

package response

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestUUIDParam(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/orders/:id", func(c *gin.Context) {
		id, ok := UUIDParam(c, "id")
		if !ok {
			return
		}
		chapter, ok := UUIDQuery(c, "chapterId")
		if !ok {
			return
		}
		Success(c, gin.H{"id": id, "chapter": chapter})
	})

	cases := []struct {
		path string
		code int
	}{
		{"/orders/11111111-1111-1111-1111-111111111111", http.StatusOK},
		{"/orders/11111111-1111-1111-1111-111111111111?chapterId=22222222-2222-2222-2222-222222222222", http.StatusOK},
		{"/orders/not-a-uuid", http.StatusBadRequest},
		{"/orders/11111111-1111-1111-1111-111111111111?chapterId=ch1", http.StatusBadRequest},
	}
	for _, tc := range cases {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, tc.path, nil))
		assert.Equal(t, tc.code, w.Code, tc.path)
	}
}

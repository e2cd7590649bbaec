package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"learnhub/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeUploader struct {
	mu   sync.Mutex
	keys []string
	err  error
}

func (u *fakeUploader) Upload(ctx context.Context, key string, r io.Reader, contentType string) (string, error) {
	if u.err != nil {
		return "", u.err
	}
	if _, err := io.ReadAll(r); err != nil {
		return "", err
	}
	u.mu.Lock()
	u.keys = append(u.keys, key)
	u.mu.Unlock()
	return "https://cdn.example.com/" + key, nil
}

func multipartBody(t *testing.T, files map[string]int) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for name, size := range files {
		part, err := w.CreateFormFile("files", name)
		require.NoError(t, err)
		_, err = part.Write(bytes.Repeat([]byte{0x89}, size))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

func upload(h *UploadHandler, body *bytes.Buffer, contentType string) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/upload", h.UploadFile)

	req := httptest.NewRequest(http.MethodPost, "/upload", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestUploadFile(t *testing.T) {
	u := &fakeUploader{}
	h := NewUploadHandler(u, 1)
	h.now = func() time.Time { return time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC) }

	body, ct := multipartBody(t, map[string]int{"cover.PNG": 1024, "wechat.jpg": 2048})
	w := upload(h, body, ct)

	require.Equal(t, http.StatusOK, w.Code)
	var resp response.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	urls := resp.Data.([]interface{})
	assert.Len(t, urls, 2)
	for _, key := range u.keys {
		assert.True(t, strings.HasPrefix(key, "uploads/20260601/"), key)
	}
}

func TestUploadFile_Rejections(t *testing.T) {
	h := NewUploadHandler(&fakeUploader{}, 1)

	body, ct := multipartBody(t, map[string]int{"script.sh": 10})
	assert.Equal(t, http.StatusBadRequest, upload(h, body, ct).Code)

	body, ct = multipartBody(t, map[string]int{"huge.png": 2 << 20})
	assert.Equal(t, http.StatusBadRequest, upload(h, body, ct).Code)

	body, ct = multipartBody(t, map[string]int{})
	assert.Equal(t, http.StatusBadRequest, upload(h, body, ct).Code)
}

func TestUploadFile_Failures(t *testing.T) {
	body, ct := multipartBody(t, map[string]int{"cover.png": 10})
	w := upload(NewUploadHandler(nil, 1), body, ct)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	body, ct = multipartBody(t, map[string]int{"cover.png": 10})
	w = upload(NewUploadHandler(&fakeUploader{err: errors.New("oss timeout")}, 1), body, ct)
	assert.Equal(t, http.StatusBadGateway, w.Code)
}

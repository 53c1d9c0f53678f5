package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"animal-nexus-go/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubUploadService 记录每次调用并返回预设结果。
type stubUploadService struct {
	calls  []service.SubmitChunkInput
	result *service.SubmitChunkResult
	err    error
}

func (s *stubUploadService) SubmitChunk(ctx context.Context, in service.SubmitChunkInput) (*service.SubmitChunkResult, error) {
	s.calls = append(s.calls, in)
	if s.err != nil {
		return nil, s.err
	}
	if s.result != nil {
		return s.result, nil
	}
	return &service.SubmitChunkResult{}, nil
}

func newUploadRouter(svc service.UploadService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/api/v1/upload/chunk", NewUploadHandler(svc).SubmitChunk)
	return r
}

// buildChunkRequest 构造一次分片提交的 multipart 请求。chunk 为 nil 时省略文件字段。
func buildChunkRequest(t *testing.T, fields map[string]string, chunk []byte) *http.Request {
	t.Helper()
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	if chunk != nil {
		fw, err := w.CreateFormFile("chunk", "blob")
		require.NoError(t, err)
		_, err = fw.Write(chunk)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest("POST", "/api/v1/upload/chunk", body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func fullFields() map[string]string {
	return map[string]string{
		"uploadId":    "abc123",
		"chunkIndex":  "0",
		"totalChunks": "3",
		"fileType":    "image",
		"fileName":    "logo.png",
	}
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

// TestSubmitChunk_MissingFields 逐个省略必填字段，均应 400 且不触达业务层。
func TestSubmitChunk_MissingFields(t *testing.T) {
	for _, missing := range []string{"uploadId", "chunkIndex", "totalChunks", "fileType", "fileName", "chunk"} {
		t.Run(missing, func(t *testing.T) {
			stub := &stubUploadService{}
			router := newUploadRouter(stub)

			fields := fullFields()
			chunk := []byte("AAA")
			if missing == "chunk" {
				chunk = nil
			} else {
				delete(fields, missing)
			}

			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, buildChunkRequest(t, fields, chunk))

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, "Missing required fields", decodeBody(t, rec)["error"])
			assert.Empty(t, stub.calls, "缺字段的请求不应产生任何状态变更")
		})
	}
}

// TestSubmitChunk_InvalidNumbers 验证数字字段的取值校验。
func TestSubmitChunk_InvalidNumbers(t *testing.T) {
	cases := []struct {
		name  string
		field string
		value string
	}{
		{"非数字序号", "chunkIndex", "abc"},
		{"总数为零", "totalChunks", "0"},
		{"负序号", "chunkIndex", "-1"},
		{"序号越界", "chunkIndex", "3"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			stub := &stubUploadService{}
			router := newUploadRouter(stub)

			fields := fullFields()
			fields[tc.field] = tc.value

			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, buildChunkRequest(t, fields, []byte("AAA")))

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Empty(t, stub.calls)
		})
	}
}

// TestSubmitChunk_Received 验证未完成时应答 202 chunk-received。
func TestSubmitChunk_Received(t *testing.T) {
	stub := &stubUploadService{result: &service.SubmitChunkResult{Completed: false}}
	router := newUploadRouter(stub)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, buildChunkRequest(t, fullFields(), []byte("AAA")))

	assert.Equal(t, http.StatusAccepted, rec.Code)
	assert.Equal(t, "chunk-received", decodeBody(t, rec)["status"])

	require.Len(t, stub.calls, 1)
	assert.Equal(t, "abc123", stub.calls[0].UploadID)
	assert.Equal(t, 0, stub.calls[0].ChunkIndex)
	assert.Equal(t, 3, stub.calls[0].TotalChunks)
	assert.Equal(t, []byte("AAA"), stub.calls[0].Data)
}

// TestSubmitChunk_Completed 验证完成时返回托管端给出的地址与标识。
func TestSubmitChunk_Completed(t *testing.T) {
	stub := &stubUploadService{result: &service.SubmitChunkResult{
		Completed: true,
		URL:       "https://cdn.example.com/images/logo-1.png",
		PublicID:  "images/logo-1",
	}}
	router := newUploadRouter(stub)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, buildChunkRequest(t, fullFields(), []byte("CCC")))

	assert.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "https://cdn.example.com/images/logo-1.png", body["url"])
	assert.Equal(t, "images/logo-1", body["publicId"])
}

// TestSubmitChunk_ProcessingFailure 验证业务层错误在边界收敛为统一的 500 应答。
func TestSubmitChunk_ProcessingFailure(t *testing.T) {
	stub := &stubUploadService{err: assert.AnError}
	router := newUploadRouter(stub)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, buildChunkRequest(t, fullFields(), []byte("AAA")))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Failed to process chunk", decodeBody(t, rec)["error"])
}

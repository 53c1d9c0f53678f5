package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"animal-nexus-go/internal/model"
	"animal-nexus-go/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubAssetService 记录删除调用并返回预设结果。
type stubAssetService struct {
	assets  []model.Asset
	listErr error
	deleted []string
	delErr  error
}

func (s *stubAssetService) ListAssets(ctx context.Context) ([]model.Asset, error) {
	return s.assets, s.listErr
}

func (s *stubAssetService) DeleteAsset(ctx context.Context, publicID string) error {
	s.deleted = append(s.deleted, publicID)
	return s.delErr
}

func newAssetRouter(svc service.AssetService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := NewAssetHandler(svc)
	assets := r.Group("/api/v1/assets")
	assets.GET("", h.ListAssets)
	assets.DELETE("/*publicId", h.DeleteAsset)
	return r
}

// TestListAssets_OK 验证列表接口原样透出记录。
func TestListAssets_OK(t *testing.T) {
	stub := &stubAssetService{assets: []model.Asset{
		{PublicID: "pdfs/manual-2", FileName: "manual.pdf"},
		{PublicID: "images/cow-1", FileName: "cow.jpg"},
	}}
	router := newAssetRouter(stub)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET", "/api/v1/assets", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	var body []map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body, 2)
	assert.Equal(t, "pdfs/manual-2", body[0]["publicId"])
}

// TestDeleteAsset_WildcardPublicID 验证带目录前缀的资产标识能完整传递。
func TestDeleteAsset_WildcardPublicID(t *testing.T) {
	stub := &stubAssetService{}
	router := newAssetRouter(stub)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("DELETE", "/api/v1/assets/pdfs/manual-2", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, stub.deleted, 1)
	assert.Equal(t, "pdfs/manual-2", stub.deleted[0])
}

// TestDeleteAsset_NotFound 验证不存在的资产应答 404。
func TestDeleteAsset_NotFound(t *testing.T) {
	stub := &stubAssetService{delErr: service.ErrAssetNotFound}
	router := newAssetRouter(stub)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("DELETE", "/api/v1/assets/images/nope", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

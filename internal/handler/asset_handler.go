package handler

import (
	"errors"
	"net/http"
	"strings"

	"animal-nexus-go/internal/service"
	"animal-nexus-go/pkg/log"

	"github.com/gin-gonic/gin"
)

// AssetHandler 负责处理资产记录相关的 API 请求。
type AssetHandler struct {
	assetService service.AssetService
}

// NewAssetHandler 创建一个新的 AssetHandler 实例。
func NewAssetHandler(assetService service.AssetService) *AssetHandler {
	return &AssetHandler{assetService: assetService}
}

// ListAssets 返回全部资产记录，最新的在前。
func (h *AssetHandler) ListAssets(c *gin.Context) {
	assets, err := h.assetService.ListAssets(c.Request.Context())
	if err != nil {
		log.Error("ListAssets: failed to list assets", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch assets"})
		return
	}
	c.JSON(http.StatusOK, assets)
}

// DeleteAsset 删除一个资产：先删托管端，再删本地记录。
// 资产标识可能包含目录前缀（如 "pdfs/manual-123"），因此路由使用通配参数。
func (h *AssetHandler) DeleteAsset(c *gin.Context) {
	publicID := strings.TrimPrefix(c.Param("publicId"), "/")
	if publicID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing publicId"})
		return
	}

	if err := h.assetService.DeleteAsset(c.Request.Context(), publicID); err != nil {
		if errors.Is(err, service.ErrAssetNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Asset not found"})
			return
		}
		log.Error("DeleteAsset: failed to delete asset", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete asset"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Asset deleted"})
}

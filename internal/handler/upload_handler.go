// Package handler 包含了处理 HTTP 请求的控制器逻辑。
package handler

import (
	"io"
	"net/http"
	"strconv"

	"animal-nexus-go/internal/service"
	"animal-nexus-go/pkg/log"

	"github.com/gin-gonic/gin"
)

// UploadHandler 负责处理所有与分片上传相关的 API 请求。
type UploadHandler struct {
	uploadService service.UploadService
}

// NewUploadHandler 创建一个新的 UploadHandler 实例。
func NewUploadHandler(uploadService service.UploadService) *UploadHandler {
	return &UploadHandler{uploadService: uploadService}
}

// SubmitChunk 处理单个分片的提交请求。
// 请求为 multipart 表单：chunk（二进制）、uploadId、chunkIndex、totalChunks、fileType、fileName。
// 缺少任一字段时应答 400 并且不产生任何状态变更。
func (h *UploadHandler) SubmitChunk(c *gin.Context) {
	uploadID := c.PostForm("uploadId")
	chunkIndexStr := c.PostForm("chunkIndex")
	totalChunksStr := c.PostForm("totalChunks")
	fileType := c.PostForm("fileType")
	fileName := c.PostForm("fileName")

	file, _, fileErr := c.Request.FormFile("chunk")
	if fileErr != nil || uploadID == "" || chunkIndexStr == "" || totalChunksStr == "" || fileType == "" || fileName == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing required fields"})
		return
	}
	defer file.Close()

	chunkIndex, err := strconv.Atoi(chunkIndexStr)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid chunk index"})
		return
	}
	totalChunks, err := strconv.Atoi(totalChunksStr)
	if err != nil || totalChunks <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid total chunks"})
		return
	}
	if chunkIndex < 0 || chunkIndex >= totalChunks {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Chunk index out of range"})
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		log.Error("SubmitChunk: failed to read chunk body", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to process chunk"})
		return
	}

	result, err := h.uploadService.SubmitChunk(c.Request.Context(), service.SubmitChunkInput{
		UploadID:    uploadID,
		ChunkIndex:  chunkIndex,
		TotalChunks: totalChunks,
		FileType:    fileType,
		FileName:    fileName,
		Data:        data,
	})
	if err != nil {
		// 解码失败、存储失败、转存失败在边界统一收敛为同一条错误信息
		log.Error("SubmitChunk: failed to process chunk", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to process chunk"})
		return
	}

	if !result.Completed {
		c.JSON(http.StatusAccepted, gin.H{"status": "chunk-received"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"url":      result.URL,
		"publicId": result.PublicID,
	})
}

// Package mediahost 提供了与媒体资产托管端交互的客户端。
// 支持 Cloudinary 风格的远端托管服务与自托管的 MinIO 两种后端，
// 具体实现通过配置选择并在启动时注入到业务层，便于在测试中替换。
package mediahost

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

// UploadOptions 描述一次资产上传的目标位置与命名信息。
type UploadOptions struct {
	Folder       string // 目标目录，例如 "images"、"pdfs"
	ResourceType string // "image" 或 "raw"
	FileName     string // 原始文件名，用于派生资产命名
}

// UploadResult 是托管端对一次成功上传的应答。
type UploadResult struct {
	URL      string // 资产的永久访问地址
	PublicID string // 托管端分配的资产标识，删除时使用
	Size     int64  // 上传的字节数
}

// Client 定义了媒体托管端的操作接口。
type Client interface {
	// Upload 上传一份完整的字节缓冲并返回永久地址与资产标识。
	Upload(ctx context.Context, data []byte, opts UploadOptions) (*UploadResult, error)
	// Destroy 按资产标识删除托管端上的资产。
	Destroy(ctx context.Context, publicID, resourceType string) error
}

// derivePublicID 从原始文件名派生资产标识：去掉扩展名的基础名加毫秒时间戳，保证唯一。
func derivePublicID(fileName string) string {
	base := strings.TrimSuffix(filepath.Base(fileName), filepath.Ext(fileName))
	if base == "" || base == "." {
		base = "file"
	}
	return fmt.Sprintf("%s-%d", base, time.Now().UnixMilli())
}

// deriveExtension 返回不带点号的文件扩展名，没有扩展名时为空串。
func deriveExtension(fileName string) string {
	return strings.TrimPrefix(filepath.Ext(fileName), ".")
}

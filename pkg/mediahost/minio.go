package mediahost

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"animal-nexus-go/internal/config"
	"animal-nexus-go/pkg/log"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MinIOClient 是自托管模式下的媒体托管端实现，资产直接写入 MinIO 存储桶。
// 资产标识即对象键（含目录前缀），访问地址为预签名 URL。
type MinIOClient struct {
	client    *minio.Client
	bucket    string
	urlExpiry time.Duration
}

// NewMinIOClient 初始化 MinIO 客户端并确保指定的存储桶存在。
func NewMinIOClient(cfg config.MinIOConfig) (*MinIOClient, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("初始化 MinIO 客户端失败: %w", err)
	}

	// 检查存储桶是否存在，如果不存在则创建
	ctx := context.Background()
	exists, err := client.BucketExists(ctx, cfg.BucketName)
	if err != nil {
		return nil, fmt.Errorf("检查 MinIO 存储桶失败: %w", err)
	}
	if !exists {
		log.Infof("存储桶 '%s' 不存在，正在创建...", cfg.BucketName)
		if err := client.MakeBucket(ctx, cfg.BucketName, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("创建 MinIO 存储桶失败: %w", err)
		}
	}

	expiry := time.Duration(cfg.URLExpiryHours) * time.Hour
	if expiry <= 0 {
		expiry = 7 * 24 * time.Hour
	}

	return &MinIOClient{
		client:    client,
		bucket:    cfg.BucketName,
		urlExpiry: expiry,
	}, nil
}

// Upload 将完整的字节缓冲写入存储桶，对象键为 "{folder}/{派生标识}[.ext]"。
func (c *MinIOClient) Upload(ctx context.Context, data []byte, opts UploadOptions) (*UploadResult, error) {
	objectName := fmt.Sprintf("%s/%s", opts.Folder, derivePublicID(opts.FileName))
	if ext := deriveExtension(opts.FileName); ext != "" {
		objectName = objectName + "." + ext
	}

	contentType := "application/octet-stream"
	if opts.ResourceType == "image" {
		contentType = "image/*"
	}

	_, err := c.client.PutObject(ctx, c.bucket, objectName, bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return nil, fmt.Errorf("写入 MinIO 对象失败, objectName: %s: %w", objectName, err)
	}

	presignedURL, err := c.client.PresignedGetObject(ctx, c.bucket, objectName, c.urlExpiry, nil)
	if err != nil {
		return nil, fmt.Errorf("生成预签名 URL 失败, objectName: %s: %w", objectName, err)
	}

	log.Infof("[MediaHost] 资产已写入 MinIO, objectName: %s", objectName)
	return &UploadResult{
		URL:      presignedURL.String(),
		PublicID: objectName,
		Size:     int64(len(data)),
	}, nil
}

// Destroy 删除存储桶中的对象，资产标识即对象键。
func (c *MinIOClient) Destroy(ctx context.Context, publicID, resourceType string) error {
	if err := c.client.RemoveObject(ctx, c.bucket, publicID, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("删除 MinIO 对象失败, objectName: %s: %w", publicID, err)
	}
	return nil
}

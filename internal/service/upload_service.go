// Package service 包含了应用的业务逻辑层。
package service

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"

	"animal-nexus-go/internal/model"
	"animal-nexus-go/internal/repository"
	"animal-nexus-go/pkg/kafka"
	"animal-nexus-go/pkg/log"
	"animal-nexus-go/pkg/mediahost"
	"animal-nexus-go/pkg/tasks"
)

var (
	// ErrInvalidChunkFormat 表示缓冲区中的分片无法解码回字节。缓冲区保留现场，不自动重试。
	ErrInvalidChunkFormat = errors.New("invalid chunk format")
	// ErrUploadForwardFailed 表示媒体托管端拒绝或处理组装后的文件失败。缓冲区保留，认领锁释放，允许重试。
	ErrUploadForwardFailed = errors.New("upload forward failed")
)

// SubmitChunkInput 是一次分片提交携带的全部字段，字段齐全性由 handler 层保证。
type SubmitChunkInput struct {
	UploadID    string
	ChunkIndex  int
	TotalChunks int
	FileType    string
	FileName    string
	Data        []byte
}

// SubmitChunkResult 是一次分片提交的处理结果。
// Completed 为 false 时表示还在等待更多分片；为 true 时 URL 与 PublicID 有效。
type SubmitChunkResult struct {
	Completed bool
	URL       string
	PublicID  string
}

// UploadService 接口定义了分片上传相关的业务操作。
type UploadService interface {
	SubmitChunk(ctx context.Context, in SubmitChunkInput) (*SubmitChunkResult, error)
}

type uploadService struct {
	chunkRepo repository.ChunkBufferRepository
	assetRepo repository.AssetRepository
	media     mediahost.Client
}

// NewUploadService 创建一个新的 UploadService 实例。
func NewUploadService(chunkRepo repository.ChunkBufferRepository, assetRepo repository.AssetRepository, media mediahost.Client) UploadService {
	return &uploadService{
		chunkRepo: chunkRepo,
		assetRepo: assetRepo,
		media:     media,
	}
}

// SubmitChunk 处理单个分片的提交。
// 分片按序号存入缓冲区（重复序号原地覆盖），凑齐 0..totalChunks-1 全部序号后，
// 由抢到认领锁的请求按序号升序组装并转存到媒体托管端，成功后释放缓冲区。
func (s *uploadService) SubmitChunk(ctx context.Context, in SubmitChunkInput) (*SubmitChunkResult, error) {
	log.Infof("[SubmitChunk] 收到分片，uploadId: %s, 序号: %d/%d", in.UploadID, in.ChunkIndex, in.TotalChunks)

	// 1. 分片做 base64 编码后存入缓冲区，并刷新回收 TTL
	encoded := base64.StdEncoding.EncodeToString(in.Data)
	if err := s.chunkRepo.StoreChunk(ctx, in.UploadID, in.ChunkIndex, encoded); err != nil {
		log.Errorf("[SubmitChunk] 存储分片失败, uploadId: %s, error: %v", in.UploadID, err)
		return nil, fmt.Errorf("存储分片失败: %w", err)
	}

	// 2. 计数未达声明总数时直接应答“分片已接收”
	count, err := s.chunkRepo.CountChunks(ctx, in.UploadID)
	if err != nil {
		log.Errorf("[SubmitChunk] 读取缓冲区分片计数失败, uploadId: %s, error: %v", in.UploadID, err)
		return nil, fmt.Errorf("读取分片计数失败: %w", err)
	}
	if count < int64(in.TotalChunks) {
		log.Infof("[SubmitChunk] 等待更多分片，uploadId: %s, 进度: %d/%d", in.UploadID, count, in.TotalChunks)
		return &SubmitChunkResult{Completed: false}, nil
	}

	// 3. 抢占合并认领锁，保证同一 uploadId 只有一个请求执行转存
	claimed, err := s.chunkRepo.ClaimAssembly(ctx, in.UploadID)
	if err != nil {
		log.Errorf("[SubmitChunk] 抢占合并认领锁失败, uploadId: %s, error: %v", in.UploadID, err)
		return nil, fmt.Errorf("抢占合并认领锁失败: %w", err)
	}
	if !claimed {
		// 另一个并发请求正在组装（或已完成），本请求按未完成应答
		log.Infof("[SubmitChunk] 合并已被其他请求认领，uploadId: %s", in.UploadID)
		return &SubmitChunkResult{Completed: false}, nil
	}

	return s.assembleAndForward(ctx, in)
}

// assembleAndForward 在持有认领锁的前提下组装全部分片并转存到媒体托管端。
func (s *uploadService) assembleAndForward(ctx context.Context, in SubmitChunkInput) (*SubmitChunkResult, error) {
	chunks, err := s.chunkRepo.GetChunks(ctx, in.UploadID)
	if err != nil {
		s.releaseClaim(ctx, in.UploadID)
		log.Errorf("[SubmitChunk] 读取缓冲区分片失败, uploadId: %s, error: %v", in.UploadID, err)
		return nil, fmt.Errorf("读取缓冲区分片失败: %w", err)
	}

	// 计数达标但序号有缺口（例如客户端送错了序号），等待补传，释放认领锁
	assembled := make([]byte, 0)
	for i := 0; i < in.TotalChunks; i++ {
		encoded, ok := chunks[i]
		if !ok {
			s.releaseClaim(ctx, in.UploadID)
			log.Warnf("[SubmitChunk] 缓冲区缺少序号 %d 的分片，uploadId: %s，等待补传", i, in.UploadID)
			return &SubmitChunkResult{Completed: false}, nil
		}
		decoded, decErr := base64.StdEncoding.DecodeString(encoded)
		if decErr != nil {
			// 缓冲区保留现场供排查，认领锁释放以便修复后重试
			s.releaseClaim(ctx, in.UploadID)
			log.Errorf("[SubmitChunk] 分片解码失败, uploadId: %s, 序号: %d, error: %v", in.UploadID, i, decErr)
			return nil, fmt.Errorf("%w: 序号 %d: %v", ErrInvalidChunkFormat, i, decErr)
		}
		assembled = append(assembled, decoded...)
	}

	// 按文件类别派生存储目录与托管端资源类型
	folder := in.FileType + "s"
	resourceType := "image"
	if in.FileType == "pdf" {
		resourceType = "raw"
	}

	result, err := s.media.Upload(ctx, assembled, mediahost.UploadOptions{
		Folder:       folder,
		ResourceType: resourceType,
		FileName:     in.FileName,
	})
	if err != nil {
		// 转存失败：缓冲区不清理（数据不丢），释放认领锁让后续请求重试
		s.releaseClaim(ctx, in.UploadID)
		log.Errorf("[SubmitChunk] 转存媒体托管端失败, uploadId: %s, error: %v", in.UploadID, err)
		return nil, fmt.Errorf("%w: %v", ErrUploadForwardFailed, err)
	}

	// 转存成功后释放缓冲区。认领锁保留到 TTL 过期，避免迟到的重复分片再次触发组装。
	if err := s.chunkRepo.DeleteBuffer(ctx, in.UploadID); err != nil {
		// 缓冲区带 TTL，清理失败也会被自动回收
		log.Warnf("[SubmitChunk] 释放上传缓冲区失败, uploadId: %s, error: %v", in.UploadID, err)
	}

	// 记录资产；转存已成功，记录失败只记日志，不影响本次应答
	asset := &model.Asset{
		FileName:     in.FileName,
		FileType:     in.FileType,
		Folder:       folder,
		ResourceType: resourceType,
		PublicID:     result.PublicID,
		URL:          result.URL,
		Size:         result.Size,
	}
	if err := s.assetRepo.Create(asset); err != nil {
		log.Errorf("[SubmitChunk] 写入资产记录失败, publicId: %s, error: %v", result.PublicID, err)
	}

	if err := kafka.ProduceAssetEvent(tasks.AssetEvent{
		Event:    tasks.AssetUploaded,
		PublicID: result.PublicID,
		URL:      result.URL,
		FileName: in.FileName,
		FileType: in.FileType,
		Folder:   folder,
	}); err != nil {
		log.Errorf("[SubmitChunk] 发送资产事件到 Kafka 失败, publicId: %s, error: %v", result.PublicID, err)
	}

	log.Infof("[SubmitChunk] 上传完成，uploadId: %s, publicId: %s, 大小: %d 字节", in.UploadID, result.PublicID, len(assembled))
	return &SubmitChunkResult{
		Completed: true,
		URL:       result.URL,
		PublicID:  result.PublicID,
	}, nil
}

// releaseClaim 释放认领锁，失败只记日志（锁自身带 TTL 兜底）。
func (s *uploadService) releaseClaim(ctx context.Context, uploadID string) {
	if err := s.chunkRepo.ReleaseClaim(ctx, uploadID); err != nil {
		log.Warnf("[SubmitChunk] 释放合并认领锁失败, uploadId: %s, error: %v", uploadID, err)
	}
}

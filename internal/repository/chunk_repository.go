// Package repository 定义了与数据库进行数据交换的接口和实现。
package repository

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
)

// ChunkBufferRepository 接口定义了分片上传缓冲区的持久化操作。
// 缓冲区按 uploadId 分 key，分片以 chunkIndex 为字段存入哈希结构，
// 重复提交同一序号会原地覆盖而不是追加，因此分片计数不会超过声明总数。
type ChunkBufferRepository interface {
	// StoreChunk 存储一个分片（已做传输安全编码的文本），并刷新缓冲区的回收 TTL。
	StoreChunk(ctx context.Context, uploadID string, chunkIndex int, encoded string) error
	// CountChunks 返回当前已存储的分片数量。key 不存在时返回 0。
	CountChunks(ctx context.Context, uploadID string) (int64, error)
	// GetChunks 按 chunkIndex 返回全部已存储分片。
	GetChunks(ctx context.Context, uploadID string) (map[int]string, error)
	// DeleteBuffer 释放整个上传缓冲区。
	DeleteBuffer(ctx context.Context, uploadID string) error
	// ClaimAssembly 以 SET NX 抢占合并权，同一 uploadId 同时只有一个请求能拿到。
	ClaimAssembly(ctx context.Context, uploadID string) (bool, error)
	// ReleaseClaim 释放合并认领锁（转存失败后允许后续请求重试）。
	ReleaseClaim(ctx context.Context, uploadID string) error
}

// chunkBufferRepository 是 ChunkBufferRepository 接口的 Redis 实现。
type chunkBufferRepository struct {
	redisClient *redis.Client
	bufferTTL   time.Duration
	claimTTL    time.Duration
}

// NewChunkBufferRepository 创建一个新的 ChunkBufferRepository 实例。
func NewChunkBufferRepository(redisClient *redis.Client, bufferTTL, claimTTL time.Duration) ChunkBufferRepository {
	return &chunkBufferRepository{
		redisClient: redisClient,
		bufferTTL:   bufferTTL,
		claimTTL:    claimTTL,
	}
}

// getBufferKey generates the redis key for an upload buffer.
func (r *chunkBufferRepository) getBufferKey(uploadID string) string {
	return "uploads:" + uploadID
}

// getClaimKey generates the redis key for the assembly claim.
func (r *chunkBufferRepository) getClaimKey(uploadID string) string {
	return "uploads:" + uploadID + ":claim"
}

// StoreChunk 将分片写入哈希并刷新 TTL。两步操作放在 pipeline 中一次往返完成。
func (r *chunkBufferRepository) StoreChunk(ctx context.Context, uploadID string, chunkIndex int, encoded string) error {
	key := r.getBufferKey(uploadID)
	pipe := r.redisClient.TxPipeline()
	pipe.HSet(ctx, key, strconv.Itoa(chunkIndex), encoded)
	pipe.Expire(ctx, key, r.bufferTTL)
	_, err := pipe.Exec(ctx)
	return err
}

// CountChunks 返回哈希中已存储的分片数。
func (r *chunkBufferRepository) CountChunks(ctx context.Context, uploadID string) (int64, error) {
	return r.redisClient.HLen(ctx, r.getBufferKey(uploadID)).Result()
}

// GetChunks 读取整个缓冲区，并把哈希字段名解析回分片序号。
func (r *chunkBufferRepository) GetChunks(ctx context.Context, uploadID string) (map[int]string, error) {
	fields, err := r.redisClient.HGetAll(ctx, r.getBufferKey(uploadID)).Result()
	if err != nil {
		return nil, err
	}

	chunks := make(map[int]string, len(fields))
	for field, value := range fields {
		index, convErr := strconv.Atoi(field)
		if convErr != nil {
			return nil, fmt.Errorf("缓冲区包含非法的分片序号字段 %q: %w", field, convErr)
		}
		chunks[index] = value
	}
	return chunks, nil
}

// DeleteBuffer 删除上传缓冲区。
func (r *chunkBufferRepository) DeleteBuffer(ctx context.Context, uploadID string) error {
	return r.redisClient.Del(ctx, r.getBufferKey(uploadID)).Err()
}

// ClaimAssembly 抢占合并认领锁。
func (r *chunkBufferRepository) ClaimAssembly(ctx context.Context, uploadID string) (bool, error) {
	return r.redisClient.SetNX(ctx, r.getClaimKey(uploadID), 1, r.claimTTL).Result()
}

// ReleaseClaim 释放合并认领锁。
func (r *chunkBufferRepository) ReleaseClaim(ctx context.Context, uploadID string) error {
	return r.redisClient.Del(ctx, r.getClaimKey(uploadID)).Err()
}

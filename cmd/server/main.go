// Package main 是应用程序的入口点。
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"animal-nexus-go/internal/config"
	"animal-nexus-go/internal/handler"
	"animal-nexus-go/internal/middleware"
	"animal-nexus-go/internal/model"
	"animal-nexus-go/internal/repository"
	"animal-nexus-go/internal/service"
	"animal-nexus-go/pkg/database"
	"animal-nexus-go/pkg/kafka"
	"animal-nexus-go/pkg/log"
	"animal-nexus-go/pkg/mediahost"

	"github.com/gin-gonic/gin"
)

func main() {
	// 1. 初始化配置
	config.Init("./configs/config.yaml")
	cfg := config.Conf

	// 2. 初始化日志记录器
	log.Init(cfg.Log.Level, cfg.Log.Format, cfg.Log.OutputPath)
	defer log.Sync() // 确保在程序退出时刷新所有缓冲的日志条目
	log.Info("日志记录器初始化成功")

	// 3. 初始化数据库、Redis 与 Kafka
	database.InitMySQL(cfg.Database.MySQL.DSN)
	database.InitRedis(cfg.Database.Redis.Addr, cfg.Database.Redis.Password, cfg.Database.Redis.DB)
	if err := database.DB.AutoMigrate(&model.Asset{}); err != nil {
		log.Fatal("资产表结构迁移失败", err)
	}
	kafka.InitProducer(cfg.Kafka)

	// 4. 初始化媒体托管端客户端（按配置选择后端，注入业务层）
	media, err := newMediaClient(cfg.Media)
	if err != nil {
		log.Fatal("初始化媒体托管端客户端失败", err)
	}

	// 5. 初始化 Repository
	bufferTTL := time.Duration(cfg.Upload.BufferTTLMinutes) * time.Minute
	if bufferTTL <= 0 {
		bufferTTL = 30 * time.Minute
	}
	claimTTL := time.Duration(cfg.Upload.ClaimTTLSeconds) * time.Second
	if claimTTL <= 0 {
		claimTTL = 2 * time.Minute
	}
	chunkRepo := repository.NewChunkBufferRepository(database.RDB, bufferTTL, claimTTL)
	assetRepo := repository.NewAssetRepository(database.DB)

	// 6. 初始化 Service (依赖注入)
	uploadService := service.NewUploadService(chunkRepo, assetRepo, media)
	assetService := service.NewAssetService(assetRepo, media)

	// 7. 设置 Gin 模式并创建路由引擎
	gin.SetMode(cfg.Server.Mode)
	r := gin.New() // 使用 New() 创建一个不带默认中间件的引擎
	r.Use(middleware.RequestLogger(), gin.Recovery())

	// 8. 注册路由
	apiV1 := r.Group("/api/v1")
	{
		upload := apiV1.Group("/upload")
		{
			upload.POST("/chunk", handler.NewUploadHandler(uploadService).SubmitChunk)
		}

		assets := apiV1.Group("/assets")
		{
			assetHandler := handler.NewAssetHandler(assetService)
			assets.GET("", assetHandler.ListAssets)
			// publicId 可能带目录前缀，使用通配参数
			assets.DELETE("/*publicId", assetHandler.DeleteAsset)
		}
	}

	// 启动 HTTP 服务器并实现优雅停机
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: r,
	}

	go func() {
		log.Infof("服务启动于 %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("HTTP 服务监听失败: %s\n", err)
		}
	}()

	// 等待中断信号以实现优雅停机
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("接收到停机信号，正在关闭服务...")

	// 设置一个5秒的超时上下文
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("HTTP 服务器关闭失败: %v", err)
	}

	log.Info("服务已优雅关闭")
}

// newMediaClient 按配置构造媒体托管端客户端。
func newMediaClient(cfg config.MediaConfig) (mediahost.Client, error) {
	switch cfg.Provider {
	case "minio":
		return mediahost.NewMinIOClient(cfg.MinIO)
	case "cloudinary", "":
		return mediahost.NewCloudinaryClient(cfg.Cloudinary), nil
	default:
		return nil, fmt.Errorf("未知的媒体托管端类型: %s", cfg.Provider)
	}
}

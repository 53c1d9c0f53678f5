package service

import (
	"context"
	"errors"

	"animal-nexus-go/internal/model"
	"animal-nexus-go/internal/repository"
	"animal-nexus-go/pkg/kafka"
	"animal-nexus-go/pkg/log"
	"animal-nexus-go/pkg/mediahost"
	"animal-nexus-go/pkg/tasks"

	"gorm.io/gorm"
)

// ErrAssetNotFound 表示指定标识的资产记录不存在。
var ErrAssetNotFound = errors.New("asset not found")

// AssetService 接口定义了资产记录相关的业务操作。
type AssetService interface {
	ListAssets(ctx context.Context) ([]model.Asset, error)
	DeleteAsset(ctx context.Context, publicID string) error
}

type assetService struct {
	assetRepo repository.AssetRepository
	media     mediahost.Client
}

// NewAssetService 创建一个新的 AssetService 实例。
func NewAssetService(assetRepo repository.AssetRepository, media mediahost.Client) AssetService {
	return &assetService{
		assetRepo: assetRepo,
		media:     media,
	}
}

// ListAssets 返回全部资产记录，最新的在前。
func (s *assetService) ListAssets(ctx context.Context) ([]model.Asset, error) {
	assets, err := s.assetRepo.FindAll()
	if err != nil {
		log.Errorf("[ListAssets] 查询资产记录失败, error: %v", err)
		return nil, err
	}
	return assets, nil
}

// DeleteAsset 先在媒体托管端删除资产，成功后再删除本地记录。
// 托管端删除失败时保留记录，避免出现无法再定位的孤儿资产。
func (s *assetService) DeleteAsset(ctx context.Context, publicID string) error {
	record, err := s.assetRepo.FindByPublicID(publicID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrAssetNotFound
		}
		log.Errorf("[DeleteAsset] 查询资产记录失败, publicId: %s, error: %v", publicID, err)
		return err
	}

	if err := s.media.Destroy(ctx, record.PublicID, record.ResourceType); err != nil {
		log.Errorf("[DeleteAsset] 删除托管端资产失败, publicId: %s, error: %v", publicID, err)
		return err
	}

	if err := s.assetRepo.DeleteByPublicID(publicID); err != nil {
		log.Errorf("[DeleteAsset] 删除资产记录失败, publicId: %s, error: %v", publicID, err)
		return err
	}

	if err := kafka.ProduceAssetEvent(tasks.AssetEvent{
		Event:    tasks.AssetDeleted,
		PublicID: publicID,
	}); err != nil {
		log.Errorf("[DeleteAsset] 发送资产事件到 Kafka 失败, publicId: %s, error: %v", publicID, err)
	}

	log.Infof("[DeleteAsset] 资产已删除, publicId: %s", publicID)
	return nil
}

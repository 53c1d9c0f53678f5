package repository

import (
	"animal-nexus-go/internal/model"

	"gorm.io/gorm"
)

// AssetRepository 接口定义了资产记录的数据持久化操作。
type AssetRepository interface {
	Create(record *model.Asset) error
	FindAll() ([]model.Asset, error)
	FindByPublicID(publicID string) (*model.Asset, error)
	DeleteByPublicID(publicID string) error
}

// assetRepository 是 AssetRepository 接口的 GORM 实现。
type assetRepository struct {
	db *gorm.DB
}

// NewAssetRepository 创建一个新的 AssetRepository 实例。
func NewAssetRepository(db *gorm.DB) AssetRepository {
	return &assetRepository{db: db}
}

// Create 在数据库中创建一条新的资产记录。
func (r *assetRepository) Create(record *model.Asset) error {
	return r.db.Create(record).Error
}

// FindAll 返回全部资产记录，最新的在前。
func (r *assetRepository) FindAll() ([]model.Asset, error) {
	var assets []model.Asset
	err := r.db.Order("id desc").Find(&assets).Error
	return assets, err
}

// FindByPublicID 根据媒体托管端标识检索资产记录。
func (r *assetRepository) FindByPublicID(publicID string) (*model.Asset, error) {
	var record model.Asset
	err := r.db.Where("public_id = ?", publicID).First(&record).Error
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// DeleteByPublicID 删除指定媒体托管端标识的资产记录。
func (r *assetRepository) DeleteByPublicID(publicID string) error {
	return r.db.Where("public_id = ?", publicID).Delete(&model.Asset{}).Error
}

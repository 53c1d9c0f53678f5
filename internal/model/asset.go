// Package model 定义了与数据库表对应的 Go 结构体。
package model

import "time"

// Asset 定义了 asset 表的 ORM 模型。
// 每条记录对应一个已成功转存到媒体托管端的资产，后台的资产管理页面按此表展示。
type Asset struct {
	ID           uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	FileName     string    `gorm:"type:varchar(255);not null" json:"fileName"`
	FileType     string    `gorm:"type:varchar(32);not null" json:"fileType"`
	Folder       string    `gorm:"type:varchar(64);not null" json:"folder"`
	ResourceType string    `gorm:"type:varchar(16);not null" json:"resourceType"` // "image" 或 "raw"
	PublicID     string    `gorm:"type:varchar(255);not null;uniqueIndex" json:"publicId"`
	URL          string    `gorm:"type:varchar(512);not null" json:"url"`
	Size         int64     `gorm:"not null" json:"size"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"createdAt"`
}

// TableName 指定了此模型在数据库中对应的表名。
func (Asset) TableName() string {
	return "asset"
}

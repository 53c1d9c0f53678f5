// Package tasks defines the structure for events that are sent to Kafka.
package tasks

// 资产事件类型。
const (
	AssetUploaded = "asset.uploaded"
	AssetDeleted  = "asset.deleted"
)

// AssetEvent 表示一次资产变更事件，供周边系统（店面缓存、后台面板）消费。
type AssetEvent struct {
	Event    string `json:"event"`
	PublicID string `json:"public_id"`
	URL      string `json:"url,omitempty"`
	FileName string `json:"file_name,omitempty"`
	FileType string `json:"file_type,omitempty"`
	Folder   string `json:"folder,omitempty"`
}

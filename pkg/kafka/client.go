// Package kafka 提供了与 Kafka 消息队列交互的功能。
package kafka

import (
	"context"
	"encoding/json"

	"animal-nexus-go/internal/config"
	"animal-nexus-go/pkg/log"
	"animal-nexus-go/pkg/tasks"

	"github.com/segmentio/kafka-go"
)

var producer *kafka.Writer

// InitProducer 初始化 Kafka 生产者。brokers 为空时跳过，事件发布退化为空操作。
func InitProducer(cfg config.KafkaConfig) {
	if cfg.Brokers == "" {
		log.Info("Kafka brokers 未配置，资产事件发布已禁用")
		return
	}
	producer = &kafka.Writer{
		Addr:     kafka.TCP(cfg.Brokers),
		Topic:    cfg.Topic,
		Balancer: &kafka.LeastBytes{},
	}
	log.Info("Kafka 生产者初始化成功")
}

// ProduceAssetEvent 发送一个资产事件到 Kafka。未启用时为空操作。
// 事件发布是 fire-and-forget 语义，调用方只记录失败，不回滚主流程。
func ProduceAssetEvent(event tasks.AssetEvent) error {
	if producer == nil {
		return nil
	}

	eventBytes, err := json.Marshal(event)
	if err != nil {
		return err
	}

	return producer.WriteMessages(context.Background(),
		kafka.Message{
			Key:   []byte(event.PublicID),
			Value: eventBytes,
		},
	)
}

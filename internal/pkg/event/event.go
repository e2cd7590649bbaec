// Package event 发布订单生命周期事件到 Kafka，供数据分析和外部系统订阅
package event

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

const (
	TypeOrderCreated   = "order.created"
	TypeOrderSubmitted = "order.submitted"
	TypeOrderPaid      = "order.paid"
	TypeOrderCancelled = "order.cancelled"
	TypeOrderRefunded  = "order.refunded"
)

const producerName = "learnhub-api"

// Envelope 事件信封
type Envelope struct {
	EventID       string          `json:"eventId"`
	EventType     string          `json:"eventType"`
	EventVersion  int             `json:"eventVersion"`
	OccurredAt    time.Time       `json:"occurredAt"`
	Producer      string          `json:"producer"`
	CorrelationID string          `json:"correlationId,omitempty"`
	Key           string          `json:"-"`
	Payload       json.RawMessage `json:"payload"`
}

// NewEnvelope 构造事件，key 用于分区（同一订单的事件保持顺序）
func NewEnvelope(eventType, key string, payload any) (Envelope, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Envelope{}, err
	}
	return Envelope{
		EventID:      uuid.NewString(),
		EventType:    eventType,
		EventVersion: 1,
		OccurredAt:   time.Now().UTC(),
		Producer:     producerName,
		Key:          key,
		Payload:      raw,
	}, nil
}

// Publisher 事件发布，尽力而为，不返回错误
type Publisher interface {
	Publish(ctx context.Context, env Envelope)
}

// NopPublisher 未配置 Kafka 时使用
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Envelope) {}

package event

import (
	"context"
	"encoding/json"
	"time"

	"learnhub/pkg/logger"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Producer 异步 Kafka 生产者，Publish 只写入内存队列，由后台协程写入 Kafka
type Producer struct {
	w       messageWriter
	inbox   chan kafka.Message
	closeCh chan struct{}
}

func NewProducer(brokers []string, topic string, buf int) *Producer {
	return newProducer(&kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireAll,
		AllowAutoTopicCreation: true,
		BatchTimeout:           50 * time.Millisecond,
	}, buf)
}

func newProducer(w messageWriter, buf int) *Producer {
	return &Producer{
		w:       w,
		inbox:   make(chan kafka.Message, buf),
		closeCh: make(chan struct{}),
	}
}

// Run 消费队列直到 ctx 结束，退出前把剩余消息写完
func (p *Producer) Run(ctx context.Context) error {
	defer close(p.closeCh)
	for {
		select {
		case <-ctx.Done():
			p.flush()
			return p.w.Close()
		case m := <-p.inbox:
			p.write(context.Background(), m)
		}
	}
}

func (p *Producer) flush() {
	flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	for {
		select {
		case m := <-p.inbox:
			p.write(flushCtx, m)
		default:
			return
		}
	}
}

func (p *Producer) write(ctx context.Context, m kafka.Message) {
	if err := p.w.WriteMessages(ctx, m); err != nil {
		logger.Log.Error("publish event failed", zap.String("key", string(m.Key)), zap.Error(err))
	}
}

// Publish 非阻塞入队，队列满时丢弃并记录日志
func (p *Producer) Publish(_ context.Context, env Envelope) {
	value, err := json.Marshal(env)
	if err != nil {
		logger.Log.Error("marshal event failed", zap.String("type", env.EventType), zap.Error(err))
		return
	}

	msg := kafka.Message{
		Key:   []byte(env.Key),
		Value: value,
		Time:  env.OccurredAt,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(env.EventType)},
		},
	}
	select {
	case p.inbox <- msg:
	default:
		logger.Log.Warn("event queue full, dropping event",
			zap.String("type", env.EventType),
			zap.String("event_id", env.EventID),
		)
	}
}

// WaitClosed 等待后台协程退出
func (p *Producer) WaitClosed() { <-p.closeCh }

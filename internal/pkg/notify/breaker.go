package notify

import (
	"context"
	"time"

	"learnhub/pkg/logger"

	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"
)

// BreakerSender 为发送渠道加熔断，连续失败后短时间内直接失败，交给 worker 重试
type BreakerSender struct {
	next Sender
	cb   *gobreaker.CircuitBreaker[struct{}]
}

func WithBreaker(next Sender) *BreakerSender {
	st := gobreaker.Settings{
		Name:        "notify-" + next.Name(),
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Log.Warn("notify breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	}
	return &BreakerSender{next: next, cb: gobreaker.NewCircuitBreaker[struct{}](st)}
}

func (s *BreakerSender) Name() string { return s.next.Name() }

func (s *BreakerSender) Accepts(to Recipient) bool { return s.next.Accepts(to) }

func (s *BreakerSender) Send(ctx context.Context, msg Message) error {
	_, err := s.cb.Execute(func() (struct{}, error) {
		return struct{}{}, s.next.Send(ctx, msg)
	})
	return err
}

// State 当前熔断状态
func (s *BreakerSender) State() gobreaker.State {
	return s.cb.State()
}

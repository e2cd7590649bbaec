package notify

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"learnhub/internal/pkg/worker"
	"learnhub/pkg/logger"
	"learnhub/pkg/metrics"

	"go.uber.org/zap"
)

// Dispatcher 通过 worker 池异步发送通知
// 每个 (接收人, 渠道) 组合是一个独立任务，单个渠道失败只重试该渠道
type Dispatcher struct {
	pool        *worker.WorkerPool
	resolver    RecipientResolver
	senders     []Sender
	adminEmails []string
	siteData    map[string]any
	metrics     *metrics.MetricsCollector
	render      func(tpl Template, to Recipient, data map[string]any) (Message, error)
}

type DispatcherOption func(*Dispatcher)

var errNoResolver = errors.New("notify: recipient resolver not set")

// WithAdminEmails 额外的管理员通知邮箱
func WithAdminEmails(emails []string) DispatcherOption {
	return func(d *Dispatcher) { d.adminEmails = emails }
}

// WithSiteData 所有模板共用的变量，例如 SiteName、SiteURL
func WithSiteData(data map[string]any) DispatcherOption {
	return func(d *Dispatcher) { d.siteData = data }
}

func WithMetrics(m *metrics.MetricsCollector) DispatcherOption {
	return func(d *Dispatcher) { d.metrics = m }
}

func NewDispatcher(pool *worker.WorkerPool, resolver RecipientResolver, senders []Sender, opts ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{pool: pool, resolver: resolver, senders: senders, render: Render}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// SetResolver 设置接收人解析器，用户模块初始化之后、worker 启动之前调用
func (d *Dispatcher) SetResolver(r RecipientResolver) {
	d.resolver = r
}

// Notify 入队，不阻塞，不返回错误
func (d *Dispatcher) Notify(_ context.Context, n Notification) {
	if len(d.senders) == 0 {
		d.record(n.Template, "skipped")
		return
	}
	d.pool.AddTask(worker.Task{
		Name: "notify:" + string(n.Template),
		Run: func(ctx context.Context) error {
			return d.fanOut(ctx, n)
		},
	})
}

// fanOut 解析接收人并为每个渠道生成发送任务
func (d *Dispatcher) fanOut(ctx context.Context, n Notification) error {
	recipients, err := d.recipients(ctx, n)
	if err != nil {
		return err
	}
	if len(recipients) == 0 {
		logger.Log.Debug("notification has no recipients", zap.String("template", string(n.Template)))
		d.record(n.Template, "skipped")
		return nil
	}

	data := make(map[string]any, len(d.siteData)+len(n.Data))
	for k, v := range d.siteData {
		data[k] = v
	}
	for k, v := range n.Data {
		data[k] = v
	}

	for _, to := range recipients {
		msg, err := d.render(n.Template, to, data)
		if err != nil {
			// 模板错误重试无意义，只丢弃该接收人
			logger.Log.Error("render notification failed",
				zap.String("template", string(n.Template)),
				zap.String("userID", to.UserID),
				zap.Error(err))
			d.record(n.Template, "dropped")
			continue
		}
		for _, s := range d.senders {
			if !s.Accepts(to) {
				continue
			}
			sender, msg := s, msg
			d.pool.AddTask(worker.Task{
				Name: fmt.Sprintf("notify:%s:%s", n.Template, sender.Name()),
				Run: func(ctx context.Context) error {
					if err := sender.Send(ctx, msg); err != nil {
						d.record(n.Template, "retry")
						return err
					}
					d.record(n.Template, "sent")
					return nil
				},
			})
		}
	}
	return nil
}

func (d *Dispatcher) recipients(ctx context.Context, n Notification) ([]Recipient, error) {
	if d.resolver == nil {
		return nil, errNoResolver
	}
	if !n.ToAdmins {
		if n.UserID == "" {
			return nil, nil
		}
		to, err := d.resolver.Recipient(ctx, n.UserID)
		if err != nil {
			return nil, fmt.Errorf("resolve recipient %s: %w", n.UserID, err)
		}
		return []Recipient{to}, nil
	}

	admins, err := d.resolver.Admins(ctx)
	if err != nil {
		return nil, fmt.Errorf("resolve admins: %w", err)
	}
	seen := make(map[string]bool, len(admins))
	for _, a := range admins {
		if a.Email != "" {
			seen[strings.ToLower(a.Email)] = true
		}
	}
	for _, email := range d.adminEmails {
		if !seen[strings.ToLower(email)] {
			seen[strings.ToLower(email)] = true
			admins = append(admins, Recipient{Email: email, Nickname: "管理员"})
		}
	}
	return admins, nil
}

func (d *Dispatcher) record(tpl Template, outcome string) {
	if d.metrics != nil {
		d.metrics.RecordNotification(string(tpl), outcome)
	}
}

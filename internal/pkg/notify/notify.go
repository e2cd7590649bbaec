// Package notify 负责订单相关的邮件与推送通知
//
// 通知都是异步、尽力而为的：Notify 只负责入队，发送失败在 worker 中重试，
// 最终失败写入死信日志，不会影响调用方的业务结果。
package notify

import (
	"context"
)

// Template 通知模板
type Template string

const (
	TemplateOrderCreated   Template = "order_created"
	TemplatePendingConfirm Template = "order_pending_confirm" // 发给管理员
	TemplatePaymentSuccess Template = "payment_success"
	TemplateOrderCancelled Template = "order_cancelled"
	TemplateOrderRefunded  Template = "order_refunded"
)

// Notification 一条待发送的通知
type Notification struct {
	Template Template
	UserID   string // 接收用户，ToAdmins 为 true 时忽略
	ToAdmins bool
	Data     map[string]any
}

// Notifier 通知入口
type Notifier interface {
	Notify(ctx context.Context, n Notification)
}

// Recipient 通知接收人
type Recipient struct {
	UserID   string
	Email    string
	Nickname string
}

// RecipientResolver 由用户模块提供
type RecipientResolver interface {
	Recipient(ctx context.Context, userID string) (Recipient, error)
	Admins(ctx context.Context) ([]Recipient, error)
}

// Message 渲染后的消息
type Message struct {
	To      Recipient
	Subject string
	HTML    string
	Text    string
	Ext     map[string]string
}

// Sender 具体的发送渠道
type Sender interface {
	Name() string
	// Accepts 判断接收人是否可以通过该渠道送达
	Accepts(to Recipient) bool
	Send(ctx context.Context, msg Message) error
}

// NopNotifier 丢弃所有通知
type NopNotifier struct{}

func (NopNotifier) Notify(context.Context, Notification) {}

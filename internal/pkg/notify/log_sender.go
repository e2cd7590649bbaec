package notify

import (
	"context"

	"learnhub/pkg/logger"

	"go.uber.org/zap"
)

// LogSender 只打印日志，开发环境未配置 SMTP 时使用
type LogSender struct{}

func (LogSender) Name() string { return "log" }

func (LogSender) Accepts(Recipient) bool { return true }

func (LogSender) Send(_ context.Context, msg Message) error {
	logger.Log.Info("notification",
		zap.String("to_user", msg.To.UserID),
		zap.String("to_email", msg.To.Email),
		zap.String("subject", msg.Subject),
		zap.String("text", msg.Text),
	)
	return nil
}

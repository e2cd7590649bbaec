package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"learnhub/internal/pkg/config"

	"github.com/aliyun/alibaba-cloud-sdk-go/sdk/requests"
	"github.com/aliyun/alibaba-cloud-sdk-go/services/push"
)

// pushClient 抽象阿里云推送客户端
type pushClient interface {
	Push(request *push.PushRequest) (*push.PushResponse, error)
}

// PushSender 阿里云移动推送渠道，按账号（用户ID）推送
type PushSender struct {
	client pushClient
	appKey int64
}

func NewPushSender(cfg config.PushConfig) (*PushSender, error) {
	if cfg.AccessKeyID == "" || cfg.AppKey == 0 {
		return nil, errors.New("push config is missing")
	}

	client, err := push.NewClientWithAccessKey(cfg.RegionID, cfg.AccessKeyID, cfg.AccessKeySecret)
	if err != nil {
		return nil, err
	}
	return &PushSender{client: client, appKey: cfg.AppKey}, nil
}

func (s *PushSender) Name() string { return "push" }

func (s *PushSender) Accepts(to Recipient) bool { return to.UserID != "" }

func (s *PushSender) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	request := push.CreatePushRequest()
	request.AppKey = requests.NewInteger(int(s.appKey))
	request.Target = "ACCOUNT"
	request.TargetValue = msg.To.UserID
	request.Title = msg.Subject
	request.Body = msg.Text
	request.DeviceType = "ALL"  // iOS & Android
	request.PushType = "NOTICE" // 通知

	// 扩展参数 (JSON 序列化)
	if len(msg.Ext) > 0 {
		extJSON, _ := json.Marshal(msg.Ext)
		request.AndroidExtParameters = string(extJSON)
		request.IOSExtParameters = string(extJSON)
	}

	if _, err := s.client.Push(request); err != nil {
		return fmt.Errorf("push to account %s: %w", msg.To.UserID, err)
	}
	return nil
}

package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"learnhub/internal/domain/order/model"
	"learnhub/internal/domain/order/repository"
	"learnhub/internal/pkg/apperr"
	"learnhub/internal/pkg/principal"
	"learnhub/pkg/cache"
	"learnhub/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	settingsCacheKey = "settings:" + model.PaymentSettingsKey
	settingsCacheTTL = 5 * time.Minute
)

// PaymentSettingsService 收款码与支付说明
type PaymentSettingsService struct {
	repo  repository.SettingRepository
	cache cache.CacheService
}

func NewPaymentSettingsService(repo repository.SettingRepository, c cache.CacheService) *PaymentSettingsService {
	return &PaymentSettingsService{repo: repo, cache: c}
}

// Get 未配置时返回默认值
func (s *PaymentSettingsService) Get(ctx context.Context) (model.PaymentSettings, error) {
	var settings model.PaymentSettings
	if s.cache != nil {
		if err := s.cache.Get(ctx, settingsCacheKey, &settings); err == nil {
			return settings, nil
		}
	}

	row, err := s.repo.Get(ctx, model.PaymentSettingsKey)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.DefaultPaymentSettings(), nil
	}
	if err != nil {
		return settings, apperr.Storage(err, "load payment settings")
	}

	settings = model.DefaultPaymentSettings()
	if err := json.Unmarshal([]byte(row.Value), &settings); err != nil {
		return settings, apperr.Wrap(apperr.KindUnknown, err, "decode payment settings")
	}
	if s.cache != nil {
		if err := s.cache.Set(ctx, settingsCacheKey, settings, settingsCacheTTL); err != nil {
			logger.Log.Warn("cache payment settings failed", zap.Error(err))
		}
	}
	return settings, nil
}

// Update 管理员更新收款设置
func (s *PaymentSettingsService) Update(ctx context.Context, actor principal.Principal, in model.PaymentSettings) (model.PaymentSettings, error) {
	if err := principal.RequireAdmin(actor); err != nil {
		return in, err
	}
	in.WechatQRCode = strings.TrimSpace(in.WechatQRCode)
	in.AlipayQRCode = strings.TrimSpace(in.AlipayQRCode)
	for _, u := range []string{in.WechatQRCode, in.AlipayQRCode} {
		if u != "" && !strings.HasPrefix(u, "https://") && !strings.HasPrefix(u, "http://") {
			return in, apperr.Validation("qr code must be an http(s) url")
		}
	}

	raw, err := json.Marshal(in)
	if err != nil {
		return in, apperr.Wrap(apperr.KindUnknown, err, "encode payment settings")
	}
	err = s.repo.Upsert(ctx, &model.SiteSetting{
		Key:         model.PaymentSettingsKey,
		Value:       string(raw),
		Description: "支付设置",
	})
	if err != nil {
		return in, apperr.Storage(err, "save payment settings")
	}
	if s.cache != nil {
		if err := s.cache.Delete(ctx, settingsCacheKey); err != nil {
			logger.Log.Warn("invalidate payment settings cache failed", zap.Error(err))
		}
	}
	return in, nil
}

package model

import "time"

const PaymentSettingsKey = "payment_settings"

// SiteSetting 站点配置，value 为 jsonb
type SiteSetting struct {
	Key         string    `gorm:"primaryKey;size:100" json:"key"`
	Value       string    `gorm:"type:jsonb;not null" json:"value"`
	Description string    `gorm:"size:500" json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func (SiteSetting) TableName() string { return "site_settings" }

// PaymentSettings 收款设置
type PaymentSettings struct {
	WechatQRCode        string `json:"wechatQrCode,omitempty"`
	AlipayQRCode        string `json:"alipayQrCode,omitempty"`
	PaymentInstructions string `json:"paymentInstructions,omitempty"`
	EnableManualConfirm bool   `json:"enableManualConfirm"`
}

// DefaultPaymentSettings 未配置时的默认值
func DefaultPaymentSettings() PaymentSettings {
	return PaymentSettings{EnableManualConfirm: true}
}

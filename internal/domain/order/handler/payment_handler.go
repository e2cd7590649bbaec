package handler

import (
	"net/http"

	"learnhub/internal/domain/order/model"
	"learnhub/internal/domain/order/service"
	"learnhub/internal/pkg/principal"
	"learnhub/pkg/response"

	"github.com/gin-gonic/gin"
)

// PaymentHandler 收款设置处理器
type PaymentHandler struct {
	settings *service.PaymentSettingsService
}

func NewPaymentHandler(settings *service.PaymentSettingsService) *PaymentHandler {
	return &PaymentHandler{settings: settings}
}

// GetSettings 收款码与支付说明
// @Summary 支付设置
// @Tags Payment
// @Produce json
// @Success 200 {object} response.Response{data=model.PaymentSettings}
// @Router /payment/settings [get]
func (h *PaymentHandler) GetSettings(c *gin.Context) {
	settings, err := h.settings.Get(c.Request.Context())
	if err != nil {
		response.FromError(c, err, 0)
		return
	}
	response.Success(c, settings)
}

// UpdateSettings 更新支付设置
// @Summary 更新支付设置
// @Tags Admin
// @Security Bearer
// @Accept json
// @Produce json
// @Param input body model.PaymentSettings true "支付设置"
// @Success 200 {object} response.Response{data=model.PaymentSettings}
// @Router /admin/payment/settings [put]
func (h *PaymentHandler) UpdateSettings(c *gin.Context) {
	var input model.PaymentSettings
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}

	p, _ := principal.From(c)
	settings, err := h.settings.Update(c.Request.Context(), p, input)
	if err != nil {
		response.FromError(c, err, 0)
		return
	}
	response.Success(c, settings)
}

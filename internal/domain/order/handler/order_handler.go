package handler

import (
	"context"
	"net/http"

	catalogmodel "learnhub/internal/domain/catalog/model"
	"learnhub/internal/domain/order/model"
	"learnhub/internal/domain/order/service"
	"learnhub/internal/pkg/principal"
	"learnhub/pkg/response"
	"learnhub/pkg/utils"

	"github.com/gin-gonic/gin"
)

// OrderService 处理器依赖的订单服务
type OrderService interface {
	CreateOrder(ctx context.Context, userID string, ref catalogmodel.ProductRef) (*model.Order, error)
	SubmitPaymentConfirmation(ctx context.Context, actor principal.Principal, orderID string, method model.PaymentMethod) (*model.Order, error)
	ConfirmPayment(ctx context.Context, actor principal.Principal, orderID, paymentNo string) (*model.Order, error)
	RejectOrRefund(ctx context.Context, actor principal.Principal, orderID string, action service.RejectAction, note string) (*model.Order, error)
	GetOrder(ctx context.Context, actor principal.Principal, orderID string) (*model.Order, error)
	ListOrders(ctx context.Context, actor principal.Principal, status model.Status, page utils.Pagination) ([]model.Order, int64, error)
	ListMyOrders(ctx context.Context, userID string, status model.Status, page utils.Pagination) ([]model.Order, int64, error)
}

// OrderHandler 订单处理器
type OrderHandler struct {
	service OrderService
	stats   *service.StatsService
}

func NewOrderHandler(service OrderService, stats *service.StatsService) *OrderHandler {
	return &OrderHandler{service: service, stats: stats}
}

// CreateOrderInput 下单参数
type CreateOrderInput struct {
	ProductType string `json:"productType" binding:"required,oneof=course membership"`
	ProductID   string `json:"productId" binding:"required,uuid"`
}

// SubmitInput 提交支付参数
type SubmitInput struct {
	PaymentMethod model.PaymentMethod `json:"paymentMethod" binding:"required,oneof=wechat alipay"`
}

// ConfirmInput 确认收款参数
type ConfirmInput struct {
	PaymentNo string `json:"paymentNo" binding:"max=100"`
}

// RejectInput 驳回参数
type RejectInput struct {
	Action service.RejectAction `json:"action" binding:"omitempty,oneof=cancel refund"`
	Note   string               `json:"note" binding:"max=500"`
}

// OrderQuery 订单列表查询参数
type OrderQuery struct {
	utils.Pagination
	Status model.Status `form:"status"`
}

// CreateOrder 下单
// @Summary 创建订单
// @Tags Order
// @Security Bearer
// @Accept json
// @Produce json
// @Param input body CreateOrderInput true "商品"
// @Success 200 {object} response.Response{data=model.Order}
// @Failure 409 {object} response.Response "已购买"
// @Router /orders [post]
func (h *OrderHandler) CreateOrder(c *gin.Context) {
	var input CreateOrderInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}
	ref, err := catalogmodel.ParseProductRef(input.ProductType, input.ProductID)
	if err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrProductInvalid, err.Error())
		return
	}

	p, _ := principal.From(c)
	order, err := h.service.CreateOrder(c.Request.Context(), p.UserID, ref)
	if err != nil {
		response.FromError(c, err, response.ErrProductInvalid)
		return
	}
	response.Success(c, order)
}

// ListMyOrders 我的订单
// @Summary 我的订单
// @Tags Order
// @Security Bearer
// @Produce json
// @Param status query string false "订单状态"
// @Param page query int false "页码"
// @Param limit query int false "每页数量"
// @Success 200 {object} response.Response{data=utils.PageResult}
// @Router /orders [get]
func (h *OrderHandler) ListMyOrders(c *gin.Context) {
	var q OrderQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}

	p, _ := principal.From(c)
	q.GetPageOffset()
	orders, total, err := h.service.ListMyOrders(c.Request.Context(), p.UserID, q.Status, q.Pagination)
	if err != nil {
		response.FromError(c, err, 0)
		return
	}
	response.Success(c, utils.NewPageResult(orders, total, q.Pagination))
}

// GetOrder 订单详情
// @Summary 订单详情
// @Tags Order
// @Security Bearer
// @Produce json
// @Param id path string true "订单ID"
// @Success 200 {object} response.Response{data=model.Order}
// @Router /orders/{id} [get]
func (h *OrderHandler) GetOrder(c *gin.Context) {
	id, ok := response.UUIDParam(c, "id")
	if !ok {
		return
	}
	p, _ := principal.From(c)
	order, err := h.service.GetOrder(c.Request.Context(), p, id)
	if err != nil {
		response.FromError(c, err, response.ErrOrderNotFound)
		return
	}
	response.Success(c, order)
}

// SubmitPayment 用户提交“我已支付”
// @Summary 提交支付确认
// @Tags Order
// @Security Bearer
// @Accept json
// @Produce json
// @Param id path string true "订单ID"
// @Param input body SubmitInput true "支付方式"
// @Success 200 {object} response.Response{data=model.Order}
// @Failure 409 {object} response.Response "订单状态不正确或已过期"
// @Router /orders/{id}/submit [post]
func (h *OrderHandler) SubmitPayment(c *gin.Context) {
	id, ok := response.UUIDParam(c, "id")
	if !ok {
		return
	}
	var input SubmitInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}

	p, _ := principal.From(c)
	order, err := h.service.SubmitPaymentConfirmation(c.Request.Context(), p, id, input.PaymentMethod)
	if err != nil {
		response.FromError(c, err, response.ErrOrderNotFound)
		return
	}
	response.Success(c, order)
}

// AdminListOrders 订单列表（管理员）
// @Summary 订单列表
// @Tags Admin
// @Security Bearer
// @Produce json
// @Param status query string false "pending / awaiting_confirmation / paid / cancelled / refunded"
// @Param page query int false "页码"
// @Param limit query int false "每页数量"
// @Success 200 {object} response.Response{data=utils.PageResult}
// @Router /admin/orders [get]
func (h *OrderHandler) AdminListOrders(c *gin.Context) {
	var q OrderQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}

	p, _ := principal.From(c)
	q.GetPageOffset()
	orders, total, err := h.service.ListOrders(c.Request.Context(), p, q.Status, q.Pagination)
	if err != nil {
		response.FromError(c, err, 0)
		return
	}
	response.Success(c, utils.NewPageResult(orders, total, q.Pagination))
}

// ConfirmPayment 确认收款
// @Summary 确认收款
// @Tags Admin
// @Security Bearer
// @Accept json
// @Produce json
// @Param id path string true "订单ID"
// @Param input body ConfirmInput false "外部支付流水号"
// @Success 200 {object} response.Response{data=model.Order}
// @Router /admin/orders/{id}/confirm [post]
func (h *OrderHandler) ConfirmPayment(c *gin.Context) {
	id, ok := response.UUIDParam(c, "id")
	if !ok {
		return
	}
	var input ConfirmInput
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&input); err != nil {
			response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
			return
		}
	}

	p, _ := principal.From(c)
	order, err := h.service.ConfirmPayment(c.Request.Context(), p, id, input.PaymentNo)
	if err != nil {
		response.FromError(c, err, response.ErrOrderNotFound)
		return
	}
	response.Success(c, order)
}

// RejectOrder 驳回：取消或退款
// @Summary 取消/退款
// @Tags Admin
// @Security Bearer
// @Accept json
// @Produce json
// @Param id path string true "订单ID"
// @Param input body RejectInput false "action 为空时按订单状态决定"
// @Success 200 {object} response.Response{data=model.Order}
// @Router /admin/orders/{id}/reject [post]
func (h *OrderHandler) RejectOrder(c *gin.Context) {
	id, ok := response.UUIDParam(c, "id")
	if !ok {
		return
	}
	var input RejectInput
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&input); err != nil {
			response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
			return
		}
	}

	p, _ := principal.From(c)
	order, err := h.service.RejectOrRefund(c.Request.Context(), p, id, input.Action, input.Note)
	if err != nil {
		response.FromError(c, err, response.ErrOrderNotFound)
		return
	}
	response.Success(c, order)
}

// Stats 后台统计
// @Summary 后台统计
// @Tags Admin
// @Security Bearer
// @Produce json
// @Success 200 {object} response.Response{data=model.Stats}
// @Router /admin/stats [get]
func (h *OrderHandler) Stats(c *gin.Context) {
	stats, err := h.stats.Stats(c.Request.Context())
	if err != nil {
		response.FromError(c, err, 0)
		return
	}
	response.Success(c, stats)
}

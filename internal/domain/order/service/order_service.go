package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"slices"
	"time"

	catalogmodel "learnhub/internal/domain/catalog/model"
	catalogservice "learnhub/internal/domain/catalog/service"
	licenseservice "learnhub/internal/domain/license/service"
	"learnhub/internal/domain/order/model"
	"learnhub/internal/domain/order/repository"
	"learnhub/internal/pkg/apperr"
	"learnhub/internal/pkg/event"
	"learnhub/internal/pkg/notify"
	"learnhub/internal/pkg/principal"
	"learnhub/pkg/database"
	"learnhub/pkg/logger"
	"learnhub/pkg/metrics"
	"learnhub/pkg/utils"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	orderNoAttempts   = 3
	orderNoRandomLen  = 6
	orderNoAlphabet   = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	defaultExpiration = 30 * time.Minute
	systemActor       = "system"
)

// RejectAction 管理员驳回订单的方式
type RejectAction string

const (
	RejectAuto   RejectAction = ""       // 已支付则退款，否则取消
	RejectCancel RejectAction = "cancel" // 取消
	RejectRefund RejectAction = "refund" // 退款
)

// OrderService 订单服务
type OrderService struct {
	repo        repository.OrderRepository
	catalog     catalogservice.Reader
	licenses    licenseservice.Granter
	tx          database.Transactor
	notifier    notify.Notifier
	publisher   event.Publisher
	metrics     *metrics.MetricsCollector
	expireAfter time.Duration
	now         func() time.Time
	newOrderNo  func(now time.Time) (string, error)
}

// Option 订单服务可选配置
type Option func(*OrderService)

func WithNotifier(n notify.Notifier) Option {
	return func(s *OrderService) { s.notifier = n }
}

func WithPublisher(p event.Publisher) Option {
	return func(s *OrderService) { s.publisher = p }
}

func WithMetrics(m *metrics.MetricsCollector) Option {
	return func(s *OrderService) { s.metrics = m }
}

// WithExpireAfter 待支付订单的支付期限
func WithExpireAfter(d time.Duration) Option {
	return func(s *OrderService) {
		if d > 0 {
			s.expireAfter = d
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *OrderService) { s.now = now }
}

func NewOrderService(repo repository.OrderRepository, catalog catalogservice.Reader, licenses licenseservice.Granter, tx database.Transactor, opts ...Option) *OrderService {
	s := &OrderService{
		repo:        repo,
		catalog:     catalog,
		licenses:    licenses,
		tx:          tx,
		notifier:    notify.NopNotifier{},
		publisher:   event.NopPublisher{},
		expireAfter: defaultExpiration,
		now:         time.Now,
		newOrderNo:  GenerateOrderNo,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GenerateOrderNo LH + yyyyMMddHHmmss + 6 位大写字母数字
func GenerateOrderNo(now time.Time) (string, error) {
	suffix := make([]byte, orderNoRandomLen)
	size := big.NewInt(int64(len(orderNoAlphabet)))
	for i := range suffix {
		n, err := rand.Int(rand.Reader, size)
		if err != nil {
			return "", err
		}
		suffix[i] = orderNoAlphabet[n.Int64()]
	}
	return "LH" + now.Format("20060102150405") + string(suffix), nil
}

// CreateOrder 为单个商品创建待支付订单
func (s *OrderService) CreateOrder(ctx context.Context, userID string, ref catalogmodel.ProductRef) (*model.Order, error) {
	if userID == "" {
		return nil, apperr.Forbidden("login required")
	}
	product, err := s.catalog.GetProduct(ctx, ref)
	if err != nil {
		return nil, err
	}
	if product.IsFree {
		return nil, apperr.Validation("free product does not need to be purchased")
	}
	if !product.Purchasable {
		return nil, apperr.Validation(product.Reason)
	}

	now := s.now()
	owned, err := s.licenses.HasValidLicense(ctx, userID, ref, now)
	if err != nil {
		return nil, err
	}
	if owned {
		return nil, apperr.DuplicatePurchase("product already purchased")
	}

	expiredAt := now.Add(s.expireAfter)
	order := &model.Order{
		UserID:      userID,
		TotalAmount: product.Price,
		Status:      model.StatusPending,
		ExpiredAt:   &expiredAt,
		Items: []model.OrderItem{{
			ProductType: ref.Type(),
			ProductID:   ref.ID(),
			ProductName: product.Title,
			Quantity:    1,
			UnitPrice:   product.Price,
			TotalPrice:  product.Price,
		}},
	}

	// 订单号冲突时换一个重试
	for attempt := 1; ; attempt++ {
		order.OrderNo, err = s.newOrderNo(now)
		if err != nil {
			return nil, apperr.Wrap(apperr.KindUnknown, err, "generate order number")
		}
		err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
			return s.repo.Create(ctx, order)
		})
		if err == nil {
			break
		}
		if !errors.Is(err, gorm.ErrDuplicatedKey) || attempt >= orderNoAttempts {
			return nil, apperr.Storage(err, "create order")
		}
		logger.Log.Warn("order number collision, retrying",
			zap.String("orderNo", order.OrderNo),
			zap.Int("attempt", attempt),
		)
	}

	if s.metrics != nil {
		s.metrics.RecordOrderCreated()
	}
	logger.Log.Info("order created",
		zap.String("orderID", order.ID),
		zap.String("orderNo", order.OrderNo),
		zap.String("userID", userID),
		zap.String("amount", order.TotalAmount.StringFixed(2)),
	)
	s.notifyBuyer(ctx, order, notify.TemplateOrderCreated, "")
	s.publish(ctx, event.TypeOrderCreated, order)
	return order, nil
}

// transition 描述一次状态流转
type transition struct {
	from    []model.Status
	to      model.Status
	actorID string
	note    string
	// check 在状态检查之前执行，用于归属、过期等校验
	check func(o *model.Order) error
	// mutate 修改订单字段并返回需要额外更新的列
	mutate func(o *model.Order, now time.Time) map[string]interface{}
	// apply 在同一事务内执行的副作用（授权发放/回收）
	apply func(ctx context.Context, o *model.Order, now time.Time) error
}

// transition 在一个事务内：锁定订单、检查状态、CAS 更新、写流转记录、执行副作用
func (s *OrderService) transition(ctx context.Context, orderID string, t transition) (*model.Order, model.Status, error) {
	var (
		order *model.Order
		from  model.Status
	)
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		o, err := s.repo.GetByIDForUpdate(ctx, orderID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("order not found")
			}
			return apperr.Storage(err, "lock order")
		}
		if t.check != nil {
			if err := t.check(o); err != nil {
				return err
			}
		}
		if !slices.Contains(t.from, o.Status) {
			return apperr.Newf(apperr.KindInvalidState, "order is %s, cannot change to %s", o.Status, t.to)
		}

		now := s.now()
		updates := map[string]interface{}{}
		if t.mutate != nil {
			updates = t.mutate(o, now)
		}
		updates["status"] = t.to

		ok, err := s.repo.UpdateStatus(ctx, o.ID, t.from, updates)
		if err != nil {
			return apperr.Storage(err, "update order status")
		}
		if !ok {
			return apperr.InvalidState("order status changed concurrently")
		}
		from = o.Status
		o.Status = t.to

		if err := s.repo.AddTransition(ctx, &model.OrderTransition{
			OrderID:    o.ID,
			FromStatus: from,
			ToStatus:   t.to,
			ActorID:    t.actorID,
			Note:       t.note,
		}); err != nil {
			return apperr.Storage(err, "record order transition")
		}

		if t.apply != nil {
			if err := t.apply(ctx, o, now); err != nil {
				return err
			}
		}
		order = o
		return nil
	})
	if err != nil {
		return nil, "", err
	}

	if s.metrics != nil {
		s.metrics.RecordOrderTransition(string(from), string(t.to))
	}
	logger.Log.Info("order status changed",
		zap.String("orderID", order.ID),
		zap.String("from", string(from)),
		zap.String("to", string(t.to)),
		zap.String("actor", t.actorID),
	)
	return order, from, nil
}

func ownedBy(userID string) func(o *model.Order) error {
	return func(o *model.Order) error {
		if o.UserID != userID {
			return apperr.Forbidden("order does not belong to current user")
		}
		return nil
	}
}

// SubmitPaymentConfirmation 用户扫码付款后提交“我已支付”
func (s *OrderService) SubmitPaymentConfirmation(ctx context.Context, actor principal.Principal, orderID string, method model.PaymentMethod) (*model.Order, error) {
	if !method.Valid() {
		return nil, apperr.Validation("payment method must be wechat or alipay")
	}

	owner := ownedBy(actor.UserID)
	order, _, err := s.transition(ctx, orderID, transition{
		from:    []model.Status{model.StatusPending},
		to:      model.StatusAwaitingConfirmation,
		actorID: actor.UserID,
		check: func(o *model.Order) error {
			if err := owner(o); err != nil {
				return err
			}
			if o.Expired(s.now()) {
				return apperr.InvalidState("order expired")
			}
			return nil
		},
		mutate: func(o *model.Order, now time.Time) map[string]interface{} {
			o.PaymentMethod = method
			o.SubmittedAt = &now
			return map[string]interface{}{"payment_method": method, "submitted_at": now}
		},
	})
	if err != nil {
		return nil, err
	}

	s.notifyAdmins(ctx, order)
	s.publish(ctx, event.TypeOrderSubmitted, order)
	return order, nil
}

// ConfirmPayment 管理员确认收款，为每个订单项发放授权
// paymentNo 为外部支付流水号，可为空
func (s *OrderService) ConfirmPayment(ctx context.Context, actor principal.Principal, orderID, paymentNo string) (*model.Order, error) {
	if err := principal.RequireAdmin(actor); err != nil {
		return nil, err
	}

	order, _, err := s.transition(ctx, orderID, transition{
		from:    []model.Status{model.StatusPending, model.StatusAwaitingConfirmation},
		to:      model.StatusPaid,
		actorID: actor.UserID,
		mutate: func(o *model.Order, now time.Time) map[string]interface{} {
			o.PaidAt = &now
			updates := map[string]interface{}{"paid_at": now}
			if paymentNo != "" {
				o.PaymentNo = paymentNo
				updates["payment_no"] = paymentNo
			}
			return updates
		},
		apply: func(ctx context.Context, o *model.Order, now time.Time) error {
			for _, item := range o.Items {
				ref, err := item.Ref()
				if err != nil {
					return apperr.Wrap(apperr.KindValidation, err, "order item "+item.ID)
				}
				if _, err := s.licenses.Grant(ctx, o.UserID, ref, o.ID, now); err != nil {
					return err
				}
			}
			return nil
		},
	})
	if err != nil {
		return nil, err
	}

	s.notifyBuyer(ctx, order, notify.TemplatePaymentSuccess, "")
	s.publish(ctx, event.TypeOrderPaid, order)
	return order, nil
}

// Cancel 取消待支付或待确认的订单
func (s *OrderService) Cancel(ctx context.Context, actor principal.Principal, orderID, note string) (*model.Order, error) {
	if err := principal.RequireAdmin(actor); err != nil {
		return nil, err
	}
	return s.cancel(ctx, orderID, actor.UserID, note, nil,
		model.StatusPending, model.StatusAwaitingConfirmation)
}

func (s *OrderService) cancel(ctx context.Context, orderID, actorID, note string, check func(o *model.Order) error, from ...model.Status) (*model.Order, error) {
	order, _, err := s.transition(ctx, orderID, transition{
		from:    from,
		to:      model.StatusCancelled,
		actorID: actorID,
		note:    note,
		check:   check,
		mutate: func(o *model.Order, now time.Time) map[string]interface{} {
			o.CancelledAt = &now
			return map[string]interface{}{"cancelled_at": now}
		},
	})
	if err != nil {
		return nil, err
	}

	s.notifyBuyer(ctx, order, notify.TemplateOrderCancelled, note)
	s.publish(ctx, event.TypeOrderCancelled, order)
	return order, nil
}

// Refund 已支付订单退款，只回收本订单发放的授权
func (s *OrderService) Refund(ctx context.Context, actor principal.Principal, orderID, note string) (*model.Order, error) {
	if err := principal.RequireAdmin(actor); err != nil {
		return nil, err
	}

	order, _, err := s.transition(ctx, orderID, transition{
		from:    []model.Status{model.StatusPaid},
		to:      model.StatusRefunded,
		actorID: actor.UserID,
		note:    note,
		mutate: func(o *model.Order, now time.Time) map[string]interface{} {
			o.RefundedAt = &now
			return map[string]interface{}{"refunded_at": now}
		},
		apply: func(ctx context.Context, o *model.Order, _ time.Time) error {
			for _, item := range o.Items {
				ref, err := item.Ref()
				if err != nil {
					return apperr.Wrap(apperr.KindValidation, err, "order item "+item.ID)
				}
				if _, err := s.licenses.Revoke(ctx, o.UserID, ref, o.ID); err != nil {
					return err
				}
			}
			return nil
		},
	})
	if err != nil {
		return nil, err
	}

	s.notifyBuyer(ctx, order, notify.TemplateOrderRefunded, note)
	s.publish(ctx, event.TypeOrderRefunded, order)
	return order, nil
}

// RejectOrRefund 管理员驳回：RejectAuto 时已支付订单退款，其他状态取消
// RejectAuto 先无锁读取状态再选择操作，期间订单被并发确认或取消时按最新状态重新选择一次
func (s *OrderService) RejectOrRefund(ctx context.Context, actor principal.Principal, orderID string, action RejectAction, note string) (*model.Order, error) {
	if err := principal.RequireAdmin(actor); err != nil {
		return nil, err
	}
	if action != RejectAuto {
		return s.reject(ctx, actor, orderID, action, note)
	}

	resolved, err := s.autoRejectAction(ctx, orderID)
	if err != nil {
		return nil, err
	}
	order, err := s.reject(ctx, actor, orderID, resolved, note)
	if !apperr.Is(err, apperr.KindInvalidState) {
		return order, err
	}

	again, rerr := s.autoRejectAction(ctx, orderID)
	if rerr != nil || again == resolved {
		return nil, err
	}
	logger.Log.Info("order status changed before reject, retrying",
		zap.String("orderID", orderID),
		zap.String("action", string(again)),
	)
	return s.reject(ctx, actor, orderID, again, note)
}

func (s *OrderService) autoRejectAction(ctx context.Context, orderID string) (RejectAction, error) {
	current, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", apperr.NotFound("order not found")
		}
		return "", apperr.Storage(err, "load order")
	}
	if current.Status == model.StatusPaid {
		return RejectRefund, nil
	}
	return RejectCancel, nil
}

func (s *OrderService) reject(ctx context.Context, actor principal.Principal, orderID string, action RejectAction, note string) (*model.Order, error) {
	switch action {
	case RejectCancel:
		return s.Cancel(ctx, actor, orderID, note)
	case RejectRefund:
		return s.Refund(ctx, actor, orderID, note)
	default:
		return nil, apperr.Validation(fmt.Sprintf("unknown action %q", action))
	}
}

// ExpireStale 取消已超过支付期限的待支付订单，返回取消数量
// 已提交支付（awaiting_confirmation）的订单不会被自动取消
func (s *OrderService) ExpireStale(ctx context.Context, batch int) (int, error) {
	ids, err := s.repo.ListExpiredPending(ctx, s.now(), batch)
	if err != nil {
		return 0, apperr.Storage(err, "list expired orders")
	}

	cancelled := 0
	for _, id := range ids {
		_, err := s.cancel(ctx, id, systemActor, "订单超时未支付，已自动取消", func(o *model.Order) error {
			if !o.Expired(s.now()) {
				return apperr.InvalidState("order not expired")
			}
			return nil
		}, model.StatusPending)
		if err != nil {
			// 用户可能恰好在此时提交了支付
			if apperr.Is(err, apperr.KindInvalidState) {
				continue
			}
			return cancelled, err
		}
		cancelled++
	}
	return cancelled, nil
}

// RunSweeper 定时清理过期订单，interval <= 0 时不启动
func (s *OrderService) RunSweeper(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		return nil
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			n, err := s.ExpireStale(ctx, 100)
			if err != nil {
				logger.Log.Error("expire stale orders failed", zap.Error(err))
				continue
			}
			if n > 0 {
				logger.Log.Info("expired stale orders", zap.Int("count", n))
			}
		}
	}
}

// GetOrder 订单详情，只有本人或管理员可以查看
func (s *OrderService) GetOrder(ctx context.Context, actor principal.Principal, orderID string) (*model.Order, error) {
	var (
		order *model.Order
		err   error
	)
	if actor.IsAdmin() {
		order, err = s.repo.GetDetail(ctx, orderID)
	} else {
		order, err = s.repo.GetByID(ctx, orderID)
	}
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("order not found")
		}
		return nil, apperr.Storage(err, "load order")
	}
	if !actor.IsAdmin() && order.UserID != actor.UserID {
		return nil, apperr.Forbidden("order does not belong to current user")
	}
	return order, nil
}

// ListOrders 管理员按状态筛选订单，status 为空时返回全部
func (s *OrderService) ListOrders(ctx context.Context, actor principal.Principal, status model.Status, page utils.Pagination) ([]model.Order, int64, error) {
	if err := principal.RequireAdmin(actor); err != nil {
		return nil, 0, err
	}
	return s.list(ctx, "", status, page)
}

// ListMyOrders 当前用户的订单
func (s *OrderService) ListMyOrders(ctx context.Context, userID string, status model.Status, page utils.Pagination) ([]model.Order, int64, error) {
	return s.list(ctx, userID, status, page)
}

func (s *OrderService) list(ctx context.Context, userID string, status model.Status, page utils.Pagination) ([]model.Order, int64, error) {
	if status != "" && !status.Valid() {
		return nil, 0, apperr.Validation("invalid order status")
	}
	offset, limit := page.GetPageOffset()
	orders, total, err := s.repo.List(ctx, repository.OrderFilter{
		UserID: userID,
		Status: status,
		Offset: offset,
		Limit:  limit,
	})
	if err != nil {
		return nil, 0, apperr.Storage(err, "list orders")
	}
	return orders, total, nil
}

// ---- 提交后的通知与事件，失败只记录日志 ----

func (s *OrderService) notificationData(o *model.Order, note string) map[string]any {
	data := map[string]any{
		"OrderID":       o.ID,
		"OrderNo":       o.OrderNo,
		"Amount":        o.TotalAmount.StringFixed(2),
		"ProductName":   o.ProductName(),
		"PaymentMethod": string(o.PaymentMethod),
		"BuyerID":       o.UserID,
		"Note":          note,
	}
	if o.ExpiredAt != nil {
		data["ExpiredAt"] = o.ExpiredAt.Local().Format("2006-01-02 15:04")
	}
	return data
}

func (s *OrderService) notifyBuyer(ctx context.Context, o *model.Order, tpl notify.Template, note string) {
	s.notifier.Notify(ctx, notify.Notification{
		Template: tpl,
		UserID:   o.UserID,
		Data:     s.notificationData(o, note),
	})
}

func (s *OrderService) notifyAdmins(ctx context.Context, o *model.Order) {
	s.notifier.Notify(ctx, notify.Notification{
		Template: notify.TemplatePendingConfirm,
		ToAdmins: true,
		Data:     s.notificationData(o, ""),
	})
}

// orderEvent 事件载荷
type orderEvent struct {
	OrderID string           `json:"orderId"`
	OrderNo string           `json:"orderNo"`
	UserID  string           `json:"userId"`
	Status  model.Status     `json:"status"`
	Amount  string           `json:"amount"`
	Items   []orderEventItem `json:"items"`
}

type orderEventItem struct {
	ProductType catalogmodel.ProductType `json:"productType"`
	ProductID   string                   `json:"productId"`
	Price       string                   `json:"price"`
}

func (s *OrderService) publish(ctx context.Context, eventType string, o *model.Order) {
	payload := orderEvent{
		OrderID: o.ID,
		OrderNo: o.OrderNo,
		UserID:  o.UserID,
		Status:  o.Status,
		Amount:  o.TotalAmount.StringFixed(2),
	}
	for _, item := range o.Items {
		payload.Items = append(payload.Items, orderEventItem{
			ProductType: item.ProductType,
			ProductID:   item.ProductID,
			Price:       item.TotalPrice.StringFixed(2),
		})
	}
	env, err := event.NewEnvelope(eventType, o.ID, payload)
	if err != nil {
		logger.Log.Warn("build order event failed", zap.String("orderID", o.ID), zap.Error(err))
		return
	}
	s.publisher.Publish(ctx, env)
}

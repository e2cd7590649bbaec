package service

import (
	"context"
	"errors"
	"regexp"
	"sort"
	"sync"
	"testing"
	"time"

	catalogmodel "learnhub/internal/domain/catalog/model"
	licensemodel "learnhub/internal/domain/license/model"
	licenseservice "learnhub/internal/domain/license/service"
	"learnhub/internal/domain/order/model"
	"learnhub/internal/domain/order/repository"
	"learnhub/internal/pkg/apperr"
	"learnhub/internal/pkg/event"
	"learnhub/internal/pkg/notify"
	"learnhub/internal/pkg/principal"
	"learnhub/internal/pkg/worker"
	"learnhub/pkg/utils"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// ---- 内存订单仓库 ----

type memOrderRepo struct {
	mu          sync.Mutex
	orders      map[string]*model.Order
	transitions []model.OrderTransition
	createErrs  []error // 依次返回的 Create 错误
}

func newMemOrderRepo() *memOrderRepo {
	return &memOrderRepo{orders: map[string]*model.Order{}}
}

func cloneOrder(o *model.Order) *model.Order {
	cp := *o
	cp.Items = append([]model.OrderItem(nil), o.Items...)
	cp.Transitions = nil
	return &cp
}

func (r *memOrderRepo) Create(ctx context.Context, order *model.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.createErrs) > 0 {
		err := r.createErrs[0]
		r.createErrs = r.createErrs[1:]
		return err
	}
	if order.ID == "" {
		order.ID = uuid.NewString()
	}
	for i := range order.Items {
		order.Items[i].ID = uuid.NewString()
		order.Items[i].OrderID = order.ID
	}
	r.orders[order.ID] = cloneOrder(order)
	return nil
}

func (r *memOrderRepo) GetByID(ctx context.Context, id string) (*model.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return cloneOrder(o), nil
}

func (r *memOrderRepo) GetByIDForUpdate(ctx context.Context, id string) (*model.Order, error) {
	return r.GetByID(ctx, id)
}

func (r *memOrderRepo) GetDetail(ctx context.Context, id string) (*model.Order, error) {
	o, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	o.Transitions = r.transitionsOf(id)
	return o, nil
}

func (r *memOrderRepo) UpdateStatus(ctx context.Context, id string, from []model.Status, updates map[string]interface{}) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok {
		return false, nil
	}
	matched := false
	for _, s := range from {
		if o.Status == s {
			matched = true
		}
	}
	if !matched {
		return false, nil
	}
	for k, v := range updates {
		switch k {
		case "status":
			o.Status = v.(model.Status)
		case "payment_method":
			o.PaymentMethod = v.(model.PaymentMethod)
		case "payment_no":
			o.PaymentNo = v.(string)
		case "submitted_at":
			t := v.(time.Time)
			o.SubmittedAt = &t
		case "paid_at":
			t := v.(time.Time)
			o.PaidAt = &t
		case "cancelled_at":
			t := v.(time.Time)
			o.CancelledAt = &t
		case "refunded_at":
			t := v.(time.Time)
			o.RefundedAt = &t
		default:
			return false, errors.New("unexpected column " + k)
		}
	}
	return true, nil
}

func (r *memOrderRepo) AddTransition(ctx context.Context, t *model.OrderTransition) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.transitions = append(r.transitions, *t)
	return nil
}

func (r *memOrderRepo) transitionsOf(orderID string) []model.OrderTransition {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.OrderTransition
	for _, t := range r.transitions {
		if t.OrderID == orderID {
			out = append(out, t)
		}
	}
	return out
}

func (r *memOrderRepo) List(ctx context.Context, f repository.OrderFilter) ([]model.Order, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Order
	for _, o := range r.orders {
		if f.UserID != "" && o.UserID != f.UserID {
			continue
		}
		if f.Status != "" && o.Status != f.Status {
			continue
		}
		out = append(out, *cloneOrder(o))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].OrderNo < out[j].OrderNo })
	return out, int64(len(out)), nil
}

func (r *memOrderRepo) ListExpiredPending(ctx context.Context, now time.Time, limit int) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var ids []string
	for id, o := range r.orders {
		if o.Status == model.StatusPending && o.ExpiredAt != nil && !o.ExpiredAt.After(now) {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func (r *memOrderRepo) CountByStatus(ctx context.Context, status model.Status) (int64, error) {
	orders, _, _ := r.List(ctx, repository.OrderFilter{Status: status})
	return int64(len(orders)), nil
}

func (r *memOrderRepo) SumPaid(ctx context.Context) (decimal.Decimal, error) {
	orders, _, _ := r.List(ctx, repository.OrderFilter{Status: model.StatusPaid})
	total := decimal.Zero
	for _, o := range orders {
		total = total.Add(o.TotalAmount)
	}
	return total, nil
}

// ---- 内存授权仓库 ----

type memLicenseRepo struct {
	mu       sync.Mutex
	licenses []*licensemodel.License
}

func (r *memLicenseRepo) FindActive(ctx context.Context, userID string, ref catalogmodel.ProductRef) (*licensemodel.License, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, l := range r.licenses {
		if l.UserID == userID && l.ProductType == ref.Type() && l.ProductID == ref.ID() && l.IsActive {
			cp := *l
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *memLicenseRepo) HasValidMembership(ctx context.Context, userID string, at time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, l := range r.licenses {
		if l.UserID == userID && l.ProductType == catalogmodel.ProductMembership && l.ValidAt(at) {
			return true, nil
		}
	}
	return false, nil
}

func (r *memLicenseRepo) Create(ctx context.Context, license *licensemodel.License) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	license.ID = uuid.NewString()
	cp := *license
	r.licenses = append(r.licenses, &cp)
	return nil
}

func (r *memLicenseRepo) Deactivate(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, l := range r.licenses {
		if l.ID == id {
			l.IsActive = false
		}
	}
	return nil
}

func (r *memLicenseRepo) DeactivateActive(ctx context.Context, userID string, ref catalogmodel.ProductRef, orderID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, l := range r.licenses {
		if l.UserID != userID || l.ProductType != ref.Type() || l.ProductID != ref.ID() || !l.IsActive {
			continue
		}
		if orderID != "" && (l.OrderID == nil || *l.OrderID != orderID) {
			continue
		}
		l.IsActive = false
		n++
	}
	return n, nil
}

func (r *memLicenseRepo) ListActiveByUser(ctx context.Context, userID string) ([]licensemodel.License, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []licensemodel.License
	for _, l := range r.licenses {
		if l.UserID == userID && l.IsActive {
			out = append(out, *l)
		}
	}
	return out, nil
}

func (r *memLicenseRepo) all(userID string) []licensemodel.License {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []licensemodel.License
	for _, l := range r.licenses {
		if l.UserID == userID {
			out = append(out, *l)
		}
	}
	return out
}

// ---- 目录、通知、事件 ----

type fakeCatalog struct {
	products map[string]catalogmodel.Product
}

func (c *fakeCatalog) GetProduct(ctx context.Context, ref catalogmodel.ProductRef) (catalogmodel.Product, error) {
	p, ok := c.products[ref.ID()]
	if !ok || p.Ref.Type() != ref.Type() {
		return catalogmodel.Product{}, apperr.NotFound("product not found")
	}
	return p, nil
}

func (c *fakeCatalog) GetCourse(ctx context.Context, id string) (*catalogmodel.Course, error) {
	return nil, apperr.NotFound("course not found")
}

func (c *fakeCatalog) GetChapter(ctx context.Context, courseID, chapterID string) (*catalogmodel.Chapter, error) {
	return nil, apperr.NotFound("chapter not found")
}

type fakeTx struct{}

func (fakeTx) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type recordingNotifier struct {
	mu   sync.Mutex
	sent []notify.Notification
}

func (n *recordingNotifier) Notify(_ context.Context, msg notify.Notification) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, msg)
}

func (n *recordingNotifier) templates() []notify.Template {
	n.mu.Lock()
	defer n.mu.Unlock()
	var out []notify.Template
	for _, m := range n.sent {
		out = append(out, m.Template)
	}
	return out
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []event.Envelope
}

func (p *recordingPublisher) Publish(_ context.Context, env event.Envelope) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, env)
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []string
	for _, e := range p.events {
		out = append(out, e.EventType)
	}
	return out
}

// ---- 测试环境 ----

const (
	courseGo     = "11111111-1111-1111-1111-111111111111"
	courseFree   = "22222222-2222-2222-2222-222222222222"
	courseDraft  = "33333333-3333-3333-3333-333333333333"
	planMonthly  = "44444444-4444-4444-4444-444444444444"
	planInactive = "55555555-5555-5555-5555-555555555555"
	courseRust   = "66666666-6666-6666-6666-666666666666"
)

var (
	buyer    = principal.Principal{UserID: "buyer", Role: principal.RoleUser}
	stranger = principal.Principal{UserID: "stranger", Role: principal.RoleUser}
	admin    = principal.Principal{UserID: "admin", Role: principal.RoleAdmin}
	t0       = time.Date(2026, 5, 20, 9, 30, 0, 0, time.UTC)
)

type env struct {
	svc       *OrderService
	orders    *memOrderRepo
	licenses  *memLicenseRepo
	notifier  *recordingNotifier
	publisher *recordingPublisher
	now       time.Time
}

func (e *env) advance(d time.Duration) { e.now = e.now.Add(d) }

func newEnv(t *testing.T, opts ...Option) *env {
	t.Helper()
	catalog := &fakeCatalog{products: map[string]catalogmodel.Product{
		courseGo: {
			Ref: catalogmodel.CourseRef{CourseID: courseGo}, Title: "Go 高并发实战",
			Price: decimal.RequireFromString("299.00"), Purchasable: true,
		},
		courseRust: {
			Ref: catalogmodel.CourseRef{CourseID: courseRust}, Title: "Rust 入门",
			Price: decimal.RequireFromString("199.00"), Purchasable: true,
		},
		courseFree: {
			Ref: catalogmodel.CourseRef{CourseID: courseFree}, Title: "Go 入门",
			IsFree: true, Purchasable: true,
		},
		courseDraft: {
			Ref: catalogmodel.CourseRef{CourseID: courseDraft}, Title: "草稿",
			Price: decimal.NewFromInt(99), Reason: "course is not published",
		},
		planMonthly: {
			Ref: catalogmodel.MembershipRef{PlanID: planMonthly}, Title: "月度会员",
			Price: decimal.RequireFromString("49.00"), Purchasable: true, DurationDays: 30,
		},
		planInactive: {
			Ref: catalogmodel.MembershipRef{PlanID: planInactive}, Title: "旧方案",
			Price: decimal.NewFromInt(9), DurationDays: 7, Reason: "membership plan is not active",
		},
	}}

	e := &env{
		orders:    newMemOrderRepo(),
		licenses:  &memLicenseRepo{},
		notifier:  &recordingNotifier{},
		publisher: &recordingPublisher{},
		now:       t0,
	}
	licenses := licenseservice.NewLicenseService(e.licenses, catalog, fakeTx{}, nil)
	base := []Option{
		WithNotifier(e.notifier),
		WithPublisher(e.publisher),
		WithClock(func() time.Time { return e.now }),
	}
	e.svc = NewOrderService(e.orders, catalog, licenses, fakeTx{}, append(base, opts...)...)
	return e
}

func (e *env) create(t *testing.T, ref catalogmodel.ProductRef) *model.Order {
	t.Helper()
	order, err := e.svc.CreateOrder(context.Background(), buyer.UserID, ref)
	require.NoError(t, err)
	return order
}

func (e *env) paid(t *testing.T, ref catalogmodel.ProductRef) *model.Order {
	t.Helper()
	order := e.create(t, ref)
	_, err := e.svc.SubmitPaymentConfirmation(context.Background(), buyer, order.ID, model.PaymentWechat)
	require.NoError(t, err)
	order, err = e.svc.ConfirmPayment(context.Background(), admin, order.ID, "")
	require.NoError(t, err)
	return order
}

// ---- CreateOrder ----

func TestGenerateOrderNo(t *testing.T) {
	no, err := GenerateOrderNo(t0)
	require.NoError(t, err)
	assert.Regexp(t, regexp.MustCompile(`^LH20260520093000[A-Z0-9]{6}$`), no)
}

func TestCreateOrder_PaidCourse(t *testing.T) {
	e := newEnv(t)

	order := e.create(t, catalogmodel.CourseRef{CourseID: courseGo})

	assert.Equal(t, model.StatusPending, order.Status)
	assert.Regexp(t, `^LH\d{14}[A-Z0-9]{6}$`, order.OrderNo)
	assert.Equal(t, "299.00", order.TotalAmount.StringFixed(2))
	require.NotNil(t, order.ExpiredAt)
	assert.True(t, order.ExpiredAt.Equal(t0.Add(30*time.Minute)))

	require.Len(t, order.Items, 1)
	item := order.Items[0]
	assert.Equal(t, catalogmodel.ProductCourse, item.ProductType)
	assert.Equal(t, courseGo, item.ProductID)
	assert.Equal(t, "Go 高并发实战", item.ProductName)
	assert.Equal(t, 1, item.Quantity)
	assert.True(t, item.UnitPrice.Equal(item.TotalPrice))

	assert.Equal(t, []notify.Template{notify.TemplateOrderCreated}, e.notifier.templates())
	assert.Equal(t, []string{event.TypeOrderCreated}, e.publisher.types())
	assert.Empty(t, e.licenses.all(buyer.UserID), "no license before payment")
}

func TestCreateOrder_ExpireAfterOption(t *testing.T) {
	e := newEnv(t, WithExpireAfter(15*time.Minute))

	order := e.create(t, catalogmodel.MembershipRef{PlanID: planMonthly})
	assert.True(t, order.ExpiredAt.Equal(t0.Add(15*time.Minute)))
}

func TestCreateOrder_Rejections(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	cases := []struct {
		name string
		ref  catalogmodel.ProductRef
		kind apperr.Kind
	}{
		{"free course", catalogmodel.CourseRef{CourseID: courseFree}, apperr.KindValidation},
		{"unpublished course", catalogmodel.CourseRef{CourseID: courseDraft}, apperr.KindValidation},
		{"inactive plan", catalogmodel.MembershipRef{PlanID: planInactive}, apperr.KindValidation},
		{"unknown course", catalogmodel.CourseRef{CourseID: "nope"}, apperr.KindNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := e.svc.CreateOrder(ctx, buyer.UserID, tc.ref)
			assert.True(t, apperr.Is(err, tc.kind), "got %v", err)
		})
	}
	assert.Empty(t, e.orders.orders)
}

func TestCreateOrder_DuplicatePurchase(t *testing.T) {
	e := newEnv(t)
	ref := catalogmodel.CourseRef{CourseID: courseGo}
	e.paid(t, ref)

	_, err := e.svc.CreateOrder(context.Background(), buyer.UserID, ref)
	assert.True(t, apperr.Is(err, apperr.KindDuplicatePurchase))

	// 其他用户仍然可以购买
	_, err = e.svc.CreateOrder(context.Background(), stranger.UserID, ref)
	assert.NoError(t, err)
}

func TestCreateOrder_ExpiredMembershipCanBeRenewed(t *testing.T) {
	e := newEnv(t)
	ref := catalogmodel.MembershipRef{PlanID: planMonthly}
	e.paid(t, ref)

	_, err := e.svc.CreateOrder(context.Background(), buyer.UserID, ref)
	assert.True(t, apperr.Is(err, apperr.KindDuplicatePurchase))

	e.advance(31 * 24 * time.Hour)
	_, err = e.svc.CreateOrder(context.Background(), buyer.UserID, ref)
	assert.NoError(t, err)
}

func TestCreateOrder_RetriesOrderNoCollision(t *testing.T) {
	e := newEnv(t)
	e.orders.createErrs = []error{gorm.ErrDuplicatedKey, gorm.ErrDuplicatedKey}

	var numbers []string
	e.svc.newOrderNo = func(now time.Time) (string, error) {
		no, err := GenerateOrderNo(now)
		numbers = append(numbers, no)
		return no, err
	}

	order := e.create(t, catalogmodel.CourseRef{CourseID: courseGo})
	assert.Len(t, numbers, 3)
	assert.Equal(t, numbers[2], order.OrderNo)
}

func TestCreateOrder_GivesUpAfterThreeCollisions(t *testing.T) {
	e := newEnv(t)
	e.orders.createErrs = []error{gorm.ErrDuplicatedKey, gorm.ErrDuplicatedKey, gorm.ErrDuplicatedKey}

	_, err := e.svc.CreateOrder(context.Background(), buyer.UserID, catalogmodel.CourseRef{CourseID: courseGo})
	assert.True(t, apperr.Is(err, apperr.KindStorage))
	assert.Empty(t, e.notifier.templates())
}

// ---- 支付确认流程 ----

func TestWorkflow_CourseViaWechat(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	order := e.create(t, catalogmodel.CourseRef{CourseID: courseGo})

	e.advance(5 * time.Minute)
	submitted, err := e.svc.SubmitPaymentConfirmation(ctx, buyer, order.ID, model.PaymentWechat)
	require.NoError(t, err)
	assert.Equal(t, model.StatusAwaitingConfirmation, submitted.Status)
	assert.Equal(t, model.PaymentWechat, submitted.PaymentMethod)
	assert.Empty(t, submitted.PaymentNo)
	require.NotNil(t, submitted.SubmittedAt)

	e.advance(time.Hour)
	paid, err := e.svc.ConfirmPayment(ctx, admin, order.ID, "")
	require.NoError(t, err)
	assert.Equal(t, model.StatusPaid, paid.Status)
	require.NotNil(t, paid.PaidAt)
	assert.True(t, paid.PaidAt.Equal(e.now))

	licenses := e.licenses.all(buyer.UserID)
	require.Len(t, licenses, 1)
	assert.Equal(t, catalogmodel.ProductCourse, licenses[0].ProductType)
	assert.Equal(t, courseGo, licenses[0].ProductID)
	assert.Nil(t, licenses[0].ExpireAt)
	assert.True(t, licenses[0].IsActive)
	require.NotNil(t, licenses[0].OrderID)
	assert.Equal(t, order.ID, *licenses[0].OrderID)

	history := e.orders.transitionsOf(order.ID)
	require.Len(t, history, 2)
	assert.Equal(t, model.StatusPending, history[0].FromStatus)
	assert.Equal(t, model.StatusAwaitingConfirmation, history[0].ToStatus)
	assert.Equal(t, buyer.UserID, history[0].ActorID)
	assert.Equal(t, model.StatusPaid, history[1].ToStatus)
	assert.Equal(t, admin.UserID, history[1].ActorID)

	assert.Equal(t, []notify.Template{
		notify.TemplateOrderCreated,
		notify.TemplatePendingConfirm,
		notify.TemplatePaymentSuccess,
	}, e.notifier.templates())
	assert.True(t, e.notifier.sent[1].ToAdmins)
	assert.Equal(t, "wechat", e.notifier.sent[1].Data["PaymentMethod"])
	assert.Equal(t, []string{event.TypeOrderCreated, event.TypeOrderSubmitted, event.TypeOrderPaid}, e.publisher.types())
}

func TestWorkflow_MembershipExpiresAfterPlanDuration(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	order := e.create(t, catalogmodel.MembershipRef{PlanID: planMonthly})
	assert.Equal(t, "49.00", order.TotalAmount.StringFixed(2))

	e.advance(10 * time.Minute)
	confirmedAt := e.now
	_, err := e.svc.ConfirmPayment(ctx, admin, order.ID, "4200001234202605201234567890")
	require.NoError(t, err)

	licenses := e.licenses.all(buyer.UserID)
	require.Len(t, licenses, 1)
	require.NotNil(t, licenses[0].ExpireAt)
	assert.True(t, licenses[0].ExpireAt.Equal(confirmedAt.Add(30*24*time.Hour)))

	stored, err := e.orders.GetByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, "4200001234202605201234567890", stored.PaymentNo)
}

func TestConfirmPayment_Twice(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	order := e.paid(t, catalogmodel.CourseRef{CourseID: courseGo})

	_, err := e.svc.ConfirmPayment(ctx, admin, order.ID, "")
	assert.True(t, apperr.Is(err, apperr.KindInvalidState))
	assert.Len(t, e.licenses.all(buyer.UserID), 1)
	assert.Len(t, e.orders.transitionsOf(order.ID), 2)
}

func TestConfirmPayment_CancelledOrder(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	order := e.create(t, catalogmodel.CourseRef{CourseID: courseGo})

	_, err := e.svc.Cancel(ctx, admin, order.ID, "未收到款项")
	require.NoError(t, err)
	sentBefore := len(e.notifier.templates())

	_, err = e.svc.ConfirmPayment(ctx, admin, order.ID, "")
	assert.True(t, apperr.Is(err, apperr.KindInvalidState))

	stored, _ := e.orders.GetByID(ctx, order.ID)
	assert.Equal(t, model.StatusCancelled, stored.Status)
	assert.Nil(t, stored.PaidAt)
	assert.Empty(t, e.licenses.all(buyer.UserID))
	assert.Len(t, e.notifier.templates(), sentBefore)
}

func TestConfirmPayment_RequiresAdmin(t *testing.T) {
	e := newEnv(t)
	order := e.create(t, catalogmodel.CourseRef{CourseID: courseGo})

	_, err := e.svc.ConfirmPayment(context.Background(), buyer, order.ID, "")
	assert.True(t, apperr.Is(err, apperr.KindForbidden))
	assert.Empty(t, e.licenses.all(buyer.UserID))
}

func TestConfirmPayment_NotFound(t *testing.T) {
	e := newEnv(t)
	_, err := e.svc.ConfirmPayment(context.Background(), admin, uuid.NewString(), "")
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestSubmitPaymentConfirmation_Errors(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	order := e.create(t, catalogmodel.CourseRef{CourseID: courseGo})

	_, err := e.svc.SubmitPaymentConfirmation(ctx, buyer, order.ID, "paypal")
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	_, err = e.svc.SubmitPaymentConfirmation(ctx, stranger, order.ID, model.PaymentAlipay)
	assert.True(t, apperr.Is(err, apperr.KindForbidden))

	_, err = e.svc.SubmitPaymentConfirmation(ctx, buyer, uuid.NewString(), model.PaymentAlipay)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))

	_, err = e.svc.SubmitPaymentConfirmation(ctx, buyer, order.ID, model.PaymentAlipay)
	require.NoError(t, err)
	_, err = e.svc.SubmitPaymentConfirmation(ctx, buyer, order.ID, model.PaymentAlipay)
	assert.True(t, apperr.Is(err, apperr.KindInvalidState))
}

func TestSubmitPaymentConfirmation_ExpiredOrder(t *testing.T) {
	e := newEnv(t)
	order := e.create(t, catalogmodel.CourseRef{CourseID: courseGo})

	e.advance(31 * time.Minute)
	_, err := e.svc.SubmitPaymentConfirmation(context.Background(), buyer, order.ID, model.PaymentWechat)
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.KindInvalidState))
	assert.Contains(t, err.Error(), "order expired")
}

// ---- 取消与退款 ----

func TestRefund_RevokesOnlyThatOrdersLicenses(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	goOrder := e.paid(t, catalogmodel.CourseRef{CourseID: courseGo})
	e.paid(t, catalogmodel.CourseRef{CourseID: courseRust})
	e.paid(t, catalogmodel.MembershipRef{PlanID: planMonthly})

	refunded, err := e.svc.Refund(ctx, admin, goOrder.ID, "用户申请退款")
	require.NoError(t, err)
	assert.Equal(t, model.StatusRefunded, refunded.Status)
	require.NotNil(t, refunded.RefundedAt)

	var active []string
	for _, l := range e.licenses.all(buyer.UserID) {
		if l.IsActive {
			active = append(active, l.ProductID)
		}
	}
	assert.ElementsMatch(t, []string{courseRust, planMonthly}, active)
	assert.Len(t, e.licenses.all(buyer.UserID), 3, "licenses are deactivated, not deleted")

	templates := e.notifier.templates()
	assert.Equal(t, notify.TemplateOrderRefunded, templates[len(templates)-1])
	assert.Equal(t, "用户申请退款", e.notifier.sent[len(e.notifier.sent)-1].Data["Note"])

	// 退款后可以重新购买
	_, err = e.svc.CreateOrder(ctx, buyer.UserID, catalogmodel.CourseRef{CourseID: courseGo})
	assert.NoError(t, err)
}

func TestRefund_RequiresPaidOrder(t *testing.T) {
	e := newEnv(t)
	order := e.create(t, catalogmodel.CourseRef{CourseID: courseGo})

	_, err := e.svc.Refund(context.Background(), admin, order.ID, "")
	assert.True(t, apperr.Is(err, apperr.KindInvalidState))
}

func TestRejectOrRefund(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	pending := e.create(t, catalogmodel.CourseRef{CourseID: courseGo})
	got, err := e.svc.RejectOrRefund(ctx, admin, pending.ID, RejectAuto, "")
	require.NoError(t, err)
	assert.Equal(t, model.StatusCancelled, got.Status)

	paid := e.paid(t, catalogmodel.CourseRef{CourseID: courseRust})
	got, err = e.svc.RejectOrRefund(ctx, admin, paid.ID, RejectAuto, "")
	require.NoError(t, err)
	assert.Equal(t, model.StatusRefunded, got.Status)

	awaiting := e.create(t, catalogmodel.MembershipRef{PlanID: planMonthly})
	_, err = e.svc.SubmitPaymentConfirmation(ctx, buyer, awaiting.ID, model.PaymentAlipay)
	require.NoError(t, err)
	_, err = e.svc.RejectOrRefund(ctx, admin, awaiting.ID, RejectRefund, "")
	assert.True(t, apperr.Is(err, apperr.KindInvalidState))
	got, err = e.svc.RejectOrRefund(ctx, admin, awaiting.ID, RejectCancel, "未收到款项")
	require.NoError(t, err)
	assert.Equal(t, model.StatusCancelled, got.Status)

	_, err = e.svc.RejectOrRefund(ctx, admin, awaiting.ID, "delete", "")
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	_, err = e.svc.RejectOrRefund(ctx, buyer, awaiting.ID, RejectAuto, "")
	assert.True(t, apperr.Is(err, apperr.KindForbidden))
}

// staleReadRepo 第一次 GetByID 返回 stale 状态，模拟读取后订单被并发修改
type staleReadRepo struct {
	*memOrderRepo
	stale model.Status
	reads int
}

func (r *staleReadRepo) GetByID(ctx context.Context, id string) (*model.Order, error) {
	o, err := r.memOrderRepo.GetByID(ctx, id)
	r.reads++
	if err == nil && r.reads == 1 {
		o.Status = r.stale
	}
	return o, err
}

func TestRejectOrRefund_AutoFollowsConcurrentChange(t *testing.T) {
	ctx := context.Background()

	t.Run("confirmed after read is refunded", func(t *testing.T) {
		e := newEnv(t)
		paid := e.paid(t, catalogmodel.CourseRef{CourseID: courseGo})
		repo := &staleReadRepo{memOrderRepo: e.orders, stale: model.StatusAwaitingConfirmation}
		e.svc.repo = repo

		got, err := e.svc.RejectOrRefund(ctx, admin, paid.ID, RejectAuto, "重复付款")
		require.NoError(t, err)
		assert.Equal(t, model.StatusRefunded, got.Status)
		assert.Equal(t, 2, repo.reads)
		active, err := e.licenses.ListActiveByUser(ctx, buyer.UserID)
		require.NoError(t, err)
		assert.Empty(t, active)
	})

	t.Run("terminal order is not retried", func(t *testing.T) {
		e := newEnv(t)
		order := e.create(t, catalogmodel.CourseRef{CourseID: courseGo})
		_, err := e.svc.Cancel(ctx, admin, order.ID, "")
		require.NoError(t, err)
		repo := &staleReadRepo{memOrderRepo: e.orders, stale: model.StatusCancelled}
		e.svc.repo = repo

		_, err = e.svc.RejectOrRefund(ctx, admin, order.ID, RejectAuto, "")
		assert.True(t, apperr.Is(err, apperr.KindInvalidState), "got %v", err)
		assert.Equal(t, 2, repo.reads)
	})
}

// ---- 过期订单清理 ----

func TestExpireStale(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	abandoned := e.create(t, catalogmodel.CourseRef{CourseID: courseGo})
	submitted := e.create(t, catalogmodel.CourseRef{CourseID: courseRust})
	_, err := e.svc.SubmitPaymentConfirmation(ctx, buyer, submitted.ID, model.PaymentWechat)
	require.NoError(t, err)

	e.advance(10 * time.Minute)
	fresh := e.create(t, catalogmodel.MembershipRef{PlanID: planMonthly})

	e.advance(25 * time.Minute)
	n, err := e.svc.ExpireStale(ctx, 100)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	for id, want := range map[string]model.Status{
		abandoned.ID: model.StatusCancelled,
		submitted.ID: model.StatusAwaitingConfirmation,
		fresh.ID:     model.StatusPending,
	} {
		o, err := e.orders.GetByID(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, want, o.Status, o.OrderNo)
	}

	history := e.orders.transitionsOf(abandoned.ID)
	require.Len(t, history, 1)
	assert.Equal(t, systemActor, history[0].ActorID)
}

func TestRunSweeper(t *testing.T) {
	e := newEnv(t)
	order := e.create(t, catalogmodel.CourseRef{CourseID: courseGo})
	e.advance(time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- e.svc.RunSweeper(ctx, 10*time.Millisecond) }()

	require.Eventually(t, func() bool {
		o, _ := e.orders.GetByID(context.Background(), order.ID)
		return o.Status == model.StatusCancelled
	}, time.Second, 10*time.Millisecond)

	cancel()
	assert.NoError(t, <-done)

	// interval 为 0 时立即返回
	assert.NoError(t, e.svc.RunSweeper(context.Background(), 0))
}

// ---- 查询 ----

func TestGetOrder_Ownership(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	order := e.paid(t, catalogmodel.CourseRef{CourseID: courseGo})

	got, err := e.svc.GetOrder(ctx, buyer, order.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Transitions)

	_, err = e.svc.GetOrder(ctx, stranger, order.ID)
	assert.True(t, apperr.Is(err, apperr.KindForbidden))

	got, err = e.svc.GetOrder(ctx, admin, order.ID)
	require.NoError(t, err)
	assert.Len(t, got.Transitions, 2)
}

func TestListOrders(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	e.paid(t, catalogmodel.CourseRef{CourseID: courseGo})
	awaiting := e.create(t, catalogmodel.CourseRef{CourseID: courseRust})
	_, err := e.svc.SubmitPaymentConfirmation(ctx, buyer, awaiting.ID, model.PaymentAlipay)
	require.NoError(t, err)
	_, err = e.svc.CreateOrder(ctx, stranger.UserID, catalogmodel.MembershipRef{PlanID: planMonthly})
	require.NoError(t, err)

	orders, total, err := e.svc.ListOrders(ctx, admin, model.StatusAwaitingConfirmation, utils.Pagination{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, awaiting.ID, orders[0].ID)

	_, total, err = e.svc.ListOrders(ctx, admin, "", utils.Pagination{})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)

	_, _, err = e.svc.ListOrders(ctx, admin, "shipped", utils.Pagination{})
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	_, _, err = e.svc.ListOrders(ctx, buyer, "", utils.Pagination{})
	assert.True(t, apperr.Is(err, apperr.KindForbidden))

	_, total, err = e.svc.ListMyOrders(ctx, stranger.UserID, "", utils.Pagination{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
}

func TestStats(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	e.paid(t, catalogmodel.CourseRef{CourseID: courseGo})
	e.paid(t, catalogmodel.MembershipRef{PlanID: planMonthly})
	awaiting := e.create(t, catalogmodel.CourseRef{CourseID: courseRust})
	_, err := e.svc.SubmitPaymentConfirmation(ctx, buyer, awaiting.ID, model.PaymentWechat)
	require.NoError(t, err)

	stats, err := NewStatsService(e.orders, nil, nil).Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.PaidCount)
	assert.Equal(t, int64(1), stats.AwaitingCount)
	assert.Equal(t, "348.00", stats.Revenue.StringFixed(2))
}

// ---- 通知失败不影响业务 ----

type brokenResolver struct{}

func (brokenResolver) Recipient(context.Context, string) (notify.Recipient, error) {
	return notify.Recipient{}, errors.New("user store unavailable")
}

func (brokenResolver) Admins(context.Context) ([]notify.Recipient, error) {
	return nil, errors.New("user store unavailable")
}

func TestNotificationFailureIsIgnored(t *testing.T) {
	pool := worker.NewWorkerPool(1, 16)
	pool.MaxRetry = 1
	pool.RetryDelay = time.Millisecond
	var dead sync.WaitGroup
	dead.Add(3) // created + pending confirm + payment success
	pool.OnDeadLetter = func(worker.Task, error) { dead.Done() }
	pool.Start(context.Background())
	defer pool.Stop()

	dispatcher := notify.NewDispatcher(pool, brokenResolver{}, []notify.Sender{notify.LogSender{}})
	e := newEnv(t, WithNotifier(dispatcher))

	order := e.paid(t, catalogmodel.CourseRef{CourseID: courseGo})
	assert.Equal(t, model.StatusPaid, order.Status)
	assert.Len(t, e.licenses.all(buyer.UserID), 1)

	waitDone := make(chan struct{})
	go func() { dead.Wait(); close(waitDone) }()
	select {
	case <-waitDone:
	case <-time.After(2 * time.Second):
		t.Fatal("notifications were not dead-lettered")
	}
}

package checkout

import (
	"context"
	"sync"
	"testing"

	"github.com/example/storefront/pkg/apperr"
	"github.com/example/storefront/pkg/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Mock ProductStore
type mockProducts struct {
	mu        sync.Mutex
	products  map[primitive.ObjectID]*models.Product
	adjusted  [][]InventoryAdjustment
	adjustErr error
}

func newMockProducts(products ...*models.Product) *mockProducts {
	m := &mockProducts{products: make(map[primitive.ObjectID]*models.Product)}
	for _, p := range products {
		m.products[p.ID] = p
	}
	return m
}

func (m *mockProducts) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.products[id]
	if !ok {
		return nil, apperr.New(apperr.KindNotFound, "product not found")
	}
	cp := *p
	return &cp, nil
}

func (m *mockProducts) FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Product
	for _, id := range ids {
		if p, ok := m.products[id]; ok {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (m *mockProducts) AdjustInventory(ctx context.Context, adjustments []InventoryAdjustment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.adjustErr != nil {
		return m.adjustErr
	}
	for _, adj := range adjustments {
		if p, ok := m.products[adj.ProductID]; ok {
			p.Quantity -= adj.Count
			p.Sold += adj.Count
		}
	}
	m.adjusted = append(m.adjusted, adjustments)
	return nil
}

// Mock CartStore
type mockCarts struct {
	mu    sync.Mutex
	carts map[primitive.ObjectID]*models.Cart
}

func newMockCarts() *mockCarts {
	return &mockCarts{carts: make(map[primitive.ObjectID]*models.Cart)}
}

func (m *mockCarts) FindByOwner(ctx context.Context, owner primitive.ObjectID) (*models.Cart, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cart, ok := m.carts[owner]
	if !ok {
		return nil, apperr.New(apperr.KindNotFound, "cart not found")
	}
	cp := *cart
	return &cp, nil
}

func (m *mockCarts) DeleteByOwner(ctx context.Context, owner primitive.ObjectID) (*models.Cart, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cart, ok := m.carts[owner]
	if !ok {
		return nil, apperr.New(apperr.KindNotFound, "cart not found")
	}
	delete(m.carts, owner)
	return cart, nil
}

func (m *mockCarts) Insert(ctx context.Context, cart *models.Cart) (*models.Cart, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.carts[cart.OrderBy]; exists {
		return nil, apperr.New(apperr.KindConflict, "cart already exists for this user")
	}
	cart.ID = primitive.NewObjectID()
	m.carts[cart.OrderBy] = cart
	return cart, nil
}

func (m *mockCarts) SetDiscountTotal(ctx context.Context, owner primitive.ObjectID, total float64) (*models.Cart, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cart, ok := m.carts[owner]
	if !ok {
		return nil, apperr.New(apperr.KindNotFound, "cart not found")
	}
	cart.TotalAfterDiscount = &total
	cp := *cart
	return &cp, nil
}

// Mock CouponStore
type mockCoupons struct {
	coupons map[string]*models.Coupon
}

func (m *mockCoupons) FindByName(ctx context.Context, name string) (*models.Coupon, error) {
	c, ok := m.coupons[name]
	if !ok {
		return nil, apperr.New(apperr.KindNotFound, "coupon not found")
	}
	return c, nil
}

// Mock OrderStore
type mockOrders struct {
	mu     sync.Mutex
	orders []*models.Order
}

func (m *mockOrders) Insert(ctx context.Context, order *models.Order) (*models.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	order.ID = primitive.NewObjectID()
	m.orders = append(m.orders, order)
	return order, nil
}

func (m *mockOrders) FindByOwner(ctx context.Context, owner primitive.ObjectID) ([]models.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Order
	for _, o := range m.orders {
		if o.OrderBy == owner {
			out = append(out, *o)
		}
	}
	return out, nil
}

func (m *mockOrders) UpdateStatus(ctx context.Context, id primitive.ObjectID, status string) (*models.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, o := range m.orders {
		if o.ID == id {
			o.OrderStatus = status
			o.PaymentIntent.Status = status
			cp := *o
			return &cp, nil
		}
	}
	return nil, apperr.New(apperr.KindNotFound, "order not found")
}

type fixture struct {
	svc      *Service
	products *mockProducts
	carts    *mockCarts
	coupons  *mockCoupons
	orders   *mockOrders
	userID   primitive.ObjectID
	p1, p2   *models.Product
}

func newFixture() *fixture {
	p1 := &models.Product{ID: primitive.NewObjectID(), Title: "P1", Price: 100, Quantity: 10}
	p2 := &models.Product{ID: primitive.NewObjectID(), Title: "P2", Price: 50, Quantity: 5}

	products := newMockProducts(p1, p2)
	carts := newMockCarts()
	coupons := &mockCoupons{coupons: map[string]*models.Coupon{
		"SAVE10": {ID: primitive.NewObjectID(), Name: "SAVE10", Discount: 10},
	}}
	orders := &mockOrders{}

	return &fixture{
		svc:      NewService(products, carts, coupons, orders, zap.NewNop()),
		products: products,
		carts:    carts,
		coupons:  coupons,
		orders:   orders,
		userID:   primitive.NewObjectID(),
		p1:       p1,
		p2:       p2,
	}
}

func (f *fixture) submitCart(t *testing.T) *models.Cart {
	t.Helper()
	cart, err := f.svc.ReplaceCart(context.Background(), f.userID, []CartLineInput{
		{ProductID: f.p1.ID, Count: 2},
		{ProductID: f.p2.ID, Count: 1},
	})
	if err != nil {
		t.Fatalf("ReplaceCart: %v", err)
	}
	return cart
}

func TestReplaceCart_ComputesTotal(t *testing.T) {
	f := newFixture()

	cart := f.submitCart(t)

	if cart.CartTotal != 250 {
		t.Errorf("expected cartTotal 250, got %v", cart.CartTotal)
	}
	if len(cart.Lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(cart.Lines))
	}
	if cart.Lines[0].Price != 100 || cart.Lines[1].Price != 50 {
		t.Errorf("expected snapshot prices 100 and 50, got %v and %v", cart.Lines[0].Price, cart.Lines[1].Price)
	}
}

func TestReplaceCart_SnapshotsPriceAtSubmit(t *testing.T) {
	f := newFixture()
	cart := f.submitCart(t)

	// A later catalog price change must not touch the cart.
	f.products.products[f.p1.ID].Price = 500

	stored, err := f.svc.GetCart(context.Background(), f.userID)
	if err != nil {
		t.Fatalf("GetCart: %v", err)
	}
	if stored.Lines[0].Price != cart.Lines[0].Price {
		t.Errorf("cart price changed after catalog update: %v", stored.Lines[0].Price)
	}
}

func TestReplaceCart_MissingProduct(t *testing.T) {
	f := newFixture()

	_, err := f.svc.ReplaceCart(context.Background(), f.userID, []CartLineInput{
		{ProductID: primitive.NewObjectID(), Count: 1},
	})
	if apperr.KindOf(err) != apperr.KindNotFound {
		t.Fatalf("expected NotFound, got %v", err)
	}
	if len(f.carts.carts) != 0 {
		t.Errorf("no cart should have been inserted, found %d", len(f.carts.carts))
	}
}

func TestReplaceCart_SingleCartPerUser(t *testing.T) {
	f := newFixture()

	for i := 0; i < 3; i++ {
		f.submitCart(t)
	}

	if len(f.carts.carts) != 1 {
		t.Errorf("expected exactly one cart, got %d", len(f.carts.carts))
	}
}

func TestApplyCoupon_Discounts(t *testing.T) {
	f := newFixture()
	f.submitCart(t)

	total, err := f.svc.ApplyCoupon(context.Background(), f.userID, "SAVE10")
	if err != nil {
		t.Fatalf("ApplyCoupon: %v", err)
	}
	if total != 225.00 {
		t.Errorf("expected 225.00, got %v", total)
	}

	cart, _ := f.svc.GetCart(context.Background(), f.userID)
	if cart.TotalAfterDiscount == nil || *cart.TotalAfterDiscount != 225.00 {
		t.Errorf("discounted total not persisted: %v", cart.TotalAfterDiscount)
	}
}

func TestApplyCoupon_Rounding(t *testing.T) {
	tests := []struct {
		total    float64
		discount float64
		want     float64
	}{
		{250, 10, 225.00},
		{250, 0, 250.00},
		{250, 100, 0.00},
		{150, 33, 100.50},
		{10, 33.333333, 6.67},
	}

	for _, tt := range tests {
		f := newFixture()
		f.coupons.coupons["X"] = &models.Coupon{Name: "X", Discount: tt.discount}
		f.carts.carts[f.userID] = &models.Cart{
			Lines:     []models.CartLine{{Product: f.p1.ID, Count: 1, Price: tt.total}},
			CartTotal: tt.total,
			OrderBy:   f.userID,
		}

		got, err := f.svc.ApplyCoupon(context.Background(), f.userID, "X")
		if err != nil {
			t.Fatalf("ApplyCoupon(total=%v, discount=%v): %v", tt.total, tt.discount, err)
		}
		if got != tt.want {
			t.Errorf("ApplyCoupon(total=%v, discount=%v) = %v, want %v", tt.total, tt.discount, got, tt.want)
		}
	}
}

func TestApplyCoupon_Idempotent(t *testing.T) {
	f := newFixture()
	f.submitCart(t)

	first, err := f.svc.ApplyCoupon(context.Background(), f.userID, "SAVE10")
	if err != nil {
		t.Fatalf("first apply: %v", err)
	}
	second, err := f.svc.ApplyCoupon(context.Background(), f.userID, "SAVE10")
	if err != nil {
		t.Fatalf("second apply: %v", err)
	}
	if first != second {
		t.Errorf("expected idempotent application, got %v then %v", first, second)
	}
}

func TestApplyCoupon_Unknown(t *testing.T) {
	f := newFixture()
	f.submitCart(t)

	_, err := f.svc.ApplyCoupon(context.Background(), f.userID, "NOPE")
	if apperr.KindOf(err) != apperr.KindConflict {
		t.Fatalf("expected Conflict, got %v", err)
	}

	cart, _ := f.svc.GetCart(context.Background(), f.userID)
	if cart.TotalAfterDiscount != nil {
		t.Errorf("cart should be untouched, got discount %v", *cart.TotalAfterDiscount)
	}
}

func TestApplyCoupon_NoCart(t *testing.T) {
	f := newFixture()

	_, err := f.svc.ApplyCoupon(context.Background(), f.userID, "SAVE10")
	if apperr.KindOf(err) != apperr.KindNotFound {
		t.Fatalf("expected NotFound, got %v", err)
	}
}

func TestCreateOrder_AdjustsInventory(t *testing.T) {
	f := newFixture()
	f.submitCart(t)
	if _, err := f.svc.ApplyCoupon(context.Background(), f.userID, "SAVE10"); err != nil {
		t.Fatalf("ApplyCoupon: %v", err)
	}

	if err := f.svc.CreateOrder(context.Background(), f.userID, true, true); err != nil {
		t.Fatalf("CreateOrder: %v", err)
	}

	if len(f.orders.orders) != 1 {
		t.Fatalf("expected 1 order, got %d", len(f.orders.orders))
	}
	order := f.orders.orders[0]
	if order.PaymentIntent.Amount != 225.00 {
		t.Errorf("expected discounted amount 225.00, got %v", order.PaymentIntent.Amount)
	}
	if order.PaymentIntent.Method != models.PaymentMethodCOD {
		t.Errorf("expected method COD, got %q", order.PaymentIntent.Method)
	}
	if order.PaymentIntent.ID == "" {
		t.Error("payment intent id must be set")
	}
	if order.OrderStatus != models.OrderStatusCOD {
		t.Errorf("expected status %q, got %q", models.OrderStatusCOD, order.OrderStatus)
	}

	if got := f.products.products[f.p1.ID]; got.Quantity != 8 || got.Sold != 2 {
		t.Errorf("P1 quantity/sold = %d/%d, want 8/2", got.Quantity, got.Sold)
	}
	if got := f.products.products[f.p2.ID]; got.Quantity != 4 || got.Sold != 1 {
		t.Errorf("P2 quantity/sold = %d/%d, want 4/1", got.Quantity, got.Sold)
	}

	if len(f.products.adjusted) != 1 {
		t.Errorf("expected one bulk adjustment, got %d", len(f.products.adjusted))
	}
}

func TestCreateOrder_PlainTotalWithoutCoupon(t *testing.T) {
	f := newFixture()
	f.submitCart(t)

	if err := f.svc.CreateOrder(context.Background(), f.userID, true, false); err != nil {
		t.Fatalf("CreateOrder: %v", err)
	}
	if got := f.orders.orders[0].PaymentIntent.Amount; got != 250 {
		t.Errorf("expected plain total 250, got %v", got)
	}
}

func TestCreateOrder_CouponFlagWithoutDiscount(t *testing.T) {
	f := newFixture()
	f.submitCart(t)

	// couponApplied is set but no discount was ever computed: fall back to
	// the plain total.
	if err := f.svc.CreateOrder(context.Background(), f.userID, true, true); err != nil {
		t.Fatalf("CreateOrder: %v", err)
	}
	if got := f.orders.orders[0].PaymentIntent.Amount; got != 250 {
		t.Errorf("expected plain total 250, got %v", got)
	}
}

func TestCreateOrder_NotConfirmed(t *testing.T) {
	f := newFixture()
	f.submitCart(t)

	err := f.svc.CreateOrder(context.Background(), f.userID, false, false)
	if apperr.KindOf(err) != apperr.KindConflict {
		t.Fatalf("expected Conflict, got %v", err)
	}
	if len(f.orders.orders) != 0 {
		t.Error("no order should be created")
	}
	if len(f.products.adjusted) != 0 {
		t.Error("no inventory should be touched")
	}
}

func TestCreateOrder_EmptyCart(t *testing.T) {
	f := newFixture()
	f.carts.carts[f.userID] = &models.Cart{OrderBy: f.userID}

	err := f.svc.CreateOrder(context.Background(), f.userID, true, false)
	if apperr.KindOf(err) != apperr.KindConflict {
		t.Fatalf("expected Conflict, got %v", err)
	}
}

func TestCreateOrder_BulkFailureIsSurfaced(t *testing.T) {
	f := newFixture()
	f.submitCart(t)
	f.products.adjustErr = apperr.New(apperr.KindUnavailable, "inventory bulk write failed")

	err := f.svc.CreateOrder(context.Background(), f.userID, true, false)
	if apperr.KindOf(err) != apperr.KindUnavailable {
		t.Fatalf("expected Unavailable, got %v", err)
	}
	// The order was inserted before the batch: this is the documented
	// partial-failure window.
	if len(f.orders.orders) != 1 {
		t.Errorf("expected the pre-batch order to exist, got %d", len(f.orders.orders))
	}
}

func TestGetOrders_ResolvesProducts(t *testing.T) {
	f := newFixture()
	f.submitCart(t)
	if err := f.svc.CreateOrder(context.Background(), f.userID, true, false); err != nil {
		t.Fatalf("CreateOrder: %v", err)
	}

	views, err := f.svc.GetOrders(context.Background(), f.userID)
	if err != nil {
		t.Fatalf("GetOrders: %v", err)
	}
	if len(views) != 1 {
		t.Fatalf("expected 1 order, got %d", len(views))
	}
	if len(views[0].Products) != 2 {
		t.Errorf("expected 2 resolved products, got %d", len(views[0].Products))
	}
	if _, ok := views[0].Products[f.p1.ID.Hex()]; !ok {
		t.Error("P1 not resolved")
	}
}

func TestUpdateOrderStatus(t *testing.T) {
	f := newFixture()
	f.submitCart(t)
	if err := f.svc.CreateOrder(context.Background(), f.userID, true, false); err != nil {
		t.Fatalf("CreateOrder: %v", err)
	}
	orderID := f.orders.orders[0].ID
	amount := f.orders.orders[0].PaymentIntent.Amount

	updated, err := f.svc.UpdateOrderStatus(context.Background(), orderID, "Dispatched")
	if err != nil {
		t.Fatalf("UpdateOrderStatus: %v", err)
	}
	if updated.OrderStatus != "Dispatched" || updated.PaymentIntent.Status != "Dispatched" {
		t.Errorf("status not mirrored: %q / %q", updated.OrderStatus, updated.PaymentIntent.Status)
	}
	if updated.PaymentIntent.Amount != amount {
		t.Errorf("amount must not change on status update: %v", updated.PaymentIntent.Amount)
	}

	_, err = f.svc.UpdateOrderStatus(context.Background(), orderID, "")
	if apperr.KindOf(err) != apperr.KindBadRequest {
		t.Errorf("expected BadRequest for empty status, got %v", err)
	}
}

func TestEmptyCart(t *testing.T) {
	f := newFixture()
	f.submitCart(t)

	if _, err := f.svc.EmptyCart(context.Background(), f.userID); err != nil {
		t.Fatalf("EmptyCart: %v", err)
	}
	if _, err := f.svc.GetCart(context.Background(), f.userID); apperr.KindOf(err) != apperr.KindNotFound {
		t.Errorf("expected NotFound after emptying, got %v", err)
	}
}

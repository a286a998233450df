// Package checkout implements the cart-to-order settlement flow: cart
// replacement, coupon application, and order creation with the batched
// inventory adjustment.
package checkout

import (
	"context"
	"math"
	"time"

	"github.com/example/storefront/pkg/apperr"
	"github.com/example/storefront/pkg/models"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// InventoryAdjustment is one entry of the settlement bulk write: decrement
// quantity and increment sold by Count for the given product.
type InventoryAdjustment struct {
	ProductID primitive.ObjectID
	Count     int
}

type ProductStore interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Product, error)
	FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Product, error)
	// AdjustInventory applies all adjustments as a single bulk write. The
	// store gives no cross-entry atomicity: a mid-batch failure may leave
	// some products updated and others not.
	AdjustInventory(ctx context.Context, adjustments []InventoryAdjustment) error
}

type CartStore interface {
	FindByOwner(ctx context.Context, owner primitive.ObjectID) (*models.Cart, error)
	DeleteByOwner(ctx context.Context, owner primitive.ObjectID) (*models.Cart, error)
	Insert(ctx context.Context, cart *models.Cart) (*models.Cart, error)
	SetDiscountTotal(ctx context.Context, owner primitive.ObjectID, total float64) (*models.Cart, error)
}

type CouponStore interface {
	FindByName(ctx context.Context, name string) (*models.Coupon, error)
}

type OrderStore interface {
	Insert(ctx context.Context, order *models.Order) (*models.Order, error)
	FindByOwner(ctx context.Context, owner primitive.ObjectID) ([]models.Order, error)
	UpdateStatus(ctx context.Context, id primitive.ObjectID, status string) (*models.Order, error)
}

type Service struct {
	products ProductStore
	carts    CartStore
	coupons  CouponStore
	orders   OrderStore
	logger   *zap.Logger
}

func NewService(products ProductStore, carts CartStore, coupons CouponStore, orders OrderStore, logger *zap.Logger) *Service {
	return &Service{
		products: products,
		carts:    carts,
		coupons:  coupons,
		orders:   orders,
		logger:   logger,
	}
}

// CartLineInput is one requested line of a cart submission.
type CartLineInput struct {
	ProductID primitive.ObjectID `json:"productId"`
	Count     int                `json:"count"`
	Color     string             `json:"color"`
}

// ReplaceCart swaps the user's cart for a new one built from the requested
// lines. Unit prices come from the current catalog; a missing product fails
// the whole submission. The delete-then-insert pair is backed by a unique
// index on the owner, which keeps the single-cart invariant under
// concurrent submits.
func (s *Service) ReplaceCart(ctx context.Context, userID primitive.ObjectID, lines []CartLineInput) (*models.Cart, error) {
	resolved := make([]models.CartLine, 0, len(lines))
	for _, line := range lines {
		product, err := s.products.FindByID(ctx, line.ProductID)
		if err != nil {
			return nil, err
		}
		resolved = append(resolved, models.CartLine{
			Product: product.ID,
			Count:   line.Count,
			Color:   line.Color,
			Price:   product.Price,
		})
	}

	var total float64
	for _, line := range resolved {
		total += line.Price * float64(line.Count)
	}

	if _, err := s.carts.DeleteByOwner(ctx, userID); err != nil && apperr.KindOf(err) != apperr.KindNotFound {
		return nil, err
	}

	return s.carts.Insert(ctx, &models.Cart{
		Lines:     resolved,
		CartTotal: total,
		OrderBy:   userID,
	})
}

func (s *Service) GetCart(ctx context.Context, userID primitive.ObjectID) (*models.Cart, error) {
	return s.carts.FindByOwner(ctx, userID)
}

func (s *Service) EmptyCart(ctx context.Context, userID primitive.ObjectID) (*models.Cart, error) {
	return s.carts.DeleteByOwner(ctx, userID)
}

// ApplyCoupon computes and persists the discounted cart total, rounded to
// two decimal places half-up. Applying the same coupon twice on an unchanged
// cart writes the same value again.
func (s *Service) ApplyCoupon(ctx context.Context, userID primitive.ObjectID, couponName string) (float64, error) {
	coupon, err := s.coupons.FindByName(ctx, couponName)
	if err != nil {
		if apperr.KindOf(err) == apperr.KindNotFound {
			return 0, apperr.New(apperr.KindConflict, "invalid coupon")
		}
		return 0, err
	}

	cart, err := s.carts.FindByOwner(ctx, userID)
	if err != nil {
		return 0, err
	}

	discounted := round2(cart.CartTotal - cart.CartTotal*coupon.Discount/100)
	if _, err := s.carts.SetDiscountTotal(ctx, userID, discounted); err != nil {
		return 0, err
	}
	return discounted, nil
}

// CreateOrder settles the user's cart into an order. The order document is
// inserted first; the inventory bulk write follows without a wrapping
// transaction, so a failure between the two steps leaves an order whose
// stock was never decremented. That window is logged, not patched.
func (s *Service) CreateOrder(ctx context.Context, userID primitive.ObjectID, confirmCOD, couponApplied bool) error {
	if !confirmCOD {
		return apperr.New(apperr.KindConflict, "create cash order failed")
	}

	cart, err := s.carts.FindByOwner(ctx, userID)
	if err != nil {
		return err
	}
	if len(cart.Lines) == 0 {
		return apperr.New(apperr.KindConflict, "cart is empty")
	}

	amount := cart.CartTotal
	if couponApplied && cart.TotalAfterDiscount != nil {
		amount = *cart.TotalAfterDiscount
	}

	order := &models.Order{
		Lines: cart.Lines,
		PaymentIntent: models.PaymentIntent{
			ID:        uuid.NewString(),
			Method:    models.PaymentMethodCOD,
			Amount:    amount,
			Status:    models.OrderStatusCOD,
			CreatedAt: time.Now(),
			Currency:  models.PaymentCurrencyDollar,
		},
		OrderStatus: models.OrderStatusCOD,
		OrderBy:     userID,
	}
	if _, err := s.orders.Insert(ctx, order); err != nil {
		return err
	}

	adjustments := make([]InventoryAdjustment, 0, len(cart.Lines))
	for _, line := range cart.Lines {
		adjustments = append(adjustments, InventoryAdjustment{
			ProductID: line.Product,
			Count:     line.Count,
		})
	}
	if err := s.products.AdjustInventory(ctx, adjustments); err != nil {
		s.logger.Error("inventory adjustment failed after order insert; stock has drifted",
			zap.String("user_id", userID.Hex()),
			zap.Int("line_count", len(adjustments)),
			zap.Error(err))
		return err
	}

	return nil
}

// OrderView is an order with its line products resolved from the catalog.
type OrderView struct {
	models.Order
	Products map[string]models.Product `json:"resolvedProducts"`
}

func (s *Service) GetOrders(ctx context.Context, userID primitive.ObjectID) ([]OrderView, error) {
	orders, err := s.orders.FindByOwner(ctx, userID)
	if err != nil {
		return nil, err
	}

	seen := map[primitive.ObjectID]struct{}{}
	var ids []primitive.ObjectID
	for _, order := range orders {
		for _, line := range order.Lines {
			if _, ok := seen[line.Product]; !ok {
				seen[line.Product] = struct{}{}
				ids = append(ids, line.Product)
			}
		}
	}

	var products []models.Product
	if len(ids) > 0 {
		products, err = s.products.FindByIDs(ctx, ids)
		if err != nil {
			return nil, err
		}
	}
	byID := make(map[string]models.Product, len(products))
	for _, p := range products {
		byID[p.ID.Hex()] = p
	}

	views := make([]OrderView, 0, len(orders))
	for _, order := range orders {
		resolved := map[string]models.Product{}
		for _, line := range order.Lines {
			if p, ok := byID[line.Product.Hex()]; ok {
				resolved[line.Product.Hex()] = p
			}
		}
		views = append(views, OrderView{Order: order, Products: resolved})
	}
	return views, nil
}

// UpdateOrderStatus mutates the order status and the mirrored payment-intent
// status. Lines and amount are never touched.
func (s *Service) UpdateOrderStatus(ctx context.Context, orderID primitive.ObjectID, status string) (*models.Order, error) {
	if status == "" {
		return nil, apperr.New(apperr.KindBadRequest, "status is required")
	}
	return s.orders.UpdateStatus(ctx, orderID, status)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

package server

import (
	"github.com/example/storefront/pkg/checkout"
	"github.com/example/storefront/pkg/repository"
	"github.com/gin-gonic/gin"
)

type submitCartRequest struct {
	Cart []struct {
		ProductID string `json:"productId"`
		Count     int    `json:"count"`
		Color     string `json:"color"`
	} `json:"cart"`
}

func (s *Server) submitCart(c *gin.Context) {
	var req submitCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request payload")
		return
	}

	lines := make([]checkout.CartLineInput, 0, len(req.Cart))
	for _, item := range req.Cart {
		productID, err := repository.ValidateID(item.ProductID)
		if err != nil {
			fail(c, err)
			return
		}
		if item.Count <= 0 {
			badRequest(c, "count must be positive")
			return
		}
		lines = append(lines, checkout.CartLineInput{
			ProductID: productID,
			Count:     item.Count,
			Color:     item.Color,
		})
	}

	cart, err := s.checkout.ReplaceCart(c.Request.Context(), currentUser(c).ID, lines)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, cart)
}

func (s *Server) getCart(c *gin.Context) {
	cart, err := s.checkout.GetCart(c.Request.Context(), currentUser(c).ID)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, cart)
}

func (s *Server) emptyCart(c *gin.Context) {
	cart, err := s.checkout.EmptyCart(c.Request.Context(), currentUser(c).ID)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, cart)
}

type applyCouponRequest struct {
	Coupon string `json:"coupon"`
}

func (s *Server) applyCoupon(c *gin.Context) {
	var req applyCouponRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Coupon == "" {
		badRequest(c, "coupon is required")
		return
	}

	total, err := s.checkout.ApplyCoupon(c.Request.Context(), currentUser(c).ID, req.Coupon)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, gin.H{"totalAfterDiscount": total})
}

type createOrderRequest struct {
	COD           bool `json:"COD"`
	CouponApplied bool `json:"couponApplied"`
}

func (s *Server) createOrder(c *gin.Context) {
	var req createOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request payload")
		return
	}

	err := s.checkout.CreateOrder(c.Request.Context(), currentUser(c).ID, req.COD, req.CouponApplied)
	if err != nil {
		fail(c, err)
		return
	}
	// Acknowledgment only; the created order is not echoed back.
	ok(c, nil)
}

func (s *Server) getOrders(c *gin.Context) {
	orders, err := s.checkout.GetOrders(c.Request.Context(), currentUser(c).ID)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, orders)
}

type updateOrderStatusRequest struct {
	Status string `json:"status"`
}

func (s *Server) updateOrderStatus(c *gin.Context) {
	id, err := repository.ValidateID(c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}

	var req updateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request payload")
		return
	}

	order, err := s.checkout.UpdateOrderStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, order)
}

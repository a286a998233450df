package server

import (
	"github.com/example/storefront/pkg/models"
	"github.com/example/storefront/pkg/repository"
	"github.com/gin-gonic/gin"
)

func (s *Server) createCoupon(c *gin.Context) {
	var coupon models.Coupon
	if err := c.ShouldBindJSON(&coupon); err != nil {
		badRequest(c, "invalid request payload")
		return
	}
	if coupon.Name == "" {
		badRequest(c, "name is required")
		return
	}

	out, err := s.coupons.Insert(c.Request.Context(), &coupon)
	if err != nil {
		fail(c, err)
		return
	}
	created(c, out)
}

func (s *Server) getCoupon(c *gin.Context) {
	id, err := repository.ValidateID(c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}

	coupon, err := s.coupons.FindByID(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, coupon)
}

func (s *Server) listCoupons(c *gin.Context) {
	coupons, err := s.coupons.FindAll(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, coupons)
}

func (s *Server) updateCoupon(c *gin.Context) {
	id, err := repository.ValidateID(c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}

	var coupon models.Coupon
	if err := c.ShouldBindJSON(&coupon); err != nil {
		badRequest(c, "invalid request payload")
		return
	}

	out, err := s.coupons.Update(c.Request.Context(), id, &coupon)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, out)
}

func (s *Server) deleteCoupon(c *gin.Context) {
	id, err := repository.ValidateID(c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}

	out, err := s.coupons.Delete(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, out)
}

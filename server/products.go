package server

import (
	"strconv"
	"strings"

	"github.com/example/storefront/pkg/catalog"
	"github.com/example/storefront/pkg/models"
	"github.com/example/storefront/pkg/repository"
	"github.com/gin-gonic/gin"
)

func (s *Server) createProduct(c *gin.Context) {
	var product models.Product
	if err := c.ShouldBindJSON(&product); err != nil {
		badRequest(c, "invalid request payload")
		return
	}

	out, err := s.catalog.Create(c.Request.Context(), &product)
	if err != nil {
		fail(c, err)
		return
	}
	created(c, out)
}

func (s *Server) getProduct(c *gin.Context) {
	id, err := repository.ValidateID(c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}

	product, err := s.catalog.Get(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, product)
}

// listProducts parses the mongoose-style query string:
// ?category=Laptop&price[gte]=1200&sort=-category,price&fields=title,price&page=1&limit=5
func (s *Server) listProducts(c *gin.Context) {
	query := catalog.ListQuery{
		Category: c.Query("category"),
		Brand:    c.Query("brand"),
		Sort:     c.Query("sort"),
	}

	bounds := map[string]**float64{
		"price[gte]": &query.PriceGTE,
		"price[gt]":  &query.PriceGT,
		"price[lte]": &query.PriceLTE,
		"price[lt]":  &query.PriceLT,
	}
	for key, dest := range bounds {
		if raw := c.Query(key); raw != "" {
			v, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				badRequest(c, "invalid price bound "+key)
				return
			}
			*dest = &v
		}
	}

	if fields := c.Query("fields"); fields != "" {
		query.Fields = strings.Split(fields, ",")
	}
	if page := c.Query("page"); page != "" {
		v, err := strconv.Atoi(page)
		if err != nil || v < 1 {
			badRequest(c, "invalid page")
			return
		}
		query.Page = v
	}
	if limit := c.Query("limit"); limit != "" {
		v, err := strconv.Atoi(limit)
		if err != nil || v < 1 {
			badRequest(c, "invalid limit")
			return
		}
		query.Limit = v
	}

	products, err := s.catalog.List(c.Request.Context(), query)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, products)
}

func (s *Server) updateProduct(c *gin.Context) {
	id, err := repository.ValidateID(c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}

	var product models.Product
	if err := c.ShouldBindJSON(&product); err != nil {
		badRequest(c, "invalid request payload")
		return
	}

	out, err := s.catalog.Update(c.Request.Context(), id, &product)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, out)
}

func (s *Server) deleteProduct(c *gin.Context) {
	id, err := repository.ValidateID(c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}

	out, err := s.catalog.Delete(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, out)
}

type wishlistRequest struct {
	ProductID string `json:"productId"`
}

func (s *Server) toggleWishlist(c *gin.Context) {
	var req wishlistRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request payload")
		return
	}
	productID, err := repository.ValidateID(req.ProductID)
	if err != nil {
		fail(c, err)
		return
	}

	user, err := s.catalog.ToggleWishlist(c.Request.Context(), currentUser(c).ID, productID)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, user)
}

type ratingRequest struct {
	ProductID string `json:"productId"`
	Star      int    `json:"star"`
	Comment   string `json:"comment"`
}

func (s *Server) rateProduct(c *gin.Context) {
	var req ratingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request payload")
		return
	}
	productID, err := repository.ValidateID(req.ProductID)
	if err != nil {
		fail(c, err)
		return
	}

	product, err := s.catalog.Rate(c.Request.Context(), currentUser(c).ID, productID, req.Star, req.Comment)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, product)
}

package server

import (
	"github.com/example/storefront/pkg/repository"
	"github.com/gin-gonic/gin"
)

type nameRequest struct {
	Name string `json:"name"`
}

// namedRoutes mounts the shared CRUD surface for the name-only taxonomies
// (categories, blog categories, brands, colors). Writes are admin-gated.
func (s *Server) namedRoutes(g *gin.RouterGroup, store *repository.NamedStore) {
	g.POST("", s.authenticate, s.requireAdmin, func(c *gin.Context) {
		var req nameRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "invalid request payload")
			return
		}
		entry, err := store.Insert(c.Request.Context(), req.Name)
		if err != nil {
			fail(c, err)
			return
		}
		created(c, entry)
	})

	g.GET("", func(c *gin.Context) {
		entries, err := store.FindAll(c.Request.Context())
		if err != nil {
			fail(c, err)
			return
		}
		ok(c, entries)
	})

	g.GET("/:id", func(c *gin.Context) {
		id, err := repository.ValidateID(c.Param("id"))
		if err != nil {
			fail(c, err)
			return
		}
		entry, err := store.FindByID(c.Request.Context(), id)
		if err != nil {
			fail(c, err)
			return
		}
		ok(c, entry)
	})

	g.PUT("/:id", s.authenticate, s.requireAdmin, func(c *gin.Context) {
		id, err := repository.ValidateID(c.Param("id"))
		if err != nil {
			fail(c, err)
			return
		}
		var req nameRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "invalid request payload")
			return
		}
		entry, err := store.Update(c.Request.Context(), id, req.Name)
		if err != nil {
			fail(c, err)
			return
		}
		ok(c, entry)
	})

	g.DELETE("/:id", s.authenticate, s.requireAdmin, func(c *gin.Context) {
		id, err := repository.ValidateID(c.Param("id"))
		if err != nil {
			fail(c, err)
			return
		}
		entry, err := store.Delete(c.Request.Context(), id)
		if err != nil {
			fail(c, err)
			return
		}
		ok(c, entry)
	})
}

package server

import (
	"strings"

	"github.com/example/storefront/pkg/apperr"
	"github.com/example/storefront/pkg/models"
	"github.com/example/storefront/pkg/repository"
	"github.com/gin-gonic/gin"
)

const ctxUserKey = "currentUser"

// authenticate resolves the bearer token to a user document and stores it
// on the context. Blocked users are rejected here, before any handler runs.
func (s *Server) authenticate(c *gin.Context) {
	header := c.GetHeader("Authorization")
	if header == "" {
		fail(c, apperr.New(apperr.KindUnauthorized, "authorization header is missing"))
		c.Abort()
		return
	}
	token := strings.TrimPrefix(header, "Bearer ")

	userID, err := s.verify(token)
	if err != nil {
		fail(c, err)
		c.Abort()
		return
	}

	id, err := repository.ValidateID(userID)
	if err != nil {
		fail(c, apperr.New(apperr.KindUnauthorized, "invalid token subject"))
		c.Abort()
		return
	}

	user, err := s.users.FindByID(c.Request.Context(), id)
	if err != nil {
		fail(c, apperr.New(apperr.KindUnauthorized, "user no longer exists"))
		c.Abort()
		return
	}
	if user.IsBlocked {
		fail(c, apperr.New(apperr.KindForbidden, "user is blocked"))
		c.Abort()
		return
	}

	c.Set(ctxUserKey, user)
	c.Next()
}

func (s *Server) requireAdmin(c *gin.Context) {
	user := currentUser(c)
	if user == nil || !user.IsAdmin() {
		fail(c, apperr.New(apperr.KindForbidden, "admin access required"))
		c.Abort()
		return
	}
	c.Next()
}

func currentUser(c *gin.Context) *models.User {
	v, ok := c.Get(ctxUserKey)
	if !ok {
		return nil
	}
	user, _ := v.(*models.User)
	return user
}

package server

import (
	"context"

	"github.com/example/storefront/pkg/models"
	"github.com/example/storefront/pkg/repository"
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func (s *Server) createBlog(c *gin.Context) {
	var blog models.Blog
	if err := c.ShouldBindJSON(&blog); err != nil {
		badRequest(c, "invalid request payload")
		return
	}

	out, err := s.content.Create(c.Request.Context(), &blog)
	if err != nil {
		fail(c, err)
		return
	}
	created(c, out)
}

func (s *Server) getBlog(c *gin.Context) {
	id, err := repository.ValidateID(c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}

	blog, err := s.content.Get(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, blog)
}

func (s *Server) listBlogs(c *gin.Context) {
	blogs, err := s.content.List(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, blogs)
}

func (s *Server) updateBlog(c *gin.Context) {
	id, err := repository.ValidateID(c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}

	var blog models.Blog
	if err := c.ShouldBindJSON(&blog); err != nil {
		badRequest(c, "invalid request payload")
		return
	}

	out, err := s.content.Update(c.Request.Context(), id, &blog)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, out)
}

func (s *Server) deleteBlog(c *gin.Context) {
	id, err := repository.ValidateID(c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}

	out, err := s.content.Delete(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, out)
}

type blogVoteRequest struct {
	BlogID string `json:"blogId"`
}

func (s *Server) likeBlog(c *gin.Context) {
	s.voteBlog(c, s.content.Like)
}

func (s *Server) dislikeBlog(c *gin.Context) {
	s.voteBlog(c, s.content.Dislike)
}

func (s *Server) voteBlog(c *gin.Context, vote func(ctx context.Context, blogID, userID primitive.ObjectID) (*models.Blog, error)) {
	var req blogVoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request payload")
		return
	}
	blogID, err := repository.ValidateID(req.BlogID)
	if err != nil {
		fail(c, err)
		return
	}

	blog, err := vote(c.Request.Context(), blogID, currentUser(c).ID)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, blog)
}

// Package content manages blog posts: CRUD, the view counter, and the
// like/dislike toggles.
package content

import (
	"context"

	"github.com/example/storefront/pkg/apperr"
	"github.com/example/storefront/pkg/models"
	"github.com/gosimple/slug"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type BlogStore interface {
	Insert(ctx context.Context, blog *models.Blog) (*models.Blog, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Blog, error)
	IncrementViews(ctx context.Context, id primitive.ObjectID) (*models.Blog, error)
	FindAll(ctx context.Context) ([]models.Blog, error)
	Update(ctx context.Context, id primitive.ObjectID, blog *models.Blog) (*models.Blog, error)
	Delete(ctx context.Context, id primitive.ObjectID) (*models.Blog, error)
	SetVotes(ctx context.Context, id primitive.ObjectID, likes, dislikes []primitive.ObjectID, isLiked, isDisliked bool) (*models.Blog, error)
}

type Service struct {
	blogs BlogStore
}

func NewService(blogs BlogStore) *Service {
	return &Service{blogs: blogs}
}

func (s *Service) Create(ctx context.Context, blog *models.Blog) (*models.Blog, error) {
	if blog.Title == "" || blog.Description == "" || blog.Category == "" {
		return nil, apperr.New(apperr.KindBadRequest, "title, description and category are required")
	}
	blog.Slug = slug.Make(blog.Title)
	return s.blogs.Insert(ctx, blog)
}

// Get reads a blog and counts the read as a view.
func (s *Service) Get(ctx context.Context, id primitive.ObjectID) (*models.Blog, error) {
	return s.blogs.IncrementViews(ctx, id)
}

func (s *Service) List(ctx context.Context) ([]models.Blog, error) {
	return s.blogs.FindAll(ctx)
}

func (s *Service) Update(ctx context.Context, id primitive.ObjectID, blog *models.Blog) (*models.Blog, error) {
	if blog.Title != "" {
		blog.Slug = slug.Make(blog.Title)
	}
	return s.blogs.Update(ctx, id, blog)
}

func (s *Service) Delete(ctx context.Context, id primitive.ObjectID) (*models.Blog, error) {
	return s.blogs.Delete(ctx, id)
}

// Like toggles the caller's like on a blog, clearing any standing dislike
// first. Dislike mirrors it.
func (s *Service) Like(ctx context.Context, blogID, userID primitive.ObjectID) (*models.Blog, error) {
	blog, err := s.blogs.FindByID(ctx, blogID)
	if err != nil {
		return nil, err
	}

	dislikes := remove(blog.Dislikes, userID)
	likes := blog.Likes
	liked := contains(likes, userID)
	if liked {
		likes = remove(likes, userID)
	} else {
		likes = append(remove(likes, userID), userID)
	}

	return s.blogs.SetVotes(ctx, blogID, likes, dislikes, !liked, false)
}

func (s *Service) Dislike(ctx context.Context, blogID, userID primitive.ObjectID) (*models.Blog, error) {
	blog, err := s.blogs.FindByID(ctx, blogID)
	if err != nil {
		return nil, err
	}

	likes := remove(blog.Likes, userID)
	dislikes := blog.Dislikes
	disliked := contains(dislikes, userID)
	if disliked {
		dislikes = remove(dislikes, userID)
	} else {
		dislikes = append(remove(dislikes, userID), userID)
	}

	return s.blogs.SetVotes(ctx, blogID, likes, dislikes, false, !disliked)
}

func contains(ids []primitive.ObjectID, id primitive.ObjectID) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

func remove(ids []primitive.ObjectID, id primitive.ObjectID) []primitive.ObjectID {
	out := make([]primitive.ObjectID, 0, len(ids))
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}

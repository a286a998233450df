// Package catalog manages product documents: CRUD with slugs, the
// query/sort/project/paginate listing, wishlist toggling, and rating
// aggregation.
package catalog

import (
	"context"
	"math"

	"github.com/example/storefront/pkg/apperr"
	"github.com/example/storefront/pkg/models"
	"github.com/gosimple/slug"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ListQuery carries the catalog listing parameters parsed from the request:
// equality filters, price bounds, a comma-separated sort spec ("-" prefix
// for descending), projected fields, and page/limit pagination.
type ListQuery struct {
	Category string
	Brand    string
	PriceGTE *float64
	PriceGT  *float64
	PriceLTE *float64
	PriceLT  *float64
	Sort     string
	Fields   []string
	Page     int
	Limit    int
}

type ProductStore interface {
	Insert(ctx context.Context, product *models.Product) (*models.Product, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Product, error)
	List(ctx context.Context, query ListQuery) ([]models.Product, error)
	Count(ctx context.Context) (int64, error)
	Update(ctx context.Context, id primitive.ObjectID, product *models.Product) (*models.Product, error)
	Delete(ctx context.Context, id primitive.ObjectID) (*models.Product, error)
	UpdateRatings(ctx context.Context, id primitive.ObjectID, ratings []models.Rating, totalRating int) (*models.Product, error)
}

type UserStore interface {
	ToggleWishlist(ctx context.Context, userID, productID primitive.ObjectID) (*models.User, error)
}

type Service struct {
	products ProductStore
	users    UserStore
}

func NewService(products ProductStore, users UserStore) *Service {
	return &Service{products: products, users: users}
}

func (s *Service) Create(ctx context.Context, product *models.Product) (*models.Product, error) {
	if product.Title == "" {
		return nil, apperr.New(apperr.KindBadRequest, "title is required")
	}
	if product.Price < 0 {
		return nil, apperr.New(apperr.KindBadRequest, "price must not be negative")
	}
	product.Slug = slug.Make(product.Title)
	return s.products.Insert(ctx, product)
}

func (s *Service) Get(ctx context.Context, id primitive.ObjectID) (*models.Product, error) {
	return s.products.FindByID(ctx, id)
}

// List runs the catalog query. When a page is requested past the end of the
// collection the call fails instead of returning an empty slice, matching
// the original pagination guard.
func (s *Service) List(ctx context.Context, query ListQuery) ([]models.Product, error) {
	if query.Page > 0 && query.Limit > 0 {
		total, err := s.products.Count(ctx)
		if err != nil {
			return nil, err
		}
		if int64((query.Page-1)*query.Limit) >= total {
			return nil, apperr.New(apperr.KindNotFound, "this page does not exist")
		}
	}
	return s.products.List(ctx, query)
}

func (s *Service) Update(ctx context.Context, id primitive.ObjectID, product *models.Product) (*models.Product, error) {
	if product.Title != "" {
		product.Slug = slug.Make(product.Title)
	}
	return s.products.Update(ctx, id, product)
}

func (s *Service) Delete(ctx context.Context, id primitive.ObjectID) (*models.Product, error) {
	return s.products.Delete(ctx, id)
}

func (s *Service) ToggleWishlist(ctx context.Context, userID, productID primitive.ObjectID) (*models.User, error) {
	return s.users.ToggleWishlist(ctx, userID, productID)
}

// Rate upserts the caller's rating entry on the product (one entry per
// user), then recomputes totalRating as the rounded mean of all stars, ties
// away from zero.
func (s *Service) Rate(ctx context.Context, userID, productID primitive.ObjectID, star int, comment string) (*models.Product, error) {
	if star < 1 || star > 5 {
		return nil, apperr.New(apperr.KindBadRequest, "star must be between 1 and 5")
	}

	product, err := s.products.FindByID(ctx, productID)
	if err != nil {
		return nil, err
	}

	ratings := make([]models.Rating, len(product.Ratings))
	copy(ratings, product.Ratings)

	replaced := false
	for i := range ratings {
		if ratings[i].PostedBy == userID {
			ratings[i].Star = star
			ratings[i].Comment = comment
			replaced = true
			break
		}
	}
	if !replaced {
		ratings = append(ratings, models.Rating{Star: star, Comment: comment, PostedBy: userID})
	}

	return s.products.UpdateRatings(ctx, productID, ratings, meanRating(ratings))
}

func meanRating(ratings []models.Rating) int {
	if len(ratings) == 0 {
		return 0
	}
	sum := 0
	for _, r := range ratings {
		sum += r.Star
	}
	return int(math.Round(float64(sum) / float64(len(ratings))))
}

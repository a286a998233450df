package repository

import (
	"context"
	"time"

	"github.com/example/storefront/pkg/apperr"
	"github.com/example/storefront/pkg/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type BlogStore struct {
	coll *mongo.Collection
}

func (m *MongoStore) Blogs() *BlogStore {
	return &BlogStore{coll: m.database.Collection(collBlogs)}
}

func (s *BlogStore) Insert(ctx context.Context, blog *models.Blog) (*models.Blog, error) {
	now := time.Now()
	blog.CreatedAt = now
	blog.UpdatedAt = now
	blog.ApplyDefaults()
	if blog.Likes == nil {
		blog.Likes = []primitive.ObjectID{}
	}
	if blog.Dislikes == nil {
		blog.Dislikes = []primitive.ObjectID{}
	}

	res, err := s.coll.InsertOne(ctx, blog)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindUnavailable, "store error", err)
	}
	blog.ID = res.InsertedID.(primitive.ObjectID)
	return blog, nil
}

func (s *BlogStore) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Blog, error) {
	var blog models.Blog
	if err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&blog); err != nil {
		return nil, notFoundOr(err, "blog")
	}
	return &blog, nil
}

// IncrementViews bumps numViews and returns the updated document; reading a
// blog counts as a view.
func (s *BlogStore) IncrementViews(ctx context.Context, id primitive.ObjectID) (*models.Blog, error) {
	var blog models.Blog
	err := s.coll.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$inc": bson.M{"numViews": 1}},
		returnUpdated(),
	).Decode(&blog)
	if err != nil {
		return nil, notFoundOr(err, "blog")
	}
	return &blog, nil
}

func (s *BlogStore) FindAll(ctx context.Context) ([]models.Blog, error) {
	cursor, err := s.coll.Find(ctx, bson.M{})
	if err != nil {
		return nil, apperr.Wrap(apperr.KindUnavailable, "store error", err)
	}
	defer cursor.Close(ctx)

	var blogs []models.Blog
	if err := cursor.All(ctx, &blogs); err != nil {
		return nil, apperr.Wrap(apperr.KindUnavailable, "store error", err)
	}
	return blogs, nil
}

func (s *BlogStore) Update(ctx context.Context, id primitive.ObjectID, blog *models.Blog) (*models.Blog, error) {
	set := bson.M{"updatedAt": time.Now()}
	if blog.Title != "" {
		set["title"] = blog.Title
		set["slug"] = blog.Slug
	}
	if blog.Description != "" {
		set["description"] = blog.Description
	}
	if blog.Category != "" {
		set["category"] = blog.Category
	}
	if blog.Image != "" {
		set["image"] = blog.Image
	}
	if blog.Author != "" {
		set["author"] = blog.Author
	}

	var updated models.Blog
	err := s.coll.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, returnUpdated()).Decode(&updated)
	if err != nil {
		return nil, notFoundOr(err, "blog")
	}
	return &updated, nil
}

func (s *BlogStore) Delete(ctx context.Context, id primitive.ObjectID) (*models.Blog, error) {
	var deleted models.Blog
	if err := s.coll.FindOneAndDelete(ctx, bson.M{"_id": id}).Decode(&deleted); err != nil {
		return nil, notFoundOr(err, "blog")
	}
	return &deleted, nil
}

// SetVotes persists the recomputed like/dislike state in a single update.
func (s *BlogStore) SetVotes(ctx context.Context, id primitive.ObjectID, likes, dislikes []primitive.ObjectID, isLiked, isDisliked bool) (*models.Blog, error) {
	var updated models.Blog
	err := s.coll.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{
			"likes":      likes,
			"dislikes":   dislikes,
			"isLiked":    isLiked,
			"isDisliked": isDisliked,
			"updatedAt":  time.Now(),
		}},
		returnUpdated(),
	).Decode(&updated)
	if err != nil {
		return nil, notFoundOr(err, "blog")
	}
	return &updated, nil
}

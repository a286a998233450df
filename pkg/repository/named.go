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

// NamedStore serves the name-only taxonomies: product categories, blog
// categories, brands and colors. They share the same CRUD shape.
type NamedStore struct {
	coll *mongo.Collection
	what string
}

func (m *MongoStore) Categories() *NamedStore {
	return &NamedStore{coll: m.database.Collection(collCategories), what: "category"}
}

func (m *MongoStore) BlogCategories() *NamedStore {
	return &NamedStore{coll: m.database.Collection(collBlogCategories), what: "blog category"}
}

func (m *MongoStore) Brands() *NamedStore {
	return &NamedStore{coll: m.database.Collection(collBrands), what: "brand"}
}

func (m *MongoStore) Colors() *NamedStore {
	return &NamedStore{coll: m.database.Collection(collColors), what: "color"}
}

func (s *NamedStore) Insert(ctx context.Context, name string) (*models.NamedEntry, error) {
	if name == "" {
		return nil, apperr.New(apperr.KindBadRequest, "name is required")
	}
	now := time.Now()
	entry := &models.NamedEntry{Name: name, CreatedAt: now, UpdatedAt: now}

	res, err := s.coll.InsertOne(ctx, entry)
	if err != nil {
		if isDuplicateKey(err) {
			return nil, apperr.Newf(apperr.KindConflict, "%s already exists", s.what)
		}
		return nil, apperr.Wrap(apperr.KindUnavailable, "store error", err)
	}
	entry.ID = res.InsertedID.(primitive.ObjectID)
	return entry, nil
}

func (s *NamedStore) FindByID(ctx context.Context, id primitive.ObjectID) (*models.NamedEntry, error) {
	var entry models.NamedEntry
	if err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&entry); err != nil {
		return nil, notFoundOr(err, s.what)
	}
	return &entry, nil
}

func (s *NamedStore) FindAll(ctx context.Context) ([]models.NamedEntry, error) {
	cursor, err := s.coll.Find(ctx, bson.M{})
	if err != nil {
		return nil, apperr.Wrap(apperr.KindUnavailable, "store error", err)
	}
	defer cursor.Close(ctx)

	var entries []models.NamedEntry
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, apperr.Wrap(apperr.KindUnavailable, "store error", err)
	}
	return entries, nil
}

func (s *NamedStore) Update(ctx context.Context, id primitive.ObjectID, name string) (*models.NamedEntry, error) {
	if name == "" {
		return nil, apperr.New(apperr.KindBadRequest, "name is required")
	}

	var updated models.NamedEntry
	err := s.coll.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"name": name, "updatedAt": time.Now()}},
		returnUpdated(),
	).Decode(&updated)
	if err != nil {
		return nil, notFoundOr(err, s.what)
	}
	return &updated, nil
}

func (s *NamedStore) Delete(ctx context.Context, id primitive.ObjectID) (*models.NamedEntry, error) {
	var deleted models.NamedEntry
	if err := s.coll.FindOneAndDelete(ctx, bson.M{"_id": id}).Decode(&deleted); err != nil {
		return nil, notFoundOr(err, s.what)
	}
	return &deleted, nil
}

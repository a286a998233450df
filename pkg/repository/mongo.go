package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/example/storefront/pkg/apperr"
	"github.com/example/storefront/pkg/config"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	collUsers           = "users"
	collProducts        = "products"
	collCarts           = "carts"
	collOrders          = "orders"
	collCoupons         = "coupons"
	collBlogs           = "blogs"
	collCategories      = "categories"
	collBlogCategories  = "blogcategories"
	collBrands          = "brands"
	collColors          = "colors"
	collEnquiries       = "enquiries"
)

type MongoStore struct {
	client   *mongo.Client
	database *mongo.Database
}

func NewMongoStore(cfg *config.MongoDBConfig) (*MongoStore, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, err
	}

	return &MongoStore{
		client:   client,
		database: client.Database(cfg.Database),
	}, nil
}

func (m *MongoStore) Ping(ctx context.Context) error {
	return m.client.Ping(ctx, nil)
}

func (m *MongoStore) Close(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}

// EnsureIndexes creates the unique indexes the data model relies on. The
// carts.orderBy index is what enforces the at-most-one-cart-per-user
// invariant under concurrent submissions.
func (m *MongoStore) EnsureIndexes(ctx context.Context) error {
	unique := func(coll string, keys bson.D) error {
		_, err := m.database.Collection(coll).Indexes().CreateOne(ctx, mongo.IndexModel{
			Keys:    keys,
			Options: options.Index().SetUnique(true),
		})
		if err != nil {
			return fmt.Errorf("create index on %s: %w", coll, err)
		}
		return nil
	}

	if err := unique(collUsers, bson.D{{Key: "email", Value: 1}}); err != nil {
		return err
	}
	if err := unique(collUsers, bson.D{{Key: "mobile", Value: 1}}); err != nil {
		return err
	}
	if err := unique(collCarts, bson.D{{Key: "orderBy", Value: 1}}); err != nil {
		return err
	}
	if err := unique(collCoupons, bson.D{{Key: "name", Value: 1}}); err != nil {
		return err
	}
	if err := unique(collColors, bson.D{{Key: "name", Value: 1}}); err != nil {
		return err
	}
	return unique(collProducts, bson.D{{Key: "slug", Value: 1}})
}

// ValidateID parses an identifier from a request path or payload, failing
// fast with a BadRequest before any store round-trip.
func ValidateID(hex string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(hex)
	if err != nil {
		return primitive.NilObjectID, apperr.Newf(apperr.KindBadRequest, "invalid id %q", hex)
	}
	return id, nil
}

func notFoundOr(err error, what string) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return apperr.Newf(apperr.KindNotFound, "%s not found", what)
	}
	return apperr.Wrap(apperr.KindUnavailable, "store error", err)
}

func isDuplicateKey(err error) bool {
	return mongo.IsDuplicateKeyError(err)
}

// returnUpdated makes FindOneAndUpdate behave like the store's
// update-returning-document primitive.
func returnUpdated() *options.FindOneAndUpdateOptions {
	return options.FindOneAndUpdate().SetReturnDocument(options.After)
}

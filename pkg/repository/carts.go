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

type CartStore struct {
	coll *mongo.Collection
}

func (m *MongoStore) Carts() *CartStore {
	return &CartStore{coll: m.database.Collection(collCarts)}
}

func (s *CartStore) FindByOwner(ctx context.Context, owner primitive.ObjectID) (*models.Cart, error) {
	var cart models.Cart
	if err := s.coll.FindOne(ctx, bson.M{"orderBy": owner}).Decode(&cart); err != nil {
		return nil, notFoundOr(err, "cart")
	}
	return &cart, nil
}

func (s *CartStore) DeleteByOwner(ctx context.Context, owner primitive.ObjectID) (*models.Cart, error) {
	var cart models.Cart
	if err := s.coll.FindOneAndDelete(ctx, bson.M{"orderBy": owner}).Decode(&cart); err != nil {
		return nil, notFoundOr(err, "cart")
	}
	return &cart, nil
}

func (s *CartStore) Insert(ctx context.Context, cart *models.Cart) (*models.Cart, error) {
	now := time.Now()
	cart.CreatedAt = now
	cart.UpdatedAt = now
	if cart.Lines == nil {
		cart.Lines = []models.CartLine{}
	}

	res, err := s.coll.InsertOne(ctx, cart)
	if err != nil {
		// The unique orderBy index rejects a second cart racing in for the
		// same owner.
		if isDuplicateKey(err) {
			return nil, apperr.New(apperr.KindConflict, "cart already exists for this user")
		}
		return nil, apperr.Wrap(apperr.KindUnavailable, "store error", err)
	}
	cart.ID = res.InsertedID.(primitive.ObjectID)
	return cart, nil
}

func (s *CartStore) SetDiscountTotal(ctx context.Context, owner primitive.ObjectID, total float64) (*models.Cart, error) {
	var cart models.Cart
	err := s.coll.FindOneAndUpdate(ctx,
		bson.M{"orderBy": owner},
		bson.M{"$set": bson.M{"totalAfterDiscount": total, "updatedAt": time.Now()}},
		returnUpdated(),
	).Decode(&cart)
	if err != nil {
		return nil, notFoundOr(err, "cart")
	}
	return &cart, nil
}

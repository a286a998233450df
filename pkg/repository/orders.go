package repository

import (
	"context"
	"time"

	"github.com/example/storefront/pkg/apperr"
	"github.com/example/storefront/pkg/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type OrderStore struct {
	coll *mongo.Collection
}

func (m *MongoStore) Orders() *OrderStore {
	return &OrderStore{coll: m.database.Collection(collOrders)}
}

func (s *OrderStore) Insert(ctx context.Context, order *models.Order) (*models.Order, error) {
	now := time.Now()
	order.CreatedAt = now
	order.UpdatedAt = now

	res, err := s.coll.InsertOne(ctx, order)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindUnavailable, "store error", err)
	}
	order.ID = res.InsertedID.(primitive.ObjectID)
	return order, nil
}

func (s *OrderStore) FindByOwner(ctx context.Context, owner primitive.ObjectID) ([]models.Order, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := s.coll.Find(ctx, bson.M{"orderBy": owner}, opts)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindUnavailable, "store error", err)
	}
	defer cursor.Close(ctx)

	var orders []models.Order
	if err := cursor.All(ctx, &orders); err != nil {
		return nil, apperr.Wrap(apperr.KindUnavailable, "store error", err)
	}
	return orders, nil
}

// UpdateStatus sets orderStatus and the mirrored paymentIntent.status. The
// dotted path deliberately leaves the rest of the payment intent intact.
func (s *OrderStore) UpdateStatus(ctx context.Context, id primitive.ObjectID, status string) (*models.Order, error) {
	var order models.Order
	err := s.coll.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{
			"orderStatus":          status,
			"paymentIntent.status": status,
			"updatedAt":            time.Now(),
		}},
		returnUpdated(),
	).Decode(&order)
	if err != nil {
		return nil, notFoundOr(err, "order")
	}
	return &order, nil
}

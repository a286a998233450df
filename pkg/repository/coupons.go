package repository

import (
	"context"
	"strings"
	"time"

	"github.com/example/storefront/pkg/apperr"
	"github.com/example/storefront/pkg/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type CouponStore struct {
	coll *mongo.Collection
}

func (m *MongoStore) Coupons() *CouponStore {
	return &CouponStore{coll: m.database.Collection(collCoupons)}
}

func (s *CouponStore) Insert(ctx context.Context, coupon *models.Coupon) (*models.Coupon, error) {
	if coupon.Discount < 0 || coupon.Discount > 100 {
		return nil, apperr.New(apperr.KindBadRequest, "discount must be between 0 and 100")
	}
	now := time.Now()
	coupon.Name = strings.ToUpper(coupon.Name)
	coupon.CreatedAt = now
	coupon.UpdatedAt = now

	res, err := s.coll.InsertOne(ctx, coupon)
	if err != nil {
		if isDuplicateKey(err) {
			return nil, apperr.New(apperr.KindConflict, "coupon already exists")
		}
		return nil, apperr.Wrap(apperr.KindUnavailable, "store error", err)
	}
	coupon.ID = res.InsertedID.(primitive.ObjectID)
	return coupon, nil
}

func (s *CouponStore) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Coupon, error) {
	var coupon models.Coupon
	if err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&coupon); err != nil {
		return nil, notFoundOr(err, "coupon")
	}
	return &coupon, nil
}

func (s *CouponStore) FindByName(ctx context.Context, name string) (*models.Coupon, error) {
	var coupon models.Coupon
	if err := s.coll.FindOne(ctx, bson.M{"name": strings.ToUpper(name)}).Decode(&coupon); err != nil {
		return nil, notFoundOr(err, "coupon")
	}
	return &coupon, nil
}

func (s *CouponStore) FindAll(ctx context.Context) ([]models.Coupon, error) {
	cursor, err := s.coll.Find(ctx, bson.M{})
	if err != nil {
		return nil, apperr.Wrap(apperr.KindUnavailable, "store error", err)
	}
	defer cursor.Close(ctx)

	var coupons []models.Coupon
	if err := cursor.All(ctx, &coupons); err != nil {
		return nil, apperr.Wrap(apperr.KindUnavailable, "store error", err)
	}
	return coupons, nil
}

func (s *CouponStore) Update(ctx context.Context, id primitive.ObjectID, coupon *models.Coupon) (*models.Coupon, error) {
	set := bson.M{"updatedAt": time.Now()}
	if coupon.Name != "" {
		set["name"] = strings.ToUpper(coupon.Name)
	}
	if !coupon.Expiry.IsZero() {
		set["expiry"] = coupon.Expiry
	}
	if coupon.Discount != 0 {
		if coupon.Discount < 0 || coupon.Discount > 100 {
			return nil, apperr.New(apperr.KindBadRequest, "discount must be between 0 and 100")
		}
		set["discount"] = coupon.Discount
	}

	var updated models.Coupon
	err := s.coll.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, returnUpdated()).Decode(&updated)
	if err != nil {
		return nil, notFoundOr(err, "coupon")
	}
	return &updated, nil
}

func (s *CouponStore) Delete(ctx context.Context, id primitive.ObjectID) (*models.Coupon, error) {
	var deleted models.Coupon
	if err := s.coll.FindOneAndDelete(ctx, bson.M{"_id": id}).Decode(&deleted); err != nil {
		return nil, notFoundOr(err, "coupon")
	}
	return &deleted, nil
}

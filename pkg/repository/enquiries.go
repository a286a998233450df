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

type EnquiryStore struct {
	coll *mongo.Collection
}

func (m *MongoStore) Enquiries() *EnquiryStore {
	return &EnquiryStore{coll: m.database.Collection(collEnquiries)}
}

func (s *EnquiryStore) Insert(ctx context.Context, enquiry *models.Enquiry) (*models.Enquiry, error) {
	now := time.Now()
	enquiry.CreatedAt = now
	enquiry.UpdatedAt = now
	if enquiry.Status == "" {
		enquiry.Status = models.EnquirySubmitted
	}
	if !models.ValidEnquiryStatus(enquiry.Status) {
		return nil, apperr.Newf(apperr.KindBadRequest, "invalid enquiry status %q", enquiry.Status)
	}

	res, err := s.coll.InsertOne(ctx, enquiry)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindUnavailable, "store error", err)
	}
	enquiry.ID = res.InsertedID.(primitive.ObjectID)
	return enquiry, nil
}

func (s *EnquiryStore) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Enquiry, error) {
	var enquiry models.Enquiry
	if err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&enquiry); err != nil {
		return nil, notFoundOr(err, "enquiry")
	}
	return &enquiry, nil
}

func (s *EnquiryStore) FindAll(ctx context.Context) ([]models.Enquiry, error) {
	cursor, err := s.coll.Find(ctx, bson.M{})
	if err != nil {
		return nil, apperr.Wrap(apperr.KindUnavailable, "store error", err)
	}
	defer cursor.Close(ctx)

	var enquiries []models.Enquiry
	if err := cursor.All(ctx, &enquiries); err != nil {
		return nil, apperr.Wrap(apperr.KindUnavailable, "store error", err)
	}
	return enquiries, nil
}

func (s *EnquiryStore) Update(ctx context.Context, id primitive.ObjectID, enquiry *models.Enquiry) (*models.Enquiry, error) {
	set := bson.M{"updatedAt": time.Now()}
	if enquiry.Status != "" {
		if !models.ValidEnquiryStatus(enquiry.Status) {
			return nil, apperr.Newf(apperr.KindBadRequest, "invalid enquiry status %q", enquiry.Status)
		}
		set["status"] = enquiry.Status
	}
	if enquiry.Comment != "" {
		set["comment"] = enquiry.Comment
	}

	var updated models.Enquiry
	err := s.coll.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, returnUpdated()).Decode(&updated)
	if err != nil {
		return nil, notFoundOr(err, "enquiry")
	}
	return &updated, nil
}

func (s *EnquiryStore) Delete(ctx context.Context, id primitive.ObjectID) (*models.Enquiry, error) {
	var deleted models.Enquiry
	if err := s.coll.FindOneAndDelete(ctx, bson.M{"_id": id}).Decode(&deleted); err != nil {
		return nil, notFoundOr(err, "enquiry")
	}
	return &deleted, nil
}

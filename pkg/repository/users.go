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

type UserStore struct {
	coll *mongo.Collection
}

func (m *MongoStore) Users() *UserStore {
	return &UserStore{coll: m.database.Collection(collUsers)}
}

func (s *UserStore) Insert(ctx context.Context, user *models.User) (*models.User, error) {
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now
	if user.Role == "" {
		user.Role = models.RoleUser
	}
	if user.Wishlist == nil {
		user.Wishlist = []primitive.ObjectID{}
	}

	res, err := s.coll.InsertOne(ctx, user)
	if err != nil {
		if isDuplicateKey(err) {
			return nil, apperr.New(apperr.KindConflict, "user already exists")
		}
		return nil, apperr.Wrap(apperr.KindUnavailable, "store error", err)
	}
	user.ID = res.InsertedID.(primitive.ObjectID)
	return user, nil
}

func (s *UserStore) FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var user models.User
	if err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&user); err != nil {
		return nil, notFoundOr(err, "user")
	}
	return &user, nil
}

func (s *UserStore) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := s.coll.FindOne(ctx, bson.M{"email": email}).Decode(&user); err != nil {
		return nil, notFoundOr(err, "user")
	}
	return &user, nil
}

func (s *UserStore) FindByRefreshToken(ctx context.Context, token string) (*models.User, error) {
	var user models.User
	if err := s.coll.FindOne(ctx, bson.M{"refreshToken": token}).Decode(&user); err != nil {
		return nil, notFoundOr(err, "user")
	}
	return &user, nil
}

// FindByResetToken matches the stored sha256 digest and rejects expired
// tokens in the same query, mirroring the original reset-password lookup.
func (s *UserStore) FindByResetToken(ctx context.Context, digest string, now time.Time) (*models.User, error) {
	filter := bson.M{
		"passwordResetToken":   digest,
		"passwordResetExpires": bson.M{"$gt": now},
	}
	var user models.User
	if err := s.coll.FindOne(ctx, filter).Decode(&user); err != nil {
		return nil, notFoundOr(err, "user")
	}
	return &user, nil
}

func (s *UserStore) FindAll(ctx context.Context) ([]models.User, error) {
	cursor, err := s.coll.Find(ctx, bson.M{})
	if err != nil {
		return nil, apperr.Wrap(apperr.KindUnavailable, "store error", err)
	}
	defer cursor.Close(ctx)

	var users []models.User
	if err := cursor.All(ctx, &users); err != nil {
		return nil, apperr.Wrap(apperr.KindUnavailable, "store error", err)
	}
	return users, nil
}

func (s *UserStore) Delete(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var user models.User
	if err := s.coll.FindOneAndDelete(ctx, bson.M{"_id": id}).Decode(&user); err != nil {
		return nil, notFoundOr(err, "user")
	}
	return &user, nil
}

func (s *UserStore) update(ctx context.Context, id primitive.ObjectID, set bson.M, unset bson.M) (*models.User, error) {
	set["updatedAt"] = time.Now()
	update := bson.M{"$set": set}
	if len(unset) > 0 {
		update["$unset"] = unset
	}

	var user models.User
	err := s.coll.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, returnUpdated()).Decode(&user)
	if err != nil {
		return nil, notFoundOr(err, "user")
	}
	return &user, nil
}

func (s *UserStore) UpdateProfile(ctx context.Context, id primitive.ObjectID, firstName, lastName, email, mobile string) (*models.User, error) {
	return s.update(ctx, id, bson.M{
		"firstName": firstName,
		"lastName":  lastName,
		"email":     email,
		"mobile":    mobile,
	}, nil)
}

func (s *UserStore) SaveAddress(ctx context.Context, id primitive.ObjectID, address string) (*models.User, error) {
	return s.update(ctx, id, bson.M{"address": address}, nil)
}

func (s *UserStore) SetBlocked(ctx context.Context, id primitive.ObjectID, blocked bool) (*models.User, error) {
	return s.update(ctx, id, bson.M{"isBlocked": blocked}, nil)
}

func (s *UserStore) SetRefreshToken(ctx context.Context, id primitive.ObjectID, token string) (*models.User, error) {
	return s.update(ctx, id, bson.M{"refreshToken": token}, nil)
}

// ClearRefreshTokenByValue revokes a refresh token without knowing the user
// id; logout only carries the cookie.
func (s *UserStore) ClearRefreshTokenByValue(ctx context.Context, token string) error {
	_, err := s.coll.UpdateOne(ctx,
		bson.M{"refreshToken": token},
		bson.M{"$set": bson.M{"refreshToken": "", "updatedAt": time.Now()}},
	)
	return apperr.Wrap(apperr.KindUnavailable, "store error", err)
}

func (s *UserStore) SetPassword(ctx context.Context, id primitive.ObjectID, hash string) (*models.User, error) {
	return s.update(ctx, id,
		bson.M{"password": hash},
		bson.M{"passwordResetToken": "", "passwordResetExpires": ""},
	)
}

func (s *UserStore) SetResetToken(ctx context.Context, id primitive.ObjectID, digest string, expires time.Time) error {
	_, err := s.update(ctx, id, bson.M{
		"passwordResetToken":   digest,
		"passwordResetExpires": expires,
	}, nil)
	return err
}

// ToggleWishlist pulls the product out of the wishlist when present and
// pushes it otherwise, returning the updated user.
func (s *UserStore) ToggleWishlist(ctx context.Context, id, productID primitive.ObjectID) (*models.User, error) {
	user, err := s.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	op := "$push"
	for _, w := range user.Wishlist {
		if w == productID {
			op = "$pull"
			break
		}
	}

	var updated models.User
	err = s.coll.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{op: bson.M{"wishlist": productID}, "$set": bson.M{"updatedAt": time.Now()}},
		returnUpdated(),
	).Decode(&updated)
	if err != nil {
		return nil, notFoundOr(err, "user")
	}
	return &updated, nil
}

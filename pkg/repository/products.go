package repository

import (
	"context"
	"strings"
	"time"

	"github.com/example/storefront/pkg/apperr"
	"github.com/example/storefront/pkg/catalog"
	"github.com/example/storefront/pkg/checkout"
	"github.com/example/storefront/pkg/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// ProductStore backs both the catalog and the settlement flow. Reads go
// through the Redis cache when one is attached; every write invalidates the
// affected keys. The cache is optional: a nil Cache degrades to Mongo-only.
type ProductStore struct {
	coll   *mongo.Collection
	cache  *Cache
	logger *zap.Logger
}

func (m *MongoStore) Products(cache *Cache, logger *zap.Logger) *ProductStore {
	return &ProductStore{
		coll:   m.database.Collection(collProducts),
		cache:  cache,
		logger: logger,
	}
}

func (s *ProductStore) Insert(ctx context.Context, product *models.Product) (*models.Product, error) {
	now := time.Now()
	product.CreatedAt = now
	product.UpdatedAt = now
	if product.Ratings == nil {
		product.Ratings = []models.Rating{}
	}

	res, err := s.coll.InsertOne(ctx, product)
	if err != nil {
		if isDuplicateKey(err) {
			return nil, apperr.New(apperr.KindConflict, "product with this title already exists")
		}
		return nil, apperr.Wrap(apperr.KindUnavailable, "store error", err)
	}
	product.ID = res.InsertedID.(primitive.ObjectID)
	return product, nil
}

func (s *ProductStore) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Product, error) {
	if s.cache != nil {
		if p, err := s.cache.GetProduct(ctx, id); err == nil {
			return p, nil
		}
	}

	var product models.Product
	if err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&product); err != nil {
		return nil, notFoundOr(err, "product")
	}

	if s.cache != nil {
		if err := s.cache.CacheProduct(ctx, &product); err != nil {
			s.logger.Warn("product cache write failed", zap.String("id", id.Hex()), zap.Error(err))
		}
	}
	return &product, nil
}

func (s *ProductStore) FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Product, error) {
	cursor, err := s.coll.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, apperr.Wrap(apperr.KindUnavailable, "store error", err)
	}
	defer cursor.Close(ctx)

	var products []models.Product
	if err := cursor.All(ctx, &products); err != nil {
		return nil, apperr.Wrap(apperr.KindUnavailable, "store error", err)
	}
	return products, nil
}

func (s *ProductStore) Count(ctx context.Context) (int64, error) {
	n, err := s.coll.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, apperr.Wrap(apperr.KindUnavailable, "store error", err)
	}
	return n, nil
}

func (s *ProductStore) List(ctx context.Context, query catalog.ListQuery) ([]models.Product, error) {
	filter := bson.M{}
	if query.Category != "" {
		filter["category"] = query.Category
	}
	if query.Brand != "" {
		filter["brand"] = query.Brand
	}
	price := bson.M{}
	if query.PriceGTE != nil {
		price["$gte"] = *query.PriceGTE
	}
	if query.PriceGT != nil {
		price["$gt"] = *query.PriceGT
	}
	if query.PriceLTE != nil {
		price["$lte"] = *query.PriceLTE
	}
	if query.PriceLT != nil {
		price["$lt"] = *query.PriceLT
	}
	if len(price) > 0 {
		filter["price"] = price
	}

	opts := options.Find().SetSort(parseSort(query.Sort))
	if len(query.Fields) > 0 {
		projection := bson.D{}
		for _, field := range query.Fields {
			projection = append(projection, bson.E{Key: field, Value: 1})
		}
		opts.SetProjection(projection)
	}
	if query.Page > 0 && query.Limit > 0 {
		opts.SetSkip(int64((query.Page - 1) * query.Limit))
	}
	if query.Limit > 0 {
		opts.SetLimit(int64(query.Limit))
	}

	cursor, err := s.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindUnavailable, "store error", err)
	}
	defer cursor.Close(ctx)

	var products []models.Product
	if err := cursor.All(ctx, &products); err != nil {
		return nil, apperr.Wrap(apperr.KindUnavailable, "store error", err)
	}
	return products, nil
}

// parseSort turns a comma list like "-category,price" into a Mongo sort
// document. Default is newest first.
func parseSort(spec string) bson.D {
	if spec == "" {
		return bson.D{{Key: "createdAt", Value: -1}}
	}
	sort := bson.D{}
	for _, field := range strings.Split(spec, ",") {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}
		direction := 1
		if strings.HasPrefix(field, "-") {
			direction = -1
			field = field[1:]
		}
		sort = append(sort, bson.E{Key: field, Value: direction})
	}
	if len(sort) == 0 {
		return bson.D{{Key: "createdAt", Value: -1}}
	}
	return sort
}

func (s *ProductStore) Update(ctx context.Context, id primitive.ObjectID, product *models.Product) (*models.Product, error) {
	set := bson.M{"updatedAt": time.Now()}
	if product.Title != "" {
		set["title"] = product.Title
		set["slug"] = product.Slug
	}
	if product.Description != "" {
		set["description"] = product.Description
	}
	if product.Price != 0 {
		set["price"] = product.Price
	}
	if product.Category != "" {
		set["category"] = product.Category
	}
	if product.Brand != "" {
		set["brand"] = product.Brand
	}
	if product.Quantity != 0 {
		set["quantity"] = product.Quantity
	}
	if product.Colors != nil {
		set["color"] = product.Colors
	}
	if product.Images != nil {
		set["images"] = product.Images
	}

	var updated models.Product
	err := s.coll.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, returnUpdated()).Decode(&updated)
	if err != nil {
		return nil, notFoundOr(err, "product")
	}
	s.invalidate(ctx, id)
	return &updated, nil
}

func (s *ProductStore) Delete(ctx context.Context, id primitive.ObjectID) (*models.Product, error) {
	var deleted models.Product
	if err := s.coll.FindOneAndDelete(ctx, bson.M{"_id": id}).Decode(&deleted); err != nil {
		return nil, notFoundOr(err, "product")
	}
	s.invalidate(ctx, id)
	return &deleted, nil
}

func (s *ProductStore) UpdateRatings(ctx context.Context, id primitive.ObjectID, ratings []models.Rating, totalRating int) (*models.Product, error) {
	var updated models.Product
	err := s.coll.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"ratings": ratings, "totalRating": totalRating, "updatedAt": time.Now()}},
		returnUpdated(),
	).Decode(&updated)
	if err != nil {
		return nil, notFoundOr(err, "product")
	}
	s.invalidate(ctx, id)
	return &updated, nil
}

// AdjustInventory issues the settlement deltas as one unordered bulk write:
// each entry decrements quantity and increments sold by the line count.
// There is no cross-entry atomicity; a failed batch may have applied a
// prefix of the updates.
func (s *ProductStore) AdjustInventory(ctx context.Context, adjustments []checkout.InventoryAdjustment) error {
	if len(adjustments) == 0 {
		return nil
	}

	writes := make([]mongo.WriteModel, 0, len(adjustments))
	ids := make([]primitive.ObjectID, 0, len(adjustments))
	for _, adj := range adjustments {
		writes = append(writes, mongo.NewUpdateOneModel().
			SetFilter(bson.M{"_id": adj.ProductID}).
			SetUpdate(bson.M{"$inc": bson.M{"quantity": -adj.Count, "sold": adj.Count}}))
		ids = append(ids, adj.ProductID)
	}

	_, err := s.coll.BulkWrite(ctx, writes, options.BulkWrite().SetOrdered(false))
	if err != nil {
		return apperr.Wrap(apperr.KindUnavailable, "inventory bulk write failed", err)
	}
	s.invalidate(ctx, ids...)
	return nil
}

func (s *ProductStore) invalidate(ctx context.Context, ids ...primitive.ObjectID) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateProducts(ctx, ids...); err != nil {
		s.logger.Warn("product cache invalidation failed", zap.Int("count", len(ids)), zap.Error(err))
	}
}

// AngelaMos | 2026
// repository.go

package catalog

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/carterperez-dev/commerce-backend/internal/core"
)

type Repository interface {
	Create(ctx context.Context, product *Product) error
	GetByID(ctx context.Context, id string) (*Product, error)
	List(ctx context.Context, params ListProductsParams) ([]Product, int, error)
	Update(ctx context.Context, product *Product) error
	Delete(ctx context.Context, id string) error
}

type repository struct {
	coll *mongo.Collection
}

func NewRepository(db *mongo.Database) Repository {
	return &repository{coll: db.Collection("products")}
}

func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection("products").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "name_lc", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("create product indexes: %w", err)
	}

	return nil
}

func (r *repository) Create(ctx context.Context, product *Product) error {
	now := time.Now().UTC()
	product.NameLC = strings.ToLower(product.Name)
	product.CreatedAt = now
	product.UpdatedAt = now

	if _, err := r.coll.InsertOne(ctx, product); err != nil {
		if core.IsDuplicateKeyError(err) {
			return fmt.Errorf("create product: %w", core.ErrDuplicateKey)
		}
		return fmt.Errorf("create product: %w", err)
	}

	return nil
}

func (r *repository) GetByID(ctx context.Context, id string) (*Product, error) {
	var product Product
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&product)
	if core.IsNoDocuments(err) {
		return nil, fmt.Errorf("get product: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get product: %w", err)
	}

	return &product, nil
}

func (r *repository) List(
	ctx context.Context,
	params ListProductsParams,
) ([]Product, int, error) {
	params.Normalize()

	filter := bson.M{}
	if params.Search != "" {
		filter["name_lc"] = bson.M{
			"$regex": strings.ToLower(params.Search),
		}
	}

	total, err := r.coll.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("count products: %w", err)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip(int64(params.Offset())).
		SetLimit(int64(params.PageSize))

	cur, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("list products: %w", err)
	}
	defer cur.Close(ctx)

	var products []Product
	if err := cur.All(ctx, &products); err != nil {
		return nil, 0, fmt.Errorf("decode products: %w", err)
	}

	return products, int(total), nil
}

func (r *repository) Update(ctx context.Context, product *Product) error {
	now := time.Now().UTC()
	product.NameLC = strings.ToLower(product.Name)

	update := bson.M{"$set": bson.M{
		"name":        product.Name,
		"name_lc":     product.NameLC,
		"description": product.Description,
		"image_url":   product.ImageURL,
		"price":       product.Price,
		"stock":       product.Stock,
		"variants":    product.Variants,
		"updated_at":  now,
	}}

	res, err := r.coll.UpdateByID(ctx, product.ID, update)
	if err != nil {
		if core.IsDuplicateKeyError(err) {
			return fmt.Errorf("update product: %w", core.ErrDuplicateKey)
		}
		return fmt.Errorf("update product: %w", err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("update product: %w", core.ErrNotFound)
	}

	product.UpdatedAt = now
	return nil
}

func (r *repository) Delete(ctx context.Context, id string) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("delete product: %w", core.ErrNotFound)
	}

	return nil
}

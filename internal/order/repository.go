// AngelaMos | 2026
// repository.go

package order

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/carterperez-dev/commerce-backend/internal/core"
)

type Repository interface {
	Create(ctx context.Context, o *Order) error
	GetByID(ctx context.Context, id string) (*Order, error)
	FindByIdempotencyKey(
		ctx context.Context,
		accountID, key string,
	) (*Order, error)
	MarkPaid(ctx context.Context, id, accountID string) (*Order, error)
	ListByAccount(ctx context.Context, accountID string) ([]Order, error)
	List(ctx context.Context, params ListOrdersParams) ([]Order, int, error)
	CancelStale(ctx context.Context, olderThan time.Time) (int64, error)
}

type repository struct {
	coll *mongo.Collection
}

func NewRepository(db *mongo.Database) Repository {
	return &repository{coll: db.Collection("orders")}
}

func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection("orders").Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "idempotency_key", Value: 1}},
			Options: options.Index().SetUnique(true).SetSparse(true),
		},
		{
			Keys: bson.D{
				{Key: "account_id", Value: 1},
				{Key: "created_at", Value: -1},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("create order indexes: %w", err)
	}

	return nil
}

func (r *repository) Create(ctx context.Context, o *Order) error {
	now := time.Now().UTC()
	o.CreatedAt = now
	o.UpdatedAt = now

	if _, err := r.coll.InsertOne(ctx, o); err != nil {
		if core.IsDuplicateKeyError(err) {
			return fmt.Errorf("create order: %w", core.ErrDuplicateKey)
		}
		return fmt.Errorf("create order: %w", err)
	}

	return nil
}

func (r *repository) GetByID(ctx context.Context, id string) (*Order, error) {
	var o Order
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&o)
	if core.IsNoDocuments(err) {
		return nil, fmt.Errorf("get order: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get order: %w", err)
	}

	return &o, nil
}

func (r *repository) FindByIdempotencyKey(
	ctx context.Context,
	accountID, key string,
) (*Order, error) {
	var o Order
	filter := bson.M{"account_id": accountID, "idempotency_key": key}

	err := r.coll.FindOne(ctx, filter).Decode(&o)
	if core.IsNoDocuments(err) {
		return nil, fmt.Errorf("find order by key: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("find order by key: %w", err)
	}

	return &o, nil
}

// MarkPaid flips pending to paid in one conditional update scoped to the
// owning account. Of two concurrent payment confirmations exactly one
// matches; the loser gets ErrNotFound and the caller works out why.
func (r *repository) MarkPaid(
	ctx context.Context,
	id, accountID string,
) (*Order, error) {
	now := time.Now().UTC()

	filter := bson.M{
		"_id":        id,
		"account_id": accountID,
		"status":     StatusPending,
	}
	update := bson.M{"$set": bson.M{
		"status":     StatusPaid,
		"paid_at":    now,
		"updated_at": now,
	}}

	res := r.coll.FindOneAndUpdate(
		ctx,
		filter,
		update,
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	)

	var o Order
	if err := res.Decode(&o); err != nil {
		if core.IsNoDocuments(err) {
			return nil, fmt.Errorf("mark order paid: %w", core.ErrNotFound)
		}
		return nil, fmt.Errorf("mark order paid: %w", err)
	}

	return &o, nil
}

func (r *repository) ListByAccount(
	ctx context.Context,
	accountID string,
) ([]Order, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})

	cur, err := r.coll.Find(ctx, bson.M{"account_id": accountID}, opts)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer cur.Close(ctx)

	orders := []Order{}
	if err := cur.All(ctx, &orders); err != nil {
		return nil, fmt.Errorf("decode orders: %w", err)
	}

	return orders, nil
}

func (r *repository) List(
	ctx context.Context,
	params ListOrdersParams,
) ([]Order, int, error) {
	params.Normalize()

	filter := bson.M{}
	if params.Status != "" {
		filter["status"] = params.Status
	}

	total, err := r.coll.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("count orders: %w", err)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip(int64(params.Offset())).
		SetLimit(int64(params.PageSize))

	cur, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("list orders: %w", err)
	}
	defer cur.Close(ctx)

	var orders []Order
	if err := cur.All(ctx, &orders); err != nil {
		return nil, 0, fmt.Errorf("decode orders: %w", err)
	}

	return orders, int(total), nil
}

// CancelStale closes out pending orders past the retention window. The
// status filter means a paid order can never be touched here.
func (r *repository) CancelStale(
	ctx context.Context,
	olderThan time.Time,
) (int64, error) {
	res, err := r.coll.UpdateMany(ctx,
		bson.M{
			"status":     StatusPending,
			"created_at": bson.M{"$lt": olderThan},
		},
		bson.M{"$set": bson.M{
			"status":     StatusCancelled,
			"updated_at": time.Now().UTC(),
		}},
	)
	if err != nil {
		return 0, fmt.Errorf("cancel stale orders: %w", err)
	}

	return res.ModifiedCount, nil
}

// AngelaMos | 2026
// repository.go

package cart

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
	Get(ctx context.Context, accountID string) (*Cart, error)
	AddItem(ctx context.Context, accountID, productID string, quantity int) error
	SetItemQuantity(
		ctx context.Context,
		accountID, productID string,
		quantity int,
	) error
	RemoveItem(ctx context.Context, accountID, productID string) error
	Clear(ctx context.Context, accountID string) error
	DeleteStale(ctx context.Context, olderThan time.Time) (int64, error)
}

type repository struct {
	coll *mongo.Collection
}

func NewRepository(db *mongo.Database) Repository {
	return &repository{coll: db.Collection("carts")}
}

func (r *repository) Get(ctx context.Context, accountID string) (*Cart, error) {
	var c Cart
	err := r.coll.FindOne(ctx, bson.M{"_id": accountID}).Decode(&c)
	if core.IsNoDocuments(err) {
		return nil, fmt.Errorf("get cart: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get cart: %w", err)
	}

	return &c, nil
}

// AddItem merges quantity into an existing line or appends a new one. The
// merge is a positional $inc; the append is guarded on the line being absent,
// so two concurrent first-adds for the same product cannot each push a line.
// A guarded append that loses the race fails as a duplicate _id insert and
// retries the merge instead.
func (r *repository) AddItem(
	ctx context.Context,
	accountID, productID string,
	quantity int,
) error {
	now := time.Now().UTC()

	for attempt := 0; attempt < 2; attempt++ {
		res, err := r.coll.UpdateOne(ctx,
			bson.M{"_id": accountID, "items.product_id": productID},
			bson.M{
				"$inc": bson.M{"items.$.quantity": quantity},
				"$set": bson.M{"updated_at": now},
			},
		)
		if err != nil {
			return fmt.Errorf("merge cart item: %w", err)
		}
		if res.MatchedCount > 0 {
			return nil
		}

		_, err = r.coll.UpdateOne(ctx,
			bson.M{
				"_id":              accountID,
				"items.product_id": bson.M{"$ne": productID},
			},
			bson.M{
				"$push": bson.M{"items": CartItem{
					ProductID: productID,
					Quantity:  quantity,
				}},
				"$set":         bson.M{"updated_at": now},
				"$setOnInsert": bson.M{"created_at": now},
			},
			options.Update().SetUpsert(true),
		)
		if err == nil {
			return nil
		}
		if !core.IsDuplicateKeyError(err) {
			return fmt.Errorf("push cart item: %w", err)
		}
		// The cart exists but the $ne guard filtered it out, meaning the
		// line appeared between the two updates. Merge into it.
	}

	return fmt.Errorf("add cart item: %w", core.ErrConflict)
}

func (r *repository) SetItemQuantity(
	ctx context.Context,
	accountID, productID string,
	quantity int,
) error {
	if quantity <= 0 {
		return r.RemoveItem(ctx, accountID, productID)
	}

	res, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": accountID, "items.product_id": productID},
		bson.M{
			"$set": bson.M{
				"items.$.quantity": quantity,
				"updated_at":       time.Now().UTC(),
			},
		},
	)
	if err != nil {
		return fmt.Errorf("set cart item quantity: %w", err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("set cart item quantity: %w", core.ErrNotFound)
	}

	return nil
}

func (r *repository) RemoveItem(
	ctx context.Context,
	accountID, productID string,
) error {
	res, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": accountID},
		bson.M{
			"$pull": bson.M{"items": bson.M{"product_id": productID}},
			"$set":  bson.M{"updated_at": time.Now().UTC()},
		},
	)
	if err != nil {
		return fmt.Errorf("remove cart item: %w", err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("remove cart item: %w", core.ErrNotFound)
	}

	return nil
}

// Clear empties the item list but keeps the document, so the cart's history
// timestamps survive the cart-to-order transition.
func (r *repository) Clear(ctx context.Context, accountID string) error {
	_, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": accountID},
		bson.M{"$set": bson.M{
			"items":      []CartItem{},
			"updated_at": time.Now().UTC(),
		}},
	)
	if err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}

	return nil
}

func (r *repository) DeleteStale(
	ctx context.Context,
	olderThan time.Time,
) (int64, error) {
	res, err := r.coll.DeleteMany(ctx, bson.M{
		"updated_at": bson.M{"$lt": olderThan},
	})
	if err != nil {
		return 0, fmt.Errorf("delete stale carts: %w", err)
	}

	return res.DeletedCount, nil
}

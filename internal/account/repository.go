// AngelaMos | 2026
// repository.go

package account

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
	Create(ctx context.Context, acct *Account) error
	GetByID(ctx context.Context, id string) (*Account, error)
	GetByEmail(ctx context.Context, email string) (*Account, error)
	UpdateProfile(ctx context.Context, acct *Account) error
	UpdatePassword(ctx context.Context, id, passwordHash string) error
	SetVerificationToken(
		ctx context.Context,
		id, token string,
		expiresAt time.Time,
	) error
	ConsumeVerificationToken(
		ctx context.Context,
		token string,
	) (*Account, error)
	DeleteByEmail(ctx context.Context, email string) error
	List(ctx context.Context, params ListAccountsParams) ([]Account, int, error)
}

type repository struct {
	coll *mongo.Collection
}

func NewRepository(db *mongo.Database) Repository {
	return &repository{coll: db.Collection("accounts")}
}

// EnsureIndexes creates the unique email index and the sparse verification
// token index. Called once at startup.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection("accounts").Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email_lc", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "verify_token", Value: 1}},
			Options: options.Index().SetSparse(true),
		},
	})
	if err != nil {
		return fmt.Errorf("create account indexes: %w", err)
	}

	return nil
}

func (r *repository) Create(ctx context.Context, acct *Account) error {
	now := time.Now().UTC()
	acct.EmailLC = strings.ToLower(acct.Email)
	acct.CreatedAt = now
	acct.UpdatedAt = now

	if _, err := r.coll.InsertOne(ctx, acct); err != nil {
		if core.IsDuplicateKeyError(err) {
			return fmt.Errorf("create account: %w", core.ErrDuplicateKey)
		}
		return fmt.Errorf("create account: %w", err)
	}

	return nil
}

func (r *repository) GetByID(ctx context.Context, id string) (*Account, error) {
	var acct Account
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&acct)
	if core.IsNoDocuments(err) {
		return nil, fmt.Errorf("get account: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get account: %w", err)
	}

	return &acct, nil
}

func (r *repository) GetByEmail(
	ctx context.Context,
	email string,
) (*Account, error) {
	var acct Account
	filter := bson.M{"email_lc": strings.ToLower(email)}

	err := r.coll.FindOne(ctx, filter).Decode(&acct)
	if core.IsNoDocuments(err) {
		return nil, fmt.Errorf("get account by email: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get account by email: %w", err)
	}

	return &acct, nil
}

func (r *repository) UpdateProfile(ctx context.Context, acct *Account) error {
	now := time.Now().UTC()

	update := bson.M{"$set": bson.M{
		"first_name": acct.FirstName,
		"last_name":  acct.LastName,
		"phone":      acct.Phone,
		"address":    acct.Address,
		"updated_at": now,
	}}

	res, err := r.coll.UpdateByID(ctx, acct.ID, update)
	if err != nil {
		return fmt.Errorf("update profile: %w", err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("update profile: %w", core.ErrNotFound)
	}

	acct.UpdatedAt = now
	return nil
}

func (r *repository) UpdatePassword(
	ctx context.Context,
	id, passwordHash string,
) error {
	update := bson.M{"$set": bson.M{
		"password_hash": passwordHash,
		"updated_at":    time.Now().UTC(),
	}}

	res, err := r.coll.UpdateByID(ctx, id, update)
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("update password: %w", core.ErrNotFound)
	}

	return nil
}

// SetVerificationToken installs a fresh token and expiry, replacing whatever
// token was active. Only one verification token exists per account.
func (r *repository) SetVerificationToken(
	ctx context.Context,
	id, token string,
	expiresAt time.Time,
) error {
	update := bson.M{"$set": bson.M{
		"verify_token":      token,
		"verify_expires_at": expiresAt,
		"updated_at":        time.Now().UTC(),
	}}

	res, err := r.coll.UpdateByID(ctx, id, update)
	if err != nil {
		return fmt.Errorf("set verification token: %w", err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("set verification token: %w", core.ErrNotFound)
	}

	return nil
}

// ConsumeVerificationToken flips the account to verified and clears the token
// in one conditional update. The filter matches only an unexpired token, so of
// two concurrent attempts exactly one sees the document; the other gets
// ErrNotFound.
func (r *repository) ConsumeVerificationToken(
	ctx context.Context,
	token string,
) (*Account, error) {
	now := time.Now().UTC()

	filter := bson.M{
		"verify_token":      token,
		"verify_expires_at": bson.M{"$gt": now},
	}
	update := bson.M{
		"$set":   bson.M{"verified": true, "updated_at": now},
		"$unset": bson.M{"verify_token": "", "verify_expires_at": ""},
	}

	res := r.coll.FindOneAndUpdate(
		ctx,
		filter,
		update,
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	)

	var acct Account
	if err := res.Decode(&acct); err != nil {
		if core.IsNoDocuments(err) {
			return nil, fmt.Errorf(
				"consume verification token: %w",
				core.ErrNotFound,
			)
		}
		return nil, fmt.Errorf("consume verification token: %w", err)
	}

	return &acct, nil
}

func (r *repository) DeleteByEmail(ctx context.Context, email string) error {
	filter := bson.M{"email_lc": strings.ToLower(email)}

	res, err := r.coll.DeleteOne(ctx, filter)
	if err != nil {
		return fmt.Errorf("delete account: %w", err)
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("delete account: %w", core.ErrNotFound)
	}

	return nil
}

func (r *repository) List(
	ctx context.Context,
	params ListAccountsParams,
) ([]Account, int, error) {
	params.Normalize()

	filter := bson.M{}
	if params.Role != "" {
		filter["role"] = params.Role
	}

	total, err := r.coll.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("count accounts: %w", err)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip(int64(params.Offset())).
		SetLimit(int64(params.PageSize))

	cur, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("list accounts: %w", err)
	}
	defer cur.Close(ctx)

	var accounts []Account
	if err := cur.All(ctx, &accounts); err != nil {
		return nil, 0, fmt.Errorf("decode accounts: %w", err)
	}

	return accounts, int(total), nil
}

// AngelaMos | 2026
// entity.go

package cart

import (
	"time"
)

// Cart is keyed by account ID: one cart per account, created lazily on the
// first add. Items hold quantities only; prices are read live from the
// catalog so the cart never shows a stale price.
type Cart struct {
	ID        string     `bson:"_id"`
	Items     []CartItem `bson:"items"`
	CreatedAt time.Time  `bson:"created_at"`
	UpdatedAt time.Time  `bson:"updated_at"`
}

type CartItem struct {
	ProductID string `bson:"product_id"`
	Quantity  int    `bson:"quantity"`
}

func (c *Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

func (c *Cart) Quantity(productID string) int {
	for _, item := range c.Items {
		if item.ProductID == productID {
			return item.Quantity
		}
	}
	return 0
}

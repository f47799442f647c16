// AngelaMos | 2026
// entity.go

package catalog

import (
	"time"
)

// Variant is one sellable variation of a product. Stock is tracked per
// variant; the product-level figure is the sum.
type Variant struct {
	SKU   string `bson:"sku"   json:"sku"`
	Name  string `bson:"name"  json:"name"`
	Stock int    `bson:"stock" json:"stock"`
}

type Product struct {
	ID          string    `bson:"_id"         json:"id"`
	Name        string    `bson:"name"        json:"name"`
	NameLC      string    `bson:"name_lc"     json:"-"`
	Description string    `bson:"description" json:"description"`
	ImageURL    string    `bson:"image_url,omitempty" json:"image_url,omitempty"`
	Price       float64   `bson:"price"       json:"price"`
	Stock       int       `bson:"stock"       json:"stock"`
	Variants    []Variant `bson:"variants,omitempty" json:"variants,omitempty"`
	CreatedAt   time.Time `bson:"created_at"  json:"created_at"`
	UpdatedAt   time.Time `bson:"updated_at"  json:"updated_at"`
}

// TotalStock sums variant stock when variants exist, otherwise falls back to
// the product-level count.
func (p *Product) TotalStock() int {
	if len(p.Variants) == 0 {
		return p.Stock
	}

	total := 0
	for _, v := range p.Variants {
		total += v.Stock
	}
	return total
}

func (p *Product) InStock() bool {
	return p.TotalStock() > 0
}

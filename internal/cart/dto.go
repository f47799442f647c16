// AngelaMos | 2026
// dto.go

package cart

import (
	"time"
)

type AddItemRequest struct {
	ProductID string `json:"product_id" validate:"required"`
	Quantity  int    `json:"quantity"   validate:"required,gt=0"`
}

type UpdateItemRequest struct {
	Quantity int `json:"quantity" validate:"min=0"`
}

type ItemResponse struct {
	ProductID string  `json:"product_id"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"quantity"`
	Subtotal  float64 `json:"subtotal"`
}

type CartResponse struct {
	Items     []ItemResponse `json:"items"`
	Total     float64        `json:"total"`
	UpdatedAt time.Time      `json:"updated_at"`
}

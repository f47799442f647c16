// AngelaMos | 2026
// dto.go

package catalog

import (
	"time"
)

type CreateProductRequest struct {
	Name        string         `json:"name"        validate:"required,min=1,max=200"`
	Description string         `json:"description" validate:"omitempty,max=2000"`
	ImageURL    string         `json:"image_url"   validate:"omitempty,url,max=500"`
	Price       float64        `json:"price"       validate:"required,gt=0"`
	Stock       int            `json:"stock"       validate:"omitempty,min=0"`
	Variants    []VariantInput `json:"variants"    validate:"omitempty,dive"`
}

type UpdateProductRequest struct {
	Name        *string        `json:"name,omitempty"        validate:"omitempty,min=1,max=200"`
	Description *string        `json:"description,omitempty" validate:"omitempty,max=2000"`
	ImageURL    *string        `json:"image_url,omitempty"   validate:"omitempty,url,max=500"`
	Price       *float64       `json:"price,omitempty"       validate:"omitempty,gt=0"`
	Stock       *int           `json:"stock,omitempty"       validate:"omitempty,min=0"`
	Variants    []VariantInput `json:"variants,omitempty"    validate:"omitempty,dive"`
}

type VariantInput struct {
	SKU   string `json:"sku"   validate:"required,min=1,max=64"`
	Name  string `json:"name"  validate:"required,min=1,max=200"`
	Stock int    `json:"stock" validate:"min=0"`
}

type ProductResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	ImageURL    string    `json:"image_url,omitempty"`
	Price       float64   `json:"price"`
	Stock       int       `json:"stock"`
	InStock     bool      `json:"in_stock"`
	Variants    []Variant `json:"variants,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type ListProductsParams struct {
	Page     int    `json:"page"`
	PageSize int    `json:"page_size"`
	Search   string `json:"search"`
}

func (p *ListProductsParams) Normalize() {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize < 1 {
		p.PageSize = 20
	}
	if p.PageSize > 100 {
		p.PageSize = 100
	}
}

func (p *ListProductsParams) Offset() int {
	return (p.Page - 1) * p.PageSize
}

func ToProductResponse(p *Product) ProductResponse {
	return ProductResponse{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		ImageURL:    p.ImageURL,
		Price:       p.Price,
		Stock:       p.TotalStock(),
		InStock:     p.InStock(),
		Variants:    p.Variants,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

func ToProductResponseList(products []Product) []ProductResponse {
	responses := make([]ProductResponse, 0, len(products))
	for _, p := range products {
		responses = append(responses, ToProductResponse(&p))
	}
	return responses
}

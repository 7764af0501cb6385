// Package product manages the product collection.
package product

import (
	"github.com/abgdnv/flatshop/pkg/money"
)

// Product is a stored catalog entry.
type Product struct {
	ID          string       `json:"id"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Price       money.Amount `json:"price"`
	Thumbnail   string       `json:"thumbnail"`
	Code        string       `json:"code"`
	Stock       float64      `json:"stock"`
	Category    string       `json:"category"`
	Thumbnails  []string     `json:"thumbnails"`
}

// ProductInput holds the fields accepted when adding a product.
// Every field must be present and non-zero; an empty thumbnails array counts as present.
type ProductInput struct {
	Title       string       `json:"title"       validate:"required"`
	Description string       `json:"description" validate:"required"`
	Price       money.Amount `json:"price"       validate:"required"`
	Thumbnail   string       `json:"thumbnail"   validate:"required"`
	Code        string       `json:"code"        validate:"required"`
	Stock       float64      `json:"stock"       validate:"required"`
	Category    string       `json:"category"    validate:"required"`
	Thumbnails  []string     `json:"thumbnails"  validate:"required"`
}

// ProductPatch holds the fields of a merge-update. Nil fields are left untouched.
// It has no ID field, so identifiers never change.
type ProductPatch struct {
	Title       *string       `json:"title,omitempty"`
	Description *string       `json:"description,omitempty"`
	Price       *money.Amount `json:"price,omitempty"`
	Thumbnail   *string       `json:"thumbnail,omitempty"`
	Code        *string       `json:"code,omitempty"`
	Stock       *float64      `json:"stock,omitempty"`
	Category    *string       `json:"category,omitempty"`
	Thumbnails  *[]string     `json:"thumbnails,omitempty"`
}

func newProduct(id string, in ProductInput) Product {
	return Product{
		ID:          id,
		Title:       in.Title,
		Description: in.Description,
		Price:       in.Price,
		Thumbnail:   in.Thumbnail,
		Code:        in.Code,
		Stock:       in.Stock,
		Category:    in.Category,
		Thumbnails:  in.Thumbnails,
	}
}

// apply returns p with the patch merged in.
func (patch ProductPatch) apply(p Product) Product {
	if patch.Title != nil {
		p.Title = *patch.Title
	}
	if patch.Description != nil {
		p.Description = *patch.Description
	}
	if patch.Price != nil {
		p.Price = *patch.Price
	}
	if patch.Thumbnail != nil {
		p.Thumbnail = *patch.Thumbnail
	}
	if patch.Code != nil {
		p.Code = *patch.Code
	}
	if patch.Stock != nil {
		p.Stock = *patch.Stock
	}
	if patch.Category != nil {
		p.Category = *patch.Category
	}
	if patch.Thumbnails != nil {
		p.Thumbnails = *patch.Thumbnails
	}
	return p
}

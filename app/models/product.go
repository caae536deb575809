package models

import (
	"gorm.io/gorm"

	"github.com/ritahmida/boutique/pkg/collection"
)

// Category is the product category enum.
type Category string

const (
	CategoryJumpsuit Category = "jumpsuit"
	CategoryRobe     Category = "robe"
	CategoryJupe     Category = "jupe"
)

// Categories lists every valid category value.
var Categories = []Category{CategoryJumpsuit, CategoryRobe, CategoryJupe}

// Valid reports whether c is a known category.
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// MediaType distinguishes image from video links.
type MediaType string

const (
	MediaImage MediaType = "image"
	MediaVideo MediaType = "video"
)

// Product is a catalog item. Stock is held per variant, never on the
// product itself.
type Product struct {
	gorm.Model
	Name        string      `gorm:"size:255;not null;index" json:"name"`
	Description string      `gorm:"type:text"               json:"description"`
	Category    Category    `gorm:"size:50;not null;index"  json:"category"`
	Price       float64     `gorm:"not null;default:0"      json:"price"`
	SalePrice   *float64    `json:"sale_price,omitempty"`
	IsNew       bool        `gorm:"default:false"           json:"is_new"`
	Media       []MediaLink `gorm:"constraint:OnDelete:CASCADE" json:"media"`
	Variants    []Variant   `gorm:"constraint:OnDelete:CASCADE" json:"variants"`
}

// MediaLink is one entry in a product's ordered media list.
type MediaLink struct {
	gorm.Model
	ProductID uint      `gorm:"not null;index"     json:"product_id"`
	URL       string    `gorm:"size:2048;not null" json:"url"`
	Type      MediaType `gorm:"size:20;not null"   json:"type"`
	Position  int       `gorm:"not null;default:0" json:"position"`
}

// Variant is a sellable (size, color) pair with its own stock count.
// A product never holds two variants with the same (size, color), and a
// variant whose quantity reaches zero is deleted rather than kept as a
// zero-stock row.
type Variant struct {
	gorm.Model
	ProductID uint   `gorm:"not null;index;uniqueIndex:idx_variant_size_color" json:"product_id"`
	Size      string `gorm:"size:50;not null;uniqueIndex:idx_variant_size_color" json:"size"`
	Color     string `gorm:"size:50;not null;uniqueIndex:idx_variant_size_color" json:"color"`
	Quantity  int    `gorm:"not null;default:0" json:"quantity"`
}

// FindVariant returns the variant matching (size, color), or nil.
func (p *Product) FindVariant(size, color string) *Variant {
	for i := range p.Variants {
		if p.Variants[i].Size == size && p.Variants[i].Color == color {
			return &p.Variants[i]
		}
	}
	return nil
}

// Colors returns the distinct colors across the product's variants,
// in first-seen order. Derived, never stored.
func (p *Product) Colors() []string {
	return collection.Unique(collection.Map(p.Variants, func(v Variant) string {
		return v.Color
	}))
}

// Sizes returns the distinct sizes across the product's variants,
// in first-seen order. Derived, never stored.
func (p *Product) Sizes() []string {
	return collection.Unique(collection.Map(p.Variants, func(v Variant) string {
		return v.Size
	}))
}

// InStock reports whether any variant has stock left.
func (p *Product) InStock() bool {
	return collection.Contains(p.Variants, func(v Variant) bool {
		return v.Quantity > 0
	})
}

package controllers

import (
	"github.com/ritahmida/boutique/app/models"
	"github.com/ritahmida/boutique/pkg/resource"
)

// catalogCard is the storefront listing shape: one cover image plus the
// derived color/size/stock attributes, without the full variant rows.
type catalogCard struct{ resource.Base }

func (catalogCard) ToArray(v interface{}) resource.Map {
	p, ok := v.(models.Product)
	if !ok {
		return resource.Map{}
	}

	cover := ""
	if len(p.Media) > 0 {
		cover = p.Media[0].URL
	}

	return resource.Map{
		"id":         p.ID,
		"name":       p.Name,
		"category":   p.Category,
		"price":      p.Price,
		"sale_price": p.SalePrice,
		"is_new":     p.IsNew,
		"cover":      cover,
		"colors":     p.Colors(),
		"sizes":      p.Sizes(),
		"in_stock":   p.InStock(),
	}
}

package seeders

import (
	"gorm.io/gorm"

	"github.com/ritahmida/boutique/app/models"
)

func init() {
	Register("catalog", SeedCatalog)
}

func fl(v float64) *float64 { return &v }

// SeedCatalog inserts a small demo catalog. Idempotent: it skips seeding
// when any product already exists.
func SeedCatalog(db *gorm.DB) error {
	var count int64
	if err := db.Model(&models.Product{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	products := []models.Product{
		{
			Name:        "Robe Soirée Satin",
			Description: "Robe longue en satin, coupe fluide.",
			Category:    models.CategoryRobe,
			Price:       120,
			IsNew:       true,
			Media: []models.MediaLink{
				{URL: "https://cdn.example.com/seed/robe-satin-1.jpg", Type: models.MediaImage, Position: 0},
				{URL: "https://cdn.example.com/seed/robe-satin-2.jpg", Type: models.MediaImage, Position: 1},
			},
			Variants: []models.Variant{
				{Size: "S", Color: "noir", Quantity: 4},
				{Size: "M", Color: "noir", Quantity: 6},
				{Size: "M", Color: "bordeaux", Quantity: 3},
				{Size: "L", Color: "bordeaux", Quantity: 2},
			},
		},
		{
			Name:        "Jumpsuit Lin Été",
			Description: "Combinaison en lin, manches courtes.",
			Category:    models.CategoryJumpsuit,
			Price:       95,
			SalePrice:   fl(79),
			Media: []models.MediaLink{
				{URL: "https://cdn.example.com/seed/jumpsuit-lin-1.jpg", Type: models.MediaImage, Position: 0},
				{URL: "https://cdn.example.com/seed/jumpsuit-lin.mp4", Type: models.MediaVideo, Position: 1},
			},
			Variants: []models.Variant{
				{Size: "S", Color: "beige", Quantity: 5},
				{Size: "M", Color: "beige", Quantity: 5},
				{Size: "L", Color: "vert", Quantity: 1},
			},
		},
		{
			Name:        "Jupe Plissée Midi",
			Description: "Jupe midi plissée, taille haute.",
			Category:    models.CategoryJupe,
			Price:       65,
			Media: []models.MediaLink{
				{URL: "https://cdn.example.com/seed/jupe-plissee-1.jpg", Type: models.MediaImage, Position: 0},
			},
			Variants: []models.Variant{
				{Size: "S", Color: "camel", Quantity: 8},
				{Size: "M", Color: "camel", Quantity: 7},
			},
		},
	}

	for i := range products {
		if err := db.Create(&products[i]).Error; err != nil {
			return err
		}
	}
	return nil
}

package migrations

import (
	"github.com/ritahmida/boutique/app/models"
	"github.com/ritahmida/boutique/pkg/migration"
	"gorm.io/gorm"
)

func init() {
	migration.Register("20260201000000_create_products_table", &CreateProductsTable{})
	migration.Register("20260201000001_create_media_links_table", &CreateMediaLinksTable{})
	migration.Register("20260201000002_create_variants_table", &CreateVariantsTable{})
	migration.Register("20260201000003_create_orders_table", &CreateOrdersTable{})
}

// -------- 0001: products --------

type CreateProductsTable struct{}

func (m *CreateProductsTable) Up(db *gorm.DB) error {
	return db.AutoMigrate(&models.Product{})
}

func (m *CreateProductsTable) Down(db *gorm.DB) error {
	return db.Migrator().DropTable("products")
}

// -------- 0002: media links --------

type CreateMediaLinksTable struct{}

func (m *CreateMediaLinksTable) Up(db *gorm.DB) error {
	return db.AutoMigrate(&models.MediaLink{})
}

func (m *CreateMediaLinksTable) Down(db *gorm.DB) error {
	return db.Migrator().DropTable("media_links")
}

// -------- 0003: variants --------

type CreateVariantsTable struct{}

func (m *CreateVariantsTable) Up(db *gorm.DB) error {
	return db.AutoMigrate(&models.Variant{})
}

func (m *CreateVariantsTable) Down(db *gorm.DB) error {
	return db.Migrator().DropTable("variants")
}

// -------- 0004: orders --------

type CreateOrdersTable struct{}

func (m *CreateOrdersTable) Up(db *gorm.DB) error {
	return db.AutoMigrate(&models.Order{})
}

func (m *CreateOrdersTable) Down(db *gorm.DB) error {
	return db.Migrator().DropTable("orders")
}

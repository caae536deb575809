package repositories

import (
	"errors"

	"gorm.io/gorm"

	"github.com/ritahmida/boutique/app/models"
)

// ErrProductNotFound is returned when no product exists for the given id.
var ErrProductNotFound = errors.New("product not found")

// ProductRepository handles database operations for Product and its
// variants. Construct one per unit of work: pass the request-scoped
// transaction handle so every write joins the caller's transaction.
type ProductRepository struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

// WithTx returns a copy of the repository bound to tx.
func (r *ProductRepository) WithTx(tx *gorm.DB) *ProductRepository {
	return &ProductRepository{db: tx}
}

// FindByID loads a product with its variants and media.
func (r *ProductRepository) FindByID(id uint) (models.Product, error) {
	var product models.Product
	err := r.db.
		Preload("Variants").
		Preload("Media", func(db *gorm.DB) *gorm.DB { return db.Order("position asc") }).
		First(&product, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return product, ErrProductNotFound
	}
	return product, err
}

// All returns every product with variants and media, newest first.
func (r *ProductRepository) All() ([]models.Product, error) {
	var products []models.Product
	err := r.db.
		Preload("Variants").
		Preload("Media", func(db *gorm.DB) *gorm.DB { return db.Order("position asc") }).
		Order("created_at desc").
		Find(&products).Error
	return products, err
}

// Paged returns one catalog page, newest first, optionally filtered by
// category. The total counts every matching product, not just the page.
func (r *ProductRepository) Paged(category string, offset, limit int) ([]models.Product, int64, error) {
	var total int64
	count := r.db.Model(&models.Product{})
	if category != "" {
		count = count.Where("category = ?", category)
	}
	if err := count.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	q := r.db.
		Preload("Variants").
		Preload("Media", func(db *gorm.DB) *gorm.DB { return db.Order("position asc") }).
		Order("created_at desc").
		Offset(offset).
		Limit(limit)
	if category != "" {
		q = q.Where("category = ?", category)
	}

	var products []models.Product
	err := q.Find(&products).Error
	return products, total, err
}

// Create persists a new product together with its variants and media.
func (r *ProductRepository) Create(product *models.Product) error {
	return r.db.Create(product).Error
}

// Save persists changes to product's own columns.
func (r *ProductRepository) Save(product *models.Product) error {
	return r.db.Save(product).Error
}

// Delete soft-deletes a product and permanently removes its variants and
// media links, so they cannot resurface in stock reports or storefront
// payloads. Orders referencing the product are left in place.
func (r *ProductRepository) Delete(id uint) error {
	res := r.db.Delete(&models.Product{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrProductNotFound
	}

	if err := r.db.Unscoped().Where("product_id = ?", id).Delete(&models.Variant{}).Error; err != nil {
		return err
	}
	return r.db.Unscoped().Where("product_id = ?", id).Delete(&models.MediaLink{}).Error
}

// ── Variants ─────────────────────────────────────────────────────────────────

// FindVariant loads the variant row for (productID, size, color).
func (r *ProductRepository) FindVariant(productID uint, size, color string) (models.Variant, error) {
	var variant models.Variant
	err := r.db.
		Where("product_id = ? AND size = ? AND color = ?", productID, size, color).
		First(&variant).Error
	return variant, err
}

// SaveVariant updates a variant row in place.
func (r *ProductRepository) SaveVariant(variant *models.Variant) error {
	return r.db.Save(variant).Error
}

// DeleteVariant removes a variant row permanently (not a soft delete):
// zero-quantity variants must not linger and block re-creation through the
// (product_id, size, color) unique index.
func (r *ProductRepository) DeleteVariant(variant *models.Variant) error {
	return r.db.Unscoped().Delete(variant).Error
}

// ReplaceVariants swaps a product's whole variant list.
func (r *ProductRepository) ReplaceVariants(productID uint, variants []models.Variant) error {
	if err := r.db.Unscoped().
		Where("product_id = ?", productID).
		Delete(&models.Variant{}).Error; err != nil {
		return err
	}
	for i := range variants {
		variants[i].ID = 0
		variants[i].ProductID = productID
	}
	if len(variants) == 0 {
		return nil
	}
	return r.db.Create(&variants).Error
}

// ── Media ────────────────────────────────────────────────────────────────────

// AddMedia appends a media link at the end of the product's list.
func (r *ProductRepository) AddMedia(link *models.MediaLink) error {
	var maxPos struct{ Max int }
	if err := r.db.Model(&models.MediaLink{}).
		Select("COALESCE(MAX(position), -1) as max").
		Where("product_id = ?", link.ProductID).
		Scan(&maxPos).Error; err != nil {
		return err
	}
	link.Position = maxPos.Max + 1
	return r.db.Create(link).Error
}

// ReorderMedia rewrites positions to match the given media link id order.
// Unknown ids are ignored.
func (r *ProductRepository) ReorderMedia(productID uint, orderedIDs []uint) error {
	for pos, id := range orderedIDs {
		if err := r.db.Model(&models.MediaLink{}).
			Where("id = ? AND product_id = ?", id, productID).
			Update("position", pos).Error; err != nil {
			return err
		}
	}
	return nil
}

package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/ritahmida/boutique/app/models"
	"github.com/ritahmida/boutique/app/repositories"
	"github.com/ritahmida/boutique/pkg/cache"
	"github.com/ritahmida/boutique/pkg/metrics"
)

var (
	// ErrVariantNotFound is returned when no (size, color) variant exists on
	// the product, including when it existed but was purged at zero stock.
	ErrVariantNotFound = errors.New("variant not found")

	// ErrInsufficientStock is returned when an adjustment would push a
	// variant's quantity below zero.
	ErrInsufficientStock = errors.New("insufficient stock")

	// ErrInvalidVariant is returned by ReplaceVariants for malformed entries.
	ErrInvalidVariant = errors.New("invalid variant")
)

const (
	productListCacheKey = "boutique:products"
	productListCacheTTL = 5 * time.Minute
)

// AdjustVariantQuantity applies a signed stock delta to the (size, color)
// variant of a product, on the given transaction handle. The caller owns
// the transaction; this function never commits or rolls back.
//
// Rules:
//   - the variant must exist (ErrVariantNotFound otherwise);
//   - the new quantity must not go negative (ErrInsufficientStock otherwise);
//   - a quantity of exactly zero deletes the variant row instead of
//     keeping a zero-stock entry.
func AdjustVariantQuantity(tx *gorm.DB, productID uint, size, color string, delta int) error {
	repo := repositories.NewProductRepository(tx)

	variant, err := repo.FindVariant(productID, size, color)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: %s/%s on product %d", ErrVariantNotFound, size, color, productID)
		}
		return fmt.Errorf("load variant: %w", err)
	}

	next := variant.Quantity + delta
	if next < 0 {
		return fmt.Errorf("%w: %s/%s has %d, requested %d", ErrInsufficientStock, size, color, variant.Quantity, -delta)
	}

	if next == 0 {
		if err := repo.DeleteVariant(&variant); err != nil {
			return fmt.Errorf("purge empty variant: %w", err)
		}
	} else {
		variant.Quantity = next
		if err := repo.SaveVariant(&variant); err != nil {
			return fmt.Errorf("save variant: %w", err)
		}
	}

	metrics.StockAdjustments.WithLabelValues(direction(delta)).Inc()
	return nil
}

func direction(delta int) string {
	if delta < 0 {
		return "consume"
	}
	return "restock"
}

// ProductService implements the admin catalog operations. Stock-coupled
// order operations live in OrderService; both go through
// AdjustVariantQuantity for every quantity change.
type ProductService struct {
	db *gorm.DB
}

func NewProductService(db *gorm.DB) *ProductService {
	return &ProductService{db: db}
}

// List returns the whole catalog, served from cache when possible.
func (s *ProductService) List() ([]models.Product, error) {
	var products []models.Product
	if cache.Get(productListCacheKey, &products) {
		return products, nil
	}

	products, err := repositories.NewProductRepository(s.db).All()
	if err != nil {
		return nil, err
	}

	_ = cache.Set(productListCacheKey, products, productListCacheTTL)
	return products, nil
}

// Paginate returns one catalog page plus the total match count. Pages are
// 1-based; out-of-range pages return an empty slice, not an error.
func (s *ProductService) Paginate(category string, page, perPage int) ([]models.Product, int64, error) {
	if page < 1 {
		page = 1
	}
	return repositories.NewProductRepository(s.db).Paged(category, (page-1)*perPage, perPage)
}

// Get loads one product with variants and media.
func (s *ProductService) Get(id uint) (models.Product, error) {
	return repositories.NewProductRepository(s.db).FindByID(id)
}

// Create validates and persists a new product with its variants.
func (s *ProductService) Create(product *models.Product) error {
	if err := validateVariants(product.Variants); err != nil {
		return err
	}

	if err := repositories.NewProductRepository(s.db).Create(product); err != nil {
		return err
	}

	s.invalidate()
	return nil
}

// Update persists changes to a product's own columns (not variants).
func (s *ProductService) Update(product *models.Product) error {
	if err := repositories.NewProductRepository(s.db).Save(product); err != nil {
		return err
	}
	s.invalidate()
	return nil
}

// Delete removes a product together with its variants and media links.
// There is no cascade protection for orders: existing orders keep their
// product id and render without a product.
func (s *ProductService) Delete(id uint) error {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		return repositories.NewProductRepository(tx).Delete(id)
	})
	if err != nil {
		return err
	}
	s.invalidate()
	return nil
}

// ReplaceVariants overwrites a product's variant list wholesale. This is
// the admin bulk edit: no stock-delta semantics, no order reconciliation.
func (s *ProductService) ReplaceVariants(productID uint, variants []models.Variant) error {
	if err := validateVariants(variants); err != nil {
		return err
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		repo := repositories.NewProductRepository(tx)
		if _, err := repo.FindByID(productID); err != nil {
			return err
		}
		return repo.ReplaceVariants(productID, variants)
	})
	if err != nil {
		return err
	}

	s.invalidate()
	return nil
}

// AddMedia appends a media link to the product's ordered list.
func (s *ProductService) AddMedia(link *models.MediaLink) error {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		repo := repositories.NewProductRepository(tx)
		if _, err := repo.FindByID(link.ProductID); err != nil {
			return err
		}
		return repo.AddMedia(link)
	})
	if err != nil {
		return err
	}

	s.invalidate()
	return nil
}

// ReorderMedia rewrites the media list positions from a drag-and-drop
// ordering of media link ids.
func (s *ProductService) ReorderMedia(productID uint, orderedIDs []uint) error {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		repo := repositories.NewProductRepository(tx)
		if _, err := repo.FindByID(productID); err != nil {
			return err
		}
		return repo.ReorderMedia(productID, orderedIDs)
	})
	if err != nil {
		return err
	}

	s.invalidate()
	return nil
}

// LowStock returns every variant of a live product at or below the
// threshold. Used by the daily digest.
func (s *ProductService) LowStock(threshold int) ([]models.Variant, error) {
	var variants []models.Variant
	err := s.db.
		Where("quantity <= ?", threshold).
		Where("product_id IN (?)", s.db.Model(&models.Product{}).Select("id")).
		Find(&variants).Error
	return variants, err
}

func (s *ProductService) invalidate() {
	_ = cache.Del(productListCacheKey)
}

// validateVariants enforces the bulk-edit constraints: non-empty size and
// color, non-negative quantity, unique (size, color) pairs.
func validateVariants(variants []models.Variant) error {
	seen := make(map[string]struct{}, len(variants))
	for i, v := range variants {
		if strings.TrimSpace(v.Size) == "" || strings.TrimSpace(v.Color) == "" {
			return fmt.Errorf("%w: entry %d has empty size or color", ErrInvalidVariant, i)
		}
		if v.Quantity < 0 {
			return fmt.Errorf("%w: entry %d has negative quantity", ErrInvalidVariant, i)
		}
		key := v.Size + "\x00" + v.Color
		if _, dup := seen[key]; dup {
			return fmt.Errorf("%w: duplicate %s/%s", ErrInvalidVariant, v.Size, v.Color)
		}
		seen[key] = struct{}{}
	}
	return nil
}

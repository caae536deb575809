package repositories

import (
	"errors"

	"gorm.io/gorm"

	"github.com/ritahmida/boutique/app/models"
)

// ErrOrderNotFound is returned when no order exists for the given id.
var ErrOrderNotFound = errors.New("order not found")

// OrderRepository handles database operations for Order.
type OrderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

// WithTx returns a copy of the repository bound to tx.
func (r *OrderRepository) WithTx(tx *gorm.DB) *OrderRepository {
	return &OrderRepository{db: tx}
}

// FindByID loads an order. The product reference may be nil when the
// product has since been deleted.
func (r *OrderRepository) FindByID(id uint) (models.Order, error) {
	var order models.Order
	err := r.db.
		Preload("Product").
		Preload("Product.Variants").
		First(&order, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return order, ErrOrderNotFound
	}
	return order, err
}

// All returns every order with its product populated, newest first.
func (r *OrderRepository) All() ([]models.Order, error) {
	var orders []models.Order
	err := r.db.
		Preload("Product").
		Order("created_at desc").
		Find(&orders).Error
	return orders, err
}

// Create inserts a new order row.
func (r *OrderRepository) Create(order *models.Order) error {
	return r.db.Create(order).Error
}

// Save persists changes to an existing order.
func (r *OrderRepository) Save(order *models.Order) error {
	return r.db.Save(order).Error
}

// Delete removes the order row.
func (r *OrderRepository) Delete(id uint) error {
	res := r.db.Delete(&models.Order{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrOrderNotFound
	}
	return nil
}

// CountByStatus returns the number of orders per status, for the admin
// dashboard summary.
func (r *OrderRepository) CountByStatus() (map[models.Status]int64, error) {
	type row struct {
		Status models.Status
		N      int64
	}
	var rows []row
	err := r.db.Model(&models.Order{}).
		Select("status, COUNT(*) as n").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	out := make(map[models.Status]int64, len(rows))
	for _, rw := range rows {
		out[rw.Status] = rw.N
	}
	return out, nil
}

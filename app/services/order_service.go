package services

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/ritahmida/boutique/app/jobs"
	"github.com/ritahmida/boutique/app/models"
	"github.com/ritahmida/boutique/app/repositories"
	"github.com/ritahmida/boutique/pkg/event"
	"github.com/ritahmida/boutique/pkg/logger"
	"github.com/ritahmida/boutique/pkg/metrics"
	"github.com/ritahmida/boutique/pkg/queue"
)

// OrderCreated is the event fired after an order commits. Payload: models.Order.
const OrderCreated = "order.created"

// CreateOrderInput carries everything needed to place an order.
type CreateOrderInput struct {
	ProductID   uint                  `json:"product_id" validate:"required"`
	Color       string                `json:"color"      validate:"required"`
	Size        string                `json:"size"       validate:"required"`
	FullName    string                `json:"full_name"  validate:"required,min=2,max=255"`
	PhoneNumber string                `json:"phone_number" validate:"required,min=8,max=20"`
	State       string                `json:"state"      validate:"required"`
	Region      string                `json:"region"     validate:"nullable,max=255"`
	Delivery    models.DeliveryMethod `json:"delivery"   validate:"required,in=home,center"`
	Status      models.Status         `json:"status"     validate:"nullable,in=waiting,processing,shipped,delivered,canceled"`
}

// OrderPatch is the typed partial update for an order. Nil fields are left
// untouched. StatusNumber follows the dashboard's numeric contract
// (1=waiting, 2=delivering, 3=delivered, 4=canceled).
type OrderPatch struct {
	StatusNumber *int                   `json:"status_number"`
	Color        *string                `json:"color"`
	Size         *string                `json:"size"`
	FullName     *string                `json:"full_name"`
	PhoneNumber  *string                `json:"phone_number"`
	State        *string                `json:"state"`
	Region       *string                `json:"region"`
	Delivery     *models.DeliveryMethod `json:"delivery"`
}

// OrderService coordinates the order lifecycle against per-variant stock.
// Every operation runs in a single transaction: either the order mutation
// and its stock adjustment both commit, or neither does.
type OrderService struct {
	db *gorm.DB
}

func NewOrderService(db *gorm.DB) *OrderService {
	return &OrderService{db: db}
}

// List returns all orders, newest first.
func (s *OrderService) List() ([]models.Order, error) {
	return repositories.NewOrderRepository(s.db).All()
}

// Get loads one order with its product.
func (s *OrderService) Get(id uint) (models.Order, error) {
	return repositories.NewOrderRepository(s.db).FindByID(id)
}

// Summary returns the order count per status for the dashboard header.
func (s *OrderService) Summary() (map[models.Status]int64, error) {
	return repositories.NewOrderRepository(s.db).CountByStatus()
}

// Create places an order against an in-stock variant: one unit of stock is
// consumed atomically with the order insert. A failure at any step leaves
// the variant list untouched and creates no order row.
func (s *OrderService) Create(in CreateOrderInput) (models.Order, error) {
	status := in.Status
	if status == "" {
		status = models.StatusWaiting
	}

	var created models.Order
	err := s.db.Transaction(func(tx *gorm.DB) error {
		products := repositories.NewProductRepository(tx)

		product, err := products.FindByID(in.ProductID)
		if err != nil {
			return err
		}

		if product.FindVariant(in.Size, in.Color) == nil {
			return fmt.Errorf("%w: %s/%s on product %d", ErrVariantNotFound, in.Size, in.Color, product.ID)
		}

		if err := AdjustVariantQuantity(tx, product.ID, in.Size, in.Color, -1); err != nil {
			return err
		}

		created = models.Order{
			ProductID:   product.ID,
			Color:       in.Color,
			Size:        in.Size,
			FullName:    in.FullName,
			PhoneNumber: in.PhoneNumber,
			State:       in.State,
			Region:      in.Region,
			Delivery:    in.Delivery,
			Status:      status,
		}
		if err := repositories.NewOrderRepository(tx).Create(&created); err != nil {
			return fmt.Errorf("insert order: %w", err)
		}

		// Reload the product so the response carries the decremented (or
		// purged) variant rows, not the pre-adjustment snapshot.
		product, err = products.FindByID(product.ID)
		if err != nil {
			return fmt.Errorf("reload product: %w", err)
		}
		created.Product = &product
		return nil
	})
	if err != nil {
		return models.Order{}, err
	}

	// Side channels only after the transaction is durable; their failures
	// never fail the order.
	metrics.OrdersCreated.Inc()
	event.Fire(OrderCreated, created)
	if err := queue.Dispatch(jobs.OrderConfirmationJob{
		OrderID:     created.ID,
		FullName:    created.FullName,
		PhoneNumber: created.PhoneNumber,
	}); err != nil {
		logger.Warn("order: confirmation job not queued", "order_id", created.ID, "error", err)
	}

	return created, nil
}

// Update applies a typed patch to an order. A status change is validated
// against the transition table and, when crossing the canceled boundary,
// reconciled with stock inside the same transaction:
//
//	→ canceled    restock +1 (fails if the variant row was purged)
//	canceled →    consume −1 (fails when out of stock, blocking reactivation)
//
// All other transitions leave stock alone.
func (s *OrderService) Update(id uint, patch OrderPatch) (models.Order, error) {
	var updated models.Order
	err := s.db.Transaction(func(tx *gorm.DB) error {
		orders := repositories.NewOrderRepository(tx)

		order, err := orders.FindByID(id)
		if err != nil {
			return err
		}

		if patch.StatusNumber != nil {
			next, err := models.StatusFromNumber(*patch.StatusNumber)
			if err != nil {
				return err
			}

			if next != order.Status {
				if err := models.ValidateTransition(order.Status, next); err != nil {
					return err
				}
				if err := s.reconcileStock(tx, &order, next); err != nil {
					return err
				}

				metrics.OrderStatusChanges.WithLabelValues(string(order.Status), string(next)).Inc()
				order.Status = next
			}
		}

		applyPatch(&order, patch)

		if err := orders.Save(&order); err != nil {
			return fmt.Errorf("save order: %w", err)
		}

		updated = order
		return nil
	})
	if err != nil {
		return models.Order{}, err
	}
	return updated, nil
}

// Delete removes an order. A non-canceled order still holds one unit of
// stock, so that unit is returned first — unless the variant row no longer
// exists, in which case the restock is skipped (the unit is lost; the
// admin recreates stock through the variant bulk edit).
func (s *OrderService) Delete(id uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		orders := repositories.NewOrderRepository(tx)

		order, err := orders.FindByID(id)
		if err != nil {
			return err
		}

		if order.Status != models.StatusCanceled && order.Product != nil {
			err := AdjustVariantQuantity(tx, order.ProductID, order.Size, order.Color, +1)
			switch {
			case err == nil:
			case isVariantGone(err):
				logger.Warn("order: restock skipped on delete, variant purged",
					"order_id", order.ID,
					"product_id", order.ProductID,
					"size", order.Size,
					"color", order.Color,
				)
			default:
				return err
			}
		}

		return orders.Delete(order.ID)
	})
}

// reconcileStock performs the compensating stock adjustment for a status
// change, on the caller's transaction.
func (s *OrderService) reconcileStock(tx *gorm.DB, order *models.Order, next models.Status) error {
	switch {
	case next == models.StatusCanceled:
		return AdjustVariantQuantity(tx, order.ProductID, order.Size, order.Color, +1)
	case order.Status == models.StatusCanceled:
		return AdjustVariantQuantity(tx, order.ProductID, order.Size, order.Color, -1)
	default:
		return nil
	}
}

func applyPatch(order *models.Order, patch OrderPatch) {
	if patch.Color != nil {
		order.Color = *patch.Color
	}
	if patch.Size != nil {
		order.Size = *patch.Size
	}
	if patch.FullName != nil {
		order.FullName = *patch.FullName
	}
	if patch.PhoneNumber != nil {
		order.PhoneNumber = *patch.PhoneNumber
	}
	if patch.State != nil {
		order.State = *patch.State
	}
	if patch.Region != nil {
		order.Region = *patch.Region
	}
	if patch.Delivery != nil {
		order.Delivery = *patch.Delivery
	}
}

func isVariantGone(err error) bool {
	return errors.Is(err, ErrVariantNotFound)
}

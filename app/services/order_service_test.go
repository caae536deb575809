package services_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	glogger "gorm.io/gorm/logger"

	"github.com/ritahmida/boutique/app/models"
	"github.com/ritahmida/boutique/app/repositories"
	"github.com/ritahmida/boutique/app/services"
)

func testDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: glogger.Default.LogMode(glogger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.Product{},
		&models.MediaLink{},
		&models.Variant{},
		&models.Order{},
	))
	return db
}

func seedProduct(t *testing.T, db *gorm.DB, variants ...models.Variant) models.Product {
	t.Helper()

	product := models.Product{
		Name:     "Robe Test",
		Category: models.CategoryRobe,
		Price:    100,
		Variants: variants,
	}
	require.NoError(t, db.Create(&product).Error)
	return product
}

func variantQty(t *testing.T, db *gorm.DB, productID uint, size, color string) (int, bool) {
	t.Helper()

	var v models.Variant
	err := db.Where("product_id = ? AND size = ? AND color = ?", productID, size, color).First(&v).Error
	if err == gorm.ErrRecordNotFound {
		return 0, false
	}
	require.NoError(t, err)
	return v.Quantity, true
}

func orderInput(productID uint) services.CreateOrderInput {
	return services.CreateOrderInput{
		ProductID:   productID,
		Color:       "noir",
		Size:        "M",
		FullName:    "Amina Ben Salah",
		PhoneNumber: "21612345",
		State:       "Tunis",
		Delivery:    models.DeliveryHome,
	}
}

func intPtr(n int) *int { return &n }

func TestCreateConsumesOneUnit(t *testing.T) {
	db := testDB(t)
	product := seedProduct(t, db, models.Variant{Size: "M", Color: "noir", Quantity: 3})
	svc := services.NewOrderService(db)

	order, err := svc.Create(orderInput(product.ID))
	require.NoError(t, err)

	assert.Equal(t, models.StatusWaiting, order.Status)
	assert.Equal(t, product.ID, order.ProductID)
	require.NotNil(t, order.Product)

	qty, exists := variantQty(t, db, product.ID, "M", "noir")
	require.True(t, exists)
	assert.Equal(t, 2, qty)
}

func TestCreatePurgesVariantAtZero(t *testing.T) {
	db := testDB(t)
	product := seedProduct(t, db, models.Variant{Size: "M", Color: "noir", Quantity: 1})
	svc := services.NewOrderService(db)

	_, err := svc.Create(orderInput(product.ID))
	require.NoError(t, err)

	_, exists := variantQty(t, db, product.ID, "M", "noir")
	assert.False(t, exists, "zero-stock variant row should be deleted, not kept")
}

func TestCreateReturnsPostDecrementProduct(t *testing.T) {
	db := testDB(t)
	product := seedProduct(t, db, models.Variant{Size: "M", Color: "noir", Quantity: 3})
	svc := services.NewOrderService(db)

	order, err := svc.Create(orderInput(product.ID))
	require.NoError(t, err)

	require.NotNil(t, order.Product)
	v := order.Product.FindVariant("M", "noir")
	require.NotNil(t, v)
	assert.Equal(t, 2, v.Quantity, "response must show stock after the decrement")
}

func TestCreateReturnsProductWithoutPurgedVariant(t *testing.T) {
	db := testDB(t)
	product := seedProduct(t, db,
		models.Variant{Size: "M", Color: "noir", Quantity: 1},
		models.Variant{Size: "L", Color: "noir", Quantity: 4},
	)
	svc := services.NewOrderService(db)

	order, err := svc.Create(orderInput(product.ID))
	require.NoError(t, err)

	require.NotNil(t, order.Product)
	assert.Nil(t, order.Product.FindVariant("M", "noir"), "purged variant must not appear in the response")
	assert.NotNil(t, order.Product.FindVariant("L", "noir"))
}

func TestCreateUnknownVariantRollsBack(t *testing.T) {
	db := testDB(t)
	product := seedProduct(t, db, models.Variant{Size: "S", Color: "noir", Quantity: 5})
	svc := services.NewOrderService(db)

	in := orderInput(product.ID) // asks for M/noir which does not exist
	_, err := svc.Create(in)
	assert.ErrorIs(t, err, services.ErrVariantNotFound)

	var count int64
	db.Model(&models.Order{}).Count(&count)
	assert.Zero(t, count, "a failed create must not leave an order row")

	qty, _ := variantQty(t, db, product.ID, "S", "noir")
	assert.Equal(t, 5, qty, "a failed create must not touch other variants")
}

func TestCreateUnknownProduct(t *testing.T) {
	db := testDB(t)
	svc := services.NewOrderService(db)

	_, err := svc.Create(orderInput(999))
	assert.ErrorIs(t, err, repositories.ErrProductNotFound)
}

func TestCreateWithExplicitStatus(t *testing.T) {
	db := testDB(t)
	product := seedProduct(t, db, models.Variant{Size: "M", Color: "noir", Quantity: 2})
	svc := services.NewOrderService(db)

	in := orderInput(product.ID)
	in.Status = models.StatusProcessing

	order, err := svc.Create(in)
	require.NoError(t, err)
	assert.Equal(t, models.StatusProcessing, order.Status)
}

func TestUpdateStatusFollowsTransitionTable(t *testing.T) {
	db := testDB(t)
	product := seedProduct(t, db, models.Variant{Size: "M", Color: "noir", Quantity: 3})
	svc := services.NewOrderService(db)

	order, err := svc.Create(orderInput(product.ID))
	require.NoError(t, err)

	// waiting → processing (number 2) leaves stock alone
	updated, err := svc.Update(order.ID, services.OrderPatch{StatusNumber: intPtr(2)})
	require.NoError(t, err)
	assert.Equal(t, models.StatusProcessing, updated.Status)

	qty, _ := variantQty(t, db, product.ID, "M", "noir")
	assert.Equal(t, 2, qty)

	// processing → delivered is not allowed by the table
	_, err = svc.Update(order.ID, services.OrderPatch{StatusNumber: intPtr(3)})
	assert.ErrorIs(t, err, models.ErrInvalidStatusTransition)

	// and the failed update must not have persisted anything
	current, err := svc.Get(order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusProcessing, current.Status)
}

func TestUpdateRejectsUnknownStatusNumber(t *testing.T) {
	db := testDB(t)
	product := seedProduct(t, db, models.Variant{Size: "M", Color: "noir", Quantity: 2})
	svc := services.NewOrderService(db)

	order, err := svc.Create(orderInput(product.ID))
	require.NoError(t, err)

	_, err = svc.Update(order.ID, services.OrderPatch{StatusNumber: intPtr(9)})
	assert.ErrorIs(t, err, models.ErrInvalidStatusNumber)
}

func TestCancelRestocksOneUnit(t *testing.T) {
	db := testDB(t)
	product := seedProduct(t, db, models.Variant{Size: "M", Color: "noir", Quantity: 2})
	svc := services.NewOrderService(db)

	order, err := svc.Create(orderInput(product.ID))
	require.NoError(t, err)

	updated, err := svc.Update(order.ID, services.OrderPatch{StatusNumber: intPtr(4)})
	require.NoError(t, err)
	assert.Equal(t, models.StatusCanceled, updated.Status)

	qty, _ := variantQty(t, db, product.ID, "M", "noir")
	assert.Equal(t, 2, qty, "cancel must return the consumed unit")
}

func TestCancelFailsWhenVariantPurged(t *testing.T) {
	db := testDB(t)
	product := seedProduct(t, db, models.Variant{Size: "M", Color: "noir", Quantity: 1})
	svc := services.NewOrderService(db)

	order, err := svc.Create(orderInput(product.ID))
	require.NoError(t, err) // consumed the last unit, variant purged

	_, err = svc.Update(order.ID, services.OrderPatch{StatusNumber: intPtr(4)})
	assert.ErrorIs(t, err, services.ErrVariantNotFound)

	current, err := svc.Get(order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusWaiting, current.Status, "failed cancel must not change status")
}

func TestReactivationConsumesAgain(t *testing.T) {
	db := testDB(t)
	product := seedProduct(t, db, models.Variant{Size: "M", Color: "noir", Quantity: 2})
	svc := services.NewOrderService(db)

	order, err := svc.Create(orderInput(product.ID)) // 2 → 1
	require.NoError(t, err)

	_, err = svc.Update(order.ID, services.OrderPatch{StatusNumber: intPtr(4)}) // 1 → 2
	require.NoError(t, err)

	updated, err := svc.Update(order.ID, services.OrderPatch{StatusNumber: intPtr(1)}) // 2 → 1
	require.NoError(t, err)
	assert.Equal(t, models.StatusWaiting, updated.Status)

	qty, _ := variantQty(t, db, product.ID, "M", "noir")
	assert.Equal(t, 1, qty)
}

func TestReactivationBlockedWhenOutOfStock(t *testing.T) {
	db := testDB(t)
	product := seedProduct(t, db, models.Variant{Size: "M", Color: "noir", Quantity: 1})
	svc := services.NewOrderService(db)

	order, err := svc.Create(orderInput(product.ID)) // last unit, variant purged
	require.NoError(t, err)

	// manual restock via bulk edit brings the pair back at zero stock
	require.NoError(t, db.Create(&models.Variant{
		ProductID: product.ID, Size: "M", Color: "noir", Quantity: 0,
	}).Error)

	_, err = svc.Update(order.ID, services.OrderPatch{StatusNumber: intPtr(4)}) // cancel, restock 0 → 1
	require.NoError(t, err)

	// drain the stock behind the order's back
	_, err = svc.Create(orderInput(product.ID))
	require.NoError(t, err)

	_, err = svc.Update(order.ID, services.OrderPatch{StatusNumber: intPtr(1)})
	assert.ErrorIs(t, err, services.ErrVariantNotFound, "reactivation needs the variant row back")
}

func TestUpdatePatchesDetails(t *testing.T) {
	db := testDB(t)
	product := seedProduct(t, db, models.Variant{Size: "M", Color: "noir", Quantity: 2})
	svc := services.NewOrderService(db)

	order, err := svc.Create(orderInput(product.ID))
	require.NoError(t, err)

	name := "Leïla Trabelsi"
	center := models.DeliveryCenter
	updated, err := svc.Update(order.ID, services.OrderPatch{
		FullName: &name,
		Delivery: &center,
	})
	require.NoError(t, err)

	assert.Equal(t, name, updated.FullName)
	assert.Equal(t, center, updated.Delivery)
	assert.Equal(t, "21612345", updated.PhoneNumber, "unset fields stay untouched")
	assert.Equal(t, models.StatusWaiting, updated.Status)
}

func TestDeleteRestocksActiveOrder(t *testing.T) {
	db := testDB(t)
	product := seedProduct(t, db, models.Variant{Size: "M", Color: "noir", Quantity: 2})
	svc := services.NewOrderService(db)

	order, err := svc.Create(orderInput(product.ID)) // 2 → 1
	require.NoError(t, err)

	require.NoError(t, svc.Delete(order.ID))

	qty, _ := variantQty(t, db, product.ID, "M", "noir")
	assert.Equal(t, 2, qty)

	_, err = svc.Get(order.ID)
	assert.ErrorIs(t, err, repositories.ErrOrderNotFound)
}

func TestDeleteCanceledOrderLeavesStockAlone(t *testing.T) {
	db := testDB(t)
	product := seedProduct(t, db, models.Variant{Size: "M", Color: "noir", Quantity: 2})
	svc := services.NewOrderService(db)

	order, err := svc.Create(orderInput(product.ID)) // 2 → 1
	require.NoError(t, err)
	_, err = svc.Update(order.ID, services.OrderPatch{StatusNumber: intPtr(4)}) // 1 → 2
	require.NoError(t, err)

	require.NoError(t, svc.Delete(order.ID))

	qty, _ := variantQty(t, db, product.ID, "M", "noir")
	assert.Equal(t, 2, qty, "canceled orders hold no stock to return")
}

func TestDeleteSkipsRestockWhenVariantGone(t *testing.T) {
	db := testDB(t)
	product := seedProduct(t, db, models.Variant{Size: "M", Color: "noir", Quantity: 1})
	svc := services.NewOrderService(db)

	order, err := svc.Create(orderInput(product.ID)) // last unit, variant purged
	require.NoError(t, err)

	require.NoError(t, svc.Delete(order.ID), "delete proceeds even though the unit cannot be returned")

	_, exists := variantQty(t, db, product.ID, "M", "noir")
	assert.False(t, exists)
	_, err = svc.Get(order.ID)
	assert.ErrorIs(t, err, repositories.ErrOrderNotFound)
}

func TestSummaryCountsByStatus(t *testing.T) {
	db := testDB(t)
	product := seedProduct(t, db, models.Variant{Size: "M", Color: "noir", Quantity: 10})
	svc := services.NewOrderService(db)

	for i := 0; i < 3; i++ {
		_, err := svc.Create(orderInput(product.ID))
		require.NoError(t, err)
	}
	order, err := svc.Create(orderInput(product.ID))
	require.NoError(t, err)
	_, err = svc.Update(order.ID, services.OrderPatch{StatusNumber: intPtr(2)})
	require.NoError(t, err)

	counts, err := svc.Summary()
	require.NoError(t, err)
	assert.Equal(t, int64(3), counts[models.StatusWaiting])
	assert.Equal(t, int64(1), counts[models.StatusProcessing])
	assert.Zero(t, counts[models.StatusCanceled])
}

func TestListNewestFirst(t *testing.T) {
	db := testDB(t)
	product := seedProduct(t, db, models.Variant{Size: "M", Color: "noir", Quantity: 5})
	svc := services.NewOrderService(db)

	first, err := svc.Create(orderInput(product.ID))
	require.NoError(t, err)
	second, err := svc.Create(orderInput(product.ID))
	require.NoError(t, err)

	orders, err := svc.List()
	require.NoError(t, err)
	require.Len(t, orders, 2)
	assert.Equal(t, []uint{second.ID, first.ID}, []uint{orders[0].ID, orders[1].ID})
}

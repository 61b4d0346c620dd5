package inventory

import (
	"context"
	"sync"
	"testing"

	"github.com/gang93/pos-backend/pkg/db/dbtest"
	"github.com/gang93/pos-backend/pkg/db/models"
	pkgerrors "github.com/gang93/pos-backend/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func dec(v string) decimal.Decimal { return decimal.RequireFromString(v) }

func seedInventory(t *testing.T) *gorm.DB {
	t.Helper()
	conn := dbtest.Open(t)
	dbtest.Seed(t, conn,
		&models.InventoryItem{ItemID: 100, ItemName: "Black Tea", Quantity: dec("50")},
		&models.InventoryItem{ItemID: 101, ItemName: "Taro Powder", Quantity: dec("4.5")},
		&models.InventoryItem{ItemID: 200, ItemName: "Simple Syrup", Quantity: dec("9")},
	)
	return conn
}

func quantityOf(t *testing.T, repo Repository, id int64) decimal.Decimal {
	t.Helper()
	item, err := repo.FindByID(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, item)
	return item.Quantity
}

func TestDecrementIfAvailable(t *testing.T) {
	cases := []struct {
		name    string
		id      int64
		delta   string
		applied bool
		want    string
	}{
		{name: "sufficient stock", id: 100, delta: "4", applied: true, want: "46"},
		{name: "exact stock", id: 101, delta: "4.5", applied: true, want: "0"},
		{name: "insufficient stock is left unchanged", id: 200, delta: "10", applied: false, want: "9"},
		{name: "unknown item", id: 999, delta: "1", applied: false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			repo := NewRepository(seedInventory(t))
			applied, err := repo.DecrementIfAvailable(context.Background(), tc.id, dec(tc.delta))
			require.NoError(t, err)
			assert.Equal(t, tc.applied, applied)
			if tc.want != "" {
				assert.True(t, quantityOf(t, repo, tc.id).Equal(dec(tc.want)), "got %s want %s", quantityOf(t, repo, tc.id), tc.want)
			}
		})
	}
}

func TestDecrementIfAvailableNeverGoesNegativeUnderInterleaving(t *testing.T) {
	repo := NewRepository(seedInventory(t))
	ctx := context.Background()

	var wg sync.WaitGroup
	var mu sync.Mutex
	applied := 0
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := repo.DecrementIfAvailable(ctx, 200, dec("2"))
			assert.NoError(t, err)
			if ok {
				mu.Lock()
				applied++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 4, applied)
	assert.True(t, quantityOf(t, repo, 200).Equal(dec("1")))
}

func TestServiceSetQuantity(t *testing.T) {
	svc, err := NewService(NewRepository(seedInventory(t)))
	require.NoError(t, err)
	ctx := context.Background()

	item, err := svc.SetQuantity(ctx, 101, dec("20.25"))
	require.NoError(t, err)
	assert.True(t, item.Quantity.Equal(dec("20.25")))

	_, err = svc.SetQuantity(ctx, 101, dec("-1"))
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	_, err = svc.SetQuantity(ctx, 999, dec("1"))
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestServiceLowStockDefaultsAndOrders(t *testing.T) {
	svc, err := NewService(NewRepository(seedInventory(t)))
	require.NoError(t, err)
	ctx := context.Background()

	items, err := svc.LowStock(ctx, nil)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, int64(101), items[0].ItemID, "scarcest first")
	assert.Equal(t, int64(200), items[1].ItemID)

	threshold := dec("5")
	items, err = svc.LowStock(ctx, &threshold)
	require.NoError(t, err)
	require.Len(t, items, 1)

	_, err = svc.Get(ctx, 999)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

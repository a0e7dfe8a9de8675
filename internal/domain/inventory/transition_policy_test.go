package inventory_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/pos-api/internal/domain"
	"github.com/jhoicas/pos-api/internal/domain/entity"
	"github.com/jhoicas/pos-api/internal/domain/inventory"
)

func TestNextStock_TablaDeReglas(t *testing.T) {
	cases := []struct {
		name     string
		txType   string
		quantity int
		previous int
		want     int
		wantErr  error
	}{
		{"venta descuenta", entity.TransactionSale, 3, 10, 7, nil},
		{"venta exacta deja cero", entity.TransactionSale, 10, 10, 0, nil},
		{"venta sin stock suficiente", entity.TransactionSale, 11, 10, 0, domain.ErrInsufficientStock},
		{"devolución a proveedor descuenta", entity.TransactionSupplierReturn, 2, 5, 3, nil},
		{"devolución a proveedor con stock cero", entity.TransactionSupplierReturn, 1, 0, 0, domain.ErrInsufficientStock},
		{"compra suma", entity.TransactionPurchase, 20, 0, 20, nil},
		{"devolución de cliente suma", entity.TransactionCustomerReturn, 4, 6, 10, nil},
		{"ajuste fija el valor", entity.TransactionAdjustment, 3, 50, 3, nil},
		{"ajuste a cero", entity.TransactionAdjustment, 0, 50, 0, nil},
		{"ajuste por encima", entity.TransactionAdjustment, 80, 50, 80, nil},
		{"delete fuerza cero", entity.TransactionDelete, 0, 12, 0, nil},
		{"cantidad cero en venta", entity.TransactionSale, 0, 10, 0, domain.ErrInvalidInput},
		{"cantidad negativa en compra", entity.TransactionPurchase, -1, 10, 0, domain.ErrInvalidInput},
		{"ajuste negativo", entity.TransactionAdjustment, -5, 10, 0, domain.ErrInvalidInput},
		{"tipo desconocido", "gift", 1, 10, 0, domain.ErrInvalidTransactionType},
		{"tipo vacío", "", 1, 10, 0, domain.ErrInvalidTransactionType},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := inventory.NextStock(tc.txType, tc.quantity, tc.previous)
			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

// Ninguna secuencia de transiciones aceptadas deja el stock en negativo.
func TestNextStock_NuncaNegativo(t *testing.T) {
	types := []string{
		entity.TransactionSale, entity.TransactionPurchase, entity.TransactionCustomerReturn,
		entity.TransactionSupplierReturn, entity.TransactionAdjustment,
	}
	stock := 5
	for i := 0; i < 500; i++ {
		txType := types[i%len(types)]
		qty := (i*7)%13 + 1
		next, err := inventory.NextStock(txType, qty, stock)
		if err != nil {
			assert.ErrorIs(t, err, domain.ErrInsufficientStock)
			continue
		}
		require.GreaterOrEqual(t, next, 0)
		stock = next
	}
}

func TestDirectionOf(t *testing.T) {
	dir, err := inventory.DirectionOf(entity.TransactionSale)
	require.NoError(t, err)
	assert.Equal(t, inventory.DirectionDecrease, dir)

	dir, err = inventory.DirectionOf(entity.TransactionCustomerReturn)
	require.NoError(t, err)
	assert.Equal(t, inventory.DirectionIncrease, dir)

	dir, err = inventory.DirectionOf(entity.TransactionDelete)
	require.NoError(t, err)
	assert.Equal(t, inventory.DirectionSet, dir)

	assert.False(t, inventory.ValidTransactionType("transfer"))
}

func TestLedgerQuantity(t *testing.T) {
	assert.Equal(t, 3, inventory.LedgerQuantity(entity.TransactionSale, 3, 10, 7))
	assert.Equal(t, 7, inventory.LedgerQuantity(entity.TransactionAdjustment, 3, 10, 3))
	assert.Equal(t, 5, inventory.LedgerQuantity(entity.TransactionAdjustment, 15, 10, 15))
	assert.Equal(t, 12, inventory.LedgerQuantity(entity.TransactionDelete, 0, 12, 0))
}

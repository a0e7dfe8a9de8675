package inventory

import (
	"github.com/jhoicas/pos-api/internal/domain"
	"github.com/jhoicas/pos-api/internal/domain/entity"
)

// Direction efecto de un tipo de transacción sobre el stock.
type Direction int

const (
	DirectionDecrease Direction = iota + 1
	DirectionIncrease
	DirectionSet
)

// DirectionOf devuelve la dirección del tipo o ErrInvalidTransactionType.
//
//	sale, supplier_return       -> disminuye
//	purchase, customer_return   -> aumenta
//	adjustment, delete          -> fija (adjustment al valor pedido, delete a 0)
func DirectionOf(transactionType string) (Direction, error) {
	switch transactionType {
	case entity.TransactionSale, entity.TransactionSupplierReturn:
		return DirectionDecrease, nil
	case entity.TransactionPurchase, entity.TransactionCustomerReturn:
		return DirectionIncrease, nil
	case entity.TransactionAdjustment, entity.TransactionDelete:
		return DirectionSet, nil
	default:
		return 0, domain.ErrInvalidTransactionType
	}
}

// ValidTransactionType indica si el tipo pertenece al conjunto enumerado.
func ValidTransactionType(transactionType string) bool {
	_, err := DirectionOf(transactionType)
	return err == nil
}

// NextStock calcula el stock resultante (servicio de dominio puro).
// quantity es siempre una magnitud; para adjustment es el stock objetivo y para delete se ignora.
// Un decremento que deje el stock en negativo devuelve ErrInsufficientStock.
func NextStock(transactionType string, quantity, previousStock int) (int, error) {
	dir, err := DirectionOf(transactionType)
	if err != nil {
		return 0, err
	}
	switch dir {
	case DirectionDecrease:
		if quantity <= 0 {
			return 0, domain.ErrInvalidInput
		}
		next := previousStock - quantity
		if next < 0 {
			return 0, domain.ErrInsufficientStock
		}
		return next, nil
	case DirectionIncrease:
		if quantity <= 0 {
			return 0, domain.ErrInvalidInput
		}
		return previousStock + quantity, nil
	default:
		if transactionType == entity.TransactionDelete {
			return 0, nil
		}
		// adjustment es un reinicio autoritativo: no pasa por la validación de suficiencia.
		if quantity < 0 {
			return 0, domain.ErrInvalidInput
		}
		return quantity, nil
	}
}

// LedgerQuantity magnitud del cambio que se guarda en el libro.
// Para sumas y restas es la cantidad pedida; para adjustment y delete es |nuevo - anterior|.
func LedgerQuantity(transactionType string, quantity, previousStock, newStock int) int {
	switch transactionType {
	case entity.TransactionAdjustment, entity.TransactionDelete:
		if newStock >= previousStock {
			return newStock - previousStock
		}
		return previousStock - newStock
	default:
		return quantity
	}
}

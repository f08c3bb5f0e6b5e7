package enums

import "slices"

// StockTransactionType classifies finished feed ledger entries.
type StockTransactionType string

const (
	StockTransactionProductionIn StockTransactionType = "PRODUCTION_IN"
	StockTransactionSaleOut      StockTransactionType = "SALE_OUT"
	StockTransactionAdjustment   StockTransactionType = "ADJUSTMENT"
)

var stockTransactionTypes = []StockTransactionType{
	StockTransactionProductionIn,
	StockTransactionSaleOut,
	StockTransactionAdjustment,
}

func (s StockTransactionType) String() string { return string(s) }
func (s StockTransactionType) IsValid() bool  { return slices.Contains(stockTransactionTypes, s) }

func ParseStockTransactionType(value string) (StockTransactionType, error) {
	return parse("stock transaction type", stockTransactionTypes, value)
}

// Direction returns the movement sign implied by a transaction type.
// ADJUSTMENT can go either way and reports false.
func (s StockTransactionType) Direction() (MovementDirection, bool) {
	switch s {
	case StockTransactionProductionIn:
		return MovementIn, true
	case StockTransactionSaleOut:
		return MovementOut, true
	default:
		return "", false
	}
}

// MovementDirection is the sign of a stock movement.
type MovementDirection string

const (
	MovementIn  MovementDirection = "IN"
	MovementOut MovementDirection = "OUT"
)

var movementDirections = []MovementDirection{MovementIn, MovementOut}

func (m MovementDirection) String() string { return string(m) }
func (m MovementDirection) IsValid() bool  { return slices.Contains(movementDirections, m) }

func ParseMovementDirection(value string) (MovementDirection, error) {
	return parse("movement direction", movementDirections, value)
}

// Package pricing turns requested order lines and an optional discount into priced
// lines and totals. It never writes.
package pricing

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/feedmill-backend/pkg/db/models"
	"github.com/angelmondragon/feedmill-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/feedmill-backend/pkg/errors"
)

const moneyPlaces = 2

var hundred = decimal.NewFromInt(100)

// Catalog resolves feed products by id.
type Catalog interface {
	FindFeedProducts(ctx context.Context, ids []uuid.UUID) ([]models.FeedProduct, error)
}

// LineRequest is one requested order line.
type LineRequest struct {
	FeedProductID uuid.UUID `json:"feedProductId"`
	Quantity      int       `json:"quantity"`
}

// Input is everything needed to price an order.
type Input struct {
	Items         []LineRequest
	DiscountType  *enums.DiscountType
	DiscountValue decimal.Decimal
}

// Line is a priced order line.
type Line struct {
	FeedProductID uuid.UUID       `json:"feedProductId"`
	Name          string          `json:"name"`
	Quantity      int             `json:"quantity"`
	PricePerUnit  decimal.Decimal `json:"pricePerUnit"`
	Subtotal      decimal.Decimal `json:"subtotal"`
}

// Preview is the priced result shared by the standalone preview and order placement.
type Preview struct {
	Items         []Line              `json:"items"`
	TotalAmount   decimal.Decimal     `json:"totalAmount"`
	DiscountType  *enums.DiscountType `json:"discountType"`
	DiscountValue decimal.Decimal     `json:"discountValue"`
	FinalAmount   decimal.Decimal     `json:"finalAmount"`
}

// Price resolves every requested product through catalog and prices the order.
func Price(ctx context.Context, catalog Catalog, input Input) (*Preview, error) {
	if catalog == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "catalog required")
	}
	if err := validateShape(input); err != nil {
		return nil, err
	}

	products, err := catalog.FindFeedProducts(ctx, requestedIDs(input.Items))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "resolve feed products")
	}
	return Compute(products, input)
}

// Compute prices input against an already resolved product set. A requested id
// missing from products fails the whole computation with INVALID_REFERENCE.
func Compute(products []models.FeedProduct, input Input) (*Preview, error) {
	if err := validateShape(input); err != nil {
		return nil, err
	}

	byID := make(map[uuid.UUID]models.FeedProduct, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	var missing []string
	for _, item := range input.Items {
		if _, ok := byID[item.FeedProductID]; !ok {
			missing = append(missing, item.FeedProductID.String())
		}
	}
	if len(missing) > 0 {
		return nil, pkgerrors.New(pkgerrors.CodeInvalidReference, "one or more feed products do not exist").
			WithDetails(map[string]any{"feedProductIds": missing})
	}

	for i, item := range input.Items {
		switch {
		case item.Quantity <= 0:
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1").
				WithDetails(map[string]any{"index": i, "feedProductId": item.FeedProductID.String()})
		case item.Quantity > models.MaxQuantity:
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity is too large").
				WithDetails(map[string]any{"index": i, "feedProductId": item.FeedProductID.String(), "max": models.MaxQuantity})
		}
	}

	lines := make([]Line, len(input.Items))
	total := decimal.Zero
	for i, item := range input.Items {
		product := byID[item.FeedProductID]
		subtotal := product.PricePerUnit.Mul(decimal.NewFromInt(int64(item.Quantity)))
		lines[i] = Line{
			FeedProductID: product.ID,
			Name:          product.Name,
			Quantity:      item.Quantity,
			PricePerUnit:  product.PricePerUnit,
			Subtotal:      subtotal,
		}
		total = total.Add(subtotal)
	}
	if total.GreaterThanOrEqual(models.MaxAmount) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order total is too large").
			WithDetails(map[string]any{"totalAmount": total.StringFixed(moneyPlaces)})
	}

	return &Preview{
		Items:         lines,
		TotalAmount:   total,
		DiscountType:  input.DiscountType,
		DiscountValue: input.DiscountValue,
		FinalAmount:   ApplyDiscount(total, input.DiscountType, input.DiscountValue),
	}, nil
}

// ApplyDiscount returns total reduced by the discount, rounded to cents and
// never below zero. An absent type or a zero value leaves total unchanged.
func ApplyDiscount(total decimal.Decimal, discountType *enums.DiscountType, value decimal.Decimal) decimal.Decimal {
	final := total
	if discountType != nil && !value.IsZero() {
		switch *discountType {
		case enums.DiscountTypeFlat:
			final = total.Sub(value)
		case enums.DiscountTypePercentage:
			final = total.Sub(total.Mul(value).Div(hundred))
		}
	}
	if final.IsNegative() {
		return decimal.Zero
	}
	return final.Round(moneyPlaces)
}

func validateShape(input Input) error {
	if len(input.Items) == 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "at least one item is required")
	}
	seen := make(map[uuid.UUID]struct{}, len(input.Items))
	for i, item := range input.Items {
		if item.FeedProductID == uuid.Nil {
			return pkgerrors.New(pkgerrors.CodeValidation, "feedProductId is required").
				WithDetails(map[string]any{"index": i})
		}
		if _, dup := seen[item.FeedProductID]; dup {
			return pkgerrors.New(pkgerrors.CodeValidation, "feed product listed more than once").
				WithDetails(map[string]any{"feedProductId": item.FeedProductID.String()})
		}
		seen[item.FeedProductID] = struct{}{}
	}
	if input.DiscountType != nil && !input.DiscountType.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid discount type")
	}
	if input.DiscountValue.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation, "discount value cannot be negative")
	}
	return nil
}

func requestedIDs(items []LineRequest) []uuid.UUID {
	ids := make([]uuid.UUID, len(items))
	for i, item := range items {
		ids[i] = item.FeedProductID
	}
	return ids
}

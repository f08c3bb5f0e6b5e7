package pricing

import (
	"reflect"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"pgregory.net/rapid"

	"github.com/angelmondragon/feedmill-backend/pkg/db/models"
	"github.com/angelmondragon/feedmill-backend/pkg/enums"
)

// genOrder draws a catalog and a request referencing every product once.
func genOrder(t *rapid.T) ([]models.FeedProduct, []LineRequest) {
	n := rapid.IntRange(1, 6).Draw(t, "lines")
	products := make([]models.FeedProduct, n)
	items := make([]LineRequest, n)
	for i := 0; i < n; i++ {
		cents := rapid.Int64Range(1, 500_000).Draw(t, "price-cents")
		products[i] = models.FeedProduct{
			ID:           uuid.New(),
			Name:         "feed",
			PricePerUnit: decimal.New(cents, -2),
		}
		items[i] = LineRequest{
			FeedProductID: products[i].ID,
			Quantity:      rapid.IntRange(1, 1_000).Draw(t, "qty"),
		}
	}
	return products, items
}

func genDiscount(t *rapid.T) (*enums.DiscountType, decimal.Decimal) {
	switch rapid.IntRange(0, 2).Draw(t, "discount-kind") {
	case 0:
		return nil, decimal.Zero
	case 1:
		dt := enums.DiscountTypeFlat
		return &dt, decimal.New(rapid.Int64Range(0, 100_000_000).Draw(t, "flat-cents"), -2)
	default:
		dt := enums.DiscountTypePercentage
		return &dt, decimal.New(rapid.Int64Range(0, 30_000).Draw(t, "pct-hundredths"), -2)
	}
}

func TestTotalIsSumOfLineSubtotals(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		products, items := genOrder(t)
		dt, dv := genDiscount(t)

		preview, err := Compute(products, Input{Items: items, DiscountType: dt, DiscountValue: dv})
		if err != nil {
			t.Fatalf("compute: %v", err)
		}

		want := decimal.Zero
		for i, item := range items {
			want = want.Add(products[i].PricePerUnit.Mul(decimal.NewFromInt(int64(item.Quantity))))
		}
		if !preview.TotalAmount.Equal(want) {
			t.Fatalf("total %s != sum of subtotals %s", preview.TotalAmount, want)
		}
	})
}

func TestFinalAmountNeverNegativeAndMatchesFormula(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		products, items := genOrder(t)
		dt, dv := genDiscount(t)

		preview, err := Compute(products, Input{Items: items, DiscountType: dt, DiscountValue: dv})
		if err != nil {
			t.Fatalf("compute: %v", err)
		}
		if preview.FinalAmount.IsNegative() {
			t.Fatalf("final amount negative: %s", preview.FinalAmount)
		}
		if preview.FinalAmount.GreaterThan(preview.TotalAmount) {
			t.Fatalf("final %s exceeds total %s", preview.FinalAmount, preview.TotalAmount)
		}

		total := preview.TotalAmount
		want := total
		if dt != nil && !dv.IsZero() {
			switch *dt {
			case enums.DiscountTypeFlat:
				want = decimal.Max(decimal.Zero, total.Sub(dv))
			case enums.DiscountTypePercentage:
				factor := decimal.NewFromInt(1).Sub(dv.Div(decimal.NewFromInt(100)))
				want = decimal.Max(decimal.Zero, total.Mul(factor))
			}
		}
		if !preview.FinalAmount.Equal(want.Round(2)) {
			t.Fatalf("final %s != expected %s", preview.FinalAmount, want.Round(2))
		}
	})
}

func TestComputeIsIdempotent(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		products, items := genOrder(t)
		dt, dv := genDiscount(t)
		input := Input{Items: items, DiscountType: dt, DiscountValue: dv}

		first, err := Compute(products, input)
		if err != nil {
			t.Fatalf("compute: %v", err)
		}
		second, err := Compute(products, input)
		if err != nil {
			t.Fatalf("compute: %v", err)
		}
		if !reflect.DeepEqual(first, second) {
			t.Fatalf("repeated compute differs: %+v vs %+v", first, second)
		}
	})
}

package enums

import "slices"

// DiscountType selects how an order discount value is read: FLAT is an amount
// off the total, PERCENTAGE a share of it.
type DiscountType string

const (
	DiscountTypeFlat       DiscountType = "FLAT"
	DiscountTypePercentage DiscountType = "PERCENTAGE"
)

var discountTypes = []DiscountType{DiscountTypeFlat, DiscountTypePercentage}

func (d DiscountType) String() string { return string(d) }
func (d DiscountType) IsValid() bool  { return slices.Contains(discountTypes, d) }

func ParseDiscountType(value string) (DiscountType, error) {
	return parse("discount type", discountTypes, value)
}

package enums

import "slices"

// PaymentMethod records how the customer settles the order. Only CASH is
// settled at the counter; CREDIT goes on the customer's account.
type PaymentMethod string

const (
	PaymentMethodCash   PaymentMethod = "CASH"
	PaymentMethodCredit PaymentMethod = "CREDIT"
	PaymentMethodOnline PaymentMethod = "ONLINE"
)

var paymentMethods = []PaymentMethod{PaymentMethodCash, PaymentMethodCredit, PaymentMethodOnline}

func (p PaymentMethod) String() string { return string(p) }
func (p PaymentMethod) IsValid() bool  { return slices.Contains(paymentMethods, p) }

func ParsePaymentMethod(value string) (PaymentMethod, error) {
	return parse("payment method", paymentMethods, value)
}

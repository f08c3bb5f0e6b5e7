package orders

import (
	"github.com/angelmondragon/feedmill-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/feedmill-backend/pkg/errors"
)

// checkTransition reports whether an order may move from current to next.
// Staying put is always allowed; nothing leaves CANCELLED.
func checkTransition(current, next enums.OrderStatus) error {
	if current == next {
		return nil
	}
	if current.IsTerminal() {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "order is cancelled").
			WithDetails(map[string]any{"from": current, "to": next})
	}
	return nil
}

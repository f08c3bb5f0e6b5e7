package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/feedmill-backend/api/middleware"
	"github.com/angelmondragon/feedmill-backend/api/responses"
	"github.com/angelmondragon/feedmill-backend/api/validators"
	"github.com/angelmondragon/feedmill-backend/internal/orders"
	"github.com/angelmondragon/feedmill-backend/internal/pricing"
	"github.com/angelmondragon/feedmill-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/feedmill-backend/pkg/errors"
	"github.com/angelmondragon/feedmill-backend/pkg/logger"
)

const deliveryDateLayout = "2006-01-02"

type orderLineRequest struct {
	FeedProductID uuid.UUID `json:"feedProductId" validate:"required"`
	Quantity      int       `json:"quantity"`
}

type previewOrderRequest struct {
	Items         []orderLineRequest `json:"items" validate:"required,min=1,dive"`
	DiscountType  *string            `json:"discountType,omitempty"`
	DiscountValue decimal.Decimal    `json:"discountValue"`
}

type placeOrderRequest struct {
	Items         []orderLineRequest `json:"items" validate:"required,min=1,dive"`
	PaymentMethod string             `json:"paymentMethod" validate:"required"`
	DiscountType  *string            `json:"discountType,omitempty"`
	DiscountValue decimal.Decimal    `json:"discountValue"`
	DeliveryDate  *string            `json:"deliveryDate,omitempty"`
}

type updateOrderStatusRequest struct {
	OrderStatus string `json:"orderStatus" validate:"required"`
}

func toLineRequests(lines []orderLineRequest) []pricing.LineRequest {
	out := make([]pricing.LineRequest, 0, len(lines))
	for _, line := range lines {
		out = append(out, pricing.LineRequest{FeedProductID: line.FeedProductID, Quantity: line.Quantity})
	}
	return out
}

func parseDiscountType(raw *string) (*enums.DiscountType, error) {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return nil, nil
	}
	dt, err := enums.ParseDiscountType(validators.NormalizeEnum(*raw))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid discountType")
	}
	return &dt, nil
}

func parseDeliveryDate(raw *string) (*time.Time, error) {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return nil, nil
	}
	value := strings.TrimSpace(*raw)
	for _, layout := range []string{time.RFC3339, deliveryDateLayout} {
		if parsed, err := time.Parse(layout, value); err == nil {
			utc := parsed.UTC()
			return &utc, nil
		}
	}
	return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid deliveryDate").
		WithDetails(map[string]any{"field": "deliveryDate", "expected": deliveryDateLayout})
}

// OrdersPreview prices an order without reserving stock.
func OrdersPreview(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "order service unavailable"))
			return
		}

		var body previewOrderRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		discountType, err := parseDiscountType(body.DiscountType)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		preview, err := svc.PreviewOrder(r.Context(), orders.PreviewInput{
			Items:         toLineRequests(body.Items),
			DiscountType:  discountType,
			DiscountValue: body.DiscountValue,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, preview)
	}
}

// OrdersPlace creates an order for the customer named by the customer token.
func OrdersPlace(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "order service unavailable"))
			return
		}

		adminID, err := requireAdmin(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		customerID := middleware.CustomerIDFromContext(r.Context())
		if customerID == uuid.Nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "customer token missing"))
			return
		}

		var body placeOrderRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		paymentMethod, err := enums.ParsePaymentMethod(validators.NormalizeEnum(body.PaymentMethod))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid paymentMethod"))
			return
		}
		discountType, err := parseDiscountType(body.DiscountType)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		deliveryDate, err := parseDeliveryDate(body.DeliveryDate)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.PlaceOrder(r.Context(), orders.PlaceOrderInput{
			AdminUserID:   adminID,
			CustomerID:    customerID,
			PaymentMethod: paymentMethod,
			Items:         toLineRequests(body.Items),
			DiscountType:  discountType,
			DiscountValue: body.DiscountValue,
			DeliveryDate:  deliveryDate,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, order)
	}
}

// OrdersList pages through orders newest first, optionally filtered.
func OrdersList(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "order service unavailable"))
			return
		}

		params, err := paginationParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		input := orders.ListOrdersInput{Pagination: params}

		if input.Status, err = validators.ParseQueryEnum(r, "status", enums.ParseOrderStatus); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if input.CustomerID, err = validators.ParseQueryUUID(r, "customerId"); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list, err := svc.ListOrders(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

// OrdersGet returns one order with its lines.
func OrdersGet(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "order service unavailable"))
			return
		}
		orderID, err := uuidParam(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		order, err := svc.GetOrder(r.Context(), orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}

// OrdersUpdateStatus moves an order through its lifecycle.
func OrdersUpdateStatus(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "order service unavailable"))
			return
		}
		adminID, err := requireAdmin(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		orderID, err := uuidParam(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body updateOrderStatusRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		status, err := enums.ParseOrderStatus(validators.NormalizeEnum(body.OrderStatus))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid orderStatus"))
			return
		}

		order, err := svc.UpdateStatus(r.Context(), orders.UpdateStatusInput{
			OrderID:     orderID,
			Status:      status,
			AdminUserID: adminID,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}

package orders

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/feedmill-backend/internal/pricing"
	"github.com/angelmondragon/feedmill-backend/pkg/db/models"
	"github.com/angelmondragon/feedmill-backend/pkg/enums"
	"github.com/angelmondragon/feedmill-backend/pkg/pagination"
)

// PreviewInput prices a prospective order without writing anything.
type PreviewInput struct {
	Items         []pricing.LineRequest
	DiscountType  *enums.DiscountType
	DiscountValue decimal.Decimal
}

// PlaceOrderInput carries a validated order request and the actors behind it.
type PlaceOrderInput struct {
	AdminUserID   uuid.UUID
	CustomerID    uuid.UUID
	PaymentMethod enums.PaymentMethod
	Items         []pricing.LineRequest
	DiscountType  *enums.DiscountType
	DiscountValue decimal.Decimal
	DeliveryDate  *time.Time
}

// UpdateStatusInput requests a lifecycle transition.
type UpdateStatusInput struct {
	OrderID     uuid.UUID
	Status      enums.OrderStatus
	AdminUserID uuid.UUID
}

// ListOrdersInput filters and pages the order history.
type ListOrdersInput struct {
	Status     *enums.OrderStatus
	CustomerID *uuid.UUID
	Pagination pagination.Params
}

// OrderItemDTO is one persisted order line.
type OrderItemDTO struct {
	ID            uuid.UUID       `json:"id"`
	FeedProductID uuid.UUID       `json:"feedProductId"`
	Name          string          `json:"name,omitempty"`
	Quantity      int             `json:"quantity"`
	PricePerUnit  decimal.Decimal `json:"pricePerUnit"`
	Subtotal      decimal.Decimal `json:"subtotal"`
}

// CustomerSummaryDTO is the customer block embedded in order payloads.
type CustomerSummaryDTO struct {
	ID      uuid.UUID `json:"id"`
	Name    string    `json:"name"`
	Phone   string    `json:"phone"`
	Address string    `json:"address"`
}

// OrderDTO is the order payload returned to clients.
type OrderDTO struct {
	ID            uuid.UUID           `json:"id"`
	CustomerID    uuid.UUID           `json:"customerId"`
	AdminUserID   uuid.UUID           `json:"adminUserId"`
	Customer      *CustomerSummaryDTO `json:"customer,omitempty"`
	PaymentMethod enums.PaymentMethod `json:"paymentMethod"`
	DiscountType  *enums.DiscountType `json:"discountType"`
	DiscountValue decimal.Decimal     `json:"discountValue"`
	TotalAmount   decimal.Decimal     `json:"totalAmount"`
	FinalAmount   decimal.Decimal     `json:"finalAmount"`
	DeliveryDate  *time.Time          `json:"deliveryDate,omitempty"`
	Status        enums.OrderStatus   `json:"orderStatus"`
	Items         []OrderItemDTO      `json:"items"`
	CreatedAt     time.Time           `json:"createdAt"`
	UpdatedAt     time.Time           `json:"updatedAt"`
}

// OrderList is a page of orders.
type OrderList struct {
	Orders     []OrderDTO `json:"orders"`
	NextCursor string     `json:"nextCursor,omitempty"`
}

// NewOrderDTO maps a persisted order and whatever associations were loaded.
func NewOrderDTO(order *models.Order) OrderDTO {
	dto := OrderDTO{
		ID:            order.ID,
		CustomerID:    order.CustomerID,
		AdminUserID:   order.AdminUserID,
		PaymentMethod: order.PaymentMethod,
		DiscountType:  order.DiscountType,
		DiscountValue: order.DiscountValue,
		TotalAmount:   order.TotalAmount,
		FinalAmount:   order.FinalAmount,
		DeliveryDate:  order.DeliveryDate,
		Status:        order.Status,
		Items:         make([]OrderItemDTO, 0, len(order.Items)),
		CreatedAt:     order.CreatedAt,
		UpdatedAt:     order.UpdatedAt,
	}
	if order.Customer != nil {
		dto.Customer = &CustomerSummaryDTO{
			ID:      order.Customer.ID,
			Name:    order.Customer.Name,
			Phone:   order.Customer.Phone,
			Address: order.Customer.Address,
		}
	}
	for _, item := range order.Items {
		line := OrderItemDTO{
			ID:            item.ID,
			FeedProductID: item.FeedProductID,
			Quantity:      item.Quantity,
			PricePerUnit:  item.PricePerUnit,
			Subtotal:      item.Subtotal,
		}
		if item.FeedProduct != nil {
			line.Name = item.FeedProduct.Name
		}
		dto.Items = append(dto.Items, line)
	}
	return dto
}

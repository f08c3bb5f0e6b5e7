package models

import (
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/feedmill-backend/pkg/enums"
)

// Order is a customer purchase of finished feed taken by an admin.
type Order struct {
	ID            uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	CustomerID    uuid.UUID           `gorm:"column:customer_id;type:uuid;not null"`
	AdminUserID   uuid.UUID           `gorm:"column:admin_user_id;type:uuid;not null"`
	PaymentMethod enums.PaymentMethod `gorm:"column:payment_method;type:payment_method;not null"`
	DiscountType  *enums.DiscountType `gorm:"column:discount_type;type:discount_type"`
	DiscountValue decimal.Decimal     `gorm:"column:discount_value;type:numeric(12,2);not null;default:0"`
	TotalAmount   decimal.Decimal     `gorm:"column:total_amount;type:numeric(12,2);not null"`
	FinalAmount   decimal.Decimal     `gorm:"column:final_amount;type:numeric(12,2);not null"`
	DeliveryDate  *time.Time          `gorm:"column:delivery_date"`
	Status        enums.OrderStatus   `gorm:"column:order_status;type:order_status;not null;default:'PENDING'"`
	Customer      *Customer           `gorm:"foreignKey:CustomerID;references:ID"`
	Items         []OrderItem         `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt     time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}

// OrderItem snapshots the unit price at placement time.
type OrderItem struct {
	ID            uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID       uuid.UUID       `gorm:"column:order_id;type:uuid;not null"`
	FeedProductID uuid.UUID       `gorm:"column:feed_product_id;type:uuid;not null"`
	Quantity      int             `gorm:"column:quantity;not null"`
	PricePerUnit  decimal.Decimal `gorm:"column:price_per_unit;type:numeric(12,2);not null"`
	Subtotal      decimal.Decimal `gorm:"column:subtotal;type:numeric(12,2);not null"`
	FeedProduct   *FeedProduct    `gorm:"foreignKey:FeedProductID;references:ID"`
	CreatedAt     time.Time       `gorm:"column:created_at;autoCreateTime"`
}

// MaxQuantity is the largest quantity an integer column holds.
const MaxQuantity = math.MaxInt32

// MaxAmount bounds numeric(12,2) money columns (exclusive).
var MaxAmount = decimal.New(1, 10)

package feeds

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/feedmill-backend/pkg/db/models"
	"github.com/angelmondragon/feedmill-backend/pkg/enums"
)

// CreateFeedInput holds the validated payload to add a feed product.
type CreateFeedInput struct {
	Name         string
	AnimalType   enums.AnimalType
	FeedType     enums.FeedType
	Unit         string
	UnitSize     int
	PricePerUnit decimal.Decimal
}

// FeedDTO is the catalog payload returned to clients.
type FeedDTO struct {
	ID                uuid.UUID        `json:"id"`
	Name              string           `json:"name"`
	AnimalType        enums.AnimalType `json:"animalType"`
	FeedType          enums.FeedType   `json:"feedType"`
	Unit              string           `json:"unit"`
	UnitSize          int              `json:"unitSize"`
	PricePerUnit      decimal.Decimal  `json:"pricePerUnit"`
	QuantityAvailable int              `json:"quantityAvailable"`
	CreatedAt         time.Time        `json:"createdAt"`
	UpdatedAt         time.Time        `json:"updatedAt"`
}

// NewFeedDTO maps a persisted product. A product without a stock row reports
// zero available.
func NewFeedDTO(feed *models.FeedProduct) FeedDTO {
	dto := FeedDTO{
		ID:           feed.ID,
		Name:         feed.Name,
		AnimalType:   feed.AnimalType,
		FeedType:     feed.FeedType,
		Unit:         feed.Unit,
		UnitSize:     feed.UnitSize,
		PricePerUnit: feed.PricePerUnit,
		CreatedAt:    feed.CreatedAt,
		UpdatedAt:    feed.UpdatedAt,
	}
	if feed.Stock != nil {
		dto.QuantityAvailable = feed.Stock.QuantityAvailable
	}
	return dto
}

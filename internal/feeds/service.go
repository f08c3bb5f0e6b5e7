package feeds

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/feedmill-backend/pkg/db"
	"github.com/angelmondragon/feedmill-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/feedmill-backend/pkg/errors"
)

// Service exposes catalog management operations.
type Service interface {
	Create(ctx context.Context, input CreateFeedInput) (*FeedDTO, error)
	UpdateUnitSize(ctx context.Context, id uuid.UUID, unitSize int) (*FeedDTO, error)
	List(ctx context.Context) ([]FeedDTO, error)
}

type service struct {
	repo *Repository
}

// Prices are stored in cents.
const pricePlaces = 2

// NewService constructs the catalog service.
func NewService(repo *Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("feed repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Create(ctx context.Context, input CreateFeedInput) (*FeedDTO, error) {
	input.Name = strings.TrimSpace(input.Name)
	input.Unit = strings.TrimSpace(input.Unit)
	input.PricePerUnit = input.PricePerUnit.Round(pricePlaces)
	if err := validateCreate(input); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	feed := &models.FeedProduct{
		ID:           uuid.New(),
		Name:         input.Name,
		AnimalType:   input.AnimalType,
		FeedType:     input.FeedType,
		Unit:         input.Unit,
		UnitSize:     input.UnitSize,
		PricePerUnit: input.PricePerUnit,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	created, err := s.repo.Create(ctx, feed)
	if err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "a feed product with these details already exists").
				WithDetails(map[string]any{
					"name":       input.Name,
					"animalType": input.AnimalType,
					"feedType":   input.FeedType,
				})
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert feed product")
	}

	dto := NewFeedDTO(created)
	return &dto, nil
}

func (s *service) UpdateUnitSize(ctx context.Context, id uuid.UUID, unitSize int) (*FeedDTO, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "feed id is required")
	}
	if unitSize <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unitSize must be greater than zero")
	}

	affected, err := s.repo.UpdateUnitSize(ctx, id, unitSize)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update unit size")
	}
	if affected == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "feed product not found")
	}

	feed, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "feed product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load feed product")
	}
	dto := NewFeedDTO(feed)
	return &dto, nil
}

func (s *service) List(ctx context.Context) ([]FeedDTO, error) {
	feeds, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list feed products")
	}
	out := make([]FeedDTO, 0, len(feeds))
	for i := range feeds {
		out = append(out, NewFeedDTO(&feeds[i]))
	}
	return out, nil
}

func validateCreate(input CreateFeedInput) error {
	switch {
	case input.Name == "":
		return pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	case !input.AnimalType.IsValid():
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid animalType")
	case !input.FeedType.IsValid():
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid feedType")
	case input.Unit == "":
		return pkgerrors.New(pkgerrors.CodeValidation, "unit is required")
	case input.UnitSize <= 0:
		return pkgerrors.New(pkgerrors.CodeValidation, "unitSize must be greater than zero")
	case !input.PricePerUnit.IsPositive():
		return pkgerrors.New(pkgerrors.CodeValidation, "pricePerUnit must be at least 0.01")
	case input.PricePerUnit.GreaterThanOrEqual(models.MaxAmount):
		return pkgerrors.New(pkgerrors.CodeValidation, "pricePerUnit is too large").
			WithDetails(map[string]any{"max": models.MaxAmount.Sub(decimal.New(1, -pricePlaces)).StringFixed(pricePlaces)})
	}
	return nil
}

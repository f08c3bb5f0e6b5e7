package controllers

import (
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/feedmill-backend/api/responses"
	"github.com/angelmondragon/feedmill-backend/api/validators"
	"github.com/angelmondragon/feedmill-backend/internal/feeds"
	"github.com/angelmondragon/feedmill-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/feedmill-backend/pkg/errors"
	"github.com/angelmondragon/feedmill-backend/pkg/logger"
)

type createFeedRequest struct {
	Name         string          `json:"name" validate:"required,max=120"`
	AnimalType   string          `json:"animalType" validate:"required"`
	FeedType     string          `json:"feedType" validate:"required"`
	Unit         string          `json:"unit" validate:"required,max=20"`
	UnitSize     int             `json:"unitSize" validate:"required,min=1"`
	PricePerUnit decimal.Decimal `json:"pricePerUnit"`
}

func (r createFeedRequest) toInput() (feeds.CreateFeedInput, error) {
	animal, err := enums.ParseAnimalType(validators.NormalizeEnum(r.AnimalType))
	if err != nil {
		return feeds.CreateFeedInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid animalType")
	}
	feedType, err := enums.ParseFeedType(validators.NormalizeEnum(r.FeedType))
	if err != nil {
		return feeds.CreateFeedInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid feedType")
	}
	return feeds.CreateFeedInput{
		Name:         validators.SanitizeString(r.Name, 120),
		AnimalType:   animal,
		FeedType:     feedType,
		Unit:         validators.SanitizeString(r.Unit, 20),
		UnitSize:     r.UnitSize,
		PricePerUnit: r.PricePerUnit,
	}, nil
}

type updateUnitSizeRequest struct {
	UnitSize int `json:"unitSize" validate:"required,min=1"`
}

// FeedsList returns the catalog with current stock balances.
func FeedsList(svc feeds.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "feed service unavailable"))
			return
		}
		list, err := svc.List(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

// FeedsCreate adds a product to the catalog.
func FeedsCreate(svc feeds.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "feed service unavailable"))
			return
		}

		var body createFeedRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		input, err := body.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		feed, err := svc.Create(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, feed)
	}
}

// FeedsUpdateUnitSize changes the package size of a product.
func FeedsUpdateUnitSize(svc feeds.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "feed service unavailable"))
			return
		}

		feedID, err := uuidParam(r, "feedId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body updateUnitSizeRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		feed, err := svc.UpdateUnitSize(r.Context(), feedID, body.UnitSize)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, feed)
	}
}

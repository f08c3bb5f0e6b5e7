package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/angelmondragon/feedmill-backend/api/responses"
	"github.com/angelmondragon/feedmill-backend/api/validators"
	"github.com/angelmondragon/feedmill-backend/internal/stock"
	"github.com/angelmondragon/feedmill-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/feedmill-backend/pkg/errors"
	"github.com/angelmondragon/feedmill-backend/pkg/logger"
)

const maxNoteLen = 500

type recordProductionRequest struct {
	Quantity          int        `json:"quantity" validate:"required,min=1,max=2147483647"`
	ProductionBatchID *uuid.UUID `json:"productionBatchId,omitempty"`
	Note              *string    `json:"note,omitempty"`
}

type adjustStockRequest struct {
	Quantity  int     `json:"quantity" validate:"required,min=1,max=2147483647"`
	Direction string  `json:"direction" validate:"required"`
	Note      *string `json:"note,omitempty"`
}

// StockBalance reports the on-hand quantity of a feed product.
func StockBalance(svc stock.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "stock service unavailable"))
			return
		}
		feedID, err := uuidParam(r, "feedId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		balance, err := svc.GetBalance(r.Context(), feedID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, balance)
	}
}

// StockTransactions pages through a product's ledger, newest first.
func StockTransactions(svc stock.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "stock service unavailable"))
			return
		}
		feedID, err := uuidParam(r, "feedId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		params, err := paginationParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		list, err := svc.ListTransactions(r.Context(), stock.ListTransactionsInput{
			FeedProductID: feedID,
			Pagination:    params,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

// StockRecordProduction books finished units coming off the line.
func StockRecordProduction(svc stock.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "stock service unavailable"))
			return
		}
		feedID, err := uuidParam(r, "feedId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var body recordProductionRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.RecordProduction(r.Context(), stock.RecordProductionInput{
			FeedProductID:     feedID,
			Quantity:          body.Quantity,
			ProductionBatchID: body.ProductionBatchID,
			Note:              optionalString(body.Note, maxNoteLen),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}

// StockAdjust applies a manual correction in either direction.
func StockAdjust(svc stock.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "stock service unavailable"))
			return
		}
		feedID, err := uuidParam(r, "feedId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var body adjustStockRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		direction, err := enums.ParseMovementDirection(validators.NormalizeEnum(body.Direction))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid direction"))
			return
		}

		result, err := svc.Adjust(r.Context(), stock.AdjustInput{
			FeedProductID: feedID,
			Quantity:      body.Quantity,
			Direction:     direction,
			Note:          optionalString(body.Note, maxNoteLen),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}

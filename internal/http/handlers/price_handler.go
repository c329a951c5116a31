package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/pajakoo/kbiz-price-hunter/internal/domain"
	"github.com/pajakoo/kbiz-price-hunter/internal/services"
	"github.com/pajakoo/kbiz-price-hunter/internal/utils"
)

// CreatePriceRequest is the JSON payload for a manual price write. Either
// productId or productSlug identifies the product.
type CreatePriceRequest struct {
	ProductID   string `json:"productId" example:"141add05-4415-4938-b5a1-17e0d3171aff"`
	ProductSlug string `json:"productSlug" example:"zlatna-3800123-paracetamol"`
	StoreID     string `json:"storeId" example:"6f1c1a52-3c56-4c1e-a0a6-6d8b1f6b2b10"`
	// Amount accepts a JSON number or a numeric string.
	Amount   decimal.NullDecimal `json:"amount" swaggertype:"number" example:"4.99"`
	Currency string              `json:"currency" example:"EUR"`
}

// PriceResponse wraps a created price.
type PriceResponse struct {
	OK    bool          `json:"ok" example:"true"`
	Price *domain.Price `json:"price"`
}

// SeriesResponse is a product's price history grouped per store.
type SeriesResponse struct {
	OK      bool                   `json:"ok" example:"true"`
	Product *domain.Product        `json:"product"`
	Series  []services.StoreSeries `json:"series"`
}

// GetPrices godoc
// @ID          getPrices
// @Summary     Price history of a product
// @Description Returns the most recent observations of a product, one oldest-first series per store.
// @Tags        Prices
// @Produce     json
//
// @Param       productId    query  string  false  "Product ID"
// @Param       productSlug  query  string  false  "Product slug"
// @Param       maxPoints    query  int     false  "Observations to load"  minimum(1) maximum(2000) default(1000)
//
// @Success     200  {object}  handlers.SeriesResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     404  {object}  handlers.ErrorResponse  "Product not found"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /prices [get]
func (h *Handlers) GetPrices(c *gin.Context) {
	maxPoints := utils.AtoiDefault(c.Query("maxPoints"), 0)
	product, series, err := h.svc.Prices.Series(c.Request.Context(),
		strings.TrimSpace(c.Query("productId")),
		strings.TrimSpace(c.Query("productSlug")),
		maxPoints)
	if err != nil {
		failErr(c, err, ErrCodeListFailed, "unable to load prices")
		return
	}
	ok(c, http.StatusOK, SeriesResponse{OK: true, Product: product, Series: series})
}

// CreatePrice godoc
// @ID          createPrice
// @Summary     Record a price
// @Description Records one price observation and runs price-drop detection for it. A repeated Idempotency-Key replays the first response.
// @Tags        Prices
// @Accept      json
// @Produce     json
//
// @Param       Idempotency-Key  header  string  false  "Replay key"
// @Param       body             body    handlers.CreatePriceRequest  true  "Price"
//
// @Success     201  {object}  handlers.PriceResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     401  {object}  handlers.ErrorResponse  "Unauthorized"
// @Failure     404  {object}  handlers.ErrorResponse  "Product or store not found"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /prices [post]
func (h *Handlers) CreatePrice(c *gin.Context) {
	var req CreatePriceRequest
	bindJSON(c, &req)

	in := services.PriceInput{
		ProductID:   strings.TrimSpace(req.ProductID),
		ProductSlug: strings.TrimSpace(req.ProductSlug),
		StoreID:     strings.TrimSpace(req.StoreID),
		Currency:    req.Currency,
	}
	if req.Amount.Valid {
		in.Amount = req.Amount.Decimal
	}

	price, err := h.svc.Prices.Create(c.Request.Context(), in)
	if err != nil {
		failErr(c, err, ErrCodeCreateFailed, "unable to create price")
		return
	}
	ok(c, http.StatusCreated, PriceResponse{OK: true, Price: price})
}

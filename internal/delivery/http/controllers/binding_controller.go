package controllers

import (
	"log/slog"
	"net/http"

	"boothsale/internal/delivery/http/helpers"
	"boothsale/internal/domain"
)

// BindProductRequest is the request body for POST /events/{eventID}/products.
// The product is referenced by its catalog code; price defaults to the
// catalog price and is snapshotted for this event either way.
type BindProductRequest struct {
	ProductCode  string   `json:"product_code"`
	InitialStock *int     `json:"initial_stock"`
	Price        *float64 `json:"price"`
}

// Validate implements Validator.
func (b BindProductRequest) Validate() []string {
	var errs []string
	if b.ProductCode == "" {
		errs = append(errs, "product_code is required")
	}
	if b.InitialStock == nil {
		errs = append(errs, "initial_stock is required")
	} else if *b.InitialStock < 0 {
		errs = append(errs, "initial_stock must not be negative")
	}
	if b.Price != nil && *b.Price < 0 {
		errs = append(errs, "price must not be negative")
	}
	return errs
}

// AdjustStockRequest is the request body for PUT /products/{id}/stock.
type AdjustStockRequest struct {
	Delta *int `json:"delta"`
}

// Validate implements Validator.
func (a AdjustStockRequest) Validate() []string {
	if a.Delta == nil || *a.Delta == 0 {
		return []string{"delta (non-zero integer) is required"}
	}
	return nil
}

// UpdateBindingPriceRequest is the request body for PUT /products/{id}.
type UpdateBindingPriceRequest struct {
	Price *float64 `json:"price"`
}

// Validate implements Validator.
func (u UpdateBindingPriceRequest) Validate() []string {
	if u.Price == nil {
		return []string{"price is required"}
	}
	if *u.Price < 0 {
		return []string{"price must not be negative"}
	}
	return nil
}

type BindingController struct {
	Logger  *slog.Logger
	Service domain.BindingService
}

func NewBindingController(logger *slog.Logger, svc domain.BindingService) *BindingController {
	return &BindingController{
		Logger:  logger,
		Service: svc,
	}
}

func (c *BindingController) writeError(w http.ResponseWriter, r *http.Request, err error) {
	if helpers.IsInternal(err) {
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
	}
	helpers.WriteDomainError(w, err)
}

// ListForEvent godoc
// @Summary List products available at an event
// @Description Returns the event's products with live stock, excluding catalog-deactivated ones. Public: customers load this from the shared event link.
// @Tags event-products
// @Produce json
// @Param eventID path string true "Event ID (UUID)"
// @Success 200 {object} helpers.APIResponse "data contains the product list"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /events/{eventID}/products [get]
func (c *BindingController) ListForEvent(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("eventID")
	if eventID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing eventID")
		return
	}
	views, err := c.Service.ListForEvent(r.Context(), eventID)
	if err != nil {
		c.writeError(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, views)
}

// BindProduct godoc
// @Summary Bind a catalog product to an event
// @Description Exposes a catalog product at this event with an initial stock. Fails for unknown or inactive products and for duplicate bindings.
// @Tags event-products
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Param body body BindProductRequest true "Binding data"
// @Success 201 {object} helpers.APIResponse "data contains the created binding"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict"
// @Router /events/{eventID}/products [post]
func (c *BindingController) BindProduct(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("eventID")
	if eventID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing eventID")
		return
	}
	var req BindProductRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	ep, err := c.Service.BindProductByCode(r.Context(), eventID, req.ProductCode, *req.InitialStock, req.Price)
	if err != nil {
		c.writeError(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, ep)
}

// AdjustStock godoc
// @Summary Adjust event stock
// @Description Applies a manual stock delta (restock or correction). Fails if the result would be negative.
// @Tags event-products
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Event product ID (UUID)"
// @Param body body AdjustStockRequest true "Stock delta"
// @Success 200 {object} helpers.APIResponse "data contains the updated binding"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Router /products/{id}/stock [put]
func (c *BindingController) AdjustStock(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing product id")
		return
	}
	var req AdjustStockRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	ep, err := c.Service.AdjustStock(r.Context(), id, *req.Delta)
	if err != nil {
		c.writeError(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, ep)
}

// UpdatePrice godoc
// @Summary Update an event product's price
// @Description Changes price_at_event for future orders. Unit prices on already-placed orders are never touched.
// @Tags event-products
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Event product ID (UUID)"
// @Param body body UpdateBindingPriceRequest true "New price"
// @Success 200 {object} helpers.APIResponse "data contains the updated binding"
// @Router /products/{id} [put]
func (c *BindingController) UpdatePrice(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing product id")
		return
	}
	var req UpdateBindingPriceRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	ep, err := c.Service.UpdatePrice(r.Context(), id, *req.Price)
	if err != nil {
		c.writeError(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, ep)
}

// Unbind godoc
// @Summary Remove a product from an event
// @Description Deletes the binding. Rejected with a conflict once any order references it.
// @Tags event-products
// @Produce json
// @Security BearerAuth
// @Param id path string true "Event product ID (UUID)"
// @Success 204 "no content"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict"
// @Router /products/{id} [delete]
func (c *BindingController) Unbind(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing product id")
		return
	}
	if err := c.Service.Unbind(r.Context(), id); err != nil {
		c.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

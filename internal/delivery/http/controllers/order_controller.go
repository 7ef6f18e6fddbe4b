package controllers

import (
	"log/slog"
	"net/http"

	"boothsale/internal/delivery/http/helpers"
	"boothsale/internal/domain"
)

// SubmitOrderRequest is the request body for POST /events/{eventID}/orders.
// Items are sent verbatim from the customer's cart; the server is the only
// authority on whether they can be fulfilled.
type SubmitOrderRequest struct {
	Items []domain.CartLine `json:"items"`
}

// Validate implements Validator. Quantity and stock checks belong to the
// engine; only the shape is validated here.
func (s SubmitOrderRequest) Validate() []string {
	if len(s.Items) == 0 {
		return []string{"items must be a non-empty list"}
	}
	return nil
}

// OrderListResponse is the paginated response body for GET /events/{eventID}/orders.
type OrderListResponse struct {
	Orders []*domain.Order `json:"orders"`
	Total  int             `json:"total"`
	Page   int             `json:"page"`
}

type OrderController struct {
	Logger  *slog.Logger
	Service domain.OrderService
}

func NewOrderController(logger *slog.Logger, svc domain.OrderService) *OrderController {
	return &OrderController{
		Logger:  logger,
		Service: svc,
	}
}

func (c *OrderController) writeError(w http.ResponseWriter, r *http.Request, err error) {
	if helpers.IsInternal(err) {
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
	}
	helpers.WriteDomainError(w, err)
}

// SubmitOrder godoc
// @Summary Submit a customer order
// @Description Commits the cart atomically against live stock. Either every line's stock decrement and the order insert succeed together, or the whole submission is rejected and nothing changes. Rejections name the products that are short.
// @Tags orders
// @Accept json
// @Produce json
// @Param eventID path string true "Event ID (UUID)"
// @Param body body SubmitOrderRequest true "Cart lines"
// @Success 201 {object} helpers.APIResponse "data contains the created order"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: event_not_open or insufficient_stock"
// @Failure 503 {object} helpers.APIResponse "error.code: timeout (retryable)"
// @Router /events/{eventID}/orders [post]
func (c *OrderController) SubmitOrder(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("eventID")
	if eventID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing eventID")
		return
	}
	var req SubmitOrderRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	order, err := c.Service.SubmitOrder(r.Context(), eventID, req.Items)
	if err != nil {
		c.writeError(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, order)
}

// ListOrders godoc
// @Summary List an event's orders
// @Description Returns the event's orders, newest first, paginated.
// @Tags orders
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Param page query int false "Page (default 1)"
// @Param page_size query int false "Page size (default 20, max 100)"
// @Success 200 {object} helpers.APIResponse "data contains orders, total, and page"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /events/{eventID}/orders [get]
func (c *OrderController) ListOrders(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("eventID")
	if eventID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing eventID")
		return
	}
	p := helpers.ParsePagination(r)
	orders, total, err := c.Service.ListOrders(r.Context(), eventID, p)
	if err != nil {
		c.writeError(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, OrderListResponse{Orders: orders, Total: total, Page: p.Page})
}

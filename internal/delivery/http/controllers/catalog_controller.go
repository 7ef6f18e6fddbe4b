package controllers

import (
	"log/slog"
	"net/http"

	"boothsale/internal/delivery/http/helpers"
	"boothsale/internal/domain"
)

// MasterProductRequest is the request body for creating or updating a catalog product.
type MasterProductRequest struct {
	ProductCode string  `json:"product_code"`
	Name        string  `json:"name"`
	Price       float64 `json:"price"`
	ImageURL    *string `json:"image_url"`
}

// Validate implements Validator.
func (m MasterProductRequest) Validate() []string {
	var errs []string
	if m.ProductCode == "" {
		errs = append(errs, "product_code is required")
	}
	if m.Name == "" {
		errs = append(errs, "name is required")
	}
	if m.Price < 0 {
		errs = append(errs, "price must not be negative")
	}
	return errs
}

// SetActiveRequest is the request body for PUT /master-products/{id}/status.
type SetActiveRequest struct {
	IsActive *bool `json:"is_active"`
}

// Validate implements Validator.
func (s SetActiveRequest) Validate() []string {
	if s.IsActive == nil {
		return []string{"is_active (boolean) is required"}
	}
	return nil
}

type CatalogController struct {
	Logger  *slog.Logger
	Service domain.CatalogService
}

func NewCatalogController(logger *slog.Logger, svc domain.CatalogService) *CatalogController {
	return &CatalogController{
		Logger:  logger,
		Service: svc,
	}
}

func (c *CatalogController) writeError(w http.ResponseWriter, r *http.Request, err error) {
	if helpers.IsInternal(err) {
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
	}
	helpers.WriteDomainError(w, err)
}

// CreateProduct godoc
// @Summary Create a catalog product
// @Description Adds a product to the master catalog. product_code must be unique.
// @Tags catalog
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param product body MasterProductRequest true "Product data"
// @Success 201 {object} helpers.APIResponse "data contains the created product"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict"
// @Router /master-products [post]
func (c *CatalogController) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req MasterProductRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	product, err := c.Service.CreateProduct(r.Context(), domain.MasterProductSpec{
		ProductCode: req.ProductCode,
		Name:        req.Name,
		Price:       req.Price,
		ImageURL:    req.ImageURL,
	})
	if err != nil {
		c.writeError(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, product)
}

// ListProducts godoc
// @Summary List catalog products
// @Description Lists catalog products ordered by product_code. Pass all=true to include deactivated products.
// @Tags catalog
// @Produce json
// @Security BearerAuth
// @Param all query bool false "Include inactive products"
// @Success 200 {object} helpers.APIResponse "data contains the product list"
// @Router /master-products [get]
func (c *CatalogController) ListProducts(w http.ResponseWriter, r *http.Request) {
	includeInactive := r.URL.Query().Get("all") == "true"
	products, err := c.Service.List(r.Context(), includeInactive)
	if err != nil {
		c.writeError(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, products)
}

// UpdateProduct godoc
// @Summary Update a catalog product
// @Description Rewrites the product's code, name, price, and image. Event bindings keep their snapshotted price.
// @Tags catalog
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Product ID (UUID)"
// @Param product body MasterProductRequest true "Product data"
// @Success 200 {object} helpers.APIResponse "data contains the updated product"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /master-products/{id} [put]
func (c *CatalogController) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing product id")
		return
	}
	var req MasterProductRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	product, err := c.Service.UpdateProduct(r.Context(), id, domain.MasterProductSpec{
		ProductCode: req.ProductCode,
		Name:        req.Name,
		Price:       req.Price,
		ImageURL:    req.ImageURL,
	})
	if err != nil {
		c.writeError(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, product)
}

// SetActive godoc
// @Summary Activate or deactivate a catalog product
// @Description Deactivated products stay referenced by historical orders but cannot be bound to new events.
// @Tags catalog
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Product ID (UUID)"
// @Param body body SetActiveRequest true "Active flag"
// @Success 200 {object} helpers.APIResponse "data contains the updated product"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /master-products/{id}/status [put]
func (c *CatalogController) SetActive(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing product id")
		return
	}
	var req SetActiveRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	product, err := c.Service.SetActive(r.Context(), id, *req.IsActive)
	if err != nil {
		c.writeError(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, product)
}

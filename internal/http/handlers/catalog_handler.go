package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/pajakoo/kbiz-price-hunter/internal/catalog"
	"github.com/pajakoo/kbiz-price-hunter/internal/domain"
	"github.com/pajakoo/kbiz-price-hunter/internal/repo"
	"github.com/pajakoo/kbiz-price-hunter/internal/services"
)

//
// DTOs
//

// CreateProductRequest is the JSON payload for a manual product.
type CreateProductRequest struct {
	Slug        string `json:"slug" example:"zlatna-3800123-paracetamol"`
	Name        string `json:"name" example:"Парацетамол таблетки 500 мг"`
	Description string `json:"description" example:"Парацетамол таблетки 500 мг"`
}

// CreateStoreRequest is the JSON payload for a manual store.
type CreateStoreRequest struct {
	Name string `json:"name" example:"Аптека Златна"`
	City string `json:"city" example:"София"`
}

// ProductResponse wraps one product.
type ProductResponse struct {
	OK      bool            `json:"ok" example:"true"`
	Product *domain.Product `json:"product"`
}

// ListProductsResponse is a page of the catalog.
type ListProductsResponse struct {
	OK         bool             `json:"ok" example:"true"`
	Products   []domain.Product `json:"products"`
	Pagination Pagination       `json:"pagination"`
}

// CategoriesResponse lists the product taxonomy.
type CategoriesResponse struct {
	OK         bool               `json:"ok" example:"true"`
	Categories []catalog.Category `json:"categories"`
}

// StoreResponse wraps one store.
type StoreResponse struct {
	OK    bool          `json:"ok" example:"true"`
	Store *domain.Store `json:"store"`
}

// StoresResponse lists stores by name.
type StoresResponse struct {
	OK     bool           `json:"ok" example:"true"`
	Stores []domain.Store `json:"stores"`
}

//
// Products
//

// ListProducts godoc
// @ID          listProducts
// @Summary     List products (paginated)
// @Description Returns a page of the catalog ordered by name. Supports weak ETag via If-None-Match and may return 304.
// @Tags        Catalog
// @Produce     json
//
// @Param       If-None-Match  header  string  false  "Return 304 if ETag matches"  example(W/\"products:12:1740787200\")
// @Param       q              query   string  false  "Substring of name or slug"
// @Param       category       query   string  false  "Category slug"  example(lekarstva)
// @Param       page           query   int     false  "Page number"     minimum(1) default(1)
// @Param       page_size      query   int     false  "Items per page"  minimum(1) maximum(100) default(20)
//
// @Success     200  {object}  handlers.ListProductsResponse
// @Header      200  {string}  ETag  "Weak ETag for current result"
// @Success     304  {string}  string  "Not Modified"
// @Failure     400  {object}  handlers.ErrorResponse  "Unknown category"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /products [get]
func (h *Handlers) ListProducts(c *gin.Context) {
	ctx := c.Request.Context()
	f := repo.ProductFilter{
		Query:    strings.TrimSpace(c.Query("q")),
		Category: strings.TrimSpace(c.Query("category")),
	}
	if f.Category != "" && !catalog.IsCategory(f.Category) {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "unknown category")
		return
	}
	page, pageSize := clampPagination(c)

	// ETag pre-check (best effort).
	if count, maxTS, err := h.svc.Catalog.ProductsStats(ctx, f); err == nil {
		var ts int64
		if maxTS != nil {
			ts = maxTS.Unix()
		}
		etag := fmt.Sprintf(`W/"products:%d:%d"`, count, ts)
		c.Header("ETag", etag)
		if inm := c.GetHeader("If-None-Match"); inm != "" && inm == etag {
			c.Status(http.StatusNotModified)
			return
		}
	}

	items, total, err := h.svc.Catalog.ListProducts(ctx, f, page, pageSize)
	if err != nil {
		failErr(c, err, ErrCodeListFailed, "unable to list products")
		return
	}
	ok(c, http.StatusOK, ListProductsResponse{
		OK:         true,
		Products:   items,
		Pagination: newPagination(page, pageSize, total),
	})
}

// GetProduct godoc
// @ID          getProduct
// @Summary     Get a product by slug
// @Tags        Catalog
// @Produce     json
// @Param       slug  path  string  true  "Product slug"
// @Success     200  {object}  handlers.ProductResponse
// @Failure     404  {object}  handlers.ErrorResponse  "Product not found"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /products/{slug} [get]
func (h *Handlers) GetProduct(c *gin.Context) {
	p, err := h.svc.Catalog.GetProduct(c.Request.Context(), c.Param("slug"))
	if err != nil {
		failErr(c, err, ErrCodeInternal, "unable to load product")
		return
	}
	ok(c, http.StatusOK, ProductResponse{OK: true, Product: p})
}

// CreateProduct godoc
// @ID          createProduct
// @Summary     Create a product
// @Description Creates a catalog product; categories are assigned from its name and description.
// @Tags        Catalog
// @Accept      json
// @Produce     json
// @Param       body  body  handlers.CreateProductRequest  true  "Product"
// @Success     201  {object}  handlers.ProductResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     401  {object}  handlers.ErrorResponse  "Unauthorized"
// @Failure     409  {object}  handlers.ErrorResponse  "Slug exists"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /products [post]
func (h *Handlers) CreateProduct(c *gin.Context) {
	var req CreateProductRequest
	bindJSON(c, &req)

	p, err := h.svc.Catalog.CreateProduct(c.Request.Context(), services.ProductInput{
		Slug:        req.Slug,
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		failErr(c, err, ErrCodeCreateFailed, "unable to create product")
		return
	}
	ok(c, http.StatusCreated, ProductResponse{OK: true, Product: p})
}

// ListCategories godoc
// @ID          listCategories
// @Summary     List product categories
// @Tags        Catalog
// @Produce     json
// @Success     200  {object}  handlers.CategoriesResponse
// @Router      /categories [get]
func (h *Handlers) ListCategories(c *gin.Context) {
	ok(c, http.StatusOK, CategoriesResponse{OK: true, Categories: catalog.Categories()})
}

//
// Stores
//

// ListStores godoc
// @ID          listStores
// @Summary     List stores
// @Tags        Catalog
// @Produce     json
// @Success     200  {object}  handlers.StoresResponse
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /stores [get]
func (h *Handlers) ListStores(c *gin.Context) {
	stores, err := h.svc.Catalog.ListStores(c.Request.Context())
	if err != nil {
		failErr(c, err, ErrCodeListFailed, "unable to list stores")
		return
	}
	ok(c, http.StatusOK, StoresResponse{OK: true, Stores: stores})
}

// CreateStore godoc
// @ID          createStore
// @Summary     Create a store
// @Tags        Catalog
// @Accept      json
// @Produce     json
// @Param       body  body  handlers.CreateStoreRequest  true  "Store"
// @Success     201  {object}  handlers.StoreResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     401  {object}  handlers.ErrorResponse  "Unauthorized"
// @Failure     409  {object}  handlers.ErrorResponse  "Store exists"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /stores [post]
func (h *Handlers) CreateStore(c *gin.Context) {
	var req CreateStoreRequest
	bindJSON(c, &req)

	s, err := h.svc.Catalog.CreateStore(c.Request.Context(), req.Name, req.City)
	if err != nil {
		failErr(c, err, ErrCodeCreateFailed, "unable to create store")
		return
	}
	ok(c, http.StatusCreated, StoreResponse{OK: true, Store: s})
}

package main

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/MikeMC777/storefront-api/internal/apperr"
	"github.com/MikeMC777/storefront-api/internal/httpx"
	prod "github.com/MikeMC777/storefront-api/internal/product"
)

// parseListFilter reads category, featured, sort and limit from the query string.
func parseListFilter(c *gin.Context) (prod.Filter, error) {
	var f prod.Filter
	if raw, ok := c.GetQuery("category"); ok && raw != "" {
		cat := prod.Category(raw)
		f.Category = &cat
	}
	if raw, ok := c.GetQuery("featured"); ok && raw != "" {
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return f, apperr.Enum("featured", raw, []string{"true", "false"})
		}
		f.Featured = &b
	}
	f.Sort = c.Query("sort")
	if raw := strings.TrimSpace(c.Query("limit")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			return f, apperr.Range("limit", "limit must be a positive integer")
		}
		f.Limit = n
	}
	return f, nil
}

// listProductsHandler godoc
// @Summary  List products
// @Tags     products
// @Produce  json
// @Param    category query string false "Category filter"
// @Param    featured query bool   false "Featured filter"
// @Param    sort     query string false "Sort field, '-' prefix for descending" default(-createdAt)
// @Param    limit    query int    false "Maximum results" default(50)
// @Success  200 {object} httpx.Envelope
// @Failure  400 {object} httpx.Envelope
// @Router   /api/products [get]
func listProductsHandler(svc *prod.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		f, err := parseListFilter(c)
		if err != nil {
			httpx.Fail(c, err)
			return
		}
		items, err := svc.List(c.Request.Context(), f)
		if err != nil {
			httpx.Fail(c, err)
			return
		}
		httpx.List(c, items, len(items))
	}
}

// getProductHandler godoc
// @Summary  Get a product
// @Tags     products
// @Produce  json
// @Param    id path string true "Product ID"
// @Success  200 {object} httpx.Envelope
// @Failure  400 {object} httpx.Envelope
// @Failure  404 {object} httpx.Envelope
// @Router   /api/products/{id} [get]
func getProductHandler(svc *prod.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, err := svc.Get(c.Request.Context(), c.Param("id"))
		if err != nil {
			httpx.Fail(c, err)
			return
		}
		httpx.OK(c, http.StatusOK, p)
	}
}

// createProductHandler godoc
// @Summary  Create a product
// @Tags     products
// @Accept   json
// @Produce  json
// @Param    product body prod.CreateProductRequest true "product"
// @Success  201 {object} httpx.Envelope
// @Failure  400 {object} httpx.Envelope
// @Router   /api/products [post]
func createProductHandler(svc *prod.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req prod.CreateProductRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			httpx.BadRequest(c, "invalid json: "+err.Error())
			return
		}
		p, err := svc.Create(c.Request.Context(), req)
		if err != nil {
			httpx.Fail(c, err)
			return
		}
		httpx.OK(c, http.StatusCreated, p)
	}
}

// updateProductHandler godoc
// @Summary  Update a product (partial)
// @Tags     products
// @Accept   json
// @Produce  json
// @Param    id      path string                    true "Product ID"
// @Param    product body prod.UpdateProductRequest true "fields"
// @Success  200 {object} httpx.Envelope
// @Failure  400 {object} httpx.Envelope
// @Failure  404 {object} httpx.Envelope
// @Router   /api/products/{id} [put]
func updateProductHandler(svc *prod.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req prod.UpdateProductRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			httpx.BadRequest(c, "invalid json: "+err.Error())
			return
		}
		p, err := svc.Update(c.Request.Context(), c.Param("id"), req)
		if err != nil {
			httpx.Fail(c, err)
			return
		}
		httpx.OK(c, http.StatusOK, p)
	}
}

// deleteProductHandler godoc
// @Summary  Delete a product
// @Tags     products
// @Produce  json
// @Param    id path string true "Product ID"
// @Success  200 {object} httpx.Envelope
// @Failure  404 {object} httpx.Envelope
// @Router   /api/products/{id} [delete]
func deleteProductHandler(svc *prod.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
			httpx.Fail(c, err)
			return
		}
		httpx.OK(c, http.StatusOK, gin.H{"id": c.Param("id")})
	}
}

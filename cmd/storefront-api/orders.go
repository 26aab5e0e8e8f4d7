package main

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/MikeMC777/storefront-api/internal/httpx"
	ord "github.com/MikeMC777/storefront-api/internal/order"
	"github.com/MikeMC777/storefront-api/internal/stats"
)

// createOrderHandler godoc
// @Summary  Create an order
// @Tags     orders
// @Accept   json
// @Produce  json
// @Param    order body ord.CreateOrderRequest true "order"
// @Success  201 {object} httpx.Envelope
// @Failure  400 {object} httpx.Envelope
// @Failure  404 {object} httpx.Envelope
// @Router   /api/orders [post]
func createOrderHandler(svc *ord.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req ord.CreateOrderRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			httpx.BadRequest(c, "invalid json: "+err.Error())
			return
		}
		v, err := svc.Create(c.Request.Context(), req)
		if err != nil {
			httpx.Fail(c, err)
			return
		}
		httpx.OK(c, http.StatusCreated, v)
	}
}

// listOrdersHandler godoc
// @Summary  List the 100 most recent orders
// @Tags     orders
// @Produce  json
// @Success  200 {object} httpx.Envelope
// @Router   /api/orders [get]
func listOrdersHandler(svc *ord.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		views, err := svc.List(c.Request.Context())
		if err != nil {
			httpx.Fail(c, err)
			return
		}
		httpx.List(c, views, len(views))
	}
}

// getOrderHandler godoc
// @Summary  Get an order with resolved line items
// @Tags     orders
// @Produce  json
// @Param    id path string true "Order ID"
// @Success  200 {object} httpx.Envelope
// @Failure  404 {object} httpx.Envelope
// @Router   /api/orders/{id} [get]
func getOrderHandler(svc *ord.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		v, err := svc.Get(c.Request.Context(), c.Param("id"))
		if err != nil {
			httpx.Fail(c, err)
			return
		}
		httpx.OK(c, http.StatusOK, v)
	}
}

// updateOrderStatusHandler godoc
// @Summary  Change an order's status
// @Tags     orders
// @Accept   json
// @Produce  json
// @Param    id     path string                  true "Order ID"
// @Param    status body ord.UpdateStatusRequest true "status"
// @Success  200 {object} httpx.Envelope
// @Failure  400 {object} httpx.Envelope
// @Failure  404 {object} httpx.Envelope
// @Router   /api/orders/{id}/status [patch]
func updateOrderStatusHandler(svc *ord.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req ord.UpdateStatusRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			httpx.BadRequest(c, "invalid json: "+err.Error())
			return
		}
		v, err := svc.UpdateStatus(c.Request.Context(), c.Param("id"), req.Status)
		if err != nil {
			httpx.Fail(c, err)
			return
		}
		httpx.OK(c, http.StatusOK, v)
	}
}

// statsHandler godoc
// @Summary  Counts, revenue and recent orders
// @Tags     stats
// @Produce  json
// @Success  200 {object} httpx.Envelope
// @Router   /api/stats [get]
func statsHandler(svc *stats.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		snap, err := svc.Snapshot(c.Request.Context())
		if err != nil {
			httpx.Fail(c, err)
			return
		}
		httpx.OK(c, http.StatusOK, snap)
	}
}

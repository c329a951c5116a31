package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/pajakoo/kbiz-price-hunter/internal/domain"
	"github.com/pajakoo/kbiz-price-hunter/internal/services"
)

// AlertRequest identifies the product of a subscription change.
type AlertRequest struct {
	ProductID   string `json:"productId" example:"141add05-4415-4938-b5a1-17e0d3171aff"`
	ProductSlug string `json:"productSlug" example:"zlatna-3800123-paracetamol"`
}

// SubscriptionsResponse lists the caller's subscriptions, newest first.
type SubscriptionsResponse struct {
	OK            bool                    `json:"ok" example:"true"`
	Subscriptions []services.Subscription `json:"subscriptions"`
}

// SubscribeResponse names the (new or existing) subscription.
type SubscribeResponse struct {
	OK             bool   `json:"ok" example:"true"`
	SubscriptionID string `json:"subscriptionId" example:"0b7e7c8e-8a43-4d7d-9b56-4a3f3c4a9f11"`
}

// NotificationsResponse is a page of the caller's drop notifications.
type NotificationsResponse struct {
	OK            bool                            `json:"ok" example:"true"`
	Notifications []domain.PriceAlertNotification `json:"notifications"`
	Pagination    Pagination                      `json:"pagination"`
}

// ListAlerts godoc
// @ID          listAlerts
// @Summary     List price-drop subscriptions
// @Tags        Alerts
// @Produce     json
// @Success     200  {object}  handlers.SubscriptionsResponse
// @Failure     401  {object}  handlers.ErrorResponse  "Unauthorized"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /alerts [get]
func (h *Handlers) ListAlerts(c *gin.Context) {
	subs, err := h.svc.Alerts.List(c.Request.Context(), userID(c))
	if err != nil {
		failErr(c, err, ErrCodeListFailed, "unable to list subscriptions")
		return
	}
	ok(c, http.StatusOK, SubscriptionsResponse{OK: true, Subscriptions: subs})
}

// CreateAlert godoc
// @ID          createAlert
// @Summary     Subscribe to price drops
// @Description Subscribes the caller to drops of a product. Subscribing twice returns the existing subscription.
// @Tags        Alerts
// @Accept      json
// @Produce     json
// @Param       body  body  handlers.AlertRequest  true  "Product"
// @Success     200  {object}  handlers.SubscribeResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     401  {object}  handlers.ErrorResponse  "Unauthorized"
// @Failure     404  {object}  handlers.ErrorResponse  "Product not found"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /alerts [post]
func (h *Handlers) CreateAlert(c *gin.Context) {
	var req AlertRequest
	bindJSON(c, &req)

	sub, err := h.svc.Alerts.Subscribe(c.Request.Context(), userID(c),
		strings.TrimSpace(req.ProductID), strings.TrimSpace(req.ProductSlug))
	if err != nil {
		failErr(c, err, ErrCodeCreateFailed, "unable to subscribe")
		return
	}
	ok(c, http.StatusOK, SubscribeResponse{OK: true, SubscriptionID: sub.ID})
}

// DeleteAlert godoc
// @ID          deleteAlert
// @Summary     Unsubscribe from price drops
// @Description Removes the caller's subscription to a product. The product ID comes from the JSON body or the productId query parameter. Unknown subscriptions are ignored.
// @Tags        Alerts
// @Accept      json
// @Produce     json
// @Param       productId  query  string                 false  "Product ID"
// @Param       body       body   handlers.AlertRequest  false  "Product"
// @Success     200  {object}  handlers.OKResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     401  {object}  handlers.ErrorResponse  "Unauthorized"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /alerts [delete]
func (h *Handlers) DeleteAlert(c *gin.Context) {
	var req AlertRequest
	bindJSON(c, &req)
	productID := strings.TrimSpace(req.ProductID)
	if productID == "" {
		productID = strings.TrimSpace(c.Query("productId"))
	}
	if productID == "" {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "productId is required")
		return
	}

	if err := h.svc.Alerts.Unsubscribe(c.Request.Context(), userID(c), productID); err != nil {
		failErr(c, err, ErrCodeInternal, "unable to unsubscribe")
		return
	}
	ok(c, http.StatusOK, OKResponse{OK: true})
}

// ListNotifications godoc
// @ID          listNotifications
// @Summary     List price-drop notifications
// @Tags        Alerts
// @Produce     json
// @Param       page       query  int  false  "Page number"     minimum(1) default(1)
// @Param       page_size  query  int  false  "Items per page"  minimum(1) maximum(100) default(20)
// @Success     200  {object}  handlers.NotificationsResponse
// @Failure     401  {object}  handlers.ErrorResponse  "Unauthorized"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /alerts/notifications [get]
func (h *Handlers) ListNotifications(c *gin.Context) {
	page, pageSize := clampPagination(c)
	items, total, err := h.svc.Alerts.ListNotifications(c.Request.Context(), userID(c), page, pageSize)
	if err != nil {
		failErr(c, err, ErrCodeListFailed, "unable to list notifications")
		return
	}
	ok(c, http.StatusOK, NotificationsResponse{
		OK:            true,
		Notifications: items,
		Pagination:    newPagination(page, pageSize, total),
	})
}

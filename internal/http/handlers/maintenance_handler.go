package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// MaintenanceResponse reports how many rows a maintenance run changed.
type MaintenanceResponse struct {
	OK      bool `json:"ok" example:"true"`
	Updated int  `json:"updated" example:"42"`
}

// ReclassifyCategories godoc
// @ID          reclassifyCategories
// @Summary     Re-run the category classifier
// @Description Recomputes the categories of every product from its name and description.
// @Tags        Maintenance
// @Produce     json
// @Success     200  {object}  handlers.MaintenanceResponse
// @Failure     401  {object}  handlers.ErrorResponse  "Unauthorized"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /maintenance/categories [post]
func (h *Handlers) ReclassifyCategories(c *gin.Context) {
	n, err := h.svc.Catalog.ReclassifyProducts(c.Request.Context())
	if err != nil {
		failErr(c, err, ErrCodeMaintenance, "reclassification failed")
		return
	}
	ok(c, http.StatusOK, MaintenanceResponse{OK: true, Updated: n})
}

// RenormalizeCities godoc
// @ID          renormalizeCities
// @Summary     Resolve missing store cities
// @Description Re-runs city normalization for stores whose city is empty or a numeric region code.
// @Tags        Maintenance
// @Produce     json
// @Success     200  {object}  handlers.MaintenanceResponse
// @Failure     401  {object}  handlers.ErrorResponse  "Unauthorized"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /maintenance/cities [post]
func (h *Handlers) RenormalizeCities(c *gin.Context) {
	n, err := h.svc.Catalog.RenormalizeCities(c.Request.Context())
	if err != nil {
		failErr(c, err, ErrCodeMaintenance, "city normalization failed")
		return
	}
	ok(c, http.StatusOK, MaintenanceResponse{OK: true, Updated: n})
}

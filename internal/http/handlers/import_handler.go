package handlers

import (
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/pajakoo/kbiz-price-hunter/internal/services"
)

// ImportResponse reports what one CSV upload created.
type ImportResponse struct {
	OK bool `json:"ok" example:"true"`
	services.ImportResult
}

// ImportCSV godoc
// @ID          importCSV
// @Summary     Import a supplier CSV
// @Description Imports stores, products and prices from a supplier CSV. Rows with a missing name, store or price are skipped. Every new price runs price-drop detection. A repeated Idempotency-Key replays the first response.
// @Tags        Import
// @Accept      multipart/form-data
// @Produce     json
//
// @Param       Idempotency-Key  header    string  false  "Replay key"  example(upload-2025-03-01)
// @Param       file             formData  file    true   "CSV file"
// @Param       recordedAt       formData  string  true   "Observation date (YYYY-MM-DD)"  example(2025-03-01)
//
// @Success     200  {object}  handlers.ImportResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     401  {object}  handlers.ErrorResponse  "Unauthorized"
// @Failure     413  {object}  handlers.ErrorResponse  "File too large"
// @Failure     500  {object}  handlers.ErrorResponse  "Import failed"
// @Router      /import/csv [post]
func (h *Handlers) ImportCSV(c *gin.Context) {
	fh, err := c.FormFile("file")
	var tooBig *http.MaxBytesError
	if errors.As(err, &tooBig) {
		fail(c, http.StatusRequestEntityTooLarge, ErrCodeTooLarge, "CSV file is too large.")
		return
	}
	if err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "CSV file is required.")
		return
	}
	if fh.Size > h.opts.MaxUploadBytes {
		fail(c, http.StatusRequestEntityTooLarge, ErrCodeTooLarge, "CSV file is too large.")
		return
	}

	recordedAt, err := time.ParseInLocation(time.DateOnly, strings.TrimSpace(c.PostForm("recordedAt")), time.UTC)
	if err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "Recorded date is required.")
		return
	}

	f, err := fh.Open()
	if err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "CSV file is unreadable.")
		return
	}
	defer f.Close()
	content, err := io.ReadAll(io.LimitReader(f, h.opts.MaxUploadBytes))
	if err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "CSV file is unreadable.")
		return
	}

	var source *string
	if name := strings.TrimSpace(fh.Filename); name != "" {
		source = &name
	}

	res, err := h.svc.Import.Import(c.Request.Context(), string(content), recordedAt, source)
	if err != nil {
		failErr(c, err, ErrCodeImportFailed, "import failed")
		return
	}
	ok(c, http.StatusOK, ImportResponse{OK: true, ImportResult: *res})
}

package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rentwise/rental-api/internal/domain"
)

const (
	codeMethodNotAllowed    = "method_not_allowed"
	codeNotFound            = "not_found"
	codeInvalidRequestBody  = "invalid_request_body"
	codeValidationError     = "validation_error"
	codeInvalidDates        = "invalid_dates"
	codeInvalidID           = "invalid_id"
	codeOrderNotFound       = "order_not_found"
	codeItemNotFound        = "item_not_found"
	codeInventoryNotFound   = "inventory_not_found"
	codeDuplicateItem       = "duplicate_item"
	codeNoItems             = "no_items"
	codeNotEligible         = "not_eligible"
	codeItemDeleted         = "item_deleted"
	codeInvalidStatusFilter = "invalid_status_filter"
	codeBarcodeRequired     = "barcode_required"
	codeDateConflict        = "date_conflict"
	codeNotAvailable        = "not_available"
	codeForbidden           = "forbidden"
	codeInternalError       = "internal_error"
)

type errorResponse struct {
	Error       string `json:"error"`
	Code        string `json:"code"`
	InventoryID string `json:"inventory_id,omitempty"`
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	writeErrorWithInventory(w, status, code, msg, "")
}

func writeErrorWithInventory(w http.ResponseWriter, status int, code, msg, inventoryID string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	payload, err := json.Marshal(errorResponse{
		Error:       msg,
		Code:        code,
		InventoryID: inventoryID,
	})
	if err != nil {
		_, _ = w.Write([]byte(`{"error":"internal error","code":"internal_error"}`))
		return
	}
	_, _ = w.Write(payload)
}

// writeServiceError maps a service error onto a status, a stable code
// and, for conflict errors, the offending inventory id.
func writeServiceError(w http.ResponseWriter, err error) {
	var invErr *domain.InventoryError
	inventoryID := ""
	if errors.As(err, &invErr) {
		inventoryID = invErr.InventoryID
	}

	status, code := http.StatusInternalServerError, codeInternalError
	msg := "internal error"
	switch {
	case errors.Is(err, domain.ErrInvalidID):
		status, code, msg = http.StatusBadRequest, codeInvalidID, err.Error()
	case errors.Is(err, domain.ErrInvalidDates):
		status, code, msg = http.StatusBadRequest, codeInvalidDates, err.Error()
	case errors.Is(err, domain.ErrOrderNotFound):
		status, code, msg = http.StatusNotFound, codeOrderNotFound, err.Error()
	case errors.Is(err, domain.ErrItemNotFound):
		status, code, msg = http.StatusNotFound, codeItemNotFound, err.Error()
	case errors.Is(err, domain.ErrInventoryNotFound):
		status, code, msg = http.StatusNotFound, codeInventoryNotFound, err.Error()
	case errors.Is(err, domain.ErrDuplicateItem):
		status, code, msg = http.StatusBadRequest, codeDuplicateItem, err.Error()
	case errors.Is(err, domain.ErrNoItems):
		status, code, msg = http.StatusBadRequest, codeNoItems, err.Error()
	case errors.Is(err, domain.ErrNotEligible):
		status, code, msg = http.StatusBadRequest, codeNotEligible, err.Error()
	case errors.Is(err, domain.ErrItemDeleted):
		status, code, msg = http.StatusBadRequest, codeItemDeleted, err.Error()
	case errors.Is(err, domain.ErrInvalidStatusFilter):
		status, code, msg = http.StatusBadRequest, codeInvalidStatusFilter, err.Error()
	case errors.Is(err, domain.ErrBarcodeRequired):
		status, code, msg = http.StatusBadRequest, codeBarcodeRequired, err.Error()
	case errors.Is(err, domain.ErrDateConflict):
		status, code, msg = http.StatusConflict, codeDateConflict, err.Error()
	case errors.Is(err, domain.ErrNotAvailable):
		status, code, msg = http.StatusConflict, codeNotAvailable, err.Error()
	}
	writeErrorWithInventory(w, status, code, msg, inventoryID)
}

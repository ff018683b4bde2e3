package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/rentwise/rental-api/internal/app"
	"github.com/rentwise/rental-api/internal/domain"
)

// ItemAdder is the minimal interface needed to attach inventory to an
// order.
type ItemAdder interface {
	AddItem(ctx context.Context, in app.AddItemInput) (domain.OrderItem, error)
}

// ItemRemover is the minimal interface needed to soft-delete an item.
type ItemRemover interface {
	RemoveItem(ctx context.Context, itemID string) error
}

// HandleCreateOrderItem returns an HTTP handler for adding an inventory
// unit to an order.
func HandleCreateOrderItem(svc ItemAdder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
			return
		}

		var req createOrderItemRequest
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
			return
		}
		if req.OrderID == "" || req.InventoryID == "" {
			writeError(w, http.StatusBadRequest, codeValidationError, "order_id and inventory_id are required")
			return
		}

		item, err := svc.AddItem(r.Context(), app.AddItemInput{
			OrderID:     req.OrderID,
			InventoryID: req.InventoryID,
		})
		if err != nil {
			writeServiceError(w, err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(toOrderItemResponse(item))
	}
}

// HandleRemoveOrderItem returns an HTTP handler for soft-deleting an
// order item.
func HandleRemoveOrderItem(svc ItemRemover) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete {
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
			return
		}

		itemID, ok := parseRemoveOrderItemPath(r.URL.Path)
		if !ok {
			writeError(w, http.StatusNotFound, codeNotFound, "not found")
			return
		}

		if err := svc.RemoveItem(r.Context(), itemID); err != nil {
			writeServiceError(w, err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{
			"message": "order item removed and statuses recalculated",
		})
	}
}

func parseRemoveOrderItemPath(path string) (string, bool) {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	if len(parts) != 3 {
		return "", false
	}
	if parts[0] != "order-items" || parts[1] != "remove-order-item" {
		return "", false
	}
	if parts[2] == "" {
		return "", false
	}
	return parts[2], true
}

type createOrderItemRequest struct {
	OrderID     string `json:"order_id"`
	InventoryID string `json:"inventory_id"`
}

type orderItemResponse struct {
	ID               string     `json:"id"`
	OrderID          string     `json:"order_id"`
	InventoryID      string     `json:"inventory_id"`
	PickupAt         time.Time  `json:"pickup_at"`
	ReturnAt         time.Time  `json:"return_at"`
	Status           string     `json:"status"`
	UnavailableUntil *time.Time `json:"unavailable_until,omitempty"`
	RequestHold      bool       `json:"request_hold"`
	RequestHoldAt    *time.Time `json:"request_hold_at,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
}

func toOrderItemResponse(item domain.OrderItem) orderItemResponse {
	return orderItemResponse{
		ID:               item.ID,
		OrderID:          item.OrderID,
		InventoryID:      item.InventoryID,
		PickupAt:         item.PickupAt,
		ReturnAt:         item.ReturnAt,
		Status:           string(item.Status),
		UnavailableUntil: item.UnavailableUntil,
		RequestHold:      item.RequestHold,
		RequestHoldAt:    item.RequestHoldAt,
		CreatedAt:        item.CreatedAt,
	}
}

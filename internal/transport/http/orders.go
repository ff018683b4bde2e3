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

// OrderCreator is the minimal interface needed to create an order.
type OrderCreator interface {
	CreateOrder(ctx context.Context, in app.CreateOrderInput) (domain.Order, error)
}

// HoldRequester is the minimal interface needed for the bulk hold flow.
type HoldRequester interface {
	RequestHold(ctx context.Context, orderID string, enable bool) (app.RequestHoldResult, error)
}

// OrderDatesUpdater is the minimal interface needed to move an order's
// window.
type OrderDatesUpdater interface {
	UpdateDates(ctx context.Context, in app.UpdateDatesInput) (domain.Order, error)
}

// OrderConfirmer is the minimal interface needed to confirm an order.
type OrderConfirmer interface {
	Confirm(ctx context.Context, orderID string) (domain.Order, error)
}

// HandleCreateOrder returns an HTTP handler for creating orders.
func HandleCreateOrder(svc OrderCreator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
			return
		}

		var req createOrderRequest
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
			return
		}

		pickupAt, returnAt, ok := parseDatePair(req.PickupAt, req.ReturnAt)
		if !ok {
			writeError(w, http.StatusBadRequest, codeInvalidDates, domain.ErrInvalidDates.Error())
			return
		}

		order, err := svc.CreateOrder(r.Context(), app.CreateOrderInput{
			Name:     req.Name,
			PickupAt: pickupAt,
			ReturnAt: returnAt,
		})
		if err != nil {
			writeServiceError(w, err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(toOrderResponse(order))
	}
}

// HandleRequestHold returns an HTTP handler for requesting or
// cancelling a bulk hold on an order's items.
func HandleRequestHold(svc HoldRequester) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut {
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
			return
		}

		orderID, ok := parseOrderActionPath(r.URL.Path, "request-hold")
		if !ok {
			writeError(w, http.StatusNotFound, codeNotFound, "not found")
			return
		}

		var req requestHoldRequest
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
			return
		}
		if req.RequestHold == nil {
			writeError(w, http.StatusBadRequest, codeValidationError, "request_hold must be a boolean value")
			return
		}

		res, err := svc.RequestHold(r.Context(), orderID, *req.RequestHold)
		if err != nil {
			writeServiceError(w, err)
			return
		}

		resp := requestHoldResponse{OrderID: res.OrderID}
		if *req.RequestHold {
			resp.Message = "hold request processed"
		} else {
			resp.Message = "hold request cancelled"
		}
		for _, item := range res.UpdatedItems {
			resp.UpdatedItems = append(resp.UpdatedItems, holdRequestItemResponse{
				ItemID:      item.ItemID,
				InventoryID: item.InventoryID,
				Status:      string(item.Status),
			})
		}
		for _, itemErr := range res.Errors {
			resp.Errors = append(resp.Errors, holdRequestErrorResponse{
				InventoryID: itemErr.InventoryID,
				Message:     itemErr.Message,
			})
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}
}

// HandleUpdateOrder returns an HTTP handler for moving an order's
// pickup/return window.
func HandleUpdateOrder(svc OrderDatesUpdater) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut {
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
			return
		}

		orderID, ok := parseOrderActionPath(r.URL.Path, "update-order")
		if !ok {
			writeError(w, http.StatusNotFound, codeNotFound, "not found")
			return
		}

		var req updateOrderRequest
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
			return
		}

		pickupAt, returnAt, ok := parseDatePair(req.PickupAt, req.ReturnAt)
		if !ok {
			writeError(w, http.StatusBadRequest, codeInvalidDates, domain.ErrInvalidDates.Error())
			return
		}

		order, err := svc.UpdateDates(r.Context(), app.UpdateDatesInput{
			OrderID:  orderID,
			PickupAt: pickupAt,
			ReturnAt: returnAt,
		})
		if err != nil {
			writeServiceError(w, err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(updateOrderResponse{
			Message: "order updated",
			Order:   toOrderResponse(order),
		})
	}
}

// HandleConfirmOrder returns an HTTP handler for confirming an order.
func HandleConfirmOrder(svc OrderConfirmer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut {
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
			return
		}

		orderID, ok := parseOrderActionPath(r.URL.Path, "confirm-order")
		if !ok {
			writeError(w, http.StatusNotFound, codeNotFound, "not found")
			return
		}

		order, err := svc.Confirm(r.Context(), orderID)
		if err != nil {
			writeServiceError(w, err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(updateOrderResponse{
			Message: "order confirmed",
			Order:   toOrderResponse(order),
		})
	}
}

// parseOrderActionPath extracts the order id from
// /orders/<action>/{order_id}.
func parseOrderActionPath(path, action string) (string, bool) {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	if len(parts) != 3 {
		return "", false
	}
	if parts[0] != "orders" || parts[1] != action {
		return "", false
	}
	if parts[2] == "" {
		return "", false
	}
	return parts[2], true
}

// parseDatePair parses the RFC 3339 pickup/return pair; both must be
// present and well-formed.
func parseDatePair(pickup, ret string) (time.Time, time.Time, bool) {
	if pickup == "" || ret == "" {
		return time.Time{}, time.Time{}, false
	}
	pickupAt, err := time.Parse(time.RFC3339, pickup)
	if err != nil {
		return time.Time{}, time.Time{}, false
	}
	returnAt, err := time.Parse(time.RFC3339, ret)
	if err != nil {
		return time.Time{}, time.Time{}, false
	}
	return pickupAt, returnAt, true
}

type createOrderRequest struct {
	Name     string `json:"name,omitempty"`
	PickupAt string `json:"pickup_at"`
	ReturnAt string `json:"return_at"`
}

type requestHoldRequest struct {
	RequestHold *bool `json:"request_hold"`
}

type updateOrderRequest struct {
	PickupAt string `json:"pickup_at"`
	ReturnAt string `json:"return_at"`
}

type orderResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name,omitempty"`
	PickupAt    time.Time `json:"pickup_at"`
	ReturnAt    time.Time `json:"return_at"`
	Status      string    `json:"status"`
	RequestHold bool      `json:"request_hold"`
	CreatedAt   time.Time `json:"created_at"`
}

func toOrderResponse(order domain.Order) orderResponse {
	return orderResponse{
		ID:          order.ID,
		Name:        order.Name,
		PickupAt:    order.PickupAt,
		ReturnAt:    order.ReturnAt,
		Status:      string(order.Status),
		RequestHold: order.RequestHold,
		CreatedAt:   order.CreatedAt,
	}
}

type holdRequestItemResponse struct {
	ItemID      string `json:"item_id"`
	InventoryID string `json:"inventory_id"`
	Status      string `json:"status"`
}

type holdRequestErrorResponse struct {
	InventoryID string `json:"inventory_id"`
	Message     string `json:"message"`
}

type requestHoldResponse struct {
	Message      string                     `json:"message"`
	OrderID      string                     `json:"order_id"`
	UpdatedItems []holdRequestItemResponse  `json:"updated_items,omitempty"`
	Errors       []holdRequestErrorResponse `json:"errors,omitempty"`
}

type updateOrderResponse struct {
	Message string        `json:"message"`
	Order   orderResponse `json:"order"`
}

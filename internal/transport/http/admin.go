package http

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/rentwise/rental-api/internal/app"
	"github.com/rentwise/rental-api/internal/domain"
)

// HoldApprover is the minimal interface needed to approve or reject a
// pending hold request.
type HoldApprover interface {
	ApproveHold(ctx context.Context, itemID string, approved bool) (domain.OrderItem, error)
}

// HoldRequestLister is the minimal interface needed for the admin hold
// queue.
type HoldRequestLister interface {
	ListHoldRequests(ctx context.Context, filter app.HoldRequestFilter) ([]domain.HoldRequest, error)
}

// InventoryAdminService is the minimal interface needed for the
// inventory catalog endpoints.
type InventoryAdminService interface {
	CreateInventory(ctx context.Context, in app.CreateInventoryInput) (domain.Inventory, error)
	ListInventories(ctx context.Context) ([]domain.Inventory, error)
}

// HandleApproveHold returns an HTTP handler for deciding a pending hold
// request.
func HandleApproveHold(svc HoldApprover) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut {
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
			return
		}

		itemID, ok := parseOrderActionPath(r.URL.Path, "approve-hold")
		if !ok {
			writeError(w, http.StatusNotFound, codeNotFound, "not found")
			return
		}

		var req approveHoldRequest
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
			return
		}
		if req.Approved == nil {
			writeError(w, http.StatusBadRequest, codeValidationError, "approved must be a boolean value")
			return
		}

		item, err := svc.ApproveHold(r.Context(), itemID, *req.Approved)
		if err != nil {
			writeServiceError(w, err)
			return
		}

		msg := "hold request approved"
		if !*req.Approved {
			msg = "hold request rejected"
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(approveHoldResponse{
			Message:   msg,
			ItemID:    item.ID,
			NewStatus: string(item.Status),
		})
	}
}

// HandleListHoldRequests returns an HTTP handler for the pending hold
// queue, oldest request first.
func HandleListHoldRequests(svc HoldRequestLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
			return
		}

		filter := app.HoldRequestFilter{
			Status:  domain.ItemStatus(r.URL.Query().Get("status")),
			OrderID: r.URL.Query().Get("order_id"),
		}

		requests, err := svc.ListHoldRequests(r.Context(), filter)
		if err != nil {
			writeServiceError(w, err)
			return
		}

		resp := listHoldRequestsResponse{
			Message:      "hold requests retrieved",
			Count:        len(requests),
			HoldRequests: make([]holdRequestResponse, 0, len(requests)),
		}
		for _, hr := range requests {
			resp.HoldRequests = append(resp.HoldRequests, holdRequestResponse{
				Item:      toOrderItemResponse(hr.Item),
				Order:     toOrderResponse(hr.Order),
				Inventory: toInventoryResponse(hr.Inventory),
			})
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}
}

// HandleInventory returns an HTTP handler for inventory catalog
// creation/listing.
func HandleInventory(svc InventoryAdminService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			inventories, err := svc.ListInventories(r.Context())
			if err != nil {
				writeServiceError(w, err)
				return
			}
			resp := make([]inventoryResponse, 0, len(inventories))
			for _, inv := range inventories {
				resp = append(resp, toInventoryResponse(inv))
			}
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(resp)
			return
		case http.MethodPost:
			var req createInventoryRequest
			dec := json.NewDecoder(r.Body)
			dec.DisallowUnknownFields()
			if err := dec.Decode(&req); err != nil {
				writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
				return
			}
			if req.Barcode == "" {
				writeError(w, http.StatusBadRequest, codeBarcodeRequired, domain.ErrBarcodeRequired.Error())
				return
			}

			inv, err := svc.CreateInventory(r.Context(), app.CreateInventoryInput{
				Barcode: req.Barcode,
				General: domain.InventoryGeneral{
					Width:           req.General.Width,
					Depth:           req.General.Depth,
					Height:          req.General.Height,
					Weight:          req.General.Weight,
					SevenDayPrice:   req.General.SevenDayPrice,
					SevenDayVisible: req.General.SevenDayVisible,
					ThreeDayPrice:   req.General.ThreeDayPrice,
					ThreeDayVisible: req.General.ThreeDayVisible,
				},
			})
			if err != nil {
				writeServiceError(w, err)
				return
			}

			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusCreated)
			_ = json.NewEncoder(w).Encode(toInventoryResponse(inv))
			return
		default:
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
			return
		}
	}
}

type approveHoldRequest struct {
	Approved *bool `json:"approved"`
}

type approveHoldResponse struct {
	Message   string `json:"message"`
	ItemID    string `json:"item_id"`
	NewStatus string `json:"new_status"`
}

type holdRequestResponse struct {
	Item      orderItemResponse `json:"item"`
	Order     orderResponse     `json:"order"`
	Inventory inventoryResponse `json:"inventory"`
}

type listHoldRequestsResponse struct {
	Message      string                `json:"message"`
	Count        int                   `json:"count"`
	HoldRequests []holdRequestResponse `json:"hold_requests"`
}

type inventoryGeneralPayload struct {
	Width           float64 `json:"width"`
	Depth           float64 `json:"depth"`
	Height          float64 `json:"height"`
	Weight          float64 `json:"weight"`
	SevenDayPrice   float64 `json:"seven_day_price"`
	SevenDayVisible bool    `json:"seven_day_visible"`
	ThreeDayPrice   float64 `json:"three_day_price"`
	ThreeDayVisible bool    `json:"three_day_visible"`
}

type createInventoryRequest struct {
	Barcode string                  `json:"barcode"`
	General inventoryGeneralPayload `json:"general"`
}

type inventoryResponse struct {
	ID        string                  `json:"id"`
	Barcode   string                  `json:"barcode"`
	General   inventoryGeneralPayload `json:"general"`
	CreatedAt time.Time               `json:"created_at"`
}

func toInventoryResponse(inv domain.Inventory) inventoryResponse {
	return inventoryResponse{
		ID:      inv.ID,
		Barcode: inv.Barcode,
		General: inventoryGeneralPayload{
			Width:           inv.General.Width,
			Depth:           inv.General.Depth,
			Height:          inv.General.Height,
			Weight:          inv.General.Weight,
			SevenDayPrice:   inv.General.SevenDayPrice,
			SevenDayVisible: inv.General.SevenDayVisible,
			ThreeDayPrice:   inv.General.ThreeDayPrice,
			ThreeDayVisible: inv.General.ThreeDayVisible,
		},
		CreatedAt: inv.CreatedAt,
	}
}

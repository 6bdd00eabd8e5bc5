package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"orderboard/internal/common/logger"
	"orderboard/internal/common/validation"
	"orderboard/internal/domain"
)

type OrderHandler struct {
	gw       Gateway
	validate *validation.Validator
	log      *logger.Logger
}

func NewOrderHandler(gw Gateway, v *validation.Validator, lg *logger.Logger) *OrderHandler {
	return &OrderHandler{gw: gw, validate: v, log: lg}
}

// List serves the active window. ?window= takes a Go duration, default 48h.
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	window := domain.DefaultOrderWindow
	if s := r.URL.Query().Get("window"); s != "" {
		d, err := time.ParseDuration(s)
		if err != nil || d <= 0 {
			writeError(w, h.log, "orders_list_failed", &domain.ValidationError{
				Fields: map[string]string{"window": "must be a positive duration"},
			})
			return
		}
		window = d
	}
	orders, err := h.gw.ListOrders(r.Context(), window)
	if err != nil {
		writeError(w, h.log, "orders_list_failed", err)
		return
	}
	writeJSON(w, http.StatusOK, orders)
}

func (h *OrderHandler) AddOrder(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateOrderRequest
	if err := decode(r, &req); err != nil {
		writeError(w, h.log, "order_create_failed", err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, h.log, "order_create_failed", err)
		return
	}
	o, err := h.gw.CreateOrder(r.Context(), req)
	if err != nil {
		writeError(w, h.log, "order_create_failed", err)
		return
	}
	h.log.Info("order_received", map[string]any{
		"order_id":      o.ID,
		"customer_name": o.CustomerName,
		"total":         domain.FormatMoney(o.Total()),
	})
	writeJSON(w, http.StatusCreated, o)
}

func (h *OrderHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req domain.StatusRequest
	if err := decode(r, &req); err != nil {
		writeError(w, h.log, "order_status_failed", err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, h.log, "order_status_failed", err)
		return
	}
	status, err := domain.ParseStatus(req.Status)
	if err != nil {
		writeError(w, h.log, "order_status_failed", err)
		return
	}
	o, err := h.gw.SetOrderStatus(r.Context(), id, status)
	if err != nil {
		writeError(w, h.log, "order_status_failed", err)
		return
	}
	h.log.Info("order_status_changed", map[string]any{"order_id": o.ID, "status": o.Status})
	writeJSON(w, http.StatusOK, o)
}

func (h *OrderHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.gw.DeleteOrder(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, h.log, "order_delete_failed", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Clear removes every order, or only finished ones with ?status=done.
func (h *OrderHandler) Clear(w http.ResponseWriter, r *http.Request) {
	var err error
	switch s := r.URL.Query().Get("status"); s {
	case "":
		err = h.gw.ClearAllOrders(r.Context())
	case string(domain.StatusDone):
		err = h.gw.ClearDoneOrders(r.Context())
	default:
		err = &domain.ValidationError{Fields: map[string]string{"status": "only done can be cleared selectively"}}
	}
	if err != nil {
		writeError(w, h.log, "orders_clear_failed", err)
		return
	}
	h.log.Info("orders_cleared", map[string]any{"status": r.URL.Query().Get("status")})
	w.WriteHeader(http.StatusNoContent)
}

package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"orderboard/internal/common/logger"
	"orderboard/internal/common/validation"
	"orderboard/internal/domain"
)

type DishHandler struct {
	gw       Gateway
	validate *validation.Validator
	log      *logger.Logger
}

func NewDishHandler(gw Gateway, v *validation.Validator, lg *logger.Logger) *DishHandler {
	return &DishHandler{gw: gw, validate: v, log: lg}
}

func (h *DishHandler) List(w http.ResponseWriter, r *http.Request) {
	dishes, err := h.gw.ListDishes(r.Context())
	if err != nil {
		writeError(w, h.log, "dishes_list_failed", err)
		return
	}
	writeJSON(w, http.StatusOK, dishes)
}

func (h *DishHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in domain.DishInput
	if err := decode(r, &in); err != nil {
		writeError(w, h.log, "dish_create_failed", err)
		return
	}
	if err := h.validate.Struct(in); err != nil {
		writeError(w, h.log, "dish_create_failed", err)
		return
	}
	d, err := h.gw.CreateDish(r.Context(), in)
	if err != nil {
		writeError(w, h.log, "dish_create_failed", err)
		return
	}
	h.log.Debug("dish_created", map[string]any{"dish_id": d.ID, "name": d.Name})
	writeJSON(w, http.StatusCreated, d)
}

func (h *DishHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var in domain.DishInput
	if err := decode(r, &in); err != nil {
		writeError(w, h.log, "dish_update_failed", err)
		return
	}
	if err := h.validate.Struct(in); err != nil {
		writeError(w, h.log, "dish_update_failed", err)
		return
	}
	d, err := h.gw.UpdateDish(r.Context(), id, in)
	if err != nil {
		writeError(w, h.log, "dish_update_failed", err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (h *DishHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.gw.DeleteDish(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, h.log, "dish_delete_failed", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *DishHandler) Clear(w http.ResponseWriter, r *http.Request) {
	if err := h.gw.ClearAllDishes(r.Context()); err != nil {
		writeError(w, h.log, "dishes_clear_failed", err)
		return
	}
	h.log.Info("dishes_cleared", nil)
	w.WriteHeader(http.StatusNoContent)
}

package landing

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/zma-auto/taxi-landing/internal/capture"
	"github.com/zma-auto/taxi-landing/internal/catalog"
)

func (h *Handler) apiForm(w http.ResponseWriter, r *http.Request) (*capture.Form, bool) {
	forms := h.visitorForms(w, r)
	form, err := forms.Form(chi.URLParam(r, "formID"))
	if err != nil {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
		return nil, false
	}
	return form, true
}

// decodeFields reads an optional JSON object of field values.
func decodeFields(r *http.Request) (map[string]string, error) {
	values := map[string]string{}
	if r.Body == nil {
		return values, nil
	}
	err := json.NewDecoder(r.Body).Decode(&values)
	if errors.Is(err, io.EOF) {
		return values, nil
	}
	return values, err
}

// GetForm handles GET /api/forms/{formID} requests.
func (h *Handler) GetForm(w http.ResponseWriter, r *http.Request) {
	form, ok := h.apiForm(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, form.Snapshot())
}

// UpdateForm handles PATCH /api/forms/{formID} requests.
func (h *Handler) UpdateForm(w http.ResponseWriter, r *http.Request) {
	form, ok := h.apiForm(w, r)
	if !ok {
		return
	}
	values, err := decodeFields(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	if err := form.SetFields(values); err != nil {
		writeJSON(w, statusFor(err), errorResponse{Error: err.Error(), Form: form.Snapshot()})
		return
	}
	writeJSON(w, http.StatusOK, form.Snapshot())
}

// SubmitForm handles POST /api/forms/{formID}/submit requests. The reply is
// the same whether or not the CRM was reachable.
func (h *Handler) SubmitForm(w http.ResponseWriter, r *http.Request) {
	form, ok := h.apiForm(w, r)
	if !ok {
		return
	}
	values, err := decodeFields(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	if len(values) > 0 {
		if err := form.SetFields(values); err != nil {
			writeJSON(w, statusFor(err), errorResponse{Error: err.Error(), Form: form.Snapshot()})
			return
		}
	}

	delivered, err := form.Submit(r.Context())
	if err != nil {
		writeJSON(w, statusFor(err), errorResponse{Error: err.Error(), Form: form.Snapshot()})
		return
	}
	h.logger.Info("lead form submitted", "form", form.Schema().ID, "delivered", delivered)
	writeJSON(w, http.StatusOK, form.Snapshot())
}

// DismissForm handles POST /api/forms/{formID}/dismiss requests.
func (h *Handler) DismissForm(w http.ResponseWriter, r *http.Request) {
	form, ok := h.apiForm(w, r)
	if !ok {
		return
	}
	if err := form.Dismiss(); err != nil {
		writeJSON(w, statusFor(err), errorResponse{Error: err.Error(), Form: form.Snapshot()})
		return
	}
	writeJSON(w, http.StatusOK, form.Snapshot())
}

// CatalogResponse is the body of GET /api/catalog.
type CatalogResponse struct {
	Models    []catalog.CarModel `json:"models"`
	FuelCosts []catalog.Bar      `json:"fuel_costs"`
	Options   []string           `json:"model_options"`
}

// Catalog handles GET /api/catalog requests.
func (h *Handler) Catalog(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, CatalogResponse{
		Models:    catalog.Models(),
		FuelCosts: catalog.Chart(catalog.FuelCosts()),
		Options:   capture.ModelOptions,
	})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, capture.ErrIncomplete):
		return http.StatusUnprocessableEntity
	case errors.Is(err, capture.ErrNotIdle):
		return http.StatusConflict
	case errors.Is(err, capture.ErrUnknownField), errors.Is(err, capture.ErrInvalidOption):
		return http.StatusBadRequest
	case errors.Is(err, capture.ErrUnknownForm):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

package main

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/flemdev/portal-ppe/internal/response"
	"github.com/flemdev/portal-ppe/internal/store"
)

type ShipmentListResponse = response.APIResponse[[]store.Shipment]
type ShipmentResponse = response.APIResponse[*store.Shipment]

func (app *application) handleListShipments(w http.ResponseWriter, r *http.Request) {
	tenant := chi.URLParam(r, "tenant")

	data, err := app.store.Shipments.List(r.Context(), tenant, queryInt(r.URL.Query().Get("limit"), 100))
	if err != nil {
		writeError(w, err)
		return
	}

	resp := &ShipmentListResponse{
		Success: true,
		Data:    data,
		Message: "Successfully listed shipments",
	}

	if err := writeJSON(w, http.StatusOK, resp); err != nil {
		writeJSONError(w, http.StatusInternalServerError, "failed to write response")
	}
}

func (app *application) handleGetShipmentByNumber(w http.ResponseWriter, r *http.Request) {
	tenant := chi.URLParam(r, "tenant")

	number, err := strconv.Atoi(chi.URLParam(r, "number"))
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "shipment number must be an integer")
		return
	}

	data, err := app.store.Shipments.GetByNumber(r.Context(), tenant, number)
	if err != nil {
		writeError(w, err)
		return
	}

	resp := &ShipmentResponse{
		Success: true,
		Data:    data,
		Message: "Successfully retrieved shipment",
	}

	if err := writeJSON(w, http.StatusOK, resp); err != nil {
		writeJSONError(w, http.StatusInternalServerError, "failed to write response")
	}
}

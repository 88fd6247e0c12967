package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/flemdev/portal-ppe/internal/importer"
	"github.com/flemdev/portal-ppe/internal/ingest"
	"github.com/flemdev/portal-ppe/internal/response"
)

type ValidateImportResponse = response.APIResponse[[]importer.Candidate]
type ImportResponse = response.APIResponse[*importer.ImportResult]

// handleValidateImport receives the raw spreadsheet and returns every row
// annotated for the review screen. Nothing is written.
func (app *application) handleValidateImport(w http.ResponseWriter, r *http.Request) {
	tenant := chi.URLParam(r, "tenant")

	if err := r.ParseMultipartForm(10 << 20); err != nil {
		writeJSONError(w, http.StatusBadRequest, "expected a multipart form with a 'file' field")
		return
	}
	file, _, err := r.FormFile("file")
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "missing 'file' field")
		return
	}
	defer file.Close()

	candidates, err := ingest.ParseSheet(file)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	annotated, err := app.pipeline.ValidateForImport(r.Context(), tenant, candidates)
	if err != nil {
		writeError(w, err)
		return
	}

	resp := &ValidateImportResponse{
		Success: true,
		Data:    annotated,
		Message: "Spreadsheet checked against legacy and local stores",
	}

	if err := writeJSON(w, http.StatusOK, resp); err != nil {
		writeJSONError(w, http.StatusInternalServerError, "failed to write response")
	}
}

type ImportPayload struct {
	ShipmentNumber int                  `json:"shipment_number" validate:"required,gt=0"`
	ShipmentDate   string               `json:"shipment_date" validate:"required"`
	FileID         string               `json:"file_id"`
	Rows           []importer.Candidate `json:"rows" validate:"required"`
}

// handleImport commits reviewed rows: shipment, upserts, placements and the
// audit entry, all in one batch.
func (app *application) handleImport(w http.ResponseWriter, r *http.Request) {
	tenant := chi.URLParam(r, "tenant")

	var payload ImportPayload
	if err := readJSON(w, r, &payload); err != nil {
		return
	}

	shipmentDate, err := parseTime(payload.ShipmentDate)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid shipment_date, expected YYYY-MM-DD")
		return
	}

	result, err := app.pipeline.Orchestrator.ImportBatch(r.Context(), tenant, importer.ImportInput{
		ShipmentNumber: payload.ShipmentNumber,
		ShipmentDate:   shipmentDate,
		FileID:         payload.FileID,
		Rows:           payload.Rows,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	resp := &ImportResponse{
		Success: true,
		Data:    result,
		Message: "Successfully imported shipment",
	}

	if err := writeJSON(w, http.StatusCreated, resp); err != nil {
		writeJSONError(w, http.StatusInternalServerError, "failed to write response")
	}
}

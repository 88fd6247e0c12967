package main

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/flemdev/portal-ppe/internal/apierror"
	"github.com/flemdev/portal-ppe/internal/response"
	"github.com/flemdev/portal-ppe/internal/store"
)

// Audit entries written when a placement status changes by hand.
const statusChangeHistoryType = "Vaga"

type HistoryListResponse = response.APIResponse[[]store.HistoryEntry]
type HistoryResponse = response.APIResponse[*store.HistoryEntry]

func (app *application) handleListBeneficiaryHistory(w http.ResponseWriter, r *http.Request) {
	tenant := chi.URLParam(r, "tenant")

	data, err := app.store.History.ListByBeneficiary(r.Context(), tenant,
		chi.URLParam(r, "id"), queryInt(r.URL.Query().Get("limit"), 100))
	if err != nil {
		writeError(w, err)
		return
	}

	resp := &HistoryListResponse{
		Success: true,
		Data:    data,
		Message: "Successfully listed beneficiary history",
	}

	if err := writeJSON(w, http.StatusOK, resp); err != nil {
		writeJSONError(w, http.StatusInternalServerError, "failed to write response")
	}
}

type CreateHistoryPayload struct {
	Description   string `json:"description" validate:"required"`
	TypeID        string `json:"type_id" validate:"required"`
	BeneficiaryID string `json:"beneficiary_id" validate:"required"`
	Confidential  bool   `json:"confidential"`
}

func (app *application) handleCreateHistory(w http.ResponseWriter, r *http.Request) {
	tenant := chi.URLParam(r, "tenant")
	ctx := r.Context()

	var payload CreateHistoryPayload
	if err := readJSON(w, r, &payload); err != nil {
		return
	}

	entry := &store.HistoryEntry{
		Description:  payload.Description,
		TypeID:       payload.TypeID,
		Confidential: payload.Confidential,
	}
	if err := app.store.History.Insert(ctx, tenant, entry); err != nil {
		writeError(w, err)
		return
	}
	if err := app.store.History.LinkImport(ctx, tenant, entry.ID, []string{payload.BeneficiaryID}, nil); err != nil {
		writeError(w, err)
		return
	}

	resp := &HistoryResponse{
		Success: true,
		Data:    entry,
		Message: "Successfully created history entry",
	}

	if err := writeJSON(w, http.StatusCreated, resp); err != nil {
		writeJSONError(w, http.StatusInternalServerError, "failed to write response")
	}
}

// changePlacementStatus updates the placement and leaves an audit trail, the
// same shape the import orchestrator writes.
func (app *application) changePlacementStatus(ctx context.Context, tenant, beneficiaryID, placementID, statusID string) error {
	if err := app.store.Placements.UpdateStatus(ctx, tenant, placementID, statusID); err != nil {
		return err
	}

	types, err := app.store.References.HistoryTypes(ctx, tenant, store.ByName(statusChangeHistoryType), 1)
	if err != nil {
		return err
	}
	if len(types) == 0 {
		return apierror.New(apierror.KindInternal, http.StatusInternalServerError,
			fmt.Sprintf("history type %q is not configured for tenant %s", statusChangeHistoryType, tenant))
	}

	entry := &store.HistoryEntry{
		Description: "Alterado o status da vaga do beneficiário.",
		TypeID:      types[0].ID,
	}
	if err := app.store.History.Insert(ctx, tenant, entry); err != nil {
		return err
	}
	return app.store.History.LinkImport(ctx, tenant, entry.ID, []string{beneficiaryID}, []string{placementID})
}

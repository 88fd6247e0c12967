package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/flemdev/portal-ppe/internal/masks"
	"github.com/flemdev/portal-ppe/internal/response"
	"github.com/flemdev/portal-ppe/internal/store"
)

type BeneficiaryListResponse = response.APIResponse[[]store.Beneficiary]
type BeneficiaryResponse = response.APIResponse[*store.Beneficiary]
type DeletedResponse = response.APIResponse[struct{}]

func (app *application) handleListBeneficiaries(w http.ResponseWriter, r *http.Request) {
	tenant := chi.URLParam(r, "tenant")
	q := r.URL.Query()

	filter := store.Filter{Condition: q.Get("condition")}
	fields := map[string][]string{}
	if v := splitParam(q.Get("enrollment")); len(v) > 0 {
		fields["enrollment"] = v
	}
	if v := splitParam(q.Get("cpf")); len(v) > 0 {
		fields["cpf"] = v
	}
	if len(fields) > 0 {
		filter.Fields = fields
	}
	if name := q.Get("name"); name != "" {
		filter.Contains = map[string][]string{"name": {name}}
	}
	if q.Get("excluded") == "true" {
		excluded := true
		filter.Excluded = &excluded
	}

	data, err := app.store.Beneficiaries.List(r.Context(), tenant, filter, queryInt(q.Get("limit"), 100))
	if err != nil {
		writeError(w, err)
		return
	}

	resp := &BeneficiaryListResponse{
		Success: true,
		Data:    data,
		Message: "Successfully listed beneficiaries",
	}

	if err := writeJSON(w, http.StatusOK, resp); err != nil {
		writeJSONError(w, http.StatusInternalServerError, "failed to write response")
	}
}

func (app *application) handleGetBeneficiary(w http.ResponseWriter, r *http.Request) {
	tenant := chi.URLParam(r, "tenant")

	data, err := app.store.Beneficiaries.GetByID(r.Context(), tenant, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}

	resp := &BeneficiaryResponse{
		Success: true,
		Data:    data,
		Message: "Successfully retrieved beneficiary",
	}

	if err := writeJSON(w, http.StatusOK, resp); err != nil {
		writeJSONError(w, http.StatusInternalServerError, "failed to write response")
	}
}

type UpdateBeneficiaryPayload struct {
	Name                  *string `json:"name"`
	CPF                   *string `json:"cpf"`
	SchoolOfOrigin        *string `json:"school_of_origin"`
	Sex                   *string `json:"sex"`
	ResidenceMunicipality *string `json:"residence_municipality"`
	EthnicityID           *string `json:"ethnicity_id"`
	CourseID              *string `json:"course_id"`

	// Changing the placement status requires both and produces an audit entry.
	PlacementID *string `json:"placement_id" validate:"required_with=StatusID"`
	StatusID    *string `json:"status_id" validate:"required_with=PlacementID"`
}

func (app *application) handleUpdateBeneficiary(w http.ResponseWriter, r *http.Request) {
	tenant := chi.URLParam(r, "tenant")
	id := chi.URLParam(r, "id")
	ctx := r.Context()

	var payload UpdateBeneficiaryPayload
	if err := readJSON(w, r, &payload); err != nil {
		return
	}

	beneficiary, err := app.store.Beneficiaries.GetByID(ctx, tenant, id)
	if err != nil {
		writeError(w, err)
		return
	}

	if payload.Name != nil {
		beneficiary.Name = masks.Capitalize(*payload.Name)
	}
	if payload.CPF != nil {
		beneficiary.CPF = masks.CPF(*payload.CPF)
	}
	if payload.SchoolOfOrigin != nil {
		beneficiary.SchoolOfOrigin = masks.Capitalize(*payload.SchoolOfOrigin)
	}
	if payload.Sex != nil {
		beneficiary.Sex = masks.Capitalize(*payload.Sex)
	}
	if payload.ResidenceMunicipality != nil {
		beneficiary.ResidenceMunicipality = *payload.ResidenceMunicipality
	}
	if payload.EthnicityID != nil {
		beneficiary.EthnicityID = payload.EthnicityID
	}
	if payload.CourseID != nil {
		beneficiary.CourseID = payload.CourseID
	}

	if err := app.store.Beneficiaries.Update(ctx, tenant, beneficiary); err != nil {
		writeError(w, err)
		return
	}

	if payload.PlacementID != nil && payload.StatusID != nil {
		if err := app.changePlacementStatus(ctx, tenant, id, *payload.PlacementID, *payload.StatusID); err != nil {
			writeError(w, err)
			return
		}
	}

	resp := &BeneficiaryResponse{
		Success: true,
		Data:    beneficiary,
		Message: "Successfully updated beneficiary",
	}

	if err := writeJSON(w, http.StatusOK, resp); err != nil {
		writeJSONError(w, http.StatusInternalServerError, "failed to write response")
	}
}

func (app *application) handleDeleteBeneficiary(w http.ResponseWriter, r *http.Request) {
	tenant := chi.URLParam(r, "tenant")

	if err := app.store.Beneficiaries.SoftDelete(r.Context(), tenant, chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}

	resp := &DeletedResponse{
		Success: true,
		Message: "Successfully removed beneficiary",
	}

	if err := writeJSON(w, http.StatusOK, resp); err != nil {
		writeJSONError(w, http.StatusInternalServerError, "failed to write response")
	}
}

package main

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/flemdev/portal-ppe/internal/response"
	"github.com/flemdev/portal-ppe/internal/store"
)

type DemandingOrgListResponse = response.APIResponse[[]store.DemandingOrg]
type DemandingOrgResponse = response.APIResponse[*store.DemandingOrg]
type MunicipalityListResponse = response.APIResponse[[]store.Municipality]
type MunicipalityResponse = response.APIResponse[*store.Municipality]
type EthnicityListResponse = response.APIResponse[[]store.Ethnicity]
type EthnicityResponse = response.APIResponse[*store.Ethnicity]
type CourseListResponse = response.APIResponse[[]store.Course]
type CourseResponse = response.APIResponse[*store.Course]
type PlacementStatusListResponse = response.APIResponse[[]store.PlacementStatus]
type PlacementStatusResponse = response.APIResponse[*store.PlacementStatus]
type HistoryTypeListResponse = response.APIResponse[[]store.HistoryType]
type HistoryTypeResponse = response.APIResponse[*store.HistoryType]

// URL segment → logical table, for the shared soft-delete route.
var referenceKinds = map[string]string{
	"demanding-orgs":     store.TableDemandingOrgs,
	"municipalities":     store.TableMunicipalities,
	"ethnicities":        store.TableEthnicities,
	"courses":            store.TableCourses,
	"placement-statuses": store.TablePlacementStatuses,
	"history-types":      store.TableHistoryTypes,
}

// referenceFilter supports the name search box of the reference screens.
func referenceFilter(r *http.Request) store.Filter {
	var filter store.Filter
	if name := r.URL.Query().Get("name"); name != "" {
		filter.Contains = map[string][]string{"name": {name}}
	}
	return filter
}

type NamePayload struct {
	Name string `json:"name" validate:"required"`
}

type DemandingOrgPayload struct {
	Name         string `json:"name" validate:"required"`
	Abbreviation string `json:"abbreviation" validate:"required"`
}

type HistoryTypePayload struct {
	Name         string `json:"name" validate:"required"`
	Confidential bool   `json:"confidential"`
}

func (app *application) handleListDemandingOrgs(w http.ResponseWriter, r *http.Request) {
	tenant := chi.URLParam(r, "tenant")

	data, err := app.store.References.DemandingOrgs(r.Context(), tenant, referenceFilter(r), 0)
	if err != nil {
		writeError(w, err)
		return
	}

	resp := &DemandingOrgListResponse{
		Success: true,
		Data:    data,
		Message: "Successfully listed demanding organizations",
	}

	if err := writeJSON(w, http.StatusOK, resp); err != nil {
		writeJSONError(w, http.StatusInternalServerError, "failed to write response")
	}
}

func (app *application) handleCreateDemandingOrg(w http.ResponseWriter, r *http.Request) {
	tenant := chi.URLParam(r, "tenant")

	var payload DemandingOrgPayload
	if err := readJSON(w, r, &payload); err != nil {
		return
	}

	data, err := app.store.References.CreateDemandingOrg(r.Context(), tenant, payload.Name, payload.Abbreviation)
	if err != nil {
		writeError(w, err)
		return
	}

	resp := &DemandingOrgResponse{
		Success: true,
		Data:    data,
		Message: "Successfully created demanding organization",
	}

	if err := writeJSON(w, http.StatusCreated, resp); err != nil {
		writeJSONError(w, http.StatusInternalServerError, "failed to write response")
	}
}

func (app *application) handleListMunicipalities(w http.ResponseWriter, r *http.Request) {
	tenant := chi.URLParam(r, "tenant")

	data, err := app.store.References.Municipalities(r.Context(), tenant, referenceFilter(r), 0)
	if err != nil {
		writeError(w, err)
		return
	}

	resp := &MunicipalityListResponse{
		Success: true,
		Data:    data,
		Message: "Successfully listed municipalities",
	}

	if err := writeJSON(w, http.StatusOK, resp); err != nil {
		writeJSONError(w, http.StatusInternalServerError, "failed to write response")
	}
}

func (app *application) handleCreateMunicipality(w http.ResponseWriter, r *http.Request) {
	tenant := chi.URLParam(r, "tenant")

	var payload NamePayload
	if err := readJSON(w, r, &payload); err != nil {
		return
	}

	data, err := app.store.References.CreateMunicipality(r.Context(), tenant, payload.Name)
	if err != nil {
		writeError(w, err)
		return
	}

	resp := &MunicipalityResponse{
		Success: true,
		Data:    data,
		Message: "Successfully created municipality",
	}

	if err := writeJSON(w, http.StatusCreated, resp); err != nil {
		writeJSONError(w, http.StatusInternalServerError, "failed to write response")
	}
}

func (app *application) handleListEthnicities(w http.ResponseWriter, r *http.Request) {
	tenant := chi.URLParam(r, "tenant")

	data, err := app.store.References.Ethnicities(r.Context(), tenant, referenceFilter(r), 0)
	if err != nil {
		writeError(w, err)
		return
	}

	resp := &EthnicityListResponse{
		Success: true,
		Data:    data,
		Message: "Successfully listed ethnicities",
	}

	if err := writeJSON(w, http.StatusOK, resp); err != nil {
		writeJSONError(w, http.StatusInternalServerError, "failed to write response")
	}
}

func (app *application) handleCreateEthnicity(w http.ResponseWriter, r *http.Request) {
	tenant := chi.URLParam(r, "tenant")

	var payload NamePayload
	if err := readJSON(w, r, &payload); err != nil {
		return
	}

	data, err := app.store.References.CreateEthnicity(r.Context(), tenant, payload.Name)
	if err != nil {
		writeError(w, err)
		return
	}

	resp := &EthnicityResponse{
		Success: true,
		Data:    data,
		Message: "Successfully created ethnicity",
	}

	if err := writeJSON(w, http.StatusCreated, resp); err != nil {
		writeJSONError(w, http.StatusInternalServerError, "failed to write response")
	}
}

func (app *application) handleListCourses(w http.ResponseWriter, r *http.Request) {
	tenant := chi.URLParam(r, "tenant")

	data, err := app.store.References.Courses(r.Context(), tenant, referenceFilter(r), 0)
	if err != nil {
		writeError(w, err)
		return
	}

	resp := &CourseListResponse{
		Success: true,
		Data:    data,
		Message: "Successfully listed training courses",
	}

	if err := writeJSON(w, http.StatusOK, resp); err != nil {
		writeJSONError(w, http.StatusInternalServerError, "failed to write response")
	}
}

func (app *application) handleCreateCourse(w http.ResponseWriter, r *http.Request) {
	tenant := chi.URLParam(r, "tenant")

	var payload NamePayload
	if err := readJSON(w, r, &payload); err != nil {
		return
	}

	data, err := app.store.References.CreateCourse(r.Context(), tenant, payload.Name)
	if err != nil {
		writeError(w, err)
		return
	}

	resp := &CourseResponse{
		Success: true,
		Data:    data,
		Message: "Successfully created training course",
	}

	if err := writeJSON(w, http.StatusCreated, resp); err != nil {
		writeJSONError(w, http.StatusInternalServerError, "failed to write response")
	}
}

func (app *application) handleListPlacementStatuses(w http.ResponseWriter, r *http.Request) {
	tenant := chi.URLParam(r, "tenant")

	data, err := app.store.References.PlacementStatuses(r.Context(), tenant, referenceFilter(r), 0)
	if err != nil {
		writeError(w, err)
		return
	}

	resp := &PlacementStatusListResponse{
		Success: true,
		Data:    data,
		Message: "Successfully listed placement statuses",
	}

	if err := writeJSON(w, http.StatusOK, resp); err != nil {
		writeJSONError(w, http.StatusInternalServerError, "failed to write response")
	}
}

func (app *application) handleCreatePlacementStatus(w http.ResponseWriter, r *http.Request) {
	tenant := chi.URLParam(r, "tenant")

	var payload NamePayload
	if err := readJSON(w, r, &payload); err != nil {
		return
	}

	data, err := app.store.References.CreatePlacementStatus(r.Context(), tenant, payload.Name)
	if err != nil {
		writeError(w, err)
		return
	}

	resp := &PlacementStatusResponse{
		Success: true,
		Data:    data,
		Message: "Successfully created placement status",
	}

	if err := writeJSON(w, http.StatusCreated, resp); err != nil {
		writeJSONError(w, http.StatusInternalServerError, "failed to write response")
	}
}

func (app *application) handleListHistoryTypes(w http.ResponseWriter, r *http.Request) {
	tenant := chi.URLParam(r, "tenant")

	data, err := app.store.References.HistoryTypes(r.Context(), tenant, referenceFilter(r), 0)
	if err != nil {
		writeError(w, err)
		return
	}

	resp := &HistoryTypeListResponse{
		Success: true,
		Data:    data,
		Message: "Successfully listed history types",
	}

	if err := writeJSON(w, http.StatusOK, resp); err != nil {
		writeJSONError(w, http.StatusInternalServerError, "failed to write response")
	}
}

func (app *application) handleCreateHistoryType(w http.ResponseWriter, r *http.Request) {
	tenant := chi.URLParam(r, "tenant")

	var payload HistoryTypePayload
	if err := readJSON(w, r, &payload); err != nil {
		return
	}

	data, err := app.store.References.CreateHistoryType(r.Context(), tenant, payload.Name, payload.Confidential)
	if err != nil {
		writeError(w, err)
		return
	}

	resp := &HistoryTypeResponse{
		Success: true,
		Data:    data,
		Message: "Successfully created history type",
	}

	if err := writeJSON(w, http.StatusCreated, resp); err != nil {
		writeJSONError(w, http.StatusInternalServerError, "failed to write response")
	}
}

func (app *application) handleDeleteReference(w http.ResponseWriter, r *http.Request) {
	tenant := chi.URLParam(r, "tenant")

	kind := chi.URLParam(r, "kind")
	logical, ok := referenceKinds[kind]
	if !ok {
		writeJSONError(w, http.StatusBadRequest, fmt.Sprintf("unknown reference kind (%s)", kind))
		return
	}

	if err := app.store.References.SoftDelete(r.Context(), tenant, logical, chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}

	resp := &DeletedResponse{
		Success: true,
		Message: "Successfully removed reference entry",
	}

	if err := writeJSON(w, http.StatusOK, resp); err != nil {
		writeJSONError(w, http.StatusInternalServerError, "failed to write response")
	}
}

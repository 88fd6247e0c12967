package main

import (
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/flemdev/portal-ppe/internal/apierror"
	"github.com/flemdev/portal-ppe/internal/response"
)

var validate = validator.New()

func writeJSON(w http.ResponseWriter, status int, data any) error {
	w.Header().Set("Content-Type", "application/json")

	w.WriteHeader(status)

	return json.NewEncoder(w).Encode(data)
}

func writeJSONError(w http.ResponseWriter, status int, message string) error {
	return writeJSON(w, status, &response.ErrorResponse{Error: message})

}

// writeError maps the error envelope onto the HTTP status.
func writeError(w http.ResponseWriter, err error) error {
	return writeJSONError(w, apierror.StatusOf(err), err.Error())
}

func readJSON(w http.ResponseWriter, r *http.Request, data any) error {
	maxBytes := 1_048_576 // 1 MB
	r.Body = http.MaxBytesReader(w, r.Body, int64(maxBytes))
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	err := dec.Decode(data)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "malformed request body")
		return err
	}

	if err := validate.Struct(data); err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return err
	}

	return nil
}

package store

import (
	"fmt"
	"sort"
	"strings"

	"github.com/flemdev/portal-ppe/internal/apierror"
	"github.com/lib/pq"
)

// Filter is the search criterion accepted by every list operation. Fields
// hold exact-match predicates, Contains holds substring predicates; the
// predicates are joined by Condition ("AND" unless "OR" is requested).
//
// Soft-deleted rows are excluded by default only when the filter is empty.
// A non-empty filter must opt in via Excluded, mirroring how callers search
// for rows pending restoration.
type Filter struct {
	Condition string
	Fields    map[string][]string
	Contains  map[string][]string
	Excluded  *bool
}

func (f Filter) IsEmpty() bool {
	return len(f.Fields) == 0 && len(f.Contains) == 0 && f.Excluded == nil
}

// Recognized filter criteria and the columns they address. Anything outside
// this list is a programmer error, not a silently-ignored criterion.
var filterColumns = map[string]string{
	"id":              "id",
	"name":            "name",
	"cpf":             "cpf",
	"enrollment":      "enrollment",
	"abbreviation":    "abbreviation",
	"contact":         "contact",
	"email":           "email",
	"shipment_number": "shipment_number",
	"beneficiary_id":  "beneficiary_id",
	"status_id":       "status_id",
}

// whereClause renders the filter as a WHERE fragment with positional args
// starting at $1. An empty filter keeps the soft-delete default.
func (f Filter) whereClause() (string, []interface{}, error) {
	if f.IsEmpty() {
		return "WHERE excluded = FALSE", nil, nil
	}

	cond := " AND "
	if strings.EqualFold(f.Condition, "OR") {
		cond = " OR "
	}

	var preds []string
	var args []interface{}

	appendPred := func(field string, values []string, contains bool) error {
		col, ok := filterColumns[field]
		if !ok {
			return apierror.UnknownFilterField(field)
		}
		switch {
		case contains:
			for _, v := range values {
				args = append(args, "%"+v+"%")
				preds = append(preds, fmt.Sprintf("%s ILIKE $%d", col, len(args)))
			}
		case len(values) == 1:
			args = append(args, values[0])
			preds = append(preds, fmt.Sprintf("%s = $%d", col, len(args)))
		case len(values) > 1:
			args = append(args, pq.Array(values))
			preds = append(preds, fmt.Sprintf("%s = ANY($%d)", col, len(args)))
		}
		return nil
	}

	for _, field := range sortedKeys(f.Fields) {
		if err := appendPred(field, f.Fields[field], false); err != nil {
			return "", nil, err
		}
	}
	for _, field := range sortedKeys(f.Contains) {
		if err := appendPred(field, f.Contains[field], true); err != nil {
			return "", nil, err
		}
	}

	// A filter may carry only the Excluded predicate; no empty group then.
	clause := "WHERE"
	if len(preds) > 0 {
		clause += " (" + strings.Join(preds, cond) + ")"
	}
	if f.Excluded != nil {
		args = append(args, *f.Excluded)
		if len(preds) > 0 {
			clause += fmt.Sprintf(" AND excluded = $%d", len(args))
		} else {
			clause += fmt.Sprintf(" excluded = $%d", len(args))
		}
	}
	return clause, args, nil
}

func sortedKeys(m map[string][]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func limitClause(limit int) string {
	if limit > 0 {
		return fmt.Sprintf(" LIMIT %d", limit)
	}
	return ""
}

// ByName is the shorthand used all over the import pipeline for exact
// lookups against reference tables.
func ByName(name string) Filter {
	return Filter{Fields: map[string][]string{"name": {name}}}
}

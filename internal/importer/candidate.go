package importer

import "strings"

// Candidate is one spreadsheet row moving through the import pipeline.
// Field values are strings as they came from the sheet; the reconciliation
// and validation stages rewrite them in place and always return candidates
// with Found and Update populated.
type Candidate struct {
	Enrollment            string `json:"enrollment"`
	CPF                   string `json:"cpf"`
	Name                  string `json:"name"`
	BirthDate             string `json:"birth_date"`
	SchoolOfOrigin        string `json:"school_of_origin"`
	Sex                   string `json:"sex"`
	Course                string `json:"course"`
	Ethnicity             string `json:"ethnicity"`
	ResidenceMunicipality string `json:"residence_municipality"`
	PlacementMunicipality string `json:"placement_municipality"`
	DemandingOrg          string `json:"demanding_org"`
	Phone1                string `json:"phone_1"`
	Phone2                string `json:"phone_2"`
	ConvocationDate       string `json:"convocation_date"`

	// Reconciliation outcome. Found means the candidate matched a record in
	// the legacy or local store; Update means that record's placement is not
	// active and may be overwritten. Status carries the matched record's
	// current placement status for the review screen.
	Found  bool   `json:"found"`
	Update bool   `json:"update"`
	Status string `json:"status,omitempty"`
}

// NeedsReview reports whether any field was flagged for manual review.
func (c Candidate) NeedsReview() bool {
	for _, v := range []string{
		c.Enrollment, c.CPF, c.Name, c.Course, c.Ethnicity,
		c.ResidenceMunicipality, c.PlacementMunicipality, c.DemandingOrg,
	} {
		if strings.HasPrefix(v, ReviewMarker) {
			return true
		}
	}
	return false
}

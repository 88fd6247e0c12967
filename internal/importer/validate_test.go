package importer

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flemdev/portal-ppe/internal/apierror"
	"github.com/flemdev/portal-ppe/internal/store"
)

func validate(t *testing.T, refs *fakeReferences, candidates ...Candidate) []Candidate {
	t.Helper()
	validator := NewValidator(testStorage(nil, refs, nil, nil), quietLogger())
	out, err := validator.Validate(context.Background(), "ba", candidates)
	require.NoError(t, err)
	require.Len(t, out, len(candidates))
	return out
}

func TestValidateResolvesReferences(t *testing.T) {
	out := validate(t, testReferences(), Candidate{
		Name:                  "maria da silva",
		SchoolOfOrigin:        "colégio estadual da bahia",
		Sex:                   "FEMININO",
		Course:                "ADMINISTRACAO",
		Ethnicity:             "",
		ResidenceMunicipality: "salvador",
		PlacementMunicipality: "CAMACARI",
		DemandingOrg:          "SEC - Secretaria de Educação do Estado",
	})

	c := out[0]
	assert.Equal(t, "Maria da Silva", c.Name)
	assert.Equal(t, "Colégio Estadual da Bahia", c.SchoolOfOrigin)
	assert.Equal(t, "Feminino", c.Sex)
	assert.Equal(t, "Administração", c.Course)
	assert.Equal(t, "Não Informada", c.Ethnicity)
	assert.Equal(t, "Salvador", c.ResidenceMunicipality)
	assert.Equal(t, "Camaçari", c.PlacementMunicipality)
	assert.Equal(t, "SEC - Secretaria da Educação", c.DemandingOrg)
	assert.False(t, c.NeedsReview())
}

func TestValidateFlagsUnresolvedFields(t *testing.T) {
	out := validate(t, testReferences(), Candidate{
		Name:                  "jose santos",
		Course:                "Logística",
		Ethnicity:             "Parda",
		PlacementMunicipality: "Feira de Santana",
		DemandingOrg:          "SETRE - Secretaria do Trabalho",
	})

	c := out[0]
	assert.Equal(t, "*Logística", c.Course)
	assert.Equal(t, "*Feira de Santana", c.PlacementMunicipality)
	assert.Equal(t, "*SETRE - Secretaria do Trabalho", c.DemandingOrg)
	assert.True(t, c.NeedsReview())
}

func TestValidateSkipsActiveCandidates(t *testing.T) {
	out := validate(t, testReferences(), Candidate{
		Name:         "maria da silva",
		DemandingOrg: "unresolvable value",
		Found:        true,
		Update:       false,
	})

	c := out[0]
	assert.Equal(t, "maria da silva", c.Name, "active candidates pass through untouched")
	assert.Equal(t, "unresolvable value", c.DemandingOrg)
}

func TestValidateFailsWithoutNotInformedEthnicity(t *testing.T) {
	refs := testReferences()
	refs.ethnicities = []store.Ethnicity{{ID: "eth-1", Name: "Parda"}}
	validator := NewValidator(testStorage(nil, refs, nil, nil), quietLogger())

	_, err := validator.Validate(context.Background(), "ba", []Candidate{{Name: "maria", Ethnicity: ""}})
	require.Error(t, err)

	var apiErr *apierror.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, apierror.KindInternal, apiErr.Kind)
}

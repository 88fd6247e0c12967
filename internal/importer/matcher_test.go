package importer

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flemdev/portal-ppe/internal/apierror"
	"github.com/flemdev/portal-ppe/internal/store"
)

func checkLocal(t *testing.T, beneficiaries *fakeBeneficiaries, candidates ...Candidate) []Candidate {
	t.Helper()
	matcher := NewMatcher(testStorage(beneficiaries, nil, nil, nil), &fakeLegacy{}, quietLogger())
	out, err := matcher.CheckAgainstStore(context.Background(), false, "ba", candidates)
	require.NoError(t, err)
	require.Len(t, out, len(candidates))
	return out
}

func TestMatcherActiveRecordIsNotUpdated(t *testing.T) {
	beneficiaries := &fakeBeneficiaries{records: []store.ReconRecord{
		{Enrollment: "12345", Name: "Maria da Silva", CPF: "11122233344", Status: "Ativo"},
	}}

	out := checkLocal(t, beneficiaries, Candidate{
		Enrollment: "12345", CPF: "11122233344", Name: "MARIA DA SILVA",
	})

	c := out[0]
	assert.True(t, c.Found)
	assert.False(t, c.Update)
	assert.Equal(t, "Ativo", c.Status)
	assert.Equal(t, "maria da silva", c.Name)
	assert.Equal(t, "111.222.333-44", c.CPF)
}

func TestMatcherInactiveRecordIsUpdated(t *testing.T) {
	beneficiaries := &fakeBeneficiaries{records: []store.ReconRecord{
		{Enrollment: "12345", Name: "Maria da Silva", Status: "Desligado"},
	}}

	out := checkLocal(t, beneficiaries, Candidate{Enrollment: "12345", Name: "Maria da Silva"})

	c := out[0]
	assert.True(t, c.Found)
	assert.True(t, c.Update)
	assert.Equal(t, "Desligado", c.Status)
}

func TestMatcherNameMismatchFlagsBothFields(t *testing.T) {
	beneficiaries := &fakeBeneficiaries{records: []store.ReconRecord{
		{Enrollment: "12345", Name: "Joana Souza", Status: "Ativo"},
	}}

	out := checkLocal(t, beneficiaries, Candidate{Enrollment: "12345", Name: "MARIA DA SILVA"})

	c := out[0]
	assert.False(t, c.Found, "an identity conflict is never an automatic match")
	assert.False(t, c.Update)
	assert.Equal(t, "*maria da silva", c.Name)
	assert.Equal(t, "*12345", c.Enrollment)
}

func TestMatcherMatchesByCPFAlone(t *testing.T) {
	beneficiaries := &fakeBeneficiaries{records: []store.ReconRecord{
		{Enrollment: "99999", Name: "Maria da Silva", CPF: "111.222.333-44", Status: "Em Curso"},
	}}

	out := checkLocal(t, beneficiaries, Candidate{
		Enrollment: "12345", CPF: "11122233344", Name: "Maria da Silva",
	})

	c := out[0]
	assert.True(t, c.Found)
	assert.True(t, c.Update)
	assert.Equal(t, "12345", c.Enrollment, "enrollment pass missed, cpf pass matched")
}

func TestMatcherUnknownCandidateStaysNew(t *testing.T) {
	out := checkLocal(t, &fakeBeneficiaries{}, Candidate{
		Enrollment: "12345", CPF: "11122233344", Name: "Maria da Silva",
	})

	c := out[0]
	assert.False(t, c.Found)
	assert.False(t, c.Update)
	assert.Equal(t, "111.222.333-44", c.CPF, "cpf is masked even without a match")
}

func TestMatcherBahiaRequiresEnrollment(t *testing.T) {
	out := checkLocal(t, &fakeBeneficiaries{}, Candidate{CPF: "11122233344", Name: "Maria da Silva"})
	assert.Equal(t, "*", out[0].Enrollment)
	assert.True(t, out[0].NeedsReview())
}

func TestMatcherBatchesLookupKeys(t *testing.T) {
	beneficiaries := &fakeBeneficiaries{}
	checkLocal(t, beneficiaries,
		Candidate{Enrollment: "111", CPF: "11122233344", Name: "A"},
		Candidate{Enrollment: "222", Name: "B"},
		Candidate{CPF: "55566677788", Name: "C"},
	)

	assert.Equal(t, []string{"111", "222"}, beneficiaries.gotEnrollments)
	assert.Equal(t, []string{"111.222.333-44", "555.666.777-88"}, beneficiaries.gotCPFs)
}

func TestMatcherLegacyLookup(t *testing.T) {
	legacy := &fakeLegacy{records: []store.ReconRecord{
		{Enrollment: "12345", Name: "Maria da Silva", Status: "ativo"},
	}}
	matcher := NewMatcher(testStorage(nil, nil, nil, nil), legacy, quietLogger())

	out, err := matcher.CheckAgainstStore(context.Background(), true, "ba",
		[]Candidate{{Enrollment: "12345", Name: "Maria da Silva"}})
	require.NoError(t, err)
	assert.True(t, out[0].Found)
	assert.False(t, out[0].Update)
}

func TestMatcherLegacyFailureIsExternal(t *testing.T) {
	legacy := &fakeLegacy{err: errors.New("connection refused")}
	matcher := NewMatcher(testStorage(nil, nil, nil, nil), legacy, quietLogger())

	_, err := matcher.CheckAgainstStore(context.Background(), true, "ba",
		[]Candidate{{Enrollment: "12345", Name: "Maria"}})
	require.Error(t, err)

	var apiErr *apierror.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, apierror.KindExternal, apiErr.Kind)
}

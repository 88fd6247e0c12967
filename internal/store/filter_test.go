package store

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flemdev/portal-ppe/internal/apierror"
)

func TestWhereClauseEmptyFilterExcludesSoftDeleted(t *testing.T) {
	clause, args, err := Filter{}.whereClause()
	require.NoError(t, err)
	assert.Equal(t, "WHERE excluded = FALSE", clause)
	assert.Empty(t, args)
}

func TestWhereClauseSingleEquality(t *testing.T) {
	f := Filter{Fields: map[string][]string{"name": {"Realizar Contato"}}}
	clause, args, err := f.whereClause()
	require.NoError(t, err)
	assert.Equal(t, "WHERE (name = $1)", clause)
	assert.Equal(t, []interface{}{"Realizar Contato"}, args)
}

func TestWhereClauseBatchedOrLookup(t *testing.T) {
	f := Filter{
		Condition: "OR",
		Fields: map[string][]string{
			"cpf":        {"111.111.111-11", "222.222.222-22"},
			"enrollment": {"12345", "67890"},
		},
	}
	clause, args, err := f.whereClause()
	require.NoError(t, err)
	// Keys render in sorted order, so cpf comes first.
	assert.Equal(t, "WHERE (cpf = ANY($1) OR enrollment = ANY($2))", clause)
	assert.Len(t, args, 2)
}

func TestWhereClauseContains(t *testing.T) {
	f := Filter{Contains: map[string][]string{"name": {"silva"}}}
	clause, args, err := f.whereClause()
	require.NoError(t, err)
	assert.Equal(t, "WHERE (name ILIKE $1)", clause)
	assert.Equal(t, []interface{}{"%silva%"}, args)
}

func TestWhereClauseExplicitExcluded(t *testing.T) {
	excluded := true
	f := Filter{
		Fields:   map[string][]string{"name": {"SEC"}},
		Excluded: &excluded,
	}
	clause, args, err := f.whereClause()
	require.NoError(t, err)
	assert.Equal(t, "WHERE (name = $1) AND excluded = $2", clause)
	assert.Equal(t, []interface{}{"SEC", true}, args)
}

func TestWhereClauseExcludedOnly(t *testing.T) {
	excluded := true
	f := Filter{Excluded: &excluded}
	clause, args, err := f.whereClause()
	require.NoError(t, err)
	assert.Equal(t, "WHERE excluded = $1", clause)
	assert.Equal(t, []interface{}{true}, args)
	assert.NotContains(t, clause, "()")
}

func TestWhereClauseUnknownFieldIsHardError(t *testing.T) {
	f := Filter{Fields: map[string][]string{"favorite_color": {"blue"}}}
	_, _, err := f.whereClause()
	require.Error(t, err)

	var apiErr *apierror.Error
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, apierror.KindInternal, apiErr.Kind)
	assert.Contains(t, apiErr.Message, "favorite_color")
}

func TestTableForRejectsUnknownTenant(t *testing.T) {
	registry := NewTableRegistry([]string{"ba", "to"})

	table, err := registry.TableFor("ba", TableBeneficiaries)
	require.NoError(t, err)
	assert.Equal(t, "ba_beneficiaries", table)

	_, err = registry.TableFor("xx", TableBeneficiaries)
	require.Error(t, err)

	_, err = registry.TableFor("ba", "ba_beneficiaries; DROP TABLE students")
	require.Error(t, err)
}

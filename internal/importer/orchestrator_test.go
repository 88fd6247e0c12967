package importer

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flemdev/portal-ppe/internal/apierror"
)

func importableRow() Candidate {
	return Candidate{
		Enrollment:            "12345",
		CPF:                   "111.222.333-44",
		Name:                  "Maria da Silva",
		BirthDate:             "02/03/2001",
		SchoolOfOrigin:        "Colégio Estadual da Bahia",
		Sex:                   "feminino",
		Course:                "Administração",
		Ethnicity:             "Parda",
		ResidenceMunicipality: "Salvador",
		PlacementMunicipality: "Camaçari",
		DemandingOrg:          "SEC - Secretaria da Educação",
		Phone1:                "71987654321",
		ConvocationDate:       "15/01/2024",
	}
}

func TestImportBatchCreatesShipmentPlacementAndHistory(t *testing.T) {
	beneficiaries := &fakeBeneficiaries{}
	shipments := &fakeShipments{}
	history := &fakeHistory{}
	files := &fakeFiles{}
	orch := NewOrchestrator(testStorage(beneficiaries, testReferences(), shipments, history), files, quietLogger())

	result, err := orch.ImportBatch(context.Background(), "ba", ImportInput{
		ShipmentNumber: 7,
		ShipmentDate:   time.Date(2024, 1, 20, 0, 0, 0, 0, time.UTC),
		FileID:         "file-9",
		Rows:           []Candidate{importableRow()},
	})
	require.NoError(t, err)

	require.Len(t, shipments.inserted, 1)
	assert.Equal(t, 7, shipments.inserted[0].ShipmentNumber)
	assert.Equal(t, "file-9", shipments.inserted[0].SourceFileID)

	require.Len(t, beneficiaries.gotBatches, 1)
	require.Len(t, beneficiaries.gotBatches[0], 1)
	upsert := beneficiaries.gotBatches[0][0]
	assert.Equal(t, "12345", upsert.Beneficiary.Enrollment)
	assert.Equal(t, "Feminino", upsert.Beneficiary.Sex)
	require.NotNil(t, upsert.Beneficiary.BirthDate)
	assert.Equal(t, time.Date(2001, 3, 2, 0, 0, 0, 0, time.UTC), *upsert.Beneficiary.BirthDate)
	assert.Equal(t, []string{"(71) 98765-4321"}, upsert.Phones)
	assert.Equal(t, "org-1", upsert.Placement.DemandingOrgID)
	assert.Equal(t, "mun-2", upsert.Placement.MunicipalityID)
	assert.Equal(t, "status-1", upsert.Placement.StatusID)
	assert.Equal(t, shipments.inserted[0].ID, upsert.Placement.ShipmentID)

	require.Len(t, history.entries, 1)
	entry := history.entries[0]
	assert.Equal(t, "Atribuída nova vaga ao beneficiário. Remessa nº 7", entry.Description)
	assert.Equal(t, "type-1", entry.TypeID)
	require.NotNil(t, entry.ShipmentID)
	assert.Equal(t, shipments.inserted[0].ID, *entry.ShipmentID)
	assert.Equal(t, []string{"ben-1"}, history.linkedBeneficiary)
	assert.Equal(t, []string{"plc-1"}, history.linkedPlacement)

	assert.Equal(t, []string{"file-9"}, files.indexed)
	require.Len(t, result.Created, 1)
	assert.Equal(t, "12345", result.Created[0].Enrollment)
}

func TestImportBatchSkipsActiveRows(t *testing.T) {
	beneficiaries := &fakeBeneficiaries{}
	orch := NewOrchestrator(testStorage(beneficiaries, testReferences(), nil, nil), &fakeFiles{}, quietLogger())

	active := importableRow()
	active.Found = true

	result, err := orch.ImportBatch(context.Background(), "ba", ImportInput{
		ShipmentNumber: 8,
		ShipmentDate:   time.Now(),
		Rows:           []Candidate{active},
	})
	require.NoError(t, err)

	require.Len(t, beneficiaries.gotBatches, 1)
	assert.Empty(t, beneficiaries.gotBatches[0])
	assert.Empty(t, result.Created)
}

func TestImportBatchRejectsUnresolvableReference(t *testing.T) {
	history := &fakeHistory{}
	orch := NewOrchestrator(testStorage(nil, testReferences(), nil, history), &fakeFiles{}, quietLogger())

	row := importableRow()
	row.DemandingOrg = "SETRE - Secretaria do Trabalho"

	_, err := orch.ImportBatch(context.Background(), "ba", ImportInput{
		ShipmentNumber: 9,
		ShipmentDate:   time.Now(),
		Rows:           []Candidate{row},
	})
	require.Error(t, err)
	assert.Equal(t, 400, apierror.StatusOf(err))
	assert.Empty(t, history.entries, "a failed batch writes no audit entry")
}

func TestImportBatchRejectsInvalidDate(t *testing.T) {
	orch := NewOrchestrator(testStorage(nil, testReferences(), nil, nil), &fakeFiles{}, quietLogger())

	row := importableRow()
	row.BirthDate = "2001-03-02"

	_, err := orch.ImportBatch(context.Background(), "ba", ImportInput{
		ShipmentNumber: 10,
		ShipmentDate:   time.Now(),
		Rows:           []Candidate{row},
	})
	require.Error(t, err)
	assert.Equal(t, 400, apierror.StatusOf(err))
}

func TestImportBatchPropagatesWriteFailure(t *testing.T) {
	beneficiaries := &fakeBeneficiaries{upsertErr: errors.New("deadlock detected")}
	history := &fakeHistory{}
	orch := NewOrchestrator(testStorage(beneficiaries, testReferences(), nil, history), &fakeFiles{}, quietLogger())

	_, err := orch.ImportBatch(context.Background(), "ba", ImportInput{
		ShipmentNumber: 11,
		ShipmentDate:   time.Now(),
		Rows:           []Candidate{importableRow()},
	})
	require.Error(t, err)
	assert.Empty(t, history.entries)
}

func TestImportBatchSurvivesFileIndexFailure(t *testing.T) {
	files := &fakeFiles{err: errors.New("file service down")}
	orch := NewOrchestrator(testStorage(nil, testReferences(), nil, nil), files, quietLogger())

	result, err := orch.ImportBatch(context.Background(), "ba", ImportInput{
		ShipmentNumber: 12,
		ShipmentDate:   time.Now(),
		FileID:         "file-1",
		Rows:           []Candidate{importableRow()},
	})
	require.NoError(t, err, "file indexing is best-effort")
	require.NotNil(t, result.History)
	assert.Equal(t, []string{"file-1"}, files.indexed)
}

func TestImportBatchRequiresDefaultStatus(t *testing.T) {
	refs := testReferences()
	refs.statuses = nil
	orch := NewOrchestrator(testStorage(nil, refs, nil, nil), &fakeFiles{}, quietLogger())

	_, err := orch.ImportBatch(context.Background(), "ba", ImportInput{
		ShipmentNumber: 13,
		ShipmentDate:   time.Now(),
		Rows:           []Candidate{importableRow()},
	})
	require.Error(t, err)

	var apiErr *apierror.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, apierror.KindInternal, apiErr.Kind)
}

package importer

import (
	"context"
	"fmt"

	"github.com/flemdev/portal-ppe/internal/logger"
	"github.com/flemdev/portal-ppe/internal/store"
)

// In-memory stand-ins for the storage interfaces, enough to drive the
// pipeline without a database.

type fakeBeneficiaries struct {
	records   []store.ReconRecord
	reconErr  error
	upsertErr error

	gotEnrollments []string
	gotCPFs        []string
	gotBatches     [][]store.BeneficiaryUpsert
}

func (f *fakeBeneficiaries) List(ctx context.Context, tenant string, filter store.Filter, limit int) ([]store.Beneficiary, error) {
	return nil, nil
}

func (f *fakeBeneficiaries) GetByID(ctx context.Context, tenant, id string) (*store.Beneficiary, error) {
	return nil, nil
}

func (f *fakeBeneficiaries) Update(ctx context.Context, tenant string, b *store.Beneficiary) error {
	return nil
}

func (f *fakeBeneficiaries) SoftDelete(ctx context.Context, tenant, id string) error {
	return nil
}

func (f *fakeBeneficiaries) FindForReconciliation(ctx context.Context, tenant string, enrollments, cpfs []string) ([]store.ReconRecord, error) {
	f.gotEnrollments = enrollments
	f.gotCPFs = cpfs
	return f.records, f.reconErr
}

func (f *fakeBeneficiaries) UpsertBatch(ctx context.Context, tenant string, batch []store.BeneficiaryUpsert) ([]store.ImportedBeneficiary, error) {
	f.gotBatches = append(f.gotBatches, batch)
	if f.upsertErr != nil {
		return nil, f.upsertErr
	}
	created := make([]store.ImportedBeneficiary, len(batch))
	for i, row := range batch {
		created[i] = store.ImportedBeneficiary{
			BeneficiaryID: fmt.Sprintf("ben-%d", i+1),
			PlacementID:   fmt.Sprintf("plc-%d", i+1),
			Enrollment:    row.Beneficiary.Enrollment,
		}
	}
	return created, nil
}

type fakePlacements struct{}

func (f *fakePlacements) ListByBeneficiary(ctx context.Context, tenant, beneficiaryID string) ([]store.Placement, error) {
	return nil, nil
}

func (f *fakePlacements) UpdateStatus(ctx context.Context, tenant, placementID, statusID string) error {
	return nil
}

type fakeShipments struct {
	inserted []*store.Shipment
}

func (f *fakeShipments) Insert(ctx context.Context, tenant string, shipment *store.Shipment) error {
	shipment.ID = fmt.Sprintf("shipment-%d", len(f.inserted)+1)
	f.inserted = append(f.inserted, shipment)
	return nil
}

func (f *fakeShipments) List(ctx context.Context, tenant string, limit int) ([]store.Shipment, error) {
	return nil, nil
}

func (f *fakeShipments) GetByNumber(ctx context.Context, tenant string, number int) (*store.Shipment, error) {
	return nil, nil
}

type fakeHistory struct {
	entries           []*store.HistoryEntry
	linkedBeneficiary []string
	linkedPlacement   []string
}

func (f *fakeHistory) Insert(ctx context.Context, tenant string, entry *store.HistoryEntry) error {
	entry.ID = fmt.Sprintf("history-%d", len(f.entries)+1)
	f.entries = append(f.entries, entry)
	return nil
}

func (f *fakeHistory) LinkImport(ctx context.Context, tenant, historyID string, beneficiaryIDs, placementIDs []string) error {
	f.linkedBeneficiary = append(f.linkedBeneficiary, beneficiaryIDs...)
	f.linkedPlacement = append(f.linkedPlacement, placementIDs...)
	return nil
}

func (f *fakeHistory) ListByBeneficiary(ctx context.Context, tenant, beneficiaryID string, limit int) ([]store.HistoryEntry, error) {
	return nil, nil
}

type fakeReferences struct {
	orgs           []store.DemandingOrg
	municipalities []store.Municipality
	courses        []store.Course
	ethnicities    []store.Ethnicity
	statuses       []store.PlacementStatus
	historyTypes   []store.HistoryType
}

// filterName extracts the exact-name predicate from a ByName filter, or ""
// when the whole list was requested.
func filterName(f store.Filter) string {
	if values, ok := f.Fields["name"]; ok && len(values) == 1 {
		return values[0]
	}
	return ""
}

func (f *fakeReferences) DemandingOrgs(ctx context.Context, tenant string, filter store.Filter, limit int) ([]store.DemandingOrg, error) {
	name := filterName(filter)
	if name == "" {
		return f.orgs, nil
	}
	for _, org := range f.orgs {
		if org.Name == name {
			return []store.DemandingOrg{org}, nil
		}
	}
	return nil, nil
}

func (f *fakeReferences) CreateDemandingOrg(ctx context.Context, tenant, name, abbreviation string) (*store.DemandingOrg, error) {
	return nil, nil
}

func (f *fakeReferences) Municipalities(ctx context.Context, tenant string, filter store.Filter, limit int) ([]store.Municipality, error) {
	name := filterName(filter)
	if name == "" {
		return f.municipalities, nil
	}
	for _, m := range f.municipalities {
		if m.Name == name {
			return []store.Municipality{m}, nil
		}
	}
	return nil, nil
}

func (f *fakeReferences) CreateMunicipality(ctx context.Context, tenant, name string) (*store.Municipality, error) {
	return nil, nil
}

func (f *fakeReferences) Ethnicities(ctx context.Context, tenant string, filter store.Filter, limit int) ([]store.Ethnicity, error) {
	name := filterName(filter)
	if name == "" {
		return f.ethnicities, nil
	}
	for _, e := range f.ethnicities {
		if e.Name == name {
			return []store.Ethnicity{e}, nil
		}
	}
	return nil, nil
}

func (f *fakeReferences) CreateEthnicity(ctx context.Context, tenant, name string) (*store.Ethnicity, error) {
	return nil, nil
}

func (f *fakeReferences) Courses(ctx context.Context, tenant string, filter store.Filter, limit int) ([]store.Course, error) {
	name := filterName(filter)
	if name == "" {
		return f.courses, nil
	}
	for _, c := range f.courses {
		if c.Name == name {
			return []store.Course{c}, nil
		}
	}
	return nil, nil
}

func (f *fakeReferences) CreateCourse(ctx context.Context, tenant, name string) (*store.Course, error) {
	return nil, nil
}

func (f *fakeReferences) PlacementStatuses(ctx context.Context, tenant string, filter store.Filter, limit int) ([]store.PlacementStatus, error) {
	name := filterName(filter)
	if name == "" {
		return f.statuses, nil
	}
	for _, s := range f.statuses {
		if s.Name == name {
			return []store.PlacementStatus{s}, nil
		}
	}
	return nil, nil
}

func (f *fakeReferences) CreatePlacementStatus(ctx context.Context, tenant, name string) (*store.PlacementStatus, error) {
	return nil, nil
}

func (f *fakeReferences) HistoryTypes(ctx context.Context, tenant string, filter store.Filter, limit int) ([]store.HistoryType, error) {
	name := filterName(filter)
	if name == "" {
		return f.historyTypes, nil
	}
	for _, ht := range f.historyTypes {
		if ht.Name == name {
			return []store.HistoryType{ht}, nil
		}
	}
	return nil, nil
}

func (f *fakeReferences) CreateHistoryType(ctx context.Context, tenant, name string, confidential bool) (*store.HistoryType, error) {
	return nil, nil
}

func (f *fakeReferences) SoftDelete(ctx context.Context, tenant, logical, id string) error {
	return nil
}

type fakeLegacy struct {
	records []store.ReconRecord
	err     error
}

func (f *fakeLegacy) FindBeneficiaries(ctx context.Context, tenant string, enrollments, cpfs []string) ([]store.ReconRecord, error) {
	return f.records, f.err
}

type fakeFiles struct {
	indexed []string
	err     error
}

func (f *fakeFiles) IndexFile(ctx context.Context, fileID string, reference interface{}) error {
	f.indexed = append(f.indexed, fileID)
	return f.err
}

func testStorage(b *fakeBeneficiaries, r *fakeReferences, s *fakeShipments, h *fakeHistory) *store.Storage {
	if b == nil {
		b = &fakeBeneficiaries{}
	}
	if r == nil {
		r = &fakeReferences{}
	}
	if s == nil {
		s = &fakeShipments{}
	}
	if h == nil {
		h = &fakeHistory{}
	}
	return &store.Storage{
		Beneficiaries: b,
		Placements:    &fakePlacements{},
		Shipments:     s,
		History:       h,
		References:    r,
	}
}

func testReferences() *fakeReferences {
	return &fakeReferences{
		orgs: []store.DemandingOrg{
			{ID: "org-1", Name: "Secretaria da Educação", Abbreviation: "SEC"},
			{ID: "org-2", Name: "Secretaria da Saúde", Abbreviation: "SESAB"},
		},
		municipalities: []store.Municipality{
			{ID: "mun-1", Name: "Salvador"},
			{ID: "mun-2", Name: "Camaçari"},
		},
		courses: []store.Course{
			{ID: "course-1", Name: "Administração"},
		},
		ethnicities: []store.Ethnicity{
			{ID: "eth-1", Name: "Parda"},
			{ID: "eth-2", Name: "Não Informada"},
		},
		statuses: []store.PlacementStatus{
			{ID: "status-1", Name: "Realizar Contato"},
		},
		historyTypes: []store.HistoryType{
			{ID: "type-1", Name: "Vaga"},
		},
	}
}

func quietLogger() *logger.Logger {
	return logger.New(logger.LevelError)
}

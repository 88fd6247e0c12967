package store

import (
	"context"

	"github.com/jmoiron/sqlx"
)

type Storage struct {
	Beneficiaries interface {
		List(ctx context.Context, tenant string, filter Filter, limit int) ([]Beneficiary, error)
		GetByID(ctx context.Context, tenant, id string) (*Beneficiary, error)
		Update(ctx context.Context, tenant string, b *Beneficiary) error
		SoftDelete(ctx context.Context, tenant, id string) error
		FindForReconciliation(ctx context.Context, tenant string, enrollments, cpfs []string) ([]ReconRecord, error)
		UpsertBatch(ctx context.Context, tenant string, batch []BeneficiaryUpsert) ([]ImportedBeneficiary, error)
	}

	Placements interface {
		ListByBeneficiary(ctx context.Context, tenant, beneficiaryID string) ([]Placement, error)
		UpdateStatus(ctx context.Context, tenant, placementID, statusID string) error
	}

	Shipments interface {
		Insert(ctx context.Context, tenant string, shipment *Shipment) error
		List(ctx context.Context, tenant string, limit int) ([]Shipment, error)
		GetByNumber(ctx context.Context, tenant string, number int) (*Shipment, error)
	}

	History interface {
		Insert(ctx context.Context, tenant string, entry *HistoryEntry) error
		LinkImport(ctx context.Context, tenant, historyID string, beneficiaryIDs, placementIDs []string) error
		ListByBeneficiary(ctx context.Context, tenant, beneficiaryID string, limit int) ([]HistoryEntry, error)
	}

	References interface {
		DemandingOrgs(ctx context.Context, tenant string, filter Filter, limit int) ([]DemandingOrg, error)
		CreateDemandingOrg(ctx context.Context, tenant, name, abbreviation string) (*DemandingOrg, error)
		Municipalities(ctx context.Context, tenant string, filter Filter, limit int) ([]Municipality, error)
		CreateMunicipality(ctx context.Context, tenant, name string) (*Municipality, error)
		Ethnicities(ctx context.Context, tenant string, filter Filter, limit int) ([]Ethnicity, error)
		CreateEthnicity(ctx context.Context, tenant, name string) (*Ethnicity, error)
		Courses(ctx context.Context, tenant string, filter Filter, limit int) ([]Course, error)
		CreateCourse(ctx context.Context, tenant, name string) (*Course, error)
		PlacementStatuses(ctx context.Context, tenant string, filter Filter, limit int) ([]PlacementStatus, error)
		CreatePlacementStatus(ctx context.Context, tenant, name string) (*PlacementStatus, error)
		HistoryTypes(ctx context.Context, tenant string, filter Filter, limit int) ([]HistoryType, error)
		CreateHistoryType(ctx context.Context, tenant, name string, confidential bool) (*HistoryType, error)
		SoftDelete(ctx context.Context, tenant, logical, id string) error
	}
}

func NewStorage(db *sqlx.DB, tables *TableRegistry) *Storage {
	return &Storage{
		Beneficiaries: &BeneficiaryStore{db: db, tables: tables},
		Placements:    &PlacementStore{db: db, tables: tables},
		Shipments:     &ShipmentStore{db: db, tables: tables},
		History:       &HistoryStore{db: db, tables: tables},
		References:    &ReferenceStore{db: db, tables: tables},
	}
}

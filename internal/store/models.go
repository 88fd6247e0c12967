package store

import (
	"time"
)

// Beneficiary represents one per-tenant 'beneficiaries' row. Enrollment
// (matrícula da secretaria) is the natural key used by the import pipeline.
type Beneficiary struct {
	ID                    string     `db:"id" json:"id"`
	Name                  string     `db:"name" json:"name"`
	Enrollment            string     `db:"enrollment" json:"enrollment"`
	CPF                   string     `db:"cpf" json:"cpf"`
	BirthDate             *time.Time `db:"birth_date" json:"birth_date,omitempty"`
	SchoolOfOrigin        string     `db:"school_of_origin" json:"school_of_origin"`
	Sex                   string     `db:"sex" json:"sex"`
	EthnicityID           *string    `db:"ethnicity_id" json:"ethnicity_id,omitempty"`
	CourseID              *string    `db:"course_id" json:"course_id,omitempty"`
	ResidenceMunicipality string     `db:"residence_municipality" json:"residence_municipality"`
	Excluded              bool       `db:"excluded" json:"excluded"`
	CreatedAt             time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt             time.Time  `db:"updated_at" json:"updated_at"`

	Contacts   []Contact   `db:"-" json:"contacts,omitempty"`
	Placements []Placement `db:"-" json:"placements,omitempty"`
}

type Contact struct {
	ID            string `db:"id" json:"id"`
	BeneficiaryID string `db:"beneficiary_id" json:"beneficiary_id"`
	Contact       string `db:"contact" json:"contact"`
	Kind          string `db:"kind" json:"kind"`
}

// Placement is one job assignment of a beneficiary. The current placement
// is the most recently created one.
type Placement struct {
	ID              string     `db:"id" json:"id"`
	BeneficiaryID   string     `db:"beneficiary_id" json:"beneficiary_id"`
	DemandingOrgID  string     `db:"demanding_org_id" json:"demanding_org_id"`
	MunicipalityID  string     `db:"municipality_id" json:"municipality_id"`
	StatusID        string     `db:"status_id" json:"status_id"`
	ShipmentID      string     `db:"shipment_id" json:"shipment_id"`
	ConvocationDate *time.Time `db:"convocation_date" json:"convocation_date,omitempty"`
	Excluded        bool       `db:"excluded" json:"excluded"`
	CreatedAt       time.Time  `db:"created_at" json:"created_at"`

	StatusName string `db:"status_name" json:"status_name,omitempty"`
}

// Shipment is one import batch. Immutable once created.
type Shipment struct {
	ID             string    `db:"id" json:"id"`
	ShipmentNumber int       `db:"shipment_number" json:"shipment_number"`
	ShipmentDate   time.Time `db:"shipment_date" json:"shipment_date"`
	SourceFileID   string    `db:"source_file_id" json:"source_file_id"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
}

// HistoryEntry is an append-only audit record. It is never updated or
// deleted; links to beneficiaries and placements live in join tables.
type HistoryEntry struct {
	ID           string    `db:"id" json:"id"`
	Description  string    `db:"description" json:"description"`
	TypeID       string    `db:"type_id" json:"type_id"`
	ShipmentID   *string   `db:"shipment_id" json:"shipment_id,omitempty"`
	Confidential bool      `db:"confidential" json:"confidential"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

type DemandingOrg struct {
	ID           string `db:"id" json:"id"`
	Name         string `db:"name" json:"name"`
	Abbreviation string `db:"abbreviation" json:"abbreviation"`
	Excluded     bool   `db:"excluded" json:"excluded"`
}

type Municipality struct {
	ID       string `db:"id" json:"id"`
	Name     string `db:"name" json:"name"`
	Excluded bool   `db:"excluded" json:"excluded"`
}

type Ethnicity struct {
	ID       string `db:"id" json:"id"`
	Name     string `db:"name" json:"name"`
	Excluded bool   `db:"excluded" json:"excluded"`
}

type Course struct {
	ID       string `db:"id" json:"id"`
	Name     string `db:"name" json:"name"`
	Excluded bool   `db:"excluded" json:"excluded"`
}

type PlacementStatus struct {
	ID       string  `db:"id" json:"id"`
	Name     string  `db:"name" json:"name"`
	TypeID   *string `db:"type_id" json:"type_id,omitempty"`
	Excluded bool    `db:"excluded" json:"excluded"`
}

type HistoryType struct {
	ID           string `db:"id" json:"id"`
	Name         string `db:"name" json:"name"`
	Confidential bool   `db:"confidential" json:"confidential"`
	Excluded     bool   `db:"excluded" json:"excluded"`
}

// ReconRecord is the projection used by the import reconciliation step:
// identity keys plus the name of the current (latest) placement status.
type ReconRecord struct {
	Enrollment string `db:"enrollment" json:"enrollment"`
	Name       string `db:"name" json:"name"`
	CPF        string `db:"cpf" json:"cpf"`
	Status     string `db:"status" json:"status"`
}

// BeneficiaryUpsert is one row of an import batch write: the beneficiary
// scalars, up to two phone contacts and exactly one new placement.
type BeneficiaryUpsert struct {
	Beneficiary Beneficiary
	Phones      []string
	Placement   PlacementCreate
}

type PlacementCreate struct {
	DemandingOrgID  string
	MunicipalityID  string
	StatusID        string
	ShipmentID      string
	ConvocationDate *time.Time
}

// ImportedBeneficiary reports what one upsert row produced.
type ImportedBeneficiary struct {
	BeneficiaryID string `json:"beneficiary_id"`
	PlacementID   string `json:"placement_id"`
	Enrollment    string `json:"enrollment"`
}

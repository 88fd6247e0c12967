package importer

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/flemdev/portal-ppe/internal/apierror"
	"github.com/flemdev/portal-ppe/internal/logger"
	"github.com/flemdev/portal-ppe/internal/masks"
	"github.com/flemdev/portal-ppe/internal/store"
)

const (
	// Every placement created by import starts in "contact pending".
	defaultStatusName = "Realizar Contato"

	// History entries produced by import carry the "Vaga" type.
	placementHistoryType = "Vaga"

	sheetDateLayout = "02/01/2006"
)

// FileIndexer associates the uploaded spreadsheet with the shipment it
// produced. Called best-effort after the transaction commits.
type FileIndexer interface {
	IndexFile(ctx context.Context, fileID string, reference interface{}) error
}

type ImportInput struct {
	ShipmentNumber int
	ShipmentDate   time.Time
	FileID         string
	Rows           []Candidate
}

type ImportResult struct {
	Shipment *store.Shipment             `json:"shipment"`
	Created  []store.ImportedBeneficiary `json:"created"`
	History  *store.HistoryEntry         `json:"history"`
}

// Orchestrator turns validated candidates into one durable import batch:
// a shipment, a beneficiary upsert with one new placement per row, and one
// audit entry linking everything the batch produced.
type Orchestrator struct {
	storage *store.Storage
	files   FileIndexer
	log     *logger.Logger
}

func NewOrchestrator(storage *store.Storage, files FileIndexer, log *logger.Logger) *Orchestrator {
	return &Orchestrator{storage: storage, files: files, log: log}
}

func (o *Orchestrator) ImportBatch(ctx context.Context, tenant string, in ImportInput) (*ImportResult, error) {
	const component = "ImportOrchestrator"

	shipment := &store.Shipment{
		ShipmentNumber: in.ShipmentNumber,
		ShipmentDate:   in.ShipmentDate,
		SourceFileID:   in.FileID,
	}
	if err := o.storage.Shipments.Insert(ctx, tenant, shipment); err != nil {
		return nil, err
	}

	statuses, err := o.storage.References.PlacementStatuses(ctx, tenant, store.ByName(defaultStatusName), 1)
	if err != nil {
		return nil, err
	}
	if len(statuses) == 0 {
		return nil, apierror.New(apierror.KindInternal, 500,
			fmt.Sprintf("default placement status %q is not configured for tenant %s", defaultStatusName, tenant))
	}
	defaultStatus := statuses[0]

	// Rows confirmed active stay untouched; everything else becomes one
	// upsert each. Reference IDs are re-derived here with exact lookups,
	// the advisory flags from validation are not trusted at write time.
	batch := make([]store.BeneficiaryUpsert, 0, len(in.Rows))
	for _, row := range in.Rows {
		if row.Found && !row.Update {
			continue
		}

		upsert, err := o.buildUpsert(ctx, tenant, row, defaultStatus.ID, shipment.ID)
		if err != nil {
			return nil, err
		}
		batch = append(batch, *upsert)
	}

	created, err := o.storage.Beneficiaries.UpsertBatch(ctx, tenant, batch)
	if err != nil {
		return nil, err
	}
	o.log.Info(component, "Imported shipment %d for tenant %s: %d beneficiaries written, %d skipped as active",
		in.ShipmentNumber, tenant, len(created), len(in.Rows)-len(batch))

	history, err := o.recordHistory(ctx, tenant, shipment, in.ShipmentNumber, created)
	if err != nil {
		return nil, err
	}

	// File indexing is fire-and-forget relative to the committed import: a
	// failure here is logged, never rolled back.
	if in.FileID != "" {
		if err := o.files.IndexFile(ctx, in.FileID, shipment); err != nil {
			o.log.Warn(component, "Failed to index source file %s for shipment %d: %v",
				in.FileID, in.ShipmentNumber, err)
		}
	}

	return &ImportResult{Shipment: shipment, Created: created, History: history}, nil
}

func (o *Orchestrator) buildUpsert(ctx context.Context, tenant string, row Candidate, statusID, shipmentID string) (*store.BeneficiaryUpsert, error) {
	orgID, municipalityID, courseID, ethnicityID, err := o.resolveRowRefs(ctx, tenant, row)
	if err != nil {
		return nil, err
	}

	birthDate, err := parseSheetDate(row.BirthDate)
	if err != nil {
		return nil, apierror.BadRequest(fmt.Sprintf("invalid birth date %q for enrollment %s", row.BirthDate, row.Enrollment))
	}
	convocationDate, err := parseSheetDate(row.ConvocationDate)
	if err != nil {
		return nil, apierror.BadRequest(fmt.Sprintf("invalid convocation date %q for enrollment %s", row.ConvocationDate, row.Enrollment))
	}

	phones := make([]string, 0, 2)
	for _, phone := range []string{row.Phone1, row.Phone2} {
		if phone != "" {
			phones = append(phones, masks.Phone(phone))
		}
	}

	return &store.BeneficiaryUpsert{
		Beneficiary: store.Beneficiary{
			Name:                  row.Name,
			Enrollment:            row.Enrollment,
			CPF:                   row.CPF,
			BirthDate:             birthDate,
			SchoolOfOrigin:        row.SchoolOfOrigin,
			Sex:                   masks.Capitalize(row.Sex),
			EthnicityID:           &ethnicityID,
			CourseID:              &courseID,
			ResidenceMunicipality: row.ResidenceMunicipality,
		},
		Phones: phones,
		Placement: store.PlacementCreate{
			DemandingOrgID:  orgID,
			MunicipalityID:  municipalityID,
			StatusID:        statusID,
			ShipmentID:      shipmentID,
			ConvocationDate: convocationDate,
		},
	}, nil
}

// resolveRowRefs maps the row's canonical names back to reference IDs.
// Any miss is fatal for the whole batch: unresolved values should have
// been flagged by validation and fixed before import was requested.
func (o *Orchestrator) resolveRowRefs(ctx context.Context, tenant string, row Candidate) (orgID, municipalityID, courseID, ethnicityID string, err error) {
	orgName := row.DemandingOrg
	if idx := strings.Index(orgName, " - "); idx >= 0 {
		orgName = orgName[idx+3:]
	}
	orgs, err := o.storage.References.DemandingOrgs(ctx, tenant, store.ByName(orgName), 1)
	if err != nil {
		return "", "", "", "", err
	}
	if len(orgs) == 0 {
		return "", "", "", "", apierror.BadRequest(
			fmt.Sprintf("demanding organization %q not found for enrollment %s", row.DemandingOrg, row.Enrollment))
	}

	municipalities, err := o.storage.References.Municipalities(ctx, tenant, store.ByName(row.PlacementMunicipality), 1)
	if err != nil {
		return "", "", "", "", err
	}
	if len(municipalities) == 0 {
		return "", "", "", "", apierror.BadRequest(
			fmt.Sprintf("municipality %q not found for enrollment %s", row.PlacementMunicipality, row.Enrollment))
	}

	courses, err := o.storage.References.Courses(ctx, tenant, store.ByName(row.Course), 1)
	if err != nil {
		return "", "", "", "", err
	}
	if len(courses) == 0 {
		return "", "", "", "", apierror.BadRequest(
			fmt.Sprintf("training course %q not found for enrollment %s", row.Course, row.Enrollment))
	}

	ethnicities, err := o.storage.References.Ethnicities(ctx, tenant, store.ByName(row.Ethnicity), 1)
	if err != nil {
		return "", "", "", "", err
	}
	if len(ethnicities) == 0 {
		return "", "", "", "", apierror.BadRequest(
			fmt.Sprintf("ethnicity %q not found for enrollment %s", row.Ethnicity, row.Enrollment))
	}

	return orgs[0].ID, municipalities[0].ID, courses[0].ID, ethnicities[0].ID, nil
}

func (o *Orchestrator) recordHistory(ctx context.Context, tenant string, shipment *store.Shipment, number int, created []store.ImportedBeneficiary) (*store.HistoryEntry, error) {
	types, err := o.storage.References.HistoryTypes(ctx, tenant, store.ByName(placementHistoryType), 1)
	if err != nil {
		return nil, err
	}
	if len(types) == 0 {
		return nil, apierror.New(apierror.KindInternal, 500,
			fmt.Sprintf("history type %q is not configured for tenant %s", placementHistoryType, tenant))
	}

	entry := &store.HistoryEntry{
		Description: fmt.Sprintf("Atribuída nova vaga ao beneficiário. Remessa nº %d", number),
		TypeID:      types[0].ID,
		ShipmentID:  &shipment.ID,
	}
	if err := o.storage.History.Insert(ctx, tenant, entry); err != nil {
		return nil, err
	}

	beneficiaryIDs := make([]string, len(created))
	placementIDs := make([]string, len(created))
	for i, c := range created {
		beneficiaryIDs[i] = c.BeneficiaryID
		placementIDs[i] = c.PlacementID
	}
	if err := o.storage.History.LinkImport(ctx, tenant, entry.ID, beneficiaryIDs, placementIDs); err != nil {
		return nil, err
	}
	return entry, nil
}

func parseSheetDate(raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(sheetDateLayout, raw)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

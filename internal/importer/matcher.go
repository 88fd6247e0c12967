package importer

import (
	"context"

	"github.com/flemdev/portal-ppe/internal/apierror"
	"github.com/flemdev/portal-ppe/internal/logger"
	"github.com/flemdev/portal-ppe/internal/masks"
	"github.com/flemdev/portal-ppe/internal/store"
)

const activeStatus = "ativo"

// LegacyClient is the read-only lookup against the external system of
// record consulted before the local database.
type LegacyClient interface {
	FindBeneficiaries(ctx context.Context, tenant string, enrollments, cpfs []string) ([]store.ReconRecord, error)
}

// Matcher annotates import candidates against either the legacy store or
// the local database. Active placements are authoritative: a stale
// spreadsheet never downgrades them.
type Matcher struct {
	storage *store.Storage
	legacy  LegacyClient
	log     *logger.Logger
}

func NewMatcher(storage *store.Storage, legacy LegacyClient, log *logger.Logger) *Matcher {
	return &Matcher{storage: storage, legacy: legacy, log: log}
}

// CheckAgainstStore issues one batched lookup (enrollment IN batch OR cpf
// IN batch) and classifies every candidate. Each candidate comes back
// fully populated: Found and Update are always set, the CPF is masked, the
// name normalized. Enrollment and CPF matching both run, and either can
// flag a record for review.
func (m *Matcher) CheckAgainstStore(ctx context.Context, useLegacy bool, tenant string, candidates []Candidate) ([]Candidate, error) {
	const component = "Matcher"

	enrollments := make([]string, 0, len(candidates))
	cpfs := make([]string, 0, len(candidates))
	for _, c := range candidates {
		if c.Enrollment != "" {
			enrollments = append(enrollments, c.Enrollment)
		}
		if c.CPF != "" {
			cpfs = append(cpfs, masks.CPF(c.CPF))
		}
	}

	var records []store.ReconRecord
	var err error
	if useLegacy {
		records, err = m.legacy.FindBeneficiaries(ctx, tenant, enrollments, cpfs)
		if err != nil {
			return nil, apierror.External(err, "legacy store lookup failed")
		}
	} else {
		records, err = m.storage.Beneficiaries.FindForReconciliation(ctx, tenant, enrollments, cpfs)
		if err != nil {
			return nil, err
		}
	}
	m.log.Info(component, "Checked %d candidates against %s store: %d records found",
		len(candidates), storeName(useLegacy), len(records))

	out := make([]Candidate, len(candidates))
	for i, c := range candidates {
		out[i] = m.classify(tenant, c, records)
	}
	return out, nil
}

func (m *Matcher) classify(tenant string, c Candidate, records []store.ReconRecord) Candidate {
	c.Name = NormalizeText(c.Name)
	if c.CPF != "" {
		c.CPF = masks.CPF(c.CPF)
	}
	if c.Enrollment == "" && tenant == "ba" {
		// Bahia requires the secretariat enrollment; force manual review.
		c.Enrollment = ReviewMarker
	}

	for _, record := range records {
		recordName := NormalizeText(record.Name)
		recordCPF := masks.CPF(record.CPF)

		// Match by secretariat enrollment.
		if c.Enrollment != "" && c.Enrollment == record.Enrollment {
			if recordName == c.Name {
				c.Found = true
				c.Update = NormalizeText(record.Status) != activeStatus
				c.Status = record.Status
			} else {
				// Same enrollment, different name: likely a transcription
				// error on the sheet. Flag both fields, leave Found unset.
				c.Name = ReviewMarker + c.Name
				c.Enrollment = ReviewMarker + c.Enrollment
			}
		}

		// Match by CPF, independently of the enrollment pass.
		if c.CPF != "" && c.CPF == recordCPF {
			if recordName == c.Name {
				c.Found = true
				c.Update = NormalizeText(record.Status) != activeStatus
				c.Status = record.Status
			} else {
				c.Name = ReviewMarker + c.Name
				c.CPF = ReviewMarker + c.CPF
			}
		}
	}

	return c
}

func storeName(useLegacy bool) string {
	if useLegacy {
		return "legacy"
	}
	return "local"
}

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/flemdev/portal-ppe/internal/apierror"
)

type BeneficiaryStore struct {
	db     *sqlx.DB
	tables *TableRegistry
}

const beneficiaryColumns = `id, name, enrollment, cpf, birth_date, school_of_origin, sex,
	ethnicity_id, course_id, residence_municipality, excluded, created_at, updated_at`

func (bs *BeneficiaryStore) List(ctx context.Context, tenant string, filter Filter, limit int) ([]Beneficiary, error) {
	table, err := bs.tables.TableFor(tenant, TableBeneficiaries)
	if err != nil {
		return nil, err
	}
	where, args, err := filter.whereClause()
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf("SELECT %s FROM %s %s ORDER BY name ASC%s",
		beneficiaryColumns, table, where, limitClause(limit))

	out := []Beneficiary{}
	if err := bs.db.SelectContext(ctx, &out, query, args...); err != nil {
		return nil, apierror.Internal(err, "failed to list beneficiaries")
	}
	return out, nil
}

func (bs *BeneficiaryStore) GetByID(ctx context.Context, tenant, id string) (*Beneficiary, error) {
	table, err := bs.tables.TableFor(tenant, TableBeneficiaries)
	if err != nil {
		return nil, err
	}

	var b Beneficiary
	query := fmt.Sprintf("SELECT %s FROM %s WHERE id = $1", beneficiaryColumns, table)
	if err := bs.db.GetContext(ctx, &b, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apierror.NotFound("beneficiary not found")
		}
		return nil, apierror.Internal(err, "failed to get beneficiary")
	}

	contactsTable, err := bs.tables.TableFor(tenant, TableContacts)
	if err != nil {
		return nil, err
	}
	contactsQuery := fmt.Sprintf(
		"SELECT id, beneficiary_id, contact, kind FROM %s WHERE beneficiary_id = $1", contactsTable)
	if err := bs.db.SelectContext(ctx, &b.Contacts, contactsQuery, id); err != nil {
		return nil, apierror.Internal(err, "failed to load beneficiary contacts")
	}

	placementsTable, err := bs.tables.TableFor(tenant, TablePlacements)
	if err != nil {
		return nil, err
	}
	statusTable, err := bs.tables.TableFor(tenant, TablePlacementStatuses)
	if err != nil {
		return nil, err
	}
	// Newest placement first; the head of the list is the current one.
	placementsQuery := fmt.Sprintf(`SELECT p.id, p.beneficiary_id, p.demanding_org_id,
		p.municipality_id, p.status_id, p.shipment_id, p.convocation_date, p.excluded,
		p.created_at, s.name AS status_name
		FROM %s p JOIN %s s ON s.id = p.status_id
		WHERE p.beneficiary_id = $1
		ORDER BY p.created_at DESC`, placementsTable, statusTable)
	if err := bs.db.SelectContext(ctx, &b.Placements, placementsQuery, id); err != nil {
		return nil, apierror.Internal(err, "failed to load beneficiary placements")
	}

	return &b, nil
}

func (bs *BeneficiaryStore) Update(ctx context.Context, tenant string, b *Beneficiary) error {
	table, err := bs.tables.TableFor(tenant, TableBeneficiaries)
	if err != nil {
		return err
	}

	query := fmt.Sprintf(`UPDATE %s SET
		name = :name,
		cpf = :cpf,
		birth_date = :birth_date,
		school_of_origin = :school_of_origin,
		sex = :sex,
		ethnicity_id = :ethnicity_id,
		course_id = :course_id,
		residence_municipality = :residence_municipality,
		updated_at = now()
		WHERE id = :id`, table)

	result, err := bs.db.NamedExecContext(ctx, query, b)
	if err != nil {
		return apierror.Internal(err, "failed to update beneficiary")
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return apierror.NotFound("beneficiary not found")
	}
	return nil
}

func (bs *BeneficiaryStore) SoftDelete(ctx context.Context, tenant, id string) error {
	table, err := bs.tables.TableFor(tenant, TableBeneficiaries)
	if err != nil {
		return err
	}

	query := fmt.Sprintf("UPDATE %s SET excluded = TRUE, updated_at = now() WHERE id = $1", table)
	result, err := bs.db.ExecContext(ctx, query, id)
	if err != nil {
		return apierror.Internal(err, "failed to soft-delete beneficiary")
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return apierror.NotFound("beneficiary not found")
	}
	return nil
}

// FindForReconciliation issues the single batched lookup of the import
// matcher: every beneficiary whose enrollment OR CPF appears in the batch,
// projected with the status name of its latest placement.
func (bs *BeneficiaryStore) FindForReconciliation(ctx context.Context, tenant string, enrollments, cpfs []string) ([]ReconRecord, error) {
	if len(enrollments) == 0 && len(cpfs) == 0 {
		return nil, nil
	}

	table, err := bs.tables.TableFor(tenant, TableBeneficiaries)
	if err != nil {
		return nil, err
	}
	placementsTable, err := bs.tables.TableFor(tenant, TablePlacements)
	if err != nil {
		return nil, err
	}
	statusTable, err := bs.tables.TableFor(tenant, TablePlacementStatuses)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`SELECT b.enrollment, b.name, b.cpf, COALESCE(s.name, '') AS status
		FROM %s b
		LEFT JOIN LATERAL (
			SELECT ps.name FROM %s p JOIN %s ps ON ps.id = p.status_id
			WHERE p.beneficiary_id = b.id
			ORDER BY p.created_at DESC LIMIT 1
		) s ON TRUE
		WHERE b.excluded = FALSE AND (b.enrollment = ANY($1) OR b.cpf = ANY($2))`,
		table, placementsTable, statusTable)

	out := []ReconRecord{}
	if err := bs.db.SelectContext(ctx, &out, query, pq.Array(enrollments), pq.Array(cpfs)); err != nil {
		return nil, apierror.Internal(err, "failed to query beneficiaries for reconciliation")
	}
	return out, nil
}

// UpsertBatch commits one import batch as a single transaction. Each row
// creates-or-overwrites the beneficiary keyed by enrollment, replaces its
// phone contacts and appends exactly one new placement. Any row failure
// rolls back the whole batch.
func (bs *BeneficiaryStore) UpsertBatch(ctx context.Context, tenant string, batch []BeneficiaryUpsert) ([]ImportedBeneficiary, error) {
	table, err := bs.tables.TableFor(tenant, TableBeneficiaries)
	if err != nil {
		return nil, err
	}
	contactsTable, err := bs.tables.TableFor(tenant, TableContacts)
	if err != nil {
		return nil, err
	}
	placementsTable, err := bs.tables.TableFor(tenant, TablePlacements)
	if err != nil {
		return nil, err
	}

	tx, err := bs.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, apierror.Internal(err, "failed to begin import transaction")
	}
	defer tx.Rollback()

	upsertQuery := fmt.Sprintf(`INSERT INTO %s
		(id, name, enrollment, cpf, birth_date, school_of_origin, sex,
		 ethnicity_id, course_id, residence_municipality, excluded, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, FALSE, now(), now())
		ON CONFLICT (enrollment) DO UPDATE SET
			name = EXCLUDED.name,
			cpf = EXCLUDED.cpf,
			birth_date = EXCLUDED.birth_date,
			school_of_origin = EXCLUDED.school_of_origin,
			sex = EXCLUDED.sex,
			ethnicity_id = EXCLUDED.ethnicity_id,
			course_id = EXCLUDED.course_id,
			residence_municipality = EXCLUDED.residence_municipality,
			excluded = FALSE,
			updated_at = now()
		RETURNING id`, table)

	deleteContactsQuery := fmt.Sprintf(
		"DELETE FROM %s WHERE beneficiary_id = $1 AND kind = 'telefone'", contactsTable)
	insertContactQuery := fmt.Sprintf(
		"INSERT INTO %s (id, beneficiary_id, contact, kind) VALUES ($1, $2, $3, 'telefone')", contactsTable)
	insertPlacementQuery := fmt.Sprintf(`INSERT INTO %s
		(id, beneficiary_id, demanding_org_id, municipality_id, status_id, shipment_id,
		 convocation_date, excluded, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, FALSE, now())`, placementsTable)

	created := make([]ImportedBeneficiary, 0, len(batch))
	for _, row := range batch {
		b := row.Beneficiary

		var beneficiaryID string
		err := tx.QueryRowxContext(ctx, upsertQuery,
			uuid.NewString(), b.Name, b.Enrollment, b.CPF, b.BirthDate, b.SchoolOfOrigin,
			b.Sex, b.EthnicityID, b.CourseID, b.ResidenceMunicipality,
		).Scan(&beneficiaryID)
		if err != nil {
			return nil, wrapTxError(err, fmt.Sprintf("failed to upsert beneficiary %s", b.Enrollment))
		}

		if _, err := tx.ExecContext(ctx, deleteContactsQuery, beneficiaryID); err != nil {
			return nil, wrapTxError(err, fmt.Sprintf("failed to reset contacts for %s", b.Enrollment))
		}
		for _, phone := range row.Phones {
			if phone == "" {
				continue
			}
			if _, err := tx.ExecContext(ctx, insertContactQuery, uuid.NewString(), beneficiaryID, phone); err != nil {
				return nil, wrapTxError(err, fmt.Sprintf("failed to insert contact for %s", b.Enrollment))
			}
		}

		placementID := uuid.NewString()
		p := row.Placement
		if _, err := tx.ExecContext(ctx, insertPlacementQuery,
			placementID, beneficiaryID, p.DemandingOrgID, p.MunicipalityID,
			p.StatusID, p.ShipmentID, p.ConvocationDate); err != nil {
			return nil, wrapTxError(err, fmt.Sprintf("failed to insert placement for %s", b.Enrollment))
		}

		created = append(created, ImportedBeneficiary{
			BeneficiaryID: beneficiaryID,
			PlacementID:   placementID,
			Enrollment:    b.Enrollment,
		})
	}

	if err := tx.Commit(); err != nil {
		return nil, apierror.Internal(err, "failed to commit import transaction")
	}
	return created, nil
}

// wrapTxError distinguishes natural-key contention from generic failures.
func wrapTxError(err error, message string) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		return apierror.Wrap(err, apierror.KindConflict, 409, message)
	}
	return apierror.Internal(err, message)
}

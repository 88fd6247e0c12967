package store

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/flemdev/portal-ppe/internal/apierror"
)

type PlacementStore struct {
	db     *sqlx.DB
	tables *TableRegistry
}

func (ps *PlacementStore) ListByBeneficiary(ctx context.Context, tenant, beneficiaryID string) ([]Placement, error) {
	table, err := ps.tables.TableFor(tenant, TablePlacements)
	if err != nil {
		return nil, err
	}
	statusTable, err := ps.tables.TableFor(tenant, TablePlacementStatuses)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`SELECT p.id, p.beneficiary_id, p.demanding_org_id, p.municipality_id,
		p.status_id, p.shipment_id, p.convocation_date, p.excluded, p.created_at,
		s.name AS status_name
		FROM %s p JOIN %s s ON s.id = p.status_id
		WHERE p.beneficiary_id = $1
		ORDER BY p.created_at DESC`, table, statusTable)

	out := []Placement{}
	if err := ps.db.SelectContext(ctx, &out, query, beneficiaryID); err != nil {
		return nil, apierror.Internal(err, "failed to list placements")
	}
	return out, nil
}

// UpdateStatus moves one placement through its externally-driven lifecycle.
// Status transitions carry no state machine here; the audit trail is the
// caller's responsibility.
func (ps *PlacementStore) UpdateStatus(ctx context.Context, tenant, placementID, statusID string) error {
	table, err := ps.tables.TableFor(tenant, TablePlacements)
	if err != nil {
		return err
	}

	query := fmt.Sprintf("UPDATE %s SET status_id = $1 WHERE id = $2", table)
	result, err := ps.db.ExecContext(ctx, query, statusID, placementID)
	if err != nil {
		return apierror.Internal(err, "failed to update placement status")
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return apierror.NotFound("placement not found")
	}
	return nil
}

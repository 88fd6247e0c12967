package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/flemdev/portal-ppe/internal/apierror"
)

// HistoryStore appends audit entries. Entries are never updated or deleted;
// links to the rows they describe live in join tables.
type HistoryStore struct {
	db     *sqlx.DB
	tables *TableRegistry
}

func (hs *HistoryStore) Insert(ctx context.Context, tenant string, entry *HistoryEntry) error {
	table, err := hs.tables.TableFor(tenant, TableHistory)
	if err != nil {
		return err
	}

	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}

	query := fmt.Sprintf(`INSERT INTO %s
		(id, description, type_id, shipment_id, confidential, created_at)
		VALUES (:id, :description, :type_id, :shipment_id, :confidential, now())
		RETURNING created_at`, table)

	rows, err := hs.db.NamedQueryContext(ctx, query, entry)
	if err != nil {
		return apierror.Internal(err, "failed to insert history entry")
	}
	defer rows.Close()

	if rows.Next() {
		if err := rows.Scan(&entry.CreatedAt); err != nil {
			return apierror.Internal(err, "failed to scan history timestamps")
		}
	}
	return nil
}

// LinkImport connects one history entry to every beneficiary and placement
// an import batch produced.
func (hs *HistoryStore) LinkImport(ctx context.Context, tenant, historyID string, beneficiaryIDs, placementIDs []string) error {
	benefTable, err := hs.tables.TableFor(tenant, TableHistoryBeneficiaries)
	if err != nil {
		return err
	}
	placementTable, err := hs.tables.TableFor(tenant, TableHistoryPlacements)
	if err != nil {
		return err
	}

	benefQuery := fmt.Sprintf(
		"INSERT INTO %s (history_id, beneficiary_id) VALUES ($1, $2)", benefTable)
	for _, id := range beneficiaryIDs {
		if _, err := hs.db.ExecContext(ctx, benefQuery, historyID, id); err != nil {
			return apierror.Internal(err, "failed to link history to beneficiary")
		}
	}

	placementQuery := fmt.Sprintf(
		"INSERT INTO %s (history_id, placement_id) VALUES ($1, $2)", placementTable)
	for _, id := range placementIDs {
		if _, err := hs.db.ExecContext(ctx, placementQuery, historyID, id); err != nil {
			return apierror.Internal(err, "failed to link history to placement")
		}
	}
	return nil
}

func (hs *HistoryStore) ListByBeneficiary(ctx context.Context, tenant, beneficiaryID string, limit int) ([]HistoryEntry, error) {
	table, err := hs.tables.TableFor(tenant, TableHistory)
	if err != nil {
		return nil, err
	}
	linkTable, err := hs.tables.TableFor(tenant, TableHistoryBeneficiaries)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`SELECT h.id, h.description, h.type_id, h.shipment_id,
		h.confidential, h.created_at
		FROM %s h JOIN %s l ON l.history_id = h.id
		WHERE l.beneficiary_id = $1
		ORDER BY h.created_at DESC%s`, table, linkTable, limitClause(limit))

	out := []HistoryEntry{}
	if err := hs.db.SelectContext(ctx, &out, query, beneficiaryID); err != nil {
		return nil, apierror.Internal(err, "failed to list history")
	}
	return out, nil
}

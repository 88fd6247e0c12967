package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/flemdev/portal-ppe/internal/apierror"
)

type ShipmentStore struct {
	db     *sqlx.DB
	tables *TableRegistry
}

func (ss *ShipmentStore) Insert(ctx context.Context, tenant string, shipment *Shipment) error {
	table, err := ss.tables.TableFor(tenant, TableShipments)
	if err != nil {
		return err
	}

	if shipment.ID == "" {
		shipment.ID = uuid.NewString()
	}

	query := fmt.Sprintf(`INSERT INTO %s
		(id, shipment_number, shipment_date, source_file_id, created_at)
		VALUES (:id, :shipment_number, :shipment_date, :source_file_id, now())
		RETURNING created_at`, table)

	rows, err := ss.db.NamedQueryContext(ctx, query, shipment)
	if err != nil {
		return wrapTxError(err, fmt.Sprintf("failed to insert shipment %d", shipment.ShipmentNumber))
	}
	defer rows.Close()

	if rows.Next() {
		if err := rows.Scan(&shipment.CreatedAt); err != nil {
			return apierror.Internal(err, "failed to scan shipment timestamps")
		}
	}
	return nil
}

func (ss *ShipmentStore) List(ctx context.Context, tenant string, limit int) ([]Shipment, error) {
	table, err := ss.tables.TableFor(tenant, TableShipments)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`SELECT id, shipment_number, shipment_date, source_file_id, created_at
		FROM %s ORDER BY shipment_number DESC%s`, table, limitClause(limit))

	out := []Shipment{}
	if err := ss.db.SelectContext(ctx, &out, query); err != nil {
		return nil, apierror.Internal(err, "failed to list shipments")
	}
	return out, nil
}

func (ss *ShipmentStore) GetByNumber(ctx context.Context, tenant string, number int) (*Shipment, error) {
	table, err := ss.tables.TableFor(tenant, TableShipments)
	if err != nil {
		return nil, err
	}

	var s Shipment
	query := fmt.Sprintf(`SELECT id, shipment_number, shipment_date, source_file_id, created_at
		FROM %s WHERE shipment_number = $1`, table)
	if err := ss.db.GetContext(ctx, &s, query, number); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apierror.NotFound("shipment not found")
		}
		return nil, apierror.Internal(err, "failed to get shipment")
	}
	return &s, nil
}

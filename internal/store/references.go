package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/flemdev/portal-ppe/internal/apierror"
)

// ReferenceStore serves the small lookup tables resolved by name during
// import: demanding organizations, municipalities, ethnicities, training
// courses, placement statuses and history types.
type ReferenceStore struct {
	db     *sqlx.DB
	tables *TableRegistry
}

func (rs *ReferenceStore) DemandingOrgs(ctx context.Context, tenant string, filter Filter, limit int) ([]DemandingOrg, error) {
	table, err := rs.tables.TableFor(tenant, TableDemandingOrgs)
	if err != nil {
		return nil, err
	}
	where, args, err := filter.whereClause()
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf("SELECT id, name, abbreviation, excluded FROM %s %s ORDER BY abbreviation ASC%s",
		table, where, limitClause(limit))

	out := []DemandingOrg{}
	if err := rs.db.SelectContext(ctx, &out, query, args...); err != nil {
		return nil, apierror.Internal(err, "failed to list demanding organizations")
	}
	return out, nil
}

// CreateDemandingOrg rejects duplicates by name or abbreviation with an
// explicit conflict, restoring a soft-deleted row otherwise.
func (rs *ReferenceStore) CreateDemandingOrg(ctx context.Context, tenant, name, abbreviation string) (*DemandingOrg, error) {
	existing, err := rs.DemandingOrgs(ctx, tenant, Filter{
		Condition: "OR",
		Fields: map[string][]string{
			"name":         {name},
			"abbreviation": {strings.ToUpper(abbreviation)},
		},
		Excluded: boolPtr(false),
	}, 1)
	if err != nil {
		return nil, err
	}
	if len(existing) > 0 {
		return nil, apierror.Conflict("demanding organization already exists")
	}

	table, err := rs.tables.TableFor(tenant, TableDemandingOrgs)
	if err != nil {
		return nil, err
	}

	org := &DemandingOrg{ID: uuid.NewString(), Name: name, Abbreviation: strings.ToUpper(abbreviation)}
	query := fmt.Sprintf(`INSERT INTO %s (id, name, abbreviation, excluded)
		VALUES ($1, $2, $3, FALSE)
		ON CONFLICT (abbreviation) DO UPDATE SET name = EXCLUDED.name, excluded = FALSE
		RETURNING id`, table)
	if err := rs.db.QueryRowxContext(ctx, query, org.ID, org.Name, org.Abbreviation).Scan(&org.ID); err != nil {
		return nil, apierror.Internal(err, "failed to create demanding organization")
	}
	return org, nil
}

func (rs *ReferenceStore) Municipalities(ctx context.Context, tenant string, filter Filter, limit int) ([]Municipality, error) {
	out := []Municipality{}
	if err := rs.listByName(ctx, tenant, TableMunicipalities, filter, limit, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (rs *ReferenceStore) CreateMunicipality(ctx context.Context, tenant, name string) (*Municipality, error) {
	id, err := rs.insertByName(ctx, tenant, TableMunicipalities, name)
	if err != nil {
		return nil, err
	}
	return &Municipality{ID: id, Name: name}, nil
}

func (rs *ReferenceStore) Ethnicities(ctx context.Context, tenant string, filter Filter, limit int) ([]Ethnicity, error) {
	out := []Ethnicity{}
	if err := rs.listByName(ctx, tenant, TableEthnicities, filter, limit, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (rs *ReferenceStore) CreateEthnicity(ctx context.Context, tenant, name string) (*Ethnicity, error) {
	id, err := rs.insertByName(ctx, tenant, TableEthnicities, name)
	if err != nil {
		return nil, err
	}
	return &Ethnicity{ID: id, Name: name}, nil
}

func (rs *ReferenceStore) Courses(ctx context.Context, tenant string, filter Filter, limit int) ([]Course, error) {
	out := []Course{}
	if err := rs.listByName(ctx, tenant, TableCourses, filter, limit, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (rs *ReferenceStore) CreateCourse(ctx context.Context, tenant, name string) (*Course, error) {
	id, err := rs.insertByName(ctx, tenant, TableCourses, name)
	if err != nil {
		return nil, err
	}
	return &Course{ID: id, Name: name}, nil
}

func (rs *ReferenceStore) PlacementStatuses(ctx context.Context, tenant string, filter Filter, limit int) ([]PlacementStatus, error) {
	table, err := rs.tables.TableFor(tenant, TablePlacementStatuses)
	if err != nil {
		return nil, err
	}
	where, args, err := filter.whereClause()
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf("SELECT id, name, type_id, excluded FROM %s %s ORDER BY name ASC%s",
		table, where, limitClause(limit))

	out := []PlacementStatus{}
	if err := rs.db.SelectContext(ctx, &out, query, args...); err != nil {
		return nil, apierror.Internal(err, "failed to list placement statuses")
	}
	return out, nil
}

func (rs *ReferenceStore) CreatePlacementStatus(ctx context.Context, tenant, name string) (*PlacementStatus, error) {
	id, err := rs.insertByName(ctx, tenant, TablePlacementStatuses, name)
	if err != nil {
		return nil, err
	}
	return &PlacementStatus{ID: id, Name: name}, nil
}

func (rs *ReferenceStore) HistoryTypes(ctx context.Context, tenant string, filter Filter, limit int) ([]HistoryType, error) {
	table, err := rs.tables.TableFor(tenant, TableHistoryTypes)
	if err != nil {
		return nil, err
	}
	where, args, err := filter.whereClause()
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf("SELECT id, name, confidential, excluded FROM %s %s ORDER BY name ASC%s",
		table, where, limitClause(limit))

	out := []HistoryType{}
	if err := rs.db.SelectContext(ctx, &out, query, args...); err != nil {
		return nil, apierror.Internal(err, "failed to list history types")
	}
	return out, nil
}

func (rs *ReferenceStore) CreateHistoryType(ctx context.Context, tenant, name string, confidential bool) (*HistoryType, error) {
	table, err := rs.tables.TableFor(tenant, TableHistoryTypes)
	if err != nil {
		return nil, err
	}

	ht := &HistoryType{ID: uuid.NewString(), Name: name, Confidential: confidential}
	query := fmt.Sprintf(
		"INSERT INTO %s (id, name, confidential, excluded) VALUES ($1, $2, $3, FALSE)", table)
	if _, err := rs.db.ExecContext(ctx, query, ht.ID, ht.Name, ht.Confidential); err != nil {
		return nil, wrapTxError(err, "failed to create history type")
	}
	return ht, nil
}

// SoftDelete marks a reference row as excluded. Reference rows are never
// physically deleted because historical placements keep pointing at them.
func (rs *ReferenceStore) SoftDelete(ctx context.Context, tenant, logical, id string) error {
	table, err := rs.tables.TableFor(tenant, logical)
	if err != nil {
		return err
	}

	query := fmt.Sprintf("UPDATE %s SET excluded = TRUE WHERE id = $1", table)
	result, err := rs.db.ExecContext(ctx, query, id)
	if err != nil {
		return apierror.Internal(err, "failed to soft-delete reference")
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return apierror.NotFound("reference not found")
	}
	return nil
}

func (rs *ReferenceStore) listByName(ctx context.Context, tenant, logical string, filter Filter, limit int, dest interface{}) error {
	table, err := rs.tables.TableFor(tenant, logical)
	if err != nil {
		return err
	}
	where, args, err := filter.whereClause()
	if err != nil {
		return err
	}

	query := fmt.Sprintf("SELECT id, name, excluded FROM %s %s ORDER BY name ASC%s",
		table, where, limitClause(limit))
	if err := rs.db.SelectContext(ctx, dest, query, args...); err != nil {
		return apierror.Internal(err, fmt.Sprintf("failed to list %s", logical))
	}
	return nil
}

func (rs *ReferenceStore) insertByName(ctx context.Context, tenant, logical, name string) (string, error) {
	table, err := rs.tables.TableFor(tenant, logical)
	if err != nil {
		return "", err
	}

	id := uuid.NewString()
	query := fmt.Sprintf(`INSERT INTO %s (id, name, excluded) VALUES ($1, $2, FALSE)
		ON CONFLICT (name) DO UPDATE SET excluded = FALSE
		RETURNING id`, table)
	if err := rs.db.QueryRowxContext(ctx, query, id, name).Scan(&id); err != nil {
		return "", wrapTxError(err, fmt.Sprintf("failed to insert into %s", logical))
	}
	return id, nil
}

func boolPtr(v bool) *bool {
	return &v
}

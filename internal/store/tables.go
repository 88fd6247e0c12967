package store

import (
	"fmt"

	"github.com/flemdev/portal-ppe/internal/apierror"
)

// Logical table names. Physical tables are namespaced per tenant
// ("ba_beneficiaries", "to_shipments", ...).
const (
	TableBeneficiaries        = "beneficiaries"
	TableContacts             = "contacts"
	TablePlacements           = "placements"
	TableShipments            = "shipments"
	TableHistory              = "history"
	TableHistoryBeneficiaries = "history_beneficiaries"
	TableHistoryPlacements    = "history_placements"
	TableHistoryTypes         = "history_types"
	TableDemandingOrgs        = "demanding_orgs"
	TableMunicipalities       = "municipalities"
	TableEthnicities          = "ethnicities"
	TableCourses              = "courses"
	TablePlacementStatuses    = "placement_statuses"
	TableStatusTypes          = "status_types"
)

var knownTables = map[string]bool{
	TableBeneficiaries:        true,
	TableContacts:             true,
	TablePlacements:           true,
	TableShipments:            true,
	TableHistory:              true,
	TableHistoryBeneficiaries: true,
	TableHistoryPlacements:    true,
	TableHistoryTypes:         true,
	TableDemandingOrgs:        true,
	TableMunicipalities:       true,
	TableEthnicities:          true,
	TableCourses:              true,
	TablePlacementStatuses:    true,
	TableStatusTypes:          true,
}

// TableRegistry resolves (tenant, logical table) pairs into physical table
// names. Only registered tenants are accepted, so a tenant code taken from
// the URL can never reach a query string unchecked.
type TableRegistry struct {
	tenants map[string]bool
}

func NewTableRegistry(tenants []string) *TableRegistry {
	set := make(map[string]bool, len(tenants))
	for _, t := range tenants {
		set[t] = true
	}
	return &TableRegistry{tenants: set}
}

func (r *TableRegistry) KnownTenant(tenant string) bool {
	return r.tenants[tenant]
}

func (r *TableRegistry) TableFor(tenant, logical string) (string, error) {
	if !r.tenants[tenant] {
		return "", apierror.BadRequest(fmt.Sprintf("unknown tenant (%s)", tenant))
	}
	if !knownTables[logical] {
		return "", apierror.New(apierror.KindInternal, 500,
			fmt.Sprintf("unknown logical table (%s)", logical))
	}
	return tenant + "_" + logical, nil
}

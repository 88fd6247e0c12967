package importer

import (
	"context"

	"github.com/flemdev/portal-ppe/internal/apierror"
	"github.com/flemdev/portal-ppe/internal/logger"
	"github.com/flemdev/portal-ppe/internal/masks"
	"github.com/flemdev/portal-ppe/internal/store"
)

// Validator resolves every free-text field of the eligible candidates
// against the tenant's reference lists. Import is optimistic: a field that
// fails to resolve is flagged for review and the pipeline carries on, so
// the whole sheet always reaches the human reviewer.
type Validator struct {
	storage *store.Storage
	log     *logger.Logger
}

func NewValidator(storage *store.Storage, log *logger.Logger) *Validator {
	return &Validator{storage: storage, log: log}
}

type referenceSnapshot struct {
	orgs           []store.DemandingOrg
	municipalities []string
	courses        []string
	ethnicities    []store.Ethnicity
}

func (v *Validator) snapshot(ctx context.Context, tenant string) (*referenceSnapshot, error) {
	orgs, err := v.storage.References.DemandingOrgs(ctx, tenant, store.Filter{}, 0)
	if err != nil {
		return nil, err
	}
	municipalities, err := v.storage.References.Municipalities(ctx, tenant, store.Filter{}, 0)
	if err != nil {
		return nil, err
	}
	courses, err := v.storage.References.Courses(ctx, tenant, store.Filter{}, 0)
	if err != nil {
		return nil, err
	}
	ethnicities, err := v.storage.References.Ethnicities(ctx, tenant, store.Filter{}, 0)
	if err != nil {
		return nil, err
	}

	snap := &referenceSnapshot{orgs: orgs, ethnicities: ethnicities}
	for _, m := range municipalities {
		snap.municipalities = append(snap.municipalities, m.Name)
	}
	for _, c := range courses {
		snap.courses = append(snap.courses, c.Name)
	}
	return snap, nil
}

// Validate processes candidates where found=false or update=true; records
// already confirmed active pass through untouched.
func (v *Validator) Validate(ctx context.Context, tenant string, candidates []Candidate) ([]Candidate, error) {
	const component = "Validator"

	snap, err := v.snapshot(ctx, tenant)
	if err != nil {
		return nil, err
	}

	out := make([]Candidate, 0, len(candidates))
	flagged := 0
	for _, c := range candidates {
		if c.Found && !c.Update {
			out = append(out, c)
			continue
		}

		c.DemandingOrg = ResolveDemandingOrg(c.DemandingOrg, snap.orgs).Value
		c.PlacementMunicipality = ResolveName(c.PlacementMunicipality, snap.municipalities).Value
		c.ResidenceMunicipality = ResolveName(c.ResidenceMunicipality, snap.municipalities).Value
		c.Course = ResolveName(c.Course, snap.courses).Value

		ethnicity, err := ResolveEthnicity(c.Ethnicity, snap.ethnicities)
		if err != nil {
			return nil, apierror.Internal(err, "ethnicity reference list is unusable")
		}
		c.Ethnicity = ethnicity.Value

		c.SchoolOfOrigin = masks.Capitalize(c.SchoolOfOrigin)
		c.Sex = masks.Capitalize(c.Sex)
		c.Name = masks.Capitalize(c.Name)

		if c.NeedsReview() {
			flagged++
		}
		out = append(out, c)
	}

	v.log.Info(component, "Validated %d candidates for tenant %s (%d flagged for review)",
		len(out), tenant, flagged)
	return out, nil
}

package importer

import (
	"context"

	"github.com/flemdev/portal-ppe/internal/logger"
	"github.com/flemdev/portal-ppe/internal/store"
)

// Pipeline wires the triple validation pass offered to the review screen:
// the sheet is checked against the legacy store, then against the local
// database, then normalized field by field. Nothing is written; the output
// is what the reviewer inspects before requesting the actual import.
type Pipeline struct {
	Matcher      *Matcher
	Validator    *Validator
	Orchestrator *Orchestrator
}

func NewPipeline(storage *store.Storage, legacy LegacyClient, files FileIndexer, log *logger.Logger) *Pipeline {
	return &Pipeline{
		Matcher:      NewMatcher(storage, legacy, log),
		Validator:    NewValidator(storage, log),
		Orchestrator: NewOrchestrator(storage, files, log),
	}
}

func (p *Pipeline) ValidateForImport(ctx context.Context, tenant string, rows []Candidate) ([]Candidate, error) {
	legacyChecked, err := p.Matcher.CheckAgainstStore(ctx, true, tenant, rows)
	if err != nil {
		return nil, err
	}
	localChecked, err := p.Matcher.CheckAgainstStore(ctx, false, tenant, legacyChecked)
	if err != nil {
		return nil, err
	}
	return p.Validator.Validate(ctx, tenant, localChecked)
}

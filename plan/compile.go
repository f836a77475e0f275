package plan

import (
	"fmt"

	"github.com/brightgraph/iduplan/config"
	"github.com/brightgraph/iduplan/dialect"
)

// requiredOperators are the primitives every compiled plan exercises,
// regardless of config shape; Compile fails fast with a RenderError if the
// selected dialect can't express one of them instead of discovering the
// gap mid-render.
var requiredOperators = []dialect.Operator{
	dialect.OpArrayConstruct, dialect.OpArrayFilterNull, dialect.OpLateralExplode,
	dialect.OpWindowMinOver, dialect.OpSHA256Hex, dialect.OpXor64,
	dialect.OpURLSafeBase64, dialect.OpGroupingSets, dialect.OpCreateOrReplace,
}

// Compile renders cfg into an ordered, frozen Plan for the given dialect,
// reading sources from src and writing unification tables to dst (the same
// target for both when no cross-catalog copy is configured). It emits
// exactly the stage sequence: 01 through 06, one 10_enrich_* per source
// table, one 20_master_* per master table, then 30/31/32.
//
// Stage 04 emits IterationCount() iterations; loop.Driver may synthesize
// more at runtime past that count using the exported BuildIterationStage,
// the same constructor called here.
func Compile(cfg *config.Config, d dialect.Dialect, src, dst Target) (*Plan, error) {
	for _, op := range requiredOperators {
		if err := d.Require(op); err != nil {
			return nil, err
		}
	}

	var stages []Stage

	stages = append(stages, buildCreateGraph(d.Ops, dst, cfg.CanonicalID.Name))
	stages = append(stages, buildExtractMerge(cfg, d.Ops, src, dst))
	stages = append(stages, buildSourceKeyStats(cfg, d.Ops, dst))

	for k := 1; k <= cfg.IterationCount(); k++ {
		stages = append(stages, BuildIterationStage(cfg, d.Ops, dst, k))
	}

	canonicalize, err := buildCanonicalize(cfg, d.Ops, dst)
	if err != nil {
		return nil, err
	}
	stages = append(stages, canonicalize)
	stages = append(stages, buildResultKeyStats(cfg, d.Ops, dst))

	enrichStages, err := buildEnrichStages(cfg, d.Ops, src, dst)
	if err != nil {
		return nil, err
	}
	stages = append(stages, enrichStages...)

	stages = append(stages, buildMasterStages(cfg, d.Ops, dst)...)
	stages = append(stages, buildMetadataStages(cfg, d.Ops, dst)...)

	for i := range stages {
		for j, stmt := range stages[i].Statements {
			rewritten, err := d.Apply(stmt)
			if err != nil {
				return nil, fmt.Errorf("plan: stage %s: %w", stages[i].Name, err)
			}
			stages[i].Statements[j] = rewritten
		}
	}

	return Freeze(stages), nil
}

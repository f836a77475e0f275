// Package plan compiles a validated config.Config into an ordered sequence
// of named SQL stages. Every stage is rendered against a single
// dialect.Operators implementation and is immutable once the plan is built:
// the loop driver (package loop) may synthesize additional loop-iteration
// stages at runtime using the same BuildIterationStage constructor used
// here at compile time, instead of a separate runtime code path.
package plan

// StageKind classifies a Stage; the loop driver uses it to pick out the loop
// iterations (the renderer orders stages by name, not by kind). It carries
// no behavior of its own.
type StageKind string

const (
	KindDDL           StageKind = "ddl"
	KindSeed          StageKind = "seed"
	KindStats         StageKind = "stats"
	KindLoopIteration StageKind = "loop_iteration"
	KindCanonicalize  StageKind = "canonicalize"
	KindEnrich        StageKind = "enrich"
	KindMaster        StageKind = "master"
	KindMetadata      StageKind = "metadata"
)

// Stage is one named unit of the compiled plan: a sequence of statements
// that execute as a group, in the order the plan lists them.
type Stage struct {
	Name       string
	Order      int
	Kind       StageKind
	Statements []string
}

// Plan is the compiled, ordered stage sequence. Compile always returns a
// Plan built by Freeze; nothing stops a holder from modifying its exported
// Stages.
type Plan struct {
	Stages []Stage
	frozen bool
}

// Freeze returns a Plan holding its own copy of the stages slice (each
// Stage's Statements slice is still shared), so later changes to the
// caller's slice do not reach the Plan.
func Freeze(stages []Stage) *Plan {
	cp := make([]Stage, len(stages))
	copy(cp, stages)
	return &Plan{Stages: cp, frozen: true}
}

// StageByPrefix returns the first stage whose Name starts with prefix, e.g.
// "05_canonicalize" or "10_enrich_events", without hardcoding the full name
// twice.
func (p *Plan) StageByPrefix(prefix string) (Stage, bool) {
	for _, s := range p.Stages {
		if len(s.Name) >= len(prefix) && s.Name[:len(prefix)] == prefix {
			return s, true
		}
	}
	return Stage{}, false
}

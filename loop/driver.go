// Package loop implements the iterative fixed-point driver that executes a
// compiled plan.Plan against a backend.Session, running
// stage 04 to convergence -- synthesizing iterations past the compiled
// count with the same plan.BuildIterationStage constructor the compiler
// used -- before proceeding to stage 05 and beyond.
package loop

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/brightgraph/iduplan/backend"
	"github.com/brightgraph/iduplan/config"
	"github.com/brightgraph/iduplan/dialect"
	"github.com/brightgraph/iduplan/plan"
)

// DefaultKMax is the default iteration ceiling.
const DefaultKMax = 30

// DefaultIterationSleep is the pause between loop iterations: a short
// sleep (≈ 2s) avoids tight polling of warehouse query engines.
const DefaultIterationSleep = 2 * time.Second

// ErrorPolicy is the explicit, non-interactive choice the caller makes up
// front for how a failing statement is handled; there is no TTY prompt
// anywhere in the driver.
type ErrorPolicy int

const (
	// StopOnError aborts the run on the first failing statement.
	StopOnError ErrorPolicy = iota
	// Continue logs a failing statement's classified error and proceeds to
	// the next statement/stage: a failure does not implicitly roll back
	// prior statements.
	Continue
)

// Result reports what a Driver.Run call did, for the CLI and tests.
type Result struct {
	StagesExecuted int
	Iterations     int
	Converged      bool
	// ConvergenceExhausted is true when KMax iterations ran without the
	// convergence query reporting zero delta. This is a non-fatal warning:
	// execution proceeds with the last-computed graph.
	ConvergenceExhausted bool
}

// Driver executes a compiled plan.Plan against a single backend.Session,
// running the single-threaded cooperative model a Session implies. It
// owns no cross-goroutine state; callers serialize their own use of one
// Driver the way they must for the underlying Session.
type Driver struct {
	Cfg     *config.Config
	Dialect dialect.Dialect
	Dst     plan.Target
	Session backend.Session
	Logger  logrus.FieldLogger

	ErrorPolicy    ErrorPolicy
	KMax           int
	IterationSleep time.Duration

	// Now returns the current Unix epoch seconds; overridable in tests.
	Now func() int64
}

// NewDriver builds a Driver with the default KMax/IterationSleep and
// StopOnError policy.
func NewDriver(cfg *config.Config, d dialect.Dialect, dst plan.Target, session backend.Session, logger logrus.FieldLogger) *Driver {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Driver{
		Cfg:            cfg,
		Dialect:        d,
		Dst:            dst,
		Session:        session,
		Logger:         logger,
		ErrorPolicy:    StopOnError,
		KMax:           DefaultKMax,
		IterationSleep: DefaultIterationSleep,
		Now:            func() int64 { return time.Now().Unix() },
	}
}

// Run drives p to completion: pre-loop stages (01-03), the iterative loop
// (stage 04, extended past the compiled count if needed), the final alias,
// then post-loop stages (05+). It returns the partial Result and the first
// error encountered under d.ErrorPolicy.
func (d *Driver) Run(ctx context.Context, p *plan.Plan) (*Result, error) {
	pre, loopStages, post := splitStages(p.Stages)
	res := &Result{}

	for _, stage := range pre {
		if err := d.executeStage(ctx, stage, res); err != nil {
			return res, err
		}
	}

	k, loopErr := d.runLoop(ctx, loopStages, res)
	if loopErr != nil && !backend.ErrConvergenceExhausted.Is(loopErr) {
		return res, loopErr
	}
	// ConvergenceExhausted is a non-fatal warning: proceed to the final
	// alias and post-loop stages using the last computed graph; loopErr (if
	// set) is returned only if nothing downstream fails first.

	idName := d.Cfg.CanonicalID.Name
	aliasStmt := plan.FinalAliasStatement(d.Dst, idName, k)
	aliasStmt, err := d.Dialect.Apply(aliasStmt)
	if err != nil {
		return res, fmt.Errorf("loop: rendering final alias: %w", err)
	}
	if err := d.executeStage(ctx, plan.Stage{
		Name:       "04_unify_loop_final_alias",
		Kind:       plan.KindDDL,
		Statements: []string{aliasStmt},
	}, res); err != nil {
		return res, err
	}

	for _, stage := range post {
		if err := d.executeStage(ctx, stage, res); err != nil {
			return res, err
		}
	}

	return res, loopErr
}

// splitStages partitions a plan's stages into those before the first loop
// iteration, the loop iterations themselves (in order), and those after the
// last one. Compile always emits them contiguously in that shape, so a
// single linear pass suffices.
func splitStages(stages []plan.Stage) (pre, loopStages, post []plan.Stage) {
	seenLoop := false
	for _, s := range stages {
		switch {
		case s.Kind == plan.KindLoopIteration:
			loopStages = append(loopStages, s)
			seenLoop = true
		case !seenLoop:
			pre = append(pre, s)
		default:
			post = append(post, s)
		}
	}
	return pre, loopStages, post
}

// runLoop executes stage 04 to convergence, returning the final iteration
// number k reached. Compiled iterations (1..len(loopStages)) run verbatim;
// iterations beyond that are synthesized in-process via
// plan.BuildIterationStage.
//
// A failing statement inside a loop iteration always aborts the loop,
// regardless of d.ErrorPolicy: a stage 04 failure aborts the loop and
// returns the count executed so far, since continuing a fixed-point
// computation on a graph a statement failed to build has no well-defined
// semantics.
func (d *Driver) runLoop(ctx context.Context, loopStages []plan.Stage, res *Result) (int, error) {
	kmax := d.KMax
	if kmax <= 0 {
		kmax = DefaultKMax
	}

	k := 0
	for k = 1; k <= kmax; k++ {
		var stmts []string
		if k-1 < len(loopStages) {
			stmts = loopStages[k-1].Statements
		} else {
			stage := plan.BuildIterationStage(d.Cfg, d.Dialect.Ops, d.Dst, k)
			rendered := make([]string, len(stage.Statements))
			for i, stmt := range stage.Statements {
				r, err := d.Dialect.Apply(stmt)
				if err != nil {
					return k - 1, fmt.Errorf("loop: rendering synthesized iteration %d: %w", k, err)
				}
				rendered[i] = r
			}
			stmts = rendered
		}

		stageName := fmt.Sprintf("04_unify_loop_iteration_%02d", k)
		for _, stmt := range stmts {
			if _, err := d.Session.Execute(ctx, stmt); err != nil {
				return k - 1, fmt.Errorf("loop: stage %s: %w", stageName, backend.Classify(err))
			}
		}
		res.StagesExecuted++
		res.Iterations = k

		convergenceQuery := plan.ConvergenceQuery(d.Cfg, d.Dst, k)
		raw, err := d.Session.FetchScalar(ctx, convergenceQuery)
		if err != nil {
			return k - 1, fmt.Errorf("loop: convergence query at iteration %d: %w", k, backend.Classify(err))
		}
		delta, err := strconv.Atoi(raw)
		if err != nil {
			return k - 1, fmt.Errorf("loop: convergence query returned non-integer %q: %w", raw, err)
		}

		d.Logger.WithFields(logrus.Fields{"iteration": k, "delta": delta}).Debug("unify loop iteration")

		if delta == 0 {
			res.Converged = true
			return k, nil
		}

		if k < kmax {
			if err := d.sleepBetweenIterations(ctx); err != nil {
				return k, err
			}
		}
	}

	res.ConvergenceExhausted = true
	d.Logger.WithField("k_max", kmax).Warn(
		"unification loop exhausted k_max without convergence; proceeding with last computed graph")
	return kmax, backend.ErrConvergenceExhausted.New(kmax)
}

func (d *Driver) sleepBetweenIterations(ctx context.Context) error {
	sleep := d.IterationSleep
	if sleep <= 0 {
		sleep = DefaultIterationSleep
	}
	timer := time.NewTimer(sleep)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// executeStage runs every statement of stage against d.Session, honoring
// d.ErrorPolicy for non-loop stages.
func (d *Driver) executeStage(ctx context.Context, stage plan.Stage, res *Result) error {
	logger := d.Logger.WithField("stage", stage.Name)
	for _, stmt := range stage.Statements {
		n, err := d.Session.Execute(ctx, stmt)
		if err != nil {
			classified := backend.Classify(err)
			logger.WithError(classified).Error("statement failed")
			if d.ErrorPolicy == StopOnError {
				return backend.ErrAborted.New(fmt.Sprintf("stage %s: %s", stage.Name, classified))
			}
			continue
		}
		logger.WithField("rows_affected", n).Debug("executed statement")
	}
	res.StagesExecuted++
	return nil
}

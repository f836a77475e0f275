// Package render implements emitting a compiled plan's stage SQL into a
// destination, either sequential files (for the `compile` CLI role) or
// directly through a backend.Session (for the `run --skip-loop` role, or
// any flat stage sequence that doesn't need loop.Driver's convergence
// bookkeeping).
package render

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/brightgraph/iduplan/backend"
	"github.com/brightgraph/iduplan/plan"
)

// Sink is the destination a compiled plan's statements are written or
// executed against.
type Sink interface {
	Render(ctx context.Context, stages []plan.Stage) error
}

// FileSink writes each stage to "<dir>/<stage-name>.sql", one file per
// stage, in stable order: stages sort by the numeric prefix; files
// lacking a prefix sort last.
type FileSink struct {
	Dir string
}

func (f FileSink) Render(_ context.Context, stages []plan.Stage) error {
	if err := os.MkdirAll(f.Dir, 0o755); err != nil {
		return fmt.Errorf("render: creating %s: %w", f.Dir, err)
	}
	for _, s := range SortStages(stages) {
		path := filepath.Join(f.Dir, s.Name+".sql")
		var buf strings.Builder
		for _, stmt := range s.Statements {
			buf.WriteString(stmt)
			buf.WriteString(";\n\n")
		}
		if err := os.WriteFile(path, []byte(buf.String()), 0o644); err != nil {
			return fmt.Errorf("render: writing %s: %w", path, err)
		}
	}
	return nil
}

// ExecSink drives a backend.Session directly, executing every stage's
// statements in stage order with no convergence detection -- used to
// replay a flat stage sequence (e.g. re-running stages 05+ against an
// already-converged graph, --skip-loop) rather than the full
// fixed-point lifecycle loop.Driver owns.
type ExecSink struct {
	Session backend.Session
	Logger  logrus.FieldLogger
}

func (e ExecSink) Render(ctx context.Context, stages []plan.Stage) error {
	logger := e.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	for _, s := range SortStages(stages) {
		for _, stmt := range s.Statements {
			n, err := e.Session.Execute(ctx, stmt)
			if err != nil {
				return fmt.Errorf("render: stage %s: %w", s.Name, backend.Classify(err))
			}
			logger.WithFields(logrus.Fields{"stage": s.Name, "rows_affected": n}).Debug("executed statement")
		}
	}
	return nil
}

// ReadDir is the inverse of FileSink.Render: it reconstructs a stage list
// from a previously-compiled directory of "<stage-name>.sql" files, for the
// `run` CLI role ("run <stage-dir>"). Stage.Kind is inferred from the
// filename convention stage names follow: only whether a stage is a loop
// iteration matters downstream, for loop.Driver to find the compiled
// iteration count and extend past it.
func ReadDir(dir string) ([]plan.Stage, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("render: reading %s: %w", dir, err)
	}

	var stages []plan.Stage
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".sql") {
			continue
		}
		name := strings.TrimSuffix(e.Name(), ".sql")
		data, err := os.ReadFile(filepath.Join(dir, e.Name()))
		if err != nil {
			return nil, fmt.Errorf("render: reading %s: %w", e.Name(), err)
		}

		var stmts []string
		for _, part := range strings.Split(string(data), ";\n\n") {
			part = strings.TrimSpace(part)
			if part != "" {
				stmts = append(stmts, part)
			}
		}

		stages = append(stages, plan.Stage{
			Name:       name,
			Kind:       kindFromName(name),
			Statements: stmts,
		})
	}

	return SortStages(stages), nil
}

func kindFromName(name string) plan.StageKind {
	if strings.HasPrefix(name, "04_unify_loop_iteration_") {
		return plan.KindLoopIteration
	}
	return plan.KindDDL
}

// SortStages returns a copy of stages ordered so that stages whose
// name starts with a run of digits sort by that number (then lexically on
// ties); stages without a numeric prefix sort after all of those.
func SortStages(stages []plan.Stage) []plan.Stage {
	out := make([]plan.Stage, len(stages))
	copy(out, stages)
	sort.SliceStable(out, func(i, j int) bool {
		pi, oki := numericPrefix(out[i].Name)
		pj, okj := numericPrefix(out[j].Name)
		if oki && okj {
			if pi != pj {
				return pi < pj
			}
			return out[i].Name < out[j].Name
		}
		if oki != okj {
			return oki
		}
		return out[i].Name < out[j].Name
	})
	return out
}

func numericPrefix(name string) (int, bool) {
	i := 0
	for i < len(name) && name[i] >= '0' && name[i] <= '9' {
		i++
	}
	if i == 0 {
		return 0, false
	}
	n, err := strconv.Atoi(name[:i])
	if err != nil {
		return 0, false
	}
	return n, true
}

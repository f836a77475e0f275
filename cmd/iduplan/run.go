package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/brightgraph/iduplan/backend/sqlbackend"
	"github.com/brightgraph/iduplan/config"
	"github.com/brightgraph/iduplan/loop"
	"github.com/brightgraph/iduplan/plan"
	"github.com/brightgraph/iduplan/render"
)

// dsnEnvVar is the well-known environment variable credentials come from,
// fixed concretely as IDUPLAN_DSN.
const dsnEnvVar = "IDUPLAN_DSN"

func newRunCmd() *cobra.Command {
	var (
		configPath                  string
		driverName                  string
		dialectName                 string
		targetCatalog, targetSchema string
		dryRun                      bool
		skipLoop                    bool
		maxIterations               int
	)

	cmd := &cobra.Command{
		Use:   "run <stage-dir>",
		Short: "Execute a compiled stage directory against a warehouse",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := logrus.StandardLogger()

			data, err := os.ReadFile(configPath)
			if err != nil {
				return fmt.Errorf("run: reading config: %w", err)
			}
			doc, err := config.Parse(data)
			if err != nil {
				return err
			}
			cfg, err := config.Validate(doc)
			if err != nil {
				return err
			}

			d, err := resolveDialect(dialectName)
			if err != nil {
				return err
			}

			stages, err := render.ReadDir(args[0])
			if err != nil {
				return err
			}

			if dryRun {
				printPlan(cmd, stages)
				return nil
			}

			if driverName == "" {
				return fmt.Errorf("run: --driver is required (no warehouse driver is bundled)")
			}
			dsn := os.Getenv(dsnEnvVar)
			if dsn == "" {
				return fmt.Errorf("run: %s is not set", dsnEnvVar)
			}

			session, err := sqlbackend.Open(driverName, dsn, logger)
			if err != nil {
				return err
			}
			defer session.Close()

			dst := plan.Target{Database: targetCatalog, Schema: targetSchema}

			if skipLoop {
				sink := render.ExecSink{Session: session, Logger: logger}
				return sink.Render(cmd.Context(), stages)
			}

			driver := loop.NewDriver(cfg, d, dst, session, logger)
			if maxIterations > 0 {
				driver.KMax = maxIterations
			}

			res, runErr := driver.Run(cmd.Context(), plan.Freeze(stages))
			if res != nil {
				fmt.Fprintf(cmd.OutOrStdout(), "stages executed: %d, iterations: %d, converged: %v\n",
					res.StagesExecuted, res.Iterations, res.Converged)
			}
			return runErr
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "unification config file (supplies canonical-id naming and loop-extension parameters)")
	cmd.Flags().StringVar(&driverName, "driver", "", "registered database/sql driver name")
	cmd.Flags().StringVar(&dialectName, "dialect", "databricks", "target SQL dialect: databricks|snowflake")
	cmd.Flags().StringVar(&targetCatalog, "target-catalog", "", "destination catalog/database")
	cmd.Flags().StringVar(&targetSchema, "target-schema", "", "destination schema")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "print the plan and exit without touching a backend")
	cmd.Flags().BoolVar(&skipLoop, "skip-loop", false, "execute the stage sequence flatly, without the convergence loop")
	cmd.Flags().IntVar(&maxIterations, "max-iterations", 0, "override K_max (default: loop.DefaultKMax)")
	_ = cmd.MarkFlagRequired("config")

	return cmd
}

func printPlan(cmd *cobra.Command, stages []plan.Stage) {
	loopCount := 0
	for _, s := range stages {
		if s.Kind == plan.KindLoopIteration {
			loopCount++
		}
	}
	fmt.Fprintf(cmd.OutOrStdout(), "dry run: %d stages, %d compiled loop iteration(s)\n", len(stages), loopCount)
	for _, s := range stages {
		n := 0
		for _, stmt := range s.Statements {
			n += len(stmt)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "  %-35s %6d bytes\n", s.Name, n)
	}
}

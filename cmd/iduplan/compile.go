package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/brightgraph/iduplan/config"
	"github.com/brightgraph/iduplan/dialect"
	"github.com/brightgraph/iduplan/plan"
	"github.com/brightgraph/iduplan/render"
)

func newCompileCmd() *cobra.Command {
	var (
		targetCatalog, targetSchema string
		srcCatalog, srcSchema       string
		outDir                      string
		dialectName                 string
	)

	cmd := &cobra.Command{
		Use:   "compile <config>",
		Short: "Compile a unification config into an ordered directory of stage SQL files",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("compile: reading config: %w", err)
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

			dst := plan.Target{Database: targetCatalog, Schema: targetSchema}
			src := plan.Target{Database: srcCatalog, Schema: srcSchema}
			if src.Database == "" && src.Schema == "" {
				src = dst
			}

			p, err := plan.Compile(cfg, d, src, dst)
			if err != nil {
				return err
			}

			if outDir == "" {
				outDir = "."
			}
			sink := render.FileSink{Dir: outDir}
			if err := sink.Render(cmd.Context(), p.Stages); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "compiled %d stages to %s\n", len(p.Stages), outDir)
			return nil
		},
	}

	cmd.Flags().StringVar(&targetCatalog, "target-catalog", "", "destination catalog/database")
	cmd.Flags().StringVar(&targetSchema, "target-schema", "", "destination schema")
	cmd.Flags().StringVar(&srcCatalog, "src-catalog", "", "source catalog/database (defaults to target)")
	cmd.Flags().StringVar(&srcSchema, "src-schema", "", "source schema (defaults to target)")
	cmd.Flags().StringVar(&outDir, "outdir", "", "output directory for stage files (default: current directory)")
	cmd.Flags().StringVar(&dialectName, "dialect", "databricks", "target SQL dialect: databricks|snowflake")
	_ = cmd.MarkFlagRequired("target-catalog")
	_ = cmd.MarkFlagRequired("target-schema")

	return cmd
}

func resolveDialect(name string) (dialect.Dialect, error) {
	switch name {
	case "", "databricks":
		return dialect.Databricks(), nil
	case "snowflake":
		return dialect.Snowflake(), nil
	default:
		return dialect.Dialect{}, fmt.Errorf("unknown dialect %q (want databricks or snowflake)", name)
	}
}

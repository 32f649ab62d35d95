package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"food-trade-twin/internal/domain"
	"food-trade-twin/internal/reporting"
	"food-trade-twin/internal/scenario"
	"food-trade-twin/internal/simulation"
)

// scenarioOutcome is one scenario's JSON output.
type scenarioOutcome struct {
	Name    string                   `json:"name"`
	Summary scenario.Summary         `json:"summary"`
	Result  *domain.SimulationResult `json:"result,omitempty"`
}

func newSimulateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Run a production shock and report its one-hop effect",
		Long: `Run one perturbation from flags, or every scenario in a YAML file:

  foodtwin simulate --area India --year 2021 --production-change -30
  foodtwin simulate --scenario scenarios.yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			flags := cmd.Flags()
			scenarioPath, _ := flags.GetString("scenario")
			full, _ := flags.GetBool("full")
			reportPath, _ := flags.GetString("report")
			reportCSVPath, _ := flags.GetString("report-csv")

			var scenarios []scenario.Scenario
			if scenarioPath != "" {
				f, err := scenario.Load(scenarioPath)
				if err != nil {
					return err
				}
				scenarios = f.Scenarios
			} else {
				s := scenario.Scenario{Name: "cli"}
				s.Area, _ = flags.GetString("area")
				s.Year, _ = flags.GetInt("year")
				s.Commodity, _ = flags.GetString("commodity")
				s.ProductionChange, _ = flags.GetFloat64("production-change")
				s.ImportChange, _ = flags.GetFloat64("import-change")
				s.ClimateStress, _ = flags.GetFloat64("climate-stress")
				s.PolicyRestriction, _ = flags.GetBool("policy-restriction")
				if s.Area == "" || s.Year <= 0 {
					return fmt.Errorf("--area and --year are required (or use --scenario)")
				}
				scenarios = []scenario.Scenario{s}
			}

			ctx := cmd.Context()
			st, err := openStores(ctx, cmd)
			if err != nil {
				return err
			}
			defer st.Close()

			timeout, _ := flags.GetDuration("fetch-timeout")
			engine := simulation.NewEngine(simulation.EngineOptions{
				Fetcher:      st.Primary,
				FetchTimeout: timeout,
				Logger:       newLogger(cmd, "[simulation] "),
			})

			var (
				outcomes []scenarioOutcome
				runs     []reporting.Run
			)
			for _, s := range scenarios {
				p := s.Perturbation()
				baseline, err := engine.Snapshot(ctx, p.Year)
				if err != nil {
					return fmt.Errorf("%s: %w", s.Name, err)
				}
				result, err := engine.RunSimulation(ctx, p)
				if err != nil {
					return fmt.Errorf("%s: %w", s.Name, err)
				}

				o := scenarioOutcome{Name: s.Name, Summary: scenario.Summarize(result, baseline)}
				if full {
					o.Result = result
				}
				outcomes = append(outcomes, o)
				runs = append(runs, reporting.Run{Scenario: s, Summary: o.Summary, Result: result, Baseline: baseline})
			}

			if reportPath != "" || reportCSVPath != "" {
				if err := writeReports(reporting.NewGenerator(st.Kind).Generate(runs), reportPath, reportCSVPath); err != nil {
					return err
				}
			}

			if jsonOutput(cmd) {
				return writeJSON(cmd.OutOrStdout(), outcomes)
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "SCENARIO\tAFFECTED\tHIGH\tMEDIUM\tEDGES CHANGED\tPRODUCTION DELTA\tFOOD SUPPLY DELTA")
			for _, o := range outcomes {
				s := o.Summary
				fmt.Fprintf(w, "%s\t%d\t%d\t%d\t%d\t%.2f\t%.2f\n",
					o.Name, s.Affected, s.High, s.Medium, s.ChangedEdges, s.ProductionDelta, s.FoodSupplyDelta)
			}
			return w.Flush()
		},
	}

	cmd.Flags().String("scenario", "", "YAML scenario file")
	cmd.Flags().String("area", "", "Country to perturb")
	cmd.Flags().Int("year", 0, "Snapshot year")
	cmd.Flags().String("commodity", domain.AllCommodities, "Commodity filter for outgoing flows")
	cmd.Flags().Float64("production-change", 0, "Production change in percent, e.g. -30")
	cmd.Flags().Float64("import-change", 0, "Import change in percent (reserved)")
	cmd.Flags().Float64("climate-stress", 0, "Climate stress factor (reserved)")
	cmd.Flags().Bool("policy-restriction", false, "Policy restriction flag (reserved)")
	cmd.Flags().Duration("fetch-timeout", 0, "Timeout for the snapshot read (0 for none)")
	cmd.Flags().Bool("full", false, "Include the full result graph in JSON output")
	cmd.Flags().String("report", "", "Write a Markdown report to this file")
	cmd.Flags().String("report-csv", "", "Write affected countries as CSV to this file")
	return cmd
}

// writeReports writes the Markdown and CSV renderings of r to the non-empty paths.
func writeReports(r *reporting.Report, mdPath, csvPath string) error {
	if mdPath != "" {
		if err := os.WriteFile(mdPath, []byte(reporting.RenderMarkdown(r)), 0o644); err != nil {
			return fmt.Errorf("write report: %w", err)
		}
	}
	if csvPath != "" {
		out, err := reporting.RenderCSV(r)
		if err != nil {
			return fmt.Errorf("render csv report: %w", err)
		}
		if err := os.WriteFile(csvPath, []byte(out), 0o644); err != nil {
			return fmt.Errorf("write csv report: %w", err)
		}
	}
	return nil
}

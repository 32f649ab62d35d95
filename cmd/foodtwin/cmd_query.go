package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"food-trade-twin/internal/domain"
	"food-trade-twin/internal/storage"
)

func newCountriesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "countries",
		Short: "List all countries in the store",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			st, err := openStores(ctx, cmd)
			if err != nil {
				return err
			}
			defer st.Close()

			names, err := st.Primary.ListCountries(ctx)
			if err != nil {
				return err
			}
			if jsonOutput(cmd) {
				if names == nil {
					names = []string{}
				}
				return writeJSON(cmd.OutOrStdout(), names)
			}
			for _, n := range names {
				fmt.Fprintln(cmd.OutOrStdout(), n)
			}
			return nil
		},
	}
}

func newHistoryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "history NAME",
		Short: "Show a country's yearly production and supply",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			st, err := openStores(ctx, cmd)
			if err != nil {
				return err
			}
			defer st.Close()

			states, err := st.Primary.CountryHistory(ctx, args[0])
			if err != nil {
				return fmt.Errorf("history %s: %w", args[0], err)
			}

			history := make([]domain.CountryYear, 0, len(states))
			for _, s := range states {
				history = append(history, s.History())
			}
			if jsonOutput(cmd) {
				return writeJSON(cmd.OutOrStdout(), history)
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "YEAR\tPRODUCTION\tFOOD SUPPLY\tNET TRADE\tIMPORT DEPENDENCY")
			for _, h := range history {
				fmt.Fprintf(w, "%d\t%.2f\t%.2f\t%.2f\t%.4f\n",
					h.Year, h.Production, h.FoodSupply, h.NetTrade, h.ImportDependency)
			}
			return w.Flush()
		},
	}
}

func newPartnersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "partners NAME",
		Short: "Show a country's top trading partners in a year",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			year, _ := cmd.Flags().GetInt("year")
			limit, _ := cmd.Flags().GetInt("limit")

			ctx := cmd.Context()
			st, err := openStores(ctx, cmd)
			if err != nil {
				return err
			}
			defer st.Close()

			partners, err := st.Analytics.Partners(ctx, args[0], year, limit)
			if err != nil {
				return fmt.Errorf("partners %s: %w", args[0], err)
			}
			if jsonOutput(cmd) {
				if partners == nil {
					partners = []*domain.PartnerSummary{}
				}
				return writeJSON(cmd.OutOrStdout(), partners)
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "PARTNER\tTYPE\tVOLUME\tPRIMARY COMMODITY\tEXPORTS\tIMPORTS")
			for _, p := range partners {
				fmt.Fprintf(w, "%s\t%s\t%.2f\t%s\t%.2f\t%.2f\n",
					p.Partner, p.Type, p.Quantity, p.PrimaryCommodity, p.TotalExports, p.TotalImports)
			}
			return w.Flush()
		},
	}

	cmd.Flags().Int("year", 2021, "Trade year")
	cmd.Flags().Int("limit", storage.DefaultPartnerLimit, "Maximum partners")
	return cmd
}

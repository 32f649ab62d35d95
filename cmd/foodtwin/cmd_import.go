package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"food-trade-twin/internal/ingest"
)

func newImportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import processed node and edge CSV files",
		Long: `Import nodes_all.csv and edges_all.csv into the configured store.

Country names are normalized, regional aggregates and self-loops are
dropped, and duplicate edges are averaged. Flows whose endpoints have no
node state for the year are skipped.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			nodesPath, _ := cmd.Flags().GetString("nodes")
			edgesPath, _ := cmd.Flags().GetString("edges")
			nodeBatch, _ := cmd.Flags().GetInt("node-batch")
			edgeBatch, _ := cmd.Flags().GetInt("edge-batch")

			ctx := cmd.Context()
			st, err := openStores(ctx, cmd)
			if err != nil {
				return err
			}
			defer st.Close()

			im := ingest.NewImporter(ingest.Options{
				Writer:        st.Primary,
				Mirrors:       st.Mirrors,
				NodeBatchSize: nodeBatch,
				EdgeBatchSize: edgeBatch,
				Logger:        newLogger(cmd, "[import] "),
			})

			res, err := im.ImportFiles(ctx, nodesPath, edgesPath)
			if err != nil {
				return fmt.Errorf("import: %w", err)
			}

			if jsonOutput(cmd) {
				return writeJSON(cmd.OutOrStdout(), res)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Nodes:  %d written (%d read, %d duplicates, %d aggregates dropped)\n",
				res.NodesWritten, res.NodesRead, res.NodeDuplicates, res.Aggregates)
			fmt.Fprintf(out, "Edges:  %d written (%d read, %d merged, %d self-loops, %d skipped)\n",
				res.EdgesWritten, res.EdgesRead, res.EdgesMerged, res.SelfLoops, res.EdgesSkipped)
			fmt.Fprintf(out, "Took:   %s\n", res.Duration)
			return nil
		},
	}

	cmd.Flags().String("nodes", "data/processed/nodes_all.csv", "Nodes CSV file")
	cmd.Flags().String("edges", "data/processed/edges_all.csv", "Edges CSV file (empty to skip)")
	cmd.Flags().Int("node-batch", ingest.DefaultNodeBatchSize, "Node states per write batch")
	cmd.Flags().Int("edge-batch", ingest.DefaultEdgeBatchSize, "Trade flows per write batch")
	return cmd
}

// Package ingest loads processed node and edge CSV files into graph stores.
package ingest

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"food-trade-twin/internal/domain"
	"food-trade-twin/internal/observability"
	"food-trade-twin/internal/storage"
)

// Default batch sizes.
const (
	DefaultNodeBatchSize = 500
	DefaultEdgeBatchSize = 1000
)

// Importer writes parsed CSV data to a primary store and optional mirrors.
type Importer struct {
	writer        storage.GraphWriter
	mirrors       []storage.GraphWriter
	nodeBatchSize int
	edgeBatchSize int
	logger        *log.Logger
}

// Options contains configuration for creating an Importer.
type Options struct {
	Writer        storage.GraphWriter
	Mirrors       []storage.GraphWriter // e.g. the ClickHouse analytics store
	NodeBatchSize int
	EdgeBatchSize int
	Logger        *log.Logger
}

// NewImporter creates a new Importer.
func NewImporter(opts Options) *Importer {
	nodeBatch := opts.NodeBatchSize
	if nodeBatch <= 0 {
		nodeBatch = DefaultNodeBatchSize
	}
	edgeBatch := opts.EdgeBatchSize
	if edgeBatch <= 0 {
		edgeBatch = DefaultEdgeBatchSize
	}

	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}

	return &Importer{
		writer:        opts.Writer,
		mirrors:       opts.Mirrors,
		nodeBatchSize: nodeBatch,
		edgeBatchSize: edgeBatch,
		logger:        logger,
	}
}

// Result contains statistics from an import.
type Result struct {
	NodesRead      int
	NodesWritten   int
	NodeDuplicates int
	Aggregates     int
	EdgesRead      int
	EdgesWritten   int
	EdgesSkipped   int // endpoints missing in the store
	EdgesMerged    int // duplicate keys averaged into one flow
	SelfLoops      int
	Duration       time.Duration
}

// ImportFiles imports a nodes CSV and an optional edges CSV (empty path skips edges).
func (im *Importer) ImportFiles(ctx context.Context, nodesPath, edgesPath string) (*Result, error) {
	nf, err := os.Open(nodesPath)
	if err != nil {
		return nil, fmt.Errorf("open nodes file: %w", err)
	}
	defer nf.Close()

	var edges io.Reader
	if edgesPath != "" {
		ef, err := os.Open(edgesPath)
		if err != nil {
			return nil, fmt.Errorf("open edges file: %w", err)
		}
		defer ef.Close()
		edges = ef
	}

	return im.Import(ctx, nf, edges)
}

// Import parses both readers fully, then writes nodes before edges so edge
// endpoints exist. A nil edges reader imports nodes only.
func (im *Importer) Import(ctx context.Context, nodes, edges io.Reader) (*Result, error) {
	start := time.Now()
	res := &Result{}

	nodeRows, err := ReadNodes(nodes)
	if err != nil {
		return nil, fmt.Errorf("read nodes: %w", err)
	}
	var edgeRows []*domain.TradeFlow
	if edges != nil {
		if edgeRows, err = ReadEdges(edges); err != nil {
			return nil, fmt.Errorf("read edges: %w", err)
		}
	}

	res.NodesRead = len(nodeRows)
	states, dupes, aggregates := DedupNodes(nodeRows)
	res.NodeDuplicates = dupes
	res.Aggregates = aggregates

	res.EdgesRead = len(edgeRows)
	flows, merged, selfLoops := MergeEdges(edgeRows)
	res.EdgesMerged = merged
	res.SelfLoops = selfLoops

	for i := 0; i < len(states); i += im.nodeBatchSize {
		batch := states[i:min(i+im.nodeBatchSize, len(states))]
		if err := im.writeNodes(ctx, batch); err != nil {
			return nil, err
		}
		res.NodesWritten += len(batch)
		im.logger.Printf("Imported node batch %d-%d of %d", i+1, i+len(batch), len(states))
	}

	for i := 0; i < len(flows); i += im.edgeBatchSize {
		batch := flows[i:min(i+im.edgeBatchSize, len(flows))]
		written, err := im.writeFlows(ctx, batch)
		if err != nil {
			return nil, err
		}
		res.EdgesWritten += written
		res.EdgesSkipped += len(batch) - written
		im.logger.Printf("Imported edge batch %d-%d of %d (%d written)", i+1, i+len(batch), len(flows), written)
	}

	res.Duration = time.Since(start)

	observability.RecordImported("node_states", res.NodesWritten)
	observability.RecordImported("trade_flows", res.EdgesWritten)
	observability.RecordSkipped("duplicate_node", res.NodeDuplicates)
	observability.RecordSkipped("aggregate_region", res.Aggregates)
	observability.RecordSkipped("merged_edge", res.EdgesMerged)
	observability.RecordSkipped("self_loop", res.SelfLoops)
	observability.RecordSkipped("dangling_edge", res.EdgesSkipped)

	im.logger.Printf("Import complete: %d nodes, %d edges written, %d edges skipped, %d merged, %d self-loops in %s",
		res.NodesWritten, res.EdgesWritten, res.EdgesSkipped, res.EdgesMerged, res.SelfLoops, res.Duration)

	return res, nil
}

func (im *Importer) writeNodes(ctx context.Context, batch []*domain.NodeState) error {
	if err := im.writer.UpsertNodeStates(ctx, batch); err != nil {
		return fmt.Errorf("write node states: %w", err)
	}
	for i, m := range im.mirrors {
		if err := m.UpsertNodeStates(ctx, batch); err != nil {
			return fmt.Errorf("mirror %d: write node states: %w", i, err)
		}
	}
	return nil
}

// writeFlows returns the count accepted by the primary writer.
func (im *Importer) writeFlows(ctx context.Context, batch []*domain.TradeFlow) (int, error) {
	written, err := im.writer.UpsertTradeFlows(ctx, batch)
	if err != nil {
		return 0, fmt.Errorf("write trade flows: %w", err)
	}
	for i, m := range im.mirrors {
		if _, err := m.UpsertTradeFlows(ctx, batch); err != nil {
			return 0, fmt.Errorf("mirror %d: write trade flows: %w", i, err)
		}
	}
	return written, nil
}

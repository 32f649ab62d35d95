package ingest

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"food-trade-twin/internal/storage"
	"food-trade-twin/internal/storage/memory"
)

const nodesCSV = `area,year,production_total,food_supply,net_trade,import_dependency
"China, mainland",2021,615.2,3000,-40,0.25
India,2021,310.5,2400,12,0.15
Egypt,2021,25.4,3200,-30,0.62
World,2021,9999,2900,0,0
India,2021,1,1,1,1
Viet Nam,2021,,2700,,
`

const edgesCSV = `exporter,importer,year,commodity,trade_quantity
India,Egypt,2021,Rice,2.0
India,Egypt,2021,Rice,4.0
"China, mainland",India,2021,Processed,1.8
Egypt,Egypt,2021,Cotton,9
India,Atlantis,2021,Rice,7
Vietnam,China,2021.0,Rice,3
`

func TestNormalizeName(t *testing.T) {
	tests := map[string]string{
		"China, mainland":           "China",
		"China, Taiwan Province of": "Taiwan",
		"China, Hong Kong SAR":      "Hong Kong",
		"China, Macao SAR":          "Macao",
		"Russian Federation":        "Russia",
		" Viet Nam ":                "Vietnam",
		"Kenya":                     "Kenya",
	}
	for in, want := range tests {
		if got := NormalizeName(in); got != want {
			t.Errorf("NormalizeName(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestIsAggregate(t *testing.T) {
	for _, name := range []string{"World", "Africa", "Eastern Asia", "Europe, Total"} {
		if !IsAggregate(name) {
			t.Errorf("expected %q to be an aggregate", name)
		}
	}
	for _, name := range []string{"India", "China", "Russia", "Kenya", "Peru"} {
		if IsAggregate(name) {
			t.Errorf("expected %q to be a country", name)
		}
	}
}

func TestReadNodes(t *testing.T) {
	rows, err := ReadNodes(strings.NewReader(nodesCSV))
	if err != nil {
		t.Fatalf("ReadNodes failed: %v", err)
	}
	if len(rows) != 6 {
		t.Fatalf("expected 6 rows, got %d", len(rows))
	}
	if rows[0].Country != "China" || rows[0].Production != 615.2 || rows[0].NetTrade != -40 {
		t.Errorf("unexpected first row %+v", rows[0])
	}
	last := rows[5]
	if last.Country != "Vietnam" || last.Production != 0 || last.FoodSupply != 2700 || last.ImportDependency != 0 {
		t.Errorf("empty cells should read as 0: %+v", last)
	}
}

func TestReadNodes_OptionalColumns(t *testing.T) {
	rows, err := ReadNodes(strings.NewReader("year,area,extra\n2020,Kenya,x\n"))
	if err != nil {
		t.Fatalf("ReadNodes failed: %v", err)
	}
	if len(rows) != 1 || rows[0].Country != "Kenya" || rows[0].Year != 2020 {
		t.Errorf("unexpected rows %+v", rows)
	}
}

func TestReadMalformed(t *testing.T) {
	tests := []struct {
		name  string
		nodes bool
		input string
	}{
		{"missing header", true, ""},
		{"missing column", true, "area,production_total\nIndia,1\n"},
		{"bad number", true, "area,year,production_total\nIndia,2021,lots\n"},
		{"bad year", true, "area,year\nIndia,twenty\n"},
		{"empty area", true, "area,year\n,2021\n"},
		{"missing edge column", false, "exporter,importer,year\nA,B,2021\n"},
		{"bad quantity", false, "exporter,importer,year,commodity,trade_quantity\nA,B,2021,Rice,x\n"},
		{"empty commodity", false, "exporter,importer,year,commodity,trade_quantity\nA,B,2021,,1\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var err error
			if tt.nodes {
				_, err = ReadNodes(strings.NewReader(tt.input))
			} else {
				_, err = ReadEdges(strings.NewReader(tt.input))
			}
			if !errors.Is(err, ErrMalformedRow) {
				t.Errorf("expected ErrMalformedRow, got %v", err)
			}
		})
	}
}

func TestReadMalformed_ReportsLine(t *testing.T) {
	_, err := ReadNodes(strings.NewReader("area,year,food_supply\nIndia,2021,1\nEgypt,2021,abc\n"))
	if err == nil || !strings.Contains(err.Error(), "line 3") {
		t.Errorf("expected error on line 3, got %v", err)
	}
}

func TestMergeEdges(t *testing.T) {
	rows, err := ReadEdges(strings.NewReader(edgesCSV))
	if err != nil {
		t.Fatalf("ReadEdges failed: %v", err)
	}

	merged, dupes, loops := MergeEdges(rows)
	if dupes != 1 || loops != 1 {
		t.Errorf("expected 1 duplicate and 1 self-loop, got %d and %d", dupes, loops)
	}
	if len(merged) != 4 {
		t.Fatalf("expected 4 merged flows, got %d", len(merged))
	}
	if merged[0].Quantity != 3.0 {
		t.Errorf("expected mean 3.0, got %f", merged[0].Quantity)
	}
	if merged[1].Source != "China" {
		t.Errorf("expected normalized exporter China, got %s", merged[1].Source)
	}
	if merged[3].Year != 2021 {
		t.Errorf("expected year 2021, got %d", merged[3].Year)
	}

	// Input rows must not be modified
	if rows[0].Quantity != 2.0 {
		t.Errorf("input mutated: %f", rows[0].Quantity)
	}
}

func TestDedupNodes(t *testing.T) {
	rows, _ := ReadNodes(strings.NewReader(nodesCSV))
	kept, dupes, aggregates := DedupNodes(rows)
	if dupes != 1 || aggregates != 1 {
		t.Errorf("expected 1 duplicate and 1 aggregate, got %d and %d", dupes, aggregates)
	}
	if len(kept) != 4 {
		t.Fatalf("expected 4 nodes, got %d", len(kept))
	}
	if kept[1].Country != "India" || kept[1].Production != 310.5 {
		t.Errorf("first India row should win: %+v", kept[1])
	}
}

func TestImporter_Import(t *testing.T) {
	store := memory.NewGraphStore()
	mirror := memory.NewGraphStore()
	im := NewImporter(Options{
		Writer:        store,
		Mirrors:       []storage.GraphWriter{mirror},
		NodeBatchSize: 2,
		EdgeBatchSize: 2,
	})

	res, err := im.Import(context.Background(), strings.NewReader(nodesCSV), strings.NewReader(edgesCSV))
	if err != nil {
		t.Fatalf("Import failed: %v", err)
	}

	want := Result{
		NodesRead: 6, NodesWritten: 4, NodeDuplicates: 1, Aggregates: 1,
		EdgesRead: 6, EdgesWritten: 3, EdgesSkipped: 1, EdgesMerged: 1, SelfLoops: 1,
	}
	res.Duration = 0
	if *res != want {
		t.Errorf("unexpected result\n got %+v\nwant %+v", *res, want)
	}

	nodes, edges, err := store.FetchSnapshot(context.Background(), 2021)
	if err != nil {
		t.Fatalf("FetchSnapshot failed: %v", err)
	}
	if len(nodes) != 4 || len(edges) != 3 {
		t.Errorf("expected 4 nodes and 3 edges, got %d and %d", len(nodes), len(edges))
	}

	mirrored, mirroredEdges, _ := mirror.FetchSnapshot(context.Background(), 2021)
	if len(mirrored) != 4 || len(mirroredEdges) != 3 {
		t.Errorf("mirror out of sync: %d nodes, %d edges", len(mirrored), len(mirroredEdges))
	}
}

func TestImporter_ImportFiles(t *testing.T) {
	dir := t.TempDir()
	nodesPath := filepath.Join(dir, "nodes_all.csv")
	edgesPath := filepath.Join(dir, "edges_all.csv")
	if err := os.WriteFile(nodesPath, []byte(nodesCSV), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(edgesPath, []byte(edgesCSV), 0o644); err != nil {
		t.Fatal(err)
	}

	store := memory.NewGraphStore()
	res, err := NewImporter(Options{Writer: store}).ImportFiles(context.Background(), nodesPath, edgesPath)
	if err != nil {
		t.Fatalf("ImportFiles failed: %v", err)
	}
	if res.NodesWritten != 4 || res.EdgesWritten != 3 {
		t.Errorf("unexpected result %+v", res)
	}

	res, err = NewImporter(Options{Writer: memory.NewGraphStore()}).ImportFiles(context.Background(), nodesPath, "")
	if err != nil {
		t.Fatalf("nodes-only import failed: %v", err)
	}
	if res.EdgesRead != 0 {
		t.Errorf("expected no edges, got %d", res.EdgesRead)
	}

	if _, err := NewImporter(Options{Writer: store}).ImportFiles(context.Background(), filepath.Join(dir, "missing.csv"), ""); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestImporter_MalformedWritesNothing(t *testing.T) {
	store := memory.NewGraphStore()
	bad := nodesCSV + "Kenya,2021,abc,0,0,0\n"

	_, err := NewImporter(Options{Writer: store}).Import(context.Background(), strings.NewReader(bad), nil)
	if !errors.Is(err, ErrMalformedRow) {
		t.Fatalf("expected ErrMalformedRow, got %v", err)
	}
	names, _ := store.ListCountries(context.Background())
	if len(names) != 0 {
		t.Errorf("expected empty store, got %v", names)
	}
}

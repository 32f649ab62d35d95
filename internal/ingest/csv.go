package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"food-trade-twin/internal/domain"
)

// ErrMalformedRow is returned for rows whose cells cannot be parsed.
var ErrMalformedRow = errors.New("malformed row")

var (
	nodeColumns = []string{"area", "year", "production_total", "food_supply", "net_trade", "import_dependency"}
	edgeColumns = []string{"exporter", "importer", "year", "commodity", "trade_quantity"}
)

// table is a header-indexed CSV reader.
type table struct {
	r    *csv.Reader
	cols map[string]int
	line int
}

func newTable(r io.Reader, required []string) (*table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: missing header", ErrMalformedRow)
		}
		return nil, fmt.Errorf("read header: %w", err)
	}

	cols := make(map[string]int, len(header))
	for i, h := range header {
		h = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		cols[h] = i
	}
	for _, c := range required {
		if _, ok := cols[c]; !ok {
			return nil, fmt.Errorf("%w: missing column %q", ErrMalformedRow, c)
		}
	}

	return &table{r: cr, cols: cols, line: 1}, nil
}

// next returns the next record or io.EOF.
func (t *table) next() ([]string, error) {
	rec, err := t.r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.EOF
		}
		return nil, fmt.Errorf("%w: line %d: %v", ErrMalformedRow, t.line+1, err)
	}
	t.line++
	return rec, nil
}

func (t *table) str(rec []string, col string) string {
	i := t.cols[col]
	if i >= len(rec) {
		return ""
	}
	return strings.TrimSpace(rec[i])
}

// float parses a numeric cell. Empty cells are 0.
func (t *table) float(rec []string, col string) (float64, error) {
	s := t.str(rec, col)
	if s == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: line %d: column %s: %q", ErrMalformedRow, t.line, col, s)
	}
	return v, nil
}

// year parses a year cell, accepting "2021" and "2021.0".
func (t *table) year(rec []string) (int, error) {
	s := t.str(rec, "year")
	if y, err := strconv.Atoi(s); err == nil {
		return y, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != float64(int(f)) {
		return 0, fmt.Errorf("%w: line %d: column year: %q", ErrMalformedRow, t.line, s)
	}
	return int(f), nil
}

// ReadNodes parses a nodes CSV (area, year, production_total, food_supply,
// net_trade, import_dependency). Names are normalized; rows are returned in
// file order without deduplication.
func ReadNodes(r io.Reader) ([]*domain.NodeState, error) {
	t, err := newTable(r, nodeColumns[:2])
	if err != nil {
		return nil, err
	}

	var out []*domain.NodeState
	for {
		rec, err := t.next()
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return nil, err
		}

		n := &domain.NodeState{Country: NormalizeName(t.str(rec, "area"))}
		if n.Country == "" {
			return nil, fmt.Errorf("%w: line %d: empty area", ErrMalformedRow, t.line)
		}
		if n.Year, err = t.year(rec); err != nil {
			return nil, err
		}
		fields := []*float64{&n.Production, &n.FoodSupply, &n.NetTrade, &n.ImportDependency}
		for i, col := range nodeColumns[2:] {
			if _, ok := t.cols[col]; !ok {
				continue
			}
			if *fields[i], err = t.float(rec, col); err != nil {
				return nil, err
			}
		}
		out = append(out, n)
	}
}

// ReadEdges parses an edges CSV (exporter, importer, year, commodity,
// trade_quantity). Names are normalized; rows are returned in file order.
func ReadEdges(r io.Reader) ([]*domain.TradeFlow, error) {
	t, err := newTable(r, edgeColumns)
	if err != nil {
		return nil, err
	}

	var out []*domain.TradeFlow
	for {
		rec, err := t.next()
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return nil, err
		}

		f := &domain.TradeFlow{
			Source:    NormalizeName(t.str(rec, "exporter")),
			Target:    NormalizeName(t.str(rec, "importer")),
			Commodity: t.str(rec, "commodity"),
		}
		if f.Source == "" || f.Target == "" || f.Commodity == "" {
			return nil, fmt.Errorf("%w: line %d: empty exporter, importer or commodity", ErrMalformedRow, t.line)
		}
		if f.Year, err = t.year(rec); err != nil {
			return nil, err
		}
		if f.Quantity, err = t.float(rec, "trade_quantity"); err != nil {
			return nil, err
		}
		out = append(out, f)
	}
}

package aggregate

import (
	"fmt"
	"sync"

	"github.com/vegasq/esmcat/catalog"
	"github.com/vegasq/esmcat/dataset"
	"github.com/vegasq/esmcat/opener"
)

// Builder turns catalog record groups into datasets. The catalog
// supplies the asset and aggregation layout, the opener registry loads
// assets, and the optional scheduler parallelizes leaf opens.
type Builder struct {
	Catalog   *catalog.Catalog
	Openers   *opener.Registry
	Storage   map[string]interface{}
	Scheduler Scheduler
}

// node is one cell of the aggregation tree arena. Leaves keep their
// records; interior nodes keep child indices and the key values that
// partition them. Children always sit at higher arena indices than
// their parent.
type node struct {
	level    int
	records  []catalog.Row
	children []int
	keys     []interface{}
	ds       *dataset.Dataset
	err      error
}

// Build assembles the dataset for one group of records. vars restricts
// which variables are loaded from assets whose variable column holds
// lists; nil loads everything. Failures come back as an
// *AggregationError carrying the key.
func (b *Builder) Build(key string, records []catalog.Row, vars []string) (*dataset.Dataset, error) {
	if len(records) == 0 {
		return nil, &AggregationError{Key: key, Err: fmt.Errorf("no records to aggregate")}
	}

	var aggs []catalog.Aggregation
	if b.Catalog.AggregationControl != nil {
		sanitized, err := sanitizeAggregations(b.Catalog.AggregationControl.Aggregations, records)
		if err != nil {
			return nil, &AggregationError{Key: key, Err: err}
		}
		aggs = sanitized
	}

	nodes := grow(records, aggs)
	b.openLeaves(nodes, len(aggs), vars)
	combineNodes(nodes, aggs)

	root := nodes[0]
	if root.err != nil {
		return nil, &AggregationError{Key: key, Err: root.err}
	}
	return root.ds, nil
}

// sanitizeAggregations drops aggregation entries whose column is
// entirely null within the group. A column that is only partly null
// cannot partition the records and is an error.
func sanitizeAggregations(aggs []catalog.Aggregation, records []catalog.Row) ([]catalog.Aggregation, error) {
	kept := make([]catalog.Aggregation, 0, len(aggs))
	for _, agg := range aggs {
		nulls := 0
		for _, record := range records {
			if record[agg.AttributeName] == nil {
				nulls++
			}
		}
		switch nulls {
		case 0:
			kept = append(kept, agg)
		case len(records):
			// Entirely null, nothing to aggregate over.
		default:
			return nil, fmt.Errorf("the data in the %q column should either be all null or there should be no nulls", agg.AttributeName)
		}
	}
	return kept, nil
}

// grow lays the aggregation tree out in an arena. Each level partitions
// its records by the level's attribute column, children in ascending
// key order. Nodes past the last level keep their records and become
// leaves.
func grow(records []catalog.Row, aggs []catalog.Aggregation) []*node {
	nodes := []*node{{records: records}}
	for i := 0; i < len(nodes); i++ {
		n := nodes[i]
		if n.level == len(aggs) {
			continue
		}
		for _, group := range catalog.GroupRows(n.records, []string{aggs[n.level].AttributeName}) {
			nodes = append(nodes, &node{level: n.level + 1, records: group.Rows})
			n.children = append(n.children, len(nodes)-1)
			n.keys = append(n.keys, group.Values[0])
		}
		n.records = nil
	}
	return nodes
}

// openLeaves loads every leaf's assets, fanning out through the
// scheduler when one is set. Tasks the scheduler rejects run inline.
func (b *Builder) openLeaves(nodes []*node, depth int, vars []string) {
	var wg sync.WaitGroup
	for _, n := range nodes {
		if n.level != depth {
			continue
		}
		wg.Add(1)
		task := func() {
			defer wg.Done()
			n.ds, n.err = b.openLeaf(n.records, vars)
		}
		if b.Scheduler == nil || b.Scheduler.Submit(task) != nil {
			task()
		}
	}
	wg.Wait()
}

// openLeaf opens each record's asset and unions multi-record leaves.
func (b *Builder) openLeaf(records []catalog.Row, vars []string) (*dataset.Dataset, error) {
	dsets := make([]*dataset.Dataset, 0, len(records))
	for _, record := range records {
		ds, err := b.openRecord(record, vars)
		if err != nil {
			return nil, err
		}
		dsets = append(dsets, ds)
	}
	if len(dsets) == 1 {
		return dsets[0], nil
	}
	return dataset.Merge(dsets)
}

// openRecord resolves one record's path, format and variables, then
// loads it through the registry.
func (b *Builder) openRecord(record catalog.Row, vars []string) (*dataset.Dataset, error) {
	path, ok := record[b.Catalog.Assets.ColumnName].(string)
	if !ok || path == "" {
		return nil, fmt.Errorf("record has no asset path in column %q", b.Catalog.Assets.ColumnName)
	}

	format := b.Catalog.Assets.Format
	if col := b.Catalog.Assets.FormatColumnName; col != "" {
		s, ok := record[col].(string)
		if !ok || s == "" {
			return nil, fmt.Errorf("record has no data format in column %q", col)
		}
		format = catalog.DataFormat(s)
	}

	ds, err := b.Openers.Open(path, format, b.recordVars(record, vars), b.Storage)
	if err != nil {
		return nil, fmt.Errorf("failed to open asset %s: %w", path, err)
	}
	return ds, nil
}

// recordVars resolves which variables to load for one record. List
// cells intersect with the requested variables, keeping cell order;
// scalar cells load as they are.
func (b *Builder) recordVars(record catalog.Row, requested []string) []string {
	ac := b.Catalog.AggregationControl
	if ac == nil {
		return requested
	}
	switch cell := record[ac.VariableColumnName].(type) {
	case []interface{}:
		want := make(map[string]bool, len(requested))
		for _, r := range requested {
			want[r] = true
		}
		out := make([]string, 0, len(cell))
		for _, item := range cell {
			s, ok := item.(string)
			if !ok {
				continue
			}
			if len(want) == 0 || want[s] {
				out = append(out, s)
			}
		}
		return out
	case string:
		return []string{cell}
	default:
		return requested
	}
}

// combineNodes folds the arena bottom-up. Children sit after their
// parent, so a reverse sweep sees every child resolved before its
// parent combines them. The first child error wins and propagates.
func combineNodes(nodes []*node, aggs []catalog.Aggregation) {
	for i := len(nodes) - 1; i >= 0; i-- {
		n := nodes[i]
		if len(n.children) == 0 {
			continue
		}
		children := make([]*dataset.Dataset, len(n.children))
		for j, ci := range n.children {
			child := nodes[ci]
			if child.err != nil {
				n.err = child.err
				break
			}
			children[j] = child.ds
		}
		if n.err != nil {
			continue
		}
		n.ds, n.err = combine(aggs[n.level], children, n.keys)
	}
}

// combine applies one aggregation entry to a node's children.
func combine(agg catalog.Aggregation, children []*dataset.Dataset, keys []interface{}) (*dataset.Dataset, error) {
	switch agg.Type {
	case catalog.AggregationJoinNew:
		return dataset.Stack(children, agg.AttributeName, keys)
	case catalog.AggregationJoinExisting:
		dim, ok := agg.Dim()
		if !ok {
			return nil, fmt.Errorf("join_existing aggregation over %q needs a dim option", agg.AttributeName)
		}
		return dataset.Concat(children, dim)
	case catalog.AggregationUnion:
		return dataset.Merge(children)
	default:
		return nil, fmt.Errorf("unknown aggregation type %q", agg.Type)
	}
}

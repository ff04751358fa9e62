package store

import (
	"fmt"

	"github.com/vegasq/esmcat/catalog"
	"github.com/vegasq/esmcat/derived"
	"github.com/vegasq/esmcat/query"
)

// Search filters the catalog and returns a new store over the matching
// records; the receiver is untouched. Values in q follow the query
// package's semantics, and requireAllOn keeps only groups realizing
// every combination of the remaining query.
//
// When the query names the variable column, registered derived
// variables among the values resolve through their dependency queries:
// the records their inputs live in join the result, and the returned
// store remembers the requested variables so dataset builds load only
// those.
func (s *Store) Search(q map[string]interface{}, requireAllOn []string) (*Store, error) {
	normalized, err := query.Normalize(q, s.cat.Index.Columns(), requireAllOn)
	if err != nil {
		return nil, err
	}

	results := query.Search(s.cat.Index, normalized)
	if len(requireAllOn) > 0 {
		results = query.RequireAllOn(results, normalized, requireAllOn)
	}

	requested := s.requested
	registry := s.registry
	if variables, ok := normalized[variableColumn(s.cat)]; ok {
		requested = stringValues(variables)
		registry = s.registry.Search(requested)
		extra, err := s.derivedRows(registry, normalized)
		if err != nil {
			return nil, err
		}
		if len(extra) > 0 {
			combined := append(append([]catalog.Row{}, results.Rows()...), extra...)
			results = s.cat.Index.Subset(dedupeRows(s.cat.Index.Columns(), combined))
		}
	}

	out := s.clone()
	out.cat = s.cat.WithIndex(results)
	out.requested = requested
	out.registry = registry
	if err := out.groupIndex(); err != nil {
		return nil, err
	}
	s.logger.Debug("search done", "hits", results.Len(), "keys", out.Len())
	return out, nil
}

// derivedRows resolves the dependency queries of the matched derived
// variables against the full table. The caller's non-variable
// constraints override the entry's own.
func (s *Store) derivedRows(matched *derived.Registry, normalized map[string][]interface{}) ([]catalog.Row, error) {
	if matched.Len() == 0 {
		return nil, nil
	}
	residual := make(map[string][]interface{}, len(normalized))
	for col, values := range normalized {
		if col != variableColumn(s.cat) {
			residual[col] = values
		}
	}
	var rows []catalog.Row
	for _, entry := range matched.Items() {
		entryQuery, err := query.Normalize(entry.Query, s.cat.Index.Columns(), nil)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve derived variable %q: %w", entry.Variable, err)
		}
		merged := make(map[string][]interface{}, len(entryQuery)+len(residual))
		for col, values := range entryQuery {
			merged[col] = values
		}
		for col, values := range residual {
			merged[col] = values
		}
		rows = append(rows, query.Search(s.cat.Index, merged).Rows()...)
	}
	return rows, nil
}

// dedupeRows drops rows whose values repeat an earlier row, keeping
// first appearances in order.
func dedupeRows(columns []string, rows []catalog.Row) []catalog.Row {
	seen := make(map[string]bool, len(rows))
	out := make([]catalog.Row, 0, len(rows))
	for _, row := range rows {
		tuple := make([]interface{}, len(columns))
		for i, col := range columns {
			tuple[i] = row[col]
		}
		key := catalog.EncodeValues(tuple)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, row)
	}
	return out
}

// stringValues keeps the plain string values of a query column, which
// is what variable requests are made of. Patterns and non-strings
// drop.
func stringValues(values []interface{}) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if s, ok := v.(string); ok && s != "" && !query.IsPattern(s) {
			out = append(out, s)
		}
	}
	return out
}

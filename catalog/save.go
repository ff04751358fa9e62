package catalog

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/klauspost/compress/gzip"
)

// SaveOption configures Save.
type SaveOption func(*saveOptions)

type saveOptions struct {
	directory   string
	catalogType string
	compress    bool
}

// WithDirectory sets the directory the catalog files are written to.
// The default is the current directory.
func WithDirectory(dir string) SaveOption {
	return func(o *saveOptions) {
		o.directory = dir
	}
}

// WithCatalogType picks how the asset table is stored: "dict" embeds it
// in the JSON document, "file" writes it next to it as CSV. The default
// is "dict".
func WithCatalogType(t string) SaveOption {
	return func(o *saveOptions) {
		o.catalogType = t
	}
}

// WithCompression gzips the CSV table. Only meaningful with catalog type
// "file".
func WithCompression() SaveOption {
	return func(o *saveOptions) {
		o.compress = true
	}
}

// Save writes the catalog descriptor as name.json and, with catalog type
// "file", the asset table as name.csv (name.csv.gz with compression).
// The saved descriptor gets name as its id and a fresh last_updated
// stamp; an empty name gets a generated identifier. List cells are
// written in their bracketed text form so a reload round-trips them.
func (c *Catalog) Save(name string, opts ...SaveOption) error {
	o := &saveOptions{directory: ".", catalogType: "dict"}
	for _, opt := range opts {
		opt(o)
	}
	if o.catalogType != "dict" && o.catalogType != "file" {
		return fmt.Errorf("catalog type must be either \"dict\" or \"file\", got %q", o.catalogType)
	}
	if c.Index == nil {
		return fmt.Errorf("catalog has no index")
	}
	if name == "" {
		name = uuid.NewString()
	}

	out := *c
	out.ID = name
	out.LastUpdated = time.Now().UTC().Format("2006-01-02T15:04:05Z")
	out.CatalogDict = nil
	out.CatalogFile = ""

	if o.catalogType == "file" {
		tableName := name + ".csv"
		if o.compress {
			tableName += ".gz"
		}
		if err := writeCSVTable(filepath.Join(o.directory, tableName), c.Index, o.compress); err != nil {
			return err
		}
		out.CatalogFile = tableName
	} else {
		out.CatalogDict = c.Index.Rows()
	}

	data, err := json.MarshalIndent(&out, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode catalog descriptor: %w", err)
	}
	jsonPath := filepath.Join(o.directory, name+".json")
	if err := os.WriteFile(jsonPath, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("failed to write catalog descriptor: %w", err)
	}
	return nil
}

func writeCSVTable(path string, idx *Index, compress bool) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create catalog table: %w", err)
	}

	var w io.Writer = f
	var gz *gzip.Writer
	if compress {
		gz = gzip.NewWriter(f)
		w = gz
	}

	csvWriter := csv.NewWriter(w)
	writeErr := func() error {
		if err := csvWriter.Write(idx.Columns()); err != nil {
			return err
		}
		for _, row := range idx.Rows() {
			record := make([]string, len(idx.Columns()))
			for i, col := range idx.Columns() {
				record[i] = formatCell(row[col])
			}
			if err := csvWriter.Write(record); err != nil {
				return err
			}
		}
		csvWriter.Flush()
		return csvWriter.Error()
	}()
	if writeErr == nil && gz != nil {
		writeErr = gz.Close()
	}
	closeErr := f.Close()
	if writeErr != nil {
		return fmt.Errorf("failed to write catalog table: %w", writeErr)
	}
	if closeErr != nil {
		return fmt.Errorf("failed to close catalog table: %w", closeErr)
	}
	return nil
}

// formatCell renders a cell for CSV output. Lists use the bracketed
// single-quote form that decodeListCell parses back.
func formatCell(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return ""
	case []interface{}:
		parts := make([]string, len(val))
		for i, item := range val {
			if s, ok := item.(string); ok {
				parts[i] = "'" + s + "'"
			} else {
				parts[i] = fmt.Sprintf("%v", item)
			}
		}
		return "[" + strings.Join(parts, ", ") + "]"
	default:
		return fmt.Sprintf("%v", val)
	}
}

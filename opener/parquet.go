package opener

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/parquet-go/parquet-go"

	"github.com/vegasq/esmcat/catalog"
	"github.com/vegasq/esmcat/dataset"
)

// ParquetOpener loads parquet assets. Rows become one "index" dimension
// and every column becomes a 1-D variable along it; the source path and
// the loaded variable names are recorded in the dataset attributes.
type ParquetOpener struct{}

// Open reads the asset into a dataset. A non-empty vars list keeps only
// the named columns; storage options are ignored.
func (ParquetOpener) Open(path string, format catalog.DataFormat, vars []string, storage map[string]interface{}) (*dataset.Dataset, error) {
	columns, rows, err := readParquetRows(path)
	if err != nil {
		return nil, err
	}

	keep := make(map[string]bool, len(vars))
	for _, v := range vars {
		keep[v] = true
	}

	ds := dataset.New()
	for _, col := range columns {
		if len(keep) > 0 && !keep[col] {
			continue
		}
		values := make([]interface{}, len(rows))
		for i, row := range rows {
			values[i] = row[col]
		}
		ds.Vars[col] = dataset.NewVariable("index", values)
	}

	index := make([]interface{}, len(rows))
	for i := range index {
		index[i] = int64(i)
	}
	ds.Coords["index"] = index
	ds.Attrs["source"] = path
	ds.Attrs["esmcat_varname"] = ds.VarNames()
	return ds, nil
}

// readParquetRows reads a parquet file into row maps, keeping the
// schema's column order.
func readParquetRows(path string) ([]string, []map[string]interface{}, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	stat, err := file.Stat()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to stat file: %w", err)
	}

	pqFile, err := parquet.OpenFile(file, stat.Size())
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open parquet file: %w", err)
	}

	fields := pqFile.Schema().Fields()
	columns := make([]string, len(fields))
	for i, field := range fields {
		columns[i] = field.Name()
	}

	reader := parquet.NewReader(pqFile)
	defer func() { _ = reader.Close() }()

	rows := make([]map[string]interface{}, 0)
	for {
		row := make(map[string]interface{})
		err := reader.Read(&row)
		if err != nil {
			// Use errors.Is for proper EOF detection
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, nil, fmt.Errorf("failed to read row: %w", err)
		}
		rows = append(rows, row)
	}

	return columns, rows, nil
}

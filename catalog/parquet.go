package catalog

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/parquet-go/parquet-go"
)

// readParquetTable reads a parquet asset table into memory. Column order
// follows the file schema. Repeated fields come back as lists, so
// iterable columns need no declaration for parquet tables.
func readParquetTable(path string) ([]string, []Row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open catalog table: %w", err)
	}
	defer func() { _ = f.Close() }()

	stat, err := f.Stat()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to stat catalog table: %w", err)
	}
	pqFile, err := parquet.OpenFile(f, stat.Size())
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open parquet table: %w", err)
	}

	schema := pqFile.Schema()
	columns := make([]string, 0, len(schema.Fields()))
	for _, field := range schema.Fields() {
		columns = append(columns, field.Name())
	}

	reader := parquet.NewReader(pqFile)
	defer func() { _ = reader.Close() }()

	rows := make([]Row, 0)
	for {
		row := make(Row)
		err := reader.Read(&row)
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, nil, fmt.Errorf("failed to read catalog table row: %w", err)
		}
		rows = append(rows, row)
	}
	return columns, rows, nil
}

// Package output provides formatters for printing catalog tables in
// various output formats.
//
// This package defines the Formatter interface and provides
// implementations for common output formats like JSON Lines, CSV and
// aligned text tables. All formatters work with rows represented as
// []map[string]interface{} and receive the column order of the table
// they print.
//
// # Supported Formats
//
//   - JSON Lines: One JSON object per line (suitable for streaming)
//   - CSV: Comma-separated values with header row
//   - Table: aligned text table for terminals
//
// # Basic Usage
//
// Using the JSON formatter:
//
//	formatter := output.NewJSONFormatter(os.Stdout)
//	if err := formatter.Format(columns, rows); err != nil {
//	    log.Fatal(err)
//	}
//
// Using the CSV formatter:
//
//	formatter := output.NewCSVFormatter(os.Stdout)
//	if err := formatter.Format(columns, rows); err != nil {
//	    log.Fatal(err)
//	}
//
// # Writing to Different Destinations
//
// Change output destination dynamically:
//
//	formatter := output.NewJSONFormatter(os.Stdout)
//
//	// Write to file
//	file, err := os.Create("output.json")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer file.Close()
//
//	formatter.SetOutput(file)
//	if err := formatter.Format(columns, rows); err != nil {
//	    log.Fatal(err)
//	}
//
// # Using as String
//
// Write to a bytes buffer to get string output:
//
//	var buf bytes.Buffer
//	formatter := output.NewCSVFormatter(&buf)
//	if err := formatter.Format(columns, rows); err != nil {
//	    log.Fatal(err)
//	}
//	csvString := buf.String()
//
// # Formatter Interface
//
// Implement custom formatters by satisfying the Formatter interface:
//
//	type Formatter interface {
//	    Format(columns []string, rows []map[string]interface{}) error
//	    SetOutput(w io.Writer)
//	}
//
// # Type Handling
//
// The formatters handle common Go types automatically:
//   - Strings, numbers (int, float), booleans are output directly
//   - JSON formatter preserves nested objects and arrays
//   - CSV and table formatters render list cells in their bracketed
//     text form, matching how catalog tables store them
//   - Null/nil values become empty cells outside of JSON
package output

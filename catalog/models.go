package catalog

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// AggregationType identifies how assets inside a group are combined.
type AggregationType string

const (
	// AggregationUnion merges datasets carrying different variables.
	AggregationUnion AggregationType = "union"
	// AggregationJoinNew stacks datasets along a new dimension named
	// after the aggregated column.
	AggregationJoinNew AggregationType = "join_new"
	// AggregationJoinExisting concatenates datasets along a dimension
	// they already share, named in the aggregation options.
	AggregationJoinExisting AggregationType = "join_existing"
)

// DataFormat identifies the storage format of an asset.
type DataFormat string

const (
	FormatNetCDF    DataFormat = "netcdf"
	FormatZarr      DataFormat = "zarr"
	FormatReference DataFormat = "reference"
	FormatOpenDAP   DataFormat = "opendap"
	FormatParquet   DataFormat = "parquet"
)

var validate *validator.Validate

func init() {
	validate = validator.New()
	_ = validate.RegisterValidation("dataformat", validateDataFormat)
	_ = validate.RegisterValidation("aggtype", validateAggregationType)
}

func validateDataFormat(fl validator.FieldLevel) bool {
	switch DataFormat(fl.Field().String()) {
	case FormatNetCDF, FormatZarr, FormatReference, FormatOpenDAP, FormatParquet:
		return true
	}
	return false
}

func validateAggregationType(fl validator.FieldLevel) bool {
	switch AggregationType(fl.Field().String()) {
	case AggregationUnion, AggregationJoinNew, AggregationJoinExisting:
		return true
	}
	return false
}

// Attribute describes one column of the catalog table.
type Attribute struct {
	ColumnName string `json:"column_name" validate:"required"`
	Vocabulary string `json:"vocabulary,omitempty"`
}

// Assets names the column holding asset locations and fixes how the
// storage format of each asset is discovered: either one format for the
// whole catalog, or a column carrying a format per row. Exactly one of
// the two must be set.
type Assets struct {
	ColumnName       string     `json:"column_name" validate:"required"`
	Format           DataFormat `json:"format,omitempty" validate:"omitempty,dataformat"`
	FormatColumnName string     `json:"format_column_name,omitempty"`
}

// Aggregation describes one aggregation step over a catalog column.
type Aggregation struct {
	Type          AggregationType        `json:"type" validate:"required,aggtype"`
	AttributeName string                 `json:"attribute_name" validate:"required"`
	Options       map[string]interface{} `json:"options,omitempty"`
}

// Dim returns the existing dimension named in the aggregation options.
func (a *Aggregation) Dim() (string, bool) {
	dim, ok := a.Options["dim"].(string)
	return dim, ok && dim != ""
}

// AggregationControl fixes the variable column, the grouping columns and
// the aggregation steps of a catalog.
type AggregationControl struct {
	VariableColumnName string        `json:"variable_column_name" validate:"required"`
	GroupbyAttrs       []string      `json:"groupby_attrs"`
	Aggregations       []Aggregation `json:"aggregations,omitempty" validate:"dive"`
}

// Catalog is the descriptor of an ESM-style collection: schema metadata
// plus the asset table it points at. Load fills Index with the table;
// callers assembling catalogs in memory attach an Index directly.
type Catalog struct {
	EsmcatVersion      string              `json:"esmcat_version" validate:"required"`
	ID                 string              `json:"id,omitempty"`
	Title              string              `json:"title,omitempty"`
	Description        string              `json:"description,omitempty"`
	Attributes         []Attribute         `json:"attributes,omitempty" validate:"dive"`
	Assets             Assets              `json:"assets"`
	AggregationControl *AggregationControl `json:"aggregation_control,omitempty"`
	CatalogDict        []Row               `json:"catalog_dict,omitempty"`
	CatalogFile        string              `json:"catalog_file,omitempty"`
	LastUpdated        string              `json:"last_updated,omitempty"`

	Index *Index `json:"-"`
}

// Validate checks the descriptor fields that do not depend on the loaded
// table. Table-dependent checks run when the index is attached.
func (c *Catalog) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid catalog descriptor: %w", err)
	}
	hasFormat := c.Assets.Format != ""
	hasFormatColumn := c.Assets.FormatColumnName != ""
	if hasFormat && hasFormatColumn {
		return fmt.Errorf("invalid catalog descriptor: cannot set both assets format and format column")
	}
	if !hasFormat && !hasFormatColumn {
		return fmt.Errorf("invalid catalog descriptor: must set one of assets format or format column")
	}
	if c.CatalogDict != nil && c.CatalogFile != "" {
		return fmt.Errorf("invalid catalog descriptor: catalog_dict and catalog_file cannot both be set")
	}
	if c.AggregationControl != nil {
		for _, agg := range c.AggregationControl.Aggregations {
			if agg.Type == AggregationJoinExisting {
				if _, ok := agg.Dim(); !ok {
					return fmt.Errorf("invalid catalog descriptor: join_existing aggregation over %q needs a dim option", agg.AttributeName)
				}
			}
		}
	}
	return nil
}

// CheckColumns verifies that every column the descriptor references
// exists in the loaded table.
func (c *Catalog) CheckColumns() error {
	if c.Index == nil {
		return fmt.Errorf("catalog has no index")
	}
	if !c.Index.HasColumn(c.Assets.ColumnName) {
		return fmt.Errorf("assets column %q not in table columns %v", c.Assets.ColumnName, c.Index.Columns())
	}
	if c.Assets.FormatColumnName != "" && !c.Index.HasColumn(c.Assets.FormatColumnName) {
		return fmt.Errorf("format column %q not in table columns %v", c.Assets.FormatColumnName, c.Index.Columns())
	}
	if c.AggregationControl == nil {
		return nil
	}
	if !c.Index.HasColumn(c.AggregationControl.VariableColumnName) {
		return fmt.Errorf("variable column %q not in table columns %v", c.AggregationControl.VariableColumnName, c.Index.Columns())
	}
	for _, col := range c.AggregationControl.GroupbyAttrs {
		if !c.Index.HasColumn(col) {
			return fmt.Errorf("groupby attribute %q not in table columns %v", col, c.Index.Columns())
		}
	}
	for _, agg := range c.AggregationControl.Aggregations {
		if !c.Index.HasColumn(agg.AttributeName) {
			return fmt.Errorf("aggregation attribute %q not in table columns %v", agg.AttributeName, c.Index.Columns())
		}
	}
	return nil
}

// HasMultipleVariableAssets reports whether single assets carry several
// variables, which is the case when the variable column holds lists.
func (c *Catalog) HasMultipleVariableAssets() bool {
	if c.AggregationControl == nil || c.Index == nil {
		return false
	}
	return c.Index.HasIterable(c.AggregationControl.VariableColumnName)
}

// WithIndex returns a copy of the descriptor bound to the given index.
// The copy drops the catalog file reference since the rows no longer
// mirror it.
func (c *Catalog) WithIndex(idx *Index) *Catalog {
	out := *c
	out.CatalogFile = ""
	out.CatalogDict = nil
	out.Index = idx
	return &out
}

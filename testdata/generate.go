package main

import (
	"log"
	"os"

	"github.com/parquet-go/parquet-go"

	"github.com/vegasq/esmcat/catalog"
)

type Sample struct {
	Time int64   `parquet:"time"`
	TS   float64 `parquet:"ts"`
	PR   float64 `parquet:"pr"`
}

// writeAsset generates one parquet asset with a short synthetic series.
func writeAsset(name string, start int64, offset float64) {
	rows := make([]Sample, 4)
	for i := range rows {
		rows[i] = Sample{
			Time: start + int64(i),
			TS:   280.0 + offset + float64(i),
			PR:   1.5 + offset/10 + float64(i)/10,
		}
	}

	file, err := os.Create(name)
	if err != nil {
		log.Fatal(err)
	}
	defer file.Close()

	writer := parquet.NewGenericWriter[Sample](file)
	defer writer.Close()

	if _, err := writer.Write(rows); err != nil {
		log.Fatal(err)
	}
}

func main() {
	writeAsset("ncar_hist_r1.parquet", 0, 0)
	writeAsset("ncar_hist_r2.parquet", 0, 1)
	writeAsset("ncar_ctrl_r1.parquet", 100, 2)
	writeAsset("ipsl_hist_r1.parquet", 0, 3)

	cat := &catalog.Catalog{
		EsmcatVersion: "0.1.0",
		ID:            "sample",
		Title:         "Sample catalog",
		Description:   "Small synthetic collection for trying out the command line tool",
		Assets:        catalog.Assets{ColumnName: "path", Format: catalog.FormatParquet},
		AggregationControl: &catalog.AggregationControl{
			VariableColumnName: "variable",
			GroupbyAttrs:       []string{"institution", "experiment"},
			Aggregations: []catalog.Aggregation{
				{Type: catalog.AggregationJoinNew, AttributeName: "ensemble"},
			},
		},
		Index: catalog.NewIndex(
			[]string{"institution", "experiment", "ensemble", "variable", "path"},
			[]catalog.Row{
				{"institution": "NCAR", "experiment": "historical", "ensemble": int64(1), "variable": []interface{}{"ts", "pr"}, "path": "ncar_hist_r1.parquet"},
				{"institution": "NCAR", "experiment": "historical", "ensemble": int64(2), "variable": []interface{}{"ts", "pr"}, "path": "ncar_hist_r2.parquet"},
				{"institution": "NCAR", "experiment": "control", "ensemble": int64(1), "variable": []interface{}{"ts", "pr"}, "path": "ncar_ctrl_r1.parquet"},
				{"institution": "IPSL", "experiment": "historical", "ensemble": int64(1), "variable": []interface{}{"ts", "pr"}, "path": "ipsl_hist_r1.parquet"},
			},
			[]string{"variable"},
		),
	}
	if err := cat.Save("sample"); err != nil {
		log.Fatal(err)
	}

	log.Println("Generated sample.json and 4 parquet assets")
}

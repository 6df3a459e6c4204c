package storage

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"strconv"

	"github.com/san-kum/threebody/internal/record"
)

// ExportCSV writes records as CSV with a Columns header.
func ExportCSV(w io.Writer, records []record.Record) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(record.Columns); err != nil {
		return err
	}

	row := make([]string, record.NumFields)
	for _, r := range records {
		for i, v := range r.Fields() {
			row[i] = strconv.FormatFloat(v, 'g', -1, 64)
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

type ExportData struct {
	Run     RunMetadata `json:"run"`
	Columns []string    `json:"columns"`
	Rows    [][]Float   `json:"rows"`
}

// ExportJSON writes the run metadata together with its records.
func ExportJSON(w io.Writer, meta RunMetadata, records []record.Record) error {
	data := ExportData{
		Run:     meta,
		Columns: record.Columns,
		Rows:    make([][]Float, len(records)),
	}
	for i, r := range records {
		fields := r.Fields()
		row := make([]Float, len(fields))
		for j, v := range fields {
			row[j] = Float(v)
		}
		data.Rows[i] = row
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}

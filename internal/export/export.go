// Package export writes causal tables to CSV and XLSX. Network summaries are
// materialized before writing so every declared variable appears as a column.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"gocausal/domain/table"
	"gocausal/internal"
	"gocausal/internal/config"
	"gocausal/internal/errors"

	"github.com/xuri/excelize/v2"
)

const (
	dataSheet   = "data"
	causesSheet = "causes"
)

// Write sends t to path in the given format, or to stdout as CSV when path
// is empty.
func Write(path, format string, t *table.Table, stdout io.Writer) error {
	switch {
	case path == "":
		return WriteCSV(stdout, t)
	case format == config.FormatXLSX:
		return WriteXLSX(path, t)
	case format == config.FormatCSV:
		return WriteCSVFile(path, t)
	default:
		return errors.InvalidInput(fmt.Sprintf("unknown output format %q", format))
	}
}

// WriteCSV writes a header row and one record per table row.
func WriteCSV(w io.Writer, t *table.Table) error {
	full, err := t.Summarize()
	if err != nil {
		return errors.Wrap(err, "materialize summaries")
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(full.Names()); err != nil {
		return err
	}
	cols := full.Columns()
	record := make([]string, len(cols))
	for i := 0; i < full.NRow(); i++ {
		for j, c := range cols {
			record[j] = strconv.FormatFloat(c.Values[i], 'g', -1, 64)
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteCSVFile writes t as CSV to path.
func WriteCSVFile(path string, t *table.Table) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.ExportFailed(path, err)
	}
	defer f.Close()

	if err := WriteCSV(f, t); err != nil {
		return errors.ExportFailed(path, err)
	}
	internal.DefaultLogger.Debug("wrote %d rows to %s", t.NRow(), path)
	return f.Close()
}

// WriteXLSX writes the data to a "data" sheet and the causal labels to a
// "causes" sheet listing each variable's role and parents.
func WriteXLSX(path string, t *table.Table) error {
	full, err := t.Summarize()
	if err != nil {
		return errors.Wrap(err, "materialize summaries")
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", dataSheet); err != nil {
		return errors.ExportFailed(path, err)
	}
	if err := writeData(f, full); err != nil {
		return errors.ExportFailed(path, err)
	}
	if _, err := f.NewSheet(causesSheet); err != nil {
		return errors.ExportFailed(path, err)
	}
	if err := writeCauses(f, full); err != nil {
		return errors.ExportFailed(path, err)
	}

	if err := f.SaveAs(path); err != nil {
		return errors.ExportFailed(path, err)
	}
	internal.DefaultLogger.Debug("wrote %d rows to %s", t.NRow(), path)
	return nil
}

func writeData(f *excelize.File, t *table.Table) error {
	header := make([]interface{}, 0, t.NCol())
	for _, n := range t.Names() {
		header = append(header, n)
	}
	if err := f.SetSheetRow(dataSheet, "A1", &header); err != nil {
		return err
	}

	cols := t.Columns()
	for i := 0; i < t.NRow(); i++ {
		row := make([]interface{}, len(cols))
		for j, c := range cols {
			row[j] = c.Values[i]
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(dataSheet, cell, &row); err != nil {
			return err
		}
	}
	return nil
}

func writeCauses(f *excelize.File, t *table.Table) error {
	header := []interface{}{"variable", "role", "parents"}
	if err := f.SetSheetRow(causesSheet, "A1", &header); err != nil {
		return err
	}

	causes := t.Causes()
	roles := make(map[string]string)
	for _, n := range t.Treatment() {
		roles[n] = "treatment"
	}
	for _, n := range t.Response() {
		roles[n] = "response"
	}

	for i, name := range causes.Keys() {
		role := roles[name]
		if role == "" {
			role = "covariate"
		}
		row := []interface{}{name, role, strings.Join(causes[name], ", ")}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(causesSheet, cell, &row); err != nil {
			return err
		}
	}
	return nil
}

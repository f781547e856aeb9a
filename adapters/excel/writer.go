// Package excel writes and reads the flat slice export as CSV or XLSX.
package excel

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"sliceinsight/internal"
	"sliceinsight/internal/drilldown"

	"github.com/xuri/excelize/v2"
)

// Supported export formats
const (
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
)

// SheetName is the worksheet holding the exported rows
const SheetName = "Segments"

// FormatFromPath picks the export format from a file extension. Anything
// other than .csv is written as a workbook.
func FormatFromPath(path string) string {
	if strings.ToLower(filepath.Ext(path)) == ".csv" {
		return FormatCSV
	}
	return FormatXLSX
}

// ContentType returns the MIME type served for format
func ContentType(format string) string {
	if format == FormatCSV {
		return "text/csv; charset=utf-8"
	}
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}

// DataWriter writes exported tables to CSV or Excel files
type DataWriter struct {
	filePath string
	fileType string
	logger   *internal.Logger
}

// NewDataWriter creates a writer whose format follows filePath's extension
func NewDataWriter(filePath string, logger *internal.Logger) *DataWriter {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &DataWriter{
		filePath: filePath,
		fileType: FormatFromPath(filePath),
		logger:   logger.WithPrefix("DataWriter"),
	}
}

// WriteTable writes table to the writer's file, replacing it
func (w *DataWriter) WriteTable(table *drilldown.Table) error {
	f, err := os.Create(w.filePath)
	if err != nil {
		return fmt.Errorf("failed to create %s file: %w", strings.ToUpper(w.fileType), err)
	}
	if err := Write(f, w.fileType, table); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", w.filePath, err)
	}
	w.logger.Info("wrote %d rows to %s", table.Len(), w.filePath)
	return nil
}

// Write encodes table in format to out
func Write(out io.Writer, format string, table *drilldown.Table) error {
	switch format {
	case FormatCSV:
		return writeCSV(out, table)
	case FormatXLSX:
		return writeXLSX(out, table)
	default:
		return fmt.Errorf("unsupported export format: %s", format)
	}
}

func writeCSV(out io.Writer, table *drilldown.Table) error {
	cw := csv.NewWriter(out)
	if err := cw.WriteAll(table.Records()); err != nil {
		return fmt.Errorf("failed to write CSV: %w", err)
	}
	return nil
}

// writeXLSX keeps numeric columns numeric so the workbook can be sorted and
// summed without conversion.
func writeXLSX(out io.Writer, table *drilldown.Table) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	header := make([]interface{}, len(drilldown.TableHeader))
	for i, name := range drilldown.TableHeader {
		header[i] = name
	}
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}
	lastHeader, err := excelize.CoordinatesToCellName(len(header), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(SheetName, "A1", lastHeader, bold); err != nil {
		return fmt.Errorf("failed to style header: %w", err)
	}

	if table != nil {
		for i, row := range table.Rows {
			cell, err := excelize.CoordinatesToCellName(1, i+2)
			if err != nil {
				return err
			}
			values := row.Values()
			if err := f.SetSheetRow(SheetName, cell, &values); err != nil {
				return fmt.Errorf("failed to write row %d: %w", i+1, err)
			}
		}
	}
	if err := f.SetColWidth(SheetName, "A", "B", 32); err != nil {
		return err
	}

	if err := f.Write(out); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

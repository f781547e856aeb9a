package excel

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ReadRecords reads an export back as string records, header first
func ReadRecords(filePath string) ([][]string, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("%s file not found: %s", strings.ToUpper(FormatFromPath(filePath)), filePath)
	}
	defer f.Close()
	return Read(f, FormatFromPath(filePath))
}

// Read decodes an export in format from r
func Read(r io.Reader, format string) ([][]string, error) {
	switch format {
	case FormatCSV:
		rows, err := csv.NewReader(r).ReadAll()
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV: %w", err)
		}
		return rows, nil
	case FormatXLSX:
		f, err := excelize.OpenReader(r)
		if err != nil {
			return nil, fmt.Errorf("failed to open Excel file: %w", err)
		}
		defer f.Close()
		rows, err := f.GetRows(SheetName)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", SheetName, err)
		}
		return rows, nil
	default:
		return nil, fmt.Errorf("unsupported file type: %s", format)
	}
}

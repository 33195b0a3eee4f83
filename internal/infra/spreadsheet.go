package infra

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Spreadsheet formats, detected from the file extension.
const (
	FormatoCSV   = "csv"
	FormatoExcel = "excel"
)

// ErrSinHojas is returned for workbooks that contain no worksheet.
var ErrSinHojas = errors.New("workbook has no sheets")

// DetectFormat returns FormatoCSV for ".csv" file names and FormatoExcel for
// everything else.
func DetectFormat(fileName string) string {
	if strings.EqualFold(filepath.Ext(fileName), ".csv") {
		return FormatoCSV
	}
	return FormatoExcel
}

// ReadSheetRows returns every row of the first worksheet (Excel) or of the
// file (CSV), header included. Ragged rows and bare quotes in CSV cells are
// allowed.
func ReadSheetRows(format string, r io.Reader) ([][]string, error) {
	if format == FormatoCSV {
		cr := csv.NewReader(r)
		cr.FieldsPerRecord = -1
		cr.LazyQuotes = true
		cr.TrimLeadingSpace = true
		rows, err := cr.ReadAll()
		if err != nil {
			return nil, fmt.Errorf("csv: %w", err)
		}
		return rows, nil
	}

	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("excel: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrSinHojas
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("excel: %w", err)
	}
	return rows, nil
}

package converter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/nconklindev/lms2omr/internal/types"

	"github.com/extrame/xls"
	"github.com/gabriel-vasile/mimetype"
	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

type sheetFormat int

const (
	formatUnknown sheetFormat = iota
	formatCSV
	formatXLSX
	formatXLS
)

func (f sheetFormat) String() string {
	switch f {
	case formatCSV:
		return "csv"
	case formatXLSX:
		return "xlsx"
	case formatXLS:
		return "xls"
	}
	return "unknown"
}

// AllowedExtensions lists the extensions offered by the file picker.
// ParseSheet itself ignores the extension.
var AllowedExtensions = []string{".csv", ".xlsx", ".xls"}

// sniffFormat walks the detected MIME type and its parents until it
// reaches a family we can read.
func sniffFormat(data []byte) sheetFormat {
	for m := mimetype.Detect(data); m != nil; m = m.Parent() {
		switch {
		case m.Is(OutputMIMEType), m.Is("application/zip"):
			return formatXLSX
		case m.Is("application/vnd.ms-excel"), m.Is("application/x-ole-storage"):
			return formatXLS
		case m.Is("text/csv"), m.Is("text/plain"):
			return formatCSV
		}
	}
	return formatUnknown
}

// ReadSheetFile loads path and parses it with ParseSheet.
func ReadSheetFile(path string) (*types.FileData, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(ErrEmptyOrMalformedInput, "read %s: %v", filepath.Base(path), err)
	}
	return ParseSheet(filepath.Base(path), data)
}

// ParseSheet reads the first sheet of a CSV, XLS or XLSX document. The
// format is taken from the content, not the name. Row 0 becomes the
// trimmed headers and every later row is kept positionally.
func ParseSheet(name string, data []byte) (*types.FileData, error) {
	if len(data) == 0 {
		return nil, errors.Wrapf(ErrEmptyOrMalformedInput, "%s is empty", name)
	}

	format := sniffFormat(data)

	var (
		rows [][]string
		err  error
	)
	switch format {
	case formatCSV:
		rows, err = readCSVRows(data)
	case formatXLSX:
		rows, err = readXLSXRows(data)
	case formatXLS:
		rows, err = readXLSRows(data)
	default:
		return nil, errors.Wrapf(ErrEmptyOrMalformedInput, "%s: unsupported content type %s", name, mimetype.Detect(data))
	}
	if err != nil {
		return nil, errors.Wrapf(ErrEmptyOrMalformedInput, "%s (%s): %v", name, format, err)
	}

	rows = trimTrailingBlankRows(rows)
	if len(rows) < 2 {
		return nil, errors.Wrapf(ErrEmptyOrMalformedInput, "%s has %d row(s), need a header and at least one data row", name, len(rows))
	}

	headers := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		headers[i] = strings.TrimSpace(h)
	}

	return &types.FileData{
		Name:    name,
		Headers: headers,
		Rows:    rows[1:],
	}, nil
}

func readCSVRows(data []byte) ([][]string, error) {
	// A BOM selects UTF-8 or UTF-16. Without one, content that is not valid
	// UTF-8 is a legacy Excel export and is read as Windows-1252.
	var decoder transform.Transformer = unicode.BOMOverride(unicode.UTF8.NewDecoder())
	if !hasBOM(data) && !utf8.Valid(data) {
		decoder = charmap.Windows1252.NewDecoder()
	}
	reader := csv.NewReader(transform.NewReader(bytes.NewReader(data), decoder))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	return reader.ReadAll()
}

var byteOrderMarks = [][]byte{
	{0xEF, 0xBB, 0xBF},
	{0xFF, 0xFE},
	{0xFE, 0xFF},
}

func hasBOM(data []byte) bool {
	for _, bom := range byteOrderMarks {
		if bytes.HasPrefix(data, bom) {
			return true
		}
	}
	return false
}

func readXLSXRows(data []byte) ([][]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sheetName := f.GetSheetName(0)
	if sheetName == "" {
		return nil, fmt.Errorf("workbook has no sheets")
	}
	return f.GetRows(sheetName)
}

func readXLSRows(data []byte) (rows [][]string, err error) {
	// The BIFF reader panics on some corrupt files instead of failing.
	defer func() {
		if r := recover(); r != nil {
			rows, err = nil, fmt.Errorf("corrupt xls: %v", r)
		}
	}()

	wb, err := xls.OpenReader(bytes.NewReader(data), "utf-8")
	if err != nil {
		return nil, err
	}
	if wb == nil {
		return nil, fmt.Errorf("no workbook stream")
	}
	sheet := wb.GetSheet(0)
	if sheet == nil {
		return nil, fmt.Errorf("workbook has no sheets")
	}
	if sheet.MaxRow == 0 {
		// A header alone; ReadAllCells would move on to the next sheet.
		return nil, nil
	}

	// Capping at the first sheet's row count keeps later sheets out.
	return wb.ReadAllCells(int(sheet.MaxRow) + 1), nil
}

func trimTrailingBlankRows(rows [][]string) [][]string {
	for len(rows) > 0 && isBlankRow(rows[len(rows)-1]) {
		rows = rows[:len(rows)-1]
	}
	return rows
}

func isBlankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

package types

type ConversionResult struct {
	RunID         string
	PrimaryFile   string
	AbsentFile    string
	OutputFile    string
	ScoredCount   int
	UnscoredCount int
	SkippedRows   int
	RowsWritten   int
	MeanCorrect   float64
	MedianCorrect float64
}

type FileData struct {
	Name    string
	Headers []string
	Rows    [][]string
}

// Row returns data row i zipped against the headers.
func (d *FileData) Row(i int) RawRow {
	return RawRow{Headers: d.Headers, Values: d.Rows[i]}
}

// RawRow is one data row of a parsed sheet, positionally aligned to Headers.
type RawRow struct {
	Headers []string
	Values  []string
}

// Cell returns the value at column i, or "" past the end of the row.
func (r RawRow) Cell(i int) string {
	if i < 0 || i >= len(r.Values) {
		return ""
	}
	return r.Values[i]
}

// Get returns the value under the first header equal to name.
func (r RawRow) Get(name string) string {
	for i, h := range r.Headers {
		if h == name {
			return r.Cell(i)
		}
	}
	return ""
}

// StudentRecord is the canonical row shape shared by both input sheets.
// StudentID is never empty.
type StudentRecord struct {
	StudentID   string
	StudentName string
	Physics     float64
	Chemistry   float64
	Maths       float64
	Biology     float64
	Correct     float64
	Wrong       float64
	Unattempted float64
}

// OutputRow is one line of the OMR upload sheet. Cells hold "" or a number.
type OutputRow []any

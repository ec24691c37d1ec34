package converter

import (
	"math"
	"strconv"
	"strings"

	"github.com/nconklindev/lms2omr/internal/types"
)

// Field is a canonical StudentRecord input.
type Field int

const (
	FieldStudentID Field = iota
	FieldFirstName
	FieldLastName
	FieldName
	FieldPhysics
	FieldChemistry
	FieldMaths
	FieldBiology
	FieldCorrect
	FieldWrong
	FieldUnattempted
	fieldCount
)

// UnknownName is used when a row carries no name columns at all.
const UnknownName = "Unknown"

// HeaderAliases is the closed set of recognised source headers. Matching
// is exact; any other header is ignored. Earlier aliases win when a sheet
// carries more than one.
var HeaderAliases = map[Field][]string{
	FieldStudentID:   {"Username", "Roll No", "Student ID"},
	FieldFirstName:   {"First Name"},
	FieldLastName:    {"Last Name"},
	FieldName:        {"Name", "Full Name"},
	FieldPhysics:     {"PHYSICS Score"},
	FieldChemistry:   {"CHEMISTRY Score"},
	FieldMaths:       {"MATHS Score"},
	FieldBiology:     {"BIOLOGY Score"},
	FieldCorrect:     {"No. Of Correct Answers"},
	FieldWrong:       {"No. Of incorrect Answers"},
	FieldUnattempted: {"No. Of unanswered Questions"},
}

// FieldLayout is the column index of every canonical field for one header
// row, -1 when the sheet does not carry it.
type FieldLayout [fieldCount]int

// NewFieldLayout resolves HeaderAliases against headers once so rows can
// be read by index.
func NewFieldLayout(headers []string) FieldLayout {
	first := make(map[string]int, len(headers))
	for i, h := range headers {
		if _, seen := first[h]; !seen {
			first[h] = i
		}
	}

	var layout FieldLayout
	for f := Field(0); f < fieldCount; f++ {
		layout[f] = -1
		for _, alias := range HeaderAliases[f] {
			if idx, ok := first[alias]; ok {
				layout[f] = idx
				break
			}
		}
	}
	return layout
}

// Has reports whether the sheet carries f.
func (l FieldLayout) Has(f Field) bool {
	return l[f] >= 0
}

func (l FieldLayout) text(row types.RawRow, f Field) string {
	return strings.TrimSpace(row.Cell(l[f]))
}

func (l FieldLayout) number(row types.RawRow, f Field) float64 {
	return ParseOptionalNumber(row.Cell(l[f]))
}

// ParseOptionalNumber parses a score cell. Blank, non-numeric, NaN and
// infinite values all read as 0; partially filled sheets are accepted
// rather than rejected.
func ParseOptionalNumber(raw string) float64 {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// identity extracts the id and display name. ok is false when the id is blank.
func (l FieldLayout) identity(row types.RawRow) (types.StudentRecord, bool) {
	id := l.text(row, FieldStudentID)
	if id == "" {
		return types.StudentRecord{}, false
	}

	first, last := l.text(row, FieldFirstName), l.text(row, FieldLastName)
	name := strings.TrimSpace(first + " " + last)
	if first == "" && last == "" {
		name = l.text(row, FieldName)
	}
	if name == "" {
		name = UnknownName
	}

	return types.StudentRecord{StudentID: id, StudentName: name}, true
}

// NormalizeScored reads one row of the LMS scores report.
func (l FieldLayout) NormalizeScored(row types.RawRow) (types.StudentRecord, bool) {
	rec, ok := l.identity(row)
	if !ok {
		return rec, false
	}
	rec.Physics = l.number(row, FieldPhysics)
	rec.Chemistry = l.number(row, FieldChemistry)
	rec.Maths = l.number(row, FieldMaths)
	rec.Biology = l.number(row, FieldBiology)
	rec.Correct = l.number(row, FieldCorrect)
	rec.Wrong = l.number(row, FieldWrong)
	rec.Unattempted = l.number(row, FieldUnattempted)
	return rec, true
}

// NormalizeUnscored reads one row of the "not attempted" roster. Every
// score is zero whatever the sheet says.
func (l FieldLayout) NormalizeUnscored(row types.RawRow) (types.StudentRecord, bool) {
	return l.identity(row)
}

// NormalizeScored is the single-row form that resolves the layout from
// the row's own headers.
func NormalizeScored(row types.RawRow) (types.StudentRecord, bool) {
	return NewFieldLayout(row.Headers).NormalizeScored(row)
}

// NormalizeUnscored is the single-row form of FieldLayout.NormalizeUnscored.
func NormalizeUnscored(row types.RawRow) (types.StudentRecord, bool) {
	return NewFieldLayout(row.Headers).NormalizeUnscored(row)
}

// NormalizeSheet turns every data row into a record, dropping rows with
// no student id. skipped counts the dropped rows.
func NormalizeSheet(data *types.FileData, scored bool) (records []types.StudentRecord, skipped int) {
	if data == nil {
		return nil, 0
	}

	layout := NewFieldLayout(data.Headers)
	normalize := layout.NormalizeUnscored
	if scored {
		normalize = layout.NormalizeScored
	}

	records = make([]types.StudentRecord, 0, len(data.Rows))
	for i := range data.Rows {
		rec, ok := normalize(data.Row(i))
		if !ok {
			skipped++
			continue
		}
		records = append(records, rec)
	}
	return records, skipped
}

func (f Field) String() string {
	switch f {
	case FieldStudentID:
		return "Roll No"
	case FieldFirstName:
		return "First Name"
	case FieldLastName:
		return "Last Name"
	case FieldName:
		return "Name"
	case FieldPhysics:
		return "Physics"
	case FieldChemistry:
		return "Chemistry"
	case FieldMaths:
		return "Maths"
	case FieldBiology:
		return "Biology"
	case FieldCorrect:
		return "Correct Answers"
	case FieldWrong:
		return "Incorrect Answers"
	case FieldUnattempted:
		return "Not Attempted"
	}
	return "unknown"
}

// Fields lists every canonical field in layout order.
func Fields() []Field {
	fields := make([]Field, 0, fieldCount)
	for f := Field(0); f < fieldCount; f++ {
		fields = append(fields, f)
	}
	return fields
}

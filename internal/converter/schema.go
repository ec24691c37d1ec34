package converter

import (
	"fmt"

	"github.com/nconklindev/lms2omr/internal/types"
)

// SchemaWidth is the column count of the OMR upload template.
const SchemaWidth = 250

const (
	SheetName      = "OMR Upload"
	OutputFileName = "OMR_Upload_Format.xlsx"
	OutputMIMEType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

	questionCount = 60
)

var subjects = []string{"Physics", "Chemistry", "Maths", "Biology"}

// Output column indices fixed by the OMR backend's upload template.
const (
	ColRollNo     = 2
	ColName       = 3
	ColCorrect    = 7
	ColIncorrect  = 8
	ColNotAttempt = 9
	ColPhysics    = 10
	ColChemistry  = 18
	ColMaths      = 26
	ColBiology    = 34
	subjectBlock  = 8
	questionStart = 42
	analysisStart = questionStart + questionCount*3
	analysisBlock = 7
)

// ZeroDefaultColumns render as 0 instead of blank when nothing is mapped there.
var ZeroDefaultColumns = []int{4, 5, ColCorrect, ColIncorrect, ColNotAttempt, ColPhysics, ColChemistry, ColMaths, ColBiology}

// OutputSchema is the human readable header row of the upload template.
var OutputSchema = buildSchema()

func buildSchema() [SchemaWidth]string {
	var s [SchemaWidth]string
	summary := []string{
		"Exam", "Exam Set", "Roll No", "Name", "Total Marks",
		"Percentage", "Rank", "Correct Answers", "Incorrect Answers", "Not Attempted",
	}
	i := copy(s[:], summary)

	for _, subj := range subjects {
		for _, suffix := range []string{"", " Correct", " Incorrect", " Not Attempted", " Positive Marks", " Negative Marks", " Percentage", " Rank"} {
			s[i] = subj + suffix
			i++
		}
	}

	for q := 1; q <= questionCount; q++ {
		s[i] = fmt.Sprintf("Q%d Options", q)
		s[i+1] = fmt.Sprintf("Q%d Key", q)
		s[i+2] = fmt.Sprintf("Q%d Marks", q)
		i += 3
	}

	for _, subj := range subjects {
		for _, suffix := range []string{" Attempted", " Accuracy", " Max Marks", " Cutoff", " Qualified", " Percentile", " Remarks"} {
			s[i] = subj + suffix
			i++
		}
	}

	if i != SchemaWidth {
		panic(fmt.Sprintf("converter: schema has %d columns, want %d", i, SchemaWidth))
	}
	return s
}

// fieldColumns maps each StudentRecord field onto its output column.
var fieldColumns = []struct {
	col int
	get func(types.StudentRecord) any
}{
	{ColRollNo, func(r types.StudentRecord) any { return r.StudentID }},
	{ColName, func(r types.StudentRecord) any { return r.StudentName }},
	{ColCorrect, func(r types.StudentRecord) any { return r.Correct }},
	{ColIncorrect, func(r types.StudentRecord) any { return r.Wrong }},
	{ColNotAttempt, func(r types.StudentRecord) any { return r.Unattempted }},
	{ColPhysics, func(r types.StudentRecord) any { return r.Physics }},
	{ColChemistry, func(r types.StudentRecord) any { return r.Chemistry }},
	{ColMaths, func(r types.StudentRecord) any { return r.Maths }},
	{ColBiology, func(r types.StudentRecord) any { return r.Biology }},
}

func init() {
	for _, fc := range fieldColumns {
		if fc.col < 0 || fc.col >= SchemaWidth {
			panic(fmt.Sprintf("converter: mapped column %d out of range", fc.col))
		}
	}
	for _, col := range ZeroDefaultColumns {
		if col < 0 || col >= SchemaWidth {
			panic(fmt.Sprintf("converter: zero-default column %d out of range", col))
		}
	}
	for i, subj := range subjects {
		if OutputSchema[ColPhysics+i*subjectBlock] != subj {
			panic(fmt.Sprintf("converter: subject %s is not at column %d", subj, ColPhysics+i*subjectBlock))
		}
	}
	if analysisStart+len(subjects)*analysisBlock != SchemaWidth {
		panic("converter: analysis blocks do not end the schema")
	}
}

// HeaderRows returns the two leading rows of the upload sheet: column
// indices 0..249 followed by the schema names.
func HeaderRows() (types.OutputRow, types.OutputRow) {
	index := make(types.OutputRow, SchemaWidth)
	names := make(types.OutputRow, SchemaWidth)
	for i := 0; i < SchemaWidth; i++ {
		index[i] = i
		names[i] = OutputSchema[i]
	}
	return index, names
}

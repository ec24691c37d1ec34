package converter

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOutputSchema(t *testing.T) {
	assert.Len(t, OutputSchema, SchemaWidth)

	tests := []struct {
		col  int
		name string
	}{
		{0, "Exam"},
		{1, "Exam Set"},
		{ColRollNo, "Roll No"},
		{ColName, "Name"},
		{ColCorrect, "Correct Answers"},
		{ColIncorrect, "Incorrect Answers"},
		{ColNotAttempt, "Not Attempted"},
		{ColPhysics, "Physics"},
		{ColChemistry, "Chemistry"},
		{ColMaths, "Maths"},
		{ColBiology, "Biology"},
		{42, "Q1 Options"},
		{43, "Q1 Key"},
		{44, "Q1 Marks"},
		{221, "Q60 Marks"},
		{249, "Biology Remarks"},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("column %d", tt.col), func(t *testing.T) {
			assert.Equal(t, tt.name, OutputSchema[tt.col])
		})
	}

	seen := make(map[string]int, SchemaWidth)
	for i, name := range OutputSchema {
		assert.NotEmpty(t, name, "column %d", i)
		if prev, dup := seen[name]; dup {
			t.Errorf("column %d duplicates column %d (%q)", i, prev, name)
		}
		seen[name] = i
	}
}

func TestHeaderRows(t *testing.T) {
	index, names := HeaderRows()
	assert.Len(t, index, SchemaWidth)
	assert.Len(t, names, SchemaWidth)
	for i := 0; i < SchemaWidth; i++ {
		assert.Equal(t, i, index[i])
		assert.Equal(t, OutputSchema[i], names[i])
	}
}

func TestMappedColumnsWithinSchema(t *testing.T) {
	for _, fc := range fieldColumns {
		assert.GreaterOrEqual(t, fc.col, 0)
		assert.Less(t, fc.col, SchemaWidth)
	}
	for _, col := range ZeroDefaultColumns {
		assert.Less(t, col, SchemaWidth)
	}
}

package converter

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/nconklindev/lms2omr/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConvertEndToEnd(t *testing.T) {
	dir := t.TempDir()
	primary := writeFile(t, dir, "scores.csv", csvBytes(t, [][]string{
		{"Username", "First Name", "Last Name", "PHYSICS Score", "CHEMISTRY Score", "MATHS Score", "No. Of Correct Answers"},
		{"S100", "John", "Doe", "80", "70", "", "18"},
	}))

	scored, skipped := NormalizeSheet(mustRead(t, primary), true)
	require.Zero(t, skipped)
	require.Len(t, scored, 1)
	assert.Equal(t, "S100", scored[0].StudentID)
	assert.Equal(t, "John Doe", scored[0].StudentName)
	assert.Equal(t, 80.0, scored[0].Physics)
	assert.Equal(t, 70.0, scored[0].Chemistry)
	assert.Zero(t, scored[0].Maths)
	assert.Zero(t, scored[0].Biology)
	assert.Equal(t, 18.0, scored[0].Correct)
	assert.Zero(t, scored[0].Wrong)
	assert.Zero(t, scored[0].Unattempted)

	outDir := filepath.Join(dir, "out")
	progress := make(chan float64, 100)
	result, err := New(nil).Convert(context.Background(), Request{PrimaryFile: primary, OutputDir: outDir}, progress)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(outDir, OutputFileName), result.OutputFile)
	assert.Equal(t, 1, result.RowsWritten)
	assert.Equal(t, 1, result.ScoredCount)
	assert.Equal(t, 18.0, result.MeanCorrect)
	assert.NotEmpty(t, result.RunID)

	rows := readOutputRows(t, result.OutputFile)
	require.Len(t, rows, 3)
	row := rows[2]
	require.Greater(t, len(row), ColBiology)
	assert.Equal(t, "S100", row[ColRollNo])
	assert.Equal(t, "John Doe", row[ColName])
	assert.Equal(t, "80", row[ColPhysics])
	assert.Equal(t, "70", row[ColChemistry])
	assert.Equal(t, "0", row[ColMaths])
	assert.Equal(t, "0", row[ColBiology])
	assert.Equal(t, "18", row[ColCorrect])
	assert.Equal(t, "0", row[ColIncorrect])
	assert.Equal(t, "0", row[ColNotAttempt])
	assert.Equal(t, "", row[0])
	assert.Equal(t, "", row[ColPhysics+1])

	close(progress)
	var last float64
	for p := range progress {
		last = p
	}
	assert.Equal(t, 1.0, last)
}

func TestConvertWithAbsentRoster(t *testing.T) {
	dir := t.TempDir()
	primary := writeFile(t, dir, "scores.xlsx", xlsxBytes(t, [][]string{
		{"Username", "Name", "No. Of Correct Answers"},
		{"X", "Xena", "10"},
		{"", "Ghost", "99"},
		{"Y", "Yuri", "20"},
	}))
	absent := writeFile(t, dir, "absent.csv", csvBytes(t, [][]string{
		{"Username", "First Name", "Last Name", "No. Of Correct Answers"},
		{"Z", "Zoe", "Park", "50"},
	}))

	result, err := New(nil).Convert(context.Background(), Request{PrimaryFile: primary, AbsentFile: absent}, nil)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, OutputFileName), result.OutputFile, "defaults next to the primary sheet")
	assert.Equal(t, 3, result.RowsWritten)
	assert.Equal(t, 2, result.ScoredCount)
	assert.Equal(t, 1, result.UnscoredCount)
	assert.Equal(t, 1, result.SkippedRows)
	assert.Equal(t, 15.0, result.MeanCorrect)
	assert.Equal(t, 15.0, result.MedianCorrect)

	rows := readOutputRows(t, result.OutputFile)
	require.Len(t, rows, 5)
	assert.Equal(t, "X", rows[2][ColRollNo])
	assert.Equal(t, "Y", rows[3][ColRollNo])
	assert.Equal(t, "Z", rows[4][ColRollNo])
	assert.Equal(t, "Zoe Park", rows[4][ColName])
	assert.Equal(t, "0", rows[4][ColCorrect])
}

func TestConvertDefaultOutputDir(t *testing.T) {
	dir := t.TempDir()
	primary := writeFile(t, dir, "scores.csv", csvBytes(t, [][]string{{"Username", "Name"}, {"S1", "Ann"}}))

	result, err := New(nil).Convert(context.Background(), Request{PrimaryFile: primary}, nil)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, OutputFileName), result.OutputFile)
	assert.FileExists(t, result.OutputFile)
}

func TestConvertUsesParsedSheets(t *testing.T) {
	dir := t.TempDir()
	primary := writeFile(t, dir, "scores.xls", fixtureBytes(t, "scores.xls"))
	absent := writeFile(t, dir, "absent.csv", csvBytes(t, [][]string{{"Username", "Name"}, {"S9", "Mia"}}))
	primaryData, absentData := mustRead(t, primary), mustRead(t, absent)

	// The files are gone, so only the parsed data can feed the run.
	require.NoError(t, os.Remove(primary))
	require.NoError(t, os.Remove(absent))

	result, err := New(nil).Convert(context.Background(), Request{
		PrimaryFile: primary,
		AbsentFile:  absent,
		OutputDir:   dir,
		PrimaryData: primaryData,
		AbsentData:  absentData,
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, result.ScoredCount)
	assert.Equal(t, 1, result.UnscoredCount)

	rows := readOutputRows(t, result.OutputFile)
	require.Len(t, rows, 5)
	assert.Equal(t, "S1", rows[2][ColRollNo])
	assert.Equal(t, "87.5", rows[2][ColPhysics])
	assert.Equal(t, "S2", rows[3][ColRollNo])
	assert.Equal(t, "0", rows[3][ColPhysics])
	assert.Equal(t, "Mia", rows[4][ColName])
}

func TestConvertFailures(t *testing.T) {
	dir := t.TempDir()
	good := writeFile(t, dir, "good.csv", csvBytes(t, [][]string{{"Username"}, {"S1"}}))
	empty := writeFile(t, dir, "empty.csv", csvBytes(t, [][]string{{"Username"}}))

	tests := []struct {
		name string
		req  Request
		want error
	}{
		{"No primary", Request{OutputDir: dir}, ErrMissingRequiredFile},
		{"Empty primary", Request{PrimaryFile: empty, OutputDir: dir}, ErrEmptyOrMalformedInput},
		{"Empty roster", Request{PrimaryFile: good, AbsentFile: empty, OutputDir: dir}, ErrEmptyOrMalformedInput},
		{"Missing primary", Request{PrimaryFile: filepath.Join(dir, "gone.xlsx"), OutputDir: dir}, ErrEmptyOrMalformedInput},
		{"Unwritable output", Request{PrimaryFile: good, OutputDir: filepath.Join(good, "sub")}, ErrSerializationFailure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := New(nil).Convert(context.Background(), tt.req, nil)
			assert.Nil(t, result)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	_, err := os.Stat(filepath.Join(dir, OutputFileName))
	assert.True(t, os.IsNotExist(err), "no output file after failures")
}

func TestConvertSingleFlight(t *testing.T) {
	c := New(nil)
	c.running.Store(true)

	_, err := c.Convert(context.Background(), Request{}, nil)
	assert.ErrorIs(t, err, ErrConversionInProgress)

	c.running.Store(false)
	_, err = c.Convert(context.Background(), Request{}, nil)
	assert.ErrorIs(t, err, ErrMissingRequiredFile)
}

func TestConvertCancelled(t *testing.T) {
	dir := t.TempDir()
	good := writeFile(t, dir, "good.csv", csvBytes(t, [][]string{{"Username"}, {"S1"}}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(nil).Convert(ctx, Request{PrimaryFile: good}, nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestUserMessage(t *testing.T) {
	assert.Empty(t, UserMessage(nil))
	for _, err := range []error{ErrMissingRequiredFile, ErrEmptyOrMalformedInput, ErrSerializationFailure, ErrConversionInProgress} {
		msg := UserMessage(err)
		assert.NotEmpty(t, msg)
		assert.NotContains(t, msg, "Conversion failed:")
	}
	assert.Contains(t, UserMessage(context.Canceled), "Conversion failed:")
}

func mustRead(t *testing.T, path string) *types.FileData {
	t.Helper()
	data, err := ReadSheetFile(path)
	require.NoError(t, err)
	return data
}

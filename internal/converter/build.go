package converter

import "github.com/nconklindev/lms2omr/internal/types"

// BuildOutput lays records out on the upload template, scored records
// first and then the unscored roster, in the order given. No sorting is
// applied.
func BuildOutput(scored, unscored []types.StudentRecord) []types.OutputRow {
	out := make([]types.OutputRow, 0, len(scored)+len(unscored))
	for _, rec := range scored {
		out = append(out, buildRow(rec))
	}
	for _, rec := range unscored {
		out = append(out, buildRow(rec))
	}
	return out
}

func buildRow(rec types.StudentRecord) types.OutputRow {
	row := make(types.OutputRow, SchemaWidth)
	for i := range row {
		row[i] = ""
	}
	for _, fc := range fieldColumns {
		row[fc.col] = fc.get(rec)
	}
	for _, col := range ZeroDefaultColumns {
		if row[col] == "" {
			row[col] = 0.0
		}
	}
	return row
}

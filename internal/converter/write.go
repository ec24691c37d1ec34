package converter

import (
	"bytes"
	"os"
	"path/filepath"

	"github.com/nconklindev/lms2omr/internal/types"

	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"
)

// Serialize writes the upload workbook: one sheet holding the index row,
// the schema row and then rows.
func Serialize(rows []types.OutputRow, progressChan chan<- float64) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return nil, errors.Wrap(ErrSerializationFailure, err.Error())
	}

	index, names := HeaderRows()
	all := make([]types.OutputRow, 0, len(rows)+2)
	all = append(all, index, names)
	all = append(all, rows...)

	total := len(all)
	for i, row := range all {
		if progressChan != nil {
			select {
			case progressChan <- float64(i) / float64(total):
			default:
			}
		}

		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return nil, errors.Wrap(ErrSerializationFailure, err.Error())
		}
		values := []any(row)
		if err := f.SetSheetRow(SheetName, cell, &values); err != nil {
			return nil, errors.Wrapf(ErrSerializationFailure, "row %d: %v", i+1, err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, errors.Wrap(ErrSerializationFailure, err.Error())
	}
	return buf, nil
}

// Save writes buf to dir/OMR_Upload_Format.xlsx. The workbook goes to a
// temporary file first and is renamed into place, so a failed write never
// leaves a partial upload file behind.
func Save(buf *bytes.Buffer, dir string) (string, error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", errors.Wrap(ErrSerializationFailure, err.Error())
	}

	tmp, err := os.CreateTemp(dir, ".omr-upload-*.xlsx")
	if err != nil {
		return "", errors.Wrap(ErrSerializationFailure, err.Error())
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := buf.WriteTo(tmp); err != nil {
		tmp.Close()
		return "", errors.Wrap(ErrSerializationFailure, err.Error())
	}
	if err := tmp.Close(); err != nil {
		return "", errors.Wrap(ErrSerializationFailure, err.Error())
	}

	dest := filepath.Join(dir, OutputFileName)
	if err := os.Rename(tmpName, dest); err != nil {
		return "", errors.Wrap(ErrSerializationFailure, err.Error())
	}
	return dest, nil
}

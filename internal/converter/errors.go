package converter

import "github.com/pkg/errors"

var (
	ErrMissingRequiredFile   = errors.New("missing required file")
	ErrEmptyOrMalformedInput = errors.New("empty or malformed input")
	ErrSerializationFailure  = errors.New("serialization failure")
	ErrConversionInProgress  = errors.New("conversion already in progress")
)

// UserMessage turns any conversion error into the single line shown to
// the user. The cause chain is kept for the log, not the screen.
func UserMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrMissingRequiredFile):
		return "Please select the LMS scores report before converting."
	case errors.Is(err, ErrEmptyOrMalformedInput):
		return "The selected file could not be read or has no data rows. Check it is a CSV, XLS or XLSX file with a header row and at least one student."
	case errors.Is(err, ErrSerializationFailure):
		return "The OMR upload file could not be created. Check the output folder is writable and try again."
	case errors.Is(err, ErrConversionInProgress):
		return "A conversion is already running. Wait for it to finish."
	default:
		return "Conversion failed: " + err.Error()
	}
}

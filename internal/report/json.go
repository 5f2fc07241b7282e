package report

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/ASRagab/ai-tool-guard-sub000/internal/detect"
)

// Output is the machine-readable envelope around one scan run. Field
// names are part of the output contract; do not rename them.
type Output struct {
	Report   *detect.ScanReport       `json:"report"`
	Failures []detect.DetectorFailure `json:"failures,omitempty"`
	Version  string                   `json:"version"`
}

// WriteJSON writes the report envelope as indented JSON.
func WriteJSON(w io.Writer, out Output) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("encoding report: %w", err)
	}
	return nil
}

package report

import (
	"encoding/json"
	"io"

	"github.com/wikiracer/wikirace/internal/model"
)

// JSONWriter outputs reports as indented JSON.
// This format is designed for piping into other tools.
type JSONWriter struct {
	baseWriter
}

// NewJSONWriter creates a JSONWriter that outputs to the given writer.
func NewJSONWriter(output io.Writer) *JSONWriter {
	return &JSONWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the report as JSON.
func (w *JSONWriter) Write(report *model.StatsReport) (int, error) {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return 0, err
	}
	data = append(data, '\n')
	return w.output.Write(data)
}

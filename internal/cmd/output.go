package cmd

import (
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// WriteOutput renders v to w in the requested format.
// Text output falls back to the value's own formatting; callers wanting
// richer text output should print it themselves and reserve WriteOutput for
// the structured formats.
func WriteOutput(w io.Writer, format OutputFormat, v any) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		defer func() { _ = enc.Close() }()
		return enc.Encode(v)
	case FormatText:
		_, err := fmt.Fprintf(w, "%v\n", v)
		return err
	default:
		return fmt.Errorf("unsupported output format '%s'", format)
	}
}

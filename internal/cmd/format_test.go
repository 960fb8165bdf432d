package cmd

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestOutputFormat_Set(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   string
		want    OutputFormat
		wantErr bool
	}{
		{name: "json", input: "json", want: FormatJSON},
		{name: "yaml", input: "yaml", want: FormatYAML},
		{name: "text", input: "text", want: FormatText},
		{name: "mixed case with padding", input: "  JSON ", want: FormatJSON},
		{name: "unknown", input: "xml", wantErr: true},
		{name: "empty", input: "", wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			var f OutputFormat
			err := f.Set(tc.input)
			if tc.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tc.want, f)
		})
	}
}

func TestWriteOutput(t *testing.T) {
	t.Parallel()

	payload := struct {
		Name  string `json:"name"  yaml:"name"`
		Count int    `json:"count" yaml:"count"`
	}{Name: "time", Count: 2}

	t.Run("json", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		require.NoError(t, WriteOutput(&buf, FormatJSON, payload))
		require.JSONEq(t, `{"name":"time","count":2}`, buf.String())
	})

	t.Run("yaml", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		require.NoError(t, WriteOutput(&buf, FormatYAML, payload))
		require.Contains(t, buf.String(), "name: time")
		require.Contains(t, buf.String(), "count: 2")
	})

	t.Run("unsupported", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		require.Error(t, WriteOutput(&buf, OutputFormat("xml"), payload))
	})
}

package jsonrpc

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mcpherd/mcpherd/internal/errors"
)

func TestEncodeFrame_DeclaredLengthMatchesBody(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		payload any
	}{
		{
			name:    "empty object",
			payload: map[string]any{},
		},
		{
			name:    "simple request",
			payload: NewRequest(1, "tools/list", nil),
		},
		{
			name: "multi-byte utf-8 body",
			payload: map[string]any{
				"name": "weather",
				"city": "Zürich",
				"note": "温度を取得します",
			},
		},
		{
			name: "nested arguments",
			payload: map[string]any{
				"name":      "echo",
				"arguments": map[string]any{"values": []any{1, "two", true, nil}},
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			frame, err := EncodeFrame(tc.payload)
			require.NoError(t, err)

			header, body, found := bytes.Cut(frame, []byte("\r\n\r\n"))
			require.True(t, found, "frame must contain a blank line separating header and body")

			var declared int
			_, err = fmt.Sscanf(string(header), "Content-Length: %d", &declared)
			require.NoError(t, err)
			require.Equal(t, len(body), declared, "declared Content-Length must equal exact body byte length")
			require.True(t, json.Valid(body))
		})
	}
}

func TestFrame_RoundTrip(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		payload any
	}{
		{
			name:    "request envelope",
			payload: NewRequest(42, "tools/call", map[string]any{"name": "echo", "arguments": map[string]any{"text": "hi"}}),
		},
		{
			name:    "unicode payload",
			payload: map[string]any{"description": "café ☕ – ça va"},
		},
		{
			name:    "deeply nested",
			payload: map[string]any{"a": map[string]any{"b": map[string]any{"c": []any{1.5, "x"}}}},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			frame, err := EncodeFrame(tc.payload)
			require.NoError(t, err)

			raw, err := ReadFrame(bufio.NewReader(bytes.NewReader(frame)))
			require.NoError(t, err)

			want, err := json.Marshal(tc.payload)
			require.NoError(t, err)
			require.JSONEq(t, string(want), string(raw))
		})
	}
}

func TestReadFrame_TransportErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   string
		wantMsg string
	}{
		{
			name:    "stream closes before headers complete",
			input:   "Content-Length: 10\r\n",
			wantMsg: "stream closed before frame headers completed",
		},
		{
			name:    "empty stream",
			input:   "",
			wantMsg: "stream closed before frame headers completed",
		},
		{
			name:    "missing content-length header",
			input:   "Content-Type: application/json\r\n\r\n{}",
			wantMsg: "missing Content-Length",
		},
		{
			name:    "non-numeric content-length",
			input:   "Content-Length: ten\r\n\r\n{}",
			wantMsg: "invalid Content-Length",
		},
		{
			name:    "negative content-length",
			input:   "Content-Length: -5\r\n\r\n{}",
			wantMsg: "invalid Content-Length",
		},
		{
			name:    "header line without separator",
			input:   "garbage\r\n\r\n{}",
			wantMsg: "malformed frame header",
		},
		{
			name:    "stream closes before declared body length",
			input:   "Content-Length: 100\r\n\r\n" + strings.Repeat("x", 50),
			wantMsg: "stream closed before declared body length",
		},
		{
			name:    "body is not valid json",
			input:   "Content-Length: 9\r\n\r\nnot json!",
			wantMsg: "not valid JSON",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			_, err := ReadFrame(bufio.NewReader(strings.NewReader(tc.input)))
			require.Error(t, err)
			require.ErrorIs(t, err, errors.ErrTransportFailed)
			require.ErrorContains(t, err, tc.wantMsg)
		})
	}
}

func TestReadFrame_ToleratesExtraHeaders(t *testing.T) {
	t.Parallel()

	input := "Content-Type: application/vscode-jsonrpc; charset=utf-8\r\n" +
		"Content-Length: 2\r\n" +
		"\r\n{}"

	raw, err := ReadFrame(bufio.NewReader(strings.NewReader(input)))
	require.NoError(t, err)
	require.JSONEq(t, `{}`, string(raw))
}

func TestReadFrame_MultiByteBodyLength(t *testing.T) {
	t.Parallel()

	// "héllo" is 6 bytes in UTF-8; the header declares bytes, not runes.
	body := `{"v":"héllo"}`
	input := fmt.Sprintf("Content-Length: %d\r\n\r\n%s", len(body), body)

	raw, err := ReadFrame(bufio.NewReader(strings.NewReader(input)))
	require.NoError(t, err)
	require.JSONEq(t, body, string(raw))
}

func TestReadFrame_SequentialFrames(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	for i := range 3 {
		frame, err := EncodeFrame(map[string]any{"seq": i})
		require.NoError(t, err)
		buf.Write(frame)
	}

	r := bufio.NewReader(&buf)
	for i := range 3 {
		raw, err := ReadFrame(r)
		require.NoError(t, err)
		require.JSONEq(t, fmt.Sprintf(`{"seq":%d}`, i), string(raw))
	}
}

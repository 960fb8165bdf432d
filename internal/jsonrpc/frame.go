// Package jsonrpc implements the framed JSON-RPC 2.0 wire protocol spoken to
// MCP servers over stdio. Each message is preceded by an ASCII header block in
// the style of the Language Server Protocol:
//
//	Content-Length: <N>\r\n
//	\r\n
//	<N bytes of UTF-8 encoded JSON>
//
// The codec guarantees byte-exact framing and does not interpret the JSON
// structure beyond envelope decoding.
package jsonrpc

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/mcpherd/mcpherd/internal/errors"
)

const headerContentLength = "content-length"

// EncodeFrame marshals payload as JSON and prepends the Content-Length header.
// The declared length is the exact byte length of the UTF-8 encoded body.
func EncodeFrame(payload any) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode frame body: %w", err)
	}

	var buf bytes.Buffer
	buf.Grow(len(body) + 32)
	fmt.Fprintf(&buf, "Content-Length: %d\r\n\r\n", len(body))
	buf.Write(body)

	return buf.Bytes(), nil
}

// ReadFrame reads a single framed message from r: header lines up to the
// first blank line, then exactly Content-Length bytes of body, parsed as JSON.
//
// All failure modes report ErrTransportFailed: stream closing before the
// headers complete, a missing or non-numeric Content-Length header, the stream
// closing before the declared body length is reached, and body bytes that do
// not parse as JSON.
func ReadFrame(r *bufio.Reader) (json.RawMessage, error) {
	length := -1

	for {
		line, err := r.ReadString('\n')
		if err != nil {
			return nil, fmt.Errorf("%w: stream closed before frame headers completed: %w", errors.ErrTransportFailed, err)
		}

		line = strings.TrimRight(line, "\r\n")
		if line == "" {
			break
		}

		name, value, ok := strings.Cut(line, ":")
		if !ok {
			return nil, fmt.Errorf("%w: malformed frame header %q", errors.ErrTransportFailed, line)
		}
		if strings.ToLower(strings.TrimSpace(name)) != headerContentLength {
			// Unknown headers (e.g. Content-Type) are tolerated and skipped.
			continue
		}

		n, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil || n < 0 {
			return nil, fmt.Errorf("%w: invalid Content-Length value %q", errors.ErrTransportFailed, strings.TrimSpace(value))
		}
		length = n
	}

	if length < 0 {
		return nil, fmt.Errorf("%w: frame is missing Content-Length header", errors.ErrTransportFailed)
	}

	body := make([]byte, length)
	if _, err := io.ReadFull(r, body); err != nil {
		return nil, fmt.Errorf("%w: stream closed before declared body length (%d bytes): %w", errors.ErrTransportFailed, length, err)
	}

	if !json.Valid(body) {
		return nil, fmt.Errorf("%w: frame body is not valid JSON", errors.ErrTransportFailed)
	}

	return json.RawMessage(body), nil
}

// Package stream turns line-oriented HTTP response bodies (server-sent
// events or newline-delimited JSON) into a driven.Stream.
package stream

import (
	"bufio"
	"bytes"
	"io"
	"sync"

	"github.com/custodia-labs/docchat/internal/core/ports/driven"
)

// Ensure Reader implements the interface.
var _ driven.Stream = (*Reader)(nil)

// maxLineSize bounds a single event line.
const maxLineSize = 1 << 20

// LineParser decodes one non-empty line. It returns the text increment
// carried by the line (possibly empty), whether the stream is finished,
// and any provider error reported in-band.
type LineParser func(line []byte) (delta string, done bool, err error)

// Reader reads increments from a response body.
type Reader struct {
	body    io.ReadCloser
	scanner *bufio.Scanner
	parse   LineParser

	delta string
	err   error
	done  bool

	closeOnce sync.Once
	closeErr  error
}

// NewReader wraps body. The Reader owns body and closes it on Close.
func NewReader(body io.ReadCloser, parse LineParser) *Reader {
	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	return &Reader{body: body, scanner: scanner, parse: parse}
}

// Next advances to the next non-empty increment.
func (r *Reader) Next() bool {
	if r.done || r.err != nil {
		return false
	}
	for r.scanner.Scan() {
		line := bytes.TrimSpace(r.scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		delta, done, err := r.parse(line)
		if err != nil {
			r.err = err
			return false
		}
		if done {
			r.done = true
		}
		if delta != "" {
			r.delta = delta
			return true
		}
		if done {
			return false
		}
	}
	r.err = r.scanner.Err()
	r.done = true
	return false
}

// Delta returns the current increment.
func (r *Reader) Delta() string { return r.delta }

// Err returns the first error encountered.
func (r *Reader) Err() error { return r.err }

// Close closes the response body. It is safe to call more than once.
func (r *Reader) Close() error {
	r.closeOnce.Do(func() {
		r.closeErr = r.body.Close()
	})
	return r.closeErr
}

// SSEData returns the payload of a server-sent event "data:" line.
// Other fields (event, id, retry, comments) report ok=false.
func SSEData(line []byte) (payload []byte, ok bool) {
	rest, found := bytes.CutPrefix(line, []byte("data:"))
	if !found {
		return nil, false
	}
	return bytes.TrimSpace(rest), true
}

// Collect drains s and returns the concatenated text.
func Collect(s driven.Stream) (string, error) {
	var b bytes.Buffer
	for s.Next() {
		b.WriteString(s.Delta())
	}
	return b.String(), s.Err()
}

package stream

import (
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type closeRecorder struct {
	io.Reader
	closed int
}

func (c *closeRecorder) Close() error {
	c.closed++
	return nil
}

func wordParser(line []byte) (string, bool, error) {
	switch s := string(line); s {
	case "END":
		return "", true, nil
	case "FAIL":
		return "", false, errors.New("provider failed")
	case "skip":
		return "", false, nil
	default:
		return s, false, nil
	}
}

func TestReader_YieldsIncrements(t *testing.T) {
	body := &closeRecorder{Reader: strings.NewReader("Hel\n\nskip\nlo\nEND\nignored\n")}
	r := NewReader(body, wordParser)

	text, err := Collect(r)
	require.NoError(t, err)
	assert.Equal(t, "Hello", text)
	assert.False(t, r.Next())
}

func TestReader_StopsOnError(t *testing.T) {
	r := NewReader(io.NopCloser(strings.NewReader("a\nFAIL\nb\n")), wordParser)

	require.True(t, r.Next())
	assert.Equal(t, "a", r.Delta())
	assert.False(t, r.Next())
	assert.EqualError(t, r.Err(), "provider failed")
	assert.False(t, r.Next())
}

func TestReader_EOFWithoutTerminator(t *testing.T) {
	r := NewReader(io.NopCloser(strings.NewReader("x\ny")), wordParser)

	text, err := Collect(r)
	require.NoError(t, err)
	assert.Equal(t, "xy", text)
}

func TestReader_CloseIsIdempotent(t *testing.T) {
	body := &closeRecorder{Reader: strings.NewReader("")}
	r := NewReader(body, wordParser)

	require.NoError(t, r.Close())
	require.NoError(t, r.Close())
	assert.Equal(t, 1, body.closed)
}

func TestSSEData(t *testing.T) {
	tests := []struct {
		line    string
		payload string
		ok      bool
	}{
		{line: `data: {"a":1}`, payload: `{"a":1}`, ok: true},
		{line: `data:[DONE]`, payload: `[DONE]`, ok: true},
		{line: `event: message_start`, ok: false},
		{line: `: keep-alive`, ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			payload, ok := SSEData([]byte(tt.line))
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.payload, string(payload))
			}
		})
	}
}

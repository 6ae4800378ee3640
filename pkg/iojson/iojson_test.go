package iojson

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteLine(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteLine(&buf, map[string]int{"a": 1}))
	require.NoError(t, WriteLine(&buf, map[string]int{"b": 2}))

	assert.Equal(t, "{\"a\":1}\n{\"b\":2}\n", buf.String())
}

func TestWriteWith_MarshalFailure(t *testing.T) {
	var out, errOut bytes.Buffer
	require.NoError(t, WriteWith(&out, &errOut, make(chan int)))

	assert.Empty(t, out.String())
	assert.Contains(t, errOut.String(), "json_error")
}

func TestWriteError(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteError(&buf, "checks failed", map[string]any{"failed": 2}))

	var got Error
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "checks failed", got.Message)
	assert.EqualValues(t, 2, got.Data["failed"])
}

func TestMarshalError(t *testing.T) {
	got := MarshalError("boom", map[string]any{"cause": errors.New("x").Error()})
	assert.Contains(t, got, `"message": "boom"`)
	assert.Contains(t, got, `"cause": "x"`)
}

package jsonutil

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnmarshal(t *testing.T) {
	t.Run("valid object", func(t *testing.T) {
		var result map[string]any
		require.NoError(t, Unmarshal([]byte(`{"name":"test","value":42}`), &result))
		assert.Equal(t, "test", result["name"])
		assert.Equal(t, float64(42), result["value"])
	})

	t.Run("invalid json", func(t *testing.T) {
		var result map[string]any
		assert.Error(t, Unmarshal([]byte(`{invalid}`), &result))
	})
}

func TestUnmarshalJSONC(t *testing.T) {
	src := []byte(`{
		// variation name
		"name": "boundaries",
		"enabled": true, // trailing comma below
	}`)

	var result struct {
		Name    string `json:"name"`
		Enabled bool   `json:"enabled"`
	}
	require.NoError(t, UnmarshalJSONC(src, &result))
	assert.Equal(t, "boundaries", result.Name)
	assert.True(t, result.Enabled)

	t.Run("broken input", func(t *testing.T) {
		err := UnmarshalJSONC([]byte(`{"a": `), &result)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid JSONC")
	})
}

func TestMarshalIndent(t *testing.T) {
	data, err := MarshalIndent(map[string]int{"a": 1}, "", "  ")
	require.NoError(t, err)
	assert.Contains(t, string(data), "\n")
	assert.Contains(t, string(data), `  "a": 1`)
}

func TestValidAndCompact(t *testing.T) {
	assert.True(t, Valid([]byte(`{"a":[1,2]}`)))
	assert.False(t, Valid([]byte(`{"a":`)))

	out, err := Compact([]byte("{ \"a\" : [ 1, 2 ] }"))
	require.NoError(t, err)
	assert.Equal(t, `{"a":[1,2]}`, string(out))

	_, err = Compact([]byte(`{"a":`))
	assert.Error(t, err)
}

func TestEncoder(t *testing.T) {
	var buf bytes.Buffer
	enc := NewStreamEncoder(&buf)
	require.NoError(t, enc.Encode(map[string]string{"k": "v"}))
	require.NoError(t, enc.Encode([]int{1}))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, `{"k":"v"}`, lines[0])
	assert.Equal(t, `[1]`, lines[1])

	buf.Reset()
	enc.SetIndent("", "  ")
	require.NoError(t, enc.Encode(map[string]string{"k": "v"}))
	assert.Contains(t, buf.String(), "  \"k\": \"v\"")
}

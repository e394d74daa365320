package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithFields_KeyValuePairs(t *testing.T) {
	var buf bytes.Buffer
	l := zerolog.New(&buf)

	withFields(l.Info(), []any{"store_id", 42, "stage", "loading"}).Msg("hello")

	var out map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	assert.Equal(t, float64(42), out["store_id"])
	assert.Equal(t, "loading", out["stage"])
	assert.Equal(t, "hello", out["message"])
}

func TestWithFields_LoneErrorAndDanglingValue(t *testing.T) {
	var buf bytes.Buffer
	l := zerolog.New(&buf)

	withFields(l.Error(), []any{errors.New("boom"), "k", errors.New("wrapped"), 7}).Msg("failed")

	var out map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	assert.Equal(t, "boom", out["error"])
	assert.Equal(t, "wrapped", out["k"])
	assert.Equal(t, float64(7), out["detail_3"])
}

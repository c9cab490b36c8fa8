package jsonorder

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFields(t *testing.T) {
	raw := []byte(`{"9":{"a":1},"2":"two","10":[1,2],"zeta":null,"alpha":{"nested":{"deep":true}}}`)

	fields, err := Fields(raw)
	require.NoError(t, err)

	want := []Field{
		{Name: "9", Raw: json.RawMessage(`{"a":1}`)},
		{Name: "2", Raw: json.RawMessage(`"two"`)},
		{Name: "10", Raw: json.RawMessage(`[1,2]`)},
		{Name: "zeta", Raw: json.RawMessage(`null`)},
		{Name: "alpha", Raw: json.RawMessage(`{"nested":{"deep":true}}`)},
	}
	if diff := cmp.Diff(want, fields); diff != "" {
		t.Errorf("field mismatch (-want +got):\n%s", diff)
	}
}

func TestFieldsNumberPrecision(t *testing.T) {
	// Large integers must survive re-encoding without float rounding.
	fields, err := Fields([]byte(`{"seed":1125899906842624123}`))
	require.NoError(t, err)
	require.Len(t, fields, 1)
	assert.Equal(t, `1125899906842624123`, string(fields[0].Raw))
}

func TestFieldsErrors(t *testing.T) {
	t.Run("not an object", func(t *testing.T) {
		_, err := Fields([]byte(`[1,2,3]`))
		assert.Error(t, err)
	})

	t.Run("truncated input", func(t *testing.T) {
		_, err := Fields([]byte(`{"a":`))
		assert.Error(t, err)
	})

	t.Run("empty object", func(t *testing.T) {
		fields, err := Fields([]byte(`{}`))
		require.NoError(t, err)
		assert.Empty(t, fields)
	})
}

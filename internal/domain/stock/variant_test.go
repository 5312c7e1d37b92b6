package stock

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVariant_JSON(t *testing.T) {
	tests := []struct {
		name    string
		variant Variant
		want    string
	}{
		{"base variant is null", BaseVariant(), "null"},
		{"named variant is a string", NamedVariant("Small"), `"Small"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := json.Marshal(tt.variant)
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(data))

			var back Variant
			require.NoError(t, json.Unmarshal(data, &back))
			assert.Equal(t, tt.variant, back)
		})
	}
}

func TestVariant_BaseVsEmptyName(t *testing.T) {
	// The base variant and a named variant are distinct even when the
	// name is empty: provisioning validation rejects the latter.
	assert.True(t, BaseVariant().IsBase())
	assert.False(t, NamedVariant("").IsBase())
	assert.NotEqual(t, BaseVariant(), NamedVariant(""))
}

func TestVariantFromName(t *testing.T) {
	assert.True(t, VariantFromName(nil).IsBase())

	name := "Large"
	v := VariantFromName(&name)
	assert.False(t, v.IsBase())
	assert.Equal(t, "Large", v.Name())
}

func TestVariant_NullableName(t *testing.T) {
	assert.Nil(t, BaseVariant().NullableName())

	got := NamedVariant("Small").NullableName()
	require.NotNil(t, got)
	assert.Equal(t, "Small", *got)
}

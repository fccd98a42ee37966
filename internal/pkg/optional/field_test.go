package optional

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type patch struct {
	Year  Field[int]    `json:"year,omitzero"`
	Title Field[string] `json:"title,omitzero"`
}

func TestField_Unmarshal(t *testing.T) {
	var p patch
	require.NoError(t, json.Unmarshal([]byte(`{"year":null}`), &p))

	assert.True(t, p.Year.Set)
	assert.True(t, p.Year.Null)
	assert.Nil(t, p.Year.Ptr())
	assert.False(t, p.Title.Set)

	require.NoError(t, json.Unmarshal([]byte(`{"title":"Dune"}`), &p))
	require.NotNil(t, p.Title.Ptr())
	assert.Equal(t, "Dune", *p.Title.Ptr())
}

func TestField_UnmarshalTypeMismatch(t *testing.T) {
	var p patch
	require.Error(t, json.Unmarshal([]byte(`{"year":"soon"}`), &p))
}

func TestField_MarshalOmitsAbsent(t *testing.T) {
	out, err := json.Marshal(patch{Year: Null[int](), Title: Field[string]{}})
	require.NoError(t, err)
	assert.JSONEq(t, `{"year":null}`, string(out))

	out, err = json.Marshal(patch{Title: Of("Arrival")})
	require.NoError(t, err)
	assert.JSONEq(t, `{"title":"Arrival"}`, string(out))
}

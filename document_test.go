package driftcore_test

import (
	"errors"
	"testing"

	"github.com/fxamacker/cbor/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reoring/driftcore"
)

func TestDocument_ReusesSingleParse(t *testing.T) {
	doc, err := driftcore.Parse(`{"b":2,"a":1,"c":[true,null,"x"]}`)
	require.NoError(t, err)
	assert.Equal(t, driftcore.ValueObject, doc.Kind())

	canonical, err := doc.Canonical()
	require.NoError(t, err)
	assert.Equal(t, `{"a":1,"b":2,"c":[true,null,"x"]}`, string(canonical))

	n, h, err := doc.NormalizeAndHash()
	require.NoError(t, err)
	assert.Equal(t, string(canonical), n)

	h2, err := doc.Hash()
	require.NoError(t, err)
	assert.Equal(t, h, h2)

	sha, err := doc.HashWith("SHA256")
	require.NoError(t, err)
	assert.Equal(t, h, sha)

	count, err := doc.FieldCount()
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	wire, err := doc.EncodeStruct()
	require.NoError(t, err)
	direct, err := driftcore.EncodeStruct(`{"c":[true,null,"x"],"a":1,"b":2}`)
	require.NoError(t, err)
	assert.Equal(t, direct, wire)
}

func TestDocument_CanonicalIsFreshPerCall(t *testing.T) {
	doc, err := driftcore.Parse(`{"a":1}`)
	require.NoError(t, err)
	a, err := doc.Canonical()
	require.NoError(t, err)
	a[0] = 'X'
	b, err := doc.Canonical()
	require.NoError(t, err)
	assert.Equal(t, `{"a":1}`, string(b))
}

func TestDocument_Kinds(t *testing.T) {
	tests := map[string]driftcore.ValueKind{
		`null`:    driftcore.ValueNull,
		`true`:    driftcore.ValueBool,
		`1.5`:     driftcore.ValueNumber,
		`"s"`:     driftcore.ValueString,
		`[]`:      driftcore.ValueArray,
		`{"a":1}`: driftcore.ValueObject,
	}
	for in, want := range tests {
		doc, err := driftcore.Parse(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, doc.Kind(), in)
	}
}

func TestDocument_HashWithBLAKE3(t *testing.T) {
	doc, err := driftcore.Parse(`{"b":1,"a":2}`)
	require.NoError(t, err)
	b3, err := doc.HashWith("blake3")
	require.NoError(t, err)
	assert.Len(t, b3, 64)
	sha, err := doc.Hash()
	require.NoError(t, err)
	assert.NotEqual(t, sha, b3)

	other, err := driftcore.Parse(`{"a":2,"b":1}`)
	require.NoError(t, err)
	b3Other, err := other.HashWith("blake3")
	require.NoError(t, err)
	assert.Equal(t, b3, b3Other)

	_, err = doc.HashWith("md5")
	require.Error(t, err)
	assert.True(t, errors.Is(err, driftcore.ErrType))
	e, _ := driftcore.AsError(err)
	assert.Equal(t, driftcore.CodeUnknownAlgorithm, e.Code)
}

func TestDocument_EncodeCBOR(t *testing.T) {
	a, err := driftcore.Parse(`{"z":[1,2.5],"a":"x"}`)
	require.NoError(t, err)
	b, err := driftcore.Parse(`{"a":"x","z":[1.0,25e-1]}`)
	require.NoError(t, err)
	wireA, err := a.EncodeCBOR()
	require.NoError(t, err)
	wireB, err := b.EncodeCBOR()
	require.NoError(t, err)
	assert.Equal(t, wireA, wireB)

	var decoded map[string]any
	require.NoError(t, cbor.Unmarshal(wireA, &decoded))
	assert.Equal(t, "x", decoded["a"])
}

func TestParseOpt_Limits(t *testing.T) {
	_, err := driftcore.Parse(`[[[1]]]`, driftcore.ParseOpt{MaxDepth: 2})
	require.Error(t, err)
	assert.True(t, errors.Is(err, driftcore.ErrDepthExceeded))

	_, err = driftcore.Parse(`[1,2,3]`, driftcore.ParseOpt{MaxBytes: 4})
	require.Error(t, err)
	e, ok := driftcore.AsError(err)
	require.True(t, ok)
	assert.Equal(t, driftcore.CodeTooLarge, e.Code)
	assert.True(t, errors.Is(err, driftcore.ErrParse))
}

func TestParseOpt_DuplicateKeys(t *testing.T) {
	doc, err := driftcore.Parse(`{"a":1,"a":2}`)
	require.NoError(t, err)
	n, err := doc.Normalize()
	require.NoError(t, err)
	assert.Equal(t, `{"a":2}`, n)

	_, err = driftcore.Parse(`{"a":1,"a":2}`, driftcore.ParseOpt{OnDuplicateKey: driftcore.DuplicateError})
	require.Error(t, err)
	e, ok := driftcore.AsError(err)
	require.True(t, ok)
	assert.Equal(t, driftcore.CodeDuplicateKey, e.Code)
	assert.Equal(t, "/a", e.Path)
}

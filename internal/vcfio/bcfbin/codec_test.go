package bcfbin

import (
	"bufio"
	"bytes"
	"testing"

	"github.com/inodb/bcfdelta/internal/vcfmodel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func roundTripGTValue(t *testing.T, v vcfmodel.GTValue) vcfmodel.GTValue {
	t.Helper()
	var buf bytes.Buffer
	w := bufio.NewWriter(&buf)
	require.NoError(t, encodeGTValue(w, v))
	require.NoError(t, w.Flush())

	r := bufio.NewReader(&buf)
	out, err := decodeGTValue(r)
	require.NoError(t, err)
	return out
}

func TestEncodeDecodeGTValue_Scalars(t *testing.T) {
	assert.Equal(t, vcfmodel.ScalarInt8{1, vcfmodel.MissingInt8}, roundTripGTValue(t, vcfmodel.ScalarInt8{1, vcfmodel.MissingInt8}))
	assert.Equal(t, vcfmodel.ScalarInt16{300, -300}, roundTripGTValue(t, vcfmodel.ScalarInt16{300, -300}))
	assert.Equal(t, vcfmodel.ScalarInt32{100000, vcfmodel.MissingInt32}, roundTripGTValue(t, vcfmodel.ScalarInt32{100000, vcfmodel.MissingInt32}))
	assert.Equal(t, vcfmodel.ScalarFloat32{1.5, -2.25}, roundTripGTValue(t, vcfmodel.ScalarFloat32{1.5, -2.25}))
	assert.Equal(t, vcfmodel.ScalarChar{'A', 'T'}, roundTripGTValue(t, vcfmodel.ScalarChar{'A', 'T'}))
	assert.Equal(t, vcfmodel.ScalarString{"0/1", "1/1"}, roundTripGTValue(t, vcfmodel.ScalarString{"0/1", "1/1"}))
}

func TestEncodeDecodeGTValue_Vectors(t *testing.T) {
	assert.Equal(t, vcfmodel.VectorInt8{{1, 2}, {3}}, roundTripGTValue(t, vcfmodel.VectorInt8{{1, 2}, {3}}))
	assert.Equal(t, vcfmodel.VectorInt16{{300, 2}, nil}, roundTripGTValue(t, vcfmodel.VectorInt16{{300, 2}, nil}))
	assert.Equal(t, vcfmodel.VectorInt32{{5, 3}, {0, 8}}, roundTripGTValue(t, vcfmodel.VectorInt32{{5, 3}, {0, 8}}))
	assert.Equal(t, vcfmodel.VectorFloat32{{1.5, 2.5}}, roundTripGTValue(t, vcfmodel.VectorFloat32{{1.5, 2.5}}))
	assert.Equal(t, vcfmodel.VectorString{{"a", "b"}, {"c"}}, roundTripGTValue(t, vcfmodel.VectorString{{"a", "b"}, {"c"}}))
}

func TestEncodeGTValue_UnknownTypeErrors(t *testing.T) {
	var buf bytes.Buffer
	w := bufio.NewWriter(&buf)
	err := encodeGTValue(w, nil)
	require.Error(t, err)
}

func TestWriteReadString_RoundTrip(t *testing.T) {
	var buf bytes.Buffer
	w := bufio.NewWriter(&buf)
	require.NoError(t, writeString(w, "chr1"))
	require.NoError(t, w.Flush())

	r := bufio.NewReader(&buf)
	s, err := readString(r)
	require.NoError(t, err)
	assert.Equal(t, "chr1", s)
}

func TestWriteReadStringSlice_EmptyIsNil(t *testing.T) {
	var buf bytes.Buffer
	w := bufio.NewWriter(&buf)
	require.NoError(t, writeStringSlice(w, nil))
	require.NoError(t, w.Flush())

	r := bufio.NewReader(&buf)
	out, err := readStringSlice(r)
	require.NoError(t, err)
	assert.Nil(t, out)
}

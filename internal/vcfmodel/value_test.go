package vcfmodel

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGTValue_KindDimNumSamples(t *testing.T) {
	scalar := ScalarInt32{1, 2, 3}
	assert.Equal(t, KindInt32, scalar.Kind())
	assert.Equal(t, DimScalar, scalar.Dim())
	assert.Equal(t, 3, scalar.NumSamples())

	vector := VectorFloat32{{1.5, 2.5}, {3.5}}
	assert.Equal(t, KindFloat32, vector.Kind())
	assert.Equal(t, DimVector, vector.Dim())
	assert.Equal(t, 2, vector.NumSamples())
}

func TestMissingFloat32RoundTrip(t *testing.T) {
	m := MissingFloat32()
	assert.True(t, IsMissingFloat32(m))
	assert.False(t, IsMissingFloat32(1.0))
	assert.False(t, IsMissingFloat32(0))
}

func TestSameElementCategory(t *testing.T) {
	assert.True(t, SameElementCategory(KindInt8, KindInt32))
	assert.True(t, SameElementCategory(KindInt16, KindInt16))
	assert.True(t, SameElementCategory(KindFloat32, KindFloat32))
	assert.True(t, SameElementCategory(KindChar, KindChar))
	assert.False(t, SameElementCategory(KindFloat32, KindInt32))
	assert.False(t, SameElementCategory(KindChar, KindInt8))
	assert.False(t, SameElementCategory(KindString, KindString))
}

func TestKind_IsIntegral(t *testing.T) {
	assert.True(t, KindInt8.IsIntegral())
	assert.True(t, KindInt16.IsIntegral())
	assert.True(t, KindInt32.IsIntegral())
	assert.False(t, KindFloat32.IsIntegral())
	assert.False(t, KindChar.IsIntegral())
	assert.False(t, KindString.IsIntegral())
}

package bcfbin

import (
	"bufio"
	"bytes"
	"testing"

	"github.com/inodb/bcfdelta/internal/vcfmodel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleRecord() *vcfmodel.Record {
	return &vcfmodel.Record{
		Chrom:  "chr1",
		Pos:    99,
		ID:     []string{"rs1"},
		Ref:    "A",
		Alts:   []string{"T"},
		Qual:   30.5,
		QualOK: true,
		Filter: []string{"PASS"},
		Info: []vcfmodel.InfoEntry{
			{ID: "DP", Value: "10"},
			{ID: "DB", Value: true},
			{ID: "AF", Value: []string{"0.1", "0.2"}},
		},
		Genotypes: []vcfmodel.GenotypeField{
			{ID: "GT", Value: vcfmodel.ScalarString{"0/1", "1/1"}},
			{ID: "AD", Value: vcfmodel.VectorInt32{{5, 3}, {0, 8}}},
		},
	}
}

func TestEncodeDecodeRecordBody_RoundTrip(t *testing.T) {
	rec := sampleRecord()

	body, err := encodeRecordBytes(rec)
	require.NoError(t, err)

	out, err := decodeRecordBody(body)
	require.NoError(t, err)

	assert.Equal(t, rec.Chrom, out.Chrom)
	assert.Equal(t, rec.Pos, out.Pos)
	assert.Equal(t, rec.ID, out.ID)
	assert.Equal(t, rec.Ref, out.Ref)
	assert.Equal(t, rec.Alts, out.Alts)
	assert.Equal(t, rec.Qual, out.Qual)
	assert.Equal(t, rec.QualOK, out.QualOK)
	assert.Equal(t, rec.Filter, out.Filter)
	assert.Equal(t, rec.Info, out.Info)
	assert.Equal(t, rec.Genotypes, out.Genotypes)
}

func TestEncodeDecodeRecordBody_NoQualNoGenotypes(t *testing.T) {
	rec := &vcfmodel.Record{Chrom: "chr2", Pos: 0, Ref: "G", Alts: []string{"C"}}

	body, err := encodeRecordBytes(rec)
	require.NoError(t, err)

	out, err := decodeRecordBody(body)
	require.NoError(t, err)
	assert.False(t, out.QualOK)
	assert.Equal(t, float64(0), out.Qual)
	assert.Empty(t, out.Genotypes)
}

func TestWriteReadRawRecord_LengthPrefixed(t *testing.T) {
	rec := sampleRecord()
	body, err := encodeRecordBytes(rec)
	require.NoError(t, err)

	var buf bytes.Buffer
	w := bufio.NewWriter(&buf)
	require.NoError(t, writeRawRecord(w, body))
	require.NoError(t, w.Flush())

	got, err := readRawRecord(bufio.NewReader(&buf))
	require.NoError(t, err)
	assert.Equal(t, body, got)
}

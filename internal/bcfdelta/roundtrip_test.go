package bcfdelta

import (
	"context"
	"io"
	"path/filepath"
	"testing"

	"github.com/inodb/bcfdelta/internal/vcfio"
	"github.com/inodb/bcfdelta/internal/vcfio/vcftext"
	"github.com/inodb/bcfdelta/internal/vcfmodel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func adHeader() *vcfmodel.Header {
	h := &vcfmodel.Header{
		FileFormat: "VCFv4.2",
		Formats: []vcfmodel.FormatDef{
			{ID: "GT", Number: vcfmodel.Fixed(1), Type: vcfmodel.TypeString, Description: "Genotype"},
			{ID: "AD", Number: vcfmodel.R, Type: vcfmodel.TypeInteger, Description: "Allelic depths"},
		},
		Samples: []string{"s1", "s2"},
	}
	h.IndexInfo()
	h.IndexFormat()
	return h
}

func writeVCF(t *testing.T, path string, header *vcfmodel.Header, records []*vcfmodel.Record) {
	t.Helper()
	w, err := vcftext.Create(path, vcfio.FormatVCF, vcfio.FramingPlainGzip)
	require.NoError(t, err)
	require.NoError(t, w.WriteHeader(header))
	for _, rec := range records {
		require.NoError(t, w.WriteRecord(rec))
	}
	require.NoError(t, w.Close())
}

func readAllVCF(t *testing.T, path string) (*vcfmodel.Header, []*vcfmodel.Record) {
	t.Helper()
	r, err := vcftext.Open(path, vcfio.FramingPlainGzip)
	require.NoError(t, err)
	defer r.Close()

	header, err := r.ReadHeader()
	require.NoError(t, err)

	var records []*vcfmodel.Record
	for {
		rec, err := r.ReadRecord()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		records = append(records, rec)
	}
	return header, records
}

// toInt64Rows normalizes any integer VectorXxx value to [][]int64 so a
// round trip can be compared across width promotions.
func toInt64Rows(t *testing.T, v vcfmodel.GTValue) [][]int64 {
	t.Helper()
	switch s := v.(type) {
	case vcfmodel.VectorInt8:
		out := make([][]int64, len(s))
		for i, inner := range s {
			row := make([]int64, len(inner))
			for j, x := range inner {
				row[j] = int64(x)
			}
			out[i] = row
		}
		return out
	case vcfmodel.VectorInt16:
		out := make([][]int64, len(s))
		for i, inner := range s {
			row := make([]int64, len(inner))
			for j, x := range inner {
				row[j] = int64(x)
			}
			out[i] = row
		}
		return out
	case vcfmodel.VectorInt32:
		out := make([][]int64, len(s))
		for i, inner := range s {
			row := make([]int64, len(inner))
			for j, x := range inner {
				row[j] = int64(x)
			}
			out[i] = row
		}
		return out
	default:
		t.Fatalf("unexpected AD value type %T", v)
		return nil
	}
}

// TestEncodeDecode_ChainedDeltaBaseline is the regression test for the
// baseline-bookkeeping bug: a run of consecutive bi-allelic records that
// all land in the same anchor bucket must each delta-compress against the
// immediately preceding record, not against the bucket's original anchor.
// If encode ever deltas every record against a fixed anchor while decode
// undeltas each against the previous decoded record (or vice versa), the
// reconstructed values diverge from record 3 onward.
func TestEncodeDecode_ChainedDeltaBaseline(t *testing.T) {
	dir := t.TempDir()
	header := adHeader()

	records := []*vcfmodel.Record{
		{
			Chrom: "chr1", Pos: 0, Ref: "A", Alts: []string{"T"},
			Genotypes: []vcfmodel.GenotypeField{
				{ID: "GT", Value: vcfmodel.ScalarString{"0/1", "0/0"}},
				{ID: "AD", Value: vcfmodel.VectorInt32{{10, 5}, {8, 2}}},
			},
		},
		{
			Chrom: "chr1", Pos: 1, Ref: "A", Alts: []string{"T"},
			Genotypes: []vcfmodel.GenotypeField{
				{ID: "GT", Value: vcfmodel.ScalarString{"0/1", "1/1"}},
				{ID: "AD", Value: vcfmodel.VectorInt32{{12, 6}, {8, 3}}},
			},
		},
		{
			Chrom: "chr1", Pos: 2, Ref: "A", Alts: []string{"T"},
			Genotypes: []vcfmodel.GenotypeField{
				{ID: "GT", Value: vcfmodel.ScalarString{"0/0", "0/1"}},
				{ID: "AD", Value: vcfmodel.VectorInt32{{15, 7}, {9, 1}}},
			},
		},
	}

	inPath := filepath.Join(dir, "in.vcf")
	writeVCF(t, inPath, header, records)

	encPath := filepath.Join(dir, "enc.vcf")
	require.NoError(t, Encode(context.Background(), EncodeOptions{
		Input: inPath, Output: encPath,
		DeltaCompress: true, CompressInts: true,
		RefFreq: 1_000_000, // a single bucket: only the first record is an anchor
		Threads: 1,
	}))

	_, encRecords := readAllVCF(t, encPath)
	require.Len(t, encRecords, 3)
	assert.True(t, encRecords[0].HasInfoFlag("DELTA_REF"))
	assert.True(t, encRecords[1].HasInfoFlag("DELTA_COMP"))
	assert.True(t, encRecords[2].HasInfoFlag("DELTA_COMP"))

	decPath := filepath.Join(dir, "dec.vcf")
	require.NoError(t, Decode(context.Background(), DecodeOptions{
		Input: encPath, Output: decPath, Threads: 1,
	}))

	_, decRecords := readAllVCF(t, decPath)
	require.Len(t, decRecords, 3)

	for i, rec := range decRecords {
		gt := rec.Genotypes[rec.GenotypeIndex("GT")].Value.(vcfmodel.ScalarString)
		assert.Equal(t, records[i].Genotypes[0].Value, gt, "record %d GT", i)

		ad := rec.Genotypes[rec.GenotypeIndex("AD")].Value
		want := toInt64Rows(t, records[i].Genotypes[1].Value)
		got := toInt64Rows(t, ad)
		assert.Equal(t, want, got, "record %d AD", i)

		assert.False(t, rec.HasInfoFlag("DELTA_REF"))
		assert.False(t, rec.HasInfoFlag("DELTA_COMP"))
	}
}

// TestEncodeDecode_AnchorTransitionAcrossBuckets exercises a refFreq small
// enough to force a second anchor partway through the run, and a
// multi-allelic record that must never become an anchor itself but still
// falls through to delta-compression against the last bi-allelic baseline.
func TestEncodeDecode_AnchorTransitionAcrossBuckets(t *testing.T) {
	dir := t.TempDir()
	header := adHeader()

	records := []*vcfmodel.Record{
		{
			Chrom: "chr1", Pos: 0, Ref: "A", Alts: []string{"T"},
			Genotypes: []vcfmodel.GenotypeField{
				{ID: "GT", Value: vcfmodel.ScalarString{"0/1", "0/0"}},
				{ID: "AD", Value: vcfmodel.VectorInt32{{10, 5}, {8, 2}}},
			},
		},
		{
			// Multi-allelic: never an anchor, but still delta-compresses
			// against the last bi-allelic baseline.
			Chrom: "chr1", Pos: 4, Ref: "A", Alts: []string{"T", "G"},
			Genotypes: []vcfmodel.GenotypeField{
				{ID: "GT", Value: vcfmodel.ScalarString{"1/2", "0/1"}},
				{ID: "AD", Value: vcfmodel.VectorInt32{{3, 4, 5}, {6, 7, 8}}},
			},
		},
		{
			// New bucket (refFreq=10, bucket 1): forced anchor.
			Chrom: "chr1", Pos: 15, Ref: "A", Alts: []string{"T"},
			Genotypes: []vcfmodel.GenotypeField{
				{ID: "GT", Value: vcfmodel.ScalarString{"0/0", "1/1"}},
				{ID: "AD", Value: vcfmodel.VectorInt32{{20, 0}, {0, 30}}},
			},
		},
	}

	inPath := filepath.Join(dir, "in.vcf")
	writeVCF(t, inPath, header, records)

	encPath := filepath.Join(dir, "enc.vcf")
	require.NoError(t, Encode(context.Background(), EncodeOptions{
		Input: inPath, Output: encPath,
		DeltaCompress: true, CompressInts: true,
		RefFreq: 10, Threads: 1,
	}))

	_, encRecords := readAllVCF(t, encPath)
	require.Len(t, encRecords, 3)
	assert.True(t, encRecords[0].HasInfoFlag("DELTA_REF"))
	assert.False(t, encRecords[1].HasInfoFlag("DELTA_REF"), "multi-allelic record must not be an anchor")
	assert.True(t, encRecords[1].HasInfoFlag("DELTA_COMP"), "multi-allelic record still deltas against the last baseline")
	assert.True(t, encRecords[2].HasInfoFlag("DELTA_REF"), "new bucket forces a fresh anchor")

	decPath := filepath.Join(dir, "dec.vcf")
	require.NoError(t, Decode(context.Background(), DecodeOptions{
		Input: encPath, Output: decPath, Threads: 1,
	}))

	_, decRecords := readAllVCF(t, decPath)
	for i, rec := range decRecords {
		ad := rec.Genotypes[rec.GenotypeIndex("AD")].Value
		want := toInt64Rows(t, records[i].Genotypes[1].Value)
		got := toInt64Rows(t, ad)
		assert.Equal(t, want, got, "record %d AD", i)
	}
}

func adPlHeader() *vcfmodel.Header {
	h := &vcfmodel.Header{
		FileFormat: "VCFv4.2",
		Formats: []vcfmodel.FormatDef{
			{ID: "GT", Number: vcfmodel.Fixed(1), Type: vcfmodel.TypeString, Description: "Genotype"},
			{ID: "AD", Number: vcfmodel.R, Type: vcfmodel.TypeInteger, Description: "Allelic depths"},
			{ID: "PL", Number: vcfmodel.G, Type: vcfmodel.TypeInteger, Description: "Genotype likelihoods"},
		},
		Samples: []string{"s1"},
	}
	h.IndexInfo()
	h.IndexFormat()
	return h
}

func formatIDs(h *vcfmodel.Header) []string {
	ids := make([]string, len(h.Formats))
	for i, f := range h.Formats {
		ids[i] = f.ID
	}
	return ids
}

// TestEncodeDecode_SplitFieldsHeaderRoundTrip is the regression test for
// DecodeHeader leaving the split-field FORMAT definitions in place: after
// "encode --split-fields | decode", the output header's FORMAT set must
// match the input's exactly, since the decode driver merges AD_REF/AD_ALT
// and PL1/PL2/PL3 back into AD/PL on every record.
func TestEncodeDecode_SplitFieldsHeaderRoundTrip(t *testing.T) {
	dir := t.TempDir()
	header := adPlHeader()

	records := []*vcfmodel.Record{
		{
			Chrom: "chr1", Pos: 0, Ref: "A", Alts: []string{"T"},
			Genotypes: []vcfmodel.GenotypeField{
				{ID: "GT", Value: vcfmodel.ScalarString{"0/1"}},
				{ID: "AD", Value: vcfmodel.VectorInt32{{10, 5}}},
				{ID: "PL", Value: vcfmodel.VectorInt32{{30, 0, 25}}},
			},
		},
		{
			Chrom: "chr1", Pos: 1, Ref: "A", Alts: []string{"T"},
			Genotypes: []vcfmodel.GenotypeField{
				{ID: "GT", Value: vcfmodel.ScalarString{"1/1"}},
				{ID: "AD", Value: vcfmodel.VectorInt32{{1, 14}}},
				{ID: "PL", Value: vcfmodel.VectorInt32{{40, 10, 0}}},
			},
		},
	}

	inPath := filepath.Join(dir, "in.vcf")
	writeVCF(t, inPath, header, records)

	encPath := filepath.Join(dir, "enc.vcf")
	require.NoError(t, Encode(context.Background(), EncodeOptions{
		Input: inPath, Output: encPath,
		DeltaCompress: true, CompressInts: true, SplitFields: true,
		RefFreq: 1_000_000, Threads: 1,
	}))

	encHeader, _ := readAllVCF(t, encPath)
	for _, id := range []string{"AD_REF", "AD_ALT", "PL1", "PL2", "PL3"} {
		assert.NotNil(t, encHeader.FormatByID(id), "encode output header must advertise split field %s", id)
	}

	decPath := filepath.Join(dir, "dec.vcf")
	require.NoError(t, Decode(context.Background(), DecodeOptions{
		Input: encPath, Output: decPath, Threads: 1,
	}))

	decHeader, decRecords := readAllVCF(t, decPath)
	assert.ElementsMatch(t, formatIDs(header), formatIDs(decHeader),
		"decoded header's FORMAT set must match the input's, not leak split fields")
	for _, id := range []string{"AD_REF", "AD_ALT", "PL1", "PL2", "PL3"} {
		assert.Nil(t, decHeader.FormatByID(id), "decode output header must not advertise split field %s", id)
	}

	for i, rec := range decRecords {
		ad := rec.Genotypes[rec.GenotypeIndex("AD")].Value
		wantAD := toInt64Rows(t, records[i].Genotypes[1].Value)
		assert.Equal(t, wantAD, toInt64Rows(t, ad), "record %d AD", i)

		pl := rec.Genotypes[rec.GenotypeIndex("PL")].Value
		wantPL := toInt64Rows(t, records[i].Genotypes[2].Value)
		assert.Equal(t, wantPL, toInt64Rows(t, pl), "record %d PL", i)
	}
}

func TestEncodeHeader_FailsOnAlreadyDeltaCompressed(t *testing.T) {
	dir := t.TempDir()
	header := adHeader()
	rec := &vcfmodel.Record{
		Chrom: "chr1", Pos: 0, Ref: "A", Alts: []string{"T"},
		Genotypes: []vcfmodel.GenotypeField{{ID: "GT", Value: vcfmodel.ScalarString{"0/1", "0/0"}}},
	}

	inPath := filepath.Join(dir, "in.vcf")
	writeVCF(t, inPath, header, []*vcfmodel.Record{rec})
	encPath := filepath.Join(dir, "enc.vcf")
	require.NoError(t, Encode(context.Background(), EncodeOptions{Input: inPath, Output: encPath, DeltaCompress: true, Threads: 1}))

	reEncPath := filepath.Join(dir, "re-enc.vcf")
	err := Encode(context.Background(), EncodeOptions{Input: encPath, Output: reEncPath, DeltaCompress: true, Threads: 1})
	assert.Error(t, err)
}

func TestDecodeHeader_FailsOnNotDeltaCompressed(t *testing.T) {
	dir := t.TempDir()
	header := adHeader()
	rec := &vcfmodel.Record{
		Chrom: "chr1", Pos: 0, Ref: "A", Alts: []string{"T"},
		Genotypes: []vcfmodel.GenotypeField{{ID: "GT", Value: vcfmodel.ScalarString{"0/1", "0/0"}}},
	}

	inPath := filepath.Join(dir, "in.vcf")
	writeVCF(t, inPath, header, []*vcfmodel.Record{rec})

	decPath := filepath.Join(dir, "dec.vcf")
	err := Decode(context.Background(), DecodeOptions{Input: inPath, Output: decPath, Threads: 1})
	assert.Error(t, err)
}

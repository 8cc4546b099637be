package bcfbin

import (
	"io"
	"path/filepath"
	"testing"

	"github.com/inodb/bcfdelta/internal/vcfmodel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleHeader() *vcfmodel.Header {
	h := &vcfmodel.Header{
		FileFormat: "VCFv4.2",
		Infos: []vcfmodel.InfoDef{
			{ID: "DP", Number: vcfmodel.Fixed(1), Type: vcfmodel.TypeInteger, Description: "Depth"},
		},
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

func TestReaderWriter_FileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.bcf")
	header := sampleHeader()
	records := []*vcfmodel.Record{
		sampleRecord(),
		{
			Chrom: "chr2", Pos: 5, Ref: "G", Alts: []string{"C", "A"},
			Genotypes: []vcfmodel.GenotypeField{
				{ID: "GT", Value: vcfmodel.ScalarString{"0/0", "1/2"}},
			},
		},
	}

	w, err := Create(path)
	require.NoError(t, err)
	require.NoError(t, w.WriteHeader(header))
	for _, rec := range records {
		require.NoError(t, w.WriteRecord(rec))
	}
	require.NoError(t, w.Close())

	r, err := Open(path)
	require.NoError(t, err)
	defer r.Close()

	gotHeader, err := r.ReadHeader()
	require.NoError(t, err)
	assert.Equal(t, header.FileFormat, gotHeader.FileFormat)
	assert.Equal(t, []string{"s1", "s2"}, gotHeader.Samples)
	require.Len(t, gotHeader.Infos, 1)
	assert.Equal(t, "DP", gotHeader.Infos[0].ID)
	require.Len(t, gotHeader.Formats, 2)

	var got []*vcfmodel.Record
	for {
		rec, err := r.ReadRecord()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		got = append(got, rec)
	}

	require.Len(t, got, 2)
	assert.Equal(t, records[0].Chrom, got[0].Chrom)
	assert.Equal(t, records[0].Genotypes, got[0].Genotypes)
	assert.Equal(t, records[1].Chrom, got[1].Chrom)
	assert.Equal(t, records[1].Alts, got[1].Alts)
}

func TestReaderWriter_PreservesRecordOrderWithMultipleWorkers(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.bcf")
	header := &vcfmodel.Header{FileFormat: "VCFv4.2"}

	w, err := Create(path)
	require.NoError(t, err)
	w.SetWorkers(8)
	require.NoError(t, w.WriteHeader(header))
	for i := 0; i < 50; i++ {
		require.NoError(t, w.WriteRecord(&vcfmodel.Record{Chrom: "chr1", Pos: int64(i), Ref: "A", Alts: []string{"T"}}))
	}
	require.NoError(t, w.Close())

	r, err := Open(path)
	require.NoError(t, err)
	defer r.Close()
	r.SetWorkers(8)

	for i := 0; i < 50; i++ {
		rec, err := r.ReadRecord()
		require.NoError(t, err)
		assert.Equal(t, int64(i), rec.Pos, "record %d out of order", i)
	}
	_, err = r.ReadRecord()
	assert.ErrorIs(t, err, io.EOF)
}

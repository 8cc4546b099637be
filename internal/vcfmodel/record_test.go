package vcfmodel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleRecord() *Record {
	return &Record{
		Chrom:  "chr1",
		Pos:    100,
		Ref:    "A",
		Alts:   []string{"T"},
		QualOK: true,
		Qual:   30,
		Info: []InfoEntry{
			{ID: "DP", Value: "10"},
		},
		Genotypes: []GenotypeField{
			{ID: "GT", Value: ScalarString{"0/1", "1/1"}},
			{ID: "AD", Value: VectorInt32{{5, 3}, {0, 8}}},
		},
	}
}

func TestRecord_NAltsAndBiallelic(t *testing.T) {
	r := sampleRecord()
	assert.Equal(t, 1, r.NAlts())
	assert.True(t, r.Biallelic())

	r.Alts = append(r.Alts, "G")
	assert.Equal(t, 2, r.NAlts())
	assert.False(t, r.Biallelic())
}

func TestRecord_InfoFlags(t *testing.T) {
	r := sampleRecord()
	assert.False(t, r.HasInfoFlag("DELTA_REF"))

	r.SetInfoFlag("DELTA_REF")
	assert.True(t, r.HasInfoFlag("DELTA_REF"))

	// Setting twice doesn't duplicate.
	r.SetInfoFlag("DELTA_REF")
	count := 0
	for _, e := range r.Info {
		if e.ID == "DELTA_REF" {
			count++
		}
	}
	assert.Equal(t, 1, count)

	r.RemoveInfo("DELTA_REF")
	assert.False(t, r.HasInfoFlag("DELTA_REF"))
	assert.Len(t, r.Info, 1) // DP survives
}

func TestRecord_GenotypeIndexAndRemove(t *testing.T) {
	r := sampleRecord()
	assert.Equal(t, 0, r.GenotypeIndex("GT"))
	assert.Equal(t, 1, r.GenotypeIndex("AD"))
	assert.Equal(t, -1, r.GenotypeIndex("PL"))

	r.RemoveGenotype("GT")
	assert.Equal(t, -1, r.GenotypeIndex("GT"))
	assert.Equal(t, 0, r.GenotypeIndex("AD"))
	assert.Len(t, r.Genotypes, 1)

	r.RemoveGenotype("nonexistent")
	assert.Len(t, r.Genotypes, 1)
}

func TestRecord_CloneIsIndependent(t *testing.T) {
	r := sampleRecord()
	c := r.Clone()

	require.Equal(t, r.Chrom, c.Chrom)
	require.Equal(t, r.Genotypes, c.Genotypes)

	// Mutating the clone's Genotypes slice must not affect r's.
	c.RemoveGenotype("AD")
	assert.Equal(t, -1, c.GenotypeIndex("AD"))
	assert.Equal(t, 1, r.GenotypeIndex("AD"), "removing from the clone touched the original")

	// Reassigning a field's Value on the clone must not affect r's copy.
	c.Genotypes[0].Value = ScalarString{"1/1", "0/0"}
	orig, ok := r.Genotypes[0].Value.(ScalarString)
	require.True(t, ok)
	assert.Equal(t, ScalarString{"0/1", "1/1"}, orig)

	// Top-level slices are independently backed too.
	c.Alts[0] = "C"
	assert.Equal(t, "T", r.Alts[0])
}

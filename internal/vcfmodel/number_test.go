package vcfmodel

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseNumber(t *testing.T) {
	cases := []struct {
		in   string
		want NumberTag
		ok   bool
	}{
		{".", Dot, true},
		{"A", A, true},
		{"R", R, true},
		{"G", G, true},
		{"0", Fixed(0), true},
		{"1", Fixed(1), true},
		{"12", Fixed(12), true},
		{"", NumberTag{}, false},
		{"-1", NumberTag{}, false},
		{"x", NumberTag{}, false},
	}
	for _, c := range cases {
		got, ok := ParseNumber(c.in)
		assert.Equal(t, c.ok, ok, "input %q", c.in)
		if c.ok {
			assert.Equal(t, c.want, got, "input %q", c.in)
		}
	}
}

func TestNumberTag_String(t *testing.T) {
	assert.Equal(t, ".", Dot.String())
	assert.Equal(t, "A", A.String())
	assert.Equal(t, "R", R.String())
	assert.Equal(t, "G", G.String())
	assert.Equal(t, "0", Fixed(0).String())
	assert.Equal(t, "3", Fixed(3).String())
}

func TestFormulaG(t *testing.T) {
	// Diploid genotype-likelihood ordering for 2 alleles (REF + 1 ALT):
	// (0,0), (0,1), (1,1) -> indices 0,1,2.
	assert.Equal(t, 0, FormulaG(0, 0))
	assert.Equal(t, 1, FormulaG(0, 1))
	assert.Equal(t, 2, FormulaG(1, 1))
	// 3 alleles: (0,0) (0,1) (1,1) (0,2) (1,2) (2,2)
	assert.Equal(t, 3, FormulaG(0, 2))
	assert.Equal(t, 4, FormulaG(1, 2))
	assert.Equal(t, 5, FormulaG(2, 2))
}

func TestNumberTag_Resolve(t *testing.T) {
	length, fixed := Fixed(2).Resolve(5)
	assert.True(t, fixed)
	assert.Equal(t, 2, length)

	length, fixed = A.Resolve(3)
	assert.True(t, fixed)
	assert.Equal(t, 3, length)

	length, fixed = R.Resolve(3)
	assert.True(t, fixed)
	assert.Equal(t, 4, length)

	length, fixed = G.Resolve(2)
	assert.True(t, fixed)
	assert.Equal(t, Tri(3), length)
	assert.Equal(t, 6, length)

	_, fixed = Dot.Resolve(3)
	assert.False(t, fixed)
}

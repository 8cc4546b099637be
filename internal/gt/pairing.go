package gt

import "github.com/inodb/bcfdelta/internal/vcfmodel"

// pairIdx pairs one element of the current record's inner vector with the
// anchor's corresponding element.
type pairIdx struct {
	cur, last int
}

// samplePlan is the outcome of pairing one sample's inner vectors: either a
// list of element pairs to run the kernel op over, or skip, meaning "leave
// this sample's payload untouched" (a dimension mismatch tolerated under
// skip-problematic, or one of the unconditionally-tolerated cases below).
type samplePlan struct {
	pairs []pairIdx
	skip  bool
}

// planFunc computes a samplePlan for sample i given the anchor's and the
// current record's inner vector lengths for that sample.
type planFunc func(i, lastLen, curLen int) (samplePlan, error)

func mismatch(skipProblematic bool, fieldID, which string, sample, expected, actual int) (samplePlan, error) {
	if skipProblematic {
		return samplePlan{skip: true}, nil
	}
	return samplePlan{}, &DimensionMismatchError{FieldID: fieldID, Sample: sample, Which: which, Expected: expected, Actual: actual}
}

// fixedPlanner pairs a Number=N field positionally; last and cur must both
// have exactly N elements per sample.
func fixedPlanner(fieldID string, n int, skipProblematic bool) planFunc {
	return func(i, lastLen, curLen int) (samplePlan, error) {
		if lastLen != n {
			return mismatch(skipProblematic, fieldID, "last", i, n, lastLen)
		}
		if curLen != n {
			return mismatch(skipProblematic, fieldID, "cur", i, n, curLen)
		}
		pairs := make([]pairIdx, n)
		for j := 0; j < n; j++ {
			pairs[j] = pairIdx{cur: j, last: j}
		}
		return samplePlan{pairs: pairs}, nil
	}
}

// aPlanner pairs a Number=A field: the bi-allelic anchor holds one value
// (its single ALT allele's), broadcast against each of the n_alts current
// values.
func aPlanner(fieldID string, nAlts int, skipProblematic bool) planFunc {
	return func(i, lastLen, curLen int) (samplePlan, error) {
		if lastLen != 1 {
			return mismatch(skipProblematic, fieldID, "last", i, 1, lastLen)
		}
		if curLen != nAlts {
			return mismatch(skipProblematic, fieldID, "cur", i, nAlts, curLen)
		}
		pairs := make([]pairIdx, nAlts)
		for k := 0; k < nAlts; k++ {
			pairs[k] = pairIdx{cur: k, last: 0}
		}
		return samplePlan{pairs: pairs}, nil
	}
}

// rPlanner pairs a Number=R field: the anchor holds two values (ref, alt),
// broadcast against the current record's n_alts+1 values.
func rPlanner(fieldID string, nAlts int, skipProblematic bool) planFunc {
	expected := nAlts + 1
	return func(i, lastLen, curLen int) (samplePlan, error) {
		if lastLen != 2 {
			return mismatch(skipProblematic, fieldID, "last", i, 2, lastLen)
		}
		if curLen != expected {
			return mismatch(skipProblematic, fieldID, "cur", i, expected, curLen)
		}
		pairs := make([]pairIdx, expected)
		pairs[0] = pairIdx{cur: 0, last: 0}
		for k := 1; k < expected; k++ {
			pairs[k] = pairIdx{cur: k, last: 1}
		}
		return samplePlan{pairs: pairs}, nil
	}
}

// gPlanner pairs a Number=G field: the anchor holds three genotype
// likelihoods (hom-ref, het, hom-alt), broadcast against every current
// genotype per formulaG's (a, b) ordering.
func gPlanner(fieldID string, nAlts int, skipProblematic bool) planFunc {
	expected := vcfmodel.Tri(nAlts + 1)
	return func(i, lastLen, curLen int) (samplePlan, error) {
		if lastLen != 3 {
			return mismatch(skipProblematic, fieldID, "last", i, 3, lastLen)
		}
		if curLen != expected {
			return mismatch(skipProblematic, fieldID, "cur", i, expected, curLen)
		}
		pairs := make([]pairIdx, 0, expected)
		for a := 0; a <= nAlts; a++ {
			for b := a; b <= nAlts; b++ {
				idx := vcfmodel.FormulaG(a, b)
				lastIdx := 2
				switch {
				case a == 0 && b == 0:
					lastIdx = 0
				case a == 0:
					lastIdx = 1
				}
				pairs = append(pairs, pairIdx{cur: idx, last: lastIdx})
			}
		}
		return samplePlan{pairs: pairs}, nil
	}
}

// dotPositionalPlanner is Number=dot's n_alts==1 behavior: pair positionally
// when the lengths happen to agree, otherwise silently skip the sample —
// never an error, regardless of skip-problematic.
func dotPositionalPlanner() planFunc {
	return func(i, lastLen, curLen int) (samplePlan, error) {
		if lastLen != curLen {
			return samplePlan{skip: true}, nil
		}
		pairs := make([]pairIdx, curLen)
		for j := 0; j < curLen; j++ {
			pairs[j] = pairIdx{cur: j, last: j}
		}
		return samplePlan{pairs: pairs}, nil
	}
}

// pl3Planner is PL3's Number=dot, n_alts!=1 behavior: broadcast the
// anchor's single value across every current element, or silently skip —
// never an error, regardless of skip-problematic.
func pl3Planner() planFunc {
	return func(i, lastLen, curLen int) (samplePlan, error) {
		if lastLen != 1 {
			return samplePlan{skip: true}, nil
		}
		pairs := make([]pairIdx, curLen)
		for j := 0; j < curLen; j++ {
			pairs[j] = pairIdx{cur: j, last: 0}
		}
		return samplePlan{pairs: pairs}, nil
	}
}

// flatPositionalPlanner is the flat-concat fast path: when every sample's
// anchor and current inner lengths already agree, pairing degenerates to
// positional regardless of the field's declared Number, and never errors.
func flatPositionalPlanner() planFunc {
	return func(i, lastLen, curLen int) (samplePlan, error) {
		pairs := make([]pairIdx, curLen)
		for j := 0; j < curLen; j++ {
			pairs[j] = pairIdx{cur: j, last: j}
		}
		return samplePlan{pairs: pairs}, nil
	}
}

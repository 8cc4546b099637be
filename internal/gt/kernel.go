package gt

import "github.com/inodb/bcfdelta/internal/vcfmodel"

// Op selects which direction the kernel runs: OpDelta subtracts (encode,
// integers/chars) or XORs (encode, floats); OpUndelta adds back or XORs
// again (decode — XOR is its own inverse).
type Op int

const (
	OpDelta Op = iota
	OpUndelta
)

// Apply runs the delta/XOR kernel for one genotype field, pairing cur's
// elements against last's (the anchor, for encode; the already-decoded
// reference record, for decode) according to the field's declared Number
// tag and the record's n_alts. It returns a new GTValue (promoted to a
// wider integral type where needed) rather than mutating cur in place,
// since encode's overflow check can only be resolved after seeing every
// element.
func Apply(op Op, last, cur vcfmodel.GTValue, fieldID string, number vcfmodel.NumberTag, nAlts int, skipProblematic bool) (vcfmodel.GTValue, error) {
	if cur.Kind() == vcfmodel.KindString {
		if cur.Dim() == vcfmodel.DimVector {
			return nil, &UnsupportedError{FieldID: fieldID, Reason: "vector-of-strings genotype payload"}
		}
		return cur, nil
	}
	if !vcfmodel.SameElementCategory(last.Kind(), cur.Kind()) || last.Dim() != cur.Dim() {
		return nil, &IncompatibleTypesError{FieldID: fieldID, Last: describe(last), Cur: describe(cur)}
	}
	if number.Kind == vcfmodel.NumberKindFixed && number.N == 0 {
		return nil, &IncompatibleTypesError{FieldID: fieldID, Last: "Number=0", Cur: "genotype payload"}
	}

	if cur.Dim() == vcfmodel.DimScalar {
		if number.Kind != vcfmodel.NumberKindFixed || number.N != 1 {
			return nil, &DimensionMismatchError{FieldID: fieldID, Sample: -1, Which: "declared Number", Expected: 1, Actual: number.N}
		}
		return applyScalar(op, last, cur, fieldID)
	}

	if number.Kind == vcfmodel.NumberKindFixed && number.N == 1 {
		return nil, &DimensionMismatchError{FieldID: fieldID, Sample: -1, Which: "declared Number", Expected: 2, Actual: 1}
	}

	if cur.Kind() == vcfmodel.KindFloat32 {
		return applyVectorFloat(last.(vcfmodel.VectorFloat32), cur.(vcfmodel.VectorFloat32), fieldID, number, nAlts, skipProblematic)
	}
	return applyVectorIntegral(op, last, cur, fieldID, vectorPlanner(fieldID, number, nAlts, skipProblematic))
}

func applyScalar(op Op, last, cur vcfmodel.GTValue, fieldID string) (vcfmodel.GTValue, error) {
	if cur.Kind() == vcfmodel.KindFloat32 {
		lastF, curF := last.(vcfmodel.ScalarFloat32), cur.(vcfmodel.ScalarFloat32)
		if len(lastF) != len(curF) {
			return nil, &ShapeAssertionError{FieldID: fieldID, Expected: len(lastF), Actual: len(curF)}
		}
		out := make(vcfmodel.ScalarFloat32, len(curF))
		for i := range curF {
			out[i] = xorFloat32(lastF[i], curF[i])
		}
		return out, nil
	}

	lastVals, lastMissing, _ := scalarToInt64(last)
	curVals, curMissing, curKind := scalarToInt64(cur)
	if len(lastVals) != len(curVals) {
		return nil, &ShapeAssertionError{FieldID: fieldID, Expected: len(lastVals), Actual: len(curVals)}
	}

	out := make([]int64, len(curVals))
	outMissing := make([]bool, len(curVals))
	copy(out, curVals)
	copy(outMissing, curMissing)
	for i := range curVals {
		if lastMissing[i] || curMissing[i] {
			continue
		}
		if op == OpDelta {
			out[i] = curVals[i] - lastVals[i]
		} else {
			out[i] = curVals[i] + lastVals[i]
		}
	}

	if curKind == vcfmodel.KindChar {
		result := make(vcfmodel.ScalarChar, len(out))
		for i, v := range out {
			if outMissing[i] {
				result[i] = vcfmodel.MissingChar
			} else {
				result[i] = byte(v)
			}
		}
		return result, nil
	}
	return materializeScalar(op, curKind, out, outMissing), nil
}

// vectorPlanner resolves the plan function for a vector-dim field's
// declared Number tag. The flat-concat fast path (every sample's anchor
// and current inner lengths already agree, so pairing is positional
// regardless of Number and never errors) is applied by its callers, not
// here.
func vectorPlanner(fieldID string, number vcfmodel.NumberTag, nAlts int, skipProblematic bool) planFunc {
	switch number.Kind {
	case vcfmodel.NumberKindDot:
		if nAlts == 1 {
			return dotPositionalPlanner()
		}
		if fieldID == "PL3" {
			return pl3Planner()
		}
		return nil // caller treats a nil planner as "leave the field untouched"
	case vcfmodel.NumberKindA:
		return aPlanner(fieldID, nAlts, skipProblematic)
	case vcfmodel.NumberKindR:
		return rPlanner(fieldID, nAlts, skipProblematic)
	case vcfmodel.NumberKindG:
		return gPlanner(fieldID, nAlts, skipProblematic)
	default:
		return fixedPlanner(fieldID, number.N, skipProblematic)
	}
}

func applyVectorIntegral(op Op, last, cur vcfmodel.GTValue, fieldID string, planner planFunc) (vcfmodel.GTValue, error) {
	if planner == nil {
		return cur, nil
	}
	lastVals, lastMissing, _ := vectorToInt64(last)
	curVals, curMissing, curKind := vectorToInt64(cur)
	if len(lastVals) != len(curVals) {
		return nil, &ShapeAssertionError{FieldID: fieldID, Expected: len(lastVals), Actual: len(curVals)}
	}

	if allInnerLengthsMatch(last, cur) {
		planner = flatPositionalPlanner()
	}

	outVals := make([][]int64, len(curVals))
	outMissing := make([][]bool, len(curVals))
	for i := range curVals {
		outVals[i] = append([]int64(nil), curVals[i]...)
		outMissing[i] = append([]bool(nil), curMissing[i]...)

		plan, err := planner(i, len(lastVals[i]), len(curVals[i]))
		if err != nil {
			return nil, err
		}
		if plan.skip {
			continue
		}
		for _, pr := range plan.pairs {
			if lastMissing[i][pr.last] || curMissing[i][pr.cur] {
				continue
			}
			if op == OpDelta {
				outVals[i][pr.cur] = curVals[i][pr.cur] - lastVals[i][pr.last]
			} else {
				outVals[i][pr.cur] = curVals[i][pr.cur] + lastVals[i][pr.last]
			}
		}
	}
	return materializeVector(op, curKind, outVals, outMissing), nil
}

func applyVectorFloat(last, cur vcfmodel.VectorFloat32, fieldID string, number vcfmodel.NumberTag, nAlts int, skipProblematic bool) (vcfmodel.GTValue, error) {
	if len(last) != len(cur) {
		return nil, &ShapeAssertionError{FieldID: fieldID, Expected: len(last), Actual: len(cur)}
	}
	planner := vectorPlanner(fieldID, number, nAlts, skipProblematic)
	if planner == nil {
		return cur, nil
	}
	if allInnerLengthsMatch(last, cur) {
		planner = flatPositionalPlanner()
	}

	out := make(vcfmodel.VectorFloat32, len(cur))
	for i := range cur {
		out[i] = append([]float32(nil), cur[i]...)
		plan, err := planner(i, len(last[i]), len(cur[i]))
		if err != nil {
			return nil, err
		}
		if plan.skip {
			continue
		}
		for _, pr := range plan.pairs {
			out[i][pr.cur] = xorFloat32(last[i][pr.last], cur[i][pr.cur])
		}
	}
	return out, nil
}

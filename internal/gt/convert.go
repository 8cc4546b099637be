package gt

import (
	"math"

	"github.com/inodb/bcfdelta/internal/vcfmodel"
)

func xorFloat32(a, b float32) float32 {
	return math.Float32frombits(math.Float32bits(a) ^ math.Float32bits(b))
}

func describe(v vcfmodel.GTValue) string {
	dim := "scalar"
	if v.Dim() == vcfmodel.DimVector {
		dim = "vector"
	}
	return v.Kind().String() + " " + dim
}

// scalarToInt64 widens any integral or char scalar GTValue into a common
// int64 representation plus a per-element missing mask, so the kernel's
// arithmetic doesn't need to special-case every concrete width.
func scalarToInt64(v vcfmodel.GTValue) (vals []int64, missing []bool, kind vcfmodel.Kind) {
	switch s := v.(type) {
	case vcfmodel.ScalarInt8:
		vals, missing = make([]int64, len(s)), make([]bool, len(s))
		for i, x := range s {
			vals[i], missing[i] = int64(x), x == vcfmodel.MissingInt8
		}
		return vals, missing, vcfmodel.KindInt8
	case vcfmodel.ScalarInt16:
		vals, missing = make([]int64, len(s)), make([]bool, len(s))
		for i, x := range s {
			vals[i], missing[i] = int64(x), x == vcfmodel.MissingInt16
		}
		return vals, missing, vcfmodel.KindInt16
	case vcfmodel.ScalarInt32:
		vals, missing = make([]int64, len(s)), make([]bool, len(s))
		for i, x := range s {
			vals[i], missing[i] = int64(x), x == vcfmodel.MissingInt32
		}
		return vals, missing, vcfmodel.KindInt32
	case vcfmodel.ScalarChar:
		vals, missing = make([]int64, len(s)), make([]bool, len(s))
		for i, x := range s {
			vals[i], missing[i] = int64(x), x == vcfmodel.MissingChar
		}
		return vals, missing, vcfmodel.KindChar
	}
	return nil, nil, 0
}

// vectorToInt64 is scalarToInt64's per-sample-vector counterpart.
func vectorToInt64(v vcfmodel.GTValue) (vals [][]int64, missing [][]bool, kind vcfmodel.Kind) {
	switch s := v.(type) {
	case vcfmodel.VectorInt8:
		vals, missing = make([][]int64, len(s)), make([][]bool, len(s))
		for i, inner := range s {
			vv, mm := make([]int64, len(inner)), make([]bool, len(inner))
			for j, x := range inner {
				vv[j], mm[j] = int64(x), x == vcfmodel.MissingInt8
			}
			vals[i], missing[i] = vv, mm
		}
		return vals, missing, vcfmodel.KindInt8
	case vcfmodel.VectorInt16:
		vals, missing = make([][]int64, len(s)), make([][]bool, len(s))
		for i, inner := range s {
			vv, mm := make([]int64, len(inner)), make([]bool, len(inner))
			for j, x := range inner {
				vv[j], mm[j] = int64(x), x == vcfmodel.MissingInt16
			}
			vals[i], missing[i] = vv, mm
		}
		return vals, missing, vcfmodel.KindInt16
	case vcfmodel.VectorInt32:
		vals, missing = make([][]int64, len(s)), make([][]bool, len(s))
		for i, inner := range s {
			vv, mm := make([]int64, len(inner)), make([]bool, len(inner))
			for j, x := range inner {
				vv[j], mm[j] = int64(x), x == vcfmodel.MissingInt32
			}
			vals[i], missing[i] = vv, mm
		}
		return vals, missing, vcfmodel.KindInt32
	}
	return nil, nil, 0
}

// innerLengths reports each sample's inner vector length without doing a
// full int64 conversion; used to probe for the flat-concat fast path.
func innerLengths(v vcfmodel.GTValue) []int {
	switch s := v.(type) {
	case vcfmodel.VectorInt8:
		out := make([]int, len(s))
		for i, inner := range s {
			out[i] = len(inner)
		}
		return out
	case vcfmodel.VectorInt16:
		out := make([]int, len(s))
		for i, inner := range s {
			out[i] = len(inner)
		}
		return out
	case vcfmodel.VectorInt32:
		out := make([]int, len(s))
		for i, inner := range s {
			out[i] = len(inner)
		}
		return out
	case vcfmodel.VectorFloat32:
		out := make([]int, len(s))
		for i, inner := range s {
			out[i] = len(inner)
		}
		return out
	}
	return nil
}

func allInnerLengthsMatch(last, cur vcfmodel.GTValue) bool {
	a, b := innerLengths(last), innerLengths(cur)
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

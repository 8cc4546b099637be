package gt

import (
	"math"

	"github.com/inodb/bcfdelta/internal/vcfmodel"
)

func fitsInt8(vals []int64, missing []bool) bool {
	for i, v := range vals {
		if missing[i] {
			continue
		}
		if v <= int64(math.MinInt8) || v > int64(math.MaxInt8) {
			return false
		}
	}
	return true
}

func fitsInt16(vals []int64, missing []bool) bool {
	for i, v := range vals {
		if missing[i] {
			continue
		}
		if v <= int64(math.MinInt16) || v > int64(math.MaxInt16) {
			return false
		}
	}
	return true
}

func fitsInt8Vec(vals [][]int64, missing [][]bool) bool {
	for i := range vals {
		if !fitsInt8(vals[i], missing[i]) {
			return false
		}
	}
	return true
}

func fitsInt16Vec(vals [][]int64, missing [][]bool) bool {
	for i := range vals {
		if !fitsInt16(vals[i], missing[i]) {
			return false
		}
	}
	return true
}

func materializeScalarInt32(vals []int64, missing []bool) vcfmodel.GTValue {
	out := make(vcfmodel.ScalarInt32, len(vals))
	for i, v := range vals {
		if missing[i] {
			out[i] = vcfmodel.MissingInt32
		} else {
			out[i] = int32(v)
		}
	}
	return out
}

func materializeVectorInt32(vals [][]int64, missing [][]bool) vcfmodel.GTValue {
	out := make(vcfmodel.VectorInt32, len(vals))
	for i := range vals {
		inner := make([]int32, len(vals[i]))
		for j, v := range vals[i] {
			if missing[i][j] {
				inner[j] = vcfmodel.MissingInt32
			} else {
				inner[j] = int32(v)
			}
		}
		out[i] = inner
	}
	return out
}

// materializeScalar picks the narrowest integral width that holds every
// computed value, promoting to int32 on overflow (encode) or unconditionally
// when the source was already narrow (decode, mirroring the original's
// always-promote-before-add rule for int8/int16 payloads).
func materializeScalar(op Op, srcKind vcfmodel.Kind, vals []int64, missing []bool) vcfmodel.GTValue {
	if op == OpUndelta || srcKind == vcfmodel.KindInt32 {
		return materializeScalarInt32(vals, missing)
	}
	switch srcKind {
	case vcfmodel.KindInt8:
		if fitsInt8(vals, missing) {
			out := make(vcfmodel.ScalarInt8, len(vals))
			for i, v := range vals {
				if missing[i] {
					out[i] = vcfmodel.MissingInt8
				} else {
					out[i] = int8(v)
				}
			}
			return out
		}
		return materializeScalarInt32(vals, missing)
	case vcfmodel.KindInt16:
		if fitsInt16(vals, missing) {
			out := make(vcfmodel.ScalarInt16, len(vals))
			for i, v := range vals {
				if missing[i] {
					out[i] = vcfmodel.MissingInt16
				} else {
					out[i] = int16(v)
				}
			}
			return out
		}
		return materializeScalarInt32(vals, missing)
	default:
		return materializeScalarInt32(vals, missing)
	}
}

func materializeVector(op Op, srcKind vcfmodel.Kind, vals [][]int64, missing [][]bool) vcfmodel.GTValue {
	if op == OpUndelta || srcKind == vcfmodel.KindInt32 {
		return materializeVectorInt32(vals, missing)
	}
	switch srcKind {
	case vcfmodel.KindInt8:
		if fitsInt8Vec(vals, missing) {
			out := make(vcfmodel.VectorInt8, len(vals))
			for i := range vals {
				inner := make([]int8, len(vals[i]))
				for j, v := range vals[i] {
					if missing[i][j] {
						inner[j] = vcfmodel.MissingInt8
					} else {
						inner[j] = int8(v)
					}
				}
				out[i] = inner
			}
			return out
		}
		return materializeVectorInt32(vals, missing)
	case vcfmodel.KindInt16:
		if fitsInt16Vec(vals, missing) {
			out := make(vcfmodel.VectorInt16, len(vals))
			for i := range vals {
				inner := make([]int16, len(vals[i]))
				for j, v := range vals[i] {
					if missing[i][j] {
						inner[j] = vcfmodel.MissingInt16
					} else {
						inner[j] = int16(v)
					}
				}
				out[i] = inner
			}
			return out
		}
		return materializeVectorInt32(vals, missing)
	default:
		return materializeVectorInt32(vals, missing)
	}
}

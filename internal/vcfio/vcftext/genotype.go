package vcftext

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/inodb/bcfdelta/internal/vcfmodel"
)

func dimOf(number vcfmodel.NumberTag) vcfmodel.Dim {
	if number.Kind == vcfmodel.NumberKindFixed && number.N == 1 {
		return vcfmodel.DimScalar
	}
	return vcfmodel.DimVector
}

// decodeFieldValues converts one FORMAT field's raw per-sample text (sub-
// values already split out of the colon-delimited sample column, but not
// yet split on comma) into a GTValue, per the field's declared Type and
// Number. Integer fields pick the narrowest int8/int16/int32 width that
// holds every non-missing value in the record, mirroring how a VCF->BCF
// conversion chooses a width that the text format itself doesn't carry.
func decodeFieldValues(typ vcfmodel.FieldType, number vcfmodel.NumberTag, numSamples int, raw []string) (vcfmodel.GTValue, error) {
	dim := dimOf(number)
	switch typ {
	case vcfmodel.TypeString:
		return decodeStringField(dim, numSamples, raw)
	case vcfmodel.TypeChar:
		return decodeCharField(dim, numSamples, raw)
	case vcfmodel.TypeFloat:
		return decodeFloatField(dim, numSamples, raw)
	default:
		return decodeIntField(dim, numSamples, raw)
	}
}

func decodeStringField(dim vcfmodel.Dim, numSamples int, raw []string) (vcfmodel.GTValue, error) {
	if dim == vcfmodel.DimScalar {
		out := make(vcfmodel.ScalarString, numSamples)
		copy(out, raw)
		return out, nil
	}
	out := make(vcfmodel.VectorString, numSamples)
	for i, r := range raw {
		if r == "." {
			continue
		}
		out[i] = strings.Split(r, ",")
	}
	return out, nil
}

// decodeCharField only handles Number=1 Character fields: VectorChar is
// out of scope, so a multi-valued Character field is rejected rather than
// silently truncated to its first value.
func decodeCharField(dim vcfmodel.Dim, numSamples int, raw []string) (vcfmodel.GTValue, error) {
	if dim != vcfmodel.DimScalar {
		return nil, fmt.Errorf("vcftext: multi-valued Character fields are not supported")
	}
	out := make(vcfmodel.ScalarChar, numSamples)
	for i, r := range raw {
		if r == "." || r == "" {
			out[i] = vcfmodel.MissingChar
		} else if strings.Contains(r, ",") {
			return nil, fmt.Errorf("vcftext: multi-valued Character fields are not supported")
		} else {
			out[i] = r[0]
		}
	}
	return out, nil
}

func decodeIntField(dim vcfmodel.Dim, numSamples int, raw []string) (vcfmodel.GTValue, error) {
	vals := make([][]int64, numSamples)
	missing := make([][]bool, numSamples)
	for i, r := range raw {
		if r == "." {
			vals[i], missing[i] = []int64{0}, []bool{true}
			continue
		}
		parts := strings.Split(r, ",")
		vv, mm := make([]int64, len(parts)), make([]bool, len(parts))
		for j, p := range parts {
			if p == "." {
				mm[j] = true
				continue
			}
			n, err := strconv.ParseInt(p, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("vcftext: invalid integer %q: %w", p, err)
			}
			vv[j] = n
		}
		vals[i], missing[i] = vv, mm
	}

	switch narrowestIntWidth(vals, missing) {
	case 8:
		return materializeInt8(dim, vals, missing), nil
	case 16:
		return materializeInt16(dim, vals, missing), nil
	default:
		return materializeInt32(dim, vals, missing), nil
	}
}

func narrowestIntWidth(vals [][]int64, missing [][]bool) int {
	fits8, fits16 := true, true
	for i := range vals {
		for j, v := range vals[i] {
			if missing[i][j] {
				continue
			}
			if v <= math.MinInt8 || v > math.MaxInt8 {
				fits8 = false
			}
			if v <= math.MinInt16 || v > math.MaxInt16 {
				fits16 = false
			}
		}
	}
	if fits8 {
		return 8
	}
	if fits16 {
		return 16
	}
	return 32
}

func materializeInt8(dim vcfmodel.Dim, vals [][]int64, missing [][]bool) vcfmodel.GTValue {
	if dim == vcfmodel.DimScalar {
		out := make(vcfmodel.ScalarInt8, len(vals))
		for i := range vals {
			if missing[i][0] {
				out[i] = vcfmodel.MissingInt8
			} else {
				out[i] = int8(vals[i][0])
			}
		}
		return out
	}
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

func materializeInt16(dim vcfmodel.Dim, vals [][]int64, missing [][]bool) vcfmodel.GTValue {
	if dim == vcfmodel.DimScalar {
		out := make(vcfmodel.ScalarInt16, len(vals))
		for i := range vals {
			if missing[i][0] {
				out[i] = vcfmodel.MissingInt16
			} else {
				out[i] = int16(vals[i][0])
			}
		}
		return out
	}
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

func materializeInt32(dim vcfmodel.Dim, vals [][]int64, missing [][]bool) vcfmodel.GTValue {
	if dim == vcfmodel.DimScalar {
		out := make(vcfmodel.ScalarInt32, len(vals))
		for i := range vals {
			if missing[i][0] {
				out[i] = vcfmodel.MissingInt32
			} else {
				out[i] = int32(vals[i][0])
			}
		}
		return out
	}
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

func decodeFloatField(dim vcfmodel.Dim, numSamples int, raw []string) (vcfmodel.GTValue, error) {
	if dim == vcfmodel.DimScalar {
		out := make(vcfmodel.ScalarFloat32, numSamples)
		for i, r := range raw {
			if r == "." {
				out[i] = vcfmodel.MissingFloat32()
				continue
			}
			f, err := strconv.ParseFloat(r, 32)
			if err != nil {
				return nil, fmt.Errorf("vcftext: invalid float %q: %w", r, err)
			}
			out[i] = float32(f)
		}
		return out, nil
	}
	out := make(vcfmodel.VectorFloat32, numSamples)
	for i, r := range raw {
		if r == "." {
			out[i] = []float32{vcfmodel.MissingFloat32()}
			continue
		}
		parts := strings.Split(r, ",")
		inner := make([]float32, len(parts))
		for j, p := range parts {
			if p == "." {
				inner[j] = vcfmodel.MissingFloat32()
				continue
			}
			f, err := strconv.ParseFloat(p, 32)
			if err != nil {
				return nil, fmt.Errorf("vcftext: invalid float %q: %w", p, err)
			}
			inner[j] = float32(f)
		}
		out[i] = inner
	}
	return out, nil
}

// encodeFieldValues is decodeFieldValues' inverse: it renders a GTValue
// back into one raw (not-yet-colon-joined) string per sample.
func encodeFieldValues(v vcfmodel.GTValue) []string {
	switch s := v.(type) {
	case vcfmodel.ScalarInt8:
		out := make([]string, len(s))
		for i, x := range s {
			out[i] = formatInt(int64(x), x == vcfmodel.MissingInt8)
		}
		return out
	case vcfmodel.ScalarInt16:
		out := make([]string, len(s))
		for i, x := range s {
			out[i] = formatInt(int64(x), x == vcfmodel.MissingInt16)
		}
		return out
	case vcfmodel.ScalarInt32:
		out := make([]string, len(s))
		for i, x := range s {
			out[i] = formatInt(int64(x), x == vcfmodel.MissingInt32)
		}
		return out
	case vcfmodel.ScalarFloat32:
		out := make([]string, len(s))
		for i, x := range s {
			out[i] = formatFloat(x)
		}
		return out
	case vcfmodel.ScalarChar:
		out := make([]string, len(s))
		for i, x := range s {
			if x == vcfmodel.MissingChar {
				out[i] = "."
			} else {
				out[i] = string(x)
			}
		}
		return out
	case vcfmodel.ScalarString:
		out := make([]string, len(s))
		copy(out, s)
		return out
	case vcfmodel.VectorInt8:
		out := make([]string, len(s))
		for i, inner := range s {
			parts := make([]string, len(inner))
			for j, x := range inner {
				parts[j] = formatInt(int64(x), x == vcfmodel.MissingInt8)
			}
			out[i] = joinOrDot(parts)
		}
		return out
	case vcfmodel.VectorInt16:
		out := make([]string, len(s))
		for i, inner := range s {
			parts := make([]string, len(inner))
			for j, x := range inner {
				parts[j] = formatInt(int64(x), x == vcfmodel.MissingInt16)
			}
			out[i] = joinOrDot(parts)
		}
		return out
	case vcfmodel.VectorInt32:
		out := make([]string, len(s))
		for i, inner := range s {
			parts := make([]string, len(inner))
			for j, x := range inner {
				parts[j] = formatInt(int64(x), x == vcfmodel.MissingInt32)
			}
			out[i] = joinOrDot(parts)
		}
		return out
	case vcfmodel.VectorFloat32:
		out := make([]string, len(s))
		for i, inner := range s {
			parts := make([]string, len(inner))
			for j, x := range inner {
				parts[j] = formatFloat(x)
			}
			out[i] = joinOrDot(parts)
		}
		return out
	case vcfmodel.VectorString:
		out := make([]string, len(s))
		for i, inner := range s {
			out[i] = joinOrDot(inner)
		}
		return out
	}
	return nil
}

func formatInt(v int64, missing bool) string {
	if missing {
		return "."
	}
	return strconv.FormatInt(v, 10)
}

func formatFloat(f float32) string {
	if vcfmodel.IsMissingFloat32(f) {
		return "."
	}
	return strconv.FormatFloat(float64(f), 'g', -1, 32)
}

func joinOrDot(parts []string) string {
	if len(parts) == 0 {
		return "."
	}
	return strings.Join(parts, ",")
}

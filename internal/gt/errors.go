// Package gt implements the genotype transformation engine: the
// Number-tag interpreter, the delta/XOR kernels, width promotion, and the
// AD/PL field-split pre-pass used to make adjacent VCF/BCF records share
// long runs of equal or near-zero bytes.
package gt

import "fmt"

// IncompatibleTypesError reports that two records' corresponding genotype
// fields have incompatible element categories or dimensionalities.
type IncompatibleTypesError struct {
	FieldID string
	Last    string // Kind/Dim description of the anchor's cell
	Cur     string // Kind/Dim description of the current cell
}

func (e *IncompatibleTypesError) Error() string {
	return fmt.Sprintf("field %s: incompatible types between records (last=%s, cur=%s)", e.FieldID, e.Last, e.Cur)
}

// DimensionMismatchError reports that an inner vector length disagrees
// with what (Number, n_alts) requires. Fatal unless skip-problematic is
// set, in which case the offending sample is left untouched instead.
type DimensionMismatchError struct {
	FieldID  string
	Sample   int
	Which    string // "last" or "cur"
	Expected int
	Actual   int
}

func (e *DimensionMismatchError) Error() string {
	return fmt.Sprintf("field %s, sample %d: %s range size %d, expected %d",
		e.FieldID, e.Sample, e.Which, e.Actual, e.Expected)
}

// ShapeAssertionError reports that an outer sequence length did not equal
// the header's declared sample count.
type ShapeAssertionError struct {
	FieldID  string
	Expected int
	Actual   int
}

func (e *ShapeAssertionError) Error() string {
	return fmt.Sprintf("field %s: outer length %d does not match sample count %d", e.FieldID, e.Actual, e.Expected)
}

// UnsupportedError reports a payload shape the engine does not implement,
// e.g. a vector-of-strings genotype value.
type UnsupportedError struct {
	FieldID string
	Reason  string
}

func (e *UnsupportedError) Error() string {
	return fmt.Sprintf("field %s: unsupported payload: %s", e.FieldID, e.Reason)
}

// HeaderConflictError reports that encode found pre-existing DELTA_* info
// definitions, or that decode is missing them.
type HeaderConflictError struct {
	Reason string
}

func (e *HeaderConflictError) Error() string {
	return fmt.Sprintf("header conflict: %s", e.Reason)
}

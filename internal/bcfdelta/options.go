package bcfdelta

// EncodeOptions configures an Encode run.
type EncodeOptions struct {
	Input  string
	Output string

	// DeltaCompress enables the delta/XOR genotype transform. Defaults to
	// true at the CLI layer: the original tool compresses by default and
	// exposes this as an opt-out.
	DeltaCompress bool
	// SplitFields enables the AD/PL field-split pre-pass before
	// delta-compression.
	SplitFields bool

	CompressInts   bool
	CompressFloats bool
	CompressChars  bool

	// SkipProblematic leaves a sample's field untouched instead of
	// failing the whole record when a dimension mismatch is found.
	SkipProblematic bool

	// RefFreq is the anchor bucket width: pos/RefFreq changing (or the
	// chromosome changing) on a bi-allelic record triggers a new anchor.
	RefFreq int64

	// Threads sizes the reader/writer parse-format worker pools. <= 0
	// defaults to runtime.NumCPU().
	Threads int
}

// DecodeOptions configures a Decode run.
type DecodeOptions struct {
	Input  string
	Output string

	// Threads sizes the reader/writer parse-format worker pools. <= 0
	// defaults to runtime.NumCPU().
	Threads int
}

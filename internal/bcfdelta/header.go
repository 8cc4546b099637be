package bcfdelta

import (
	"fmt"

	"github.com/inodb/bcfdelta/internal/gt"
	"github.com/inodb/bcfdelta/internal/vcfmodel"
)

const (
	infoDeltaComp = "DELTA_COMP"
	infoDeltaRef  = "DELTA_REF"
	otherFieldKey = "Encoding"
	otherFieldVal = "Delta"
)

// EncodeHeader mutates a cloned copy of in for encode output: it adds the
// DELTA_REF/DELTA_COMP INFO flags, tags every FORMAT field that will be
// delta-compressed with Encoding=Delta, and (if opts.SplitFields) adds
// the five split-field FORMAT definitions. It fails fast if the input
// already looks delta-compressed.
func EncodeHeader(in *vcfmodel.Header, opts EncodeOptions) (*vcfmodel.Header, error) {
	if in.HasInfo(infoDeltaComp) || in.HasInfo(infoDeltaRef) {
		return nil, &gt.HeaderConflictError{Reason: "input file is already delta-compressed"}
	}

	out := in.Clone()

	if opts.SplitFields {
		out.Formats = append(out.Formats, splitFieldDefs()...)
	}

	if opts.DeltaCompress {
		out.Infos = append(out.Infos,
			vcfmodel.InfoDef{
				ID:          infoDeltaComp,
				Number:      vcfmodel.Fixed(0),
				Type:        vcfmodel.TypeFlag,
				Description: "Records with this flag have delta-compressed fields.",
			},
			vcfmodel.InfoDef{
				ID:          infoDeltaRef,
				Number:      vcfmodel.Fixed(0),
				Type:        vcfmodel.TypeFlag,
				Description: "This record is an anchor for subsequent compressed records.",
			},
		)

		for i := range out.Formats {
			if shouldCompress(out.Formats[i].Type, opts) {
				if out.Formats[i].OtherFields == nil {
					out.Formats[i].OtherFields = vcfmodel.NewOrderedStringMap()
				}
				out.Formats[i].OtherFields.Set(otherFieldKey, otherFieldVal)
			}
		}
	}

	out.IndexInfo()
	out.IndexFormat()
	return out, nil
}

func shouldCompress(typ vcfmodel.FieldType, opts EncodeOptions) bool {
	switch typ {
	case vcfmodel.TypeChar:
		return opts.CompressChars
	case vcfmodel.TypeFloat:
		return opts.CompressFloats
	case vcfmodel.TypeString:
		return false
	default: // Integer
		return opts.CompressInts
	}
}

// DecodeHeader mutates a cloned copy of in for decode output: it strips
// the DELTA_REF/DELTA_COMP INFO flags, every Encoding=Delta tag, and (the
// mirror of EncodeHeader's splitFieldDefs) the five split-field FORMAT
// definitions, since the decode driver unsplits AD_REF/AD_ALT/PL1/PL2/PL3
// back into AD/PL before it ever writes a record. It fails fast if the
// input does not look delta-compressed.
func DecodeHeader(in *vcfmodel.Header) (*vcfmodel.Header, error) {
	if !in.HasInfo(infoDeltaComp) || !in.HasInfo(infoDeltaRef) {
		return nil, &gt.HeaderConflictError{Reason: "input file does not look delta-compressed"}
	}

	out := in.Clone()

	keepInfos := out.Infos[:0]
	for _, info := range out.Infos {
		if info.ID != infoDeltaComp && info.ID != infoDeltaRef {
			keepInfos = append(keepInfos, info)
		}
	}
	out.Infos = keepInfos

	keepFormats := out.Formats[:0]
	for _, format := range out.Formats {
		if isSplitFieldID(format.ID) {
			continue
		}
		if format.OtherFields != nil {
			format.OtherFields.Delete(otherFieldKey)
		}
		keepFormats = append(keepFormats, format)
	}
	out.Formats = keepFormats

	out.IndexInfo()
	out.IndexFormat()
	return out, nil
}

// isSplitFieldID reports whether id is one of the five FORMAT definitions
// splitFieldDefs adds on encode.
func isSplitFieldID(id string) bool {
	switch id {
	case "AD_REF", "AD_ALT", "PL1", "PL2", "PL3":
		return true
	default:
		return false
	}
}

// splitFieldDefs returns the five FORMAT definitions added when
// --split-fields is set: AD_REF/AD_ALT (replacing AD) and PL1/PL2/PL3
// (replacing PL).
func splitFieldDefs() []vcfmodel.FormatDef {
	return []vcfmodel.FormatDef{
		{
			ID:          "AD_ALT",
			Number:      vcfmodel.A,
			Type:        vcfmodel.TypeInteger,
			Description: "ALT entries of AD field.",
		},
		{
			ID:          "AD_REF",
			Number:      vcfmodel.Fixed(1),
			Type:        vcfmodel.TypeInteger,
			Description: "REF entry of AD field.",
		},
		{
			ID:          "PL1",
			Number:      vcfmodel.Fixed(1),
			Type:        vcfmodel.TypeInteger,
			Description: "PL value for 00.",
		},
		{
			ID:          "PL2",
			Number:      vcfmodel.A,
			Type:        vcfmodel.TypeInteger,
			Description: "PL values for ab where a == 0 and b >= 1.",
		},
		{
			ID:          "PL3",
			Number:      vcfmodel.Dot,
			Type:        vcfmodel.TypeInteger,
			Description: "PL values for ab where a >= 1 and b >= 1.",
		},
	}
}

// isDeltaEncoded reports whether a FORMAT definition is tagged for
// delta/XOR compression.
func isDeltaEncoded(def *vcfmodel.FormatDef) bool {
	if def.OtherFields == nil {
		return false
	}
	v, ok := def.OtherFields.Get(otherFieldKey)
	return ok && v == otherFieldVal
}

var errNoSuchFormat = fmt.Errorf("bcfdelta: FORMAT field not found in header")

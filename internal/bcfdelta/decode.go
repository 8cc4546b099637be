package bcfdelta

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/inodb/bcfdelta/internal/gt"
	"github.com/inodb/bcfdelta/internal/vcfio"
	"github.com/inodb/bcfdelta/internal/vcfmodel"
	"go.uber.org/zap"
)

// Decode reverses Encode: it reads opts.Input, undoes the delta/XOR
// genotype transform and the AD/PL field split, and writes the result to
// opts.Output. It fails fast if the input does not look delta-compressed.
func Decode(ctx context.Context, opts DecodeOptions) error {
	in, err := vcfio.OpenReader(opts.Input, vcfio.FramingBGZF)
	if err != nil {
		return fmt.Errorf("bcfdelta: open input: %w", err)
	}
	defer in.Close()
	vcfio.SetWorkers(in, opts.Threads)

	header, err := in.ReadHeader()
	if err != nil {
		return fmt.Errorf("bcfdelta: read header: %w", err)
	}

	outHeader, err := DecodeHeader(header)
	if err != nil {
		return err
	}

	out, err := vcfio.CreateWriter(opts.Output, vcfio.FramingBGZF)
	if err != nil {
		return fmt.Errorf("bcfdelta: open output: %w", err)
	}
	defer out.Close()
	vcfio.SetWorkers(out, opts.Threads)

	if err := out.WriteHeader(outHeader); err != nil {
		return fmt.Errorf("bcfdelta: write header: %w", err)
	}

	// lastRef holds the most recently decoded biallelic record, still in
	// its split (pre-Unsplit) form and with the delta/XOR transform
	// already undone — the same baseline Encode paired it against.
	var lastRef *vcfmodel.Record

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		rec, err := in.ReadRecord()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return fmt.Errorf("bcfdelta: read record: %w", err)
		}

		isRef, needsDecomp := inspectDeltaFlags(rec)
		rec.RemoveInfo(infoDeltaRef)
		rec.RemoveInfo(infoDeltaComp)

		if needsDecomp && lastRef != nil {
			if err := undeltaAgainstRef(header, lastRef, rec, opts); err != nil {
				return fmt.Errorf("bcfdelta: decode record at %s:%d: %w", rec.Chrom, rec.Pos, err)
			}
		}

		toWrite := rec
		if isRef {
			toWrite = rec.Clone()
		}
		if err := gt.Unsplit(toWrite, toWrite.NAlts()); err != nil {
			return fmt.Errorf("bcfdelta: unsplit record at %s:%d: %w", toWrite.Chrom, toWrite.Pos, err)
		}

		if err := out.WriteRecord(toWrite); err != nil {
			return fmt.Errorf("bcfdelta: write record: %w", err)
		}

		if isRef {
			logger.Debug("reference transition", zap.String("chrom", rec.Chrom), zap.Int64("pos", rec.Pos))
			lastRef = rec
		}
	}

	return nil
}

// inspectDeltaFlags reports whether rec carries the DELTA_REF/DELTA_COMP
// bookkeeping flags. A multi-allelic DELTA_COMP record never becomes the
// next reference (mirroring the encode side's anchor gate), but a
// bi-allelic DELTA_COMP record does, once decompressed — it's just as
// valid a delta baseline as an explicit anchor.
func inspectDeltaFlags(rec *vcfmodel.Record) (isRef, needsDecomp bool) {
	for _, info := range rec.Info {
		switch info.ID {
		case infoDeltaRef:
			isRef = true
		case infoDeltaComp:
			needsDecomp = true
			if rec.Biallelic() {
				isRef = true
			}
		}
	}
	return isRef, needsDecomp
}

// undeltaAgainstRef reverses the delta/XOR kernel for every genotype
// field on cur that the (pre-decode) header tags Encoding=Delta, pairing
// against ref's matching field.
func undeltaAgainstRef(header *vcfmodel.Header, ref, cur *vcfmodel.Record, opts DecodeOptions) error {
	for i := range cur.Genotypes {
		g := &cur.Genotypes[i]
		def := header.FormatByID(g.ID)
		if def == nil {
			return fmt.Errorf("%w: %s", errNoSuchFormat, g.ID)
		}
		if !isDeltaEncoded(def) {
			continue
		}
		rIdx := ref.GenotypeIndex(g.ID)
		if rIdx < 0 {
			continue
		}
		val, err := gt.Apply(gt.OpUndelta, ref.Genotypes[rIdx].Value, g.Value, g.ID, def.Number, cur.NAlts(), true)
		if err != nil {
			logger.Warn("skipping problematic field", zap.String("field", g.ID), zap.Error(err))
			continue
		}
		g.Value = val
	}
	return nil
}

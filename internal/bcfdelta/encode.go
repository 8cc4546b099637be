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

// DefaultRefFreq is the anchor bucket width used when EncodeOptions.RefFreq
// is unset.
const DefaultRefFreq = 10000

// Encode reads opts.Input, delta/XOR-transforms its genotype payloads, and
// writes the result to opts.Output. It fails fast if the input already
// looks delta-compressed.
func Encode(ctx context.Context, opts EncodeOptions) error {
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

	outHeader, err := EncodeHeader(header, opts)
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

	refFreq := opts.RefFreq
	if refFreq <= 0 {
		refFreq = DefaultRefFreq
	}
	anchorSel := NewAnchorSelector(refFreq)

	var splitBuf gt.Buffers
	// lastRef holds the most recently written bi-allelic record's raw
	// (split, pre-delta) genotype values — the baseline the next
	// delta-compressed record pairs against. It's updated after every
	// bi-allelic record, whether that record was itself an anchor or was
	// delta-compressed against the previous baseline: a delta-compressed
	// record is just as valid a baseline as an anchor, once its raw
	// values are known.
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

		if opts.SplitFields {
			if err := gt.Split(rec, rec.NAlts(), &splitBuf); err != nil {
				return fmt.Errorf("bcfdelta: split record at %s:%d: %w", rec.Chrom, rec.Pos, err)
			}
		}

		isAnchor := false
		var raw *vcfmodel.Record
		if opts.DeltaCompress {
			isAnchor = anchorSel.Decide(rec.Chrom, rec.Pos, rec.NAlts())
			if isAnchor {
				logger.Debug("anchor transition", zap.String("chrom", rec.Chrom), zap.Int64("pos", rec.Pos))
				rec.SetInfoFlag(infoDeltaRef)
				anchorSel.Advance(rec.Chrom, rec.Pos)
			} else if lastRef != nil {
				// Snapshot the raw values before deltaAgainstAnchor
				// overwrites rec's genotype fields in place — gt.Apply
				// never mutates in place, so the clone's field slots
				// keep pointing at the pre-delta values even after
				// rec's own slots are reassigned.
				raw = rec.Clone()
				if err := deltaAgainstAnchor(outHeader, lastRef, rec, opts); err != nil {
					return fmt.Errorf("bcfdelta: encode record at %s:%d: %w", rec.Chrom, rec.Pos, err)
				}
				rec.SetInfoFlag(infoDeltaComp)
			}
		}

		if err := out.WriteRecord(rec); err != nil {
			return fmt.Errorf("bcfdelta: write record: %w", err)
		}

		if opts.DeltaCompress && rec.Biallelic() {
			if isAnchor {
				lastRef = rec
			} else if raw != nil {
				lastRef = raw
			}
		}
	}

	return nil
}

// deltaAgainstAnchor applies the delta/XOR kernel to every genotype field
// on cur that the header tags Encoding=Delta, pairing against ref's
// matching field.
func deltaAgainstAnchor(header *vcfmodel.Header, ref, cur *vcfmodel.Record, opts EncodeOptions) error {
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
		val, err := gt.Apply(gt.OpDelta, ref.Genotypes[rIdx].Value, g.Value, g.ID, def.Number, cur.NAlts(), opts.SkipProblematic)
		if err != nil {
			if opts.SkipProblematic {
				logger.Warn("skipping problematic field", zap.String("field", g.ID), zap.Error(err))
				continue
			}
			return err
		}
		g.Value = val
	}
	return nil
}

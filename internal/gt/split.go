package gt

import "github.com/inodb/bcfdelta/internal/vcfmodel"

// Buffers holds the reusable backing storage for the AD/PL split pre-pass.
// Split takes its split-field storage from these buffers, and Salvage
// reclaims a record's split-field storage into them after the caller is
// done with it, so a long run over many records doesn't allocate a fresh
// AD_ALT/PL2/PL3 vector-of-vectors per record.
type Buffers struct {
	adRef []int32
	adAlt [][]int32
	pl1   []int32
	pl2   [][]int32
	pl3   [][]int32
}

func (b *Buffers) takeAdRef(n int) vcfmodel.ScalarInt32 {
	buf := b.adRef
	b.adRef = nil
	return growScalar32(buf, n)
}

func (b *Buffers) takeAdAlt(n int) vcfmodel.VectorInt32 {
	buf := b.adAlt
	b.adAlt = nil
	return growVector32(buf, n)
}

func (b *Buffers) takePl1(n int) vcfmodel.ScalarInt32 {
	buf := b.pl1
	b.pl1 = nil
	return growScalar32(buf, n)
}

func (b *Buffers) takePl2(n int) vcfmodel.VectorInt32 {
	buf := b.pl2
	b.pl2 = nil
	return growVector32(buf, n)
}

func (b *Buffers) takePl3(n int) vcfmodel.VectorInt32 {
	buf := b.pl3
	b.pl3 = nil
	return growVector32(buf, n)
}

func growScalar32(buf []int32, n int) vcfmodel.ScalarInt32 {
	if cap(buf) >= n {
		return buf[:0]
	}
	return make(vcfmodel.ScalarInt32, 0, n)
}

func growVector32(buf [][]int32, n int) vcfmodel.VectorInt32 {
	if cap(buf) >= n {
		return buf[:0]
	}
	return make(vcfmodel.VectorInt32, 0, n)
}

// Salvage reclaims the underlying storage of any AD_REF/AD_ALT/PL1/PL2/PL3
// genotype fields present on record into b, so the next call to Split
// can reuse the allocations instead of growing fresh ones.
func (b *Buffers) Salvage(record *vcfmodel.Record) {
	for _, g := range record.Genotypes {
		switch g.ID {
		case "AD_REF":
			if v, ok := g.Value.(vcfmodel.ScalarInt32); ok {
				b.adRef = []int32(v)[:0]
			}
		case "AD_ALT":
			if v, ok := g.Value.(vcfmodel.VectorInt32); ok {
				b.adAlt = [][]int32(v)[:0]
			}
		case "PL1":
			if v, ok := g.Value.(vcfmodel.ScalarInt32); ok {
				b.pl1 = []int32(v)[:0]
			}
		case "PL2":
			if v, ok := g.Value.(vcfmodel.VectorInt32); ok {
				b.pl2 = [][]int32(v)[:0]
			}
		case "PL3":
			if v, ok := g.Value.(vcfmodel.VectorInt32); ok {
				b.pl3 = [][]int32(v)[:0]
			}
		}
	}
}

// Split rewrites an AD field into AD_REF (scalar) + AD_ALT (vector, one
// entry per ALT) and a PL field into PL1 (scalar), PL2 (vector, one entry
// per ALT) and PL3 (vector, the remaining pairwise likelihoods), per
// formulaG's genotype index ordering. A field is left untouched if any
// sample's inner vector length doesn't match what n_alts predicts, except
// for AD's "REF-only" shorthand (inner length 1) and PL's "no call"
// shorthand (inner length 0), both of which are accommodated explicitly.
func Split(record *vcfmodel.Record, nAlts int, b *Buffers) error {
	if i := record.GenotypeIndex("AD"); i >= 0 {
		if err := splitAD(record, i, nAlts, b); err != nil {
			return err
		}
	}
	if i := record.GenotypeIndex("PL"); i >= 0 {
		if err := splitPL(record, i, nAlts, b); err != nil {
			return err
		}
	}
	return nil
}

func splitAD(record *vcfmodel.Record, idx, nAlts int, b *Buffers) error {
	src, ok := record.Genotypes[idx].Value.(vcfmodel.VectorInt32)
	if !ok {
		return &IncompatibleTypesError{FieldID: "AD", Last: "Number=R vector of Integer", Cur: describe(record.Genotypes[idx].Value)}
	}
	adSize := nAlts + 1

	adRef := b.takeAdRef(len(src))
	adAlt := b.takeAdAlt(len(src))
	for _, inner := range src {
		switch {
		case len(inner) == 1:
			adRef = append(adRef, inner[0])
			adAlt = append(adAlt, nil)
		case len(inner) == adSize:
			adRef = append(adRef, inner[0])
			adAlt = append(adAlt, append([]int32(nil), inner[1:]...))
		default:
			return nil // abandon: leave AD as-is
		}
	}

	record.Genotypes = append(record.Genotypes[:idx], record.Genotypes[idx+1:]...)
	record.Genotypes = append(record.Genotypes, vcfmodel.GenotypeField{ID: "AD_REF", Value: adRef})
	record.Genotypes = append(record.Genotypes, vcfmodel.GenotypeField{ID: "AD_ALT", Value: adAlt})
	return nil
}

func splitPL(record *vcfmodel.Record, idx, nAlts int, b *Buffers) error {
	src, ok := record.Genotypes[idx].Value.(vcfmodel.VectorInt32)
	if !ok {
		return &IncompatibleTypesError{FieldID: "PL", Last: "Number=G vector of Integer", Cur: describe(record.Genotypes[idx].Value)}
	}
	plSize := vcfmodel.Tri(nAlts + 1)

	pl1 := b.takePl1(len(src))
	pl2 := b.takePl2(len(src))
	pl3 := b.takePl3(len(src))

	for _, inner := range src {
		if len(inner) != plSize {
			if len(inner) == 0 {
				pl1 = append(pl1, vcfmodel.MissingInt32)
				pl2 = append(pl2, nil)
				pl3 = append(pl3, nil)
				continue
			}
			return nil // abandon: leave PL as-is
		}

		pl1 = append(pl1, inner[vcfmodel.FormulaG(0, 0)])

		row2 := make([]int32, 0, nAlts)
		for k := 1; k <= nAlts; k++ {
			row2 = append(row2, inner[vcfmodel.FormulaG(0, k)])
		}
		pl2 = append(pl2, row2)

		row3 := make([]int32, 0, plSize-nAlts-1)
		for j := 1; j <= nAlts; j++ {
			for k := j; k <= nAlts; k++ {
				row3 = append(row3, inner[vcfmodel.FormulaG(j, k)])
			}
		}
		pl3 = append(pl3, row3)
	}

	record.Genotypes = append(record.Genotypes[:idx], record.Genotypes[idx+1:]...)
	record.Genotypes = append(record.Genotypes, vcfmodel.GenotypeField{ID: "PL1", Value: pl1})
	record.Genotypes = append(record.Genotypes, vcfmodel.GenotypeField{ID: "PL2", Value: pl2})
	record.Genotypes = append(record.Genotypes, vcfmodel.GenotypeField{ID: "PL3", Value: pl3})
	return nil
}

// Unsplit is Split's inverse, run by decode after the split fields have
// been un-delta'd: it merges AD_REF/AD_ALT back into AD and PL1/PL2/PL3
// back into PL. It is a no-op for records that don't carry the split
// fields (e.g. a run that never split in the first place).
func Unsplit(record *vcfmodel.Record, nAlts int) error {
	if err := unsplitAD(record); err != nil {
		return err
	}
	return unsplitPL(record, nAlts)
}

func unsplitAD(record *vcfmodel.Record) error {
	refIdx := record.GenotypeIndex("AD_REF")
	altIdx := record.GenotypeIndex("AD_ALT")
	if refIdx < 0 && altIdx < 0 {
		return nil
	}
	if refIdx < 0 || altIdx < 0 {
		return &HeaderConflictError{Reason: "AD_REF/AD_ALT present without its pair"}
	}
	ref, ok1 := record.Genotypes[refIdx].Value.(vcfmodel.ScalarInt32)
	alt, ok2 := record.Genotypes[altIdx].Value.(vcfmodel.VectorInt32)
	if !ok1 || !ok2 || len(ref) != len(alt) {
		return &ShapeAssertionError{FieldID: "AD_REF/AD_ALT", Expected: len(ref), Actual: len(alt)}
	}

	ad := make(vcfmodel.VectorInt32, len(ref))
	for i := range ref {
		if alt[i] == nil {
			ad[i] = []int32{ref[i]}
			continue
		}
		inner := make([]int32, 0, 1+len(alt[i]))
		inner = append(inner, ref[i])
		inner = append(inner, alt[i]...)
		ad[i] = inner
	}

	record.RemoveGenotype("AD_REF")
	record.RemoveGenotype("AD_ALT")
	record.Genotypes = append(record.Genotypes, vcfmodel.GenotypeField{ID: "AD", Value: ad})
	return nil
}

func unsplitPL(record *vcfmodel.Record, nAlts int) error {
	i1, i2, i3 := record.GenotypeIndex("PL1"), record.GenotypeIndex("PL2"), record.GenotypeIndex("PL3")
	if i1 < 0 && i2 < 0 && i3 < 0 {
		return nil
	}
	if i1 < 0 || i2 < 0 || i3 < 0 {
		return &HeaderConflictError{Reason: "PL1/PL2/PL3 present without all three"}
	}
	pl1, ok1 := record.Genotypes[i1].Value.(vcfmodel.ScalarInt32)
	pl2, ok2 := record.Genotypes[i2].Value.(vcfmodel.VectorInt32)
	pl3, ok3 := record.Genotypes[i3].Value.(vcfmodel.VectorInt32)
	if !ok1 || !ok2 || !ok3 || len(pl1) != len(pl2) || len(pl1) != len(pl3) {
		return &ShapeAssertionError{FieldID: "PL1/PL2/PL3", Expected: len(pl1), Actual: len(pl2)}
	}

	plSize := vcfmodel.Tri(nAlts + 1)
	pl := make(vcfmodel.VectorInt32, len(pl1))
	for i := range pl1 {
		if pl1[i] == vcfmodel.MissingInt32 && pl2[i] == nil && pl3[i] == nil {
			pl[i] = nil
			continue
		}
		inner := make([]int32, plSize)
		inner[vcfmodel.FormulaG(0, 0)] = pl1[i]
		for k := 1; k <= nAlts; k++ {
			inner[vcfmodel.FormulaG(0, k)] = pl2[i][k-1]
		}
		idx := 0
		for j := 1; j <= nAlts; j++ {
			for k := j; k <= nAlts; k++ {
				inner[vcfmodel.FormulaG(j, k)] = pl3[i][idx]
				idx++
			}
		}
		pl[i] = inner
	}

	record.RemoveGenotype("PL1")
	record.RemoveGenotype("PL2")
	record.RemoveGenotype("PL3")
	record.Genotypes = append(record.Genotypes, vcfmodel.GenotypeField{ID: "PL", Value: pl})
	return nil
}

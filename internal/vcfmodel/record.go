package vcfmodel

// InfoEntry is a single INFO key/value pair. Value is true for Flag-typed
// entries (presence is the value); otherwise it's a string or a []string
// (already split on comma).
type InfoEntry struct {
	ID    string
	Value any
}

// GenotypeField is a single named per-sample FORMAT payload.
type GenotypeField struct {
	ID    string
	Value GTValue
}

// Record is one VCF/BCF data line, decoded into the shared value model.
// NAlts() is computed from len(Alts) on each call; it is not cached.
type Record struct {
	Chrom  string
	Pos    int64 // 0-based
	ID     []string
	Ref    string
	Alts   []string
	Qual   float64
	QualOK bool // false if QUAL is "."
	Filter []string
	Info   []InfoEntry

	Genotypes []GenotypeField
}

// NAlts returns the number of ALT alleles.
func (r *Record) NAlts() int { return len(r.Alts) }

// Biallelic reports whether the record has exactly one ALT allele.
func (r *Record) Biallelic() bool { return len(r.Alts) == 1 }

// InfoIndex returns the index of an INFO entry by ID, or -1.
func (r *Record) InfoIndex(id string) int {
	for i, e := range r.Info {
		if e.ID == id {
			return i
		}
	}
	return -1
}

// HasInfoFlag reports whether a Flag-typed INFO entry with this ID is set.
func (r *Record) HasInfoFlag(id string) bool {
	return r.InfoIndex(id) >= 0
}

// SetInfoFlag appends a Flag-typed INFO entry if not already present.
func (r *Record) SetInfoFlag(id string) {
	if r.HasInfoFlag(id) {
		return
	}
	r.Info = append(r.Info, InfoEntry{ID: id, Value: true})
}

// RemoveInfo removes all INFO entries with the given ID.
func (r *Record) RemoveInfo(id string) {
	out := r.Info[:0]
	for _, e := range r.Info {
		if e.ID != id {
			out = append(out, e)
		}
	}
	r.Info = out
}

// GenotypeIndex returns the index of a genotype field by ID, or -1.
func (r *Record) GenotypeIndex(id string) int {
	for i, g := range r.Genotypes {
		if g.ID == id {
			return i
		}
	}
	return -1
}

// RemoveGenotype removes the genotype field with the given ID, if present.
func (r *Record) RemoveGenotype(id string) {
	i := r.GenotypeIndex(id)
	if i < 0 {
		return
	}
	r.Genotypes = append(r.Genotypes[:i], r.Genotypes[i+1:]...)
}

// Clone returns a deep-enough copy of r: all top-level slices, including
// Genotypes, get their own backing array, so removing or reassigning a
// field on the clone never touches r. Genotype values themselves are not
// cloned beyond their slice headers — safe because nothing mutates a
// GTValue in place, only reassigns a GenotypeField's Value to a new one.
func (r *Record) Clone() *Record {
	c := &Record{
		Chrom:  r.Chrom,
		Pos:    r.Pos,
		ID:     append([]string(nil), r.ID...),
		Ref:    r.Ref,
		Alts:   append([]string(nil), r.Alts...),
		Qual:   r.Qual,
		QualOK: r.QualOK,
		Filter: append([]string(nil), r.Filter...),
		Info:   append([]InfoEntry(nil), r.Info...),
	}
	c.Genotypes = make([]GenotypeField, len(r.Genotypes))
	copy(c.Genotypes, r.Genotypes)
	return c
}

package vcfmodel

// OrderedStringMap is a small insertion-ordered string-to-string map, used
// for FORMAT/INFO "other_fields" so that round-tripping a header (adding
// then removing Encoding=Delta) doesn't reorder unrelated keys.
type OrderedStringMap struct {
	keys   []string
	values map[string]string
}

// NewOrderedStringMap creates an empty OrderedStringMap.
func NewOrderedStringMap() *OrderedStringMap {
	return &OrderedStringMap{values: make(map[string]string)}
}

// Set inserts or updates a key, preserving original insertion order.
func (m *OrderedStringMap) Set(key, value string) {
	if _, ok := m.values[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.values[key] = value
}

// Get returns the value for key and whether it was present.
func (m *OrderedStringMap) Get(key string) (string, bool) {
	v, ok := m.values[key]
	return v, ok
}

// Contains reports whether key is present.
func (m *OrderedStringMap) Contains(key string) bool {
	_, ok := m.values[key]
	return ok
}

// Delete removes key if present.
func (m *OrderedStringMap) Delete(key string) {
	if _, ok := m.values[key]; !ok {
		return
	}
	delete(m.values, key)
	for i, k := range m.keys {
		if k == key {
			m.keys = append(m.keys[:i], m.keys[i+1:]...)
			break
		}
	}
}

// Keys returns the keys in insertion order.
func (m *OrderedStringMap) Keys() []string { return m.keys }

// Clone returns a deep copy.
func (m *OrderedStringMap) Clone() *OrderedStringMap {
	c := NewOrderedStringMap()
	for _, k := range m.keys {
		c.Set(k, m.values[k])
	}
	return c
}

// FieldType is the declared VCF Type of a FORMAT/INFO field.
type FieldType string

const (
	TypeInteger FieldType = "Integer"
	TypeFloat   FieldType = "Float"
	TypeFlag    FieldType = "Flag"
	TypeChar    FieldType = "Character"
	TypeString  FieldType = "String"
)

// InfoDef is a parsed ##INFO header line.
type InfoDef struct {
	ID          string
	Number      NumberTag
	Type        FieldType
	Description string
	OtherFields *OrderedStringMap
}

// FormatDef is a parsed ##FORMAT header line.
type FormatDef struct {
	ID          string
	Number      NumberTag
	Type        FieldType
	Description string
	OtherFields *OrderedStringMap
}

// Clone returns a deep copy of the FormatDef.
func (f FormatDef) Clone() FormatDef {
	f2 := f
	if f.OtherFields != nil {
		f2.OtherFields = f.OtherFields.Clone()
	}
	return f2
}

// Header holds the parsed portions of a VCF/BCF header that the core
// needs to interpret and mutate. Meta lines it does not otherwise model
// (##contig, ##filter, ##source, etc.) are preserved verbatim in Extra so
// they round-trip untouched.
type Header struct {
	FileFormat string
	Infos      []InfoDef
	Formats    []FormatDef
	Extra      []string // other ## meta lines, verbatim, in original order
	Samples    []string // sample names, from the #CHROM line

	infoIndex   map[string]int
	formatIndex map[string]int
}

// IndexInfo (re)builds the ID->index lookup for Infos. Call after mutating
// Infos directly.
func (h *Header) IndexInfo() {
	h.infoIndex = make(map[string]int, len(h.Infos))
	for i, d := range h.Infos {
		h.infoIndex[d.ID] = i
	}
}

// IndexFormat (re)builds the ID->index lookup for Formats.
func (h *Header) IndexFormat() {
	h.formatIndex = make(map[string]int, len(h.Formats))
	for i, d := range h.Formats {
		h.formatIndex[d.ID] = i
	}
}

// HasInfo reports whether an INFO definition with this ID exists.
func (h *Header) HasInfo(id string) bool {
	if h.infoIndex == nil {
		h.IndexInfo()
	}
	_, ok := h.infoIndex[id]
	return ok
}

// FormatByID returns the FormatDef for id, or nil if absent.
func (h *Header) FormatByID(id string) *FormatDef {
	if h.formatIndex == nil {
		h.IndexFormat()
	}
	i, ok := h.formatIndex[id]
	if !ok {
		return nil
	}
	return &h.Formats[i]
}

// NumSamples returns the number of genotyped samples.
func (h *Header) NumSamples() int { return len(h.Samples) }

// Clone returns a deep copy of the header.
func (h *Header) Clone() *Header {
	c := &Header{
		FileFormat: h.FileFormat,
		Infos:      append([]InfoDef(nil), h.Infos...),
		Formats:    make([]FormatDef, len(h.Formats)),
		Extra:      append([]string(nil), h.Extra...),
		Samples:    append([]string(nil), h.Samples...),
	}
	for i, f := range h.Formats {
		c.Formats[i] = f.Clone()
	}
	for i, info := range h.Infos {
		if info.OtherFields != nil {
			c.Infos[i].OtherFields = info.OtherFields.Clone()
		}
	}
	return c
}

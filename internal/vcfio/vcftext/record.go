package vcftext

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/inodb/bcfdelta/internal/vcfmodel"
)

// ParseError reports a VCF parsing failure with line context, matching the
// teacher's vcf.ParseError.
type ParseError struct {
	Line    int
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("vcftext: parse error at line %d: %s", e.Line, e.Message)
}

func splitOrNil(s, sep string) []string {
	if s == "." || s == "" {
		return nil
	}
	return strings.Split(s, sep)
}

func joinOrDotStr(parts []string, sep string) string {
	if len(parts) == 0 {
		return "."
	}
	return strings.Join(parts, sep)
}

// ParseRecord parses one tab-delimited VCF data line. header supplies the
// FORMAT definitions needed to interpret the genotype columns.
func ParseRecord(line string, lineNo int, header *vcfmodel.Header) (*vcfmodel.Record, error) {
	fields := strings.Split(line, "\t")
	if len(fields) < 8 {
		return nil, &ParseError{Line: lineNo, Message: fmt.Sprintf("expected at least 8 columns, found %d", len(fields))}
	}

	pos1, err := strconv.ParseInt(fields[1], 10, 64)
	if err != nil {
		return nil, &ParseError{Line: lineNo, Message: fmt.Sprintf("invalid POS: %s", fields[1])}
	}

	rec := &vcfmodel.Record{
		Chrom:  fields[0],
		Pos:    pos1 - 1,
		ID:     splitOrNil(fields[2], ";"),
		Ref:    fields[3],
		Alts:   splitOrNil(fields[4], ","),
		Filter: splitOrNil(fields[6], ";"),
	}

	if fields[5] == "." {
		rec.QualOK = false
	} else {
		q, err := strconv.ParseFloat(fields[5], 64)
		if err != nil {
			return nil, &ParseError{Line: lineNo, Message: fmt.Sprintf("invalid QUAL: %s", fields[5])}
		}
		rec.Qual, rec.QualOK = q, true
	}

	rec.Info, err = parseInfo(fields[7])
	if err != nil {
		return nil, &ParseError{Line: lineNo, Message: err.Error()}
	}

	if len(fields) <= 8 {
		return rec, nil
	}

	formatKeys := strings.Split(fields[8], ":")
	sampleCols := fields[9:]

	perKeyRaw := make([][]string, len(formatKeys))
	for k := range formatKeys {
		perKeyRaw[k] = make([]string, len(sampleCols))
	}
	for s, col := range sampleCols {
		subs := strings.Split(col, ":")
		for k := range formatKeys {
			if k < len(subs) {
				perKeyRaw[k][s] = subs[k]
			} else {
				perKeyRaw[k][s] = "."
			}
		}
	}

	for k, id := range formatKeys {
		def := header.FormatByID(id)
		if def == nil {
			return nil, &ParseError{Line: lineNo, Message: fmt.Sprintf("FORMAT key %q has no ##FORMAT definition", id)}
		}
		value, err := decodeFieldValues(def.Type, def.Number, len(sampleCols), perKeyRaw[k])
		if err != nil {
			return nil, &ParseError{Line: lineNo, Message: fmt.Sprintf("FORMAT %s: %v", id, err)}
		}
		rec.Genotypes = append(rec.Genotypes, vcfmodel.GenotypeField{ID: id, Value: value})
	}

	return rec, nil
}

func parseInfo(field string) ([]vcfmodel.InfoEntry, error) {
	if field == "." {
		return nil, nil
	}
	var entries []vcfmodel.InfoEntry
	for _, kv := range strings.Split(field, ";") {
		parts := strings.SplitN(kv, "=", 2)
		if len(parts) == 1 {
			entries = append(entries, vcfmodel.InfoEntry{ID: parts[0], Value: true})
			continue
		}
		if strings.Contains(parts[1], ",") {
			entries = append(entries, vcfmodel.InfoEntry{ID: parts[0], Value: strings.Split(parts[1], ",")})
		} else {
			entries = append(entries, vcfmodel.InfoEntry{ID: parts[0], Value: parts[1]})
		}
	}
	return entries, nil
}

func formatInfo(entries []vcfmodel.InfoEntry) string {
	if len(entries) == 0 {
		return "."
	}
	parts := make([]string, 0, len(entries))
	for _, e := range entries {
		switch v := e.Value.(type) {
		case nil, bool:
			parts = append(parts, e.ID)
		case string:
			parts = append(parts, e.ID+"="+v)
		case []string:
			parts = append(parts, e.ID+"="+strings.Join(v, ","))
		default:
			parts = append(parts, fmt.Sprintf("%s=%v", e.ID, v))
		}
	}
	return strings.Join(parts, ";")
}

// FormatRecord serializes a Record back into a tab-delimited VCF data
// line. header supplies sample count/order for the genotype columns.
func FormatRecord(rec *vcfmodel.Record, header *vcfmodel.Header) string {
	var b strings.Builder
	b.WriteString(rec.Chrom)
	b.WriteByte('\t')
	b.WriteString(strconv.FormatInt(rec.Pos+1, 10))
	b.WriteByte('\t')
	b.WriteString(joinOrDotStr(rec.ID, ";"))
	b.WriteByte('\t')
	b.WriteString(rec.Ref)
	b.WriteByte('\t')
	b.WriteString(joinOrDotStr(rec.Alts, ","))
	b.WriteByte('\t')
	if rec.QualOK {
		b.WriteString(strconv.FormatFloat(rec.Qual, 'g', -1, 64))
	} else {
		b.WriteString(".")
	}
	b.WriteByte('\t')
	b.WriteString(joinOrDotStr(rec.Filter, ";"))
	b.WriteByte('\t')
	b.WriteString(formatInfo(rec.Info))

	if len(rec.Genotypes) == 0 || header.NumSamples() == 0 {
		return b.String()
	}

	b.WriteByte('\t')
	keys := make([]string, len(rec.Genotypes))
	columns := make([][]string, len(rec.Genotypes))
	for i, g := range rec.Genotypes {
		keys[i] = g.ID
		columns[i] = encodeFieldValues(g.Value)
	}
	b.WriteString(strings.Join(keys, ":"))

	for s := 0; s < header.NumSamples(); s++ {
		b.WriteByte('\t')
		parts := make([]string, len(keys))
		for k := range keys {
			if s < len(columns[k]) {
				parts[k] = columns[k][s]
			} else {
				parts[k] = "."
			}
		}
		b.WriteString(strings.Join(parts, ":"))
	}

	return b.String()
}

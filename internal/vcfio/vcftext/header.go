package vcftext

import (
	"fmt"
	"strings"

	"github.com/inodb/bcfdelta/internal/vcfmodel"
)

// parseAngleBracketFields parses the `<K=V,K2="V2,still V2",...>` body of a
// ##INFO/##FORMAT meta line into an ordered key/value map, respecting
// double-quoted values that may themselves contain commas (Description
// routinely does).
func parseAngleBracketFields(body string) (*vcfmodel.OrderedStringMap, error) {
	body = strings.TrimSpace(body)
	if !strings.HasPrefix(body, "<") || !strings.HasSuffix(body, ">") {
		return nil, fmt.Errorf("vcftext: malformed meta line body %q", body)
	}
	body = body[1 : len(body)-1]

	m := vcfmodel.NewOrderedStringMap()
	var key strings.Builder
	var val strings.Builder
	inQuotes := false
	inValue := false

	flush := func() {
		m.Set(key.String(), val.String())
		key.Reset()
		val.Reset()
		inValue = false
	}

	for i := 0; i < len(body); i++ {
		c := body[i]
		switch {
		case c == '"' && inValue:
			inQuotes = !inQuotes
			val.WriteByte(c)
		case c == '=' && inValue == false:
			inValue = true
		case c == ',' && !inQuotes && inValue:
			flush()
		default:
			if inValue {
				val.WriteByte(c)
			} else {
				key.WriteByte(c)
			}
		}
	}
	if key.Len() > 0 || val.Len() > 0 {
		flush()
	}
	return m, nil
}

func unquote(s string) string {
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		return s[1 : len(s)-1]
	}
	return s
}

func quote(s string) string { return `"` + s + `"` }

// ParseInfoLine parses a `##INFO=<...>` meta line.
func ParseInfoLine(line string) (vcfmodel.InfoDef, error) {
	body, ok := strings.CutPrefix(line, "##INFO=")
	if !ok {
		return vcfmodel.InfoDef{}, fmt.Errorf("vcftext: not an INFO line: %q", line)
	}
	fields, err := parseAngleBracketFields(body)
	if err != nil {
		return vcfmodel.InfoDef{}, err
	}
	return infoDefFromFields(fields)
}

func infoDefFromFields(fields *vcfmodel.OrderedStringMap) (vcfmodel.InfoDef, error) {
	id, _ := fields.Get("ID")
	numStr, _ := fields.Get("Number")
	typeStr, _ := fields.Get("Type")
	desc, _ := fields.Get("Description")

	number, ok := vcfmodel.ParseNumber(numStr)
	if !ok {
		return vcfmodel.InfoDef{}, fmt.Errorf("vcftext: INFO %s: invalid Number %q", id, numStr)
	}

	other := vcfmodel.NewOrderedStringMap()
	for _, k := range fields.Keys() {
		if k == "ID" || k == "Number" || k == "Type" || k == "Description" {
			continue
		}
		v, _ := fields.Get(k)
		other.Set(k, v)
	}

	return vcfmodel.InfoDef{
		ID:          id,
		Number:      number,
		Type:        vcfmodel.FieldType(typeStr),
		Description: unquote(desc),
		OtherFields: other,
	}, nil
}

// ParseFormatLine parses a `##FORMAT=<...>` meta line.
func ParseFormatLine(line string) (vcfmodel.FormatDef, error) {
	body, ok := strings.CutPrefix(line, "##FORMAT=")
	if !ok {
		return vcfmodel.FormatDef{}, fmt.Errorf("vcftext: not a FORMAT line: %q", line)
	}
	fields, err := parseAngleBracketFields(body)
	if err != nil {
		return vcfmodel.FormatDef{}, err
	}
	return formatDefFromFields(fields)
}

func formatDefFromFields(fields *vcfmodel.OrderedStringMap) (vcfmodel.FormatDef, error) {
	id, _ := fields.Get("ID")
	numStr, _ := fields.Get("Number")
	typeStr, _ := fields.Get("Type")
	desc, _ := fields.Get("Description")

	number, ok := vcfmodel.ParseNumber(numStr)
	if !ok {
		return vcfmodel.FormatDef{}, fmt.Errorf("vcftext: FORMAT %s: invalid Number %q", id, numStr)
	}

	other := vcfmodel.NewOrderedStringMap()
	for _, k := range fields.Keys() {
		if k == "ID" || k == "Number" || k == "Type" || k == "Description" {
			continue
		}
		v, _ := fields.Get(k)
		other.Set(k, v)
	}

	return vcfmodel.FormatDef{
		ID:          id,
		Number:      number,
		Type:        vcfmodel.FieldType(typeStr),
		Description: unquote(desc),
		OtherFields: other,
	}, nil
}

// FormatInfoLine serializes an InfoDef back into a ##INFO meta line.
func FormatInfoLine(d vcfmodel.InfoDef) string {
	var b strings.Builder
	b.WriteString("##INFO=<ID=")
	b.WriteString(d.ID)
	b.WriteString(",Number=")
	b.WriteString(d.Number.String())
	b.WriteString(",Type=")
	b.WriteString(string(d.Type))
	b.WriteString(",Description=")
	b.WriteString(quote(d.Description))
	if d.OtherFields != nil {
		for _, k := range d.OtherFields.Keys() {
			v, _ := d.OtherFields.Get(k)
			b.WriteString(",")
			b.WriteString(k)
			b.WriteString("=")
			b.WriteString(v)
		}
	}
	b.WriteString(">")
	return b.String()
}

// FormatFormatLine serializes a FormatDef back into a ##FORMAT meta line.
func FormatFormatLine(d vcfmodel.FormatDef) string {
	var b strings.Builder
	b.WriteString("##FORMAT=<ID=")
	b.WriteString(d.ID)
	b.WriteString(",Number=")
	b.WriteString(d.Number.String())
	b.WriteString(",Type=")
	b.WriteString(string(d.Type))
	b.WriteString(",Description=")
	b.WriteString(quote(d.Description))
	if d.OtherFields != nil {
		for _, k := range d.OtherFields.Keys() {
			v, _ := d.OtherFields.Get(k)
			b.WriteString(",")
			b.WriteString(k)
			b.WriteString("=")
			b.WriteString(v)
		}
	}
	b.WriteString(">")
	return b.String()
}

// ParseChromLine parses the `#CHROM	POS	...	FORMAT	sample1	sample2...` line
// into sample names (empty if the file carries no genotype columns).
func ParseChromLine(line string) []string {
	fields := strings.Split(line, "\t")
	if len(fields) <= 9 {
		return nil
	}
	return fields[9:]
}

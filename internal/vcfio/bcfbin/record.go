package bcfbin

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/inodb/bcfdelta/internal/vcfmodel"
)

// infoValueTag identifies how an InfoEntry's Value field is encoded.
type infoValueTag byte

const (
	infoValueFlag infoValueTag = iota
	infoValueString
	infoValueStringSlice
)

func encodeInfo(w *bufio.Writer, entries []vcfmodel.InfoEntry) error {
	if err := writeUvarint(w, uint64(len(entries))); err != nil {
		return err
	}
	for _, e := range entries {
		if err := writeString(w, e.ID); err != nil {
			return err
		}
		switch v := e.Value.(type) {
		case nil, bool:
			if err := w.WriteByte(byte(infoValueFlag)); err != nil {
				return err
			}
		case string:
			if err := w.WriteByte(byte(infoValueString)); err != nil {
				return err
			}
			if err := writeString(w, v); err != nil {
				return err
			}
		case []string:
			if err := w.WriteByte(byte(infoValueStringSlice)); err != nil {
				return err
			}
			if err := writeStringSlice(w, v); err != nil {
				return err
			}
		default:
			return fmt.Errorf("bcfbin: unsupported INFO value type %T for %s", v, e.ID)
		}
	}
	return nil
}

func decodeInfo(r *bufio.Reader) ([]vcfmodel.InfoEntry, error) {
	n, err := readUvarint(r)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, nil
	}
	out := make([]vcfmodel.InfoEntry, n)
	for i := range out {
		id, err := readString(r)
		if err != nil {
			return nil, err
		}
		tag, err := r.ReadByte()
		if err != nil {
			return nil, err
		}
		entry := vcfmodel.InfoEntry{ID: id}
		switch infoValueTag(tag) {
		case infoValueFlag:
			entry.Value = true
		case infoValueString:
			if entry.Value, err = readString(r); err != nil {
				return nil, err
			}
		case infoValueStringSlice:
			if entry.Value, err = readStringSlice(r); err != nil {
				return nil, err
			}
		default:
			return nil, fmt.Errorf("bcfbin: unknown INFO value tag %d", tag)
		}
		out[i] = entry
	}
	return out, nil
}

// encodeRecordBody serializes one Record's body (without the outer length
// prefix) into w.
func encodeRecordBody(w *bufio.Writer, rec *vcfmodel.Record) error {
	if err := writeString(w, rec.Chrom); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, rec.Pos); err != nil {
		return err
	}
	if err := writeStringSlice(w, rec.ID); err != nil {
		return err
	}
	if err := writeString(w, rec.Ref); err != nil {
		return err
	}
	if err := writeStringSlice(w, rec.Alts); err != nil {
		return err
	}
	qualOK := byte(0)
	if rec.QualOK {
		qualOK = 1
	}
	if err := w.WriteByte(qualOK); err != nil {
		return err
	}
	if rec.QualOK {
		if err := binary.Write(w, binary.LittleEndian, rec.Qual); err != nil {
			return err
		}
	}
	if err := writeStringSlice(w, rec.Filter); err != nil {
		return err
	}
	if err := encodeInfo(w, rec.Info); err != nil {
		return err
	}
	if err := writeUvarint(w, uint64(len(rec.Genotypes))); err != nil {
		return err
	}
	for _, g := range rec.Genotypes {
		if err := writeString(w, g.ID); err != nil {
			return err
		}
		if err := encodeGTValue(w, g.Value); err != nil {
			return fmt.Errorf("bcfbin: encode genotype %s: %w", g.ID, err)
		}
	}
	return nil
}

// encodeRecordBytes encodes one record's body into a standalone byte slice,
// without the outer length prefix. This is the parallelizable half of
// writing a record: it touches no shared stream state.
func encodeRecordBytes(rec *vcfmodel.Record) ([]byte, error) {
	var buf bytes.Buffer
	bw := bufio.NewWriter(&buf)
	if err := encodeRecordBody(bw, rec); err != nil {
		return nil, err
	}
	if err := bw.Flush(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// writeRawRecord writes one already-encoded record body to w, prefixed by
// its uvarint length. This is the sequential half: it must run in order on
// the one shared output stream.
func writeRawRecord(w *bufio.Writer, body []byte) error {
	if err := writeUvarint(w, uint64(len(body))); err != nil {
		return err
	}
	_, err := w.Write(body)
	return err
}

// readRawRecord reads one length-prefixed record's raw body bytes from r,
// without decoding them. It returns io.EOF when the stream is exhausted
// at a record boundary. Splitting this from decodeRecordBody lets the
// sequential byte read (which must happen in order, on the one shared
// stream) run ahead of the parallel decode step.
func readRawRecord(r *bufio.Reader) ([]byte, error) {
	n, err := readUvarint(r)
	if err != nil {
		return nil, err
	}
	body := make([]byte, n)
	if _, err := io.ReadFull(r, body); err != nil {
		return nil, fmt.Errorf("bcfbin: short record body: %w", err)
	}
	return body, nil
}

// decodeRecordBody decodes one record's raw body bytes, as produced by
// readRawRecord.
func decodeRecordBody(body []byte) (*vcfmodel.Record, error) {
	br := bufio.NewReader(bytes.NewReader(body))
	var err error

	rec := &vcfmodel.Record{}
	if rec.Chrom, err = readString(br); err != nil {
		return nil, err
	}
	if err := binary.Read(br, binary.LittleEndian, &rec.Pos); err != nil {
		return nil, err
	}
	if rec.ID, err = readStringSlice(br); err != nil {
		return nil, err
	}
	if rec.Ref, err = readString(br); err != nil {
		return nil, err
	}
	if rec.Alts, err = readStringSlice(br); err != nil {
		return nil, err
	}
	qualOK, err := br.ReadByte()
	if err != nil {
		return nil, err
	}
	rec.QualOK = qualOK == 1
	if rec.QualOK {
		if err := binary.Read(br, binary.LittleEndian, &rec.Qual); err != nil {
			return nil, err
		}
	}
	if rec.Filter, err = readStringSlice(br); err != nil {
		return nil, err
	}
	if rec.Info, err = decodeInfo(br); err != nil {
		return nil, err
	}
	numGT, err := readUvarint(br)
	if err != nil {
		return nil, err
	}
	rec.Genotypes = make([]vcfmodel.GenotypeField, numGT)
	for i := range rec.Genotypes {
		id, err := readString(br)
		if err != nil {
			return nil, err
		}
		val, err := decodeGTValue(br)
		if err != nil {
			return nil, fmt.Errorf("bcfbin: decode genotype %s: %w", id, err)
		}
		rec.Genotypes[i] = vcfmodel.GenotypeField{ID: id, Value: val}
	}
	return rec, nil
}

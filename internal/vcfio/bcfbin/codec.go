// Package bcfbin implements the binary record codec bcfdelta uses for
// ".bcf" I/O: a length-prefixed typed-record stream over a BGZF
// container. The header portion is the same textual meta-line format
// vcftext parses and serializes (mirroring how real BCF embeds its VCF
// text header verbatim); only the per-record payload is binary.
package bcfbin

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/inodb/bcfdelta/internal/vcfmodel"
)

// gtTag identifies the concrete GTValue type on the wire.
type gtTag byte

const (
	tagScalarInt8 gtTag = iota
	tagScalarInt16
	tagScalarInt32
	tagScalarFloat32
	tagScalarChar
	tagScalarString
	tagVectorInt8
	tagVectorInt16
	tagVectorInt32
	tagVectorFloat32
	tagVectorString
)

func writeUvarint(w *bufio.Writer, v uint64) error {
	var buf [binary.MaxVarintLen64]byte
	n := binary.PutUvarint(buf[:], v)
	_, err := w.Write(buf[:n])
	return err
}

func readUvarint(r *bufio.Reader) (uint64, error) {
	return binary.ReadUvarint(r)
}

func writeString(w *bufio.Writer, s string) error {
	if err := writeUvarint(w, uint64(len(s))); err != nil {
		return err
	}
	_, err := w.WriteString(s)
	return err
}

func readString(r *bufio.Reader) (string, error) {
	n, err := readUvarint(r)
	if err != nil {
		return "", err
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", err
	}
	return string(buf), nil
}

func writeStringSlice(w *bufio.Writer, ss []string) error {
	if err := writeUvarint(w, uint64(len(ss))); err != nil {
		return err
	}
	for _, s := range ss {
		if err := writeString(w, s); err != nil {
			return err
		}
	}
	return nil
}

func readStringSlice(r *bufio.Reader) ([]string, error) {
	n, err := readUvarint(r)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, nil
	}
	out := make([]string, n)
	for i := range out {
		if out[i], err = readString(r); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func writeInt8Slice(w *bufio.Writer, vs []int8) error {
	if err := writeUvarint(w, uint64(len(vs))); err != nil {
		return err
	}
	for _, v := range vs {
		if err := w.WriteByte(byte(v)); err != nil {
			return err
		}
	}
	return nil
}

func readInt8Slice(r *bufio.Reader) ([]int8, error) {
	n, err := readUvarint(r)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, nil
	}
	raw := make([]byte, n)
	if _, err := io.ReadFull(r, raw); err != nil {
		return nil, err
	}
	out := make([]int8, n)
	for i, b := range raw {
		out[i] = int8(b)
	}
	return out, nil
}

func writeInt16Slice(w *bufio.Writer, vs []int16) error {
	if err := writeUvarint(w, uint64(len(vs))); err != nil {
		return err
	}
	for _, v := range vs {
		if err := binary.Write(w, binary.LittleEndian, v); err != nil {
			return err
		}
	}
	return nil
}

func readInt16Slice(r *bufio.Reader) ([]int16, error) {
	n, err := readUvarint(r)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, nil
	}
	out := make([]int16, n)
	for i := range out {
		if err := binary.Read(r, binary.LittleEndian, &out[i]); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func writeInt32Slice(w *bufio.Writer, vs []int32) error {
	if err := writeUvarint(w, uint64(len(vs))); err != nil {
		return err
	}
	for _, v := range vs {
		if err := binary.Write(w, binary.LittleEndian, v); err != nil {
			return err
		}
	}
	return nil
}

func readInt32Slice(r *bufio.Reader) ([]int32, error) {
	n, err := readUvarint(r)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, nil
	}
	out := make([]int32, n)
	for i := range out {
		if err := binary.Read(r, binary.LittleEndian, &out[i]); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func writeFloat32Slice(w *bufio.Writer, vs []float32) error {
	if err := writeUvarint(w, uint64(len(vs))); err != nil {
		return err
	}
	for _, v := range vs {
		if err := binary.Write(w, binary.LittleEndian, v); err != nil {
			return err
		}
	}
	return nil
}

func readFloat32Slice(r *bufio.Reader) ([]float32, error) {
	n, err := readUvarint(r)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, nil
	}
	out := make([]float32, n)
	for i := range out {
		if err := binary.Read(r, binary.LittleEndian, &out[i]); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// encodeGTValue serializes one genotype field's value.
func encodeGTValue(w *bufio.Writer, v vcfmodel.GTValue) error {
	switch s := v.(type) {
	case vcfmodel.ScalarInt8:
		return writeTagged(w, tagScalarInt8, func() error { return writeInt8Slice(w, []int8(s)) })
	case vcfmodel.ScalarInt16:
		return writeTagged(w, tagScalarInt16, func() error { return writeInt16Slice(w, []int16(s)) })
	case vcfmodel.ScalarInt32:
		return writeTagged(w, tagScalarInt32, func() error { return writeInt32Slice(w, []int32(s)) })
	case vcfmodel.ScalarFloat32:
		return writeTagged(w, tagScalarFloat32, func() error { return writeFloat32Slice(w, []float32(s)) })
	case vcfmodel.ScalarChar:
		return writeTagged(w, tagScalarChar, func() error { return writeInt8Slice(w, bytesToInt8(s)) })
	case vcfmodel.ScalarString:
		return writeTagged(w, tagScalarString, func() error { return writeStringSlice(w, []string(s)) })
	case vcfmodel.VectorInt8:
		return writeTagged(w, tagVectorInt8, func() error { return writeVectorInt8(w, s) })
	case vcfmodel.VectorInt16:
		return writeTagged(w, tagVectorInt16, func() error { return writeVectorInt16(w, s) })
	case vcfmodel.VectorInt32:
		return writeTagged(w, tagVectorInt32, func() error { return writeVectorInt32(w, s) })
	case vcfmodel.VectorFloat32:
		return writeTagged(w, tagVectorFloat32, func() error { return writeVectorFloat32(w, s) })
	case vcfmodel.VectorString:
		return writeTagged(w, tagVectorString, func() error { return writeVectorString(w, s) })
	default:
		return fmt.Errorf("bcfbin: unknown GTValue type %T", v)
	}
}

func writeTagged(w *bufio.Writer, tag gtTag, body func() error) error {
	if err := w.WriteByte(byte(tag)); err != nil {
		return err
	}
	return body()
}

func bytesToInt8(b []byte) []int8 {
	out := make([]int8, len(b))
	for i, x := range b {
		out[i] = int8(x)
	}
	return out
}

func int8ToBytes(v []int8) []byte {
	out := make([]byte, len(v))
	for i, x := range v {
		out[i] = byte(x)
	}
	return out
}

func writeVectorInt8(w *bufio.Writer, v vcfmodel.VectorInt8) error {
	if err := writeUvarint(w, uint64(len(v))); err != nil {
		return err
	}
	for _, inner := range v {
		if err := writeInt8Slice(w, inner); err != nil {
			return err
		}
	}
	return nil
}

func readVectorInt8(r *bufio.Reader) (vcfmodel.VectorInt8, error) {
	n, err := readUvarint(r)
	if err != nil {
		return nil, err
	}
	out := make(vcfmodel.VectorInt8, n)
	for i := range out {
		if out[i], err = readInt8Slice(r); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func writeVectorInt16(w *bufio.Writer, v vcfmodel.VectorInt16) error {
	if err := writeUvarint(w, uint64(len(v))); err != nil {
		return err
	}
	for _, inner := range v {
		if err := writeInt16Slice(w, inner); err != nil {
			return err
		}
	}
	return nil
}

func readVectorInt16(r *bufio.Reader) (vcfmodel.VectorInt16, error) {
	n, err := readUvarint(r)
	if err != nil {
		return nil, err
	}
	out := make(vcfmodel.VectorInt16, n)
	for i := range out {
		if out[i], err = readInt16Slice(r); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func writeVectorInt32(w *bufio.Writer, v vcfmodel.VectorInt32) error {
	if err := writeUvarint(w, uint64(len(v))); err != nil {
		return err
	}
	for _, inner := range v {
		if err := writeInt32Slice(w, inner); err != nil {
			return err
		}
	}
	return nil
}

func readVectorInt32(r *bufio.Reader) (vcfmodel.VectorInt32, error) {
	n, err := readUvarint(r)
	if err != nil {
		return nil, err
	}
	out := make(vcfmodel.VectorInt32, n)
	for i := range out {
		if out[i], err = readInt32Slice(r); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func writeVectorFloat32(w *bufio.Writer, v vcfmodel.VectorFloat32) error {
	if err := writeUvarint(w, uint64(len(v))); err != nil {
		return err
	}
	for _, inner := range v {
		if err := writeFloat32Slice(w, inner); err != nil {
			return err
		}
	}
	return nil
}

func readVectorFloat32(r *bufio.Reader) (vcfmodel.VectorFloat32, error) {
	n, err := readUvarint(r)
	if err != nil {
		return nil, err
	}
	out := make(vcfmodel.VectorFloat32, n)
	for i := range out {
		if out[i], err = readFloat32Slice(r); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func writeVectorString(w *bufio.Writer, v vcfmodel.VectorString) error {
	if err := writeUvarint(w, uint64(len(v))); err != nil {
		return err
	}
	for _, inner := range v {
		if err := writeStringSlice(w, inner); err != nil {
			return err
		}
	}
	return nil
}

func readVectorString(r *bufio.Reader) (vcfmodel.VectorString, error) {
	n, err := readUvarint(r)
	if err != nil {
		return nil, err
	}
	out := make(vcfmodel.VectorString, n)
	for i := range out {
		if out[i], err = readStringSlice(r); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// decodeGTValue deserializes one genotype field's value.
func decodeGTValue(r *bufio.Reader) (vcfmodel.GTValue, error) {
	tagByte, err := r.ReadByte()
	if err != nil {
		return nil, err
	}
	switch gtTag(tagByte) {
	case tagScalarInt8:
		v, err := readInt8Slice(r)
		return vcfmodel.ScalarInt8(v), err
	case tagScalarInt16:
		v, err := readInt16Slice(r)
		return vcfmodel.ScalarInt16(v), err
	case tagScalarInt32:
		v, err := readInt32Slice(r)
		return vcfmodel.ScalarInt32(v), err
	case tagScalarFloat32:
		v, err := readFloat32Slice(r)
		return vcfmodel.ScalarFloat32(v), err
	case tagScalarChar:
		v, err := readInt8Slice(r)
		return vcfmodel.ScalarChar(int8ToBytes(v)), err
	case tagScalarString:
		v, err := readStringSlice(r)
		return vcfmodel.ScalarString(v), err
	case tagVectorInt8:
		return readVectorInt8(r)
	case tagVectorInt16:
		return readVectorInt16(r)
	case tagVectorInt32:
		return readVectorInt32(r)
	case tagVectorFloat32:
		return readVectorFloat32(r)
	case tagVectorString:
		return readVectorString(r)
	default:
		return nil, fmt.Errorf("bcfbin: unknown GTValue tag %d", tagByte)
	}
}

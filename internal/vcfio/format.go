// Package vcfio defines the container-format abstraction shared by the
// vcftext and bcfbin codecs: a Reader/Writer pair that the transform engine
// drives without needing to know whether it's talking to a VCF text stream
// or binary BCF.
package vcfio

import (
	"runtime"

	"github.com/inodb/bcfdelta/internal/vcfmodel"
)

// Format identifies the on-disk container format.
type Format = vcfmodel.Format

const (
	FormatVCF   = vcfmodel.FormatVCF
	FormatVCFGZ = vcfmodel.FormatVCFGZ
	FormatBCF   = vcfmodel.FormatBCF
)

// DetectFormat infers a Format from a file path's extension. "-" (stdin or
// stdout) is treated as plain VCF text.
func DetectFormat(path string) (Format, error) {
	return vcfmodel.DetectFormat(path)
}

// Framing selects how a gzip-family stream is framed: true BGZF block
// framing (required for downstream bgzip-aware tools) or plain gzip.
type Framing = vcfmodel.Framing

const (
	FramingBGZF      = vcfmodel.FramingBGZF
	FramingPlainGzip = vcfmodel.FramingPlainGzip
)

// Reader reads a VCF/BCF container: one header, then a stream of records.
type Reader interface {
	ReadHeader() (*vcfmodel.Header, error)
	ReadRecord() (*vcfmodel.Record, error) // io.EOF (wrapped) when exhausted
	Close() error
}

// Writer writes a VCF/BCF container: one header, then a stream of records.
type Writer interface {
	WriteHeader(*vcfmodel.Header) error
	WriteRecord(*vcfmodel.Record) error
	Close() error
}

// WorkerSetter is implemented by every backend's Reader/Writer; it sizes
// the backend's internal parse/format worker pool. Callers that want
// non-default parallelism type-assert for it, since it isn't part of the
// minimal Reader/Writer contract the transform engine depends on.
type WorkerSetter interface {
	SetWorkers(n int)
}

// SetWorkers type-asserts v for WorkerSetter and applies n if it
// implements it; otherwise it's a no-op. n <= 0 means runtime.NumCPU().
func SetWorkers(v any, n int) {
	if n <= 0 {
		n = runtime.NumCPU()
	}
	if ws, ok := v.(WorkerSetter); ok {
		ws.SetWorkers(n)
	}
}

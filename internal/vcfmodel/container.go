package vcfmodel

import (
	"fmt"
	"strings"
)

// Format identifies the on-disk container format.
type Format int

const (
	FormatVCF Format = iota
	FormatVCFGZ
	FormatBCF
)

func (f Format) String() string {
	switch f {
	case FormatVCF:
		return "vcf"
	case FormatVCFGZ:
		return "vcf.gz"
	case FormatBCF:
		return "bcf"
	default:
		return "unknown"
	}
}

// DetectFormat infers a Format from a file path's extension. "-" (stdin or
// stdout) is treated as plain VCF text.
func DetectFormat(path string) (Format, error) {
	switch {
	case path == "-":
		return FormatVCF, nil
	case strings.HasSuffix(path, ".bcf"):
		return FormatBCF, nil
	case strings.HasSuffix(path, ".vcf.gz") || strings.HasSuffix(path, ".vcf.bgz"):
		return FormatVCFGZ, nil
	case strings.HasSuffix(path, ".vcf"):
		return FormatVCF, nil
	default:
		return 0, fmt.Errorf("vcfio: cannot infer format from path %q", path)
	}
}

// Framing selects how a gzip-family stream is framed: true BGZF block
// framing (required for downstream bgzip-aware tools) or plain gzip.
type Framing int

const (
	FramingBGZF Framing = iota
	FramingPlainGzip
)

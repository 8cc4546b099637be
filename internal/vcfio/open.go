package vcfio

import (
	"github.com/inodb/bcfdelta/internal/vcfio/bcfbin"
	"github.com/inodb/bcfdelta/internal/vcfio/vcftext"
)

// OpenReader opens path, dispatching to the vcftext or bcfbin backend by
// DetectFormat, and returns it behind the shared Reader interface.
func OpenReader(path string, framing Framing) (Reader, error) {
	format, err := DetectFormat(path)
	if err != nil {
		return nil, err
	}
	switch format {
	case FormatBCF:
		return bcfbin.Open(path)
	default:
		return vcftext.Open(path, framing)
	}
}

// CreateWriter creates path, dispatching to the vcftext or bcfbin backend
// by DetectFormat, and returns it behind the shared Writer interface.
func CreateWriter(path string, framing Framing) (Writer, error) {
	format, err := DetectFormat(path)
	if err != nil {
		return nil, err
	}
	switch format {
	case FormatBCF:
		return bcfbin.Create(path)
	case FormatVCFGZ:
		return vcftext.Create(path, FormatVCFGZ, framing)
	default:
		return vcftext.Create(path, FormatVCF, framing)
	}
}

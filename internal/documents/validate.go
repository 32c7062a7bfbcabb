package documents

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/GoSim-25-26J-441/research-doc-backend/internal/apperr"
)

// MaxUploadBytes is the upload ceiling.
const MaxUploadBytes = 10 << 20

type Format int

const (
	FormatUnknown Format = iota
	FormatPDF
	FormatDOCX
)

func (f Format) String() string {
	switch f {
	case FormatPDF:
		return "pdf"
	case FormatDOCX:
		return "docx"
	default:
		return "unknown"
	}
}

// Validate checks extension, size and magic bytes, in that order.
// No extraction runs on a buffer that fails here.
func Validate(filename string, data []byte) (Format, error) {
	var f Format
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		f = FormatPDF
	case ".docx":
		f = FormatDOCX
	default:
		return FormatUnknown, fmt.Errorf("%w: only .pdf and .docx files are supported", apperr.ErrInvalidFileFormat)
	}

	if len(data) > MaxUploadBytes {
		return FormatUnknown, apperr.ErrFileTooLarge
	}

	mt := mimetype.Detect(data)
	switch f {
	case FormatPDF:
		if !mt.Is("application/pdf") {
			return FormatUnknown, fmt.Errorf("%w: %s content is %s, not PDF", apperr.ErrInvalidFileFormat, filename, mt.String())
		}
	case FormatDOCX:
		if !descendsFrom(mt, "application/zip") {
			return FormatUnknown, fmt.Errorf("%w: %s content is %s, not an Office document", apperr.ErrInvalidFileFormat, filename, mt.String())
		}
	}
	return f, nil
}

func descendsFrom(mt *mimetype.MIME, parent string) bool {
	for m := mt; m != nil; m = m.Parent() {
		if m.Is(parent) {
			return true
		}
	}
	return false
}

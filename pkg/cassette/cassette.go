// Package cassette persists assembled programs into cassettes: fixed-size
// byte arrays split into 256-byte sections. A program is written by
// patching the section it belongs to and leaving the rest untouched.
package cassette

import (
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"bankasm/pkg/isa"
)

// SectionSize is the number of bytes in one cassette section.
const SectionSize = isa.BankSize

var (
	ErrBlobTooSmall = errors.New("cassette too small")
	ErrBlobCorrupt  = errors.New("cassette corrupt")
	ErrNotFound     = errors.New("cassette not found")
)

// Blob is a persisted cassette image.
type Blob interface {
	ReadBlob() ([]byte, error)
	WriteBlob(data []byte) error
}

// New returns a blank cassette image with the given number of sections.
func New(sections int) []byte {
	if sections < 0 {
		sections = 0
	}
	return make([]byte, sections*SectionSize)
}

// Patch copies code into data starting at the first byte of section. Code
// longer than one section runs on into the following sections; it must
// still end inside data.
func Patch(data []byte, section int, code []byte) error {
	if section < 0 || section >= Sections(data) {
		return errors.Wrapf(ErrBlobTooSmall, "section %d outside cassette of %d sections", section, Sections(data))
	}
	start := section * SectionSize
	end := start + len(code)
	if end > len(data) {
		return errors.Wrapf(ErrBlobTooSmall, "%d bytes at section %d need %d bytes, cassette holds %d",
			len(code), section, end, len(data))
	}
	copy(data[start:end], code)
	return nil
}

// WriteSection loads b, patches code into section and stores the result.
// Nothing is written when loading or patching fails.
func WriteSection(b Blob, section int, code []byte, log logrus.FieldLogger) error {
	data, err := b.ReadBlob()
	if err != nil {
		return err
	}
	if err := Patch(data, section, code); err != nil {
		return err
	}
	if err := b.WriteBlob(data); err != nil {
		return err
	}
	if log != nil {
		log.WithFields(logrus.Fields{
			"section": section,
			"bytes":   len(code),
			"size":    len(data),
		}).Debug("cassette section written")
	}
	return nil
}

// Sections reports how many whole sections data holds.
func Sections(data []byte) int {
	return len(data) / SectionSize
}

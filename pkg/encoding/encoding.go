// Package encoding detects source-file text encodings and normalizes them to
// the two families the Transfer Gov exports actually use.
package encoding

import (
	"io"
	"os"
	"strings"

	"github.com/Gobusters/ectologger"
	"github.com/saintfish/chardet"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

// Encoding is a canonical encoding label
type Encoding string

const (
	UTF8        Encoding = "utf-8"
	Windows1252 Encoding = "windows-1252"
)

// detectSampleSize bounds how much of the file the statistical detector sees
const detectSampleSize = 64 * 1024

// charset labels reported by the detector, folded onto the canonical pair.
// Anything unmapped falls back to UTF-8.
var encodingMap = map[string]Encoding{
	"ascii":        UTF8,
	"utf-8":        UTF8,
	"utf8":         UTF8,
	"iso-8859-1":   Windows1252,
	"iso-8859-15":  Windows1252,
	"latin-1":      Windows1252,
	"latin1":       Windows1252,
	"cp1252":       Windows1252,
	"cp1250":       Windows1252,
	"windows-1250": Windows1252,
	"windows-1252": Windows1252,
}

// Detector guesses the text encoding of a file
type Detector struct {
	logger ectologger.Logger
}

func NewDetector(logger ectologger.Logger) *Detector {
	return &Detector{logger: logger}
}

// Detect inspects the byte distribution of the file and returns a canonical
// encoding label. It never fails: any read or detection problem falls back
// to UTF-8.
func (d *Detector) Detect(path string) Encoding {
	file, err := os.Open(path)
	if err != nil {
		d.logger.WithError(err).WithField("path", path).Warn("Could not open file for encoding detection, falling back to utf-8")
		return UTF8
	}
	defer file.Close()

	sample := make([]byte, detectSampleSize)
	n, err := file.Read(sample)
	if err != nil && err != io.EOF {
		d.logger.WithError(err).WithField("path", path).Warn("Could not read file for encoding detection, falling back to utf-8")
		return UTF8
	}
	if n == 0 {
		return UTF8
	}

	result, err := chardet.NewTextDetector().DetectBest(sample[:n])
	if err != nil || result == nil {
		d.logger.WithField("path", path).Debug("Encoding detection inconclusive, falling back to utf-8")
		return UTF8
	}

	normalized := normalize(result.Charset)
	d.logger.WithFields(map[string]any{"path": path, "charset": result.Charset, "encoding": string(normalized)}).Debug("Detected file encoding")
	return normalized
}

func normalize(charset string) Encoding {
	if enc, ok := encodingMap[strings.ToLower(strings.TrimSpace(charset))]; ok {
		return enc
	}
	return UTF8
}

// NewReader wraps r so that its bytes come out as UTF-8 regardless of the
// source encoding.
func NewReader(r io.Reader, enc Encoding) io.Reader {
	if enc == Windows1252 {
		return transform.NewReader(r, charmap.Windows1252.NewDecoder())
	}
	return r
}

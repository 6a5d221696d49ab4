package encoding

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Gobusters/ectologger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noopLogger() ectologger.Logger {
	return ectologger.NewEctoLogger(func(_ ectologger.EctoLogMessage) {})
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		charset  string
		expected Encoding
	}{
		{charset: "UTF-8", expected: UTF8},
		{charset: "ISO-8859-1", expected: Windows1252},
		{charset: "windows-1252", expected: Windows1252},
		{charset: "ascii", expected: UTF8},
		{charset: "Shift_JIS", expected: UTF8},
		{charset: "", expected: UTF8},
	}

	for _, tt := range tests {
		t.Run(tt.charset, func(t *testing.T) {
			assert.Equal(t, tt.expected, normalize(tt.charset))
		})
	}
}

func TestDetectMissingFileFallsBack(t *testing.T) {
	d := NewDetector(noopLogger())
	assert.Equal(t, UTF8, d.Detect(filepath.Join(t.TempDir(), "nope.csv")))
}

func TestDetectEmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.csv")
	require.NoError(t, os.WriteFile(path, nil, 0o644))

	d := NewDetector(noopLogger())
	assert.Equal(t, UTF8, d.Detect(path))
}

func TestNewReaderDecodesWindows1252(t *testing.T) {
	// "situação" with ç=0xE7 and ã=0xE3 in cp1252
	raw := []byte{'s', 'i', 't', 'u', 'a', 0xE7, 0xE3, 'o'}

	decoded, err := io.ReadAll(NewReader(strings.NewReader(string(raw)), Windows1252))
	require.NoError(t, err)
	assert.Equal(t, "situação", string(decoded))
}

func TestNewReaderPassesThroughUTF8(t *testing.T) {
	decoded, err := io.ReadAll(NewReader(strings.NewReader("situação"), UTF8))
	require.NoError(t, err)
	assert.Equal(t, "situação", string(decoded))
}

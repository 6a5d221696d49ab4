package normalizers

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHeader(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "lowercases and trims", input: "  Titulo Proposta ", expected: "titulo proposta"},
		{name: "strips accents", input: "Situação", expected: "situacao"},
		{name: "strips byte order mark", input: "\ufeffid_proposta", expected: "id_proposta"},
		{name: "already canonical", input: "transfer_gov_id", expected: "transfer_gov_id"},
		{name: "empty", input: "", expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Header(tt.input))
		})
	}
}

func TestCNPJ(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "formatted", input: "12.345.678/0001-99", expected: "12345678000199"},
		{name: "bare digits", input: "12345678000199", expected: "12345678000199"},
		{name: "short is zero padded", input: "345678000199", expected: "00345678000199"},
		{name: "zero rejected", input: "0", expected: ""},
		{name: "all zero rejected", input: "00.000.000/0000-00", expected: ""},
		{name: "empty rejected", input: "", expected: ""},
		{name: "no digits rejected", input: "n/a", expected: ""},
		{name: "too long rejected", input: "123456780001991234", expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, CNPJ(tt.input))
		})
	}
}

func TestDigitsOnly(t *testing.T) {
	assert.Equal(t, "12345", DigitsOnly("1a2b3c4d5"))
	assert.Equal(t, "", DigitsOnly("abc"))
	assert.Equal(t, "01310100", DigitsOnly("01310-100"))
}

func TestUF(t *testing.T) {
	assert.Equal(t, "SP", UF(" sp "))
	assert.Equal(t, "MG", UF("MG"))
	assert.Equal(t, "", UF("  "))
}

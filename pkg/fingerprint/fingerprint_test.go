package fingerprint

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSupporterKey(t *testing.T) {
	key := SupporterKey("Deputado Fulano de Tal")

	assert.Len(t, key, 16)
	assert.Equal(t, key, SupporterKey("Deputado Fulano de Tal"), "same name yields same key")
	assert.Equal(t, key, SupporterKey("  Deputado Fulano de Tal  "), "surrounding whitespace is ignored")
	assert.NotEqual(t, key, SupporterKey("Deputada Outra Pessoa"))
}

func TestRecordHash(t *testing.T) {
	a := RecordHash(map[string]any{"nome": "obra", "valor": 1500.0})
	b := RecordHash(map[string]any{"valor": 1500.0, "nome": "obra"})
	c := RecordHash(map[string]any{"nome": "obra", "valor": 1501.0})

	assert.Equal(t, a, b, "key order must not affect the hash")
	assert.NotEqual(t, a, c)
	assert.Len(t, a, 64)
}

func TestRecordHashNested(t *testing.T) {
	a := RecordHash(map[string]any{"outer": map[string]any{"x": 1, "y": 2}, "list": []any{1, 2}})
	b := RecordHash(map[string]any{"list": []any{1, 2}, "outer": map[string]any{"y": 2, "x": 1}})

	assert.Equal(t, a, b)
}

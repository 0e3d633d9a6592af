package tokenizer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	tok, err := New("")
	require.NoError(t, err)
	assert.Equal(t, "word", tok.Name())

	tok, err = New("gpt-4o")
	require.NoError(t, err)
	assert.Equal(t, "tiktoken[o200k_base]", tok.Name())
}

func TestEncodingFor(t *testing.T) {
	tests := []struct {
		model string
		want  string
	}{
		{"gpt-4o", "o200k_base"},
		{"gpt-4o-mini-2024-07-18", "o200k_base"},
		{"gpt-4-0613", "cl100k_base"},
		{"gpt-3.5-turbo-16k", "cl100k_base"},
		{"p50k_base", "p50k_base"},
		{"llama3-8B-instruct", "cl100k_base"},
	}
	for _, tt := range tests {
		t.Run(tt.model, func(t *testing.T) {
			assert.Equal(t, tt.want, encodingFor(tt.model))
		})
	}
}

func TestNewTiktokenTokenizer_Empty(t *testing.T) {
	_, err := NewTiktokenTokenizer("")
	assert.Error(t, err)
}

func TestWordTokenizer(t *testing.T) {
	w := NewWordTokenizer()

	assert.Equal(t, []string{"the", "cat", "sat", "on", "mat", "42"}, w.Words("The cat, sat on... mat 42!"))

	n, err := w.CountTokens("Hello, World")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	ids, err := w.Encode("apple Apple banana")
	require.NoError(t, err)
	require.Len(t, ids, 3)
	assert.Equal(t, ids[0], ids[1], "case-folded words share an id")
	assert.NotEqual(t, ids[0], ids[2])

	ids, err = w.Encode("")
	require.NoError(t, err)
	assert.Empty(t, ids)
}

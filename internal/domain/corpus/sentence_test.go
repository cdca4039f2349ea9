package corpus

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenizePartSplitsSentences(t *testing.T) {
	p := &Part{Text: "BRCA1 binds DNA. TP53 represses MDM2."}
	require.NoError(t, TokenizePart(p))

	require.Len(t, p.Sentences, 2)
	first := p.Sentences[0]
	assert.Equal(t, "BRCA1", first[0].Word)
	assert.Equal(t, 0, first[0].Start)
}

func TestTokenizePartOffsetsPointIntoText(t *testing.T) {
	p := &Part{Text: "The protein binds the protein."}
	require.NoError(t, TokenizePart(p))

	require.NotEmpty(t, p.Sentences)
	seen := map[int]bool{}
	for _, sent := range p.Sentences {
		for _, tok := range sent {
			assert.Equal(t, tok.Word, p.Text[tok.Start:tok.End()],
				"token text must match its span")
			assert.False(t, seen[tok.Start], "offsets must be distinct")
			seen[tok.Start] = true
		}
	}
}

func TestTokenizePartMarksPunctuation(t *testing.T) {
	p := &Part{Text: "BRCA1 binds DNA."}
	require.NoError(t, TokenizePart(p))

	var punct, words int
	for _, sent := range p.Sentences {
		for _, tok := range sent {
			if tok.IsPunct {
				punct++
			} else {
				words++
			}
		}
	}
	assert.Greater(t, punct, 0)
	assert.Greater(t, words, 0)
}

func TestTokenizePartEmptyText(t *testing.T) {
	p := &Part{}
	require.NoError(t, TokenizePart(p))
	assert.Nil(t, p.Sentences)
}

func TestTokenizeDocument(t *testing.T) {
	d := &Document{Parts: []*Part{
		{Text: "BRCA1 binds DNA."},
		{Text: "TP53 represses MDM2."},
	}}
	require.NoError(t, TokenizeDocument(d))
	assert.NotEmpty(t, d.Parts[0].Sentences)
	assert.NotEmpty(t, d.Parts[1].Sentences)
}

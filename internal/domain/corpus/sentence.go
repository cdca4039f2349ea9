package corpus

import (
	"strings"
	"unicode"

	prose "github.com/jdkato/prose/v2"

	"github.com/ashishbaghudana/relna/pkg/errors"
)

// TokenizePart splits the part's text into sentences and tokens,
// populating Sentences with part-local token offsets. Safe to call more
// than once; a second call replaces the previous tokenization.
func TokenizePart(p *Part) error {
	if p.Text == "" {
		p.Sentences = nil
		return nil
	}

	doc, err := prose.NewDocument(p.Text,
		prose.WithTagging(false),
		prose.WithExtraction(false))
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeFeatureGeneration, "sentence segmentation failed")
	}

	// cursor walks the part text so each token search starts where the
	// previous token ended; repeated words keep distinct offsets.
	cursor := 0
	sentences := make([][]Token, 0, len(doc.Sentences()))
	for _, sent := range doc.Sentences() {
		tokens, next, err := tokenizeSentence(p.Text, sent.Text, cursor)
		if err != nil {
			return err
		}
		cursor = next
		if len(tokens) > 0 {
			sentences = append(sentences, tokens)
		}
	}
	p.Sentences = sentences
	return nil
}

// TokenizeDocument tokenizes every part of the document.
func TokenizeDocument(d *Document) error {
	for _, p := range d.Parts {
		if err := TokenizePart(p); err != nil {
			return err
		}
	}
	return nil
}

func tokenizeSentence(partText, sentText string, cursor int) ([]Token, int, error) {
	doc, err := prose.NewDocument(sentText,
		prose.WithSegmentation(false),
		prose.WithTagging(false),
		prose.WithExtraction(false))
	if err != nil {
		return nil, cursor, errors.Wrap(err, errors.ErrCodeFeatureGeneration, "tokenization failed")
	}

	var tokens []Token
	for _, tok := range doc.Tokens() {
		idx := strings.Index(partText[cursor:], tok.Text)
		if idx < 0 {
			// Tokenizer normalization (quote folding and the like) can
			// produce text absent from the source; skip such tokens.
			continue
		}
		start := cursor + idx
		tokens = append(tokens, Token{
			Word:    tok.Text,
			Start:   start,
			IsPunct: isPunctuation(tok.Text),
		})
		cursor = start + len(tok.Text)
	}
	return tokens, cursor, nil
}

func isPunctuation(word string) bool {
	for _, r := range word {
		if !unicode.IsPunct(r) && !unicode.IsSymbol(r) {
			return false
		}
	}
	return len(word) > 0
}

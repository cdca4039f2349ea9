package features

import (
	"fmt"

	"github.com/kljensen/snowball/english"

	"github.com/ashishbaghudana/relna/internal/domain/corpus"
)

// NamedEntityCountGenerator emits one feature per edge recording how many
// entities of a category occur in the edge's sentence.
type NamedEntityCountGenerator struct {
	Category     corpus.EntityCategory
	FeatureSet   *FeatureSet
	TrainingMode bool
}

func (g *NamedEntityCountGenerator) Generate(edges []*Edge) error {
	for _, edge := range edges {
		entities := edge.Part.EntitiesInSentence(edge.SentenceID, g.Category)
		name := fmt.Sprintf("1_%s_count_[%d]", g.Category, len(entities))
		setFeature(g.FeatureSet, g.TrainingMode, edge, name, 1)
	}
	return nil
}

// BagOfWordsGenerator emits one feature per non-stop-word token in the
// edge's sentence, plus counted features for tokens that fall inside an
// entity span.
type BagOfWordsGenerator struct {
	FeatureSet   *FeatureSet
	StopWords    map[string]bool
	TrainingMode bool
}

func (g *BagOfWordsGenerator) Generate(edges []*Edge) error {
	stop := g.StopWords
	if stop == nil {
		stop = DefaultStopWords
	}
	for _, edge := range edges {
		neCounts := map[string]float64{}
		for _, tok := range edge.Sentence() {
			if tok.IsPunct || stop[tok.Word] {
				continue
			}
			setFeature(g.FeatureSet, g.TrainingMode, edge,
				fmt.Sprintf("2_bow_text_%s_[0]", tok.Word), 1)
			if tokenInEntity(edge.Part, tok) {
				neCounts[fmt.Sprintf("3_ne_bow_%s_[0]", tok.Word)]++
			}
		}
		for name, count := range neCounts {
			setFeature(g.FeatureSet, g.TrainingMode, edge, name, count)
		}
	}
	return nil
}

// StemmedBagOfWordsGenerator emits one feature per stemmed non-stop-word
// token in the edge's sentence.
type StemmedBagOfWordsGenerator struct {
	FeatureSet   *FeatureSet
	StopWords    map[string]bool
	TrainingMode bool
}

func (g *StemmedBagOfWordsGenerator) Generate(edges []*Edge) error {
	stop := g.StopWords
	if stop == nil {
		stop = DefaultStopWords
	}
	for _, edge := range edges {
		for _, tok := range edge.Sentence() {
			if tok.IsPunct {
				continue
			}
			stem := english.Stem(tok.Word, false)
			if stop[stem] {
				continue
			}
			setFeature(g.FeatureSet, g.TrainingMode, edge,
				fmt.Sprintf("4_bow_stem_%s_[0]", stem), 1)
		}
	}
	return nil
}

// SentenceGenerator counts, per entity category, how many tokens of the
// edge's sentence fall inside an entity of that category.
type SentenceGenerator struct {
	FeatureSet   *FeatureSet
	TrainingMode bool
}

func (g *SentenceGenerator) Generate(edges []*Edge) error {
	for _, edge := range edges {
		counts := map[corpus.EntityCategory]float64{}
		for _, tok := range edge.Sentence() {
			for _, category := range tokenCategories(edge.Part, tok) {
				counts[category]++
			}
		}
		for category, count := range counts {
			setFeature(g.FeatureSet, g.TrainingMode, edge,
				fmt.Sprintf("5_%s_[0]", category), count)
		}
	}
	return nil
}

// WordFilterGenerator flags the presence of any of a fixed word list in
// the edge's sentence, optionally comparing stems instead of surface
// forms.
type WordFilterGenerator struct {
	FeatureSet   *FeatureSet
	Words        []string
	Stem         bool
	TrainingMode bool
}

func (g *WordFilterGenerator) Generate(edges []*Edge) error {
	if g.Stem {
		stemmed := make(map[string]bool, len(g.Words))
		for _, w := range g.Words {
			stemmed[english.Stem(w, false)] = true
		}
		for _, edge := range edges {
			for _, tok := range edge.Sentence() {
				stem := english.Stem(tok.Word, false)
				if stemmed[stem] {
					setFeature(g.FeatureSet, g.TrainingMode, edge,
						fmt.Sprintf("6_word_filter_stem_%s_[0]", stem), 1)
				}
			}
		}
		return nil
	}

	listed := make(map[string]bool, len(g.Words))
	for _, w := range g.Words {
		listed[w] = true
	}
	for _, edge := range edges {
		for _, tok := range edge.Sentence() {
			if listed[tok.Word] {
				setFeature(g.FeatureSet, g.TrainingMode, edge,
					fmt.Sprintf("6_word_filter_%s_[0]", tok.Word), 1)
			}
		}
	}
	return nil
}

func tokenInEntity(p *corpus.Part, tok corpus.Token) bool {
	return len(tokenCategories(p, tok)) > 0
}

func tokenCategories(p *corpus.Part, tok corpus.Token) []corpus.EntityCategory {
	var out []corpus.EntityCategory
	for _, coll := range [][]*corpus.Entity{p.Annotations, p.PredictedAnnotations} {
		for _, e := range coll {
			if tok.Start >= e.Offset && tok.Start < e.End() {
				out = append(out, e.Category)
			}
		}
	}
	return out
}

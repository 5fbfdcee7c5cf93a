package features

import (
	"fmt"
	"math/bits"
	"strings"
	"unicode"

	porterstemmer "github.com/kiteco/go-porterstemmer"

	"github.com/neurlang/cotrain/datasets"
)

// Metadata keys read by DefaultExtractor
const (
	MetaPOS          = "pos"
	MetaDependencies = "dependencies"
	MetaLemmas       = "lemmas"
	MetaFrames       = "frames"
	MetaSynsets      = "synsets"
	MetaPosition     = "position"
)

var stopWords = map[string]bool{
	"a": true, "an": true, "and": true, "are": true, "as": true, "at": true,
	"be": true, "by": true, "for": true, "from": true, "in": true, "is": true,
	"it": true, "of": true, "on": true, "or": true, "that": true, "the": true,
	"to": true, "was": true, "were": true, "with": true,
}

// DefaultExtractor derives the lexical, structural, syntactic and semantic
// views from the sentence and the metadata of a record.
type DefaultExtractor struct{}

// Extract implements Extractor
func (DefaultExtractor) Extract(r datasets.Record) (map[string]datasets.Vector, error) {
	words, puncts := tokenize(r.Sentence)
	return map[string]datasets.Vector{
		Lexical:    lexical(words),
		Structural: structural(r, words, puncts),
		Syntactic:  syntactic(r.Metadata),
		Semantic:   semantic(r.Metadata),
	}, nil
}

// tokenize splits the sentence into lower-cased words and punctuation marks
func tokenize(s string) (words []string, puncts []rune) {
	var cur strings.Builder
	flush := func() {
		if cur.Len() > 0 {
			words = append(words, cur.String())
			cur.Reset()
		}
	}
	for _, c := range s {
		switch {
		case unicode.IsLetter(c) || unicode.IsDigit(c) || c == '\'':
			cur.WriteRune(unicode.ToLower(c))
		case unicode.IsPunct(c):
			flush()
			puncts = append(puncts, c)
		default:
			flush()
		}
	}
	flush()
	return
}

func lexical(words []string) datasets.Vector {
	v := make(datasets.Vector)
	stems := make([]string, len(words))
	for i, w := range words {
		stems[i] = porterstemmer.StemString(w)
		if !stopWords[w] {
			v["uni="+stems[i]]++
		}
	}
	for i := 1; i < len(stems); i++ {
		v["bi="+stems[i-1]+"_"+stems[i]]++
	}
	return v
}

// bucket is the number of bits needed for n, so lengths group by powers of two
func bucket(n int) int {
	return bits.Len(uint(n))
}

func structural(r datasets.Record, words []string, puncts []rune) datasets.Vector {
	v := datasets.Vector{
		fmt.Sprintf("tokens=%d", bucket(len(words))):     1,
		fmt.Sprintf("chars=%d", bucket(len(r.Sentence))): 1,
	}
	for _, p := range puncts {
		switch p {
		case ',':
			v["comma"] = 1
		case ';':
			v["semicolon"] = 1
		case ':':
			v["colon"] = 1
		case '?':
			v["question"] = 1
		}
	}
	if pos, ok := r.Metadata[MetaPosition]; ok {
		v[fmt.Sprintf("position=%v", pos)] = 1
	}
	return v
}

func syntactic(meta map[string]interface{}) datasets.Vector {
	v := make(datasets.Vector)
	tags := stringList(meta, MetaPOS)
	for i, tag := range tags {
		v["pos="+tag]++
		if i > 0 {
			v["pos2="+tags[i-1]+"_"+tag]++
		}
	}
	for _, dep := range stringList(meta, MetaDependencies) {
		v["dep="+dep]++
	}
	return v
}

func semantic(meta map[string]interface{}) datasets.Vector {
	v := make(datasets.Vector)
	for _, lemma := range stringList(meta, MetaLemmas) {
		v["lemma="+porterstemmer.StemString(strings.ToLower(lemma))]++
	}
	for _, frame := range stringList(meta, MetaFrames) {
		v["frame="+frame]++
	}
	for _, synset := range stringList(meta, MetaSynsets) {
		v["synset="+synset]++
	}
	return v
}

// stringList reads a metadata entry holding either a list of strings or one
// whitespace separated string
func stringList(meta map[string]interface{}, key string) []string {
	switch x := meta[key].(type) {
	case string:
		return strings.Fields(x)
	case []string:
		return x
	case []interface{}:
		out := make([]string, 0, len(x))
		for _, item := range x {
			if s, ok := item.(string); ok {
				out = append(out, s)
			} else if item != nil {
				out = append(out, fmt.Sprint(item))
			}
		}
		return out
	}
	return nil
}
